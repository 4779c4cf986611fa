package snapshot

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stintapp/stint/internal/clock"
	"github.com/stintapp/stint/internal/timer"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	s, err := NewStore(mr.Addr())
	require.NoError(t, err)

	return s, mr
}

func TestNewStore_InvalidAddress(t *testing.T) {
	_, err := NewStore("invalid:99999")
	assert.Error(t, err)
}

func TestSaveAndLoad(t *testing.T) {
	s, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = s.Close() }()

	capturedAt := time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC)
	spanStart := capturedAt.Add(-90 * time.Second)
	states := []timer.State{
		{TaskID: "t1", Status: timer.StatusRunning, ActiveMs: 3000, SpanStart: &spanStart},
		{TaskID: "t2", Status: timer.StatusPaused, ActiveMs: 1000, BreakMs: 500},
	}

	require.NoError(t, s.Save(states, capturedAt))

	loaded, loadedAt, err := s.Load()
	require.NoError(t, err)
	assert.True(t, capturedAt.Equal(loadedAt))
	require.Len(t, loaded, 2)

	byID := make(map[string]timer.State)
	for _, st := range loaded {
		byID[st.TaskID] = st
	}
	assert.Equal(t, timer.StatusRunning, byID["t1"].Status)
	assert.Equal(t, int64(3000), byID["t1"].ActiveMs)
	require.NotNil(t, byID["t1"].SpanStart)
	assert.True(t, spanStart.Equal(*byID["t1"].SpanStart))
	assert.Equal(t, int64(500), byID["t2"].BreakMs)
}

func TestSave_ReplacesPrevious(t *testing.T) {
	s, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = s.Close() }()

	now := time.Now().UTC()
	require.NoError(t, s.Save([]timer.State{
		{TaskID: "t1", Status: timer.StatusPaused},
		{TaskID: "t2", Status: timer.StatusPaused},
	}, now))
	require.NoError(t, s.Save([]timer.State{
		{TaskID: "t3", Status: timer.StatusPaused},
	}, now))

	loaded, _, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "t3", loaded[0].TaskID)
}

func TestLoad_Empty(t *testing.T) {
	s, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = s.Close() }()

	loaded, capturedAt, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.True(t, capturedAt.IsZero())
}

func TestLoad_SkipsCorruptEntries(t *testing.T) {
	s, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = s.Close() }()

	now := time.Now().UTC()
	require.NoError(t, s.Save([]timer.State{{TaskID: "t1", Status: timer.StatusPaused}}, now))
	mr.HSet(statesKey, "bad", "not json")

	loaded, _, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "t1", loaded[0].TaskID)
}

func TestClear(t *testing.T) {
	s, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Save([]timer.State{{TaskID: "t1", Status: timer.StatusPaused}}, time.Now()))
	require.NoError(t, s.Clear())

	loaded, capturedAt, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.True(t, capturedAt.IsZero())
}

func TestRoundTripThroughEngine(t *testing.T) {
	s, mr := setupTestStore(t)
	defer mr.Close()
	defer func() { _ = s.Close() }()

	capturedAt := time.Date(2025, 6, 1, 17, 0, 0, 0, time.UTC)
	spanStart := capturedAt.Add(-5 * time.Second)
	require.NoError(t, s.Save([]timer.State{
		{TaskID: "t1", Status: timer.StatusRunning, ActiveMs: 2000, SpanStart: &spanStart},
	}, capturedAt))

	states, loadedAt, err := s.Load()
	require.NoError(t, err)

	clk := clock.NewFakeClock()
	clk.Set(capturedAt.Add(time.Hour))
	e := timer.New(clk, nil)
	e.Restore(states, loadedAt)

	assert.True(t, e.IsPaused("t1"))
	assert.Equal(t, int64(7), e.CurrentTime("t1"))
}
