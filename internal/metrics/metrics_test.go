package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	TimerTransitions.Reset()

	RecordTransition("start")
	RecordTransition("start")
	RecordTransition("pause")

	assert.Equal(t, 2.0, testutil.ToFloat64(TimerTransitions.WithLabelValues("start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(TimerTransitions.WithLabelValues("pause")))
}

func TestUpdateTimerGauges(t *testing.T) {
	UpdateTimerGauges(map[string]int{
		"running":  1,
		"paused":   3,
		"on_break": 2,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(TimersByStatus.WithLabelValues("running")))
	assert.Equal(t, 3.0, testutil.ToFloat64(TimersByStatus.WithLabelValues("paused")))
	assert.Equal(t, 2.0, testutil.ToFloat64(TimersByStatus.WithLabelValues("on_break")))
	assert.Equal(t, 6.0, testutil.ToFloat64(TrackedTasks))

	// Stale statuses are dropped on the next update.
	UpdateTimerGauges(map[string]int{"paused": 1})
	assert.Equal(t, 1.0, testutil.ToFloat64(TrackedTasks))
}

func TestUpdateBusSubscribers(t *testing.T) {
	UpdateBusSubscribers(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(BusSubscribers))

	UpdateBusSubscribers(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(BusSubscribers))
}

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(EntriesSubmitted)
	beforeSheets := testutil.ToFloat64(TimesheetsSubmitted)

	RecordSubmission(5)

	assert.Equal(t, before+5, testutil.ToFloat64(EntriesSubmitted))
	assert.Equal(t, beforeSheets+1, testutil.ToFloat64(TimesheetsSubmitted))
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/api/timers/:id/start", "200", 25*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/timers/:id/start", "200")))
}
