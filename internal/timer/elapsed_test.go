package timer

import (
	"testing"
	"time"
)

func TestActiveSeconds(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	openedAt := now.Add(-2500 * time.Millisecond)

	tests := []struct {
		name     string
		state    State
		expected int64
	}{
		{
			name:     "paused uses closed spans only",
			state:    State{Status: StatusPaused, ActiveMs: 4999},
			expected: 4,
		},
		{
			name:     "running folds open span",
			state:    State{Status: StatusRunning, ActiveMs: 4000, SpanStart: &openedAt},
			expected: 6,
		},
		{
			name:     "break span never counts toward active",
			state:    State{Status: StatusOnBreak, ActiveMs: 4000, SpanStart: &openedAt},
			expected: 4,
		},
		{
			name:     "floors to whole seconds",
			state:    State{Status: StatusPaused, ActiveMs: 999},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActiveSeconds(&tt.state, now); got != tt.expected {
				t.Errorf("ActiveSeconds() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestBreakSeconds(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	openedAt := now.Add(-3 * time.Second)

	tests := []struct {
		name     string
		state    State
		expected int64
	}{
		{
			name:     "on break folds open span",
			state:    State{Status: StatusOnBreak, BreakMs: 1000, SpanStart: &openedAt},
			expected: 4,
		},
		{
			name:     "running span never counts toward break",
			state:    State{Status: StatusRunning, BreakMs: 1000, SpanStart: &openedAt},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BreakSeconds(&tt.state, now); got != tt.expected {
				t.Errorf("BreakSeconds() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestOpenSpanMs_ClampsNegative(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(10 * time.Second)
	s := State{Status: StatusRunning, SpanStart: &future}

	if got := openSpanMs(&s, now); got != 0 {
		t.Errorf("openSpanMs() = %d, want 0", got)
	}
}
