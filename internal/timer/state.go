// Package timer implements the task timer engine: per-task timer state, the
// store enforcing the single-running guarantee, and the elapsed-time fold
// backing the second counters shown to users.
package timer

import (
	"encoding/json"
	"strings"
	"time"
)

type (
	Status string
	State  struct {
		TaskID    string     `json:"task_id"`
		Status    Status     `json:"status"`
		ActiveMs  int64      `json:"active_ms"`
		BreakMs   int64      `json:"break_ms"`
		SpanStart *time.Time `json:"span_start,omitempty"`
	}
)

const (
	StatusPaused  Status = "paused"
	StatusRunning Status = "running"
	StatusOnBreak Status = "on_break"
)

func newState(taskID string) *State {
	return &State{
		TaskID: taskID,
		Status: StatusPaused,
	}
}

// ParseTarget maps a caller-supplied break-end target onto a resumable
// status. Anything that is not recognizably "running" falls back to paused;
// the engine never rejects input.
func ParseTarget(s string) Status {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusRunning)) {
		return StatusRunning
	}

	return StatusPaused
}

func (s *State) ToJSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func StateFromJSON(data string) (*State, error) {
	var s State
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}

	return &s, nil
}
