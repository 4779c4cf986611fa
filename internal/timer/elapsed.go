package timer

import "time"

// ActiveSeconds folds the closed work accumulator plus the open span, when
// the task is running, into whole display seconds. It never mutates state;
// flooring keeps the counter stable between ticks.
func ActiveSeconds(s *State, now time.Time) int64 {
	ms := s.ActiveMs
	if s.Status == StatusRunning {
		ms += openSpanMs(s, now)
	}

	return ms / 1000
}

// BreakSeconds is the break-side counterpart of ActiveSeconds.
func BreakSeconds(s *State, now time.Time) int64 {
	ms := s.BreakMs
	if s.Status == StatusOnBreak {
		ms += openSpanMs(s, now)
	}

	return ms / 1000
}

func openSpanMs(s *State, now time.Time) int64 {
	if s.SpanStart == nil {
		return 0
	}

	ms := now.Sub(*s.SpanStart).Milliseconds()
	if ms < 0 {
		return 0
	}

	return ms
}
