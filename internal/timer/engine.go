package timer

import (
	"sort"
	"sync"
	"time"

	"github.com/stintapp/stint/internal/clock"
)

// Notifier receives a poke after every mutating operation so observers can
// re-read the store. *notify.Bus satisfies it.
type Notifier interface {
	Notify()
}

// Engine owns the task-id to timer-state map and is its only mutator.
// Every operation takes the engine mutex for its full duration: the
// single-running guarantee needs an atomic read-modify-write across the
// whole map, not just the touched entry.
//
// Unknown ids are created on first touch with a paused zeroed state, so no
// operation or query can fail; the whole surface is error-free.
type Engine struct {
	mu     sync.Mutex
	clock  clock.Clock
	timers map[string]*State
	bus    Notifier
}

// New creates an engine around the given time source. bus may be nil when
// nothing observes the engine (tests, one-shot tools).
func New(c clock.Clock, bus Notifier) *Engine {
	return &Engine{
		clock:  c,
		timers: make(map[string]*State),
		bus:    bus,
	}
}

// Start makes id the running task. Any other running task is paused first,
// with its open span folded into its own active accumulator. Starting an
// already-running id is a no-op: the open span is kept, not restarted.
func (e *Engine) Start(id string) {
	e.mu.Lock()
	s := e.get(id)
	if s.Status != StatusRunning {
		e.startLocked(s, e.clock.Now())
	}
	e.mu.Unlock()

	e.notify()
}

// startLocked is the sole place a task enters the running state, and with it
// the sole enforcement point of the at-most-one-running guarantee.
func (e *Engine) startLocked(s *State, now time.Time) {
	for _, other := range e.timers {
		if other != s && other.Status == StatusRunning {
			closeSpan(other, now)
			other.Status = StatusPaused
		}
	}

	closeSpan(s, now) // folds a break span if the task was on break
	openSpan(s, StatusRunning, now)
}

// Pause closes the running span of id into its active accumulator. Only a
// running task is affected; pausing a paused or on-break task changes
// nothing.
func (e *Engine) Pause(id string) {
	e.mu.Lock()
	s := e.get(id)
	if s.Status == StatusRunning {
		closeSpan(s, e.clock.Now())
		s.Status = StatusPaused
	}
	e.mu.Unlock()

	e.notify()
}

// Resume re-opens a work span for a paused task. It is Start under another
// name, cross-task pausing included.
func (e *Engine) Resume(id string) {
	e.Start(id)
}

// BreakStart moves id onto break. A running work span is closed first so no
// work time leaks into the break accumulator. A task on break is not
// "running": another task may Start independently while this one breaks.
func (e *Engine) BreakStart(id string) {
	e.mu.Lock()
	s := e.get(id)
	if s.Status != StatusOnBreak {
		now := e.clock.Now()
		closeSpan(s, now)
		openSpan(s, StatusOnBreak, now)
	}
	e.mu.Unlock()

	e.notify()
}

// BreakEnd closes the break span of id into its break accumulator and moves
// the task to target. Only StatusRunning is honored as a target; anything
// else lands on paused. A task not on break is left untouched.
func (e *Engine) BreakEnd(id string, target Status) {
	e.mu.Lock()
	s := e.get(id)
	if s.Status == StatusOnBreak {
		now := e.clock.Now()
		closeSpan(s, now)
		if target == StatusRunning {
			e.startLocked(s, now)
		} else {
			s.Status = StatusPaused
		}
	}
	e.mu.Unlock()

	e.notify()
}

// Reset zeroes both accumulators and forces id back to paused, whatever its
// prior state. The entry itself stays in the map.
func (e *Engine) Reset(id string) {
	e.mu.Lock()
	s := e.get(id)
	s.ActiveMs = 0
	s.BreakMs = 0
	s.Status = StatusPaused
	s.SpanStart = nil
	e.mu.Unlock()

	e.notify()
}

// Remove drops the entry for id. Lifecycle hook for collaborators: called
// when a task row is deleted so stale ids do not accumulate.
func (e *Engine) Remove(id string) {
	e.mu.Lock()
	delete(e.timers, id)
	e.mu.Unlock()

	e.notify()
}

// CurrentTime returns the displayable active seconds for id.
func (e *Engine) CurrentTime(id string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return ActiveSeconds(e.get(id), e.clock.Now())
}

// BreakTime returns the displayable break seconds for id.
func (e *Engine) BreakTime(id string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return BreakSeconds(e.get(id), e.clock.Now())
}

func (e *Engine) Status(id string) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.get(id).Status
}

func (e *Engine) IsRunning(id string) bool { return e.Status(id) == StatusRunning }
func (e *Engine) IsPaused(id string) bool  { return e.Status(id) == StatusPaused }
func (e *Engine) IsOnBreak(id string) bool { return e.Status(id) == StatusOnBreak }

// Snapshot exports a copy of every tracked state, ordered by task id.
// Collaborators (persistence, dashboards, day-end submission) read this
// instead of holding references into the map.
func (e *Engine) Snapshot() []State {
	e.mu.Lock()
	states := make([]State, 0, len(e.timers))
	for _, s := range e.timers {
		states = append(states, *copyState(s))
	}
	e.mu.Unlock()

	sort.Slice(states, func(i, j int) bool { return states[i].TaskID < states[j].TaskID })
	return states
}

// Flush closes every open span and parks all tasks on paused. Called on
// graceful shutdown so no accrued time is lost between the last snapshot
// and process exit.
func (e *Engine) Flush() {
	e.mu.Lock()
	now := e.clock.Now()
	for _, s := range e.timers {
		closeSpan(s, now)
		s.Status = StatusPaused
	}
	e.mu.Unlock()

	e.notify()
}

// Restore seeds the engine from a previously captured snapshot. Open spans
// cannot outlive the process that opened them: any span still open in the
// snapshot is folded up to capturedAt and the task comes back paused.
func (e *Engine) Restore(states []State, capturedAt time.Time) {
	e.mu.Lock()
	for _, snap := range states {
		if snap.TaskID == "" {
			continue
		}
		s := copyState(&snap)
		closeSpan(s, capturedAt)
		s.Status = StatusPaused
		e.timers[s.TaskID] = s
	}
	e.mu.Unlock()

	e.notify()
}

// get returns the state for id, creating the default paused state on first
// touch. Caller must hold e.mu.
func (e *Engine) get(id string) *State {
	s, ok := e.timers[id]
	if !ok {
		s = newState(id)
		e.timers[id] = s
	}

	return s
}

// notify runs outside the engine mutex: subscribers re-read the store from
// their callbacks.
func (e *Engine) notify() {
	if e.bus != nil {
		e.bus.Notify()
	}
}

// closeSpan folds the open span, if any, into the accumulator matching the
// current status and clears it. Spans are always closed before any status
// transition, which is what makes rapid clicks and ticks double-count-proof.
func closeSpan(s *State, now time.Time) {
	if s.SpanStart == nil {
		return
	}

	ms := now.Sub(*s.SpanStart).Milliseconds()
	if ms > 0 {
		switch s.Status {
		case StatusRunning:
			s.ActiveMs += ms
		case StatusOnBreak:
			s.BreakMs += ms
		}
	}
	s.SpanStart = nil
}

func openSpan(s *State, status Status, now time.Time) {
	start := now
	s.Status = status
	s.SpanStart = &start
}

func copyState(s *State) *State {
	c := *s
	if s.SpanStart != nil {
		start := *s.SpanStart
		c.SpanStart = &start
	}

	return &c
}
