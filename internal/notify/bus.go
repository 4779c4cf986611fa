// Package notify implements the change-notification bus between the timer
// engine and its observers. Subscribers are poked after every store mutation
// and once per tick, so elapsed displays keep advancing even when no state
// changes.
package notify

import (
	"sync"
	"time"
)

// DefaultTickInterval is the cadence display observers are refreshed at.
// One second matches human-perceptible elapsed-time display; engine
// arithmetic is correct at any rate.
const DefaultTickInterval = time.Second

// Bus fans a "state may have changed" signal out to subscribers. The shared
// ticker goroutine exists only while at least one subscriber is registered:
// started on the first Subscribe, stopped on the last unsubscribe, so an
// unobserved engine leaks no background timer.
//
// Callbacks must be cheap and idempotent; they re-read store state and may
// run once per second for the lifetime of the subscription. No ordering is
// guaranteed across subscribers.
type Bus struct {
	mu       sync.Mutex
	subs     map[int]func()
	nextID   int
	interval time.Duration
	stop     chan struct{}
}

func NewBus(interval time.Duration) *Bus {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	return &Bus{
		subs:     make(map[int]func()),
		interval: interval,
	}
}

// Subscribe registers fn and returns its unsubscribe function. Unsubscribing
// twice is harmless.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	if len(b.subs) == 1 {
		b.startTicker()
	}
	b.mu.Unlock()

	return func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	if _, ok := b.subs[id]; ok {
		delete(b.subs, id)
		if len(b.subs) == 0 && b.stop != nil {
			close(b.stop)
			b.stop = nil
		}
	}
	b.mu.Unlock()
}

// Notify invokes every current subscriber once. Called by the engine after
// each mutation and by the ticker each tick. Callbacks run outside the bus
// mutex so they may subscribe or unsubscribe freely.
func (b *Bus) Notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// SubscriberCount reports the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}

// startTicker launches the shared tick goroutine. Caller holds b.mu.
func (b *Bus) startTicker() {
	stop := make(chan struct{})
	b.stop = stop

	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				b.Notify()
			}
		}
	}()
}
