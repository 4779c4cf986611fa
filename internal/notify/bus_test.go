package notify

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotify_InvokesAllSubscribers(t *testing.T) {
	b := NewBus(time.Hour) // interval long enough that ticks never fire

	var a, c atomic.Int64
	unsubA := b.Subscribe(func() { a.Add(1) })
	defer unsubA()
	unsubC := b.Subscribe(func() { c.Add(1) })
	defer unsubC()

	b.Notify()
	b.Notify()

	assert.Equal(t, int64(2), a.Load())
	assert.Equal(t, int64(2), c.Load())
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus(time.Hour)

	var calls atomic.Int64
	unsub := b.Subscribe(func() { calls.Add(1) })

	b.Notify()
	unsub()
	b.Notify()

	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, 0, b.SubscriberCount())

	// Double unsubscribe is a no-op.
	unsub()
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestTicker_DrivesNotifications(t *testing.T) {
	b := NewBus(5 * time.Millisecond)

	var calls atomic.Int64
	unsub := b.Subscribe(func() { calls.Add(1) })
	defer unsub()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 3
	}, time.Second, time.Millisecond, "ticker should keep notifying with no mutations")
}

func TestTicker_StopsWithLastSubscriber(t *testing.T) {
	b := NewBus(5 * time.Millisecond)

	var calls atomic.Int64
	unsub := b.Subscribe(func() { calls.Add(1) })

	assert.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, time.Second, time.Millisecond)

	unsub()
	time.Sleep(20 * time.Millisecond) // let any in-flight tick drain
	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, settled, calls.Load(), "no ticks after the last unsubscribe")
}

func TestSubscribe_RestartsTicker(t *testing.T) {
	b := NewBus(5 * time.Millisecond)

	unsub := b.Subscribe(func() {})
	unsub()

	var calls atomic.Int64
	unsub2 := b.Subscribe(func() { calls.Add(1) })
	defer unsub2()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 1
	}, time.Second, time.Millisecond, "ticker should come back with a new subscriber")
}

func TestNotify_CallbackMayUnsubscribe(t *testing.T) {
	b := NewBus(time.Hour)

	var unsub func()
	var calls atomic.Int64
	unsub = b.Subscribe(func() {
		calls.Add(1)
		unsub()
	})

	b.Notify()
	b.Notify()

	assert.Equal(t, int64(1), calls.Load())
}
