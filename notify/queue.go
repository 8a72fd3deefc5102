// Package notify delivers state snapshots to listeners in the order the
// state changed.
//
// An owner pushes a snapshot while it still holds its own state lock, then
// calls Flush after releasing it. Exactly one goroutine drains the queue at
// a time; a Flush that finds a drain in progress returns at once and its
// snapshot is delivered by the draining goroutine. Listeners may call back
// into their owner, including changes that push further snapshots.
package notify

import "sync"

type delivery[T any] struct {
	value     T
	listeners []func(T)
}

// Queue serialises listener delivery for one state owner.
type Queue[T any] struct {
	mu       sync.Mutex
	pending  []delivery[T]
	draining bool
}

// Push records value for delivery to listeners. Callers hold the lock that
// guards the state value was taken from, so pushes follow change order.
func (q *Queue[T]) Push(value T, listeners []func(T)) {
	if len(listeners) == 0 {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, delivery[T]{value: value, listeners: listeners})
	q.mu.Unlock()
}

// Flush delivers pending snapshots unless another goroutine is already
// delivering them.
func (q *Queue[T]) Flush() {
	q.mu.Lock()
	if q.draining {
		q.mu.Unlock()
		return
	}
	q.draining = true
	q.mu.Unlock()

	done := false
	defer func() {
		if !done {
			q.mu.Lock()
			q.draining = false
			q.mu.Unlock()
		}
	}()

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.draining = false
			q.mu.Unlock()
			done = true
			return
		}
		d := q.pending[0]
		q.pending[0] = delivery[T]{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		for _, fn := range d.listeners {
			fn(d.value)
		}
	}
}
