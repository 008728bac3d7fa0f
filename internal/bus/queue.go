package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrQueueFull   = errors.New("queue full")
	ErrQueueClosed = errors.New("queue closed")
)

// Queue is a bounded, non-blocking queue with a single consumer.
type Queue[T any] struct {
	mu      sync.RWMutex
	ch      chan T
	closed  bool
	dropped atomic.Uint64
}

// NewQueue allocates a queue with the given capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// TryPublish enqueues v without blocking. A full queue drops v.
func (q *Queue[T]) TryPublish(v T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- v:
		return nil
	default:
		q.dropped.Add(1)
		return ErrQueueFull
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Dropped returns how many items were rejected on a full queue.
func (q *Queue[T]) Dropped() uint64 {
	return q.dropped.Load()
}

// Close stops the queue from accepting new items. Items already queued are
// still delivered by Run.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Run consumes items until the context is done or the queue is closed and
// drained.
func (q *Queue[T]) Run(ctx context.Context, handler func(T)) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-q.ch:
			if !ok {
				return
			}
			handler(v)
		}
	}
}
