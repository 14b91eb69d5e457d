// Package queue provides the mutex-guarded FIFO queues shared between the
// task generator and the executor worker pool.
package queue

import "sync"

// Queue is a FIFO queue guarded by its own lock. Every operation holds the
// lock for the duration of that single operation only, so neither side of the
// boundary can stall the other.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends v at the tail of the queue.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, v)
}

// TryPop removes and returns the head of the queue without blocking. The
// second return value is false when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue holds no elements.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}
