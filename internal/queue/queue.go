package queue

import "sync"

// Queue is an unbounded FIFO that links pipeline stages running within the
// same tick. It is safe for concurrent producers and a single consumer, and
// neither Push nor TryDrain ever blocks.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New constructs an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends an item. It never blocks and never fails.
func (q *Queue[T]) Push(item T) {
	if q == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

// TryDrain removes and returns every queued item in FIFO order. An empty
// queue yields nil rather than waiting for producers.
func (q *Queue[T]) TryDrain() []T {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	drained := q.items
	q.items = nil
	return drained
}

// Len reports the number of queued items.
func (q *Queue[T]) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
