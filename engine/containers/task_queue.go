package containers

import "sync"

// TaskQueue is an unbounded strict-FIFO queue shared between exactly one
// producer and one consumer. Submit never blocks; the consumer blocks in
// DetachAll until at least one element or a stop signal arrives. Later
// submissions never overtake earlier ones.
type TaskQueue[T any] struct {
	mu    sync.Mutex
	items []T
	wake  chan struct{}
}

func NewTaskQueue[T any]() *TaskQueue[T] {
	return &TaskQueue[T]{
		wake: make(chan struct{}, 1),
	}
}

// Submit appends an element at the tail and wakes the consumer if it is
// blocked in DetachAll.
func (q *TaskQueue[T]) Submit(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// DetachAll removes and returns the entire current queue contents in
// submission order, blocking until at least one element exists. A closed
// stop channel takes priority over queued work: once stop is observed the
// queue drains no further and DetachAll returns ok=false.
func (q *TaskQueue[T]) DetachAll(stop <-chan struct{}) ([]T, bool) {
	for {
		select {
		case <-stop:
			return nil, false
		default:
		}

		q.mu.Lock()
		if len(q.items) > 0 {
			batch := q.items
			q.items = nil
			q.mu.Unlock()
			return batch, true
		}
		q.mu.Unlock()

		select {
		case <-q.wake:
		case <-stop:
			return nil, false
		}
	}
}

// Len is a point-in-time snapshot for diagnostics only.
func (q *TaskQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty is a point-in-time snapshot for diagnostics only.
func (q *TaskQueue[T]) IsEmpty() bool {
	return q.Len() == 0
}
