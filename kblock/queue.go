package kblock

import (
	"context"
	"sync"
)

// queue is a FIFO with optional capacity. Producers block while it is full,
// consumers block while it is empty.
type queue[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	capacity int
	closed   bool // no more pushes
	aborted  bool // pending items were discarded
}

func newQueue[T any](capacity int) *queue[T] {
	q := &queue[T]{capacity: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue[T]) push(ctx context.Context, item T) error {
	stop := context.AfterFunc(ctx, q.wake)
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.closed {
			return ErrDeclined
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if q.capacity <= 0 || len(q.items) < q.capacity {
			q.items = append(q.items, item)
			q.cond.Broadcast()
			return nil
		}
		q.cond.Wait()
	}
}

// pop returns false once the queue is closed and empty, aborted, or ctx is done.
func (q *queue[T]) pop(ctx context.Context) (T, bool) {
	stop := context.AfterFunc(ctx, q.wake)
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	for {
		if q.aborted || ctx.Err() != nil {
			return zero, false
		}
		if len(q.items) > 0 {
			item := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.cond.Broadcast()
			return item, true
		}
		if q.closed {
			return zero, false
		}
		q.cond.Wait()
	}
}

func (q *queue[T]) wake() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *queue[T]) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *queue[T]) abort() {
	q.mu.Lock()
	q.closed = true
	q.aborted = true
	q.items = nil
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *queue[T]) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
