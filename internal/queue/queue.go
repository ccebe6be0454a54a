package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Pop once the queue is closed and drained.
var ErrClosed = errors.New("queue closed")

// Queue is a thread-safe, unbounded FIFO. Pop blocks until an item is
// available, the queue is closed, or the caller's context ends.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []T
	head   int // read position
	tail   int // write position
	count  int
	closed bool

	// Stats
	totalPushed int64
	totalPopped int64
	resizeCount int
}

// Stats contains queue statistics.
type Stats struct {
	Depth       int
	Capacity    int
	TotalPushed int64
	TotalPopped int64
	ResizeCount int
}

// New creates a queue with the given initial capacity.
func New[T any](initialCapacity int) *Queue[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	q := &Queue[T]{
		buf: make([]T, initialCapacity),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item, growing the ring when it is full.
// Returns false if the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if q.count == len(q.buf) {
		q.grow()
	}

	q.buf[q.tail] = item
	q.tail = (q.tail + 1) % len(q.buf)
	q.count++
	q.totalPushed++

	q.cond.Signal()
	return true
}

// Pop removes and returns the oldest item, blocking while the queue is empty.
// Items pushed before Close are still delivered; after that Pop returns
// ErrClosed. A cancelled ctx returns ctx.Err().
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	for q.count == 0 {
		if q.closed {
			return zero, ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		q.cond.Wait()
	}

	return q.take(), nil
}

// TryPop returns the oldest item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.take(), true
}

// Close stops accepting pushes and wakes all blocked Pop calls.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Stats returns queue statistics.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Depth:       q.count,
		Capacity:    len(q.buf),
		TotalPushed: q.totalPushed,
		TotalPopped: q.totalPopped,
		ResizeCount: q.resizeCount,
	}
}

// take removes the head item. Must be called with lock held and count > 0.
func (q *Queue[T]) take() T {
	item := q.buf[q.head]
	var zero T
	q.buf[q.head] = zero // Clear reference for GC
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	q.totalPopped++
	return item
}

// grow doubles the ring, unwrapping it so head is at 0. Must be called with
// lock held.
func (q *Queue[T]) grow() {
	next := make([]T, len(q.buf)*2)

	if q.count > 0 {
		n := copy(next, q.buf[q.head:])
		if n < q.count {
			copy(next[n:], q.buf[:q.tail])
		}
	}

	q.buf = next
	q.head = 0
	q.tail = q.count
	q.resizeCount++
}
