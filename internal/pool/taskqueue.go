// Package pool runs a group of consumer workers over a shared task queue.
//
// The queue is guarded by its own mutex and paired with a cancel.Cond, so a
// consumer blocked waiting for work also wakes when its worker is stopped.
// That lock is never the stop signal's lock: stop callbacks only broadcast
// on the Cond and never take the queue mutex.
package pool

import (
	"sync"

	"github.com/randomizedcoder/go-stop-token/internal/cancel"
	"github.com/randomizedcoder/go-stop-token/internal/queue"
)

// TaskQueue is a blocking, stop-aware queue over a non-blocking backend.
type TaskQueue[T any] struct {
	mu   sync.Mutex
	cond cancel.Cond
	q    queue.Queue[T]
}

// NewTaskQueue wraps q. A nil q selects an unbounded FIFO.
func NewTaskQueue[T any](q queue.Queue[T]) *TaskQueue[T] {
	if q == nil {
		q = queue.NewFIFO[T]()
	}
	return &TaskQueue[T]{q: q}
}

// Push adds v and wakes waiting consumers. It returns false if a bounded
// backend is full.
func (t *TaskQueue[T]) Push(v T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.q.Push(v) {
		return false
	}
	t.cond.Broadcast()
	return true
}

// PushAll pushes vs in order and returns how many were accepted. It stops at
// the first rejected item.
func (t *TaskQueue[T]) PushAll(vs ...T) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, v := range vs {
		if !t.q.Push(v) {
			break
		}
		n++
	}
	if n > 0 {
		t.cond.Broadcast()
	}
	return n
}

// Len returns the number of queued items.
func (t *TaskQueue[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.q.Len()
}

// Take blocks until an item is available or a stop is requested on tok.
//
// It returns false when the wait ended without work. When work is waiting
// and the stop is requested at the same time, the item is still handed out
// unless finishEarly is set, in which case Take returns false and leaves the
// item queued for someone else.
func (t *TaskQueue[T]) Take(tok cancel.Token, finishEarly bool) (T, bool) {
	var zero T

	t.mu.Lock()
	defer t.mu.Unlock()

	ready := t.cond.WaitUntil(&t.mu, func() bool { return t.q.Len() > 0 }, tok)
	if !ready || (finishEarly && tok.StopRequested()) {
		return zero, false
	}
	v, ok := t.q.Pop()
	if !ok {
		return zero, false
	}
	return v, true
}

// Drain removes and returns everything queued.
func (t *TaskQueue[T]) Drain() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, 0, t.q.Len())
	for {
		v, ok := t.q.Pop()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
