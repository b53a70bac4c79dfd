package queue

import "sync/atomic"

// RingBuffer is a bounded power-of-two ring for a single owner at a time.
//
// Indices are plain counters: the task queue serialises every call with its
// own mutex, so no memory ordering is needed between Push and Pop. The busy
// flag is a tripwire only. A call that overlaps another one panics instead
// of corrupting the ring.
type RingBuffer[T any] struct {
	buf  []T
	mask uint64
	head uint64 // next slot to write
	tail uint64 // next slot to read
	busy atomic.Bool
}

// NewRingBuffer creates a RingBuffer holding at least size items; the
// capacity is rounded up to a power of two.
func NewRingBuffer[T any](size int) *RingBuffer[T] {
	n := uint64(1)
	for n < uint64(size) {
		n <<= 1
	}
	return &RingBuffer[T]{buf: make([]T, n), mask: n - 1}
}

func (r *RingBuffer[T]) enter(op string) {
	if !r.busy.CompareAndSwap(false, true) {
		panic("queue: overlapping " + op + " on RingBuffer; guard it with a lock")
	}
}

func (r *RingBuffer[T]) leave() { r.busy.Store(false) }

// Push stores v, or returns false when the ring is full.
func (r *RingBuffer[T]) Push(v T) bool {
	r.enter("Push")
	defer r.leave()

	if r.head-r.tail == uint64(len(r.buf)) {
		return false
	}
	r.buf[r.head&r.mask] = v
	r.head++
	return true
}

// Pop takes the oldest item, or returns false when the ring is empty.
func (r *RingBuffer[T]) Pop() (T, bool) {
	r.enter("Pop")
	defer r.leave()

	var zero T
	if r.head == r.tail {
		return zero, false
	}
	slot := r.tail & r.mask
	v := r.buf[slot]
	r.buf[slot] = zero
	r.tail++
	return v, true
}

// Len returns the number of stored items. Like Push and Pop it must not
// overlap other calls.
func (r *RingBuffer[T]) Len() int {
	return int(r.head - r.tail)
}

// Cap returns the ring size.
func (r *RingBuffer[T]) Cap() int {
	return len(r.buf)
}
