package queue

// FIFO is an unbounded queue backed by a slice. Push never fails.
//
// Not safe for concurrent use.
type FIFO[T any] struct {
	items []T
	head  int
}

// NewFIFO creates an empty FIFO.
func NewFIFO[T any]() *FIFO[T] {
	return &FIFO[T]{}
}

// Push appends v. It always returns true.
func (q *FIFO[T]) Push(v T) bool {
	q.items = append(q.items, v)
	return true
}

// Pop removes the oldest item.
func (q *FIFO[T]) Pop() (T, bool) {
	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}

	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// Reclaim the consumed prefix once it dominates the slice.
	if q.head > 32 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return v, true
}

// Len returns the number of queued items.
func (q *FIFO[T]) Len() int {
	return len(q.items) - q.head
}
