package queue

// ChannelQueue is a bounded queue over a buffered channel. Push and Pop use
// select with default, so neither blocks.
//
// The channel does its own locking, which makes ChannelQueue the one
// backend that tolerates unguarded concurrent use. Under the task queue's
// mutex that locking is paid twice.
type ChannelQueue[T any] struct {
	ch chan T
}

// NewChannel creates a ChannelQueue with room for size items, at least one.
func NewChannel[T any](size int) *ChannelQueue[T] {
	return &ChannelQueue[T]{ch: make(chan T, max(size, 1))}
}

// Push sends v if there is room.
func (q *ChannelQueue[T]) Push(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Pop receives an item if one is buffered.
func (q *ChannelQueue[T]) Pop() (v T, ok bool) {
	select {
	case v = <-q.ch:
		return v, true
	default:
		return v, false
	}
}

// Len returns the number of buffered items.
func (q *ChannelQueue[T]) Len() int { return len(q.ch) }

// Cap returns the buffer size.
func (q *ChannelQueue[T]) Cap() int { return cap(q.ch) }
