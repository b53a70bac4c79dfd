// Package queue provides the storage backends behind a task queue.
//
// Every backend implements the non-blocking Queue interface: Push returns
// false when full, Pop returns false when empty. None of them blocks or
// knows about cancellation; blocking and stop handling belong to the caller,
// which guards the backend with its own lock (see pool.TaskQueue).
//
// Backends:
//   - FIFO: unbounded slice-backed queue (the default)
//   - ChannelQueue: bounded, backed by a buffered channel
//   - RingBuffer: bounded power-of-two ring
//
// FIFO and RingBuffer are not safe for concurrent use. RingBuffer panics
// when two calls overlap, which only happens if the caller's lock is
// missing.
package queue

import (
	"errors"
	"fmt"
)

// Queue is a non-blocking FIFO.
type Queue[T any] interface {
	// Push adds an item to the queue.
	// Returns false if the queue is full.
	Push(T) bool

	// Pop removes and returns an item from the queue.
	// Returns false if the queue is empty.
	Pop() (T, bool)

	// Len returns the current number of items in the queue.
	Len() int
}

// Backend names accepted by New.
const (
	BackendFIFO    = "fifo"
	BackendChannel = "channel"
	BackendRing    = "ring"
)

// ErrUnknownBackend is returned by New for an unrecognised backend name.
var ErrUnknownBackend = errors.New("queue: unknown backend")

// New builds the named backend. capacity is ignored by FIFO.
func New[T any](backend string, capacity int) (Queue[T], error) {
	switch backend {
	case BackendFIFO, "":
		return NewFIFO[T](), nil
	case BackendChannel:
		return NewChannel[T](capacity), nil
	case BackendRing:
		return NewRingBuffer[T](capacity), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}
