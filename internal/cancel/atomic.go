package cancel

import "sync/atomic"

// AtomicCanceler is a bare atomic flag with no callbacks and no waiters.
//
// It is the floor against which Source and Token are measured: a poll is a
// single atomic load, the same cost as Token.StopRequested, but nothing can
// be notified when the flag flips.
type AtomicCanceler struct {
	done atomic.Bool
}

// NewAtomic returns a flag that is not yet set.
func NewAtomic() *AtomicCanceler {
	return &AtomicCanceler{}
}

// Done reports whether Cancel has been called.
func (a *AtomicCanceler) Done() bool { return a.done.Load() }

// Cancel sets the flag. Repeated calls are harmless.
func (a *AtomicCanceler) Cancel() { a.done.Store(true) }

// Reset clears the flag so a benchmark loop can reuse it. It must not race
// with Done or Cancel.
func (a *AtomicCanceler) Reset() { a.done.Store(false) }
