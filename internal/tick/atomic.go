package tick

import (
	"sync/atomic"
	"time"
	_ "unsafe" // go:linkname
)

// nanotime is the runtime's monotonic clock. It skips building a time.Time.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// AtomicTicker keeps the last tick as an atomic timestamp, so producers and
// a dispatcher may share one report ticker: exactly one caller claims each
// tick, and that caller reads the window it won.
type AtomicTicker struct {
	interval int64
	last     atomic.Int64
	window   atomic.Int64
}

// NewAtomicTicker creates an AtomicTicker whose first interval starts now.
func NewAtomicTicker(interval time.Duration) *AtomicTicker {
	t := &AtomicTicker{interval: int64(interval)}
	t.last.Store(nanotime())
	return t
}

// Tick returns true if the interval has elapsed and this caller won the CAS
// that claims the tick.
func (a *AtomicTicker) Tick() bool {
	now := nanotime()
	last := a.last.Load()
	if now-last < a.interval || !a.last.CompareAndSwap(last, now) {
		return false
	}
	a.window.Store(now - last)
	return true
}

// Window returns the span of the most recently claimed tick.
func (a *AtomicTicker) Window() time.Duration {
	return time.Duration(a.window.Load())
}

// Reset restarts the interval from now.
func (a *AtomicTicker) Reset() {
	a.last.Store(nanotime())
	a.window.Store(0)
}

// Stop does nothing.
func (a *AtomicTicker) Stop() {}

// Interval returns the ticker's interval.
func (a *AtomicTicker) Interval() time.Duration {
	return time.Duration(a.interval)
}
