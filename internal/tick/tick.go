// Package tick paces periodic work inside polling loops.
//
// A loop that spins on a stop token (see cancel.Token.StopRequested) often
// also reports progress every so often. A Ticker answers "is a report due?"
// without blocking, so the check sits next to the stop check in the same
// loop, and says how long the report covers so the loop can log a rate.
//
// Kinds:
//   - std: time.Ticker with a non-blocking receive
//   - batch: reads the clock only every N calls
//   - atomic: CAS on runtime.nanotime, safe to share between goroutines
package tick

import (
	"errors"
	"fmt"
	"time"
)

// Ticker signals when a report is due.
type Ticker interface {
	// Tick returns true if the interval has elapsed since the last tick.
	// It never blocks.
	Tick() bool

	// Window returns the time covered by the most recent tick: from the
	// tick (or Reset) before it up to that tick. It is zero before the
	// first tick. Dividing a counter's delta by Window gives a rate.
	Window() time.Duration

	// Reset starts a new interval from now.
	Reset()

	// Stop releases any resources held by the ticker.
	Stop()
}

// Kind names accepted by New.
const (
	KindStd    = "std"
	KindBatch  = "batch"
	KindAtomic = "atomic"
)

// Kinds lists every kind New accepts.
var Kinds = []string{KindStd, KindBatch, KindAtomic}

// DefaultInterval is the report period used when none is given.
const DefaultInterval = 100 * time.Millisecond

// DefaultBatch is the call count between clock reads for KindBatch.
const DefaultBatch = 64

// ErrUnknownKind is returned by New for an unrecognised kind.
var ErrUnknownKind = errors.New("tick: unknown kind")

// New builds a Ticker of the named kind. An empty kind selects KindAtomic.
func New(kind string, interval time.Duration) (Ticker, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	switch kind {
	case KindAtomic, "":
		return NewAtomicTicker(interval), nil
	case KindStd:
		return NewTicker(interval), nil
	case KindBatch:
		return NewBatch(interval, DefaultBatch), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// Rate returns delta per second over the ticker's last window, or 0 before
// the first tick.
func Rate(t Ticker, delta int64) float64 {
	w := t.Window()
	if w <= 0 {
		return 0
	}
	return float64(delta) / w.Seconds()
}
