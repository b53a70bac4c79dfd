package tick

import "time"

// BatchTicker suits a drain loop that handles one item per call: it reads
// the clock only once every N calls, so per-item cost stays a counter
// increment. The window is measured at the clock reads, so a report can be
// late by up to N-1 calls.
//
// Not safe for concurrent use.
type BatchTicker struct {
	interval time.Duration
	every    int
	count    int
	last     time.Time
	window   time.Duration
}

// NewBatch creates a BatchTicker. every below 1 is treated as 1.
func NewBatch(interval time.Duration, every int) *BatchTicker {
	return &BatchTicker{
		interval: interval,
		every:    max(every, 1),
		last:     time.Now(),
	}
}

// Tick returns true on a clock-reading call once interval has passed.
func (b *BatchTicker) Tick() bool {
	if b.count++; b.count < b.every {
		return false
	}
	b.count = 0

	now := time.Now()
	elapsed := now.Sub(b.last)
	if elapsed < b.interval {
		return false
	}
	b.window = elapsed
	b.last = now
	return true
}

// Window returns the span of the last tick.
func (b *BatchTicker) Window() time.Duration { return b.window }

// Reset clears the call count and restarts the interval.
func (b *BatchTicker) Reset() {
	b.count = 0
	b.last = time.Now()
	b.window = 0
}

// Stop does nothing.
func (b *BatchTicker) Stop() {}

// Every returns the batch size.
func (b *BatchTicker) Every() int {
	return b.every
}
