package tick

import "time"

// StdTicker is a time.Ticker polled with a non-blocking receive. The tick's
// timestamp comes from the channel, so Window costs no extra clock read.
type StdTicker struct {
	ticker   *time.Ticker
	interval time.Duration
	last     time.Time
	window   time.Duration
}

// NewTicker starts a StdTicker.
func NewTicker(interval time.Duration) *StdTicker {
	return &StdTicker{
		ticker:   time.NewTicker(interval),
		interval: interval,
		last:     time.Now(),
	}
}

// Tick reports whether a tick is waiting on the channel, consuming it.
func (t *StdTicker) Tick() bool {
	select {
	case at := <-t.ticker.C:
		t.window = at.Sub(t.last)
		t.last = at
		return true
	default:
		return false
	}
}

// Window returns the span of the last consumed tick.
func (t *StdTicker) Window() time.Duration { return t.window }

// Reset restarts the interval. A tick already buffered is discarded.
func (t *StdTicker) Reset() {
	t.ticker.Reset(t.interval)
	select {
	case <-t.ticker.C:
	default:
	}
	t.last = time.Now()
	t.window = 0
}

// Stop stops the underlying time.Ticker.
func (t *StdTicker) Stop() {
	t.ticker.Stop()
}

// Interval returns the ticker's interval.
func (t *StdTicker) Interval() time.Duration {
	return t.interval
}
