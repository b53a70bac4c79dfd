// Package cancel provides cooperative cancellation: a one-way stop signal
// shared between a Source (which may request the stop) and any number of
// Tokens (which may only observe it).
//
// Observers learn about a stop in one of three ways:
//   - Polling: Token.StopRequested is a single atomic load and never blocks
//   - Callbacks: Token.Register runs a function exactly once when stop is requested
//   - Waiting: Cond.WaitUntil blocks until a predicate holds or stop is requested
//
// Cancellation is cooperative. Code that never checks its token, or never
// waits through a Cond, keeps running after a stop request.
//
// # Callback execution
//
// Callbacks run synchronously on the goroutine that wins RequestStop, one at
// a time, in registration order. The signal's internal lock is not held
// while a callback runs, so a callback may Register on the same signal (the
// new callback runs inline) or Close other registrations. A callback
// registered from another goroutine after the stop runs inline on that
// goroutine and may overlap the drain.
//
// RequestStop blocks for the sum of all callback durations. A callback must
// not Close its own registration, nor acquire a lock already held by the
// goroutine calling RequestStop; either deadlocks.
package cancel

// Canceler is the minimal polling contract shared by the implementations in
// this package.
//
// Implementations must be safe for concurrent use:
//   - Multiple goroutines may call Done() concurrently
//   - Cancel() may be called concurrently with Done()
type Canceler interface {
	// Done returns true if cancellation has been triggered.
	Done() bool

	// Cancel triggers cancellation. Safe to call multiple times.
	Cancel()
}

// Poller is the read-only half of Canceler. Token satisfies it.
type Poller interface {
	Done() bool
}

var (
	_ Canceler = Source{}
	_ Canceler = (*AtomicCanceler)(nil)
	_ Poller   = Token{}
)
