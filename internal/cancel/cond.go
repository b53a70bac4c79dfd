package cancel

import "sync"

// Cond is a condition variable whose waits also end when a stop is
// requested on a Token.
//
// Unlike sync.Cond it is not bound to one Locker; the lock guarding the
// predicate is passed to each wait. Notifications are generation based: a
// waiter captures the current generation while holding its lock, so a
// Broadcast issued after the protected state changes cannot be missed.
//
// The zero Cond is ready to use. A Cond must not be copied after first use.
type Cond struct {
	mu  sync.Mutex
	gen chan struct{}
}

// NewCond returns a ready Cond.
func NewCond() *Cond {
	return &Cond{}
}

func (c *Cond) generation() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == nil {
		c.gen = make(chan struct{})
	}
	return c.gen
}

// Broadcast wakes every goroutine waiting on c. It may be called with or
// without the predicate's lock held.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != nil {
		close(c.gen)
		c.gen = nil
	}
}

// WaitUntil blocks until pred returns true or a stop is requested on tok.
//
// The caller must hold l. It is released while blocked and held again when
// WaitUntil returns. The result is pred() evaluated under l at return time,
// so when the predicate and the stop become true together, the predicate
// wins. Callers that prefer to stop immediately should check
// tok.StopRequested themselves after a true return.
//
// With a detached token this is a plain predicate wait.
func (c *Cond) WaitUntil(l sync.Locker, pred func() bool, tok Token) bool {
	if pred() {
		return true
	}

	if tok.StopPossible() {
		reg := tok.Register(c.Broadcast)
		defer reg.Close()
	}

	for !pred() {
		// Capture the generation before checking the flag. A stop that
		// lands after the check broadcasts on this generation or a later
		// one, and either closes the channel we hold.
		gen := c.generation()
		if tok.StopRequested() {
			return false
		}
		l.Unlock()
		<-gen
		l.Lock()
	}
	return true
}

// Wait blocks until the next Broadcast or until a stop is requested on tok.
// It returns false if the stop had been requested by the time it returned.
// The locking contract matches WaitUntil.
func (c *Cond) Wait(l sync.Locker, tok Token) bool {
	gen := c.generation()
	if tok.StopRequested() {
		return false
	}

	reg := tok.Register(c.Broadcast)
	defer reg.Close()

	l.Unlock()
	<-gen
	l.Lock()
	return !tok.StopRequested()
}
