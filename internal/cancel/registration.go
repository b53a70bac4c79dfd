package cancel

import "sync/atomic"

// Registration ties a callback to a signal. Close it when the callback's
// captured state is about to go away.
type Registration struct {
	id  uint64
	sig *signal
	fn  func()

	queued bool // guarded by sig.mu
	fired  atomic.Bool
	done   chan struct{} // closed once fn has returned
}

func (r *Registration) run() {
	defer close(r.done)
	r.fn()
}

// Close deregisters the callback.
//
//   - not yet fired: the callback is removed and will never run
//   - firing on another goroutine: Close blocks until this callback returns,
//     not until the rest of the drain does
//   - already fired, inert or closed: no-op
//
// Close must not be called from inside the registration's own callback.
func (r *Registration) Close() {
	if r == nil || r.sig == nil {
		return
	}
	if r.sig.deregister(r) {
		return
	}
	if r.fired.Load() {
		<-r.done
	}
}

// Fired reports whether the callback has started running.
func (r *Registration) Fired() bool {
	return r != nil && r.fired.Load()
}

// Active reports whether the registration is attached to a signal.
func (r *Registration) Active() bool {
	return r != nil && r.sig != nil
}

// ID returns the registration's sequence number within its signal.
// Inert registrations have ID 0.
func (r *Registration) ID() uint64 {
	if r == nil {
		return 0
	}
	return r.id
}
