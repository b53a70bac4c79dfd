package cancel

import (
	"sync"
	"sync/atomic"
)

// signal is the state shared by a Source, the Tokens minted from it and the
// Registrations made through them. It lives as long as any of those handles.
type signal struct {
	// requested is written only under mu but read without it.
	requested atomic.Bool

	mu        sync.Mutex
	callbacks []*Registration
	nextID    uint64
}

func newSignal() *signal {
	return &signal{}
}

// request performs the false->true transition and drains the callback list.
// It returns true only for the caller that made the transition.
//
// Each callback is taken off the list under mu and run with mu released, so
// a callback may take locks that a goroutine closing another registration
// holds. Callbacks still run one at a time, in order, on this goroutine.
//
// A panicking callback propagates to the caller. The flag stays set and the
// callbacks queued behind it never run.
func (s *signal) request() bool {
	s.mu.Lock()
	if s.requested.Load() {
		s.mu.Unlock()
		return false
	}
	s.requested.Store(true)

	for len(s.callbacks) > 0 {
		r := s.callbacks[0]
		s.callbacks[0] = nil
		s.callbacks = s.callbacks[1:]
		r.queued = false
		r.fired.Store(true)

		s.mu.Unlock()
		r.run()
		s.mu.Lock()
	}
	s.callbacks = nil
	s.mu.Unlock()
	return true
}

// register appends fn to the callback list, or runs it inline when the stop
// has already been requested.
func (s *signal) register(fn func()) *Registration {
	s.mu.Lock()
	s.nextID++
	r := &Registration{id: s.nextID, sig: s, fn: fn, done: make(chan struct{})}
	if s.requested.Load() {
		r.fired.Store(true)
		s.mu.Unlock()
		r.run()
		return r
	}
	r.queued = true
	s.callbacks = append(s.callbacks, r)
	s.mu.Unlock()
	return r
}

// deregister removes r if it is still queued and reports whether it did.
// A false result means r has fired or is firing.
func (s *signal) deregister(r *Registration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !r.queued {
		return false
	}
	r.queued = false
	for i, cb := range s.callbacks {
		if cb == r {
			s.callbacks = append(s.callbacks[:i:i], s.callbacks[i+1:]...)
			break
		}
	}
	return true
}

func (s *signal) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}
