package cancel

// Source is the handle with the right to request a stop. It is a small value
// type; copies share the same signal.
//
// The zero Source is detached: it cannot request a stop and the Tokens it
// returns are detached as well.
type Source struct {
	sig *signal
}

// NewSource creates a Source attached to a fresh signal.
func NewSource() Source {
	return Source{sig: newSignal()}
}

// RequestStop requests a stop. The first call on a signal runs every
// registered callback, in registration order, before returning true.
//
// Exactly one caller wins. A caller that loses the race returns false at
// once, possibly while the winner's callbacks are still running; such a
// caller already observes StopRequested as true. Calls on a detached Source
// return false immediately.
func (s Source) RequestStop() bool {
	if s.sig == nil {
		return false
	}
	return s.sig.request()
}

// StopRequested reports whether a stop has been requested.
func (s Source) StopRequested() bool {
	return s.sig != nil && s.sig.requested.Load()
}

// StopPossible reports whether the Source is attached to a signal.
func (s Source) StopPossible() bool {
	return s.sig != nil
}

// Token returns a read-only handle on the same signal.
func (s Source) Token() Token {
	return Token{sig: s.sig}
}

// Register is shorthand for s.Token().Register(fn).
func (s Source) Register(fn func()) *Registration {
	return s.Token().Register(fn)
}

// Done implements Canceler.
func (s Source) Done() bool {
	return s.StopRequested()
}

// Cancel implements Canceler.
func (s Source) Cancel() {
	s.RequestStop()
}

// Pending returns the number of callbacks still waiting to fire.
func (s Source) Pending() int {
	if s.sig == nil {
		return 0
	}
	return s.sig.pending()
}
