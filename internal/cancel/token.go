package cancel

// Token is a read-only handle on a stop signal. It can be copied freely and
// may outlive the Source it came from.
//
// The zero Token is detached: StopPossible and StopRequested both report
// false and Register never runs its callback.
type Token struct {
	sig *signal
}

// StopRequested reports whether a stop has been requested. It is a single
// atomic load and never blocks, even while callbacks are running.
func (t Token) StopRequested() bool {
	return t.sig != nil && t.sig.requested.Load()
}

// StopPossible reports whether the token is attached to a signal.
func (t Token) StopPossible() bool {
	return t.sig != nil
}

// Done implements Poller.
func (t Token) Done() bool {
	return t.StopRequested()
}

// Register arranges for fn to run once when a stop is requested.
//
// If the stop has already been requested, fn runs on the calling goroutine
// before Register returns. On a detached token fn never runs and the
// returned Registration is inert.
func (t Token) Register(fn func()) *Registration {
	if t.sig == nil {
		return &Registration{}
	}
	return t.sig.register(fn)
}
