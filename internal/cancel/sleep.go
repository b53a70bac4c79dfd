package cancel

import "time"

// Sleep pauses for d or until a stop is requested on tok, whichever comes
// first. It returns false if the stop had been requested by the time it
// returned.
//
// With a detached token it is time.Sleep.
func Sleep(tok Token, d time.Duration) bool {
	if !tok.StopPossible() {
		time.Sleep(d)
		return true
	}

	woken := make(chan struct{})
	reg := tok.Register(func() { close(woken) })
	defer reg.Close()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-woken:
	}
	return !tok.StopRequested()
}
