package worker

// State is a Worker's position in its lifecycle.
type State int32

const (
	// Constructed: no goroutine yet, the token is detached.
	Constructed State = iota
	// Started: the goroutine has been spawned but has not entered the body.
	Started
	// Running: the body is executing.
	Running
	// StopRequested: a stop was requested while the body was live.
	StopRequested
	// Joining: a caller is waiting for the body to return.
	Joining
	// Terminated: the body returned, by itself or after a Join.
	Terminated
)

var stateNames = [...]string{
	Constructed:   "Constructed",
	Started:       "Started",
	Running:       "Running",
	StopRequested: "StopRequested",
	Joining:       "Joining",
	Terminated:    "Terminated",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}
