// Package worker runs a body on its own goroutine under cooperative
// cancellation.
//
// A Worker owns a goroutine, a name, a colour and, once started, a
// cancel.Source. The body receives a Context through which it observes the
// stop token, logs, and waits on the worker's shared data slot. What the
// body does is a closure supplied at construction; there is one Worker type
// for every kind of work.
//
// Go has no destructors. Pair every Start with a deferred Close, which
// requests the stop and joins, so no goroutine outlives its owner:
//
//	w := worker.New(worker.Config[bool]{Name: "w", Interruptible: true})
//	defer w.Close()
//	if err := w.Start(); err != nil { ... }
package worker

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/go-stop-token/internal/cancel"
	"github.com/randomizedcoder/go-stop-token/internal/console"
)

// ErrAlreadyRunning is returned by Start while a previous run has not been
// joined.
var ErrAlreadyRunning = errors.New("worker: already running")

// Body is the work a Worker performs. It should return soon after
// ctx.Token().StopRequested() becomes true.
type Body[T any] func(ctx *Context[T])

// Config describes a Worker.
type Config[T any] struct {
	Name  string
	Color console.Color

	// Interruptible workers see the run's stop token. Others get a detached
	// token and run their body to completion regardless of Stop; stop
	// callbacks still fire.
	Interruptible bool

	// Data seeds the shared data slot.
	Data T

	// Body defaults to Poll(DefaultPollInterval) for interruptible workers
	// and Fixed(DefaultFixedSteps, DefaultFixedInterval) otherwise.
	Body Body[T]

	// Logger defaults to logrus.StandardLogger().
	Logger *logrus.Logger
}

// Defaults for the standard bodies.
const (
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultFixedSteps    = 20
	DefaultFixedInterval = 250 * time.Millisecond
)

// Worker runs a Body on its own goroutine.
type Worker[T any] struct {
	name          string
	color         console.Color
	interruptible bool
	body          Body[T]
	log           *logrus.Entry

	// runMu guards the lifecycle fields. It is never held while stop
	// callbacks run, so callbacks may start or query other workers.
	runMu sync.Mutex
	state State
	src   cancel.Source
	done  chan struct{}

	dataMu sync.Mutex
	cond   cancel.Cond
	data   T
}

// New builds a Worker in the Constructed state.
func New[T any](cfg Config[T]) *Worker[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	body := cfg.Body
	if body == nil {
		if cfg.Interruptible {
			body = Poll[T](DefaultPollInterval)
		} else {
			body = Fixed[T](DefaultFixedSteps, DefaultFixedInterval)
		}
	}

	w := &Worker[T]{
		name:          cfg.Name,
		color:         cfg.Color,
		interruptible: cfg.Interruptible,
		body:          body,
		log:           logger.WithFields(console.Fields(cfg.Name, cfg.Color)),
		data:          cfg.Data,
	}
	w.log.Debug("Constructed")
	return w
}

// Name returns the worker's display name.
func (w *Worker[T]) Name() string { return w.name }

// Color returns the worker's display colour.
func (w *Worker[T]) Color() console.Color { return w.color }

// Log returns the worker's log entry.
func (w *Worker[T]) Log() *logrus.Entry { return w.log }

// State returns the current lifecycle state.
func (w *Worker[T]) State() State {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	return w.state
}

// Token returns the current run's stop token. Before the first Start it is
// detached.
func (w *Worker[T]) Token() cancel.Token {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	return w.src.Token()
}

// Start spawns the body with a fresh stop source. A joined worker may be
// started again.
func (w *Worker[T]) Start() error {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	if w.done != nil && w.state != Terminated {
		return ErrAlreadyRunning
	}

	w.src = cancel.NewSource()
	w.done = make(chan struct{})
	w.state = Started
	go w.run(w.src, w.done)
	return nil
}

func (w *Worker[T]) run(src cancel.Source, done chan struct{}) {
	// A body that returns on its own ends the run without a Join; a later
	// Stop then has nothing left to stop.
	defer func() {
		close(done)
		w.runMu.Lock()
		if w.done == done {
			w.state = Terminated
		}
		w.runMu.Unlock()
	}()

	w.runMu.Lock()
	if w.state == Started {
		w.state = Running
	}
	w.runMu.Unlock()

	tok := src.Token()
	if !w.interruptible {
		tok = cancel.Token{}
	}
	w.body(&Context[T]{w: w, tok: tok})
}

// Stop requests a stop on the current run and, if block is set, waits for
// the body to return. On a worker that was never started it does nothing.
// Once the body has returned the state stays Terminated, though stop
// callbacks still fire. Repeated calls are safe.
func (w *Worker[T]) Stop(block bool) {
	w.runMu.Lock()
	src := w.src
	if !src.StopPossible() {
		w.runMu.Unlock()
		return
	}
	if w.state == Started || w.state == Running {
		w.state = StopRequested
	}
	w.runMu.Unlock()

	src.RequestStop()
	if block {
		w.Join()
	}
}

// Join waits for the current run's body to return. It is a no-op before the
// first Start and after the run has been joined. Join must not be called
// from the worker's own body.
func (w *Worker[T]) Join() {
	w.runMu.Lock()
	done := w.done
	if done == nil || w.state == Terminated {
		w.runMu.Unlock()
		return
	}
	w.state = Joining
	w.runMu.Unlock()

	<-done

	w.runMu.Lock()
	if w.done == done {
		w.state = Terminated
	}
	w.runMu.Unlock()
}

// Close stops the worker and waits for it. It is meant to be deferred by
// whoever started the worker.
func (w *Worker[T]) Close() error {
	w.Stop(true)
	return nil
}

// AddCallback registers fn to run when a stop is requested on the current
// run. If the stop was already requested fn runs before AddCallback
// returns. On a worker that was never started the registration is inert.
func (w *Worker[T]) AddCallback(fn func()) *cancel.Registration {
	return w.Token().Register(fn)
}

// SetData stores v in the shared data slot and wakes a body waiting in
// WaitData. Like the stop token it only applies to a live run: before Start,
// after the stop was requested, or once joined, it does nothing and returns
// false.
func (w *Worker[T]) SetData(v T) bool {
	w.runMu.Lock()
	src := w.src
	live := w.done != nil && w.state != Terminated
	w.runMu.Unlock()

	if !live || src.StopRequested() {
		return false
	}

	w.dataMu.Lock()
	w.data = v
	w.cond.Broadcast()
	w.dataMu.Unlock()
	return true
}

// Data returns the current value of the shared data slot.
func (w *Worker[T]) Data() T {
	w.dataMu.Lock()
	defer w.dataMu.Unlock()
	return w.data
}
