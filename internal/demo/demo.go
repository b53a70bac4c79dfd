// Package demo holds the walkthrough scenarios run by cmd/stopdemo. Each one
// starts a few workers, lets them run, and ends them a different way: by
// stopping them, by satisfying their data predicate, or by letting them run
// to completion. Delays are multiplied by the configured time scale.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/go-stop-token/internal/cancel"
	"github.com/randomizedcoder/go-stop-token/internal/config"
	"github.com/randomizedcoder/go-stop-token/internal/console"
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

// Env is what a scenario runs against.
type Env struct {
	cfg    *config.Config
	logger *logrus.Logger
	log    *logrus.Entry
	tok    cancel.Token
}

// NewEnv builds an Env. Cancelling ctx cuts every remaining pause in the
// scenario short; workers are still stopped and joined in order. The
// returned func releases the context hook.
func NewEnv(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Env, func()) {
	src := cancel.NewSource()
	if ctx.Err() != nil {
		src.RequestStop()
	}
	release := context.AfterFunc(ctx, func() { src.RequestStop() })

	return &Env{
		cfg:    cfg,
		logger: logger,
		log:    logger.WithFields(console.Fields(console.DefaultName, console.Blue)),
		tok:    src.Token(),
	}, func() { release() }
}

// Interrupted reports whether the Env's context has ended.
func (e *Env) Interrupted() bool { return e.tok.StopRequested() }

func (e *Env) scale(d time.Duration) time.Duration { return e.cfg.Scale(d) }

// pause sleeps for the scaled d unless interrupted.
func (e *Env) pause(d time.Duration) {
	cancel.Sleep(e.tok, e.scale(d))
}

// callbackLog is the log entry for a callback registered by the main flow.
func (e *Env) callbackLog() *logrus.Entry {
	return e.logger.WithFields(console.Fields(console.DefaultName+"_CB", console.Blue))
}

func spawn[T any](e *Env, cfg worker.Config[T]) *worker.Worker[T] {
	cfg.Logger = e.logger
	return worker.New(cfg)
}

type stoppable interface {
	worker.Stopper
	Name() string
}

// stop requests a stop on w without waiting, if w can be stopped.
func (e *Env) stop(w stoppable) {
	if w.Token().StopPossible() {
		e.log.Infof("Stopping %s", w.Name())
		w.Stop(false)
	}
}

// Scenario is one runnable walkthrough.
type Scenario struct {
	Name  string
	Short string
	Run   func(e *Env) error
}

// Scenarios lists every walkthrough in the order RunAll runs them.
var Scenarios = []Scenario{
	{Name: "basic", Short: "Uninterruptible workers run to completion and are joined", Run: Basic},
	{Name: "stopping", Short: "Polling workers stopped one after another", Run: Stopping},
	{Name: "callbacks", Short: "Stop callbacks inside and outside the worker body", Run: Callbacks},
	{Name: "blocking", Short: "Blocked workers released by data or by stop", Run: Blocking},
	{Name: "class", Short: "Worker lifecycle with blocking stop and callback-started worker", Run: Class},
	{Name: "data", Short: "Typed data workers ending on a target value", Run: Data},
	{Name: "pool", Short: "Consumer pool over a shared task queue with a cleanup worker", Run: Pool},
}

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, bool) {
	for _, s := range Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Run runs the named scenario.
func (e *Env) Run(name string) error {
	s, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("demo: unknown scenario %q", name)
	}
	e.log.WithField("scenario", s.Name).Debug(s.Short)
	if err := s.Run(e); err != nil {
		return fmt.Errorf("demo %s: %w", s.Name, err)
	}
	return nil
}

// RunAll runs every scenario in order, stopping at the first error or
// interruption.
func (e *Env) RunAll() error {
	for _, s := range Scenarios {
		if e.Interrupted() {
			return context.Canceled
		}
		e.log.WithField("scenario", s.Name).Info("Running scenario")
		if err := e.Run(s.Name); err != nil {
			return err
		}
	}
	return nil
}
