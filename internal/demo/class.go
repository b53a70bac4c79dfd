package demo

import (
	"time"

	"github.com/randomizedcoder/go-stop-token/internal/console"
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

// pausing polls until stopped, then takes pause to wind down so a blocking
// Stop visibly waits for it.
func pausing(interval, pause time.Duration) worker.Body[struct{}] {
	return func(ctx *worker.Context[struct{}]) {
		ctx.Log().Info("Starting interruptible worker")
		for !ctx.Token().StopRequested() {
			ctx.Dot()
			ctx.Sleep(interval)
		}
		ctx.Log().Info("Adding deliberate pause...")
		time.Sleep(pause)
		ctx.Log().Info("Leaving interruptible worker")
	}
}

// Class walks one worker through its whole lifecycle: an uninterruptible
// worker is run and joined, then an interruptible one is started whose stop
// callback starts a second; the first is stopped with a blocking Stop.
func Class(e *Env) error {
	fixed := spawn(e, worker.Config[struct{}]{
		Name:  "Uninterruptible",
		Color: console.Green,
		Body:  worker.Fixed[struct{}](worker.DefaultFixedSteps, e.scale(worker.DefaultFixedInterval)),
	})
	first := spawn(e, worker.Config[struct{}]{
		Name:          "Interruptible 1",
		Color:         console.Red,
		Interruptible: true,
		Body:          pausing(e.scale(worker.DefaultPollInterval), e.scale(time.Second)),
	})
	second := spawn(e, worker.Config[struct{}]{
		Name:          "Interruptible 2",
		Color:         console.Magenta,
		Interruptible: true,
		Body:          pausing(e.scale(worker.DefaultPollInterval), e.scale(time.Second)),
	})
	defer second.Close()
	defer first.Close()
	defer fixed.Close()

	e.pause(time.Second)
	if err := fixed.Start(); err != nil {
		return err
	}
	fixed.Join()

	if err := first.Start(); err != nil {
		return err
	}
	reg := first.AddCallback(func() {
		e.callbackLog().Info("Callback triggered to start second worker")
		if err := second.Start(); err != nil {
			e.log.WithError(err).Warn("Second worker not started")
		}
	})
	defer reg.Close()

	e.pause(3 * time.Second)
	e.log.Infof("Stopping and blocking on %s", first.Name())
	first.Stop(true)
	e.log.Infof("%s has completed.", first.Name())

	e.pause(2 * time.Second)
	second.Stop(false)
	return nil
}
