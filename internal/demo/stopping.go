package demo

import (
	"time"

	"github.com/randomizedcoder/go-stop-token/internal/console"
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

// countdown is an uninterruptible body that sleeps d and leaves.
func countdown(d time.Duration) worker.Body[struct{}] {
	return func(ctx *worker.Context[struct{}]) {
		ctx.Log().WithField("ms", d.Milliseconds()).Info("Worker will terminate after delay")
		time.Sleep(d)
		ctx.Log().Info("Leaving worker.")
	}
}

// Basic starts three uninterruptible workers with different run times and
// joins only the first. The rest are joined when the scenario returns.
func Basic(e *Env) error {
	unnamed := spawn(e, worker.Config[struct{}]{Name: "Unnamed Worker", Body: countdown(e.scale(500 * time.Millisecond))})
	quick := spawn(e, worker.Config[struct{}]{Name: "Quick Worker", Body: countdown(e.scale(25 * time.Millisecond))})
	slow := spawn(e, worker.Config[struct{}]{Name: "Slow Worker", Body: countdown(e.scale(3 * time.Second))})
	defer slow.Close()
	defer quick.Close()
	defer unnamed.Close()

	if err := unnamed.Start(); err != nil {
		return err
	}
	e.pause(10 * time.Millisecond)
	if err := quick.Start(); err != nil {
		return err
	}
	e.pause(10 * time.Millisecond)
	if err := slow.Start(); err != nil {
		return err
	}

	unnamed.Join()
	e.log.Info("About to leave the main flow")
	return nil
}

// Stopping runs three polling workers at different rates and stops them one
// at a time without waiting.
func Stopping(e *Env) error {
	poller := func(name string, c console.Color, d time.Duration) *worker.Worker[struct{}] {
		return spawn(e, worker.Config[struct{}]{
			Name:          name,
			Color:         c,
			Interruptible: true,
			Body:          worker.Poll[struct{}](e.scale(d)),
		})
	}
	magenta := poller("Unnamed Magenta Worker", console.Magenta, 100*time.Millisecond)
	quick := poller("Quick Red Worker", console.Red, 25*time.Millisecond)
	slow := poller("Slow Green Worker", console.Green, 250*time.Millisecond)
	defer slow.Close()
	defer quick.Close()
	defer magenta.Close()

	for _, w := range []*worker.Worker[struct{}]{magenta, quick, slow} {
		if err := w.Start(); err != nil {
			return err
		}
		e.pause(500 * time.Millisecond)
	}
	e.pause(2500 * time.Millisecond)

	e.stop(magenta)
	e.pause(time.Second)
	e.stop(quick)
	e.pause(time.Second)
	e.stop(slow)

	e.log.Info("About to leave the main flow")
	return nil
}

// Callbacks runs workers whose bodies report their run time from a stop
// callback, and adds a second callback on the quick worker from outside.
func Callbacks(e *Env) error {
	quick := spawn(e, worker.Config[struct{}]{
		Name:          "Quick Red Worker",
		Color:         console.Red,
		Interruptible: true,
		Body:          worker.Timed[struct{}](e.scale(25 * time.Millisecond)),
	})
	slow := spawn(e, worker.Config[struct{}]{
		Name:          "Slow Green Worker",
		Color:         console.Green,
		Interruptible: true,
		Body:          worker.Timed[struct{}](e.scale(250 * time.Millisecond)),
	})
	defer slow.Close()
	defer quick.Close()

	if err := quick.Start(); err != nil {
		return err
	}
	reg := quick.AddCallback(func() {
		e.callbackLog().Info(">> Stop callback triggered from the quick worker <<")
	})
	defer reg.Close()

	e.pause(500 * time.Millisecond)
	if err := slow.Start(); err != nil {
		return err
	}
	e.pause(3 * time.Second)

	e.stop(quick)
	e.pause(2 * time.Second)
	e.stop(slow)

	e.log.Info("About to leave the main flow")
	return nil
}
