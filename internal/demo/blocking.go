package demo

import (
	"fmt"
	"time"

	"github.com/randomizedcoder/go-stop-token/internal/console"
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

func flagWorker(e *Env, name string, c console.Color) *worker.Worker[bool] {
	return spawn(e, worker.Config[bool]{
		Name:          name,
		Color:         c,
		Interruptible: true,
		Body:          worker.Until(worker.Equals(true)),
	})
}

// Blocking parks two workers on their data slot. One is released by setting
// its data, the other by a stop request.
func Blocking(e *Env) error {
	released := flagWorker(e, "Data Release Red", console.Red)
	stopped := flagWorker(e, "Manually Stopped Green", console.Green)
	defer stopped.Close()
	defer released.Close()

	if err := released.Start(); err != nil {
		return err
	}
	e.pause(500 * time.Millisecond)
	if err := stopped.Start(); err != nil {
		return err
	}
	e.pause(3 * time.Second)

	e.log.Infof("Unblocking %s data", released.Name())
	released.SetData(true)
	e.pause(2 * time.Second)

	e.stop(stopped)
	e.log.Info("About to leave the main flow")
	return nil
}

// Data runs typed data workers: two flag workers and two integer workers
// waiting for a target value. The second integer worker is started by a
// stop callback on the first and then walked past its target.
func Data(e *Env) error {
	const firstTarget, secondTarget = 10, 3

	flag1 := flagWorker(e, "Bool Worker 1", console.Green)
	flag2 := flagWorker(e, "Bool Worker 2", console.Magenta)
	target := func(n int, c console.Color) *worker.Worker[int] {
		return spawn(e, worker.Config[int]{
			Name:          fmt.Sprintf("Target Worker (%d)", n),
			Color:         c,
			Interruptible: true,
			Body:          worker.Until(worker.Equals(n)),
		})
	}
	int1 := target(firstTarget, console.Red)
	int2 := target(secondTarget, console.Yellow)
	defer int2.Close()
	defer int1.Close()
	defer flag2.Close()
	defer flag1.Close()

	if err := flag1.Start(); err != nil {
		return err
	}
	e.pause(10 * time.Millisecond)
	if err := flag2.Start(); err != nil {
		return err
	}
	e.pause(10 * time.Millisecond)
	if err := int1.Start(); err != nil {
		return err
	}
	e.pause(4 * time.Second)

	flag1.SetData(true)
	flag2.Stop(true)

	reg := int1.AddCallback(func() {
		e.callbackLog().Info("Starting worker")
		if err := int2.Start(); err != nil {
			e.log.WithError(err).Warn("Second target worker not started")
		}
	})
	defer reg.Close()

	e.pause(time.Second)
	int1.Stop(true)

	for i := secondTarget - 2; i < secondTarget+3; i++ {
		e.log.WithField("value", i).Info("Setting target")
		int2.SetData(i)
		e.pause(time.Second)
	}
	return nil
}
