package worker

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/go-stop-token/internal/cancel"
)

// Poll returns a body that emits a dot every interval until stopped.
func Poll[T any](interval time.Duration) Body[T] {
	return func(ctx *Context[T]) {
		ctx.Log().Info("Starting worker until stopped.")
		for !ctx.Token().StopRequested() {
			ctx.Dot()
			ctx.Sleep(interval)
		}
		ctx.Log().Info("Leaving worker.")
	}
}

// Timed is Poll with an in-body stop callback that reports how long the
// worker ran before the stop arrived.
func Timed[T any](interval time.Duration) Body[T] {
	return func(ctx *Context[T]) {
		start := time.Now()
		reg := ctx.Token().Register(func() {
			ctx.Log().WithField("ms", time.Since(start).Milliseconds()).
				Info("Worker stop requested after run time")
		})
		defer reg.Close()

		Poll[T](interval)(ctx)
	}
}

// Fixed returns a body that runs steps iterations of interval and ignores
// the stop token entirely.
func Fixed[T any](steps int, interval time.Duration) Body[T] {
	return func(ctx *Context[T]) {
		ctx.Log().Info("Starting uninterruptible worker")
		for i := 0; i < steps; i++ {
			ctx.Dot()
			time.Sleep(interval)
		}
		ctx.Log().WithField("stopPossible", ctx.Token().StopPossible()).
			Info("Leaving uninterruptible worker")
	}
}

// Until returns a body that blocks on the data slot until done holds or a
// stop is requested. It never polls.
func Until[T any](done func(T) bool) Body[T] {
	return func(ctx *Context[T]) {
		ctx.Log().Info("Starting worker until data ready or stopped.")
		reg := ctx.Token().Register(func() {
			ctx.Log().Info("Worker terminating...")
		})
		defer reg.Close()

		for {
			ctx.Dot()
			v, ok := ctx.WaitData(done)
			stopped := ctx.Token().StopRequested()
			ctx.Log().WithFields(logrus.Fields{"stop": stopped, "done": ok, "data": v}).
				Info("Woken")
			if ok || stopped {
				break
			}
		}
		ctx.Log().Info("Leaving worker.")
	}
}

// Equals is a done predicate for Until matching a target value.
func Equals[T comparable](target T) func(T) bool {
	return func(v T) bool { return v == target }
}

// Stopper is the part of a Worker used by StopAll.
type Stopper interface {
	Stop(block bool)
	Token() cancel.Token
}

// StopAll requests a stop on every worker that can be stopped, without
// blocking.
func StopAll[S Stopper](workers ...S) int {
	n := 0
	for _, w := range workers {
		if w.Token().StopPossible() {
			w.Stop(false)
			n++
		}
	}
	return n
}
