package combined_test

import (
	"io"
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/go-stop-token/internal/cancel"
	"github.com/randomizedcoder/go-stop-token/internal/pool"
)

// ============================================================================
// Feeding a task queue from many producers
// ============================================================================
//
// Intake: producers write into go-lock-free-ring's sharded MPSC ring and a
// single dispatcher moves items into the TaskQueue, so producers never touch
// the queue lock.
// Direct: every producer pushes into the TaskQueue itself and contends on
// its mutex.

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// drainConsumer empties q until src is stopped.
func drainConsumer(q *pool.TaskQueue[int], src cancel.Source, done chan<- struct{}) {
	defer close(done)
	for {
		if _, ok := q.Take(src.Token(), false); !ok {
			return
		}
	}
}

func benchIntake(b *testing.B, producers int) {
	q := pool.NewTaskQueue[int](nil)
	in, err := pool.NewIntake(q, pool.IntakeConfig{Logger: quietLogger()})
	if err != nil {
		b.Fatal(err)
	}
	if err := in.Start(); err != nil {
		b.Fatal(err)
	}
	src := cancel.NewSource()
	done := make(chan struct{})
	go drainConsumer(q, src, done)

	b.SetParallelism(producers)
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		prod := in.Producer()
		i := 0
		for pb.Next() {
			for !prod.Send(i) {
				runtime.Gosched()
			}
			i++
		}
	})

	b.StopTimer()
	in.Close()
	src.RequestStop()
	<-done
}

func benchDirect(b *testing.B, producers int) {
	q := pool.NewTaskQueue[int](nil)
	src := cancel.NewSource()
	done := make(chan struct{})
	go drainConsumer(q, src, done)

	b.SetParallelism(producers)
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Push(i)
			i++
		}
	})

	b.StopTimer()
	src.RequestStop()
	<-done
}

func BenchmarkFeed_Intake_4P(b *testing.B) { benchIntake(b, 4) }
func BenchmarkFeed_Direct_4P(b *testing.B) { benchDirect(b, 4) }
func BenchmarkFeed_Intake_8P(b *testing.B) { benchIntake(b, 8) }
func BenchmarkFeed_Direct_8P(b *testing.B) { benchDirect(b, 8) }
