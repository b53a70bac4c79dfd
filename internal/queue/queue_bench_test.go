package queue_test

import (
	"sync"
	"testing"

	"github.com/randomizedcoder/go-stop-token/internal/queue"
)

// Sink variables to prevent compiler from eliminating benchmark loops
var sinkInt int
var sinkBool bool

var benchBackends = []string{queue.BackendFIFO, queue.BackendChannel, queue.BackendRing}

// BenchmarkQueue_PushPop measures one push and one pop per iteration through
// the interface, the way the task queue drives a backend.
func BenchmarkQueue_PushPop(b *testing.B) {
	for _, name := range benchBackends {
		b.Run(name, func(b *testing.B) {
			q, err := queue.New[int](name, 1024)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()

			var val int
			var ok bool
			for i := 0; i < b.N; i++ {
				q.Push(i)
				val, ok = q.Pop()
			}
			sinkInt = val
			sinkBool = ok
		})
	}
}

// BenchmarkQueue_Locked_Parallel adds the caller-side mutex and contention
// from parallel producers/consumers.
func BenchmarkQueue_Locked_Parallel(b *testing.B) {
	for _, name := range benchBackends {
		b.Run(name, func(b *testing.B) {
			q, err := queue.New[int](name, 1024)
			if err != nil {
				b.Fatal(err)
			}
			var mu sync.Mutex
			b.ReportAllocs()
			b.ResetTimer()

			b.RunParallel(func(pb *testing.PB) {
				var val int
				i := 0
				for pb.Next() {
					mu.Lock()
					q.Push(i)
					val, _ = q.Pop()
					mu.Unlock()
					i++
				}
				sinkInt = val
			})
		})
	}
}

// BenchmarkQueue_FIFO_Burst pushes a burst then drains it, exercising growth
// and compaction.
func BenchmarkQueue_FIFO_Burst(b *testing.B) {
	q := queue.NewFIFO[int]()
	b.ReportAllocs()
	b.ResetTimer()

	var val int
	for i := 0; i < b.N; i++ {
		for j := 0; j < 64; j++ {
			q.Push(j)
		}
		for j := 0; j < 64; j++ {
			val, _ = q.Pop()
		}
	}
	sinkInt = val
}
