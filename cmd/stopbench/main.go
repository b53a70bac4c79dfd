// Command stopbench measures what a polling loop pays per iteration to check
// for a stop, and what a callback registration costs.
//
// Usage:
//
//	go run ./cmd/stopbench -n 10000000
package main

import (
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/randomizedcoder/go-stop-token/internal/cancel"
	"github.com/randomizedcoder/go-stop-token/internal/tick"
)

type result struct {
	name string
	dur  time.Duration
}

func measure(name string, n int, check func() bool) result {
	start := time.Now()
	for i := 0; i < n; i++ {
		if check() {
			break
		}
	}
	return result{name: name, dur: time.Since(start)}
}

func main() {
	iterations := flag.IntP("iterations", "n", 10_000_000, "number of iterations")
	kind := flag.StringP("ticker", "t", tick.KindAtomic, "ticker kind for the token+tick loop")
	flag.Parse()
	n := *iterations

	fmt.Printf("Benchmarking stop checks (%d iterations)\n", n)
	fmt.Println("─────────────────────────────────────────────────")

	src := cancel.NewSource()
	tok := src.Token()
	flagOnly := cancel.NewAtomic()
	ctx, release := tok.Context()
	defer release()
	done := ctx.Done()

	ticker, err := tick.New(*kind, time.Hour)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer ticker.Stop()

	results := []result{
		measure("Atomic", n, flagOnly.Done),
		measure("Token", n, tok.StopRequested),
		measure("Context", n, func() bool {
			select {
			case <-done:
				return true
			default:
				return false
			}
		}),
		measure("Token+"+*kind, n, func() bool {
			ticker.Tick()
			return tok.StopRequested()
		}),
	}

	regN := n / 100
	if regN < 1 {
		regN = 1
	}
	start := time.Now()
	for i := 0; i < regN; i++ {
		tok.Register(func() {}).Close()
	}
	regDur := time.Since(start)

	base := float64(results[0].dur.Nanoseconds()) / float64(n)
	fmt.Printf("\nResults:\n")
	for _, r := range results {
		perOp := float64(r.dur.Nanoseconds()) / float64(n)
		fmt.Printf("  %-14s %v (%.2f ns/op, %.2fx atomic)\n", r.name+":", r.dur, perOp, perOp/base)
	}
	fmt.Printf("  %-14s %v (%.2f ns/op, %d iterations)\n", "Register:", regDur,
		float64(regDur.Nanoseconds())/float64(regN), regN)

	fmt.Printf("\nThroughput (theoretical max):\n")
	for _, r := range results {
		perOp := float64(r.dur.Nanoseconds()) / float64(n)
		fmt.Printf("  %-14s %.2f M ops/sec\n", r.name+":", 1000/perOp)
	}
}
