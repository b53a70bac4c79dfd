package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/go-stop-token/internal/console"
	"github.com/randomizedcoder/go-stop-token/internal/pool"
	"github.com/randomizedcoder/go-stop-token/internal/queue"
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

// itemCost is the processing time per unit of item value.
const itemCost = 100 * time.Millisecond

// Pool runs early-finishing consumers over a shared queue, seeds it with
// size*10 items, stops the pool part way through, and lets the cleanup
// worker finish the rest.
func Pool(e *Env) error {
	cfg := e.cfg
	size := cfg.PoolSize

	backend, err := queue.New[int](cfg.QueueBackend, cfg.QueueCapacity)
	if err != nil {
		return err
	}
	q := pool.NewTaskQueue(backend)

	p := pool.New(q, pool.Config[int]{
		Size:        size,
		FinishEarly: true,
		Extra:       true,
		Process: func(_ *worker.Context[struct{}], v int) {
			time.Sleep(e.scale(time.Duration(v) * itemCost))
		},
		Logger: e.logger,
	})
	if err := p.Start(); err != nil {
		return err
	}
	defer p.Close()

	e.pause(time.Second)

	items := make([]int, 0, size*10)
	total := 0
	for i := size * 10; i > 0; i-- {
		items = append(items, i)
		total += i
	}
	queued, err := e.feed(q, items)
	if err != nil {
		return err
	}
	if queued < len(items) {
		e.log.WithField("rejected", len(items)-queued).Warn("Queue full, some items not queued")
	}

	// Stop the pool early enough that the cleanup worker has work left.
	e.pause(time.Duration(total/size)*itemCost - 10*time.Second/time.Duration(size))

	e.log.Info("Killing worker pool")
	p.Stop()
	e.log.Info("Waiting for the cleanup worker to finish the jobs...")
	if err := p.Wait(context.Background()); err != nil {
		return err
	}

	processed := p.Processed()
	remaining := q.Len()
	e.log.WithFields(logrus.Fields{"processed": processed, "remaining": remaining}).Info("All jobs complete.")
	if processed+int64(remaining) != int64(queued) {
		return fmt.Errorf("queued %d items but processed %d with %d remaining", queued, processed, remaining)
	}
	return nil
}

// feed queues items, directly or through the intake ring when producers are
// configured. It returns how many reached the queue.
func (e *Env) feed(q *pool.TaskQueue[int], items []int) (int, error) {
	producers := e.cfg.Producers
	if producers <= 0 {
		n := 0
		for _, v := range items {
			if q.Push(v) {
				n++
			}
		}
		return n, nil
	}

	in, err := pool.NewIntake(q, pool.IntakeConfig{
		Color:  console.Cyan,
		Ticker: e.cfg.IntakeTicker,
		Report: e.scale(time.Second),
		Logger: e.logger,
	})
	if err != nil {
		return 0, err
	}
	if err := in.Start(); err != nil {
		return 0, err
	}

	done := make(chan struct{}, producers)
	for p := 0; p < producers; p++ {
		prod := in.Producer()
		go func() {
			defer func() { done <- struct{}{} }()
			for i := p; i < len(items); i += producers {
				if !prod.SendWait(e.tok, items[i]) {
					return
				}
			}
		}()
	}
	for p := 0; p < producers; p++ {
		<-done
	}
	if err := in.Close(); err != nil {
		return 0, err
	}
	return int(in.Forwarded()), nil
}
