package pool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/randomizedcoder/go-stop-token/internal/pool"
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

func sleepPerItem(d time.Duration) pool.ProcessFunc[struct{}, int] {
	return func(_ *worker.Context[struct{}], _ int) {
		time.Sleep(d)
	}
}

// Four early-finishing consumers stopped mid-drain: every item is either
// processed once or still queued.
func TestPool_Conservation(t *testing.T) {
	q := pool.NewTaskQueue[int](nil)
	p := pool.New(q, pool.Config[int]{
		Size:        4,
		FinishEarly: true,
		Process:     sleepPerItem(5 * time.Millisecond),
		Logger:      quietLogger(),
	})
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}

	q.PushAll(seq(1, 40)...)
	time.Sleep(15 * time.Millisecond)

	if n := p.Stop(); n != 4 {
		t.Errorf("Stop() stopped %d workers, want 4", n)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	processed := p.Processed()
	remaining := q.Len()
	if processed+int64(remaining) != 40 {
		t.Errorf("processed %d + remaining %d != 40", processed, remaining)
	}
	if remaining == 0 {
		t.Log("queue fully drained before stop; timing was generous")
	}
}

// The cleanup worker, started by the middle consumer's stop callback,
// drains whatever the early finishers left behind.
func TestPool_ExtraDrains(t *testing.T) {
	q := pool.NewTaskQueue[int](nil)
	p := pool.New(q, pool.Config[int]{
		Size:        4,
		FinishEarly: true,
		Extra:       true,
		Process:     sleepPerItem(time.Millisecond),
		Logger:      quietLogger(),
	})
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}

	q.PushAll(seq(1, 40)...)
	time.Sleep(5 * time.Millisecond)

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	if q.Len() != 0 {
		t.Errorf("expected empty queue after cleanup, %d left", q.Len())
	}
	if p.Processed() != 40 {
		t.Errorf("Processed() = %d, want 40", p.Processed())
	}

	stats := p.Stats()
	if len(stats) != 5 || stats[4].Name != pool.ExtraName {
		t.Errorf("unexpected stats %+v", stats)
	}
}

// Without a stop, consumers keep waiting for work, so Wait only returns
// when its context ends.
func TestPool_WaitDeadline(t *testing.T) {
	q := pool.NewTaskQueue[int](nil)
	p := pool.New(q, pool.Config[int]{Size: 2, Logger: quietLogger()})
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want DeadlineExceeded", err)
	}
}

func TestPool_DefaultSize(t *testing.T) {
	p := pool.New(pool.NewTaskQueue[int](nil), pool.Config[int]{Logger: quietLogger()})
	if p.Size() != pool.DefaultSize {
		t.Errorf("Size() = %d, want %d", p.Size(), pool.DefaultSize)
	}
}

func TestPool_StartTwice(t *testing.T) {
	p := pool.New(pool.NewTaskQueue[int](nil), pool.Config[int]{Size: 1, Logger: quietLogger()})
	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	if err := p.Start(); !errors.Is(err, worker.ErrAlreadyRunning) {
		t.Errorf("second Start() = %v, want ErrAlreadyRunning", err)
	}
}
