package pool

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/go-stop-token/internal/console"
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

// DefaultSize is the number of consumers when Config.Size is not positive.
const DefaultSize = 4

// NamePrefix is prepended to the 1-based consumer index.
const NamePrefix = "Worker_"

// ExtraName names the cleanup worker.
const ExtraName = "Extra"

// Config describes a Pool.
type Config[T any] struct {
	Size int

	// FinishEarly lets consumers leave as soon as they are stopped, even
	// with work still queued.
	FinishEarly bool

	// Extra adds a cleanup consumer that does not finish early. It is
	// started by a stop callback on the middle consumer and drains the
	// queue after the pool is stopped.
	Extra bool

	Process ProcessFunc[struct{}, T]
	Logger  *logrus.Logger
}

// Stat is the per-worker processed count.
type Stat struct {
	Name      string
	Processed int64
}

type member struct {
	w         *worker.Worker[struct{}]
	processed atomic.Int64
}

// Pool is a fixed group of consumers sharing one TaskQueue.
type Pool[T any] struct {
	queue   *TaskQueue[T]
	log     *logrus.Entry
	members []*member
	extra   *member
}

// New builds a pool over q. Nothing runs until Start.
func New[T any](q *TaskQueue[T], cfg Config[T]) *Pool[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	size := cfg.Size
	if size <= 0 {
		size = DefaultSize
	}

	p := &Pool[T]{
		queue: q,
		log:   logger.WithFields(console.Fields(console.DefaultName, console.Blue)),
	}
	for i := 0; i < size; i++ {
		p.members = append(p.members, p.newMember(
			fmt.Sprintf("%s%d", NamePrefix, i+1), console.At(i), cfg.FinishEarly, cfg.Process, logger))
	}
	if cfg.Extra {
		p.extra = p.newMember(ExtraName, console.Magenta, false, cfg.Process, logger)
	}
	return p
}

func (p *Pool[T]) newMember(name string, c console.Color, finishEarly bool, process ProcessFunc[struct{}, T], logger *logrus.Logger) *member {
	m := &member{}
	m.w = worker.New(worker.Config[struct{}]{
		Name:          name,
		Color:         c,
		Interruptible: true,
		Body:          Consumer(p.queue, finishEarly, process, func() { m.processed.Add(1) }),
		Logger:        logger,
	})
	return m
}

// Queue returns the shared task queue.
func (p *Pool[T]) Queue() *TaskQueue[T] { return p.queue }

// Size returns the number of consumers, not counting the cleanup worker.
func (p *Pool[T]) Size() int { return len(p.members) }

// Start starts every consumer. When the pool has a cleanup worker, the
// middle consumer gets a stop callback that starts it.
func (p *Pool[T]) Start() error {
	p.log.WithField("size", len(p.members)).Info("Running pool")

	special := len(p.members) / 2
	for i, m := range p.members {
		if err := m.w.Start(); err != nil {
			return fmt.Errorf("pool: start %s: %w", m.w.Name(), err)
		}
		if i == special && p.extra != nil {
			m.w.AddCallback(p.startExtra)
		}
	}
	return nil
}

// startExtra runs on the goroutine that stops the middle consumer, before
// that goroutine's Stop returns.
func (p *Pool[T]) startExtra() {
	if err := p.extra.w.Start(); err != nil {
		p.log.WithError(err).Warn("Cleanup worker not started")
	}
}

// Stop requests a stop on every consumer without waiting. It returns the
// number of consumers stopped.
func (p *Pool[T]) Stop() int {
	p.log.Info("Stopping pool")
	ws := make([]*worker.Worker[struct{}], 0, len(p.members))
	for _, m := range p.members {
		ws = append(ws, m.w)
	}
	return worker.StopAll(ws...)
}

// Wait joins every consumer, then stops the cleanup worker and waits for it
// to drain the queue. It returns early with an error if ctx ends first; the
// workers keep running in that case.
func (p *Pool[T]) Wait(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range p.members {
		g.Go(func() error { return join(gctx, m.w) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if p.extra == nil {
		return nil
	}
	p.log.Info("Waiting for the cleanup worker to finish the jobs")
	p.extra.w.Stop(false)
	return join(ctx, p.extra.w)
}

// Close stops the pool and waits for it without a deadline.
func (p *Pool[T]) Close() error {
	p.Stop()
	return p.Wait(context.Background())
}

func join(ctx context.Context, w *worker.Worker[struct{}]) error {
	done := make(chan struct{})
	go func() {
		w.Join()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pool: join %s: %w", w.Name(), ctx.Err())
	}
}

// Stats returns processed counts for each consumer, followed by the cleanup
// worker if there is one.
func (p *Pool[T]) Stats() []Stat {
	out := make([]Stat, 0, len(p.members)+1)
	for _, m := range p.members {
		out = append(out, Stat{Name: m.w.Name(), Processed: m.processed.Load()})
	}
	if p.extra != nil {
		out = append(out, Stat{Name: p.extra.w.Name(), Processed: p.extra.processed.Load()})
	}
	return out
}

// Processed returns the total number of items handled by the pool.
func (p *Pool[T]) Processed() int64 {
	var n int64
	for _, s := range p.Stats() {
		n += s.Processed
	}
	return n
}
