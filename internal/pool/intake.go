package pool

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	ring "github.com/randomizedcoder/go-lock-free-ring"
	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/go-stop-token/internal/cancel"
	"github.com/randomizedcoder/go-stop-token/internal/console"
	"github.com/randomizedcoder/go-stop-token/internal/tick"
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

// Ring geometry for the intake. Producers are spread over the shards by id.
const (
	IntakeCapacity = 1024
	IntakeShards   = 4
)

// Intake defaults.
const (
	DefaultIntakeIdle   = time.Millisecond
	DefaultReportPeriod = time.Second
	DefaultFlushTimeout = 5 * time.Second

	maxFlushBackoff = 50 * time.Millisecond
)

// ErrDropped is returned by Close when accepted items could not be pushed
// into a full queue before the flush timeout.
var ErrDropped = errors.New("pool: intake dropped accepted items")

// IntakeConfig describes an Intake.
type IntakeConfig struct {
	Name  string
	Color console.Color

	// Idle is how long the dispatcher sleeps when the ring is empty.
	Idle time.Duration

	// Ticker paces the throughput report; one of the tick kinds.
	Ticker string
	Report time.Duration

	// FlushTimeout bounds how long Close keeps retrying a full queue.
	FlushTimeout time.Duration

	Logger *logrus.Logger
}

// Intake lets many goroutines feed a TaskQueue without taking its lock.
// Producers write into a sharded lock-free ring; one dispatcher worker reads
// the ring and pushes into the queue.
type Intake[T any] struct {
	ring   *ring.ShardedRing
	queue  *TaskQueue[T]
	idle   time.Duration
	flush  time.Duration
	report tick.Ticker
	w      *worker.Worker[struct{}]

	nextID   atomic.Uint64
	closed   atomic.Bool
	inflight atomic.Int64

	accepted  atomic.Int64
	rejected  atomic.Int64
	forwarded atomic.Int64
	dropped   atomic.Int64

	// pending holds items the queue refused; only the dispatcher touches it.
	pending []T
}

// NewIntake builds an Intake feeding q. Call Start to run the dispatcher.
func NewIntake[T any](q *TaskQueue[T], cfg IntakeConfig) (*Intake[T], error) {
	r, err := ring.NewShardedRing(IntakeCapacity, IntakeShards)
	if err != nil {
		return nil, fmt.Errorf("pool: intake ring: %w", err)
	}

	if cfg.Name == "" {
		cfg.Name = "Intake"
	}
	if cfg.Idle <= 0 {
		cfg.Idle = DefaultIntakeIdle
	}
	if cfg.Report <= 0 {
		cfg.Report = DefaultReportPeriod
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}
	report, err := tick.New(cfg.Ticker, cfg.Report)
	if err != nil {
		return nil, fmt.Errorf("pool: intake report: %w", err)
	}

	in := &Intake[T]{
		ring:   r,
		queue:  q,
		idle:   cfg.Idle,
		flush:  cfg.FlushTimeout,
		report: report,
	}
	in.w = worker.New(worker.Config[struct{}]{
		Name:          cfg.Name,
		Color:         cfg.Color,
		Interruptible: true,
		Body:          in.dispatch,
		Logger:        cfg.Logger,
	})
	return in, nil
}

// Start runs the dispatcher.
func (in *Intake[T]) Start() error {
	return in.w.Start()
}

// Producer is one writer into an Intake. A Producer must be used by one
// goroutine at a time.
type Producer[T any] struct {
	in *Intake[T]
	id uint64
}

// Producer returns a writer with its own shard affinity.
func (in *Intake[T]) Producer() *Producer[T] {
	return &Producer[T]{in: in, id: in.nextID.Add(1) - 1}
}

// ID returns the producer id used to pick a shard.
func (p *Producer[T]) ID() uint64 { return p.id }

// Send offers v to the intake. It returns false if the producer's shard is
// full or the intake has been closed.
func (p *Producer[T]) Send(v T) bool {
	in := p.in
	in.inflight.Add(1)
	defer in.inflight.Add(-1)

	if in.closed.Load() {
		return false
	}
	if !in.ring.Write(p.id, v) {
		in.rejected.Add(1)
		return false
	}
	in.accepted.Add(1)
	return true
}

// SendWait retries Send until it succeeds, the intake closes, or a stop is
// requested on tok.
func (p *Producer[T]) SendWait(tok cancel.Token, v T) bool {
	for !p.Send(v) {
		if p.in.closed.Load() || tok.StopRequested() {
			return false
		}
		runtime.Gosched()
	}
	return true
}

func (in *Intake[T]) dispatch(ctx *worker.Context[struct{}]) {
	ctx.Log().Info("Starting intake dispatcher")
	defer in.report.Stop()

	var reported int64
	for !ctx.Token().StopRequested() {
		n := in.forward()
		if in.report.Tick() {
			total := in.forwarded.Load()
			ctx.Log().WithFields(in.fields()).
				WithField("per_sec", int64(tick.Rate(in.report, total-reported))).
				Info("Intake progress")
			reported = total
		}
		if n == 0 {
			ctx.Sleep(in.idle)
		}
	}

	// Close waits for in-flight sends before stopping us, so the flush
	// sees every accepted item.
	if n := in.flushAll(); n > 0 {
		ctx.Log().WithFields(in.fields()).Warnf("Dropped %d items on a full queue", n)
	}
	ctx.Log().WithFields(in.fields()).Info("Leaving intake dispatcher")
}

// flushAll forwards until the ring and pending are both empty, backing off
// while the queue is full. Whatever is left after the flush timeout is
// discarded and counted as dropped.
func (in *Intake[T]) flushAll() int64 {
	deadline := time.Now().Add(in.flush)
	backoff := in.idle
	for {
		if in.forward() > 0 {
			backoff = in.idle
		}
		// forward only returns with nothing pending once the ring is empty.
		if len(in.pending) == 0 {
			return 0
		}
		if time.Now().After(deadline) {
			break
		}
		time.Sleep(backoff)
		backoff = min(2*backoff, maxFlushBackoff)
	}

	n := int64(len(in.pending))
	in.pending = nil
	for {
		if _, ok := in.ring.TryRead(); !ok {
			break
		}
		n++
	}
	in.dropped.Add(n)
	return n
}

// forward moves items from the ring into the queue and returns how many
// reached it.
func (in *Intake[T]) forward() int {
	n := 0
	defer func() { in.forwarded.Add(int64(n)) }()

	for len(in.pending) > 0 {
		if !in.queue.Push(in.pending[0]) {
			return n
		}
		in.pending = in.pending[1:]
		n++
	}
	for {
		raw, ok := in.ring.TryRead()
		if !ok {
			return n
		}
		v, ok := raw.(T)
		if !ok {
			continue
		}
		if !in.queue.Push(v) {
			in.pending = append(in.pending, v)
			return n
		}
		n++
	}
}

func (in *Intake[T]) fields() logrus.Fields {
	return logrus.Fields{
		"accepted":  in.accepted.Load(),
		"rejected":  in.rejected.Load(),
		"forwarded": in.forwarded.Load(),
		"pending":   len(in.pending),
		"dropped":   in.dropped.Load(),
	}
}

// Close refuses further sends, waits for sends already under way, then
// stops the dispatcher after a final flush into the queue. A bounded queue
// must keep being drained meanwhile; items still refused after the flush
// timeout are dropped and reported through ErrDropped.
func (in *Intake[T]) Close() error {
	in.closed.Store(true)
	for in.inflight.Load() > 0 {
		runtime.Gosched()
	}
	if err := in.w.Close(); err != nil {
		return err
	}
	if n := in.dropped.Load(); n > 0 {
		return fmt.Errorf("%w: %d items", ErrDropped, n)
	}
	return nil
}

// Accepted returns the number of items written into the ring.
func (in *Intake[T]) Accepted() int64 { return in.accepted.Load() }

// Rejected returns the number of sends refused because a shard was full.
func (in *Intake[T]) Rejected() int64 { return in.rejected.Load() }

// Forwarded returns the number of items pushed into the queue.
func (in *Intake[T]) Forwarded() int64 { return in.forwarded.Load() }

// Dropped returns the number of accepted items discarded by Close.
func (in *Intake[T]) Dropped() int64 { return in.dropped.Load() }
