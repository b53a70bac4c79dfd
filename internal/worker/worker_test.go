package worker_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/go-stop-token/internal/cancel"
	"github.com/randomizedcoder/go-stop-token/internal/console"
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// syncBuffer lets the test read log output written from worker goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func bufferLogger() (*logrus.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&console.Formatter{DisableColors: true})
	l.SetLevel(logrus.InfoLevel)
	return l, buf
}

// within fails the test if fn does not return in time.
func within(t *testing.T, d time.Duration, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("%s did not return within %v", what, d)
	}
}

func waitState[T any](t *testing.T, w *worker.Worker[T], want worker.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for w.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected state %v, still %v", want, w.State())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWorker_NeverStarted(t *testing.T) {
	w := worker.New(worker.Config[int]{Name: "idle", Interruptible: true, Data: 7, Logger: quietLogger()})

	if w.State() != worker.Constructed {
		t.Errorf("expected Constructed, got %v", w.State())
	}
	if w.Token().StopPossible() {
		t.Error("expected a detached token before Start()")
	}

	within(t, time.Second, "Stop/Join on an unstarted worker", func() {
		w.Stop(false)
		w.Stop(true)
		w.Join()
		_ = w.Close()
	})

	called := false
	reg := w.AddCallback(func() { called = true })
	if reg.Active() || called {
		t.Error("expected an inert registration on an unstarted worker")
	}
	if w.SetData(1) {
		t.Error("expected SetData() = false before Start()")
	}
	if w.Data() != 7 {
		t.Errorf("expected seed data 7, got %d", w.Data())
	}
	if w.State() != worker.Constructed {
		t.Errorf("expected state unchanged, got %v", w.State())
	}
}

func TestWorker_StopThenBlockingStop(t *testing.T) {
	w := worker.New(worker.Config[struct{}]{
		Name:          "poller",
		Interruptible: true,
		Body:          worker.Poll[struct{}](5 * time.Millisecond),
		Logger:        quietLogger(),
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	w.Stop(false)
	within(t, 2*time.Second, "Stop(true) after Stop(false)", func() { w.Stop(true) })

	if w.State() != worker.Terminated {
		t.Errorf("expected Terminated, got %v", w.State())
	}
	within(t, time.Second, "repeated Join", func() {
		w.Join()
		w.Stop(true)
	})
}

func TestWorker_StateTransitions(t *testing.T) {
	release := make(chan struct{})
	w := worker.New(worker.Config[struct{}]{
		Name:          "states",
		Interruptible: true,
		Body: func(ctx *worker.Context[struct{}]) {
			for !ctx.Token().StopRequested() {
				ctx.Sleep(time.Millisecond)
			}
			<-release
		},
		Logger: quietLogger(),
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	waitState(t, w, worker.Running)

	w.Stop(false)
	if w.State() != worker.StopRequested {
		t.Errorf("expected StopRequested, got %v", w.State())
	}

	joined := make(chan struct{})
	go func() {
		w.Join()
		close(joined)
	}()
	waitState(t, w, worker.Joining)

	close(release)
	<-joined
	if w.State() != worker.Terminated {
		t.Errorf("expected Terminated, got %v", w.State())
	}
}

func TestWorker_Uninterruptible(t *testing.T) {
	var sawPossible atomic.Bool
	sawPossible.Store(true)

	w := worker.New(worker.Config[struct{}]{
		Name: "stubborn",
		Body: func(ctx *worker.Context[struct{}]) {
			sawPossible.Store(ctx.Token().StopPossible())
			worker.Fixed[struct{}](3, 10*time.Millisecond)(ctx)
		},
		Logger: quietLogger(),
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Bool
	w.AddCallback(func() { fired.Store(true) })

	start := time.Now()
	within(t, 2*time.Second, "Stop(true) on an uninterruptible worker", func() { w.Stop(true) })

	if time.Since(start) < 20*time.Millisecond {
		t.Error("expected the uninterruptible body to run to completion")
	}
	if sawPossible.Load() {
		t.Error("expected the body to receive a detached token")
	}
	if !fired.Load() {
		t.Error("expected stop callbacks to fire for an uninterruptible worker")
	}
}

func TestWorker_AddCallback(t *testing.T) {
	w := worker.New(worker.Config[struct{}]{Name: "cb", Interruptible: true, Logger: quietLogger()})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	var calls atomic.Int32
	reg := w.AddCallback(func() { calls.Add(1) })
	defer reg.Close()

	w.Stop(false)
	w.Stop(false)
	if calls.Load() != 1 {
		t.Errorf("expected one callback call, got %d", calls.Load())
	}

	late := 0
	w.AddCallback(func() { late++ })
	if late != 1 {
		t.Errorf("expected a late callback to run inline, got %d calls", late)
	}
}

func TestWorker_SetDataCompletes(t *testing.T) {
	w := worker.New(worker.Config[int]{
		Name:          "target",
		Interruptible: true,
		Body:          worker.Until(worker.Equals(3)),
		Logger:        quietLogger(),
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for _, v := range []int{1, 2} {
		if !w.SetData(v) {
			t.Fatalf("expected SetData(%d) = true", v)
		}
	}
	time.Sleep(10 * time.Millisecond)
	if w.State() == worker.Terminated {
		t.Fatal("worker ended before its target was reached")
	}

	w.SetData(3)
	within(t, 2*time.Second, "Join after reaching the target", w.Join)

	if w.Token().StopRequested() {
		t.Error("expected the worker to finish without a stop request")
	}
	if w.SetData(4) {
		t.Error("expected SetData() = false once joined")
	}
	if w.Data() != 3 {
		t.Errorf("expected data 3, got %d", w.Data())
	}
}

func TestWorker_SetDataAfterStop(t *testing.T) {
	w := worker.New(worker.Config[bool]{
		Name:          "flag",
		Interruptible: true,
		Body:          worker.Until(func(b bool) bool { return b }),
		Logger:        quietLogger(),
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	w.Stop(false)
	if w.SetData(true) {
		t.Error("expected SetData() = false after a stop request")
	}
	within(t, 2*time.Second, "Join after stop", w.Join)
	if w.Data() {
		t.Error("expected the data slot to be unchanged")
	}
}

func TestWorker_CallbackReadsDataWhileBodyWaits(t *testing.T) {
	w := worker.New(worker.Config[int]{
		Name:          "waiter",
		Interruptible: true,
		Body:          worker.Until(worker.Equals(3)),
		Logger:        quietLogger(),
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	waitState(t, w, worker.Running)
	time.Sleep(10 * time.Millisecond)

	var seen atomic.Int64
	seen.Store(-1)
	reg := w.AddCallback(func() {
		time.Sleep(20 * time.Millisecond)
		seen.Store(int64(w.Data()))
	})
	defer reg.Close()

	within(t, 2*time.Second, "Stop(true) with a callback reading the data slot", func() { w.Stop(true) })
	if seen.Load() != 0 {
		t.Errorf("expected the callback to read 0, got %d", seen.Load())
	}
}

func TestWorker_BodyReturnsOnItsOwn(t *testing.T) {
	w := worker.New(worker.Config[int]{
		Name:          "finisher",
		Interruptible: true,
		Body:          worker.Until(worker.Equals(3)),
		Logger:        quietLogger(),
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	w.SetData(3)
	waitState(t, w, worker.Terminated)

	var fired atomic.Bool
	w.AddCallback(func() { fired.Store(true) })

	w.Stop(false)
	if w.State() != worker.Terminated {
		t.Errorf("expected Terminated after the body returned, got %v", w.State())
	}
	if !fired.Load() {
		t.Error("expected stop callbacks to fire after the body returned")
	}
	within(t, time.Second, "Join after the body returned", w.Join)

	if err := w.Start(); err != nil {
		t.Errorf("expected restart once the body returned, got %v", err)
	}
}

func TestWorker_Restart(t *testing.T) {
	w := worker.New(worker.Config[struct{}]{
		Name:          "again",
		Interruptible: true,
		Body:          worker.Poll[struct{}](time.Millisecond),
		Logger:        quietLogger(),
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	first := w.Token()

	if err := w.Start(); !errors.Is(err, worker.ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}

	w.Stop(true)
	if err := w.Start(); err != nil {
		t.Fatalf("expected restart after join, got %v", err)
	}
	defer w.Close()

	if !first.StopRequested() {
		t.Error("expected the first run's token to stay stopped")
	}
	if w.Token().StopRequested() {
		t.Error("expected a fresh token for the second run")
	}
}

func TestWorker_CallbackStartsAnother(t *testing.T) {
	first := worker.New(worker.Config[struct{}]{Name: "first", Interruptible: true, Logger: quietLogger()})
	second := worker.New(worker.Config[struct{}]{Name: "second", Interruptible: true, Logger: quietLogger()})
	defer second.Close()
	defer first.Close()

	if err := first.Start(); err != nil {
		t.Fatal(err)
	}
	reg := first.AddCallback(func() {
		if err := second.Start(); err != nil {
			t.Errorf("starting second worker: %v", err)
		}
	})
	defer reg.Close()

	within(t, 2*time.Second, "first.Stop(true)", func() { first.Stop(true) })

	if second.State() == worker.Constructed {
		t.Error("expected the stop callback to have started the second worker")
	}
}

func TestWorker_TimedLogsRunTime(t *testing.T) {
	logger, buf := bufferLogger()
	w := worker.New(worker.Config[struct{}]{
		Name:          "Quick Red",
		Color:         console.Red,
		Interruptible: true,
		Body:          worker.Timed[struct{}](time.Millisecond),
		Logger:        logger,
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	w.Stop(true)

	out := buf.String()
	for _, want := range []string{
		"Quick Red: Starting worker until stopped.",
		"Quick Red: Worker stop requested after run time ms=",
		"Quick Red: Leaving worker.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWorker_UntilStoppedLogs(t *testing.T) {
	logger, buf := bufferLogger()
	w := worker.New(worker.Config[bool]{
		Name:          "Manually Stopped Green",
		Interruptible: true,
		Body:          worker.Until(func(b bool) bool { return b }),
		Logger:        logger,
	})
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	waitState(t, w, worker.Running)
	w.Stop(true)

	out := buf.String()
	if !strings.Contains(out, "Worker terminating...") {
		t.Errorf("expected the in-body stop callback to log, got:\n%s", out)
	}
	if !strings.Contains(out, "Woken data=false done=false stop=true") {
		t.Errorf("expected the wake to report a stop, got:\n%s", out)
	}
}

func TestStopAll(t *testing.T) {
	var ws []*worker.Worker[struct{}]
	for i := 0; i < 3; i++ {
		ws = append(ws, worker.New(worker.Config[struct{}]{Interruptible: true, Logger: quietLogger()}))
	}
	for _, w := range ws[:2] {
		if err := w.Start(); err != nil {
			t.Fatal(err)
		}
	}

	if n := worker.StopAll(ws...); n != 2 {
		t.Errorf("expected 2 workers stopped, got %d", n)
	}
	for _, w := range ws {
		within(t, 2*time.Second, "Join", w.Join)
	}
	var tok cancel.Token = ws[0].Token()
	if !tok.StopRequested() {
		t.Error("expected the started worker to be stopped")
	}
}

func TestState_String(t *testing.T) {
	if worker.Joining.String() != "Joining" {
		t.Errorf("unexpected %q", worker.Joining.String())
	}
	if worker.State(99).String() != "Unknown" {
		t.Errorf("unexpected %q", worker.State(99).String())
	}
}
