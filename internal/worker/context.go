package worker

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/randomizedcoder/go-stop-token/internal/cancel"
	"github.com/randomizedcoder/go-stop-token/internal/console"
)

// Context is what a Body sees of its Worker.
type Context[T any] struct {
	w   *Worker[T]
	tok cancel.Token
}

// Token is the run's stop token; detached for uninterruptible workers.
func (c *Context[T]) Token() cancel.Token { return c.tok }

// Name returns the worker's name.
func (c *Context[T]) Name() string { return c.w.name }

// Log returns the worker's log entry.
func (c *Context[T]) Log() *logrus.Entry { return c.w.log }

// Dot emits a progress dot at debug level.
func (c *Context[T]) Dot() {
	c.w.log.WithField(console.DotKey, true).Debug(".")
}

// Sleep pauses for d, ending early if a stop is requested.
func (c *Context[T]) Sleep(d time.Duration) bool {
	return cancel.Sleep(c.tok, d)
}

// WaitData blocks until done holds for the data slot or a stop is
// requested. It returns the value observed and done's result at return.
func (c *Context[T]) WaitData(done func(T) bool) (T, bool) {
	w := c.w
	w.dataMu.Lock()
	defer w.dataMu.Unlock()

	ok := w.cond.WaitUntil(&w.dataMu, func() bool { return done(w.data) }, c.tok)
	return w.data, ok
}
