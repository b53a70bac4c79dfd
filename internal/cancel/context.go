package cancel

import (
	"context"
	"errors"
)

// ErrStopRequested is the cancellation cause of contexts derived with
// NewContext when the stop came from the token.
var ErrStopRequested = errors.New("cancel: stop requested")

// NewContext derives a context from parent that is cancelled when a stop is
// requested on tok. context.Cause reports ErrStopRequested in that case.
//
// The returned CancelFunc deregisters the bridge and cancels the context; it
// must be called when the context is no longer needed, and not from inside a
// callback of tok's signal.
func NewContext(parent context.Context, tok Token) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)
	reg := tok.Register(func() { cancel(ErrStopRequested) })
	return ctx, func() {
		reg.Close()
		cancel(context.Canceled)
	}
}

// Context returns a context that is done once tok's stop is requested,
// together with the function that releases it.
func (t Token) Context() (context.Context, context.CancelFunc) {
	return NewContext(context.Background(), t)
}
