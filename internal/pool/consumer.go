package pool

import (
	"github.com/randomizedcoder/go-stop-token/internal/worker"
)

// ProcessFunc handles one item. It runs outside the queue lock so other
// consumers can take work meanwhile.
type ProcessFunc[D, T any] func(ctx *worker.Context[D], v T)

// Consumer returns a worker body that takes items from q until Take fails.
// Each taken item is passed to process; done, if not nil, is called after.
func Consumer[D, T any](q *TaskQueue[T], finishEarly bool, process ProcessFunc[D, T], done func()) worker.Body[D] {
	return func(ctx *worker.Context[D]) {
		ctx.Log().Info("Starting worker")
		for {
			v, ok := q.Take(ctx.Token(), finishEarly)
			if !ok {
				break
			}
			ctx.Log().WithField("id", v).Info("Doing action")
			if process != nil {
				process(ctx, v)
			}
			if done != nil {
				done()
			}
		}
		ctx.Log().Info("Leaving worker")
	}
}
