// Package combined benchmarks the pieces a stoppable consumer loop is built
// from, used together: a stop check, a report ticker, and a task queue.
//
// Isolated micro-benchmarks hide interactions. Here the stop token, the
// cancellable wait in TaskQueue.Take, and the intake ring are measured in
// the loops that actually use them.
package combined
