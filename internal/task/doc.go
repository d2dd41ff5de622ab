// Package task runs background work on an in-process worker pool.
//
// A TaskQueue buffers tasks without blocking producers; a WorkerPool drains
// it on a fixed number of goroutines, all sharing one context that is
// cancelled only when the pool stops. The embedding backfill is built on
// these: EmbeddingBackfiller enqueues one EmbeddingTask per card, and
// EmbeddingSweeper periodically resubmits cards that still lack an
// embedding. Tasks are not persisted; a task lost on shutdown is picked up
// by a later sweep.
package task
