package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// WorkerPool runs tasks from a Source on a fixed number of goroutines.
type WorkerPool struct {
	source      Source
	workerCount int
	logger      *slog.Logger

	// ctx is shared by every task and cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stopOnce  sync.Once
	succeeded atomic.Int64
	failed    atomic.Int64

	// errorHandler receives failed tasks; when nil failures are only logged.
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration for WorkerPool.
type WorkerPoolConfig struct {
	// WorkerCount is the number of concurrent workers. Values below 1 mean 1.
	WorkerCount int
}

// PoolStats counts finished tasks.
type PoolStats struct {
	Succeeded int64
	Failed    int64
}

// NewWorkerPool creates a stopped WorkerPool reading from source.
func NewWorkerPool(source Source, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if source == nil {
		panic("source cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "worker_pool"))

	workerCount := config.WorkerCount
	if workerCount < 1 {
		logger.Warn("invalid worker count, using 1", slog.Int("worker_count", config.WorkerCount))
		workerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		source:      source,
		workerCount: workerCount,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetErrorHandler installs handler for failed tasks. Call it before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool", slog.Int("worker_count", p.workerCount))

	p.wg.Add(p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
}

// Stop cancels the context seen by in-flight tasks and waits for every
// worker to return. Tasks still queued are dropped. Stop is idempotent.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.wg.Wait()

		stats := p.Stats()
		p.logger.Info("worker pool stopped",
			slog.Int64("succeeded", stats.Succeeded),
			slog.Int64("failed", stats.Failed))
	})
}

// Stats returns the number of tasks finished so far.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{Succeeded: p.succeeded.Load(), Failed: p.failed.Load()}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	tasks := p.source.Tasks()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-tasks:
			if !ok {
				p.logger.Debug("task source closed", slog.Int("worker_id", id))
				return
			}
			p.run(task, id)
		}
	}
}

func (p *WorkerPool) run(task Task, workerID int) {
	err := p.execute(task)
	if err == nil {
		p.succeeded.Add(1)
		p.logger.Debug("task completed",
			slog.String("task_id", task.ID().String()),
			slog.Int("worker_id", workerID))
		return
	}

	p.failed.Add(1)
	if p.errorHandler != nil {
		p.errorHandler(task, err)
		return
	}
	p.logger.Error("task failed",
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID),
		slog.String("error", err.Error()))
}

// execute runs task on the pool context and turns a panic into an error.
func (p *WorkerPool) execute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Type(), r)
		}
	}()
	return task.Execute(p.ctx)
}
