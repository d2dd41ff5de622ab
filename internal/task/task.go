package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskTypeEmbeddingBackfill computes and stores a card's answer embedding.
const TaskTypeEmbeddingBackfill = "embedding_backfill"

// Task is a unit of background work run by a WorkerPool.
type Task interface {
	ID() uuid.UUID
	Type() string

	// Execute runs the task. ctx is cancelled when the pool stops.
	Execute(ctx context.Context) error
}

// Source hands tasks to workers. The channel is closed when no more tasks
// will arrive.
type Source interface {
	Tasks() <-chan Task
}

// Sink accepts tasks without blocking the caller.
type Sink interface {
	// Enqueue returns ErrQueueFull or ErrQueueClosed when the task is not
	// accepted.
	Enqueue(task Task) error
}
