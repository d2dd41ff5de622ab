package task

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultEmbeddingTimeout bounds one backfill embedding call.
const DefaultEmbeddingTimeout = 30 * time.Second

// BackfillConfig holds configuration for EmbeddingBackfiller.
type BackfillConfig struct {
	EmbeddingTimeout time.Duration
}

// EmbeddingBackfiller turns embedding requests into tasks on a queue that a
// WorkerPool drains. Failures are logged and recorded on the card, never
// retried. A card has at most one task queued or running at a time.
type EmbeddingBackfiller struct {
	queue    Sink
	embedder Embedder
	store    EmbeddingStore
	timeout  time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]struct{}
}

// NewEmbeddingBackfiller creates an EmbeddingBackfiller.
// It panics if queue, embedder or store is nil.
func NewEmbeddingBackfiller(
	queue Sink,
	embedder Embedder,
	store EmbeddingStore,
	config BackfillConfig,
	logger *slog.Logger,
) *EmbeddingBackfiller {
	if queue == nil {
		panic("queue cannot be nil")
	}
	if embedder == nil {
		panic("embedder cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := config.EmbeddingTimeout
	if timeout <= 0 {
		timeout = DefaultEmbeddingTimeout
	}

	return &EmbeddingBackfiller{
		queue:    queue,
		embedder: embedder,
		store:    store,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "embedding_backfiller")),
		pending:  make(map[uuid.UUID]struct{}),
	}
}

// Backfill enqueues one task per request and returns immediately. Requests
// with blank text, for cards that already have a task pending, or that do
// not fit in the queue, are logged and skipped. It returns the number of
// tasks enqueued.
func (b *EmbeddingBackfiller) Backfill(requests []EmbeddingRequest) int {
	enqueued := 0
	for _, req := range requests {
		if strings.TrimSpace(req.Text) == "" {
			b.logger.Warn("skipping embedding request with empty text",
				slog.String("card_id", req.CardID.String()))
			continue
		}

		if !b.claim(req.CardID) {
			b.logger.Debug("embedding already pending",
				slog.String("card_id", req.CardID.String()))
			continue
		}

		task := NewEmbeddingTask(req, b.embedder, b.store, b.timeout)
		task.onDone = b.release
		if err := b.queue.Enqueue(task); err != nil {
			b.release(req.CardID)
			level := slog.LevelWarn
			if errors.Is(err, ErrQueueClosed) {
				level = slog.LevelInfo
			}
			b.logger.Log(context.Background(), level, "embedding request not enqueued",
				slog.String("card_id", req.CardID.String()),
				slog.String("error", err.Error()))
			continue
		}
		enqueued++
	}

	if len(requests) > 0 {
		b.logger.Debug("embedding backfill scheduled",
			slog.Int("requested", len(requests)),
			slog.Int("enqueued", enqueued))
	}
	return enqueued
}

// Pending returns the number of cards with a task queued or running.
func (b *EmbeddingBackfiller) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

func (b *EmbeddingBackfiller) claim(cardID uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.pending[cardID]; ok {
		return false
	}
	b.pending[cardID] = struct{}{}
	return true
}

func (b *EmbeddingBackfiller) release(cardID uuid.UUID) {
	b.mu.Lock()
	delete(b.pending, cardID)
	b.mu.Unlock()
}

// HandleError logs a failed task. Install it with WorkerPool.SetErrorHandler.
func (b *EmbeddingBackfiller) HandleError(task Task, err error) {
	attrs := []any{
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.String("error", err.Error()),
	}
	if et, ok := task.(*EmbeddingTask); ok {
		attrs = append(attrs, slog.String("card_id", et.CardID().String()))
	}
	b.logger.Error("embedding backfill failed", attrs...)
}
