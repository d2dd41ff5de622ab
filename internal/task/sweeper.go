package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// MissingEmbeddingLister finds cards that still lack an answer embedding.
type MissingEmbeddingLister interface {
	ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.Card, error)
}

// Backfiller schedules embedding work.
type Backfiller interface {
	Backfill(requests []EmbeddingRequest) int
}

// SweeperConfig holds configuration for EmbeddingSweeper.
type SweeperConfig struct {
	// Interval between sweeps. Zero disables the sweeper.
	Interval time.Duration
	// BatchSize caps the cards handed to the backfiller per sweep.
	BatchSize int
}

// EmbeddingSweeper periodically re-submits cards whose embedding task never
// ran, because the queue was full or the process stopped first. Cards whose
// embedding call failed are recorded by the task and never listed again;
// cards still queued are skipped by the backfiller.
type EmbeddingSweeper struct {
	cards      MissingEmbeddingLister
	backfiller Backfiller
	config     SweeperConfig
	logger     *slog.Logger
}

// NewEmbeddingSweeper creates an EmbeddingSweeper. It panics if cards or
// backfiller is nil.
func NewEmbeddingSweeper(
	cards MissingEmbeddingLister,
	backfiller Backfiller,
	config SweeperConfig,
	logger *slog.Logger,
) *EmbeddingSweeper {
	if cards == nil {
		panic("cards cannot be nil")
	}
	if backfiller == nil {
		panic("backfiller cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}

	return &EmbeddingSweeper{
		cards:      cards,
		backfiller: backfiller,
		config:     config,
		logger:     logger.With(slog.String("component", "embedding_sweeper")),
	}
}

// Run sweeps once immediately and then on every interval until ctx is done.
// It returns nil when ctx ends or when the sweeper is disabled.
func (s *EmbeddingSweeper) Run(ctx context.Context) error {
	if s.config.Interval <= 0 {
		s.logger.Info("embedding sweeper disabled")
		return nil
	}

	s.logger.Info("embedding sweeper started",
		slog.Duration("interval", s.config.Interval),
		slog.Int("batch_size", s.config.BatchSize))

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		s.SweepOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("embedding sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// SweepOnce lists one batch of cards missing embeddings and hands them to
// the backfiller. It returns the number of tasks enqueued.
func (s *EmbeddingSweeper) SweepOnce(ctx context.Context) int {
	cards, err := s.cards.ListMissingEmbeddings(ctx, s.config.BatchSize)
	if err != nil {
		s.logger.Error("failed to list cards missing embeddings",
			slog.String("error", err.Error()))
		return 0
	}

	if len(cards) == 0 {
		return 0
	}

	requests := make([]EmbeddingRequest, 0, len(cards))
	for _, c := range cards {
		requests = append(requests, EmbeddingRequest{CardID: c.ID, Text: c.Answer})
	}

	enqueued := s.backfiller.Backfill(requests)
	s.logger.Info("resubmitted cards missing embeddings",
		slog.Int("found", len(cards)),
		slog.Int("enqueued", enqueued))
	return enqueued
}
