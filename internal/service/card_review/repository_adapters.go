package card_review

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
)

// CardRepository loads cards for review.
type CardRepository interface {
	// GetByID retrieves a card by its unique ID.
	// Returns store.ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)
}

// ReviewRecorder persists the result of a review.
type ReviewRecorder interface {
	// RecordReview saves card's new memory state and appends entry atomically.
	RecordReview(ctx context.Context, card *domain.Card, entry *domain.ReviewLogEntry) error
}

// txReviewRecorder implements ReviewRecorder over SQL stores.
type txReviewRecorder struct {
	db    *sql.DB
	cards store.CardStore
	logs  store.ReviewLogStore
}

var _ ReviewRecorder = (*txReviewRecorder)(nil)

// NewReviewRecorder returns a ReviewRecorder that writes the card update and
// the log entry in a single database transaction.
func NewReviewRecorder(db *sql.DB, cards store.CardStore, logs store.ReviewLogStore) ReviewRecorder {
	if db == nil {
		panic("db cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if logs == nil {
		panic("logs cannot be nil")
	}
	return &txReviewRecorder{db: db, cards: cards, logs: logs}
}

func (r *txReviewRecorder) RecordReview(
	ctx context.Context,
	card *domain.Card,
	entry *domain.ReviewLogEntry,
) error {
	return store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := r.cards.WithTx(tx).Update(ctx, card); err != nil {
			return fmt.Errorf("failed to update card: %w", err)
		}
		if err := r.logs.WithTx(tx).Append(ctx, entry); err != nil {
			return fmt.Errorf("failed to append review log: %w", err)
		}
		return nil
	})
}

// StoreReviewRecorder adapts non-transactional stores to ReviewRecorder.
// It is meant for tests and in-memory setups where both writes cannot fail
// independently.
type StoreReviewRecorder struct {
	Cards store.CardStore
	Logs  store.ReviewLogStore
}

// RecordReview implements ReviewRecorder.
func (r StoreReviewRecorder) RecordReview(
	ctx context.Context,
	card *domain.Card,
	entry *domain.ReviewLogEntry,
) error {
	if err := r.Cards.Update(ctx, card); err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	if err := r.Logs.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append review log: %w", err)
	}
	return nil
}
