package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
)

// StatsStore defines persistence for aggregate user and deck statistics.
//
// Every mutating method is a single atomic statement: the row is created on
// first use and counters are incremented in place, so concurrent callers never
// lose updates. The date arguments are UTC calendar days; days_studied grows
// only when date is later than the stored last_active_date, and
// last_active_date never moves backwards.
type StatsStore interface {
	// GetOrCreateUserStats returns the user's stats, creating a zero row if needed.
	GetOrCreateUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)

	// GetOrCreateDeckStats returns the deck's stats, creating a zero row if needed.
	GetOrCreateDeckStats(ctx context.Context, deckID, userID uuid.UUID) (*domain.DeckStats, error)

	// IncrementUserReview records one review for the user.
	IncrementUserReview(ctx context.Context, userID uuid.UUID, correct bool, date time.Time) error

	// IncrementDeckReview records one review against the deck.
	IncrementDeckReview(ctx context.Context, deckID, userID uuid.UUID, correct bool, date time.Time) error

	// AdjustDeckCardCount adds delta to the deck's card count, flooring at 0.
	AdjustDeckCardCount(ctx context.Context, deckID, userID uuid.UUID, delta int) error

	// WithTx returns a new StatsStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) StatsStore
}
