package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
)

// CardFilter narrows CardStore.ListByUser.
type CardFilter struct {
	// DeckID restricts the listing to one deck when set.
	DeckID *uuid.UUID
	// DueBefore keeps only cards due at or before this instant when set.
	// Cards that were never reviewed are always due.
	DueBefore *time.Time
	// Limit caps the number of cards returned. Zero means no cap.
	Limit int
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a single new card. The card must pass domain validation.
	Create(ctx context.Context, card *domain.Card) error

	// CreateMultiple saves multiple cards to the store.
	// IMPORTANT: This method MUST be run within a transaction for atomicity.
	// Use the WithTx method with store.RunInTransaction:
	//
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       return cardStore.WithTx(tx).CreateMultiple(ctx, cards)
	//   })
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID, including its memory state
	// and stored answer embedding.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByUser returns the user's cards matching filter. Due listings are
	// ordered by due time with never-reviewed cards last; other listings are
	// ordered oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID, filter CardFilter) ([]*domain.Card, error)

	// Update persists the card's memory state and next due time and bumps
	// updated_at. Question, answer and embedding are left untouched.
	// Concurrent updates of the same card are last-write-wins.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// UpdateEmbedding stores the answer embedding for a card and clears any
	// recorded failed attempt.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error

	// MarkEmbeddingFailed records that embedding the card's answer failed.
	// Marked cards are no longer returned by ListMissingEmbeddings.
	MarkEmbeddingFailed(ctx context.Context, id uuid.UUID) error

	// Delete removes a card from the store by its ID. Review log entries are
	// removed by ON DELETE CASCADE.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListMissingEmbeddings returns up to limit cards that have no stored
	// embedding and no recorded failed attempt, oldest first.
	ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.Card, error)

	// WithTx returns a new CardStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
