package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/scry-review/internal/domain"
)

// ReviewLogStore is the append-only history of graded reviews.
type ReviewLogStore interface {
	// Append writes an entry. Entries are never updated.
	// Returns ErrReviewLogExists if an entry with the same ID exists.
	Append(ctx context.Context, entry *domain.ReviewLogEntry) error

	// WithTx returns a new ReviewLogStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}
