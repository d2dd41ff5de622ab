package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(t *testing.T) *domain.ReviewLogEntry {
	t.Helper()
	card := newTestCard(t, nil)
	entry, err := domain.NewReviewLogEntry(
		card,
		"paris",
		domain.ValidationOutcome{Score: 1, Method: domain.ValidationMethodExact},
		domain.GradeEasy,
		time.Now(),
	)
	require.NoError(t, err)
	return entry
}

func TestPostgresReviewLogStore_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresReviewLogStore(db, nil)
		entry := newTestEntry(t)

		mock.ExpectExec("INSERT INTO review_logs").
			WithArgs(entry.ID, entry.CardID, entry.UserID, "paris", "Paris",
				1.0, "exact", 4, entry.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Append(ctx, entry))
	})

	t.Run("duplicate id", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresReviewLogStore(db, nil)

		mock.ExpectExec("INSERT INTO review_logs").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "review_logs_pkey"})

		err := s.Append(ctx, newTestEntry(t))
		assert.ErrorIs(t, err, store.ErrReviewLogExists)
		assert.True(t, store.IsDuplicateError(err))
	})

	t.Run("invalid entry", func(t *testing.T) {
		db, _ := newMockDB(t)
		s := NewPostgresReviewLogStore(db, nil)
		entry := newTestEntry(t)
		entry.Grade = 9

		err := s.Append(ctx, entry)
		assert.ErrorIs(t, err, domain.ErrInvalidGrade)
	})

	t.Run("unknown card", func(t *testing.T) {
		db, mock := newMockDB(t)
		s := NewPostgresReviewLogStore(db, nil)

		mock.ExpectExec("INSERT INTO review_logs").
			WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode})

		assert.ErrorIs(t, s.Append(ctx, newTestEntry(t)), store.ErrInvalidEntity)
	})
}

func TestPostgresReviewLogStore_WithTx(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewPostgresReviewLogStore(db, nil)
	assert.Panics(t, func() { NewPostgresReviewLogStore(nil, nil) })
	assert.NotSame(t, s, s.WithTx(nil))
}
