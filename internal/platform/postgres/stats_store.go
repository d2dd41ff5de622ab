package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

const userStatsColumns = `user_id, total_reviews, correct_reviews, days_studied, last_active_date, created_at, updated_at`

const deckStatsColumns = `deck_id, user_id, total_cards, total_reviews, correct_reviews, days_studied, ` +
	`last_active_date, created_at, updated_at`

// reviewUpsertSet is the shared ON CONFLICT clause for review counters. A new
// calendar day adds one to days_studied and last_active_date never moves back.
const reviewUpsertSet = `
		total_reviews = %[1]s.total_reviews + 1,
		correct_reviews = %[1]s.correct_reviews + EXCLUDED.correct_reviews,
		days_studied = %[1]s.days_studied + CASE
			WHEN %[1]s.last_active_date IS NULL OR %[1]s.last_active_date < EXCLUDED.last_active_date THEN 1
			ELSE 0
		END,
		last_active_date = GREATEST(%[1]s.last_active_date, EXCLUDED.last_active_date),
		updated_at = NOW()`

var (
	incrementUserReviewQuery = `
		INSERT INTO user_stats (user_id, total_reviews, correct_reviews, days_studied, last_active_date)
		VALUES ($1, 1, $2, 1, $3)
		ON CONFLICT (user_id) DO UPDATE SET` + fmt.Sprintf(reviewUpsertSet, "user_stats")

	incrementDeckReviewQuery = `
		INSERT INTO deck_stats (deck_id, user_id, total_reviews, correct_reviews, days_studied, last_active_date)
		VALUES ($1, $2, 1, $3, 1, $4)
		ON CONFLICT (deck_id) DO UPDATE SET` + fmt.Sprintf(reviewUpsertSet, "deck_stats")
)

// PostgresStatsStore implements the store.StatsStore interface with atomic
// INSERT ... ON CONFLICT upserts.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatsStore creates a new PostgreSQL implementation of the StatsStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresStatsStore(db store.DBTX, logger *slog.Logger) *PostgresStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

// Ensure PostgresStatsStore implements store.StatsStore interface
var _ store.StatsStore = (*PostgresStatsStore)(nil)

// WithTx implements store.StatsStore.WithTx.
func (s *PostgresStatsStore) WithTx(tx *sql.Tx) store.StatsStore {
	return &PostgresStatsStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetOrCreateUserStats implements store.StatsStore.GetOrCreateUserStats.
func (s *PostgresStatsStore) GetOrCreateUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_stats (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + userStatsColumns

	var (
		stats      domain.UserStats
		lastActive sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.UserID,
		&stats.TotalReviews,
		&stats.CorrectReviews,
		&stats.DaysStudied,
		&lastActive,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to load user stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	stats.LastActiveDate = nullDate(lastActive)
	return &stats, nil
}

// GetOrCreateDeckStats implements store.StatsStore.GetOrCreateDeckStats.
// Returns store.ErrInvalidEntity if the deck does not exist.
func (s *PostgresStatsStore) GetOrCreateDeckStats(
	ctx context.Context,
	deckID, userID uuid.UUID,
) (*domain.DeckStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO deck_stats (deck_id, user_id) VALUES ($1, $2)
		ON CONFLICT (deck_id) DO UPDATE SET deck_id = EXCLUDED.deck_id
		RETURNING ` + deckStatsColumns

	var (
		stats      domain.DeckStats
		lastActive sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, deckID, userID).Scan(
		&stats.DeckID,
		&stats.UserID,
		&stats.TotalCards,
		&stats.TotalReviews,
		&stats.CorrectReviews,
		&stats.DaysStudied,
		&lastActive,
		&stats.CreatedAt,
		&stats.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to load deck stats",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, MapError(err)
	}

	stats.LastActiveDate = nullDate(lastActive)
	return &stats, nil
}

// IncrementUserReview implements store.StatsStore.IncrementUserReview.
func (s *PostgresStatsStore) IncrementUserReview(
	ctx context.Context,
	userID uuid.UUID,
	correct bool,
	date time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, incrementUserReviewQuery, userID, boolToInt(correct), domain.StudyDate(date))
	if err != nil {
		log.Error("failed to increment user review stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}
	return nil
}

// IncrementDeckReview implements store.StatsStore.IncrementDeckReview.
func (s *PostgresStatsStore) IncrementDeckReview(
	ctx context.Context,
	deckID, userID uuid.UUID,
	correct bool,
	date time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, incrementDeckReviewQuery,
		deckID, userID, boolToInt(correct), domain.StudyDate(date))
	if err != nil {
		log.Error("failed to increment deck review stats",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return MapError(err)
	}
	return nil
}

// AdjustDeckCardCount implements store.StatsStore.AdjustDeckCardCount.
func (s *PostgresStatsStore) AdjustDeckCardCount(ctx context.Context, deckID, userID uuid.UUID, delta int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deck_stats (deck_id, user_id, total_cards)
		VALUES ($1, $2, GREATEST($3::integer, 0))
		ON CONFLICT (deck_id) DO UPDATE SET
			total_cards = GREATEST(deck_stats.total_cards + $3::integer, 0),
			updated_at = NOW()`,
		deckID, userID, delta)
	if err != nil {
		log.Error("failed to adjust deck card count",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()),
			slog.Int("delta", delta))
		return MapError(err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullDate(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	d := domain.StudyDate(t.Time)
	return &d
}
