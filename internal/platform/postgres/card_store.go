package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

// cardColumns is the column list shared by every card SELECT.
const cardColumns = `id, user_id, deck_id, question, answer, answer_embedding, fsrs_state, created_at, updated_at`

// cardInsertColumns is the number of bound parameters per inserted card.
const cardInsertColumns = 10

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.CardStore.Create.
// Returns store.ErrDuplicate if the ID is taken and store.ErrInvalidEntity if
// the deck does not exist.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	return s.insert(ctx, []*domain.Card{card})
}

// CreateMultiple implements store.CardStore.CreateMultiple.
// All cards are written with one multi-row INSERT.
func (s *PostgresCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	if len(cards) == 0 {
		return nil
	}
	return s.insert(ctx, cards)
}

func (s *PostgresCardStore) insert(ctx context.Context, cards []*domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var query strings.Builder
	query.WriteString(`INSERT INTO cards (` +
		`id, user_id, deck_id, question, answer, answer_embedding, fsrs_state, due_at, created_at, updated_at` +
		`) VALUES `)
	args := make([]any, 0, len(cards)*cardInsertColumns)

	for i, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("card validation failed during create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}

		state, err := json.Marshal(card.MemoryState)
		if err != nil {
			return fmt.Errorf("failed to encode memory state: %w", err)
		}
		embedding, err := encodeEmbedding(card.AnswerEmbedding)
		if err != nil {
			return err
		}

		if i > 0 {
			query.WriteString(", ")
		}
		base := i * cardInsertColumns
		query.WriteString("(")
		for j := 1; j <= cardInsertColumns; j++ {
			if j > 1 {
				query.WriteString(", ")
			}
			fmt.Fprintf(&query, "$%d", base+j)
		}
		query.WriteString(")")

		args = append(args,
			card.ID,
			card.UserID,
			card.DeckID,
			card.Question,
			card.Answer,
			embedding,
			state,
			card.MemoryState.DueAt(),
			card.CreatedAt,
			card.UpdatedAt,
		)
	}

	if _, err := s.db.ExecContext(ctx, query.String(), args...); err != nil {
		log.Error("failed to create cards",
			slog.String("error", err.Error()),
			slog.Int("count", len(cards)))
		return MapError(err)
	}

	log.Info("cards created successfully", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}

	return card, nil
}

// Update implements store.CardStore.Update.
// Only the memory state, due_at and updated_at are written, so an embedding
// stored by a concurrent backfill is never overwritten.
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.MemoryState.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	state, err := json.Marshal(card.MemoryState)
	if err != nil {
		return fmt.Errorf("failed to encode memory state: %w", err)
	}

	updatedAt := card.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET fsrs_state = $1, due_at = $2, updated_at = $3 WHERE id = $4`,
		state, card.MemoryState.DueAt(), updatedAt, card.ID)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	log.Debug("card memory state updated",
		slog.String("card_id", card.ID.String()),
		slog.Int("scheduled_days", card.MemoryState.ScheduledDays))
	return nil
}

// UpdateEmbedding implements store.CardStore.UpdateEmbedding.
func (s *PostgresCardStore) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding cannot be empty", store.ErrInvalidEntity)
	}

	encoded, err := encodeEmbedding(embedding)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE cards SET answer_embedding = $1, embedding_failed_at = NULL, updated_at = $2 WHERE id = $3`,
		encoded, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to store card embedding",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrCardNotFound)
}

// MarkEmbeddingFailed implements store.CardStore.MarkEmbeddingFailed.
// A card that gained an embedding in the meantime is left alone.
func (s *PostgresCardStore) MarkEmbeddingFailed(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`UPDATE cards SET embedding_failed_at = $1 WHERE id = $2 AND answer_embedding IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to record embedding failure",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}
	return nil
}

// ListByUser implements store.CardStore.ListByUser.
func (s *PostgresCardStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.CardFilter,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var query strings.Builder
	query.WriteString(`SELECT ` + cardColumns + ` FROM cards WHERE user_id = $1`)
	args := []any{userID}

	if filter.DeckID != nil {
		args = append(args, *filter.DeckID)
		fmt.Fprintf(&query, ` AND deck_id = $%d`, len(args))
	}
	if filter.DueBefore != nil {
		args = append(args, *filter.DueBefore)
		fmt.Fprintf(&query, ` AND (due_at IS NULL OR due_at <= $%d)`, len(args))
		query.WriteString(` ORDER BY due_at ASC NULLS LAST, created_at ASC`)
	} else {
		query.WriteString(` ORDER BY created_at ASC`)
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, ` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		log.Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	return scanCards(rows)
}

// Delete implements store.CardStore.Delete.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	log.Info("card deleted successfully", slog.String("card_id", id.String()))
	return nil
}

// ListMissingEmbeddings implements store.CardStore.ListMissingEmbeddings.
func (s *PostgresCardStore) ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return nil, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE answer_embedding IS NULL AND embedding_failed_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		log.Error("failed to list cards missing embeddings", slog.String("error", err.Error()))
		return nil, err
	}
	return scanCards(rows)
}

func scanCards(rows *sql.Rows) ([]*domain.Card, error) {
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		card      domain.Card
		deckID    uuid.NullUUID
		embedding []byte
		state     []byte
	)

	if err := row.Scan(
		&card.ID,
		&card.UserID,
		&deckID,
		&card.Question,
		&card.Answer,
		&embedding,
		&state,
		&card.CreatedAt,
		&card.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if deckID.Valid {
		id := deckID.UUID
		card.DeckID = &id
	}
	if len(embedding) > 0 {
		if err := json.Unmarshal(embedding, &card.AnswerEmbedding); err != nil {
			return nil, fmt.Errorf("failed to decode answer embedding for card %s: %w", card.ID, err)
		}
	}
	if err := json.Unmarshal(state, &card.MemoryState); err != nil {
		return nil, fmt.Errorf("failed to decode memory state for card %s: %w", card.ID, err)
	}

	return &card, nil
}

// encodeEmbedding returns nil for an absent embedding so the column stays NULL.
func encodeEmbedding(embedding []float32) (any, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answer embedding: %w", err)
	}
	return encoded, nil
}
