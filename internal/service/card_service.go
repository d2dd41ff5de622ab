package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/importer"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/phrazzld/scry-review/internal/task"
	"github.com/phrazzld/scry-review/internal/validation"
)

// DefaultInlineEmbeddingTimeout bounds the embedding call made while
// creating a single card.
const DefaultInlineEmbeddingTimeout = 5 * time.Second

// Card listing limits.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// ListCardsOptions narrows CardService.ListCards.
type ListCardsOptions struct {
	DeckID *uuid.UUID
	// DueOnly keeps cards due now, overdue first and never-reviewed last.
	DueOnly bool
	// Limit defaults to DefaultListLimit and is capped at MaxListLimit.
	Limit int
}

// ImportResult reports the outcome of a TSV import.
type ImportResult struct {
	CardsImported int `json:"cards_imported"`
	CardsSkipped  int `json:"cards_skipped"`
}

// AnkiImportResult reports the outcome of an Anki import.
type AnkiImportResult struct {
	DeckID        uuid.UUID `json:"deck_id"`
	DeckName      string    `json:"deck_name"`
	CardsImported int       `json:"cards_imported"`
	CardsSkipped  int       `json:"cards_skipped"`
}

// DeckCounter maintains the per-deck card count.
type DeckCounter interface {
	AdjustDeckCardCount(ctx context.Context, deckID, userID uuid.UUID, delta int) error
	WithTx(tx *sql.Tx) store.StatsStore
}

// CardService provides card-related operations
type CardService interface {
	// CreateCard creates one card, optionally in a deck the user owns.
	// The answer is embedded inline when possible; a failed embed is retried
	// in the background. A card.created event is published on success.
	CreateCard(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, question, answer string) (*domain.Card, error)

	// DeleteCard removes a card the user owns and decrements its deck's count.
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error

	// ListCards returns the user's cards, optionally only one deck's or only
	// those due now. A deck filter is ownership-checked.
	ListCards(ctx context.Context, userID uuid.UUID, opts ListCardsOptions) ([]*domain.Card, error)

	// ImportTSV bulk-creates cards from tab-separated text.
	ImportTSV(ctx context.Context, userID uuid.UUID, deckID *uuid.UUID, r io.Reader) (*ImportResult, error)

	// ImportAnki creates a deck from an Anki package and bulk-creates its cards.
	ImportAnki(ctx context.Context, userID uuid.UUID, data []byte) (*AnkiImportResult, error)
}

// CardServiceConfig holds configuration for the card service.
type CardServiceConfig struct {
	EmbeddingTimeout time.Duration
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cardRepo         CardRepository
	deckStore        store.DeckStore
	counter          DeckCounter
	embedder         validation.Embedder
	backfiller       task.Backfiller
	emitter          events.EventEmitter
	embeddingTimeout time.Duration
	logger           *slog.Logger
}

var _ CardService = (*cardServiceImpl)(nil)

// NewCardService creates a new CardService.
// The embedder and backfiller may be nil when no embedding backend is
// configured; cards are then stored without embeddings.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	cardRepo CardRepository,
	deckStore store.DeckStore,
	counter DeckCounter,
	embedder validation.Embedder,
	backfiller task.Backfiller,
	emitter events.EventEmitter,
	config CardServiceConfig,
	logger *slog.Logger,
) (CardService, error) {
	// Validate dependencies
	if cardRepo == nil {
		return nil, domain.NewValidationError("cardRepo", "cannot be nil", domain.ErrValidation)
	}
	if deckStore == nil {
		return nil, domain.NewValidationError("deckStore", "cannot be nil", domain.ErrValidation)
	}
	if counter == nil {
		return nil, domain.NewValidationError("counter", "cannot be nil", domain.ErrValidation)
	}
	if emitter == nil {
		return nil, domain.NewValidationError("emitter", "cannot be nil", domain.ErrValidation)
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	timeout := config.EmbeddingTimeout
	if timeout <= 0 {
		timeout = DefaultInlineEmbeddingTimeout
	}

	return &cardServiceImpl{
		cardRepo:         cardRepo,
		deckStore:        deckStore,
		counter:          counter,
		embedder:         embedder,
		backfiller:       backfiller,
		emitter:          emitter,
		embeddingTimeout: timeout,
		logger:           logger.With(slog.String("component", "card_service")),
	}, nil
}

// CreateCard implements CardService.CreateCard
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	userID uuid.UUID,
	deckID *uuid.UUID,
	question, answer string,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if deckID != nil {
		if err := s.checkDeckOwner(ctx, userID, *deckID); err != nil {
			return nil, err
		}
	}

	card, err := domain.NewCard(userID, deckID, question, answer)
	if err != nil {
		return nil, err
	}

	embedded := s.embedInline(ctx, log, card)

	if err := s.cardRepo.Create(ctx, card); err != nil {
		log.Error("failed to create card", slog.String("error", err.Error()))
		return nil, NewCardServiceError("create_card", "failed to save card", err)
	}

	event, err := events.NewCardCreatedEvent(events.CardCreatedPayload{
		CardID: card.ID,
		UserID: card.UserID,
		DeckID: card.DeckID,
	})
	if err != nil {
		log.Error("failed to build card.created event", slog.String("error", err.Error()))
	} else {
		s.emitter.EmitEvent(ctx, event)
	}

	if !embedded && s.backfiller != nil {
		s.backfiller.Backfill([]task.EmbeddingRequest{{CardID: card.ID, Text: card.Answer}})
	}

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.Bool("embedded", embedded))

	return card, nil
}

// embedInline stores the answer embedding on card and reports success.
// Failures are logged and left to the backfiller.
func (s *cardServiceImpl) embedInline(ctx context.Context, log *slog.Logger, card *domain.Card) bool {
	if s.embedder == nil {
		return false
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.embeddingTimeout)
	defer cancel()

	embedding, err := s.embedder.Embed(embedCtx, card.Answer)
	if err != nil {
		log.Warn("inline embedding failed, scheduling backfill", slog.String("error", err.Error()))
		return false
	}
	card.AnswerEmbedding = embedding
	return true
}

// DeleteCard implements CardService.DeleteCard
func (s *cardServiceImpl) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))

	card, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrCardNotFound
		}
		log.Error("failed to retrieve card", slog.String("error", err.Error()))
		return NewCardServiceError("delete_card", "failed to retrieve card", err)
	}

	if card.UserID != userID {
		log.Warn("user does not own card")
		return ErrNotOwned
	}

	err = store.RunInTransaction(ctx, s.cardRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cardRepo.WithTx(tx).Delete(ctx, cardID); err != nil {
			if store.IsNotFoundError(err) {
				return ErrCardNotFound
			}
			return NewCardServiceError("delete_card", "failed to delete card", err)
		}
		if card.DeckID != nil {
			if err := s.counter.WithTx(tx).AdjustDeckCardCount(ctx, *card.DeckID, userID, -1); err != nil {
				return NewCardServiceError("delete_card", "failed to update deck card count", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to delete card", slog.String("error", err.Error()))
		return err
	}

	log.Info("card deleted")
	return nil
}

// ListCards implements CardService.ListCards
func (s *cardServiceImpl) ListCards(
	ctx context.Context,
	userID uuid.UUID,
	opts ListCardsOptions,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if opts.DeckID != nil {
		if err := s.checkDeckOwner(ctx, userID, *opts.DeckID); err != nil {
			return nil, err
		}
	}

	filter := store.CardFilter{DeckID: opts.DeckID, Limit: opts.Limit}
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	if opts.DueOnly {
		now := time.Now().UTC()
		filter.DueBefore = &now
	}

	cards, err := s.cardRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		log.Error("failed to list cards", slog.String("error", err.Error()))
		return nil, NewCardServiceError("list_cards", "failed to list cards", err)
	}
	if cards == nil {
		cards = []*domain.Card{}
	}

	log.Debug("cards listed",
		slog.Int("count", len(cards)),
		slog.Bool("due_only", opts.DueOnly))
	return cards, nil
}

// ImportTSV implements CardService.ImportTSV
func (s *cardServiceImpl) ImportTSV(
	ctx context.Context,
	userID uuid.UUID,
	deckID *uuid.UUID,
	r io.Reader,
) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if deckID != nil {
		if err := s.checkDeckOwner(ctx, userID, *deckID); err != nil {
			return nil, err
		}
	}

	parsed, err := importer.ParseTSV(r)
	if err != nil {
		return nil, err
	}

	cards, skipped, err := buildCards(userID, deckID, parsed.Pairs)
	if err != nil {
		return nil, err
	}
	result := &ImportResult{CardsSkipped: parsed.Skipped + skipped}
	if len(cards) == 0 {
		return result, nil
	}

	err = store.RunInTransaction(ctx, s.cardRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cardRepo.WithTx(tx).CreateMultiple(ctx, cards); err != nil {
			return NewCardServiceError("import_tsv", "failed to save cards", err)
		}
		if deckID != nil {
			if err := s.counter.WithTx(tx).AdjustDeckCardCount(ctx, *deckID, userID, len(cards)); err != nil {
				return NewCardServiceError("import_tsv", "failed to update deck card count", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("tsv import failed", slog.String("error", err.Error()))
		return nil, err
	}

	result.CardsImported = len(cards)
	s.backfill(cards)

	log.Info("tsv import complete",
		slog.Int("cards_imported", result.CardsImported),
		slog.Int("cards_skipped", result.CardsSkipped))

	return result, nil
}

// ImportAnki implements CardService.ImportAnki
func (s *cardServiceImpl) ImportAnki(
	ctx context.Context,
	userID uuid.UUID,
	data []byte,
) (*AnkiImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	parsed, err := importer.ParseAnki(ctx, data)
	if err != nil {
		return nil, err
	}

	deck, err := domain.NewDeck(userID, parsed.DeckName)
	if err != nil {
		return nil, err
	}

	cards, skipped, err := buildCards(userID, &deck.ID, parsed.Pairs)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.cardRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		if err := s.deckStore.WithTx(tx).Create(ctx, deck); err != nil {
			return NewCardServiceError("import_anki", "failed to save deck", err)
		}
		if len(cards) == 0 {
			return nil
		}
		if err := s.cardRepo.WithTx(tx).CreateMultiple(ctx, cards); err != nil {
			return NewCardServiceError("import_anki", "failed to save cards", err)
		}
		if err := s.counter.WithTx(tx).AdjustDeckCardCount(ctx, deck.ID, userID, len(cards)); err != nil {
			return NewCardServiceError("import_anki", "failed to update deck card count", err)
		}
		return nil
	})
	if err != nil {
		log.Error("anki import failed", slog.String("error", err.Error()))
		return nil, err
	}

	s.backfill(cards)

	result := &AnkiImportResult{
		DeckID:        deck.ID,
		DeckName:      deck.Name,
		CardsImported: len(cards),
		CardsSkipped:  parsed.Skipped + skipped,
	}

	log.Info("anki import complete",
		slog.String("deck_id", deck.ID.String()),
		slog.Int("cards_imported", result.CardsImported),
		slog.Int("cards_skipped", result.CardsSkipped))

	return result, nil
}

func (s *cardServiceImpl) checkDeckOwner(ctx context.Context, userID, deckID uuid.UUID) error {
	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrDeckNotFound
		}
		return NewCardServiceError("check_deck", "failed to retrieve deck", err)
	}
	if deck.UserID != userID {
		return ErrDeckNotOwned
	}
	return nil
}

func (s *cardServiceImpl) backfill(cards []*domain.Card) {
	if s.backfiller == nil {
		return
	}
	requests := make([]task.EmbeddingRequest, 0, len(cards))
	for _, c := range cards {
		requests = append(requests, task.EmbeddingRequest{CardID: c.ID, Text: c.Answer})
	}
	s.backfiller.Backfill(requests)
}

// buildCards turns parsed pairs into cards. Pairs the domain rejects are
// counted as skipped rather than failing the import.
func buildCards(userID uuid.UUID, deckID *uuid.UUID, pairs []importer.Pair) ([]*domain.Card, int, error) {
	cards := make([]*domain.Card, 0, len(pairs))
	skipped := 0
	for _, p := range pairs {
		card, err := domain.NewCard(userID, deckID, p.Question, p.Answer)
		if err != nil {
			if errors.Is(err, domain.ErrCardQuestionEmpty) || errors.Is(err, domain.ErrCardAnswerEmpty) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("failed to build imported card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, skipped, nil
}
