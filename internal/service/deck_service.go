package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

// DeckService provides deck management for a user.
type DeckService interface {
	// CreateDeck creates an empty deck.
	CreateDeck(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error)

	// ListDecks returns the user's decks ordered by name.
	ListDecks(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error)

	// DeleteDeck removes a deck the user owns. Its cards are kept without a
	// deck and its statistics are dropped.
	DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error
}

type deckServiceImpl struct {
	decks  store.DeckStore
	logger *slog.Logger
}

var _ DeckService = (*deckServiceImpl)(nil)

// NewDeckService creates a new DeckService.
func NewDeckService(decks store.DeckStore, logger *slog.Logger) (DeckService, error) {
	if decks == nil {
		return nil, domain.NewValidationError("decks", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		decks:  decks,
		logger: logger.With(slog.String("component", "deck_service")),
	}, nil
}

// CreateDeck implements DeckService.CreateDeck
func (s *deckServiceImpl) CreateDeck(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	deck, err := domain.NewDeck(userID, name)
	if err != nil {
		return nil, err
	}

	if err := s.decks.Create(ctx, deck); err != nil {
		log.Error("failed to create deck", slog.String("error", err.Error()))
		return nil, NewCardServiceError("create_deck", "failed to save deck", err)
	}

	log.Info("deck created", slog.String("deck_id", deck.ID.String()))
	return deck, nil
}

// ListDecks implements DeckService.ListDecks
func (s *deckServiceImpl) ListDecks(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error) {
	decks, err := s.decks.ListByUser(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list decks",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewCardServiceError("list_decks", "failed to list decks", err)
	}
	if decks == nil {
		decks = []*domain.Deck{}
	}
	return decks, nil
}

// DeleteDeck implements DeckService.DeleteDeck
func (s *deckServiceImpl) DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("deck_id", deckID.String()))

	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrDeckNotFound
		}
		return NewCardServiceError("delete_deck", "failed to retrieve deck", err)
	}
	if deck.UserID != userID {
		log.Warn("user does not own deck")
		return ErrDeckNotOwned
	}

	if err := s.decks.Delete(ctx, deckID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrDeckNotFound
		}
		log.Error("failed to delete deck", slog.String("error", err.Error()))
		return NewCardServiceError("delete_deck", "failed to delete deck", err)
	}

	log.Info("deck deleted")
	return nil
}
