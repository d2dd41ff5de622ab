package statistics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
)

var (
	// ErrDeckNotFound indicates that the requested deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrDeckNotOwned indicates that the deck belongs to another user.
	ErrDeckNotOwned = errors.New("unauthorized access: deck not owned by user")
)

// DeckLookup resolves deck ownership.
type DeckLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)
}

// Service answers statistics queries.
type Service interface {
	// GetUserStats returns the user's aggregate stats, zero-valued if the
	// user has never reviewed.
	GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)

	// GetDeckStats returns stats for a deck owned by userID.
	// Returns ErrDeckNotFound or ErrDeckNotOwned.
	GetDeckStats(ctx context.Context, userID, deckID uuid.UUID) (*domain.DeckStats, error)
}

type statsService struct {
	stats  store.StatsStore
	decks  DeckLookup
	logger *slog.Logger
}

// NewService creates a statistics Service. It panics if a dependency is nil.
func NewService(statsStore store.StatsStore, decks DeckLookup, log *slog.Logger) Service {
	if statsStore == nil {
		panic("statsStore cannot be nil")
	}
	if decks == nil {
		panic("decks cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &statsService{
		stats:  statsStore,
		decks:  decks,
		logger: log.With(slog.String("component", "stats_service")),
	}
}

func (s *statsService) GetUserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	stats, err := s.stats.GetOrCreateUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return stats, nil
}

func (s *statsService) GetDeckStats(
	ctx context.Context,
	userID, deckID uuid.UUID,
) (*domain.DeckStats, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("get deck: %w", err)
	}

	if deck.UserID != userID {
		s.logger.Warn("deck stats requested by non-owner",
			slog.String("deck_id", deckID.String()),
			slog.String("user_id", userID.String()))
		return nil, ErrDeckNotOwned
	}

	stats, err := s.stats.GetOrCreateDeckStats(ctx, deckID, userID)
	if err != nil {
		return nil, fmt.Errorf("get deck stats: %w", err)
	}
	return stats, nil
}
