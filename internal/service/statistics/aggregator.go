// Package statistics maintains and serves aggregate review statistics.
//
// The Aggregator subscribes to the event channel and keeps per-user and
// per-deck counters current. The Service answers read queries over them.
package statistics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
)

// CardLookup resolves a card's deck when an event does not carry it.
type CardLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)
}

// Aggregator applies review and creation events to the stats store.
type Aggregator struct {
	stats  store.StatsStore
	cards  CardLookup
	now    func() time.Time
	logger *slog.Logger
}

var _ events.EventHandler = (*Aggregator)(nil)

// NewAggregator creates an Aggregator. It panics if statsStore or cards is nil.
func NewAggregator(statsStore store.StatsStore, cards CardLookup, log *slog.Logger) *Aggregator {
	if statsStore == nil {
		panic("statsStore cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Aggregator{
		stats:  statsStore,
		cards:  cards,
		now:    time.Now,
		logger: log.With(slog.String("component", "stats_aggregator")),
	}
}

// HandleEvent implements events.EventHandler. Unknown event types are ignored.
func (a *Aggregator) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.CardReviewedEventType:
		var payload events.CardReviewedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Type, err)
		}
		return a.recordReview(ctx, payload)

	case events.CardCreatedEventType:
		var payload events.CardCreatedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Type, err)
		}
		return a.recordCreation(ctx, payload)

	default:
		logger.FromContextOrDefault(ctx, a.logger).Debug("ignoring event",
			slog.String("event_type", event.Type))
		return nil
	}
}

func (a *Aggregator) recordReview(ctx context.Context, p events.CardReviewedPayload) error {
	log := logger.FromContextOrDefault(ctx, a.logger).With(
		slog.String("user_id", p.UserID.String()),
		slog.String("card_id", p.CardID.String()))

	correct := domain.IsCorrect(p.Score)
	date := domain.StudyDate(a.now())

	if err := a.stats.IncrementUserReview(ctx, p.UserID, correct, date); err != nil {
		return fmt.Errorf("increment user stats: %w", err)
	}

	deckID := p.DeckID
	if deckID == nil {
		card, err := a.cards.GetByID(ctx, p.CardID)
		switch {
		case errors.Is(err, store.ErrCardNotFound):
			log.Debug("reviewed card no longer exists, skipping deck stats")
			return nil
		case err != nil:
			return fmt.Errorf("look up card deck: %w", err)
		}
		deckID = card.DeckID
	}

	if deckID == nil {
		log.Debug("recorded review", slog.Bool("correct", correct))
		return nil
	}

	if err := a.stats.IncrementDeckReview(ctx, *deckID, p.UserID, correct, date); err != nil {
		return fmt.Errorf("increment deck stats: %w", err)
	}

	log.Debug("recorded review",
		slog.Bool("correct", correct),
		slog.String("deck_id", deckID.String()))
	return nil
}

func (a *Aggregator) recordCreation(ctx context.Context, p events.CardCreatedPayload) error {
	if p.DeckID == nil {
		return nil
	}

	if err := a.stats.AdjustDeckCardCount(ctx, *p.DeckID, p.UserID, 1); err != nil {
		return fmt.Errorf("adjust deck card count: %w", err)
	}
	return nil
}
