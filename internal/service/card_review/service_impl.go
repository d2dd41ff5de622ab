package card_review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/srs"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/phrazzld/scry-review/internal/validation"
)

// DefaultReviewTimeout bounds a whole review when none is configured.
const DefaultReviewTimeout = 30 * time.Second

// Config holds configuration for the card review service.
type Config struct {
	// Timeout bounds validation and persistence of one review.
	Timeout time.Duration
}

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// cardReviewServiceImpl implements the CardReviewService interface.
type cardReviewServiceImpl struct {
	cardRepo   CardRepository
	recorder   ReviewRecorder
	validator  validation.Validator
	srsService srs.Service
	emitter    events.EventEmitter
	timeout    time.Duration
	timeFunc   func() time.Time
	logger     *slog.Logger
}

// NewCardReviewService creates a new CardReviewService implementation.
func NewCardReviewService(
	cardRepo CardRepository,
	recorder ReviewRecorder,
	validator validation.Validator,
	srsService srs.Service,
	emitter events.EventEmitter,
	config Config,
	logger *slog.Logger,
) CardReviewService {
	// Validate inputs
	if cardRepo == nil {
		panic("cardRepo cannot be nil")
	}
	if recorder == nil {
		panic("recorder cannot be nil")
	}
	if validator == nil {
		panic("validator cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultReviewTimeout
	}

	return &cardReviewServiceImpl{
		cardRepo:   cardRepo,
		recorder:   recorder,
		validator:  validator,
		srsService: srsService,
		emitter:    emitter,
		timeout:    timeout,
		timeFunc:   time.Now,
		logger:     logger.With(slog.String("component", "card_review_service")),
	}
}

// SubmitReview implements CardReviewService.SubmitReview.
func (s *cardReviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	answer string,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log.Debug("processing review")

	card, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			log.Warn("card not found for review")
			return nil, ErrCardNotFound
		}
		log.Error("failed to load card", slog.String("error", err.Error()))
		return nil, NewSubmitReviewError("failed to load card", err)
	}

	if card.UserID != userID {
		log.Warn("user does not own card", slog.String("owner_id", card.UserID.String()))
		return nil, ErrCardNotOwned
	}

	outcome, err := s.validator.Validate(ctx, validation.Input{
		Expected:          card.Answer,
		Actual:            answer,
		Question:          card.Question,
		ExpectedEmbedding: card.AnswerEmbedding,
	})
	if err != nil {
		log.Error("answer validation failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	grade := s.srsService.GradeForScore(outcome.Score)
	now := s.timeFunc().UTC()

	state, err := s.srsService.NextState(card.MemoryState, grade, now)
	if err != nil {
		log.Error("failed to advance memory state",
			slog.String("error", err.Error()),
			slog.Int("grade", int(grade)))
		return nil, NewSubmitReviewError("failed to calculate next review", err)
	}

	updated := *card
	updated.MemoryState = state
	updated.UpdatedAt = now

	entry, err := domain.NewReviewLogEntry(&updated, answer, outcome, grade, now)
	if err != nil {
		return nil, NewSubmitReviewError("failed to build review log entry", err)
	}

	if err := s.recorder.RecordReview(ctx, &updated, entry); err != nil {
		log.Error("failed to record review", slog.String("error", err.Error()))
		return nil, NewSubmitReviewError("failed to record review", err)
	}

	s.publishReviewed(ctx, log, &updated, outcome.Score, grade, now)

	result := &ReviewResult{
		CardID:        card.ID,
		Score:         outcome.Score,
		Grade:         grade,
		Method:        outcome.Method,
		ScheduledDays: state.ScheduledDays,
		NextReviewAt:  now.AddDate(0, 0, state.ScheduledDays),
	}
	if due := state.DueAt(); due != nil {
		result.NextReviewAt = *due
	}

	log.Debug("review recorded",
		slog.Float64("score", outcome.Score),
		slog.String("method", string(outcome.Method)),
		slog.String("grade", grade.String()),
		slog.Int("scheduled_days", state.ScheduledDays))

	return result, nil
}

func (s *cardReviewServiceImpl) publishReviewed(
	ctx context.Context,
	log *slog.Logger,
	card *domain.Card,
	score float64,
	grade domain.Grade,
	at time.Time,
) {
	event, err := events.NewCardReviewedEvent(events.CardReviewedPayload{
		CardID:     card.ID,
		UserID:     card.UserID,
		DeckID:     card.DeckID,
		Score:      score,
		Grade:      int(grade),
		ReviewedAt: at,
	})
	if err != nil {
		log.Error("failed to build card.reviewed event", slog.String("error", err.Error()))
		return
	}
	s.emitter.EmitEvent(ctx, event)
}
