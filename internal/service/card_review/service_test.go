package card_review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/domain/srs"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/mocks"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) Validate(ctx context.Context, in validation.Input) (domain.ValidationOutcome, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.ValidationOutcome), args.Error(1)
}

type fixture struct {
	cards     *mocks.MockCardStore
	logs      *mocks.MockReviewLogStore
	emitter   *mocks.RecordingEmitter
	validator *mockValidator
	service   *cardReviewServiceImpl
	card      *domain.Card
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	deckID := uuid.New()
	card, err := domain.NewCard(uuid.New(), &deckID, "What is the capital of France?", "Paris")
	require.NoError(t, err)

	f := &fixture{
		cards:     mocks.NewMockCardStore(card),
		logs:      &mocks.MockReviewLogStore{},
		emitter:   &mocks.RecordingEmitter{},
		validator: &mockValidator{},
		card:      card,
		now:       time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	log, _ := logger.NewTestLogger(t)
	svc := NewCardReviewService(
		f.cards,
		StoreReviewRecorder{Cards: f.cards, Logs: f.logs},
		f.validator,
		srs.NewDefaultService(),
		f.emitter,
		Config{Timeout: time.Second},
		log,
	)
	f.service = svc.(*cardReviewServiceImpl)
	f.service.timeFunc = func() time.Time { return f.now }
	return f
}

func (f *fixture) expectOutcome(score float64, method domain.ValidationMethod) {
	f.validator.On("Validate", mock.Anything, mock.AnythingOfType("validation.Input")).
		Return(domain.ValidationOutcome{Score: score, Method: method}, nil)
}

func TestNewCardReviewService_PanicsOnNilDependencies(t *testing.T) {
	cards := mocks.NewMockCardStore()
	recorder := StoreReviewRecorder{Cards: cards, Logs: &mocks.MockReviewLogStore{}}
	v := &mockValidator{}
	s := srs.NewDefaultService()
	e := &mocks.RecordingEmitter{}

	assert.Panics(t, func() { NewCardReviewService(nil, recorder, v, s, e, Config{}, nil) })
	assert.Panics(t, func() { NewCardReviewService(cards, nil, v, s, e, Config{}, nil) })
	assert.Panics(t, func() { NewCardReviewService(cards, recorder, nil, s, e, Config{}, nil) })
	assert.Panics(t, func() { NewCardReviewService(cards, recorder, v, nil, e, Config{}, nil) })
	assert.Panics(t, func() { NewCardReviewService(cards, recorder, v, s, nil, Config{}, nil) })
	assert.NotPanics(t, func() { NewCardReviewService(cards, recorder, v, s, e, Config{}, nil) })
}

func TestSubmitReview_Success(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		method domain.ValidationMethod
		grade  domain.Grade
	}{
		{"exact match is easy", 1.0, domain.ValidationMethodExact, domain.GradeEasy},
		{"close embedding is good", 0.88, domain.ValidationMethodEmbedding, domain.GradeGood},
		{"partial judge score is hard", 0.6, domain.ValidationMethodLLM, domain.GradeHard},
		{"wrong answer is again", 0.1, domain.ValidationMethodLLM, domain.GradeAgain},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectOutcome(tc.score, tc.method)

			result, err := f.service.SubmitReview(context.Background(), f.card.UserID, f.card.ID, "paris")
			require.NoError(t, err)

			assert.Equal(t, f.card.ID, result.CardID)
			assert.Equal(t, tc.score, result.Score)
			assert.Equal(t, tc.method, result.Method)
			assert.Equal(t, tc.grade, result.Grade)
			assert.Equal(t, f.now.AddDate(0, 0, result.ScheduledDays), result.NextReviewAt)

			stored := f.cards.Get(f.card.ID)
			require.NotNil(t, stored)
			assert.Equal(t, 1, stored.MemoryState.Repetitions)
			assert.NotEqual(t, domain.LifecycleNew, stored.MemoryState.State)
			require.NotNil(t, stored.MemoryState.LastReviewedAt)
			assert.True(t, stored.MemoryState.LastReviewedAt.Equal(f.now))
			assert.Equal(t, result.ScheduledDays, stored.MemoryState.ScheduledDays)

			entries := f.logs.Entries()
			require.Len(t, entries, 1)
			assert.Equal(t, f.card.ID, entries[0].CardID)
			assert.Equal(t, f.card.UserID, entries[0].UserID)
			assert.Equal(t, "paris", entries[0].SubmittedAnswer)
			assert.Equal(t, "Paris", entries[0].ExpectedAnswer)
			assert.Equal(t, tc.grade, entries[0].Grade)
			assert.Equal(t, tc.method, entries[0].Method)

			reviewed := f.emitter.OfType(events.CardReviewedEventType)
			require.Len(t, reviewed, 1)
			var payload events.CardReviewedPayload
			require.NoError(t, reviewed[0].UnmarshalPayload(&payload))
			assert.Equal(t, f.card.ID, payload.CardID)
			assert.Equal(t, f.card.UserID, payload.UserID)
			require.NotNil(t, payload.DeckID)
			assert.Equal(t, *f.card.DeckID, *payload.DeckID)
			assert.Equal(t, tc.score, payload.Score)
			assert.Equal(t, int(tc.grade), payload.Grade)
		})
	}
}

func TestSubmitReview_PassesCardToValidator(t *testing.T) {
	f := newFixture(t)
	f.card.AnswerEmbedding = []float32{0.1, 0.2}
	f.cards = mocks.NewMockCardStore(f.card)
	f.service.cardRepo = f.cards
	f.service.recorder = StoreReviewRecorder{Cards: f.cards, Logs: f.logs}

	f.validator.On("Validate", mock.Anything, validation.Input{
		Expected:          "Paris",
		Actual:            "paris, france",
		Question:          "What is the capital of France?",
		ExpectedEmbedding: []float32{0.1, 0.2},
	}).Return(domain.ValidationOutcome{Score: 0.9, Method: domain.ValidationMethodEmbedding}, nil)

	_, err := f.service.SubmitReview(context.Background(), f.card.UserID, f.card.ID, "paris, france")
	require.NoError(t, err)
	f.validator.AssertExpectations(t)
}

func TestSubmitReview_ConsecutiveReviewsAdvanceState(t *testing.T) {
	f := newFixture(t)
	f.expectOutcome(1.0, domain.ValidationMethodExact)

	first, err := f.service.SubmitReview(context.Background(), f.card.UserID, f.card.ID, "Paris")
	require.NoError(t, err)

	f.now = first.NextReviewAt
	second, err := f.service.SubmitReview(context.Background(), f.card.UserID, f.card.ID, "Paris")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, second.ScheduledDays, first.ScheduledDays)
	assert.Equal(t, 2, f.cards.Get(f.card.ID).MemoryState.Repetitions)
	assert.Len(t, f.logs.Entries(), 2)
	assert.Len(t, f.emitter.Events(), 2)
}

func TestSubmitReview_Failures(t *testing.T) {
	persistErr := errors.New("disk full")

	tests := []struct {
		name      string
		setup     func(f *fixture) (userID, cardID uuid.UUID)
		wantErr   error
		wantSvc   bool
		unchanged bool
	}{
		{
			name: "card not found",
			setup: func(f *fixture) (uuid.UUID, uuid.UUID) {
				return f.card.UserID, uuid.New()
			},
			wantErr:   ErrCardNotFound,
			unchanged: true,
		},
		{
			name: "card owned by another user",
			setup: func(f *fixture) (uuid.UUID, uuid.UUID) {
				return uuid.New(), f.card.ID
			},
			wantErr:   ErrCardNotOwned,
			unchanged: true,
		},
		{
			name: "validator fails",
			setup: func(f *fixture) (uuid.UUID, uuid.UUID) {
				f.validator.On("Validate", mock.Anything, mock.Anything).
					Return(domain.ValidationOutcome{}, validation.ErrJudgmentFailed)
				return f.card.UserID, f.card.ID
			},
			wantErr:   ErrValidationFailed,
			unchanged: true,
		},
		{
			name: "card update fails",
			setup: func(f *fixture) (uuid.UUID, uuid.UUID) {
				f.expectOutcome(1.0, domain.ValidationMethodExact)
				f.cards.UpdateFn = func(context.Context, *domain.Card) error { return persistErr }
				return f.card.UserID, f.card.ID
			},
			wantErr:   persistErr,
			wantSvc:   true,
			unchanged: true,
		},
		{
			name: "log append fails",
			setup: func(f *fixture) (uuid.UUID, uuid.UUID) {
				f.expectOutcome(1.0, domain.ValidationMethodExact)
				f.logs.AppendFn = func(context.Context, *domain.ReviewLogEntry) error { return persistErr }
				return f.card.UserID, f.card.ID
			},
			wantErr: persistErr,
			wantSvc: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			userID, cardID := tc.setup(f)

			result, err := f.service.SubmitReview(context.Background(), userID, cardID, "Paris")
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tc.wantErr)

			if tc.wantSvc {
				var svcErr *ServiceError
				require.ErrorAs(t, err, &svcErr)
				assert.Equal(t, "submit_review", svcErr.Operation)
			}

			if tc.unchanged {
				stored := f.cards.Get(f.card.ID)
				assert.Equal(t, domain.NewMemoryState(), stored.MemoryState)
			}
			assert.Empty(t, f.logs.Entries())
			assert.Empty(t, f.emitter.Events())
		})
	}
}

func TestSubmitReview_LoadErrorIsWrapped(t *testing.T) {
	f := newFixture(t)
	loadErr := errors.New("connection reset")
	f.cards.GetByIDFn = func(context.Context, uuid.UUID) (*domain.Card, error) { return nil, loadErr }

	_, err := f.service.SubmitReview(context.Background(), f.card.UserID, f.card.ID, "Paris")
	require.Error(t, err)
	assert.ErrorIs(t, err, loadErr)
	assert.NotErrorIs(t, err, ErrCardNotFound)
}

func TestSubmitReview_AppliesTimeout(t *testing.T) {
	f := newFixture(t)
	f.service.timeout = 20 * time.Millisecond

	f.validator.On("Validate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok)
		}).
		Return(domain.ValidationOutcome{Score: 1, Method: domain.ValidationMethodExact}, nil)

	_, err := f.service.SubmitReview(context.Background(), f.card.UserID, f.card.ID, "Paris")
	require.NoError(t, err)
}

func TestServiceError(t *testing.T) {
	base := errors.New("boom")
	err := NewSubmitReviewError("failed to record review", base)

	assert.Equal(t, "submit_review operation failed: failed to record review: boom", err.Error())
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "submit_review operation failed: x", (&ServiceError{Operation: "submit_review", Message: "x"}).Error())
}
