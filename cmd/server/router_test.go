package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/mocks"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/service"
	"github.com/phrazzld/scry-review/internal/service/auth"
	"github.com/phrazzld/scry-review/internal/service/card_review"
	"github.com/phrazzld/scry-review/internal/service/statistics"
	"github.com/phrazzld/scry-review/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Embedding the interfaces satisfies them; any method the test does not
// override panics if routed to.
type stubCardService struct{ service.CardService }

type stubDeckService struct{ service.DeckService }

type stubReviewService struct{ card_review.CardReviewService }

type stubStatsService struct{ statistics.Service }

func (s stubStatsService) GetUserStats(_ context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	return &domain.UserStats{UserID: userID, TotalReviews: 2, CorrectReviews: 1, DaysStudied: 1}, nil
}

func newTestApplication(t *testing.T, userID uuid.UUID) (*application, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log, _ := logger.NewTestLogger(t)
	jwt := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			if token != "valid" {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: userID, TokenType: "access"}, nil
		},
	}

	return &application{
		config:            &config.Config{Server: config.ServerConfig{Port: 0, LogLevel: "debug"}},
		logger:            log,
		db:                db,
		jwtService:        jwt,
		cardService:       stubCardService{},
		deckService:       stubDeckService{},
		cardReviewService: stubReviewService{},
		statsService:      stubStatsService{},
	}, mock
}

func TestSetupRouter(t *testing.T) {
	userID := uuid.New()

	t.Run("health pings the database", func(t *testing.T) {
		app, mock := newTestApplication(t, userID)
		mock.ExpectPing()

		w := httptest.NewRecorder()
		app.setupRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("api requires a bearer token", func(t *testing.T) {
		app, _ := newTestApplication(t, userID)

		w := httptest.NewRecorder()
		app.setupRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		app, _ := newTestApplication(t, userID)

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.Header.Set("Authorization", "Bearer forged")
		w := httptest.NewRecorder()
		app.setupRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("authenticated stats request", func(t *testing.T) {
		app, _ := newTestApplication(t, userID)

		req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
		req.Header.Set("Authorization", "Bearer valid")
		w := httptest.NewRecorder()
		app.setupRouter().ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.EqualValues(t, 2, body["total_reviews"])
		assert.EqualValues(t, 50, body["accuracy_percentage"])
	})

	t.Run("unknown route", func(t *testing.T) {
		app, _ := newTestApplication(t, userID)

		req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
		req.Header.Set("Authorization", "Bearer valid")
		w := httptest.NewRecorder()
		app.setupRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestValidateMigrationCommand(t *testing.T) {
	for _, cmd := range []string{"up", "down", "status", "version"} {
		assert.NoError(t, validateMigrationCommand(cmd), cmd)
	}
	for _, cmd := range []string{"", "create", "reset", "UP"} {
		assert.Error(t, validateMigrationCommand(cmd), cmd)
	}
}

func TestNewValidatorWithoutBackend(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	v := newValidator(embeddingBackend{}, config.ValidationConfig{}, log)

	outcome, err := v.Validate(context.Background(), validation.Input{Expected: "Paris", Actual: " paris "})
	require.NoError(t, err)
	assert.Equal(t, 1.0, outcome.Score)
	assert.Equal(t, domain.ValidationMethodExact, outcome.Method)
}
