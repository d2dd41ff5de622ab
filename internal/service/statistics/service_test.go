package statistics

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_GetUserStats_CreatesZeroRow(t *testing.T) {
	svc := NewService(mocks.NewMockStatsStore(), mocks.NewMockDeckStore(), discardLogger)
	userID := uuid.New()

	stats, err := svc.GetUserStats(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, userID, stats.UserID)
	assert.Equal(t, 0, stats.TotalReviews)
	assert.Equal(t, 0.0, stats.AccuracyPercentage())
	assert.Nil(t, stats.LastActiveDate)
}

func TestService_GetDeckStats(t *testing.T) {
	ownerID := uuid.New()
	deck, err := domain.NewDeck(ownerID, "Spanish")
	require.NoError(t, err)

	statsStore := mocks.NewMockStatsStore()
	require.NoError(t, statsStore.AdjustDeckCardCount(context.Background(), deck.ID, ownerID, 3))
	svc := NewService(statsStore, mocks.NewMockDeckStore(deck), discardLogger)

	testCases := []struct {
		name    string
		userID  uuid.UUID
		deckID  uuid.UUID
		wantErr error
	}{
		{"owner", ownerID, deck.ID, nil},
		{"other user", uuid.New(), deck.ID, ErrDeckNotOwned},
		{"missing deck", ownerID, uuid.New(), ErrDeckNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stats, err := svc.GetDeckStats(context.Background(), tc.userID, tc.deckID)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, stats)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, stats.TotalCards)
		})
	}
}

func TestNewService_NilDependencies(t *testing.T) {
	assert.Panics(t, func() { NewService(nil, mocks.NewMockDeckStore(), nil) })
	assert.Panics(t, func() { NewService(mocks.NewMockStatsStore(), nil, nil) })
	assert.Panics(t, func() { NewAggregator(nil, mocks.NewMockCardStore(), nil) })
}
