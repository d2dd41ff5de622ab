package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
)

// MockStatsStore is an in-memory store.StatsStore with the same counter
// semantics as the Postgres upserts.
type MockStatsStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.UserStats
	decks map[uuid.UUID]*domain.DeckStats

	// Err, if set, is returned by every mutating method.
	Err error
}

var _ store.StatsStore = (*MockStatsStore)(nil)

// NewMockStatsStore returns an empty MockStatsStore.
func NewMockStatsStore() *MockStatsStore {
	return &MockStatsStore{
		users: make(map[uuid.UUID]*domain.UserStats),
		decks: make(map[uuid.UUID]*domain.DeckStats),
	}
}

// User returns a copy of the user's row, or nil if none exists.
func (m *MockStatsStore) User(userID uuid.UUID) *domain.UserStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.users[userID]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

// Deck returns a copy of the deck's row, or nil if none exists.
func (m *MockStatsStore) Deck(deckID uuid.UUID) *domain.DeckStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.decks[deckID]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

func (m *MockStatsStore) userRow(userID uuid.UUID) *domain.UserStats {
	s, ok := m.users[userID]
	if !ok {
		now := time.Now().UTC()
		s = &domain.UserStats{UserID: userID, CreatedAt: now, UpdatedAt: now}
		m.users[userID] = s
	}
	return s
}

func (m *MockStatsStore) deckRow(deckID, userID uuid.UUID) *domain.DeckStats {
	s, ok := m.decks[deckID]
	if !ok {
		now := time.Now().UTC()
		s = &domain.DeckStats{DeckID: deckID, UserID: userID, CreatedAt: now, UpdatedAt: now}
		m.decks[deckID] = s
	}
	return s
}

// bumpDay applies the days-studied rule and returns the new last active date.
func bumpDay(last *time.Time, date time.Time, days *int) *time.Time {
	if last == nil || last.Before(date) {
		*days++
		d := date
		return &d
	}
	return last
}

// GetOrCreateUserStats implements store.StatsStore.
func (m *MockStatsStore) GetOrCreateUserStats(_ context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.userRow(userID)
	return &cp, nil
}

// GetOrCreateDeckStats implements store.StatsStore.
func (m *MockStatsStore) GetOrCreateDeckStats(_ context.Context, deckID, userID uuid.UUID) (*domain.DeckStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.deckRow(deckID, userID)
	return &cp, nil
}

// IncrementUserReview implements store.StatsStore.
func (m *MockStatsStore) IncrementUserReview(_ context.Context, userID uuid.UUID, correct bool, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	s := m.userRow(userID)
	s.TotalReviews++
	if correct {
		s.CorrectReviews++
	}
	s.LastActiveDate = bumpDay(s.LastActiveDate, date, &s.DaysStudied)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// IncrementDeckReview implements store.StatsStore.
func (m *MockStatsStore) IncrementDeckReview(
	_ context.Context,
	deckID, userID uuid.UUID,
	correct bool,
	date time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	s := m.deckRow(deckID, userID)
	s.TotalReviews++
	if correct {
		s.CorrectReviews++
	}
	s.LastActiveDate = bumpDay(s.LastActiveDate, date, &s.DaysStudied)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// AdjustDeckCardCount implements store.StatsStore.
func (m *MockStatsStore) AdjustDeckCardCount(_ context.Context, deckID, userID uuid.UUID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	s := m.deckRow(deckID, userID)
	s.TotalCards += delta
	if s.TotalCards < 0 {
		s.TotalCards = 0
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// WithTx implements store.StatsStore.
func (m *MockStatsStore) WithTx(_ *sql.Tx) store.StatsStore {
	return m
}
