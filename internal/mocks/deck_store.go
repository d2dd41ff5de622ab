package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
)

// MockDeckStore is an in-memory store.DeckStore.
type MockDeckStore struct {
	mu    sync.Mutex
	decks map[uuid.UUID]*domain.Deck

	CreateFn  func(ctx context.Context, deck *domain.Deck) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Deck, error)
	DeleteFn  func(ctx context.Context, id uuid.UUID) error
}

var _ store.DeckStore = (*MockDeckStore)(nil)

// NewMockDeckStore returns a MockDeckStore seeded with decks.
func NewMockDeckStore(decks ...*domain.Deck) *MockDeckStore {
	m := &MockDeckStore{decks: make(map[uuid.UUID]*domain.Deck)}
	for _, d := range decks {
		cp := *d
		m.decks[d.ID] = &cp
	}
	return m
}

// All returns copies of every stored deck.
func (m *MockDeckStore) All() []*domain.Deck {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Deck, 0, len(m.decks))
	for _, d := range m.decks {
		cp := *d
		out = append(out, &cp)
	}
	return out
}

// Create implements store.DeckStore.
func (m *MockDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, deck)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *deck
	m.decks[deck.ID] = &cp
	return nil
}

// GetByID implements store.DeckStore.
func (m *MockDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.decks[id]
	if !ok {
		return nil, store.ErrDeckNotFound
	}
	cp := *d
	return &cp, nil
}

// ListByUser implements store.DeckStore.
func (m *MockDeckStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Deck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Deck
	for _, d := range m.decks {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete implements store.DeckStore.
func (m *MockDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.decks[id]; !ok {
		return store.ErrDeckNotFound
	}
	delete(m.decks, id)
	return nil
}

// WithTx implements store.DeckStore.
func (m *MockDeckStore) WithTx(_ *sql.Tx) store.DeckStore {
	return m
}
