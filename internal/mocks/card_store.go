package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
)

// MockCardStore is an in-memory store.CardStore. Any *Fn field that is set
// replaces the in-memory behavior of the matching method.
type MockCardStore struct {
	mu     sync.Mutex
	cards  map[uuid.UUID]*domain.Card
	failed map[uuid.UUID]bool
	calls  map[string]int

	CreateFn                func(ctx context.Context, card *domain.Card) error
	CreateMultipleFn        func(ctx context.Context, cards []*domain.Card) error
	GetByIDFn               func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	UpdateFn                func(ctx context.Context, card *domain.Card) error
	UpdateEmbeddingFn       func(ctx context.Context, id uuid.UUID, embedding []float32) error
	MarkEmbeddingFailedFn   func(ctx context.Context, id uuid.UUID) error
	ListByUserFn            func(ctx context.Context, userID uuid.UUID, filter store.CardFilter) ([]*domain.Card, error)
	DeleteFn                func(ctx context.Context, id uuid.UUID) error
	ListMissingEmbeddingsFn func(ctx context.Context, limit int) ([]*domain.Card, error)
}

var _ store.CardStore = (*MockCardStore)(nil)

// NewMockCardStore returns a MockCardStore seeded with cards.
func NewMockCardStore(cards ...*domain.Card) *MockCardStore {
	m := &MockCardStore{
		cards:  make(map[uuid.UUID]*domain.Card),
		failed: make(map[uuid.UUID]bool),
		calls:  make(map[string]int),
	}
	for _, c := range cards {
		m.cards[c.ID] = cloneCard(c)
	}
	return m
}

func cloneCard(c *domain.Card) *domain.Card {
	cp := *c
	if c.AnswerEmbedding != nil {
		cp.AnswerEmbedding = append([]float32(nil), c.AnswerEmbedding...)
	}
	return &cp
}

func (m *MockCardStore) record(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

// Calls returns how many times method was invoked.
func (m *MockCardStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Get returns a copy of the stored card, or nil.
func (m *MockCardStore) Get(id uuid.UUID) *domain.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return nil
	}
	return cloneCard(c)
}

// EmbeddingFailed reports whether a failed embedding attempt is recorded for id.
func (m *MockCardStore) EmbeddingFailed(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed[id]
}

// Len returns the number of stored cards.
func (m *MockCardStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cards)
}

// Create implements store.CardStore.
func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[card.ID]; ok {
		return store.ErrDuplicate
	}
	m.cards[card.ID] = cloneCard(card)
	return nil
}

// CreateMultiple implements store.CardStore.
func (m *MockCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	m.record("CreateMultiple")
	if m.CreateMultipleFn != nil {
		return m.CreateMultipleFn(ctx, cards)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cards {
		m.cards[c.ID] = cloneCard(c)
	}
	return nil
}

// GetByID implements store.CardStore.
func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	m.record("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if c := m.Get(id); c != nil {
		return c, nil
	}
	return nil, store.ErrCardNotFound
}

// Update implements store.CardStore.
func (m *MockCardStore) Update(ctx context.Context, card *domain.Card) error {
	m.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, card)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[card.ID]; !ok {
		return store.ErrCardNotFound
	}
	m.cards[card.ID] = cloneCard(card)
	return nil
}

// UpdateEmbedding implements store.CardStore.
func (m *MockCardStore) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	m.record("UpdateEmbedding")
	if m.UpdateEmbeddingFn != nil {
		return m.UpdateEmbeddingFn(ctx, id, embedding)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	c.AnswerEmbedding = append([]float32(nil), embedding...)
	delete(m.failed, id)
	return nil
}

// MarkEmbeddingFailed implements store.CardStore.
func (m *MockCardStore) MarkEmbeddingFailed(ctx context.Context, id uuid.UUID) error {
	m.record("MarkEmbeddingFailed")
	if m.MarkEmbeddingFailedFn != nil {
		return m.MarkEmbeddingFailedFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.cards[id]; ok && !c.HasEmbedding() {
		m.failed[id] = true
	}
	return nil
}

// ListByUser implements store.CardStore.
func (m *MockCardStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	filter store.CardFilter,
) ([]*domain.Card, error) {
	m.record("ListByUser")
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Card
	for _, c := range m.cards {
		if c.UserID != userID {
			continue
		}
		if filter.DeckID != nil && (c.DeckID == nil || *c.DeckID != *filter.DeckID) {
			continue
		}
		if filter.DueBefore != nil {
			if due := c.MemoryState.DueAt(); due != nil && due.After(*filter.DueBefore) {
				continue
			}
		}
		out = append(out, cloneCard(c))
	}
	if filter.DueBefore != nil {
		sort.Slice(out, func(i, j int) bool {
			return dueOrder(out[i]).Before(dueOrder(out[j]))
		})
	} else {
		sort.Slice(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// dueOrder places never-reviewed cards after every scheduled one.
func dueOrder(c *domain.Card) time.Time {
	if due := c.MemoryState.DueAt(); due != nil {
		return *due
	}
	return time.Unix(1<<40, 0)
}

// Delete implements store.CardStore.
func (m *MockCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(m.cards, id)
	return nil
}

// ListMissingEmbeddings implements store.CardStore.
func (m *MockCardStore) ListMissingEmbeddings(ctx context.Context, limit int) ([]*domain.Card, error) {
	m.record("ListMissingEmbeddings")
	if m.ListMissingEmbeddingsFn != nil {
		return m.ListMissingEmbeddingsFn(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var missing []*domain.Card
	for _, c := range m.cards {
		if !c.HasEmbedding() && !m.failed[c.ID] {
			missing = append(missing, cloneCard(c))
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return missing[i].CreatedAt.Before(missing[j].CreatedAt)
	})
	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}
	return missing, nil
}

// WithTx implements store.CardStore. The in-memory store has no transactions.
func (m *MockCardStore) WithTx(_ *sql.Tx) store.CardStore {
	return m
}
