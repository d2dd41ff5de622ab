package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/store"
)

// MockReviewLogStore records appended entries in memory.
type MockReviewLogStore struct {
	mu      sync.Mutex
	entries []*domain.ReviewLogEntry

	AppendFn func(ctx context.Context, entry *domain.ReviewLogEntry) error
}

var _ store.ReviewLogStore = (*MockReviewLogStore)(nil)

// Append implements store.ReviewLogStore.
func (m *MockReviewLogStore) Append(ctx context.Context, entry *domain.ReviewLogEntry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

// Entries returns the appended entries in order.
func (m *MockReviewLogStore) Entries() []*domain.ReviewLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ReviewLogEntry(nil), m.entries...)
}

// WithTx implements store.ReviewLogStore.
func (m *MockReviewLogStore) WithTx(_ *sql.Tx) store.ReviewLogStore {
	return m
}
