package mocks

import (
	"context"
	"sync"
)

// MockEmbedder implements validation.Embedder and task.Embedder for testing.
type MockEmbedder struct {
	// EmbedFn allows test cases to mock the Embed behavior
	EmbedFn func(ctx context.Context, text string) ([]float32, error)

	// Default values used when EmbedFn isn't set
	Embedding []float32
	Err       error

	mu    sync.Mutex
	texts []string
}

// Embed records text and returns EmbedFn's result or the defaults.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()

	if m.EmbedFn != nil {
		return m.EmbedFn(ctx, text)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Embedding, nil
}

// Texts returns the texts passed to Embed, in call order.
func (m *MockEmbedder) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}
