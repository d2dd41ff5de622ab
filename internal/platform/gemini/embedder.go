package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/phrazzld/scry-review/internal/validation"
	"google.golang.org/genai"
)

// Embedder produces answer embeddings with a Gemini embedding model.
type Embedder struct {
	client *Client
}

var _ validation.Embedder = (*Embedder)(nil)

// NewEmbedder returns an Embedder using client's embedding model.
func NewEmbedder(client *Client) *Embedder {
	if client == nil {
		panic("client cannot be nil")
	}
	return &Embedder{client: client}
}

// Embed returns the embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	return withRetry(ctx, e.client, "embed", func(ctx context.Context) ([]float32, error) {
		resp, err := e.client.models.EmbedContent(ctx, e.client.config.EmbeddingModel, genai.Text(text), nil)
		if err != nil {
			return nil, err
		}
		if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
			return nil, fmt.Errorf("%w: no embedding returned", ErrInvalidResponse)
		}
		values := resp.Embeddings[0].Values
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding", ErrInvalidResponse)
		}
		return values, nil
	})
}
