package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Embedder produces a vector embedding for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// markFailedTimeout bounds recording a failed attempt after the embedding
// call itself ran out of time.
const markFailedTimeout = 5 * time.Second

// EmbeddingStore persists a card's answer embedding and failed attempts.
type EmbeddingStore interface {
	UpdateEmbedding(ctx context.Context, cardID uuid.UUID, embedding []float32) error
	MarkEmbeddingFailed(ctx context.Context, cardID uuid.UUID) error
}

// EmbeddingRequest identifies a card and the answer text to embed.
type EmbeddingRequest struct {
	CardID uuid.UUID
	Text   string
}

// EmbeddingTask computes and stores the embedding for one card.
type EmbeddingTask struct {
	id       uuid.UUID
	request  EmbeddingRequest
	embedder Embedder
	store    EmbeddingStore
	timeout  time.Duration
	onDone   func(cardID uuid.UUID)
}

var _ Task = (*EmbeddingTask)(nil)

// NewEmbeddingTask creates a task for req. A non-positive timeout leaves
// the embedding call bounded only by the worker context.
func NewEmbeddingTask(
	req EmbeddingRequest,
	embedder Embedder,
	store EmbeddingStore,
	timeout time.Duration,
) *EmbeddingTask {
	return &EmbeddingTask{
		id:       uuid.New(),
		request:  req,
		embedder: embedder,
		store:    store,
		timeout:  timeout,
	}
}

// ID implements Task.
func (t *EmbeddingTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *EmbeddingTask) Type() string { return TaskTypeEmbeddingBackfill }

// CardID returns the card whose embedding this task computes.
func (t *EmbeddingTask) CardID() uuid.UUID { return t.request.CardID }

// Execute embeds the text and stores the result. A failed embedding call is
// recorded on the card so the sweeper does not pick it up again; a call cut
// short by pool shutdown is not.
func (t *EmbeddingTask) Execute(ctx context.Context) error {
	if t.onDone != nil {
		defer t.onDone(t.request.CardID)
	}

	parent := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	embedding, err := t.embedder.Embed(ctx, t.request.Text)
	if err != nil {
		err = fmt.Errorf("embed card %s: %w", t.request.CardID, err)
		if parent.Err() != nil {
			return err
		}
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(parent), markFailedTimeout)
		defer cancel()
		if markErr := t.store.MarkEmbeddingFailed(markCtx, t.request.CardID); markErr != nil {
			return errors.Join(err, fmt.Errorf("record failed attempt: %w", markErr))
		}
		return err
	}

	if err := t.store.UpdateEmbedding(ctx, t.request.CardID, embedding); err != nil {
		return fmt.Errorf("store embedding for card %s: %w", t.request.CardID, err)
	}

	return nil
}
