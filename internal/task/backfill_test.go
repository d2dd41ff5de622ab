package task_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/mocks"
	"github.com/phrazzld/scry-review/internal/platform/logger"
	"github.com/phrazzld/scry-review/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCard(t *testing.T, answer string) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), nil, "question", answer)
	require.NoError(t, err)
	return card
}

func startPool(t *testing.T, queue *task.TaskQueue, backfiller *task.EmbeddingBackfiller) {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	pool := task.NewWorkerPool(queue, task.WorkerPoolConfig{WorkerCount: 2}, log)
	pool.SetErrorHandler(backfiller.HandleError)
	pool.Start()
	t.Cleanup(pool.Stop)
}

func TestEmbeddingBackfiller_StoresEmbeddings(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	cardA, cardB := newCard(t, "alpha"), newCard(t, "beta")
	cards := mocks.NewMockCardStore(cardA, cardB)
	embedder := &mocks.MockEmbedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{float32(len(text)), 1}, nil
		},
	}

	queue := task.NewTaskQueue(10, log)
	backfiller := task.NewEmbeddingBackfiller(queue, embedder, cards, task.BackfillConfig{}, log)
	startPool(t, queue, backfiller)

	n := backfiller.Backfill([]task.EmbeddingRequest{
		{CardID: cardA.ID, Text: cardA.Answer},
		{CardID: cardB.ID, Text: cardB.Answer},
	})
	assert.Equal(t, 2, n)

	assert.Eventually(t, func() bool {
		return cards.Get(cardA.ID).HasEmbedding() && cards.Get(cardB.ID).HasEmbedding()
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []float32{5, 1}, cards.Get(cardA.ID).AnswerEmbedding)
	assert.Equal(t, []float32{4, 1}, cards.Get(cardB.ID).AnswerEmbedding)
}

func TestEmbeddingBackfiller_FailureIsLoggedAndIsolated(t *testing.T) {
	log, buf := logger.NewTestLogger(t)
	good, bad := newCard(t, "good"), newCard(t, "bad")
	cards := mocks.NewMockCardStore(good, bad)
	embedder := &mocks.MockEmbedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			if text == "bad" {
				return nil, errors.New("model overloaded")
			}
			return []float32{1}, nil
		},
	}

	queue := task.NewTaskQueue(10, log)
	backfiller := task.NewEmbeddingBackfiller(queue, embedder, cards, task.BackfillConfig{}, log)
	startPool(t, queue, backfiller)

	backfiller.Backfill([]task.EmbeddingRequest{
		{CardID: bad.ID, Text: bad.Answer},
		{CardID: good.ID, Text: good.Answer},
	})

	assert.Eventually(t, func() bool {
		return cards.Get(good.ID).HasEmbedding() &&
			strings.Contains(buf.String(), "embedding backfill failed")
	}, 2*time.Second, 10*time.Millisecond)

	assert.False(t, cards.Get(bad.ID).HasEmbedding())
	assert.Eventually(t, func() bool { return cards.EmbeddingFailed(bad.ID) }, 2*time.Second, 10*time.Millisecond)
	assert.False(t, cards.EmbeddingFailed(good.ID))
	logger.AssertLogField(t, buf, "card_id", bad.ID.String())
	logger.AssertLogContains(t, buf, "model overloaded")
}

func TestEmbeddingBackfiller_SkipsWhenQueueFullOrBlank(t *testing.T) {
	log, buf := logger.NewTestLogger(t)
	queue := task.NewTaskQueue(1, log)
	backfiller := task.NewEmbeddingBackfiller(queue, &mocks.MockEmbedder{}, mocks.NewMockCardStore(),
		task.BackfillConfig{}, log)

	n := backfiller.Backfill([]task.EmbeddingRequest{
		{CardID: uuid.New(), Text: "one"},
		{CardID: uuid.New(), Text: "   "},
		{CardID: uuid.New(), Text: "two"},
	})

	assert.Equal(t, 1, n)
	logger.AssertLogContains(t, buf, "skipping embedding request with empty text")
	logger.AssertLogContains(t, buf, "embedding request not enqueued")
}

func TestEmbeddingBackfiller_SkipsCardsAlreadyPending(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	card := newCard(t, "answer")
	cards := mocks.NewMockCardStore(card)
	embedder := &mocks.MockEmbedder{Embedding: []float32{1}}
	queue := task.NewTaskQueue(10, log)
	backfiller := task.NewEmbeddingBackfiller(queue, embedder, cards, task.BackfillConfig{}, log)
	req := []task.EmbeddingRequest{{CardID: card.ID, Text: card.Answer}}

	assert.Equal(t, 1, backfiller.Backfill(req))
	assert.Equal(t, 0, backfiller.Backfill(req))
	assert.Equal(t, 1, queue.Len())
	assert.Equal(t, 1, backfiller.Pending())

	queued := <-queue.Tasks()
	require.NoError(t, queued.Execute(context.Background()))
	assert.Equal(t, 0, backfiller.Pending())

	assert.Equal(t, 1, backfiller.Backfill(req))
}

func TestEmbeddingBackfiller_RejectedEnqueueReleasesCard(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	queue := task.NewTaskQueue(1, log)
	backfiller := task.NewEmbeddingBackfiller(queue, &mocks.MockEmbedder{}, mocks.NewMockCardStore(),
		task.BackfillConfig{}, log)
	blocked := task.EmbeddingRequest{CardID: uuid.New(), Text: "second"}

	assert.Equal(t, 1, backfiller.Backfill([]task.EmbeddingRequest{{CardID: uuid.New(), Text: "first"}}))
	assert.Equal(t, 0, backfiller.Backfill([]task.EmbeddingRequest{blocked}))
	assert.Equal(t, 1, backfiller.Pending())

	<-queue.Tasks()
	assert.Equal(t, 1, backfiller.Backfill([]task.EmbeddingRequest{blocked}))
}

func TestEmbeddingBackfiller_ClosedQueue(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	queue := task.NewTaskQueue(5, log)
	queue.Close()
	backfiller := task.NewEmbeddingBackfiller(queue, &mocks.MockEmbedder{}, mocks.NewMockCardStore(),
		task.BackfillConfig{}, log)

	assert.Equal(t, 0, backfiller.Backfill([]task.EmbeddingRequest{{CardID: uuid.New(), Text: "x"}}))
}

func TestEmbeddingTask_Execute(t *testing.T) {
	card := newCard(t, "answer")
	cards := mocks.NewMockCardStore(card)

	var hadDeadline bool
	embedder := &mocks.MockEmbedder{
		EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
			_, hadDeadline = ctx.Deadline()
			return []float32{0.5}, nil
		},
	}

	tk := task.NewEmbeddingTask(task.EmbeddingRequest{CardID: card.ID, Text: "answer"},
		embedder, cards, time.Second)

	require.NoError(t, tk.Execute(context.Background()))
	assert.True(t, hadDeadline)
	assert.Equal(t, task.TaskTypeEmbeddingBackfill, tk.Type())
	assert.Equal(t, card.ID, tk.CardID())
	assert.Equal(t, []float32{0.5}, cards.Get(card.ID).AnswerEmbedding)

	missing := task.NewEmbeddingTask(task.EmbeddingRequest{CardID: uuid.New(), Text: "x"},
		embedder, cards, 0)
	assert.Error(t, missing.Execute(context.Background()))
}

func TestEmbeddingTask_FailedAttempts(t *testing.T) {
	blocked := errors.New("content blocked")

	t.Run("embedding failure is recorded", func(t *testing.T) {
		card := newCard(t, "answer")
		cards := mocks.NewMockCardStore(card)
		tk := task.NewEmbeddingTask(task.EmbeddingRequest{CardID: card.ID, Text: card.Answer},
			&mocks.MockEmbedder{Err: blocked}, cards, time.Second)

		err := tk.Execute(context.Background())
		assert.ErrorIs(t, err, blocked)
		assert.True(t, cards.EmbeddingFailed(card.ID))
	})

	t.Run("recording failure is reported with the cause", func(t *testing.T) {
		card := newCard(t, "answer")
		cards := mocks.NewMockCardStore(card)
		cards.MarkEmbeddingFailedFn = func(ctx context.Context, id uuid.UUID) error {
			return errors.New("db down")
		}
		tk := task.NewEmbeddingTask(task.EmbeddingRequest{CardID: card.ID, Text: card.Answer},
			&mocks.MockEmbedder{Err: blocked}, cards, 0)

		err := tk.Execute(context.Background())
		assert.ErrorIs(t, err, blocked)
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("shutdown is not a failed attempt", func(t *testing.T) {
		card := newCard(t, "answer")
		cards := mocks.NewMockCardStore(card)
		ctx, cancel := context.WithCancel(context.Background())
		embedder := &mocks.MockEmbedder{
			EmbedFn: func(ctx context.Context, text string) ([]float32, error) {
				cancel()
				return nil, ctx.Err()
			},
		}
		tk := task.NewEmbeddingTask(task.EmbeddingRequest{CardID: card.ID, Text: card.Answer},
			embedder, cards, 0)

		assert.ErrorIs(t, tk.Execute(ctx), context.Canceled)
		assert.False(t, cards.EmbeddingFailed(card.ID))
		assert.Equal(t, 0, cards.Calls("MarkEmbeddingFailed"))
	})
}

func TestNewEmbeddingBackfiller_NilDependencies(t *testing.T) {
	queue := task.NewTaskQueue(1, nil)
	assert.Panics(t, func() {
		task.NewEmbeddingBackfiller(nil, &mocks.MockEmbedder{}, mocks.NewMockCardStore(), task.BackfillConfig{}, nil)
	})
	assert.Panics(t, func() {
		task.NewEmbeddingBackfiller(queue, nil, mocks.NewMockCardStore(), task.BackfillConfig{}, nil)
	})
	assert.Panics(t, func() {
		task.NewEmbeddingBackfiller(queue, &mocks.MockEmbedder{}, nil, task.BackfillConfig{}, nil)
	})
}
