package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/scry-review/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *config.LLMConfig)
	}{
		{"missing api key", func(c *config.LLMConfig) { c.GeminiAPIKey = "" }},
		{"missing judge model", func(c *config.LLMConfig) { c.JudgeModel = "" }},
		{"missing embedding model", func(c *config.LLMConfig) { c.EmbeddingModel = "" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			assert.ErrorIs(t, validateConfig(cfg), ErrInvalidConfig)

			_, err := NewClient(context.Background(), cfg, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	assert.NoError(t, validateConfig(testConfig()))
}

func TestBackoff(t *testing.T) {
	c, _ := newTestClient(&fakeModels{}, testConfig())

	for attempt := 0; attempt < 4; attempt++ {
		base := time.Duration(1<<attempt) * time.Second
		d := c.backoff(attempt)
		assert.GreaterOrEqual(t, d, base/2, "attempt %d", attempt)
		assert.Less(t, d, base, "attempt %d", attempt)
	}
}

func TestWithRetry(t *testing.T) {
	transient := errors.New("503 service unavailable")

	t.Run("succeeds after transient failures", func(t *testing.T) {
		c, delays := newTestClient(&fakeModels{}, testConfig())
		calls := 0

		got, err := withRetry(context.Background(), c, "op", func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, transient
			}
			return 42, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, 3, calls)
		assert.Len(t, *delays, 2)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		c, delays := newTestClient(&fakeModels{}, testConfig())
		calls := 0

		_, err := withRetry(context.Background(), c, "op", func(context.Context) (int, error) {
			calls++
			return 0, transient
		})
		assert.ErrorIs(t, err, ErrTransientFailure)
		assert.Equal(t, 3, calls)
		assert.Len(t, *delays, 2)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		c, delays := newTestClient(&fakeModels{}, testConfig())
		calls := 0

		_, err := withRetry(context.Background(), c, "op", func(context.Context) (int, error) {
			calls++
			return 0, ErrContentBlocked
		})
		assert.ErrorIs(t, err, ErrContentBlocked)
		assert.Equal(t, 1, calls)
		assert.Empty(t, *delays)
	})

	t.Run("cancelled context stops retries", func(t *testing.T) {
		c, _ := newTestClient(&fakeModels{}, testConfig())
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0

		_, err := withRetry(ctx, c, "op", func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, transient
		})
		assert.ErrorIs(t, err, ErrTransientFailure)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero retries makes one attempt", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxRetries = 0
		c, _ := newTestClient(&fakeModels{}, cfg)
		calls := 0

		_, err := withRetry(context.Background(), c, "op", func(context.Context) (int, error) {
			calls++
			return 0, transient
		})
		assert.ErrorIs(t, err, ErrTransientFailure)
		assert.Equal(t, 1, calls)
	})
}
