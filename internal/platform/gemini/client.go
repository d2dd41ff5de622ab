package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/phrazzld/scry-review/internal/config"
	"google.golang.org/genai"
)

// modelsAPI is the subset of genai.Models used by this package.
type modelsAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
	EmbedContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.EmbedContentConfig,
	) (*genai.EmbedContentResponse, error)
}

// Client holds the Gemini connection shared by the Embedder and the Judge.
type Client struct {
	models modelsAPI
	config config.LLMConfig
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand

	// sleep waits for d or until ctx ends. Tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Gemini API client from configuration.
//
// Parameters:
//   - ctx: Context for client construction
//   - cfg: LLM configuration containing the API key, model names and retry settings
//   - logger: A structured logger for operation logging; nil uses slog.Default
//
// Returns:
//   - A Client, or an error wrapping ErrInvalidConfig
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return newClient(client.Models, cfg, logger), nil
}

func newClient(models modelsAPI, cfg config.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelaySeconds < 1 {
		cfg.RetryDelaySeconds = 2
	}
	return &Client{
		models: models,
		config: cfg,
		logger: logger.With(slog.String("component", "gemini")),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  sleepContext,
	}
}

func validateConfig(cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.JudgeModel == "" {
		return fmt.Errorf("%w: judge model cannot be empty", ErrInvalidConfig)
	}
	if cfg.EmbeddingModel == "" {
		return fmt.Errorf("%w: embedding model cannot be empty", ErrInvalidConfig)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoff returns the delay before retry number attempt (0-based):
// baseDelay * 2^attempt scaled by a jitter factor in [0.5, 1.0).
func (c *Client) backoff(attempt int) time.Duration {
	c.mu.Lock()
	jitter := 0.5 + c.rng.Float64()*0.5
	c.mu.Unlock()

	base := time.Duration(c.config.RetryDelaySeconds) * time.Second
	return time.Duration(float64(base<<attempt) * jitter)
}

// withRetry runs call up to MaxRetries+1 times. Permanent errors and
// context cancellation end the loop immediately.
func withRetry[T any](ctx context.Context, c *Client, op string, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	maxRetries := c.config.MaxRetries

	for attempt := 0; ; attempt++ {
		result, err := call(ctx)
		if err == nil {
			if attempt > 0 {
				c.logger.InfoContext(ctx, "gemini call succeeded after retry",
					slog.String("operation", op),
					slog.Int("attempt", attempt+1))
			}
			return result, nil
		}

		if isPermanent(err) {
			c.logger.WarnContext(ctx, "permanent gemini error, not retrying",
				slog.String("operation", op),
				slog.String("error", err.Error()))
			return zero, err
		}

		if ctx.Err() != nil {
			return zero, fmt.Errorf("%w: %w", ErrTransientFailure, ctx.Err())
		}

		if attempt >= maxRetries {
			c.logger.WarnContext(ctx, "maximum gemini retry attempts reached",
				slog.String("operation", op),
				slog.Int("max_retries", maxRetries),
				slog.String("error", err.Error()))
			return zero, fmt.Errorf("%w: %s failed after %d attempts: %v",
				ErrTransientFailure, op, attempt+1, err)
		}

		delay := c.backoff(attempt)
		c.logger.InfoContext(ctx, "retrying gemini call after delay",
			slog.String("operation", op),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		if err := c.sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("%w: %w", ErrTransientFailure, err)
		}
	}
}
