package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/platform/logger"
)

// Defaults for CascadeConfig fields left at zero.
const (
	DefaultEmbeddingThreshold = 0.85
	DefaultEmbeddingTimeout   = 5 * time.Second
	DefaultJudgeTimeout       = 15 * time.Second

	// borderlineSimilarity marks embedding misses worth an info-level log.
	borderlineSimilarity = 0.6
)

// CascadeConfig tunes CascadeValidator.
type CascadeConfig struct {
	EmbeddingThreshold float64
	EmbeddingTimeout   time.Duration
	JudgeTimeout       time.Duration
}

func (c CascadeConfig) withDefaults() CascadeConfig {
	if c.EmbeddingThreshold <= 0 {
		c.EmbeddingThreshold = DefaultEmbeddingThreshold
	}
	if c.EmbeddingTimeout <= 0 {
		c.EmbeddingTimeout = DefaultEmbeddingTimeout
	}
	if c.JudgeTimeout <= 0 {
		c.JudgeTimeout = DefaultJudgeTimeout
	}
	return c
}

// CascadeValidator runs exact match, then embedding similarity, then the judge.
type CascadeValidator struct {
	embedder Embedder
	judge    Judge
	config   CascadeConfig
	logger   *slog.Logger
}

var _ Validator = (*CascadeValidator)(nil)

// NewCascadeValidator creates a CascadeValidator.
// It panics if embedder or judge is nil.
func NewCascadeValidator(
	embedder Embedder,
	judge Judge,
	config CascadeConfig,
	log *slog.Logger,
) *CascadeValidator {
	if embedder == nil {
		panic("embedder cannot be nil")
	}
	if judge == nil {
		panic("judge cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &CascadeValidator{
		embedder: embedder,
		judge:    judge,
		config:   config.withDefaults(),
		logger:   log.With(slog.String("component", "cascade_validator")),
	}
}

// Validate implements Validator.
func (v *CascadeValidator) Validate(ctx context.Context, in Input) (domain.ValidationOutcome, error) {
	log := logger.FromContextOrDefault(ctx, v.logger)

	if Normalize(in.Expected) == Normalize(in.Actual) {
		return exactOutcome(), nil
	}

	similarity, err := v.similarity(ctx, in)
	switch {
	case err != nil:
		log.Warn("embedding similarity unavailable, falling back to judge",
			slog.String("error", err.Error()))
	case similarity >= v.config.EmbeddingThreshold:
		return domain.ValidationOutcome{
			Score:  domain.ClampScore(similarity),
			Method: domain.ValidationMethodEmbedding,
		}, nil
	case similarity >= borderlineSimilarity:
		log.Info("embedding similarity borderline, falling back to judge",
			slog.Float64("similarity", similarity))
	default:
		log.Debug("embedding similarity low, falling back to judge",
			slog.Float64("similarity", similarity))
	}

	judgeCtx, cancel := context.WithTimeout(ctx, v.config.JudgeTimeout)
	defer cancel()

	score, err := v.judge.Judge(judgeCtx, in.Expected, in.Actual, in.Question)
	if err != nil {
		return domain.ValidationOutcome{}, fmt.Errorf("%w: %w", ErrJudgmentFailed, err)
	}

	return domain.ValidationOutcome{
		Score:  domain.ClampScore(score),
		Method: domain.ValidationMethodLLM,
	}, nil
}

// similarity embeds whatever is missing and compares the two answers.
func (v *CascadeValidator) similarity(ctx context.Context, in Input) (float64, error) {
	embedCtx, cancel := context.WithTimeout(ctx, v.config.EmbeddingTimeout)
	defer cancel()

	expected := in.ExpectedEmbedding
	if len(expected) == 0 {
		var err error
		expected, err = v.embedder.Embed(embedCtx, in.Expected)
		if err != nil {
			return 0, fmt.Errorf("embed expected answer: %w", err)
		}
	}

	actual, err := v.embedder.Embed(embedCtx, in.Actual)
	if err != nil {
		return 0, fmt.Errorf("embed submitted answer: %w", err)
	}

	return CosineSimilarity(expected, actual), nil
}
