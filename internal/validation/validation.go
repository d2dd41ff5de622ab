// Package validation converts a free-text answer into a scored
// domain.ValidationOutcome.
//
// CascadeValidator tries the cheapest strategy first: normalized exact
// match, then embedding similarity, then a generative judge. The judge is
// the only stage whose failure is surfaced to the caller. HeuristicValidator
// needs no external capabilities and scores by word overlap.
package validation

import (
	"context"
	"errors"
	"strings"

	"github.com/phrazzld/scry-review/internal/domain"
)

// ErrJudgmentFailed is returned when the generative judge cannot produce a score.
var ErrJudgmentFailed = errors.New("answer judgment failed")

// Input is a single answer to be validated.
type Input struct {
	// Expected is the card's stored answer.
	Expected string
	// Actual is the answer submitted by the user.
	Actual string
	// Question gives the judge context.
	Question string
	// ExpectedEmbedding is the stored embedding of Expected, if any. When
	// present, the validator does not embed Expected again.
	ExpectedEmbedding []float32
}

// Validator scores a submitted answer against the expected one.
type Validator interface {
	Validate(ctx context.Context, in Input) (domain.ValidationOutcome, error)
}

// Embedder produces a vector embedding for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Judge scores an answer with a generative model. Implementations return a
// value in [0, 1]; unparsable model output is reported as 0.
type Judge interface {
	Judge(ctx context.Context, expected, actual, question string) (float64, error)
}

// Normalize trims surrounding whitespace and lowercases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func exactOutcome() domain.ValidationOutcome {
	return domain.ValidationOutcome{Score: 1.0, Method: domain.ValidationMethodExact}
}
