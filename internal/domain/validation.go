package domain

import "fmt"

// ValidationMethod identifies which strategy produced a validation score.
type ValidationMethod string

// Possible validation methods
const (
	// ValidationMethodExact is a normalized string equality match.
	ValidationMethodExact ValidationMethod = "exact"

	// ValidationMethodEmbedding is a cosine similarity over answer embeddings.
	ValidationMethodEmbedding ValidationMethod = "embedding"

	// ValidationMethodLLM is a score assigned by a generative language model.
	ValidationMethodLLM ValidationMethod = "llm"

	// ValidationMethodHeuristic is a word-overlap score computed locally when
	// no model backend is configured.
	ValidationMethodHeuristic ValidationMethod = "heuristic"
)

// Valid reports whether m is a known validation method.
func (m ValidationMethod) Valid() bool {
	switch m {
	case ValidationMethodExact, ValidationMethodEmbedding, ValidationMethodLLM, ValidationMethodHeuristic:
		return true
	default:
		return false
	}
}

// ValidationOutcome is the transient result of grading a free-text answer.
type ValidationOutcome struct {
	Score  float64          `json:"score"`
	Method ValidationMethod `json:"method"`
}

// NewValidationOutcome builds an outcome, rejecting scores outside [0, 1].
func NewValidationOutcome(score float64, method ValidationMethod) (ValidationOutcome, error) {
	if score < 0 || score > 1 {
		return ValidationOutcome{}, fmt.Errorf("%w: %f", ErrInvalidScore, score)
	}
	if !method.Valid() {
		return ValidationOutcome{}, fmt.Errorf("%w: %q", ErrInvalidValidationMethod, method)
	}
	return ValidationOutcome{Score: score, Method: method}, nil
}

// ClampScore limits a score to the closed interval [0, 1].
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
