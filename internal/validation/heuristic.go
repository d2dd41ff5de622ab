package validation

import (
	"context"

	"github.com/phrazzld/scry-review/internal/domain"
)

// HeuristicValidator scores answers locally by word overlap. It is used when
// no model backend is configured.
type HeuristicValidator struct{}

var _ Validator = HeuristicValidator{}

// NewHeuristicValidator returns a HeuristicValidator.
func NewHeuristicValidator() HeuristicValidator {
	return HeuristicValidator{}
}

// Validate returns an exact match for equal normalized strings and the
// Jaccard similarity of their token sets otherwise.
func (HeuristicValidator) Validate(_ context.Context, in Input) (domain.ValidationOutcome, error) {
	expected := Normalize(in.Expected)
	actual := Normalize(in.Actual)

	if expected == actual {
		return exactOutcome(), nil
	}

	return domain.ValidationOutcome{
		Score:  JaccardSimilarity(expected, actual),
		Method: domain.ValidationMethodHeuristic,
	}, nil
}
