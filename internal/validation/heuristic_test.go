package validation_test

import (
	"context"
	"testing"

	"github.com/phrazzld/scry-review/internal/domain"
	"github.com/phrazzld/scry-review/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicValidator(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
		actual   string
		score    float64
		method   domain.ValidationMethod
	}{
		{"exact after normalization", "The Cat", " the cat ", 1.0, domain.ValidationMethodExact},
		{"both empty", "", "   ", 1.0, domain.ValidationMethodExact},
		{"partial overlap", "the black cat", "the cat", 2.0 / 3.0, domain.ValidationMethodHeuristic},
		{"reordered words", "cat the", "the cat", 1.0, domain.ValidationMethodHeuristic},
		{"no overlap", "dog", "cat", 0, domain.ValidationMethodHeuristic},
		{"one side empty", "dog", "", 0, domain.ValidationMethodHeuristic},
	}

	v := validation.NewHeuristicValidator()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := v.Validate(context.Background(), validation.Input{
				Expected: tc.expected,
				Actual:   tc.actual,
			})

			require.NoError(t, err)
			assert.InDelta(t, tc.score, outcome.Score, 1e-9)
			assert.Equal(t, tc.method, outcome.Method)
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	testCases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
		{"zero magnitude", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, validation.CosineSimilarity(tc.a, tc.b), 1e-6)
		})
	}
}

func TestJaccardSimilarity_DuplicateTokens(t *testing.T) {
	assert.InDelta(t, 1.0, validation.JaccardSimilarity("a a b", "b a"), 1e-9)
	assert.Equal(t, 0.0, validation.JaccardSimilarity("", ""))
}
