package srs

import (
	"github.com/phrazzld/scry-review/internal/domain"
)

// Params defines all configurable parameters for the FSRS state machine
type Params struct {
	// Values assigned on the first ever grading
	InitialStability  float64
	InitialDifficulty float64

	// Stability multipliers per grade
	StabilityFactor map[domain.Grade]float64

	// Additive difficulty adjustment per grade
	DifficultyAdjustment map[domain.Grade]float64

	// Interval multipliers applied to the new stability per grade
	IntervalFactor map[domain.Grade]float64

	// Limits
	MinStability  float64
	MinDifficulty float64
	MaxDifficulty float64
	MinInterval   int

	// Repetition count up to which Hard and Good leave the card in learning
	LearningRepetitions int

	// Score thresholds used to derive a grade from a validation score
	EasyScore float64
	GoodScore float64
	HardScore float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		InitialStability:  1.0,
		InitialDifficulty: 5.0,

		StabilityFactor: map[domain.Grade]float64{
			domain.GradeAgain: 0.5,
			domain.GradeHard:  1.2,
			domain.GradeGood:  2.5,
			domain.GradeEasy:  4.0,
		},

		DifficultyAdjustment: map[domain.Grade]float64{
			domain.GradeAgain: 1.0,
			domain.GradeHard:  0.15,
			domain.GradeGood:  0.0,
			domain.GradeEasy:  -0.15,
		},

		IntervalFactor: map[domain.Grade]float64{
			domain.GradeHard: 1.2,
			domain.GradeGood: 2.5,
			domain.GradeEasy: 4.0,
		},

		MinStability:  0.1,
		MinDifficulty: domain.MinDifficulty,
		MaxDifficulty: domain.MaxDifficulty,
		MinInterval:   1,

		LearningRepetitions: 1,

		EasyScore: 0.9,
		GoodScore: 0.7,
		HardScore: 0.5,
	}
}
