package srs

import (
	"fmt"
	"math"
	"time"

	"github.com/phrazzld/scry-review/internal/domain"
)

// calculateNewStability determines the stability after a grading.
//
// Stability models how long the memory survives; each grade scales it by a
// fixed factor from params. Lapses (Again) halve it, but it never drops below
// params.MinStability so a forgotten card still grows on its next success.
//
// Parameters:
//   - current: The stability before the review
//   - grade: The review grade (Again, Hard, Good, Easy)
//   - params: Configuration parameters for the algorithm
//
// Returns:
//   - The new stability value
func calculateNewStability(current float64, grade domain.Grade, params *Params) float64 {
	newStability := current * params.StabilityFactor[grade]
	if grade == domain.GradeAgain {
		return math.Max(newStability, params.MinStability)
	}
	return newStability
}

// calculateNewDifficulty determines the difficulty after a grading.
//
// Again makes the card markedly harder, Hard slightly harder, Good leaves it
// unchanged and Easy slightly easier. The result always stays within
// [params.MinDifficulty, params.MaxDifficulty].
func calculateNewDifficulty(current float64, grade domain.Grade, params *Params) float64 {
	newDifficulty := current + params.DifficultyAdjustment[grade]

	if newDifficulty > params.MaxDifficulty {
		newDifficulty = params.MaxDifficulty
	}
	if newDifficulty < params.MinDifficulty {
		newDifficulty = params.MinDifficulty
	}

	return newDifficulty
}

// calculateScheduledDays determines how many days until the next review.
//
// Again always schedules the card for tomorrow. Other grades multiply the new
// stability by the grade's interval factor and floor the result, with a
// minimum of params.MinInterval days.
func calculateScheduledDays(stability float64, grade domain.Grade, params *Params) int {
	if grade == domain.GradeAgain {
		return params.MinInterval
	}

	days := int(math.Floor(stability * params.IntervalFactor[grade]))
	if days < params.MinInterval {
		return params.MinInterval
	}
	return days
}

// calculateLifecycleState determines the lifecycle state after a grading.
//
// Again moves the card to relearning and Easy graduates it to review. Hard
// and Good keep it in learning while it has been graded at most
// params.LearningRepetitions times (counting this review), then move it to
// review.
func calculateLifecycleState(repetitions int, grade domain.Grade, params *Params) domain.LifecycleState {
	switch grade {
	case domain.GradeAgain:
		return domain.LifecycleRelearning
	case domain.GradeEasy:
		return domain.LifecycleReview
	default:
		if repetitions <= params.LearningRepetitions {
			return domain.LifecycleLearning
		}
		return domain.LifecycleReview
	}
}

// calculateNextState computes the full memory state after a valid grade.
//
// This is the pure core of the scheduler: it has no I/O and never fails for a
// grade in Again..Easy. The input state is not modified.
//
// The first ever grading (Repetitions == 0) starts from params.InitialStability
// and params.InitialDifficulty regardless of what the state held, then the
// grade-specific rule is applied. Every grading resets ElapsedDays, increments
// Repetitions and stamps LastReviewedAt with now.
func calculateNextState(state domain.MemoryState, grade domain.Grade, now time.Time, params *Params) domain.MemoryState {
	next := state

	if state.Repetitions == 0 {
		next.Stability = params.InitialStability
		next.Difficulty = params.InitialDifficulty
	}

	next.ElapsedDays = 0
	next.Repetitions = state.Repetitions + 1

	reviewedAt := now.UTC()
	next.LastReviewedAt = &reviewedAt

	if grade == domain.GradeAgain {
		next.Lapses = state.Lapses + 1
	}

	next.Stability = calculateNewStability(next.Stability, grade, params)
	next.Difficulty = calculateNewDifficulty(next.Difficulty, grade, params)
	next.ScheduledDays = calculateScheduledDays(next.Stability, grade, params)
	next.State = calculateLifecycleState(next.Repetitions, grade, params)

	return next
}

// Advance computes the next memory state for a grade using default params.
// Grades outside Again..Easy are rejected with ErrInvalidGrade.
func Advance(state domain.MemoryState, grade domain.Grade, now time.Time) (domain.MemoryState, error) {
	return advanceWithParams(state, grade, now, NewDefaultParams())
}

// AdvanceLenient is Advance for callers that explicitly want unknown grades
// treated as Good. New code should use Advance.
func AdvanceLenient(state domain.MemoryState, grade domain.Grade, now time.Time) domain.MemoryState {
	if !grade.Valid() {
		grade = domain.GradeGood
	}
	return calculateNextState(state, grade, now, NewDefaultParams())
}

func advanceWithParams(
	state domain.MemoryState,
	grade domain.Grade,
	now time.Time,
	params *Params,
) (domain.MemoryState, error) {
	if !grade.Valid() {
		return domain.MemoryState{}, fmt.Errorf("%w: %d", ErrInvalidGrade, int(grade))
	}
	return calculateNextState(state, grade, now, params), nil
}

// scoreToGrade maps a validation score onto a grade using the thresholds in
// params: Easy, then Good, then Hard, otherwise Again.
func scoreToGrade(score float64, params *Params) domain.Grade {
	switch {
	case score >= params.EasyScore:
		return domain.GradeEasy
	case score >= params.GoodScore:
		return domain.GradeGood
	case score >= params.HardScore:
		return domain.GradeHard
	default:
		return domain.GradeAgain
	}
}

// ScoreToGrade maps a validation score onto a grade with the default thresholds
// (0.9 Easy, 0.7 Good, 0.5 Hard).
func ScoreToGrade(score float64) domain.Grade {
	return scoreToGrade(score, NewDefaultParams())
}
