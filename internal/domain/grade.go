package domain

import "fmt"

// Grade is the four-level outcome of a review that drives the scheduler.
type Grade int

// Possible grade values
const (
	GradeAgain Grade = 1
	GradeHard  Grade = 2
	GradeGood  Grade = 3
	GradeEasy  Grade = 4
)

// Valid reports whether g is one of Again, Hard, Good or Easy.
func (g Grade) Valid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// String returns the lowercase name of the grade.
func (g Grade) String() string {
	switch g {
	case GradeAgain:
		return "again"
	case GradeHard:
		return "hard"
	case GradeGood:
		return "good"
	case GradeEasy:
		return "easy"
	default:
		return fmt.Sprintf("grade(%d)", int(g))
	}
}

// ParseGrade converts an integer rating into a Grade, rejecting anything
// outside 1..4.
func ParseGrade(v int) (Grade, error) {
	g := Grade(v)
	if !g.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidGrade, v)
	}
	return g, nil
}
