package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseGrade(t *testing.T) {
	t.Parallel()

	for v := 1; v <= 4; v++ {
		g, err := ParseGrade(v)
		if err != nil {
			t.Errorf("Expected grade %d to parse, got %v", v, err)
		}
		if int(g) != v {
			t.Errorf("Expected %d, got %d", v, g)
		}
	}

	for _, v := range []int{-1, 0, 5, 42} {
		if _, err := ParseGrade(v); !errors.Is(err, ErrInvalidGrade) {
			t.Errorf("Expected ErrInvalidGrade for %d, got %v", v, err)
		}
	}
}

func TestGrade_String(t *testing.T) {
	t.Parallel()
	if GradeAgain.String() != "again" || GradeEasy.String() != "easy" {
		t.Errorf("unexpected grade names: %s %s", GradeAgain, GradeEasy)
	}
	if Grade(9).String() != "grade(9)" {
		t.Errorf("unexpected name for unknown grade: %s", Grade(9))
	}
}

func TestNewValidationOutcome(t *testing.T) {
	t.Parallel()

	if _, err := NewValidationOutcome(0.5, ValidationMethodEmbedding); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if _, err := NewValidationOutcome(1.2, ValidationMethodLLM); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("Expected ErrInvalidScore, got %v", err)
	}
	if _, err := NewValidationOutcome(0.5, "guess"); !errors.Is(err, ErrInvalidValidationMethod) {
		t.Errorf("Expected ErrInvalidValidationMethod, got %v", err)
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()
	cases := map[float64]float64{-0.3: 0, 0: 0, 0.42: 0.42, 1: 1, 7: 1}
	for in, want := range cases {
		if got := ClampScore(in); got != want {
			t.Errorf("ClampScore(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNewReviewLogEntry(t *testing.T) {
	t.Parallel()
	card, err := NewCard(uuid.New(), nil, "Capital of France?", "Paris")
	if err != nil {
		t.Fatalf("failed to create card: %v", err)
	}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	entry, err := NewReviewLogEntry(card, "paris", ValidationOutcome{Score: 1, Method: ValidationMethodExact}, GradeEasy, at)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if entry.CardID != card.ID || entry.UserID != card.UserID {
		t.Errorf("Expected entry to reference card and owner, got %+v", entry)
	}
	if entry.ExpectedAnswer != "Paris" || entry.SubmittedAnswer != "paris" {
		t.Errorf("Unexpected answers in entry: %+v", entry)
	}
	if entry.CreatedAt.Location() != time.UTC {
		t.Errorf("Expected UTC timestamp, got %v", entry.CreatedAt.Location())
	}

	_, err = NewReviewLogEntry(card, "x", ValidationOutcome{Score: 0.2, Method: ValidationMethodLLM}, Grade(0), at)
	if !errors.Is(err, ErrInvalidGrade) {
		t.Errorf("Expected ErrInvalidGrade, got %v", err)
	}

	_, err = NewReviewLogEntry(nil, "x", ValidationOutcome{}, GradeAgain, at)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for nil card, got %v", err)
	}
}

func TestStatsAccuracy(t *testing.T) {
	t.Parallel()

	user := &UserStats{UserID: uuid.New()}
	if user.AccuracyPercentage() != 0 {
		t.Errorf("Expected 0 accuracy with no reviews, got %v", user.AccuracyPercentage())
	}

	user.TotalReviews, user.CorrectReviews = 8, 6
	if user.AccuracyPercentage() != 75 {
		t.Errorf("Expected 75%% accuracy, got %v", user.AccuracyPercentage())
	}

	deck := &DeckStats{DeckID: uuid.New(), UserID: uuid.New(), TotalReviews: 4, CorrectReviews: 1}
	if deck.AccuracyPercentage() != 25 {
		t.Errorf("Expected 25%% accuracy, got %v", deck.AccuracyPercentage())
	}
	if err := (&DeckStats{UserID: uuid.New()}).Validate(); !errors.Is(err, ErrEmptyStatsDeckID) {
		t.Errorf("Expected ErrEmptyStatsDeckID, got %v", err)
	}
}

func TestIsCorrectAndStudyDate(t *testing.T) {
	t.Parallel()

	if !IsCorrect(0.7) || IsCorrect(0.69) {
		t.Error("Expected 0.7 to be the inclusive correctness threshold")
	}

	ts := time.Date(2024, 1, 2, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	want := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	if got := StudyDate(ts); !got.Equal(want) {
		t.Errorf("StudyDate(%v) = %v, want %v", ts, got, want)
	}
}
