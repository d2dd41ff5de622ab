package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Review log validation errors
var (
	ErrReviewLogCardIDEmpty = errors.New("review log card ID cannot be empty")
	ErrReviewLogUserIDEmpty = errors.New("review log user ID cannot be empty")
)

// ReviewLogEntry is the immutable audit record of one review. Entries are
// appended once and never updated or deleted.
type ReviewLogEntry struct {
	ID              uuid.UUID        `json:"id"`
	CardID          uuid.UUID        `json:"card_id"`
	UserID          uuid.UUID        `json:"user_id"`
	SubmittedAnswer string           `json:"submitted_answer"`
	ExpectedAnswer  string           `json:"expected_answer"`
	Score           float64          `json:"score"`
	Method          ValidationMethod `json:"validation_method"`
	Grade           Grade            `json:"grade"`
	CreatedAt       time.Time        `json:"created_at"`
}

// NewReviewLogEntry records the result of grading a card at the given time.
func NewReviewLogEntry(
	card *Card,
	submitted string,
	outcome ValidationOutcome,
	grade Grade,
	at time.Time,
) (*ReviewLogEntry, error) {
	if card == nil {
		return nil, fmt.Errorf("%w: card is required", ErrValidation)
	}

	entry := &ReviewLogEntry{
		ID:              uuid.New(),
		CardID:          card.ID,
		UserID:          card.UserID,
		SubmittedAnswer: submitted,
		ExpectedAnswer:  card.Answer,
		Score:           outcome.Score,
		Method:          outcome.Method,
		Grade:           grade,
		CreatedAt:       at.UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the entry has valid data.
func (e *ReviewLogEntry) Validate() error {
	if e.CardID == uuid.Nil {
		return ErrReviewLogCardIDEmpty
	}
	if e.UserID == uuid.Nil {
		return ErrReviewLogUserIDEmpty
	}
	if e.Score < 0 || e.Score > 1 {
		return ErrInvalidScore
	}
	if !e.Method.Valid() {
		return ErrInvalidValidationMethod
	}
	if !e.Grade.Valid() {
		return ErrInvalidGrade
	}
	return nil
}
