package card_review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-review/internal/domain"
)

// ReviewResult is the outcome of a submitted review.
type ReviewResult struct {
	CardID        uuid.UUID               `json:"card_id"`
	Score         float64                 `json:"score"`
	Grade         domain.Grade            `json:"grade"`
	Method        domain.ValidationMethod `json:"validation_method"`
	ScheduledDays int                     `json:"scheduled_days"`
	NextReviewAt  time.Time               `json:"next_review_at"`
}

// CardReviewService grades free-text answers and reschedules cards.
type CardReviewService interface {
	// SubmitReview validates answer against the card's expected answer, grades
	// it, advances the card's memory state and records the review.
	//
	// Parameters:
	//   - ctx: Context for the operation; the review deadline is applied on top of it
	//   - userID: UUID of the user submitting the answer
	//   - cardID: UUID of the card being reviewed
	//   - answer: the user's free-text answer
	//
	// Returns:
	//   - (*ReviewResult, nil): the graded and rescheduled review
	//   - (nil, ErrCardNotFound): if the card does not exist
	//   - (nil, ErrCardNotOwned): if the card belongs to another user
	//   - (nil, ErrValidationFailed): if the answer could not be scored
	//   - (nil, *ServiceError): persistence failures
	//
	// The card update and the review log entry are written in one transaction.
	// A card.reviewed event is published only after that transaction commits.
	// Any earlier failure leaves the card's schedule untouched.
	SubmitReview(ctx context.Context, userID, cardID uuid.UUID, answer string) (*ReviewResult, error)
}

// Common error types for CardReviewService
var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardNotOwned indicates that the user does not own the card.
	ErrCardNotOwned = errors.New("unauthorized access: card not owned by user")

	// ErrValidationFailed indicates that the submitted answer could not be scored.
	ErrValidationFailed = errors.New("answer validation failed")
)

// ServiceError wraps errors from the card review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_review",
		Message:   message,
		Err:       err,
	}
}
