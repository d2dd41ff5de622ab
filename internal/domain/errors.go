package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidGrade is returned when a grade is outside Again..Easy.
	ErrInvalidGrade = errors.New("invalid grade")

	// ErrInvalidScore is returned when a validation score is outside [0, 1].
	ErrInvalidScore = errors.New("score must be between 0 and 1")

	// ErrInvalidValidationMethod is returned for an unknown validation method tag.
	ErrInvalidValidationMethod = errors.New("invalid validation method")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError reports an invalid field or argument.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap returns the wrapped error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// inputErrors are the sentinels that describe bad caller input rather than
// a failure of the system.
var inputErrors = []error{
	ErrValidation,
	ErrInvalidID,
	ErrEmptyContent,
	ErrInvalidGrade,
	ErrInvalidScore,
	ErrInvalidValidationMethod,
	ErrCardIDEmpty,
	ErrCardUserIDEmpty,
	ErrCardQuestionEmpty,
	ErrCardAnswerEmpty,
	ErrDeckUserIDEmpty,
	ErrDeckNameEmpty,
}

// IsValidationError reports whether err describes invalid input.
func IsValidationError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
