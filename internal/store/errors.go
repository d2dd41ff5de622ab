package store

import (
	"errors"
	"fmt"
)

// Generic store errors. Implementations wrap these, usually through one of
// the entity-specific errors below, so callers can match with errors.Is.
var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a write collides with a unique key.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation or a
	// database constraint. The wrapped error carries the detail.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction cannot be started
	// or committed.
	ErrTransactionFailed = errors.New("transaction failed")
)

// Entity-specific errors.
var (
	ErrCardNotFound  = fmt.Errorf("%w: card", ErrNotFound)
	ErrDeckNotFound  = fmt.Errorf("%w: deck", ErrNotFound)
	ErrStatsNotFound = fmt.Errorf("%w: stats", ErrNotFound)

	// ErrReviewLogExists is returned when a review log entry ID is appended twice.
	ErrReviewLogExists = fmt.Errorf("%w: review log entry", ErrDuplicate)
)

// IsNotFoundError reports whether err is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
