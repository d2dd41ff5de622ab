package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrInvalidConfig is returned when the client is constructed with
	// missing or invalid settings.
	ErrInvalidConfig = errors.New("invalid gemini configuration")

	// ErrInvalidResponse is returned when the API answers with something
	// that cannot be used. It is never retried.
	ErrInvalidResponse = errors.New("invalid response from gemini")

	// ErrContentBlocked is returned when safety filters block the response.
	ErrContentBlocked = errors.New("content blocked by gemini safety filters")

	// ErrTransientFailure is returned once retries are exhausted or the
	// context ends while waiting to retry.
	ErrTransientFailure = errors.New("transient gemini failure")

	// ErrEmptyInput is returned when asked to embed or judge empty text.
	ErrEmptyInput = errors.New("input text cannot be empty")
)

// isPermanent reports whether err must not be retried.
func isPermanent(err error) bool {
	return errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrEmptyInput)
}
