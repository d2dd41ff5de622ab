package auth

import "errors"

// Token errors. The HTTP layer maps all of them to 401.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrWrongTokenType   = errors.New("wrong authentication token type")
	ErrMissingToken     = errors.New("authentication token is missing")
)

// ErrInvalidSecret is returned at startup when the signing secret is shorter
// than 32 bytes.
var ErrInvalidSecret = errors.New("jwt secret must be at least 32 characters")
