package common

import "errors"

// Callers should match these values with errors.Is; most of them reach the
// caller wrapped with additional context.
var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Step-up verification errors.
	ErrInvalidCredentialFormat = errors.New("invalid credential format")
	ErrNoCredentialConfigured  = errors.New("no credential configured")
	ErrStorageUnavailable      = errors.New("storage unavailable")
	ErrLocked                  = errors.New("locked")
	ErrIncorrectPIN            = errors.New("incorrect PIN")
)
