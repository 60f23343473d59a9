package auth

import "errors"

// Common error types for token validation
var (
	// ErrInvalidToken indicates a malformed token or one whose signature does
	// not verify against the shared secret.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates a token past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid indicates a token with a future not-before time.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrMissingStudentID indicates a structurally valid token without a
	// student identity claim.
	ErrMissingStudentID = errors.New("token carries no student ID")
)
