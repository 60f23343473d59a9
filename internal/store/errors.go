package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Ownership misses are deliberately reported the same way so a
	// caller cannot distinguish "not yours" from "does not exist".
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConcurrentModification is returned when an optimistic-versioning
	// update loses a race: the row exists but its version no longer matches.
	// The correct recovery is to re-read the entity and decide whether to
	// retry against its now-current state.
	ErrConcurrentModification = errors.New("entity was modified concurrently")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrFlashcardNotFound indicates the requested flashcard does not exist.
	ErrFlashcardNotFound = fmt.Errorf("%w: flashcard", ErrNotFound)

	// ErrReviewRecordNotFound indicates the requested review record does not exist.
	ErrReviewRecordNotFound = fmt.Errorf("%w: review record", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
