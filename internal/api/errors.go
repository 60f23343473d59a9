package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/revisehq/revision-api/internal/domain"
	"github.com/revisehq/revision-api/internal/generation"
	"github.com/revisehq/revision-api/internal/service/auth"
	"github.com/revisehq/revision-api/internal/service/revision"
	"github.com/revisehq/revision-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingStudentID):
		return http.StatusUnauthorized

	// Not found errors. Ownership misses report the same way, so a student
	// cannot probe for other students' cards or sessions.
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, revision.ErrSessionNotFound):
		return http.StatusNotFound

	// Session state violations
	case errors.Is(err, revision.ErrSessionAlreadyStarted),
		errors.Is(err, revision.ErrSessionFinished),
		errors.Is(err, revision.ErrSessionNotStarted),
		errors.Is(err, revision.ErrCardNotRevealed),
		errors.Is(err, revision.ErrCardAlreadyAnswered),
		errors.Is(err, revision.ErrCardNotCurrent):
		return http.StatusConflict

	// Scheduling race that survived the automatic retry
	case errors.Is(err, store.ErrConcurrentModification):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, revision.ErrInvalidReviewInput),
		errors.Is(err, revision.ErrEmptyQueue),
		errors.Is(err, domain.ErrInvalidDifficultyRating),
		errors.Is(err, generation.ErrEmptyTopic):
		return http.StatusBadRequest

	// Upstream model failures
	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingStudentID):
		return "Invalid token"

	case errors.Is(err, store.ErrFlashcardNotFound):
		return "Flashcard not found"
	case errors.Is(err, revision.ErrSessionNotFound):
		return "Session not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, revision.ErrSessionAlreadyStarted):
		return "Session already started"
	case errors.Is(err, revision.ErrSessionFinished):
		return "Session already finished"
	case errors.Is(err, revision.ErrSessionNotStarted):
		return "Session not started"
	case errors.Is(err, revision.ErrCardNotRevealed):
		return "Reveal the card before answering"
	case errors.Is(err, revision.ErrCardAlreadyAnswered):
		return "Card already answered in this session"
	case errors.Is(err, revision.ErrCardNotCurrent):
		return "Card is not the current session card"

	case errors.Is(err, store.ErrConcurrentModification):
		return "Card schedule was updated concurrently, please retry"

	case errors.Is(err, revision.ErrEmptyQueue):
		return "Session requires at least one card"
	case errors.Is(err, domain.ErrInvalidDifficultyRating):
		return "Difficulty rating must be between 1 and 5"
	case errors.Is(err, revision.ErrInvalidReviewInput),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, generation.ErrEmptyTopic):
		return "Topic is required"
	case errors.Is(err, generation.ErrContentBlocked):
		return "Generated content was blocked by safety filters"
	case errors.Is(err, generation.ErrTransientFailure):
		return "Card generation is temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example input: "Key: 'CreateFlashcardRequest.Front' Error:Field
		// validation for 'Front' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier format"
	default:
		return "validation failed"
	}
}
