package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/revisehq/revision-api/internal/domain"
	"github.com/revisehq/revision-api/internal/generation"
	"github.com/revisehq/revision-api/internal/service/auth"
	"github.com/revisehq/revision-api/internal/service/revision"
	"github.com/revisehq/revision-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"missing student ID", auth.ErrMissingStudentID, http.StatusUnauthorized},
		{"flashcard not found", store.ErrFlashcardNotFound, http.StatusNotFound},
		{"session not found", revision.ErrSessionNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("delete: %w", store.ErrFlashcardNotFound), http.StatusNotFound},
		{"session finished", revision.ErrSessionFinished, http.StatusConflict},
		{"card not revealed", revision.ErrCardNotRevealed, http.StatusConflict},
		{"card already answered", revision.ErrCardAlreadyAnswered, http.StatusConflict},
		{"concurrent modification", store.ErrConcurrentModification, http.StatusConflict},
		{"invalid rating", domain.ErrInvalidDifficultyRating, http.StatusBadRequest},
		{"invalid review input", revision.ErrInvalidReviewInput, http.StatusBadRequest},
		{"empty queue", revision.ErrEmptyQueue, http.StatusBadRequest},
		{"content blocked", generation.ErrContentBlocked, http.StatusUnprocessableEntity},
		{"transient generation failure", generation.ErrTransientFailure, http.StatusServiceUnavailable},
		{"unknown error", errors.New("something odd"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"expired token", auth.ErrExpiredToken, "Token expired"},
		{"flashcard not found", store.ErrFlashcardNotFound, "Flashcard not found"},
		{"session not found", revision.ErrSessionNotFound, "Session not found"},
		{"card not revealed", revision.ErrCardNotRevealed, "Reveal the card before answering"},
		{"invalid rating", domain.ErrInvalidDifficultyRating, "Difficulty rating must be between 1 and 5"},
		{
			"internal detail is not leaked",
			errors.New("pq: connection refused host=db.internal port=5432"),
			"An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	t.Run("extracts field and tag from validator output", func(t *testing.T) {
		t.Parallel()
		err := errors.New(
			"Key: 'CreateFlashcardRequest.Front' Error:Field validation for 'Front' failed on the 'required' tag",
		)
		assert.Equal(t, "Invalid Front: required field", SanitizeValidationError(err))
	})

	t.Run("falls back to generic message", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
	})
}
