package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Difficulty rating bounds. The rating is the student's self-reported
// subjective difficulty, independent of correctness.
const (
	MinDifficultyRating = 1
	MaxDifficultyRating = 5
)

// ReviewRecord-specific validation errors
var (
	// ErrReviewRecordIDEmpty is returned when a review record ID is empty or nil.
	ErrReviewRecordIDEmpty = errors.New("review record ID cannot be empty")

	// ErrReviewFlashcardIDEmpty is returned when a review record's flashcard ID is empty or nil.
	ErrReviewFlashcardIDEmpty = errors.New("review record flashcard ID cannot be empty")

	// ErrReviewStudentIDEmpty is returned when a review record's student ID is empty or nil.
	ErrReviewStudentIDEmpty = errors.New("review record student ID cannot be empty")

	// ErrInvalidDifficultyRating is returned when a difficulty rating is outside 1-5.
	// Ratings are never clamped; an out-of-range rating would corrupt the
	// scheduling formula's quality mapping.
	ErrInvalidDifficultyRating = errors.New("difficulty rating must be between 1 and 5")

	// ErrInvalidResponseTime is returned when a response time is negative.
	ErrInvalidResponseTime = errors.New("response time seconds must be greater than or equal to 0")
)

// ReviewRecord is an immutable fact: "student X reviewed card Y at time T
// with outcome Z". Records are append-only; the progress aggregator is a
// derived view over a student's full record history.
type ReviewRecord struct {
	ID                  uuid.UUID     `json:"id"`
	FlashcardID         uuid.UUID     `json:"flashcard_id"`
	StudentID           uuid.UUID     `json:"student_id"`
	ReviewedAt          time.Time     `json:"reviewed_at"`
	WasCorrect          bool          `json:"was_correct"`
	DifficultyRating    int           `json:"difficulty_rating"`
	ResponseTimeSeconds int           `json:"response_time_seconds"`
	SessionID           uuid.NullUUID `json:"session_id,omitempty"`
}

// NewReviewRecord creates a new ReviewRecord for the given review outcome.
// Returns an error if validation fails.
func NewReviewRecord(
	flashcardID, studentID uuid.UUID,
	reviewedAt time.Time,
	wasCorrect bool,
	difficultyRating, responseTimeSeconds int,
	sessionID uuid.NullUUID,
) (*ReviewRecord, error) {
	record := &ReviewRecord{
		ID:                  uuid.New(),
		FlashcardID:         flashcardID,
		StudentID:           studentID,
		ReviewedAt:          reviewedAt,
		WasCorrect:          wasCorrect,
		DifficultyRating:    difficultyRating,
		ResponseTimeSeconds: responseTimeSeconds,
		SessionID:           sessionID,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the ReviewRecord has valid data.
// Returns an error if any field fails validation.
func (r *ReviewRecord) Validate() error {
	if r.ID == uuid.Nil {
		return ErrReviewRecordIDEmpty
	}

	if r.FlashcardID == uuid.Nil {
		return ErrReviewFlashcardIDEmpty
	}

	if r.StudentID == uuid.Nil {
		return ErrReviewStudentIDEmpty
	}

	if r.DifficultyRating < MinDifficultyRating || r.DifficultyRating > MaxDifficultyRating {
		return ErrInvalidDifficultyRating
	}

	if r.ResponseTimeSeconds < 0 {
		return ErrInvalidResponseTime
	}

	return nil
}
