package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/revisehq/revision-api/internal/domain"
)

// Common response structures shared across handlers.

// FlashcardResponse represents the response data for a flashcard, including
// its current scheduling state.
type FlashcardResponse struct {
	ID           string `json:"id"`
	StudentID    string `json:"student_id"`
	SubjectID    string `json:"subject_id,omitempty"`
	SourceNoteID string `json:"source_note_id,omitempty"`

	Front string `json:"front"`
	Back  string `json:"back"`
	Hint  string `json:"hint,omitempty"`

	EaseFactor         float64   `json:"ease_factor"`
	IntervalDays       int       `json:"interval_days"`
	NextReviewAt       time.Time `json:"next_review_at"`
	ReviewCount        int       `json:"review_count"`
	ConsecutiveCorrect int       `json:"consecutive_correct"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReviewRecordResponse represents a single historical review.
type ReviewRecordResponse struct {
	ID                  string    `json:"id"`
	FlashcardID         string    `json:"flashcard_id"`
	ReviewedAt          time.Time `json:"reviewed_at"`
	WasCorrect          bool      `json:"was_correct"`
	DifficultyRating    int       `json:"difficulty_rating"`
	ResponseTimeSeconds int       `json:"response_time_seconds"`
	SessionID           string    `json:"session_id,omitempty"`
}

func flashcardToResponse(card *domain.Flashcard) FlashcardResponse {
	resp := FlashcardResponse{
		ID:                 card.ID.String(),
		StudentID:          card.StudentID.String(),
		Front:              card.Front,
		Back:               card.Back,
		Hint:               card.Hint,
		EaseFactor:         card.EaseFactor,
		IntervalDays:       card.IntervalDays,
		NextReviewAt:       card.NextReviewAt,
		ReviewCount:        card.ReviewCount,
		ConsecutiveCorrect: card.ConsecutiveCorrect,
		CreatedAt:          card.CreatedAt,
		UpdatedAt:          card.UpdatedAt,
	}
	if card.SubjectID.Valid {
		resp.SubjectID = card.SubjectID.UUID.String()
	}
	if card.SourceNoteID.Valid {
		resp.SourceNoteID = card.SourceNoteID.UUID.String()
	}
	return resp
}

func flashcardsToResponse(cards []*domain.Flashcard) []FlashcardResponse {
	responses := make([]FlashcardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, flashcardToResponse(card))
	}
	return responses
}

func reviewRecordToResponse(record *domain.ReviewRecord) ReviewRecordResponse {
	resp := ReviewRecordResponse{
		ID:                  record.ID.String(),
		FlashcardID:         record.FlashcardID.String(),
		ReviewedAt:          record.ReviewedAt,
		WasCorrect:          record.WasCorrect,
		DifficultyRating:    record.DifficultyRating,
		ResponseTimeSeconds: record.ResponseTimeSeconds,
	}
	if record.SessionID.Valid {
		resp.SessionID = record.SessionID.UUID.String()
	}
	return resp
}

// parseOptionalUUID parses an optional UUID string, returning an invalid
// NullUUID for the empty string.
func parseOptionalUUID(s string) (uuid.NullUUID, error) {
	if s == "" {
		return uuid.NullUUID{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.NullUUID{}, err
	}
	return uuid.NullUUID{UUID: id, Valid: true}, nil
}
