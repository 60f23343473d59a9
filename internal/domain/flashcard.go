package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultEaseFactor is the ease factor assigned to a card that has never been
// reviewed.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the floor below which an ease factor may never fall.
const MinEaseFactor = 1.3

// Flashcard-specific validation errors
var (
	// ErrFlashcardIDEmpty is returned when a flashcard ID is empty or nil.
	ErrFlashcardIDEmpty = errors.New("flashcard ID cannot be empty")

	// ErrFlashcardStudentIDEmpty is returned when a flashcard's student ID is empty or nil.
	ErrFlashcardStudentIDEmpty = errors.New("flashcard student ID cannot be empty")

	// ErrFlashcardFrontEmpty is returned when a flashcard's front text is empty.
	ErrFlashcardFrontEmpty = errors.New("flashcard front text cannot be empty")

	// ErrFlashcardBackEmpty is returned when a flashcard's back text is empty.
	ErrFlashcardBackEmpty = errors.New("flashcard back text cannot be empty")

	// ErrInvalidEaseFactor is returned when an ease factor falls below the minimum.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrInvalidInterval is returned when an interval is negative.
	ErrInvalidInterval = errors.New("interval days must be greater than or equal to 0")
)

// Flashcard is a schedulable unit of study content. Content fields are opaque
// to the engine (owned by whoever authored them); the scheduling fields are
// mutated exclusively by the srs package in response to review outcomes.
type Flashcard struct {
	ID           uuid.UUID     `json:"id"`
	StudentID    uuid.UUID     `json:"student_id"`
	SubjectID    uuid.NullUUID `json:"subject_id,omitempty"`
	SourceNoteID uuid.NullUUID `json:"source_note_id,omitempty"`

	Front string `json:"front"`
	Back  string `json:"back"`
	Hint  string `json:"hint,omitempty"`

	EaseFactor         float64   `json:"ease_factor"`
	IntervalDays       int       `json:"interval_days"`
	NextReviewAt       time.Time `json:"next_review_at"`
	ReviewCount        int       `json:"review_count"`
	ConsecutiveCorrect int       `json:"consecutive_correct"`

	// Version supports optimistic concurrency control on scheduling updates.
	// It is incremented by the store on every successful update.
	Version int `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFlashcard creates a new Flashcard owned by the given student with
// scheduling state initialized for immediate review. Returns an error if
// validation fails.
func NewFlashcard(
	studentID uuid.UUID,
	subjectID, sourceNoteID uuid.NullUUID,
	front, back, hint string,
) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:           uuid.New(),
		StudentID:    studentID,
		SubjectID:    subjectID,
		SourceNoteID: sourceNoteID,
		Front:        front,
		Back:         back,
		Hint:         hint,

		EaseFactor:         DefaultEaseFactor,
		IntervalDays:       0,
		NextReviewAt:       now, // a new card is due immediately
		ReviewCount:        0,
		ConsecutiveCorrect: 0,
		Version:            1,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
// Returns an error if any field fails validation.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrFlashcardIDEmpty
	}

	if c.StudentID == uuid.Nil {
		return ErrFlashcardStudentIDEmpty
	}

	if c.Front == "" {
		return ErrFlashcardFrontEmpty
	}

	if c.Back == "" {
		return ErrFlashcardBackEmpty
	}

	if c.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if c.IntervalDays < 0 {
		return ErrInvalidInterval
	}

	return nil
}

// IsDue reports whether the card's scheduled review time has arrived relative
// to the given instant.
func (c *Flashcard) IsDue(now time.Time) bool {
	return !c.NextReviewAt.After(now)
}
