package revision

import (
	"context"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/domain"
)

// CreateFlashcardInput carries the caller-supplied content for a new card.
// Scheduling state is never caller-supplied; new cards are created due.
type CreateFlashcardInput struct {
	Front        string        `json:"front"`
	Back         string        `json:"back"`
	Hint         string        `json:"hint,omitempty"`
	SubjectID    uuid.NullUUID `json:"subject_id,omitempty"`
	SourceNoteID uuid.NullUUID `json:"source_note_id,omitempty"`
}

// ReviewAnswer represents a student's answer to the current session card.
type ReviewAnswer struct {
	FlashcardID      uuid.UUID `json:"flashcard_id"`
	WasCorrect       bool      `json:"was_correct"`
	DifficultyRating int       `json:"difficulty_rating"`
}

// ProgressNotifier receives a signal after each persisted review so derived
// views (mastery, streaks, due counts) can invalidate caches and re-evaluate
// milestones. Implementations must not block the review path.
type ProgressNotifier interface {
	ReviewRecorded(ctx context.Context, studentID uuid.UUID)
}

// Service provides flashcard management and drives revision sessions
// through the spaced repetition scheduler.
type Service interface {
	// CreateFlashcard persists a new card owned by the student. The card is
	// due immediately.
	CreateFlashcard(
		ctx context.Context,
		studentID uuid.UUID,
		input CreateFlashcardInput,
	) (*domain.Flashcard, error)

	// GetDueFlashcards returns the student's cards due now, optionally
	// narrowed to a subject, ordered most-overdue first with ease-factor and
	// creation-order tie breaks. A limit of 0 returns the full due set.
	GetDueFlashcards(
		ctx context.Context,
		studentID uuid.UUID,
		subjectID uuid.NullUUID,
		limit int,
	) ([]*domain.Flashcard, error)

	// DeleteFlashcard removes a student's card. Its review history is
	// removed with it.
	DeleteFlashcard(ctx context.Context, studentID, cardID uuid.UUID) error

	// GetReviewHistory returns the student's review records in review-time
	// order, optionally narrowed to a single card.
	GetReviewHistory(
		ctx context.Context,
		studentID uuid.UUID,
		flashcardID uuid.NullUUID,
	) ([]*domain.ReviewRecord, error)

	// StartSession creates and starts a session over the given cards. Every
	// card must exist and belong to the student. Returns ErrEmptyQueue for an
	// empty card list.
	StartSession(
		ctx context.Context,
		studentID uuid.UUID,
		cardIDs []uuid.UUID,
	) (*SessionSnapshot, error)

	// RevealCard shows the back of the session's current card. Revealing
	// twice is a no-op.
	RevealCard(ctx context.Context, studentID, sessionID uuid.UUID) (*SessionSnapshot, error)

	// SubmitAnswer records the answer for the session's current card: it runs
	// the scheduler, persists the card's new scheduling state and the review
	// record atomically, and returns the updated card. The session does not
	// advance. A concurrent scheduling update is retried once before the
	// conflict is reported.
	SubmitAnswer(
		ctx context.Context,
		studentID, sessionID uuid.UUID,
		answer ReviewAnswer,
	) (*domain.Flashcard, error)

	// AdvanceSession moves to the next card, completing the session after the
	// last one. Advancing before the current card is answered leaves the
	// session unchanged.
	AdvanceSession(ctx context.Context, studentID, sessionID uuid.UUID) (*SessionSnapshot, error)

	// PreviousCard navigates back one card for display only.
	PreviousCard(ctx context.Context, studentID, sessionID uuid.UUID) (*SessionSnapshot, error)

	// AbandonSession terminates the session early. Already-recorded answers
	// remain valid.
	AbandonSession(ctx context.Context, studentID, sessionID uuid.UUID) (*SessionSnapshot, error)

	// GetSession returns the session's current state.
	GetSession(ctx context.Context, studentID, sessionID uuid.UUID) (*SessionSnapshot, error)
}
