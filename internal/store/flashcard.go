package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/domain"
)

// FlashcardStore defines the interface for flashcard data persistence.
type FlashcardStore interface {
	// Create saves a new flashcard. It handles domain validation internally
	// and returns validation errors wrapped in ErrInvalidEntity.
	Create(ctx context.Context, card *domain.Flashcard) error

	// GetByID retrieves a flashcard by ID, scoped to the owning student.
	// Returns ErrFlashcardNotFound if the card does not exist or belongs to a
	// different student.
	GetByID(ctx context.Context, studentID, id uuid.UUID) (*domain.Flashcard, error)

	// ListByStudent retrieves all of a student's cards in creation order. Used
	// by the progress aggregator to map review history onto subjects.
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*domain.Flashcard, error)

	// ListDue retrieves the student's cards whose next review time is at or
	// before the given instant, optionally filtered by subject. Ordering:
	// most overdue first, ties broken by lowest ease factor, further ties by
	// creation order. A limit of 0 returns the full due set.
	ListDue(
		ctx context.Context,
		studentID uuid.UUID,
		subjectID uuid.NullUUID,
		asOf time.Time,
		limit int,
	) ([]*domain.Flashcard, error)

	// UpdateScheduling persists a card's scheduling fields using optimistic
	// versioning: the update only applies if the stored version matches
	// card.Version, and increments the version on success. Returns
	// ErrConcurrentModification when the card exists but the version does not
	// match, ErrFlashcardNotFound when it does not exist.
	UpdateScheduling(ctx context.Context, card *domain.Flashcard) error

	// Delete removes a student's flashcard. Review records cascade at the
	// database level. Returns ErrFlashcardNotFound if the card does not exist
	// or belongs to a different student.
	Delete(ctx context.Context, studentID, id uuid.UUID) error

	// WithTx returns a new FlashcardStore bound to the given transaction so
	// multiple operations can execute atomically. The transaction is created
	// and managed by the caller, typically through RunInTransaction.
	WithTx(tx *sql.Tx) FlashcardStore
}
