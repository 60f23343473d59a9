package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/domain"
)

// ReviewRecordStore defines the interface for the append-only review history.
// Records are immutable facts: there is no update or single-record delete.
type ReviewRecordStore interface {
	// Create appends a new review record. It handles domain validation
	// internally and returns validation errors wrapped in ErrInvalidEntity.
	Create(ctx context.Context, record *domain.ReviewRecord) error

	// ListByStudent retrieves a student's full review history ordered by
	// review time ascending. The optional flashcard ID narrows the history to
	// a single card.
	ListByStudent(
		ctx context.Context,
		studentID uuid.UUID,
		flashcardID uuid.NullUUID,
	) ([]*domain.ReviewRecord, error)

	// WithTx returns a new ReviewRecordStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewRecordStore
}
