package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/domain"
	"github.com/revisehq/revision-api/internal/platform/logger"
	"github.com/revisehq/revision-api/internal/store"
)

// flashcardColumns is the column list shared by every flashcard SELECT.
const flashcardColumns = `id, student_id, subject_id, source_note_id, front, back, hint,
	ease_factor, interval_days, next_review_at, review_count, consecutive_correct,
	version, created_at, updated_at`

// PostgresFlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of the
// FlashcardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// Create implements store.FlashcardStore.Create
func (s *PostgresFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during create",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO flashcards (` + flashcardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.StudentID,
		card.SubjectID,
		card.SourceNoteID,
		card.Front,
		card.Back,
		card.Hint,
		card.EaseFactor,
		card.IntervalDays,
		card.NextReviewAt,
		card.ReviewCount,
		card.ConsecutiveCorrect,
		card.Version,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()),
			slog.String("student_id", card.StudentID.String()))
		return err
	}

	log.Debug("flashcard created",
		slog.String("flashcard_id", card.ID.String()),
		slog.String("student_id", card.StudentID.String()))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID
// It retrieves a flashcard scoped to the owning student; a card owned by a
// different student reads as not found.
func (s *PostgresFlashcardStore) GetByID(
	ctx context.Context,
	studentID, id uuid.UUID,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE id = $1 AND student_id = $2
	`

	card, err := scanFlashcard(s.db.QueryRowContext(ctx, query, id, studentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard not found",
				slog.String("flashcard_id", id.String()),
				slog.String("student_id", studentID.String()))
			return nil, store.ErrFlashcardNotFound
		}
		log.Error("failed to get flashcard by ID",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return nil, err
	}

	return card, nil
}

// ListByStudent implements store.FlashcardStore.ListByStudent
func (s *PostgresFlashcardStore) ListByStudent(
	ctx context.Context,
	studentID uuid.UUID,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE student_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, studentID)
	if err != nil {
		log.Error("failed to query student flashcards",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var cards []*domain.Flashcard
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row",
				slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if cards == nil {
		cards = []*domain.Flashcard{}
	}
	return cards, nil
}

// ListDue implements store.FlashcardStore.ListDue
// Ordering: most overdue first (earliest next_review_at), ties broken by
// lowest ease factor so harder cards surface first, further ties by creation
// order for determinism.
func (s *PostgresFlashcardStore) ListDue(
	ctx context.Context,
	studentID uuid.UUID,
	subjectID uuid.NullUUID,
	asOf time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE student_id = $1 AND next_review_at <= $2
	`
	args := []any{studentID, asOf}

	if subjectID.Valid {
		query += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, subjectID.UUID)
	}

	query += " ORDER BY next_review_at ASC, ease_factor ASC, created_at ASC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due flashcards",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var cards []*domain.Flashcard
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row",
				slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if cards == nil {
		cards = []*domain.Flashcard{}
	}

	log.Debug("listed due flashcards",
		slog.String("student_id", studentID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// UpdateScheduling implements store.FlashcardStore.UpdateScheduling
// The update is a compare-and-swap on the version column; concurrent reviews
// of the same card cannot silently overwrite each other.
func (s *PostgresFlashcardStore) UpdateScheduling(
	ctx context.Context,
	card *domain.Flashcard,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during scheduling update",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE flashcards
		SET ease_factor = $1, interval_days = $2, next_review_at = $3,
			review_count = $4, consecutive_correct = $5,
			version = version + 1, updated_at = $6
		WHERE id = $7 AND student_id = $8 AND version = $9
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		card.EaseFactor,
		card.IntervalDays,
		card.NextReviewAt,
		card.ReviewCount,
		card.ConsecutiveCorrect,
		card.UpdatedAt,
		card.ID,
		card.StudentID,
		card.Version,
	)
	if err != nil {
		log.Error("failed to update flashcard scheduling",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a version conflict from a missing card.
		var exists bool
		checkQuery := `SELECT EXISTS(SELECT 1 FROM flashcards WHERE id = $1 AND student_id = $2)`
		if err := s.db.QueryRowContext(ctx, checkQuery, card.ID, card.StudentID).Scan(&exists); err != nil {
			log.Error("failed to check flashcard existence after update miss",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", card.ID.String()))
			return err
		}
		if exists {
			log.Warn("optimistic version conflict on flashcard update",
				slog.String("flashcard_id", card.ID.String()),
				slog.Int("expected_version", card.Version))
			return store.ErrConcurrentModification
		}
		return store.ErrFlashcardNotFound
	}

	card.Version++

	log.Debug("flashcard scheduling updated",
		slog.String("flashcard_id", card.ID.String()),
		slog.Int("interval_days", card.IntervalDays),
		slog.Time("next_review_at", card.NextReviewAt))
	return nil
}

// Delete implements store.FlashcardStore.Delete
// Review records for the card are removed by the ON DELETE CASCADE foreign
// key on review_records.
func (s *PostgresFlashcardStore) Delete(ctx context.Context, studentID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM flashcards WHERE id = $1 AND student_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, studentID)
	if err != nil {
		log.Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		log.Debug("flashcard not found for delete",
			slog.String("flashcard_id", id.String()),
			slog.String("student_id", studentID.String()))
		return store.ErrFlashcardNotFound
	}

	log.Info("flashcard deleted",
		slog.String("flashcard_id", id.String()),
		slog.String("student_id", studentID.String()))
	return nil
}

// WithTx implements store.FlashcardStore.WithTx
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(row rowScanner) (*domain.Flashcard, error) {
	var card domain.Flashcard
	err := row.Scan(
		&card.ID,
		&card.StudentID,
		&card.SubjectID,
		&card.SourceNoteID,
		&card.Front,
		&card.Back,
		&card.Hint,
		&card.EaseFactor,
		&card.IntervalDays,
		&card.NextReviewAt,
		&card.ReviewCount,
		&card.ConsecutiveCorrect,
		&card.Version,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &card, nil
}
