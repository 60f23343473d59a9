package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/revisehq/revision-api/internal/domain"
	"github.com/revisehq/revision-api/internal/platform/logger"
	"github.com/revisehq/revision-api/internal/store"
)

// PostgreSQL error codes
const pgForeignKeyViolationCode = "23503"

// PostgresReviewRecordStore implements the store.ReviewRecordStore interface
// using a PostgreSQL database as the storage backend. The backing table is
// append-only; this type intentionally exposes no update or delete.
type PostgresReviewRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewRecordStore creates a new PostgreSQL implementation of the
// ReviewRecordStore interface.
func NewPostgresReviewRecordStore(db store.DBTX, logger *slog.Logger) *PostgresReviewRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_record_store")),
	}
}

// Ensure PostgresReviewRecordStore implements store.ReviewRecordStore interface
var _ store.ReviewRecordStore = (*PostgresReviewRecordStore)(nil)

// Create implements store.ReviewRecordStore.Create
// Returns store.ErrFlashcardNotFound if the referenced flashcard no longer
// exists (foreign key violation).
func (s *PostgresReviewRecordStore) Create(ctx context.Context, record *domain.ReviewRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("review record validation failed during create",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_records (
			id, flashcard_id, student_id, reviewed_at, was_correct,
			difficulty_rating, response_time_seconds, session_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.FlashcardID,
		record.StudentID,
		record.ReviewedAt,
		record.WasCorrect,
		record.DifficultyRating,
		record.ResponseTimeSeconds,
		record.SessionID,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolationCode {
			log.Warn("foreign key violation during review record creation",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", record.FlashcardID.String()))
			return fmt.Errorf("%w: flashcard %s", store.ErrFlashcardNotFound, record.FlashcardID)
		}

		log.Error("failed to create review record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()),
			slog.String("flashcard_id", record.FlashcardID.String()))
		return err
	}

	log.Debug("review record created",
		slog.String("record_id", record.ID.String()),
		slog.String("flashcard_id", record.FlashcardID.String()),
		slog.Bool("was_correct", record.WasCorrect))
	return nil
}

// ListByStudent implements store.ReviewRecordStore.ListByStudent
func (s *PostgresReviewRecordStore) ListByStudent(
	ctx context.Context,
	studentID uuid.UUID,
	flashcardID uuid.NullUUID,
) ([]*domain.ReviewRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, flashcard_id, student_id, reviewed_at, was_correct,
			difficulty_rating, response_time_seconds, session_id
		FROM review_records
		WHERE student_id = $1
	`
	args := []any{studentID}

	if flashcardID.Valid {
		query += " AND flashcard_id = $2"
		args = append(args, flashcardID.UUID)
	}

	query += " ORDER BY reviewed_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review records",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var records []*domain.ReviewRecord
	for rows.Next() {
		var record domain.ReviewRecord
		err := rows.Scan(
			&record.ID,
			&record.FlashcardID,
			&record.StudentID,
			&record.ReviewedAt,
			&record.WasCorrect,
			&record.DifficultyRating,
			&record.ResponseTimeSeconds,
			&record.SessionID,
		)
		if err != nil {
			log.Error("failed to scan review record row",
				slog.String("error", err.Error()))
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if records == nil {
		records = []*domain.ReviewRecord{}
	}

	log.Debug("listed review records",
		slog.String("student_id", studentID.String()),
		slog.Int("count", len(records)))
	return records, nil
}

// WithTx implements store.ReviewRecordStore.WithTx
func (s *PostgresReviewRecordStore) WithTx(tx *sql.Tx) store.ReviewRecordStore {
	return &PostgresReviewRecordStore{
		db:     tx,
		logger: s.logger,
	}
}
