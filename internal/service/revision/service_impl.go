package revision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/domain"
	"github.com/revisehq/revision-api/internal/domain/srs"
	"github.com/revisehq/revision-api/internal/platform/logger"
	"github.com/revisehq/revision-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	txRunner    store.TxRunner
	cardStore   store.FlashcardStore
	recordStore store.ReviewRecordStore
	srsService  srs.Service
	sessions    *SessionManager
	notifier    ProgressNotifier
	logger      *slog.Logger
}

// NewService creates a new revision Service. The notifier may be nil when no
// progress consumer is wired.
func NewService(
	txRunner store.TxRunner,
	cardStore store.FlashcardStore,
	recordStore store.ReviewRecordStore,
	srsService srs.Service,
	sessions *SessionManager,
	notifier ProgressNotifier,
	logger *slog.Logger,
) Service {
	if txRunner == nil {
		panic("txRunner cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if recordStore == nil {
		panic("recordStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if sessions == nil {
		panic("sessions cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		txRunner:    txRunner,
		cardStore:   cardStore,
		recordStore: recordStore,
		srsService:  srsService,
		sessions:    sessions,
		notifier:    notifier,
		logger:      logger.With(slog.String("component", "revision_service")),
	}
}

// CreateFlashcard implements Service.CreateFlashcard.
func (s *serviceImpl) CreateFlashcard(
	ctx context.Context,
	studentID uuid.UUID,
	input CreateFlashcardInput,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewFlashcard(
		studentID,
		input.SubjectID,
		input.SourceNoteID,
		input.Front,
		input.Back,
		input.Hint,
	)
	if err != nil {
		log.Warn("flashcard creation input rejected",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidReviewInput, err)
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		log.Error("failed to persist flashcard",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, fmt.Errorf("failed to create flashcard: %w", err)
	}

	log.Debug("flashcard created",
		slog.String("card_id", card.ID.String()),
		slog.String("student_id", studentID.String()))
	return card, nil
}

// GetDueFlashcards implements Service.GetDueFlashcards.
func (s *serviceImpl) GetDueFlashcards(
	ctx context.Context,
	studentID uuid.UUID,
	subjectID uuid.NullUUID,
	limit int,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := s.cardStore.ListDue(ctx, studentID, subjectID, time.Now().UTC(), limit)
	if err != nil {
		log.Error("failed to list due flashcards",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, fmt.Errorf("failed to list due flashcards: %w", err)
	}

	return cards, nil
}

// DeleteFlashcard implements Service.DeleteFlashcard.
func (s *serviceImpl) DeleteFlashcard(ctx context.Context, studentID, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.cardStore.Delete(ctx, studentID, cardID); err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		log.Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()),
			slog.String("student_id", studentID.String()))
		return fmt.Errorf("failed to delete flashcard: %w", err)
	}

	log.Debug("flashcard deleted",
		slog.String("card_id", cardID.String()),
		slog.String("student_id", studentID.String()))
	return nil
}

// GetReviewHistory implements Service.GetReviewHistory.
func (s *serviceImpl) GetReviewHistory(
	ctx context.Context,
	studentID uuid.UUID,
	flashcardID uuid.NullUUID,
) ([]*domain.ReviewRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	records, err := s.recordStore.ListByStudent(ctx, studentID, flashcardID)
	if err != nil {
		log.Error("failed to list review history",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, fmt.Errorf("failed to list review history: %w", err)
	}

	return records, nil
}

// StartSession implements Service.StartSession.
func (s *serviceImpl) StartSession(
	ctx context.Context,
	studentID uuid.UUID,
	cardIDs []uuid.UUID,
) (*SessionSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cardIDs) == 0 {
		return nil, ErrEmptyQueue
	}

	// Every queued card must exist and belong to the student before the
	// session becomes visible.
	for _, cardID := range cardIDs {
		if _, err := s.cardStore.GetByID(ctx, studentID, cardID); err != nil {
			if store.IsNotFoundError(err) {
				log.Warn("session start rejected: card not found",
					slog.String("card_id", cardID.String()),
					slog.String("student_id", studentID.String()))
				return nil, err
			}
			return nil, fmt.Errorf("failed to load session card: %w", err)
		}
	}

	session, err := NewSession(studentID, cardIDs)
	if err != nil {
		return nil, err
	}
	if err := session.Start(time.Now().UTC()); err != nil {
		return nil, err
	}
	s.sessions.Add(session)

	log.Debug("session started",
		slog.String("session_id", session.ID().String()),
		slog.String("student_id", studentID.String()),
		slog.Int("card_count", len(cardIDs)))
	return session.Snapshot(), nil
}

// RevealCard implements Service.RevealCard.
func (s *serviceImpl) RevealCard(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*SessionSnapshot, error) {
	session, err := s.sessions.Get(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	if err := session.Reveal(time.Now().UTC()); err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}

// SubmitAnswer implements Service.SubmitAnswer.
func (s *serviceImpl) SubmitAnswer(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
	answer ReviewAnswer,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if answer.DifficultyRating < domain.MinDifficultyRating ||
		answer.DifficultyRating > domain.MaxDifficultyRating {
		log.Warn("answer rejected: difficulty rating out of range",
			slog.Int("difficulty_rating", answer.DifficultyRating),
			slog.String("student_id", studentID.String()))
		return nil, fmt.Errorf("%w: %v", ErrInvalidReviewInput, domain.ErrInvalidDifficultyRating)
	}

	session, err := s.sessions.Get(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Flashcard
	now := time.Now().UTC()
	err = session.Answer(answer.FlashcardID, now, func(responseTimeSeconds int) error {
		card, err := s.recordReview(ctx, studentID, sessionID, answer, responseTimeSeconds, now)
		if err != nil {
			return err
		}
		updated = card
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.ReviewRecorded(ctx, studentID)
	}

	log.Debug("answer recorded",
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", answer.FlashcardID.String()),
		slog.Bool("was_correct", answer.WasCorrect),
		slog.Float64("ease_factor", updated.EaseFactor),
		slog.Int("interval_days", updated.IntervalDays),
		slog.Time("next_review_at", updated.NextReviewAt))
	return updated, nil
}

// recordReview loads the card, runs the scheduler, and persists the new
// scheduling state together with the review record in one transaction. A
// version conflict means another writer rescheduled the card between our read
// and write; the whole read-schedule-write cycle is retried once against the
// fresh state before the conflict propagates.
func (s *serviceImpl) recordReview(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
	answer ReviewAnswer,
	responseTimeSeconds int,
	now time.Time,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	const maxAttempts = 2
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		card, err := s.cardStore.GetByID(ctx, studentID, answer.FlashcardID)
		if err != nil {
			return nil, err
		}

		scheduled, err := s.srsService.Schedule(card, answer.WasCorrect, answer.DifficultyRating, now)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidDifficultyRating) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidReviewInput, err)
			}
			return nil, fmt.Errorf("failed to schedule card: %w", err)
		}

		record, err := domain.NewReviewRecord(
			card.ID,
			studentID,
			now,
			answer.WasCorrect,
			answer.DifficultyRating,
			responseTimeSeconds,
			uuid.NullUUID{UUID: sessionID, Valid: true},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReviewInput, err)
		}

		err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
			if err := s.cardStore.WithTx(tx).UpdateScheduling(ctx, scheduled); err != nil {
				return err
			}
			return s.recordStore.WithTx(tx).Create(ctx, record)
		})
		if err == nil {
			return scheduled, nil
		}

		lastErr = err
		if !errors.Is(err, store.ErrConcurrentModification) || attempt == maxAttempts {
			break
		}

		log.Debug("scheduling conflict, retrying with fresh card state",
			slog.String("card_id", card.ID.String()),
			slog.Int("attempt", attempt))
	}

	log.Error("failed to record review",
		slog.String("error", lastErr.Error()),
		slog.String("card_id", answer.FlashcardID.String()),
		slog.String("student_id", studentID.String()))
	return nil, lastErr
}

// AdvanceSession implements Service.AdvanceSession.
func (s *serviceImpl) AdvanceSession(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*SessionSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessions.Get(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	advanced, err := session.Advance(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !advanced {
		log.Debug("advance ignored: current card unanswered",
			slog.String("session_id", sessionID.String()))
	}
	return session.Snapshot(), nil
}

// PreviousCard implements Service.PreviousCard.
func (s *serviceImpl) PreviousCard(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*SessionSnapshot, error) {
	session, err := s.sessions.Get(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	if _, err := session.Previous(); err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}

// AbandonSession implements Service.AbandonSession.
func (s *serviceImpl) AbandonSession(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*SessionSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessions.Get(sessionID, studentID)
	if err != nil {
		return nil, err
	}

	if err := session.Abandon(time.Now().UTC()); err != nil {
		return nil, err
	}

	log.Debug("session abandoned",
		slog.String("session_id", sessionID.String()),
		slog.String("student_id", studentID.String()))
	return session.Snapshot(), nil
}

// GetSession implements Service.GetSession.
func (s *serviceImpl) GetSession(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*SessionSnapshot, error) {
	session, err := s.sessions.Get(sessionID, studentID)
	if err != nil {
		return nil, err
	}
	return session.Snapshot(), nil
}
