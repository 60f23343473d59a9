package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/revisehq/revision-api/internal/api/shared"
	"github.com/revisehq/revision-api/internal/domain"
	"github.com/revisehq/revision-api/internal/generation"
	"github.com/revisehq/revision-api/internal/service/revision"
)

// mockRevisionService implements revision.Service with per-method function
// hooks so each test configures only the calls it expects.
type mockRevisionService struct {
	createFlashcardFn  func(ctx context.Context, studentID uuid.UUID, input revision.CreateFlashcardInput) (*domain.Flashcard, error)
	getDueFlashcardsFn func(ctx context.Context, studentID uuid.UUID, subjectID uuid.NullUUID, limit int) ([]*domain.Flashcard, error)
	deleteFlashcardFn  func(ctx context.Context, studentID, cardID uuid.UUID) error
	getReviewHistoryFn func(ctx context.Context, studentID uuid.UUID, flashcardID uuid.NullUUID) ([]*domain.ReviewRecord, error)
	startSessionFn     func(ctx context.Context, studentID uuid.UUID, cardIDs []uuid.UUID) (*revision.SessionSnapshot, error)
	revealCardFn       func(ctx context.Context, studentID, sessionID uuid.UUID) (*revision.SessionSnapshot, error)
	submitAnswerFn     func(ctx context.Context, studentID, sessionID uuid.UUID, answer revision.ReviewAnswer) (*domain.Flashcard, error)
	advanceSessionFn   func(ctx context.Context, studentID, sessionID uuid.UUID) (*revision.SessionSnapshot, error)
	previousCardFn     func(ctx context.Context, studentID, sessionID uuid.UUID) (*revision.SessionSnapshot, error)
	abandonSessionFn   func(ctx context.Context, studentID, sessionID uuid.UUID) (*revision.SessionSnapshot, error)
	getSessionFn       func(ctx context.Context, studentID, sessionID uuid.UUID) (*revision.SessionSnapshot, error)
}

var _ revision.Service = (*mockRevisionService)(nil)

func (m *mockRevisionService) CreateFlashcard(
	ctx context.Context,
	studentID uuid.UUID,
	input revision.CreateFlashcardInput,
) (*domain.Flashcard, error) {
	return m.createFlashcardFn(ctx, studentID, input)
}

func (m *mockRevisionService) GetDueFlashcards(
	ctx context.Context,
	studentID uuid.UUID,
	subjectID uuid.NullUUID,
	limit int,
) ([]*domain.Flashcard, error) {
	return m.getDueFlashcardsFn(ctx, studentID, subjectID, limit)
}

func (m *mockRevisionService) DeleteFlashcard(ctx context.Context, studentID, cardID uuid.UUID) error {
	return m.deleteFlashcardFn(ctx, studentID, cardID)
}

func (m *mockRevisionService) GetReviewHistory(
	ctx context.Context,
	studentID uuid.UUID,
	flashcardID uuid.NullUUID,
) ([]*domain.ReviewRecord, error) {
	return m.getReviewHistoryFn(ctx, studentID, flashcardID)
}

func (m *mockRevisionService) StartSession(
	ctx context.Context,
	studentID uuid.UUID,
	cardIDs []uuid.UUID,
) (*revision.SessionSnapshot, error) {
	return m.startSessionFn(ctx, studentID, cardIDs)
}

func (m *mockRevisionService) RevealCard(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*revision.SessionSnapshot, error) {
	return m.revealCardFn(ctx, studentID, sessionID)
}

func (m *mockRevisionService) SubmitAnswer(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
	answer revision.ReviewAnswer,
) (*domain.Flashcard, error) {
	return m.submitAnswerFn(ctx, studentID, sessionID, answer)
}

func (m *mockRevisionService) AdvanceSession(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*revision.SessionSnapshot, error) {
	return m.advanceSessionFn(ctx, studentID, sessionID)
}

func (m *mockRevisionService) PreviousCard(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*revision.SessionSnapshot, error) {
	return m.previousCardFn(ctx, studentID, sessionID)
}

func (m *mockRevisionService) AbandonSession(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*revision.SessionSnapshot, error) {
	return m.abandonSessionFn(ctx, studentID, sessionID)
}

func (m *mockRevisionService) GetSession(
	ctx context.Context,
	studentID, sessionID uuid.UUID,
) (*revision.SessionSnapshot, error) {
	return m.getSessionFn(ctx, studentID, sessionID)
}

// mockGenerator implements generation.Generator.
type mockGenerator struct {
	generateFn func(ctx context.Context, subjectID uuid.NullUUID, topic string) ([]generation.CardCandidate, error)
}

var _ generation.Generator = (*mockGenerator)(nil)

func (m *mockGenerator) GenerateCandidates(
	ctx context.Context,
	subjectID uuid.NullUUID,
	topic string,
) ([]generation.CardCandidate, error) {
	return m.generateFn(ctx, subjectID, topic)
}

// withStudentID attaches the student ID to the request context the way the
// auth middleware would.
func withStudentID(t *testing.T, req *http.Request, studentID uuid.UUID) *http.Request {
	t.Helper()
	ctx := context.WithValue(req.Context(), shared.StudentIDContextKey, studentID)
	return req.WithContext(ctx)
}
