package revision

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/domain"
	"github.com/revisehq/revision-api/internal/domain/srs"
	"github.com/revisehq/revision-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	service   Service
	cardStore *fakeFlashcardStore
	records   *fakeReviewRecordStore
	notifier  *countingNotifier
	studentID uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	cardStore := newFakeFlashcardStore()
	records := newFakeReviewRecordStore()
	notifier := &countingNotifier{}

	service := NewService(
		passthroughTxRunner{},
		cardStore,
		records,
		srs.NewDefaultService(),
		NewSessionManager(nil),
		notifier,
		nil,
	)

	return &serviceFixture{
		service:   service,
		cardStore: cardStore,
		records:   records,
		notifier:  notifier,
		studentID: uuid.New(),
	}
}

func (f *serviceFixture) createCard(t *testing.T) *domain.Flashcard {
	t.Helper()

	card, err := f.service.CreateFlashcard(context.Background(), f.studentID, CreateFlashcardInput{
		Front: "What is the powerhouse of the cell?",
		Back:  "The mitochondrion",
	})
	require.NoError(t, err)
	return card
}

// seedScheduledCard stores a card with explicit scheduling state, bypassing
// CreateFlashcard's due-immediately defaults.
func (f *serviceFixture) seedScheduledCard(
	t *testing.T,
	nextReviewAt time.Time,
	easeFactor float64,
	createdAt time.Time,
) *domain.Flashcard {
	t.Helper()

	card := &domain.Flashcard{
		ID:           uuid.New(),
		StudentID:    f.studentID,
		Front:        "front",
		Back:         "back",
		EaseFactor:   easeFactor,
		NextReviewAt: nextReviewAt,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	require.NoError(t, f.cardStore.Create(context.Background(), card))
	return card
}

// startRevealedSession starts a single-card session and reveals the card so a
// test can submit an answer immediately.
func (f *serviceFixture) startRevealedSession(t *testing.T, cardID uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	snap, err := f.service.StartSession(ctx, f.studentID, []uuid.UUID{cardID})
	require.NoError(t, err)
	_, err = f.service.RevealCard(ctx, f.studentID, snap.ID)
	require.NoError(t, err)
	return snap.ID
}

func TestCreateFlashcard(t *testing.T) {
	t.Parallel()

	t.Run("creates a card due immediately", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)

		card := f.createCard(t)
		assert.Equal(t, f.studentID, card.StudentID)
		assert.Equal(t, domain.DefaultEaseFactor, card.EaseFactor)
		assert.Equal(t, 0, card.IntervalDays)

		due, err := f.service.GetDueFlashcards(context.Background(), f.studentID, uuid.NullUUID{}, 0)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, card.ID, due[0].ID)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)

		_, err := f.service.CreateFlashcard(context.Background(), f.studentID, CreateFlashcardInput{
			Front: "",
			Back:  "something",
		})
		assert.ErrorIs(t, err, ErrInvalidReviewInput)
	})
}

func TestGetDueFlashcardsOrdering(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("most overdue first", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)

		twoDays := f.seedScheduledCard(t, now.Add(-2*24*time.Hour), 2.5, now.Add(-30*24*time.Hour))
		fiveDays := f.seedScheduledCard(t, now.Add(-5*24*time.Hour), 2.5, now.Add(-20*24*time.Hour))

		due, err := f.service.GetDueFlashcards(ctx, f.studentID, uuid.NullUUID{}, 0)
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, fiveDays.ID, due[0].ID)
		assert.Equal(t, twoDays.ID, due[1].ID)
	})

	t.Run("equal due times break on lower ease factor", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		dueAt := now.Add(-24 * time.Hour)

		easier := f.seedScheduledCard(t, dueAt, 2.8, now.Add(-40*24*time.Hour))
		harder := f.seedScheduledCard(t, dueAt, 1.5, now.Add(-10*24*time.Hour))

		due, err := f.service.GetDueFlashcards(ctx, f.studentID, uuid.NullUUID{}, 0)
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, harder.ID, due[0].ID)
		assert.Equal(t, easier.ID, due[1].ID)
	})

	t.Run("full ties break on creation time", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		dueAt := now.Add(-24 * time.Hour)

		newer := f.seedScheduledCard(t, dueAt, 2.5, now.Add(-5*24*time.Hour))
		older := f.seedScheduledCard(t, dueAt, 2.5, now.Add(-15*24*time.Hour))

		due, err := f.service.GetDueFlashcards(ctx, f.studentID, uuid.NullUUID{}, 0)
		require.NoError(t, err)
		require.Len(t, due, 2)
		assert.Equal(t, older.ID, due[0].ID)
		assert.Equal(t, newer.ID, due[1].ID)
	})

	t.Run("limit keeps the most urgent cards", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)

		f.seedScheduledCard(t, now.Add(-1*24*time.Hour), 2.5, now)
		mostOverdue := f.seedScheduledCard(t, now.Add(-7*24*time.Hour), 2.5, now)
		f.seedScheduledCard(t, now.Add(-3*24*time.Hour), 2.5, now)

		due, err := f.service.GetDueFlashcards(ctx, f.studentID, uuid.NullUUID{}, 1)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, mostOverdue.ID, due[0].ID)
	})

	t.Run("cards scheduled in the future are excluded", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)

		overdue := f.seedScheduledCard(t, now.Add(-24*time.Hour), 2.5, now)
		f.seedScheduledCard(t, now.Add(48*time.Hour), 2.5, now)

		due, err := f.service.GetDueFlashcards(ctx, f.studentID, uuid.NullUUID{}, 0)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, overdue.ID, due[0].ID)
	})
}

func TestDeleteFlashcard(t *testing.T) {
	t.Parallel()

	t.Run("deletes own card", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)

		require.NoError(t, f.service.DeleteFlashcard(context.Background(), f.studentID, card.ID))

		err := f.service.DeleteFlashcard(context.Background(), f.studentID, card.ID)
		assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	})

	t.Run("other student's card reads as not found", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)

		err := f.service.DeleteFlashcard(context.Background(), uuid.New(), card.ID)
		assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	})
}

func TestStartSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty card list", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)

		_, err := f.service.StartSession(context.Background(), f.studentID, nil)
		assert.ErrorIs(t, err, ErrEmptyQueue)
	})

	t.Run("rejects a card queued twice", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)

		_, err := f.service.StartSession(
			context.Background(),
			f.studentID,
			[]uuid.UUID{card.ID, card.ID},
		)
		assert.ErrorIs(t, err, ErrInvalidReviewInput)
	})

	t.Run("rejects unknown card", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)

		_, err := f.service.StartSession(
			context.Background(),
			f.studentID,
			[]uuid.UUID{card.ID, uuid.New()},
		)
		assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	})

	t.Run("rejects another student's card", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)

		_, err := f.service.StartSession(context.Background(), uuid.New(), []uuid.UUID{card.ID})
		assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
	})

	t.Run("starts in progress with first card current", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)

		snap, err := f.service.StartSession(context.Background(), f.studentID, []uuid.UUID{card.ID})
		require.NoError(t, err)
		assert.Equal(t, SessionInProgress, snap.State)
		assert.Equal(t, 0, snap.CurrentIndex)
		assert.Equal(t, 1, snap.TotalCards)
	})
}

func TestSubmitAnswer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("schedules card and appends record", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)
		sessionID := f.startRevealedSession(t, card.ID)

		updated, err := f.service.SubmitAnswer(ctx, f.studentID, sessionID, ReviewAnswer{
			FlashcardID:      card.ID,
			WasCorrect:       true,
			DifficultyRating: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.IntervalDays)
		assert.Equal(t, 1, updated.ConsecutiveCorrect)
		assert.InDelta(t, 2.6, updated.EaseFactor, 0.0001)

		records, err := f.service.GetReviewHistory(ctx, f.studentID, uuid.NullUUID{})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, card.ID, records[0].FlashcardID)
		assert.True(t, records[0].WasCorrect)
		assert.Equal(t, sessionID, records[0].SessionID.UUID)
		assert.Equal(t, 1, f.notifier.count())
	})

	t.Run("rejects out-of-range rating without touching the session", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)
		sessionID := f.startRevealedSession(t, card.ID)

		for _, rating := range []int{0, 6, -1} {
			_, err := f.service.SubmitAnswer(ctx, f.studentID, sessionID, ReviewAnswer{
				FlashcardID:      card.ID,
				WasCorrect:       true,
				DifficultyRating: rating,
			})
			assert.ErrorIs(t, err, ErrInvalidReviewInput, "rating %d", rating)
		}

		// The card is still answerable with a valid rating.
		_, err := f.service.SubmitAnswer(ctx, f.studentID, sessionID, ReviewAnswer{
			FlashcardID:      card.ID,
			WasCorrect:       true,
			DifficultyRating: 3,
		})
		require.NoError(t, err)
	})

	t.Run("requires reveal first", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)
		snap, err := f.service.StartSession(ctx, f.studentID, []uuid.UUID{card.ID})
		require.NoError(t, err)

		_, err = f.service.SubmitAnswer(ctx, f.studentID, snap.ID, ReviewAnswer{
			FlashcardID:      card.ID,
			WasCorrect:       true,
			DifficultyRating: 2,
		})
		assert.ErrorIs(t, err, ErrCardNotRevealed)
	})

	t.Run("second answer for the same card rejected", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)
		sessionID := f.startRevealedSession(t, card.ID)

		answer := ReviewAnswer{FlashcardID: card.ID, WasCorrect: true, DifficultyRating: 2}
		_, err := f.service.SubmitAnswer(ctx, f.studentID, sessionID, answer)
		require.NoError(t, err)

		_, err = f.service.SubmitAnswer(ctx, f.studentID, sessionID, answer)
		assert.ErrorIs(t, err, ErrCardAlreadyAnswered)
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)

		_, err := f.service.SubmitAnswer(ctx, f.studentID, uuid.New(), ReviewAnswer{
			FlashcardID:      card.ID,
			WasCorrect:       true,
			DifficultyRating: 2,
		})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("retries once on version conflict", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)
		sessionID := f.startRevealedSession(t, card.ID)

		// First write hits a conflict, as if another writer rescheduled the
		// card after our read; the retry reads fresh state and succeeds.
		f.cardStore.updateErrs = []error{store.ErrConcurrentModification}

		updated, err := f.service.SubmitAnswer(ctx, f.studentID, sessionID, ReviewAnswer{
			FlashcardID:      card.ID,
			WasCorrect:       true,
			DifficultyRating: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.IntervalDays)

		records, err := f.service.GetReviewHistory(ctx, f.studentID, uuid.NullUUID{})
		require.NoError(t, err)
		assert.Len(t, records, 1, "only the successful attempt appends a record")
	})

	t.Run("persistent conflict surfaces after one retry", func(t *testing.T) {
		t.Parallel()
		f := newServiceFixture(t)
		card := f.createCard(t)
		sessionID := f.startRevealedSession(t, card.ID)

		f.cardStore.updateErrs = []error{
			store.ErrConcurrentModification,
			store.ErrConcurrentModification,
		}

		_, err := f.service.SubmitAnswer(ctx, f.studentID, sessionID, ReviewAnswer{
			FlashcardID:      card.ID,
			WasCorrect:       true,
			DifficultyRating: 1,
		})
		assert.ErrorIs(t, err, store.ErrConcurrentModification)

		// The failed answer did not consume the card's single answer slot.
		snap, err := f.service.GetSession(ctx, f.studentID, sessionID)
		require.NoError(t, err)
		assert.False(t, snap.Cards[0].Answered)
		assert.Equal(t, 0, f.notifier.count())
	})
}

func TestSessionFlowThroughService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newServiceFixture(t)
	first := f.createCard(t)
	second := f.createCard(t)

	snap, err := f.service.StartSession(ctx, f.studentID, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	sessionID := snap.ID

	// Advance before answering is reported as a no-op.
	snap, err = f.service.AdvanceSession(ctx, f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentIndex)

	_, err = f.service.RevealCard(ctx, f.studentID, sessionID)
	require.NoError(t, err)
	_, err = f.service.SubmitAnswer(ctx, f.studentID, sessionID, ReviewAnswer{
		FlashcardID:      first.ID,
		WasCorrect:       true,
		DifficultyRating: 2,
	})
	require.NoError(t, err)

	snap, err = f.service.AdvanceSession(ctx, f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentIndex)

	// Back to the first card for display, then forward again.
	snap, err = f.service.PreviousCard(ctx, f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.CurrentIndex)
	snap, err = f.service.AdvanceSession(ctx, f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.CurrentIndex)

	_, err = f.service.RevealCard(ctx, f.studentID, sessionID)
	require.NoError(t, err)
	_, err = f.service.SubmitAnswer(ctx, f.studentID, sessionID, ReviewAnswer{
		FlashcardID:      second.ID,
		WasCorrect:       false,
		DifficultyRating: 4,
	})
	require.NoError(t, err)

	snap, err = f.service.AdvanceSession(ctx, f.studentID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, SessionCompleted, snap.State)
	assert.Equal(t, 2, snap.AnsweredCards)

	records, err := f.service.GetReviewHistory(ctx, f.studentID, uuid.NullUUID{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestGetSessionOwnership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newServiceFixture(t)
	card := f.createCard(t)
	snap, err := f.service.StartSession(ctx, f.studentID, []uuid.UUID{card.ID})
	require.NoError(t, err)

	_, err = f.service.GetSession(ctx, uuid.New(), snap.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
