package revision

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/domain"
	"github.com/revisehq/revision-api/internal/store"
)

// fakeFlashcardStore is an in-memory store.FlashcardStore with the same
// optimistic-versioning behavior as the real implementation.
type fakeFlashcardStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Flashcard

	// updateErrs is a queue of errors returned by successive UpdateScheduling
	// calls before the real update logic runs. A nil entry means "no injected
	// failure for this call".
	updateErrs []error
}

func newFakeFlashcardStore() *fakeFlashcardStore {
	return &fakeFlashcardStore{cards: make(map[uuid.UUID]*domain.Flashcard)}
}

func (f *fakeFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	if err := card.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *card
	f.cards[card.ID] = &copied
	return nil
}

func (f *fakeFlashcardStore) GetByID(
	ctx context.Context,
	studentID, id uuid.UUID,
) (*domain.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	card, ok := f.cards[id]
	if !ok || card.StudentID != studentID {
		return nil, store.ErrFlashcardNotFound
	}
	copied := *card
	return &copied, nil
}

func (f *fakeFlashcardStore) ListByStudent(
	ctx context.Context,
	studentID uuid.UUID,
) ([]*domain.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []*domain.Flashcard{}
	for _, card := range f.cards {
		if card.StudentID != studentID {
			continue
		}
		copied := *card
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeFlashcardStore) ListDue(
	ctx context.Context,
	studentID uuid.UUID,
	subjectID uuid.NullUUID,
	asOf time.Time,
	limit int,
) ([]*domain.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	due := []*domain.Flashcard{}
	for _, card := range f.cards {
		if card.StudentID != studentID || !card.IsDue(asOf) {
			continue
		}
		if subjectID.Valid && card.SubjectID != subjectID {
			continue
		}
		copied := *card
		due = append(due, &copied)
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReviewAt.Equal(due[j].NextReviewAt) {
			return due[i].NextReviewAt.Before(due[j].NextReviewAt)
		}
		if due[i].EaseFactor != due[j].EaseFactor {
			return due[i].EaseFactor < due[j].EaseFactor
		}
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakeFlashcardStore) UpdateScheduling(ctx context.Context, card *domain.Flashcard) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.updateErrs) > 0 {
		err := f.updateErrs[0]
		f.updateErrs = f.updateErrs[1:]
		if err != nil {
			return err
		}
	}

	stored, ok := f.cards[card.ID]
	if !ok {
		return store.ErrFlashcardNotFound
	}
	if stored.Version != card.Version {
		return store.ErrConcurrentModification
	}

	copied := *card
	copied.Version++
	f.cards[card.ID] = &copied
	card.Version++
	return nil
}

func (f *fakeFlashcardStore) Delete(ctx context.Context, studentID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	card, ok := f.cards[id]
	if !ok || card.StudentID != studentID {
		return store.ErrFlashcardNotFound
	}
	delete(f.cards, id)
	return nil
}

func (f *fakeFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return f
}

// fakeReviewRecordStore is an in-memory append-only store.ReviewRecordStore.
type fakeReviewRecordStore struct {
	mu      sync.Mutex
	records []*domain.ReviewRecord

	createErr error
}

func newFakeReviewRecordStore() *fakeReviewRecordStore {
	return &fakeReviewRecordStore{}
}

func (f *fakeReviewRecordStore) Create(ctx context.Context, record *domain.ReviewRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	if err := record.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *record
	f.records = append(f.records, &copied)
	return nil
}

func (f *fakeReviewRecordStore) ListByStudent(
	ctx context.Context,
	studentID uuid.UUID,
	flashcardID uuid.NullUUID,
) ([]*domain.ReviewRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []*domain.ReviewRecord{}
	for _, record := range f.records {
		if record.StudentID != studentID {
			continue
		}
		if flashcardID.Valid && record.FlashcardID != flashcardID.UUID {
			continue
		}
		copied := *record
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReviewedAt.Before(out[j].ReviewedAt)
	})
	return out, nil
}

func (f *fakeReviewRecordStore) WithTx(tx *sql.Tx) store.ReviewRecordStore {
	return f
}

// passthroughTxRunner runs the function directly with a nil transaction; the
// fake stores ignore the tx handle.
type passthroughTxRunner struct{}

func (passthroughTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// countingNotifier records ReviewRecorded calls.
type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNotifier) ReviewRecorded(ctx context.Context, studentID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}
