package revision

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionState represents the lifecycle state of a revision session.
type SessionState string

// Session lifecycle states. The only legal transitions are
// NotStarted -> InProgress and InProgress -> Completed or Abandoned.
const (
	SessionNotStarted SessionState = "not_started"
	SessionInProgress SessionState = "in_progress"
	SessionCompleted  SessionState = "completed"
	SessionAbandoned  SessionState = "abandoned"
)

// cardEntry tracks per-position presentation state within a session. The
// queue holds each card at most once, so position and card ID identify an
// entry interchangeably.
type cardEntry struct {
	cardID     uuid.UUID
	revealedAt time.Time // zero until the back of the card is shown
	answered   bool
}

// Session is an ephemeral, single-student revision run over a fixed queue of
// cards. Sessions live in memory only; the durable outcome of a session is
// the review records it appends. All methods are safe for concurrent use,
// though callers are expected to drive a session from a single client.
type Session struct {
	mu         sync.Mutex
	id         uuid.UUID
	studentID  uuid.UUID
	state      SessionState
	queue      []cardEntry
	index      int
	startedAt  time.Time
	finishedAt time.Time
}

// SessionCardView is the per-card portion of a session snapshot.
type SessionCardView struct {
	FlashcardID uuid.UUID `json:"flashcard_id"`
	Revealed    bool      `json:"revealed"`
	Answered    bool      `json:"answered"`
}

// SessionSnapshot is an immutable view of a session's state, safe to hand to
// callers without exposing the session's internal locking.
type SessionSnapshot struct {
	ID            uuid.UUID         `json:"id"`
	StudentID     uuid.UUID         `json:"student_id"`
	State         SessionState      `json:"state"`
	CurrentIndex  int               `json:"current_index"`
	TotalCards    int               `json:"total_cards"`
	AnsweredCards int               `json:"answered_cards"`
	Cards         []SessionCardView `json:"cards"`
	StartedAt     time.Time         `json:"started_at,omitempty"`
	FinishedAt    time.Time         `json:"finished_at,omitempty"`
}

// NewSession creates a session over the given card queue in the NotStarted
// state. Returns ErrEmptyQueue if no cards are provided. A card may appear at
// most once per queue; a duplicate would let one sitting answer the same card
// twice and double-schedule it, so it is rejected as ErrInvalidReviewInput.
func NewSession(studentID uuid.UUID, cardIDs []uuid.UUID) (*Session, error) {
	if len(cardIDs) == 0 {
		return nil, ErrEmptyQueue
	}

	queue := make([]cardEntry, len(cardIDs))
	seen := make(map[uuid.UUID]struct{}, len(cardIDs))
	for i, id := range cardIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: card %s appears more than once in the queue",
				ErrInvalidReviewInput, id)
		}
		seen[id] = struct{}{}
		queue[i] = cardEntry{cardID: id}
	}

	return &Session{
		id:        uuid.New(),
		studentID: studentID,
		state:     SessionNotStarted,
		queue:     queue,
	}, nil
}

// ID returns the session's identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// StudentID returns the owning student's identifier.
func (s *Session) StudentID() uuid.UUID {
	return s.studentID
}

// Start transitions the session from NotStarted to InProgress, presenting the
// first card. A second start is rejected with ErrSessionAlreadyStarted.
func (s *Session) Start(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SessionNotStarted:
		s.state = SessionInProgress
		s.startedAt = now
		return nil
	case SessionInProgress:
		return ErrSessionAlreadyStarted
	default:
		return ErrSessionFinished
	}
}

// Reveal shows the back of the current card and records the reveal time used
// for response timing. Revealing an already-revealed card is a no-op that
// keeps the original reveal time, so a retried request cannot shrink the
// measured response time.
func (s *Session) Reveal(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}

	entry := &s.queue[s.index]
	if entry.revealedAt.IsZero() {
		entry.revealedAt = now
	}
	return nil
}

// Answer validates that the current card may be answered, then invokes fn
// with the elapsed seconds between reveal and now. The card is marked
// answered only if fn returns nil, so a failed persistence attempt leaves the
// session able to accept a retry. fn runs under the session lock; a session
// has a single writer so this serializes answers without blocking other
// sessions.
func (s *Session) Answer(cardID uuid.UUID, now time.Time, fn func(responseTimeSeconds int) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return err
	}

	entry := &s.queue[s.index]
	if entry.cardID != cardID {
		return ErrCardNotCurrent
	}
	if entry.revealedAt.IsZero() {
		return ErrCardNotRevealed
	}
	if entry.answered {
		return ErrCardAlreadyAnswered
	}

	elapsed := int(now.Sub(entry.revealedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	if err := fn(elapsed); err != nil {
		return err
	}

	entry.answered = true
	return nil
}

// Advance moves to the next card once the current one is answered. Advancing
// past the last answered card completes the session. Advancing before the
// current card is answered is not an error; it reports advanced=false and
// leaves the session unchanged.
func (s *Session) Advance(now time.Time) (advanced bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return false, err
	}

	if !s.queue[s.index].answered {
		return false, nil
	}

	if s.index == len(s.queue)-1 {
		s.state = SessionCompleted
		s.finishedAt = now
		return true, nil
	}

	s.index++
	return true, nil
}

// Previous steps back to the prior card for display only. Returns moved=false
// when already at the first card. Navigating backward never re-schedules or
// re-opens an answered card; the answered flag keeps Answer rejecting a
// second submission.
func (s *Session) Previous() (moved bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInProgress(); err != nil {
		return false, err
	}

	if s.index == 0 {
		return false, nil
	}

	s.index--
	return true, nil
}

// Abandon terminates the session from any non-terminal state. Answers
// recorded before abandonment remain valid; abandon discards only the
// remaining queue.
func (s *Session) Abandon(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SessionNotStarted, SessionInProgress:
		s.state = SessionAbandoned
		s.finishedAt = now
		return nil
	default:
		return ErrSessionFinished
	}
}

// Snapshot returns an immutable view of the session's current state.
func (s *Session) Snapshot() *SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards := make([]SessionCardView, len(s.queue))
	answered := 0
	for i, entry := range s.queue {
		cards[i] = SessionCardView{
			FlashcardID: entry.cardID,
			Revealed:    !entry.revealedAt.IsZero(),
			Answered:    entry.answered,
		}
		if entry.answered {
			answered++
		}
	}

	return &SessionSnapshot{
		ID:            s.id,
		StudentID:     s.studentID,
		State:         s.state,
		CurrentIndex:  s.index,
		TotalCards:    len(s.queue),
		AnsweredCards: answered,
		Cards:         cards,
		StartedAt:     s.startedAt,
		FinishedAt:    s.finishedAt,
	}
}

// requireInProgress must be called with s.mu held.
func (s *Session) requireInProgress() error {
	switch s.state {
	case SessionInProgress:
		return nil
	case SessionNotStarted:
		return ErrSessionNotStarted
	default:
		return ErrSessionFinished
	}
}
