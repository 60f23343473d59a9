package revision

import (
	"errors"
	"fmt"
)

// Common error types for the revision service
var (
	// ErrInvalidReviewInput indicates that a review submission carried
	// malformed data, such as a difficulty rating outside 1-5.
	ErrInvalidReviewInput = errors.New("invalid review input")

	// ErrEmptyQueue indicates an attempt to start a session with no cards.
	ErrEmptyQueue = errors.New("session queue cannot be empty")

	// ErrSessionNotFound indicates that the session does not exist or belongs
	// to a different student.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionAlreadyStarted indicates a second start of the same session.
	ErrSessionAlreadyStarted = errors.New("session already started")

	// ErrSessionFinished indicates an operation on a completed or abandoned
	// session.
	ErrSessionFinished = errors.New("session already finished")

	// ErrSessionNotStarted indicates an in-session operation before start.
	ErrSessionNotStarted = errors.New("session not started")

	// ErrCardNotRevealed indicates an answer submitted before the current
	// card's back was revealed. It is a kind of ErrInvalidReviewInput.
	ErrCardNotRevealed = fmt.Errorf("%w: card not yet revealed", ErrInvalidReviewInput)

	// ErrCardAlreadyAnswered indicates a second answer for the same card
	// within a session. It is a kind of ErrInvalidReviewInput.
	ErrCardAlreadyAnswered = fmt.Errorf("%w: card already answered in this session", ErrInvalidReviewInput)

	// ErrCardNotCurrent indicates an answer that targets a card other than
	// the one currently presented.
	ErrCardNotCurrent = errors.New("card is not the current session card")
)
