package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/revisehq/revision-api/internal/domain"
)

// Common errors
var (
	ErrNilCard = errors.New("flashcard cannot be nil")
)

// Service defines the interface for scheduling operations. The implementation
// is a pure function over the card value: no I/O, no shared mutable state,
// safe for any number of concurrent callers.
type Service interface {
	// Schedule computes a card's next scheduling state from a review outcome.
	// It returns a new card value; the input is never modified. A difficulty
	// rating outside 1-5 is a caller contract violation and returns
	// domain.ErrInvalidDifficultyRating, never a silently coerced result.
	Schedule(
		card *domain.Flashcard,
		wasCorrect bool,
		difficultyRating int,
		now time.Time,
	) (*domain.Flashcard, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Schedule implements the Service interface.
func (s *defaultService) Schedule(
	card *domain.Flashcard,
	wasCorrect bool,
	difficultyRating int,
	now time.Time,
) (*domain.Flashcard, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if difficultyRating < domain.MinDifficultyRating ||
		difficultyRating > domain.MaxDifficultyRating {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidDifficultyRating, difficultyRating)
	}

	return scheduleCard(card, wasCorrect, difficultyRating, now, s.params), nil
}
