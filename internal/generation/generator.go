package generation

import (
	"context"

	"github.com/google/uuid"
)

// CardCandidate is a proposed flashcard from a content collaborator. It is
// untrusted text: the engine validates and persists accepted candidates
// through the normal flashcard creation path and never schedules a candidate
// directly.
type CardCandidate struct {
	Front string `json:"front"`
	Back  string `json:"back"`
	Hint  string `json:"hint,omitempty"`
}

// Validate checks that the candidate carries usable content.
func (c CardCandidate) Validate() error {
	if c.Front == "" {
		return ErrEmptyCandidateFront
	}
	if c.Back == "" {
		return ErrEmptyCandidateBack
	}
	return nil
}

// Generator defines the interface for proposing flashcard candidates.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Generator interface {
	// GenerateCandidates proposes flashcard candidates for the given topic,
	// optionally scoped to a subject from the curriculum catalogue. The
	// subject ID is passed through for prompt context only; the catalogue
	// collaborator owns subject validity.
	//
	// Returns candidates ready for review by the student, or an error if
	// generation fails (see errors.go for specific types).
	GenerateCandidates(
		ctx context.Context,
		subjectID uuid.NullUUID,
		topic string,
	) ([]CardCandidate, error)
}
