package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when candidate generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate card candidates")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during candidate generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyTopic is returned when no topic text is supplied
	ErrEmptyTopic = errors.New("topic cannot be empty")

	// ErrEmptyCandidateFront is returned for a candidate without front text
	ErrEmptyCandidateFront = errors.New("candidate front text cannot be empty")

	// ErrEmptyCandidateBack is returned for a candidate without back text
	ErrEmptyCandidateBack = errors.New("candidate back text cannot be empty")
)
