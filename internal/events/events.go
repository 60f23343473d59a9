package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Progress event types consumed by notification collaborators.
const (
	// TypeStreakMilestone fires when a student's current streak reaches a
	// milestone day count.
	TypeStreakMilestone = "streak_milestone"

	// TypeMasteryThreshold fires when a student's overall mastery crosses a
	// threshold.
	TypeMasteryThreshold = "mastery_threshold"
)

// ProgressEvent represents a progress-derived fact a collaborator may react
// to, such as sending a notification. Emission is an observer hook; the
// revision engine never depends on a handler's outcome.
type ProgressEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// StudentID identifies the student the event concerns
	StudentID uuid.UUID `json:"student_id"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// StreakMilestonePayload is the payload for TypeStreakMilestone events.
type StreakMilestonePayload struct {
	StreakDays int `json:"streak_days"`
}

// MasteryThresholdPayload is the payload for TypeMasteryThreshold events.
type MasteryThresholdPayload struct {
	OverallMastery float64 `json:"overall_mastery"`
	Threshold      float64 `json:"threshold"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ProgressEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewProgressEvent creates a new ProgressEvent with the specified type and payload.
func NewProgressEvent(
	eventType string,
	studentID uuid.UUID,
	payload interface{},
) (*ProgressEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ProgressEvent{
		ID:        uuid.New(),
		Type:      eventType,
		StudentID: studentID,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ProgressEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ProgressEvent) error
}
