package events

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressEvent(t *testing.T) {
	studentID := uuid.New()

	event, err := NewProgressEvent(
		TypeStreakMilestone,
		studentID,
		StreakMilestonePayload{StreakDays: 7},
	)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeStreakMilestone, event.Type)
	assert.Equal(t, studentID, event.StudentID)
	assert.NotNil(t, event.Payload)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	// Verify payload round-trips through the event.
	var decoded StreakMilestonePayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, 7, decoded.StreakDays)
}

func TestNewProgressEventMasteryPayload(t *testing.T) {
	studentID := uuid.New()

	event, err := NewProgressEvent(
		TypeMasteryThreshold,
		studentID,
		MasteryThresholdPayload{OverallMastery: 0.92, Threshold: 0.9},
	)
	require.NoError(t, err)

	var decoded MasteryThresholdPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.InDelta(t, 0.92, decoded.OverallMastery, 0.0001)
	assert.InDelta(t, 0.9, decoded.Threshold, 0.0001)
}
