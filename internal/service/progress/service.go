package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/events"
	"github.com/revisehq/revision-api/internal/platform/logger"
	"github.com/revisehq/revision-api/internal/store"
)

// Snapshot is a derived view of a student's progress at a point in time.
// Mastery values are fractions in [0, 1].
type Snapshot struct {
	StudentID         uuid.UUID        `json:"student_id"`
	OverallMastery    float64          `json:"overall_mastery"`
	PerSubjectMastery []SubjectMastery `json:"per_subject_mastery"`
	CurrentStreak     int              `json:"current_streak"`
	LongestStreak     int              `json:"longest_streak"`
	DueCount          int              `json:"due_count"`
	Timezone          string           `json:"timezone"`
	ComputedAt        time.Time        `json:"computed_at"`
}

// Config tunes the progress aggregator.
type Config struct {
	// MasteryWindow is the number of most recent reviews per card that count
	// toward the mastery metric.
	MasteryWindow int

	// CacheTTL bounds how long a computed snapshot is served without
	// recomputation.
	CacheTTL time.Duration
}

// streakMilestones are the day counts that fire a streak-milestone event when
// first reached.
var streakMilestones = []int{3, 7, 14, 30, 60, 100}

// masteryEventThreshold fires a mastery-threshold event when overall mastery
// first crosses it.
const masteryEventThreshold = 0.9

// Service computes progress snapshots and reacts to new reviews.
type Service interface {
	// GetProgress returns the student's progress snapshot computed in the
	// given timezone. A nil location defaults to UTC. A fresh cached snapshot
	// is served without recomputation; if recomputation fails, the last known
	// snapshot is returned instead of an error.
	GetProgress(ctx context.Context, studentID uuid.UUID, loc *time.Location) (*Snapshot, error)

	// ReviewRecorded invalidates the student's cached snapshots after a new
	// review and emits streak-milestone and mastery-threshold events when the
	// fresh snapshot crosses one. Event or recompute failures are logged,
	// never propagated; the review itself has already been persisted.
	ReviewRecorded(ctx context.Context, studentID uuid.UUID)
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	cardStore   store.FlashcardStore
	recordStore store.ReviewRecordStore
	emitter     events.EventEmitter
	cache       *snapshotCache
	window      int
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a progress Service. The emitter may be nil when no
// notification collaborator is wired.
func NewService(
	cardStore store.FlashcardStore,
	recordStore store.ReviewRecordStore,
	emitter events.EventEmitter,
	cfg Config,
	logger *slog.Logger,
) Service {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if recordStore == nil {
		panic("recordStore cannot be nil")
	}
	if cfg.MasteryWindow <= 0 {
		panic("MasteryWindow must be positive")
	}
	if cfg.CacheTTL <= 0 {
		panic("CacheTTL must be positive")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		cardStore:   cardStore,
		recordStore: recordStore,
		emitter:     emitter,
		cache:       newSnapshotCache(cfg.CacheTTL),
		window:      cfg.MasteryWindow,
		logger:      logger.With(slog.String("component", "progress_service")),
		now:         time.Now,
	}
}

// GetProgress implements Service.GetProgress.
func (s *serviceImpl) GetProgress(
	ctx context.Context,
	studentID uuid.UUID,
	loc *time.Location,
) (*Snapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if loc == nil {
		loc = time.UTC
	}
	now := s.now().UTC()

	cached, fresh := s.cache.get(studentID, loc.String(), now)
	if fresh {
		return cached, nil
	}

	snapshot, err := s.compute(ctx, studentID, loc, now)
	if err != nil {
		if cached != nil {
			log.Warn("progress recompute failed, serving stale snapshot",
				slog.String("error", err.Error()),
				slog.String("student_id", studentID.String()),
				slog.Time("computed_at", cached.ComputedAt))
			return cached, nil
		}
		log.Error("failed to compute progress",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return nil, fmt.Errorf("failed to compute progress: %w", err)
	}

	s.cache.put(snapshot, now)
	return snapshot, nil
}

// compute rebuilds the snapshot from the review history and card set.
func (s *serviceImpl) compute(
	ctx context.Context,
	studentID uuid.UUID,
	loc *time.Location,
	now time.Time,
) (*Snapshot, error) {
	records, err := s.recordStore.ListByStudent(ctx, studentID, uuid.NullUUID{})
	if err != nil {
		return nil, fmt.Errorf("failed to list review history: %w", err)
	}

	cards, err := s.cardStore.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}

	due, err := s.cardStore.ListDue(ctx, studentID, uuid.NullUUID{}, now, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list due flashcards: %w", err)
	}

	overall, perSubject := computeMastery(records, cards, s.window)

	reviewTimes := make([]time.Time, len(records))
	for i, record := range records {
		reviewTimes[i] = record.ReviewedAt
	}
	current, longest := computeStreaks(reviewTimes, loc, now)

	return &Snapshot{
		StudentID:         studentID,
		OverallMastery:    overall,
		PerSubjectMastery: perSubject,
		CurrentStreak:     current,
		LongestStreak:     longest,
		DueCount:          len(due),
		Timezone:          loc.String(),
		ComputedAt:        now,
	}, nil
}

// ReviewRecorded implements Service.ReviewRecorded.
func (s *serviceImpl) ReviewRecorded(ctx context.Context, studentID uuid.UUID) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := s.now().UTC()
	previous, _ := s.cache.get(studentID, time.UTC.String(), now)
	s.cache.invalidate(studentID)

	snapshot, err := s.compute(ctx, studentID, time.UTC, now)
	if err != nil {
		log.Warn("failed to recompute progress after review",
			slog.String("error", err.Error()),
			slog.String("student_id", studentID.String()))
		return
	}
	s.cache.put(snapshot, now)

	if s.emitter == nil {
		return
	}
	s.emitMilestones(ctx, previous, snapshot)
}

// emitMilestones compares the previous and fresh snapshots and emits an event
// for each milestone crossed. With no previous snapshot, exact hits still
// fire so a process restart does not swallow a milestone reached on the next
// review.
func (s *serviceImpl) emitMilestones(ctx context.Context, previous, snapshot *Snapshot) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	previousStreak := 0
	previousMastery := 0.0
	if previous != nil {
		previousStreak = previous.CurrentStreak
		previousMastery = previous.OverallMastery
	}

	for _, milestone := range streakMilestones {
		crossed := previousStreak < milestone && snapshot.CurrentStreak >= milestone
		if previous == nil {
			crossed = snapshot.CurrentStreak == milestone
		}
		if !crossed {
			continue
		}

		event, err := events.NewProgressEvent(
			events.TypeStreakMilestone,
			snapshot.StudentID,
			events.StreakMilestonePayload{StreakDays: milestone},
		)
		if err != nil {
			log.Error("failed to build streak milestone event",
				slog.String("error", err.Error()))
			continue
		}
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			log.Warn("streak milestone handler failed",
				slog.String("error", err.Error()),
				slog.Int("streak_days", milestone))
		}
	}

	if previousMastery < masteryEventThreshold &&
		snapshot.OverallMastery >= masteryEventThreshold {
		event, err := events.NewProgressEvent(
			events.TypeMasteryThreshold,
			snapshot.StudentID,
			events.MasteryThresholdPayload{
				OverallMastery: snapshot.OverallMastery,
				Threshold:      masteryEventThreshold,
			},
		)
		if err != nil {
			log.Error("failed to build mastery threshold event",
				slog.String("error", err.Error()))
			return
		}
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			log.Warn("mastery threshold handler failed",
				slog.String("error", err.Error()))
		}
	}
}
