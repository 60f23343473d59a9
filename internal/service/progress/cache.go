package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// cacheKey namespaces entries by timezone: streaks computed for Sydney and
// London are different snapshots of the same history.
type cacheKey struct {
	studentID uuid.UUID
	timezone  string
}

type cacheEntry struct {
	snapshot  *Snapshot
	expiresAt time.Time
}

// snapshotCache holds the last computed snapshot per student and timezone.
// Expired entries are kept until invalidation so a failed recompute can fall
// back to the last known snapshot instead of failing the dashboard request.
type snapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
	}
}

// get returns the cached snapshot and whether it is still fresh. A stale
// snapshot is still returned (with fresh=false) for degraded-mode fallback.
func (c *snapshotCache) get(studentID uuid.UUID, timezone string, now time.Time) (*Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey{studentID: studentID, timezone: timezone}]
	if !ok {
		return nil, false
	}
	return entry.snapshot, now.Before(entry.expiresAt)
}

func (c *snapshotCache) put(snapshot *Snapshot, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{studentID: snapshot.StudentID, timezone: snapshot.Timezone}
	c.entries[key] = cacheEntry{snapshot: snapshot, expiresAt: now.Add(c.ttl)}
}

// invalidate marks every timezone's snapshot for the student as stale. The
// snapshots themselves are retained as fallbacks.
func (c *snapshotCache) invalidate(studentID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if key.studentID == studentID {
			entry.expiresAt = time.Time{}
			c.entries[key] = entry
		}
	}
}
