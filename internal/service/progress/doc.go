// Package progress derives dashboard metrics from the append-only review
// history: recency-weighted mastery (overall and per subject), calendar-day
// streaks in the student's timezone, and the current due count. Snapshots are
// derived views, cached with explicit invalidation on new reviews; the review
// records remain the ground truth.
package progress
