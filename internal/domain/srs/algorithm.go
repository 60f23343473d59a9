package srs

import (
	"math"
	"time"

	"github.com/revisehq/revision-api/internal/domain"
)

// qualityScore maps a review outcome to the SM-2 quality scale q in [0,5].
//
// Incorrect answers land in {0,1,2}, scaled by how close the student reports
// having been: difficulty 1 ("no idea") maps to 0, difficulty 5 ("barely
// missed") maps to 2. Correct answers land in {3,4,5}, inversely scaled by
// reported difficulty: difficulty 1 ("trivial") maps to 5, difficulty 5
// ("very hard") maps to 3.
//
// The caller must have validated the rating; this function assumes 1-5.
func qualityScore(wasCorrect bool, difficultyRating int) int {
	if wasCorrect {
		return 5 - (difficultyRating-1)/2
	}
	return (difficultyRating - 1) / 2
}

// nextEaseFactor applies the SM-2 ease-factor update
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q)*0.02))
//
// and clamps the result at params.MinEaseFactor. This is the single place the
// ease factor is mutated.
func nextEaseFactor(currentEF float64, quality int, params *Params) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	return newEF
}

// nextInterval determines the new interval in days for a successful review.
// The ladder is FirstInterval for the first success after creation or a
// lapse, SecondInterval for the second consecutive success, and
// round(previous * EF') from the third on. The result is rounded to the
// nearest whole day and floored at 1.
//
// consecutiveCorrect is the count AFTER the current success has been counted.
func nextInterval(previousInterval, consecutiveCorrect int, easeFactor float64, params *Params) int {
	switch {
	case consecutiveCorrect <= 1:
		return params.FirstInterval
	case consecutiveCorrect == 2:
		return params.SecondInterval
	default:
		interval := int(math.Round(float64(previousInterval) * easeFactor))
		if interval < 1 {
			interval = 1
		}
		return interval
	}
}

// scheduleCard computes the card's next scheduling state for the given review
// outcome. It follows the immutable update pattern: the input card is never
// modified, a new value is returned.
func scheduleCard(
	card *domain.Flashcard,
	wasCorrect bool,
	difficultyRating int,
	now time.Time,
	params *Params,
) *domain.Flashcard {
	next := *card

	quality := qualityScore(wasCorrect, difficultyRating)
	next.EaseFactor = nextEaseFactor(card.EaseFactor, quality, params)

	if quality < params.SuccessThreshold {
		// A lapse always resets spacing, it never merely shrinks it.
		next.ConsecutiveCorrect = 0
		next.IntervalDays = params.LapseInterval
	} else {
		next.ConsecutiveCorrect = card.ConsecutiveCorrect + 1
		next.IntervalDays = nextInterval(
			card.IntervalDays,
			next.ConsecutiveCorrect,
			next.EaseFactor,
			params,
		)
	}

	next.ReviewCount = card.ReviewCount + 1
	next.NextReviewAt = reviewDate(now).AddDate(0, 0, next.IntervalDays)
	next.UpdatedAt = now

	return &next
}

// reviewDate truncates a review timestamp to its calendar date in UTC. The
// next review is scheduled from the date of the review, not the instant.
func reviewDate(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}
