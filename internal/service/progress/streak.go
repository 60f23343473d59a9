package progress

import (
	"sort"
	"time"
)

// dayNumber returns the day count since the Unix epoch of the calendar date
// holding t in the given location. Streak logic works exclusively on these
// day numbers; subtracting one is always "yesterday" even across month and
// year boundaries, which direct calendar-field manipulation gets wrong.
func dayNumber(t time.Time, loc *time.Location) int {
	year, month, day := t.In(loc).Date()
	return int(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// computeStreaks derives the current and longest calendar-day streaks from
// review timestamps. A streak is a run of consecutive days each having at
// least one review. The current streak is not broken until a full day with
// zero reviews has elapsed, so a run ending yesterday still counts; a run
// that ended before yesterday yields a current streak of 0.
func computeStreaks(
	reviewTimes []time.Time,
	loc *time.Location,
	now time.Time,
) (current, longest int) {
	if len(reviewTimes) == 0 {
		return 0, 0
	}

	seen := make(map[int]struct{}, len(reviewTimes))
	for _, t := range reviewTimes {
		seen[dayNumber(t, loc)] = struct{}{}
	}

	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1]+1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := dayNumber(now, loc)
	last := days[len(days)-1]
	if last != today && last != today-1 {
		return 0, longest
	}

	current = 1
	for i := len(days) - 2; i >= 0; i-- {
		if days[i] != days[i+1]-1 {
			break
		}
		current++
	}
	return current, longest
}
