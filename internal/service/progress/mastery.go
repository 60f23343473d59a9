package progress

import (
	"sort"

	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/domain"
)

// SubjectMastery is a per-subject slice of the mastery metric.
type SubjectMastery struct {
	SubjectID uuid.UUID `json:"subject_id"`
	Mastery   float64   `json:"mastery"`
}

// computeMastery derives the recency-weighted mastery metric from a student's
// review history. Per card, mastery is the proportion of the last `window`
// reviews that were correct; recent improvement or regression dominates
// instead of a lifetime average. Overall mastery averages the per-card values
// across cards with at least one review. The per-subject breakdown averages
// over each subject's reviewed cards, using the cards slice to map card IDs
// to subjects; cards without a subject contribute to the overall figure only.
//
// records must be ordered by review time ascending. Results are fractions in
// [0, 1]; the per-subject slice is sorted by subject ID for determinism.
func computeMastery(
	records []*domain.ReviewRecord,
	cards []*domain.Flashcard,
	window int,
) (overall float64, perSubject []SubjectMastery) {
	if window <= 0 || len(records) == 0 {
		return 0, []SubjectMastery{}
	}

	// Most recent `window` outcomes per card.
	outcomes := make(map[uuid.UUID][]bool)
	for _, record := range records {
		recent := append(outcomes[record.FlashcardID], record.WasCorrect)
		if len(recent) > window {
			recent = recent[1:]
		}
		outcomes[record.FlashcardID] = recent
	}

	subjectByCard := make(map[uuid.UUID]uuid.UUID, len(cards))
	for _, card := range cards {
		if card.SubjectID.Valid {
			subjectByCard[card.ID] = card.SubjectID.UUID
		}
	}

	var overallSum float64
	subjectSums := make(map[uuid.UUID]float64)
	subjectCounts := make(map[uuid.UUID]int)

	for cardID, recent := range outcomes {
		correct := 0
		for _, wasCorrect := range recent {
			if wasCorrect {
				correct++
			}
		}
		mastery := float64(correct) / float64(len(recent))
		overallSum += mastery

		if subjectID, ok := subjectByCard[cardID]; ok {
			subjectSums[subjectID] += mastery
			subjectCounts[subjectID]++
		}
	}

	overall = overallSum / float64(len(outcomes))

	perSubject = make([]SubjectMastery, 0, len(subjectSums))
	for subjectID, sum := range subjectSums {
		perSubject = append(perSubject, SubjectMastery{
			SubjectID: subjectID,
			Mastery:   sum / float64(subjectCounts[subjectID]),
		})
	}
	sort.Slice(perSubject, func(i, j int) bool {
		return perSubject[i].SubjectID.String() < perSubject[j].SubjectID.String()
	})

	return overall, perSubject
}
