package spaced_repetition

import (
	"fmt"
	"sort"
	"time"

	"github.com/example/examprep/pkg/models"
)

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Lowest quality that counts as a successful recall
	PassThreshold int
	// Maximum interval in days
	MaxInterval int
	// Fixed intervals in days for the first repetitions
	InitialIntervals []int
}

// NewSM2 creates an SM2 scheduler with the default settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold:    3,
		MaxInterval:      365,
		InitialIntervals: []int{0, 1, 2, 3, 7, 10, 15, 20, 30},
	}
}

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// ParseQuality validates a raw 0-5 rating
func ParseQuality(q int) (QualityResponse, error) {
	if q < int(QualityBlackout) || q > int(QualityPerfect) {
		return 0, fmt.Errorf("quality must be between 0 and 5, got %d", q)
	}
	return QualityResponse(q), nil
}

// Process updates a card's review state after a review at now
func (sm *SM2) Process(state *models.ReviewState, quality QualityResponse, now time.Time) {
	reviewed := now
	state.LastReviewDate = &reviewed
	state.LastQuality = int(quality)

	newEF := state.EasinessFactor + (0.1 - (5.0-float64(quality))*(0.08+(5.0-float64(quality))*0.02))
	if newEF < 1.3 {
		newEF = 1.3
	}
	state.EasinessFactor = newEF

	if int(quality) >= sm.PassThreshold {
		state.ConsecutiveRight++

		var nextInterval int
		if state.Repetitions < len(sm.InitialIntervals) {
			nextInterval = sm.InitialIntervals[state.Repetitions]
		} else {
			nextInterval = int(float64(state.Interval) * state.EasinessFactor)
		}

		if nextInterval > sm.MaxInterval {
			nextInterval = sm.MaxInterval
		}

		state.Interval = nextInterval
		state.Repetitions++
	} else {
		// Repetitions are kept for analytics; only the streak and interval reset
		state.ConsecutiveRight = 0
		state.Interval = 1
	}

	next := now.AddDate(0, 0, state.Interval)
	state.NextReviewDate = &next
}

// IsDue reports whether a card should be reviewed at now
func IsDue(card models.Flashcard, now time.Time) bool {
	if card.Review == nil || card.Review.NextReviewDate == nil {
		return true
	}
	return !card.Review.NextReviewDate.After(now)
}

// DueCards returns the cards due at now, most urgent first, capped at limit.
// A limit of zero or less returns every due card.
func (sm *SM2) DueCards(cards []models.Flashcard, now time.Time, limit int) []models.Flashcard {
	var due []models.Flashcard
	for _, c := range cards {
		if IsDue(c, now) {
			due = append(due, c)
		}
	}

	// Never reviewed first, then hardest, then most overdue
	sort.SliceStable(due, func(i, j int) bool {
		ri, rj := due[i].Review, due[j].Review
		if ri == nil || rj == nil {
			return ri == nil && rj != nil
		}
		if ri.Repetitions == 0 && rj.Repetitions > 0 {
			return true
		}
		if rj.Repetitions == 0 && ri.Repetitions > 0 {
			return false
		}
		if ri.EasinessFactor != rj.EasinessFactor {
			return ri.EasinessFactor < rj.EasinessFactor
		}
		if ri.NextReviewDate != nil && rj.NextReviewDate != nil {
			return ri.NextReviewDate.Before(*rj.NextReviewDate)
		}
		return false
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}

// IsMastered determines if a card is considered mastered
func (sm *SM2) IsMastered(state *models.ReviewState) bool {
	if state == nil {
		return false
	}
	return state.Repetitions >= 5 &&
		state.LastQuality >= int(QualityCorrectHesitation) &&
		state.Interval >= 30
}
