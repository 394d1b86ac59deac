package spaced_repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/examprep/pkg/models"
)

var day0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSM2_IntervalsGrowOnCorrectAnswers(t *testing.T) {
	sm := NewSM2()
	state := models.NewReviewState()

	var intervals []int
	now := day0
	for i := 0; i < 4; i++ {
		sm.Process(state, QualityPerfect, now)
		intervals = append(intervals, state.Interval)
		now = *state.NextReviewDate
	}

	assert.Equal(t, []int{0, 1, 2, 3}, intervals)
	assert.Equal(t, 4, state.Repetitions)
	assert.Equal(t, 4, state.ConsecutiveRight)
	assert.Greater(t, state.EasinessFactor, 2.5)
}

func TestSM2_FailedRecallResetsInterval(t *testing.T) {
	sm := NewSM2()
	state := models.NewReviewState()
	state.Repetitions = 6
	state.Interval = 15
	state.ConsecutiveRight = 6

	sm.Process(state, QualityIncorrect, day0)

	assert.Equal(t, 1, state.Interval)
	assert.Equal(t, 0, state.ConsecutiveRight)
	assert.Equal(t, 6, state.Repetitions)
	assert.Equal(t, day0.AddDate(0, 0, 1), *state.NextReviewDate)
}

func TestSM2_EasinessFloor(t *testing.T) {
	sm := NewSM2()
	state := models.NewReviewState()
	for i := 0; i < 20; i++ {
		sm.Process(state, QualityBlackout, day0)
	}
	assert.InDelta(t, 1.3, state.EasinessFactor, 1e-9)
}

func TestSM2_DueCardsOrdering(t *testing.T) {
	sm := NewSM2()
	future := day0.Add(48 * time.Hour)
	past := day0.Add(-24 * time.Hour)

	cards := []models.Flashcard{
		{ID: "later", Review: &models.ReviewState{EasinessFactor: 2.5, Repetitions: 2, NextReviewDate: &future}},
		{ID: "easy", Review: &models.ReviewState{EasinessFactor: 2.8, Repetitions: 3, NextReviewDate: &past}},
		{ID: "hard", Review: &models.ReviewState{EasinessFactor: 1.6, Repetitions: 3, NextReviewDate: &past}},
		{ID: "new"},
	}

	due := sm.DueCards(cards, day0, 0)
	require.Len(t, due, 3)
	assert.Equal(t, "new", due[0].ID)
	assert.Equal(t, "hard", due[1].ID)
	assert.Equal(t, "easy", due[2].ID)

	assert.Len(t, sm.DueCards(cards, day0, 1), 1)
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality(4)
	require.NoError(t, err)
	assert.Equal(t, QualityCorrectHesitation, q)

	_, err = ParseQuality(6)
	assert.Error(t, err)
	_, err = ParseQuality(-1)
	assert.Error(t, err)
}

func TestIsMastered(t *testing.T) {
	sm := NewSM2()
	assert.False(t, sm.IsMastered(nil))
	assert.True(t, sm.IsMastered(&models.ReviewState{Repetitions: 5, LastQuality: 4, Interval: 30}))
	assert.False(t, sm.IsMastered(&models.ReviewState{Repetitions: 5, LastQuality: 3, Interval: 30}))
}
