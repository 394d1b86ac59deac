package models

import "time"

// ReviewState tracks SM-2 scheduling for a single flashcard
type ReviewState struct {
	EasinessFactor   float64    `json:"easinessFactor"`
	Interval         int        `json:"interval"` // Days until the next review
	Repetitions      int        `json:"repetitions"`
	LastQuality      int        `json:"lastQuality"` // 0-5 rating of last recall
	ConsecutiveRight int        `json:"consecutiveRight"`
	LastReviewDate   *time.Time `json:"lastReviewDate,omitempty"`
	NextReviewDate   *time.Time `json:"nextReviewDate,omitempty"`
}

// NewReviewState returns the state of a card that was never reviewed
func NewReviewState() *ReviewState {
	return &ReviewState{
		EasinessFactor: 2.5,
		Interval:       1,
	}
}
