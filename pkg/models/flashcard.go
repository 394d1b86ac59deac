package models

import "time"

// Flashcard is a two-sided study card, optionally attached to a subject
type Flashcard struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	SubjectID string       `json:"subjectId,omitempty"`
	Front     string       `json:"front"`
	Back      string       `json:"back"`
	Review    *ReviewState `json:"review,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// FlashcardInput holds the fields a user supplies when creating a flashcard
type FlashcardInput struct {
	SubjectID string
	Front     string
	Back      string
}
