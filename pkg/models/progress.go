package models

import "time"

// Progress is the rolling quiz performance of a user in one subject
type Progress struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	SubjectID        string    `json:"subjectId"`
	QuizzesCompleted int       `json:"quizzesCompleted"`
	Accuracy         float64   `json:"accuracy"` // Running average, percent
	UpdatedAt        time.Time `json:"updatedAt"`
}
