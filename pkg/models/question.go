package models

import "time"

// OptionsPerQuestion is the number of answer options every quiz question carries
const OptionsPerQuestion = 4

// Question is a multiple choice quiz question
type Question struct {
	ID           string     `json:"id"`
	SubjectID    string     `json:"subjectId"`
	Text         string     `json:"text"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
	Explanation  string     `json:"explanation"`
	Difficulty   Difficulty `json:"difficulty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
