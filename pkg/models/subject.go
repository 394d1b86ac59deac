package models

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the difficulty level of a subject or question
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty converts user input into a Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Subject is a user-defined topic grouping quizzes, flashcards and cheat sheets
type Subject struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	Difficulty     Difficulty `json:"difficulty"`
	QuestionsCount int        `json:"questionsCount"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// SubjectInput holds the fields a user supplies when creating a subject
type SubjectInput struct {
	Name       string
	Category   string
	Difficulty Difficulty
}

// SubjectUpdate is a partial update; nil fields are left unchanged
type SubjectUpdate struct {
	Name       *string
	Category   *string
	Difficulty *Difficulty
}
