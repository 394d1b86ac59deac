package models

// QuizAnswer records what the user picked for one question
type QuizAnswer struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex int    `json:"selectedIndex"`
	Correct       bool   `json:"correct"`
}

// QuizResult is the outcome of a finished quiz
type QuizResult struct {
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	TimeSpent      int          `json:"timeSpent"` // Seconds
	Answers        []QuizAnswer `json:"answers"`
}

// Fraction returns the share of correct answers in [0, 1]
func (r QuizResult) Fraction() float64 {
	if r.TotalQuestions <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions)
}
