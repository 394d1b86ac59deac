package models

// DailyMinutes is the study time recorded on one calendar day
type DailyMinutes struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Minutes int    `json:"minutes"`
}

// ProgressSummary lines up subject names with their accuracy
type ProgressSummary struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// OverallStats aggregates quiz and study activity
type OverallStats struct {
	TotalQuizzes      int `json:"totalQuizzes"`
	AverageAccuracy   int `json:"averageAccuracy"` // Rounded percent
	TotalStudyMinutes int `json:"totalStudyMinutes"`
	StudyStreak       int `json:"studyStreak"` // Consecutive days ending today
}

// PerformanceLevel grades an accuracy value
type PerformanceLevel struct {
	Level string `json:"level"`
	Badge string `json:"badge"`
}
