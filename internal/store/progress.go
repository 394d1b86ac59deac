package store

import (
	"math"

	"github.com/example/examprep/pkg/models"
)

// GetProgress returns the current user's progress records
func (s *Store) GetProgress() []models.Progress {
	var out []models.Progress
	s.read(func(st *State, userID string) {
		for _, p := range st.Progress {
			if userID != "" && p.UserID == userID {
				out = append(out, p)
			}
		}
	})
	return out
}

// GetSubjectProgress returns the progress record for one subject
func (s *Store) GetSubjectProgress(subjectID string) (*models.Progress, bool) {
	for _, p := range s.GetProgress() {
		if p.SubjectID == subjectID {
			return &p, true
		}
	}
	return nil, false
}

// ProgressSummary lines up every subject with its accuracy (0 when no quiz was taken)
func (s *Store) ProgressSummary() models.ProgressSummary {
	summary := models.ProgressSummary{Labels: []string{}, Scores: []float64{}}
	s.read(func(st *State, userID string) {
		if userID == "" {
			return
		}
		for _, sub := range st.Subjects {
			if sub.UserID != userID {
				continue
			}
			score := 0.0
			for _, p := range st.Progress {
				if p.UserID == userID && p.SubjectID == sub.ID {
					score = p.Accuracy
					break
				}
			}
			summary.Labels = append(summary.Labels, sub.Name)
			summary.Scores = append(summary.Scores, score)
		}
	})
	return summary
}

// OverallStats aggregates quizzes and the last days of study time
func (s *Store) OverallStats(days int) models.OverallStats {
	var stats models.OverallStats

	progress := s.GetProgress()
	total := 0.0
	for _, p := range progress {
		stats.TotalQuizzes += p.QuizzesCompleted
		total += p.Accuracy
	}
	if len(progress) > 0 {
		stats.AverageAccuracy = int(math.Round(total / float64(len(progress))))
	}

	history := s.GetStudyHistory(days)
	for _, d := range history {
		stats.TotalStudyMinutes += d.Minutes
	}
	stats.StudyStreak = StudyStreak(history)
	return stats
}

// GradePerformance maps an accuracy percentage onto a level and letter badge
func GradePerformance(accuracy float64) models.PerformanceLevel {
	switch {
	case accuracy >= 90:
		return models.PerformanceLevel{Level: "Excellent", Badge: "A+"}
	case accuracy >= 80:
		return models.PerformanceLevel{Level: "Good", Badge: "A"}
	case accuracy >= 70:
		return models.PerformanceLevel{Level: "Average", Badge: "B"}
	case accuracy >= 60:
		return models.PerformanceLevel{Level: "Below Average", Badge: "C"}
	default:
		return models.PerformanceLevel{Level: "Needs Improvement", Badge: "D"}
	}
}
