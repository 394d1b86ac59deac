package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/examprep/pkg/models"
)

// MaxQuizReward is the number of coins a perfect quiz earns
const MaxQuizReward = 50

// QuizReward returns the coins credited for a result
func QuizReward(result models.QuizResult) int {
	if result.TotalQuestions <= 0 || result.Score <= 0 {
		return 0
	}
	return result.Score * MaxQuizReward / result.TotalQuestions
}

// SubmitQuizResult folds a finished quiz into the subject's progress record
// and credits coins. The returned record is the updated progress.
func (s *Store) SubmitQuizResult(ctx context.Context, subjectID string, result models.QuizResult) (*models.Progress, error) {
	if result.TotalQuestions <= 0 {
		return nil, fmt.Errorf("%w: quiz has no questions", ErrValidation)
	}
	if result.Score < 0 || result.Score > result.TotalQuestions {
		return nil, fmt.Errorf("%w: score %d out of %d", ErrValidation, result.Score, result.TotalQuestions)
	}

	var out models.Progress
	reward := QuizReward(result)
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		if st.subject(user.ID, subjectID) == nil {
			return fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
		}

		var rec *models.Progress
		for i := range st.Progress {
			if st.Progress[i].UserID == user.ID && st.Progress[i].SubjectID == subjectID {
				rec = &st.Progress[i]
				break
			}
		}
		if rec == nil {
			st.Progress = append(st.Progress, models.Progress{
				ID:        s.newID(),
				UserID:    user.ID,
				SubjectID: subjectID,
			})
			rec = &st.Progress[len(st.Progress)-1]
		}

		pct := result.Fraction() * 100
		n := float64(rec.QuizzesCompleted)
		rec.Accuracy = (rec.Accuracy*n + pct) / (n + 1)
		rec.QuizzesCompleted++
		rec.UpdatedAt = s.now()

		user.Coins += reward
		out = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz result recorded",
		zap.String("subject_id", subjectID),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
		zap.Int("coins", reward))
	return &out, nil
}
