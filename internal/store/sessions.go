package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/examprep/pkg/models"
)

const dateLayout = "2006-01-02"

// StartStudySession opens a session on one of the current user's subjects
func (s *Store) StartStudySession(ctx context.Context, subjectID string) (*models.StudySession, error) {
	var out models.StudySession
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		if st.subject(user.ID, subjectID) == nil {
			return fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
		}
		out = models.StudySession{
			ID:        s.newID(),
			UserID:    user.ID,
			SubjectID: subjectID,
			StartTime: s.now(),
		}
		st.StudySessions = append(st.StudySessions, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// StopStudySession closes an open session, stores its whole-minute duration
// and credits coins. Unknown or already closed sessions return nil.
func (s *Store) StopStudySession(ctx context.Context, id string) (*models.StudySession, error) {
	var out *models.StudySession
	reward := 0
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		for i := range st.StudySessions {
			sess := &st.StudySessions[i]
			if sess.ID != id || sess.UserID != user.ID || !sess.Open() {
				continue
			}
			end := s.now()
			sess.EndTime = &end
			sess.DurationMinutes = int(end.Sub(sess.StartTime) / time.Minute)
			if sess.DurationMinutes < 0 {
				sess.DurationMinutes = 0
			}
			reward = sess.Reward()
			user.Coins += reward
			cp := *sess
			out = &cp
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out != nil {
		s.logger.Info("Study session stopped",
			zap.String("session_id", id),
			zap.Int("minutes", out.DurationMinutes),
			zap.Int("coins", reward))
	}
	return out, nil
}

// ActiveStudySession returns the current user's most recent open session
func (s *Store) ActiveStudySession() (*models.StudySession, bool) {
	var out *models.StudySession
	s.read(func(st *State, userID string) {
		if userID == "" {
			return
		}
		for i := len(st.StudySessions) - 1; i >= 0; i-- {
			sess := st.StudySessions[i]
			if sess.UserID == userID && sess.Open() {
				out = &sess
				return
			}
		}
	})
	return out, out != nil
}

// GetStudySessions returns all of the current user's sessions
func (s *Store) GetStudySessions() []models.StudySession {
	var out []models.StudySession
	s.read(func(st *State, userID string) {
		for _, sess := range st.StudySessions {
			if userID != "" && sess.UserID == userID {
				out = append(out, sess)
			}
		}
	})
	return out
}

// GetStudyHistory returns exactly days entries, oldest first, ending today.
// Sessions are bucketed by the calendar day they started on.
func (s *Store) GetStudyHistory(days int) []models.DailyMinutes {
	out := []models.DailyMinutes{}
	if days <= 0 {
		return out
	}

	today := s.now().In(s.loc)
	first := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, -(days - 1))

	byDay := make(map[string]int)
	s.read(func(st *State, userID string) {
		if userID == "" {
			return
		}
		for _, sess := range st.StudySessions {
			if sess.UserID != userID {
				continue
			}
			byDay[sess.StartTime.In(s.loc).Format(dateLayout)] += sess.DurationMinutes
		}
	})

	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i).Format(dateLayout)
		out = append(out, models.DailyMinutes{Date: date, Minutes: byDay[date]})
	}
	return out
}

// StudyMinutesToday returns the minutes studied on the current calendar day
func (s *Store) StudyMinutesToday() int {
	history := s.GetStudyHistory(1)
	if len(history) == 0 {
		return 0
	}
	return history[0].Minutes
}

// StudyStreak counts consecutive days with study time, ending at the last entry
func StudyStreak(history []models.DailyMinutes) int {
	streak := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Minutes <= 0 {
			break
		}
		streak++
	}
	return streak
}
