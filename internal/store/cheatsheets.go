package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/examprep/pkg/models"
)

// GenerateCheatSheet builds a study guide for topic and files it under the subject
func (s *Store) GenerateCheatSheet(ctx context.Context, subjectID, topic string) (*models.CheatSheet, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrValidation)
	}
	if err := s.requireSubject(subjectID); err != nil {
		return nil, err
	}

	content, err := s.generator.GenerateCheatSheetContent(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cheat sheet: %w", err)
	}

	var out models.CheatSheet
	err = s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		if st.subject(user.ID, subjectID) == nil {
			return fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
		}
		out = models.CheatSheet{
			ID:        s.newID(),
			UserID:    user.ID,
			SubjectID: subjectID,
			Title:     topic + " - Study Guide",
			Content:   content,
			CreatedAt: s.now(),
		}
		st.CheatSheets = append(st.CheatSheets, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCheatSheets returns the current user's cheat sheets, optionally for one subject
func (s *Store) GetCheatSheets(subjectID string) []models.CheatSheet {
	var out []models.CheatSheet
	s.read(func(st *State, userID string) {
		for _, c := range st.CheatSheets {
			if userID == "" || c.UserID != userID {
				continue
			}
			if subjectID != "" && c.SubjectID != subjectID {
				continue
			}
			out = append(out, c)
		}
	})
	return out
}

func (s *Store) DeleteCheatSheet(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		st.CheatSheets = filter(st.CheatSheets, func(c models.CheatSheet) bool {
			if c.ID == id && c.UserID == user.ID {
				deleted = true
				return false
			}
			return true
		})
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
