package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/examprep/pkg/models"
)

// AddSubject creates a subject owned by the current user
func (s *Store) AddSubject(ctx context.Context, in models.SubjectInput) (*models.Subject, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: subject name is required", ErrValidation)
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, in.Difficulty)
	}

	var out models.Subject
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		out = models.Subject{
			ID:         s.newID(),
			UserID:     user.ID,
			Name:       name,
			Category:   strings.TrimSpace(in.Category),
			Difficulty: difficulty,
			CreatedAt:  s.now(),
		}
		st.Subjects = append(st.Subjects, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSubjects returns the current user's subjects in creation order
func (s *Store) GetSubjects() []models.Subject {
	var out []models.Subject
	s.read(func(st *State, userID string) {
		for _, sub := range st.Subjects {
			if userID != "" && sub.UserID == userID {
				out = append(out, sub)
			}
		}
	})
	return out
}

// GetSubject looks up one of the current user's subjects
func (s *Store) GetSubject(id string) (*models.Subject, bool) {
	var out *models.Subject
	s.read(func(st *State, userID string) {
		if sub := st.subject(userID, id); sub != nil && userID != "" {
			cp := *sub
			out = &cp
		}
	})
	return out, out != nil
}

// UpdateSubject applies a partial update. It returns nil when the subject
// does not exist.
func (s *Store) UpdateSubject(ctx context.Context, id string, upd models.SubjectUpdate) (*models.Subject, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, fmt.Errorf("%w: subject name is required", ErrValidation)
	}
	if upd.Difficulty != nil && !upd.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, *upd.Difficulty)
	}

	var out *models.Subject
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		sub := st.subject(user.ID, id)
		if sub == nil {
			return nil
		}
		if upd.Name != nil {
			sub.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Category != nil {
			sub.Category = strings.TrimSpace(*upd.Category)
		}
		if upd.Difficulty != nil {
			sub.Difficulty = *upd.Difficulty
		}
		cp := *sub
		out = &cp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSubject removes a subject together with its questions, flashcards,
// cheat sheets and progress. It reports false when there was nothing to delete.
func (s *Store) DeleteSubject(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		kept := st.Subjects[:0]
		for _, sub := range st.Subjects {
			if sub.ID == id && sub.UserID == user.ID {
				deleted = true
				continue
			}
			kept = append(kept, sub)
		}
		if !deleted {
			return nil
		}
		st.Subjects = kept

		st.Questions = filter(st.Questions, func(q models.Question) bool { return q.SubjectID != id })
		st.Flashcards = filter(st.Flashcards, func(f models.Flashcard) bool { return f.SubjectID != id })
		st.CheatSheets = filter(st.CheatSheets, func(c models.CheatSheet) bool { return c.SubjectID != id })
		st.Progress = filter(st.Progress, func(p models.Progress) bool { return p.SubjectID != id })
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("Subject deleted", zap.String("subject_id", id))
	}
	return deleted, nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
