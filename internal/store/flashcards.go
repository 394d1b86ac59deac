package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/examprep/internal/spaced_repetition"
	"github.com/example/examprep/pkg/models"
)

// AddFlashcard creates a card for the current user. SubjectID is optional but
// must name an existing subject when set.
func (s *Store) AddFlashcard(ctx context.Context, in models.FlashcardInput) (*models.Flashcard, error) {
	front := strings.TrimSpace(in.Front)
	back := strings.TrimSpace(in.Back)
	if front == "" || back == "" {
		return nil, fmt.Errorf("%w: flashcard front and back are required", ErrValidation)
	}

	var out models.Flashcard
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		if in.SubjectID != "" && st.subject(user.ID, in.SubjectID) == nil {
			return fmt.Errorf("subject %s: %w", in.SubjectID, ErrNotFound)
		}
		out = models.Flashcard{
			ID:        s.newID(),
			UserID:    user.ID,
			SubjectID: in.SubjectID,
			Front:     front,
			Back:      back,
			CreatedAt: s.now(),
		}
		st.Flashcards = append(st.Flashcards, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetFlashcards returns the current user's cards, restricted to one subject
// when subjectID is not empty
func (s *Store) GetFlashcards(subjectID string) []models.Flashcard {
	var out []models.Flashcard
	s.read(func(st *State, userID string) {
		for _, f := range st.Flashcards {
			if userID == "" || f.UserID != userID {
				continue
			}
			if subjectID != "" && f.SubjectID != subjectID {
				continue
			}
			out = append(out, f)
		}
	})
	return out
}

func (s *Store) DeleteFlashcard(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		st.Flashcards = filter(st.Flashcards, func(f models.Flashcard) bool {
			if f.ID == id && f.UserID == user.ID {
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

// ReviewFlashcard records a 0-5 recall rating and reschedules the card.
// It returns nil when the card does not exist.
func (s *Store) ReviewFlashcard(ctx context.Context, id string, quality int) (*models.Flashcard, error) {
	q, err := spaced_repetition.ParseQuality(quality)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var out *models.Flashcard
	err = s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		for i := range st.Flashcards {
			card := &st.Flashcards[i]
			if card.ID != id || card.UserID != user.ID {
				continue
			}
			if card.Review == nil {
				card.Review = models.NewReviewState()
			}
			s.sm2.Process(card.Review, q, s.now())
			cp := *card
			out = &cp
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DueFlashcards returns cards due for review now, most urgent first.
// A limit of zero or less returns all of them.
func (s *Store) DueFlashcards(subjectID string, limit int) []models.Flashcard {
	return s.sm2.DueCards(s.GetFlashcards(subjectID), s.now(), limit)
}
