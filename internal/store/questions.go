package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/examprep/pkg/models"
)

// GenerateQuiz asks the generator for count questions about topic and stores
// them under the subject. Generation runs without holding the store lock.
func (s *Store) GenerateQuiz(ctx context.Context, subjectID, topic string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrValidation)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: question count must be positive, got %d", ErrValidation, count)
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrValidation, difficulty)
	}
	if err := s.requireSubject(subjectID); err != nil {
		return nil, err
	}

	generated, err := s.generator.GenerateQuestions(ctx, subjectID, topic, difficulty, count)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}
	if len(generated) != count {
		return nil, fmt.Errorf("%w: asked for %d questions, got %d", ErrGeneration, count, len(generated))
	}
	for i := range generated {
		generated[i].Difficulty = difficulty
	}

	out, err := s.AddQuestions(ctx, subjectID, generated)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Quiz generated",
		zap.String("subject_id", subjectID),
		zap.String("topic", topic),
		zap.Int("count", len(out)))
	return out, nil
}

// AddQuestions validates and stores questions under a subject, assigning ids
// and increasing the subject's question count.
func (s *Store) AddQuestions(ctx context.Context, subjectID string, questions []models.Question) ([]models.Question, error) {
	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}

	out := make([]models.Question, 0, len(questions))
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		sub := st.subject(user.ID, subjectID)
		if sub == nil {
			return fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
		}
		now := s.now()
		for _, q := range questions {
			q.ID = s.newID()
			q.SubjectID = subjectID
			q.Options = append([]string(nil), q.Options...)
			if q.Difficulty == "" {
				q.Difficulty = sub.Difficulty
			}
			q.CreatedAt = now
			out = append(out, q)
		}
		st.Questions = append(st.Questions, out...)
		sub.QuestionsCount += len(out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetQuestions returns every stored question of a subject
func (s *Store) GetQuestions(subjectID string) []models.Question {
	var out []models.Question
	s.read(func(st *State, userID string) {
		if userID == "" || st.subject(userID, subjectID) == nil {
			return
		}
		for _, q := range st.Questions {
			if q.SubjectID == subjectID {
				out = append(out, q)
			}
		}
	})
	return out
}

func validateQuestion(q models.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text is empty", ErrGeneration)
	}
	if len(q.Options) != models.OptionsPerQuestion {
		return fmt.Errorf("%w: expected %d options, got %d", ErrGeneration, models.OptionsPerQuestion, len(q.Options))
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fmt.Errorf("%w: correct index %d out of range", ErrGeneration, q.CorrectIndex)
	}
	return nil
}

// requireSubject checks auth and subject ownership before slow work starts
func (s *Store) requireSubject(subjectID string) error {
	var err error
	s.read(func(st *State, userID string) {
		switch {
		case userID == "":
			err = ErrAuthenticationRequired
		case st.subject(userID, subjectID) == nil:
			err = fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
		}
	})
	return err
}
