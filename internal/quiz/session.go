// Package quiz runs one multiple choice quiz over stored questions.
package quiz

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/example/examprep/pkg/models"
)

var (
	ErrNoQuestions    = errors.New("quiz has no questions")
	ErrFinished       = errors.New("quiz is already finished")
	ErrOptionOutRange = errors.New("option out of range")
)

// Session is a quiz in progress. It is not safe for concurrent use.
type Session struct {
	questions []models.Question
	order     [][]int     // Shown option -> index in the stored question
	selected  map[int]int // Question index -> chosen option as shown
	current   int
	finished  bool
}

// NewSession prepares a quiz over questions. When rnd is not nil the
// options of each question are shuffled and the correct index follows them.
// Answers in the Result refer to the stored option order. The input slice is
// not modified.
func NewSession(questions []models.Question, rnd *rand.Rand) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	qs := make([]models.Question, len(questions))
	order := make([][]int, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		perm := make([]int, len(q.Options))
		for k := range perm {
			perm[k] = k
		}
		if rnd != nil {
			correctIndex := q.CorrectIndex
			rnd.Shuffle(len(q.Options), func(i, j int) {
				if i == correctIndex {
					correctIndex = j
				} else if j == correctIndex {
					correctIndex = i
				}
				q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
				perm[i], perm[j] = perm[j], perm[i]
			})
			q.CorrectIndex = correctIndex
		}
		qs[i] = q
		order[i] = perm
	}

	return &Session{questions: qs, order: order, selected: make(map[int]int)}, nil
}

// Len returns the number of questions
func (s *Session) Len() int { return len(s.questions) }

// Question returns the i-th question as shown to the user
func (s *Session) Question(i int) (models.Question, bool) {
	if i < 0 || i >= len(s.questions) {
		return models.Question{}, false
	}
	return s.questions[i], true
}

// Current returns the index and the question the user is on
func (s *Session) Current() (int, models.Question) {
	return s.current, s.questions[s.current]
}

// Answer records the option chosen for question i. Answers can be changed
// until the quiz is completed.
func (s *Session) Answer(i, option int) (bool, error) {
	if s.finished {
		return false, ErrFinished
	}
	q, ok := s.Question(i)
	if !ok {
		return false, fmt.Errorf("question %d: %w", i, ErrOptionOutRange)
	}
	if option < 0 || option >= len(q.Options) {
		return false, fmt.Errorf("option %d: %w", option, ErrOptionOutRange)
	}
	s.selected[i] = option
	return option == q.CorrectIndex, nil
}

// Advance moves to the next question. It reports false on the last one.
func (s *Session) Advance() bool {
	if s.current+1 >= len(s.questions) {
		return false
	}
	s.current++
	return true
}

// Answered returns how many questions have an answer
func (s *Session) Answered() int { return len(s.selected) }

// Complete freezes the answers. Unanswered questions count as wrong.
func (s *Session) Complete() { s.finished = true }

func (s *Session) Finished() bool { return s.finished }

// Score returns the number of correct answers so far
func (s *Session) Score() int {
	score := 0
	for i, opt := range s.selected {
		if s.questions[i].CorrectIndex == opt {
			score++
		}
	}
	return score
}

// Percentage returns the score as a whole percent, rounded
func (s *Session) Percentage() int {
	return int(math.Round(float64(s.Score()) / float64(len(s.questions)) * 100))
}

// Result builds the record submitted to the store
func (s *Session) Result(elapsed time.Duration) models.QuizResult {
	answers := make([]models.QuizAnswer, 0, len(s.selected))
	for i, q := range s.questions {
		opt, ok := s.selected[i]
		if !ok {
			continue
		}
		answers = append(answers, models.QuizAnswer{
			QuestionID:    q.ID,
			SelectedIndex: s.order[i][opt],
			Correct:       opt == q.CorrectIndex,
		})
	}
	return models.QuizResult{
		Score:          s.Score(),
		TotalQuestions: len(s.questions),
		TimeSpent:      int(elapsed / time.Second),
		Answers:        answers,
	}
}
