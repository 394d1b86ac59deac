package quiz

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/examprep/pkg/models"
)

func sampleQuestions() []models.Question {
	return []models.Question{
		{ID: "q1", Text: "2+2", Options: []string{"3", "4", "5", "6"}, CorrectIndex: 1},
		{ID: "q2", Text: "Capital of France", Options: []string{"Paris", "Rome", "Berlin", "Madrid"}, CorrectIndex: 0},
		{ID: "q3", Text: "H2O", Options: []string{"Salt", "Sugar", "Oil", "Water"}, CorrectIndex: 3},
		{ID: "q4", Text: "Largest planet", Options: []string{"Mars", "Venus", "Jupiter", "Earth"}, CorrectIndex: 2},
	}
}

func TestNewSession_Empty(t *testing.T) {
	_, err := NewSession(nil, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestNewSession_ShuffleTracksCorrectAnswer(t *testing.T) {
	original := sampleQuestions()
	for seed := int64(0); seed < 20; seed++ {
		s, err := NewSession(original, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		for i := 0; i < s.Len(); i++ {
			q, ok := s.Question(i)
			require.True(t, ok)
			want := original[i].Options[original[i].CorrectIndex]
			assert.Equal(t, want, q.Options[q.CorrectIndex], "seed %d question %d", seed, i)
			assert.ElementsMatch(t, original[i].Options, q.Options)
		}
	}

	// The caller's questions stay as they were
	assert.Equal(t, sampleQuestions(), original)
}

func TestSession_ScoreAndResult(t *testing.T) {
	s, err := NewSession(sampleQuestions(), nil)
	require.NoError(t, err)

	correct, err := s.Answer(0, 1)
	require.NoError(t, err)
	assert.True(t, correct)
	correct, err = s.Answer(1, 2)
	require.NoError(t, err)
	assert.False(t, correct)
	_, err = s.Answer(2, 3)
	require.NoError(t, err)

	_, err = s.Answer(3, 7)
	assert.ErrorIs(t, err, ErrOptionOutRange)
	_, err = s.Answer(9, 0)
	assert.ErrorIs(t, err, ErrOptionOutRange)

	assert.Equal(t, 3, s.Answered())
	assert.Equal(t, 2, s.Score())
	assert.Equal(t, 50, s.Percentage())

	s.Complete()
	_, err = s.Answer(3, 2)
	assert.ErrorIs(t, err, ErrFinished)

	res := s.Result(95 * time.Second)
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 4, res.TotalQuestions)
	assert.Equal(t, 95, res.TimeSpent)
	assert.Equal(t, []models.QuizAnswer{
		{QuestionID: "q1", SelectedIndex: 1, Correct: true},
		{QuestionID: "q2", SelectedIndex: 2, Correct: false},
		{QuestionID: "q3", SelectedIndex: 3, Correct: true},
	}, res.Answers)
}

func TestSession_ResultUsesStoredOptionOrder(t *testing.T) {
	original := sampleQuestions()
	for seed := int64(0); seed < 20; seed++ {
		s, err := NewSession(original, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		// Pick the last option as shown for every question
		shown := make([]string, s.Len())
		for i := 0; i < s.Len(); i++ {
			q, _ := s.Question(i)
			last := len(q.Options) - 1
			shown[i] = q.Options[last]
			_, err := s.Answer(i, last)
			require.NoError(t, err)
		}
		s.Complete()

		res := s.Result(time.Second)
		require.Len(t, res.Answers, len(original))
		for i, a := range res.Answers {
			stored := original[i]
			assert.Equal(t, stored.ID, a.QuestionID)
			assert.Equal(t, shown[i], stored.Options[a.SelectedIndex], "seed %d question %d", seed, i)
			assert.Equal(t, a.SelectedIndex == stored.CorrectIndex, a.Correct, "seed %d question %d", seed, i)
		}
	}
}

func TestSession_Advance(t *testing.T) {
	s, err := NewSession(sampleQuestions()[:2], nil)
	require.NoError(t, err)

	i, q := s.Current()
	assert.Equal(t, 0, i)
	assert.Equal(t, "q1", q.ID)

	assert.True(t, s.Advance())
	i, q = s.Current()
	assert.Equal(t, 1, i)
	assert.Equal(t, "q2", q.ID)
	assert.False(t, s.Advance())

	// Changing an answer replaces the earlier one
	_, err = s.Answer(1, 1)
	require.NoError(t, err)
	_, err = s.Answer(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Score())
}
