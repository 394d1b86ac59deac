package ai

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/examprep/pkg/models"
)

func TestMock_GenerateQuestions(t *testing.T) {
	m := NewMockWithSource(rand.NewSource(7))

	questions, err := m.GenerateQuestions(context.Background(), "subj", "Linear Equations", models.DifficultyEasy, 5)
	require.NoError(t, err)
	require.Len(t, questions, 5)

	for i, q := range questions {
		assert.Equal(t, "subj", q.SubjectID)
		assert.Len(t, q.Options, models.OptionsPerQuestion)
		assert.GreaterOrEqual(t, q.CorrectIndex, 0)
		assert.Less(t, q.CorrectIndex, models.OptionsPerQuestion)
		assert.Contains(t, q.Text, "Linear Equations")
		assert.Equal(t, models.DifficultyEasy, q.Difficulty, "question %d", i)
	}

	// Options must not alias between questions
	questions[0].Options[0] = "changed"
	assert.Equal(t, "Option A - Basic understanding", questions[1].Options[0])
}

func TestMock_CheatSheetAndChat(t *testing.T) {
	m := NewMockWithSource(rand.NewSource(1))
	ctx := context.Background()

	content, err := m.GenerateCheatSheetContent(ctx, "Photosynthesis")
	require.NoError(t, err)
	assert.Contains(t, content, "# Photosynthesis Study Guide")
	assert.Contains(t, content, "## Practice Points")

	reply, err := m.GenerateChatReply(ctx, "derivatives")
	require.NoError(t, err)
	assert.Contains(t, reply, `For the topic of "derivatives"`)
}

func TestMock_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMock().GenerateQuestions(ctx, "s", "t", models.DifficultyHard, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
