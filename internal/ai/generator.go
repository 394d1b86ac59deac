// Package ai holds the content generator port and its backends.
package ai

import (
	"context"

	"github.com/example/examprep/pkg/models"
)

// Generator produces study content. The store depends only on this
// interface, so a mock, ChatGPT or Gemini backend can be swapped in.
type Generator interface {
	// GenerateQuestions returns count multiple choice questions about topic.
	// Only Text, Options, CorrectIndex and Explanation need to be set.
	GenerateQuestions(ctx context.Context, subjectID, topic string, difficulty models.Difficulty, count int) ([]models.Question, error)
	// GenerateCheatSheetContent returns a markdown study guide for topic
	GenerateCheatSheetContent(ctx context.Context, topic string) (string, error)
	// GenerateChatReply answers a tutoring message
	GenerateChatReply(ctx context.Context, message string) (string, error)
}
