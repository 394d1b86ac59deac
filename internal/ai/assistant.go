package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/examprep/pkg/models"
)

// Completion carries the tuning knobs of a single model call
type Completion struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	JSON        bool // Ask the model for a JSON-only answer
}

// Completer sends a prompt to a language model and returns its text answer
type Completer interface {
	Complete(ctx context.Context, req Completion) (string, error)
}

// ErrMalformedOutput is returned when the model answer parses but does not
// hold usable questions
var ErrMalformedOutput = errors.New("malformed model output")

const tutorSystemPrompt = "You are a patient exam preparation tutor. Answer clearly and concisely, and suggest how to practice."

// Assistant implements Generator on top of any Completer
type Assistant struct {
	completer Completer
}

// NewAssistant wraps a language model client as a Generator
func NewAssistant(c Completer) *Assistant {
	return &Assistant{completer: c}
}

// generatedQuestion is the JSON shape the model is asked to return
type generatedQuestion struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// GenerateQuestions asks the model for a JSON array of questions
func (a *Assistant) GenerateQuestions(ctx context.Context, subjectID, topic string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	prompt := fmt.Sprintf(
		"Write %d %s multiple choice questions about %q. "+
			"Return only a JSON array. Each element must have the fields "+
			"\"text\", \"options\" (exactly %d strings), \"correctIndex\" (0-based) and \"explanation\".",
		count, difficulty, topic, models.OptionsPerQuestion,
	)

	answer, err := a.completer.Complete(ctx, Completion{
		System:      tutorSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   300 * count,
		Temperature: 0.7,
		JSON:        true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	questions, err := parseQuestions(answer, subjectID, difficulty)
	if err != nil {
		return nil, err
	}
	if len(questions) != count {
		return nil, fmt.Errorf("%w: asked for %d questions, got %d", ErrMalformedOutput, count, len(questions))
	}
	return questions, nil
}

// GenerateCheatSheetContent asks the model for a markdown study guide
func (a *Assistant) GenerateCheatSheetContent(ctx context.Context, topic string) (string, error) {
	prompt := fmt.Sprintf(
		"Create a one-page markdown cheat sheet for %q with the sections "+
			"\"Key Concepts\", \"Quick Reference\" and \"Practice Points\".",
		topic,
	)

	content, err := a.completer.Complete(ctx, Completion{
		System:      tutorSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   800,
		Temperature: 0.5,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate cheat sheet: %w", err)
	}
	return strings.TrimSpace(content), nil
}

// GenerateChatReply forwards the message to the model
func (a *Assistant) GenerateChatReply(ctx context.Context, message string) (string, error) {
	reply, err := a.completer.Complete(ctx, Completion{
		System:      tutorSystemPrompt,
		Prompt:      message,
		MaxTokens:   400,
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate chat reply: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// parseQuestions decodes a JSON array, tolerating markdown code fences
func parseQuestions(raw, subjectID string, difficulty models.Difficulty) ([]models.Question, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &generated); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	questions := make([]models.Question, 0, len(generated))
	for i, g := range generated {
		if err := g.validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, models.Question{
			SubjectID:    subjectID,
			Text:         strings.TrimSpace(g.Text),
			Options:      g.Options,
			CorrectIndex: g.CorrectIndex,
			Explanation:  strings.TrimSpace(g.Explanation),
			Difficulty:   difficulty,
		})
	}
	return questions, nil
}

func (g generatedQuestion) validate() error {
	if strings.TrimSpace(g.Text) == "" {
		return fmt.Errorf("%w: empty question text", ErrMalformedOutput)
	}
	if len(g.Options) != models.OptionsPerQuestion {
		return fmt.Errorf("%w: expected %d options, got %d", ErrMalformedOutput, models.OptionsPerQuestion, len(g.Options))
	}
	if g.CorrectIndex < 0 || g.CorrectIndex >= len(g.Options) {
		return fmt.Errorf("%w: correct index %d out of range", ErrMalformedOutput, g.CorrectIndex)
	}
	return nil
}
