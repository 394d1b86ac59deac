package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/examprep/pkg/models"
)

// Fallback tries a primary generator and falls back to a secondary one
// when the primary fails. A canceled context is never retried.
type Fallback struct {
	primary   Generator
	secondary Generator
	logger    *zap.Logger
}

// NewFallback combines two generators
func NewFallback(primary, secondary Generator, logger *zap.Logger) *Fallback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) shouldFallback(ctx context.Context, op string, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	f.logger.Warn("Primary generator failed, using fallback",
		zap.String("operation", op),
		zap.Error(err))
	return true
}

// GenerateQuestions implements Generator
func (f *Fallback) GenerateQuestions(ctx context.Context, subjectID, topic string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	questions, err := f.primary.GenerateQuestions(ctx, subjectID, topic, difficulty, count)
	if f.shouldFallback(ctx, "questions", err) {
		return f.secondary.GenerateQuestions(ctx, subjectID, topic, difficulty, count)
	}
	return questions, err
}

// GenerateCheatSheetContent implements Generator
func (f *Fallback) GenerateCheatSheetContent(ctx context.Context, topic string) (string, error) {
	content, err := f.primary.GenerateCheatSheetContent(ctx, topic)
	if f.shouldFallback(ctx, "cheat_sheet", err) {
		return f.secondary.GenerateCheatSheetContent(ctx, topic)
	}
	return content, err
}

// GenerateChatReply implements Generator
func (f *Fallback) GenerateChatReply(ctx context.Context, message string) (string, error) {
	reply, err := f.primary.GenerateChatReply(ctx, message)
	if f.shouldFallback(ctx, "chat", err) {
		return f.secondary.GenerateChatReply(ctx, message)
	}
	return reply, err
}
