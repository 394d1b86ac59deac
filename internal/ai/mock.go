package ai

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/example/examprep/pkg/models"
)

var mockOptions = []string{
	"Option A - Basic understanding",
	"Option B - Advanced concept",
	"Option C - Intermediate level",
	"Option D - Expert knowledge",
}

var mockChatOpeners = []string{
	"That's an interesting question! Let me help you understand this concept better.",
	"Great question! Here's what you need to know about this topic.",
	"I can help you with that. Let's break it down step by step.",
	"This is a common area where students need clarification. Here's the explanation:",
	"Perfect timing for this question! This concept is important for your studies.",
}

// Mock fills templates instead of calling a model
type Mock struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMock creates a template generator seeded from the clock
func NewMock() *Mock {
	return NewMockWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewMockWithSource creates a template generator with a fixed random source
func NewMockWithSource(src rand.Source) *Mock {
	return &Mock{rnd: rand.New(src)}
}

func (m *Mock) intn(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rnd.Intn(n)
}

// GenerateQuestions returns count template questions about topic
func (m *Mock) GenerateQuestions(ctx context.Context, subjectID, topic string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, models.Question{
			SubjectID:    subjectID,
			Text:         fmt.Sprintf("What is the main concept of %s? (Question %d)", topic, i+1),
			Options:      append([]string(nil), mockOptions...),
			CorrectIndex: m.intn(len(mockOptions)),
			Explanation:  fmt.Sprintf("This question tests your understanding of %s. The correct answer provides the most comprehensive explanation.", topic),
			Difficulty:   difficulty,
		})
	}
	return questions, nil
}

// GenerateCheatSheetContent returns a fixed study guide outline
func (m *Mock) GenerateCheatSheetContent(ctx context.Context, topic string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return fmt.Sprintf(`# %[1]s Study Guide

## Key Concepts
- Fundamental principles
- Important definitions
- Core methodologies

## Quick Reference
- Essential formulas
- Important dates
- Key figures

## Practice Points
- Common mistakes to avoid
- Exam tips
- Memory techniques

This cheat sheet was generated to help you study %[1]s effectively.`, topic), nil
}

// GenerateChatReply returns a canned tutoring reply
func (m *Mock) GenerateChatReply(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	opener := mockChatOpeners[m.intn(len(mockChatOpeners))]
	return fmt.Sprintf("%s For the topic of \"%s\", I recommend focusing on the fundamental principles and practicing with related questions.", opener, message), nil
}
