package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/examprep/internal/quiz"
	"github.com/example/examprep/internal/store"
)

var optionLetters = []string{"A", "B", "C", "D"}

// handleQuiz generates a quiz for a subject: /quiz <number> [count] [topic]
func (b *Bot) handleQuiz(ctx context.Context, chatID int64, args string) error {
	ref, rest := splitFirst(args)
	if ref == "" {
		return b.reply(chatID, "Usage: /quiz <number> [count] [topic]")
	}
	sub, ok := b.resolveSubject(ref)
	if !ok {
		return b.replyError(chatID, store.ErrNotFound)
	}

	count := b.cfg.QuizSize
	if first, tail := splitFirst(rest); first != "" {
		if n, err := strconv.Atoi(first); err == nil {
			if n < 1 || n > 20 {
				return b.reply(chatID, "A quiz can have between 1 and 20 questions.")
			}
			count = n
			rest = tail
		}
	}
	topic := rest
	if topic == "" {
		topic = sub.Name
	}

	// The notice is best effort, generation goes ahead without it
	if err := b.reply(chatID, fmt.Sprintf("🧠 Generating %d questions about %s...", count, topic)); err != nil {
		b.logger.Warn("Failed to send quiz notice", zap.Error(err))
	}
	questions, err := b.repo.GenerateQuiz(ctx, sub.ID, topic, sub.Difficulty, count)
	if err != nil {
		return b.replyError(chatID, err)
	}

	session, err := quiz.NewSession(questions, b.rnd)
	if err != nil {
		return b.replyError(chatID, err)
	}
	b.quiz = &activeQuiz{subject: sub, session: session, started: b.now()}
	return b.sendQuestion(chatID)
}

// sendQuestion shows the current question with one button per option
func (b *Bot) sendQuestion(chatID int64) error {
	s := b.quiz.session
	i, q := s.Current()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Question %d/%d\n\n%s\n", i+1, s.Len(), q.Text))
	var buttons [][]MenuButton
	for opt, text := range q.Options {
		sb.WriteString(fmt.Sprintf("\n%s) %s", optionLetters[opt%len(optionLetters)], text))
		buttons = append(buttons, []MenuButton{{
			Text:         optionLetters[opt%len(optionLetters)],
			CallbackData: fmt.Sprintf("%s%d:%d", prefixAnswer, i, opt),
		}})
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

// handleAnswer records an answer button press: answer:<question>:<option>
func (b *Bot) handleAnswer(ctx context.Context, chatID int64, data string) error {
	if b.quiz == nil {
		return b.reply(chatID, "This quiz is over. Start a new one with /quiz.")
	}
	qs, opts, ok := strings.Cut(data, ":")
	qi, err1 := strconv.Atoi(qs)
	opt, err2 := strconv.Atoi(opts)
	if !ok || err1 != nil || err2 != nil {
		return fmt.Errorf("invalid answer callback %q", data)
	}

	s := b.quiz.session
	// Buttons of earlier questions stay clickable in the chat
	if current, _ := s.Current(); qi != current || s.Finished() {
		return nil
	}

	correct, err := s.Answer(qi, opt)
	if err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	q, _ := s.Question(qi)
	feedback := "✅ Correct!"
	if !correct {
		feedback = fmt.Sprintf("❌ Incorrect. The answer is %s) %s", optionLetters[q.CorrectIndex%len(optionLetters)], q.Options[q.CorrectIndex])
	}
	if q.Explanation != "" {
		feedback += "\n\n" + q.Explanation
	}
	if err := b.reply(chatID, feedback); err != nil {
		return err
	}

	if s.Advance() {
		return b.sendQuestion(chatID)
	}
	return b.finishQuiz(ctx, chatID)
}

// finishQuiz submits the result and reports the score
func (b *Bot) finishQuiz(ctx context.Context, chatID int64) error {
	active := b.quiz
	b.quiz = nil

	active.session.Complete()
	result := active.session.Result(b.now().Sub(active.started))
	progress, err := b.repo.SubmitQuizResult(ctx, active.subject.ID, result)
	if err != nil {
		return b.replyError(chatID, err)
	}

	text := fmt.Sprintf("🏁 Quiz complete!\n\nScore: %d/%d (%d%%)\n🪙 +%d coins\n\n%s accuracy: %.0f%% after %d quizzes",
		result.Score, result.TotalQuestions, active.session.Percentage(), store.QuizReward(result),
		active.subject.Name, progress.Accuracy, progress.QuizzesCompleted)
	return b.reply(chatID, text)
}
