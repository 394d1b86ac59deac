package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/examprep/internal/store"
	"github.com/example/examprep/internal/timer"
	"github.com/example/examprep/pkg/models"
)

// Constants for callback data
const (
	callbackSubjects = "subjects"
	callbackStats    = "stats"
	callbackReview   = "review"
	callbackStore    = "store"

	prefixAnswer = "answer:"
	prefixReveal = "reveal:"
	prefixRate   = "rate:"
	prefixBuy    = "buy:"
)

const helpText = `📚 Exam prep bot

Account
/login <email> <password> - log in
/register <email> <password> <name> - create an account
/logout - log out
/coins - show your balance

Subjects
/subjects - list your subjects
/addsubject <name> | <category> | <easy|medium|hard>
/delsubject <number>

Study
/quiz <number> [count] [topic] - take a generated quiz
/flashcard <number> <front> | <back> - add a flashcard
/review - review due flashcards
/cheatsheet <number> <topic> - generate a study guide
/study <number> [pomodoro|custom <minutes>|stopwatch] - start the timer
/pause, /resume, /stop, /timer - control the timer

Progress
/history [days] - study minutes per day
/stats - overall statistics

Store
/store - browse cosmetics
/buy <id> - buy an item

/ask <question> - ask the tutor`

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	var err error
	switch message.Command() {
	case "start", "help":
		err = b.handleHelp(chatID)
	case "login":
		err = b.handleLogin(ctx, chatID, args)
	case "register":
		err = b.handleRegister(ctx, chatID, args)
	case "logout":
		err = b.handleLogout(ctx, chatID)
	case "coins":
		err = b.handleCoins(chatID)
	case "subjects":
		err = b.handleListSubjects(chatID)
	case "addsubject":
		err = b.handleAddSubject(ctx, chatID, args)
	case "delsubject":
		err = b.handleDeleteSubject(ctx, chatID, args)
	case "quiz":
		err = b.handleQuiz(ctx, chatID, args)
	case "flashcard":
		err = b.handleAddFlashcard(ctx, chatID, args)
	case "review":
		err = b.handleReview(chatID)
	case "cheatsheet":
		err = b.handleCheatSheet(ctx, chatID, args)
	case "study":
		err = b.handleStudy(ctx, chatID, args)
	case "pause":
		err = b.handleTimerControl(chatID, b.timer.Pause, "⏸ Timer paused.")
	case "resume":
		err = b.handleTimerControl(chatID, b.timer.Resume, "▶️ Timer resumed.")
	case "stop":
		err = b.handleStop(ctx, chatID)
	case "timer":
		err = b.handleTimerStatus(chatID)
	case "history":
		err = b.handleHistory(chatID, args)
	case "stats":
		err = b.handleStats(chatID)
	case "store":
		err = b.handleStore(chatID)
	case "buy":
		err = b.handleBuy(ctx, chatID, args)
	case "ask":
		err = b.handleAsk(ctx, chatID, args)
	default:
		err = b.handleUnknownCommand(chatID)
	}
	return err
}

// handleText treats plain messages as questions for the tutor
func (b *Bot) handleText(ctx context.Context, message *tgbotapi.Message) error {
	if b.quiz != nil {
		return b.reply(message.Chat.ID, "Answer the current question with the buttons above.")
	}
	return b.handleAsk(ctx, message.Chat.ID, message.Text)
}

func (b *Bot) handleHelp(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, helpText)
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleUnknownCommand(chatID int64) error {
	return b.reply(chatID, "Unknown command. Use /help to see what I can do.")
}

// replyError turns store errors into something the user can act on
func (b *Bot) replyError(chatID int64, err error) error {
	var text string
	switch {
	case errors.Is(err, store.ErrAuthenticationRequired):
		text = "🔒 Please /login or /register first."
	case errors.Is(err, store.ErrInvalidCredentials):
		text = "❌ Invalid email or password."
	case errors.Is(err, store.ErrInsufficientFunds):
		text = "💸 Not enough coins for that item."
	case errors.Is(err, store.ErrItemNotFound):
		text = "❌ No such store item."
	case errors.Is(err, store.ErrNotFound):
		text = "❌ Subject not found. Use /subjects to see your list."
	case errors.Is(err, store.ErrValidation):
		text = "⚠️ " + err.Error()
	case errors.Is(err, store.ErrGeneration):
		text = "⚠️ The content generator returned something unusable. Please try again."
	default:
		b.logger.Error("Request failed", zap.Error(err))
		text = "❌ Something went wrong. Please try again later."
	}
	return b.reply(chatID, text)
}

func (b *Bot) handleLogin(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return b.reply(chatID, "Usage: /login <email> <password>")
	}
	user, err := b.repo.Authenticate(ctx, fields[0], fields[1])
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, fmt.Sprintf("👋 Welcome back, %s! You have %d coins.", user.Name, user.Coins))
}

func (b *Bot) handleRegister(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return b.reply(chatID, "Usage: /register <email> <password> <name>")
	}
	user, err := b.repo.Register(ctx, fields[0], fields[1], strings.Join(fields[2:], " "))
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, fmt.Sprintf("🎉 Account created! Welcome, %s. Here are %d starting coins.", user.Name, user.Coins))
}

func (b *Bot) handleLogout(ctx context.Context, chatID int64) error {
	if err := b.timer.Stop(ctx); err != nil {
		b.logger.Warn("Failed to stop timer on logout", zap.Error(err))
	}
	b.quiz = nil
	if err := b.repo.Logout(ctx); err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, "👋 Logged out.")
}

func (b *Bot) handleCoins(chatID int64) error {
	user := b.repo.CurrentUser()
	if user == nil {
		return b.replyError(chatID, store.ErrAuthenticationRequired)
	}
	return b.reply(chatID, fmt.Sprintf("🪙 You have %d coins.", user.Coins))
}

// resolveSubject finds a subject by list number, id or name
func (b *Bot) resolveSubject(arg string) (models.Subject, bool) {
	subjects := b.repo.GetSubjects()
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(subjects) {
		return subjects[n-1], true
	}
	for _, s := range subjects {
		if s.ID == arg || strings.EqualFold(s.Name, arg) {
			return s, true
		}
	}
	return models.Subject{}, false
}

// splitFirst splits off the first whitespace separated word
func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func (b *Bot) handleListSubjects(chatID int64) error {
	if b.repo.CurrentUser() == nil {
		return b.replyError(chatID, store.ErrAuthenticationRequired)
	}
	subjects := b.repo.GetSubjects()
	if len(subjects) == 0 {
		return b.reply(chatID, "You have no subjects yet. Add one with /addsubject <name> | <category> | <difficulty>")
	}

	accuracy := make(map[string]float64)
	for _, p := range b.repo.GetProgress() {
		accuracy[p.SubjectID] = p.Accuracy
	}

	var sb strings.Builder
	sb.WriteString("📚 Your subjects\n\n")
	for i, s := range subjects {
		sb.WriteString(fmt.Sprintf("%d. %s (%s, %s) - %d questions", i+1, s.Name, s.Category, s.Difficulty, s.QuestionsCount))
		if acc, ok := accuracy[s.ID]; ok {
			grade := store.GradePerformance(acc)
			sb.WriteString(fmt.Sprintf(", %.0f%% %s", acc, grade.Badge))
		}
		sb.WriteString("\n")
	}
	return b.reply(chatID, sb.String())
}

func (b *Bot) handleAddSubject(ctx context.Context, chatID int64, args string) error {
	parts := strings.Split(args, "|")
	if strings.TrimSpace(parts[0]) == "" {
		return b.reply(chatID, "Usage: /addsubject <name> | <category> | <easy|medium|hard>")
	}
	in := models.SubjectInput{Name: strings.TrimSpace(parts[0])}
	if len(parts) > 1 {
		in.Category = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		d, err := models.ParseDifficulty(parts[2])
		if err != nil {
			return b.reply(chatID, "Difficulty must be easy, medium or hard.")
		}
		in.Difficulty = d
	}

	sub, err := b.repo.AddSubject(ctx, in)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, fmt.Sprintf("✅ Subject %q added.", sub.Name))
}

func (b *Bot) handleDeleteSubject(ctx context.Context, chatID int64, args string) error {
	sub, ok := b.resolveSubject(args)
	if !ok {
		return b.replyError(chatID, store.ErrNotFound)
	}
	deleted, err := b.repo.DeleteSubject(ctx, sub.ID)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if !deleted {
		return b.replyError(chatID, store.ErrNotFound)
	}
	return b.reply(chatID, fmt.Sprintf("🗑 Subject %q and its questions, flashcards and cheat sheets were deleted.", sub.Name))
}

func (b *Bot) handleAddFlashcard(ctx context.Context, chatID int64, args string) error {
	ref, rest := splitFirst(args)
	sub, ok := b.resolveSubject(ref)
	if !ok {
		return b.replyError(chatID, store.ErrNotFound)
	}
	front, back, found := strings.Cut(rest, "|")
	if !found {
		return b.reply(chatID, "Usage: /flashcard <number> <front> | <back>")
	}
	card, err := b.repo.AddFlashcard(ctx, models.FlashcardInput{SubjectID: sub.ID, Front: front, Back: back})
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, fmt.Sprintf("🃏 Flashcard added to %s: %s", sub.Name, card.Front))
}

// handleReview shows the front of the most urgent due flashcard
func (b *Bot) handleReview(chatID int64) error {
	if b.repo.CurrentUser() == nil {
		return b.replyError(chatID, store.ErrAuthenticationRequired)
	}
	due := b.repo.DueFlashcards("", b.cfg.ReviewBatch)
	if len(due) == 0 {
		return b.reply(chatID, "🎉 No flashcards are due. Come back later!")
	}
	card := due[0]

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🃏 %s\n\n%d cards due.", card.Front, len(due)))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{
		{Text: "Show answer", CallbackData: prefixReveal + card.ID},
	}})
	return b.sendMessage(msg)
}

// handleReveal shows the back of a card with the rating buttons
func (b *Bot) handleReveal(chatID int64, id string) error {
	var card *models.Flashcard
	for _, c := range b.repo.DueFlashcards("", 0) {
		if c.ID == id {
			card = &c
			break
		}
	}
	if card == nil {
		return b.reply(chatID, "That flashcard is no longer due.")
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🃏 %s\n\n%s\n\nHow well did you remember?", card.Front, card.Back))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{
		{Text: "Again", CallbackData: fmt.Sprintf("%s%s:%d", prefixRate, card.ID, 1)},
		{Text: "Hard", CallbackData: fmt.Sprintf("%s%s:%d", prefixRate, card.ID, 3)},
		{Text: "Good", CallbackData: fmt.Sprintf("%s%s:%d", prefixRate, card.ID, 4)},
		{Text: "Easy", CallbackData: fmt.Sprintf("%s%s:%d", prefixRate, card.ID, 5)},
	}})
	return b.sendMessage(msg)
}

func (b *Bot) handleRate(ctx context.Context, chatID int64, data string) error {
	id, q, ok := strings.Cut(data, ":")
	quality, err := strconv.Atoi(q)
	if !ok || err != nil {
		return fmt.Errorf("invalid rating callback %q", data)
	}
	card, err := b.repo.ReviewFlashcard(ctx, id, quality)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if card == nil {
		return b.reply(chatID, "That flashcard no longer exists.")
	}
	next := "soon"
	if card.Review != nil && card.Review.NextReviewDate != nil {
		next = card.Review.NextReviewDate.Format("Jan 2")
	}
	if err := b.reply(chatID, fmt.Sprintf("Next review of %q: %s", card.Front, next)); err != nil {
		return err
	}
	return b.handleReview(chatID)
}

func (b *Bot) handleCheatSheet(ctx context.Context, chatID int64, args string) error {
	ref, topic := splitFirst(args)
	sub, ok := b.resolveSubject(ref)
	if !ok {
		return b.replyError(chatID, store.ErrNotFound)
	}
	if topic == "" {
		topic = sub.Name
	}
	sheet, err := b.repo.GenerateCheatSheet(ctx, sub.ID, topic)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, sheet.Title+"\n\n"+sheet.Content)
}

func (b *Bot) handleAsk(ctx context.Context, chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return b.reply(chatID, "Usage: /ask <question>")
	}
	reply, err := b.repo.SendChatMessage(ctx, text)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, "🤖 "+reply)
}

func (b *Bot) handleStudy(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return b.startTimer(ctx, chatID)
	}

	sub, ok := b.resolveSubject(fields[0])
	if !ok {
		return b.replyError(chatID, store.ErrNotFound)
	}
	mode := timer.ModePomodoro
	var duration time.Duration
	if len(fields) > 1 {
		m, err := timer.ParseMode(fields[1])
		if err != nil {
			return b.reply(chatID, "Mode must be pomodoro, custom or stopwatch.")
		}
		mode = m
	}
	if mode == timer.ModeCustom {
		duration = timer.CustomPresets[1]
		if len(fields) > 2 {
			minutes, err := strconv.Atoi(fields[2])
			if err != nil || minutes <= 0 {
				return b.reply(chatID, "Custom duration must be a positive number of minutes.")
			}
			duration = time.Duration(minutes) * time.Minute
		}
	}

	if err := b.timer.SetMode(mode, duration); err != nil {
		return b.reply(chatID, "⏱ A timer is already running. Use /stop first.")
	}
	if err := b.timer.SetSubject(sub.ID); err != nil {
		return b.reply(chatID, "⏱ A timer is already running. Use /stop first.")
	}
	return b.startTimer(ctx, chatID)
}

func (b *Bot) startTimer(ctx context.Context, chatID int64) error {
	if err := b.timer.Start(ctx); err != nil {
		switch {
		case errors.Is(err, timer.ErrRunning):
			return b.reply(chatID, "⏱ A timer is already running. Use /stop first.")
		case errors.Is(err, timer.ErrSubjectRequired):
			return b.reply(chatID, "Please choose a subject: /study <number>")
		}
		return b.replyError(chatID, err)
	}
	st := b.timer.Status()
	label := "study"
	if st.Phase != timer.PhaseFocus {
		label = "break"
	}
	if st.Mode == timer.ModeStopwatch {
		return b.reply(chatID, "⏱ Stopwatch started. Use /stop when you are done.")
	}
	return b.reply(chatID, fmt.Sprintf("⏱ %s timer started for %s.", strings.ToUpper(label[:1])+label[1:], timer.FormatDuration(st.Remaining)))
}

func (b *Bot) handleTimerControl(chatID int64, action func() error, done string) error {
	if err := action(); err != nil {
		return b.reply(chatID, "⏱ "+err.Error())
	}
	return b.reply(chatID, done)
}

func (b *Bot) handleStop(ctx context.Context, chatID int64) error {
	if b.timer.Status().State == timer.StateIdle {
		return b.reply(chatID, "⏱ No timer is running.")
	}
	if err := b.timer.Stop(ctx); err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, "⏹ Timer stopped.")
}

func (b *Bot) handleTimerStatus(chatID int64) error {
	st := b.timer.Status()
	if st.Mode == timer.ModeStopwatch {
		return b.reply(chatID, fmt.Sprintf("⏱ Stopwatch %s: %s elapsed", st.State, timer.FormatDuration(st.Elapsed)))
	}
	return b.reply(chatID, fmt.Sprintf("⏱ %s %s (%s): %s left, %d pomodoros done",
		st.Mode, st.State, st.Phase, timer.FormatDuration(st.Remaining), st.Pomodoros))
}

func (b *Bot) handleHistory(chatID int64, args string) error {
	if b.repo.CurrentUser() == nil {
		return b.replyError(chatID, store.ErrAuthenticationRequired)
	}
	days := b.cfg.HistoryDays
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 || n > 90 {
			return b.reply(chatID, "Usage: /history [days], with days between 1 and 90")
		}
		days = n
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Study time, last %d days\n\n", days))
	for _, d := range b.repo.GetStudyHistory(days) {
		sb.WriteString(fmt.Sprintf("%s  %3d min %s\n", d.Date, d.Minutes, strings.Repeat("▇", d.Minutes/10)))
	}
	return b.reply(chatID, sb.String())
}

func (b *Bot) handleStats(chatID int64) error {
	user := b.repo.CurrentUser()
	if user == nil {
		return b.replyError(chatID, store.ErrAuthenticationRequired)
	}
	stats := b.repo.OverallStats(30)
	grade := store.GradePerformance(float64(stats.AverageAccuracy))

	text := fmt.Sprintf("📊 Statistics for %s\n\n"+
		"Quizzes completed: %d\n"+
		"Average accuracy: %d%% (%s, %s)\n"+
		"Study time (30 days): %d min\n"+
		"Study streak: %d days\n"+
		"Coins: %d",
		user.Name, stats.TotalQuizzes, stats.AverageAccuracy, grade.Level, grade.Badge,
		stats.TotalStudyMinutes, stats.StudyStreak, user.Coins)
	return b.reply(chatID, text)
}

func (b *Bot) handleStore(chatID int64) error {
	user := b.repo.CurrentUser()
	if user == nil {
		return b.replyError(chatID, store.ErrAuthenticationRequired)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 Store (you have %d coins)\n\n", user.Coins))
	var buttons [][]MenuButton
	for _, item := range b.repo.GetStoreItems() {
		owned := ""
		if b.repo.OwnsItem(item.ID) {
			owned = " ✅ equipped"
		}
		sb.WriteString(fmt.Sprintf("%s. %s (%s) - %d coins%s\n   %s\n", item.ID, item.Name, item.Type, item.Price, owned, item.Description))
		buttons = append(buttons, []MenuButton{{
			Text:         fmt.Sprintf("Buy %s", item.Name),
			CallbackData: prefixBuy + item.ID,
		}})
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	if len(buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	return b.sendMessage(msg)
}

func (b *Bot) handleBuy(ctx context.Context, chatID int64, id string) error {
	if id == "" {
		return b.reply(chatID, "Usage: /buy <id>")
	}
	user, err := b.repo.PurchaseStoreItem(ctx, id)
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.reply(chatID, fmt.Sprintf("🎉 Purchase successful! You have %d coins left.", user.Coins))
}

// HandleCallback handles presses on inline buttons
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always send an answer to the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}

	chatID := callback.Message.Chat.ID
	switch data := callback.Data; {
	case data == callbackSubjects:
		return b.handleListSubjects(chatID)
	case data == callbackStats:
		return b.handleStats(chatID)
	case data == callbackReview:
		return b.handleReview(chatID)
	case data == callbackStore:
		return b.handleStore(chatID)
	case strings.HasPrefix(data, prefixAnswer):
		return b.handleAnswer(ctx, chatID, strings.TrimPrefix(data, prefixAnswer))
	case strings.HasPrefix(data, prefixReveal):
		return b.handleReveal(chatID, strings.TrimPrefix(data, prefixReveal))
	case strings.HasPrefix(data, prefixRate):
		return b.handleRate(ctx, chatID, strings.TrimPrefix(data, prefixRate))
	case strings.HasPrefix(data, prefixBuy):
		return b.handleBuy(ctx, chatID, strings.TrimPrefix(data, prefixBuy))
	default:
		return b.reply(chatID, "⚠️ Unknown action")
	}
}
