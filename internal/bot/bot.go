// Package bot is the Telegram front-end over the store.
package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/examprep/internal/quiz"
	"github.com/example/examprep/internal/scheduler"
	"github.com/example/examprep/internal/timer"
	"github.com/example/examprep/pkg/models"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// repository is the part of the store the bot talks to
type repository interface {
	timer.Tracker

	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser() *models.User

	AddSubject(ctx context.Context, in models.SubjectInput) (*models.Subject, error)
	GetSubjects() []models.Subject
	DeleteSubject(ctx context.Context, id string) (bool, error)

	GenerateQuiz(ctx context.Context, subjectID, topic string, difficulty models.Difficulty, count int) ([]models.Question, error)
	SubmitQuizResult(ctx context.Context, subjectID string, result models.QuizResult) (*models.Progress, error)

	AddFlashcard(ctx context.Context, in models.FlashcardInput) (*models.Flashcard, error)
	DueFlashcards(subjectID string, limit int) []models.Flashcard
	ReviewFlashcard(ctx context.Context, id string, quality int) (*models.Flashcard, error)

	GenerateCheatSheet(ctx context.Context, subjectID, topic string) (*models.CheatSheet, error)

	GetProgress() []models.Progress
	OverallStats(days int) models.OverallStats
	GetStudyHistory(days int) []models.DailyMinutes

	GetStoreItems() []models.StoreItem
	PurchaseStoreItem(ctx context.Context, id string) (*models.User, error)
	OwnsItem(id string) bool

	SendChatMessage(ctx context.Context, text string) (string, error)
}

// sender is the part of the Telegram API the bot uses. *tgbotapi.BotAPI satisfies it.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// activeQuiz is the quiz the owner is currently taking
type activeQuiz struct {
	subject models.Subject
	session *quiz.Session
	started time.Time
}

// Bot represents the Telegram bot application
type Bot struct {
	api    sender
	repo   repository
	cfg    Config
	logger *zap.Logger
	timer  *timer.Timer
	rnd    *rand.Rand
	now    func() time.Time

	// Only touched from the update loop
	quiz *activeQuiz
}

// New creates a new bot instance. api may be nil until Start connects.
func New(api sender, repo repository, cfg Config, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QuizSize <= 0 {
		cfg.QuizSize = DefaultConfig().QuizSize
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = DefaultConfig().HistoryDays
	}
	if cfg.ReviewBatch <= 0 {
		cfg.ReviewBatch = DefaultConfig().ReviewBatch
	}

	b := &Bot{
		api:    api,
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
	b.timer = timer.New(repo, timer.WithLogger(logger), timer.OnEvent(b.onTimerEvent))
	return b
}

// Connect logs in to Telegram with the configured token
func Connect(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is not set")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	return api, nil
}

// Start connects to Telegram and serves updates until ctx is done
func (b *Bot) Start(ctx context.Context) error {
	api, err := Connect(b.cfg.Token)
	if err != nil {
		return err
	}
	b.api = api
	b.logger.Info("Authorized on account", zap.String("username", api.Self.UserName))

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.timer.Run(ctx)
	})
	g.Go(func() error {
		err := b.Serve(ctx, updates)
		api.StopReceivingUpdates()
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	b.logger.Info("Bot stopped")
	return nil
}

// Serve handles updates one at a time until ctx is done or updates closes
func (b *Bot) Serve(ctx context.Context, updates <-chan tgbotapi.Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(ctx context.Context, r scheduler.Reminder) error {
	text := fmt.Sprintf("⏰ You have %d minutes left to reach today's study goal.", r.RemainingMinutes)
	if r.DueFlashcards > 0 {
		text += fmt.Sprintf("\n🃏 %d flashcards are due for review. Use /review.", r.DueFlashcards)
	}
	return b.sendMessage(tgbotapi.NewMessage(b.cfg.OwnerChatID, text))
}

// isOwner checks if a chat is the one the bot serves
func (b *Bot) isOwner(chatID int64) bool {
	return b.cfg.OwnerChatID != 0 && chatID == b.cfg.OwnerChatID
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	chat := update.FromChat()
	if chat == nil {
		return
	}
	if !b.isOwner(chat.ID) {
		b.logger.Warn("Ignoring update from unknown chat", zap.Int64("chat_id", chat.ID))
		if update.Message != nil {
			b.sendMessage(tgbotapi.NewMessage(chat.ID, "This bot is private."))
		}
		return
	}

	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.handleText(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.logger.Error("Failed to handle update", zap.Int("update_id", update.UpdateID), zap.Error(err))
	}
}

// onTimerEvent reports timer progress to the owner. It runs on the timer goroutine.
func (b *Bot) onTimerEvent(ev timer.Event) {
	var text string
	switch ev.Kind {
	case timer.EventPomodoroComplete:
		kind := "short"
		if ev.Phase == timer.PhaseLongBreak {
			kind = "long"
		}
		text = fmt.Sprintf("🍅 Pomodoro complete! +%d coins. Time for a %s break. Send /study to start it.", ev.Coins, kind)
	case timer.EventBreakComplete:
		text = "☕ Break complete! Ready for your next study session? Send /study."
	case timer.EventComplete:
		text = "✅ Timer complete! Great study session."
	case timer.EventSessionClosed:
		text = fmt.Sprintf("📘 You studied for %d minutes and earned %d coins!", ev.Session.DurationMinutes, ev.Coins)
	default:
		return
	}
	b.sendMessage(tgbotapi.NewMessage(b.cfg.OwnerChatID, text))
}

// sendMessage sends a message and logs failures
func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if b.api == nil {
		return errors.New("bot is not connected")
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
		return err
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "📚 Subjects", CallbackData: callbackSubjects},
			{Text: "📊 Statistics", CallbackData: callbackStats},
		},
		{
			{Text: "🃏 Review", CallbackData: callbackReview},
			{Text: "🛒 Store", CallbackData: callbackStore},
		},
	}
}
