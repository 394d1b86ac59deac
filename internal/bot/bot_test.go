package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/examprep/internal/ai"
	"github.com/example/examprep/internal/database"
	"github.com/example/examprep/internal/scheduler"
	"github.com/example/examprep/internal/store"
)

const ownerChat int64 = 42

type sentMessage struct {
	chatID  int64
	text    string
	buttons []string // Callback data of the inline keyboard, row by row
}

type fakeSender struct {
	mu        sync.Mutex
	messages  []sentMessage
	callbacks int
	failOn    string // Messages containing this text fail to send
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		if f.failOn != "" && strings.Contains(m.Text, f.failOn) {
			return tgbotapi.Message{}, errors.New("telegram: bad gateway")
		}
		sent := sentMessage{chatID: m.ChatID, text: m.Text}
		if kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
			for _, row := range kb.InlineKeyboard {
				for _, btn := range row {
					sent.buttons = append(sent.buttons, *btn.CallbackData)
				}
			}
		}
		f.messages = append(f.messages, sent)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := c.(tgbotapi.CallbackConfig); ok {
		f.callbacks++
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.messages, "no messages were sent")
	return f.messages[len(f.messages)-1]
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testBot struct {
	t      *testing.T
	bot    *Bot
	sender *fakeSender
	store  *store.Store
	clock  *testClock
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	clock := &testClock{t: time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)}
	st := store.New(database.NewMemorySlot(), ai.NewMockWithSource(rand.NewSource(1)), store.WithClock(clock.Now))
	require.NoError(t, st.Open(context.Background()))

	sender := &fakeSender{}
	b := New(sender, st, Config{OwnerChatID: ownerChat}, nil)
	b.rnd = rand.New(rand.NewSource(7))
	b.now = clock.Now
	return &testBot{t: t, bot: b, sender: sender, store: st, clock: clock}
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func (tb *testBot) command(text string) sentMessage {
	tb.bot.handleUpdate(context.Background(), commandUpdate(ownerChat, text))
	return tb.sender.last(tb.t)
}

func (tb *testBot) press(data string) {
	tb.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: ownerChat}},
		Data:    data,
	}})
}

func (tb *testBot) loginWithSubject(t *testing.T) {
	t.Helper()
	tb.command("/login " + store.DemoEmail + " " + store.DemoPassword)
	tb.command("/addsubject Biology | Science | hard")
	require.Len(t, tb.store.GetSubjects(), 1)
}

func TestHandleUpdateIgnoresOtherChats(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.handleUpdate(context.Background(), commandUpdate(7, "/login "+store.DemoEmail+" "+store.DemoPassword))

	msg := tb.sender.last(t)
	assert.Equal(t, int64(7), msg.chatID)
	assert.Equal(t, "This bot is private.", msg.text)
	assert.Nil(t, tb.store.CurrentUser())
}

func TestStartShowsMenu(t *testing.T) {
	tb := newTestBot(t)

	msg := tb.command("/start")
	assert.Contains(t, msg.text, "/quiz")
	assert.Equal(t, []string{callbackSubjects, callbackStats, callbackReview, callbackStore}, msg.buttons)
}

func TestLoginAndSubjects(t *testing.T) {
	tb := newTestBot(t)

	msg := tb.command("/login " + store.DemoEmail + " wrong")
	assert.Contains(t, msg.text, "Invalid email or password")

	msg = tb.command("/login " + store.DemoEmail + " " + store.DemoPassword)
	assert.Contains(t, msg.text, "Welcome back, Demo User! You have 500 coins.")

	msg = tb.command("/addsubject Biology | Science | hard")
	assert.Contains(t, msg.text, `"Biology" added`)

	msg = tb.command("/subjects")
	assert.Contains(t, msg.text, "1. Biology (Science, hard) - 0 questions")

	msg = tb.command("/delsubject biology")
	assert.Contains(t, msg.text, "deleted")
	assert.Empty(t, tb.store.GetSubjects())
}

func TestCommandsRequireLogin(t *testing.T) {
	tb := newTestBot(t)

	for _, cmd := range []string{"/stats", "/subjects", "/history", "/store", "/coins", "/review"} {
		msg := tb.command(cmd)
		assert.Contains(t, msg.text, "Please /login", cmd)
	}
}

func TestRegister(t *testing.T) {
	tb := newTestBot(t)

	msg := tb.command("/register ada@example.com secret Ada Lovelace")
	assert.Contains(t, msg.text, "Welcome, Ada Lovelace")
	assert.Equal(t, 100, tb.store.CurrentUser().Coins)

	msg = tb.command("/register ada@example.com")
	assert.Contains(t, msg.text, "Usage: /register")
}

func TestQuizFlow(t *testing.T) {
	tb := newTestBot(t)
	tb.loginWithSubject(t)

	msg := tb.command("/quiz 1 3 Cells")
	assert.Contains(t, msg.text, "Question 1/3")
	require.NotNil(t, tb.bot.quiz)
	assert.Len(t, msg.buttons, 4)

	for i := 0; i < 3; i++ {
		current, q := tb.bot.quiz.session.Current()
		require.Equal(t, i, current)
		if i == 1 {
			// A stale button from the first question is ignored
			before := tb.sender.count()
			tb.press("answer:0:0")
			assert.Equal(t, before, tb.sender.count())
		}
		tb.clock.Advance(10 * time.Second)
		tb.press(fmt.Sprintf("answer:%d:%d", i, q.CorrectIndex))
	}

	assert.Nil(t, tb.bot.quiz)
	msg = tb.sender.last(t)
	assert.Contains(t, msg.text, "Score: 3/3 (100%)")
	assert.Contains(t, msg.text, "+50 coins")
	assert.Equal(t, 550, tb.store.CurrentUser().Coins)

	progress := tb.store.GetProgress()
	require.Len(t, progress, 1)
	assert.Equal(t, 1, progress[0].QuizzesCompleted)
	assert.Equal(t, 100.0, progress[0].Accuracy)
	assert.Equal(t, 4, tb.sender.callbacks)
}

func TestQuizStartsWhenNoticeFails(t *testing.T) {
	tb := newTestBot(t)
	tb.loginWithSubject(t)
	tb.sender.failOn = "Generating"

	msg := tb.command("/quiz 1 2")
	require.NotNil(t, tb.bot.quiz)
	assert.Contains(t, msg.text, "Question 1/2")
	assert.Len(t, msg.buttons, 4)
}

func TestQuizWrongAnswerShowsCorrectOption(t *testing.T) {
	tb := newTestBot(t)
	tb.loginWithSubject(t)
	tb.command("/quiz 1 1")

	_, q := tb.bot.quiz.session.Current()
	wrong := (q.CorrectIndex + 1) % len(q.Options)
	tb.press(fmt.Sprintf("answer:0:%d", wrong))

	tb.sender.mu.Lock()
	feedback := tb.sender.messages[len(tb.sender.messages)-2].text
	tb.sender.mu.Unlock()
	assert.Contains(t, feedback, "Incorrect. The answer is "+optionLetters[q.CorrectIndex])
	assert.Contains(t, tb.sender.last(t).text, "Score: 0/1 (0%)")
}

func TestReviewFlow(t *testing.T) {
	tb := newTestBot(t)
	tb.loginWithSubject(t)

	msg := tb.command("/flashcard 1 Mitochondria | Powerhouse of the cell")
	assert.Contains(t, msg.text, "Flashcard added to Biology: Mitochondria")
	cards := tb.store.GetFlashcards("")
	require.Len(t, cards, 1)
	id := cards[0].ID

	msg = tb.command("/review")
	assert.Contains(t, msg.text, "Mitochondria")
	assert.NotContains(t, msg.text, "Powerhouse")
	assert.Equal(t, []string{"reveal:" + id}, msg.buttons)

	tb.press("reveal:" + id)
	msg = tb.sender.last(t)
	assert.Contains(t, msg.text, "Powerhouse of the cell")
	assert.Equal(t, []string{"rate:" + id + ":1", "rate:" + id + ":3", "rate:" + id + ":4", "rate:" + id + ":5"}, msg.buttons)

	tb.press("rate:" + id + ":4")
	cards = tb.store.GetFlashcards("")
	require.NotNil(t, cards[0].Review)
	assert.Equal(t, 1, cards[0].Review.Repetitions)
}

func TestStoreAndPurchase(t *testing.T) {
	tb := newTestBot(t)
	tb.command("/login " + store.DemoEmail + " " + store.DemoPassword)

	msg := tb.command("/store")
	assert.Contains(t, msg.text, "you have 500 coins")
	assert.Equal(t, []string{"buy:1", "buy:2", "buy:3"}, msg.buttons)

	tb.press("buy:2")
	assert.Contains(t, tb.sender.last(t).text, "You have 250 coins left")

	msg = tb.command("/buy 2")
	assert.Contains(t, msg.text, "You have 0 coins left")

	msg = tb.command("/buy 1")
	assert.Contains(t, msg.text, "Not enough coins")

	msg = tb.command("/buy 99")
	assert.Contains(t, msg.text, "No such store item")
}

func TestStudyTimer(t *testing.T) {
	tb := newTestBot(t)
	tb.loginWithSubject(t)

	msg := tb.command("/study 1")
	assert.Contains(t, msg.text, "Study timer started for 25:00")

	msg = tb.command("/study 1")
	assert.Contains(t, msg.text, "already running")

	msg = tb.command("/pause")
	assert.Contains(t, msg.text, "paused")
	msg = tb.command("/timer")
	assert.Contains(t, msg.text, "pomodoro paused (focus)")
	msg = tb.command("/resume")
	assert.Contains(t, msg.text, "resumed")

	tb.clock.Advance(30 * time.Minute)
	tb.command("/stop")

	tb.sender.mu.Lock()
	texts := make([]string, 0, len(tb.sender.messages))
	for _, m := range tb.sender.messages {
		texts = append(texts, m.text)
	}
	tb.sender.mu.Unlock()
	assert.Contains(t, texts, "📘 You studied for 30 minutes and earned 15 coins!")
	assert.Equal(t, "⏹ Timer stopped.", texts[len(texts)-1])
	assert.Equal(t, 515, tb.store.CurrentUser().Coins)

	msg = tb.command("/stop")
	assert.Contains(t, msg.text, "No timer is running")
}

func TestHistoryAndStats(t *testing.T) {
	tb := newTestBot(t)
	tb.loginWithSubject(t)

	msg := tb.command("/history 3")
	assert.Contains(t, msg.text, "last 3 days")
	assert.Contains(t, msg.text, "2024-05-10")
	assert.Contains(t, msg.text, "2024-05-08")

	msg = tb.command("/history 500")
	assert.Contains(t, msg.text, "Usage: /history")

	msg = tb.command("/stats")
	assert.Contains(t, msg.text, "Quizzes completed: 0")
	assert.Contains(t, msg.text, "Coins: 500")
}

func TestPlainTextAsksTutor(t *testing.T) {
	tb := newTestBot(t)
	tb.command("/login " + store.DemoEmail + " " + store.DemoPassword)

	tb.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: ownerChat},
		Text: "What is osmosis?",
	}})

	msg := tb.sender.last(t)
	assert.True(t, strings.HasPrefix(msg.text, "🤖 "))
	assert.Contains(t, msg.text, "What is osmosis?")
	assert.Len(t, tb.store.GetChatHistory(), 1)
}

func TestSendReminder(t *testing.T) {
	tb := newTestBot(t)

	require.NoError(t, tb.bot.SendReminder(context.Background(), scheduler.Reminder{RemainingMinutes: 20, DueFlashcards: 3}))

	msg := tb.sender.last(t)
	assert.Equal(t, ownerChat, msg.chatID)
	assert.Contains(t, msg.text, "20 minutes left")
	assert.Contains(t, msg.text, "3 flashcards are due")
}

func TestUnknownCommand(t *testing.T) {
	tb := newTestBot(t)

	msg := tb.command("/dance")
	assert.Contains(t, msg.text, "Unknown command")
}
