package bot

// Config represents the configuration for the bot
type Config struct {
	Token string
	// Only this chat is served; it also receives reminders and timer events
	OwnerChatID int64
	// Default number of questions in a generated quiz
	QuizSize int
	// Days shown by /history
	HistoryDays int
	// Flashcards shown per /review round
	ReviewBatch int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() Config {
	return Config{
		QuizSize:    5,
		HistoryDays: 7,
		ReviewBatch: 10,
	}
}
