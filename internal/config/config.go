// Package config loads examprep settings from defaults, a YAML file, .env and
// the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite3"
	StoragePostgres = "postgres"
)

// Generator providers
const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all application settings
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Generator GeneratorConfig `yaml:"generator"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Reminders RemindersConfig `yaml:"reminders"`
	Logging   LoggingConfig   `yaml:"logging"`

	// IANA zone used for calendar days and notification hours
	Timezone string `yaml:"timezone"`
}

// StorageConfig selects where the snapshot lives
type StorageConfig struct {
	Driver string `yaml:"driver"` // file, memory, sqlite3, postgres
	Path   string `yaml:"path"`   // Snapshot file for the file driver
	DSN    string `yaml:"dsn"`    // Data source for the SQL drivers
	Key    string `yaml:"key"`    // Row key for the SQL drivers
}

// GeneratorConfig selects the content generation backend
type GeneratorConfig struct {
	Provider    string `yaml:"provider"` // mock, openai, gemini
	OpenAIKey   string `yaml:"openai_api_key"`
	OpenAIModel string `yaml:"openai_model"`
	GeminiKey   string `yaml:"gemini_api_key"`
	GeminiModel string `yaml:"gemini_model"`
	Timeout     string `yaml:"timeout"`
	// Fall back to templates when the provider fails
	Fallback bool `yaml:"fallback"`
}

type TelegramConfig struct {
	Token       string `yaml:"token"`
	OwnerChatID int64  `yaml:"owner_chat_id"`
	QuizSize    int    `yaml:"quiz_size"`
	HistoryDays int    `yaml:"history_days"`
	ReviewBatch int    `yaml:"review_batch"`
}

// RemindersConfig controls the hourly study reminder
type RemindersConfig struct {
	Enabled          bool `yaml:"enabled"`
	StartHour        int  `yaml:"start_hour"`
	EndHour          int  `yaml:"end_hour"`
	DailyGoalMinutes int  `yaml:"daily_goal_minutes"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: StorageFile,
			Path:   "data/examprep.json",
			DSN:    "data/examprep.db",
		},
		Generator: GeneratorConfig{
			Provider:    ProviderMock,
			OpenAIModel: "gpt-4o-mini",
			GeminiModel: "gemini-2.0-flash",
			Timeout:     "30s",
			Fallback:    true,
		},
		Telegram: TelegramConfig{
			QuizSize:    5,
			HistoryDays: 7,
			ReviewBatch: 10,
		},
		Reminders: RemindersConfig{
			Enabled:          true,
			StartHour:        8,
			EndHour:          22,
			DailyGoalMinutes: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Timezone: "UTC",
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// not an error. Variables from .env in the working directory are loaded
// without replacing ones already set, then the environment is applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("EXAMPREP_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("EXAMPREP_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("EXAMPREP_DATABASE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("EXAMPREP_GENERATOR"); v != "" {
		c.Generator.Provider = v
	}
	if v := os.Getenv("EXAMPREP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("EXAMPREP_TIMEZONE"); v != "" {
		c.Timezone = v
	}

	// API keys pick their provider unless one was chosen explicitly
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Generator.OpenAIKey = key
		if c.Generator.Provider == ProviderMock {
			c.Generator.Provider = ProviderOpenAI
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Generator.GeminiKey = key
		if c.Generator.Provider == ProviderMock {
			c.Generator.Provider = ProviderGemini
		}
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.Telegram.Token = token
	}
	if v := os.Getenv("EXAMPREP_OWNER_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid EXAMPREP_OWNER_CHAT_ID %q: %w", v, err)
		}
		c.Telegram.OwnerChatID = id
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"NOTIFICATION_START_HOUR", &c.Reminders.StartHour},
		{"NOTIFICATION_END_HOUR", &c.Reminders.EndHour},
		{"EXAMPREP_DAILY_GOAL_MINUTES", &c.Reminders.DailyGoalMinutes},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", e.name, v, err)
		}
		*e.dst = n
	}
	return nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageFile:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the file driver")
		}
	case StorageSQLite, StoragePostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the %s driver", c.Storage.Driver)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Generator.Provider {
	case ProviderMock:
	case ProviderOpenAI:
		if c.Generator.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai generator")
		}
	case ProviderGemini:
		if c.Generator.GeminiKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini generator")
		}
	default:
		return fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}

	r := c.Reminders
	if r.StartHour < 0 || r.StartHour > 23 || r.EndHour < 0 || r.EndHour > 23 {
		return fmt.Errorf("notification hours must be between 0 and 23, got %d-%d", r.StartHour, r.EndHour)
	}
	if r.StartHour > r.EndHour {
		return fmt.Errorf("notification start hour %d is after end hour %d", r.StartHour, r.EndHour)
	}
	if r.DailyGoalMinutes <= 0 {
		return errors.New("reminders.daily_goal_minutes must be positive")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Generator.Timeout); err != nil {
		return fmt.Errorf("invalid generator.timeout %q: %w", c.Generator.Timeout, err)
	}
	return nil
}

// Location returns the configured time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GeneratorTimeout returns the per-request generation timeout
func (c *Config) GeneratorTimeout() time.Duration {
	d, err := time.ParseDuration(c.Generator.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
