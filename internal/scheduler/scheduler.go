package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/examprep/pkg/models"
)

// Defaults for the reminder window and the daily goal
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
	DefaultDailyGoalMinutes      = 60
)

// Reminder describes what is left to do today
type Reminder struct {
	RemainingMinutes int
	DueFlashcards    int
}

// Notifier delivers reminders to the user
type Notifier interface {
	SendReminder(ctx context.Context, r Reminder) error
}

// Source exposes the study data reminders are computed from. *store.Store satisfies it.
type Source interface {
	CurrentUser() *models.User
	StudyMinutesToday() int
	DueFlashcards(subjectID string, limit int) []models.Flashcard
}

// Config controls when and why reminders are sent
type Config struct {
	StartHour        int
	EndHour          int
	DailyGoalMinutes int
	Location         *time.Location
}

func DefaultConfig() Config {
	return Config{
		StartHour:        DefaultNotificationStartHour,
		EndHour:          DefaultNotificationEndHour,
		DailyGoalMinutes: DefaultDailyGoalMinutes,
		Location:         time.UTC,
	}
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Source
	notifier  Notifier
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a new scheduler instance
func New(source Source, notifier Notifier, cfg Config, logger *zap.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(cfg.Location),
		source:    source,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Start runs the hourly reminder check in the background
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(1).Hour().Do(func() {
		if _, err := s.checkAndSendReminder(ctx); err != nil {
			s.logger.Error("Reminder check failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// checkAndSendReminder sends a reminder inside notification hours when the
// daily goal is not met yet. It reports whether a reminder went out.
func (s *Scheduler) checkAndSendReminder(ctx context.Context) (bool, error) {
	hour := s.now().In(s.cfg.Location).Hour()
	if hour < s.cfg.StartHour || hour > s.cfg.EndHour {
		s.logger.Debug("Outside notification hours, skipping reminder",
			zap.Int("hour", hour),
			zap.Int("start", s.cfg.StartHour),
			zap.Int("end", s.cfg.EndHour))
		return false, nil
	}
	return s.RunManualCheck(ctx)
}

// RunManualCheck sends a reminder right away if there is anything left to do
func (s *Scheduler) RunManualCheck(ctx context.Context) (bool, error) {
	if s.source.CurrentUser() == nil {
		return false, nil
	}

	r := Reminder{DueFlashcards: len(s.source.DueFlashcards("", 0))}
	if studied := s.source.StudyMinutesToday(); studied < s.cfg.DailyGoalMinutes {
		r.RemainingMinutes = s.cfg.DailyGoalMinutes - studied
	}
	if r.RemainingMinutes == 0 {
		return false, nil
	}

	if err := s.notifier.SendReminder(ctx, r); err != nil {
		return false, fmt.Errorf("failed to send reminder: %w", err)
	}
	s.logger.Info("Reminder sent",
		zap.Int("remaining_minutes", r.RemainingMinutes),
		zap.Int("due_flashcards", r.DueFlashcards))
	return true, nil
}
