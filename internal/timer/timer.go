// Package timer implements the Pomodoro, custom and stopwatch study timer.
package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/examprep/pkg/models"
)

// Mode selects how the timer counts
type Mode string

const (
	ModePomodoro  Mode = "pomodoro"
	ModeCustom    Mode = "custom"
	ModeStopwatch Mode = "stopwatch"
)

// ParseMode converts user input into a Mode
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModePomodoro, ModeCustom, ModeStopwatch:
		return m, nil
	}
	return "", fmt.Errorf("unknown timer mode %q", s)
}

// Phase is the part of the Pomodoro cycle the timer is in
type Phase string

const (
	PhaseFocus      Phase = "focus"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// State is the run state of the timer
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

const (
	// PomodoroReward is credited for every completed focus block
	PomodoroReward = 25
	// LongBreakEvery is how many pomodoros earn a long break
	LongBreakEvery = 4
)

// CustomPresets are the suggested lengths for custom mode
var CustomPresets = []time.Duration{15 * time.Minute, 30 * time.Minute, 45 * time.Minute, 60 * time.Minute}

var (
	ErrRunning         = errors.New("timer is running")
	ErrNotRunning      = errors.New("timer is not running")
	ErrNotPaused       = errors.New("timer is not paused")
	ErrSubjectRequired = errors.New("select a subject first")
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Durations are the lengths of the Pomodoro phases
type Durations struct {
	Focus      time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
}

// DefaultDurations is the classic 25/5/15 cycle
var DefaultDurations = Durations{
	Focus:      25 * time.Minute,
	ShortBreak: 5 * time.Minute,
	LongBreak:  15 * time.Minute,
}

// Tracker records study sessions and rewards. The session store satisfies it.
type Tracker interface {
	StartStudySession(ctx context.Context, subjectID string) (*models.StudySession, error)
	StopStudySession(ctx context.Context, id string) (*models.StudySession, error)
	AwardCoins(ctx context.Context, amount int) (int, error)
}

// EventKind names something that happened on the timer
type EventKind string

const (
	EventStarted          EventKind = "started"
	EventPomodoroComplete EventKind = "pomodoro_complete"
	EventBreakComplete    EventKind = "break_complete"
	EventComplete         EventKind = "complete"
	EventStopped          EventKind = "stopped"
	EventSessionClosed    EventKind = "session_closed"
)

// Event is delivered to the OnEvent callback
type Event struct {
	Kind      EventKind
	Mode      Mode
	Phase     Phase // Phase the timer is in after the event
	Pomodoros int
	Coins     int                  // Coins credited by this event
	Session   *models.StudySession // Set for EventSessionClosed
}

// Status is a point-in-time view of the timer
type Status struct {
	Mode      Mode
	Phase     Phase
	State     State
	Duration  time.Duration
	Remaining time.Duration
	Elapsed   time.Duration
	Pomodoros int
	SubjectID string
	SessionID string
}

// Timer counts study time one tick at a time. Run drives it from a ticker;
// tests call Tick directly.
type Timer struct {
	mu        sync.Mutex
	tracker   Tracker
	logger    *zap.Logger
	onEvent   func(Event)
	tick      time.Duration
	durations Durations

	mode      Mode
	duration  time.Duration
	remaining time.Duration
	elapsed   time.Duration
	phase     Phase
	state     State
	pomodoros int
	subjectID string
	session   *models.StudySession
}

// Option configures a Timer
type Option func(*Timer)

func WithLogger(l *zap.Logger) Option {
	return func(t *Timer) { t.logger = l }
}

// WithTickInterval changes how often Run ticks. Each tick still counts as one second.
func WithTickInterval(d time.Duration) Option {
	return func(t *Timer) { t.tick = d }
}

func WithDurations(d Durations) Option {
	return func(t *Timer) { t.durations = d }
}

// OnEvent registers a callback. It is called without the timer lock held.
func OnEvent(fn func(Event)) Option {
	return func(t *Timer) { t.onEvent = fn }
}

// New creates an idle timer in Pomodoro mode
func New(tracker Tracker, opts ...Option) *Timer {
	t := &Timer{
		tracker:   tracker,
		logger:    zap.NewNop(),
		onEvent:   func(Event) {},
		tick:      time.Second,
		durations: DefaultDurations,
		mode:      ModePomodoro,
		phase:     PhaseFocus,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.duration = t.durations.Focus
	t.remaining = t.duration
	return t
}

// SetMode switches mode while idle. duration is used by custom mode only.
func (t *Timer) SetMode(mode Mode, duration time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateIdle {
		return ErrRunning
	}
	switch mode {
	case ModePomodoro:
		t.duration = t.durations.Focus
	case ModeCustom:
		if duration <= 0 {
			return ErrInvalidDuration
		}
		t.duration = duration
	case ModeStopwatch:
		t.duration = 0
	default:
		return fmt.Errorf("unknown timer mode %q", mode)
	}
	t.mode = mode
	t.phase = PhaseFocus
	t.pomodoros = 0
	t.remaining = t.duration
	t.elapsed = 0
	return nil
}

// SetSubject selects the subject study sessions are recorded against
func (t *Timer) SetSubject(subjectID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle {
		return ErrRunning
	}
	t.subjectID = subjectID
	return nil
}

// Status returns the current state of the timer
func (t *Timer) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := Status{
		Mode:      t.mode,
		Phase:     t.phase,
		State:     t.state,
		Duration:  t.duration,
		Remaining: t.remaining,
		Elapsed:   t.elapsed,
		Pomodoros: t.pomodoros,
		SubjectID: t.subjectID,
	}
	if t.session != nil {
		st.SessionID = t.session.ID
	}
	return st
}

// Start begins counting. A study session is opened for the selected subject
// unless the timer is on a break. Every mode except stopwatch needs a subject.
func (t *Timer) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return ErrRunning
	}
	if t.subjectID == "" && t.mode != ModeStopwatch {
		t.mu.Unlock()
		return ErrSubjectRequired
	}

	if t.subjectID != "" && t.phase == PhaseFocus {
		sess, err := t.tracker.StartStudySession(ctx, t.subjectID)
		if err != nil {
			t.mu.Unlock()
			return fmt.Errorf("failed to start study session: %w", err)
		}
		t.session = sess
	}
	if t.mode == ModeStopwatch {
		t.elapsed = 0
	}
	t.state = StateRunning
	ev := t.event(EventStarted)
	t.mu.Unlock()

	t.logger.Info("Timer started", zap.String("mode", string(ev.Mode)), zap.String("phase", string(ev.Phase)))
	t.onEvent(ev)
	return nil
}

func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateRunning {
		return ErrNotRunning
	}
	t.state = StatePaused
	return nil
}

func (t *Timer) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StatePaused {
		return ErrNotPaused
	}
	t.state = StateRunning
	return nil
}

// Stop halts the timer, rewinds the current phase and closes the open session
func (t *Timer) Stop(ctx context.Context) error {
	return t.halt(ctx, false)
}

// Reset is Stop that also starts the Pomodoro cycle over
func (t *Timer) Reset(ctx context.Context) error {
	return t.halt(ctx, true)
}

func (t *Timer) halt(ctx context.Context, reset bool) error {
	t.mu.Lock()
	t.state = StateIdle
	if reset {
		t.phase = PhaseFocus
		t.pomodoros = 0
		t.duration = t.phaseDuration()
	}
	t.remaining = t.duration
	t.elapsed = 0
	events := []Event{t.event(EventStopped)}
	closed, err := t.closeSession(ctx)
	if closed != nil {
		events = append(events, *closed)
	}
	t.mu.Unlock()

	t.emit(events)
	return err
}

// Tick advances the timer by one second of study time
func (t *Timer) Tick(ctx context.Context) error {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return nil
	}

	t.elapsed += time.Second
	if t.mode == ModeStopwatch {
		t.mu.Unlock()
		return nil
	}
	t.remaining -= time.Second
	if t.remaining > 0 {
		t.mu.Unlock()
		return nil
	}

	events, err := t.complete(ctx)
	t.mu.Unlock()

	t.emit(events)
	return err
}

// complete handles the end of a countdown. Must hold t.mu.
func (t *Timer) complete(ctx context.Context) ([]Event, error) {
	t.state = StateIdle
	t.elapsed = 0

	var events []Event
	var errs []error

	switch {
	case t.mode == ModePomodoro && t.phase == PhaseFocus:
		t.pomodoros++
		if t.pomodoros%LongBreakEvery == 0 {
			t.phase = PhaseLongBreak
		} else {
			t.phase = PhaseShortBreak
		}
		ev := t.event(EventPomodoroComplete)
		if _, err := t.tracker.AwardCoins(ctx, PomodoroReward); err != nil {
			errs = append(errs, fmt.Errorf("failed to award pomodoro coins: %w", err))
		} else {
			ev.Coins = PomodoroReward
		}
		events = append(events, ev)
	case t.mode == ModePomodoro:
		t.phase = PhaseFocus
		events = append(events, t.event(EventBreakComplete))
	default:
		events = append(events, t.event(EventComplete))
	}
	t.duration = t.phaseDuration()
	t.remaining = t.duration

	closed, err := t.closeSession(ctx)
	if err != nil {
		errs = append(errs, err)
	}
	if closed != nil {
		events = append(events, *closed)
	}

	t.logger.Info("Timer completed",
		zap.String("mode", string(t.mode)),
		zap.String("phase", string(t.phase)),
		zap.Int("pomodoros", t.pomodoros))
	return events, errors.Join(errs...)
}

// closeSession stops the open study session, if any. Must hold t.mu.
func (t *Timer) closeSession(ctx context.Context) (*Event, error) {
	if t.session == nil {
		return nil, nil
	}
	id := t.session.ID
	t.session = nil

	closed, err := t.tracker.StopStudySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to stop study session: %w", err)
	}
	if closed == nil {
		return nil, nil
	}
	ev := t.event(EventSessionClosed)
	ev.Session = closed
	ev.Coins = closed.Reward()
	return &ev, nil
}

// phaseDuration returns the countdown for the current phase. Must hold t.mu.
func (t *Timer) phaseDuration() time.Duration {
	if t.mode != ModePomodoro {
		return t.duration
	}
	switch t.phase {
	case PhaseShortBreak:
		return t.durations.ShortBreak
	case PhaseLongBreak:
		return t.durations.LongBreak
	default:
		return t.durations.Focus
	}
}

func (t *Timer) event(kind EventKind) Event {
	return Event{Kind: kind, Mode: t.mode, Phase: t.phase, Pomodoros: t.pomodoros}
}

func (t *Timer) emit(events []Event) {
	for _, ev := range events {
		t.onEvent(ev)
	}
}

// Run ticks the timer until ctx is done. Ticks are processed one at a time.
func (t *Timer) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.Tick(ctx); err != nil {
				t.logger.Error("Timer tick failed", zap.Error(err))
			}
		}
	}
}

// FormatDuration renders d as m:ss, or h:mm:ss from one hour up
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, total%3600/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
