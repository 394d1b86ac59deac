package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/example/examprep/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTracker struct {
	mu      sync.Mutex
	started []string
	stopped []string
	coins   int
	failAt  string
	next    int
}

func (f *fakeTracker) StartStudySession(ctx context.Context, subjectID string) (*models.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt == "start" {
		return nil, errors.New("no user")
	}
	f.next++
	id := fmt.Sprintf("sess-%d", f.next)
	f.started = append(f.started, id)
	return &models.StudySession{ID: id, SubjectID: subjectID, StartTime: time.Now()}, nil
}

func (f *fakeTracker) StopStudySession(ctx context.Context, id string) (*models.StudySession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = append(f.stopped, id)
	end := time.Now()
	return &models.StudySession{ID: id, EndTime: &end, DurationMinutes: 25}, nil
}

func (f *fakeTracker) AwardCoins(ctx context.Context, amount int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coins += amount
	return f.coins, nil
}

var shortCycle = Durations{Focus: 5 * time.Second, ShortBreak: 2 * time.Second, LongBreak: 3 * time.Second}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) add(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func tickN(t *testing.T, tm *Timer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, tm.Tick(context.Background()))
	}
}

func TestTimer_StartNeedsSubject(t *testing.T) {
	tm := New(&fakeTracker{})
	assert.ErrorIs(t, tm.Start(context.Background()), ErrSubjectRequired)

	require.NoError(t, tm.SetMode(ModeStopwatch, 0))
	require.NoError(t, tm.Start(context.Background()))
	assert.Equal(t, StateRunning, tm.Status().State)
	assert.ErrorIs(t, tm.Start(context.Background()), ErrRunning)
	assert.ErrorIs(t, tm.SetMode(ModePomodoro, 0), ErrRunning)
}

func TestTimer_PomodoroCycle(t *testing.T) {
	ctx := context.Background()
	tracker := &fakeTracker{}
	rec := &recorder{}
	tm := New(tracker, WithDurations(shortCycle), OnEvent(rec.add))
	require.NoError(t, tm.SetSubject("algebra"))

	var breaks []Phase
	for i := 0; i < LongBreakEvery; i++ {
		require.NoError(t, tm.Start(ctx))
		tickN(t, tm, 5)

		st := tm.Status()
		assert.Equal(t, StateIdle, st.State)
		assert.Equal(t, i+1, st.Pomodoros)
		breaks = append(breaks, st.Phase)

		// Breaks do not open a study session
		require.NoError(t, tm.Start(ctx))
		assert.Empty(t, tm.Status().SessionID)
		tickN(t, tm, int(tm.Status().Remaining/time.Second))
		assert.Equal(t, PhaseFocus, tm.Status().Phase)
	}

	assert.Equal(t, []Phase{PhaseShortBreak, PhaseShortBreak, PhaseShortBreak, PhaseLongBreak}, breaks)
	assert.Equal(t, LongBreakEvery*PomodoroReward, tracker.coins)
	assert.Len(t, tracker.started, LongBreakEvery)
	assert.Equal(t, tracker.started, tracker.stopped)

	kinds := rec.kinds()
	assert.Equal(t, []EventKind{EventStarted, EventPomodoroComplete, EventSessionClosed, EventStarted, EventBreakComplete}, kinds[:5])
}

func TestTimer_PauseResume(t *testing.T) {
	tm := New(&fakeTracker{}, WithDurations(shortCycle))
	require.NoError(t, tm.SetSubject("algebra"))
	assert.ErrorIs(t, tm.Pause(), ErrNotRunning)

	require.NoError(t, tm.Start(context.Background()))
	tickN(t, tm, 2)
	require.NoError(t, tm.Pause())
	tickN(t, tm, 10)
	assert.Equal(t, 3*time.Second, tm.Status().Remaining)
	assert.Equal(t, StatePaused, tm.Status().State)

	require.NoError(t, tm.Resume())
	assert.ErrorIs(t, tm.Resume(), ErrNotPaused)
	tickN(t, tm, 1)
	assert.Equal(t, 2*time.Second, tm.Status().Remaining)
}

func TestTimer_StopClosesSession(t *testing.T) {
	ctx := context.Background()
	tracker := &fakeTracker{}
	rec := &recorder{}
	tm := New(tracker, WithDurations(shortCycle), OnEvent(rec.add))
	require.NoError(t, tm.SetSubject("algebra"))

	require.NoError(t, tm.Start(ctx))
	tickN(t, tm, 3)
	require.NoError(t, tm.Stop(ctx))

	st := tm.Status()
	assert.Equal(t, StateIdle, st.State)
	assert.Equal(t, 5*time.Second, st.Remaining)
	assert.Empty(t, st.SessionID)
	assert.Equal(t, []string{"sess-1"}, tracker.stopped)
	assert.Equal(t, 0, tracker.coins)

	kinds := rec.kinds()
	assert.Equal(t, []EventKind{EventStarted, EventStopped, EventSessionClosed}, kinds)
	assert.Equal(t, 10, rec.events[2].Coins)
}

func TestTimer_ResetRestartsCycle(t *testing.T) {
	ctx := context.Background()
	tm := New(&fakeTracker{}, WithDurations(shortCycle))
	require.NoError(t, tm.SetSubject("algebra"))
	require.NoError(t, tm.Start(ctx))
	tickN(t, tm, 5)
	require.Equal(t, PhaseShortBreak, tm.Status().Phase)

	require.NoError(t, tm.Reset(ctx))
	st := tm.Status()
	assert.Equal(t, PhaseFocus, st.Phase)
	assert.Equal(t, 0, st.Pomodoros)
	assert.Equal(t, 5*time.Second, st.Remaining)
}

func TestTimer_CustomAndStopwatch(t *testing.T) {
	ctx := context.Background()
	tracker := &fakeTracker{}
	rec := &recorder{}
	tm := New(tracker, OnEvent(rec.add))
	require.NoError(t, tm.SetSubject("algebra"))

	assert.ErrorIs(t, tm.SetMode(ModeCustom, 0), ErrInvalidDuration)
	require.NoError(t, tm.SetMode(ModeCustom, 3*time.Second))
	require.NoError(t, tm.Start(ctx))
	tickN(t, tm, 3)
	assert.Contains(t, rec.kinds(), EventComplete)
	assert.Equal(t, 3*time.Second, tm.Status().Remaining)
	assert.Equal(t, 0, tracker.coins)
	assert.Len(t, tracker.stopped, 1)

	require.NoError(t, tm.SetMode(ModeStopwatch, 0))
	require.NoError(t, tm.Start(ctx))
	tickN(t, tm, 90)
	st := tm.Status()
	assert.Equal(t, StateRunning, st.State)
	assert.Equal(t, 90*time.Second, st.Elapsed)
}

func TestTimer_StartFailsWithoutTracker(t *testing.T) {
	tm := New(&fakeTracker{failAt: "start"})
	require.NoError(t, tm.SetSubject("algebra"))
	assert.Error(t, tm.Start(context.Background()))
	assert.Equal(t, StateIdle, tm.Status().State)
}

func TestTimer_Run(t *testing.T) {
	done := make(chan struct{})
	var once sync.Once
	tm := New(&fakeTracker{},
		WithDurations(shortCycle),
		WithTickInterval(time.Millisecond),
		OnEvent(func(ev Event) {
			if ev.Kind == EventPomodoroComplete {
				once.Do(func() { close(done) })
			}
		}))
	require.NoError(t, tm.SetSubject("algebra"))
	require.NoError(t, tm.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- tm.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pomodoro did not complete")
	}
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "25:00", FormatDuration(25*time.Minute))
	assert.Equal(t, "0:09", FormatDuration(9*time.Second))
	assert.Equal(t, "1:02:03", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "0:00", FormatDuration(-time.Second))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("custom")
	require.NoError(t, err)
	assert.Equal(t, ModeCustom, m)
	_, err = ParseMode("lap")
	assert.Error(t, err)
}
