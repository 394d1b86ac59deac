// Package store is the single source of truth for every study entity.
// All state is held in memory and written to a snapshot slot after each
// mutation.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/examprep/internal/ai"
	"github.com/example/examprep/internal/database"
	"github.com/example/examprep/internal/spaced_repetition"
	"github.com/example/examprep/pkg/models"
)

// State is the persisted snapshot of the whole application
type State struct {
	Users         []models.User         `json:"users"`
	CurrentUserID string                `json:"currentUserId,omitempty"`
	Subjects      []models.Subject      `json:"subjects"`
	Questions     []models.Question     `json:"questions"`
	Flashcards    []models.Flashcard    `json:"flashcards"`
	CheatSheets   []models.CheatSheet   `json:"cheatSheets"`
	Progress      []models.Progress     `json:"progress"`
	StudySessions []models.StudySession `json:"studySessions"`
	StoreItems    []models.StoreItem    `json:"storeItems"`
	ChatMessages  []models.ChatMessage  `json:"chatMessages"`

	// Older snapshots kept a single user object instead of a user list
	LegacyCurrentUser *models.User `json:"currentUser,omitempty"`
}

func (st *State) currentUser() *models.User {
	if st.CurrentUserID == "" {
		return nil
	}
	for i := range st.Users {
		if st.Users[i].ID == st.CurrentUserID {
			return &st.Users[i]
		}
	}
	return nil
}

func (st *State) subject(userID, id string) *models.Subject {
	for i := range st.Subjects {
		if st.Subjects[i].ID == id && st.Subjects[i].UserID == userID {
			return &st.Subjects[i]
		}
	}
	return nil
}

func (st *State) clone() (*State, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	var cp State
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// Store mediates all reads and writes of the application state
type Store struct {
	mu        sync.Mutex
	state     *State
	slot      database.Slot
	generator ai.Generator
	sm2       *spaced_repetition.SM2
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	loc       *time.Location
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger; the default discards everything
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the random UUID generator
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLocation sets the time zone used to bucket study history by day
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// New creates a store backed by slot. Call Open before use.
func New(slot database.Slot, generator ai.Generator, opts ...Option) *Store {
	s := &Store{
		state:     &State{},
		slot:      slot,
		generator: generator,
		sm2:       spaced_repetition.NewSM2(),
		logger:    zap.NewNop(),
		now:       time.Now,
		newID:     uuid.NewString,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the snapshot from the slot and seeds the store catalog
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.slot.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	st := &State{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, st); err != nil {
			return fmt.Errorf("failed to decode snapshot: %w", err)
		}
	}

	changed := migrateLegacyUser(st)
	if len(st.StoreItems) == 0 {
		st.StoreItems = defaultCatalog(s.now())
		changed = true
	}

	if changed {
		if err := s.persist(ctx, st); err != nil {
			return err
		}
	}
	s.state = st

	s.logger.Info("Store opened",
		zap.Int("users", len(st.Users)),
		zap.Int("subjects", len(st.Subjects)),
		zap.Bool("seeded", changed))
	return nil
}

func migrateLegacyUser(st *State) bool {
	if st.LegacyCurrentUser == nil {
		return false
	}
	u := *st.LegacyCurrentUser
	st.LegacyCurrentUser = nil

	found := false
	for i := range st.Users {
		if st.Users[i].ID == u.ID {
			st.Users[i] = u
			found = true
			break
		}
	}
	if !found {
		st.Users = append(st.Users, u)
	}
	st.CurrentUserID = u.ID
	return true
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) persist(ctx context.Context, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// mutate applies fn to a copy of the state and swaps it in only after the
// copy has been saved. The caller must not hold s.mu.
func (s *Store) mutate(ctx context.Context, fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.state.clone()
	if err != nil {
		return fmt.Errorf("failed to copy state: %w", err)
	}
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(ctx, next); err != nil {
		s.logger.Error("Snapshot write failed, keeping previous state", zap.Error(err))
		return err
	}
	s.state = next
	return nil
}

// mutateAuthed is mutate for operations that need a current user
func (s *Store) mutateAuthed(ctx context.Context, fn func(st *State, user *models.User) error) error {
	return s.mutate(ctx, func(st *State) error {
		user := st.currentUser()
		if user == nil {
			return ErrAuthenticationRequired
		}
		return fn(st, user)
	})
}

// read runs fn under the lock with the current user id ("" when logged out)
func (s *Store) read(fn func(st *State, userID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID := ""
	if u := s.state.currentUser(); u != nil {
		userID = u.ID
	}
	fn(s.state, userID)
}

func defaultCatalog(now time.Time) []models.StoreItem {
	return []models.StoreItem{
		{
			ID:          "1",
			Name:        "Scholar Badge",
			Description: "Show your dedication to learning",
			Price:       100,
			Type:        models.StoreItemBadge,
			ImageURL:    "/badges/scholar.png",
			CreatedAt:   now,
		},
		{
			ID:          "2",
			Name:        "Master Banner",
			Description: "Display your expertise",
			Price:       250,
			Type:        models.StoreItemBanner,
			ImageURL:    "/banners/master.png",
			CreatedAt:   now,
		},
		{
			ID:          "3",
			Name:        "Genius Avatar",
			Description: "Unique avatar for top performers",
			Price:       150,
			Type:        models.StoreItemAvatar,
			ImageURL:    "/avatars/genius.png",
			CreatedAt:   now,
		},
	}
}
