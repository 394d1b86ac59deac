package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/examprep/pkg/models"
)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "password"
	DemoUserID   = "1"

	demoName      = "Demo User"
	demoCoins     = 500
	registerCoins = 100
)

// Authenticate logs in the demo account. Any other credentials fail with
// ErrInvalidCredentials. A returning demo user keeps their coins and cosmetics.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) != DemoEmail || password != DemoPassword {
		return nil, ErrInvalidCredentials
	}

	var out models.User
	err := s.mutate(ctx, func(st *State) error {
		var demo *models.User
		for i := range st.Users {
			if st.Users[i].ID == DemoUserID {
				demo = &st.Users[i]
				break
			}
		}
		if demo == nil {
			st.Users = append(st.Users, models.User{
				ID:        DemoUserID,
				Email:     DemoEmail,
				Name:      demoName,
				Coins:     demoCoins,
				CreatedAt: s.now(),
			})
			demo = &st.Users[len(st.Users)-1]
		}
		st.CurrentUserID = demo.ID
		out = *demo
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", zap.String("user_id", out.ID))
	return &out, nil
}

// Register creates a new account with the starting balance and makes it current
func (s *Store) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrValidation)
	}

	user := models.User{
		ID:        s.newID(),
		Email:     email,
		Name:      name,
		Coins:     registerCoins,
		CreatedAt: s.now(),
	}
	err := s.mutate(ctx, func(st *State) error {
		st.Users = append(st.Users, user)
		st.CurrentUserID = user.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return &user, nil
}

// Logout clears the current user
func (s *Store) Logout(ctx context.Context) error {
	return s.mutate(ctx, func(st *State) error {
		st.CurrentUserID = ""
		return nil
	})
}

// CurrentUser returns a copy of the logged in user, or nil
func (s *Store) CurrentUser() *models.User {
	var out *models.User
	s.read(func(st *State, _ string) {
		if u := st.currentUser(); u != nil {
			cp := *u
			out = &cp
		}
	})
	return out
}

// AwardCoins credits amount coins to the current user and returns the new balance
func (s *Store) AwardCoins(ctx context.Context, amount int) (int, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	var balance int
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		user.Coins += amount
		balance = user.Coins
		return nil
	})
	return balance, err
}
