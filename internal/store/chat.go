package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/examprep/pkg/models"
)

// SendChatMessage asks the tutor for a reply. The exchange is recorded only
// when a user is logged in.
func (s *Store) SendChatMessage(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: message is empty", ErrValidation)
	}

	reply, err := s.generator.GenerateChatReply(ctx, text)
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	if s.CurrentUser() == nil {
		return reply, nil
	}
	err = s.mutate(ctx, func(st *State) error {
		user := st.currentUser()
		if user == nil {
			// Logged out while the reply was generated
			return nil
		}
		st.ChatMessages = append(st.ChatMessages, models.ChatMessage{
			ID:        s.newID(),
			UserID:    user.ID,
			Message:   text,
			Response:  reply,
			CreatedAt: s.now(),
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

// GetChatHistory returns the current user's past exchanges, oldest first
func (s *Store) GetChatHistory() []models.ChatMessage {
	var out []models.ChatMessage
	s.read(func(st *State, userID string) {
		for _, m := range st.ChatMessages {
			if userID != "" && m.UserID == userID {
				out = append(out, m)
			}
		}
	})
	return out
}
