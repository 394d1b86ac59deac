package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/examprep/pkg/models"
)

// GetStoreItems returns the global catalog
func (s *Store) GetStoreItems() []models.StoreItem {
	var out []models.StoreItem
	s.read(func(st *State, _ string) {
		out = append(out, st.StoreItems...)
	})
	return out
}

// PurchaseStoreItem debits the item's price and equips it in its cosmetic
// slot, replacing whatever was there. The balance check and the debit happen
// in one step, so the balance can never go negative.
func (s *Store) PurchaseStoreItem(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	var bought models.StoreItem
	err := s.mutateAuthed(ctx, func(st *State, user *models.User) error {
		var item *models.StoreItem
		for i := range st.StoreItems {
			if st.StoreItems[i].ID == id {
				item = &st.StoreItems[i]
				break
			}
		}
		if item == nil {
			return fmt.Errorf("item %s: %w", id, ErrItemNotFound)
		}
		if user.Coins < item.Price {
			return fmt.Errorf("%w: %s costs %d, balance is %d", ErrInsufficientFunds, item.Name, item.Price, user.Coins)
		}

		switch item.Type {
		case models.StoreItemAvatar:
			user.Avatar = item.ImageURL
		case models.StoreItemBanner:
			user.Banner = item.ImageURL
		case models.StoreItemBadge:
			user.Badge = item.ImageURL
		default:
			return fmt.Errorf("%w: unknown item type %q", ErrValidation, item.Type)
		}
		user.Coins -= item.Price

		bought = *item
		out = *user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Store item purchased",
		zap.String("item_id", bought.ID),
		zap.Int("price", bought.Price),
		zap.Int("balance", out.Coins))
	return &out, nil
}

// OwnsItem reports whether the current user has the item equipped
func (s *Store) OwnsItem(id string) bool {
	owned := false
	s.read(func(st *State, _ string) {
		user := st.currentUser()
		if user == nil {
			return
		}
		for _, item := range st.StoreItems {
			if item.ID != id {
				continue
			}
			switch item.Type {
			case models.StoreItemAvatar:
				owned = user.Avatar == item.ImageURL
			case models.StoreItemBanner:
				owned = user.Banner == item.ImageURL
			case models.StoreItemBadge:
				owned = user.Badge == item.ImageURL
			}
			return
		}
	})
	return owned
}
