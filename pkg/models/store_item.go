package models

import "time"

// StoreItemType is the cosmetic slot an item occupies
type StoreItemType string

const (
	StoreItemAvatar StoreItemType = "avatar"
	StoreItemBanner StoreItemType = "banner"
	StoreItemBadge  StoreItemType = "badge"
)

// StoreItem is a cosmetic item that can be bought with coins
type StoreItem struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       int           `json:"price"`
	Type        StoreItemType `json:"type"`
	ImageURL    string        `json:"imageUrl"`
	CreatedAt   time.Time     `json:"createdAt"`
}
