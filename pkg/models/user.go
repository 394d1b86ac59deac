package models

import "time"

// User represents the person studying with the app
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Coins     int       `json:"coins"`
	Avatar    string    `json:"avatar,omitempty"` // Image reference of the purchased avatar
	Banner    string    `json:"banner,omitempty"`
	Badge     string    `json:"badge,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
