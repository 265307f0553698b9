package domain

import (
	"errors"
	"time"
)

// Entry is one dish placed in a diner's cart. Entries are owned by exactly one identity.
type Entry struct {
	ID         string    `json:"_id"`
	OwnerEmail string    `json:"email"`
	MenuItemID string    `json:"menuItemId"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	Price      float64   `json:"price"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate validates the entry for persistence.
func (e *Entry) Validate() error {
	if e.OwnerEmail == "" {
		return errors.New("owner email is required")
	}
	if e.MenuItemID == "" {
		return errors.New("menu item is required")
	}
	if e.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}
