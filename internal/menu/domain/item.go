package domain

import (
	"errors"
	"time"
)

// Item is a dish on the restaurant menu. Category drives the analytics breakdown.
type Item struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Recipe    string    `json:"recipe"`
	Image     string    `json:"image"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate validates the item for persistence.
func (i *Item) Validate() error {
	if i.Name == "" {
		return errors.New("name is required")
	}
	if i.Category == "" {
		return errors.New("category is required")
	}
	if i.Price < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}
