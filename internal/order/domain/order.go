package domain

import (
	"errors"
	"math"
	"time"
)

// Order is an immutable record of a paid checkout. It is never updated after insert.
type Order struct {
	ID            string    `json:"_id"`
	OwnerEmail    string    `json:"email"`
	TransactionID string    `json:"transactionId"`
	Price         float64   `json:"price"`
	CartItemIDs   []string  `json:"cartItems"`
	MenuItemIDs   []string  `json:"menuItems"`
	CreatedAt     time.Time `json:"date"`
}

// Validate validates the order for persistence.
func (o *Order) Validate() error {
	if o.OwnerEmail == "" {
		return errors.New("owner email is required")
	}
	if o.TransactionID == "" {
		return errors.New("transaction id is required")
	}
	if math.IsNaN(o.Price) || math.IsInf(o.Price, 0) || o.Price <= 0 {
		return errors.New("price must be positive")
	}
	return nil
}
