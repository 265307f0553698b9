package domain

import (
	"errors"
	"time"
)

// Review is a published customer testimonial.
type Review struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Details   string    `json:"details"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate validates the review for persistence.
func (r *Review) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Rating < 0 || r.Rating > 5 {
		return errors.New("rating must be between 0 and 5")
	}
	return nil
}
