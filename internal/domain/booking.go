package domain

import (
	"fmt"
	"time"
)

type Booking struct {
	ID        int64     `json:"id"`
	TourID    int64     `json:"tour_id"`
	UserID    int64     `json:"user_id"`
	Price     int64     `json:"price"` // cents
	Paid      bool      `json:"paid"`
	CreatedAt time.Time `json:"created_at"`

	// Joined tour fields, populated on listing queries.
	TourName string `json:"tour_name,omitempty"`
	TourSlug string `json:"tour_slug,omitempty"`
}

type CreateBookingRequest struct {
	TourID int64 `json:"tour_id"`
	UserID int64 `json:"user_id"`
	Price  int64 `json:"price"`
	Paid   bool  `json:"paid"`
}

type UpdateBookingRequest struct {
	Price *int64 `json:"price,omitempty"`
	Paid  *bool  `json:"paid,omitempty"`
}

// CheckoutSession is the payment redirect handed back to the client.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

func (r *CreateBookingRequest) Validate() error {
	if r.TourID <= 0 {
		return fmt.Errorf("a booking must belong to a tour")
	}
	if r.UserID <= 0 {
		return fmt.Errorf("a booking must belong to a user")
	}
	if r.Price <= 0 {
		return fmt.Errorf("a booking must have a price")
	}
	return nil
}
