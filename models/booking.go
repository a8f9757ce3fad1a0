package models

import "time"

// Booking ties a user to a tour at the price paid. Payment-provider state is
// external; only the settled flag is tracked here.
type Booking struct {
	BookingID int64     `json:"id"`
	TourID    int64     `json:"tour_id"`
	UserID    int64     `json:"user_id"`
	Price     float64   `json:"price"`
	Paid      bool      `json:"paid"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Booking model.
func (b Booking) TableName() string {
	return "bookings"
}
