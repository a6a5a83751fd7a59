package models

import "time"

// Item is a thing a user offers for rent. Only available items accept
// new bookings.
type Item struct {
	ID          int64     `json:"id" yaml:"id"`
	OwnerID     int64     `json:"owner_id" yaml:"owner_id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Available   bool      `json:"available" yaml:"available"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// ItemPatch carries the mutable item fields for a partial update.
// Nil fields are left unchanged.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// ItemDetail is an item together with its comments and, for the owner,
// the closest bookings around the current instant.
type ItemDetail struct {
	Item
	LastBooking *Booking  `json:"last_booking,omitempty"`
	NextBooking *Booking  `json:"next_booking,omitempty"`
	Comments    []Comment `json:"comments"`
}
