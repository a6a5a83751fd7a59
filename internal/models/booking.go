package models

import "time"

// Booking reserves an item for the half-open interval [Start, End).
// ItemID, BookerID and the interval are immutable after creation; only
// Status changes, and only through the approval state machine.
type Booking struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	BookerID  int64     `json:"booker_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConflictsWith reports whether a booking starting at the instant s
// collides with b. The check is anchored on the new start only:
// s is a conflict when b.Start <= s <= b.End.
func (b Booking) ConflictsWith(s time.Time) bool {
	return !(b.End.Before(s) || b.Start.After(s))
}
