package service

import (
	"time"

	"lendit/internal/database"
	"lendit/internal/models"
)

// ValidateWindow checks the proposed [start, end) interval against the
// clock: both bounds must be set, start must precede end, and neither
// may lie in the past.
func ValidateWindow(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return database.ErrInvalidInterval
	}
	if !start.Before(end) {
		return database.ErrInvalidInterval
	}
	if start.Before(now) || end.Before(now) {
		return database.ErrInvalidInterval
	}
	return nil
}

// CheckWindow decides whether a booking for [start, end) may be
// admitted against the item's existing bookings. The scan is
// order-independent and an empty set is trivially available.
//
// The conflict test is anchored on the new start instant only; see
// Booking.ConflictsWith.
func CheckWindow(existing []models.Booking, start time.Time) error {
	for _, b := range existing {
		if b.ConflictsWith(start) {
			return database.ErrNotAvailable
		}
	}
	return nil
}
