package service

import (
	"context"
	"fmt"
	"time"

	"lendit/internal/database"
	"lendit/internal/domain"
	"lendit/internal/events"
	"lendit/internal/metrics"
	"lendit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService orchestrates the availability check, the approval
// state machine and the bucketed queries against the repositories.
// It is stateless and safe for concurrent use.
type BookingService struct {
	bookings domain.BookingRepository
	items    domain.ItemRepository
	users    domain.UserRepository
	cache    domain.BookingCache
	eventBus domain.EventPublisher
	clock    domain.Clock
	logger   *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingRepository,
	items domain.ItemRepository,
	users domain.UserRepository,
	cache domain.BookingCache,
	eventBus domain.EventPublisher,
	clock domain.Clock,
	logger *zerolog.Logger,
) *BookingService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		cache:    cache,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

// Create admits a new booking request. The booking starts WAITING.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	if _, err := s.users.GetUser(ctx, bookerID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, fmt.Errorf("item %d is closed for booking: %w", itemID, database.ErrNotAvailable)
	}
	// An owner asking for their own item is told the item does not
	// exist rather than that it is theirs.
	if item.OwnerID == bookerID {
		return nil, fmt.Errorf("item %d: %w", itemID, database.ErrNotFound)
	}

	if err := ValidateWindow(start, end, s.clock.Now()); err != nil {
		return nil, err
	}

	existing, err := s.bookings.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := CheckWindow(existing, start); err != nil {
		metrics.IncBookingConflict()
		return nil, err
	}

	booking := &models.Booking{
		ItemID:   itemID,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	// The repository re-runs the conflict check inside its insert
	// transaction, so a concurrent create cannot slip between the
	// check above and this write.
	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(events.EventBookingCreated, booking)
	metrics.IncBookingOp("created")
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", itemID).
		Int64("booker_id", bookerID).
		Msg("booking created")

	return booking, nil
}

// UpdateStatus applies the owner's approve/reject decision.
func (s *BookingService) UpdateStatus(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, fmt.Errorf("booking %d: %w", bookingID, database.ErrNotFound)
	}

	next, err := Transition(booking.Status, approved)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.UpdateBookingStatus(ctx, bookingID, next); err != nil {
		return nil, err
	}
	booking.Status = next
	booking.UpdatedAt = s.clock.Now()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, bookingID); err != nil {
			s.logger.Warn().Err(err).Int64("booking_id", bookingID).Msg("cache invalidate failed")
		}
	}

	if approved {
		s.publish(events.EventBookingApproved, booking)
		metrics.IncBookingOp("approved")
	} else {
		s.publish(events.EventBookingRejected, booking)
		metrics.IncBookingOp("rejected")
	}
	s.logger.Info().
		Int64("booking_id", bookingID).
		Str("status", string(next)).
		Msg("booking status updated")

	return booking, nil
}

// GetByParticipant returns the booking to its booker or the item's
// owner; anyone else learns nothing beyond "not found".
func (s *BookingService) GetByParticipant(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	booking := s.cachedBooking(ctx, bookingID)
	if booking == nil {
		var err error
		booking, err = s.bookings.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, booking); err != nil {
				s.logger.Warn().Err(err).Int64("booking_id", bookingID).Msg("cache set failed")
			}
		}
	}

	item, err := s.items.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if userID != booking.BookerID && userID != item.OwnerID {
		return nil, fmt.Errorf("booking %d: %w", bookingID, database.ErrNotFound)
	}
	return booking, nil
}

// ListForBooker pages through the user's own booking requests.
func (s *BookingService) ListForBooker(ctx context.Context, userID int64, state string, from, size int) ([]models.Booking, error) {
	bucket, err := s.listArgs(ctx, userID, state, from, size)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByBooker(ctx, userID, bucket, s.clock.Now(), from, size)
}

// ListForOwner pages through the bookings made against the user's
// items.
func (s *BookingService) ListForOwner(ctx context.Context, userID int64, state string, from, size int) ([]models.Booking, error) {
	bucket, err := s.listArgs(ctx, userID, state, from, size)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByOwner(ctx, userID, bucket, s.clock.Now(), from, size)
}

func (s *BookingService) listArgs(ctx context.Context, userID int64, state string, from, size int) (models.Bucket, error) {
	if err := validatePage(from, size); err != nil {
		return 0, err
	}
	bucket, err := ParseBucket(state)
	if err != nil {
		return 0, err
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return 0, err
	}
	return bucket, nil
}

func (s *BookingService) cachedBooking(ctx context.Context, id int64) *models.Booking {
	if s.cache == nil {
		return nil
	}
	booking, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Int64("booking_id", id).Msg("cache get failed")
		return nil
	}
	return booking
}

func (s *BookingService) publish(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		BookerID:  booking.BookerID,
		Status:    string(booking.Status),
		Start:     booking.Start,
		End:       booking.End,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
