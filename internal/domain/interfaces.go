package domain

import (
	"context"
	"time"

	"lendit/internal/models"
)

// Clock supplies the current instant. Services take it injected so
// that the temporal buckets and interval validation are testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type BookingRepository interface {
	// CreateBooking persists a new booking; the implementation must
	// re-check window conflicts atomically with the insert.
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.Status) error
	ListByItem(ctx context.Context, itemID int64) ([]models.Booking, error)
	ListByBooker(ctx context.Context, bookerID int64, bucket models.Bucket, now time.Time, from, size int) ([]models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, bucket models.Bucket, now time.Time, from, size int) ([]models.Booking, error)
	ListAllBookings(ctx context.Context) ([]models.Booking, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
	LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	ListItemsByOwner(ctx context.Context, ownerID int64) ([]models.Item, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
}

// BookingCache is a read cache keyed by booking id. Get returns
// (nil, nil) on a miss.
type BookingCache interface {
	Get(ctx context.Context, id int64) (*models.Booking, error)
	Set(ctx context.Context, booking *models.Booking) error
	Invalidate(ctx context.Context, id int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ReportWorker accepts asynchronous report-generation tasks.
type ReportWorker interface {
	EnqueueBookingsReport(ctx context.Context) error
}

type BookingService interface {
	Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	UpdateStatus(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error)
	GetByParticipant(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	ListForBooker(ctx context.Context, userID int64, state string, from, size int) ([]models.Booking, error)
	ListForOwner(ctx context.Context, userID int64, state string, from, size int) ([]models.Booking, error)
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, item *models.Item) error
	Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	Get(ctx context.Context, userID, itemID int64) (*models.ItemDetail, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.ItemDetail, error)
	AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

type UserService interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]models.User, error)
}
