package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lendit/internal/models"
)

func scanBooking(row interface{ Scan(...interface{}) error }) (*models.Booking, error) {
	var b models.Booking
	var startNs, endNs int64
	err := row.Scan(
		&b.ID,
		&b.ItemID,
		&b.BookerID,
		&startNs,
		&endNs,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Start = time.Unix(0, startNs).UTC()
	b.End = time.Unix(0, endNs).UTC()
	return &b, nil
}

const bookingColumns = `id, item_id, booker_id, start_at, end_at, status, created_at, updated_at`

// CreateBooking inserts the booking inside a transaction that re-runs
// the conflict check against the item's bookings. Two concurrent
// requests for the same window cannot both commit.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT start_at, end_at FROM bookings WHERE item_id = ?`, booking.ItemID)
	if err != nil {
		return fmt.Errorf("load item bookings in tx: %w", err)
	}
	for rows.Next() {
		var startNs, endNs int64
		if err := rows.Scan(&startNs, &endNs); err != nil {
			rows.Close()
			return fmt.Errorf("scan booking interval: %w", err)
		}
		existing := models.Booking{Start: time.Unix(0, startNs).UTC(), End: time.Unix(0, endNs).UTC()}
		if existing.ConflictsWith(booking.Start) {
			rows.Close()
			return ErrNotAvailable
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate item bookings: %w", err)
	}
	rows.Close()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (item_id, booker_id, start_at, end_at, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		booking.ItemID,
		booking.BookerID,
		booking.Start.UnixNano(),
		booking.End.UnixNano(),
		booking.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}

	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)

	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}
	return booking, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.Status) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListByItem returns every booking on the item regardless of status;
// the availability check runs over the full set.
func (db *DB) ListByItem(ctx context.Context, itemID int64) ([]models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE item_id = ? ORDER BY start_at`, itemID)
}

// ListByBooker returns a page of the booker's bookings in the given
// bucket, newest start first. from is an absolute item offset.
func (db *DB) ListByBooker(ctx context.Context, bookerID int64, bucket models.Bucket, now time.Time, from, size int) ([]models.Booking, error) {
	clause, clauseArgs := bucketClause(bucket, now)
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE booker_id = ?` + clause + `
              ORDER BY start_at DESC LIMIT ? OFFSET ?`

	args := append([]interface{}{bookerID}, clauseArgs...)
	args = append(args, size, from)
	return db.queryBookings(ctx, query, args...)
}

// ListByOwner is ListByBooker over the bookings of the items the user
// owns.
func (db *DB) ListByOwner(ctx context.Context, ownerID int64, bucket models.Bucket, now time.Time, from, size int) ([]models.Booking, error) {
	clause, clauseArgs := bucketClause(bucket, now)
	query := `SELECT b.id, b.item_id, b.booker_id, b.start_at, b.end_at, b.status, b.created_at, b.updated_at
              FROM bookings b
              JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ?` + clause + `
              ORDER BY b.start_at DESC LIMIT ? OFFSET ?`

	args := append([]interface{}{ownerID}, clauseArgs...)
	args = append(args, size, from)
	return db.queryBookings(ctx, query, args...)
}

// bucketClause builds the extra WHERE condition for a bucket. Column
// references are unqualified names valid in both list queries.
func bucketClause(bucket models.Bucket, now time.Time) (string, []interface{}) {
	ns := now.UnixNano()
	switch bucket {
	case models.BucketCurrent:
		return ` AND start_at < ? AND end_at > ?`, []interface{}{ns, ns}
	case models.BucketPast:
		return ` AND end_at < ?`, []interface{}{ns}
	case models.BucketFuture:
		return ` AND start_at > ?`, []interface{}{ns}
	case models.BucketWaiting:
		return ` AND status = ?`, []interface{}{models.StatusWaiting}
	case models.BucketRejected:
		return ` AND status = ?`, []interface{}{models.StatusRejected}
	default:
		return ``, nil
	}
}

// ListAllBookings returns every booking, newest start first. Used by
// the report exporter.
func (db *DB) ListAllBookings(ctx context.Context) ([]models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY start_at DESC`)
}

// HasFinishedBooking reports whether the user had a booking for the
// item that already ended. Gates comment creation.
func (db *DB) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE booker_id = ? AND item_id = ? AND end_at < ?`,
		bookerID, itemID, now.UnixNano()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count finished bookings: %w", err)
	}
	return count > 0, nil
}

// LastBookingForItem returns the latest booking that started at or
// before now, or nil when there is none.
func (db *DB) LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
         WHERE item_id = ? AND start_at <= ? ORDER BY start_at DESC LIMIT 1`,
		itemID, now.UnixNano())

	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last booking for item %d: %w", itemID, err)
	}
	return booking, nil
}

// NextBookingForItem returns the earliest booking that starts after
// now, or nil when there is none.
func (db *DB) NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
         WHERE item_id = ? AND start_at > ? ORDER BY start_at LIMIT 1`,
		itemID, now.UnixNano())

	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next booking for item %d: %w", itemID, err)
	}
	return booking, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}
