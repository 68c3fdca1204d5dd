package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"venuebook/internal/lifecycle"
	"venuebook/internal/models"
	"venuebook/internal/pricing"
)

const bookingColumns = `id, service_id, user_id, booking_date, start_time, end_time,
	total_unit_price, booking_status, reminder_sent, created_at, updated_at, version`

// BookingPatch describes a partial update to a booking. Nil fields are
// left unchanged. Status is deliberately absent: status only moves
// through TransitionBooking.
type BookingPatch struct {
	ServiceID   *int64
	BookingDate *time.Time
	StartTime   *models.TimeOfDay
	EndTime     *models.TimeOfDay
}

// CreateBooking inserts a booking after re-deriving its price from the
// stored service rate and checking for overlap, all inside one
// transaction. On success the booking's id, price and bookkeeping
// fields are filled in.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rate, err := serviceRateTx(ctx, tx, b.ServiceID)
	if err != nil {
		return err
	}

	price, err := pricing.Compute(rate, b.StartTime, b.EndTime)
	if err != nil {
		return err
	}

	overlap, err := hasOverlapTx(ctx, tx, b.ServiceID, b.BookingDate, b.StartTime, b.EndTime, 0)
	if err != nil {
		return err
	}
	if overlap {
		return ErrOverlap
	}

	now := time.Now().In(db.loc)
	result, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (
			service_id, user_id, booking_date, start_time, end_time,
			total_unit_price, booking_status, reminder_sent, created_at, updated_at, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?, 1)`,
		b.ServiceID, b.UserID, models.DateOnly(b.BookingDate),
		string(b.StartTime), string(b.EndTime),
		price.String(), string(models.StatusConfirmed), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	b.ID = id
	b.TotalUnitPrice = price
	b.Status = models.StatusConfirmed
	b.CreatedAt = now
	b.UpdatedAt = now
	b.Version = 1
	return nil
}

// GetBooking returns the booking with the given id.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// ListBookings returns all bookings, most recent booking date first.
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY booking_date DESC, start_time`)
}

// ListUserBookings returns a user's bookings, most recent date first.
// Authorization is the caller's concern.
func (db *DB) ListUserBookings(ctx context.Context, userID int64) ([]models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY booking_date DESC, start_time`,
		userID)
}

// ListServiceBookingsOn returns non-cancelled bookings for a service
// on a date.
func (db *DB) ListServiceBookingsOn(ctx context.Context, serviceID int64, date time.Time) ([]models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE service_id = ? AND date(booking_date) = date(?) AND booking_status != ?
		ORDER BY start_time`,
		serviceID, models.DateOnly(date), string(models.StatusCancelled))
}

// UpdateBooking applies the patch, re-derives the price and re-runs the
// overlap check excluding the booking itself, all inside one
// transaction. A concurrent writer makes the update fail with
// ErrConcurrentModification rather than silently losing writes.
func (db *DB) UpdateBooking(ctx context.Context, id int64, patch BookingPatch) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	b, err := getBookingTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	version := b.Version

	if patch.ServiceID != nil {
		b.ServiceID = *patch.ServiceID
	}
	if patch.BookingDate != nil {
		b.BookingDate = models.DateOnly(*patch.BookingDate)
	}
	if patch.StartTime != nil {
		b.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		b.EndTime = *patch.EndTime
	}

	rate, err := serviceRateTx(ctx, tx, b.ServiceID)
	if err != nil {
		return nil, err
	}
	price, err := pricing.Compute(rate, b.StartTime, b.EndTime)
	if err != nil {
		return nil, err
	}

	overlap, err := hasOverlapTx(ctx, tx, b.ServiceID, b.BookingDate, b.StartTime, b.EndTime, b.ID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrOverlap
	}

	now := time.Now().In(db.loc)
	result, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET service_id = ?, booking_date = ?, start_time = ?, end_time = ?,
		    total_unit_price = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		b.ServiceID, models.DateOnly(b.BookingDate), string(b.StartTime), string(b.EndTime),
		price.String(), now, b.ID, version,
	)
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	b.TotalUnitPrice = price
	b.UpdatedAt = now
	b.Version = version + 1
	return b, nil
}

// TransitionBooking is the only path that writes booking_status. The
// read, the lifecycle check and the write share one transaction, so a
// racing transition re-evaluates guards against the committed state and
// cannot clobber it.
func (db *DB) TransitionBooking(ctx context.Context, actor models.Actor, id int64, event lifecycle.Event, now time.Time) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	b, err := getBookingTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	target, err := db.machine.Apply(actor, b, event, now)
	if err != nil {
		return nil, err
	}

	stamp := now.In(db.loc)
	result, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET booking_status = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?`,
		string(target), stamp, b.ID, b.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	b.Status = target
	b.UpdatedAt = stamp
	b.Version++
	return b, nil
}

// DeleteBooking removes a booking. Payments referencing it are kept;
// they are historical records.
func (db *DB) DeleteBooking(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListConfirmedBookingsOn returns confirmed bookings for a date that
// have not been reminded yet.
func (db *DB) ListConfirmedBookingsOn(ctx context.Context, date time.Time) ([]models.Booking, error) {
	return db.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE date(booking_date) = date(?) AND booking_status = ? AND reminder_sent = 0
		ORDER BY start_time`,
		models.DateOnly(date), string(models.StatusConfirmed))
}

// MarkReminderSent flags a booking as reminded.
func (db *DB) MarkReminderSent(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx,
		"UPDATE bookings SET reminder_sent = 1, updated_at = ? WHERE id = ?",
		time.Now().In(db.loc), id)
	return err
}

func hasOverlapTx(ctx context.Context, tx *sql.Tx, serviceID int64, date time.Time, start, end models.TimeOfDay, excludeID int64) (bool, error) {
	// Half-open intervals: [s1,e1) and [s2,e2) overlap iff
	// s1 < e2 AND s2 < e1. Touching endpoints are not a conflict.
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE service_id = ? AND date(booking_date) = date(?)
		  AND booking_status != ?
		  AND id != ?
		  AND start_time < ? AND end_time > ?`,
		serviceID, models.DateOnly(date), string(models.StatusCancelled),
		excludeID, string(end), string(start),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("overlap check: %w", err)
	}
	return count > 0, nil
}

func getBookingTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Booking, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var start, end, status string
	err := row.Scan(
		&b.ID, &b.ServiceID, &b.UserID, &b.BookingDate, &start, &end,
		&b.TotalUnitPrice, &status, &b.ReminderSent, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	b.StartTime = models.TimeOfDay(start)
	b.EndTime = models.TimeOfDay(end)
	b.Status = models.Status(status)
	return &b, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
