package database

import (
	"context"
	"fmt"
	"time"

	"venuebook/internal/models"
)

// CreateFeedback stores a visitor feedback record.
func (db *DB) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	now := time.Now().In(db.loc)
	result, err := db.ExecContext(ctx, `
		INSERT INTO feedbacks (name, phone_number, email, message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		f.Name, f.PhoneNumber, f.Email, f.Message, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	f.ID = id
	f.CreatedAt = now
	f.UpdatedAt = now
	return nil
}

// ListFeedback returns all feedback, newest first.
func (db *DB) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, phone_number, email, message, created_at, updated_at
		FROM feedbacks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	items := make([]models.Feedback, 0)
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.Name, &f.PhoneNumber, &f.Email, &f.Message, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// DeleteFeedback removes a feedback record.
func (db *DB) DeleteFeedback(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, "DELETE FROM feedbacks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
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

// CreateMessage stores a direct message between two users.
func (db *DB) CreateMessage(ctx context.Context, m *models.Message) error {
	if _, err := db.GetUser(ctx, m.RecipientID); err != nil {
		return err
	}
	now := time.Now().In(db.loc)
	result, err := db.ExecContext(ctx, `
		INSERT INTO messages (sender_id, recipient_id, content, sent_at, edited_at)
		VALUES (?, ?, ?, ?, ?)`,
		m.SenderID, m.RecipientID, m.Content, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	m.SentAt = now
	m.EditedAt = now
	return nil
}

// ListMessagesBetween returns the conversation between two users in
// chronological order.
func (db *DB) ListMessagesBetween(ctx context.Context, a, b int64) ([]models.Message, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, content, sent_at, edited_at
		FROM messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY sent_at`,
		a, b, b, a)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	items := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.SentAt, &m.EditedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// CreatePayment stores a status-only payment record for a booking.
func (db *DB) CreatePayment(ctx context.Context, p *models.Payment) error {
	if _, err := db.GetBooking(ctx, p.BookingID); err != nil {
		return err
	}
	if p.PaymentStatus == "" {
		p.PaymentStatus = models.PaymentPending
	}
	now := time.Now().In(db.loc)
	if p.PaymentDate.IsZero() {
		p.PaymentDate = now
	}
	result, err := db.ExecContext(ctx, `
		INSERT INTO payments (booking_id, payment_date, amount, payment_method, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.BookingID, p.PaymentDate, p.Amount.String(), p.PaymentMethod, string(p.PaymentStatus), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// ListBookingPayments returns payments recorded against a booking.
func (db *DB) ListBookingPayments(ctx context.Context, bookingID int64) ([]models.Payment, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, booking_id, payment_date, amount, payment_method, payment_status, created_at, updated_at
		FROM payments WHERE booking_id = ? ORDER BY payment_date`,
		bookingID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	items := make([]models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		var status string
		if err := rows.Scan(&p.ID, &p.BookingID, &p.PaymentDate, &p.Amount, &p.PaymentMethod, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.PaymentStatus = models.PaymentStatus(status)
		items = append(items, p)
	}
	return items, rows.Err()
}
