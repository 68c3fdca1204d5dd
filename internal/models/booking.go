package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle status of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
)

// Terminal reports whether no transition leads out of the status.
// The single modelled reversal cancelled -> confirmed keeps cancelled
// non-terminal.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusMissed
}

// Booking represents a single-day booking of a service slot.
type Booking struct {
	ID             int64           `json:"id"`
	ServiceID      int64           `json:"service_id"`
	UserID         int64           `json:"user_id"`
	BookingDate    time.Time       `json:"booking_date"` // date component only
	StartTime      TimeOfDay       `json:"start_time"`
	EndTime        TimeOfDay       `json:"end_time"`
	TotalUnitPrice decimal.Decimal `json:"total_unit_price"`
	Status         Status          `json:"booking_status"`
	ReminderSent   bool            `json:"reminder_sent"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int64           `json:"version"`
}

// StartAt returns the booking start as a timestamp in loc.
func (b *Booking) StartAt(loc *time.Location) time.Time {
	return b.at(b.StartTime, loc)
}

// EndAt returns the booking end as a timestamp in loc.
func (b *Booking) EndAt(loc *time.Location) time.Time {
	return b.at(b.EndTime, loc)
}

func (b *Booking) at(t TimeOfDay, loc *time.Location) time.Time {
	h, m := t.Clock()
	d := b.BookingDate
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, loc)
}

// Overlaps checks this booking against another interval on the same
// service and date. Intervals are half-open: a booking ending exactly
// when another starts does not overlap.
func (b *Booking) Overlaps(start, end TimeOfDay) bool {
	return b.StartTime < end && start < b.EndTime
}

// DateOnly truncates t to its calendar date in t's location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
