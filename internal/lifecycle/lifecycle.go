// Package lifecycle governs booking status transitions.
package lifecycle

import (
	"time"

	"venuebook/internal/apperr"
	"venuebook/internal/models"
)

// Event is a requested status transition.
type Event string

const (
	EventCancel   Event = "cancel"
	EventUncancel Event = "uncancel"
	EventComplete Event = "complete"
	EventMissed   Event = "missed"
)

// Guard failures are sentinel errors so callers can render precise
// messages. All of them classify as Conflict except the role check.
var (
	ErrIllegalTransition = apperr.New(apperr.Conflict, "transition is not allowed from the current status")
	ErrAlreadyCancelled  = apperr.New(apperr.Conflict, "booking already cancelled")
	ErrNotCancelled      = apperr.New(apperr.Conflict, "booking is not cancelled")
	ErrAlreadyFinalized  = apperr.New(apperr.Conflict, "booking already completed or missed")
	ErrTooLateToCancel   = apperr.New(apperr.Conflict, "booking cannot be cancelled less than 1 day before the booking date")
	ErrTooLateToUncancel = apperr.New(apperr.Conflict, "cancellation cannot be undone less than 1 day before the booking date")
	ErrNotYetStartable   = apperr.New(apperr.Conflict, "booking cannot be completed before its start time or booking date")
	ErrNotYetDue         = apperr.New(apperr.Conflict, "booking cannot be marked missed before its end time has passed")
	ErrNotPermitted      = apperr.New(apperr.Unauthorized, "actor is not permitted to perform this transition")
)

// targets maps each event to the status it produces.
var targets = map[Event]models.Status{
	EventCancel:   models.StatusCancelled,
	EventUncancel: models.StatusConfirmed,
	EventComplete: models.StatusCompleted,
	EventMissed:   models.StatusMissed,
}

// sources maps each event to the statuses it may fire from.
var sources = map[Event][]models.Status{
	EventCancel:   {models.StatusConfirmed},
	EventUncancel: {models.StatusCancelled},
	EventComplete: {models.StatusConfirmed},
	EventMissed:   {models.StatusConfirmed},
}

// CanTransition is the single authorization policy for status
// transitions. Cancelling and uncancelling belong to the owner or an
// admin; completing and marking missed certify real-world attendance
// and are admin only.
func CanTransition(actor models.Actor, b *models.Booking, event Event) bool {
	switch event {
	case EventCancel, EventUncancel:
		return actor.IsAdmin() || actor.Owns(b)
	case EventComplete, EventMissed:
		return actor.IsAdmin()
	default:
		return false
	}
}

// Machine evaluates transition guards against wall-clock time in a
// fixed location.
type Machine struct {
	loc *time.Location
}

// NewMachine creates a machine evaluating guards in loc.
func NewMachine(loc *time.Location) *Machine {
	if loc == nil {
		loc = time.Local
	}
	return &Machine{loc: loc}
}

// Target returns the status the event produces.
func (m *Machine) Target(event Event) (models.Status, bool) {
	s, ok := targets[event]
	return s, ok
}

// Apply validates the transition and returns the resulting status.
// It checks, in order: the actor's role, the current status, and the
// event's time guard. It never mutates the booking.
func (m *Machine) Apply(actor models.Actor, b *models.Booking, event Event, now time.Time) (models.Status, error) {
	target, ok := targets[event]
	if !ok {
		return "", ErrIllegalTransition
	}
	if !CanTransition(actor, b, event) {
		return "", ErrNotPermitted
	}
	if err := m.checkSource(b.Status, event); err != nil {
		return "", err
	}
	if err := m.checkGuard(b, event, now.In(m.loc)); err != nil {
		return "", err
	}
	return target, nil
}

func (m *Machine) checkSource(from models.Status, event Event) error {
	for _, s := range sources[event] {
		if s == from {
			return nil
		}
	}
	switch {
	case event == EventUncancel:
		return ErrNotCancelled
	case from == models.StatusCancelled:
		return ErrAlreadyCancelled
	case from.Terminal():
		return ErrAlreadyFinalized
	default:
		return ErrIllegalTransition
	}
}

func (m *Machine) checkGuard(b *models.Booking, event Event, now time.Time) error {
	today := models.DateOnly(now)
	bookingDate := models.DateOnly(b.BookingDate)

	switch event {
	case EventCancel:
		// At least one full day of notice before the booking date.
		if !today.Before(bookingDate) {
			return ErrTooLateToCancel
		}
	case EventUncancel:
		// Same notice window, evaluated against the original date.
		if !today.Before(bookingDate) {
			return ErrTooLateToUncancel
		}
	case EventComplete:
		// The booking date has been reached or the slot has started.
		if !now.Before(b.StartAt(m.loc)) || today.Equal(bookingDate) {
			return nil
		}
		return ErrNotYetStartable
	case EventMissed:
		// The slot's end has passed.
		if today.After(bookingDate) {
			return nil
		}
		if today.Equal(bookingDate) && now.After(b.EndAt(m.loc)) {
			return nil
		}
		return ErrNotYetDue
	}
	return nil
}
