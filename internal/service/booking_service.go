// Package service implements the caller-facing orchestrators. They
// validate and authorize, then delegate to the repository; no state is
// held between calls.
package service

import (
	"context"
	"errors"
	"time"

	"venuebook/internal/apperr"
	"venuebook/internal/database"
	"venuebook/internal/events"
	"venuebook/internal/lifecycle"
	"venuebook/internal/metrics"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
)

// Validation sentinels shared by create and update.
var (
	ErrMissingFields  = apperr.New(apperr.Validation, "all fields are required")
	ErrBadDate        = apperr.New(apperr.Validation, "invalid date format: use YYYY-MM-DD")
	ErrPastDate       = apperr.New(apperr.Validation, "booking date cannot be in the past")
	ErrDateTooFar     = apperr.New(apperr.Validation, "booking date is too far in the future")
	ErrUnknownService = apperr.New(apperr.Validation, "service not found")
	ErrNotPermitted   = apperr.New(apperr.Unauthorized, "you are not authorised to access this booking")
)

// BookingRepository is the slice of the store the orchestrator needs.
type BookingRepository interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]models.Booking, error)
	ListServiceBookingsOn(ctx context.Context, serviceID int64, date time.Time) ([]models.Booking, error)
	UpdateBooking(ctx context.Context, id int64, patch database.BookingPatch) (*models.Booking, error)
	TransitionBooking(ctx context.Context, actor models.Actor, id int64, event lifecycle.Event, now time.Time) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	GetServiceByName(ctx context.Context, name string) (*models.Service, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// EventPublisher publishes domain events after commits.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingService orchestrates booking use cases.
type BookingService struct {
	repo           BookingRepository
	bus            EventPublisher
	loc            *time.Location
	maxAdvanceDays int
	logger         *zerolog.Logger
	now            func() time.Time
}

// NewBookingService creates the orchestrator.
func NewBookingService(repo BookingRepository, bus EventPublisher, loc *time.Location, maxAdvanceDays int, logger *zerolog.Logger) *BookingService {
	if loc == nil {
		loc = time.Local
	}
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = 365
	}
	return &BookingService{
		repo:           repo,
		bus:            bus,
		loc:            loc,
		maxAdvanceDays: maxAdvanceDays,
		logger:         logger,
		now:            time.Now,
	}
}

// CreateBookingInput carries the raw caller input for a new booking.
type CreateBookingInput struct {
	ServiceName string
	BookingDate string // YYYY-MM-DD
	StartTime   string // HH:MM
	EndTime     string // HH:MM
}

// bookingEvent is the payload published on the event bus.
type bookingEvent struct {
	BookingID int64         `json:"booking_id"`
	UserID    int64         `json:"user_id"`
	ServiceID int64         `json:"service_id"`
	Status    models.Status `json:"status"`
	Event     string        `json:"event,omitempty"`
}

// Create validates input, resolves the service by name and inserts the
// booking. The price and overlap invariants are enforced inside the
// repository's transaction.
func (s *BookingService) Create(ctx context.Context, actor models.Actor, in CreateBookingInput) (*models.Booking, error) {
	if in.ServiceName == "" || in.BookingDate == "" || in.StartTime == "" || in.EndTime == "" {
		return nil, ErrMissingFields
	}

	date, err := s.parseBookingDate(in.BookingDate)
	if err != nil {
		return nil, err
	}
	start, end, err := parseInterval(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	svc, err := s.repo.GetServiceByName(ctx, in.ServiceName)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUnknownService
		}
		return nil, err
	}

	b := &models.Booking{
		ServiceID:   svc.ID,
		UserID:      actor.ID,
		BookingDate: date,
		StartTime:   start,
		EndTime:     end,
	}
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		if errors.Is(err, database.ErrOverlap) {
			metrics.IncOverlapConflict()
		}
		return nil, err
	}

	metrics.IncBookingCreated(string(b.Status))
	s.publish(events.BookingCreated, b, "")
	s.logger.Info().
		Int64("booking_id", b.ID).
		Int64("user_id", b.UserID).
		Int64("service_id", b.ServiceID).
		Msg("booking created")
	return b, nil
}

// List returns all bookings, most recent date first.
func (s *BookingService) List(ctx context.Context) ([]models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

// ListForUser returns a user's bookings. Only the user themselves or
// an admin may read them.
func (s *BookingService) ListForUser(ctx context.Context, actor models.Actor, userID int64) ([]models.Booking, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, ErrNotPermitted
	}
	return s.repo.ListUserBookings(ctx, userID)
}

// DaySchedule returns the occupied slots for a service on a given day,
// so callers can see what is free before booking. Cancelled bookings do
// not occupy a slot and are excluded by the repository.
func (s *BookingService) DaySchedule(ctx context.Context, serviceID int64, rawDate string) ([]models.Booking, error) {
	date, err := time.ParseInLocation("2006-01-02", rawDate, s.loc)
	if err != nil {
		return nil, ErrBadDate
	}
	return s.repo.ListServiceBookingsOn(ctx, serviceID, date)
}

// Get returns a booking by id.
func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// UpdateBookingInput carries optional fields for a booking update.
// Empty strings leave the field unchanged.
type UpdateBookingInput struct {
	ServiceName string
	BookingDate string
	StartTime   string
	EndTime     string
}

// Update patches a booking's schedule or target service. Price is
// re-derived and the overlap check re-run (excluding the booking
// itself) inside the repository's transaction.
func (s *BookingService) Update(ctx context.Context, actor models.Actor, id int64, in UpdateBookingInput) (*models.Booking, error) {
	current, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(current) {
		return nil, ErrNotPermitted
	}

	var patch database.BookingPatch

	if in.ServiceName != "" {
		svc, err := s.repo.GetServiceByName(ctx, in.ServiceName)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, ErrUnknownService
			}
			return nil, err
		}
		patch.ServiceID = &svc.ID
	}
	if in.BookingDate != "" {
		date, err := s.parseBookingDate(in.BookingDate)
		if err != nil {
			return nil, err
		}
		patch.BookingDate = &date
	}
	if in.StartTime != "" {
		start, err := models.ParseTimeOfDay(in.StartTime)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, err, "invalid start time")
		}
		patch.StartTime = &start
	}
	if in.EndTime != "" {
		end, err := models.ParseTimeOfDay(in.EndTime)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, err, "invalid end time")
		}
		patch.EndTime = &end
	}

	updated, err := s.repo.UpdateBooking(ctx, id, patch)
	if err != nil {
		if errors.Is(err, database.ErrOverlap) {
			metrics.IncOverlapConflict()
		}
		return nil, err
	}

	s.publish(events.BookingUpdated, updated, "")
	return updated, nil
}

// Transition applies a lifecycle event to a booking. Role, state and
// time guards are evaluated by the state machine inside the
// repository's transaction.
func (s *BookingService) Transition(ctx context.Context, actor models.Actor, id int64, event lifecycle.Event) (*models.Booking, error) {
	b, err := s.repo.TransitionBooking(ctx, actor, id, event, s.now().In(s.loc))
	if err != nil {
		metrics.IncBookingTransition(string(event), "rejected")
		return nil, err
	}

	metrics.IncBookingTransition(string(event), "ok")
	s.publish(events.BookingTransitioned, b, string(event))
	s.logger.Info().
		Int64("booking_id", b.ID).
		Str("event", string(event)).
		Str("status", string(b.Status)).
		Msg("booking transitioned")
	return b, nil
}

// Delete removes a booking. Owner or admin only.
func (s *BookingService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !actor.Owns(b) {
		return ErrNotPermitted
	}
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}
	s.publish(events.BookingDeleted, b, "")
	return nil
}

func (s *BookingService) parseBookingDate(raw string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", raw, s.loc)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	today := models.DateOnly(s.now().In(s.loc))
	if date.Before(today) {
		return time.Time{}, ErrPastDate
	}
	if date.After(today.AddDate(0, 0, s.maxAdvanceDays)) {
		return time.Time{}, ErrDateTooFar
	}
	return date, nil
}

func parseInterval(startRaw, endRaw string) (models.TimeOfDay, models.TimeOfDay, error) {
	start, err := models.ParseTimeOfDay(startRaw)
	if err != nil {
		return "", "", apperr.Wrap(apperr.Validation, err, "invalid start time")
	}
	end, err := models.ParseTimeOfDay(endRaw)
	if err != nil {
		return "", "", apperr.Wrap(apperr.Validation, err, "invalid end time")
	}
	return start, end, nil
}

func (s *BookingService) publish(eventType string, b *models.Booking, event string) {
	if s.bus == nil {
		return
	}
	payload := bookingEvent{
		BookingID: b.ID,
		UserID:    b.UserID,
		ServiceID: b.ServiceID,
		Status:    b.Status,
		Event:     event,
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("type", eventType).Msg("publish event")
	}
}
