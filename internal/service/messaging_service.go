package service

import (
	"context"

	"venuebook/internal/apperr"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyMessage   = apperr.New(apperr.Validation, "message content is required")
	ErrBadFeedback    = apperr.New(apperr.Validation, "name and message are required")
	ErrBadPayment     = apperr.New(apperr.Validation, "a positive amount and a payment method are required")
	ErrSelfMessage    = apperr.New(apperr.Validation, "cannot send a message to yourself")
	ErrNotParticipant = apperr.New(apperr.Unauthorized, "you are not part of this conversation")
)

// MessagingRepository is the slice of the store used for feedback,
// direct messages and payment records.
type MessagingRepository interface {
	CreateFeedback(ctx context.Context, f *models.Feedback) error
	ListFeedback(ctx context.Context) ([]models.Feedback, error)
	DeleteFeedback(ctx context.Context, id int64) error
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessagesBetween(ctx context.Context, a, b int64) ([]models.Message, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	ListBookingPayments(ctx context.Context, bookingID int64) ([]models.Payment, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
}

// MessagingService handles visitor feedback, user-to-user messages and
// status-only payment records.
type MessagingService struct {
	repo   MessagingRepository
	logger *zerolog.Logger
}

func NewMessagingService(repo MessagingRepository, logger *zerolog.Logger) *MessagingService {
	return &MessagingService{repo: repo, logger: logger}
}

// SubmitFeedback records anonymous visitor feedback. No account is
// required.
func (s *MessagingService) SubmitFeedback(ctx context.Context, f *models.Feedback) error {
	if f.Name == "" || f.Message == "" {
		return ErrBadFeedback
	}
	return s.repo.CreateFeedback(ctx, f)
}

func (s *MessagingService) ListFeedback(ctx context.Context, actor models.Actor) ([]models.Feedback, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.repo.ListFeedback(ctx)
}

func (s *MessagingService) DeleteFeedback(ctx context.Context, actor models.Actor, id int64) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	return s.repo.DeleteFeedback(ctx, id)
}

// Send delivers a direct message from the actor to another user.
func (s *MessagingService) Send(ctx context.Context, actor models.Actor, recipientID int64, content string) (*models.Message, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if recipientID == actor.ID {
		return nil, ErrSelfMessage
	}
	m := &models.Message{
		SenderID:    actor.ID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Conversation returns the messages exchanged between the actor and
// another user. Admins may read any pair.
func (s *MessagingService) Conversation(ctx context.Context, actor models.Actor, a, b int64) ([]models.Message, error) {
	if !actor.IsAdmin() && actor.ID != a && actor.ID != b {
		return nil, ErrNotParticipant
	}
	return s.repo.ListMessagesBetween(ctx, a, b)
}

// RecordPayment attaches a payment record to a booking. Records carry
// a status only; no payment provider is involved.
func (s *MessagingService) RecordPayment(ctx context.Context, actor models.Actor, p *models.Payment) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	if !p.Amount.GreaterThan(decimal.Zero) || p.PaymentMethod == "" {
		return ErrBadPayment
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return err
	}
	s.logger.Info().
		Int64("booking_id", p.BookingID).
		Str("status", string(p.PaymentStatus)).
		Msg("payment recorded")
	return nil
}

// BookingPayments lists the payment records of a booking for its
// owner or an admin.
func (s *MessagingService) BookingPayments(ctx context.Context, actor models.Actor, bookingID int64) ([]models.Payment, error) {
	b, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(b) {
		return nil, ErrNotPermitted
	}
	return s.repo.ListBookingPayments(ctx, bookingID)
}
