package service

import (
	"context"
	"io"
	"testing"

	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockMessagingRepo struct {
	mock.Mock
}

func (m *mockMessagingRepo) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockMessagingRepo) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Feedback), args.Error(1)
}

func (m *mockMessagingRepo) DeleteFeedback(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockMessagingRepo) CreateMessage(ctx context.Context, msg *models.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessagingRepo) ListMessagesBetween(ctx context.Context, a, b int64) ([]models.Message, error) {
	args := m.Called(ctx, a, b)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *mockMessagingRepo) CreatePayment(ctx context.Context, p *models.Payment) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockMessagingRepo) ListBookingPayments(ctx context.Context, bookingID int64) ([]models.Payment, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockMessagingRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func TestMessagingService(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	admin := models.Actor{ID: 1, Role: models.RoleAdmin}
	customer := models.Actor{ID: 7, Role: models.RoleCustomer}

	t.Run("FeedbackOpenToAnyone", func(t *testing.T) {
		repo := new(mockMessagingRepo)
		svc := NewMessagingService(repo, &logger)
		repo.On("CreateFeedback", ctx, mock.Anything).Return(nil).Once()

		err := svc.SubmitFeedback(ctx, &models.Feedback{Name: "Visitor", Message: "Great pool"})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("FeedbackValidated", func(t *testing.T) {
		svc := NewMessagingService(new(mockMessagingRepo), &logger)
		err := svc.SubmitFeedback(ctx, &models.Feedback{Name: "Visitor"})
		assert.ErrorIs(t, err, ErrBadFeedback)
	})

	t.Run("FeedbackListAdminOnly", func(t *testing.T) {
		svc := NewMessagingService(new(mockMessagingRepo), &logger)
		_, err := svc.ListFeedback(ctx, customer)
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("SendMessage", func(t *testing.T) {
		repo := new(mockMessagingRepo)
		svc := NewMessagingService(repo, &logger)
		repo.On("CreateMessage", ctx, mock.MatchedBy(func(m *models.Message) bool {
			return m.SenderID == 7 && m.RecipientID == 1 && m.Content == "hello"
		})).Return(nil).Once()

		m, err := svc.Send(ctx, customer, 1, "hello")
		assert.NoError(t, err)
		assert.Equal(t, int64(7), m.SenderID)
		repo.AssertExpectations(t)
	})

	t.Run("SendToSelfRejected", func(t *testing.T) {
		svc := NewMessagingService(new(mockMessagingRepo), &logger)
		_, err := svc.Send(ctx, customer, 7, "hello me")
		assert.ErrorIs(t, err, ErrSelfMessage)
	})

	t.Run("ConversationParticipantsOnly", func(t *testing.T) {
		repo := new(mockMessagingRepo)
		svc := NewMessagingService(repo, &logger)

		_, err := svc.Conversation(ctx, customer, 1, 2)
		assert.ErrorIs(t, err, ErrNotParticipant)

		repo.On("ListMessagesBetween", ctx, int64(7), int64(1)).Return([]models.Message{}, nil).Once()
		_, err = svc.Conversation(ctx, customer, 7, 1)
		assert.NoError(t, err)

		repo.On("ListMessagesBetween", ctx, int64(1), int64(2)).Return([]models.Message{}, nil).Once()
		_, err = svc.Conversation(ctx, admin, 1, 2)
		assert.NoError(t, err)
	})

	t.Run("PaymentAdminOnly", func(t *testing.T) {
		svc := NewMessagingService(new(mockMessagingRepo), &logger)
		err := svc.RecordPayment(ctx, customer, &models.Payment{
			BookingID:     5,
			Amount:        decimal.NewFromInt(100),
			PaymentMethod: "cash",
		})
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("PaymentValidated", func(t *testing.T) {
		svc := NewMessagingService(new(mockMessagingRepo), &logger)
		err := svc.RecordPayment(ctx, admin, &models.Payment{BookingID: 5, Amount: decimal.Zero})
		assert.ErrorIs(t, err, ErrBadPayment)
	})

	t.Run("BookingPaymentsOwnerOrAdmin", func(t *testing.T) {
		repo := new(mockMessagingRepo)
		svc := NewMessagingService(repo, &logger)
		owned := &models.Booking{ID: 5, UserID: 7}

		repo.On("GetBooking", ctx, int64(5)).Return(owned, nil)
		repo.On("ListBookingPayments", ctx, int64(5)).Return([]models.Payment{}, nil)

		_, err := svc.BookingPayments(ctx, customer, 5)
		assert.NoError(t, err)

		_, err = svc.BookingPayments(ctx, models.Actor{ID: 9, Role: models.RoleCustomer}, 5)
		assert.ErrorIs(t, err, ErrNotPermitted)
	})
}
