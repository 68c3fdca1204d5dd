package service

import (
	"context"
	"io"
	"testing"
	"time"

	"venuebook/internal/database"
	"venuebook/internal/lifecycle"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepo) ListBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockRepo) ListUserBookings(ctx context.Context, userID int64) ([]models.Booking, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockRepo) ListServiceBookingsOn(ctx context.Context, serviceID int64, date time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, serviceID, date)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockRepo) UpdateBooking(ctx context.Context, id int64, patch database.BookingPatch) (*models.Booking, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepo) TransitionBooking(ctx context.Context, actor models.Actor, id int64, event lifecycle.Event, now time.Time) (*models.Booking, error) {
	args := m.Called(ctx, actor, id, event, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockRepo) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *mockRepo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

func newTestService(repo *mockRepo, bus *mockEventBus) *BookingService {
	logger := zerolog.New(io.Discard)
	svc := NewBookingService(repo, bus, time.UTC, 30, &logger)
	svc.now = func() time.Time {
		return time.Date(2030, time.January, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestBookingServiceCreate(t *testing.T) {
	ctx := context.Background()
	customer := models.Actor{ID: 7, Role: models.RoleCustomer}

	t.Run("MissingFields", func(t *testing.T) {
		svc := newTestService(new(mockRepo), new(mockEventBus))
		_, err := svc.Create(ctx, customer, CreateBookingInput{ServiceName: "Main Hall"})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("BadDate", func(t *testing.T) {
		svc := newTestService(new(mockRepo), new(mockEventBus))
		_, err := svc.Create(ctx, customer, CreateBookingInput{
			ServiceName: "Main Hall",
			BookingDate: "15-01-2030",
			StartTime:   "09:00",
			EndTime:     "11:00",
		})
		assert.ErrorIs(t, err, ErrBadDate)
	})

	t.Run("PastDate", func(t *testing.T) {
		svc := newTestService(new(mockRepo), new(mockEventBus))
		_, err := svc.Create(ctx, customer, CreateBookingInput{
			ServiceName: "Main Hall",
			BookingDate: "2030-01-09",
			StartTime:   "09:00",
			EndTime:     "11:00",
		})
		assert.ErrorIs(t, err, ErrPastDate)
	})

	t.Run("TooFarAhead", func(t *testing.T) {
		svc := newTestService(new(mockRepo), new(mockEventBus))
		_, err := svc.Create(ctx, customer, CreateBookingInput{
			ServiceName: "Main Hall",
			BookingDate: "2030-03-01",
			StartTime:   "09:00",
			EndTime:     "11:00",
		})
		assert.ErrorIs(t, err, ErrDateTooFar)
	})

	t.Run("UnknownService", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockEventBus))
		repo.On("GetServiceByName", ctx, "Nope").Return(nil, database.ErrNotFound).Once()

		_, err := svc.Create(ctx, customer, CreateBookingInput{
			ServiceName: "Nope",
			BookingDate: "2030-01-15",
			StartTime:   "09:00",
			EndTime:     "11:00",
		})
		assert.ErrorIs(t, err, ErrUnknownService)
		repo.AssertExpectations(t)
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newTestService(repo, bus)

		repo.On("GetServiceByName", ctx, "Main Hall").
			Return(&models.Service{ID: 3, ServiceName: "Main Hall"}, nil).Once()
		repo.On("CreateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.ServiceID == 3 && b.UserID == 7 &&
				b.StartTime == "09:00" && b.EndTime == "11:00"
		})).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

		b, err := svc.Create(ctx, customer, CreateBookingInput{
			ServiceName: "Main Hall",
			BookingDate: "2030-01-15",
			StartTime:   "09:00",
			EndTime:     "11:00",
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(3), b.ServiceID)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("OverlapPropagated", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockEventBus))

		repo.On("GetServiceByName", ctx, "Main Hall").
			Return(&models.Service{ID: 3, ServiceName: "Main Hall"}, nil).Once()
		repo.On("CreateBooking", ctx, mock.Anything).Return(database.ErrOverlap).Once()

		_, err := svc.Create(ctx, customer, CreateBookingInput{
			ServiceName: "Main Hall",
			BookingDate: "2030-01-15",
			StartTime:   "09:00",
			EndTime:     "11:00",
		})
		assert.ErrorIs(t, err, database.ErrOverlap)
		repo.AssertExpectations(t)
	})
}

func TestBookingServiceListForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnerAllowed", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockEventBus))
		repo.On("GetUser", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()
		repo.On("ListUserBookings", ctx, int64(7)).Return([]models.Booking{{ID: 1}}, nil).Once()

		got, err := svc.ListForUser(ctx, models.Actor{ID: 7, Role: models.RoleCustomer}, 7)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("AdminAllowed", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockEventBus))
		repo.On("GetUser", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()
		repo.On("ListUserBookings", ctx, int64(7)).Return([]models.Booking{}, nil).Once()

		_, err := svc.ListForUser(ctx, models.Actor{ID: 1, Role: models.RoleAdmin}, 7)
		assert.NoError(t, err)
	})

	t.Run("StrangerRejected", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockEventBus))
		repo.On("GetUser", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()

		_, err := svc.ListForUser(ctx, models.Actor{ID: 2, Role: models.RoleCustomer}, 7)
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockEventBus))
		repo.On("GetUser", ctx, int64(99)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.ListForUser(ctx, models.Actor{ID: 1, Role: models.RoleAdmin}, 99)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}

func TestBookingServiceUpdate(t *testing.T) {
	ctx := context.Background()
	owned := &models.Booking{ID: 5, UserID: 7, ServiceID: 3, Status: models.StatusConfirmed}

	t.Run("OwnerPatchesTimes", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newTestService(repo, bus)

		repo.On("GetBooking", ctx, int64(5)).Return(owned, nil).Once()
		repo.On("UpdateBooking", ctx, int64(5), mock.MatchedBy(func(p database.BookingPatch) bool {
			return p.ServiceID == nil && p.BookingDate == nil &&
				p.StartTime != nil && *p.StartTime == "10:00" &&
				p.EndTime != nil && *p.EndTime == "12:00"
		})).Return(owned, nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := svc.Update(ctx, models.Actor{ID: 7, Role: models.RoleCustomer}, 5, UpdateBookingInput{
			StartTime: "10:00",
			EndTime:   "12:00",
		})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("StrangerRejected", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockEventBus))
		repo.On("GetBooking", ctx, int64(5)).Return(owned, nil).Once()

		_, err := svc.Update(ctx, models.Actor{ID: 2, Role: models.RoleCustomer}, 5, UpdateBookingInput{
			StartTime: "10:00",
		})
		assert.ErrorIs(t, err, ErrNotPermitted)
	})

	t.Run("BadTimeFormat", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockEventBus))
		repo.On("GetBooking", ctx, int64(5)).Return(owned, nil).Once()

		_, err := svc.Update(ctx, models.Actor{ID: 7, Role: models.RoleCustomer}, 5, UpdateBookingInput{
			StartTime: "9am",
		})
		assert.Error(t, err)
	})
}

func TestBookingServiceTransition(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{ID: 7, Role: models.RoleCustomer}

	t.Run("Applied", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newTestService(repo, bus)

		cancelled := &models.Booking{ID: 5, UserID: 7, Status: models.StatusCancelled}
		repo.On("TransitionBooking", ctx, actor, int64(5), lifecycle.EventCancel, mock.Anything).
			Return(cancelled, nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

		b, err := svc.Transition(ctx, actor, 5, lifecycle.EventCancel)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, b.Status)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
	})

	t.Run("GuardFailurePropagated", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newTestService(repo, bus)

		repo.On("TransitionBooking", ctx, actor, int64(5), lifecycle.EventCancel, mock.Anything).
			Return(nil, lifecycle.ErrTooLateToCancel).Once()

		_, err := svc.Transition(ctx, actor, 5, lifecycle.EventCancel)
		assert.ErrorIs(t, err, lifecycle.ErrTooLateToCancel)
		bus.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	})
}

func TestBookingServiceDelete(t *testing.T) {
	ctx := context.Background()
	owned := &models.Booking{ID: 5, UserID: 7}

	t.Run("OwnerDeletes", func(t *testing.T) {
		repo := new(mockRepo)
		bus := new(mockEventBus)
		svc := newTestService(repo, bus)

		repo.On("GetBooking", ctx, int64(5)).Return(owned, nil).Once()
		repo.On("DeleteBooking", ctx, int64(5)).Return(nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

		err := svc.Delete(ctx, models.Actor{ID: 7, Role: models.RoleCustomer}, 5)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("StrangerRejected", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockEventBus))
		repo.On("GetBooking", ctx, int64(5)).Return(owned, nil).Once()

		err := svc.Delete(ctx, models.Actor{ID: 2, Role: models.RoleCustomer}, 5)
		assert.ErrorIs(t, err, ErrNotPermitted)
	})
}
