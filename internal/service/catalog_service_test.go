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

type mockCatalogRepo struct {
	mock.Mock
}

func (m *mockCatalogRepo) CreateService(ctx context.Context, s *models.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockCatalogRepo) GetService(ctx context.Context, id int64) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

func (m *mockCatalogRepo) ListServices(ctx context.Context) ([]models.Service, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Service), args.Error(1)
}

func (m *mockCatalogRepo) UpdateService(ctx context.Context, s *models.Service) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockCatalogRepo) DeleteService(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCatalogRepo) CreateGallery(ctx context.Context, g *models.Gallery) error {
	return m.Called(ctx, g).Error(0)
}

func (m *mockCatalogRepo) ListServiceGalleries(ctx context.Context, serviceID int64) ([]models.Gallery, error) {
	args := m.Called(ctx, serviceID)
	return args.Get(0).([]models.Gallery), args.Error(1)
}

func (m *mockCatalogRepo) DeleteGallery(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockCatalogCache struct {
	mock.Mock
}

func (m *mockCatalogCache) GetServices(ctx context.Context) ([]models.Service, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]models.Service), args.Bool(1)
}

func (m *mockCatalogCache) SetServices(ctx context.Context, services []models.Service) {
	m.Called(ctx, services)
}

func (m *mockCatalogCache) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	logger := zerolog.New(io.Discard)
	admin := models.Actor{ID: 1, Role: models.RoleAdmin}
	customer := models.Actor{ID: 7, Role: models.RoleCustomer}

	valid := func() *models.Service {
		return &models.Service{
			ServiceType:  "hall",
			ServiceName:  "Main Hall",
			PricePerHour: decimal.NewFromInt(5000),
		}
	}

	t.Run("CreateRequiresAdmin", func(t *testing.T) {
		svc := NewCatalogService(new(mockCatalogRepo), nil, &logger)
		err := svc.Create(ctx, customer, valid())
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("CreateValidates", func(t *testing.T) {
		svc := NewCatalogService(new(mockCatalogRepo), nil, &logger)
		bad := valid()
		bad.PricePerHour = decimal.Zero
		err := svc.Create(ctx, admin, bad)
		assert.ErrorIs(t, err, ErrBadServiceData)
	})

	t.Run("CreateInvalidatesCache", func(t *testing.T) {
		repo := new(mockCatalogRepo)
		cache := new(mockCatalogCache)
		svc := NewCatalogService(repo, cache, &logger)

		repo.On("CreateService", ctx, mock.Anything).Return(nil).Once()
		cache.On("Invalidate", ctx).Once()

		err := svc.Create(ctx, admin, valid())
		assert.NoError(t, err)
		cache.AssertExpectations(t)
	})

	t.Run("ListCacheHit", func(t *testing.T) {
		repo := new(mockCatalogRepo)
		cache := new(mockCatalogCache)
		svc := NewCatalogService(repo, cache, &logger)

		cached := []models.Service{{ID: 1, ServiceName: "Pool"}}
		cache.On("GetServices", ctx).Return(cached, true).Once()

		got, err := svc.List(ctx)
		assert.NoError(t, err)
		assert.Equal(t, cached, got)
		repo.AssertNotCalled(t, "ListServices", mock.Anything)
	})

	t.Run("ListCacheMiss", func(t *testing.T) {
		repo := new(mockCatalogRepo)
		cache := new(mockCatalogCache)
		svc := NewCatalogService(repo, cache, &logger)

		fresh := []models.Service{{ID: 2, ServiceName: "Grounds"}}
		cache.On("GetServices", ctx).Return(nil, false).Once()
		repo.On("ListServices", ctx).Return(fresh, nil).Once()
		cache.On("SetServices", ctx, fresh).Once()

		got, err := svc.List(ctx)
		assert.NoError(t, err)
		assert.Equal(t, fresh, got)
		cache.AssertExpectations(t)
	})

	t.Run("GalleryRequiresAdmin", func(t *testing.T) {
		svc := NewCatalogService(new(mockCatalogRepo), nil, &logger)
		err := svc.AddGalleryImage(ctx, customer, &models.Gallery{ImageURL: "x.jpg", ServiceID: 1})
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("DeleteRequiresAdmin", func(t *testing.T) {
		svc := NewCatalogService(new(mockCatalogRepo), nil, &logger)
		err := svc.Delete(ctx, customer, 1)
		assert.ErrorIs(t, err, ErrAdminOnly)
	})
}
