package service

import (
	"context"

	"venuebook/internal/apperr"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrAdminOnly      = apperr.New(apperr.Unauthorized, "administrator access required")
	ErrBadServiceData = apperr.New(apperr.Validation, "service name, type and a positive hourly price are required")
)

// CatalogRepository is the slice of the store the catalog needs.
type CatalogRepository interface {
	CreateService(ctx context.Context, s *models.Service) error
	GetService(ctx context.Context, id int64) (*models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	UpdateService(ctx context.Context, s *models.Service) error
	DeleteService(ctx context.Context, id int64) error
	CreateGallery(ctx context.Context, g *models.Gallery) error
	ListServiceGalleries(ctx context.Context, serviceID int64) ([]models.Gallery, error)
	DeleteGallery(ctx context.Context, id int64) error
}

// CatalogCache is a read-through cache over the service list. A nil
// cache disables caching.
type CatalogCache interface {
	GetServices(ctx context.Context) ([]models.Service, bool)
	SetServices(ctx context.Context, services []models.Service)
	Invalidate(ctx context.Context)
}

// CatalogService manages the bookable facility catalog and its
// galleries. Writes are admin-only.
type CatalogService struct {
	repo   CatalogRepository
	cache  CatalogCache
	logger *zerolog.Logger
}

func NewCatalogService(repo CatalogRepository, cache CatalogCache, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

// List returns the catalog, served from cache when warm.
func (s *CatalogService) List(ctx context.Context) ([]models.Service, error) {
	if s.cache != nil {
		if services, ok := s.cache.GetServices(ctx); ok {
			return services, nil
		}
	}
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetServices(ctx, services)
	}
	return services, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Service, error) {
	return s.repo.GetService(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, actor models.Actor, svc *models.Service) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	if err := validateService(svc); err != nil {
		return err
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info().Int64("service_id", svc.ID).Str("name", svc.ServiceName).Msg("service created")
	return nil
}

func (s *CatalogService) Update(ctx context.Context, actor models.Actor, svc *models.Service) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	if err := validateService(svc); err != nil {
		return err
	}
	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes a service together with its gallery. Existing
// bookings keep their committed price and are left in place.
func (s *CatalogService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info().Int64("service_id", id).Msg("service deleted")
	return nil
}

func (s *CatalogService) AddGalleryImage(ctx context.Context, actor models.Actor, g *models.Gallery) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	if g.ImageURL == "" {
		return apperr.New(apperr.Validation, "image url is required")
	}
	return s.repo.CreateGallery(ctx, g)
}

func (s *CatalogService) ListGalleries(ctx context.Context, serviceID int64) ([]models.Gallery, error) {
	return s.repo.ListServiceGalleries(ctx, serviceID)
}

func (s *CatalogService) DeleteGalleryImage(ctx context.Context, actor models.Actor, id int64) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	return s.repo.DeleteGallery(ctx, id)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func validateService(svc *models.Service) error {
	if svc.ServiceName == "" || svc.ServiceType == "" || !svc.PricePerHour.GreaterThan(decimal.Zero) {
		return ErrBadServiceData
	}
	return nil
}
