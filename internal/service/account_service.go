package service

import (
	"context"
	"strings"

	"venuebook/internal/apperr"
	"venuebook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrBadAccount = apperr.New(apperr.Validation, "name and email are required")

// AccountRepository is the slice of the store used for accounts.
type AccountRepository interface {
	CreateUser(ctx context.Context, u *models.User, apiToken string) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// AccountService registers customers and lists accounts.
type AccountService struct {
	repo   AccountRepository
	logger *zerolog.Logger
}

func NewAccountService(repo AccountRepository, logger *zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, logger: logger}
}

// Register creates a customer account and returns its API token. The
// token is shown once; only its owner ever sees it.
func (s *AccountService) Register(ctx context.Context, u *models.User) (string, error) {
	if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Email) == "" {
		return "", ErrBadAccount
	}
	if u.UserType == "" {
		u.UserType = models.RoleCustomer
	}
	token := uuid.NewString()
	if err := s.repo.CreateUser(ctx, u, token); err != nil {
		return "", err
	}
	s.logger.Info().Int64("user_id", u.ID).Str("role", string(u.UserType)).Msg("user registered")
	return token, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

// List returns all accounts. Admin only.
func (s *AccountService) List(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.repo.ListUsers(ctx)
}
