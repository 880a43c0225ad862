package user

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cvstudio/internal/domain"
	"cvstudio/internal/pkg/validator"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("user not found")
)

// Repository is the slice of the user store the module needs.
type Repository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, role domain.UserRole) ([]domain.User, error)
	UpdatePushToken(ctx context.Context, id int64, token string) error
}

// WelcomeNotifier greets new accounts; failures never fail user creation.
type WelcomeNotifier interface {
	NotifyWelcome(ctx context.Context, userID int64, name string) error
}

type Service struct {
	users  Repository
	notifs WelcomeNotifier
}

func NewService(users Repository, notifs WelcomeNotifier) *Service {
	return &Service{users: users, notifs: notifs}
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	if !domain.UserRole(req.Role).Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, req.Role)
	}

	u := &domain.User{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  domain.UserRole(req.Role),
	}

	if fields := validator.Validate(u); fields != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, fields)
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		if err := s.notifs.NotifyWelcome(ctx, u.ID, u.Name); err != nil {
			log.Printf("welcome notification failed user_id=%d: %v", u.ID, err)
		}
	}

	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	return s.users.List(ctx, role)
}

func (s *Service) UpdatePushToken(ctx context.Context, userID int64, token string) error {
	return s.users.UpdatePushToken(ctx, userID, token)
}
