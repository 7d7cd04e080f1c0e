package auth

import (
	"context"
	"errors"

	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
	"github.com/carlosapgomes/eqmd-sub007/pkg/auth"
	"github.com/carlosapgomes/eqmd-sub007/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	jwtSvc *auth.JWTService
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, jwtSvc *auth.JWTService) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		jwtSvc: jwtSvc,
	}
}

// Login verifies credentials and issues an access token. Deactivated
// accounts cannot log in.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwtSvc.GenerateToken(user.ID, user.Email)
}
