package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
	"github.com/carlosapgomes/eqmd-sub007/pkg/security"
)

// Invalidator is the slice of the permission cache this service needs:
// any mutation of a user's role context must orphan that user's cached
// decisions before the next check runs.
type Invalidator interface {
	InvalidateUser(ctx context.Context, userID uuid.UUID)
}

type Service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
	cache  Invalidator
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, cache Invalidator) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		cache:  cache,
	}
}

// Provision creates a staff account with its profession group
// membership. Accounts start active.
func (s *Service) Provision(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	profession := model.ProfessionFromString(req.Profession)
	if profession == model.ProfessionUnknown {
		return nil, fmt.Errorf("unknown profession: %s", req.Profession)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Profession:   profession,
		IsActive:     true,
		Groups:       []string{model.ExpectedGroup(profession)},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.Get(ctx, id)
}

// Deactivate disables an account. Accounts are never deleted.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, id)
	return nil
}

// ChangeProfession is the administrative path for reclassifying a user.
// The matching group memberships are swapped along with the enum.
func (s *Service) ChangeProfession(ctx context.Context, id uuid.UUID, profession model.Profession) error {
	if model.ExpectedGroup(profession) == "" {
		return fmt.Errorf("unknown profession")
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetProfession(ctx, id, profession); err != nil {
		return err
	}
	if old := model.ExpectedGroup(user.Profession); old != "" {
		if err := s.repo.RemoveFromGroup(ctx, id, old); err != nil {
			return err
		}
	}
	if err := s.repo.AddToGroup(ctx, id, model.ExpectedGroup(profession)); err != nil {
		return err
	}

	s.cache.InvalidateUser(ctx, id)
	return nil
}

func (s *Service) AddToGroup(ctx context.Context, id uuid.UUID, group string) error {
	if err := s.repo.AddToGroup(ctx, id, group); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, id)
	return nil
}

func (s *Service) RemoveFromGroup(ctx context.Context, id uuid.UUID, group string) error {
	if err := s.repo.RemoveFromGroup(ctx, id, group); err != nil {
		return err
	}
	s.cache.InvalidateUser(ctx, id)
	return nil
}
