package services

import (
	"context"

	"github.com/dongwook32/web-hub/types"
)

// UserRepository defines persistence operations for user administration.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	SetAdmin(ctx context.Context, id int, isAdmin bool) (types.User, error)
}

// UserService encapsulates admin-facing user management.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

// ToggleAdmin flips the role flag and returns the updated user.
func (s *UserService) ToggleAdmin(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	return s.repo.SetAdmin(ctx, id, !user.IsAdmin)
}
