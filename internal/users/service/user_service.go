package service

import (
	"context"
	"strings"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type Repository interface {
	Ensure(ctx context.Context, in domain.UpsertUser) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, includeInactive bool) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
}

type UserService struct {
	repo Repository
}

func NewUserService(repo Repository) *UserService {
	return &UserService{repo: repo}
}

// EnsureUser syncs identity-provider data, creating the user on first sight.
func (s *UserService) EnsureUser(ctx context.Context, in domain.UpsertUser) (*domain.User, error) {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return nil, apperr.Validation("id", "is required")
	}
	return s.repo.Ensure(ctx, in)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *UserService) List(ctx context.Context, includeInactive bool) ([]domain.User, error) {
	return s.repo.List(ctx, includeInactive)
}

// ChangeRole is admin-only.
func (s *UserService) ChangeRole(ctx context.Context, actor domain.Actor, id string, role domain.Role) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can change roles")
	}
	if !role.Valid() {
		return nil, apperr.Validation("role", "invalid role %q", role)
	}
	return s.repo.UpdateRole(ctx, id, role)
}

// SetActive soft-(de)activates a user. Admins cannot deactivate themselves.
func (s *UserService) SetActive(ctx context.Context, actor domain.Actor, id string, active bool) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("only admins can activate or deactivate users")
	}
	if !active && actor.UserID == id {
		return nil, apperr.Validation("isActive", "admins cannot deactivate themselves")
	}
	return s.repo.SetActive(ctx, id, active)
}
