package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/storage/memory"
	"github.com/atelier-arq/atelier-backend/internal/users/domain"
	"github.com/atelier-arq/atelier-backend/internal/users/service"
)

func newService(t *testing.T) *service.UserService {
	t.Helper()
	svc := service.NewUserService(memory.New().Users())
	for _, id := range []string{"carla", "bruno"} {
		_, err := svc.EnsureUser(context.Background(), domain.UpsertUser{ID: id, Email: id + "@atelier.com"})
		require.NoError(t, err)
	}
	return svc
}

var (
	admin = domain.Actor{UserID: "carla", Role: domain.RoleAdmin}
	staff = domain.Actor{UserID: "bruno", Role: domain.RoleProjectManager}
)

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	u, err := svc.EnsureUser(ctx, domain.UpsertUser{ID: "dani", Email: "dani@atelier.com", FirstName: "Dani"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRole, u.Role)
	assert.True(t, u.IsActive)

	_, err = svc.EnsureUser(ctx, domain.UpsertUser{ID: "  "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.ChangeRole(ctx, staff, "bruno", domain.RoleAdmin)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	_, err = svc.ChangeRole(ctx, admin, "bruno", "intern")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "role", e.Field)

	u, err := svc.ChangeRole(ctx, admin, "bruno", domain.RoleJuniorArchitect)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleJuniorArchitect, u.Role)

	_, err = svc.ChangeRole(ctx, admin, "ghost", domain.RoleAdmin)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.SetActive(ctx, staff, "carla", false)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	_, err = svc.SetActive(ctx, admin, "carla", false)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	u, err := svc.SetActive(ctx, admin, "bruno", false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	active, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
