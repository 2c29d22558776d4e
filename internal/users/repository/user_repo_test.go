package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/users/domain"
	"github.com/atelier-arq/atelier-backend/internal/users/repository"
)

var userCols = []string{"id", "email", "first_name", "last_name", "profile_image_url", "role", "is_active", "created_at", "updated_at"}

func setupUserRepo(t *testing.T) (*repository.UserRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return repository.NewUserRepository(db), mock, db
}

func TestUserRepository_Ensure(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("inserts with the default role", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("uid-1", "ana@atelier.com", "Ana", "Souza", sqlmock.AnyArg(), "collaborator").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("uid-1", "ana@atelier.com", "Ana", "Souza", nil, "collaborator", true, now, now))

		u, err := repo.Ensure(context.Background(), domain.UpsertUser{
			ID: "uid-1", Email: "ana@atelier.com", FirstName: "Ana", LastName: "Souza",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCollaborator, u.Role)
		assert.True(t, u.IsActive)
		assert.Nil(t, u.ProfileImageURL)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps the stored role on conflict", func(t *testing.T) {
		mock.ExpectQuery(`ON CONFLICT \(id\) DO UPDATE`).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("uid-1", "ana@atelier.com", "Ana", "Souza", "https://img/ana.png", "admin", true, now, now))

		u, err := repo.Ensure(context.Background(), domain.UpsertUser{ID: "uid-1"})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		require.NotNil(t, u.ProfileImageURL)
		assert.Equal(t, "https://img/ana.png", *u.ProfileImageURL)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Get(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()

	t.Run("missing user", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), "ghost")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_List(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()
	now := time.Now()

	t.Run("active only", func(t *testing.T) {
		mock.ExpectQuery(`FROM users WHERE is_active ORDER BY first_name`).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("a", "a@x.com", "Ana", "", nil, "admin", true, now, now).
				AddRow("b", "b@x.com", "Bruno", "", nil, "collaborator", true, now, now))

		users, err := repo.List(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Bruno", users[1].FirstName)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("including inactive", func(t *testing.T) {
		mock.ExpectQuery(`FROM users ORDER BY first_name`).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("c", "c@x.com", "Carla", "", nil, "collaborator", false, now, now))

		users, err := repo.List(context.Background(), true)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.False(t, users[0].IsActive)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_UpdateRole(t *testing.T) {
	repo, mock, db := setupUserRepo(t)
	defer db.Close()
	now := time.Now()

	t.Run("updates", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users\s+SET role = \$2`).
			WithArgs("b", "senior_architect").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("b", "b@x.com", "Bruno", "", nil, "senior_architect", true, now, now))

		u, err := repo.UpdateRole(context.Background(), "b", domain.RoleSeniorArchitect)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleSeniorArchitect, u.Role)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users`).
			WithArgs("ghost", "admin").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateRole(context.Background(), "ghost", domain.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
