package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type UserRepository struct {
	db *sql.DB
}

// NewUserRepository wraps a database/sql handle. In production the handle is
// opened over the shared pgx pool (pgx stdlib).
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, profile_image_url, role, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var photo sql.NullString
	var role string
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&photo,
		&role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if photo.Valid {
		u.ProfileImageURL = &photo.String
	}
	u.Role = domain.Role(role)
	return &u, nil
}

// Ensure creates the user on first authentication and refreshes identity data
// afterwards. Role and active flag are never touched here.
func (r *UserRepository) Ensure(ctx context.Context, in domain.UpsertUser) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, first_name, last_name, profile_image_url, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email),
		    first_name = COALESCE(NULLIF(EXCLUDED.first_name, ''), users.first_name),
		    last_name = COALESCE(NULLIF(EXCLUDED.last_name, ''), users.last_name),
		    profile_image_url = COALESCE(EXCLUDED.profile_image_url, users.profile_image_url),
		    updated_at = NOW()
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(
		ctx,
		query,
		in.ID,
		in.Email,
		in.FirstName,
		in.LastName,
		in.ProfileImageURL,
		string(domain.DefaultRole),
	))
}

// Get retrieves a user by id
func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

// List returns users ordered by name
func (r *UserRepository) List(ctx context.Context, includeInactive bool) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY first_name, last_name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	query := `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, string(role)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

// SetActive activates or soft-deactivates a user
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	query := `
		UPDATE users
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, active))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}
