package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// References answers existence checks used to turn dangling ids into NotFound
// errors before a write.
type References struct {
	pool *pgxpool.Pool
}

func NewReferences(pool *pgxpool.Pool) *References {
	return &References{pool: pool}
}

func (r *References) ProjectExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, id)
}

func (r *References) TaskExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id)
}

func (r *References) UserExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
}

func (r *References) exists(ctx context.Context, q string, arg any) (bool, error) {
	var ok bool
	err := Conn(ctx, r.pool).QueryRow(ctx, q, arg).Scan(&ok)
	return ok, err
}
