package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-arq/atelier-backend/internal/storage/postgres"
	"github.com/atelier-arq/atelier-backend/internal/timeentries/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type TimeEntryRepository struct {
	pool *pgxpool.Pool
}

func NewTimeEntryRepository(pool *pgxpool.Pool) *TimeEntryRepository {
	return &TimeEntryRepository{pool: pool}
}

const entryColumns = `id, task_id, user_id, description, start_time, end_time, duration, is_active, created_at`

func scanEntry(row pgx.Row) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	if err := row.Scan(&e.ID, &e.TaskID, &e.UserID, &e.Description, &e.StartTime, &e.EndTime,
		&e.Duration, &e.IsActive, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// LockUser serializes timer operations of one user for the rest of the
// transaction.
func (r *TimeEntryRepository) LockUser(ctx context.Context, userID string) error {
	var id string
	err := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if postgres.IsNoRows(err) {
		return usersdomain.ErrUserNotFound
	}
	return err
}

// Active returns the user's running entry, or domain.ErrNoActiveTimer.
func (r *TimeEntryRepository) Active(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	e, err := scanEntry(postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE user_id = $1 AND is_active`, userID))
	if postgres.IsNoRows(err) {
		return nil, domain.ErrNoActiveTimer
	}
	return e, err
}

func (r *TimeEntryRepository) Create(ctx context.Context, e *domain.TimeEntry) error {
	const q = `
INSERT INTO time_entries (task_id, user_id, description, start_time, is_active)
VALUES ($1, $2, $3, $4, TRUE)
RETURNING id, created_at;
`
	return postgres.Conn(ctx, r.pool).QueryRow(ctx, q, e.TaskID, e.UserID, e.Description, e.StartTime).
		Scan(&e.ID, &e.CreatedAt)
}

// Close persists the end time and duration set by TimeEntry.Close.
func (r *TimeEntryRepository) Close(ctx context.Context, e *domain.TimeEntry) error {
	ct, err := postgres.Conn(ctx, r.pool).Exec(ctx, `
UPDATE time_entries
SET end_time = $2, duration = $3, is_active = FALSE
WHERE id = $1 AND is_active`, e.ID, e.EndTime, e.Duration)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNoActiveTimer
	}
	return nil
}

// List returns entries newest first.
func (r *TimeEntryRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.TimeEntry, error) {
	var where []string
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.TaskID != nil {
		args = append(args, *f.TaskID)
		where = append(where, fmt.Sprintf("task_id = $%d", len(args)))
	}
	q := `SELECT ` + entryColumns + ` FROM time_entries`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY start_time DESC, id DESC`

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.TimeEntry, 0, 32)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}
