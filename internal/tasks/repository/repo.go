package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-arq/atelier-backend/internal/storage/postgres"
	"github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

// TaskRepository persists tasks, their comments and their history.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.project_id, t.assigned_user_id,
t.created_user_id, t.start_date, t.due_date, t.estimated_hours, t.actual_hours, t.completed_at,
t.created_at, t.updated_at`

func scanTask(row pgx.Row, extra ...any) (*domain.Task, error) {
	var t domain.Task
	var status, priority string
	dest := []any{
		&t.ID, &t.Title, &t.Description, &status, &priority, &t.ProjectID, &t.AssignedUserID,
		&t.CreatedUserID, &t.StartDate, &t.DueDate, &t.EstimatedHours, &t.ActualHours, &t.CompletedAt,
		&t.CreatedAt, &t.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	const q = `
INSERT INTO tasks (title, description, status, priority, project_id, assigned_user_id, created_user_id,
                   start_date, due_date, estimated_hours, actual_hours, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id, created_at, updated_at;
`
	return postgres.Conn(ctx, r.pool).QueryRow(ctx, q,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.ProjectID, t.AssignedUserID,
		t.CreatedUserID, t.StartDate, t.DueDate, t.EstimatedHours, t.ActualHours, t.CompletedAt,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Get locks the row when called inside a transaction so concurrent updates of
// the same task serialize.
func (r *TaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	if postgres.HasTx(ctx) {
		q += ` FOR UPDATE`
	}
	t, err := scanTask(postgres.Conn(ctx, r.pool).QueryRow(ctx, q, id))
	if postgres.IsNoRows(err) {
		return nil, domain.ErrTaskNotFound
	}
	return t, err
}

const detailsSelect = `
SELECT ` + taskColumns + `,
       p.name,
       au.id, au.first_name, au.last_name, au.email,
       cu.id, cu.first_name, cu.last_name, cu.email,
       (SELECT COUNT(*) FROM task_comments c WHERE c.task_id = t.id)
FROM tasks t
LEFT JOIN projects p ON p.id = t.project_id
LEFT JOIN users au ON au.id = t.assigned_user_id
LEFT JOIN users cu ON cu.id = t.created_user_id
`

func scanDetails(row pgx.Row) (*domain.TaskWithDetails, error) {
	var d domain.TaskWithDetails
	var projectName *string
	var auID, auFirst, auLast, auEmail *string
	var cuID, cuFirst, cuLast, cuEmail *string
	var comments int
	t, err := scanTask(row,
		&projectName,
		&auID, &auFirst, &auLast, &auEmail,
		&cuID, &cuFirst, &cuLast, &cuEmail,
		&comments,
	)
	if err != nil {
		return nil, err
	}
	d.Task = *t
	d.ProjectName = projectName
	d.AssignedUser = userRef(auID, auFirst, auLast, auEmail)
	d.CreatedUser = userRef(cuID, cuFirst, cuLast, cuEmail)
	d.CommentCount = comments
	return &d, nil
}

func userRef(id, first, last, email *string) *domain.UserRef {
	if id == nil {
		return nil
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return &domain.UserRef{ID: *id, FirstName: deref(first), LastName: deref(last), Email: deref(email)}
}

func (r *TaskRepository) GetDetails(ctx context.Context, id int64) (*domain.TaskWithDetails, error) {
	d, err := scanDetails(postgres.Conn(ctx, r.pool).QueryRow(ctx, detailsSelect+` WHERE t.id = $1`, id))
	if postgres.IsNoRows(err) {
		return nil, domain.ErrTaskNotFound
	}
	return d, err
}

// List returns tasks newest first.
func (r *TaskRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.TaskWithDetails, error) {
	var where []string
	var args []any
	if f.AssignedUserID != "" {
		args = append(args, f.AssignedUserID)
		where = append(where, fmt.Sprintf("t.assigned_user_id = $%d", len(args)))
	}
	if f.ProjectID != nil {
		args = append(args, *f.ProjectID)
		where = append(where, fmt.Sprintf("t.project_id = $%d", len(args)))
	}
	q := detailsSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY t.created_at DESC, t.id DESC"

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.TaskWithDetails, 0, 32)
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	const q = `
UPDATE tasks
SET title = $2, description = $3, status = $4, priority = $5, project_id = $6, assigned_user_id = $7,
    start_date = $8, due_date = $9, estimated_hours = $10, actual_hours = $11, completed_at = $12,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at;
`
	err := postgres.Conn(ctx, r.pool).QueryRow(ctx, q,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.ProjectID, t.AssignedUserID,
		t.StartDate, t.DueDate, t.EstimatedHours, t.ActualHours, t.CompletedAt,
	).Scan(&t.UpdatedAt)
	if postgres.IsNoRows(err) {
		return domain.ErrTaskNotFound
	}
	return err
}

// Delete removes the task; comments, history, files, time entries and
// notifications go with it through ON DELETE CASCADE.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	ct, err := postgres.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) AddHistory(ctx context.Context, h *domain.History) error {
	const q = `
INSERT INTO task_history (task_id, user_id, changes)
VALUES ($1, $2, $3)
RETURNING id, created_at;
`
	return postgres.Conn(ctx, r.pool).QueryRow(ctx, q, h.TaskID, h.UserID, h.Changes).Scan(&h.ID, &h.CreatedAt)
}

func (r *TaskRepository) ListHistory(ctx context.Context, taskID int64) ([]domain.History, error) {
	const q = `
SELECT id, task_id, user_id, changes, created_at
FROM task_history
WHERE task_id = $1
ORDER BY created_at, id;
`
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, q, taskID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.History, error) {
		var h domain.History
		err := row.Scan(&h.ID, &h.TaskID, &h.UserID, &h.Changes, &h.CreatedAt)
		return h, err
	})
}

func (r *TaskRepository) AddComment(ctx context.Context, c *domain.Comment) error {
	const q = `
INSERT INTO task_comments (task_id, user_id, content)
VALUES ($1, $2, $3)
RETURNING id, created_at;
`
	return postgres.Conn(ctx, r.pool).QueryRow(ctx, q, c.TaskID, c.UserID, c.Content).Scan(&c.ID, &c.CreatedAt)
}

func (r *TaskRepository) ListComments(ctx context.Context, taskID int64) ([]domain.Comment, error) {
	const q = `
SELECT id, task_id, user_id, content, created_at
FROM task_comments
WHERE task_id = $1
ORDER BY created_at, id;
`
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, q, taskID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Comment, error) {
		var c domain.Comment
		err := row.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt)
		return c, err
	})
}
