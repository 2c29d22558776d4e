package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-arq/atelier-backend/internal/projects/domain"
	"github.com/atelier-arq/atelier-backend/internal/storage/postgres"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

// ProjectRepository provides persistence operations for projects.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

const projectColumns = `id, name, description, status, type, stage, priority, start_date, end_date,
client_name, client_email, client_phone, budget::float8, estimated_hours, actual_hours, location, area,
coalesce(created_user_id, ''), created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var status, typ, stage, priority string
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &status, &typ, &stage, &priority, &p.StartDate, &p.EndDate,
		&p.ClientName, &p.ClientEmail, &p.ClientPhone, &p.Budget, &p.EstimatedHours, &p.ActualHours,
		&p.Location, &p.Area, &p.CreatedUserID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	p.Type = domain.Type(typ)
	p.Stage = domain.Stage(stage)
	p.Priority = taskdomain.Priority(priority)
	return &p, nil
}

func nullableUser(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Create inserts p and fills its generated fields.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	const q = `
INSERT INTO projects (name, description, status, type, stage, priority, start_date, end_date,
                      client_name, client_email, client_phone, budget, estimated_hours, actual_hours,
                      location, area, created_user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id, created_at, updated_at;
`
	return postgres.Conn(ctx, r.pool).QueryRow(ctx, q,
		p.Name, p.Description, string(p.Status), string(p.Type), string(p.Stage), string(p.Priority),
		p.StartDate, p.EndDate, p.ClientName, p.ClientEmail, p.ClientPhone, p.Budget, p.EstimatedHours,
		p.ActualHours, p.Location, p.Area, nullableUser(p.CreatedUserID),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepository) Get(ctx context.Context, id int64) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	if postgres.HasTx(ctx) {
		q += ` FOR UPDATE`
	}
	p, err := scanProject(postgres.Conn(ctx, r.pool).QueryRow(ctx, q, id))
	if postgres.IsNoRows(err) {
		return nil, domain.ErrProjectNotFound
	}
	return p, err
}

// List returns all projects, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := postgres.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	const q = `
UPDATE projects
SET name = $2, description = $3, status = $4, type = $5, stage = $6, priority = $7,
    start_date = $8, end_date = $9, client_name = $10, client_email = $11, client_phone = $12,
    budget = $13, estimated_hours = $14, actual_hours = $15, location = $16, area = $17,
    updated_at = now()
WHERE id = $1
RETURNING updated_at;
`
	err := postgres.Conn(ctx, r.pool).QueryRow(ctx, q,
		p.ID, p.Name, p.Description, string(p.Status), string(p.Type), string(p.Stage), string(p.Priority),
		p.StartDate, p.EndDate, p.ClientName, p.ClientEmail, p.ClientPhone, p.Budget, p.EstimatedHours,
		p.ActualHours, p.Location, p.Area,
	).Scan(&p.UpdatedAt)
	if postgres.IsNoRows(err) {
		return domain.ErrProjectNotFound
	}
	return err
}

// Delete removes the project. Tasks, files and notifications referencing it
// cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	ct, err := postgres.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}
