package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-arq/atelier-backend/internal/files/domain"
	"github.com/atelier-arq/atelier-backend/internal/storage/postgres"
)

type FileRepository struct {
	pool *pgxpool.Pool
}

func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

const fileColumns = `id, filename, original_name, mime_type, size, path, task_id, project_id, uploaded_user_id, created_at`

func scanFile(row pgx.Row) (*domain.File, error) {
	var f domain.File
	if err := row.Scan(&f.ID, &f.Filename, &f.OriginalName, &f.MimeType, &f.Size, &f.Path,
		&f.TaskID, &f.ProjectID, &f.UploadedUserID, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FileRepository) Create(ctx context.Context, f *domain.File) error {
	const q = `
INSERT INTO files (filename, original_name, mime_type, size, path, task_id, project_id, uploaded_user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at;
`
	return postgres.Conn(ctx, r.pool).QueryRow(ctx, q,
		f.Filename, f.OriginalName, f.MimeType, f.Size, f.Path, f.TaskID, f.ProjectID, f.UploadedUserID,
	).Scan(&f.ID, &f.CreatedAt)
}

func (r *FileRepository) Get(ctx context.Context, id int64) (*domain.File, error) {
	f, err := scanFile(postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
	if postgres.IsNoRows(err) {
		return nil, domain.ErrFileNotFound
	}
	return f, err
}

// List returns files newest first. A project filter also matches files of the
// project's tasks, since those are removed with the project.
func (r *FileRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.File, error) {
	var where []string
	var args []any
	if f.TaskID != nil {
		args = append(args, *f.TaskID)
		where = append(where, fmt.Sprintf("task_id = $%d", len(args)))
	}
	if f.ProjectID != nil {
		args = append(args, *f.ProjectID)
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(project_id = $%d OR task_id IN (SELECT id FROM tasks WHERE project_id = $%d))", n, n))
	}
	q := `SELECT ` + fileColumns + ` FROM files`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.File, 0, 16)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *file)
	}
	return out, rows.Err()
}

func (r *FileRepository) Delete(ctx context.Context, id int64) error {
	ct, err := postgres.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}
