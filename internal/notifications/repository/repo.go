package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	"github.com/atelier-arq/atelier-backend/internal/storage/postgres"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const notificationColumns = `id, user_id, title, message, type, is_read, related_task_id, related_project_id, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var typ string
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.IsRead,
		&n.RelatedTaskID, &n.RelatedProjectID, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Type = domain.Type(typ)
	return &n, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const q = `
INSERT INTO notifications (user_id, title, message, type, related_task_id, related_project_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, is_read, created_at;
`
	return postgres.Conn(ctx, r.pool).QueryRow(ctx, q,
		n.UserID, n.Title, n.Message, string(n.Type), n.RelatedTaskID, n.RelatedProjectID,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}

// ListByUser returns the user's notifications newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		q += ` AND NOT is_read`
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := postgres.Conn(ctx, r.pool).Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// MarkRead only touches notifications owned by userID.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id int64) error {
	ct, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	ct, err := postgres.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := postgres.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n)
	return n, err
}

// HasSince reports whether a notification of the given type about taskID was
// sent to userID at or after since.
func (r *NotificationRepository) HasSince(ctx context.Context, userID string, taskID int64, typ domain.Type, since time.Time) (bool, error) {
	var ok bool
	err := postgres.Conn(ctx, r.pool).QueryRow(ctx, `
SELECT EXISTS (
    SELECT 1 FROM notifications
    WHERE user_id = $1 AND related_task_id = $2 AND type = $3 AND created_at >= $4
)`, userID, taskID, string(typ), since).Scan(&ok)
	return ok, err
}
