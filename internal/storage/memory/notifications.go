package memory

import (
	"context"
	"time"

	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
)

type Notifications struct{ s *Store }

func (r *Notifications) Create(ctx context.Context, n *notifdomain.Notification) error {
	defer r.s.lock(ctx)()
	n.ID = r.s.nextID()
	n.IsRead = false
	n.CreatedAt = r.s.now()
	r.s.st.notifications[n.ID] = *n
	return nil
}

func (r *Notifications) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]notifdomain.Notification, error) {
	defer r.s.lock(ctx)()
	all := sortedValues(r.s.st.notifications, func(a, b notifdomain.Notification) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	out := make([]notifdomain.Notification, 0, limit)
	for _, n := range all {
		if len(out) == limit {
			break
		}
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *Notifications) MarkRead(ctx context.Context, userID string, id int64) error {
	defer r.s.lock(ctx)()
	n, ok := r.s.st.notifications[id]
	if !ok || n.UserID != userID {
		return notifdomain.ErrNotificationNotFound
	}
	n.IsRead = true
	r.s.st.notifications[id] = n
	return nil
}

func (r *Notifications) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	defer r.s.lock(ctx)()
	var changed int64
	for id, n := range r.s.st.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.st.notifications[id] = n
			changed++
		}
	}
	return changed, nil
}

func (r *Notifications) UnreadCount(ctx context.Context, userID string) (int, error) {
	defer r.s.lock(ctx)()
	count := 0
	for _, n := range r.s.st.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *Notifications) HasSince(ctx context.Context, userID string, taskID int64, typ notifdomain.Type, since time.Time) (bool, error) {
	defer r.s.lock(ctx)()
	for _, n := range r.s.st.notifications {
		if n.UserID == userID && n.Type == typ && n.RelatedTaskID != nil && *n.RelatedTaskID == taskID &&
			!n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}
