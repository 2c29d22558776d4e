package memory

import (
	"context"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	timedomain "github.com/atelier-arq/atelier-backend/internal/timeentries/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type TimeEntries struct{ s *Store }

// LockUser only checks existence: the store mutex already serializes the
// surrounding transaction.
func (r *TimeEntries) LockUser(ctx context.Context, userID string) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.users[userID]; !ok {
		return usersdomain.ErrUserNotFound
	}
	return nil
}

func (r *TimeEntries) Active(ctx context.Context, userID string) (*timedomain.TimeEntry, error) {
	defer r.s.lock(ctx)()
	for _, e := range r.s.st.entries {
		if e.UserID == userID && e.IsActive {
			return &e, nil
		}
	}
	return nil, timedomain.ErrNoActiveTimer
}

func (r *TimeEntries) Create(ctx context.Context, e *timedomain.TimeEntry) error {
	defer r.s.lock(ctx)()
	for _, other := range r.s.st.entries {
		if other.UserID == e.UserID && other.IsActive {
			return apperr.Conflict("user already has an active timer")
		}
	}
	e.ID = r.s.nextID()
	e.IsActive = true
	e.CreatedAt = r.s.now()
	r.s.st.entries[e.ID] = *e
	return nil
}

func (r *TimeEntries) Close(ctx context.Context, e *timedomain.TimeEntry) error {
	defer r.s.lock(ctx)()
	cur, ok := r.s.st.entries[e.ID]
	if !ok || !cur.IsActive {
		return timedomain.ErrNoActiveTimer
	}
	cur.EndTime = e.EndTime
	cur.Duration = e.Duration
	cur.IsActive = false
	r.s.st.entries[e.ID] = cur
	return nil
}

func (r *TimeEntries) List(ctx context.Context, f timedomain.ListFilter) ([]timedomain.TimeEntry, error) {
	defer r.s.lock(ctx)()
	all := sortedValues(r.s.st.entries, func(a, b timedomain.TimeEntry) int {
		return newestFirst(a.StartTime, b.StartTime, a.ID, b.ID)
	})
	out := make([]timedomain.TimeEntry, 0, len(all))
	for _, e := range all {
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.TaskID != nil && e.TaskID != *f.TaskID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
