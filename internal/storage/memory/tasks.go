package memory

import (
	"context"

	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

type Tasks struct{ s *Store }

func (r *Tasks) Create(ctx context.Context, t *taskdomain.Task) error {
	defer r.s.lock(ctx)()
	now := r.s.now()
	t.ID = r.s.nextID()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.s.st.tasks[t.ID] = *t
	return nil
}

func (r *Tasks) Get(ctx context.Context, id int64) (*taskdomain.Task, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.st.tasks[id]
	if !ok {
		return nil, taskdomain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *Tasks) GetDetails(ctx context.Context, id int64) (*taskdomain.TaskWithDetails, error) {
	defer r.s.lock(ctx)()
	t, ok := r.s.st.tasks[id]
	if !ok {
		return nil, taskdomain.ErrTaskNotFound
	}
	d := r.details(t)
	return &d, nil
}

func (r *Tasks) details(t taskdomain.Task) taskdomain.TaskWithDetails {
	d := taskdomain.TaskWithDetails{Task: t}
	if t.ProjectID != nil {
		if p, ok := r.s.st.projects[*t.ProjectID]; ok {
			name := p.Name
			d.ProjectName = &name
		}
	}
	if t.AssignedUserID != nil {
		d.AssignedUser = r.userRef(*t.AssignedUserID)
	}
	d.CreatedUser = r.userRef(t.CreatedUserID)
	for _, c := range r.s.st.comments {
		if c.TaskID == t.ID {
			d.CommentCount++
		}
	}
	return d
}

func (r *Tasks) userRef(id string) *taskdomain.UserRef {
	u, ok := r.s.st.users[id]
	if !ok {
		return nil
	}
	return &taskdomain.UserRef{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

func (r *Tasks) List(ctx context.Context, f taskdomain.ListFilter) ([]taskdomain.TaskWithDetails, error) {
	defer r.s.lock(ctx)()
	all := sortedValues(r.s.st.tasks, func(a, b taskdomain.Task) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	out := make([]taskdomain.TaskWithDetails, 0, len(all))
	for _, t := range all {
		if f.AssignedUserID != "" && (t.AssignedUserID == nil || *t.AssignedUserID != f.AssignedUserID) {
			continue
		}
		if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
			continue
		}
		out = append(out, r.details(t))
	}
	return out, nil
}

func (r *Tasks) Update(ctx context.Context, t *taskdomain.Task) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.tasks[t.ID]; !ok {
		return taskdomain.ErrTaskNotFound
	}
	t.UpdatedAt = r.s.now()
	r.s.st.tasks[t.ID] = *t
	return nil
}

func (r *Tasks) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.tasks[id]; !ok {
		return taskdomain.ErrTaskNotFound
	}
	r.s.deleteTask(id)
	return nil
}

// deleteTask removes a task and every row that references it. Caller holds the lock.
func (s *Store) deleteTask(id int64) {
	delete(s.st.tasks, id)
	for k, c := range s.st.comments {
		if c.TaskID == id {
			delete(s.st.comments, k)
		}
	}
	for k, h := range s.st.history {
		if h.TaskID == id {
			delete(s.st.history, k)
		}
	}
	for k, f := range s.st.files {
		if f.TaskID != nil && *f.TaskID == id {
			delete(s.st.files, k)
		}
	}
	for k, e := range s.st.entries {
		if e.TaskID == id {
			delete(s.st.entries, k)
		}
	}
	for k, n := range s.st.notifications {
		if n.RelatedTaskID != nil && *n.RelatedTaskID == id {
			delete(s.st.notifications, k)
		}
	}
}

func (r *Tasks) AddHistory(ctx context.Context, h *taskdomain.History) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.tasks[h.TaskID]; !ok {
		return taskdomain.ErrTaskNotFound
	}
	h.ID = r.s.nextID()
	h.CreatedAt = r.s.now()
	r.s.st.history[h.ID] = *h
	return nil
}

func (r *Tasks) ListHistory(ctx context.Context, taskID int64) ([]taskdomain.History, error) {
	defer r.s.lock(ctx)()
	all := sortedValues(r.s.st.history, func(a, b taskdomain.History) int {
		return oldestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	out := make([]taskdomain.History, 0, len(all))
	for _, h := range all {
		if h.TaskID == taskID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *Tasks) AddComment(ctx context.Context, c *taskdomain.Comment) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.tasks[c.TaskID]; !ok {
		return taskdomain.ErrTaskNotFound
	}
	c.ID = r.s.nextID()
	c.CreatedAt = r.s.now()
	r.s.st.comments[c.ID] = *c
	return nil
}

func (r *Tasks) ListComments(ctx context.Context, taskID int64) ([]taskdomain.Comment, error) {
	defer r.s.lock(ctx)()
	all := sortedValues(r.s.st.comments, func(a, b taskdomain.Comment) int {
		return oldestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	out := make([]taskdomain.Comment, 0, len(all))
	for _, c := range all {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}
