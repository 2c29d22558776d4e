package memory

import (
	"context"

	projectdomain "github.com/atelier-arq/atelier-backend/internal/projects/domain"
)

type Projects struct{ s *Store }

func (r *Projects) Create(ctx context.Context, p *projectdomain.Project) error {
	defer r.s.lock(ctx)()
	now := r.s.now()
	p.ID = r.s.nextID()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.s.st.projects[p.ID] = *p
	return nil
}

func (r *Projects) Get(ctx context.Context, id int64) (*projectdomain.Project, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.st.projects[id]
	if !ok {
		return nil, projectdomain.ErrProjectNotFound
	}
	return &p, nil
}

func (r *Projects) List(ctx context.Context) ([]projectdomain.Project, error) {
	defer r.s.lock(ctx)()
	return sortedValues(r.s.st.projects, func(a, b projectdomain.Project) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}), nil
}

func (r *Projects) Update(ctx context.Context, p *projectdomain.Project) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.projects[p.ID]; !ok {
		return projectdomain.ErrProjectNotFound
	}
	p.UpdatedAt = r.s.now()
	r.s.st.projects[p.ID] = *p
	return nil
}

func (r *Projects) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.projects[id]; !ok {
		return projectdomain.ErrProjectNotFound
	}
	delete(r.s.st.projects, id)
	for tid, t := range r.s.st.tasks {
		if t.ProjectID != nil && *t.ProjectID == id {
			r.s.deleteTask(tid)
		}
	}
	for k, f := range r.s.st.files {
		if f.ProjectID != nil && *f.ProjectID == id {
			delete(r.s.st.files, k)
		}
	}
	for k, n := range r.s.st.notifications {
		if n.RelatedProjectID != nil && *n.RelatedProjectID == id {
			delete(r.s.st.notifications, k)
		}
	}
	return nil
}
