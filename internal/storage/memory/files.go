package memory

import (
	"context"

	filedomain "github.com/atelier-arq/atelier-backend/internal/files/domain"
)

type Files struct{ s *Store }

func (r *Files) Create(ctx context.Context, f *filedomain.File) error {
	defer r.s.lock(ctx)()
	f.ID = r.s.nextID()
	f.CreatedAt = r.s.now()
	r.s.st.files[f.ID] = *f
	return nil
}

func (r *Files) Get(ctx context.Context, id int64) (*filedomain.File, error) {
	defer r.s.lock(ctx)()
	f, ok := r.s.st.files[id]
	if !ok {
		return nil, filedomain.ErrFileNotFound
	}
	return &f, nil
}

func (r *Files) List(ctx context.Context, f filedomain.ListFilter) ([]filedomain.File, error) {
	defer r.s.lock(ctx)()
	all := sortedValues(r.s.st.files, func(a, b filedomain.File) int {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	out := make([]filedomain.File, 0, len(all))
	for _, file := range all {
		if f.TaskID != nil && (file.TaskID == nil || *file.TaskID != *f.TaskID) {
			continue
		}
		if f.ProjectID != nil && !r.inProject(file, *f.ProjectID) {
			continue
		}
		out = append(out, file)
	}
	return out, nil
}

func (r *Files) inProject(f filedomain.File, projectID int64) bool {
	if f.ProjectID != nil && *f.ProjectID == projectID {
		return true
	}
	if f.TaskID == nil {
		return false
	}
	t, ok := r.s.st.tasks[*f.TaskID]
	return ok && t.ProjectID != nil && *t.ProjectID == projectID
}

func (r *Files) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.files[id]; !ok {
		return filedomain.ErrFileNotFound
	}
	delete(r.s.st.files, id)
	return nil
}
