package reporting

import (
	"time"

	projectdomain "github.com/atelier-arq/atelier-backend/internal/projects/domain"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

var (
	day0     = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	exported = time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC)
)

func ref[T any](v T) *T { return &v }

type taskOpt func(*taskdomain.TaskWithDetails)

func withProject(id int64, name string) taskOpt {
	return func(t *taskdomain.TaskWithDetails) {
		t.ProjectID = ref(id)
		t.ProjectName = ref(name)
	}
}

func assignedTo(id string) taskOpt {
	return func(t *taskdomain.TaskWithDetails) { t.AssignedUserID = ref(id) }
}

func due(d time.Time) taskOpt {
	return func(t *taskdomain.TaskWithDetails) { t.DueDate = ref(d) }
}

func described(s string) taskOpt {
	return func(t *taskdomain.TaskWithDetails) { t.Description = s }
}

func mkTask(id int64, title string, st taskdomain.Status, pr taskdomain.Priority, createdDay int, opts ...taskOpt) taskdomain.TaskWithDetails {
	t := taskdomain.TaskWithDetails{Task: taskdomain.Task{
		ID:        id,
		Title:     title,
		Status:    st,
		Priority:  pr,
		CreatedAt: day0.AddDate(0, 0, createdDay),
	}}
	for _, o := range opts {
		o(&t)
	}
	return t
}

func mkProject(id int64, name string) projectdomain.Project {
	return projectdomain.Project{ID: id, Name: name, Status: projectdomain.StatusActive}
}
