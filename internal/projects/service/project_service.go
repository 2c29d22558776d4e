package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/logging"
	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	"github.com/atelier-arq/atelier-backend/internal/projects/domain"
	"github.com/atelier-arq/atelier-backend/internal/reporting"
	"github.com/atelier-arq/atelier-backend/internal/storage"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
}

type TaskLister interface {
	List(ctx context.Context, f taskdomain.ListFilter) ([]taskdomain.TaskWithDetails, error)
}

// ObjectCleaner removes the stored binaries of a project and of its tasks.
type ObjectCleaner interface {
	RemoveProjectObjects(ctx context.Context, projectID int64) error
}

// ProjectService handles project-related business logic
type ProjectService struct {
	tx      storage.Transactor
	repo    Repository
	tasks   TaskLister
	events  notifdomain.Publisher
	objects ObjectCleaner
}

func NewProjectService(tx storage.Transactor, repo Repository, tasks TaskLister, events notifdomain.Publisher, objects ObjectCleaner) *ProjectService {
	if events == nil {
		events = notifdomain.Discard{}
	}
	return &ProjectService{tx: tx, repo: repo, tasks: tasks, events: events, objects: objects}
}

// List returns every project with its tasks and progress.
func (s *ProjectService) List(ctx context.Context) ([]domain.ProjectWithTasks, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, taskdomain.ListFilter{})
	if err != nil {
		return nil, err
	}
	byProject := make(map[int64][]taskdomain.Task, len(projects))
	for _, t := range tasks {
		if t.ProjectID != nil {
			byProject[*t.ProjectID] = append(byProject[*t.ProjectID], t.Task)
		}
	}
	out := make([]domain.ProjectWithTasks, 0, len(projects))
	for _, p := range projects {
		out = append(out, withTasks(p, byProject[p.ID]))
	}
	return out, nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.ProjectWithTasks, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, *p)
}

func (s *ProjectService) Create(ctx context.Context, actor usersdomain.Actor, in domain.CreateInput) (*domain.ProjectWithTasks, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = domain.StatusActive
	}
	if in.Type == "" {
		in.Type = domain.TypeArchitecture
	}
	if in.Stage == "" {
		in.Stage = domain.StageBriefing
	}
	if in.Priority == "" {
		in.Priority = taskdomain.PriorityMedium
	}
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}

	p := &domain.Project{
		Name:           in.Name,
		Description:    in.Description,
		Status:         in.Status,
		Type:           in.Type,
		Stage:          in.Stage,
		Priority:       in.Priority,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		ClientName:     in.ClientName,
		ClientEmail:    in.ClientEmail,
		ClientPhone:    in.ClientPhone,
		Budget:         in.Budget,
		EstimatedHours: in.EstimatedHours,
		Location:       in.Location,
		Area:           in.Area,
		CreatedUserID:  actor.UserID,
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := withTasks(*p, nil)
	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.ScopeAll, notifdomain.EventProjectCreated, out))
	return &out, nil
}

// Update applies a partial patch. Stage is advisory; any value may follow any other.
func (s *ProjectService) Update(ctx context.Context, id int64, pt domain.Patch) (*domain.ProjectWithTasks, error) {
	if err := pt.Validate(); err != nil {
		return nil, err
	}
	if pt.ClientEmail != nil && *pt.ClientEmail != "" {
		if err := apperr.ValidateStruct(struct {
			ClientEmail string `json:"clientEmail" validate:"email"`
		}{*pt.ClientEmail}); err != nil {
			return nil, err
		}
	}

	var updated domain.Project
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		cur, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		updated = pt.Apply(*cur)
		return s.repo.Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	out, err := s.load(ctx, updated)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.ScopeAll, notifdomain.EventProjectUpdated, out))
	return out, nil
}

// Delete is admin-only. Stored binaries go first, then the project row with
// everything that cascades from it.
func (s *ProjectService) Delete(ctx context.Context, actor usersdomain.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperr.Permission("only admins can delete projects")
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if s.objects != nil {
		if err := s.objects.RemoveProjectObjects(ctx, id); err != nil {
			return err
		}
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.ScopeAll, notifdomain.EventProjectDeleted, map[string]int64{"id": id}))
	logging.New(ctx).Infof("delete_project", "project_id=%d actor=%s", id, actor.UserID)
	return nil
}

func (s *ProjectService) load(ctx context.Context, p domain.Project) (*domain.ProjectWithTasks, error) {
	id := p.ID
	tasks, err := s.tasks.List(ctx, taskdomain.ListFilter{ProjectID: &id})
	if err != nil {
		return nil, err
	}
	plain := make([]taskdomain.Task, 0, len(tasks))
	for _, t := range tasks {
		plain = append(plain, t.Task)
	}
	out := withTasks(p, plain)
	return &out, nil
}

func withTasks(p domain.Project, tasks []taskdomain.Task) domain.ProjectWithTasks {
	if tasks == nil {
		tasks = []taskdomain.Task{}
	}
	return domain.ProjectWithTasks{
		Project:  p,
		Tasks:    tasks,
		Progress: reporting.ComputeProjectProgress(tasks),
	}
}
