package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/logging"
	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	"github.com/atelier-arq/atelier-backend/internal/storage"
	"github.com/atelier-arq/atelier-backend/internal/tasks/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type Repository interface {
	Create(ctx context.Context, t *domain.Task) error
	Get(ctx context.Context, id int64) (*domain.Task, error)
	GetDetails(ctx context.Context, id int64) (*domain.TaskWithDetails, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.TaskWithDetails, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id int64) error
	AddHistory(ctx context.Context, h *domain.History) error
	ListHistory(ctx context.Context, taskID int64) ([]domain.History, error)
	AddComment(ctx context.Context, c *domain.Comment) error
	ListComments(ctx context.Context, taskID int64) ([]domain.Comment, error)
}

type References interface {
	ProjectExists(ctx context.Context, id int64) (bool, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

type NotificationWriter interface {
	Create(ctx context.Context, n *notifdomain.Notification) error
}

// ObjectCleaner removes the stored binaries attached to a task.
type ObjectCleaner interface {
	RemoveTaskObjects(ctx context.Context, taskID int64) error
}

// TaskService mediates every task mutation: it keeps CompletedAt consistent
// with Status, appends history, writes notifications and publishes events
// once the transaction has committed.
type TaskService struct {
	tx            storage.Transactor
	repo          Repository
	refs          References
	notifications NotificationWriter
	events        notifdomain.Publisher
	objects       ObjectCleaner
	now           func() time.Time
}

type Option func(*TaskService)

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

// WithObjectCleaner enables removal of attached files on task deletion.
func WithObjectCleaner(c ObjectCleaner) Option {
	return func(s *TaskService) { s.objects = c }
}

func NewTaskService(tx storage.Transactor, repo Repository, refs References, notifications NotificationWriter, events notifdomain.Publisher, opts ...Option) *TaskService {
	s := &TaskService{
		tx:            tx,
		repo:          repo,
		refs:          refs,
		notifications: notifications,
		events:        events,
		now:           time.Now,
	}
	if s.events == nil {
		s.events = notifdomain.Discard{}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *TaskService) List(ctx context.Context, f domain.ListFilter) ([]domain.TaskWithDetails, error) {
	return s.repo.List(ctx, f)
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.TaskWithDetails, error) {
	return s.repo.GetDetails(ctx, id)
}

func (s *TaskService) CreateTask(ctx context.Context, actor usersdomain.Actor, in domain.CreateInput) (*domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = domain.StatusOpen
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if in.AssignedUserID != nil && strings.TrimSpace(*in.AssignedUserID) == "" {
		in.AssignedUserID = nil
	}
	if err := apperr.ValidateStruct(in); err != nil {
		return nil, err
	}

	t := &domain.Task{
		Title:          in.Title,
		Description:    in.Description,
		Status:         in.Status,
		Priority:       in.Priority,
		ProjectID:      in.ProjectID,
		AssignedUserID: in.AssignedUserID,
		CreatedUserID:  actor.UserID,
		StartDate:      in.StartDate,
		DueDate:        in.DueDate,
		EstimatedHours: in.EstimatedHours,
	}
	if t.Status == domain.StatusDone {
		now := s.now()
		t.CompletedAt = &now
	}

	var sent []notifdomain.Notification
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, t.ProjectID, t.AssignedUserID); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, t); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		if err := s.repo.AddHistory(ctx, &domain.History{TaskID: t.ID, UserID: actor.UserID, Changes: "Tarefa criada"}); err != nil {
			return fmt.Errorf("add history: %w", err)
		}
		if t.AssignedUserID != nil && *t.AssignedUserID != actor.UserID {
			n, err := s.notify(ctx, *t.AssignedUserID, notifdomain.TypeInfo,
				"Nova tarefa atribuída", fmt.Sprintf("Você foi designado para a tarefa %q", t.Title), t)
			if err != nil {
				return err
			}
			sent = append(sent, *n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.ScopeAll, notifdomain.EventTaskCreated, t))
	s.publishNotifications(ctx, sent)
	logging.New(ctx).Infof("create_task", "task_id=%d actor=%s", t.ID, actor.UserID)
	return t, nil
}

// UpdateTask applies p to the task. Completion is stamped only when the
// persisted status moves into concluida and cleared when it moves out, so
// repeating the current status never touches CompletedAt.
func (s *TaskService) UpdateTask(ctx context.Context, actor usersdomain.Actor, id int64, p domain.Patch) (*domain.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Task
	var sent []notifdomain.Notification
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		prev, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		next := applyPatch(*prev, p)

		if p.ProjectID.Set && !p.ProjectID.Null {
			if err := s.checkRefs(ctx, next.ProjectID, nil); err != nil {
				return err
			}
		}
		if p.AssignedUserID.Set && !p.AssignedUserID.Null {
			if err := s.checkRefs(ctx, nil, next.AssignedUserID); err != nil {
				return err
			}
		}

		changes := diff(*prev, next)
		if len(changes) == 0 {
			updated = prev
			return nil
		}

		if prev.Status != next.Status {
			switch {
			case next.Status == domain.StatusDone:
				now := s.now()
				next.CompletedAt = &now
			case prev.Status == domain.StatusDone:
				next.CompletedAt = nil
			}
		}

		if err := s.repo.Update(ctx, &next); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if err := s.repo.AddHistory(ctx, &domain.History{
			TaskID:  next.ID,
			UserID:  actor.UserID,
			Changes: strings.Join(changes, "; "),
		}); err != nil {
			return fmt.Errorf("add history: %w", err)
		}

		if prev.Status != domain.StatusDone && next.Status == domain.StatusDone && next.AssignedUserID != nil {
			n, err := s.notify(ctx, *next.AssignedUserID, notifdomain.TypeSuccess,
				"Tarefa concluída", fmt.Sprintf("A tarefa %q foi concluída", next.Title), &next)
			if err != nil {
				return err
			}
			sent = append(sent, *n)
		}
		if next.AssignedUserID != nil && *next.AssignedUserID != actor.UserID && !sameString(prev.AssignedUserID, next.AssignedUserID) {
			n, err := s.notify(ctx, *next.AssignedUserID, notifdomain.TypeInfo,
				"Nova tarefa atribuída", fmt.Sprintf("Você foi designado para a tarefa %q", next.Title), &next)
			if err != nil {
				return err
			}
			sent = append(sent, *n)
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.ScopeAll, notifdomain.EventTaskUpdated, updated))
	s.publishNotifications(ctx, sent)
	return updated, nil
}

// DeleteTask removes attached binaries first, then the task row and
// everything that cascades from it.
func (s *TaskService) DeleteTask(ctx context.Context, actor usersdomain.Actor, id int64) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if s.objects != nil {
		if err := s.objects.RemoveTaskObjects(ctx, id); err != nil {
			return err
		}
	}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.ScopeAll, notifdomain.EventTaskDeleted, map[string]int64{"id": id}))
	logging.New(ctx).Infof("delete_task", "task_id=%d actor=%s", id, actor.UserID)
	return nil
}

func (s *TaskService) AddComment(ctx context.Context, actor usersdomain.Actor, taskID int64, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("content", "must not be empty")
	}
	c := &domain.Comment{TaskID: taskID, UserID: actor.UserID, Content: content}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Get(ctx, taskID); err != nil {
			return err
		}
		return s.repo.AddComment(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.ScopeAll, notifdomain.EventCommentCreated, c))
	return c, nil
}

func (s *TaskService) Comments(ctx context.Context, taskID int64) ([]domain.Comment, error) {
	if _, err := s.repo.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListComments(ctx, taskID)
}

func (s *TaskService) History(ctx context.Context, taskID int64) ([]domain.History, error) {
	if _, err := s.repo.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, taskID)
}

func (s *TaskService) checkRefs(ctx context.Context, projectID *int64, userID *string) error {
	if projectID != nil {
		ok, err := s.refs.ProjectExists(ctx, *projectID)
		if err != nil {
			return err
		}
		if !ok {
			return &apperr.Error{Kind: apperr.KindNotFound, Field: "projectId", Message: fmt.Sprintf("project %d not found", *projectID)}
		}
	}
	if userID != nil {
		ok, err := s.refs.UserExists(ctx, *userID)
		if err != nil {
			return err
		}
		if !ok {
			return &apperr.Error{Kind: apperr.KindNotFound, Field: "assignedUserId", Message: fmt.Sprintf("user %q not found", *userID)}
		}
	}
	return nil
}

func (s *TaskService) notify(ctx context.Context, userID string, typ notifdomain.Type, title, message string, t *domain.Task) (*notifdomain.Notification, error) {
	taskID := t.ID
	n := &notifdomain.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		Type:             typ,
		RelatedTaskID:    &taskID,
		RelatedProjectID: t.ProjectID,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

func (s *TaskService) publishNotifications(ctx context.Context, sent []notifdomain.Notification) {
	for _, n := range sent {
		s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.UserScope(n.UserID), notifdomain.EventNotificationCreated, n))
	}
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
