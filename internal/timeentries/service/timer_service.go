package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	"github.com/atelier-arq/atelier-backend/internal/storage"
	"github.com/atelier-arq/atelier-backend/internal/storage/postgres"
	"github.com/atelier-arq/atelier-backend/internal/timeentries/domain"
)

type Repository interface {
	LockUser(ctx context.Context, userID string) error
	Active(ctx context.Context, userID string) (*domain.TimeEntry, error)
	Create(ctx context.Context, e *domain.TimeEntry) error
	Close(ctx context.Context, e *domain.TimeEntry) error
	List(ctx context.Context, f domain.ListFilter) ([]domain.TimeEntry, error)
}

type TaskChecker interface {
	TaskExists(ctx context.Context, id int64) (bool, error)
}

// TimerService keeps at most one running entry per user. Starting a timer
// closes the running one inside the same transaction, under a lock on the
// user row.
type TimerService struct {
	tx     storage.Transactor
	repo   Repository
	tasks  TaskChecker
	events notifdomain.Publisher
	now    func() time.Time
}

type Option func(*TimerService)

func WithClock(now func() time.Time) Option {
	return func(s *TimerService) { s.now = now }
}

func NewTimerService(tx storage.Transactor, repo Repository, tasks TaskChecker, events notifdomain.Publisher, opts ...Option) *TimerService {
	s := &TimerService{tx: tx, repo: repo, tasks: tasks, events: events, now: time.Now}
	if s.events == nil {
		s.events = notifdomain.Discard{}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// StartResult carries the new entry and the entry it force-closed, if any.
type StartResult struct {
	Entry  *domain.TimeEntry `json:"entry"`
	Closed *domain.TimeEntry `json:"closed,omitempty"`
}

func (s *TimerService) Start(ctx context.Context, userID string, taskID int64, description string) (*StartResult, error) {
	ok, err := s.tasks.TaskExists(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &apperr.Error{Kind: apperr.KindNotFound, Field: "taskId", Message: fmt.Sprintf("task %d not found", taskID)}
	}

	res := &StartResult{}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockUser(ctx, userID); err != nil {
			return err
		}
		now := s.now()
		active, err := s.repo.Active(ctx, userID)
		switch {
		case err == nil:
			active.Close(now)
			if err := s.repo.Close(ctx, active); err != nil {
				return fmt.Errorf("close active entry: %w", err)
			}
			res.Closed = active
		case !isNotFound(err):
			return err
		}

		e := &domain.TimeEntry{
			TaskID:      taskID,
			UserID:      userID,
			Description: strings.TrimSpace(description),
			StartTime:   now,
			IsActive:    true,
		}
		if err := s.repo.Create(ctx, e); err != nil {
			if postgres.IsUniqueViolation(err) {
				return apperr.Conflict("user already has an active timer")
			}
			return err
		}
		res.Entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Closed != nil {
		s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.UserScope(userID), notifdomain.EventTimerStopped, res.Closed))
	}
	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.UserScope(userID), notifdomain.EventTimerStarted, res.Entry))
	return res, nil
}

// Stop closes the running entry, or fails with domain.ErrNoActiveTimer.
func (s *TimerService) Stop(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	var closed *domain.TimeEntry
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockUser(ctx, userID); err != nil {
			return err
		}
		active, err := s.repo.Active(ctx, userID)
		if err != nil {
			return err
		}
		active.Close(s.now())
		if err := s.repo.Close(ctx, active); err != nil {
			return err
		}
		closed = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.UserScope(userID), notifdomain.EventTimerStopped, closed))
	return closed, nil
}

func (s *TimerService) Active(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	return s.repo.Active(ctx, userID)
}

func (s *TimerService) List(ctx context.Context, f domain.ListFilter) ([]domain.TimeEntry, error) {
	return s.repo.List(ctx, f)
}

func isNotFound(err error) bool {
	return apperr.KindOf(err) == apperr.KindNotFound
}
