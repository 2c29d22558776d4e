package reminders

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

type TaskLister interface {
	List(ctx context.Context, f taskdomain.ListFilter) ([]taskdomain.TaskWithDetails, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *notifdomain.Notification) error
	HasSince(ctx context.Context, userID string, taskID int64, typ notifdomain.Type, since time.Time) (bool, error)
}

// Scheduler sends overdue reminders on a cron schedule (with seconds).
type Scheduler struct {
	tasks    TaskLister
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
	cron     *cron.Cron
}

func NewScheduler(tasks TaskLister, notifier Notifier, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		tasks:    tasks,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
	}
}

// Start registers the reminder job and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		n, err := s.RunOnce(ctx)
		if err != nil {
			log.Printf("[error] overdue reminders: %v", err)
			return
		}
		log.Printf("[info] overdue reminders sent=%d", n)
	})
	if err != nil {
		return fmt.Errorf("schedule reminders %q: %w", spec, err)
	}
	log.Printf("[info] reminder scheduler started (schedule %q, tz %s)", spec, s.loc)
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce notifies the assignee of every overdue task that has not been
// reminded since the start of the current day, and returns how many
// notifications it sent.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.now().In(s.loc)
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, s.loc)

	tasks, err := s.tasks.List(ctx, taskdomain.ListFilter{})
	if err != nil {
		return 0, fmt.Errorf("list tasks: %w", err)
	}

	sent := 0
	for _, t := range tasks {
		if t.AssignedUserID == nil || !t.Overdue(now) {
			continue
		}
		already, err := s.notifier.HasSince(ctx, *t.AssignedUserID, t.ID, notifdomain.TypeWarning, startOfDay)
		if err != nil {
			return sent, err
		}
		if already {
			continue
		}
		taskID := t.ID
		n := &notifdomain.Notification{
			UserID:           *t.AssignedUserID,
			Title:            "Tarefa atrasada",
			Message:          fmt.Sprintf("A tarefa %q passou do prazo em %s", t.Title, t.DueDate.In(s.loc).Format("02/01/2006")),
			Type:             notifdomain.TypeWarning,
			RelatedTaskID:    &taskID,
			RelatedProjectID: t.ProjectID,
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
