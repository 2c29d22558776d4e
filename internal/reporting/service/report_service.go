package service

import (
	"context"
	"io"
	"time"

	projectdomain "github.com/atelier-arq/atelier-backend/internal/projects/domain"
	"github.com/atelier-arq/atelier-backend/internal/reporting"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
	timedomain "github.com/atelier-arq/atelier-backend/internal/timeentries/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type TaskSource interface {
	List(ctx context.Context, f taskdomain.ListFilter) ([]taskdomain.TaskWithDetails, error)
}

type ProjectSource interface {
	List(ctx context.Context) ([]projectdomain.Project, error)
}

type UserSource interface {
	Get(ctx context.Context, id string) (*usersdomain.User, error)
	List(ctx context.Context, includeInactive bool) ([]usersdomain.User, error)
}

type EntrySource interface {
	List(ctx context.Context, f timedomain.ListFilter) ([]timedomain.TimeEntry, error)
}

// ReportService reads snapshots from the store and hands them to the pure
// reporting functions. It never writes.
type ReportService struct {
	tasks    TaskSource
	projects ProjectSource
	users    UserSource
	entries  EntrySource
	loc      *time.Location
}

func NewReportService(tasks TaskSource, projects ProjectSource, users UserSource, entries EntrySource, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{tasks: tasks, projects: projects, users: users, entries: entries, loc: loc}
}

// Location is the timezone used for day boundaries and printed dates.
func (s *ReportService) Location() *time.Location { return s.loc }

func (s *ReportService) DashboardStats(ctx context.Context) (reporting.DashboardStats, error) {
	tasks, err := s.tasks.List(ctx, taskdomain.ListFilter{})
	if err != nil {
		return reporting.DashboardStats{}, err
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return reporting.DashboardStats{}, err
	}
	entries, err := s.entries.List(ctx, timedomain.ListFilter{})
	if err != nil {
		return reporting.DashboardStats{}, err
	}
	return reporting.ComputeDashboard(plain(tasks), projects, entries), nil
}

func (s *ReportService) UserStats(ctx context.Context, userID string) (reporting.UserStats, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return reporting.UserStats{}, err
	}
	tasks, err := s.tasks.List(ctx, taskdomain.ListFilter{AssignedUserID: userID})
	if err != nil {
		return reporting.UserStats{}, err
	}
	entries, err := s.entries.List(ctx, timedomain.ListFilter{UserID: userID})
	if err != nil {
		return reporting.UserStats{}, err
	}
	return reporting.ComputeUserStats(plain(tasks), entries), nil
}

func (s *ReportService) FilteredTasks(ctx context.Context, f reporting.Filter) ([]taskdomain.TaskWithDetails, error) {
	tasks, err := s.tasks.List(ctx, taskdomain.ListFilter{})
	if err != nil {
		return nil, err
	}
	return reporting.FilterTasks(tasks, f), nil
}

func (s *ReportService) Report(ctx context.Context, f reporting.Filter, exportedAt time.Time) (*reporting.Report, error) {
	tasks, err := s.tasks.List(ctx, taskdomain.ListFilter{})
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, true)
	if err != nil {
		return nil, err
	}
	return reporting.BuildReport(projects, tasks, users, f, exportedAt), nil
}

// WritePDF builds the report and renders it to w. Only rendering and write
// failures are reported as IO errors.
func (s *ReportService) WritePDF(ctx context.Context, w io.Writer, f reporting.Filter, exportedAt time.Time) error {
	r, err := s.Report(ctx, f, exportedAt)
	if err != nil {
		return err
	}
	return reporting.RenderPDF(w, r, s.loc)
}

func plain(tasks []taskdomain.TaskWithDetails) []taskdomain.Task {
	out := make([]taskdomain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Task)
	}
	return out
}
