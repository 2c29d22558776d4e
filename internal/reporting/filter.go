// Package reporting derives statistics and filtered report datasets from
// tasks, projects and users without mutating them.
package reporting

import (
	"strconv"
	"strings"
	"time"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

// Filter narrows a task set. Every field is optional; present fields are
// combined with AND. Zero dates, empty strings and a nil ProjectID impose no
// constraint.
type Filter struct {
	DateFrom   time.Time
	DateTo     time.Time
	Priority   taskdomain.Priority
	Status     taskdomain.Status
	UserID     string
	ProjectID  *int64
	SearchText string
}

func (f Filter) IsEmpty() bool {
	return f.DateFrom.IsZero() && f.DateTo.IsZero() && f.Priority == "" && f.Status == "" &&
		f.UserID == "" && f.ProjectID == nil && strings.TrimSpace(f.SearchText) == ""
}

// FilterTasks keeps the tasks matching every present field, in input order.
// An empty filter returns tasks unchanged.
func FilterTasks(tasks []taskdomain.TaskWithDetails, f Filter) []taskdomain.TaskWithDetails {
	if f.IsEmpty() {
		return tasks
	}
	out := make([]taskdomain.TaskWithDetails, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Match reports whether t satisfies every present field of f. Date bounds are
// whole days in the location of the bound: from start-of-day, to end-of-day,
// both inclusive, applied to CreatedAt.
func (f Filter) Match(t taskdomain.TaskWithDetails) bool {
	if !f.DateFrom.IsZero() && t.CreatedAt.Before(startOfDay(f.DateFrom)) {
		return false
	}
	if !f.DateTo.IsZero() && t.CreatedAt.After(endOfDay(f.DateTo)) {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.UserID != "" && (t.AssignedUserID == nil || *t.AssignedUserID != f.UserID) {
		return false
	}
	if f.ProjectID != nil && (t.ProjectID == nil || *t.ProjectID != *f.ProjectID) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.SearchText)); q != "" {
		haystack := strings.ToLower(t.Title + "\n" + t.Description)
		if t.ProjectName != nil {
			haystack += "\n" + strings.ToLower(*t.ProjectName)
		}
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// FilterInput is the wire form of Filter, shared by query strings and JSON bodies.
type FilterInput struct {
	DateFrom   string `json:"dateFrom" form:"dateFrom"`
	DateTo     string `json:"dateTo" form:"dateTo"`
	Priority   string `json:"priority" form:"priority"`
	Status     string `json:"status" form:"status"`
	UserID     string `json:"userId" form:"userId"`
	ProjectID  string `json:"projectId" form:"projectId"`
	SearchText string `json:"searchText" form:"searchText"`
}

// Parse validates the input. Dates are either YYYY-MM-DD, read in loc, or RFC 3339.
func (in FilterInput) Parse(loc *time.Location) (Filter, error) {
	var f Filter
	var err error
	if f.DateFrom, err = parseDate("dateFrom", in.DateFrom, loc); err != nil {
		return Filter{}, err
	}
	if f.DateTo, err = parseDate("dateTo", in.DateTo, loc); err != nil {
		return Filter{}, err
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && startOfDay(f.DateTo).Before(startOfDay(f.DateFrom)) {
		return Filter{}, apperr.Validation("dateTo", "must not be before dateFrom")
	}
	if p := taskdomain.Priority(strings.TrimSpace(in.Priority)); p != "" {
		if !p.Valid() {
			return Filter{}, apperr.Validation("priority", "invalid priority %q", p)
		}
		f.Priority = p
	}
	if s := taskdomain.Status(strings.TrimSpace(in.Status)); s != "" {
		if !s.Valid() {
			return Filter{}, apperr.Validation("status", "invalid status %q", s)
		}
		f.Status = s
	}
	f.UserID = strings.TrimSpace(in.UserID)
	if raw := strings.TrimSpace(in.ProjectID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return Filter{}, apperr.Validation("projectId", "must be a positive integer")
		}
		f.ProjectID = &id
	}
	f.SearchText = strings.TrimSpace(in.SearchText)
	return f, nil
}

func parseDate(field, raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.Validation(field, "must be a date (YYYY-MM-DD)")
	}
	return t.In(loc), nil
}
