package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/patch"
)

type Status string

const (
	StatusOpen       Status = "aberta"
	StatusInProgress Status = "em_andamento"
	StatusDone       Status = "concluida"
	StatusCancelled  Status = "cancelada"
)

var Statuses = []Status{StatusOpen, StatusInProgress, StatusDone, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Finished reports whether the task no longer counts as pending work.
func (s Status) Finished() bool { return s == StatusDone || s == StatusCancelled }

func (s Status) Label() string {
	switch s {
	case StatusOpen:
		return "Aberta"
	case StatusInProgress:
		return "Em andamento"
	case StatusDone:
		return "Concluída"
	case StatusCancelled:
		return "Cancelada"
	}
	return string(s)
}

type Priority string

const (
	PriorityLow      Priority = "baixa"
	PriorityMedium   Priority = "media"
	PriorityHigh     Priority = "alta"
	PriorityCritical Priority = "critica"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Baixa"
	case PriorityMedium:
		return "Média"
	case PriorityHigh:
		return "Alta"
	case PriorityCritical:
		return "Crítica"
	}
	return string(p)
}

var ErrTaskNotFound = &apperr.Error{Kind: apperr.KindNotFound, Message: "task not found"}

// Task invariant: CompletedAt != nil iff Status == StatusDone. The lifecycle
// service maintains it; repositories store what they are given.
type Task struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	ProjectID      *int64     `json:"projectId"`
	AssignedUserID *string    `json:"assignedUserId"`
	CreatedUserID  string     `json:"createdUserId"`
	StartDate      *time.Time `json:"startDate"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *float64   `json:"estimatedHours"`
	ActualHours    *float64   `json:"actualHours"`
	CompletedAt    *time.Time `json:"completedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Overdue reports whether the task is past its due date and still pending at now.
func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Status.Finished()
}

// UserRef is the subset of a user embedded in task listings.
type UserRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (u UserRef) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

type TaskWithDetails struct {
	Task
	ProjectName  *string  `json:"projectName"`
	AssignedUser *UserRef `json:"assignedUser"`
	CreatedUser  *UserRef `json:"createdUser"`
	CommentCount int      `json:"commentCount"`
}

// ListFilter narrows a store listing. Zero values mean "no constraint".
type ListFilter struct {
	AssignedUserID string
	ProjectID      *int64
}

type History struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"taskId"`
	UserID    string    `json:"userId"`
	Changes   string    `json:"changes"`
	CreatedAt time.Time `json:"createdAt"`
}

type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"taskId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateInput struct {
	Title          string     `json:"title" validate:"required,max=255"`
	Description    string     `json:"description"`
	Status         Status     `json:"status" validate:"omitempty,oneof=aberta em_andamento concluida cancelada"`
	Priority       Priority   `json:"priority" validate:"omitempty,oneof=baixa media alta critica"`
	ProjectID      *int64     `json:"projectId"`
	AssignedUserID *string    `json:"assignedUserId"`
	StartDate      *time.Time `json:"startDate"`
	DueDate        *time.Time `json:"dueDate"`
	EstimatedHours *float64   `json:"estimatedHours" validate:"omitempty,min=0"`
}

// Patch is a partial update. Pointer fields are "set when non-nil"; nullable
// columns use patch.Field so that an explicit null clears them.
type Patch struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Status         *Status                `json:"status"`
	Priority       *Priority              `json:"priority"`
	ProjectID      patch.Field[int64]     `json:"projectId"`
	AssignedUserID patch.Field[string]    `json:"assignedUserId"`
	StartDate      patch.Field[time.Time] `json:"startDate"`
	DueDate        patch.Field[time.Time] `json:"dueDate"`
	EstimatedHours patch.Field[float64]   `json:"estimatedHours"`
	ActualHours    patch.Field[float64]   `json:"actualHours"`
}

// MaxTitleLen matches the max=255 tag on CreateInput.Title.
const MaxTitleLen = 255

func (p Patch) Validate() error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return apperr.Validation("title", "must not be empty")
		}
		if utf8.RuneCountInString(title) > MaxTitleLen {
			return apperr.Validation("title", "must be at most %d characters", MaxTitleLen)
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperr.Validation("status", "invalid status %q", *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return apperr.Validation("priority", "invalid priority %q", *p.Priority)
	}
	if p.EstimatedHours.Set && !p.EstimatedHours.Null && p.EstimatedHours.Value < 0 {
		return apperr.Validation("estimatedHours", "must not be negative")
	}
	if p.ActualHours.Set && !p.ActualHours.Null && p.ActualHours.Value < 0 {
		return apperr.Validation("actualHours", "must not be negative")
	}
	return nil
}
