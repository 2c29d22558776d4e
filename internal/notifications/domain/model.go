package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
)

type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeSuccess Type = "success"
)

func (t Type) Valid() bool {
	switch t {
	case TypeInfo, TypeWarning, TypeError, TypeSuccess:
		return true
	}
	return false
}

var ErrNotificationNotFound = &apperr.Error{Kind: apperr.KindNotFound, Message: "notification not found"}

// Notification is created as a side effect of task mutations; only IsRead changes afterwards.
type Notification struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"userId"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	Type             Type      `json:"type"`
	IsRead           bool      `json:"isRead"`
	RelatedTaskID    *int64    `json:"relatedTaskId"`
	RelatedProjectID *int64    `json:"relatedProjectId"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Scopes an event can be addressed to.
const ScopeAll = "all"

func UserScope(userID string) string { return "user:" + userID }

// Event types pushed to connected clients.
const (
	EventTaskCreated         = "task.created"
	EventTaskUpdated         = "task.updated"
	EventTaskDeleted         = "task.deleted"
	EventCommentCreated      = "comment.created"
	EventProjectCreated      = "project.created"
	EventProjectUpdated      = "project.updated"
	EventProjectDeleted      = "project.deleted"
	EventNotificationCreated = "notification.created"
	EventTimerStarted        = "timer.started"
	EventTimerStopped        = "timer.stopped"
	EventFileUploaded        = "file.uploaded"
	EventFileDeleted         = "file.deleted"
)

type Event struct {
	Scope   string          `json:"scope"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
}

func NewEvent(scope, eventType string, payload any) Event {
	ev := Event{Scope: scope, Type: eventType, At: time.Now().UTC()}
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			ev.Payload = b
		}
	}
	return ev
}

// Publisher delivers events best-effort. Delivery failures are never reported
// to the caller.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Discard is a Publisher that drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
