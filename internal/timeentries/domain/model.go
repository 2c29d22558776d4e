package domain

import (
	"time"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
)

var ErrNoActiveTimer = &apperr.Error{Kind: apperr.KindNotFound, Message: "no active timer for user"}

// TimeEntry is a tracked interval. At most one entry per user is active.
type TimeEntry struct {
	ID          int64      `json:"id"`
	TaskID      int64      `json:"taskId"`
	UserID      string     `json:"userId"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	Duration    *int       `json:"duration"` // minutes, set when stopped
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Close stops the entry at now, recording the elapsed whole minutes.
func (e *TimeEntry) Close(now time.Time) {
	minutes := int(now.Sub(e.StartTime) / time.Minute)
	if minutes < 0 {
		minutes = 0
	}
	end := now
	e.EndTime = &end
	e.Duration = &minutes
	e.IsActive = false
}

// Minutes returns the recorded duration, or 0 while the entry is running.
func (e TimeEntry) Minutes() int {
	if e.Duration == nil {
		return 0
	}
	return *e.Duration
}

type ListFilter struct {
	UserID string
	TaskID *int64
}
