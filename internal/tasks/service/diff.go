package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

func applyPatch(t domain.Task, p domain.Patch) domain.Task {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	t.ProjectID = p.ProjectID.Ptr(t.ProjectID)
	t.AssignedUserID = p.AssignedUserID.Ptr(t.AssignedUserID)
	t.StartDate = p.StartDate.Ptr(t.StartDate)
	t.DueDate = p.DueDate.Ptr(t.DueDate)
	t.EstimatedHours = p.EstimatedHours.Ptr(t.EstimatedHours)
	t.ActualHours = p.ActualHours.Ptr(t.ActualHours)
	return t
}

// diff lists changed fields as "field: before → after". Descriptions are
// reported without their text.
func diff(prev, next domain.Task) []string {
	var out []string
	add := func(field, before, after string) {
		if before != after {
			out = append(out, fmt.Sprintf("%s: %s → %s", field, before, after))
		}
	}

	add("title", prev.Title, next.Title)
	if prev.Description != next.Description {
		out = append(out, "description: alterada")
	}
	add("status", string(prev.Status), string(next.Status))
	add("priority", string(prev.Priority), string(next.Priority))
	add("projectId", fmtInt(prev.ProjectID), fmtInt(next.ProjectID))
	add("assignedUserId", fmtStr(prev.AssignedUserID), fmtStr(next.AssignedUserID))
	add("startDate", fmtDate(prev.StartDate), fmtDate(next.StartDate))
	add("dueDate", fmtDate(prev.DueDate), fmtDate(next.DueDate))
	add("estimatedHours", fmtFloat(prev.EstimatedHours), fmtFloat(next.EstimatedHours))
	add("actualHours", fmtFloat(prev.ActualHours), fmtFloat(next.ActualHours))
	return out
}

const empty = "(vazio)"

func fmtInt(v *int64) string {
	if v == nil {
		return empty
	}
	return strconv.FormatInt(*v, 10)
}

func fmtStr(v *string) string {
	if v == nil {
		return empty
	}
	return *v
}

func fmtDate(v *time.Time) string {
	if v == nil {
		return empty
	}
	return v.Format(time.RFC3339)
}

func fmtFloat(v *float64) string {
	if v == nil {
		return empty
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
