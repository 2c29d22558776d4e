package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

func sampleTasks() []taskdomain.TaskWithDetails {
	return []taskdomain.TaskWithDetails{
		mkTask(1, "Orçamento Vila Madalena", taskdomain.StatusOpen, taskdomain.PriorityHigh, 0, withProject(10, "Residência Alto"), assignedTo("ana")),
		mkTask(2, "Planta baixa", taskdomain.StatusDone, taskdomain.PriorityMedium, 1, withProject(10, "Residência Alto"), assignedTo("bruno")),
		mkTask(3, "Fachada", taskdomain.StatusInProgress, taskdomain.PriorityHigh, 2, withProject(20, "Loja Centro"), assignedTo("ana")),
		mkTask(4, "Compatibilização", taskdomain.StatusDone, taskdomain.PriorityLow, 3, described("revisar orçamento de estrutura")),
		mkTask(5, "Memorial descritivo", taskdomain.StatusCancelled, taskdomain.PriorityCritical, 4, assignedTo("ana")),
	}
}

func ids(tasks []taskdomain.TaskWithDetails) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterTasksEmptyFilterIsIdentity(t *testing.T) {
	tasks := sampleTasks()
	got := FilterTasks(tasks, Filter{})
	assert.Equal(t, tasks, got)

	got = FilterTasks(tasks, Filter{SearchText: "   "})
	assert.Equal(t, ids(tasks), ids(got))
}

func TestFilterTasksSingleFields(t *testing.T) {
	tasks := sampleTasks()
	tests := []struct {
		name string
		f    Filter
		want []int64
	}{
		{"status", Filter{Status: taskdomain.StatusDone}, []int64{2, 4}},
		{"priority", Filter{Priority: taskdomain.PriorityHigh}, []int64{1, 3}},
		{"user", Filter{UserID: "ana"}, []int64{1, 3, 5}},
		{"project", Filter{ProjectID: ref(int64(10))}, []int64{1, 2}},
		{"search title", Filter{SearchText: "FACHADA"}, []int64{3}},
		{"search description", Filter{SearchText: "orçamento"}, []int64{1, 4}},
		{"search project name", Filter{SearchText: "loja"}, []int64{3}},
		{"date from inclusive", Filter{DateFrom: day0.AddDate(0, 0, 3).Add(6 * time.Hour)}, []int64{4, 5}},
		{"date to inclusive", Filter{DateTo: day0.AddDate(0, 0, 1).Add(-11 * time.Hour)}, []int64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterTasks(tasks, tt.f)))
		})
	}
}

func TestFilterTasksIsIntersection(t *testing.T) {
	tasks := sampleTasks()
	parts := []Filter{
		{UserID: "ana"},
		{Priority: taskdomain.PriorityHigh},
		{DateFrom: day0.AddDate(0, 0, 1)},
	}
	combined := Filter{UserID: "ana", Priority: taskdomain.PriorityHigh, DateFrom: day0.AddDate(0, 0, 1)}

	forward := tasks
	for _, p := range parts {
		forward = FilterTasks(forward, p)
	}
	backward := tasks
	for i := len(parts) - 1; i >= 0; i-- {
		backward = FilterTasks(backward, parts[i])
	}

	want := ids(FilterTasks(tasks, combined))
	assert.Equal(t, []int64{3}, want)
	assert.Equal(t, want, ids(forward))
	assert.Equal(t, want, ids(backward))
}

func TestFilterTasksDoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	before := ids(tasks)
	_ = FilterTasks(tasks, Filter{Status: taskdomain.StatusDone})
	assert.Equal(t, before, ids(tasks))
}

func TestFilterInputParse(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	f, err := FilterInput{
		DateFrom:   "2026-04-01",
		DateTo:     "2026-04-30",
		Priority:   "alta",
		Status:     "concluida",
		ProjectID:  "7",
		SearchText: "  vila ",
	}.Parse(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, loc), f.DateFrom)
	assert.Equal(t, taskdomain.PriorityHigh, f.Priority)
	assert.Equal(t, taskdomain.StatusDone, f.Status)
	assert.Equal(t, int64(7), *f.ProjectID)
	assert.Equal(t, "vila", f.SearchText)

	empty, err := FilterInput{}.Parse(loc)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	bad := []struct {
		in    FilterInput
		field string
	}{
		{FilterInput{DateFrom: "01/04/2026"}, "dateFrom"},
		{FilterInput{DateFrom: "2026-04-10", DateTo: "2026-04-09"}, "dateTo"},
		{FilterInput{Priority: "urgente"}, "priority"},
		{FilterInput{Status: "feita"}, "status"},
		{FilterInput{ProjectID: "abc"}, "projectId"},
	}
	for _, b := range bad {
		_, err := b.in.Parse(loc)
		e, ok := apperr.As(err)
		require.True(t, ok, "input %+v", b.in)
		assert.Equal(t, apperr.KindValidation, e.Kind)
		assert.Equal(t, b.field, e.Field)
	}
}
