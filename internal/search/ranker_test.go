package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

func task(id int64, title, desc string, project string) taskdomain.TaskWithDetails {
	t := taskdomain.TaskWithDetails{Task: taskdomain.Task{
		ID:          id,
		Title:       title,
		Description: desc,
		Status:      taskdomain.StatusOpen,
		Priority:    taskdomain.PriorityMedium,
	}}
	if project != "" {
		t.ProjectName = &project
	}
	return t
}

func snapshotTasks() []taskdomain.TaskWithDetails {
	return []taskdomain.TaskWithDetails{
		task(1, "Orçamento Vila Madalena", "", "Residência Alto"),
		task(2, "Planta baixa", "revisar cotas", "Casa Jardins"),
		task(3, "Fachada", "", "Loja Centro"),
	}
}

func TestKeywordMatchIsCaseInsensitive(t *testing.T) {
	got := KeywordMatch("orçamento", snapshotTasks())
	if assert.Len(t, got, 1) {
		assert.Equal(t, int64(1), got[0].ID)
	}
	got = KeywordMatch("ORÇAMENTO", snapshotTasks())
	assert.Len(t, got, 1)
}

func TestKeywordMatchIgnoresShortTerms(t *testing.T) {
	assert.Empty(t, KeywordMatch("de da em", snapshotTasks()))
	assert.Empty(t, KeywordMatch("", snapshotTasks()))
}

func TestKeywordMatchAnyTermAcrossFields(t *testing.T) {
	got := KeywordMatch("cotas loja", snapshotTasks())
	assert.Equal(t, []int64{2, 3}, idsOf(got))

	got = KeywordMatch("aberta", snapshotTasks())
	assert.Len(t, got, 3, "status is searchable")

	got = KeywordMatch("jardins", snapshotTasks())
	assert.Equal(t, []int64{2}, idsOf(got))
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"orçamento", "são"}, Terms("  Orçamento de SÃO  "))
}

func idsOf(tasks []taskdomain.TaskWithDetails) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
