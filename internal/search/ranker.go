package search

import (
	"context"
	"strings"
	"unicode/utf8"

	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

// Ranker orders a task snapshot by relevance to a free-text query and returns
// the ids of the matching tasks, best first.
type Ranker interface {
	Rank(ctx context.Context, query string, tasks []taskdomain.TaskWithDetails) ([]int64, error)
}

// minTermRunes is the shortest query term the keyword matcher considers.
const minTermRunes = 3

// Terms splits q into lowercase terms longer than two characters.
func Terms(q string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(q)) {
		if utf8.RuneCountInString(f) >= minTermRunes {
			out = append(out, f)
		}
	}
	return out
}

// KeywordMatch keeps every task whose title, description, status, priority or
// project name contains at least one query term. Input order is preserved.
func KeywordMatch(query string, tasks []taskdomain.TaskWithDetails) []taskdomain.TaskWithDetails {
	terms := Terms(query)
	out := []taskdomain.TaskWithDetails{}
	if len(terms) == 0 {
		return out
	}
	for _, t := range tasks {
		hay := haystack(t)
		for _, term := range terms {
			if strings.Contains(hay, term) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func haystack(t taskdomain.TaskWithDetails) string {
	parts := []string{t.Title, t.Description, string(t.Status), string(t.Priority)}
	if t.ProjectName != nil {
		parts = append(parts, *t.ProjectName)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
