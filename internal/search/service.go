package search

import (
	"context"
	"strings"

	"golang.org/x/time/rate"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/logging"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

// Source tells which path produced a result.
type Source string

const (
	SourceLLM     Source = "llm"
	SourceKeyword Source = "keyword"
)

type TaskLister interface {
	List(ctx context.Context, f taskdomain.ListFilter) ([]taskdomain.TaskWithDetails, error)
}

type Result struct {
	Query  string                       `json:"query"`
	Source Source                       `json:"source"`
	Tasks  []taskdomain.TaskWithDetails `json:"tasks"`
}

// Service answers free-text task searches. The ranker is optional; any ranker
// failure, a throttled call, or a missing ranker falls back to KeywordMatch.
type Service struct {
	tasks   TaskLister
	ranker  Ranker
	limiter *rate.Limiter
}

// NewService builds a search service. ranker may be nil. rps <= 0 disables
// throttling of ranker calls.
func NewService(tasks TaskLister, ranker Ranker, rps float64) *Service {
	s := &Service{tasks: tasks, ranker: ranker}
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return s
}

func (s *Service) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("query", "must not be empty")
	}
	snapshot, err := s.tasks.List(ctx, taskdomain.ListFilter{})
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, query, snapshot), nil
}

func (s *Service) rank(ctx context.Context, query string, snapshot []taskdomain.TaskWithDetails) *Result {
	log := logging.New(ctx)
	if s.ranker != nil {
		if s.limiter != nil && !s.limiter.Allow() {
			log.Warnf("search_tasks", "ranker throttled, using keyword match")
		} else if ids, err := s.ranker.Rank(ctx, query, snapshot); err != nil {
			log.Warnf("search_tasks", "ranker failed, using keyword match: %v", err)
		} else {
			return &Result{Query: query, Source: SourceLLM, Tasks: pick(snapshot, ids)}
		}
	}
	return &Result{Query: query, Source: SourceKeyword, Tasks: KeywordMatch(query, snapshot)}
}

// pick resolves ranked ids against the snapshot, dropping unknown and repeated ids.
func pick(snapshot []taskdomain.TaskWithDetails, ids []int64) []taskdomain.TaskWithDetails {
	byID := make(map[int64]taskdomain.TaskWithDetails, len(snapshot))
	for _, t := range snapshot {
		byID[t.ID] = t
	}
	out := make([]taskdomain.TaskWithDetails, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, t)
		delete(byID, id)
	}
	return out
}
