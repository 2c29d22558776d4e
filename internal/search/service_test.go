package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

type staticLister []taskdomain.TaskWithDetails

func (s staticLister) List(context.Context, taskdomain.ListFilter) ([]taskdomain.TaskWithDetails, error) {
	return s, nil
}

type rankerFunc func(ctx context.Context, q string, tasks []taskdomain.TaskWithDetails) ([]int64, error)

func (f rankerFunc) Rank(ctx context.Context, q string, tasks []taskdomain.TaskWithDetails) ([]int64, error) {
	return f(ctx, q, tasks)
}

func TestSearchWithoutRankerUsesKeywords(t *testing.T) {
	svc := NewService(staticLister(snapshotTasks()), nil, 0)
	res, err := svc.Search(context.Background(), "orçamento")
	require.NoError(t, err)
	assert.Equal(t, SourceKeyword, res.Source)
	assert.Equal(t, []int64{1}, idsOf(res.Tasks))
}

func TestSearchFallsBackWhenRankerFails(t *testing.T) {
	failing := rankerFunc(func(context.Context, string, []taskdomain.TaskWithDetails) ([]int64, error) {
		return nil, errors.New("connection refused")
	})
	svc := NewService(staticLister(snapshotTasks()), failing, 0)
	res, err := svc.Search(context.Background(), "fachada")
	require.NoError(t, err)
	assert.Equal(t, SourceKeyword, res.Source)
	assert.Equal(t, []int64{3}, idsOf(res.Tasks))
}

func TestSearchUsesRankerOrder(t *testing.T) {
	ranked := rankerFunc(func(context.Context, string, []taskdomain.TaskWithDetails) ([]int64, error) {
		return []int64{3, 99, 1, 3}, nil
	})
	svc := NewService(staticLister(snapshotTasks()), ranked, 0)
	res, err := svc.Search(context.Background(), "o que falta entregar?")
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, res.Source)
	assert.Equal(t, []int64{3, 1}, idsOf(res.Tasks), "unknown and repeated ids are dropped")
}

func TestSearchThrottlesRanker(t *testing.T) {
	calls := 0
	ranked := rankerFunc(func(context.Context, string, []taskdomain.TaskWithDetails) ([]int64, error) {
		calls++
		return []int64{1}, nil
	})
	svc := NewService(staticLister(snapshotTasks()), ranked, 0.001)

	first, err := svc.Search(context.Background(), "orçamento")
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), "orçamento")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, SourceLLM, first.Source)
	assert.Equal(t, SourceKeyword, second.Source)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	svc := NewService(staticLister(nil), nil, 0)
	_, err := svc.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestOllamaRanker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json", req.Format)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, "Orçamento Vila Madalena")
		_ = json.NewEncoder(w).Encode(map[string]string{"response": `{"ids":[1,3]}`})
	}))
	defer srv.Close()

	r := NewOllamaRanker(srv.URL+"/", "llama3.1", time.Second)
	got, err := r.Rank(context.Background(), "orçamento", snapshotTasks())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, got)
}

func TestOllamaRankerErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}},
		{"malformed ranking", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"response": "claro! as tarefas são 1 e 3"})
		}},
		{"missing ids", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"response": `{"answer":"1"}`})
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := NewOllamaRanker(srv.URL, "llama3.1", 100*time.Millisecond)
			_, err := r.Rank(context.Background(), "orçamento", snapshotTasks())
			assert.Error(t, err)

			svc := NewService(staticLister(snapshotTasks()), r, 0)
			res, err := svc.Search(context.Background(), "orçamento")
			require.NoError(t, err)
			assert.Equal(t, SourceKeyword, res.Source)
			assert.Equal(t, []int64{1}, idsOf(res.Tasks))
		})
	}
}

func TestOllamaRankerWithoutURL(t *testing.T) {
	_, err := NewOllamaRanker("", "m", 0).Rank(context.Background(), "x", nil)
	assert.Error(t, err)
}
