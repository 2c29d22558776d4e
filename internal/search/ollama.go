package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

const systemPrompt = `You help architects find tasks in their project tracker.

You are given a numbered list of tasks in the form "id | title | status | priority | project | description"
and a question written in Portuguese or English.

Rules:
- Only return ids that appear in the list.
- Order ids from most to least relevant.
- Return an empty list when nothing matches.

Return JSON: {"ids": [number, ...]}.`

// maxSnapshot caps how many tasks are sent to the model in one prompt.
const maxSnapshot = 200

// OllamaRanker asks a local Ollama model to rank tasks.
type OllamaRanker struct {
	BaseURL string
	Model   string
	HTTP    *http.Client
}

func NewOllamaRanker(baseURL, model string, timeout time.Duration) *OllamaRanker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OllamaRanker{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Format  string         `json:"format"`
	Stream  bool           `json:"stream"`
	System  string         `json:"system"`
	Prompt  string         `json:"prompt"`
	Options map[string]any `json:"options,omitempty"`
}

func (o *OllamaRanker) Rank(ctx context.Context, query string, tasks []taskdomain.TaskWithDetails) ([]int64, error) {
	if o.BaseURL == "" {
		return nil, errors.New("ollama: base url not configured")
	}
	body, err := json.Marshal(generateRequest{
		Model:  o.Model,
		Format: "json",
		Stream: false,
		System: systemPrompt,
		Prompt: fmt.Sprintf("Tasks:\n%s\nQuestion:\n%s\n\nReturn only the JSON.", snapshot(tasks), query),
		Options: map[string]any{
			"temperature": 0.0,
			"num_predict": 256,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ollama generate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var gen struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return nil, fmt.Errorf("ollama decode: %w", err)
	}
	var out struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.Unmarshal([]byte(gen.Response), &out); err != nil {
		return nil, fmt.Errorf("ollama decode ranking: %w", err)
	}
	if out.IDs == nil {
		return nil, errors.New("ollama: response has no ids")
	}
	return out.IDs, nil
}

func snapshot(tasks []taskdomain.TaskWithDetails) string {
	var b strings.Builder
	for i, t := range tasks {
		if i == maxSnapshot {
			break
		}
		project := "-"
		if t.ProjectName != nil {
			project = *t.ProjectName
		}
		desc := strings.Join(strings.Fields(t.Description), " ")
		if r := []rune(desc); len(r) > 160 {
			desc = string(r[:160])
		}
		fmt.Fprintf(&b, "%d | %s | %s | %s | %s | %s\n", t.ID, t.Title, t.Status, t.Priority, project, desc)
	}
	return b.String()
}
