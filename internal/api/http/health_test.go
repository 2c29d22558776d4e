package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/atelier-arq/atelier-backend/internal/api/http"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name      string
		db, redis httpapi.Pinger
		wantCode   int
		wantStatus string
		wantDB     string
		wantRedis  string
	}{
		{"all up", pinger{}, pinger{}, http.StatusOK, "healthy", "up", "up"},
		{"redis not configured", pinger{}, nil, http.StatusOK, "healthy", "up", "disabled"},
		{"db down", pinger{err: errors.New("refused")}, nil, http.StatusServiceUnavailable, "degraded", "down", "disabled"},
		{"redis down", pinger{}, pinger{err: errors.New("timeout")}, http.StatusServiceUnavailable, "degraded", "up", "down"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			httpapi.NewHealthHandler("atelier-backend", "1.0.0", tc.db, tc.redis).RegisterRoutes(r)

			for _, path := range []string{"/health", "/healthz"} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				assert.Equal(t, tc.wantCode, w.Code)

				var resp httpapi.HealthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tc.wantStatus, resp.Status)
				assert.Equal(t, "atelier-backend", resp.Service)
				assert.Equal(t, "1.0.0", resp.Version)
				assert.Equal(t, tc.wantDB, resp.DB)
				assert.Equal(t, tc.wantRedis, resp.Redis)
				assert.False(t, resp.Timestamp.IsZero())
			}
		})
	}
}
