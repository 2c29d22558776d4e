package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	depUp       = "up"
	depDown     = "down"
	depDisabled = "disabled"

	probeTimeout = time.Second
)

// Pinger is satisfied by the store handle and by the redis client adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db,omitempty"`
	Redis     string    `json:"redis,omitempty"`
}

// HealthHandler reports liveness plus the state of each backing service.
// A nil dependency is reported as disabled and never degrades the status.
type HealthHandler struct {
	service string
	version string
	db      Pinger
	redis   Pinger
}

func NewHealthHandler(serviceName, version string, db, redis Pinger) *HealthHandler {
	return &HealthHandler{service: serviceName, version: version, db: db, redis: redis}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.check)
	r.GET("/healthz", h.check)
}

func (h *HealthHandler) check(c *gin.Context) {
	ctx := c.Request.Context()
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.service,
		Version:   h.version,
		DB:        probe(ctx, h.db),
		Redis:     probe(ctx, h.redis),
	}

	code := http.StatusOK
	if resp.DB == depDown || resp.Redis == depDown {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return depDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if p.Ping(ctx) != nil {
		return depDown
	}
	return depUp
}
