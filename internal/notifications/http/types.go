package http

import (
	"time"

	"github.com/atelier-arq/atelier-backend/internal/notifications/hub"
	"github.com/atelier-arq/atelier-backend/internal/notifications/service"
)

const (
	keepAliveInterval = 15 * time.Second
	retryHintMillis   = 3000
)

// Handler bundles the dependencies for notification endpoints.
type Handler struct {
	svc       *service.NotificationService
	hub       *hub.Hub
	keepAlive time.Duration
}

func New(svc *service.NotificationService, h *hub.Hub) *Handler {
	return &Handler{svc: svc, hub: h, keepAlive: keepAliveInterval}
}
