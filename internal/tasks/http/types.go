package http

import "github.com/atelier-arq/atelier-backend/internal/tasks/service"

// Handler bundles the dependencies for task endpoints.
type Handler struct {
	svc *service.TaskService
}

func New(svc *service.TaskService) *Handler {
	return &Handler{svc: svc}
}

type commentReq struct {
	Content string `json:"content"`
}
