package http

import "github.com/atelier-arq/atelier-backend/internal/users/service"

// Handler bundles the dependencies for user endpoints.
type Handler struct {
	svc *service.UserService
}

func New(svc *service.UserService) *Handler {
	return &Handler{svc: svc}
}

type roleReq struct {
	Role string `json:"role"`
}

type activeReq struct {
	IsActive *bool `json:"isActive"`
}
