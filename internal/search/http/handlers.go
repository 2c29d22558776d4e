package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	"github.com/atelier-arq/atelier-backend/internal/search"
)

type Handler struct {
	svc *search.Service
}

func New(svc *search.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.search)
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadBody(c, err)
		return
	}
	res, err := h.svc.Search(c.Request.Context(), req.Query)
	if err != nil {
		respond.Error(c, "search_tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "query": res.Query, "source": res.Source, "tasks": res.Tasks})
}
