package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	"github.com/atelier-arq/atelier-backend/internal/auth"
	"github.com/atelier-arq/atelier-backend/internal/projects/domain"
)

func (h *Handler) create(c *gin.Context) {
	var req domain.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadBody(c, err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), auth.ActorFrom(c), req)
	if err != nil {
		respond.Error(c, "create_project", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, "list_projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "get_project", err)
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "get_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "update_project", err)
		return
	}
	var req domain.Patch
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadBody(c, err)
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respond.Error(c, "update_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "delete_project", err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), auth.ActorFrom(c), id); err != nil {
		respond.Error(c, "delete_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
