package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/auth"
	"github.com/atelier-arq/atelier-backend/internal/users/domain"
)

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": auth.UserFrom(c)})
}

func (h *Handler) list(c *gin.Context) {
	includeInactive := c.Query("includeInactive") == "true" && auth.ActorFrom(c).IsAdmin()
	items, err := h.svc.List(c.Request.Context(), includeInactive)
	if err != nil {
		respond.Error(c, "list_users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": items})
}

func (h *Handler) get(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, "get_user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

func (h *Handler) changeRole(c *gin.Context) {
	var req roleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadBody(c, err)
		return
	}
	u, err := h.svc.ChangeRole(c.Request.Context(), auth.ActorFrom(c), c.Param("id"), domain.Role(req.Role))
	if err != nil {
		respond.Error(c, "change_role", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

func (h *Handler) setActive(c *gin.Context) {
	var req activeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadBody(c, err)
		return
	}
	if req.IsActive == nil {
		respond.Error(c, "set_active", apperr.Validation("isActive", "is required"))
		return
	}
	u, err := h.svc.SetActive(c.Request.Context(), auth.ActorFrom(c), c.Param("id"), *req.IsActive)
	if err != nil {
		respond.Error(c, "set_active", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}
