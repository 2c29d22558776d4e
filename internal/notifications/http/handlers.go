package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	"github.com/atelier-arq/atelier-backend/internal/auth"
)

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	unreadOnly := c.Query("unread") == "true"
	items, err := h.svc.List(c.Request.Context(), auth.ActorFrom(c).UserID, unreadOnly, limit)
	if err != nil {
		respond.Error(c, "list_notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notifications": items})
}

func (h *Handler) unreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), auth.ActorFrom(c).UserID)
	if err != nil {
		respond.Error(c, "unread_count", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": n})
}

func (h *Handler) markRead(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "mark_read", err)
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), auth.ActorFrom(c).UserID, id); err != nil {
		respond.Error(c, "mark_read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) markAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context(), auth.ActorFrom(c).UserID)
	if err != nil {
		respond.Error(c, "mark_all_read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "updated": n})
}
