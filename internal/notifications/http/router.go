package http

import "github.com/gin-gonic/gin"

// Register attaches notification routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/unread-count", h.unreadCount)
	rg.GET("/stream", h.stream)
	rg.PATCH("/:id/read", h.markRead)
	rg.POST("/read-all", h.markAllRead)
}
