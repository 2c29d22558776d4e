package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/auth"
	"github.com/atelier-arq/atelier-backend/internal/notifications/domain"
)

// stream pushes the caller's events and global events as Server-Sent Events.
// Events emitted while the client is disconnected are not replayed.
func (h *Handler) stream(c *gin.Context) {
	userID := auth.ActorFrom(c).UserID

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{"kind": "internal", "message": "streaming unsupported"}})
		return
	}

	sub := h.hub.Subscribe(domain.UserScope(userID), domain.ScopeAll)
	defer h.hub.Unsubscribe(sub)

	c.Status(http.StatusOK)
	fmt.Fprintf(c.Writer, "retry: %d\n\n", retryHintMillis)
	ready, _ := json.Marshal(gin.H{"subscriptionId": sub.ID, "userId": userID})
	fmt.Fprintf(c.Writer, "event: ready\ndata: %s\n\n", ready)
	flusher.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, ok := <-sub.C:
			if !ok {
				// dropped as a slow consumer; the client reconnects
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
