package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/auth"
	"github.com/atelier-arq/atelier-backend/internal/timeentries/domain"
	"github.com/atelier-arq/atelier-backend/internal/timeentries/service"
)

// Handler bundles the dependencies for timer endpoints.
type Handler struct {
	svc *service.TimerService
}

func New(svc *service.TimerService) *Handler {
	return &Handler{svc: svc}
}

// Register attaches timer routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/timer/start", h.start)
	rg.POST("/timer/stop", h.stop)
	rg.GET("/timer/active", h.active)
	rg.GET("/time-entries", h.list)
}

type startReq struct {
	TaskID      int64  `json:"taskId"`
	Description string `json:"description"`
}

func (h *Handler) start(c *gin.Context) {
	var req startReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadBody(c, err)
		return
	}
	if req.TaskID <= 0 {
		respond.Error(c, "start_timer", apperr.Validation("taskId", "is required"))
		return
	}
	res, err := h.svc.Start(c.Request.Context(), auth.ActorFrom(c).UserID, req.TaskID, req.Description)
	if err != nil {
		respond.Error(c, "start_timer", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "entry": res.Entry, "closed": res.Closed})
}

func (h *Handler) stop(c *gin.Context) {
	e, err := h.svc.Stop(c.Request.Context(), auth.ActorFrom(c).UserID)
	if err != nil {
		respond.Error(c, "stop_timer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "entry": e})
}

// active reports a null entry rather than 404 when nothing is running.
func (h *Handler) active(c *gin.Context) {
	e, err := h.svc.Active(c.Request.Context(), auth.ActorFrom(c).UserID)
	if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
		respond.Error(c, "active_timer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "entry": e})
}

func (h *Handler) list(c *gin.Context) {
	taskID, err := respond.QueryID(c, "taskId")
	if err != nil {
		respond.Error(c, "list_time_entries", err)
		return
	}
	userID := strings.TrimSpace(c.Query("userId"))
	if userID == "" {
		userID = auth.ActorFrom(c).UserID
	}
	items, err := h.svc.List(c.Request.Context(), domain.ListFilter{UserID: userID, TaskID: taskID})
	if err != nil {
		respond.Error(c, "list_time_entries", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "entries": items})
}
