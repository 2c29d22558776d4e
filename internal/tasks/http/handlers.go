package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	"github.com/atelier-arq/atelier-backend/internal/auth"
	"github.com/atelier-arq/atelier-backend/internal/tasks/domain"
)

func (h *Handler) list(c *gin.Context) {
	projectID, err := respond.QueryID(c, "projectId")
	if err != nil {
		respond.Error(c, "list_tasks", err)
		return
	}
	f := domain.ListFilter{
		AssignedUserID: strings.TrimSpace(c.Query("userId")),
		ProjectID:      projectID,
	}
	items, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, "list_tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": items})
}

func (h *Handler) create(c *gin.Context) {
	var req domain.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadBody(c, err)
		return
	}
	t, err := h.svc.CreateTask(c.Request.Context(), auth.ActorFrom(c), req)
	if err != nil {
		respond.Error(c, "create_task", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "task": t})
}

func (h *Handler) get(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "get_task", err)
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "get_task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": t})
}

func (h *Handler) update(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "update_task", err)
		return
	}
	var req domain.Patch
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadBody(c, err)
		return
	}
	t, err := h.svc.UpdateTask(c.Request.Context(), auth.ActorFrom(c), id, req)
	if err != nil {
		respond.Error(c, "update_task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "task": t})
}

func (h *Handler) delete(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "delete_task", err)
		return
	}
	if err := h.svc.DeleteTask(c.Request.Context(), auth.ActorFrom(c), id); err != nil {
		respond.Error(c, "delete_task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) history(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "task_history", err)
		return
	}
	items, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "task_history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "history": items})
}

func (h *Handler) comments(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "task_comments", err)
		return
	}
	items, err := h.svc.Comments(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "task_comments", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "comments": items})
}

func (h *Handler) addComment(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "add_comment", err)
		return
	}
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadBody(c, err)
		return
	}
	cm, err := h.svc.AddComment(c.Request.Context(), auth.ActorFrom(c), id, req.Content)
	if err != nil {
		respond.Error(c, "add_comment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": cm})
}
