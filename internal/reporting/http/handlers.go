package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	"github.com/atelier-arq/atelier-backend/internal/reporting"
	"github.com/atelier-arq/atelier-backend/internal/reporting/service"
)

// Handler bundles the dependencies for dashboard and report endpoints.
type Handler struct {
	svc *service.ReportService
	now func() time.Time
}

func New(svc *service.ReportService) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

// Register attaches dashboard and report routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard/stats", h.dashboard)
	rg.GET("/users/:id/stats", h.userStats)
	rg.GET("/reports/tasks", h.tasks)
	rg.POST("/reports/pdf", h.pdf)
}

type pdfReq struct {
	reporting.FilterInput
	ExportedAt *time.Time `json:"exportedAt"`
}

func (h *Handler) dashboard(c *gin.Context) {
	st, err := h.svc.DashboardStats(c.Request.Context())
	if err != nil {
		respond.Error(c, "dashboard_stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": st})
}

func (h *Handler) userStats(c *gin.Context) {
	st, err := h.svc.UserStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, "user_stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": st})
}

func (h *Handler) tasks(c *gin.Context) {
	var in reporting.FilterInput
	if err := c.ShouldBindQuery(&in); err != nil {
		respond.BadBody(c, err)
		return
	}
	f, err := in.Parse(h.svc.Location())
	if err != nil {
		respond.Error(c, "report_tasks", err)
		return
	}
	items, err := h.svc.FilteredTasks(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, "report_tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tasks": items, "count": len(items)})
}

// pdf renders into memory first so a failed render still yields a JSON error
// instead of a truncated document.
func (h *Handler) pdf(c *gin.Context) {
	var req pdfReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.BadBody(c, err)
			return
		}
	}
	f, err := req.Parse(h.svc.Location())
	if err != nil {
		respond.Error(c, "report_pdf", err)
		return
	}
	exportedAt := h.now()
	if req.ExportedAt != nil {
		exportedAt = *req.ExportedAt
	}

	var buf bytes.Buffer
	if err := h.svc.WritePDF(c.Request.Context(), &buf, f, exportedAt); err != nil {
		respond.Error(c, "report_pdf", err)
		return
	}

	name := fmt.Sprintf("relatorio-tarefas-%s.pdf", exportedAt.In(h.svc.Location()).Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
