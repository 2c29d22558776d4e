package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/auth"
	"github.com/atelier-arq/atelier-backend/internal/files/domain"
	"github.com/atelier-arq/atelier-backend/internal/files/service"
)

// Handler bundles the dependencies for file endpoints.
type Handler struct {
	svc      *service.FileService
	maxBytes int64
}

func New(svc *service.FileService, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

// Register attaches file routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.upload)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.GET("/:id/download", h.download)
	rg.DELETE("/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	if h.maxBytes > 0 {
		// multipart overhead on top of the file itself
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, "upload_file", apperr.Validation("file", "must be at most %d bytes", h.maxBytes))
			return
		}
		respond.Error(c, "upload_file", apperr.Validation("file", "is required"))
		return
	}
	taskID, err := formID(c, "taskId")
	if err != nil {
		respond.Error(c, "upload_file", err)
		return
	}
	projectID, err := formID(c, "projectId")
	if err != nil {
		respond.Error(c, "upload_file", err)
		return
	}

	body, err := fh.Open()
	if err != nil {
		respond.Error(c, "upload_file", apperr.IO(err, "read upload"))
		return
	}
	defer body.Close()

	f, err := h.svc.Upload(c.Request.Context(), auth.ActorFrom(c), domain.UploadInput{
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		TaskID:       taskID,
		ProjectID:    projectID,
		Body:         body,
	})
	if err != nil {
		respond.Error(c, "upload_file", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "file": f})
}

func (h *Handler) list(c *gin.Context) {
	taskID, err := respond.QueryID(c, "taskId")
	if err != nil {
		respond.Error(c, "list_files", err)
		return
	}
	projectID, err := respond.QueryID(c, "projectId")
	if err != nil {
		respond.Error(c, "list_files", err)
		return
	}
	items, err := h.svc.List(c.Request.Context(), domain.ListFilter{TaskID: taskID, ProjectID: projectID})
	if err != nil {
		respond.Error(c, "list_files", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "files": items})
}

func (h *Handler) get(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "get_file", err)
		return
	}
	f, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "get_file", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "file": f})
}

func (h *Handler) download(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "download_file", err)
		return
	}
	f, body, err := h.svc.Open(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "download_file", err)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.OriginalName))
	c.Header("Content-Length", strconv.FormatInt(f.Size, 10))
	c.Status(http.StatusOK)
	c.Header("Content-Type", f.MimeType)
	if _, err := io.Copy(c.Writer, body); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) delete(c *gin.Context) {
	id, err := respond.ParamID(c, "id")
	if err != nil {
		respond.Error(c, "delete_file", err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), auth.ActorFrom(c), id); err != nil {
		respond.Error(c, "delete_file", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func formID(c *gin.Context, name string) (*int64, error) {
	raw := c.PostForm(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.Validation(name, "must be a positive integer")
	}
	return &id, nil
}
