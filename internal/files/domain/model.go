package domain

import (
	"io"
	"time"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
)

var ErrFileNotFound = &apperr.Error{Kind: apperr.KindNotFound, Message: "file not found"}

// File is the metadata row of a stored object. Path is the storage key.
type File struct {
	ID             int64     `json:"id"`
	Filename       string    `json:"filename"`
	OriginalName   string    `json:"originalName"`
	MimeType       string    `json:"mimeType"`
	Size           int64     `json:"size"`
	Path           string    `json:"path"`
	TaskID         *int64    `json:"taskId"`
	ProjectID      *int64    `json:"projectId"`
	UploadedUserID string    `json:"uploadedUserId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type ListFilter struct {
	TaskID    *int64
	ProjectID *int64
}

type UploadInput struct {
	OriginalName string
	MimeType     string
	Size         int64
	TaskID       *int64
	ProjectID    *int64
	Body         io.Reader
}
