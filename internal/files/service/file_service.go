package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/files/domain"
	"github.com/atelier-arq/atelier-backend/internal/files/storage"
	"github.com/atelier-arq/atelier-backend/internal/logging"
	notifdomain "github.com/atelier-arq/atelier-backend/internal/notifications/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

const defaultMimeType = "application/octet-stream"

type Repository interface {
	Create(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, id int64) (*domain.File, error)
	List(ctx context.Context, f domain.ListFilter) ([]domain.File, error)
	Delete(ctx context.Context, id int64) error
}

type References interface {
	ProjectExists(ctx context.Context, id int64) (bool, error)
	TaskExists(ctx context.Context, id int64) (bool, error)
}

// FileService keeps storage objects and metadata rows together: objects are
// written before their row and removed before it.
type FileService struct {
	repo     Repository
	refs     References
	store    storage.ObjectStore
	events   notifdomain.Publisher
	maxBytes int64
}

func NewFileService(repo Repository, refs References, store storage.ObjectStore, events notifdomain.Publisher, maxBytes int64) *FileService {
	if events == nil {
		events = notifdomain.Discard{}
	}
	return &FileService{repo: repo, refs: refs, store: store, events: events, maxBytes: maxBytes}
}

func (s *FileService) Upload(ctx context.Context, actor usersdomain.Actor, in domain.UploadInput) (*domain.File, error) {
	name := filepath.Base(strings.TrimSpace(in.OriginalName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, apperr.Validation("file", "is required")
	}
	if in.Size <= 0 {
		return nil, apperr.Validation("file", "must not be empty")
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, apperr.Validation("file", "must be at most %d bytes", s.maxBytes)
	}
	if err := s.checkRefs(ctx, in.TaskID, in.ProjectID); err != nil {
		return nil, err
	}

	mime := strings.TrimSpace(in.MimeType)
	if mime == "" {
		mime = defaultMimeType
	}
	key := uuid.NewString() + strings.ToLower(filepath.Ext(name))

	if err := s.store.Put(ctx, key, in.Body, in.Size, mime); err != nil {
		return nil, apperr.IO(err, "store file")
	}

	f := &domain.File{
		Filename:       key,
		OriginalName:   name,
		MimeType:       mime,
		Size:           in.Size,
		Path:           key,
		TaskID:         in.TaskID,
		ProjectID:      in.ProjectID,
		UploadedUserID: actor.UserID,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			logging.New(ctx).Errorf("upload_file", "orphaned object key=%s: %v", key, derr)
		}
		return nil, fmt.Errorf("create file metadata: %w", err)
	}

	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.ScopeAll, notifdomain.EventFileUploaded, f))
	return f, nil
}

func (s *FileService) List(ctx context.Context, f domain.ListFilter) ([]domain.File, error) {
	return s.repo.List(ctx, f)
}

func (s *FileService) Get(ctx context.Context, id int64) (*domain.File, error) {
	return s.repo.Get(ctx, id)
}

// Open returns the metadata and a reader for the stored body. The caller closes it.
func (s *FileService) Open(ctx context.Context, id int64) (*domain.File, io.ReadCloser, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.store.Open(ctx, f.Path)
	if err != nil {
		return nil, nil, apperr.IO(err, "open file %d", id)
	}
	return f, body, nil
}

// Delete removes the stored object, then the metadata row. Only the uploader
// or an admin may delete. If the row cannot be removed after the object is
// gone, the returned IO error says so.
func (s *FileService) Delete(ctx context.Context, actor usersdomain.Actor, id int64) error {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if f.UploadedUserID != actor.UserID && !actor.IsAdmin() {
		return apperr.Permission("only the uploader or an admin can delete this file")
	}
	if err := s.store.Delete(ctx, f.Path); err != nil {
		return apperr.IO(err, "delete stored file %d", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.IO(err, "stored object of file %d was removed but its metadata could not be deleted", id)
	}
	s.events.Publish(ctx, notifdomain.NewEvent(notifdomain.ScopeAll, notifdomain.EventFileDeleted, map[string]int64{"id": id}))
	return nil
}

// RemoveTaskObjects deletes the stored bodies of a task's files. The rows go
// with the task's cascading delete.
func (s *FileService) RemoveTaskObjects(ctx context.Context, taskID int64) error {
	return s.removeObjects(ctx, domain.ListFilter{TaskID: &taskID})
}

// RemoveProjectObjects covers files attached to the project and to its tasks.
func (s *FileService) RemoveProjectObjects(ctx context.Context, projectID int64) error {
	return s.removeObjects(ctx, domain.ListFilter{ProjectID: &projectID})
}

func (s *FileService) removeObjects(ctx context.Context, filter domain.ListFilter) error {
	files, err := s.repo.List(ctx, filter)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.store.Delete(ctx, f.Path); err != nil {
			return apperr.IO(err, "delete stored file %d", f.ID)
		}
	}
	return nil
}

func (s *FileService) checkRefs(ctx context.Context, taskID, projectID *int64) error {
	if taskID != nil {
		ok, err := s.refs.TaskExists(ctx, *taskID)
		if err != nil {
			return err
		}
		if !ok {
			return &apperr.Error{Kind: apperr.KindNotFound, Field: "taskId", Message: fmt.Sprintf("task %d not found", *taskID)}
		}
	}
	if projectID != nil {
		ok, err := s.refs.ProjectExists(ctx, *projectID)
		if err != nil {
			return err
		}
		if !ok {
			return &apperr.Error{Kind: apperr.KindNotFound, Field: "projectId", Message: fmt.Sprintf("project %d not found", *projectID)}
		}
	}
	return nil
}
