package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/files/domain"
	"github.com/atelier-arq/atelier-backend/internal/files/service"
	"github.com/atelier-arq/atelier-backend/internal/files/storage"
	projectdomain "github.com/atelier-arq/atelier-backend/internal/projects/domain"
	"github.com/atelier-arq/atelier-backend/internal/storage/memory"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

var (
	ana   = usersdomain.Actor{UserID: "ana", Role: usersdomain.RoleProjectManager}
	bruno = usersdomain.Actor{UserID: "bruno", Role: usersdomain.RoleCollaborator}
	carla = usersdomain.Actor{UserID: "carla", Role: usersdomain.RoleAdmin}
)

// flakyStore wraps a real store and fails the operations it is told to.
type flakyStore struct {
	storage.ObjectStore
	failPut    bool
	failDelete bool
}

func (s *flakyStore) Put(ctx context.Context, key string, body io.Reader, size int64, ct string) error {
	if s.failPut {
		return errors.New("disk full")
	}
	return s.ObjectStore.Put(ctx, key, body, size, ct)
}

func (s *flakyStore) Delete(ctx context.Context, key string) error {
	if s.failDelete {
		return errors.New("permission denied")
	}
	return s.ObjectStore.Delete(ctx, key)
}

// stuckRepo refuses to delete metadata rows.
type stuckRepo struct {
	service.Repository
}

func (stuckRepo) Delete(context.Context, int64) error { return errors.New("connection reset") }

type fixture struct {
	store   *memory.Store
	objects *flakyStore
	project int64
	task    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	p := &projectdomain.Project{Name: "Casa Jardins", Status: projectdomain.StatusActive}
	require.NoError(t, st.Projects().Create(ctx, p))
	task := &taskdomain.Task{Title: "Planta baixa", Status: taskdomain.StatusOpen, Priority: taskdomain.PriorityMedium, ProjectID: &p.ID, CreatedUserID: "ana"}
	require.NoError(t, st.Tasks().Create(ctx, task))

	return &fixture{store: st, objects: &flakyStore{ObjectStore: local}, project: p.ID, task: task.ID}
}

func (f *fixture) service(repo service.Repository) *service.FileService {
	if repo == nil {
		repo = f.store.Files()
	}
	return service.NewFileService(repo, f.store.References(), f.objects, nil, 64)
}

func input(name, body string, taskID, projectID *int64) domain.UploadInput {
	return domain.UploadInput{
		OriginalName: name,
		Size:         int64(len(body)),
		TaskID:       taskID,
		ProjectID:    projectID,
		Body:         strings.NewReader(body),
	}
}

func TestUpload_ThenOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(nil)

	up, err := svc.Upload(ctx, ana, input("../../Planta.PDF", "%PDF-1.4", &f.task, nil))
	require.NoError(t, err)
	assert.Equal(t, "Planta.PDF", up.OriginalName)
	assert.True(t, strings.HasSuffix(up.Path, ".pdf"))
	assert.Equal(t, "application/octet-stream", up.MimeType)
	assert.Equal(t, "ana", up.UploadedUserID)

	meta, body, err := svc.Open(ctx, up.ID)
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, up.ID, meta.ID)

	byTask, err := svc.List(ctx, domain.ListFilter{TaskID: &f.task})
	require.NoError(t, err)
	assert.Len(t, byTask, 1)
	byProject, err := svc.List(ctx, domain.ListFilter{ProjectID: &f.project})
	require.NoError(t, err)
	assert.Len(t, byProject, 1, "files of a project's tasks belong to the project")
}

func TestUpload_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(nil)
	missing := int64(999)

	cases := []struct {
		name  string
		in    domain.UploadInput
		kind  apperr.Kind
		field string
	}{
		{"no name", input("  ", "abc", nil, nil), apperr.KindValidation, "file"},
		{"empty body", input("a.txt", "", nil, nil), apperr.KindValidation, "file"},
		{"too large", input("a.txt", strings.Repeat("x", 65), nil, nil), apperr.KindValidation, "file"},
		{"unknown task", input("a.txt", "abc", &missing, nil), apperr.KindNotFound, "taskId"},
		{"unknown project", input("a.txt", "abc", nil, &missing), apperr.KindNotFound, "projectId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, ana, tc.in)
			e, ok := apperr.As(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.field, e.Field)
		})
	}
}

func TestUpload_StoreFailureLeavesNoRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.objects.failPut = true
	svc := f.service(nil)

	_, err := svc.Upload(ctx, ana, input("a.txt", "abc", nil, &f.project))
	assert.Equal(t, apperr.KindIO, apperr.KindOf(err))

	files, err := svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDelete_OnlyUploaderOrAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(nil)

	first, err := svc.Upload(ctx, ana, input("a.txt", "abc", nil, &f.project))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, ana, input("b.txt", "def", nil, &f.project))
	require.NoError(t, err)

	err = svc.Delete(ctx, bruno, first.ID)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	require.NoError(t, svc.Delete(ctx, ana, first.ID))
	require.NoError(t, svc.Delete(ctx, carla, second.ID))

	_, _, err = svc.Open(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	files, err := svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDelete_StorageFailureKeepsRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(nil)
	up, err := svc.Upload(ctx, ana, input("a.txt", "abc", nil, &f.project))
	require.NoError(t, err)

	f.objects.failDelete = true
	err = svc.Delete(ctx, ana, up.ID)
	assert.Equal(t, apperr.KindIO, apperr.KindOf(err))

	_, err = svc.Get(ctx, up.ID)
	assert.NoError(t, err)
}

func TestDelete_MetadataFailureIsReported(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	up, err := f.service(nil).Upload(ctx, ana, input("a.txt", "abc", nil, &f.project))
	require.NoError(t, err)

	err = f.service(stuckRepo{Repository: f.store.Files()}).Delete(ctx, ana, up.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindIO, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "metadata could not be deleted")
}

func TestRemoveTaskObjects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.service(nil)
	onTask, err := svc.Upload(ctx, ana, input("a.txt", "abc", &f.task, nil))
	require.NoError(t, err)
	onProject, err := svc.Upload(ctx, ana, input("b.txt", "def", nil, &f.project))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveTaskObjects(ctx, f.task))

	_, _, err = svc.Open(ctx, onTask.ID)
	assert.Equal(t, apperr.KindIO, apperr.KindOf(err))
	_, body, err := svc.Open(ctx, onProject.ID)
	require.NoError(t, err)
	body.Close()
}
