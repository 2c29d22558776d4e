package service_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	filedomain "github.com/atelier-arq/atelier-backend/internal/files/domain"
	filesvc "github.com/atelier-arq/atelier-backend/internal/files/service"
	"github.com/atelier-arq/atelier-backend/internal/files/storage"
	"github.com/atelier-arq/atelier-backend/internal/projects/domain"
	"github.com/atelier-arq/atelier-backend/internal/projects/service"
	"github.com/atelier-arq/atelier-backend/internal/storage/memory"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

var (
	admin = usersdomain.Actor{UserID: "carla", Role: usersdomain.RoleAdmin}
	pm    = usersdomain.Actor{UserID: "ana", Role: usersdomain.RoleProjectManager}
)

type fixture struct {
	svc   *service.ProjectService
	files *filesvc.FileService
	store *memory.Store
	dir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	dir := t.TempDir()
	objects, err := storage.NewLocal(dir)
	require.NoError(t, err)
	files := filesvc.NewFileService(st.Files(), st.References(), objects, nil, 1<<20)
	return &fixture{
		svc:   service.NewProjectService(st, st.Projects(), st.Tasks(), nil, files),
		files: files,
		store: st,
		dir:   dir,
	}
}

func (f *fixture) upload(t *testing.T, in filedomain.UploadInput, body string) *filedomain.File {
	t.Helper()
	in.Size = int64(len(body))
	in.Body = strings.NewReader(body)
	file, err := f.files.Upload(context.Background(), pm, in)
	require.NoError(t, err)
	return file
}

func storedObjects(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCreate_AppliesDefaults(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), pm, domain.CreateInput{Name: "  Casa Jardins  "})
	require.NoError(t, err)

	assert.Equal(t, "Casa Jardins", p.Name)
	assert.Equal(t, domain.StatusActive, p.Status)
	assert.Equal(t, domain.TypeArchitecture, p.Type)
	assert.Equal(t, domain.StageBriefing, p.Stage)
	assert.Equal(t, taskdomain.PriorityMedium, p.Priority)
	assert.Equal(t, "ana", p.CreatedUserID)
	assert.Empty(t, p.Tasks)
	assert.Equal(t, 0, p.Progress)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name  string
		in    domain.CreateInput
		field string
	}{
		{"blank name", domain.CreateInput{Name: "   "}, "name"},
		{"bad stage", domain.CreateInput{Name: "x", Stage: "demolicao"}, "stage"},
		{"bad email", domain.CreateInput{Name: "x", ClientEmail: "not-an-email"}, "clientEmail"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), pm, tc.in)
			require.Error(t, err)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Equal(t, tc.field, e.Field)
		})
	}
}

func TestGet_ProgressFromTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, pm, domain.CreateInput{Name: "Reforma Loja"})
	require.NoError(t, err)
	for _, st := range []taskdomain.Status{taskdomain.StatusDone, taskdomain.StatusDone, taskdomain.StatusOpen, taskdomain.StatusInProgress} {
		require.NoError(t, f.store.Tasks().Create(ctx, &taskdomain.Task{
			Title: "t", Status: st, Priority: taskdomain.PriorityMedium, ProjectID: &p.ID, CreatedUserID: "ana",
		}))
	}

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tasks, 4)
	assert.Equal(t, 50, got.Progress)
}

func TestUpdate_StageIsFree(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, pm, domain.CreateInput{Name: "Edifício Aurora", Stage: domain.StageDelivery})
	require.NoError(t, err)

	back := domain.StageConcept
	got, err := f.svc.Update(ctx, p.ID, domain.Patch{Stage: &back})
	require.NoError(t, err)
	assert.Equal(t, domain.StageConcept, got.Stage)
	assert.Equal(t, "Edifício Aurora", got.Name)
}

func TestUpdate_UnknownProject(t *testing.T) {
	f := newFixture(t)
	name := "x"
	_, err := f.svc.Update(context.Background(), 999, domain.Patch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestDelete_CascadesTasksAndFiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, pm, domain.CreateInput{Name: "Stand Vila Nova", Type: domain.TypeRealEstateStand})
	require.NoError(t, err)

	var taskIDs []int64
	for _, title := range []string{"Planta", "Maquete", "Memorial"} {
		task := &taskdomain.Task{Title: title, Status: taskdomain.StatusOpen, Priority: taskdomain.PriorityHigh, ProjectID: &p.ID, CreatedUserID: "ana"}
		require.NoError(t, f.store.Tasks().Create(ctx, task))
		taskIDs = append(taskIDs, task.ID)
	}
	f.upload(t, filedomain.UploadInput{OriginalName: "planta.pdf", ProjectID: &p.ID}, "%PDF-1.4 planta")
	f.upload(t, filedomain.UploadInput{OriginalName: "maquete.png", TaskID: &taskIDs[1]}, "png bytes")
	require.Len(t, storedObjects(t, f.dir), 2)

	require.NoError(t, f.svc.Delete(ctx, admin, p.ID))

	tasks, err := f.store.Tasks().List(ctx, taskdomain.ListFilter{ProjectID: &p.ID})
	require.NoError(t, err)
	assert.Empty(t, tasks)
	files, err := f.files.List(ctx, filedomain.ListFilter{ProjectID: &p.ID})
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, storedObjects(t, f.dir))

	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	for _, id := range taskIDs {
		_, err := f.store.Tasks().Get(ctx, id)
		assert.ErrorIs(t, err, taskdomain.ErrTaskNotFound)
	}
}

func TestDelete_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p, err := f.svc.Create(ctx, pm, domain.CreateInput{Name: "Casa Lago"})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, pm, p.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindPermission, apperr.KindOf(err))

	_, err = f.svc.Get(ctx, p.ID)
	assert.NoError(t, err)
}

func TestDelete_UnknownProject(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Delete(context.Background(), admin, 404)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}
