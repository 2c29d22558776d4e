package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/storage/memory"
	taskdomain "github.com/atelier-arq/atelier-backend/internal/tasks/domain"
	"github.com/atelier-arq/atelier-backend/internal/timeentries/domain"
	"github.com/atelier-arq/atelier-backend/internal/timeentries/service"
	usersdomain "github.com/atelier-arq/atelier-backend/internal/users/domain"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func setup(t *testing.T) (*service.TimerService, *fakeClock, int64, int64) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	_, err := st.Users().Ensure(ctx, usersdomain.UpsertUser{ID: "carla", Email: "carla@atelier.com"})
	require.NoError(t, err)

	first := &taskdomain.Task{Title: "Projeto legal", Status: taskdomain.StatusOpen, Priority: taskdomain.PriorityMedium, CreatedUserID: "carla"}
	second := &taskdomain.Task{Title: "Executivo", Status: taskdomain.StatusOpen, Priority: taskdomain.PriorityMedium, CreatedUserID: "carla"}
	require.NoError(t, st.Tasks().Create(ctx, first))
	require.NoError(t, st.Tasks().Create(ctx, second))

	clock := &fakeClock{now: time.Date(2026, 5, 4, 14, 0, 0, 0, time.UTC)}
	svc := service.NewTimerService(st, st.TimeEntries(), st.References(), nil, service.WithClock(clock.Now))
	return svc, clock, first.ID, second.ID
}

func TestStartClosesRunningEntry(t *testing.T) {
	svc, clock, first, second := setup(t)
	ctx := context.Background()

	res, err := svc.Start(ctx, "carla", first, "prancha 1")
	require.NoError(t, err)
	assert.Nil(t, res.Closed)
	assert.True(t, res.Entry.IsActive)

	clock.Advance(95*time.Minute + 30*time.Second)

	res, err = svc.Start(ctx, "carla", second, "")
	require.NoError(t, err)
	require.NotNil(t, res.Closed)
	assert.False(t, res.Closed.IsActive)
	require.NotNil(t, res.Closed.Duration)
	assert.Equal(t, 95, *res.Closed.Duration)

	entries, err := svc.List(ctx, domain.ListFilter{UserID: "carla"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	active := 0
	for _, e := range entries {
		if e.IsActive {
			active++
			assert.Equal(t, second, e.TaskID)
		}
	}
	assert.Equal(t, 1, active)
}

func TestStopWithoutRunningEntry(t *testing.T) {
	svc, _, _, _ := setup(t)
	_, err := svc.Stop(context.Background(), "carla")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStopRecordsDuration(t *testing.T) {
	svc, clock, first, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "carla", first, "")
	require.NoError(t, err)
	clock.Advance(42 * time.Minute)

	closed, err := svc.Stop(ctx, "carla")
	require.NoError(t, err)
	assert.Equal(t, 42, closed.Minutes())
	require.NotNil(t, closed.EndTime)

	_, err = svc.Active(ctx, "carla")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStartUnknownTask(t *testing.T) {
	svc, _, _, _ := setup(t)
	_, err := svc.Start(context.Background(), "carla", 777, "")
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, e.Kind)
	assert.Equal(t, "taskId", e.Field)
}

func TestCloseNeverNegative(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	e := &domain.TimeEntry{StartTime: start, IsActive: true}
	e.Close(start.Add(-time.Minute))
	assert.Equal(t, 0, e.Minutes())
	assert.False(t, e.IsActive)
}
