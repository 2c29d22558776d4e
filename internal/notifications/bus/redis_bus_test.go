package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/notifications/domain"
)

type collector struct {
	mu     sync.Mutex
	events []domain.Event
}

func (c *collector) Publish(_ context.Context, ev domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) first() domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[0]
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisBusDeliversAcrossInstances(t *testing.T) {
	_, client := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	localA, localB := &collector{}, &collector{}
	a := NewRedisBus(client, "atelier:events", localA)
	b := NewRedisBus(client, "atelier:events", localB)

	done := make(chan struct{}, 2)
	for _, bus := range []*RedisBus{a, b} {
		go func(bus *RedisBus) {
			_ = bus.Run(ctx)
			done <- struct{}{}
		}(bus)
	}

	// Run subscribes asynchronously; keep publishing until both sides see one.
	require.Eventually(t, func() bool {
		if localA.len() == 0 || localB.len() == 0 {
			a.Publish(ctx, domain.NewEvent(domain.UserScope("ana"), domain.EventNotificationCreated, map[string]string{"title": "oi"}))
			return false
		}
		return true
	}, 2*time.Second, 20*time.Millisecond)

	ev := localB.first()
	assert.Equal(t, domain.UserScope("ana"), ev.Scope)
	assert.Equal(t, domain.EventNotificationCreated, ev.Type)
	assert.JSONEq(t, `{"title":"oi"}`, string(ev.Payload))

	cancel()
	for range 2 {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	}
}

func TestRedisBusFallsBackToLocal(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	local := &collector{}
	b := NewRedisBus(client, "atelier:events", local)

	mr.Close()
	b.Publish(context.Background(), domain.NewEvent(domain.ScopeAll, domain.EventTaskDeleted, nil))

	require.Equal(t, 1, local.len())
	assert.Equal(t, domain.EventTaskDeleted, local.first().Type)
}
