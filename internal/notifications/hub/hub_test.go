package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/notifications/domain"
)

func recv(t *testing.T, s *Subscription) domain.Event {
	t.Helper()
	select {
	case ev, ok := <-s.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return domain.Event{}
	}
}

func TestPublishReachesScopeSubscribers(t *testing.T) {
	h := New(4)
	ana := h.Subscribe(domain.UserScope("ana"), domain.ScopeAll)
	bruno := h.Subscribe(domain.UserScope("bruno"), domain.ScopeAll)
	defer h.Unsubscribe(ana)
	defer h.Unsubscribe(bruno)

	ctx := context.Background()
	h.Publish(ctx, domain.NewEvent(domain.UserScope("ana"), domain.EventNotificationCreated, nil))
	h.Publish(ctx, domain.NewEvent(domain.ScopeAll, domain.EventTaskCreated, map[string]int{"id": 1}))

	assert.Equal(t, domain.EventNotificationCreated, recv(t, ana).Type)
	assert.Equal(t, domain.EventTaskCreated, recv(t, ana).Type)
	assert.Equal(t, domain.EventTaskCreated, recv(t, bruno).Type)

	select {
	case ev := <-bruno.C:
		t.Fatalf("bruno got %s addressed to ana", ev.Type)
	default:
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	h := New(0)
	h.Publish(context.Background(), domain.NewEvent("user:nobody", domain.EventTaskUpdated, nil))
	assert.Zero(t, h.Count("user:nobody"))
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := New(1)
	slow := h.Subscribe(domain.ScopeAll)
	fast := h.Subscribe(domain.ScopeAll)
	ctx := context.Background()

	h.Publish(ctx, domain.NewEvent(domain.ScopeAll, domain.EventTaskCreated, nil))
	recv(t, fast)
	h.Publish(ctx, domain.NewEvent(domain.ScopeAll, domain.EventTaskUpdated, nil))

	assert.Equal(t, 1, h.Count(domain.ScopeAll))
	assert.Equal(t, domain.EventTaskUpdated, recv(t, fast).Type)

	// the buffered event is still readable, then the channel is closed
	assert.Equal(t, domain.EventTaskCreated, recv(t, slow).Type)
	_, ok := <-slow.C
	assert.False(t, ok)

	h.Unsubscribe(slow)
	h.Unsubscribe(fast)
	assert.Zero(t, h.Count(domain.ScopeAll))
}

func TestUnsubscribeClosesOnce(t *testing.T) {
	h := New(1)
	s := h.Subscribe("user:ana", domain.ScopeAll)
	assert.Equal(t, 1, h.Count("user:ana"))

	h.Unsubscribe(s)
	h.Unsubscribe(s)

	_, ok := <-s.C
	assert.False(t, ok)
	assert.Zero(t, h.Count("user:ana"))
	assert.Zero(t, h.Count(domain.ScopeAll))
}
