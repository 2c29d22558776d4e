// Package hub is the in-process fan-out registry: scope -> live subscribers.
package hub

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/atelier-arq/atelier-backend/internal/notifications/domain"
)

const DefaultBuffer = 16

// Subscription receives the events of its scopes on C. C is closed when the
// subscription is dropped, either by Unsubscribe or because the consumer fell
// behind and its buffer filled up.
type Subscription struct {
	ID     string
	C      <-chan domain.Event
	ch     chan domain.Event
	scopes []string
}

type Hub struct {
	mu     sync.RWMutex
	scopes map[string]map[string]*Subscription
	buffer int
}

func New(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{scopes: make(map[string]map[string]*Subscription), buffer: buffer}
}

func (h *Hub) Subscribe(scopes ...string) *Subscription {
	ch := make(chan domain.Event, h.buffer)
	s := &Subscription{ID: uuid.NewString(), C: ch, ch: ch, scopes: scopes}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, scope := range scopes {
		set, ok := h.scopes[scope]
		if !ok {
			set = make(map[string]*Subscription)
			h.scopes[scope] = set
		}
		set[s.ID] = s
	}
	return s
}

func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(s)
}

// remove drops s from every scope and closes its channel once. Caller holds
// the write lock.
func (h *Hub) remove(s *Subscription) {
	registered := false
	for _, scope := range s.scopes {
		set := h.scopes[scope]
		if _, ok := set[s.ID]; ok {
			registered = true
			delete(set, s.ID)
			if len(set) == 0 {
				delete(h.scopes, scope)
			}
		}
	}
	if registered {
		close(s.ch)
	}
}

// Publish delivers ev to the subscribers of ev.Scope without blocking.
// Subscribers whose buffer is full are dropped; the rest still receive the event.
func (h *Hub) Publish(_ context.Context, ev domain.Event) {
	var dead []*Subscription

	h.mu.RLock()
	for _, s := range h.scopes[ev.Scope] {
		select {
		case s.ch <- ev:
		default:
			dead = append(dead, s)
		}
	}
	h.mu.RUnlock()

	if len(dead) == 0 {
		return
	}
	h.mu.Lock()
	for _, s := range dead {
		h.remove(s)
	}
	h.mu.Unlock()
	log.Printf("[warn] hub dropped %d slow subscriber(s) on scope=%s", len(dead), ev.Scope)
}

// Count returns the number of live subscriptions on scope.
func (h *Hub) Count(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.scopes[scope])
}
