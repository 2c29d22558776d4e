// Package bus bridges event fan-out across API instances through Redis Pub/Sub.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/atelier-arq/atelier-backend/internal/notifications/domain"
)

// Local is the in-process fan-out the bus feeds.
type Local interface {
	Publish(ctx context.Context, ev domain.Event)
}

// RedisBus publishes every event on one channel. Each instance runs Run to
// forward the channel into its local hub, so local delivery happens through
// Redis as well.
type RedisBus struct {
	client  *redis.Client
	channel string
	local   Local
}

func NewRedisBus(client *redis.Client, channel string, local Local) *RedisBus {
	return &RedisBus{client: client, channel: channel, local: local}
}

// Publish falls back to local-only delivery when Redis is unreachable.
func (b *RedisBus) Publish(ctx context.Context, ev domain.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[warn] bus: marshal event type=%s: %v", ev.Type, err)
		return
	}
	if err := b.client.Publish(context.WithoutCancel(ctx), b.channel, data).Err(); err != nil {
		log.Printf("[warn] bus: publish type=%s scope=%s: %v (delivering locally)", ev.Type, ev.Scope, err)
		b.local.Publish(ctx, ev)
	}
}

// Run subscribes to the channel and forwards messages until ctx is done.
func (b *RedisBus) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	log.Printf("[info] bus: subscribed channel=%s", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[warn] bus: drop malformed message: %v", err)
				continue
			}
			b.local.Publish(ctx, ev)
		}
	}
}
