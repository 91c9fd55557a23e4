package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/teamhub-dev/teamhub/internal/config"
	"go.uber.org/zap"
)

// Event is a project-scoped notification fanned out to subscribed clients.
type Event struct {
	Type      string      `json:"type"`
	ProjectID uint64      `json:"project_id"`
	Payload   interface{} `json:"payload,omitempty"`
	At        time.Time   `json:"at"`
}

// Broadcaster fans project events out over redis pub/sub, one channel per
// project. Delivery is fire-and-forget: publish failures are logged and never
// surfaced to the request that triggered them. A nil Broadcaster is valid and
// drops every event, so the API runs without redis.
type Broadcaster struct {
	client *redis.Client
	logger *zap.Logger
}

// NewBroadcaster connects to redis when an address is configured; otherwise
// it returns nil and broadcasting is disabled.
func NewBroadcaster(cfg *config.Config, logger *zap.Logger) *Broadcaster {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &Broadcaster{client: client, logger: logger}
}

// ChannelName returns the pub/sub channel for a project room.
func ChannelName(projectID uint64) string {
	return fmt.Sprintf("project.%d", projectID)
}

// Publish emits an event to the project's room. No delivery guarantee.
func (b *Broadcaster) Publish(ctx context.Context, projectID uint64, eventType string, payload interface{}) {
	if b == nil {
		return
	}

	event := Event{
		Type:      eventType,
		ProjectID: projectID,
		Payload:   payload,
		At:        time.Now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		b.logger.Warn("failed to encode realtime event",
			zap.String("type", eventType),
			zap.Uint64("project_id", projectID),
			zap.Error(err))
		return
	}

	if err := b.client.Publish(ctx, ChannelName(projectID), body).Err(); err != nil {
		b.logger.Warn("failed to publish realtime event",
			zap.String("type", eventType),
			zap.Uint64("project_id", projectID),
			zap.Error(err))
	}
}

// Subscribe returns a channel of events for a project room plus a cancel
// function. Used by the delivery edge (and tests); the core API only publishes.
func (b *Broadcaster) Subscribe(ctx context.Context, projectID uint64) (<-chan Event, func()) {
	if b == nil {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	sub := b.client.Subscribe(ctx, ChannelName(projectID))
	out := make(chan Event)

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("failed to decode realtime event", zap.Error(err))
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { _ = sub.Close() }
}

// Close releases the redis connection.
func (b *Broadcaster) Close() error {
	if b == nil {
		return nil
	}
	return b.client.Close()
}
