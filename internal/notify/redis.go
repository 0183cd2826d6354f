package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/config"
)

// RedisNotifier publishes deal events on a redis channel. Delivery is
// fire-and-forget; subscribers (the notification service) own retries.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(cfg config.RedisConfig) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 5 * time.Second,
	})
	return &RedisNotifier{client: client, channel: cfg.Channel}
}

type envelope struct {
	Event      string      `json:"event"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func (n *RedisNotifier) Publish(ctx context.Context, event string, payload interface{}) error {
	body, err := json.Marshal(envelope{
		Event:      event,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event, err)
	}
	if err := n.client.Publish(ctx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event, err)
	}
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
