package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Hamim-Susmit/Fitness-Platform-sub002/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Event is the envelope handed to the out-of-band gateway.
type Event struct {
	Name       string         `json:"event"`
	MemberID   int            `json:"member_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Sink delivers a single event synchronously.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// RedisQueue pushes events onto a Redis list consumed by the gateway.
type RedisQueue struct {
	redis *redis.Client
	key   string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{redis: client, key: key}
}

func (q *RedisQueue) Deliver(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Name, err)
	}

	if err := q.redis.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("push %s to %s: %w", ev.Name, q.key, err)
	}
	return nil
}

func (q *RedisQueue) Length(ctx context.Context) (int64, error) {
	length, err := q.redis.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("length of %s: %w", q.key, err)
	}
	return length, nil
}

// Check reports the backlog to metrics. It is used as a health check.
func (q *RedisQueue) Check(ctx context.Context) error {
	length, err := q.Length(ctx)
	if err != nil {
		return err
	}
	metrics.SetQueueDepth(q.key, length)
	return nil
}
