package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStreamPublisher appends events to a capped Redis stream per game.
type RedisStreamPublisher struct {
	client *redis.Client
	prefix string
	maxLen int64
}

// NewRedisStreamPublisher uses client; streams are named "<prefix>.<game id>".
func NewRedisStreamPublisher(client *redis.Client, prefix string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, prefix: prefix, maxLen: maxLen}
}

// StreamKey returns the stream events of gameID are appended to.
func (p *RedisStreamPublisher) StreamKey(gameID string) string {
	return p.prefix + "." + gameID
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: p.StreamKey(ev.GameID),
		Values: map[string]interface{}{
			"data":    string(data),
			"game_id": ev.GameID,
			"type":    string(ev.Type),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", args.Stream, err)
	}
	return nil
}

func (p *RedisStreamPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *RedisStreamPublisher) Close() error {
	return p.client.Close()
}
