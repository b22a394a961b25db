package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPresence keeps room membership in redis sets. Each member is a user
// tagged with the instance holding its socket.
type RedisPresence struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisPresence returns a presence store. Room keys expire after ttl of
// inactivity so crashed instances do not leave members behind forever.
func NewRedisPresence(client *redis.Client, ttl time.Duration) *RedisPresence {
	return &RedisPresence{client: client, prefix: "room:", ttl: ttl}
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (p *RedisPresence) key(room string) string {
	return p.prefix + room
}

func (p *RedisPresence) Join(ctx context.Context, room, member string) error {
	pipe := p.client.TxPipeline()
	pipe.SAdd(ctx, p.key(room), member)
	if p.ttl > 0 {
		pipe.Expire(ctx, p.key(room), p.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to join room %s: %w", room, err)
	}
	return nil
}

func (p *RedisPresence) Leave(ctx context.Context, room, member string) error {
	if err := p.client.SRem(ctx, p.key(room), member).Err(); err != nil {
		return fmt.Errorf("failed to leave room %s: %w", room, err)
	}
	return nil
}

func (p *RedisPresence) Members(ctx context.Context, room string) ([]string, error) {
	members, err := p.client.SMembers(ctx, p.key(room)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room %s: %w", room, err)
	}
	return members, nil
}

// RedisRelay publishes events on a per-user channel and listens on all of them.
type RedisRelay struct {
	client *redis.Client
	prefix string
}

func NewRedisRelay(client *redis.Client) *RedisRelay {
	return &RedisRelay{client: client, prefix: "events:"}
}

func (r *RedisRelay) Publish(ctx context.Context, msg RelayMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.prefix+msg.UserID, body).Err(); err != nil {
		return fmt.Errorf("failed to publish event for %s: %w", msg.UserID, err)
	}
	return nil
}

func (r *RedisRelay) Subscribe(ctx context.Context, handle func(RelayMessage)) error {
	sub := r.client.PSubscribe(ctx, r.prefix+"*")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg RelayMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				continue
			}
			handle(msg)
		}
	}
}
