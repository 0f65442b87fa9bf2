package userstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis server at url and verifies it answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL() > %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping() > %w", err)
	}
	return client, nil
}

// Redis is a Store that keeps JSON encoded values in Redis so state survives restarts
// and is shared by every process of the same user.
type Redis[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis[T any](client *redis.Client, prefix string, ttl time.Duration) *Redis[T] {
	return &Redis[T]{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis[T]) key(userID string) string {
	return r.prefix + userID
}

func (r *Redis[T]) Get(ctx context.Context, userID string) (T, bool, error) {
	var value T
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("client.Get(%s) > %w", r.key(userID), err)
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("json.Unmarshal(%s) > %w", r.key(userID), err)
	}
	return value, true, nil
}

func (r *Redis[T]) Set(ctx context.Context, userID string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal() > %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set(%s) > %w", r.key(userID), err)
	}
	return nil
}

func (r *Redis[T]) Invalidate(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("client.Del(%s) > %w", r.key(userID), err)
	}
	return nil
}
