package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vocab-quiz/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCacheAdapter is the domain.Cache used in production. It accepts any
// go-redis client, so a single node, a sentinel failover client or a cluster all work.
type RedisCacheAdapter struct {
	client redis.UniversalClient
}

func NewRedisCacheAdapter(client redis.UniversalClient) domain.Cache {
	return &RedisCacheAdapter{client: client}
}

// Get maps redis.Nil to domain.ErrCacheMiss.
func (r *RedisCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", domain.ErrCacheMiss
	case err != nil:
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if expiration < 0 {
		return fmt.Errorf("redis set %s: negative expiration %s", key, expiration)
	}
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCacheAdapter) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (r *RedisCacheAdapter) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisCacheAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
