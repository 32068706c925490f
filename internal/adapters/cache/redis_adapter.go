package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/clients/redis"
)

// scanBatch bounds how many keys a single SCAN round trip returns
const scanBatch = 100

// RedisAdapter implements providers.CacheProvider on Redis strings
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a new Redis cache adapter
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{client: client}
}

func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := a.client.Client().Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("%w: %s", providers.ErrCacheMiss, key)
	case err != nil:
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key. Redis rejects sub-millisecond expirations, so ttl
// is rounded up to one second when positive and smaller than that.
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl > 0 && ttl < time.Second {
		ttl = time.Second
	}
	if err := a.client.Client().Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (a *RedisAdapter) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := a.client.Client().Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeletePrefix walks the keyspace with SCAN so large databases are not blocked.
// Keys are collected across the whole scan before any DEL, so deletions never
// shift the cursor under the iteration.
func (a *RedisAdapter) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var (
		cursor  uint64
		matched []string
	)
	for {
		keys, next, err := a.client.Client().Scan(ctx, cursor, prefix+"*", scanBatch).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan %s*: %w", prefix, err)
		}
		matched = append(matched, keys...)
		if next == 0 {
			break
		}
		cursor = next
	}

	seen := make(map[string]struct{}, len(matched))
	unique := matched[:0]
	for _, k := range matched {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, k)
	}

	deleted := 0
	for start := 0; start < len(unique); start += scanBatch {
		end := min(start+scanBatch, len(unique))
		n, err := a.client.Client().Del(ctx, unique[start:end]...).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis del: %w", err)
		}
		deleted += int(n)
	}
	return deleted, nil
}
