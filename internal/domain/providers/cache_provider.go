package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider stores opaque snapshot blobs with a time to live
type CacheProvider interface {
	// Get returns ErrCacheMiss (possibly wrapped) for an absent or expired key
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix and reports how many were dropped
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}
