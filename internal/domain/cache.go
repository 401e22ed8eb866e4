package domain

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache: key not found")

// Cache is the key/value store behind the vocabulary list cache and token revocation.
// Values are opaque strings; callers own the encoding.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A zero expiration keeps it until deleted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	// Delete succeeds when the key is already gone.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
