// Package cachemanager holds per-invocation snapshots of remote records so a
// record is fetched at most once per run. Nothing is persisted.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values by key.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
