// Package cache implements Constellation's pluggable value-cache SPI
// (spec.md §4.7): a backend interface, an in-memory LRU implementation, a
// distributed skeleton, deterministic key derivation and a registry of
// named backends. Grounded on the teacher's provider.ContextStore family
// generalized from typed per-key state to a TTL-bounded value cache with
// statistics.
package cache

import (
	"context"
	"time"
)

// Entry wraps a cached value with its lifecycle timestamps.
type Entry struct {
	Value     []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether now is past ExpiresAt. A zero ExpiresAt never expires.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Stats is a point-in-time snapshot of backend counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Backend is the SPI extension point a host may implement to back the
// value cache (spec.md §6). Every operation is effectful and may fail;
// implementations must be concurrency-safe.
type Backend interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
}

// Contains is the derived "does this key exist and is it live" check.
func Contains(ctx context.Context, b Backend, key string) (bool, error) {
	entry, ok, err := b.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	return !entry.Expired(time.Now()), nil
}

// GetOrCompute is the derived atomic-ish memoization helper: a present,
// unexpired entry is returned as-is; otherwise compute runs and its
// result is stored before being returned. Backends with no native
// get-or-compute (e.g. the distributed one) accept the thundering-herd
// window this implies (spec.md §4.7).
func GetOrCompute(ctx context.Context, b Backend, key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	if entry, ok, err := b.Get(ctx, key); err != nil {
		return nil, false, err
	} else if ok && !entry.Expired(time.Now()) {
		return entry.Value, true, nil
	}

	value, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := b.Set(ctx, key, value, ttl); err != nil {
		return value, false, err
	}
	return value, false, nil
}
