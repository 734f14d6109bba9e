package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/constellation-run/constellation/cerrors"
)

// Codec (de)serializes cache values for a distributed backend. The wire
// format is deliberately pluggable so a host can swap in, say, a
// go.yaml.in/yaml/v3 codec without touching the backend.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

// Store is the minimal network byte store a distributed backend
// delegates to (e.g. a Redis/Memcached client). It speaks raw bytes;
// Codec sits above it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// DistributedBackend delegates to a network Store, serializing through a
// Codec. It has no atomic get-or-compute (callers get the generic
// GetOrCompute's thundering-herd window); on a corrupt read it deletes
// the offending entry and reports a miss rather than propagating the
// decode error (spec.md §4.7).
type DistributedBackend struct {
	store Store
	codec Codec

	hits, misses, evictions atomic.Int64
}

// NewDistributedBackend wires a network store and wire codec together.
func NewDistributedBackend(store Store, codec Codec) *DistributedBackend {
	return &DistributedBackend{store: store, codec: codec}
}

type wireEntry struct {
	Value     []byte    `yaml:"value"`
	CreatedAt time.Time `yaml:"created_at"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

func (d *DistributedBackend) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, ok, err := d.store.Get(ctx, key)
	if err != nil {
		return Entry{}, false, cerrors.BackendUnavailable(err)
	}
	if !ok {
		d.misses.Add(1)
		return Entry{}, false, nil
	}

	var w wireEntry
	if err := d.codec.Decode(raw, &w); err != nil {
		_, _ = d.store.Delete(ctx, key)
		d.misses.Add(1)
		return Entry{}, false, nil
	}

	entry := Entry{Value: w.Value, CreatedAt: w.CreatedAt, ExpiresAt: w.ExpiresAt}
	if entry.Expired(time.Now()) {
		d.misses.Add(1)
		return Entry{}, false, nil
	}
	d.hits.Add(1)
	return entry, true, nil
}

func (d *DistributedBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := time.Now()
	w := wireEntry{Value: value, CreatedAt: now}
	if ttl > 0 {
		w.ExpiresAt = now.Add(ttl)
	}
	raw, err := d.codec.Encode(w)
	if err != nil {
		return cerrors.SerdeFailure(err)
	}
	if err := d.store.Set(ctx, key, raw, ttl); err != nil {
		return cerrors.BackendUnavailable(err)
	}
	return nil
}

func (d *DistributedBackend) Delete(ctx context.Context, key string) (bool, error) {
	ok, err := d.store.Delete(ctx, key)
	if err != nil {
		return false, cerrors.BackendUnavailable(err)
	}
	if ok {
		d.evictions.Add(1)
	}
	return ok, nil
}

func (d *DistributedBackend) Clear(ctx context.Context) error {
	if err := d.store.Clear(ctx); err != nil {
		return cerrors.BackendUnavailable(err)
	}
	return nil
}

func (d *DistributedBackend) Stats(_ context.Context) (Stats, error) {
	return Stats{Hits: d.hits.Load(), Misses: d.misses.Load(), Evictions: d.evictions.Load()}, nil
}

var _ Backend = (*DistributedBackend)(nil)
