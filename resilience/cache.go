package resilience

import (
	"context"
	"time"

	"github.com/constellation-run/constellation/cache"
	"github.com/constellation-run/constellation/types"
)

// withCache implements the outermost decorator: a cache hit short-
// circuits run entirely; a miss runs it and memoizes the result on
// (module, canonical inputs) (spec.md §4.6, §4.7).
func withCache(ctx context.Context, call Call, caches *cache.Registry, run func(context.Context) (types.Value, error)) (types.Value, error) {
	backend, ok := caches.Get(call.Options.CacheBackend)
	if !ok {
		return run(ctx)
	}

	key := cache.Key(call.Module, call.Args, "")
	if entry, hit, err := backend.Get(ctx, key); err == nil && hit {
		if v, decErr := types.Unmarshal(entry.Value); decErr == nil {
			return v, nil
		}
	}

	v, err := run(ctx)
	if err != nil {
		return v, err
	}

	ttl, _ := time.ParseDuration(call.Options.CacheTTL)
	if raw, encErr := types.Marshal(v); encErr == nil {
		_ = backend.Set(ctx, key, raw, ttl)
	}
	return v, nil
}
