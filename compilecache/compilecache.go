// Package compilecache implements Constellation's compilation cache
// (spec.md §3: "content-addressed memo of (source hash -> pipeline
// image) with stats"): given the structural hash of an IR graph, it
// either returns an already-compiled pipeline image or compiles one and
// stores it for next time. Grounded on cache.GetOrCompute's
// get-or-compute idiom, generalized from raw bytes to a typed compiled
// artifact via pipelineimage's codec.
package compilecache

import (
	"context"
	"time"

	"github.com/constellation-run/constellation/cache"
	"github.com/constellation-run/constellation/compile"
	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/module"
	"github.com/constellation-run/constellation/pipelineimage"
)

// Cache memoizes compile.Compile by the source graph's structural hash.
// TTL bounds how long a compiled image is trusted before it is recompiled
// (spec.md §3); zero means entries never expire on their own.
type Cache struct {
	Backend cache.Backend
	TTL     time.Duration
}

// New builds a compilation cache over the given backend (typically a
// cache.MemoryBackend, or a cache.DistributedBackend for a shared
// compile-cache tier).
func New(backend cache.Backend, ttl time.Duration) *Cache {
	return &Cache{Backend: backend, TTL: ttl}
}

// Get returns the cached pipeline image for g's structural hash,
// compiling it via compile.Compile against modules and storing the
// result on a miss. The returned bool reports whether the image came
// from the cache (a "hit").
func (c *Cache) Get(ctx context.Context, structuralHash string, g *ir.Graph, modules *module.Registry) (*pipelineimage.Image, bool, error) {
	if entry, ok, err := c.Backend.Get(ctx, structuralHash); err != nil {
		return nil, false, err
	} else if ok && !entry.Expired(time.Now()) {
		img, err := pipelineimage.DecodeImage(entry.Value)
		if err != nil {
			return nil, false, err
		}
		return img, true, nil
	}

	dag, errs := compile.Compile(g, modules)
	if errs != nil && errs.Len() > 0 {
		return nil, false, errs.Err()
	}
	img := &pipelineimage.Image{
		StructuralHash: structuralHash,
		DAG:            dag,
		CompiledAt:     time.Now(),
	}

	encoded, err := pipelineimage.EncodeImage(img)
	if err != nil {
		return nil, false, err
	}
	if err := c.Backend.Set(ctx, structuralHash, encoded, c.TTL); err != nil {
		return nil, false, err
	}
	return img, false, nil
}

// Invalidate drops a cached image, forcing the next Get for that hash to
// recompile.
func (c *Cache) Invalidate(ctx context.Context, structuralHash string) (bool, error) {
	return c.Backend.Delete(ctx, structuralHash)
}

// Stats returns the underlying backend's hit/miss/eviction counters.
func (c *Cache) Stats(ctx context.Context) (cache.Stats, error) {
	return c.Backend.Stats(ctx)
}
