// Package resilience implements Constellation's fixed module-call
// decorator chain (spec.md §4.6): cache, then execute (throttle +
// concurrency), then timeout, then retry, then fallback. Adapted from
// the teacher's retry/bulkhead/rate-limiter/circuit-breaker primitives,
// generalized from ad hoc per-call config structs to the option-bag shape
// a compiled module call carries.
package resilience

import (
	"context"
	"time"

	"github.com/constellation-run/constellation/cache"
	"github.com/constellation-run/constellation/module"
	"github.com/constellation-run/constellation/optionspec"
	"github.com/constellation-run/constellation/types"
)

// Call is everything the chain needs to execute one module invocation.
type Call struct {
	Module  string
	Args    map[string]types.Value
	Options optionspec.Options
	Eval    module.Evaluator
}

// Execute runs call through the full decorator chain. registry supplies
// the per-execution throttle/concurrency state; caches supplies the
// named value-cache backends (nil means caching is skipped even if the
// call requested it).
func Execute(ctx context.Context, call Call, registry *Registry, caches *cache.Registry) (types.Value, error) {
	timeoutDur, _ := time.ParseDuration(call.Options.Timeout)

	attempt := func(ctx context.Context) (types.Value, error) {
		return withTimeout(ctx, call.Module, timeoutDur, func(ctx context.Context) (types.Value, error) {
			return call.Eval(ctx, call.Args)
		})
	}

	gated := func(ctx context.Context) (types.Value, error) {
		return executeGated(ctx, call, registry, attempt)
	}

	run := func(ctx context.Context) (types.Value, error) {
		v, err := withRetry(ctx, call.Module, call.Options, gated)
		if err != nil && call.Options.HasFallback {
			return call.Options.Fallback, nil
		}
		return v, err
	}

	if !call.Options.HasCache || caches == nil {
		return run(ctx)
	}
	return withCache(ctx, call, caches, run)
}

// executeGated acquires the per-module throttle token and concurrency
// permit (spec.md §4.6's "execute" layer) around a single attempt.
func executeGated(ctx context.Context, call Call, registry *Registry, fn func(context.Context) (types.Value, error)) (types.Value, error) {
	if registry == nil {
		return fn(ctx)
	}

	if call.Options.ThrottleRate > 0 {
		window, _ := time.ParseDuration(call.Options.ThrottleWindow)
		if window <= 0 {
			window = time.Second
		}
		bucket := registry.throttleFor(call.Module, call.Options.ThrottleRate, window)
		if err := bucket.Acquire(ctx); err != nil {
			return types.Value{}, err
		}
	}

	if call.Options.Concurrency > 0 {
		sem := registry.semaphoreFor(call.Module, call.Options.Concurrency)
		if err := sem.Acquire(ctx); err != nil {
			return types.Value{}, err
		}
		defer sem.Release()
	}

	return fn(ctx)
}
