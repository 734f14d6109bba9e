package resilience

import (
	"context"
	"time"

	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/types"
)

// withTimeout runs fn under a per-attempt deadline (spec.md §4.6).
// Exceeding it produces a Timeout error the retry decorator above it may
// catch.
func withTimeout(ctx context.Context, module string, d time.Duration, fn func(ctx context.Context) (types.Value, error)) (types.Value, error) {
	if d <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		v   types.Value
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		return types.Value{}, cerrors.TimeoutError(module, d)
	}
}
