package resilience

import (
	"context"
	"math"
	"time"

	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/optionspec"
)

// withRetry wraps fn with the retry/backoff policy from opts (spec.md
// §4.6): attempts = 1+retry; wait between attempts = delay * multiplier,
// where multiplier is 1 for fixed, N for linear, 2^(N-1) capped at 30s
// for exponential. Adapted from the teacher's generic Retry[T], whose
// factor-based exponential-only backoff is replaced by the three named
// curves the option bag exposes.
func withRetry[T any](ctx context.Context, module string, opts optionspec.Options, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := 1 + opts.Retry
	delay, _ := time.ParseDuration(opts.Delay)

	var history []cerrors.AttemptRecord
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		history = append(history, cerrors.AttemptRecord{Attempt: attempt, Err: err})

		if attempt == attempts {
			break
		}

		wait := backoffWait(delay, opts.Backoff, attempt)
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, cerrors.RetryExhaustedError(module, attempts, history)
}

const maxExponentialBackoff = 30 * time.Second

func backoffWait(delay time.Duration, backoff optionspec.Backoff, attempt int) time.Duration {
	switch backoff {
	case optionspec.BackoffLinear:
		return delay * time.Duration(attempt)
	case optionspec.BackoffExponential:
		mult := math.Pow(2, float64(attempt-1))
		wait := time.Duration(float64(delay) * mult)
		if wait > maxExponentialBackoff {
			wait = maxExponentialBackoff
		}
		return wait
	default: // fixed, or unset
		return delay
	}
}
