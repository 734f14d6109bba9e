package ir

import (
	"github.com/constellation-run/constellation/ast"
	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/optionspec"
)

// decodeOptions turns the surface option bag (name -> literal expression)
// into optionspec.Options, rejecting unrecognized keys and malformed
// values at compile time (spec.md §9: "prefer errors").
func decodeOptions(raw map[string]*ast.Expr, ctx *genCtx) (optionspec.Options, *cerrors.Errors) {
	var opts optionspec.Options
	errs := &cerrors.Errors{}

	for key, expr := range raw {
		if !optionspec.IsRecognized(key) {
			errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "unrecognized option key"))
			continue
		}
		switch key {
		case "retry":
			if n, ok := asInt(expr); ok {
				opts.Retry = n
			} else {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected a non-negative integer"))
			}
		case "delay":
			if s, ok := asString(expr); ok {
				opts.Delay = s
			} else {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected a duration literal"))
			}
		case "backoff":
			if s, ok := asString(expr); ok {
				opts.Backoff = optionspec.Backoff(s)
			} else {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected fixed|linear|exponential"))
			}
		case "timeout":
			if s, ok := asString(expr); ok {
				opts.Timeout = s
			} else {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected a duration literal"))
			}
		case "fallback":
			opts.HasFallback = true
			opts.Fallback = decodeLiteral(expr)
		case "throttle":
			m, ok := expr.LiteralRaw.(map[string]any)
			if !ok {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected {rate, window}"))
				continue
			}
			if rate, ok := m["rate"].(float64); ok {
				opts.ThrottleRate = rate
			}
			if window, ok := m["window"].(string); ok {
				opts.ThrottleWindow = window
			}
		case "concurrency":
			if n, ok := asInt(expr); ok {
				opts.Concurrency = n
			} else {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected a non-negative integer"))
			}
		case "cache":
			opts.HasCache = true
			if s, ok := asString(expr); ok {
				opts.CacheTTL = s
			} else {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected a duration literal"))
			}
		case "cache_backend":
			if s, ok := asString(expr); ok {
				opts.CacheBackend = s
			} else {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected a backend name"))
			}
		case "lazy":
			if b, ok := expr.LiteralRaw.(bool); ok {
				opts.Lazy = b
			} else {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected a boolean"))
			}
		case "priority":
			if n, ok := asInt(expr); ok {
				opts.Priority = n
			} else if s, ok := asString(expr); ok {
				opts.Priority = priorityFromName(s)
			} else {
				errs.Add(cerrors.InvalidOptionValue(toSpan(expr.Span), key, "expected 0-100 or a priority name"))
			}
		}
	}

	if reasons := optionspec.Validate(opts); len(reasons) > 0 {
		for _, r := range reasons {
			errs.Add(cerrors.InvalidOptionValue(cerrors.Span{}, "options", r))
		}
	}

	if errs.Len() == 0 {
		return opts, nil
	}
	return opts, errs
}

func asInt(e *ast.Expr) (int, bool) {
	switch v := e.LiteralRaw.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func asString(e *ast.Expr) (string, bool) {
	s, ok := e.LiteralRaw.(string)
	return s, ok
}

func priorityFromName(name string) int {
	switch name {
	case "background":
		return 0
	case "low":
		return 25
	case "normal":
		return 50
	case "high":
		return 75
	case "critical":
		return 100
	default:
		return 50
	}
}
