// Package optionspec decodes and validates the per-module-call option bag
// (spec.md §3 "Options"). It uses github.com/go-playground/validator/v10
// struct tags the way the teacher's validation/struct_validator.go
// validates decoded configuration, and resolves the spec.md §9 open
// question ("unrecognized option keys ... prefer errors") by rejecting
// any key outside the recognized set.
package optionspec

import "github.com/constellation-run/constellation/types"

// Backoff is the retry delay multiplier strategy.
type Backoff string

const (
	BackoffFixed       Backoff = "fixed"
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// Options mirrors the recognized per-call option keys table in spec.md §3.
type Options struct {
	Retry          int     `validate:"gte=0"`
	Delay          string  `validate:"omitempty"`
	Backoff        Backoff `validate:"omitempty,oneof=fixed linear exponential"`
	Timeout        string  `validate:"omitempty"`
	HasFallback    bool
	Fallback       types.Value
	ThrottleRate   float64 `validate:"gte=0"`
	ThrottleWindow string  `validate:"omitempty"`
	Concurrency    int     `validate:"gte=0"`
	HasCache       bool
	CacheTTL       string `validate:"omitempty"`
	CacheBackend   string `validate:"omitempty"`
	Lazy           bool
	Priority       int `validate:"gte=0,lte=100"`
}

// recognizedKeys is the full set of option keys the source language may
// attach to a module call.
var recognizedKeys = map[string]bool{
	"retry": true, "delay": true, "backoff": true, "timeout": true,
	"fallback": true, "throttle": true, "concurrency": true,
	"cache": true, "cache_backend": true, "lazy": true, "priority": true,
}

// IsRecognized reports whether key is one of the option keys in spec.md §3.
func IsRecognized(key string) bool { return recognizedKeys[key] }
