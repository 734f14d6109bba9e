// Package spi declares the core-to-host extension points (spec.md §6):
// pluggable observability and execution-listening surfaces the runtime
// calls into but never implements itself. Defaults are no-ops/identity so
// a host that wires nothing still gets a working runtime.
package spi

import (
	"context"
	"time"
)

// MetricsProvider records counters, histograms and gauges. The default
// NoopMetrics discards everything.
type MetricsProvider interface {
	Counter(name string, tags map[string]string)
	Histogram(name string, value float64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
}

type noopMetrics struct{}

func (noopMetrics) Counter(string, map[string]string)            {}
func (noopMetrics) Histogram(string, float64, map[string]string) {}
func (noopMetrics) Gauge(string, float64, map[string]string)     {}

// NoopMetrics is the default MetricsProvider.
var NoopMetrics MetricsProvider = noopMetrics{}

// Span is an in-flight trace span; End must be called exactly once.
type Span interface {
	End()
	SetError(err error)
}

// TracerProvider starts spans around a unit of work. The default
// IdentityTracer returns a span that does nothing.
type TracerProvider interface {
	StartSpan(ctx context.Context, name string, attributes map[string]string) (context.Context, Span)
}

type identitySpan struct{}

func (identitySpan) End()           {}
func (identitySpan) SetError(error) {}

type identityTracer struct{}

func (identityTracer) StartSpan(ctx context.Context, _ string, _ map[string]string) (context.Context, Span) {
	return ctx, identitySpan{}
}

// IdentityTracer is the default TracerProvider.
var IdentityTracer TracerProvider = identityTracer{}

// ExecutionListener observes a run's lifecycle (spec.md §6). A composite
// listener must swallow individual listener panics/errors rather than
// let one bad listener abort the run.
type ExecutionListener interface {
	OnExecutionStart(ctx context.Context, executionID string)
	OnModuleStart(ctx context.Context, module string)
	OnModuleComplete(ctx context.Context, module string, d time.Duration)
	OnModuleFailed(ctx context.Context, module string, err error)
	OnExecutionComplete(ctx context.Context, executionID string, succeeded bool, d time.Duration)
}

type noopListener struct{}

func (noopListener) OnExecutionStart(context.Context, string)                       {}
func (noopListener) OnModuleStart(context.Context, string)                          {}
func (noopListener) OnModuleComplete(context.Context, string, time.Duration)         {}
func (noopListener) OnModuleFailed(context.Context, string, error)                  {}
func (noopListener) OnExecutionComplete(context.Context, string, bool, time.Duration) {}

// NoopListener is the default ExecutionListener.
var NoopListener ExecutionListener = noopListener{}
