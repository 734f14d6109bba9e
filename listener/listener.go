// Package listener adapts the teacher's logging and tracing stack
// (zerolog-backed logger, OpenTelemetry-backed observability) to the
// spi.ExecutionListener surface, plus a swallowing composite (grounded on
// dag.WithLogging/WithTracing/WithMetrics's decorator style, generalized
// from wrapping a single Node to observing a whole execution).
package listener

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/constellation-run/constellation/logger"
	"github.com/constellation-run/constellation/observability"
	"github.com/constellation-run/constellation/spi"
)

// Composite fans an event out to every listener, logging (rather than
// propagating) any panic so one misbehaving listener can't abort a run.
type Composite struct {
	listeners []spi.ExecutionListener
	log       *logger.Logger
}

// NewComposite builds a composite over the given listeners.
func NewComposite(log *logger.Logger, listeners ...spi.ExecutionListener) *Composite {
	return &Composite{listeners: listeners, log: log}
}

func (c *Composite) each(fn func(spi.ExecutionListener)) {
	for _, l := range c.listeners {
		c.safe(fn, l)
	}
}

func (c *Composite) safe(fn func(spi.ExecutionListener), l spi.ExecutionListener) {
	defer func() {
		if r := recover(); r != nil && c.log != nil {
			c.log.Error("execution listener panicked", map[string]interface{}{"panic": r})
		}
	}()
	fn(l)
}

func (c *Composite) OnExecutionStart(ctx context.Context, executionID string) {
	c.each(func(l spi.ExecutionListener) { l.OnExecutionStart(ctx, executionID) })
}

func (c *Composite) OnModuleStart(ctx context.Context, module string) {
	c.each(func(l spi.ExecutionListener) { l.OnModuleStart(ctx, module) })
}

func (c *Composite) OnModuleComplete(ctx context.Context, module string, d time.Duration) {
	c.each(func(l spi.ExecutionListener) { l.OnModuleComplete(ctx, module, d) })
}

func (c *Composite) OnModuleFailed(ctx context.Context, module string, err error) {
	c.each(func(l spi.ExecutionListener) { l.OnModuleFailed(ctx, module, err) })
}

func (c *Composite) OnExecutionComplete(ctx context.Context, executionID string, succeeded bool, d time.Duration) {
	c.each(func(l spi.ExecutionListener) { l.OnExecutionComplete(ctx, executionID, succeeded, d) })
}

var _ spi.ExecutionListener = (*Composite)(nil)

// LoggingListener logs every lifecycle event through the teacher's
// zerolog-backed logger.
type LoggingListener struct {
	log *logger.Logger
}

// NewLoggingListener wraps a logger as an ExecutionListener.
func NewLoggingListener(log *logger.Logger) *LoggingListener {
	return &LoggingListener{log: log}
}

func (l *LoggingListener) OnExecutionStart(_ context.Context, executionID string) {
	l.log.Debug("execution started", map[string]interface{}{"execution_id": executionID})
}

func (l *LoggingListener) OnModuleStart(_ context.Context, module string) {
	l.log.Debug("module started", map[string]interface{}{"module": module})
}

func (l *LoggingListener) OnModuleComplete(_ context.Context, module string, d time.Duration) {
	l.log.Debug("module completed", map[string]interface{}{"module": module, "duration": d.String()})
}

func (l *LoggingListener) OnModuleFailed(_ context.Context, module string, err error) {
	l.log.Error("module failed", map[string]interface{}{"module": module, "error": err.Error()})
}

func (l *LoggingListener) OnExecutionComplete(_ context.Context, executionID string, succeeded bool, d time.Duration) {
	fields := map[string]interface{}{
		"execution_id": executionID,
		"succeeded":    succeeded,
		"duration":     d.String(),
	}
	if succeeded {
		l.log.Info("execution completed", fields)
	} else {
		l.log.Error("execution completed", fields)
	}
}

var _ spi.ExecutionListener = (*LoggingListener)(nil)

// TracingListener opens one span per module call and one span per
// execution, through the teacher's OpenTelemetry-backed observability
// package.
type TracingListener struct {
	spans map[string]trace.Span
	mu    sync.Mutex
}

// NewTracingListener constructs a TracingListener.
func NewTracingListener() *TracingListener {
	return &TracingListener{spans: make(map[string]trace.Span)}
}

func (t *TracingListener) OnExecutionStart(ctx context.Context, executionID string) {
	_, span := observability.StartSpan(ctx, "constellation.execution")
	t.mu.Lock()
	t.spans["exec:"+executionID] = span
	t.mu.Unlock()
}

func (t *TracingListener) OnModuleStart(ctx context.Context, module string) {
	_, span := observability.StartSpan(ctx, "constellation.module."+module)
	t.mu.Lock()
	t.spans["mod:"+module] = span
	t.mu.Unlock()
}

func (t *TracingListener) OnModuleComplete(_ context.Context, module string, _ time.Duration) {
	t.endSpan("mod:" + module)
}

func (t *TracingListener) OnModuleFailed(_ context.Context, module string, _ error) {
	t.endSpan("mod:" + module)
}

func (t *TracingListener) OnExecutionComplete(_ context.Context, executionID string, _ bool, _ time.Duration) {
	t.endSpan("exec:" + executionID)
}

func (t *TracingListener) endSpan(key string) {
	t.mu.Lock()
	s, ok := t.spans[key]
	delete(t.spans, key)
	t.mu.Unlock()
	if ok {
		s.End()
	}
}

var _ spi.ExecutionListener = (*TracingListener)(nil)
