package spi

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopMetrics_NeverPanics(t *testing.T) {
	NoopMetrics.Counter("c", map[string]string{"a": "b"})
	NoopMetrics.Histogram("h", 1.0, nil)
	NoopMetrics.Gauge("g", 2.0, nil)
}

func TestIdentityTracer_ReturnsNoopSpan(t *testing.T) {
	ctx := context.Background()
	gotCtx, span := IdentityTracer.StartSpan(ctx, "op", map[string]string{"k": "v"})
	if gotCtx != ctx {
		t.Error("expected IdentityTracer to pass the context through unchanged")
	}
	span.SetError(errors.New("boom"))
	span.End()
}

func TestNoopListener_SatisfiesInterfaceAndNeverPanics(t *testing.T) {
	ctx := context.Background()
	NoopListener.OnExecutionStart(ctx, "exec1")
	NoopListener.OnModuleStart(ctx, "mod1")
	NoopListener.OnModuleComplete(ctx, "mod1", time.Millisecond)
	NoopListener.OnModuleFailed(ctx, "mod1", errors.New("fail"))
	NoopListener.OnExecutionComplete(ctx, "exec1", true, time.Millisecond)
}
