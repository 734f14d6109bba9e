package scheduler

import (
	"context"
	"time"
)

// Named priority bands (spec.md §3: "priority: {background..critical} or
// 0..100"). Any 0-100 integer is valid; these are just the common
// anchors a caller can reach for instead of a raw number.
const (
	PriorityBackground = 0
	PriorityLow        = 25
	PriorityNormal     = 50
	PriorityHigh       = 75
	PriorityCritical   = 100
)

// Task is one unit of work submitted to the bounded scheduler (spec.md
// §4.8). EffectivePriority starts equal to BasePriority and is boosted
// by the aging fiber while the task waits in the ready queue (spec.md
// §9 "Effective priority").
type Task struct {
	ID                string
	BasePriority      int
	EffectivePriority int
	SubmittedAt       time.Time
	// Run executes the task's work. It receives the scheduler's
	// lifetime context, cancelled on a Shutdown deadline, so an
	// in-flight task has a way to stop cooperatively.
	Run func(ctx context.Context)

	index int // heap.Interface bookkeeping, owned by taskHeap
}
