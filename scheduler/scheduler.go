// Package scheduler implements Constellation's optional bounded priority
// scheduler (spec.md §4.8): when enabled, every module task is submitted
// to a single global ready-queue ordered by (effective-priority desc,
// submission-time asc), with up to MaxConcurrency running at once and an
// aging fiber that prevents low-priority starvation. Grounded on the
// container/heap priority-queue idiom used for scheduling work elsewhere
// in the retrieved pack, combined with the channel-based acquire/release
// style already established for resilience.Semaphore.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"
)

const (
	// agingInterval is how often the aging fiber boosts waiting tasks.
	agingInterval = 5 * time.Second
	// agingBoost is the fixed per-interval priority increase (spec.md
	// §4.8: "every 5 seconds add a fixed boost (e.g., +10)").
	agingBoost = 10
)

// ErrShutdown is returned by Submit once the scheduler has begun
// shutting down.
var ErrShutdown = errors.New("scheduler: shut down")

// BoundedScheduler arbitrates module-task execution under a global
// concurrency cap, with starvation prevention via priority aging
// (spec.md §8 invariant 10: "no task waits forever while slots are
// available").
type BoundedScheduler struct {
	MaxConcurrency int

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	queue   taskHeap
	running int
	closed  bool

	shutdown chan struct{}
	wake     chan struct{}
	wg       sync.WaitGroup
}

// NewBoundedScheduler creates a scheduler bounding concurrency to
// maxConcurrency (clamped to at least 1) and starts its dispatch and
// aging fibers.
func NewBoundedScheduler(maxConcurrency int) *BoundedScheduler {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &BoundedScheduler{
		MaxConcurrency: maxConcurrency,
		ctx:            ctx,
		cancel:         cancel,
		shutdown:       make(chan struct{}),
		wake:           make(chan struct{}, 1),
	}
	go s.dispatchLoop()
	go s.ageLoop()
	return s
}

// Submit enqueues a task and returns immediately. The task runs once a
// concurrency slot is free and it is the highest-(effective-)priority
// waiting task.
func (s *BoundedScheduler) Submit(t *Task) error {
	t.EffectivePriority = t.BasePriority
	t.SubmittedAt = time.Now()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrShutdown
	}
	heap.Push(&s.queue, t)
	s.mu.Unlock()

	s.poke()
	return nil
}

// Len reports the number of tasks currently waiting in the ready queue.
func (s *BoundedScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Running reports the number of tasks currently occupying a concurrency
// slot.
func (s *BoundedScheduler) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *BoundedScheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// dispatchLoop wakes whenever a task is submitted, a slot frees up, or a
// priority boost might have changed the ready order, and starts every
// task the current concurrency budget allows.
func (s *BoundedScheduler) dispatchLoop() {
	for {
		select {
		case <-s.shutdown:
			return
		case <-s.wake:
		}
		s.dispatchReady()
	}
}

func (s *BoundedScheduler) dispatchReady() {
	for {
		s.mu.Lock()
		if s.running >= s.MaxConcurrency || s.queue.Len() == 0 {
			s.mu.Unlock()
			return
		}
		t := heap.Pop(&s.queue).(*Task)
		s.running++
		s.mu.Unlock()

		s.wg.Add(1)
		go s.run(t)
	}
}

func (s *BoundedScheduler) run(t *Task) {
	defer s.wg.Done()
	t.Run(s.ctx)

	s.mu.Lock()
	s.running--
	s.mu.Unlock()
	s.poke()
}

// ageLoop raises every waiting task's effective priority by agingBoost
// every agingInterval, so a background-priority task (0) reaches roughly
// priority 60 after 30 seconds of waiting (spec.md §4.8).
func (s *BoundedScheduler) ageLoop() {
	ticker := time.NewTicker(agingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.age()
		}
	}
}

func (s *BoundedScheduler) age() {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	for _, t := range s.queue {
		t.EffectivePriority += agingBoost
	}
	heap.Init(&s.queue)
	s.mu.Unlock()
	s.poke()
}

// Shutdown stops accepting new tasks and drops whatever is still
// waiting in the ready queue. It waits up to deadline for in-flight
// tasks to finish on their own; if the deadline elapses first, it
// cancels the scheduler's context (every Task.Run observes this via its
// ctx argument) and blocks until every in-flight task actually returns.
// deadline <= 0 means cancel immediately rather than waiting at all.
func (s *BoundedScheduler) Shutdown(deadline time.Duration) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()
	close(s.shutdown)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	if deadline > 0 {
		timer := time.NewTimer(deadline)
		defer timer.Stop()
		select {
		case <-done:
			return
		case <-timer.C:
		}
	}

	s.cancel()
	<-done
}
