package runtime

import (
	"sync"
	"time"

	"github.com/constellation-run/constellation/compile"
	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/pipelineimage"
	"github.com/constellation-run/constellation/resilience"
)

// State is the per-execution container spec.md §4.9 describes: a
// module-status map, a data-value (promise) map, the execution
// identifier, a DAG reference, and latency. It is reusable from a pool -
// reset clears every field before the container is reinserted.
type State struct {
	ExecutionID string
	DAG         *compile.DAG
	StartedAt   time.Time
	Latency     time.Duration

	resilience *resilience.Registry

	mu       sync.Mutex
	promises map[ir.ID]*Promise
	statuses map[ir.ID]pipelineimage.ModuleStatus

	promisePool *Pools
}

func newState() *State {
	return &State{
		promises: make(map[ir.ID]*Promise),
		statuses: make(map[ir.ID]pipelineimage.ModuleStatus),
	}
}

// reset clears a state container for pooled reuse (spec.md §4.9: "a
// released state is cleared before re-insertion").
func (s *State) reset() {
	s.ExecutionID = ""
	s.DAG = nil
	s.StartedAt = time.Time{}
	s.Latency = 0
	s.resilience = nil
	s.promisePool = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.promises {
		delete(s.promises, k)
	}
	for k := range s.statuses {
		delete(s.statuses, k)
	}
}

// promiseFor returns the (lazily created) promise for a data node,
// drawing from the promise pool when one is configured.
func (s *State) promiseFor(id ir.ID) *Promise {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.promises[id]
	if !ok {
		if s.promisePool != nil {
			p = s.promisePool.Promises.Acquire()
		} else {
			p = NewPromise()
		}
		s.promises[id] = p
	}
	return p
}

func (s *State) setStatus(id ir.ID, st pipelineimage.ModuleStatus) {
	s.mu.Lock()
	s.statuses[id] = st
	s.mu.Unlock()
}

// Status returns a data node's current module status.
func (s *State) Status(id ir.ID) pipelineimage.ModuleStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses[id]
}

func (s *State) snapshotPromises() []*Promise {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Promise, 0, len(s.promises))
	for _, p := range s.promises {
		out = append(out, p)
	}
	return out
}

func (s *State) snapshotStatuses() map[ir.ID]pipelineimage.ModuleStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[ir.ID]pipelineimage.ModuleStatus, len(s.statuses))
	for k, v := range s.statuses {
		out[k] = v
	}
	return out
}
