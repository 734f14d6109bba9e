package runtime

import "github.com/constellation-run/constellation/pool"

// Pools bundles the promise pool and the execution-state-container pool
// spec.md §4.9 requires. A capacity <= 0 means unbounded retention.
type Pools struct {
	Promises *pool.Pool[Promise]
	States   *pool.Pool[State]
}

// NewPools creates both pools at the given capacity.
func NewPools(capacity int) *Pools {
	return &Pools{
		Promises: pool.New(capacity, func() *Promise { return NewPromise() }, func(p *Promise) { p.reset() }),
		States:   pool.New(capacity, func() *State { return newState() }, func(s *State) { s.reset() }),
	}
}

func (e *Engine) acquireState() *State {
	var st *State
	if e.Pools != nil {
		st = e.Pools.States.Acquire()
		st.promisePool = e.Pools
	} else {
		st = newState()
	}
	return st
}

func (e *Engine) releaseState(st *State) {
	if e.Pools == nil {
		return
	}
	for _, p := range st.snapshotPromises() {
		e.Pools.Promises.Release(p)
	}
	e.Pools.States.Release(st)
}
