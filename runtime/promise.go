package runtime

import (
	"context"
	"sync"

	"github.com/constellation-run/constellation/types"
)

// Promise is the single coordination primitive of the runtime (spec.md
// §4.5, §5): a single-assignment future backing one DAG data node. It
// may be completed exactly once and awaited by any number of consumers.
type Promise struct {
	done  chan struct{}
	once  sync.Once
	value types.Value
	err   error
}

// NewPromise creates an unsettled promise.
func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Settle completes the promise with a value or a failure. Later calls
// are no-ops: a promise settles exactly once.
func (p *Promise) Settle(v types.Value, err error) {
	p.once.Do(func() {
		p.value, p.err = v, err
		close(p.done)
	})
}

// Await blocks until the promise settles or ctx is done, whichever comes
// first. A consumer awaiting a promise that settles with a cancellation
// error observes that same error without running its own module.
func (p *Promise) Await(ctx context.Context) (types.Value, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return types.Value{}, ctx.Err()
	}
}

// reset clears the promise so a pool can hand it out again.
func (p *Promise) reset() {
	p.done = make(chan struct{})
	p.once = sync.Once{}
	p.value = types.Value{}
	p.err = nil
}
