// Package runtime executes a compiled DAG (spec.md §4.5): one promise
// per data node, one goroutine per node awaiting its producer's inputs,
// no manual layer assignment - parallelism emerges entirely from the
// dependency structure, unlike the teacher's level-by-level dag.Engine.
// When an Engine carries a scheduler.BoundedScheduler, module tasks are
// additionally arbitrated by that scheduler's priority queue and
// concurrency cap instead of running the instant their inputs settle.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/constellation-run/constellation/cache"
	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/compile"
	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/module"
	"github.com/constellation-run/constellation/pipelineimage"
	"github.com/constellation-run/constellation/resilience"
	"github.com/constellation-run/constellation/scheduler"
	"github.com/constellation-run/constellation/spi"
	"github.com/constellation-run/constellation/types"
)

// Engine drives one compiled DAG to completion.
type Engine struct {
	Modules  *module.Registry
	Caches   *cache.Registry
	Listener spi.ExecutionListener
	Tracer   spi.TracerProvider
	Metrics  spi.MetricsProvider
	Pools    *Pools

	// Scheduler, when set, arbitrates module-task execution under a
	// global concurrency cap and priority ordering (spec.md §4.8)
	// instead of letting every node's goroutine run the moment its
	// inputs settle.
	Scheduler *scheduler.BoundedScheduler
}

// NewEngine creates an engine with no-op observability and unpooled
// allocation.
func NewEngine(modules *module.Registry) *Engine {
	return &Engine{
		Modules:  modules,
		Listener: spi.NoopListener,
		Tracer:   spi.IdentityTracer,
		Metrics:  spi.NoopMetrics,
	}
}

// Run executes dag against inputs. On success it returns named outputs.
// If a required input is missing, it returns a suspended-execution
// record in lieu of outputs (spec.md §4.5 "Suspension"). An error return
// means the top-level outputs themselves failed to resolve.
func (e *Engine) Run(ctx context.Context, executionID string, dag *compile.DAG, inputs map[string]types.Value) (map[string]types.Value, *pipelineimage.SuspendedExecution, error) {
	st := e.acquireState()
	defer e.releaseState(st)

	st.ExecutionID = executionID
	st.DAG = dag
	st.resilience = resilience.NewRegistry()
	st.StartedAt = time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.Listener.OnExecutionStart(runCtx, executionID)

	missing := missingRequiredInputs(dag, inputs)

	var wg sync.WaitGroup
	for _, id := range dag.Order {
		wg.Add(1)
		go func(id ir.ID) {
			defer wg.Done()
			e.resolve(runCtx, st, dag, inputs, id)
		}(id)
	}
	wg.Wait()

	st.Latency = time.Since(st.StartedAt)

	if len(missing) > 0 {
		suspended := e.suspend(st, dag, inputs)
		e.Listener.OnExecutionComplete(runCtx, executionID, false, st.Latency)
		return nil, suspended, nil
	}

	outputs := make(map[string]types.Value, len(dag.Outputs))
	var firstErr error
	for name, id := range dag.Outputs {
		v, err := st.promiseFor(id).Await(runCtx)
		if err != nil {
			cancel()
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		outputs[name] = v
	}

	e.Listener.OnExecutionComplete(runCtx, executionID, firstErr == nil, st.Latency)
	if firstErr != nil {
		return nil, nil, firstErr
	}
	return outputs, nil, nil
}

// resolve settles id's promise: directly for inputs and literals, via
// the resilience chain for a module node. Match-bind nodes are settled
// by the match module that owns them and are otherwise left untouched
// here (spec.md §4.2 lambda/match binding semantics).
func (e *Engine) resolve(ctx context.Context, st *State, dag *compile.DAG, inputs map[string]types.Value, id ir.ID) {
	p := st.promiseFor(id)
	dn := dag.Data[id]

	switch {
	case dn.IsMatchBind:
		return

	case dn.IsLiteral:
		p.Settle(dn.LiteralValue, nil)
		return

	case dn.IsInput:
		v, err := resolveInput(dag, inputs, dn)
		p.Settle(v, err)
		return
	}

	mn, ok := dag.Producer(id)
	if !ok {
		p.Settle(types.Value{}, fmt.Errorf("runtime: data node %s has no producer", id))
		return
	}

	run := func(ctx context.Context) {
		st.setStatus(id, pipelineimage.StatusRunning)
		e.Listener.OnModuleStart(ctx, mn.Module)
		start := time.Now()

		v, err := e.runModule(ctx, st, dag, mn)
		d := time.Since(start)

		if err != nil {
			if isCancelled(err) {
				st.setStatus(id, pipelineimage.StatusCancelled)
			} else {
				st.setStatus(id, pipelineimage.StatusFailed)
			}
			e.Listener.OnModuleFailed(ctx, mn.Module, err)
		} else {
			st.setStatus(id, pipelineimage.StatusCompleted)
			e.Listener.OnModuleComplete(ctx, mn.Module, d)
		}
		p.Settle(v, err)
	}

	if e.Scheduler == nil {
		run(ctx)
		return
	}

	// Route through the bounded scheduler: submit the module's work as
	// a Task and block this node's goroutine until it runs, so Run's
	// WaitGroup still reflects true completion. The scheduler's own
	// context (cancelled on Shutdown) takes over from ctx once queued,
	// matching its independent lifetime.
	done := make(chan struct{})
	task := &scheduler.Task{
		ID:           string(id),
		BasePriority: mn.Options.Priority,
		Run: func(taskCtx context.Context) {
			defer close(done)
			run(taskCtx)
		},
	}
	if err := e.Scheduler.Submit(task); err != nil {
		p.Settle(types.Value{}, err)
		return
	}
	<-done
}

// runModule awaits a module node's wired inputs and invokes its
// evaluator: a synthetic transform's fixed function, a lambda-bearing
// higher-order op's mini-interpreter, match's arm selection, or a
// host-registered module through the full resilience chain.
func (e *Engine) runModule(ctx context.Context, st *State, dag *compile.DAG, mn *compile.ModuleNode) (types.Value, error) {
	if mn.Module == compile.SynMatch {
		return e.evalMatch(ctx, st, mn)
	}

	edges := dag.InEdgesFor(mn.ID)
	args := make(map[string]types.Value, len(edges))
	captures := make(map[string]types.Value)
	var listVal types.Value

	for _, edge := range edges {
		v, err := st.promiseFor(edge.Data).Await(ctx)
		if err != nil {
			return types.Value{}, err
		}
		switch {
		case edge.Param == "list":
			listVal = v
		case strings.HasPrefix(edge.Param, "cap:"):
			captures[strings.TrimPrefix(edge.Param, "cap:")] = v
		default:
			args[edge.Param] = v
		}
	}

	if mn.Lambda != nil {
		return e.evalHigherOrder(ctx, mn.Op, mn.Lambda, listVal, captures)
	}

	if mn.Synthetic {
		eval := syntheticEvaluatorWithNode(mn)
		call := resilience.Call{Module: mn.Module, Args: args, Options: mn.Options, Eval: eval}
		return resilience.Execute(ctx, call, st.resilience, e.Caches)
	}

	real, ok := e.Modules.Lookup(mn.Module)
	if !ok {
		return types.Value{}, cerrors.ModuleFailureError(mn.Module, fmt.Errorf("module %q not registered", mn.Module))
	}
	call := resilience.Call{Module: mn.Module, Args: args, Options: mn.Options, Eval: real.Eval}
	return resilience.Execute(ctx, call, st.resilience, e.Caches)
}

// evalMatch awaits the scrutinee, picks the matching (or wildcard) arm,
// settles that arm's bind node (if any) with the union payload, and
// awaits the arm body's own already-scheduled promise.
func (e *Engine) evalMatch(ctx context.Context, st *State, mn *compile.ModuleNode) (types.Value, error) {
	scrutinee, err := st.promiseFor(matchScrutineeID(st.DAG, mn.ID)).Await(ctx)
	if err != nil {
		return types.Value{}, err
	}

	tag, payload, _ := scrutinee.AsUnion()
	for _, arm := range mn.MatchArms {
		if arm.Wildcard || arm.Tag == tag {
			if arm.BindID != "" {
				st.promiseFor(arm.BindID).Settle(payload, nil)
			}
			return st.promiseFor(arm.Body).Await(ctx)
		}
	}
	return types.Value{}, fmt.Errorf("runtime: non-exhaustive match on tag %q", tag)
}

func matchScrutineeID(dag *compile.DAG, matchID ir.ID) ir.ID {
	for _, e := range dag.InEdgesFor(matchID) {
		if e.Param == "scrutinee" {
			return e.Data
		}
	}
	return ""
}

// resolveInput resolves an Input data node from the run contract or its
// declared default (spec.md §3: "Input(name, T, default?)").
func resolveInput(dag *compile.DAG, inputs map[string]types.Value, dn *compile.DataNode) (types.Value, error) {
	if v, ok := inputs[dn.InputName]; ok {
		return v, nil
	}
	if dn.InputDefault != "" {
		if def, ok := dag.Data[dn.InputDefault]; ok && def.IsLiteral {
			return def.LiteralValue, nil
		}
	}
	return types.Value{}, cerrors.MissingInputError(dn.InputName)
}

// missingRequiredInputs lists every Input data node absent from inputs
// with no declared default.
func missingRequiredInputs(dag *compile.DAG, inputs map[string]types.Value) []string {
	var missing []string
	for _, id := range dag.Order {
		dn := dag.Data[id]
		if !dn.IsInput || dn.InputDefault != "" {
			continue
		}
		if _, ok := inputs[dn.InputName]; !ok {
			missing = append(missing, dn.InputName)
		}
	}
	return missing
}

// suspend builds a suspended-execution record from whatever the run
// managed to compute before discovering a missing input (spec.md §3,
// §4.5).
func (e *Engine) suspend(st *State, dag *compile.DAG, inputs map[string]types.Value) *pipelineimage.SuspendedExecution {
	computed := make(map[ir.ID]types.Value)
	for _, id := range dag.Order {
		p := st.promiseFor(id)
		select {
		case <-p.done:
			if p.err == nil {
				computed[id] = p.value
			}
		default:
		}
	}

	return &pipelineimage.SuspendedExecution{
		ExecutionID:    st.ExecutionID,
		DAG:            dag,
		ProvidedInputs: inputs,
		ComputedValues: computed,
		ModuleStatuses: st.snapshotStatuses(),
	}
}

func isCancelled(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var re *cerrors.RuntimeError
	if errors.As(err, &re) {
		return re.Code == cerrors.CodeCancelled
	}
	return false
}
