package runtime

import (
	"context"
	"fmt"

	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/compile"
	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/synthetic"
	"github.com/constellation-run/constellation/types"
)

// evalLambda runs a lambda's self-contained body graph for one bound
// parameter value and its captured bindings (spec.md §4.4: "a
// mini-interpreter over the lambda's bodyNodes"). Unlike the DAG runtime,
// a lambda body evaluates sequentially and uninstrumented: it runs once
// per list element and user lambdas carry no resilience options.
func (e *Engine) evalLambda(ctx context.Context, l *ir.Lambda, param types.Value, captures map[string]types.Value) (types.Value, error) {
	g := l.BodyNodes

	captureOf := make(map[ir.ID]string, len(l.CapturedBindings))
	for outer, inner := range l.CapturedBindings {
		captureOf[inner] = outer
	}

	var paramID ir.ID
	if len(l.Params) > 0 {
		for _, id := range g.Order {
			n := g.Nodes[id]
			if n.Kind == ir.KindInput && n.InputName == l.Params[0] {
				if _, isCapture := captureOf[id]; !isCapture {
					paramID = id
					break
				}
			}
		}
	}

	memo := make(map[ir.ID]types.Value, len(g.Nodes))
	bind := func(id ir.ID, v types.Value) { memo[id] = v }

	var eval func(id ir.ID) (types.Value, error)
	eval = func(id ir.ID) (types.Value, error) {
		if v, ok := memo[id]; ok {
			return v, nil
		}
		n, ok := g.Nodes[id]
		if !ok {
			return types.Value{}, fmt.Errorf("runtime: lambda body references unknown node %s", id)
		}
		v, err := e.evalLambdaNode(ctx, n, paramID, param, captureOf, captures, eval, bind)
		if err != nil {
			return types.Value{}, err
		}
		memo[id] = v
		return v, nil
	}

	return eval(l.OutputID)
}

// evalLambdaNode evaluates one node of a lambda body, exhaustive over
// every ir.NodeKind for the same reason the optimizer's dependency walk
// must be: a missing variant silently produces a wrong value rather than
// an error.
func (e *Engine) evalLambdaNode(
	ctx context.Context,
	n *ir.Node,
	paramID ir.ID,
	param types.Value,
	captureOf map[ir.ID]string,
	captures map[string]types.Value,
	eval func(ir.ID) (types.Value, error),
	bind func(ir.ID, types.Value),
) (types.Value, error) {
	switch n.Kind {
	case ir.KindInput:
		if n.ID == paramID {
			return param, nil
		}
		if outer, ok := captureOf[n.ID]; ok {
			return captures[outer], nil
		}
		if n.InputDefault != nil {
			return eval(*n.InputDefault)
		}
		return types.Value{}, cerrors.MissingInputError(n.InputName)

	case ir.KindLiteral:
		return n.LiteralValue, nil

	case ir.KindModuleCall:
		real, ok := e.Modules.Lookup(n.ModuleName)
		if !ok {
			return types.Value{}, cerrors.ModuleFailureError(n.ModuleName, fmt.Errorf("module %q not registered", n.ModuleName))
		}
		args := make(map[string]types.Value, len(n.ModuleArgs))
		for name, id := range n.ModuleArgs {
			v, err := eval(id)
			if err != nil {
				return types.Value{}, err
			}
			args[name] = v
		}
		v, err := real.Eval(ctx, args)
		if err != nil {
			return types.Value{}, cerrors.ModuleFailureError(n.ModuleName, err)
		}
		return v, nil

	case ir.KindMergeTransform:
		a, err := eval(n.MergeA)
		if err != nil {
			return types.Value{}, err
		}
		b, err := eval(n.MergeB)
		if err != nil {
			return types.Value{}, err
		}
		return synthetic.Merge(compile.SynMerge, a, b)

	case ir.KindProjectTransform:
		src, err := eval(n.ProjectSrc)
		if err != nil {
			return types.Value{}, err
		}
		return synthetic.Project(src, n.ProjectFields), nil

	case ir.KindFieldAccess:
		src, err := eval(n.FieldSrc)
		if err != nil {
			return types.Value{}, err
		}
		return synthetic.Field(src, n.FieldName)

	case ir.KindConditional:
		t, err := eval(n.CondTest)
		if err != nil {
			return types.Value{}, err
		}
		tb, _ := t.AsBool()
		if tb {
			return eval(n.CondThen)
		}
		return eval(n.CondElse)

	case ir.KindGuard:
		src, err := eval(n.GuardSrc)
		if err != nil {
			return types.Value{}, err
		}
		c, err := eval(n.GuardCond)
		if err != nil {
			return types.Value{}, err
		}
		cb, _ := c.AsBool()
		return synthetic.Guard(src, cb), nil

	case ir.KindCoalesce:
		a, err := eval(n.CoalesceA)
		if err != nil {
			return types.Value{}, err
		}
		b, err := eval(n.CoalesceB)
		if err != nil {
			return types.Value{}, err
		}
		return synthetic.Coalesce(a, b), nil

	case ir.KindAnd:
		a, err := eval(n.BoolA)
		if err != nil {
			return types.Value{}, err
		}
		b, err := eval(n.BoolB)
		if err != nil {
			return types.Value{}, err
		}
		ab, _ := a.AsBool()
		bb, _ := b.AsBool()
		return types.NewBool(synthetic.And(ab, bb)), nil

	case ir.KindOr:
		a, err := eval(n.BoolA)
		if err != nil {
			return types.Value{}, err
		}
		b, err := eval(n.BoolB)
		if err != nil {
			return types.Value{}, err
		}
		ab, _ := a.AsBool()
		bb, _ := b.AsBool()
		return types.NewBool(synthetic.Or(ab, bb)), nil

	case ir.KindNot:
		x, err := eval(n.BoolX)
		if err != nil {
			return types.Value{}, err
		}
		xb, _ := x.AsBool()
		return types.NewBool(synthetic.Not(xb)), nil

	case ir.KindHigherOrder:
		list, err := eval(n.HOListSrc)
		if err != nil {
			return types.Value{}, err
		}
		caps := make(map[string]types.Value, len(n.HOCapturedInputs))
		for name, id := range n.HOCapturedInputs {
			v, err := eval(id)
			if err != nil {
				return types.Value{}, err
			}
			caps[name] = v
		}
		return e.evalHigherOrder(ctx, n.HOOp, n.HOLambda, list, caps)

	case ir.KindMatch:
		scrutinee, err := eval(n.MatchScrutinee)
		if err != nil {
			return types.Value{}, err
		}
		tag, payload, _ := scrutinee.AsUnion()
		for _, arm := range n.MatchArms {
			if arm.Wildcard || arm.Tag == tag {
				if arm.BindID != "" {
					bind(arm.BindID, payload)
				}
				return eval(arm.Body)
			}
		}
		return types.Value{}, fmt.Errorf("runtime: non-exhaustive match on tag %q", tag)

	default:
		return types.Value{}, fmt.Errorf("runtime: unsupported lambda-body node kind %d", n.Kind)
	}
}

// evalHigherOrder applies filter/map/all/any to a list (spec.md §4.4,
// §4.2): each element is bound to the lambda's sole parameter, with
// captures passed alongside. Lambda parameters shadow captures of the
// same name (handled in evalLambda's paramID lookup, which always wins
// over captureOf).
func (e *Engine) evalHigherOrder(ctx context.Context, op string, l *ir.Lambda, listVal types.Value, captures map[string]types.Value) (types.Value, error) {
	items, _ := listVal.AsList()

	switch op {
	case "map":
		out := make([]types.Value, len(items))
		resultElem := listVal.Type().Elem()
		for i, item := range items {
			v, err := e.evalLambda(ctx, l, item, captures)
			if err != nil {
				return types.Value{}, err
			}
			out[i] = v
			resultElem = v.Type()
		}
		return types.NewList(resultElem, out), nil

	case "filter":
		var out []types.Value
		for _, item := range items {
			v, err := e.evalLambda(ctx, l, item, captures)
			if err != nil {
				return types.Value{}, err
			}
			keep, _ := v.AsBool()
			if keep {
				out = append(out, item)
			}
		}
		return types.NewList(listVal.Type().Elem(), out), nil

	case "all":
		for _, item := range items {
			v, err := e.evalLambda(ctx, l, item, captures)
			if err != nil {
				return types.Value{}, err
			}
			ok, _ := v.AsBool()
			if !ok {
				return types.NewBool(false), nil
			}
		}
		return types.NewBool(true), nil

	case "any":
		for _, item := range items {
			v, err := e.evalLambda(ctx, l, item, captures)
			if err != nil {
				return types.Value{}, err
			}
			ok, _ := v.AsBool()
			if ok {
				return types.NewBool(true), nil
			}
		}
		return types.NewBool(false), nil

	default:
		return types.Value{}, fmt.Errorf("runtime: unknown higher-order op %q", op)
	}
}
