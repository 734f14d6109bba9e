package ir

import (
	"fmt"
	"sort"

	"github.com/constellation-run/constellation/ast"
	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/types"
)

// genCtx threads the graph under construction, the name->id environment,
// and a shared, monotonically increasing id counter (shared across inner
// lambda sub-graphs too, so ids stay unique per source) through
// generation.
type genCtx struct {
	graph   *Graph
	env     map[string]ID
	counter *int
	errs    *cerrors.Errors
}

func (c *genCtx) newID(prefix string) ID {
	*c.counter++
	return ID(fmt.Sprintf("%s%d", prefix, *c.counter))
}

func (c *genCtx) child() *genCtx {
	env := make(map[string]ID, len(c.env))
	for k, v := range c.env {
		env[k] = v
	}
	return &genCtx{graph: NewGraph(), env: env, counter: c.counter, errs: c.errs}
}

// Generate walks a type-checked ast.Program and builds its IR graph.
func Generate(p *ast.Program) (*Graph, *cerrors.Errors) {
	errs := &cerrors.Errors{}
	counter := 0
	ctx := &genCtx{graph: NewGraph(), env: make(map[string]ID), counter: &counter, errs: errs}

	for i := range p.Inputs {
		decl := &p.Inputs[i]
		id := ctx.newID("in")
		var def *ID
		if decl.Default != nil {
			defID := genExpr(decl.Default, ctx)
			def = &defID
		}
		ctx.graph.Add(&Node{ID: id, Kind: KindInput, Type: decl.ResolvedType, InputName: decl.Name, InputDefault: def})
		ctx.env[decl.Name] = id
	}

	for i := range p.Lets {
		decl := &p.Lets[i]
		id := genExpr(decl.Expr, ctx)
		ctx.env[decl.Name] = id
	}

	for i := range p.Outputs {
		decl := &p.Outputs[i]
		id := genExpr(decl.Expr, ctx)
		ctx.graph.Outputs[decl.Name] = id
	}

	if errs.Len() == 0 {
		return ctx.graph, nil
	}
	return ctx.graph, errs
}

// genExpr lowers one AST expression into the graph, returning its IR id.
// Exhaustive over every ast.ExprKind variant - spec.md §4.2 calls out
// missing a variant here as a latent correctness bug, not a style issue.
func genExpr(e *ast.Expr, ctx *genCtx) ID {
	switch e.Kind {
	case ast.ExprVarRef:
		if id, ok := ctx.env[e.VarName]; ok {
			return id
		}
		ctx.errs.Add(cerrors.UndefinedVariable(toSpan(e.Span), e.VarName))
		return litNode(ctx, types.NewString(""), e.Span)

	case ast.ExprLiteral:
		return litNode(ctx, decodeLiteral(e), e.Span)

	case ast.ExprFieldAccess:
		src := genExpr(e.FieldSrc, ctx)
		id := ctx.newID("fa")
		ctx.graph.Add(&Node{ID: id, Kind: KindFieldAccess, Type: e.ResolvedType, FieldSrc: src, FieldName: e.FieldName})
		return id

	case ast.ExprProjection:
		src := genExpr(e.ProjectSrc, ctx)
		id := ctx.newID("pr")
		fields := append([]string(nil), e.ProjectFields...)
		sort.Strings(fields)
		ctx.graph.Add(&Node{ID: id, Kind: KindProjectTransform, Type: e.ResolvedType, ProjectSrc: src, ProjectFields: fields})
		return id

	case ast.ExprMerge:
		a := genExpr(e.MergeLeft, ctx)
		b := genExpr(e.MergeRight, ctx)
		id := ctx.newID("mg")
		ctx.graph.Add(&Node{ID: id, Kind: KindMergeTransform, Type: e.ResolvedType, MergeA: a, MergeB: b})
		return id

	case ast.ExprBranchWhen:
		return genBranch(e, ctx)

	case ast.ExprGuard:
		src := genExpr(e.GuardSrc, ctx)
		cond := genExpr(e.GuardCond, ctx)
		id := ctx.newID("gd")
		ctx.graph.Add(&Node{ID: id, Kind: KindGuard, Type: e.ResolvedType, GuardSrc: src, GuardCond: cond})
		return id

	case ast.ExprCoalesce:
		a := genExpr(e.CoalesceLeft, ctx)
		b := genExpr(e.CoalesceRight, ctx)
		id := ctx.newID("co")
		ctx.graph.Add(&Node{ID: id, Kind: KindCoalesce, Type: e.ResolvedType, CoalesceA: a, CoalesceB: b})
		return id

	case ast.ExprConditional:
		test := genExpr(e.CondTest, ctx)
		then := genExpr(e.CondThen, ctx)
		els := genExpr(e.CondElse, ctx)
		id := ctx.newID("cd")
		ctx.graph.Add(&Node{ID: id, Kind: KindConditional, Type: e.ResolvedType, CondTest: test, CondThen: then, CondElse: els})
		return id

	case ast.ExprModuleCall:
		return genModuleCall(e, ctx)

	case ast.ExprLambda:
		ctx.errs.Add(cerrors.ArityMismatch(toSpan(e.Span), "lambda", 0, 0).WithDetail("reason", "lambda used outside a higher-order call"))
		return litNode(ctx, types.NewBool(false), e.Span)

	case ast.ExprHigherOrder:
		return genHigherOrder(e, ctx)

	case ast.ExprMatch:
		return genMatch(e, ctx)

	case ast.ExprBinary:
		return genBinary(e, ctx)

	case ast.ExprUnary:
		x := genExpr(e.UnExpr, ctx)
		id := ctx.newID("nt")
		ctx.graph.Add(&Node{ID: id, Kind: KindNot, Type: types.Bool, BoolX: x})
		return id

	case ast.ExprInterpolation:
		return genInterpolation(e, ctx)

	default:
		ctx.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "a known expression", "unknown"))
		return litNode(ctx, types.NewString(""), e.Span)
	}
}

func toSpan(s ast.Span) cerrors.Span {
	return cerrors.Span{File: s.File, StartLine: s.StartLine, StartCol: s.StartCol, EndLine: s.EndLine, EndCol: s.EndCol}
}

func litNode(ctx *genCtx, v types.Value, span ast.Span) ID {
	id := ctx.newID("lit")
	ctx.graph.Add(&Node{ID: id, Kind: KindLiteral, Type: v.Type(), LiteralValue: v})
	return id
}

func decodeLiteral(e *ast.Expr) types.Value {
	switch raw := e.LiteralRaw.(type) {
	case string:
		return types.NewString(raw)
	case int64:
		return types.NewInt(raw)
	case int:
		return types.NewInt(int64(raw))
	case float64:
		return types.NewFloat(raw)
	case bool:
		return types.NewBool(raw)
	default:
		return types.NewString("")
	}
}

func genBranch(e *ast.Expr, ctx *genCtx) ID {
	// branch { c1->v1; c2->v2; ...; else->d } desugars to right-nested
	// Conditional, built from the else clause outward.
	result := genExpr(e.BranchElse, ctx)
	for i := len(e.BranchArms) - 1; i >= 0; i-- {
		arm := e.BranchArms[i]
		cond := genExpr(arm.Cond, ctx)
		val := genExpr(arm.Value, ctx)
		id := ctx.newID("cd")
		ctx.graph.Add(&Node{ID: id, Kind: KindConditional, Type: e.ResolvedType, CondTest: cond, CondThen: val, CondElse: result})
		result = id
	}
	return result
}

func genModuleCall(e *ast.Expr, ctx *genCtx) ID {
	args := make(map[string]ID, len(e.ModuleArgs))
	order := append([]string(nil), e.ModuleArgOrder...)
	for name, argExpr := range e.ModuleArgs {
		args[name] = genExpr(argExpr, ctx)
	}
	opts, optErrs := decodeOptions(e.Options, ctx)
	ctx.errs.Merge(optErrs)
	id := ctx.newID("mc")
	ctx.graph.Add(&Node{
		ID: id, Kind: KindModuleCall, Type: e.ResolvedType,
		ModuleName: e.ModuleName, ModuleArgs: args, ArgOrder: order, Options: opts,
	})
	return id
}

func genMatch(e *ast.Expr, ctx *genCtx) ID {
	scrutinee := genExpr(e.MatchScrutinee, ctx)
	arms := make([]MatchArm, 0, len(e.MatchArms))
	for _, arm := range e.MatchArms {
		var bindID ID
		armCtx := ctx
		if !arm.Wildcard && arm.Bind != "" {
			bindID = ctx.newID("in")
			ctx.graph.Add(&Node{ID: bindID, Kind: KindInput, InputName: arm.Bind})
			armCtx = ctx.child()
			armCtx.env[arm.Bind] = bindID
			armCtx.graph = ctx.graph
		}
		body := genExpr(arm.Body, armCtx)
		arms = append(arms, MatchArm{Wildcard: arm.Wildcard, Tag: arm.Tag, BindID: bindID, Body: body})
	}
	id := ctx.newID("ma")
	ctx.graph.Add(&Node{ID: id, Kind: KindMatch, Type: e.ResolvedType, MatchScrutinee: scrutinee, MatchArms: arms})
	return id
}

// genHigherOrder is the closure-handling centerpiece: it builds a
// self-contained inner IR graph for the lambda body and records which
// outer names the lambda captures (spec.md §4.2, step 2-3).
func genHigherOrder(e *ast.Expr, ctx *genCtx) ID {
	listSrc := genExpr(e.HOList, ctx)

	lambda := e.HOFn
	paramName := "_"
	if len(lambda.LambdaParams) > 0 {
		paramName = lambda.LambdaParams[0].Name
	}

	inner := ctx.child()
	inner.graph = NewGraph()
	paramID := inner.newID("in")
	var elemType *types.Type
	if e.ResolvedType != nil {
		elemType = e.ResolvedType // best-effort; caller narrows via lambda body type during check
	}
	inner.graph.Add(&Node{ID: paramID, Kind: KindInput, InputName: paramName, Type: elemType})
	inner.env[paramName] = paramID

	free := freeVariables(lambda.LambdaBody, map[string]bool{paramName: true})

	captured := make(map[string]ID)    // outer-name -> inner Input id
	capturedOuter := make(map[string]ID) // outer-name -> outer IR id
	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == paramName {
			continue // lambda parameter shadows a capture of the same name
		}
		outerID, ok := ctx.env[name]
		if !ok {
			continue // not resolvable outward; the checker already flagged this
		}
		capID := inner.newID("in")
		inner.graph.Add(&Node{ID: capID, Kind: KindInput, InputName: name})
		inner.env[name] = capID
		captured[name] = capID
		capturedOuter[name] = outerID
	}

	outputID := genExpr(lambda.LambdaBody, inner)

	id := ctx.newID("ho")
	ctx.graph.Add(&Node{
		ID: id, Kind: KindHigherOrder, Type: e.ResolvedType,
		HOOp: e.HOOp, HOListSrc: listSrc,
		HOLambda: &Lambda{
			Params: []string{paramName}, BodyNodes: inner.graph, OutputID: outputID,
			CapturedBindings: captured,
		},
		HOCapturedInputs: capturedOuter,
	})
	return id
}

// freeVariables collects every VarRef in e that is not in bound, recursing
// exhaustively over every expression variant. Omitting a variant here
// silently drops a capture - spec.md §4.2 treats that as a correctness
// bug, not a simplification.
func freeVariables(e *ast.Expr, bound map[string]bool) map[string]bool {
	out := make(map[string]bool)
	var walk func(e *ast.Expr, bound map[string]bool)
	walk = func(e *ast.Expr, bound map[string]bool) {
		if e == nil {
			return
		}
		switch e.Kind {
		case ast.ExprVarRef:
			if !bound[e.VarName] {
				out[e.VarName] = true
			}
		case ast.ExprLiteral:
		case ast.ExprFieldAccess:
			walk(e.FieldSrc, bound)
		case ast.ExprProjection:
			walk(e.ProjectSrc, bound)
		case ast.ExprMerge:
			walk(e.MergeLeft, bound)
			walk(e.MergeRight, bound)
		case ast.ExprBranchWhen:
			for _, arm := range e.BranchArms {
				walk(arm.Cond, bound)
				walk(arm.Value, bound)
			}
			walk(e.BranchElse, bound)
		case ast.ExprGuard:
			walk(e.GuardSrc, bound)
			walk(e.GuardCond, bound)
		case ast.ExprCoalesce:
			walk(e.CoalesceLeft, bound)
			walk(e.CoalesceRight, bound)
		case ast.ExprConditional:
			walk(e.CondTest, bound)
			walk(e.CondThen, bound)
			walk(e.CondElse, bound)
		case ast.ExprModuleCall:
			for _, arg := range e.ModuleArgs {
				walk(arg, bound)
			}
			for _, opt := range e.Options {
				walk(opt, bound)
			}
		case ast.ExprLambda:
			inner := cloneBound(bound)
			for _, p := range e.LambdaParams {
				inner[p.Name] = true
			}
			walk(e.LambdaBody, inner)
		case ast.ExprHigherOrder:
			walk(e.HOList, bound)
			walk(e.HOFn, bound)
		case ast.ExprMatch:
			walk(e.MatchScrutinee, bound)
			for _, arm := range e.MatchArms {
				inner := bound
				if arm.Bind != "" {
					inner = cloneBound(bound)
					inner[arm.Bind] = true
				}
				walk(arm.Body, inner)
			}
		case ast.ExprBinary:
			walk(e.BinLeft, bound)
			walk(e.BinRight, bound)
		case ast.ExprUnary:
			walk(e.UnExpr, bound)
		case ast.ExprInterpolation:
			for _, part := range e.InterpParts {
				walk(part, bound)
			}
		}
	}
	walk(e, bound)
	return out
}

func cloneBound(b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

func genBinary(e *ast.Expr, ctx *genCtx) ID {
	switch e.BinOp {
	case "and":
		a := genExpr(e.BinLeft, ctx)
		b := genExpr(e.BinRight, ctx)
		id := ctx.newID("and")
		ctx.graph.Add(&Node{ID: id, Kind: KindAnd, Type: types.Bool, BoolA: a, BoolB: b})
		return id
	case "or":
		a := genExpr(e.BinLeft, ctx)
		b := genExpr(e.BinRight, ctx)
		id := ctx.newID("or")
		ctx.graph.Add(&Node{ID: id, Kind: KindOr, Type: types.Bool, BoolA: a, BoolB: b})
		return id
	default:
		// Arithmetic and comparison operators lower to calls against
		// well-known built-in modules the runtime registers directly
		// (e.g. "$eq", "$lt", "$add"), the same way merge/project/field
		// lower to synthetic modules.
		a := genExpr(e.BinLeft, ctx)
		b := genExpr(e.BinRight, ctx)
		id := ctx.newID("mc")
		outT := e.ResolvedType
		ctx.graph.Add(&Node{
			ID: id, Kind: KindModuleCall, Type: outT,
			ModuleName: "$" + e.BinOp,
			ModuleArgs: map[string]ID{"a": a, "b": b},
			ArgOrder:   []string{"a", "b"},
		})
		return id
	}
}

func genInterpolation(e *ast.Expr, ctx *genCtx) ID {
	if len(e.InterpParts) == 0 {
		return litNode(ctx, types.NewString(""), e.Span)
	}
	result := genExpr(e.InterpParts[0], ctx)
	for _, part := range e.InterpParts[1:] {
		next := genExpr(part, ctx)
		id := ctx.newID("mc")
		ctx.graph.Add(&Node{
			ID: id, Kind: KindModuleCall, Type: types.String,
			ModuleName: "$concat",
			ModuleArgs: map[string]ID{"a": result, "b": next},
			ArgOrder:   []string{"a", "b"},
		})
		result = id
	}
	return result
}
