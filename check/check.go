// Package check implements Constellation's bidirectional type checker
// (spec.md §4.1): check(e,T,env) and synth(e,env) over the AST, producing
// a typed AST (types resolved in place on ast.Expr) and accumulating every
// compile error across the program rather than stopping at the first.
package check

import (
	"github.com/constellation-run/constellation/ast"
	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/module"
	"github.com/constellation-run/constellation/types"
)

// Checker type-checks a Program against a module registry.
type Checker struct {
	modules *module.Registry
	errs    cerrors.Errors
}

// New creates a Checker bound to a module registry.
func New(modules *module.Registry) *Checker {
	return &Checker{modules: modules}
}

// Check type-checks an entire program. It always returns (possibly
// partially-annotated) and a non-nil *cerrors.Errors when any diagnostic
// was raised.
func (c *Checker) Check(p *ast.Program) *cerrors.Errors {
	env := NewEnv()

	for i := range p.Inputs {
		decl := &p.Inputs[i]
		t := c.resolveTypeExpr(&decl.Type)
		decl.ResolvedType = t
		if decl.Default != nil {
			c.check(decl.Default, t, env)
		}
		env.Bind(decl.Name, t)
	}

	for i := range p.Lets {
		decl := &p.Lets[i]
		t := c.synth(decl.Expr, env)
		env.Bind(decl.Name, t)
	}

	for i := range p.Outputs {
		decl := &p.Outputs[i]
		c.synth(decl.Expr, env)
	}

	if c.errs.Len() == 0 {
		return nil
	}
	return &c.errs
}

// resolveTypeExpr turns surface type syntax into a types.Type.
func (c *Checker) resolveTypeExpr(t *ast.TypeExpr) *types.Type {
	switch t.Name {
	case "String":
		return types.String
	case "Int":
		return types.Int
	case "Float":
		return types.Float
	case "Bool":
		return types.Bool
	case "List":
		return types.List(c.resolveTypeExpr(t.Elem))
	case "Map":
		key := c.resolveTypeExpr(t.Key)
		if !key.IsPrimitive() {
			c.errs.Add(cerrors.InvalidOptionValue(toSpan(t.Span), "map-key", "map keys must be primitive"))
		}
		return types.Map(key, c.resolveTypeExpr(t.Val))
	case "Optional":
		return types.Optional(c.resolveTypeExpr(t.Inner))
	case "Product":
		fields := make(map[string]*types.Type, len(t.Fields))
		for _, f := range t.Fields {
			fields[f.Name] = c.resolveTypeExpr(&f.Type)
		}
		return types.Product(fields)
	case "Union":
		variants := make(map[string]*types.Type, len(t.Variants))
		for _, f := range t.Variants {
			variants[f.Name] = c.resolveTypeExpr(&f.Type)
		}
		return types.Union(variants)
	default:
		c.errs.Add(cerrors.TypeMismatch(toSpan(t.Span), "a known type", t.Name))
		return types.String
	}
}

func toSpan(s ast.Span) cerrors.Span {
	return cerrors.Span{File: s.File, StartLine: s.StartLine, StartCol: s.StartCol, EndLine: s.EndLine, EndCol: s.EndCol}
}

// check verifies e can be given a type that is a subtype of want.
func (c *Checker) check(e *ast.Expr, want *types.Type, env *Env) {
	got := c.synth(e, env)
	if got == nil || want == nil {
		return
	}
	if !types.IsSubtype(got, want) {
		c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), want.String(), got.String()))
	}
}

// synth infers e's type, annotating e.ResolvedType, and recurses into
// every AST expression variant (must stay exhaustive, mirroring the IR
// generator's free-variable-analysis exhaustiveness requirement).
func (c *Checker) synth(e *ast.Expr, env *Env) *types.Type {
	if e == nil {
		return nil
	}
	var t *types.Type
	switch e.Kind {
	case ast.ExprVarRef:
		if found, ok := env.Lookup(e.VarName); ok {
			t = found
		} else {
			c.errs.Add(cerrors.UndefinedVariable(toSpan(e.Span), e.VarName))
			t = types.String
		}

	case ast.ExprLiteral:
		t = c.resolveTypeExpr(&e.LiteralType)

	case ast.ExprFieldAccess:
		src := c.synth(e.FieldSrc, env)
		t = c.synthFieldAccess(e, src)

	case ast.ExprProjection:
		src := c.synth(e.ProjectSrc, env)
		t = c.synthProjection(e, src)

	case ast.ExprMerge:
		a := c.synth(e.MergeLeft, env)
		b := c.synth(e.MergeRight, env)
		t = c.synthMerge(e, a, b)

	case ast.ExprBranchWhen:
		t = c.synthBranch(e, env)

	case ast.ExprGuard:
		src := c.synth(e.GuardSrc, env)
		c.check(e.GuardCond, types.Bool, env)
		t = types.Optional(src)

	case ast.ExprCoalesce:
		left := c.synth(e.CoalesceLeft, env)
		right := c.synth(e.CoalesceRight, env)
		t = c.synthCoalesce(e, left, right)

	case ast.ExprConditional:
		c.check(e.CondTest, types.Bool, env)
		then := c.synth(e.CondThen, env)
		els := c.synth(e.CondElse, env)
		lub, ok := types.LUB(then, els)
		if !ok {
			c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), then.String(), els.String()))
			lub = then
		}
		t = lub

	case ast.ExprModuleCall:
		t = c.synthModuleCall(e, env)

	case ast.ExprLambda:
		// A bare lambda only type-checks inside a HigherOrder call, which
		// synthesizes it directly against the list element type; reaching
		// here means it was used standalone.
		t = types.String

	case ast.ExprHigherOrder:
		t = c.synthHigherOrder(e, env)

	case ast.ExprMatch:
		t = c.synthMatch(e, env)

	case ast.ExprBinary:
		t = c.synthBinary(e, env)

	case ast.ExprUnary:
		c.check(e.UnExpr, types.Bool, env)
		t = types.Bool

	case ast.ExprInterpolation:
		for _, part := range e.InterpParts {
			c.synth(part, env)
		}
		t = types.String

	default:
		t = types.String
	}
	e.ResolvedType = t
	return t
}

func (c *Checker) synthFieldAccess(e *ast.Expr, src *types.Type) *types.Type {
	if src == nil {
		return types.String
	}
	if src.Kind() == types.KindList && src.Elem() != nil && src.Elem().Kind() == types.KindProduct {
		field, ok := src.Elem().Field(e.FieldName)
		if !ok {
			c.errs.Add(cerrors.FieldNotFound(toSpan(e.Span), e.FieldName, src.Elem().SortedFieldNames()))
			return types.String
		}
		return types.List(field)
	}
	if src.Kind() != types.KindProduct {
		c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "Product", src.String()))
		return types.String
	}
	field, ok := src.Field(e.FieldName)
	if !ok {
		c.errs.Add(cerrors.FieldNotFound(toSpan(e.Span), e.FieldName, src.SortedFieldNames()))
		return types.String
	}
	return field
}

func (c *Checker) synthProjection(e *ast.Expr, src *types.Type) *types.Type {
	if src == nil {
		return types.String
	}
	isList := src.Kind() == types.KindList
	record := src
	if isList {
		record = src.Elem()
	}
	if record == nil || record.Kind() != types.KindProduct {
		c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "Product", src.String()))
		return types.String
	}
	fields := make(map[string]*types.Type, len(e.ProjectFields))
	for _, name := range e.ProjectFields {
		f, ok := record.Field(name)
		if !ok {
			c.errs.Add(cerrors.InvalidProjection(toSpan(e.Span), name))
			continue
		}
		fields[name] = f
	}
	result := types.Product(fields)
	if isList {
		return types.List(result)
	}
	return result
}

func (c *Checker) synthMerge(e *ast.Expr, a, b *types.Type) *types.Type {
	if a == nil || b == nil {
		return types.String
	}
	aList, bList := a.Kind() == types.KindList, b.Kind() == types.KindList
	switch {
	case !aList && !bList:
		if a.Kind() != types.KindProduct || b.Kind() != types.KindProduct {
			c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "Product", a.String()+" + "+b.String()))
			return types.String
		}
		return mergeRecords(a, b)
	case aList && !bList:
		if a.Elem().Kind() != types.KindProduct || b.Kind() != types.KindProduct {
			c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "Product", a.String()+" + "+b.String()))
			return types.String
		}
		return types.List(mergeRecords(a.Elem(), b))
	case aList && bList:
		if a.Elem().Kind() != types.KindProduct || b.Elem().Kind() != types.KindProduct {
			c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "Product", a.String()+" + "+b.String()))
			return types.String
		}
		// Element arity is only knowable at runtime; a mismatch there is
		// ListLengthMismatch, not a compile error (spec.md §9).
		return types.List(mergeRecords(a.Elem(), b.Elem()))
	default:
		c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), a.String(), b.String()))
		return types.String
	}
}

func mergeRecords(a, b *types.Type) *types.Type {
	fields := make(map[string]*types.Type)
	for name, t := range a.Fields() {
		fields[name] = t
	}
	for name, t := range b.Fields() {
		fields[name] = t // right wins on conflict
	}
	return types.Product(fields)
}

func (c *Checker) synthBranch(e *ast.Expr, env *Env) *types.Type {
	var result *types.Type
	for _, arm := range e.BranchArms {
		c.check(arm.Cond, types.Bool, env)
		v := c.synth(arm.Value, env)
		if result == nil {
			result = v
			continue
		}
		lub, ok := types.LUB(result, v)
		if !ok {
			c.errs.Add(cerrors.TypeMismatch(toSpan(arm.Value.Span), result.String(), v.String()))
			continue
		}
		result = lub
	}
	d := c.synth(e.BranchElse, env)
	if result == nil {
		return d
	}
	lub, ok := types.LUB(result, d)
	if !ok {
		c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), result.String(), d.String()))
		return result
	}
	return lub
}

func (c *Checker) synthCoalesce(e *ast.Expr, left, right *types.Type) *types.Type {
	if left == nil || left.Kind() != types.KindOptional {
		c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "Optional<U>", left.String()))
		return right
	}
	u := left.Inner()
	if right != nil && !types.IsSubtype(right, u) {
		c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), u.String(), right.String()))
	}
	return u
}

func (c *Checker) synthModuleCall(e *ast.Expr, env *Env) *types.Type {
	m, ok := c.modules.Lookup(e.ModuleName)
	if !ok {
		c.errs.Add(cerrors.UndefinedModule(toSpan(e.Span), e.ModuleName))
		return types.String
	}
	if len(e.ModuleArgs) != len(m.Signature.Inputs) {
		c.errs.Add(cerrors.ArityMismatch(toSpan(e.Span), e.ModuleName, len(m.Signature.Inputs), len(e.ModuleArgs)))
	}
	for _, p := range m.Signature.Inputs {
		arg, ok := e.ModuleArgs[p.Name]
		if !ok {
			c.errs.Add(cerrors.UndefinedVariable(toSpan(e.Span), p.Name))
			continue
		}
		c.check(arg, p.Type, env)
	}
	return m.Signature.Output
}

func (c *Checker) synthHigherOrder(e *ast.Expr, env *Env) *types.Type {
	listT := c.synth(e.HOList, env)
	if listT == nil || listT.Kind() != types.KindList {
		c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "List<T>", listT.String()))
		return types.Bool
	}
	if e.HOFn == nil || e.HOFn.Kind != ast.ExprLambda {
		c.errs.Add(cerrors.ArityMismatch(toSpan(e.Span), e.HOOp, 1, 0))
		return types.Bool
	}
	if len(e.HOFn.LambdaParams) != 1 {
		c.errs.Add(cerrors.ArityMismatch(toSpan(e.Span), e.HOOp, 1, len(e.HOFn.LambdaParams)))
	}
	inner := env.Child()
	paramName := "_"
	if len(e.HOFn.LambdaParams) > 0 {
		paramName = e.HOFn.LambdaParams[0].Name
	}
	inner.Bind(paramName, listT.Elem())
	bodyT := c.synth(e.HOFn.LambdaBody, inner)
	e.HOFn.ResolvedType = bodyT

	switch e.HOOp {
	case "filter":
		if bodyT != nil && bodyT.Kind() != types.KindBool {
			c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "Bool", bodyT.String()))
		}
		return listT
	case "map":
		return types.List(bodyT)
	case "all", "any":
		if bodyT != nil && bodyT.Kind() != types.KindBool {
			c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "Bool", bodyT.String()))
		}
		return types.Bool
	default:
		c.errs.Add(cerrors.UndefinedModule(toSpan(e.Span), e.HOOp))
		return types.Bool
	}
}

func (c *Checker) synthMatch(e *ast.Expr, env *Env) *types.Type {
	scrutinee := c.synth(e.MatchScrutinee, env)
	if scrutinee == nil || scrutinee.Kind() != types.KindUnion {
		c.errs.Add(cerrors.TypeMismatch(toSpan(e.Span), "Union", scrutinee.String()))
		return types.String
	}

	covered := make(map[string]bool)
	var result *types.Type
	hasWildcard := false
	for _, arm := range e.MatchArms {
		armEnv := env
		if arm.Wildcard {
			hasWildcard = true
		} else {
			covered[arm.Tag] = true
			variant, ok := scrutinee.Field(arm.Tag)
			if !ok {
				c.errs.Add(cerrors.FieldNotFound(toSpan(e.Span), arm.Tag, scrutinee.SortedFieldNames()))
				variant = types.String
			}
			if arm.Bind != "" {
				armEnv = env.Child()
				armEnv.Bind(arm.Bind, variant)
			}
		}
		bodyT := c.synth(arm.Body, armEnv)
		if result == nil {
			result = bodyT
			continue
		}
		lub, ok := types.LUB(result, bodyT)
		if !ok {
			c.errs.Add(cerrors.TypeMismatch(toSpan(arm.Body.Span), result.String(), bodyT.String()))
			continue
		}
		result = lub
	}

	if !hasWildcard {
		var missing []string
		for tag := range scrutinee.Fields() {
			if !covered[tag] {
				missing = append(missing, tag)
			}
		}
		if len(missing) > 0 {
			c.errs.Add(cerrors.NonExhaustiveMatch(toSpan(e.Span), missing))
		}
	}
	return result
}

func (c *Checker) synthBinary(e *ast.Expr, env *Env) *types.Type {
	switch e.BinOp {
	case "and", "or":
		c.check(e.BinLeft, types.Bool, env)
		c.check(e.BinRight, types.Bool, env)
		return types.Bool
	case "eq", "neq", "lt", "lte", "gt", "gte":
		c.synth(e.BinLeft, env)
		c.synth(e.BinRight, env)
		return types.Bool
	case "add", "sub", "mul", "div":
		left := c.synth(e.BinLeft, env)
		c.synth(e.BinRight, env)
		if left != nil {
			return left
		}
		return types.Int
	default:
		c.synth(e.BinLeft, env)
		c.synth(e.BinRight, env)
		return types.Bool
	}
}
