package optimize

import (
	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/synthetic"
	"github.com/constellation-run/constellation/types"
)

// ConstantFold replaces pure inline transforms whose inputs are all
// Literal nodes with a single Literal node carrying the computed result
// (spec.md §4.3). It runs to a fixed point: folding one node can make its
// dependents foldable in turn (e.g. field(project(lit, [...]), "x")).
func ConstantFold(g *ir.Graph) *ir.Graph {
	out := cloneGraph(g)
	for {
		changed := false
		for _, id := range out.Order {
			n := out.Nodes[id]
			if n.Kind == ir.KindLiteral {
				continue
			}
			if lit, ok := fold(out, n); ok {
				lit.ID = id
				out.Nodes[id] = lit
				changed = true
			}
		}
		if !changed {
			return out
		}
	}
}

func cloneGraph(g *ir.Graph) *ir.Graph {
	out := ir.NewGraph()
	for _, id := range g.Order {
		out.Add(g.Nodes[id])
	}
	for name, id := range g.Outputs {
		out.Outputs[name] = id
	}
	return out
}

// fold attempts to evaluate a single node given the current (possibly
// already-folded) state of the graph. It returns ok=false whenever an
// input isn't (yet) a literal.
func fold(g *ir.Graph, n *ir.Node) (*ir.Node, bool) {
	lit := func(id ir.ID) (types.Value, bool) {
		dep, ok := g.Nodes[id]
		if !ok || dep.Kind != ir.KindLiteral {
			return types.Value{}, false
		}
		return dep.LiteralValue, true
	}
	literalNode := func(v types.Value) *ir.Node {
		return &ir.Node{Kind: ir.KindLiteral, Type: v.Type(), LiteralValue: v}
	}

	switch n.Kind {
	case ir.KindMergeTransform:
		a, ok1 := lit(n.MergeA)
		b, ok2 := lit(n.MergeB)
		if !ok1 || !ok2 {
			return nil, false
		}
		v, err := synthetic.Merge(string(n.ID), a, b)
		if err != nil {
			return nil, false
		}
		return literalNode(v), true

	case ir.KindProjectTransform:
		src, ok := lit(n.ProjectSrc)
		if !ok {
			return nil, false
		}
		return literalNode(synthetic.Project(src, n.ProjectFields)), true

	case ir.KindFieldAccess:
		src, ok := lit(n.FieldSrc)
		if !ok {
			return nil, false
		}
		v, err := synthetic.Field(src, n.FieldName)
		if err != nil {
			return nil, false
		}
		return literalNode(v), true

	case ir.KindConditional:
		test, ok1 := lit(n.CondTest)
		then, ok2 := lit(n.CondThen)
		els, ok3 := lit(n.CondElse)
		if !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		b, ok := test.AsBool()
		if !ok {
			return nil, false
		}
		return literalNode(synthetic.Cond(b, then, els)), true

	case ir.KindGuard:
		src, ok1 := lit(n.GuardSrc)
		cond, ok2 := lit(n.GuardCond)
		if !ok1 || !ok2 {
			return nil, false
		}
		b, ok := cond.AsBool()
		if !ok {
			return nil, false
		}
		return literalNode(synthetic.Guard(src, b)), true

	case ir.KindCoalesce:
		a, ok1 := lit(n.CoalesceA)
		b, ok2 := lit(n.CoalesceB)
		if !ok1 || !ok2 {
			return nil, false
		}
		return literalNode(synthetic.Coalesce(a, b)), true

	case ir.KindAnd, ir.KindOr:
		a, ok1 := lit(n.BoolA)
		b, ok2 := lit(n.BoolB)
		if !ok1 || !ok2 {
			return nil, false
		}
		ab, ok1 := a.AsBool()
		bb, ok2 := b.AsBool()
		if !ok1 || !ok2 {
			return nil, false
		}
		if n.Kind == ir.KindAnd {
			return literalNode(types.NewBool(synthetic.And(ab, bb))), true
		}
		return literalNode(types.NewBool(synthetic.Or(ab, bb))), true

	case ir.KindNot:
		x, ok := lit(n.BoolX)
		if !ok {
			return nil, false
		}
		xb, ok := x.AsBool()
		if !ok {
			return nil, false
		}
		return literalNode(types.NewBool(synthetic.Not(xb))), true

	default:
		// ModuleCall, HigherOrder, Match and Input are never folded: module
		// calls may be impure, and higher-order/match bodies run their own
		// sub-graphs rather than a single pure expression.
		return nil, false
	}
}
