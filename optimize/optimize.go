// Package optimize implements the two optional IR passes from spec.md
// §4.3: dead-code elimination from reachable outputs, and constant folding
// of pure inline transforms whose inputs are all literals.
package optimize

import "github.com/constellation-run/constellation/ir"

// DeadCodeElimination marks every node reachable from the graph's declared
// outputs and returns a new graph containing only those nodes. With no
// declared outputs, the graph is returned unchanged - there is no
// reachability baseline to prune against.
func DeadCodeElimination(g *ir.Graph) *ir.Graph {
	if len(g.Outputs) == 0 {
		return g
	}

	reachable := make(map[ir.ID]bool)
	var mark func(id ir.ID)
	mark = func(id ir.ID) {
		if id == "" || reachable[id] {
			return
		}
		n, ok := g.Nodes[id]
		if !ok {
			return
		}
		reachable[id] = true
		for _, dep := range dependencies(n) {
			mark(dep)
		}
	}
	for _, id := range g.Outputs {
		mark(id)
	}

	out := ir.NewGraph()
	for _, id := range g.Order {
		if reachable[id] {
			out.Add(g.Nodes[id])
		}
	}
	for name, id := range g.Outputs {
		out.Outputs[name] = id
	}
	return out
}

// dependencies lists every node id an IR node reads from, exhaustive over
// every variant for the same reason free-variable analysis must be: a
// missed dependency here would let DCE prune a node that's actually live.
func dependencies(n *ir.Node) []ir.ID {
	switch n.Kind {
	case ir.KindInput:
		if n.InputDefault != nil {
			return []ir.ID{*n.InputDefault}
		}
		return nil
	case ir.KindLiteral:
		return nil
	case ir.KindModuleCall:
		deps := make([]ir.ID, 0, len(n.ModuleArgs))
		for _, id := range n.ModuleArgs {
			deps = append(deps, id)
		}
		return deps
	case ir.KindMergeTransform:
		return []ir.ID{n.MergeA, n.MergeB}
	case ir.KindProjectTransform:
		return []ir.ID{n.ProjectSrc}
	case ir.KindFieldAccess:
		return []ir.ID{n.FieldSrc}
	case ir.KindConditional:
		return []ir.ID{n.CondTest, n.CondThen, n.CondElse}
	case ir.KindGuard:
		return []ir.ID{n.GuardSrc, n.GuardCond}
	case ir.KindCoalesce:
		return []ir.ID{n.CoalesceA, n.CoalesceB}
	case ir.KindAnd, ir.KindOr:
		return []ir.ID{n.BoolA, n.BoolB}
	case ir.KindNot:
		return []ir.ID{n.BoolX}
	case ir.KindHigherOrder:
		deps := []ir.ID{n.HOListSrc}
		for _, id := range n.HOCapturedInputs {
			deps = append(deps, id)
		}
		return deps
	case ir.KindMatch:
		deps := []ir.ID{n.MatchScrutinee}
		for _, arm := range n.MatchArms {
			deps = append(deps, arm.Body)
		}
		return deps
	default:
		return nil
	}
}
