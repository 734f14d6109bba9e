package compile

import (
	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/module"
)

// Compile converts g into an executable DAG against the given module
// registry. It accumulates every CompilationError it finds (unknown
// module, arity mismatch, cycle) rather than stopping at the first, in
// the same monadic-validation style as the type checker.
func Compile(g *ir.Graph, modules *module.Registry) (*DAG, *cerrors.Errors) {
	d := newDAG()
	errs := &cerrors.Errors{}

	// Two passes: every id gets its DataNode first, so wireNode can
	// freely annotate a node reached out of Order (e.g. a match arm's
	// bind id, annotated when the Match node itself is wired).
	for _, id := range g.Order {
		d.Data[id] = &DataNode{ID: id}
		d.Order = append(d.Order, id)
	}
	for _, id := range g.Order {
		wireNode(d, g.Nodes[id], modules, errs)
	}
	for name, id := range g.Outputs {
		d.Outputs[name] = id
	}

	if err := checkAcyclic(d); err != nil {
		errs.Add(err)
	}

	if errs.Len() == 0 {
		return d, nil
	}
	return d, errs
}

func wireNode(d *DAG, n *ir.Node, modules *module.Registry, errs *cerrors.Errors) {
	addEdge := func(moduleID ir.ID, param string, dataID ir.ID) {
		if dataID == "" {
			return
		}
		d.InEdges = append(d.InEdges, InEdge{Data: dataID, Module: moduleID, Param: param})
	}
	newModule := func(name string, synthetic bool) *ModuleNode {
		mn := &ModuleNode{ID: n.ID, Module: name, Synthetic: synthetic, Options: n.Options}
		d.Modules[n.ID] = mn
		d.OutEdges = append(d.OutEdges, OutEdge{Module: n.ID, Data: n.ID})
		return mn
	}

	switch n.Kind {
	case ir.KindInput:
		dn := d.Data[n.ID]
		dn.IsInput = true
		dn.InputName = n.InputName
		if n.InputDefault != nil {
			dn.InputDefault = *n.InputDefault
		}

	case ir.KindLiteral:
		dn := d.Data[n.ID]
		dn.IsLiteral = true
		dn.LiteralValue = n.LiteralValue

	case ir.KindModuleCall:
		sig, ok := modules.Lookup(n.ModuleName)
		if !ok {
			errs.Add(cerrors.UndefinedModule(cerrors.Span{}, n.ModuleName))
			return
		}
		if len(n.ModuleArgs) != len(sig.Signature.Inputs) {
			errs.Add(cerrors.ArityMismatch(cerrors.Span{}, n.ModuleName, len(sig.Signature.Inputs), len(n.ModuleArgs)))
		}
		newModule(n.ModuleName, false)
		for _, param := range n.ArgOrder {
			addEdge(n.ID, param, n.ModuleArgs[param])
		}

	case ir.KindMergeTransform:
		newModule(SynMerge, true)
		addEdge(n.ID, "a", n.MergeA)
		addEdge(n.ID, "b", n.MergeB)

	case ir.KindProjectTransform:
		mn := newModule(SynProject, true)
		mn.ProjectFields = n.ProjectFields
		addEdge(n.ID, "src", n.ProjectSrc)

	case ir.KindFieldAccess:
		mn := newModule(SynField, true)
		mn.FieldName = n.FieldName
		addEdge(n.ID, "src", n.FieldSrc)

	case ir.KindConditional:
		newModule(SynCond, true)
		addEdge(n.ID, "test", n.CondTest)
		addEdge(n.ID, "then", n.CondThen)
		addEdge(n.ID, "else", n.CondElse)

	case ir.KindGuard:
		newModule(SynGuard, true)
		addEdge(n.ID, "src", n.GuardSrc)
		addEdge(n.ID, "cond", n.GuardCond)

	case ir.KindCoalesce:
		newModule(SynCoalesce, true)
		addEdge(n.ID, "a", n.CoalesceA)
		addEdge(n.ID, "b", n.CoalesceB)

	case ir.KindAnd:
		newModule(SynAnd, true)
		addEdge(n.ID, "a", n.BoolA)
		addEdge(n.ID, "b", n.BoolB)

	case ir.KindOr:
		newModule(SynOr, true)
		addEdge(n.ID, "a", n.BoolA)
		addEdge(n.ID, "b", n.BoolB)

	case ir.KindNot:
		newModule(SynNot, true)
		addEdge(n.ID, "x", n.BoolX)

	case ir.KindHigherOrder:
		mn := newModule("$"+n.HOOp, true)
		mn.Op = n.HOOp
		mn.Lambda = n.HOLambda
		addEdge(n.ID, "list", n.HOListSrc)
		for name, id := range n.HOCapturedInputs {
			addEdge(n.ID, "cap:"+name, id)
		}

	case ir.KindMatch:
		mn := newModule(SynMatch, true)
		mn.MatchArms = n.MatchArms
		addEdge(n.ID, "scrutinee", n.MatchScrutinee)
		for _, arm := range n.MatchArms {
			addEdge(n.ID, "arm:"+arm.Tag, arm.Body)
			if arm.BindID != "" {
				if bind, ok := d.Data[arm.BindID]; ok {
					bind.IsMatchBind = true
					bind.MatchBindOf = n.ID
				}
			}
		}
	}
}
