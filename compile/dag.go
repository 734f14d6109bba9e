// Package compile turns an optimized IR graph into an executable DAG:
// every IR node becomes a data node, and every "active" node (a module
// call or an inline transform) additionally becomes a module node wired
// to its inputs and its own output (spec.md §4.4).
package compile

import (
	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/optionspec"
	"github.com/constellation-run/constellation/types"
)

// Well-known synthetic module names. Their evaluators are fixed by the
// runtime (package synthetic), never by host registration.
const (
	SynMerge    = "$merge"
	SynProject  = "$project"
	SynField    = "$field"
	SynCond     = "$cond"
	SynGuard    = "$guard"
	SynCoalesce = "$coalesce"
	SynAnd      = "$and"
	SynOr       = "$or"
	SynNot      = "$not"
	SynMatch    = "$match"
)

// DataNode holds exactly one value at runtime, produced by at most one
// module node. Input and Literal nodes carry no module node (spec.md
// §4.4: "each IR node becomes a data node ... plus, if the node is
// active, a module node"), so their run-contract name/default or literal
// payload travels on the data node itself.
type DataNode struct {
	ID   ir.ID
	Type *types.Type

	IsInput      bool
	InputName    string
	InputDefault ir.ID // a Literal data node id, or empty

	IsLiteral    bool
	LiteralValue types.Value

	// IsMatchBind marks a node as a match arm's bound-payload input
	// (ir.MatchArm.BindID): it is never satisfied from the run
	// contract's external inputs - the runtime settles it with the
	// matched union's payload when MatchBindOf's arm is selected.
	IsMatchBind bool
	MatchBindOf ir.ID // the Match data node id that owns this binding
}

// ModuleNode invokes either a host-registered module (Synthetic == false)
// or a fixed synthetic transform (Synthetic == true).
type ModuleNode struct {
	ID        ir.ID // same id as the data node it produces
	Module    string
	Synthetic bool
	Options   optionspec.Options

	// Populated only for the "$filter"/"$map"/"$all"/"$any" synthetic
	// modules: the mini-interpreter evaluates Lambda.BodyNodes once per
	// list element, binding Lambda.Params[0] and every captured input.
	Op     string
	Lambda *ir.Lambda

	// Populated only for "$match": the runtime picks exactly one arm by
	// tag (or the wildcard) and evaluates that arm's already-compiled
	// data node; the rest are in-edges only for dependency bookkeeping.
	MatchArms []ir.MatchArm

	// Populated only for "$project": the static field list, which is
	// part of the transform's identity rather than a wired input.
	ProjectFields []string

	// Populated only for "$field": the static field name.
	FieldName string
}

// InEdge records that Data feeds Module's Param input.
type InEdge struct {
	Data   ir.ID
	Module ir.ID
	Param  string
}

// OutEdge records that Module produces Data.
type OutEdge struct {
	Module ir.ID
	Data   ir.ID
}

// DAG is the compiled, executable form of a pipeline (spec.md §3).
type DAG struct {
	Data    map[ir.ID]*DataNode
	Modules map[ir.ID]*ModuleNode
	InEdges []InEdge
	OutEdges []OutEdge
	Outputs  map[string]ir.ID
	// Order preserves the IR's deterministic node order, used for
	// deterministic iteration (e.g. structural hashing downstream).
	Order []ir.ID
}

func newDAG() *DAG {
	return &DAG{
		Data:    make(map[ir.ID]*DataNode),
		Modules: make(map[ir.ID]*ModuleNode),
		Outputs: make(map[string]ir.ID),
	}
}

// Producer returns the module node (if any) that produces data id.
func (d *DAG) Producer(id ir.ID) (*ModuleNode, bool) {
	m, ok := d.Modules[id]
	return m, ok
}

// InEdgesFor returns every in-edge feeding module id, in the order they
// were wired.
func (d *DAG) InEdgesFor(id ir.ID) []InEdge {
	var out []InEdge
	for _, e := range d.InEdges {
		if e.Module == id {
			out = append(out, e)
		}
	}
	return out
}
