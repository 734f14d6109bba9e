// Package ir implements Constellation's intermediate representation: an
// untyped-by-position node graph produced from a typed AST by Generate,
// consumed by the optimizer and the DAG compiler.
package ir

import (
	"github.com/constellation-run/constellation/optionspec"
	"github.com/constellation-run/constellation/types"
)

// ID is a stable per-node identifier, deterministic per source (spec.md
// §3: "identified by a stable identifier (deterministic per source)").
type ID string

// NodeKind tags an IR node variant.
type NodeKind int

const (
	KindInput NodeKind = iota
	KindLiteral
	KindModuleCall
	KindMergeTransform
	KindProjectTransform
	KindFieldAccess
	KindConditional
	KindGuard
	KindCoalesce
	KindAnd
	KindOr
	KindNot
	KindHigherOrder
	KindMatch
)

// Node is one IR node. Exactly the fields relevant to Kind are populated;
// every Graph method that walks the variants must stay exhaustive over
// this list - missing one here is the kind of latent bug spec.md calls
// out for free-variable analysis.
type Node struct {
	ID   ID
	Kind NodeKind
	Type *types.Type

	// KindInput
	InputName    string
	InputDefault *ID // a KindLiteral node id, or empty

	// KindLiteral
	LiteralValue types.Value

	// KindModuleCall
	ModuleName string
	ModuleArgs map[string]ID // name -> input node id, declared order tracked separately
	ArgOrder   []string
	Options    optionspec.Options

	// KindMergeTransform
	MergeA, MergeB ID

	// KindProjectTransform
	ProjectSrc    ID
	ProjectFields []string

	// KindFieldAccess
	FieldSrc  ID
	FieldName string

	// KindConditional
	CondTest, CondThen, CondElse ID

	// KindGuard
	GuardSrc, GuardCond ID

	// KindCoalesce
	CoalesceA, CoalesceB ID

	// KindAnd / KindOr
	BoolA, BoolB ID
	// KindNot
	BoolX ID

	// KindHigherOrder
	HOOp            string // "filter" | "map" | "all" | "any"
	HOListSrc       ID
	HOLambda        *Lambda
	HOCapturedInputs map[string]ID // outer-name -> outer IR id, wired as extra in-edges

	// KindMatch
	MatchScrutinee ID
	MatchArms      []MatchArm
}

// Lambda is a self-contained inner IR sub-graph: every captured value is a
// regular Input node inside BodyNodes (spec.md §3).
type Lambda struct {
	Params           []string
	BodyNodes        *Graph
	OutputID         ID
	CapturedBindings map[string]ID // outer-name -> inner Input node id
}

// MatchArm is one arm of a compiled match node.
type MatchArm struct {
	Wildcard bool
	Tag      string
	BindID   ID // Input node id bound to the variant payload inside Body
	Body     ID
}

// Graph is an IR program: every node reachable from its declared inputs,
// plus the declared outputs.
type Graph struct {
	Nodes   map[ID]*Node
	Order   []ID // insertion order, used for deterministic iteration
	Outputs map[string]ID
}

// NewGraph creates an empty IR graph.
func NewGraph() *Graph {
	return &Graph{Nodes: make(map[ID]*Node), Outputs: make(map[string]ID)}
}

// Add inserts a node, recording insertion order.
func (g *Graph) Add(n *Node) {
	g.Nodes[n.ID] = n
	g.Order = append(g.Order, n.ID)
}
