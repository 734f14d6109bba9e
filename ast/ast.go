// Package ast declares the shape of untyped expressions and declarations
// the external parser must deliver (spec.md §6 "AST contract"). Nothing in
// this package parses source text; it is the input boundary the checker
// consumes.
package ast

import "github.com/constellation-run/constellation/types"

// Span locates a node in source text for error reporting.
type Span struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Program is a complete source unit: declared inputs, named intermediate
// bindings, and declared outputs.
type Program struct {
	Inputs  []InputDecl
	Lets    []LetDecl
	Outputs []OutputDecl
	Span    Span
}

// InputDecl declares a named, typed input with an optional default literal.
type InputDecl struct {
	Name    string
	Type    TypeExpr
	Default *Expr // nil if no default
	Span    Span

	// ResolvedType is set by the checker when it resolves Type.
	ResolvedType *types.Type
}

// LetDecl names an intermediate value.
type LetDecl struct {
	Name string
	Expr Expr
	Span Span
}

// OutputDecl declares a named output bound to an expression.
type OutputDecl struct {
	Name string
	Expr Expr
	Span Span
}

// TypeExpr is the untyped surface syntax for a type annotation; the
// checker resolves it into a types.Type.
type TypeExpr struct {
	Name     string     // "String","Int","Float","Bool","List","Map","Optional", or a record/union literal marker
	Elem     *TypeExpr  // List<Elem>
	Key      *TypeExpr  // Map<Key,Val>
	Val      *TypeExpr  // Map<Key,Val>
	Inner    *TypeExpr  // Optional<Inner>
	Fields   []FieldTy  // Product literal
	Variants []FieldTy  // Union literal
	Span     Span
}

// FieldTy is one named field in a record/union type literal.
type FieldTy struct {
	Name string
	Type TypeExpr
}

// Expr is the AST expression sum from spec.md §3. Exactly one of the
// pointer-typed fields below is non-nil for a given node; ExprKind
// disambiguates without a type switch at every call site.
type ExprKind int

const (
	ExprVarRef ExprKind = iota
	ExprLiteral
	ExprFieldAccess
	ExprProjection
	ExprMerge
	ExprBranchWhen
	ExprGuard
	ExprCoalesce
	ExprConditional
	ExprModuleCall
	ExprLambda
	ExprHigherOrder
	ExprMatch
	ExprBinary
	ExprUnary
	ExprInterpolation
)

// Expr is a node in the untyped surface AST. The checker annotates each
// node's ResolvedType in place, turning a Program into the "typed AST"
// the IR generator consumes - a separate parallel tree isn't needed
// because every expression variant already carries exactly the slots a
// resolved type needs to hang off of.
type Expr struct {
	Kind ExprKind
	Span Span

	// ResolvedType is set by the checker; nil before type-checking.
	ResolvedType *types.Type

	// ExprVarRef
	VarName string

	// ExprLiteral
	LiteralType TypeExpr
	LiteralRaw  any // string/int64/float64/bool as decoded by the parser

	// ExprFieldAccess
	FieldSrc  *Expr
	FieldName string

	// ExprProjection
	ProjectSrc    *Expr
	ProjectFields []string

	// ExprMerge
	MergeLeft, MergeRight *Expr

	// ExprBranchWhen: right-nested list of {cond,value} plus a mandatory else.
	BranchArms []BranchArm
	BranchElse *Expr

	// ExprGuard: `x when c`
	GuardSrc, GuardCond *Expr

	// ExprCoalesce
	CoalesceLeft, CoalesceRight *Expr

	// ExprConditional
	CondTest, CondThen, CondElse *Expr

	// ExprModuleCall
	ModuleName string
	ModuleArgs map[string]*Expr
	ModuleArgOrder []string
	Options    map[string]*Expr

	// ExprLambda
	LambdaParams []LambdaParam
	LambdaBody   *Expr

	// ExprHigherOrder
	HOOp   string // "filter" | "map" | "all" | "any"
	HOList *Expr
	HOFn   *Expr // must be ExprLambda

	// ExprMatch
	MatchScrutinee *Expr
	MatchArms      []MatchArm

	// ExprBinary
	BinOp          string
	BinLeft, BinRight *Expr

	// ExprUnary
	UnOp   string
	UnExpr *Expr

	// ExprInterpolation
	InterpParts []*Expr
}

// BranchArm is one `cond -> value` clause of a branch-when expression.
type BranchArm struct {
	Cond  *Expr
	Value *Expr
}

// LambdaParam is one typed lambda parameter.
type LambdaParam struct {
	Name string
	Type TypeExpr // may be absent (zero value); inferred from list element type
}

// MatchArm is one `pattern -> body` clause. A Wildcard arm matches any
// scrutinee and makes the match exhaustive regardless of variant coverage.
type MatchArm struct {
	Wildcard bool
	Tag      string // union tag matched, ignored when Wildcard
	Bind     string // name bound to the variant payload inside Body
	Body     *Expr
}
