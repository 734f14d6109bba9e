package ir

import (
	"testing"

	"github.com/constellation-run/constellation/ast"
	"github.com/constellation-run/constellation/types"
)

func varRef(name string) *ast.Expr { return &ast.Expr{Kind: ast.ExprVarRef, VarName: name} }

func lit(v any) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, LiteralRaw: v}
}

func TestGenerate_InputAndOutput(t *testing.T) {
	p := &ast.Program{
		Inputs:  []ast.InputDecl{{Name: "x", ResolvedType: types.Int}},
		Outputs: []ast.OutputDecl{{Name: "y", Expr: *varRef("x")}},
	}
	g, errs := Generate(p)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	outID, ok := g.Outputs["y"]
	if !ok {
		t.Fatal("expected output y to be recorded")
	}
	n := g.Nodes[outID]
	if n.Kind != KindInput || n.InputName != "x" {
		t.Errorf("expected output y to resolve to input x, got %+v", n)
	}
}

func TestGenerate_UndefinedVariable_ReportsError(t *testing.T) {
	p := &ast.Program{
		Outputs: []ast.OutputDecl{{Name: "y", Expr: *varRef("missing")}},
	}
	_, errs := Generate(p)
	if errs == nil || errs.Len() != 1 {
		t.Fatalf("expected exactly 1 error for an undefined variable, got %v", errs)
	}
}

func TestGenerate_Literal_DecodesEachKind(t *testing.T) {
	p := &ast.Program{
		Outputs: []ast.OutputDecl{
			{Name: "s", Expr: *lit("hi")},
			{Name: "i", Expr: *lit(int64(5))},
			{Name: "f", Expr: *lit(1.5)},
			{Name: "b", Expr: *lit(true)},
		},
	}
	g, errs := Generate(p)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	s := g.Nodes[g.Outputs["s"]].LiteralValue
	if str, ok := s.AsString(); !ok || str != "hi" {
		t.Errorf("expected string literal 'hi', got %v", s)
	}
	i := g.Nodes[g.Outputs["i"]].LiteralValue
	if n, ok := i.AsInt(); !ok || n != 5 {
		t.Errorf("expected int literal 5, got %v", i)
	}
}

func TestGenerate_FieldAccess(t *testing.T) {
	p := &ast.Program{
		Inputs: []ast.InputDecl{{Name: "r", ResolvedType: types.Int}},
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{Kind: ast.ExprFieldAccess, FieldSrc: varRef("r"), FieldName: "a"},
		}},
	}
	g, errs := Generate(p)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	n := g.Nodes[g.Outputs["y"]]
	if n.Kind != KindFieldAccess || n.FieldName != "a" {
		t.Errorf("expected a field-access node for field a, got %+v", n)
	}
}

func TestGenerate_Projection_SortsFields(t *testing.T) {
	p := &ast.Program{
		Inputs: []ast.InputDecl{{Name: "r", ResolvedType: types.Int}},
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{Kind: ast.ExprProjection, ProjectSrc: varRef("r"), ProjectFields: []string{"z", "a"}},
		}},
	}
	g, _ := Generate(p)
	n := g.Nodes[g.Outputs["y"]]
	if len(n.ProjectFields) != 2 || n.ProjectFields[0] != "a" || n.ProjectFields[1] != "z" {
		t.Errorf("expected projected fields to be sorted, got %v", n.ProjectFields)
	}
}

func TestGenerate_BranchWhen_DesugarsToRightNestedConditional(t *testing.T) {
	p := &ast.Program{
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{
				Kind: ast.ExprBranchWhen,
				BranchArms: []ast.BranchArm{
					{Cond: lit(true), Value: lit(int64(1))},
					{Cond: lit(false), Value: lit(int64(2))},
				},
				BranchElse: lit(int64(0)),
			},
		}},
	}
	g, errs := Generate(p)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	outer := g.Nodes[g.Outputs["y"]]
	if outer.Kind != KindConditional {
		t.Fatalf("expected outermost branch arm to desugar to a conditional, got %v", outer.Kind)
	}
	inner := g.Nodes[outer.CondElse]
	if inner.Kind != KindConditional {
		t.Fatalf("expected the else-branch to hold the next nested conditional, got %v", inner.Kind)
	}
	final := g.Nodes[inner.CondElse]
	if final.Kind != KindLiteral {
		t.Errorf("expected the innermost else to be the branch's final else literal, got %v", final.Kind)
	}
}

func TestGenerate_ModuleCall_CarriesArgsAndOrder(t *testing.T) {
	p := &ast.Program{
		Inputs: []ast.InputDecl{{Name: "x", ResolvedType: types.Int}},
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{
				Kind: ast.ExprModuleCall, ModuleName: "addOne",
				ModuleArgs: map[string]*ast.Expr{"n": varRef("x")}, ModuleArgOrder: []string{"n"},
			},
		}},
	}
	g, errs := Generate(p)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	n := g.Nodes[g.Outputs["y"]]
	if n.Kind != KindModuleCall || n.ModuleName != "addOne" {
		t.Fatalf("expected a module-call node for addOne, got %+v", n)
	}
	if len(n.ArgOrder) != 1 || n.ArgOrder[0] != "n" {
		t.Errorf("expected arg order [n], got %v", n.ArgOrder)
	}
}

func TestGenerate_Match_BindsArmsAndWildcard(t *testing.T) {
	p := &ast.Program{
		Inputs: []ast.InputDecl{{Name: "r", ResolvedType: types.Int}},
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{
				Kind:           ast.ExprMatch,
				MatchScrutinee: varRef("r"),
				MatchArms: []ast.MatchArm{
					{Tag: "Ok", Bind: "v", Body: varRef("v")},
					{Wildcard: true, Body: lit(int64(0))},
				},
			},
		}},
	}
	g, errs := Generate(p)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	n := g.Nodes[g.Outputs["y"]]
	if n.Kind != KindMatch || len(n.MatchArms) != 2 {
		t.Fatalf("expected a match node with 2 arms, got %+v", n)
	}
	if n.MatchArms[0].BindID == "" {
		t.Error("expected the Ok arm to carry a bind node id")
	}
	if !n.MatchArms[1].Wildcard {
		t.Error("expected the second arm to be the wildcard")
	}
}

func TestGenerate_HigherOrder_CapturesFreeVariables(t *testing.T) {
	p := &ast.Program{
		Inputs: []ast.InputDecl{
			{Name: "xs", ResolvedType: types.List(types.Int)},
			{Name: "threshold", ResolvedType: types.Int},
		},
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{
				Kind:   ast.ExprHigherOrder,
				HOOp:   "filter",
				HOList: varRef("xs"),
				HOFn: &ast.Expr{
					Kind:         ast.ExprLambda,
					LambdaParams: []ast.LambdaParam{{Name: "n"}},
					LambdaBody: &ast.Expr{
						Kind: ast.ExprBinary, BinOp: "and",
						BinLeft: varRef("n"), BinRight: varRef("threshold"),
					},
				},
			},
		}},
	}
	g, errs := Generate(p)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	n := g.Nodes[g.Outputs["y"]]
	if n.Kind != KindHigherOrder || n.HOOp != "filter" {
		t.Fatalf("expected a higher-order filter node, got %+v", n)
	}
	if _, captured := n.HOCapturedInputs["threshold"]; !captured {
		t.Error("expected threshold to be captured from the enclosing scope")
	}
	if _, shadowed := n.HOCapturedInputs["n"]; shadowed {
		t.Error("expected the lambda parameter n to not be treated as a capture")
	}
	if n.HOLambda.BodyNodes.Nodes[n.HOLambda.OutputID] == nil {
		t.Error("expected the lambda's body graph to contain its output node")
	}
}

func TestGenerate_Binary_AndOr_LowerToBoolNodes(t *testing.T) {
	p := &ast.Program{
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{Kind: ast.ExprBinary, BinOp: "and", BinLeft: lit(true), BinRight: lit(false)},
		}},
	}
	g, _ := Generate(p)
	n := g.Nodes[g.Outputs["y"]]
	if n.Kind != KindAnd {
		t.Errorf("expected 'and' binary op to lower to KindAnd, got %v", n.Kind)
	}
}

func TestGenerate_Binary_ArithmeticLowersToModuleCall(t *testing.T) {
	p := &ast.Program{
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{Kind: ast.ExprBinary, BinOp: "lt", BinLeft: lit(int64(1)), BinRight: lit(int64(2))},
		}},
	}
	g, _ := Generate(p)
	n := g.Nodes[g.Outputs["y"]]
	if n.Kind != KindModuleCall || n.ModuleName != "$lt" {
		t.Errorf("expected comparison op to lower to a $lt module call, got %+v", n)
	}
}

func TestGenerate_Unary_LowersToNot(t *testing.T) {
	p := &ast.Program{
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{Kind: ast.ExprUnary, UnOp: "not", UnExpr: lit(true)},
		}},
	}
	g, _ := Generate(p)
	n := g.Nodes[g.Outputs["y"]]
	if n.Kind != KindNot {
		t.Errorf("expected unary 'not' to lower to KindNot, got %v", n.Kind)
	}
}

func TestGenerate_Interpolation_ChainsConcat(t *testing.T) {
	p := &ast.Program{
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{Kind: ast.ExprInterpolation, InterpParts: []*ast.Expr{lit("a"), lit("b"), lit("c")}},
		}},
	}
	g, errs := Generate(p)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	n := g.Nodes[g.Outputs["y"]]
	if n.Kind != KindModuleCall || n.ModuleName != "$concat" {
		t.Fatalf("expected interpolation to chain $concat calls, got %+v", n)
	}
}

func TestGenerate_Interpolation_Empty(t *testing.T) {
	p := &ast.Program{
		Outputs: []ast.OutputDecl{{
			Name: "y",
			Expr: ast.Expr{Kind: ast.ExprInterpolation},
		}},
	}
	g, errs := Generate(p)
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	n := g.Nodes[g.Outputs["y"]]
	if n.Kind != KindLiteral {
		t.Errorf("expected empty interpolation to fold to an empty string literal, got %v", n.Kind)
	}
}
