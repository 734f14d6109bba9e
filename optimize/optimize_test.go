package optimize

import (
	"testing"

	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/types"
)

func TestDeadCodeElimination_DropsUnreachableNodes(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "x", Kind: ir.KindInput, InputName: "x"})
	g.Add(&ir.Node{ID: "unused", Kind: ir.KindInput, InputName: "unused"})
	g.Add(&ir.Node{ID: "y", Kind: ir.KindFieldAccess, FieldSrc: "x", FieldName: "a"})
	g.Outputs["out"] = "y"

	out := DeadCodeElimination(g)
	if _, ok := out.Nodes["unused"]; ok {
		t.Error("expected unreachable node to be pruned")
	}
	if _, ok := out.Nodes["x"]; !ok {
		t.Error("expected reachable input to survive")
	}
	if _, ok := out.Nodes["y"]; !ok {
		t.Error("expected the output node to survive")
	}
}

func TestDeadCodeElimination_NoOutputsReturnsUnchanged(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "x", Kind: ir.KindInput, InputName: "x"})

	out := DeadCodeElimination(g)
	if out != g {
		t.Error("expected a graph with no declared outputs to be returned unchanged")
	}
}

func TestDeadCodeElimination_PreservesInputDefault(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "lit", Kind: ir.KindLiteral, LiteralValue: types.NewInt(0)})
	litID := ir.ID("lit")
	g.Add(&ir.Node{ID: "x", Kind: ir.KindInput, InputName: "x", InputDefault: &litID})
	g.Outputs["out"] = "x"

	out := DeadCodeElimination(g)
	if _, ok := out.Nodes["lit"]; !ok {
		t.Error("expected the input's default literal to be kept reachable")
	}
}

func TestConstantFold_MergeOfTwoRecordLiterals(t *testing.T) {
	aType := types.Product(map[string]*types.Type{"x": types.Int})
	bType := types.Product(map[string]*types.Type{"y": types.Int})
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "a", Kind: ir.KindLiteral, LiteralValue: types.NewProduct(aType, map[string]types.Value{"x": types.NewInt(1)})})
	g.Add(&ir.Node{ID: "b", Kind: ir.KindLiteral, LiteralValue: types.NewProduct(bType, map[string]types.Value{"y": types.NewInt(2)})})
	g.Add(&ir.Node{ID: "m", Kind: ir.KindMergeTransform, MergeA: "a", MergeB: "b"})
	g.Outputs["out"] = "m"

	out := ConstantFold(g)
	folded := out.Nodes["m"]
	if folded.Kind != ir.KindLiteral {
		t.Fatalf("expected merge of two literals to fold, got kind %v", folded.Kind)
	}
	y, ok := folded.LiteralValue.Field("y")
	if !ok {
		t.Fatal("expected folded record to contain field y")
	}
	n, _ := y.AsInt()
	if n != 2 {
		t.Errorf("expected y=2, got %d", n)
	}
}

func TestConstantFold_DoesNotFoldWhenInputIsNotLiteral(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "x", Kind: ir.KindInput, InputName: "x"})
	g.Add(&ir.Node{ID: "lit", Kind: ir.KindLiteral, LiteralValue: types.NewInt(1)})
	g.Add(&ir.Node{ID: "m", Kind: ir.KindMergeTransform, MergeA: "x", MergeB: "lit"})
	g.Outputs["out"] = "m"

	out := ConstantFold(g)
	if out.Nodes["m"].Kind != ir.KindMergeTransform {
		t.Error("expected merge with a non-literal input to remain unfolded")
	}
}

func TestConstantFold_RunsToFixedPoint_ChainedTransforms(t *testing.T) {
	recType := types.Product(map[string]*types.Type{"x": types.Int})
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "r", Kind: ir.KindLiteral, LiteralValue: types.NewProduct(recType, map[string]types.Value{"x": types.NewInt(5)})})
	g.Add(&ir.Node{ID: "p", Kind: ir.KindProjectTransform, ProjectSrc: "r", ProjectFields: []string{"x"}})
	g.Add(&ir.Node{ID: "f", Kind: ir.KindFieldAccess, FieldSrc: "p", FieldName: "x"})
	g.Outputs["out"] = "f"

	out := ConstantFold(g)
	folded := out.Nodes["f"]
	if folded.Kind != ir.KindLiteral {
		t.Fatalf("expected chained project+field access to fully fold, got kind %v", folded.Kind)
	}
	n, _ := folded.LiteralValue.AsInt()
	if n != 5 {
		t.Errorf("expected folded value 5, got %d", n)
	}
}

func TestConstantFold_ModuleCallNeverFolds(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "lit", Kind: ir.KindLiteral, LiteralValue: types.NewInt(1)})
	g.Add(&ir.Node{ID: "m", Kind: ir.KindModuleCall, ModuleName: "addOne", ModuleArgs: map[string]ir.ID{"n": "lit"}, ArgOrder: []string{"n"}})
	g.Outputs["out"] = "m"

	out := ConstantFold(g)
	if out.Nodes["m"].Kind != ir.KindModuleCall {
		t.Error("expected a module call to never be constant-folded, regardless of literal inputs")
	}
}

func TestConstantFold_BooleanOps(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "a", Kind: ir.KindLiteral, LiteralValue: types.NewBool(true)})
	g.Add(&ir.Node{ID: "b", Kind: ir.KindLiteral, LiteralValue: types.NewBool(false)})
	g.Add(&ir.Node{ID: "and", Kind: ir.KindAnd, BoolA: "a", BoolB: "b"})
	g.Add(&ir.Node{ID: "not", Kind: ir.KindNot, BoolX: "and"})
	g.Outputs["out"] = "not"

	out := ConstantFold(g)
	folded := out.Nodes["not"]
	if folded.Kind != ir.KindLiteral {
		t.Fatalf("expected not(and(true,false)) to fold, got kind %v", folded.Kind)
	}
	b, _ := folded.LiteralValue.AsBool()
	if !b {
		t.Errorf("expected not(false)=true, got %v", b)
	}
}
