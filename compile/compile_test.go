package compile

import (
	"testing"

	"github.com/constellation-run/constellation/ir"
	"github.com/constellation-run/constellation/module"
	"github.com/constellation-run/constellation/types"
)

func registryWithAddOne() *module.Registry {
	reg := module.NewRegistry()
	reg.Register(&module.Module{
		Name: "addOne",
		Signature: module.Signature{
			Inputs: []module.Param{{Name: "n", Type: types.Int}},
			Output: types.Int,
		},
	})
	return reg
}

func TestCompile_SimpleModuleCall(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "x", Kind: ir.KindInput, InputName: "x", Type: types.Int})
	g.Add(&ir.Node{
		ID: "y", Kind: ir.KindModuleCall, ModuleName: "addOne",
		ModuleArgs: map[string]ir.ID{"n": "x"}, ArgOrder: []string{"n"}, Type: types.Int,
	})
	g.Outputs["y"] = "y"

	dag, errs := Compile(g, registryWithAddOne())
	if errs != nil {
		t.Fatalf("expected no compile errors, got %v", errs)
	}
	if len(dag.Data) != 2 {
		t.Errorf("expected 2 data nodes, got %d", len(dag.Data))
	}
	mn, ok := dag.Modules["y"]
	if !ok {
		t.Fatal("expected a module node for y")
	}
	if mn.Module != "addOne" || mn.Synthetic {
		t.Errorf("unexpected module node: %+v", mn)
	}
	edges := dag.InEdgesFor("y")
	if len(edges) != 1 || edges[0].Data != "x" || edges[0].Param != "n" {
		t.Errorf("expected a single in-edge x->n, got %v", edges)
	}
}

func TestCompile_UndefinedModule(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "x", Kind: ir.KindInput, InputName: "x", Type: types.Int})
	g.Add(&ir.Node{ID: "y", Kind: ir.KindModuleCall, ModuleName: "missing", ModuleArgs: map[string]ir.ID{}, Type: types.Int})
	g.Outputs["y"] = "y"

	_, errs := Compile(g, module.NewRegistry())
	if errs == nil || errs.Len() == 0 {
		t.Fatal("expected an undefined-module compile error")
	}
}

func TestCompile_ArityMismatch(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "y", Kind: ir.KindModuleCall, ModuleName: "addOne", ModuleArgs: map[string]ir.ID{}, Type: types.Int})
	g.Outputs["y"] = "y"

	_, errs := Compile(g, registryWithAddOne())
	if errs == nil || errs.Len() == 0 {
		t.Fatal("expected an arity-mismatch compile error")
	}
}

func TestCompile_MergeTransform_WiresSyntheticModule(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "a", Kind: ir.KindInput, InputName: "a"})
	g.Add(&ir.Node{ID: "b", Kind: ir.KindInput, InputName: "b"})
	g.Add(&ir.Node{ID: "m", Kind: ir.KindMergeTransform, MergeA: "a", MergeB: "b"})
	g.Outputs["out"] = "m"

	dag, errs := Compile(g, module.NewRegistry())
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	mn, ok := dag.Modules["m"]
	if !ok || mn.Module != SynMerge || !mn.Synthetic {
		t.Fatalf("expected synthetic $merge module node, got %+v", mn)
	}
}

func TestCompile_DetectsCycle(t *testing.T) {
	g := ir.NewGraph()
	// a and b reference each other via field access, forming a cycle.
	g.Add(&ir.Node{ID: "a", Kind: ir.KindFieldAccess, FieldSrc: "b", FieldName: "x"})
	g.Add(&ir.Node{ID: "b", Kind: ir.KindFieldAccess, FieldSrc: "a", FieldName: "y"})
	g.Outputs["out"] = "a"

	_, errs := Compile(g, module.NewRegistry())
	if errs == nil || errs.Len() == 0 {
		t.Fatal("expected a cycle-detected compile error")
	}
}

func TestCompile_MatchWiresArmsAndBindings(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "scrut", Kind: ir.KindInput, InputName: "scrut"})
	g.Add(&ir.Node{ID: "bind", Kind: ir.KindInput, InputName: "_bind"})
	g.Add(&ir.Node{ID: "arm", Kind: ir.KindFieldAccess, FieldSrc: "bind", FieldName: "x"})
	g.Add(&ir.Node{
		ID: "m", Kind: ir.KindMatch, MatchScrutinee: "scrut",
		MatchArms: []ir.MatchArm{{Tag: "Ok", BindID: "bind", Body: "arm"}},
	})
	g.Outputs["out"] = "m"

	dag, errs := Compile(g, module.NewRegistry())
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
	mn, ok := dag.Modules["m"]
	if !ok || mn.Module != SynMatch {
		t.Fatalf("expected synthetic $match module node, got %+v", mn)
	}
	if !dag.Data["bind"].IsMatchBind || dag.Data["bind"].MatchBindOf != "m" {
		t.Errorf("expected bind data node to be marked as a match binding of m, got %+v", dag.Data["bind"])
	}
}

func TestDAG_Producer(t *testing.T) {
	g := ir.NewGraph()
	g.Add(&ir.Node{ID: "x", Kind: ir.KindInput, InputName: "x", Type: types.Int})
	g.Add(&ir.Node{
		ID: "y", Kind: ir.KindModuleCall, ModuleName: "addOne",
		ModuleArgs: map[string]ir.ID{"n": "x"}, ArgOrder: []string{"n"}, Type: types.Int,
	})
	g.Outputs["y"] = "y"

	dag, _ := Compile(g, registryWithAddOne())
	if _, ok := dag.Producer("x"); ok {
		t.Error("expected x (an input) to have no producer")
	}
	if _, ok := dag.Producer("y"); !ok {
		t.Error("expected y to have a producer module node")
	}
}
