package module

import (
	"context"
	"testing"

	"github.com/constellation-run/constellation/types"
)

func addOneModule() *Module {
	return &Module{
		Name: "addOne",
		Signature: Signature{
			Namespace: "math",
			Version:   "v1",
			Inputs:    []Param{{Name: "n", Type: types.Int}},
			Output:    types.Int,
		},
		Eval: func(_ context.Context, args map[string]types.Value) (types.Value, error) {
			n, _ := args["n"].AsInt()
			return types.NewInt(n + 1), nil
		},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(addOneModule())

	m, ok := r.Lookup("addOne")
	if !ok {
		t.Fatal("expected addOne to be registered")
	}
	out, err := m.Eval(context.Background(), map[string]types.Value{"n": types.NewInt(41)})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	n, _ := out.AsInt()
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}
}

func TestRegistry_LookupMissing(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("missing"); ok {
		t.Error("expected lookup of an unregistered module to fail")
	}
}

func TestRegistry_RegisterReplacesExisting(t *testing.T) {
	r := NewRegistry()
	r.Register(addOneModule())

	replacement := addOneModule()
	replacement.Signature.Version = "v2"
	r.Register(replacement)

	m, _ := r.Lookup("addOne")
	if m.Signature.Version != "v2" {
		t.Errorf("expected replacement module to overwrite the original, got version %q", m.Signature.Version)
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&Module{Name: "zeta"})
	r.Register(&Module{Name: "alpha"})
	r.Register(&Module{Name: "mu"})

	names := r.Names()
	if len(names) != 3 || names[0] != "alpha" || names[1] != "mu" || names[2] != "zeta" {
		t.Errorf("expected sorted names, got %v", names)
	}
}
