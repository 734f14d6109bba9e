package synthetic

import (
	"testing"

	"github.com/constellation-run/constellation/types"
)

func record(fields map[string]types.Value) types.Value {
	fieldTypes := make(map[string]*types.Type, len(fields))
	for k, v := range fields {
		fieldTypes[k] = v.Type()
	}
	return types.NewProduct(types.Product(fieldTypes), fields)
}

func TestMerge_RecordPlusRecord_RightWins(t *testing.T) {
	a := record(map[string]types.Value{"name": types.NewString("ada"), "age": types.NewInt(30)})
	b := record(map[string]types.Value{"age": types.NewInt(31)})

	out, err := Merge("merge", a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	age, _ := out.Field("age")
	n, _ := age.AsInt()
	if n != 31 {
		t.Errorf("expected right operand to win on age, got %d", n)
	}
	name, _ := out.Field("name")
	s, _ := name.AsString()
	if s != "ada" {
		t.Errorf("expected name preserved from left operand, got %q", s)
	}
}

func TestMerge_ListPlusRecord_Distributes(t *testing.T) {
	item1 := record(map[string]types.Value{"x": types.NewInt(1)})
	item2 := record(map[string]types.Value{"x": types.NewInt(2)})
	list := types.NewList(item1.Type(), []types.Value{item1, item2})
	extra := record(map[string]types.Value{"y": types.NewString("z")})

	out, err := Merge("merge", list, extra)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	items, ok := out.AsList()
	if !ok || len(items) != 2 {
		t.Fatalf("expected a 2-element list, got %v", out)
	}
	y, ok := items[0].Field("y")
	if !ok {
		t.Fatal("expected distributed field y on each element")
	}
	s, _ := y.AsString()
	if s != "z" {
		t.Errorf("expected y=z, got %q", s)
	}
}

func TestMerge_ListPlusList_ElementWise(t *testing.T) {
	a1 := record(map[string]types.Value{"x": types.NewInt(1)})
	a2 := record(map[string]types.Value{"x": types.NewInt(2)})
	b1 := record(map[string]types.Value{"y": types.NewInt(10)})
	b2 := record(map[string]types.Value{"y": types.NewInt(20)})

	aList := types.NewList(a1.Type(), []types.Value{a1, a2})
	bList := types.NewList(b1.Type(), []types.Value{b1, b2})

	out, err := Merge("merge", aList, bList)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	items, _ := out.AsList()
	y0, _ := items[0].Field("y")
	n, _ := y0.AsInt()
	if n != 10 {
		t.Errorf("expected first merged element's y=10, got %d", n)
	}
}

func TestMerge_ListPlusList_LengthMismatch(t *testing.T) {
	a1 := record(map[string]types.Value{"x": types.NewInt(1)})
	b1 := record(map[string]types.Value{"y": types.NewInt(1)})
	b2 := record(map[string]types.Value{"y": types.NewInt(2)})

	aList := types.NewList(a1.Type(), []types.Value{a1})
	bList := types.NewList(b1.Type(), []types.Value{b1, b2})

	_, err := Merge("merge", aList, bList)
	if err == nil {
		t.Fatal("expected a length-mismatch error")
	}
}

func TestProject_NarrowsRecordFields(t *testing.T) {
	r := record(map[string]types.Value{
		"name": types.NewString("ada"),
		"age":  types.NewInt(30),
		"city": types.NewString("london"),
	})

	out := Project(r, []string{"name", "city"})
	if _, ok := out.Field("age"); ok {
		t.Error("expected age to be dropped by projection")
	}
	name, ok := out.Field("name")
	if !ok {
		t.Fatal("expected name to survive projection")
	}
	s, _ := name.AsString()
	if s != "ada" {
		t.Errorf("expected name=ada, got %q", s)
	}
}

func TestProject_DistributesOverList(t *testing.T) {
	r1 := record(map[string]types.Value{"name": types.NewString("a"), "age": types.NewInt(1)})
	r2 := record(map[string]types.Value{"name": types.NewString("b"), "age": types.NewInt(2)})
	list := types.NewList(r1.Type(), []types.Value{r1, r2})

	out := Project(list, []string{"name"})
	items, ok := out.AsList()
	if !ok || len(items) != 2 {
		t.Fatalf("expected a 2-element projected list, got %v", out)
	}
	if _, ok := items[0].Field("age"); ok {
		t.Error("expected age to be dropped on each element")
	}
}

func TestField_ReadsRecordField(t *testing.T) {
	r := record(map[string]types.Value{"name": types.NewString("ada")})
	got, err := Field(r, "name")
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	s, _ := got.AsString()
	if s != "ada" {
		t.Errorf("expected ada, got %q", s)
	}
}

func TestField_MissingFieldErrors(t *testing.T) {
	r := record(map[string]types.Value{"name": types.NewString("ada")})
	_, err := Field(r, "missing")
	if err == nil {
		t.Fatal("expected an error for a missing field")
	}
}

func TestField_DistributesOverList(t *testing.T) {
	r1 := record(map[string]types.Value{"name": types.NewString("a")})
	r2 := record(map[string]types.Value{"name": types.NewString("b")})
	list := types.NewList(r1.Type(), []types.Value{r1, r2})

	out, err := Field(list, "name")
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	items, ok := out.AsList()
	if !ok || len(items) != 2 {
		t.Fatalf("expected a 2-element list of field values, got %v", out)
	}
	s0, _ := items[0].AsString()
	if s0 != "a" {
		t.Errorf("expected first element 'a', got %q", s0)
	}
}

func TestCond(t *testing.T) {
	then := types.NewInt(1)
	els := types.NewInt(2)
	if got := Cond(true, then, els); types.Canonical(got) != types.Canonical(then) {
		t.Error("expected Cond(true, ...) to return the then branch")
	}
	if got := Cond(false, then, els); types.Canonical(got) != types.Canonical(els) {
		t.Error("expected Cond(false, ...) to return the else branch")
	}
}

func TestGuard(t *testing.T) {
	v := types.NewInt(5)
	present := Guard(v, true)
	inner, ok := present.IsSome()
	if !ok {
		t.Fatal("expected Guard(true) to produce Some")
	}
	n, _ := inner.AsInt()
	if n != 5 {
		t.Errorf("expected inner=5, got %d", n)
	}

	absent := Guard(v, false)
	if _, ok := absent.IsSome(); ok {
		t.Error("expected Guard(false) to produce None")
	}
}

func TestCoalesce_SomeUnwraps(t *testing.T) {
	some := types.NewSome(types.NewInt(1))
	fallback := types.NewInt(2)

	got := Coalesce(some, fallback)
	n, _ := got.AsInt()
	if n != 1 {
		t.Errorf("expected unwrapped Some value 1, got %d", n)
	}
}

func TestCoalesce_NoneFallsBack(t *testing.T) {
	none := types.NewNone(types.Int)
	fallback := types.NewInt(2)

	got := Coalesce(none, fallback)
	n, _ := got.AsInt()
	if n != 2 {
		t.Errorf("expected fallback value 2 for None, got %d", n)
	}
}

func TestBooleanOps(t *testing.T) {
	if !And(true, true) || And(true, false) {
		t.Error("And truth table mismatch")
	}
	if !Or(false, true) || Or(false, false) {
		t.Error("Or truth table mismatch")
	}
	if Not(true) || !Not(false) {
		t.Error("Not truth table mismatch")
	}
}
