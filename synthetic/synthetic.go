// Package synthetic implements the fixed evaluators behind Constellation's
// synthetic modules (spec.md §4.4: "$merge", "$project", "$field", "$cond",
// "$guard", "$coalesce", "$and", "$or", "$not"). It is shared by the
// runtime (normal execution) and the optimizer (constant folding over
// literal-only inputs), so the two never disagree about what an inline
// transform computes.
package synthetic

import (
	"fmt"

	"github.com/constellation-run/constellation/cerrors"
	"github.com/constellation-run/constellation/types"
)

// Merge implements `+`: record+record combines field maps (right wins);
// List<Record>+Record distributes; List<Record>+List<Record> merges
// element-wise, failing with ListLengthMismatch on unequal arities.
func Merge(module string, a, b types.Value) (types.Value, error) {
	aList, aOK := a.AsList()
	bList, bOK := b.AsList()
	switch {
	case !aOK && !bOK:
		return mergeRecords(a, b), nil
	case aOK && !bOK:
		out := make([]types.Value, len(aList))
		for i, item := range aList {
			out[i] = mergeRecords(item, b)
		}
		return types.NewList(a.Type().Elem(), out), nil
	case aOK && bOK:
		if len(aList) != len(bList) {
			return types.Value{}, cerrors.ListLengthMismatchError(module, len(aList), len(bList))
		}
		out := make([]types.Value, len(aList))
		for i := range aList {
			out[i] = mergeRecords(aList[i], bList[i])
		}
		return types.NewList(a.Type().Elem(), out), nil
	default:
		return types.Value{}, fmt.Errorf("synthetic: merge: incompatible operands")
	}
}

func mergeRecords(a, b types.Value) types.Value {
	fields, _ := a.AsProduct()
	merged := make(map[string]types.Value, len(fields))
	for k, v := range fields {
		merged[k] = v
	}
	bFields, _ := b.AsProduct()
	fieldTypes := make(map[string]*types.Type, len(merged)+len(bFields))
	for k, v := range merged {
		fieldTypes[k] = v.Type()
	}
	for k, v := range bFields {
		merged[k] = v
		fieldTypes[k] = v.Type()
	}
	return types.NewProduct(types.Product(fieldTypes), merged)
}

// Project narrows a record (or List<Record>) to the given fields.
func Project(src types.Value, fields []string) types.Value {
	if list, ok := src.AsList(); ok {
		out := make([]types.Value, len(list))
		for i, item := range list {
			out[i] = project(item, fields)
		}
		var elemT *types.Type
		if len(out) > 0 {
			elemT = out[0].Type()
		} else {
			elemT = src.Type().Elem()
		}
		return types.NewList(elemT, out)
	}
	return project(src, fields)
}

func project(v types.Value, fields []string) types.Value {
	all, _ := v.AsProduct()
	out := make(map[string]types.Value, len(fields))
	fieldTypes := make(map[string]*types.Type, len(fields))
	for _, name := range fields {
		if f, ok := all[name]; ok {
			out[name] = f
			fieldTypes[name] = f.Type()
		}
	}
	return types.NewProduct(types.Product(fieldTypes), out)
}

// Field reads a single record field, or distributes over List<Record>.
func Field(src types.Value, name string) (types.Value, error) {
	if list, ok := src.AsList(); ok {
		out := make([]types.Value, len(list))
		var elemT *types.Type
		for i, item := range list {
			f, ok := item.Field(name)
			if !ok {
				return types.Value{}, fmt.Errorf("synthetic: field %q not found", name)
			}
			out[i] = f
			elemT = f.Type()
		}
		return types.NewList(elemT, out), nil
	}
	f, ok := src.Field(name)
	if !ok {
		return types.Value{}, fmt.Errorf("synthetic: field %q not found", name)
	}
	return f, nil
}

// Cond implements the conditional/branch-when desugaring.
func Cond(test bool, then, els types.Value) types.Value {
	if test {
		return then
	}
	return els
}

// Guard wraps src as Optional, present only when cond holds.
func Guard(src types.Value, cond bool) types.Value {
	if cond {
		return types.NewSome(src)
	}
	return types.NewNone(src.Type())
}

// Coalesce unwraps an Optional, falling back to b when absent.
func Coalesce(a, b types.Value) types.Value {
	if inner, ok := a.IsSome(); ok {
		return inner
	}
	return b
}

func And(a, b bool) bool { return a && b }
func Or(a, b bool) bool  { return a || b }
func Not(a bool) bool    { return !a }
