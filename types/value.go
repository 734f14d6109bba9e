package types

import "fmt"

// Value is a runtime value carrying its own type tag (spec.md §9: "every
// value carries its type; polymorphism ... is implemented as a tagged
// variant, not via subtype dispatch"). The zero Value is invalid; use the
// constructors below.
type Value struct {
	typ *Type

	str  string
	i    int64
	f    float64
	b    bool
	list []Value
	// pairs preserves map insertion order; used by canonical serialization
	// which re-sorts on demand rather than relying on map iteration order.
	pairs []Pair
	// product/union share the same field-map representation as Type.
	product map[string]Value
	tag     string
	payload *Value
	some    *Value
}

// Pair is an ordered Map entry.
type Pair struct {
	Key Value
	Val Value
}

func NewString(s string) Value { return Value{typ: String, str: s} }
func NewInt(i int64) Value     { return Value{typ: Int, i: i} }
func NewFloat(f float64) Value { return Value{typ: Float, f: f} }
func NewBool(b bool) Value     { return Value{typ: Bool, b: b} }

// NewList builds a List<elem> value from a sequence.
func NewList(elem *Type, items []Value) Value {
	return Value{typ: List(elem), list: items}
}

// NewMap builds a Map<key,val> value from an ordered pair sequence.
func NewMap(key, val *Type, pairs []Pair) Value {
	return Value{typ: Map(key, val), pairs: pairs}
}

// NewProduct builds a record value. fields must match the given Product
// type's field set; callers that can't guarantee this should go through
// the checker first.
func NewProduct(t *Type, fields map[string]Value) Value {
	return Value{typ: t, product: cloneValueFields(fields)}
}

// NewUnion builds a tagged-sum value.
func NewUnion(t *Type, tag string, payload Value) Value {
	return Value{typ: t, tag: tag, payload: &payload}
}

// NewSome builds Optional<T>'s present variant.
func NewSome(inner Value) Value {
	v := inner
	return Value{typ: Optional(inner.typ), some: &v}
}

// NewNone builds Optional<T>'s absent variant.
func NewNone(inner *Type) Value {
	return Value{typ: Optional(inner)}
}

func cloneValueFields(in map[string]Value) map[string]Value {
	out := make(map[string]Value, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Type returns the value's type tag.
func (v Value) Type() *Type { return v.typ }

func (v Value) AsString() (string, bool)   { return v.str, v.typ != nil && v.typ.kind == KindString }
func (v Value) AsInt() (int64, bool)       { return v.i, v.typ != nil && v.typ.kind == KindInt }
func (v Value) AsFloat() (float64, bool)   { return v.f, v.typ != nil && v.typ.kind == KindFloat }
func (v Value) AsBool() (bool, bool)       { return v.b, v.typ != nil && v.typ.kind == KindBool }
func (v Value) AsList() ([]Value, bool)    { return v.list, v.typ != nil && v.typ.kind == KindList }
func (v Value) AsPairs() ([]Pair, bool)    { return v.pairs, v.typ != nil && v.typ.kind == KindMap }

// AsProduct returns the field map of a record value.
func (v Value) AsProduct() (map[string]Value, bool) {
	return v.product, v.typ != nil && v.typ.kind == KindProduct
}

// Field looks up a single record field.
func (v Value) Field(name string) (Value, bool) {
	f, ok := v.product[name]
	return f, ok
}

// AsUnion returns the tag and payload of a tagged-sum value.
func (v Value) AsUnion() (string, Value, bool) {
	if v.typ == nil || v.typ.kind != KindUnion || v.payload == nil {
		return "", Value{}, false
	}
	return v.tag, *v.payload, true
}

// IsSome reports whether an Optional value is present, returning its
// unwrapped inner value.
func (v Value) IsSome() (Value, bool) {
	if v.typ == nil || v.typ.kind != KindOptional || v.some == nil {
		return Value{}, false
	}
	return *v.some, true
}

func (v Value) String() string {
	switch {
	case v.typ == nil:
		return "<invalid>"
	case v.typ.kind == KindString:
		return fmt.Sprintf("%q", v.str)
	case v.typ.kind == KindInt:
		return fmt.Sprintf("%d", v.i)
	case v.typ.kind == KindFloat:
		return fmt.Sprintf("%g", v.f)
	case v.typ.kind == KindBool:
		return fmt.Sprintf("%t", v.b)
	case v.typ.kind == KindOptional:
		if inner, ok := v.IsSome(); ok {
			return "Some(" + inner.String() + ")"
		}
		return "None"
	default:
		return v.typ.String()
	}
}
