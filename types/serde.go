package types

import "go.yaml.in/yaml/v3"

// wireType is Type's serializable shape (invariant 7: round-trip under
// the cache codec). Only the fields relevant to Kind are populated.
type wireType struct {
	Kind   string               `yaml:"kind"`
	Elem   *wireType            `yaml:"elem,omitempty"`
	Key    *wireType            `yaml:"key,omitempty"`
	Val    *wireType            `yaml:"val,omitempty"`
	Fields map[string]*wireType `yaml:"fields,omitempty"`
	Inner  *wireType            `yaml:"inner,omitempty"`
}

func toWireType(t *Type) *wireType {
	if t == nil {
		return nil
	}
	w := &wireType{Kind: t.kind.String()}
	switch t.kind {
	case KindList:
		w.Elem = toWireType(t.elem)
	case KindMap:
		w.Key = toWireType(t.key)
		w.Val = toWireType(t.val)
	case KindProduct, KindUnion:
		w.Fields = make(map[string]*wireType, len(t.fields))
		for name, ft := range t.fields {
			w.Fields[name] = toWireType(ft)
		}
	case KindOptional:
		w.Inner = toWireType(t.inner)
	}
	return w
}

func fromWireType(w *wireType) *Type {
	if w == nil {
		return nil
	}
	switch w.Kind {
	case "String":
		return String
	case "Int":
		return Int
	case "Float":
		return Float
	case "Bool":
		return Bool
	case "List":
		return List(fromWireType(w.Elem))
	case "Map":
		return Map(fromWireType(w.Key), fromWireType(w.Val))
	case "Product":
		return Product(fromWireFields(w.Fields))
	case "Union":
		return Union(fromWireFields(w.Fields))
	case "Optional":
		return Optional(fromWireType(w.Inner))
	default:
		return nil
	}
}

func fromWireFields(in map[string]*wireType) map[string]*Type {
	out := make(map[string]*Type, len(in))
	for name, w := range in {
		out[name] = fromWireType(w)
	}
	return out
}

// MarshalYAML/UnmarshalYAML let *Type participate directly in a larger
// yaml-encoded structure despite its fields being unexported.
func (t *Type) MarshalYAML() (interface{}, error) {
	return toWireType(t), nil
}

func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	var w wireType
	if err := node.Decode(&w); err != nil {
		return err
	}
	*t = *fromWireType(&w)
	return nil
}

// wireValue is Value's serializable shape.
type wireValue struct {
	Type    *wireType             `yaml:"type"`
	Str     string                `yaml:"str,omitempty"`
	Int     int64                 `yaml:"int,omitempty"`
	Float   float64               `yaml:"float,omitempty"`
	Bool    bool                  `yaml:"bool,omitempty"`
	List    []wireValue           `yaml:"list,omitempty"`
	Pairs   []wirePair            `yaml:"pairs,omitempty"`
	Product map[string]wireValue  `yaml:"product,omitempty"`
	Tag     string                `yaml:"tag,omitempty"`
	Payload *wireValue            `yaml:"payload,omitempty"`
	Some    *wireValue            `yaml:"some,omitempty"`
	None    bool                  `yaml:"none,omitempty"`
}

type wirePair struct {
	Key wireValue `yaml:"key"`
	Val wireValue `yaml:"val"`
}

func toWireValue(v Value) wireValue {
	w := wireValue{Type: toWireType(v.typ)}
	if v.typ == nil {
		return w
	}
	switch v.typ.kind {
	case KindString:
		w.Str = v.str
	case KindInt:
		w.Int = v.i
	case KindFloat:
		w.Float = v.f
	case KindBool:
		w.Bool = v.b
	case KindList:
		for _, item := range v.list {
			w.List = append(w.List, toWireValue(item))
		}
	case KindMap:
		for _, p := range v.pairs {
			w.Pairs = append(w.Pairs, wirePair{Key: toWireValue(p.Key), Val: toWireValue(p.Val)})
		}
	case KindProduct:
		w.Product = make(map[string]wireValue, len(v.product))
		for name, fv := range v.product {
			w.Product[name] = toWireValue(fv)
		}
	case KindUnion:
		w.Tag = v.tag
		if v.payload != nil {
			p := toWireValue(*v.payload)
			w.Payload = &p
		}
	case KindOptional:
		if v.some != nil {
			s := toWireValue(*v.some)
			w.Some = &s
		} else {
			w.None = true
		}
	}
	return w
}

func fromWireValue(w wireValue) Value {
	t := fromWireType(w.Type)
	if t == nil {
		return Value{}
	}
	v := Value{typ: t}
	switch t.kind {
	case KindString:
		v.str = w.Str
	case KindInt:
		v.i = w.Int
	case KindFloat:
		v.f = w.Float
	case KindBool:
		v.b = w.Bool
	case KindList:
		v.list = make([]Value, len(w.List))
		for i, item := range w.List {
			v.list[i] = fromWireValue(item)
		}
	case KindMap:
		v.pairs = make([]Pair, len(w.Pairs))
		for i, p := range w.Pairs {
			v.pairs[i] = Pair{Key: fromWireValue(p.Key), Val: fromWireValue(p.Val)}
		}
	case KindProduct:
		v.product = make(map[string]Value, len(w.Product))
		for name, fv := range w.Product {
			v.product[name] = fromWireValue(fv)
		}
	case KindUnion:
		v.tag = w.Tag
		if w.Payload != nil {
			p := fromWireValue(*w.Payload)
			v.payload = &p
		}
	case KindOptional:
		if !w.None && w.Some != nil {
			s := fromWireValue(*w.Some)
			v.some = &s
		}
	}
	return v
}

// MarshalYAML lets Value participate directly in a larger yaml-encoded
// structure (DAG literals, cache entries, pipeline images) despite its
// fields being unexported.
func (v Value) MarshalYAML() (interface{}, error) {
	return toWireValue(v), nil
}

// UnmarshalYAML reverses MarshalYAML.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var w wireValue
	if err := node.Decode(&w); err != nil {
		return err
	}
	*v = fromWireValue(w)
	return nil
}

// Marshal serializes a value to its wire form (spec.md §8 invariant 7:
// "deserialize(serialize(v)) == v under the cache codec").
func Marshal(v Value) ([]byte, error) {
	return yaml.Marshal(toWireValue(v))
}

// Unmarshal reverses Marshal.
func Unmarshal(data []byte) (Value, error) {
	var w wireValue
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Value{}, err
	}
	return fromWireValue(w), nil
}
