package types

// IsSubtype reports whether sub is assignable where sup is expected.
//
// A Product with a strict superset of fields is a subtype of the smaller
// one (field-by-field, contravariant-free since fields are read-only).
// A Union is the inverse: a smaller variant set is a subtype of a larger
// one, each shared variant's payload itself a subtype. Optional<T> is
// invariant in T and is never compatible with T nor with its absence
// except through an explicit Guard/Coalesce.
func IsSubtype(sub, sup *Type) bool {
	if sub == nil || sup == nil {
		return false
	}
	if sub.kind != sup.kind {
		return false
	}
	switch sub.kind {
	case KindString, KindInt, KindFloat, KindBool:
		return true
	case KindList:
		return IsSubtype(sub.elem, sup.elem)
	case KindMap:
		return Equal(sub.key, sup.key) && IsSubtype(sub.val, sup.val)
	case KindOptional:
		return Equal(sub.inner, sup.inner)
	case KindProduct:
		// sub must carry every field sup declares, with an assignable type.
		for name, supField := range sup.fields {
			subField, ok := sub.fields[name]
			if !ok || !IsSubtype(subField, supField) {
				return false
			}
		}
		return true
	case KindUnion:
		// sub's variant set must be contained in sup's, each assignable.
		for tag, subVariant := range sub.fields {
			supVariant, ok := sup.fields[tag]
			if !ok || !IsSubtype(subVariant, supVariant) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// LUB computes the least upper bound of two types: the most specific type
// both are subtypes of. Returns (type, true) on success, or (nil, false)
// when no common supertype exists (the two branches are structurally
// incompatible, e.g. different primitive kinds).
func LUB(a, b *Type) (*Type, bool) {
	if Equal(a, b) {
		return a, true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return nil, false
	}
	switch a.kind {
	case KindList:
		elem, ok := LUB(a.elem, b.elem)
		if !ok {
			return nil, false
		}
		return List(elem), true
	case KindMap:
		if !Equal(a.key, b.key) {
			return nil, false
		}
		val, ok := LUB(a.val, b.val)
		if !ok {
			return nil, false
		}
		return Map(a.key, val), true
	case KindOptional:
		inner, ok := LUB(a.inner, b.inner)
		if !ok {
			return nil, false
		}
		return Optional(inner), true
	case KindProduct:
		// LUB of two records is the intersection of fields, each field's
		// LUB, mirroring "superset is a subtype" the other way around.
		fields := make(map[string]*Type)
		for name, at := range a.fields {
			bt, ok := b.fields[name]
			if !ok {
				continue
			}
			lub, ok := LUB(at, bt)
			if !ok {
				return nil, false
			}
			fields[name] = lub
		}
		return Product(fields), true
	case KindUnion:
		// LUB of two unions is the union of variants, each shared tag's
		// payload widened to its LUB.
		fields := make(map[string]*Type)
		for tag, at := range a.fields {
			fields[tag] = at
		}
		for tag, bt := range b.fields {
			if at, ok := fields[tag]; ok {
				lub, ok := LUB(at, bt)
				if !ok {
					return nil, false
				}
				fields[tag] = lub
			} else {
				fields[tag] = bt
			}
		}
		return Union(fields), true
	default:
		return nil, false
	}
}
