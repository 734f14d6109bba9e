package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Canonical renders a value into a deterministic string form: record and
// map keys are sorted, every variant is tagged with its kind, and
// separators are escaped so two values that differ only in field or pair
// insertion order produce identical output (spec.md §4.7: "canonical value
// serialization sorts record/map keys, escapes separators, and tags each
// variant").
func Canonical(v Value) string {
	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

func writeCanonical(b *strings.Builder, v Value) {
	if v.typ == nil {
		b.WriteString("null")
		return
	}
	switch v.typ.kind {
	case KindString:
		b.WriteString("s:")
		b.WriteString(escape(v.str))
	case KindInt:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b.WriteString("f:")
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindBool:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(v.b))
	case KindList:
		b.WriteString("l[")
		for i, item := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, item)
		}
		b.WriteByte(']')
	case KindMap:
		pairs := make([]Pair, len(v.pairs))
		copy(pairs, v.pairs)
		sort.Slice(pairs, func(i, j int) bool {
			return Canonical(pairs[i].Key) < Canonical(pairs[j].Key)
		})
		b.WriteString("m{")
		for i, p := range pairs {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, p.Key)
			b.WriteByte(':')
			writeCanonical(b, p.Val)
		}
		b.WriteByte('}')
	case KindProduct:
		names := make([]string, 0, len(v.product))
		for name := range v.product {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("p{")
		for i, name := range names {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escape(name))
			b.WriteByte(':')
			writeCanonical(b, v.product[name])
		}
		b.WriteByte('}')
	case KindUnion:
		b.WriteString("u{")
		b.WriteString(escape(v.tag))
		b.WriteByte(':')
		if v.payload != nil {
			writeCanonical(b, *v.payload)
		}
		b.WriteByte('}')
	case KindOptional:
		if inner, ok := v.IsSome(); ok {
			b.WriteString("o<some:")
			writeCanonical(b, inner)
			b.WriteByte('>')
		} else {
			b.WriteString("o<none>")
		}
	default:
		b.WriteString(fmt.Sprintf("?%v", v.typ))
	}
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `,`, `\,`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	s = strings.ReplaceAll(s, `{`, `\{`)
	s = strings.ReplaceAll(s, `}`, `\}`)
	return s
}
