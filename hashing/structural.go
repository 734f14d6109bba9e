// Package hashing computes Constellation's two content hashes: the
// structural hash of an IR graph (spec.md §8 invariant 9 - stable
// under identifier renaming) and, via types.Hash/types.Canonical, the
// cache key derived from a module call's inputs. The two are kept
// separate because they answer different questions: "is this the same
// pipeline shape" versus "is this the same cache entry".
package hashing

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/constellation-run/constellation/ir"
)

// Structural computes a hash of g's shape: node kinds, edges, module and
// field names and output names, addressed by position in g.Order rather
// than by the IR's own ids or input names. Two graphs that differ only in
// node ids or input names hash identically; two graphs that differ in
// wiring, kind, called module or accessed field do not.
func Structural(g *ir.Graph) string {
	index := make(map[ir.ID]int, len(g.Order))
	for i, id := range g.Order {
		index[id] = i
	}

	var b strings.Builder
	ref := func(id ir.ID) string {
		if id == "" {
			return "-"
		}
		if i, ok := index[id]; ok {
			return fmt.Sprintf("#%d", i)
		}
		return "?"
	}

	for i, id := range g.Order {
		n := g.Nodes[id]
		fmt.Fprintf(&b, "%d:%s(", i, kindTag(n.Kind))
		describe(&b, n, ref)
		b.WriteString(")\n")
	}

	outNames := make([]string, 0, len(g.Outputs))
	for name := range g.Outputs {
		outNames = append(outNames, name)
	}
	sort.Strings(outNames)
	for _, name := range outNames {
		fmt.Fprintf(&b, "out %s=%s\n", name, ref(g.Outputs[name]))
	}

	sum := blake2b.Sum256([]byte(b.String()))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func kindTag(k ir.NodeKind) string {
	switch k {
	case ir.KindInput:
		return "input"
	case ir.KindLiteral:
		return "lit"
	case ir.KindModuleCall:
		return "call"
	case ir.KindMergeTransform:
		return "merge"
	case ir.KindProjectTransform:
		return "project"
	case ir.KindFieldAccess:
		return "field"
	case ir.KindConditional:
		return "cond"
	case ir.KindGuard:
		return "guard"
	case ir.KindCoalesce:
		return "coalesce"
	case ir.KindAnd:
		return "and"
	case ir.KindOr:
		return "or"
	case ir.KindNot:
		return "not"
	case ir.KindHigherOrder:
		return "ho"
	case ir.KindMatch:
		return "match"
	default:
		return "unknown"
	}
}

// describe writes a node's structural payload, deliberately omitting
// anything that's a bare identifier choice rather than shape: input
// names, field-access/module-call names are the one exception that
// genuinely changes meaning (renaming a referenced field or module is
// not a no-op rename), so those are kept; local variable/lambda-param
// names never appear here because the IR has already erased them into
// positional node references.
func describe(b *strings.Builder, n *ir.Node, ref func(ir.ID) string) {
	switch n.Kind {
	case ir.KindInput:
		fmt.Fprintf(b, "default=%s", ref(derefID(n.InputDefault)))
	case ir.KindLiteral:
		fmt.Fprintf(b, "value=%s", n.LiteralValue.String())
	case ir.KindModuleCall:
		fmt.Fprintf(b, "module=%s", n.ModuleName)
		for _, name := range sortedKeys(n.ModuleArgs) {
			fmt.Fprintf(b, " %s=%s", name, ref(n.ModuleArgs[name]))
		}
	case ir.KindMergeTransform:
		fmt.Fprintf(b, "a=%s b=%s", ref(n.MergeA), ref(n.MergeB))
	case ir.KindProjectTransform:
		fmt.Fprintf(b, "src=%s fields=%s", ref(n.ProjectSrc), strings.Join(sortedCopy(n.ProjectFields), ","))
	case ir.KindFieldAccess:
		fmt.Fprintf(b, "src=%s field=%s", ref(n.FieldSrc), n.FieldName)
	case ir.KindConditional:
		fmt.Fprintf(b, "test=%s then=%s else=%s", ref(n.CondTest), ref(n.CondThen), ref(n.CondElse))
	case ir.KindGuard:
		fmt.Fprintf(b, "src=%s cond=%s", ref(n.GuardSrc), ref(n.GuardCond))
	case ir.KindCoalesce:
		fmt.Fprintf(b, "a=%s b=%s", ref(n.CoalesceA), ref(n.CoalesceB))
	case ir.KindAnd, ir.KindOr:
		fmt.Fprintf(b, "a=%s b=%s", ref(n.BoolA), ref(n.BoolB))
	case ir.KindNot:
		fmt.Fprintf(b, "x=%s", ref(n.BoolX))
	case ir.KindHigherOrder:
		fmt.Fprintf(b, "op=%s list=%s lambda=%s", n.HOOp, ref(n.HOListSrc), lambdaDigest(n.HOLambda))
		for _, name := range sortedKeys(n.HOCapturedInputs) {
			fmt.Fprintf(b, " cap:%s=%s", name, ref(n.HOCapturedInputs[name]))
		}
	case ir.KindMatch:
		fmt.Fprintf(b, "scrutinee=%s", ref(n.MatchScrutinee))
		for _, arm := range n.MatchArms {
			fmt.Fprintf(b, " arm(tag=%s wildcard=%t body=%s)", arm.Tag, arm.Wildcard, ref(arm.Body))
		}
	}
}

func lambdaDigest(l *ir.Lambda) string {
	if l == nil || l.BodyNodes == nil {
		return "-"
	}
	return Structural(l.BodyNodes)
}

func derefID(id *ir.ID) ir.ID {
	if id == nil {
		return ""
	}
	return *id
}

func sortedKeys(m map[string]ir.ID) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
