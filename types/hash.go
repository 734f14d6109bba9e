package types

import (
	"crypto/sha256"
	"encoding/base64"
)

// Hash returns a content hash of a type, independent of any node identifier
// or declaration order - two structurally equal types always hash equal.
// Used to version cached compilation artifacts keyed in part by the types
// of their inputs (spec.md §4.7 canonical serialization reuses the same
// "sort then tag" discipline).
func Hash(t *Type) string {
	sum := sha256.Sum256([]byte(canonical(t)))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// canonical renders a type into a form stable under field/variant
// reordering - String() already sorts field names, so it doubles as the
// canonical form here.
func canonical(t *Type) string {
	return t.String()
}
