package cache

import (
	"crypto/sha256"
	"encoding/base64"
	"sort"
	"strings"

	"github.com/constellation-run/constellation/types"
)

// Key derives a deterministic cache key from a module call (spec.md
// §4.7): SHA-256 of a canonical serialization of the module name, its
// sorted inputs, and an optional version, encoded URL-safe without
// padding. Two input maps with equal canonical form always yield the
// same key regardless of insertion order (invariant 8).
func Key(module string, inputs map[string]types.Value, version string) string {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(module)
	b.WriteByte('\x00')
	b.WriteString(version)
	for _, name := range names {
		b.WriteByte('\x00')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(types.Canonical(inputs[name]))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
