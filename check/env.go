package check

import "github.com/constellation-run/constellation/types"

// Env is the checker's lexical environment: variable name -> resolved
// type. Lookups walk outward through parent scopes so lambda bodies can
// see outer bindings (candidates for closure capture, spec.md §4.2).
type Env struct {
	parent *Env
	vars   map[string]*types.Type
}

// NewEnv creates a root environment.
func NewEnv() *Env {
	return &Env{vars: make(map[string]*types.Type)}
}

// Child creates a nested scope, e.g. a lambda body.
func (e *Env) Child() *Env {
	return &Env{parent: e, vars: make(map[string]*types.Type)}
}

// Bind introduces a name into the current scope.
func (e *Env) Bind(name string, t *types.Type) {
	e.vars[name] = t
}

// Lookup resolves a name, searching outward through parent scopes. The
// bool return reports whether the name was found in any scope; use
// LocalLookup or IsLocal to tell a binding of this scope from an outer one.
func (e *Env) Lookup(name string) (*types.Type, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// LocalLookup resolves a name only within this scope, not its parents.
func (e *Env) LocalLookup(name string) (*types.Type, bool) {
	t, ok := e.vars[name]
	return t, ok
}

// IsLocal reports whether name is bound in this scope specifically (as
// opposed to an ancestor scope) - used to distinguish lambda parameters
// from captured outer variables.
func (e *Env) IsLocal(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Parent exposes the enclosing scope, or nil at the root.
func (e *Env) Parent() *Env { return e.parent }
