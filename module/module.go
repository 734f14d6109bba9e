// Package module implements the host-to-core module registration surface
// (spec.md §6): a registered module exposes a name, namespace, version, an
// ordered input signature, an output type, and an evaluator the core
// treats as an opaque box addressable only by name and declared types.
package module

import (
	"context"
	"sort"

	"github.com/constellation-run/constellation/types"
)

// Param is one named, typed, ordered module parameter.
type Param struct {
	Name string
	Type *types.Type
}

// Signature describes a module's callable shape.
type Signature struct {
	Namespace string
	Version   string
	Inputs    []Param
	Output    *types.Type
}

// Evaluator runs a module given its bound argument values. It may be pure
// or may fail; failures are wrapped by the runtime as ModuleFailure.
type Evaluator func(ctx context.Context, args map[string]types.Value) (types.Value, error)

// Module is a registered, callable unit of work.
type Module struct {
	Name      string
	Signature Signature
	Eval      Evaluator
}

// Registry holds modules addressable by name (the teacher's dag.Registry
// sorted-listing idiom, generalized from DAG nodes to module
// definitions).
type Registry struct {
	modules map[string]*Module
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Register adds a module, replacing any existing module of the same name.
func (r *Registry) Register(m *Module) {
	r.modules[m.Name] = m
}

// Lookup returns a module by name.
func (r *Registry) Lookup(name string) (*Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Names returns every registered module name in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
