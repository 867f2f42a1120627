// Package stdlib provides the Soplang builtin functions and the list and
// object method tables.
package stdlib

import (
	"github.com/soplang/soplang/pkg/evaluator"
)

// Registry holds registered builtins and methods.
type Registry struct {
	fns     map[string]*evaluator.Builtin
	lists   map[string]*evaluator.Method
	objects map[string]*evaluator.Method
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns:     make(map[string]*evaluator.Builtin),
		lists:   make(map[string]*evaluator.Method),
		objects: make(map[string]*evaluator.Method),
	}
}

// Register adds a free function under its name and any aliases.
func (r *Registry) Register(fn evaluator.Builtin, aliases ...string) {
	r.fns[fn.Name] = &fn
	for _, alias := range aliases {
		r.fns[alias] = &evaluator.Builtin{Name: alias, Execute: fn.Execute}
	}
}

// RegisterListMethod adds a list method under its name and any aliases.
func (r *Registry) RegisterListMethod(m evaluator.Method, aliases ...string) {
	registerMethod(r.lists, m, aliases)
}

// RegisterObjectMethod adds an object method under its name and any aliases.
func (r *Registry) RegisterObjectMethod(m evaluator.Method, aliases ...string) {
	registerMethod(r.objects, m, aliases)
}

func registerMethod(table map[string]*evaluator.Method, m evaluator.Method, aliases []string) {
	table[m.Name] = &m
	for _, alias := range aliases {
		table[alias] = &evaluator.Method{Name: alias, Execute: m.Execute}
	}
}

// Get retrieves a free function by name.
func (r *Registry) Get(name string) *evaluator.Builtin {
	return r.fns[name]
}

// All returns all registered free functions.
func (r *Registry) All() map[string]*evaluator.Builtin {
	return r.fns
}

// ListMethods returns the list method table.
func (r *Registry) ListMethods() map[string]*evaluator.Method {
	return r.lists
}

// ObjectMethods returns the object method table.
func (r *Registry) ObjectMethods() map[string]*evaluator.Method {
	return r.objects
}

// Default returns a registry with every builtin and method registered.
func Default() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
