package evaluator

import (
	"maps"
	"sort"

	"github.com/soplang/soplang/pkg/ast"
)

// Class is the record kept for a `fasalka` declaration.
type Class struct {
	Name    string
	Parent  string
	Methods map[string]*ast.FuncDecl
	Fields  *Object
}

// Environment is the single flat program state: variables, the static types
// declared for some of them, user functions and classes. There is no block
// scoping; function calls snapshot and restore the variable and type maps.
type Environment struct {
	vars    map[string]Value
	types   map[string]ast.StaticType
	funcs   map[string]*ast.FuncDecl
	classes map[string]*Class
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		vars:    make(map[string]Value),
		types:   make(map[string]ast.StaticType),
		funcs:   make(map[string]*ast.FuncDecl),
		classes: make(map[string]*Class),
	}
}

// Get looks up a variable by name.
func (e *Environment) Get(name string) (Value, bool) {
	val, ok := e.vars[name]
	return val, ok
}

// Has checks whether a variable is defined.
func (e *Environment) Has(name string) bool {
	_, ok := e.vars[name]
	return ok
}

// Set binds a variable without any type check.
func (e *Environment) Set(name string, val Value) {
	e.vars[name] = val
}

// Declare binds a variable and records its static type. A dynamic
// redeclaration drops any type recorded by an earlier typed declaration.
func (e *Environment) Declare(name string, t ast.StaticType, val Value) {
	e.vars[name] = val
	if t == ast.TypeDynamic {
		delete(e.types, name)
		return
	}
	e.types[name] = t
}

// TypeOf returns the declared static type of name, or TypeDynamic.
func (e *Environment) TypeOf(name string) ast.StaticType {
	return e.types[name]
}

// Names returns the variable names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Function returns the user-defined function named name.
func (e *Environment) Function(name string) (*ast.FuncDecl, bool) {
	fn, ok := e.funcs[name]
	return fn, ok
}

// DefineFunction registers (or replaces) a user-defined function.
func (e *Environment) DefineFunction(decl *ast.FuncDecl) {
	e.funcs[decl.Name] = decl
}

// Class returns the class named name.
func (e *Environment) Class(name string) (*Class, bool) {
	c, ok := e.classes[name]
	return c, ok
}

// Classes returns the class names in sorted order.
func (e *Environment) Classes() []string {
	names := make([]string, 0, len(e.classes))
	for name := range e.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Functions returns the user function names in sorted order.
func (e *Environment) Functions() []string {
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type snapshot struct {
	vars  map[string]Value
	types map[string]ast.StaticType
}

func (e *Environment) snapshot() snapshot {
	return snapshot{vars: maps.Clone(e.vars), types: maps.Clone(e.types)}
}

func (e *Environment) restore(s snapshot) {
	e.vars = s.vars
	e.types = s.types
}
