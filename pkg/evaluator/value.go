// Package evaluator implements the Soplang tree-walking interpreter.
package evaluator

import (
	"github.com/soplang/soplang/pkg/ast"
)

// Value is the interface for all Soplang runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	soplangValue() // sealed marker
}

// Null represents the absent value (`null`, nooc "maran").
type Null struct{}

func (Null) soplangValue() {}

// Bool represents run/been.
type Bool struct {
	Value bool
}

func (Bool) soplangValue() {}

// Number represents every numeric value; integral values print without a fraction.
type Number struct {
	Value float64
}

func (Number) soplangValue() {}

// String represents a text value.
type String struct {
	Value string
}

func (String) soplangValue() {}

// List is an ordered, mutable list. Lists are shared by reference: every
// variable holding the same *List observes mutations through any of them.
type List struct {
	Items []Value
}

func (*List) soplangValue() {}

// KeyValue is a key-value pair in an ordered object.
type KeyValue struct {
	Key   string
	Value Value
}

// Object is a mutable mapping from text keys to values. Insertion order is
// preserved via the Pairs slice. Objects are shared by reference like lists.
type Object struct {
	Pairs []KeyValue
	index map[string]int // lazy index for lookups
}

func (*Object) soplangValue() {}

// Function is a callable value: either a user-defined `hawl` or a builtin.
type Function struct {
	Name    string
	Decl    *ast.FuncDecl
	Builtin *Builtin
}

func (*Function) soplangValue() {}

// NewNull creates a null value.
func NewNull() Value {
	return Null{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a text value.
func NewString(s string) Value {
	return String{Value: s}
}

// NewList creates a list value that owns items.
func NewList(items []Value) *List {
	if items == nil {
		items = []Value{}
	}
	return &List{Items: items}
}

// NewObject creates an object from key-value pairs. Later duplicates overwrite
// earlier ones while keeping the first key position.
func NewObject(pairs []KeyValue) *Object {
	o := &Object{Pairs: make([]KeyValue, 0, len(pairs))}
	for _, kv := range pairs {
		o.Set(kv.Key, kv.Value)
	}
	return o
}

func (o *Object) ensureIndex() {
	if o.index == nil {
		o.index = make(map[string]int, len(o.Pairs))
		for i, kv := range o.Pairs {
			o.index[kv.Key] = i
		}
	}
}

// Get retrieves a value by key.
func (o *Object) Get(key string) (Value, bool) {
	o.ensureIndex()
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.Pairs[i].Value, true
}

// Set sets a value by key, preserving insertion order.
func (o *Object) Set(key string, val Value) {
	o.ensureIndex()
	if i, ok := o.index[key]; ok {
		o.Pairs[i].Value = val
		return
	}
	o.index[key] = len(o.Pairs)
	o.Pairs = append(o.Pairs, KeyValue{Key: key, Value: val})
}

// Delete removes key if present and reports whether it was there.
func (o *Object) Delete(key string) bool {
	o.ensureIndex()
	i, ok := o.index[key]
	if !ok {
		return false
	}
	o.Pairs = append(o.Pairs[:i], o.Pairs[i+1:]...)
	o.index = nil
	return true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.Pairs)
}

// Keys returns all keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Pairs))
	for i, kv := range o.Pairs {
		keys[i] = kv.Key
	}
	return keys
}

// Copy returns a shallow copy of o.
func (o *Object) Copy() *Object {
	pairs := make([]KeyValue, len(o.Pairs))
	copy(pairs, o.Pairs)
	return &Object{Pairs: pairs}
}

// Truthiness returns the boolean interpretation of a value.
// null, been, 0, "", "false" and "False" are falsy; everything else is truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return val.Value
	case Number:
		return val.Value != 0
	case String:
		return val.Value != "" && val.Value != "false" && val.Value != "False"
	default:
		return true
	}
}
