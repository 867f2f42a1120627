package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/soplang/soplang/pkg/ast"
)

// Stringify renders v the way qor, qoraal() and text concatenation show it.
// Booleans print as run/been, null as null, integral numbers without a
// fraction. Object keys are quoted, nested values are not.
func Stringify(v Value) string {
	var b strings.Builder
	writeValue(&b, v, map[any]bool{})
	return b.String()
}

func writeValue(b *strings.Builder, v Value, active map[any]bool) {
	switch val := v.(type) {
	case nil, Null:
		b.WriteString("null")
	case Bool:
		if val.Value {
			b.WriteString("run")
		} else {
			b.WriteString("been")
		}
	case Number:
		b.WriteString(FormatNumber(val.Value))
	case String:
		b.WriteString(val.Value)
	case *List:
		if active[val] {
			b.WriteString("[...]")
			return
		}
		active[val] = true
		defer delete(active, val)
		b.WriteByte('[')
		for i, item := range val.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, item, active)
		}
		b.WriteByte(']')
	case *Object:
		if active[val] {
			b.WriteString("{...}")
			return
		}
		active[val] = true
		defer delete(active, val)
		b.WriteByte('{')
		for i, kv := range val.Pairs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(quoteKey(kv.Key))
			b.WriteString(": ")
			writeValue(b, kv.Value, active)
		}
		b.WriteByte('}')
	case *Function:
		b.WriteString("<hawl ")
		b.WriteString(val.Name)
		b.WriteByte('>')
	}
}

// quoteKey wraps a key in single quotes, switching to double quotes when the
// key itself holds a single quote and no double quote.
func quoteKey(k string) string {
	if strings.Contains(k, "'") && !strings.Contains(k, `"`) {
		return `"` + k + `"`
	}
	r := strings.NewReplacer(`\`, `\\`, "'", `\'`, "\n", `\n`, "\t", `\t`)
	return "'" + r.Replace(k) + "'"
}

// FormatNumber formats a float64 as an integer string if it's a whole number.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e18 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// IsInteger reports whether v is a Number without a fractional part.
func IsInteger(v Value) bool {
	n, ok := v.(Number)
	return ok && !math.IsInf(n.Value, 0) && n.Value == math.Trunc(n.Value)
}

// TypeName returns the name nooc() reports for v.
func TypeName(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "maran"
	case Bool:
		return "bool"
	case Number:
		if IsInteger(val) {
			return "tiro"
		}
		return "jajab"
	case String:
		return "qoraal"
	case *List:
		return "liis"
	case *Object:
		return "shey"
	case *Function:
		return "hawl"
	default:
		return "aan la aqoon"
	}
}

// DeepEqual recursively compares two values. Lists and objects compare by
// contents; object key order does not matter. A pair of containers met again
// while it is still being compared counts as equal, so cyclic values terminate.
func DeepEqual(a, b Value) bool {
	return deepEqual(a, b, nil)
}

type valuePair struct{ a, b Value }

func deepEqual(a, b Value, seen map[valuePair]bool) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}

	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok

	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value

	case Number:
		bv, ok := b.(Number)
		return ok && av.Value == bv.Value

	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value

	case *List:
		bv, ok := b.(*List)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		if len(av.Items) != len(bv.Items) {
			return false
		}
		if seen[valuePair{av, bv}] {
			return true
		}
		if seen == nil {
			seen = make(map[valuePair]bool)
		}
		seen[valuePair{av, bv}] = true
		for i := range av.Items {
			if !deepEqual(av.Items[i], bv.Items[i], seen) {
				return false
			}
		}
		return true

	case *Object:
		bv, ok := b.(*Object)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		if av.Len() != bv.Len() {
			return false
		}
		if seen[valuePair{av, bv}] {
			return true
		}
		if seen == nil {
			seen = make(map[valuePair]bool)
		}
		seen[valuePair{av, bv}] = true
		for _, kv := range av.Pairs {
			bVal, found := bv.Get(kv.Key)
			if !found || !deepEqual(kv.Value, bVal, seen) {
				return false
			}
		}
		return true

	case *Function:
		bv, ok := b.(*Function)
		if !ok {
			return false
		}
		if av.Decl != nil || bv.Decl != nil {
			return av.Decl == bv.Decl
		}
		return av.Name == bv.Name
	}

	return false
}

// typeMatches reports whether v satisfies a declared static type.
func typeMatches(t ast.StaticType, v Value) bool {
	switch t {
	case ast.TypeNumber:
		_, ok := v.(Number)
		return ok
	case ast.TypeString:
		_, ok := v.(String)
		return ok
	case ast.TypeBool:
		_, ok := v.(Bool)
		return ok
	case ast.TypeList:
		_, ok := v.(*List)
		return ok
	case ast.TypeObject:
		_, ok := v.(*Object)
		return ok
	}
	return true
}
