package ast

import "reflect"

var (
	nodeType = reflect.TypeOf((*Node)(nil)).Elem()
	spanType = reflect.TypeOf(Span{})
)

// Dump converts a node tree into plain maps and slices suitable for JSON
// encoding. Every node map carries a "kind" key; spans are omitted unless
// withSpans is set.
func Dump(n Node, withSpans bool) any {
	if n == nil {
		return nil
	}
	return dumpValue(reflect.ValueOf(n), withSpans)
}

func dumpValue(v reflect.Value, withSpans bool) any {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if v.Kind() == reflect.Pointer && v.Type().Implements(nodeType) {
			return dumpNode(v, withSpans)
		}
		return dumpValue(v.Elem(), withSpans)
	case reflect.Slice:
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = dumpValue(v.Index(i), withSpans)
		}
		return out
	case reflect.Struct:
		if v.Type() == spanType {
			return v.Interface()
		}
		return dumpFields(v, withSpans, map[string]any{})
	default:
		return v.Interface()
	}
}

func dumpNode(v reflect.Value, withSpans bool) map[string]any {
	out := map[string]any{"kind": v.Interface().(Node).Kind()}
	return dumpFields(v.Elem(), withSpans, out)
}

func dumpFields(v reflect.Value, withSpans bool, out map[string]any) map[string]any {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Type == spanType && !withSpans {
			continue
		}
		fv := v.Field(i)
		if omitField(fv) {
			continue
		}
		out[lowerFirst(f.Name)] = dumpValue(fv, withSpans)
	}
	return out
}

func omitField(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.String:
		return v.Len() == 0
	}
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
