package evaluator_test

import (
	"math"
	"testing"

	"github.com/soplang/soplang/pkg/evaluator"
)

func TestTruthiness(t *testing.T) {
	tests := []struct {
		value    evaluator.Value
		expected bool
	}{
		{evaluator.NewNull(), false},
		{evaluator.NewBool(false), false},
		{evaluator.NewBool(true), true},
		{evaluator.NewNumber(0), false},
		{evaluator.NewNumber(1), true},
		{evaluator.NewNumber(-1), true},
		{evaluator.NewString(""), false},
		{evaluator.NewString("false"), false},
		{evaluator.NewString("False"), false},
		{evaluator.NewString("FALSE"), true},
		{evaluator.NewString("0"), true},
		{evaluator.NewString("hello"), true},
		{evaluator.NewList(nil), true},
		{evaluator.NewObject(nil), true},
	}

	for i, tt := range tests {
		got := evaluator.Truthiness(tt.value)
		if got != tt.expected {
			t.Errorf("test %d: Truthiness(%v) = %v, want %v", i, tt.value, got, tt.expected)
		}
	}
}

func TestObjectOrderPreserved(t *testing.T) {
	obj := evaluator.NewObject([]evaluator.KeyValue{
		{Key: "b", Value: evaluator.NewNumber(2)},
		{Key: "a", Value: evaluator.NewNumber(1)},
		{Key: "c", Value: evaluator.NewNumber(3)},
		{Key: "a", Value: evaluator.NewNumber(10)},
	})

	keys := obj.Keys()
	expected := []string{"b", "a", "c"}
	if len(keys) != len(expected) {
		t.Fatalf("got keys %v, want %v", keys, expected)
	}
	for i, k := range keys {
		if k != expected[i] {
			t.Errorf("key %d: got %q, want %q", i, k, expected[i])
		}
	}
	if v, _ := obj.Get("a"); v.(evaluator.Number).Value != 10 {
		t.Errorf("duplicate key should overwrite, got %v", v)
	}
}

func TestObjectGetSetDelete(t *testing.T) {
	obj := evaluator.NewObject([]evaluator.KeyValue{
		{Key: "x", Value: evaluator.NewNumber(10)},
	})

	val, ok := obj.Get("x")
	if !ok {
		t.Fatal("expected key 'x' to exist")
	}
	if n, isNum := val.(evaluator.Number); !isNum || n.Value != 10 {
		t.Errorf("got %v, want Number{10}", val)
	}

	if _, ok := obj.Get("missing"); ok {
		t.Error("expected key 'missing' to not exist")
	}

	obj.Set("y", evaluator.NewString("hello"))
	obj.Set("z", evaluator.NewBool(true))
	if !obj.Delete("y") {
		t.Error("Delete should report a present key")
	}
	if obj.Delete("y") {
		t.Error("Delete should report an absent key")
	}
	if obj.Has("y") || !obj.Has("z") || obj.Len() != 2 {
		t.Errorf("unexpected object after delete: %s", evaluator.Stringify(obj))
	}
	// Lookups after a delete must use the rebuilt index.
	if v, ok := obj.Get("z"); !ok || !evaluator.DeepEqual(v, evaluator.NewBool(true)) {
		t.Errorf("Get(z) after delete = %v, %v", v, ok)
	}
}

func TestObjectCopyIsShallow(t *testing.T) {
	inner := evaluator.NewList([]evaluator.Value{evaluator.NewNumber(1)})
	obj := evaluator.NewObject([]evaluator.KeyValue{{Key: "l", Value: inner}})
	cp := obj.Copy()
	cp.Set("extra", evaluator.NewNull())
	if obj.Has("extra") {
		t.Error("copy should not share keys")
	}
	v, _ := cp.Get("l")
	if v.(*evaluator.List) != inner {
		t.Error("copy should share nested values")
	}
}

func TestStringify(t *testing.T) {
	nested := evaluator.NewObject([]evaluator.KeyValue{
		{Key: "name", Value: evaluator.NewString("Cali")},
		{Key: "tags", Value: evaluator.NewList([]evaluator.Value{evaluator.NewString("a"), evaluator.NewNumber(2)})},
		{Key: "ok", Value: evaluator.NewBool(false)},
		{Key: "it's", Value: evaluator.NewNull()},
	})

	tests := []struct {
		name  string
		value evaluator.Value
		want  string
	}{
		{"null", evaluator.NewNull(), "null"},
		{"true", evaluator.NewBool(true), "run"},
		{"false", evaluator.NewBool(false), "been"},
		{"int", evaluator.NewNumber(42), "42"},
		{"negative", evaluator.NewNumber(-3), "-3"},
		{"float", evaluator.NewNumber(2.5), "2.5"},
		{"nan", evaluator.NewNumber(math.NaN()), "nan"},
		{"inf", evaluator.NewNumber(math.Inf(-1)), "-inf"},
		{"string", evaluator.NewString("salaan"), "salaan"},
		{"empty list", evaluator.NewList(nil), "[]"},
		{"object", nested, `{'name': Cali, 'tags': [a, 2], 'ok': been, "it's": null}`},
		{"function", &evaluator.Function{Name: "f"}, "<hawl f>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluator.Stringify(tt.value); got != tt.want {
				t.Errorf("Stringify = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringifyCycles(t *testing.T) {
	list := evaluator.NewList(nil)
	list.Items = append(list.Items, evaluator.NewNumber(1), list)
	if got := evaluator.Stringify(list); got != "[1, [...]]" {
		t.Errorf("got %q", got)
	}

	obj := evaluator.NewObject(nil)
	obj.Set("self", obj)
	if got := evaluator.Stringify(obj); got != "{'self': {...}}" {
		t.Errorf("got %q", got)
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		value evaluator.Value
		want  string
	}{
		{evaluator.NewNumber(3), "tiro"},
		{evaluator.NewNumber(3.5), "jajab"},
		{evaluator.NewString("x"), "qoraal"},
		{evaluator.NewBool(true), "bool"},
		{evaluator.NewList(nil), "liis"},
		{evaluator.NewObject(nil), "shey"},
		{evaluator.NewNull(), "maran"},
		{&evaluator.Function{Name: "f"}, "hawl"},
	}
	for _, tt := range tests {
		if got := evaluator.TypeName(tt.value); got != tt.want {
			t.Errorf("TypeName(%s) = %q, want %q", evaluator.Stringify(tt.value), got, tt.want)
		}
	}
}

func TestDeepEqual(t *testing.T) {
	a := evaluator.NewObject([]evaluator.KeyValue{
		{Key: "x", Value: evaluator.NewNumber(1)},
		{Key: "y", Value: evaluator.NewList([]evaluator.Value{evaluator.NewString("a")})},
	})
	b := evaluator.NewObject([]evaluator.KeyValue{
		{Key: "y", Value: evaluator.NewList([]evaluator.Value{evaluator.NewString("a")})},
		{Key: "x", Value: evaluator.NewNumber(1)},
	})
	if !evaluator.DeepEqual(a, b) {
		t.Error("objects with the same entries in different order should be equal")
	}
	b.Set("z", evaluator.NewNull())
	if evaluator.DeepEqual(a, b) {
		t.Error("objects with different key sets should differ")
	}
	if evaluator.DeepEqual(evaluator.NewNumber(1), evaluator.NewString("1")) {
		t.Error("number and text should differ")
	}
	if !evaluator.DeepEqual(nil, evaluator.NewNull()) {
		t.Error("nil should equal null")
	}
}

func TestDeepEqualCycles(t *testing.T) {
	a := evaluator.NewList(nil)
	a.Items = append(a.Items, a)
	b := evaluator.NewList(nil)
	b.Items = append(b.Items, b)
	if !evaluator.DeepEqual(a, b) {
		t.Error("self-containing lists of the same shape should be equal")
	}

	c := evaluator.NewList(nil)
	c.Items = append(c.Items, evaluator.NewNumber(1), c)
	d := evaluator.NewList(nil)
	d.Items = append(d.Items, evaluator.NewNumber(2), d)
	if evaluator.DeepEqual(c, d) {
		t.Error("cyclic lists with different items should differ")
	}

	x := evaluator.NewObject(nil)
	x.Set("self", x)
	y := evaluator.NewObject(nil)
	y.Set("self", y)
	if !evaluator.DeepEqual(x, y) {
		t.Error("self-containing objects of the same shape should be equal")
	}
	if evaluator.DeepEqual(a, x) {
		t.Error("list and object should differ")
	}
}

func TestValueToJSON(t *testing.T) {
	obj := evaluator.NewObject([]evaluator.KeyValue{
		{Key: "b", Value: evaluator.NewNumber(2)},
		{Key: "a", Value: evaluator.NewList([]evaluator.Value{evaluator.NewNumber(1.5), evaluator.NewNull(), evaluator.NewBool(true)})},
	})
	want := `{"b":2,"a":[1.5,null,true]}`
	if got := evaluator.ValueToJSONString(obj); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
