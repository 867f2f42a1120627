package stdlib

import (
	"github.com/soplang/soplang/pkg/evaluator"
)

// keys() → list of keys in insertion order
func objectKeys(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	obj := recv.(*evaluator.Object)
	keys := obj.Keys()
	items := make([]evaluator.Value, len(keys))
	for i, k := range keys {
		items[i] = evaluator.NewString(k)
	}
	return evaluator.NewList(items), nil
}

// values() → list of values in insertion order
func objectValues(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	obj := recv.(*evaluator.Object)
	items := make([]evaluator.Value, len(obj.Pairs))
	for i, kv := range obj.Pairs {
		items[i] = kv.Value
	}
	return evaluator.NewList(items), nil
}

// has(key) → bool
func objectHas(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	key, ok := objectKey(args[0])
	if !ok {
		return evaluator.NewBool(false), nil
	}
	return evaluator.NewBool(recv.(*evaluator.Object).Has(key)), nil
}

// remove(key) deletes key if present → the same object
func objectRemove(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	obj := recv.(*evaluator.Object)
	if key, ok := objectKey(args[0]); ok {
		obj.Delete(key)
	}
	return obj, nil
}

// merge(other) → new object; keys of other win
func objectMerge(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	other, ok := args[0].(*evaluator.Object)
	if !ok {
		return nil, argTypeError(c, "shey")
	}
	out := recv.(*evaluator.Object).Copy()
	for _, kv := range other.Pairs {
		out.Set(kv.Key, kv.Value)
	}
	return out, nil
}

// get(key) → value, or null when the key is missing
func objectGet(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	key, ok := objectKey(args[0])
	if !ok {
		return evaluator.NewNull(), nil
	}
	val, found := recv.(*evaluator.Object).Get(key)
	if !found {
		return evaluator.NewNull(), nil
	}
	return val, nil
}

// set(key, value) → value
func objectSet(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 2); err != nil {
		return nil, err
	}
	key, ok := objectKey(args[0])
	if !ok {
		return nil, argTypeError(c, "qoraal")
	}
	recv.(*evaluator.Object).Set(key, args[1])
	return args[1], nil
}

// objectKey accepts text keys and integral numbers, which are stored under
// their printed form.
func objectKey(v evaluator.Value) (string, bool) {
	switch val := v.(type) {
	case evaluator.String:
		return val.Value, true
	case evaluator.Number:
		if evaluator.IsInteger(val) {
			return evaluator.FormatNumber(val.Value), true
		}
	}
	return "", false
}
