package evaluator

import (
	"encoding/json"
	"math"
)

// ValueToJSON marshals a Value to JSON bytes.
// Objects preserve key order. Numbers output integers without decimal point.
// A container that contains itself is cut off with null.
func ValueToJSON(v Value) ([]byte, error) {
	raw := valueToRaw(v, map[any]bool{})
	return json.Marshal(raw)
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// MarshalJSON lets objects appear directly in trace events.
func (o *Object) MarshalJSON() ([]byte, error) {
	return ValueToJSON(o)
}

func valueToRaw(v Value, active map[any]bool) any {
	switch val := v.(type) {
	case nil, Null:
		return nil

	case Bool:
		return val.Value

	case Number:
		// Output integers without decimal point
		if IsInteger(val) && math.Abs(val.Value) < 1e18 {
			return int64(val.Value)
		}
		if math.IsInf(val.Value, 0) || math.IsNaN(val.Value) {
			return FormatNumber(val.Value)
		}
		return val.Value

	case String:
		return val.Value

	case *List:
		if active[val] {
			return nil
		}
		active[val] = true
		defer delete(active, val)
		items := make([]any, len(val.Items))
		for i, item := range val.Items {
			items[i] = valueToRaw(item, active)
		}
		return items

	case *Object:
		if active[val] {
			return nil
		}
		active[val] = true
		defer delete(active, val)
		rec := &orderedRecord{keys: make([]string, len(val.Pairs)), values: make([]any, len(val.Pairs))}
		for i, kv := range val.Pairs {
			rec.keys[i] = kv.Key
			rec.values[i] = valueToRaw(kv.Value, active)
		}
		return rec

	case *Function:
		return "<hawl " + val.Name + ">"
	}

	return nil
}

// orderedRecord preserves key order in JSON output.
type orderedRecord struct {
	keys   []string
	values []any
}

func (o *orderedRecord) MarshalJSON() ([]byte, error) {
	if len(o.keys) == 0 {
		return []byte("{}"), nil
	}

	buf := []byte{'{'}
	for i, key := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyBytes...)
		buf = append(buf, ':')

		valBytes, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, valBytes...)
	}
	buf = append(buf, '}')
	return buf, nil
}
