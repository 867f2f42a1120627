package stdlib

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
)

// Every list method receives a *evaluator.List; the interpreter dispatches on
// the receiver type before calling.

// push(items...) appends in place → the same list
func listPush(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	list := recv.(*evaluator.List)
	list.Items = append(list.Items, args...)
	return list, nil
}

// pop() removes and returns the last item
func listPop(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	list := recv.(*evaluator.List)
	if len(list.Items) == 0 {
		return nil, evaluator.NewError(diagnostics.EEmptyList, nil, nil)
	}
	last := list.Items[len(list.Items)-1]
	list.Items = list.Items[:len(list.Items)-1]
	return last, nil
}

// length() → tiro
func listLength(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewNumber(float64(len(recv.(*evaluator.List).Items))), nil
}

// concat(other) → a new list when other is a list; otherwise appends other
// in place and returns the same list.
func listConcat(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	list := recv.(*evaluator.List)
	if other, ok := args[0].(*evaluator.List); ok {
		items := make([]evaluator.Value, 0, len(list.Items)+len(other.Items))
		items = append(items, list.Items...)
		items = append(items, other.Items...)
		return evaluator.NewList(items), nil
	}
	list.Items = append(list.Items, args[0])
	return list, nil
}

// contains(x) → bool, by deep equality
func listContains(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	for _, item := range recv.(*evaluator.List).Items {
		if evaluator.DeepEqual(item, args[0]) {
			return evaluator.NewBool(true), nil
		}
	}
	return evaluator.NewBool(false), nil
}

// copy() → shallow copy
func listCopy(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	list := recv.(*evaluator.List)
	items := make([]evaluator.Value, len(list.Items))
	copy(items, list.Items)
	return evaluator.NewList(items), nil
}

// clear() empties in place → the same list
func listClear(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	list := recv.(*evaluator.List)
	list.Items = list.Items[:0]
	return list, nil
}

// reverse() reverses in place → the same list
func listReverse(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	list := recv.(*evaluator.List)
	for i, j := 0, len(list.Items)-1; i < j; i, j = i+1, j-1 {
		list.Items[i], list.Items[j] = list.Items[j], list.Items[i]
	}
	return list, nil
}

// sort() sorts ascending in place → the same list. Items must be all numbers
// or all texts.
func listSort(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	list := recv.(*evaluator.List)
	for _, item := range list.Items {
		if _, ok := evaluator.Compare(list.Items[0], item); !ok {
			bad := item
			if _, ok := evaluator.Compare(list.Items[0], list.Items[0]); !ok {
				bad = list.Items[0]
			}
			return nil, evaluator.NewError(diagnostics.EInvalidOperand, nil, diagnostics.Args{
				"operator":  c.Name,
				"type_name": evaluator.TypeName(bad),
			})
		}
	}
	sort.SliceStable(list.Items, func(i, j int) bool {
		cmp, _ := evaluator.Compare(list.Items[i], list.Items[j])
		return cmp < 0
	})
	return list, nil
}

// filter(fn) → new list of the items for which fn returns a truthy value
func listFilter(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	list := recv.(*evaluator.List)
	out := make([]evaluator.Value, 0, len(list.Items))
	for _, item := range snapshotItems(list) {
		keep, err := c.Call(args[0], item)
		if err != nil {
			return nil, err
		}
		if evaluator.Truthiness(keep) {
			out = append(out, item)
		}
	}
	return evaluator.NewList(out), nil
}

// map(fn) → new list of fn(item)
func listMap(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	list := recv.(*evaluator.List)
	items := snapshotItems(list)
	out := make([]evaluator.Value, 0, len(items))
	for _, item := range items {
		val, err := c.Call(args[0], item)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return evaluator.NewList(out), nil
}

// find_index(x) → index of the first item equal to x, or for which x returns
// a truthy value when x is a function; -1 when nothing matches.
func listFindIndex(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	list := recv.(*evaluator.List)
	pred, isFn := args[0].(*evaluator.Function)
	for i, item := range snapshotItems(list) {
		if isFn {
			ok, err := c.Call(pred, item)
			if err != nil {
				return nil, err
			}
			if evaluator.Truthiness(ok) {
				return evaluator.NewNumber(float64(i)), nil
			}
			continue
		}
		if evaluator.DeepEqual(item, args[0]) {
			return evaluator.NewNumber(float64(i)), nil
		}
	}
	return evaluator.NewNumber(-1), nil
}

// slice(start, end?) → new list. Negative bounds count from the end and
// out-of-range bounds are clamped.
func listSlice(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	list := recv.(*evaluator.List)
	n := len(list.Items)

	bound := func(v evaluator.Value, def int) (int, error) {
		if _, isNull := v.(evaluator.Null); isNull {
			return def, nil
		}
		if !evaluator.IsInteger(v) {
			return 0, argTypeError(c, "tiro")
		}
		i := v.(evaluator.Number).Value
		if i < 0 {
			i += float64(n)
		}
		return int(math.Max(0, math.Min(i, float64(n)))), nil
	}

	start, err := bound(arg(args, 0), 0)
	if err != nil {
		return nil, err
	}
	end, err := bound(arg(args, 1), n)
	if err != nil {
		return nil, err
	}
	if end < start {
		end = start
	}
	items := make([]evaluator.Value, end-start)
	copy(items, list.Items[start:end])
	return evaluator.NewList(items), nil
}

// get(index) → item. The index may be a number or numeric text.
func listGet(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	list := recv.(*evaluator.List)
	idx, err := listIndex(c, args[0], len(list.Items))
	if err != nil {
		return nil, err
	}
	return list.Items[idx], nil
}

// set(index, value) → value
func listSet(c *evaluator.CallContext, recv evaluator.Value, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 2); err != nil {
		return nil, err
	}
	list := recv.(*evaluator.List)
	idx, err := listIndex(c, args[0], len(list.Items))
	if err != nil {
		return nil, err
	}
	list.Items[idx] = args[1]
	return args[1], nil
}

func listIndex(c *evaluator.CallContext, v evaluator.Value, length int) (int, error) {
	var f float64
	switch val := v.(type) {
	case evaluator.Number:
		if math.IsNaN(val.Value) || math.IsInf(val.Value, 0) {
			return 0, argTypeError(c, "tiro")
		}
		f = math.Trunc(val.Value)
	case evaluator.String:
		i, err := strconv.Atoi(strings.TrimSpace(val.Value))
		if err != nil {
			return 0, argTypeError(c, "tiro")
		}
		f = float64(i)
	default:
		return 0, argTypeError(c, "tiro")
	}
	if f < 0 || f >= float64(length) {
		return 0, evaluator.NewError(diagnostics.EIndexOutOfRange, nil, diagnostics.Args{"index": evaluator.FormatNumber(f)})
	}
	return int(f), nil
}

// snapshotItems copies the items so callbacks that mutate the list do not
// change the iteration.
func snapshotItems(list *evaluator.List) []evaluator.Value {
	items := make([]evaluator.Value, len(list.Items))
	copy(items, list.Items)
	return items
}
