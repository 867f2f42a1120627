package stdlib

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
)

// nooc(x) → qoraal
func stdlibType(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	return evaluator.NewString(evaluator.TypeName(args[0])), nil
}

// tiro(x) → tiro, truncated toward zero
func stdlibInt(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	f, ok := toFloat(args[0])
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, cannotConvert(args[0], "tiro")
	}
	return evaluator.NewNumber(math.Trunc(f)), nil
}

// jajab(x) → jajab
func stdlibFloat(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	f, ok := toFloat(args[0])
	if !ok {
		return nil, cannotConvert(args[0], "jajab")
	}
	return evaluator.NewNumber(f), nil
}

// qoraal(x) → qoraal
func stdlibString(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	if len(args) == 0 {
		return evaluator.NewString(""), nil
	}
	return evaluator.NewString(evaluator.Stringify(args[0])), nil
}

// bool(x) → bool
func stdlibBool(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewBool(evaluator.Truthiness(arg(args, 0))), nil
}

// liis(items...) → liis
func stdlibList(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	items := make([]evaluator.Value, len(args))
	copy(items, args)
	return evaluator.NewList(items), nil
}

// shey() → empty shey; shey(obj) → shallow copy
func stdlibObject(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	if len(args) == 0 {
		return evaluator.NewObject(nil), nil
	}
	obj, ok := args[0].(*evaluator.Object)
	if !ok {
		return nil, argTypeError(c, "shey")
	}
	return obj.Copy(), nil
}

// dherer(x) → length of a list, text or object
func stdlibLen(c *evaluator.CallContext, args []evaluator.Value) (evaluator.Value, error) {
	if err := wantArgs(c, args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case *evaluator.List:
		return evaluator.NewNumber(float64(len(v.Items))), nil
	case evaluator.String:
		return evaluator.NewNumber(float64(utf8.RuneCountInString(v.Value))), nil
	case *evaluator.Object:
		return evaluator.NewNumber(float64(v.Len())), nil
	}
	return nil, argTypeError(c, "liis, qoraal ama shey")
}

func toFloat(v evaluator.Value) (float64, bool) {
	switch val := v.(type) {
	case evaluator.Number:
		return val.Value, true
	case evaluator.Bool:
		if val.Value {
			return 1, true
		}
		return 0, true
	case evaluator.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(val.Value), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func cannotConvert(v evaluator.Value, target string) error {
	return evaluator.NewError(diagnostics.ECannotConvert, nil, diagnostics.Args{
		"value":       evaluator.Stringify(v),
		"target_type": target,
	})
}
