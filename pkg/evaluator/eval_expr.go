package evaluator

import (
	"math"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
)

func (in *Interpreter) eval(expr ast.Expr) (Value, error) {
	if expr == nil {
		return NewNull(), nil
	}

	switch e := expr.(type) {
	case *ast.NumberLit:
		return NewNumber(e.Value), nil

	case *ast.StringLit:
		return NewString(e.Value), nil

	case *ast.BoolLit:
		return NewBool(e.Value), nil

	case *ast.NullLit:
		return NewNull(), nil

	case *ast.Ident:
		return in.evalIdent(e)

	case *ast.ListLit:
		items := make([]Value, 0, len(e.Elements))
		for _, elem := range e.Elements {
			val, err := in.eval(elem)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return NewList(items), nil

	case *ast.ObjectLit:
		obj := NewObject(nil)
		for _, entry := range e.Entries {
			val, err := in.eval(entry.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(entry.Key, val)
		}
		return obj, nil

	case *ast.BinaryExpr:
		return in.evalBinary(e)

	case *ast.UnaryExpr:
		return in.evalUnary(e)

	case *ast.PropertyExpr:
		recv, err := in.eval(e.Object)
		if err != nil {
			return nil, err
		}
		obj, ok := recv.(*Object)
		if !ok {
			span := e.Span
			return nil, NewError(diagnostics.EPropertyAccess, &span, diagnostics.Args{"prop": e.Name})
		}
		val, found := obj.Get(e.Name)
		if !found {
			span := e.Span
			return nil, NewError(diagnostics.EPropertyNotFound, &span, diagnostics.Args{"prop_name": e.Name})
		}
		return val, nil

	case *ast.IndexExpr:
		recv, err := in.eval(e.Object)
		if err != nil {
			return nil, err
		}
		list, ok := recv.(*List)
		if !ok {
			span := e.Span
			return nil, NewError(diagnostics.EIndexAccess, &span, nil)
		}
		idx, err := in.evalIndex(e, len(list.Items))
		if err != nil {
			return nil, err
		}
		return list.Items[idx], nil

	case *ast.CallExpr:
		return in.evalCall(e)

	case *ast.MethodCallExpr:
		return in.evalMethodCall(e)

	case *ast.NewExpr:
		return in.evalNew(e)

	default:
		span := expr.NodeSpan()
		return nil, NewError(diagnostics.EUnknownNodeType, &span, diagnostics.Args{"node_type": expr.Kind()})
	}
}

// evalIdent resolves a variable. A name that is not a variable but names a
// user function or builtin evaluates to a function reference.
func (in *Interpreter) evalIdent(e *ast.Ident) (Value, error) {
	if val, ok := in.env.Get(e.Name); ok {
		return val, nil
	}
	if fn := in.lookupFunction(e.Name); fn != nil {
		return fn, nil
	}
	span := e.Span
	return nil, NewError(diagnostics.EUndefinedVariable, &span, diagnostics.Args{"name": e.Name})
}

// evalIndex evaluates the index of e and checks it against length.
func (in *Interpreter) evalIndex(e *ast.IndexExpr, length int) (int, error) {
	idxVal, err := in.eval(e.Index)
	if err != nil {
		return 0, err
	}
	span := e.Span
	if !IsInteger(idxVal) {
		return 0, NewError(diagnostics.EInvalidOperand, &span, diagnostics.Args{"operator": "[]", "type_name": TypeName(idxVal)})
	}
	f := idxVal.(Number).Value
	if f < 0 || f >= float64(length) {
		return 0, NewError(diagnostics.EIndexOutOfRange, &span, diagnostics.Args{"index": FormatNumber(f)})
	}
	return int(f), nil
}

func (in *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := in.eval(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.eval(e.Right)
	if err != nil {
		return nil, err
	}

	span := e.Span
	invalid := func(v Value) error {
		return NewError(diagnostics.EInvalidOperand, &span, diagnostics.Args{"operator": string(e.Op), "type_name": TypeName(v)})
	}

	switch e.Op {
	case ast.OpAdd:
		_, lStr := left.(String)
		_, rStr := right.(String)
		if lStr || rStr {
			return NewString(Stringify(left) + Stringify(right)), nil
		}
		if lList, ok := left.(*List); ok {
			rList, ok := right.(*List)
			if !ok {
				return nil, invalid(right)
			}
			items := make([]Value, 0, len(lList.Items)+len(rList.Items))
			items = append(items, lList.Items...)
			items = append(items, rList.Items...)
			return NewList(items), nil
		}
		lNum, ok := left.(Number)
		if !ok {
			return nil, invalid(left)
		}
		rNum, ok := right.(Number)
		if !ok {
			return nil, invalid(right)
		}
		return NewNumber(lNum.Value + rNum.Value), nil

	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		lNum, ok := left.(Number)
		if !ok {
			return nil, invalid(left)
		}
		rNum, ok := right.(Number)
		if !ok {
			return nil, invalid(right)
		}
		switch e.Op {
		case ast.OpSub:
			return NewNumber(lNum.Value - rNum.Value), nil
		case ast.OpMul:
			return NewNumber(lNum.Value * rNum.Value), nil
		case ast.OpDiv:
			if rNum.Value == 0 {
				return nil, NewError(diagnostics.EDivisionByZero, &span, nil)
			}
			return NewNumber(lNum.Value / rNum.Value), nil
		default:
			if rNum.Value == 0 {
				return nil, NewError(diagnostics.EModuloByZero, &span, nil)
			}
			return NewNumber(floorMod(lNum.Value, rNum.Value)), nil
		}

	case ast.OpEqEq:
		return NewBool(DeepEqual(left, right)), nil

	case ast.OpNeq:
		return NewBool(!DeepEqual(left, right)), nil

	case ast.OpGt, ast.OpLt, ast.OpGtEq, ast.OpLtEq:
		var cmp int
		switch l := left.(type) {
		case Number:
			r, ok := right.(Number)
			if !ok {
				return nil, invalid(right)
			}
			cmp = compareNumbers(l.Value, r.Value)
		case String:
			r, ok := right.(String)
			if !ok {
				return nil, invalid(right)
			}
			cmp = compareStrings(l.Value, r.Value)
		default:
			return nil, invalid(left)
		}
		switch e.Op {
		case ast.OpGt:
			return NewBool(cmp > 0), nil
		case ast.OpLt:
			return NewBool(cmp < 0), nil
		case ast.OpGtEq:
			return NewBool(cmp >= 0), nil
		default:
			return NewBool(cmp <= 0), nil
		}

	case ast.OpAnd:
		return NewBool(Truthiness(left) && Truthiness(right)), nil

	case ast.OpOr:
		return NewBool(Truthiness(left) || Truthiness(right)), nil
	}

	return nil, NewError(diagnostics.EUnknownOperator, &span, diagnostics.Args{"operator": string(e.Op)})
}

func (in *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := in.eval(e.Operand)
	if err != nil {
		return nil, err
	}
	span := e.Span
	switch e.Op {
	case ast.OpNot:
		return NewBool(!Truthiness(operand)), nil
	case ast.OpNeg:
		if num, ok := operand.(Number); ok {
			return NewNumber(-num.Value), nil
		}
		return nil, NewError(diagnostics.EInvalidOperand, &span, diagnostics.Args{"operator": "-", "type_name": TypeName(operand)})
	}
	return nil, NewError(diagnostics.EUnknownOperator, &span, diagnostics.Args{"operator": string(e.Op)})
}

// floorMod is modulo with the sign of the divisor: -7 % 3 == 2.
func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}

func compareNumbers(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Compare orders two numbers or two texts. ok is false for any other pair.
func Compare(a, b Value) (cmp int, ok bool) {
	switch l := a.(type) {
	case Number:
		if r, isNum := b.(Number); isNum {
			return compareNumbers(l.Value, r.Value), true
		}
	case String:
		if r, isStr := b.(String); isStr {
			return compareStrings(l.Value, r.Value), true
		}
	}
	return 0, false
}
