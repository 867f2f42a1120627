// Package validator implements static checks of Soplang programs. Each check
// mirrors a runtime error so `soplang check` can report it without running
// the program.
package validator

import (
	"strconv"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
	"github.com/soplang/soplang/pkg/stdlib"
)

// names collects every name a program can bind: variables, parameters,
// loop and catch variables, functions and classes.
type names struct {
	vars    map[string]bool
	classes map[string]bool
}

func collectNames(program *ast.Program) names {
	n := names{vars: make(map[string]bool), classes: make(map[string]bool)}
	ast.Walk(program, func(node ast.Node) bool {
		switch s := node.(type) {
		case *ast.VarDecl:
			n.vars[s.Name] = true
		case *ast.FuncDecl:
			n.vars[s.Name] = true
			for _, p := range s.Params {
				n.vars[p] = true
			}
		case *ast.ForStmt:
			n.vars[s.Var] = true
		case *ast.TryStmt:
			if s.ErrName != "" {
				n.vars[s.ErrName] = true
			}
		case *ast.ClassDecl:
			n.classes[s.Name] = true
		}
		return true
	})
	return n
}

type validator struct {
	diags    []diagnostics.Diagnostic
	builtins map[string]*evaluator.Builtin
	names    names
	// open is false when the program imports other files; names may then
	// come from elsewhere and lookups are not checked.
	open     bool
	declared map[string]bool // classes declared so far, in source order
	loops    int
	inFunc   bool
}

// Validate performs static analysis on a Soplang program and returns diagnostics.
func Validate(program *ast.Program) []diagnostics.Diagnostic {
	v := &validator{
		builtins: stdlib.Default().All(),
		names:    collectNames(program),
		open:     true,
		declared: make(map[string]bool),
	}
	ast.Walk(program, func(n ast.Node) bool {
		if _, ok := n.(*ast.ImportStmt); ok {
			v.open = false
		}
		return v.open
	})

	v.validateStatements(program.Statements)
	return v.diags
}

func (v *validator) addDiag(code string, span ast.Span, args diagnostics.Args) {
	v.diags = append(v.diags, diagnostics.New(code, &span, args))
}

func (v *validator) validateStatements(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		v.validateStmt(stmt)
	}
}

func (v *validator) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		v.validateLiteralType(s)
		v.validateExpr(s.Value)

	case *ast.AssignStmt:
		v.validateExpr(s.Target)
		v.validateExpr(s.Value)

	case *ast.FuncDecl:
		seen := make(map[string]bool, len(s.Params))
		for _, p := range s.Params {
			if seen[p] {
				v.addDiag(diagnostics.EDupParam, s.Span, diagnostics.Args{"name": p, "func": s.Name})
			}
			seen[p] = true
		}
		loops, inFunc := v.loops, v.inFunc
		v.loops, v.inFunc = 0, true
		v.validateStatements(s.Body)
		v.loops, v.inFunc = loops, inFunc

	case *ast.ReturnStmt:
		if !v.inFunc {
			v.addDiag(diagnostics.EReturnOutsideFunc, s.Span, nil)
		}
		v.validateExpr(s.Value)

	case *ast.BreakStmt:
		if v.loops == 0 {
			v.addDiag(diagnostics.EBreakOutsideLoop, s.Span, nil)
		}

	case *ast.ContinueStmt:
		if v.loops == 0 {
			v.addDiag(diagnostics.EContinueOutsideLoop, s.Span, nil)
		}

	case *ast.IfStmt:
		v.validateExpr(s.Cond)
		v.validateStatements(s.Body)
		for _, elif := range s.Elifs {
			v.validateExpr(elif.Cond)
			v.validateStatements(elif.Body)
		}
		if s.Else != nil {
			v.validateStatements(s.Else.Body)
		}

	case *ast.ForStmt:
		v.validateExpr(s.Start)
		v.validateExpr(s.End)
		if s.Step != nil {
			if lit, ok := s.Step.(*ast.NumberLit); ok && lit.Value == 0 {
				v.addDiag(diagnostics.EInvalidForLoop, s.Span, nil)
			}
			v.validateExpr(s.Step)
		}
		v.loop(s.Body)

	case *ast.WhileStmt:
		v.validateExpr(s.Cond)
		v.loop(s.Body)

	case *ast.TryStmt:
		v.validateStatements(s.Body)
		v.validateStatements(s.Handler)

	case *ast.ClassDecl:
		if s.Parent != "" && !v.declared[s.Parent] && v.open {
			v.addDiag(diagnostics.EParentClassNotFound, s.Span, diagnostics.Args{"parent_name": s.Parent})
		}
		v.declared[s.Name] = true
		v.validateStatements(s.Body)

	case *ast.BlockStmt:
		v.validateStatements(s.Body)

	case *ast.ExprStmt:
		v.validateExpr(s.Expr)
	}
}

func (v *validator) loop(body []ast.Stmt) {
	v.loops++
	v.validateStatements(body)
	v.loops--
}

// validateExpr reports calls of functions and classes the program never
// defines. Variables are not checked: functions see whatever globals exist
// when they are called.
func (v *validator) validateExpr(expr ast.Expr) {
	if expr == nil {
		return
	}
	ast.Walk(expr, func(n ast.Node) bool {
		if !v.open {
			return false
		}
		switch e := n.(type) {
		case *ast.CallExpr:
			if v.builtins[e.Name] == nil && !v.names.vars[e.Name] {
				v.addDiag(diagnostics.EUndefinedFunction, e.Span, diagnostics.Args{"name": e.Name})
			}
		case *ast.NewExpr:
			if !v.names.classes[e.Class] {
				v.addDiag(diagnostics.EClassNotFound, e.Span, diagnostics.Args{"name": e.Class})
			}
		}
		return true
	})
}

// validateLiteralType reports a statically typed declaration whose value is
// a literal of another type.
func (v *validator) validateLiteralType(s *ast.VarDecl) {
	if s.Type == ast.TypeDynamic {
		return
	}
	var actual ast.StaticType
	var text string
	switch lit := s.Value.(type) {
	case *ast.NumberLit:
		actual, text = ast.TypeNumber, strconv.FormatFloat(lit.Value, 'f', -1, 64)
	case *ast.StringLit:
		actual, text = ast.TypeString, lit.Value
	case *ast.BoolLit:
		actual, text = ast.TypeBool, "been"
		if lit.Value {
			text = "run"
		}
	case *ast.ListLit:
		actual, text = ast.TypeList, "[...]"
	case *ast.ObjectLit:
		actual, text = ast.TypeObject, "{...}"
	case *ast.NullLit:
		actual, text = "", "null"
	default:
		return
	}
	if actual != s.Type {
		v.addDiag(diagnostics.ETypeMismatch, s.Span, diagnostics.Args{
			"var_name":      s.Name,
			"expected_type": string(s.Type),
			"value":         text,
		})
	}
}
