// Package formatter implements the Soplang source code formatter.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/lexer"
)

const indent = "    "

// Precedence table for binary operators (higher = tighter binding)
var precedence = map[ast.BinaryOp]int{
	ast.OpAnd: 1, ast.OpOr: 1,
	ast.OpGt: 2, ast.OpLt: 2, ast.OpGtEq: 2, ast.OpLtEq: 2, ast.OpEqEq: 2, ast.OpNeq: 2,
	ast.OpAdd: 3, ast.OpSub: 3,
	ast.OpMul: 4, ast.OpDiv: 4, ast.OpMod: 4,
}

func needsParens(child ast.Expr, parentOp ast.BinaryOp, isRight bool) bool {
	bin, ok := child.(*ast.BinaryExpr)
	if !ok {
		return false
	}
	childPrec := precedence[bin.Op]
	parentPrec := precedence[parentOp]
	if childPrec < parentPrec {
		return true
	}
	// All operators associate to the left
	if childPrec == parentPrec && isRight {
		return true
	}
	return false
}

// Format pretty-prints a Soplang AST back to source code. Top-level function
// and class declarations are separated from their neighbours by a blank line.
func Format(program *ast.Program) string {
	var lines []string
	for i, s := range program.Statements {
		if i > 0 && (isDecl(s) || isDecl(program.Statements[i-1])) {
			lines = append(lines, "")
		}
		lines = append(lines, formatStmt(s, 0))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func isDecl(s ast.Stmt) bool {
	switch s.(type) {
	case *ast.FuncDecl, *ast.ClassDecl:
		return true
	}
	return false
}

// HasComments reports whether source contains // or /* */ comments, which
// the formatter drops.
func HasComments(source string) bool {
	var quote byte
	for i := 0; i < len(source); i++ {
		ch := source[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch {
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '/' && i+1 < len(source) && (source[i+1] == '/' || source[i+1] == '*'):
			return true
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.VarDecl:
		keyword := "door"
		if stmt.Type != ast.TypeDynamic {
			keyword = string(stmt.Type)
		}
		return prefix + keyword + " " + stmt.Name + " = " + formatExpr(stmt.Value, depth)
	case *ast.AssignStmt:
		return prefix + formatExpr(stmt.Target, depth) + " = " + formatExpr(stmt.Value, depth)
	case *ast.ExprStmt:
		return prefix + formatExpr(stmt.Expr, depth)
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return prefix + "celi"
		}
		return prefix + "celi " + formatExpr(stmt.Value, depth)
	case *ast.BreakStmt:
		return prefix + "jooji"
	case *ast.ContinueStmt:
		return prefix + "sii_wad"
	case *ast.ImportStmt:
		return prefix + "ka_keen " + formatString(stmt.Path)
	case *ast.FuncDecl:
		params := strings.Join(stmt.Params, ", ")
		return prefix + "hawl " + stmt.Name + "(" + params + ") " + formatBlock(stmt.Body, depth)
	case *ast.IfStmt:
		out := prefix + "haddii (" + formatExpr(stmt.Cond, depth) + ") " + formatBlock(stmt.Body, depth)
		for _, elif := range stmt.Elifs {
			out += " haddii_kale (" + formatExpr(elif.Cond, depth) + ") " + formatBlock(elif.Body, depth)
		}
		if stmt.Else != nil {
			out += " haddii_kalena " + formatBlock(stmt.Else.Body, depth)
		}
		return out
	case *ast.ForStmt:
		header := fmt.Sprintf("ku_celi %s min %s ilaa %s", stmt.Var, formatExpr(stmt.Start, depth), formatExpr(stmt.End, depth))
		if stmt.Step != nil {
			header += " by " + formatExpr(stmt.Step, depth)
		}
		return prefix + header + " " + formatBlock(stmt.Body, depth)
	case *ast.WhileStmt:
		return prefix + "inta_ay (" + formatExpr(stmt.Cond, depth) + ") " + formatBlock(stmt.Body, depth)
	case *ast.TryStmt:
		catch := " qabo "
		if stmt.ErrName != "" {
			catch = " qabo (" + stmt.ErrName + ") "
		}
		return prefix + "isku_day " + formatBlock(stmt.Body, depth) + catch + formatBlock(stmt.Handler, depth)
	case *ast.ClassDecl:
		header := "fasalka " + stmt.Name
		if stmt.Parent != "" {
			header += " ka_dhaxal " + stmt.Parent
		}
		return prefix + header + " " + formatBlock(stmt.Body, depth)
	case *ast.BlockStmt:
		return prefix + formatBlock(stmt.Body, depth)
	}
	return ""
}

// formatBlock renders `{ ... }` with the body one level deeper than depth.
// The opening brace stays on the caller's line.
func formatBlock(stmts []ast.Stmt, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.NumberLit:
		return strconv.FormatFloat(expr.Value, 'f', -1, 64)
	case *ast.BoolLit:
		if expr.Value {
			return "run"
		}
		return "been"
	case *ast.StringLit:
		return formatString(expr.Value)
	case *ast.NullLit:
		return "null"
	case *ast.Ident:
		return expr.Name
	case *ast.ObjectLit:
		return formatObject(expr, depth)
	case *ast.ListLit:
		return formatList(expr, depth)
	case *ast.CallExpr:
		return expr.Name + "(" + formatArgs(expr.Args, depth) + ")"
	case *ast.MethodCallExpr:
		return formatReceiver(expr.Receiver, depth) + "." + expr.Method + "(" + formatArgs(expr.Args, depth) + ")"
	case *ast.PropertyExpr:
		return formatReceiver(expr.Object, depth) + "." + expr.Name
	case *ast.IndexExpr:
		return formatReceiver(expr.Object, depth) + "[" + formatExpr(expr.Index, depth) + "]"
	case *ast.NewExpr:
		return "cusub " + expr.Class + "(" + formatArgs(expr.Args, depth) + ")"
	case *ast.BinaryExpr:
		leftStr := formatExpr(expr.Left, depth)
		rightStr := formatExpr(expr.Right, depth)
		if needsParens(expr.Left, expr.Op, false) {
			leftStr = "(" + leftStr + ")"
		}
		if needsParens(expr.Right, expr.Op, true) {
			rightStr = "(" + rightStr + ")"
		}
		return leftStr + " " + string(expr.Op) + " " + rightStr
	case *ast.UnaryExpr:
		operandStr := formatExpr(expr.Operand, depth)
		if _, isBin := expr.Operand.(*ast.BinaryExpr); isBin {
			return string(expr.Op) + "(" + operandStr + ")"
		}
		if strings.HasPrefix(operandStr, "-") {
			return string(expr.Op) + "(" + operandStr + ")"
		}
		return string(expr.Op) + operandStr
	}
	return ""
}

// formatReceiver parenthesises operators used as the target of '.', '[' or a
// method call, and negative literals which would otherwise bind the minus last.
func formatReceiver(e ast.Expr, depth int) string {
	out := formatExpr(e, depth)
	switch r := e.(type) {
	case *ast.BinaryExpr, *ast.UnaryExpr:
		return "(" + out + ")"
	case *ast.NumberLit:
		if r.Value < 0 {
			return "(" + out + ")"
		}
	}
	return out
}

// formatString quotes s. Strings have no escapes, so the quote character is
// whichever one s does not contain.
func formatString(s string) string {
	if strings.Contains(s, `"`) && !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	return `"` + s + `"`
}

func formatArgs(args []ast.Expr, depth int) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatExpr(a, depth)
	}
	return strings.Join(parts, ", ")
}

func formatKey(key string) string {
	if isIdent(key) {
		if _, kw := lexer.LookupKeyword(key); !kw {
			return key
		}
	}
	return formatString(key)
}

func isIdent(s string) bool {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !(ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')) {
			return false
		}
	}
	return true
}

func formatObject(obj *ast.ObjectLit, depth int) string {
	if len(obj.Entries) == 0 {
		return "{}"
	}

	// Try inline first
	inlineParts := make([]string, len(obj.Entries))
	for i, e := range obj.Entries {
		inlineParts[i] = formatKey(e.Key) + ": " + formatExpr(e.Value, depth+1)
	}
	inline := "{" + strings.Join(inlineParts, ", ") + "}"
	if len(inline) <= 72 {
		return inline
	}

	// Multi-line
	inner := strings.Repeat(indent, depth+1)
	outer := strings.Repeat(indent, depth)
	parts := make([]string, len(obj.Entries))
	for i, e := range obj.Entries {
		parts[i] = inner + formatKey(e.Key) + ": " + formatExpr(e.Value, depth+1)
	}
	return "{\n" + strings.Join(parts, ",\n") + "\n" + outer + "}"
}

func formatList(list *ast.ListLit, depth int) string {
	if len(list.Elements) == 0 {
		return "[]"
	}

	// Try inline first
	inlineParts := make([]string, len(list.Elements))
	for i, e := range list.Elements {
		inlineParts[i] = formatExpr(e, depth+1)
	}
	inline := "[" + strings.Join(inlineParts, ", ") + "]"
	if len(inline) <= 72 {
		return inline
	}

	// Multi-line
	inner := strings.Repeat(indent, depth+1)
	outer := strings.Repeat(indent, depth)
	parts := make([]string, len(list.Elements))
	for i, e := range list.Elements {
		parts[i] = inner + formatExpr(e, depth+1)
	}
	return "[\n" + strings.Join(parts, ",\n") + "\n" + outer + "]"
}
