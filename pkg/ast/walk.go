package ast

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	addExpr := func(e Expr) {
		if e != nil {
			out = append(out, e)
		}
	}
	addStmts := func(stmts []Stmt) {
		for _, s := range stmts {
			out = append(out, s)
		}
	}
	addExprs := func(exprs []Expr) {
		for _, e := range exprs {
			addExpr(e)
		}
	}

	switch n := n.(type) {
	case *Program:
		addStmts(n.Statements)
	case *ListLit:
		addExprs(n.Elements)
	case *ObjectLit:
		for _, e := range n.Entries {
			addExpr(e.Value)
		}
	case *BinaryExpr:
		addExpr(n.Left)
		addExpr(n.Right)
	case *UnaryExpr:
		addExpr(n.Operand)
	case *PropertyExpr:
		addExpr(n.Object)
	case *IndexExpr:
		addExpr(n.Object)
		addExpr(n.Index)
	case *CallExpr:
		addExprs(n.Args)
	case *MethodCallExpr:
		addExpr(n.Receiver)
		addExprs(n.Args)
	case *NewExpr:
		addExprs(n.Args)
	case *VarDecl:
		addExpr(n.Value)
	case *AssignStmt:
		addExpr(n.Target)
		addExpr(n.Value)
	case *FuncDecl:
		addStmts(n.Body)
	case *ReturnStmt:
		addExpr(n.Value)
	case *IfStmt:
		addExpr(n.Cond)
		addStmts(n.Body)
		for _, el := range n.Elifs {
			addExpr(el.Cond)
			addStmts(el.Body)
		}
		if n.Else != nil {
			out = append(out, n.Else)
		}
	case *ForStmt:
		addExpr(n.Start)
		addExpr(n.End)
		addExpr(n.Step)
		addStmts(n.Body)
	case *WhileStmt:
		addExpr(n.Cond)
		addStmts(n.Body)
	case *TryStmt:
		addStmts(n.Body)
		addStmts(n.Handler)
	case *ClassDecl:
		addStmts(n.Body)
	case *BlockStmt:
		addStmts(n.Body)
	case *ExprStmt:
		addExpr(n.Expr)
	}
	return out
}

// Walk traverses the tree rooted at n depth-first. If fn returns false the
// children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}
