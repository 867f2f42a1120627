// Package ast defines the Soplang AST node types.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary operator.
type BinaryOp string

const (
	OpAdd  BinaryOp = "+"
	OpSub  BinaryOp = "-"
	OpMul  BinaryOp = "*"
	OpDiv  BinaryOp = "/"
	OpMod  BinaryOp = "%"
	OpGt   BinaryOp = ">"
	OpLt   BinaryOp = "<"
	OpGtEq BinaryOp = ">="
	OpLtEq BinaryOp = "<="
	OpEqEq BinaryOp = "=="
	OpNeq  BinaryOp = "!="
	OpAnd  BinaryOp = "&&"
	OpOr   BinaryOp = "||"
)

// UnaryOp represents a unary operator.
type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "!"
)

// StaticType is the type keyword attached to a statically typed declaration.
// The zero value marks a dynamic `door` declaration.
type StaticType string

const (
	TypeDynamic StaticType = ""
	TypeNumber  StaticType = "tiro"
	TypeString  StaticType = "qoraal"
	TypeBool    StaticType = "bool"
	TypeList    StaticType = "liis"
	TypeObject  StaticType = "shey"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type NumberLit struct {
	Span  Span
	Value float64
}

func (n *NumberLit) Kind() string   { return "NumberLit" }
func (n *NumberLit) NodeSpan() Span { return n.Span }
func (n *NumberLit) exprNode()      {}

type StringLit struct {
	Span  Span
	Value string
}

func (n *StringLit) Kind() string   { return "StringLit" }
func (n *StringLit) NodeSpan() Span { return n.Span }
func (n *StringLit) exprNode()      {}

type BoolLit struct {
	Span  Span
	Value bool
}

func (n *BoolLit) Kind() string   { return "BoolLit" }
func (n *BoolLit) NodeSpan() Span { return n.Span }
func (n *BoolLit) exprNode()      {}

type NullLit struct {
	Span Span
}

func (n *NullLit) Kind() string   { return "NullLit" }
func (n *NullLit) NodeSpan() Span { return n.Span }
func (n *NullLit) exprNode()      {}

// --- Identifiers ---

type Ident struct {
	Span Span
	Name string
}

func (n *Ident) Kind() string   { return "Ident" }
func (n *Ident) NodeSpan() Span { return n.Span }
func (n *Ident) exprNode()      {}

// --- Collections ---

type ListLit struct {
	Span     Span
	Elements []Expr
}

func (n *ListLit) Kind() string   { return "ListLit" }
func (n *ListLit) NodeSpan() Span { return n.Span }
func (n *ListLit) exprNode()      {}

// ObjectEntry is a single `key: value` pair of an object literal.
type ObjectEntry struct {
	Span  Span
	Key   string
	Value Expr
}

type ObjectLit struct {
	Span    Span
	Entries []ObjectEntry
}

func (n *ObjectLit) Kind() string   { return "ObjectLit" }
func (n *ObjectLit) NodeSpan() Span { return n.Span }
func (n *ObjectLit) exprNode()      {}

// --- Operators ---

type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

// --- Access and calls ---

type PropertyExpr struct {
	Span   Span
	Object Expr
	Name   string
}

func (n *PropertyExpr) Kind() string   { return "PropertyExpr" }
func (n *PropertyExpr) NodeSpan() Span { return n.Span }
func (n *PropertyExpr) exprNode()      {}

type IndexExpr struct {
	Span   Span
	Object Expr
	Index  Expr
}

func (n *IndexExpr) Kind() string   { return "IndexExpr" }
func (n *IndexExpr) NodeSpan() Span { return n.Span }
func (n *IndexExpr) exprNode()      {}

// CallExpr calls a function by name. Type keywords and qor/akhri are valid names.
type CallExpr struct {
	Span Span
	Name string
	Args []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

type MethodCallExpr struct {
	Span     Span
	Receiver Expr
	Method   string
	Args     []Expr
}

func (n *MethodCallExpr) Kind() string   { return "MethodCallExpr" }
func (n *MethodCallExpr) NodeSpan() Span { return n.Span }
func (n *MethodCallExpr) exprNode()      {}

// NewExpr is `cusub Class(args)`.
type NewExpr struct {
	Span  Span
	Class string
	Args  []Expr
}

func (n *NewExpr) Kind() string   { return "NewExpr" }
func (n *NewExpr) NodeSpan() Span { return n.Span }
func (n *NewExpr) exprNode()      {}

// --- Statements ---

// VarDecl is `door name = value` or `<type> name = value`.
type VarDecl struct {
	Span  Span
	Type  StaticType
	Name  string
	Value Expr
}

func (n *VarDecl) Kind() string   { return "VarDecl" }
func (n *VarDecl) NodeSpan() Span { return n.Span }
func (n *VarDecl) stmtNode()      {}

// AssignStmt targets an *Ident, *PropertyExpr or *IndexExpr.
type AssignStmt struct {
	Span   Span
	Target Expr
	Value  Expr
}

func (n *AssignStmt) Kind() string   { return "AssignStmt" }
func (n *AssignStmt) NodeSpan() Span { return n.Span }
func (n *AssignStmt) stmtNode()      {}

type FuncDecl struct {
	Span   Span
	Name   string
	Params []string
	Body   []Stmt
}

func (n *FuncDecl) Kind() string   { return "FuncDecl" }
func (n *FuncDecl) NodeSpan() Span { return n.Span }
func (n *FuncDecl) stmtNode()      {}

// ReturnStmt carries a nil Value for a bare `celi`.
type ReturnStmt struct {
	Span  Span
	Value Expr
}

func (n *ReturnStmt) Kind() string   { return "ReturnStmt" }
func (n *ReturnStmt) NodeSpan() Span { return n.Span }
func (n *ReturnStmt) stmtNode()      {}

type ElifClause struct {
	Span Span
	Cond Expr
	Body []Stmt
}

// IfStmt is a haddii / haddii_kale... / haddii_kalena chain. Else is nil
// when there is no haddii_kalena branch.
type IfStmt struct {
	Span  Span
	Cond  Expr
	Body  []Stmt
	Elifs []ElifClause
	Else  *BlockStmt
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) NodeSpan() Span { return n.Span }
func (n *IfStmt) stmtNode()      {}

// ForStmt is `ku_celi Var min Start ilaa End [by Step] { Body }`. Step may be nil.
type ForStmt struct {
	Span  Span
	Var   string
	Start Expr
	End   Expr
	Step  Expr
	Body  []Stmt
}

func (n *ForStmt) Kind() string   { return "ForStmt" }
func (n *ForStmt) NodeSpan() Span { return n.Span }
func (n *ForStmt) stmtNode()      {}

type WhileStmt struct {
	Span Span
	Cond Expr
	Body []Stmt
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) NodeSpan() Span { return n.Span }
func (n *WhileStmt) stmtNode()      {}

type BreakStmt struct {
	Span Span
}

func (n *BreakStmt) Kind() string   { return "BreakStmt" }
func (n *BreakStmt) NodeSpan() Span { return n.Span }
func (n *BreakStmt) stmtNode()      {}

type ContinueStmt struct {
	Span Span
}

func (n *ContinueStmt) Kind() string   { return "ContinueStmt" }
func (n *ContinueStmt) NodeSpan() Span { return n.Span }
func (n *ContinueStmt) stmtNode()      {}

type TryStmt struct {
	Span    Span
	Body    []Stmt
	ErrName string
	Handler []Stmt
}

func (n *TryStmt) Kind() string   { return "TryStmt" }
func (n *TryStmt) NodeSpan() Span { return n.Span }
func (n *TryStmt) stmtNode()      {}

type ImportStmt struct {
	Span Span
	Path string
}

func (n *ImportStmt) Kind() string   { return "ImportStmt" }
func (n *ImportStmt) NodeSpan() Span { return n.Span }
func (n *ImportStmt) stmtNode()      {}

// ClassDecl is `fasalka Name [ka_dhaxal Parent] { Body }`. Parent is empty without ka_dhaxal.
type ClassDecl struct {
	Span   Span
	Name   string
	Parent string
	Body   []Stmt
}

func (n *ClassDecl) Kind() string   { return "ClassDecl" }
func (n *ClassDecl) NodeSpan() Span { return n.Span }
func (n *ClassDecl) stmtNode()      {}

type BlockStmt struct {
	Span Span
	Body []Stmt
}

func (n *BlockStmt) Kind() string   { return "BlockStmt" }
func (n *BlockStmt) NodeSpan() Span { return n.Span }
func (n *BlockStmt) stmtNode()      {}

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
