package evaluator

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart       TraceEventType = "run_start"
	TraceRunEnd         TraceEventType = "run_end"
	TraceStmtStart      TraceEventType = "stmt_start"
	TraceStmtEnd        TraceEventType = "stmt_end"
	TraceFnCallStart    TraceEventType = "fn_call_start"
	TraceFnCallEnd      TraceEventType = "fn_call_end"
	TraceLoopStart      TraceEventType = "loop_start"
	TraceLoopEnd        TraceEventType = "loop_end"
	TraceImportStart    TraceEventType = "import_start"
	TraceImportEnd      TraceEventType = "import_end"
	TraceTryCatch       TraceEventType = "try_catch"
	TraceBudgetExceeded TraceEventType = "budget_exceeded"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Event     TraceEventType `json:"event"`
	Span      *ast.Span      `json:"span,omitempty"`
	Data      *Object        `json:"data,omitempty"`
}

// Builtin defines a free function such as qor or nooc.
type Builtin struct {
	Name    string
	Execute func(c *CallContext, args []Value) (Value, error)
}

// Method defines a list or object method. Execute receives the receiver
// already checked to be a *List or *Object.
type Method struct {
	Name    string
	Execute func(c *CallContext, recv Value, args []Value) (Value, error)
}

// ExecOptions configures program execution.
type ExecOptions struct {
	Builtins      map[string]*Builtin
	ListMethods   map[string]*Method
	ObjectMethods map[string]*Method

	// AllowedCapabilities gates imports and stdin reads. Nil allows all.
	AllowedCapabilities map[string]bool

	Stdout io.Writer
	Stdin  io.Reader
	// Input, when set, replaces reading lines from Stdin (the REPL routes
	// akhri through its line editor).
	Input func(prompt string) (string, error)
	// ReadFile loads imported sources; defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
	// BaseDir resolves imports of programs that have no file name.
	BaseDir string

	Trace        func(event TraceEvent)
	RunID        string
	Budget       Budget
	MaxCallDepth int
}

// ExecResult holds the result of a program execution.
type ExecResult struct {
	Value Value
	Env   *Environment
}

// Interpreter executes programs against one Environment. Reusing an
// Interpreter across calls keeps variables, functions and classes, which is
// how the REPL carries state between entries.
type Interpreter struct {
	opts  ExecOptions
	env   *Environment
	stdin *bufio.Reader

	ctx       context.Context
	budget    Budget
	tracker   BudgetTracker
	startTime time.Time
	depth     int
	dir       string
}

// New creates an Interpreter with a fresh environment.
func New(opts ExecOptions) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	return &Interpreter{
		opts:   opts,
		env:    NewEnvironment(),
		budget: opts.Budget,
		ctx:    context.Background(),
	}
}

// Env exposes the interpreter state.
func (in *Interpreter) Env() *Environment {
	return in.env
}

// Reset discards all variables, functions and classes.
func (in *Interpreter) Reset() {
	in.env = NewEnvironment()
}

// Execute runs a program in a fresh interpreter and returns the result.
func Execute(ctx context.Context, program *ast.Program, opts ExecOptions) (*ExecResult, error) {
	in := New(opts)
	val, err := in.Interpret(ctx, program)
	return &ExecResult{Value: val, Env: in.env}, err
}

// Interpret executes the top-level statements of program. The returned value
// is that of the last expression statement, or null. A break, continue or
// return that reaches the top level is a runtime error.
func (in *Interpreter) Interpret(ctx context.Context, program *ast.Program) (Value, error) {
	in.ctx = ctx
	in.startTime = time.Now()
	in.tracker = BudgetTracker{StartMs: in.startTime.UnixMilli()}
	in.depth = 0

	// Set up context timeout for time budget
	if in.budget.TimeMs != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*in.budget.TimeMs)*time.Millisecond)
		defer cancel()
		in.ctx = ctx
	}

	in.dir = in.opts.BaseDir
	if program.Span.File != "" && program.Span.File != "-" {
		in.dir = filepath.Dir(program.Span.File)
	}

	span := program.Span
	in.emit(TraceRunStart, &span)

	val, err := in.runStatements(program.Statements)

	status := "ok"
	if err != nil {
		status = "error"
	}
	in.emitWithData(TraceRunEnd, &span, map[string]string{"status": status})

	if err != nil {
		return nil, err
	}
	return val, nil
}

func (in *Interpreter) runStatements(stmts []ast.Stmt) (Value, error) {
	var last Value = NewNull()
	for _, stmt := range stmts {
		out, err := in.exec(stmt)
		if err != nil {
			return nil, err
		}
		if err := out.escapeError(); err != nil {
			return nil, err
		}
		if _, ok := stmt.(*ast.ExprStmt); ok {
			last = out.value
		}
	}
	return last, nil
}

func (in *Interpreter) emit(event TraceEventType, span *ast.Span) {
	if in.opts.Trace != nil {
		in.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     in.opts.RunID,
			Event:     event,
			Span:      span,
		})
	}
}

func (in *Interpreter) emitWithData(event TraceEventType, span *ast.Span, data map[string]string) {
	if in.opts.Trace != nil {
		var dataObj *Object
		if data != nil {
			dataObj = NewObject(nil)
			for _, k := range sortedKeys(data) {
				dataObj.Set(k, NewString(data[k]))
			}
		}
		in.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     in.opts.RunID,
			Event:     event,
			Span:      span,
			Data:      dataObj,
		})
	}
}

func (in *Interpreter) allowed(capability string) bool {
	if in.opts.AllowedCapabilities == nil {
		return true
	}
	return in.opts.AllowedCapabilities[capability]
}

// --- statements ---

func (in *Interpreter) exec(stmt ast.Stmt) (outcome, error) {
	span := stmt.NodeSpan()
	if err := in.checkTimeBudget(span); err != nil {
		return outcome{}, err
	}

	in.emit(TraceStmtStart, &span)
	out, err := in.execStmt(stmt)
	in.emit(TraceStmtEnd, &span)
	if err != nil {
		return outcome{}, withSpan(err, span)
	}
	return out, nil
}

func (in *Interpreter) execBlock(stmts []ast.Stmt) (outcome, error) {
	for _, stmt := range stmts {
		out, err := in.exec(stmt)
		if err != nil || out.sig != sigNone {
			return out, err
		}
	}
	return outcome{}, nil
}

func (in *Interpreter) execStmt(stmt ast.Stmt) (outcome, error) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		val, err := in.eval(s.Value)
		if err != nil {
			return outcome{}, err
		}
		if s.Type != ast.TypeDynamic && !typeMatches(s.Type, val) {
			return outcome{}, typeMismatch(s.Name, s.Type, val, s.Span)
		}
		in.env.Declare(s.Name, s.Type, val)

	case *ast.AssignStmt:
		return outcome{}, in.execAssign(s)

	case *ast.FuncDecl:
		in.env.DefineFunction(s)

	case *ast.ReturnStmt:
		var val Value = NewNull()
		if s.Value != nil {
			v, err := in.eval(s.Value)
			if err != nil {
				return outcome{}, err
			}
			val = v
		}
		return outcome{sig: sigReturn, value: val, span: s.Span}, nil

	case *ast.IfStmt:
		return in.execIf(s)

	case *ast.ForStmt:
		return in.execFor(s)

	case *ast.WhileStmt:
		return in.execWhile(s)

	case *ast.BreakStmt:
		return outcome{sig: sigBreak, span: s.Span}, nil

	case *ast.ContinueStmt:
		return outcome{sig: sigContinue, span: s.Span}, nil

	case *ast.TryStmt:
		return in.execTry(s)

	case *ast.ImportStmt:
		return outcome{}, in.execImport(s)

	case *ast.ClassDecl:
		return in.execClass(s)

	case *ast.BlockStmt:
		return in.execBlock(s.Body)

	case *ast.ExprStmt:
		val, err := in.eval(s.Expr)
		if err != nil {
			return outcome{}, err
		}
		return outcome{value: val}, nil

	default:
		span := stmt.NodeSpan()
		return outcome{}, NewError(diagnostics.EUnknownNodeType, &span, diagnostics.Args{"node_type": stmt.Kind()})
	}
	return outcome{}, nil
}

func typeMismatch(name string, t ast.StaticType, val Value, span ast.Span) error {
	return NewError(diagnostics.ETypeMismatch, &span, diagnostics.Args{
		"var_name":      name,
		"expected_type": string(t),
		"value":         Stringify(val),
	})
}

// bind writes name without requiring a prior declaration but still honours
// a recorded static type. Loop variables and catch variables go through here.
func (in *Interpreter) bind(name string, val Value, span ast.Span) error {
	if t := in.env.TypeOf(name); t != ast.TypeDynamic && !typeMatches(t, val) {
		return typeMismatch(name, t, val, span)
	}
	in.env.Set(name, val)
	return nil
}

func (in *Interpreter) execAssign(s *ast.AssignStmt) error {
	val, err := in.eval(s.Value)
	if err != nil {
		return err
	}

	switch target := s.Target.(type) {
	case *ast.Ident:
		if !in.env.Has(target.Name) {
			span := target.Span
			return NewError(diagnostics.EUndefinedVariable, &span, diagnostics.Args{"name": target.Name})
		}
		return in.bind(target.Name, val, s.Span)

	case *ast.PropertyExpr:
		recv, err := in.eval(target.Object)
		if err != nil {
			return err
		}
		obj, ok := recv.(*Object)
		if !ok {
			span := target.Span
			return NewError(diagnostics.EPropertyAccess, &span, diagnostics.Args{"prop": target.Name})
		}
		obj.Set(target.Name, val)
		return nil

	case *ast.IndexExpr:
		recv, err := in.eval(target.Object)
		if err != nil {
			return err
		}
		list, ok := recv.(*List)
		if !ok {
			span := target.Span
			return NewError(diagnostics.EIndexAccess, &span, nil)
		}
		idx, err := in.evalIndex(target, len(list.Items))
		if err != nil {
			return err
		}
		list.Items[idx] = val
		return nil
	}

	span := s.Span
	return NewError(diagnostics.EInvalidSyntax, &span, diagnostics.Args{"detail": "cannot assign to " + s.Target.Kind()})
}

func (in *Interpreter) execIf(s *ast.IfStmt) (outcome, error) {
	cond, err := in.eval(s.Cond)
	if err != nil {
		return outcome{}, err
	}
	if Truthiness(cond) {
		return in.execBlock(s.Body)
	}
	for _, elif := range s.Elifs {
		cond, err := in.eval(elif.Cond)
		if err != nil {
			return outcome{}, err
		}
		if Truthiness(cond) {
			return in.execBlock(elif.Body)
		}
	}
	if s.Else != nil {
		return in.execBlock(s.Else.Body)
	}
	return outcome{}, nil
}

func (in *Interpreter) execFor(s *ast.ForStmt) (outcome, error) {
	start, err := in.eval(s.Start)
	if err != nil {
		return outcome{}, err
	}
	end, err := in.eval(s.End)
	if err != nil {
		return outcome{}, err
	}
	var step Value = NewNumber(1)
	if s.Step != nil {
		step, err = in.eval(s.Step)
		if err != nil {
			return outcome{}, err
		}
	}

	startN, ok1 := start.(Number)
	endN, ok2 := end.(Number)
	stepN, ok3 := step.(Number)
	if !ok1 || !ok2 || !ok3 || stepN.Value == 0 {
		span := s.Span
		return outcome{}, NewError(diagnostics.EInvalidForLoop, &span, nil)
	}

	// A positive step counts up to and including End, anything else counts down.
	more := func(i float64) bool { return i <= endN.Value }
	if stepN.Value < 0 {
		more = func(i float64) bool { return i >= endN.Value }
	}

	span := s.Span
	in.emitWithData(TraceLoopStart, &span, map[string]string{"kind": "ku_celi", "var": s.Var})
	defer in.emit(TraceLoopEnd, &span)

	for i := startN.Value; more(i); i += stepN.Value {
		if err := in.checkIterationBudget(span); err != nil {
			return outcome{}, err
		}
		if err := in.bind(s.Var, NewNumber(i), span); err != nil {
			return outcome{}, err
		}
		out, err := in.execBlock(s.Body)
		if err != nil {
			return outcome{}, err
		}
		switch out.sig {
		case sigBreak:
			return outcome{}, nil
		case sigReturn:
			return out, nil
		}
	}
	return outcome{}, nil
}

func (in *Interpreter) execWhile(s *ast.WhileStmt) (outcome, error) {
	span := s.Span
	in.emitWithData(TraceLoopStart, &span, map[string]string{"kind": "inta_ay"})
	defer in.emit(TraceLoopEnd, &span)

	for {
		cond, err := in.eval(s.Cond)
		if err != nil {
			return outcome{}, err
		}
		if !Truthiness(cond) {
			return outcome{}, nil
		}
		if err := in.checkIterationBudget(span); err != nil {
			return outcome{}, err
		}
		out, err := in.execBlock(s.Body)
		if err != nil {
			return outcome{}, err
		}
		switch out.sig {
		case sigBreak:
			return outcome{}, nil
		case sigReturn:
			return out, nil
		}
	}
}

// execTry runs the body and, on an error, binds the error text and runs the
// handler. Break, continue and return are outcomes rather than errors, so
// they pass through untouched. Budget and cancellation errors are not
// catchable.
func (in *Interpreter) execTry(s *ast.TryStmt) (outcome, error) {
	out, err := in.execBlock(s.Body)
	if err == nil {
		return out, nil
	}

	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Code == diagnostics.EBudget || rerr.Code == diagnostics.ECancelled {
		return outcome{}, err
	}

	span := s.Span
	in.emitWithData(TraceTryCatch, &span, map[string]string{"code": rerr.Code})

	if s.ErrName != "" {
		if err := in.bind(s.ErrName, NewString(rerr.Error()), span); err != nil {
			return outcome{}, err
		}
	}
	return in.execBlock(s.Handler)
}

func (in *Interpreter) execClass(s *ast.ClassDecl) (outcome, error) {
	if s.Parent != "" {
		if _, ok := in.env.Class(s.Parent); !ok {
			span := s.Span
			return outcome{}, NewError(diagnostics.EParentClassNotFound, &span, diagnostics.Args{"parent_name": s.Parent})
		}
	}

	class := &Class{
		Name:    s.Name,
		Parent:  s.Parent,
		Methods: make(map[string]*ast.FuncDecl),
		Fields:  NewObject(nil),
	}
	for _, stmt := range s.Body {
		switch member := stmt.(type) {
		case *ast.FuncDecl:
			class.Methods[member.Name] = member
		case *ast.VarDecl:
			val, err := in.eval(member.Value)
			if err != nil {
				return outcome{}, withSpan(err, member.Span)
			}
			if member.Type != ast.TypeDynamic && !typeMatches(member.Type, val) {
				return outcome{}, typeMismatch(member.Name, member.Type, val, member.Span)
			}
			class.Fields.Set(member.Name, val)
		default:
			out, err := in.exec(stmt)
			if err != nil || out.sig != sigNone {
				return out, err
			}
		}
	}
	in.env.classes[s.Name] = class
	return outcome{}, nil
}
