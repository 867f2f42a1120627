package evaluator

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/capabilities"
	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/parser"
)

// CallContext is handed to builtins and methods so they can write output,
// read input and call back into user functions.
type CallContext struct {
	in   *Interpreter
	Name string
	Span ast.Span
}

// Context returns the context of the running program.
func (c *CallContext) Context() context.Context {
	return c.in.ctx
}

// Stdout returns the program's output stream.
func (c *CallContext) Stdout() io.Writer {
	return c.in.opts.Stdout
}

// ReadLine prints prompt without a newline and reads one line of input,
// without the line terminator.
func (c *CallContext) ReadLine(prompt string) (string, error) {
	in := c.in
	if !in.allowed(capabilities.IOStdin) {
		return "", NewError(diagnostics.ECapDenied, nil, diagnostics.Args{"cap": capabilities.IOStdin})
	}
	if in.opts.Input != nil {
		line, err := in.opts.Input(prompt)
		if err != nil {
			return "", NewError(diagnostics.EIO, nil, diagnostics.Args{"detail": err.Error()})
		}
		return line, nil
	}

	if prompt != "" {
		if _, err := io.WriteString(in.opts.Stdout, prompt); err != nil {
			return "", NewError(diagnostics.EIO, nil, diagnostics.Args{"detail": err.Error()})
		}
	}
	if in.stdin == nil {
		in.stdin = bufio.NewReader(in.opts.Stdin)
	}
	line, err := in.stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", NewError(diagnostics.EIO, nil, diagnostics.Args{"detail": "gelin ma jiro (end of input)"})
		}
		return "", NewError(diagnostics.EIO, nil, diagnostics.Args{"detail": err.Error()})
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Call invokes fn with args. fn may be a function value or the name of a
// function as text.
func (c *CallContext) Call(fn Value, args ...Value) (Value, error) {
	switch f := fn.(type) {
	case *Function:
		return c.in.callFunction(f, args, c.Span)
	case String:
		if resolved := c.in.lookupFunction(f.Value); resolved != nil {
			return c.in.callFunction(resolved, args, c.Span)
		}
		span := c.Span
		return nil, NewError(diagnostics.EUndefinedFunction, &span, diagnostics.Args{"name": f.Value})
	}
	span := c.Span
	return nil, NewError(diagnostics.ENotCallable, &span, diagnostics.Args{"type_name": TypeName(fn)})
}

// lookupFunction finds a user function first, then a builtin.
func (in *Interpreter) lookupFunction(name string) *Function {
	if decl, ok := in.env.Function(name); ok {
		return &Function{Name: name, Decl: decl}
	}
	if b, ok := in.opts.Builtins[name]; ok {
		return &Function{Name: name, Builtin: b}
	}
	return nil
}

func (in *Interpreter) evalArgs(exprs []ast.Expr) ([]Value, error) {
	args := make([]Value, 0, len(exprs))
	for _, a := range exprs {
		val, err := in.eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}

func (in *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	span := e.Span
	fn := in.lookupFunction(e.Name)
	if fn == nil {
		val, ok := in.env.Get(e.Name)
		if !ok {
			return nil, NewError(diagnostics.EUndefinedFunction, &span, diagnostics.Args{"name": e.Name})
		}
		f, isFn := val.(*Function)
		if !isFn {
			return nil, NewError(diagnostics.ENotCallable, &span, diagnostics.Args{"type_name": TypeName(val)})
		}
		fn = f
	}

	args, err := in.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	return in.callFunction(fn, args, span)
}

func (in *Interpreter) callFunction(fn *Function, args []Value, span ast.Span) (Value, error) {
	if err := in.checkTimeBudget(span); err != nil {
		return nil, err
	}
	if in.depth >= in.opts.MaxCallDepth {
		return nil, NewError(diagnostics.ECallDepth, &span, diagnostics.Args{"limit": in.opts.MaxCallDepth})
	}
	in.depth++
	defer func() { in.depth-- }()
	in.tracker.Calls++

	in.emitWithData(TraceFnCallStart, &span, map[string]string{"fn": fn.Name})
	defer in.emit(TraceFnCallEnd, &span)

	if fn.Builtin != nil {
		c := &CallContext{in: in, Name: fn.Name, Span: span}
		val, err := fn.Builtin.Execute(c, args)
		if err != nil {
			return nil, hostError(err, span)
		}
		if val == nil {
			val = NewNull()
		}
		return val, nil
	}
	return in.callUser(fn.Decl, args)
}

// callUser runs a user function. The variable and type maps are snapshotted
// before the parameters are bound and restored on every exit path, so the
// body's writes to globals are discarded.
func (in *Interpreter) callUser(decl *ast.FuncDecl, args []Value) (Value, error) {
	snap := in.env.snapshot()
	defer in.env.restore(snap)

	for i, param := range decl.Params {
		var val Value = NewNull()
		if i < len(args) {
			val = args[i]
		}
		in.env.Declare(param, ast.TypeDynamic, val)
	}

	out, err := in.execBlock(decl.Body)
	if err != nil {
		return nil, err
	}
	switch out.sig {
	case sigReturn:
		return out.value, nil
	case sigBreak, sigContinue:
		return nil, out.escapeError()
	}
	return NewNull(), nil
}

func (in *Interpreter) evalMethodCall(e *ast.MethodCallExpr) (Value, error) {
	recv, err := in.eval(e.Receiver)
	if err != nil {
		return nil, err
	}
	span := e.Span

	var method *Method
	switch r := recv.(type) {
	case *List:
		method = in.opts.ListMethods[e.Method]
	case *Object:
		method = in.opts.ObjectMethods[e.Method]
		if method == nil {
			if field, ok := r.Get(e.Method); ok {
				if fn, ok := field.(*Function); ok {
					args, err := in.evalArgs(e.Args)
					if err != nil {
						return nil, err
					}
					return in.callFunction(fn, args, span)
				}
			}
		}
	default:
		return nil, NewError(diagnostics.EInvalidMethod, &span, diagnostics.Args{"method": e.Method, "type_name": TypeName(recv)})
	}
	if method == nil {
		return nil, NewError(diagnostics.EMethodNotFound, &span, diagnostics.Args{"method_name": e.Method, "type_name": TypeName(recv)})
	}

	args, err := in.evalArgs(e.Args)
	if err != nil {
		return nil, err
	}
	c := &CallContext{in: in, Name: e.Method, Span: span}
	val, err := method.Execute(c, recv, args)
	if err != nil {
		return nil, hostError(err, span)
	}
	if val == nil {
		val = NewNull()
	}
	return val, nil
}

// evalNew only tags an instance with its class name; constructor arguments
// are not evaluated and no fields are copied.
func (in *Interpreter) evalNew(e *ast.NewExpr) (Value, error) {
	if _, ok := in.env.Class(e.Class); !ok {
		span := e.Span
		return nil, NewError(diagnostics.EClassNotFound, &span, diagnostics.Args{"name": e.Class})
	}
	return NewObject([]KeyValue{{Key: "__class__", Value: NewString(e.Class)}}), nil
}

// hostError attaches span to errors raised by builtins and converts foreign
// errors into runtime errors.
func hostError(err error, span ast.Span) error {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return withSpan(rerr, span)
	}
	s := span
	out := NewError(diagnostics.EIO, &s, diagnostics.Args{"detail": err.Error()})
	out.Cause = err
	return out
}

// execImport runs another source file's top-level statements in the current
// environment. Relative paths resolve against the importing file's directory.
func (in *Interpreter) execImport(s *ast.ImportStmt) error {
	span := s.Span
	if !in.allowed(capabilities.FSImport) {
		return NewError(diagnostics.ECapDenied, &span, diagnostics.Args{"cap": capabilities.FSImport})
	}

	path := s.Path
	if !filepath.IsAbs(path) && in.dir != "" {
		path = filepath.Join(in.dir, path)
	}

	src, err := in.opts.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewError(diagnostics.EFileNotFound, &span, diagnostics.Args{"module": s.Path})
		}
		return importError(s, span, err)
	}

	program, diags := parser.Parse(string(src), path)
	if len(diags) > 0 {
		return importError(s, span, errors.New(diags[0].Text()))
	}

	// Imports nest on the same depth counter as calls, so a file that
	// imports itself fails instead of exhausting the stack.
	if in.depth >= in.opts.MaxCallDepth {
		return importError(s, span, NewError(diagnostics.ECallDepth, &span, diagnostics.Args{"limit": in.opts.MaxCallDepth}))
	}
	in.depth++
	defer func() { in.depth-- }()

	in.emitWithData(TraceImportStart, &span, map[string]string{"path": path})
	defer in.emit(TraceImportEnd, &span)

	prevDir := in.dir
	in.dir = filepath.Dir(path)
	defer func() { in.dir = prevDir }()

	for _, stmt := range program.Statements {
		out, err := in.exec(stmt)
		if err == nil {
			err = out.escapeError()
		}
		if err != nil {
			return importError(s, span, err)
		}
	}
	return nil
}

func importError(s *ast.ImportStmt, span ast.Span, cause error) error {
	// Budget and cancellation keep their identity so they stay uncatchable.
	var rerr *RuntimeError
	if errors.As(cause, &rerr) && (rerr.Code == diagnostics.EBudget || rerr.Code == diagnostics.ECancelled) {
		return cause
	}
	// A failure in a nested import is already an import error.
	if rerr != nil && rerr.Code == diagnostics.EImportError {
		return cause
	}
	out := NewError(diagnostics.EImportError, &span, diagnostics.Args{"filename": s.Path, "error": cause.Error()})
	out.Cause = cause
	return out
}
