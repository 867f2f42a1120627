// Package runtime provides the top-level Soplang runtime orchestrator.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/capabilities"
	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
	"github.com/soplang/soplang/pkg/formatter"
	"github.com/soplang/soplang/pkg/lexer"
	"github.com/soplang/soplang/pkg/parser"
	"github.com/soplang/soplang/pkg/stdlib"
	"github.com/soplang/soplang/pkg/validator"
)

// Result holds the outcome of a program execution.
type Result struct {
	Value evaluator.Value
	Env   *evaluator.Environment
}

// Runtime wires together all Soplang components for program execution.
type Runtime struct {
	stdlib       *stdlib.Registry
	policy       *capabilities.Policy
	runID        string
	trace        func(event evaluator.TraceEvent)
	stdout       io.Writer
	stdin        io.Reader
	input        func(prompt string) (string, error)
	readFile     func(path string) ([]byte, error)
	baseDir      string
	budget       evaluator.Budget
	maxCallDepth int
	strict       bool
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdlib sets the stdlib registry.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.stdlib = r
	}
}

// WithPolicy sets the capability policy.
func WithPolicy(p *capabilities.Policy) Option {
	return func(rt *Runtime) {
		rt.policy = p
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithStdout redirects program output.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithStdin sets the reader akhri reads lines from.
func WithStdin(r io.Reader) Option {
	return func(rt *Runtime) {
		rt.stdin = r
	}
}

// WithInput routes akhri through fn instead of stdin.
func WithInput(fn func(prompt string) (string, error)) Option {
	return func(rt *Runtime) {
		rt.input = fn
	}
}

// WithReadFile sets the loader used by ka_keen.
func WithReadFile(fn func(path string) ([]byte, error)) Option {
	return func(rt *Runtime) {
		rt.readFile = fn
	}
}

// WithBaseDir sets the directory imports resolve against when the program
// has no file name (stdin, REPL).
func WithBaseDir(dir string) Option {
	return func(rt *Runtime) {
		rt.baseDir = dir
	}
}

// WithBudget sets resource limits.
func WithBudget(b evaluator.Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithMaxCallDepth bounds recursion.
func WithMaxCallDepth(n int) Option {
	return func(rt *Runtime) {
		rt.maxCallDepth = n
	}
}

// WithStrict makes Run reject programs the validator reports before
// executing anything.
func WithStrict() Option {
	return func(rt *Runtime) {
		rt.strict = true
	}
}

// New creates a new Runtime with the given options.
// By default the stdlib defaults are registered and every capability is allowed.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		stdlib: stdlib.Default(),
		policy: capabilities.AllowAll(),
		runID:  "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses and executes a Soplang program. Output produced before a
// runtime error has already been written when the error is returned.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (*Result, error) {
	program, err := rt.Parse(source, filename)
	if err != nil {
		return nil, err
	}

	if rt.strict {
		if vDiags := validator.Validate(program); len(vDiags) > 0 {
			return nil, &DiagnosticError{Diagnostics: vDiags}
		}
	}

	result, err := evaluator.Execute(ctx, program, rt.buildExecOptions())
	if result == nil {
		return nil, err
	}
	return &Result{Value: result.Value, Env: result.Env}, err
}

// Check parses and validates a Soplang program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(program)
}

// Format parses and formats a Soplang program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, err := rt.Parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(program), nil
}

// Tokenize lexes source. Lexer errors are returned as a *DiagnosticError.
func (rt *Runtime) Tokenize(source, filename string) ([]lexer.Token, error) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		var lexErr *lexer.LexError
		if errors.As(err, &lexErr) {
			return nil, &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{lexErr.Diag}}
		}
		return nil, err
	}
	return tokens, nil
}

// Parse lexes and parses source.
func (rt *Runtime) Parse(source, filename string) (*ast.Program, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	return program, nil
}

// buildExecOptions constructs evaluator options from the runtime's configuration.
func (rt *Runtime) buildExecOptions() evaluator.ExecOptions {
	var allowedCaps map[string]bool
	if rt.policy != nil {
		allowedCaps = rt.policy.Allowed
	}

	return evaluator.ExecOptions{
		Builtins:            rt.stdlib.All(),
		ListMethods:         rt.stdlib.ListMethods(),
		ObjectMethods:       rt.stdlib.ObjectMethods(),
		AllowedCapabilities: allowedCaps,
		Stdout:              rt.stdout,
		Stdin:               rt.stdin,
		Input:               rt.input,
		ReadFile:            rt.readFile,
		BaseDir:             rt.baseDir,
		Trace:               rt.trace,
		RunID:               rt.runID,
		Budget:              rt.budget,
		MaxCallDepth:        rt.maxCallDepth,
	}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.Text()
	}
	return strings.Join(msgs, "; ")
}

// Diagnostics extracts the diagnostics carried by err: the list of a
// *DiagnosticError or the single diagnostic of a runtime error.
func Diagnostics(err error) []diagnostics.Diagnostic {
	var derr *DiagnosticError
	if errors.As(err, &derr) {
		return derr.Diagnostics
	}
	var rerr *evaluator.RuntimeError
	if errors.As(err, &rerr) {
		return []diagnostics.Diagnostic{rerr.Diagnostic()}
	}
	return nil
}

// Session keeps interpreter state across REPL entries.
type Session struct {
	rt     *Runtime
	interp *evaluator.Interpreter
}

// Entry is the outcome of one REPL entry. Binding names the variable a
// trailing declaration bound; Value is then that variable's value.
type Entry struct {
	Value   evaluator.Value
	Binding string
}

// NewSession starts an empty session.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, interp: evaluator.New(rt.buildExecOptions())}
}

// Eval runs one entry against the session state. Variables, functions and
// classes defined by earlier entries stay visible, including those defined
// before a failing statement.
func (s *Session) Eval(ctx context.Context, source string) (*Entry, error) {
	program, err := s.rt.Parse(source, "")
	if err != nil {
		return nil, err
	}
	val, err := s.interp.Interpret(ctx, program)
	if err != nil {
		return nil, err
	}
	entry := &Entry{Value: val}
	if n := len(program.Statements); n > 0 {
		if decl, ok := program.Statements[n-1].(*ast.VarDecl); ok {
			entry.Binding = decl.Name
			entry.Value, _ = s.interp.Env().Get(decl.Name)
		}
	}
	return entry, nil
}

// Env exposes the session's variables, functions and classes.
func (s *Session) Env() *evaluator.Environment {
	return s.interp.Env()
}

// Reset forgets everything the session has defined.
func (s *Session) Reset() {
	s.interp.Reset()
}

// Describe renders an entry the way the REPL echoes it: `x = 5` for a
// declaration, the value otherwise. Null results of plain statements are
// not echoed and yield "".
func (e *Entry) Describe() string {
	if e.Binding != "" {
		return fmt.Sprintf("%s = %s", e.Binding, evaluator.Stringify(e.Value))
	}
	if e.Value == nil {
		return ""
	}
	if _, isNull := e.Value.(evaluator.Null); isNull {
		return ""
	}
	return evaluator.Stringify(e.Value)
}
