package evaluator

import (
	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
)

// RuntimeError is a Type, Runtime or Import error raised while executing a
// program. It unwinds to the nearest isku_day block or to the caller.
type RuntimeError struct {
	Kind    diagnostics.Kind
	Code    string
	Message string
	Span    *ast.Span
	Hint    string
	Cause   error
}

// NewError renders the catalog message for code. span may be nil; the
// interpreter attaches the span of the failing node on the way out.
func NewError(code string, span *ast.Span, args diagnostics.Args) *RuntimeError {
	d := diagnostics.New(code, span, args)
	return &RuntimeError{
		Kind:    d.Kind,
		Code:    d.Code,
		Message: d.Message,
		Span:    span,
		Hint:    d.Hint,
	}
}

func (e *RuntimeError) Error() string {
	return e.Diagnostic().Text()
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Diagnostic converts the error into the shared diagnostic shape.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.Diagnostic{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Span:    e.Span,
		Hint:    e.Hint,
	}
}

// withSpan fills in a missing span without touching errors that already
// point at a more precise location.
func withSpan(err error, span ast.Span) error {
	if rerr, ok := err.(*RuntimeError); ok && rerr.Span == nil {
		s := span
		rerr.Span = &s
	}
	return err
}
