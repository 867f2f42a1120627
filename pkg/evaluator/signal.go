package evaluator

import (
	"sort"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
)

// signal is the non-error way a statement can end.
type signal int

const (
	sigNone signal = iota
	sigBreak
	sigContinue
	sigReturn
)

// outcome is the result of executing a statement. value carries the returned
// value for sigReturn and the expression value for an expression statement.
type outcome struct {
	sig   signal
	value Value
	span  ast.Span
}

// escapeError turns a signal that left every enclosing loop or function into
// the matching runtime error.
func (o outcome) escapeError() error {
	span := o.span
	switch o.sig {
	case sigBreak:
		return NewError(diagnostics.EBreakOutsideLoop, &span, nil)
	case sigContinue:
		return NewError(diagnostics.EContinueOutsideLoop, &span, nil)
	case sigReturn:
		return NewError(diagnostics.EReturnOutsideFunc, &span, nil)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
