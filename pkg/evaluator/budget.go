package evaluator

import (
	"time"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
)

// Budget holds the resource limits for a program execution. Nil fields are
// unlimited.
type Budget struct {
	TimeMs        *int64
	MaxIterations *int64
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	Iterations int64
	Calls      int64
	StartMs    int64
}

// DefaultMaxCallDepth bounds recursion when ExecOptions.MaxCallDepth is zero.
const DefaultMaxCallDepth = 1000

func (in *Interpreter) checkTimeBudget(span ast.Span) error {
	if err := in.ctx.Err(); err != nil {
		s := span
		if in.budget.TimeMs != nil && time.Since(in.startTime).Milliseconds() >= *in.budget.TimeMs {
			return NewError(diagnostics.EBudget, &s, diagnostics.Args{"budget": "waqtiga (time)", "limit": formatMs(*in.budget.TimeMs)})
		}
		return NewError(diagnostics.ECancelled, &s, nil)
	}
	if in.budget.TimeMs != nil {
		if time.Since(in.startTime).Milliseconds() >= *in.budget.TimeMs {
			s := span
			return NewError(diagnostics.EBudget, &s, diagnostics.Args{"budget": "waqtiga (time)", "limit": formatMs(*in.budget.TimeMs)})
		}
	}
	return nil
}

func (in *Interpreter) checkIterationBudget(span ast.Span) error {
	in.tracker.Iterations++
	if in.budget.MaxIterations != nil {
		if in.tracker.Iterations > *in.budget.MaxIterations {
			s := span
			in.emit(TraceBudgetExceeded, &s)
			return NewError(diagnostics.EBudget, &s, diagnostics.Args{"budget": "wareegyada (iterations)", "limit": *in.budget.MaxIterations})
		}
	}
	return in.checkTimeBudget(span)
}

func formatMs(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}
