// Package diagnostics defines Soplang diagnostic types for lex, parse, type,
// runtime and import errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soplang/soplang/pkg/ast"
)

// Kind classifies a diagnostic into one of the language's error families.
type Kind string

const (
	KindLexer   Kind = "lexer"
	KindParser  Kind = "parser"
	KindType    Kind = "type"
	KindRuntime Kind = "runtime"
	KindImport  Kind = "import"
)

// Prefix returns the bilingual heading printed before every message of this kind.
func (k Kind) Prefix() string {
	switch k {
	case KindLexer:
		return "Khalad lexer (Lexer Error)"
	case KindParser:
		return "Khalad parser (Parser Error)"
	case KindType:
		return "Khalad nuuc (Type Error)"
	case KindImport:
		return "Khalad import (Import Error)"
	default:
		return "Khalad runtime (Runtime Error)"
	}
}

// Diagnostic code constants.
const (
	// Lexer
	EUnexpectedChar      = "E_UNEXPECTED_CHAR"
	EUnterminatedString  = "E_UNTERMINATED_STRING"
	EUnterminatedComment = "E_UNTERMINATED_COMMENT"
	EMalformedNumber     = "E_MALFORMED_NUMBER"

	// Parser
	EExpectedToken   = "E_EXPECTED_TOKEN"
	EUnexpectedToken = "E_UNEXPECTED_TOKEN"
	EInvalidSyntax   = "E_INVALID_SYNTAX"
	EDupParam        = "E_DUP_PARAM"

	// Type
	ETypeMismatch   = "E_TYPE_MISMATCH"
	ECannotConvert  = "E_CANNOT_CONVERT"
	EInvalidOperand = "E_INVALID_OPERAND"
	EPropertyAccess = "E_PROPERTY_ACCESS"
	EIndexAccess    = "E_INDEX_ACCESS"
	EInvalidMethod  = "E_INVALID_METHOD"
	EInvalidForLoop = "E_INVALID_FOR_LOOP"
	EArgType        = "E_ARG_TYPE"
	ENotCallable    = "E_NOT_CALLABLE"

	// Runtime
	EUndefinedVariable   = "E_UNDEFINED_VARIABLE"
	EUndefinedFunction   = "E_UNDEFINED_FUNCTION"
	EDivisionByZero      = "E_DIVISION_BY_ZERO"
	EModuloByZero        = "E_MODULO_BY_ZERO"
	EIndexOutOfRange     = "E_INDEX_OUT_OF_RANGE"
	EPropertyNotFound    = "E_PROPERTY_NOT_FOUND"
	EMethodNotFound      = "E_METHOD_NOT_FOUND"
	EMissingArgument     = "E_MISSING_ARGUMENT"
	EParentClassNotFound = "E_PARENT_CLASS_NOT_FOUND"
	EClassNotFound       = "E_CLASS_NOT_FOUND"
	EBreakOutsideLoop    = "E_BREAK_OUTSIDE_LOOP"
	EContinueOutsideLoop = "E_CONTINUE_OUTSIDE_LOOP"
	EReturnOutsideFunc   = "E_RETURN_OUTSIDE_FUNCTION"
	EUnknownNodeType     = "E_UNKNOWN_NODE_TYPE"
	EUnknownOperator     = "E_UNKNOWN_OPERATOR"
	EEmptyList           = "E_EMPTY_LIST"
	ECallDepth           = "E_CALL_DEPTH"
	EBudget              = "E_BUDGET"
	ECancelled           = "E_CANCELLED"
	ECapDenied           = "E_CAP_DENIED"
	EIO                  = "E_IO"

	// Import
	EFileNotFound = "E_FILE_NOT_FOUND"
	EImportError  = "E_IMPORT_ERROR"
)

// Diagnostic represents a lex, parse, validation or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic with an already rendered message.
// The kind is taken from the message catalog.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Kind:    KindOf(code),
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// New renders the catalog template for code with args and wraps it in a Diagnostic.
func New(code string, span *ast.Span, args Args) Diagnostic {
	return MakeDiag(code, Render(code, args), span, hintFor(code))
}

// Text renders the diagnostic on one line: kind prefix, message and, when a
// span is known, the line/position suffix.
func (d Diagnostic) Text() string {
	out := d.Kind.Prefix() + ": " + d.Message
	if d.Span != nil && d.Span.StartLine > 0 {
		out += fmt.Sprintf(" ee sadar (line) %d, goobta (position) %d", d.Span.StartLine, d.Span.StartCol)
	}
	return out
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	out := d.Text()
	if d.Span != nil && d.Span.File != "" {
		out += fmt.Sprintf("\n  --> %s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
