package diagnostics_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
)

func TestMakeDiag(t *testing.T) {
	span := &ast.Span{File: "test.so", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	d := diagnostics.MakeDiag(diagnostics.EExpectedToken, "expected ')'", span, "check syntax")

	if d.Code != diagnostics.EExpectedToken {
		t.Errorf("got Code = %q, want %q", d.Code, diagnostics.EExpectedToken)
	}
	if d.Kind != diagnostics.KindParser {
		t.Errorf("got Kind = %q, want %q", d.Kind, diagnostics.KindParser)
	}
	if d.Message != "expected ')'" {
		t.Errorf("got Message = %q", d.Message)
	}
}

func TestNewRendersTemplate(t *testing.T) {
	d := diagnostics.New(diagnostics.EUndefinedVariable, nil, diagnostics.Args{"name": "x"})
	want := "Doorsame aan la qeexin (Undefined variable): 'x'"
	if d.Message != want {
		t.Errorf("got %q, want %q", d.Message, want)
	}
	if d.Hint == "" {
		t.Error("expected a hint for undefined variable")
	}
}

func TestKindPrefixes(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{diagnostics.EUnexpectedChar, "Khalad lexer (Lexer Error)"},
		{diagnostics.EUnexpectedToken, "Khalad parser (Parser Error)"},
		{diagnostics.ETypeMismatch, "Khalad nuuc (Type Error)"},
		{diagnostics.EDivisionByZero, "Khalad runtime (Runtime Error)"},
		{diagnostics.EFileNotFound, "Khalad import (Import Error)"},
		{"E_SOMETHING_ELSE", "Khalad runtime (Runtime Error)"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := diagnostics.KindOf(tt.code).Prefix(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextIncludesPosition(t *testing.T) {
	span := &ast.Span{StartLine: 3, StartCol: 7}
	d := diagnostics.New(diagnostics.EDivisionByZero, span, nil)
	want := "Khalad runtime (Runtime Error): Ma suurtogali karto qeybinta eber (Division by zero) ee sadar (line) 3, goobta (position) 7"
	if got := d.Text(); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestTextWithoutSpan(t *testing.T) {
	d := diagnostics.New(diagnostics.EEmptyList, nil, nil)
	if strings.Contains(d.Text(), "sadar") {
		t.Errorf("unexpected position suffix: %s", d.Text())
	}
}

func TestRenderUnknownCode(t *testing.T) {
	got := diagnostics.Render("E_NOPE", diagnostics.Args{"a": 1})
	if !strings.HasPrefix(got, "E_NOPE") {
		t.Errorf("got %q", got)
	}
}

func TestFormatDiagnosticPretty(t *testing.T) {
	span := &ast.Span{File: "test.so", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 10}
	d := diagnostics.New(diagnostics.EUndefinedVariable, span, diagnostics.Args{"name": "y"})

	out := diagnostics.FormatDiagnostic(d, true)
	if !strings.Contains(out, "Undefined variable") {
		t.Errorf("expected message in output, got: %s", out)
	}
	if !strings.Contains(out, "test.so:3:5") {
		t.Errorf("expected location in output, got: %s", out)
	}
	if !strings.Contains(out, "hint:") {
		t.Errorf("expected hint in output, got: %s", out)
	}
}

func TestFormatDiagnosticJSON(t *testing.T) {
	d := diagnostics.New(diagnostics.EUnexpectedChar, nil, diagnostics.Args{"char": "@"})
	out := diagnostics.FormatDiagnostic(d, false)
	if !strings.Contains(out, `"code":"E_UNEXPECTED_CHAR"`) {
		t.Errorf("expected JSON code in output, got: %s", out)
	}
	if !strings.Contains(out, `"kind":"lexer"`) {
		t.Errorf("expected JSON kind in output, got: %s", out)
	}
}

func TestPrinterCaret(t *testing.T) {
	var buf bytes.Buffer
	p := diagnostics.NewPrinter(&buf, diagnostics.ColorNever)
	src := "door x = 1\nqor(x / 0)\n"
	span := &ast.Span{File: "main.so", StartLine: 2, StartCol: 5, EndLine: 2, EndCol: 10}
	out := p.Format(diagnostics.New(diagnostics.EDivisionByZero, span, nil), src)

	if !strings.Contains(out, "2 | qor(x / 0)") {
		t.Errorf("expected quoted source line, got:\n%s", out)
	}
	if !strings.Contains(out, "  | "+strings.Repeat(" ", 4)+"^^^^^") {
		t.Errorf("expected caret under span, got:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no ANSI escapes with ColorNever, got: %q", out)
	}
}

func TestParseColorMode(t *testing.T) {
	tests := map[string]diagnostics.ColorMode{
		"always": diagnostics.ColorAlways,
		"NEVER":  diagnostics.ColorNever,
		"off":    diagnostics.ColorNever,
		"":       diagnostics.ColorAuto,
		"auto":   diagnostics.ColorAuto,
	}
	for in, want := range tests {
		if got := diagnostics.ParseColorMode(in); got != want {
			t.Errorf("ParseColorMode(%q) = %q, want %q", in, got, want)
		}
	}
}
