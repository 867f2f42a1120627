package validator_test

import (
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/parser"
	"github.com/soplang/soplang/pkg/validator"
)

// helper parses source and validates, returning diagnostics from validation only.
// It fatals on parse errors so test cases focus on validator behavior.
func mustParseAndValidate(t *testing.T, source string) []diagnostics.Diagnostic {
	t.Helper()
	prog, parseErrs := parser.Parse(source, "test.so")
	if len(parseErrs) > 0 {
		t.Fatalf("unexpected parse error: %s", parseErrs[0].Message)
	}
	return validator.Validate(prog)
}

// assertNoDiags asserts zero diagnostics were produced.
func assertNoDiags(t *testing.T, diags []diagnostics.Diagnostic) {
	t.Helper()
	if len(diags) != 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.Code+": "+d.Message)
		}
		t.Errorf("expected no diagnostics, got %d:\n  %s", len(diags), strings.Join(msgs, "\n  "))
	}
}

// assertDiagCount asserts the expected number of diagnostics.
func assertDiagCount(t *testing.T, diags []diagnostics.Diagnostic, expected int) {
	t.Helper()
	if len(diags) != expected {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.Code+": "+d.Message)
		}
		t.Errorf("expected %d diagnostics, got %d:\n  %s", expected, len(diags), strings.Join(msgs, "\n  "))
	}
}

// assertHasCode asserts that at least one diagnostic with the given code exists.
func assertHasCode(t *testing.T, diags []diagnostics.Diagnostic, code string) {
	t.Helper()
	for _, d := range diags {
		if d.Code == code {
			return
		}
	}
	var codes []string
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	t.Errorf("expected diagnostic code %s, got codes: %v", code, codes)
}

// ===== Valid Programs (zero diagnostics) =====

func TestValid_Programs(t *testing.T) {
	tests := map[string]string{
		"print": `qor("salaan")`,
		"function": heredoc.Doc(`
			hawl add(a, b) {
				celi a + b
			}
			qor(add(1, 2))
		`),
		"loops": heredoc.Doc(`
			ku_celi i min 1 ilaa 10 {
				haddii (i == 5) { jooji }
				haddii (i % 2 == 0) { sii_wad }
				qor(i)
			}
			door n = 0
			inta_ay (n < 3) { n = n + 1 }
		`),
		"return inside loop inside function": heredoc.Doc(`
			hawl first(l) {
				ku_celi i min 0 ilaa 3 { celi l[i] }
			}
		`),
		"classes": heredoc.Doc(`
			fasalka A { hawl f() { celi 1 } }
			fasalka B ka_dhaxal A { }
			door b = cusub B()
		`),
		"typed literals": heredoc.Doc(`
			tiro a = 1
			qoraal b = "x"
			bool c = run
			liis d = []
			shey e = {}
			tiro f = dherer(d)
		`),
		"function reference call": heredoc.Doc(`
			hawl sq(n) { celi n * n }
			door g = sq
			qor(g(3))
		`),
		"builtin aliases": `bandhig(nooc(labadaran(1)))`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			assertNoDiags(t, mustParseAndValidate(t, src))
		})
	}
}

// ===== Control flow placement =====

func TestBreakOutsideLoop(t *testing.T) {
	diags := mustParseAndValidate(t, `haddii (run) { jooji }`)
	assertDiagCount(t, diags, 1)
	assertHasCode(t, diags, diagnostics.EBreakOutsideLoop)
	if diags[0].Hint == "" {
		t.Error("expected a hint")
	}
}

func TestContinueOutsideLoop(t *testing.T) {
	diags := mustParseAndValidate(t, `sii_wad`)
	assertDiagCount(t, diags, 1)
	assertHasCode(t, diags, diagnostics.EContinueOutsideLoop)
}

func TestBreakInFunctionInsideLoop(t *testing.T) {
	// A function body starts a fresh loop context.
	diags := mustParseAndValidate(t, heredoc.Doc(`
		inta_ay (run) {
			hawl f() { jooji }
			jooji
		}
	`))
	assertDiagCount(t, diags, 1)
	assertHasCode(t, diags, diagnostics.EBreakOutsideLoop)
	if diags[0].Span == nil || diags[0].Span.StartLine != 2 {
		t.Errorf("expected diagnostic on line 2, got %+v", diags[0].Span)
	}
}

func TestReturnOutsideFunction(t *testing.T) {
	diags := mustParseAndValidate(t, heredoc.Doc(`
		celi 1
		ku_celi i min 1 ilaa 2 { celi }
		fasalka A { celi }
	`))
	assertDiagCount(t, diags, 3)
	for _, d := range diags {
		if d.Code != diagnostics.EReturnOutsideFunc {
			t.Errorf("unexpected code %s", d.Code)
		}
	}
}

// ===== Declarations =====

func TestDuplicateParam(t *testing.T) {
	diags := mustParseAndValidate(t, `hawl f(a, b, a) { celi a }`)
	assertDiagCount(t, diags, 1)
	assertHasCode(t, diags, diagnostics.EDupParam)
	if diags[0].Kind != diagnostics.KindParser {
		t.Errorf("expected parser kind, got %s", diags[0].Kind)
	}
	if !strings.Contains(diags[0].Message, "'a'") || !strings.Contains(diags[0].Message, "'f'") {
		t.Errorf("message should name parameter and function: %s", diags[0].Message)
	}
}

func TestTypedLiteralMismatch(t *testing.T) {
	tests := []struct {
		src   string
		value string
	}{
		{`tiro x = "abc"`, "abc"},
		{`qoraal s = 12.5`, "12.5"},
		{`bool b = null`, "null"},
		{`liis l = {}`, "{...}"},
		{`shey o = run`, "run"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			diags := mustParseAndValidate(t, tt.src)
			assertDiagCount(t, diags, 1)
			assertHasCode(t, diags, diagnostics.ETypeMismatch)
			if len(diags) == 1 && !strings.Contains(diags[0].Message, tt.value) {
				t.Errorf("message should quote %q: %s", tt.value, diags[0].Message)
			}
		})
	}
}

func TestNonLiteralTypedDeclarationNotChecked(t *testing.T) {
	assertNoDiags(t, mustParseAndValidate(t, `door s = "1"; tiro x = tiro(s) + 1`))
}

func TestUnknownParentClass(t *testing.T) {
	diags := mustParseAndValidate(t, heredoc.Doc(`
		fasalka B ka_dhaxal A { }
		fasalka A { }
	`))
	assertDiagCount(t, diags, 1)
	assertHasCode(t, diags, diagnostics.EParentClassNotFound)
}

func TestZeroStepLiteral(t *testing.T) {
	diags := mustParseAndValidate(t, `ku_celi i min 1 ilaa 3 by 0 { }`)
	assertHasCode(t, diags, diagnostics.EInvalidForLoop)
}

// ===== Names =====

func TestUndefinedFunction(t *testing.T) {
	diags := mustParseAndValidate(t, heredoc.Doc(`
		qor(missing(1))
		door x = [1].map(alsoMissing)
	`))
	assertDiagCount(t, diags, 1)
	assertHasCode(t, diags, diagnostics.EUndefinedFunction)
}

func TestFunctionDeclaredLaterIsKnown(t *testing.T) {
	assertNoDiags(t, mustParseAndValidate(t, heredoc.Doc(`
		hawl a() { celi b() }
		hawl b() { celi 1 }
	`)))
}

func TestUnknownClass(t *testing.T) {
	diags := mustParseAndValidate(t, `door x = cusub Nothing()`)
	assertDiagCount(t, diags, 1)
	assertHasCode(t, diags, diagnostics.EClassNotFound)
}

func TestImportDisablesNameChecks(t *testing.T) {
	assertNoDiags(t, mustParseAndValidate(t, heredoc.Doc(`
		ka_keen "lib.so"
		qor(helper())
		fasalka B ka_dhaxal Base { }
		door x = cusub Other()
	`)))
}

func TestMultipleFindings(t *testing.T) {
	diags := mustParseAndValidate(t, heredoc.Doc(`
		jooji
		hawl f(x, x) { sii_wad }
		tiro n = "n"
	`))
	assertDiagCount(t, diags, 4)
	want := []string{
		diagnostics.EBreakOutsideLoop,
		diagnostics.EDupParam,
		diagnostics.EContinueOutsideLoop,
		diagnostics.ETypeMismatch,
	}
	for i, code := range want {
		if i < len(diags) && diags[i].Code != code {
			t.Errorf("diagnostic[%d]: got %s, want %s", i, diags[i].Code, code)
		}
	}
}
