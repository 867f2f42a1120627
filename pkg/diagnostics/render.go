package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/soplang/soplang/pkg/ast"
)

// ColorMode selects when the Printer emits ANSI colour.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode maps a config or flag value to a ColorMode, defaulting to auto.
func ParseColorMode(s string) ColorMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always", "on", "true":
		return ColorAlways
	case "never", "off", "false", "none":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Printer renders diagnostics for terminals: coloured heading, source line
// with a caret under the offending column, and the hint.
type Printer struct {
	renderer *lipgloss.Renderer
	heading  lipgloss.Style
	location lipgloss.Style
	gutter   lipgloss.Style
	caret    lipgloss.Style
	hint     lipgloss.Style
}

// NewPrinter creates a Printer whose colour profile is derived from w and mode.
func NewPrinter(w io.Writer, mode ColorMode) *Printer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	default:
		if termenv.EnvNoColor() {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	return &Printer{
		renderer: r,
		heading:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		location: r.NewStyle().Foreground(lipgloss.Color("12")),
		gutter:   r.NewStyle().Foreground(lipgloss.Color("12")),
		caret:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		hint:     r.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// Renderer exposes the underlying lipgloss renderer so callers can build
// styles that share the same colour profile.
func (p *Printer) Renderer() *lipgloss.Renderer {
	return p.renderer
}

// Format renders d. When source is non-empty and the diagnostic has a span,
// the offending line is quoted with a caret marker.
func (p *Printer) Format(d Diagnostic, source string) string {
	var b strings.Builder
	b.WriteString(p.heading.Render(d.Kind.Prefix() + ":"))
	b.WriteString(" ")
	b.WriteString(d.Message)

	if d.Span != nil && d.Span.StartLine > 0 {
		b.WriteString(fmt.Sprintf(" ee sadar (line) %d, goobta (position) %d", d.Span.StartLine, d.Span.StartCol))
		if d.Span.File != "" {
			b.WriteString("\n  ")
			b.WriteString(p.location.Render(fmt.Sprintf("--> %s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)))
		}
		if snippet := p.snippet(d.Span, source); snippet != "" {
			b.WriteString("\n")
			b.WriteString(snippet)
		}
	}
	if d.Hint != "" {
		b.WriteString("\n  ")
		b.WriteString(p.hint.Render("hint: " + d.Hint))
	}
	return b.String()
}

func (p *Printer) snippet(span *ast.Span, source string) string {
	if source == "" {
		return ""
	}
	lines := strings.Split(source, "\n")
	if span.StartLine > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[span.StartLine-1], "\r")

	col := span.StartCol - 1
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	pad := runewidth.StringWidth(strings.ReplaceAll(line[:col], "\t", "    "))

	width := 1
	if span.EndLine == span.StartLine && span.EndCol > span.StartCol {
		end := span.EndCol - 1
		if end > len(line) {
			end = len(line)
		}
		if w := runewidth.StringWidth(line[col:end]); w > 0 {
			width = w
		}
	}

	num := fmt.Sprintf("%d", span.StartLine)
	gutterPad := strings.Repeat(" ", len(num))
	var b strings.Builder
	b.WriteString(p.gutter.Render(gutterPad + " |"))
	b.WriteString("\n")
	b.WriteString(p.gutter.Render(num + " | "))
	b.WriteString(strings.ReplaceAll(line, "\t", "    "))
	b.WriteString("\n")
	b.WriteString(p.gutter.Render(gutterPad + " | "))
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(p.caret.Render(strings.Repeat("^", width)))
	return b.String()
}
