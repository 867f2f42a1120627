package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/peterh/liner"

	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
	"github.com/soplang/soplang/pkg/help"
	"github.com/soplang/soplang/pkg/runtime"
)

const promptCont = "... "

// prompter reads one line after showing a prompt. *liner.State satisfies it.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// scanPrompter reads lines from a non-terminal stdin and never echoes the
// prompt.
type scanPrompter struct {
	sc *bufio.Scanner
}

func (p *scanPrompter) Prompt(string) (string, error) {
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.sc.Text(), nil
}

type repl struct {
	c       *cli
	session *runtime.Session
	in      prompter
	prompt  string
	style   lipgloss.Style
}

func (c *cli) cmdRepl(args []string) int {
	f, err := c.parseRunFlags(args)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s\nusage: soplang repl [--max-iterations N] [--timeout MS] [--max-depth N] [--allow CAP] [--deny CAP] [--color MODE|--no-color]\n", err)
		return exitUsage
	}
	opts, err := c.runtimeOptions(f)
	if err != nil {
		fmt.Fprintf(c.stderr, "policy: %s\n", err)
		return exitUsage
	}

	r := &repl{c: c, prompt: c.settings.Prompt}
	interactive := false
	if file, ok := c.stdin.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		interactive = true
		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)
		if path := c.settings.HistoryPath(); path != "" {
			if hf, err := os.Open(path); err == nil {
				_, _ = ln.ReadHistory(hf)
				_ = hf.Close()
			}
			defer func() {
				if hf, err := os.Create(path); err == nil {
					_, _ = ln.WriteHistory(hf)
					_ = hf.Close()
				}
			}()
		}
		r.in = &historyPrompter{State: ln}
	} else {
		r.in = &scanPrompter{sc: bufio.NewScanner(c.stdin)}
	}

	cwd, _ := os.Getwd()
	opts = append(opts,
		runtime.WithBaseDir(cwd),
		runtime.WithInput(r.in.Prompt),
	)
	r.session = runtime.New(opts...).NewSession()

	printer := diagnostics.NewPrinter(c.stdout, diagnostics.ParseColorMode(c.settings.Color))
	r.style = printer.Renderer().NewStyle().Foreground(lipgloss.Color("6"))

	if interactive {
		fmt.Fprintln(c.stdout, printer.Renderer().NewStyle().Bold(true).Render("Soplang "+help.Version))
		fmt.Fprintln(c.stdout, "Qor ':help' si aad u hesho caawimaad, ':exit' si aad uga baxdo. (Type :help for help, :exit to quit.)")
	}
	r.loop()
	return exitOK
}

// historyPrompter records every non-empty line it reads.
type historyPrompter struct {
	*liner.State
}

func (h *historyPrompter) Prompt(prompt string) (string, error) {
	line, err := h.State.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		h.AppendHistory(line)
	}
	return line, err
}

func (r *repl) loop() {
	for {
		src, ok := r.read()
		if !ok {
			return
		}
		if r.handle(src) {
			return
		}
	}
}

// read collects one entry, prompting for more lines until brackets balance.
// It returns false at end of input.
func (r *repl) read() (string, bool) {
	var b strings.Builder
	for {
		prompt := r.prompt
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := r.in.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C drops the pending entry.
			b.Reset()
			continue
		}
		if err != nil {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !needsMore(b.String()) {
			return b.String(), true
		}
	}
}

// handle runs one entry and reports whether the session should end.
func (r *repl) handle(src string) bool {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, ":") {
		return r.command(trimmed)
	}
	r.eval(src)
	return false
}

func (r *repl) eval(src string) {
	entry, err := r.session.Eval(context.Background(), src)
	if err != nil {
		r.c.reportError(err, src, false)
		return
	}
	if text := entry.Describe(); text != "" {
		fmt.Fprintln(r.c.stdout, r.style.Render("=> "+text))
	}
}

func (r *repl) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	out := r.c.stdout

	switch strings.ToLower(name) {
	case ":exit", ":quit":
		return true
	case ":help":
		if arg == "" {
			fmt.Fprint(out, help.Topics["repl"]+"\n\n"+help.QUICKREF)
			return false
		}
		_, content, err := help.MatchTopic(arg)
		if err != nil {
			fmt.Fprintln(r.c.stderr, err)
			return false
		}
		fmt.Fprintln(out, strings.TrimRight(content, "\n"))
	case ":reset":
		r.session.Reset()
		fmt.Fprintln(out, "Xaaladda waa la nadiifiyay (Session reset).")
	case ":vars":
		r.printVars()
	case ":load":
		if arg == "" {
			fmt.Fprintln(r.c.stderr, "usage: :load <file>")
			return false
		}
		data, err := os.ReadFile(arg)
		if err != nil {
			diag := diagnostics.New(diagnostics.EIO, nil, diagnostics.Args{"detail": err.Error()})
			r.c.printDiagnostics([]diagnostics.Diagnostic{diag}, "", false)
			return false
		}
		r.eval(string(data))
	case ":clear":
		termenv.NewOutput(out).ClearScreen()
	default:
		fmt.Fprintf(r.c.stderr, "Amar aan la aqoon (Unknown command): %s. Type :help for help.\n", name)
	}
	return false
}

func (r *repl) printVars() {
	env := r.session.Env()
	names := env.Names()
	if len(names) == 0 {
		fmt.Fprintln(r.c.stdout, "Doorsame ma jiro (No variables).")
		return
	}
	for _, name := range names {
		val, _ := env.Get(name)
		kind := string(env.TypeOf(name))
		if env.TypeOf(name) == ast.TypeDynamic {
			kind = "door " + evaluator.TypeName(val)
		}
		fmt.Fprintf(r.c.stdout, "%s = %s (%s)\n", name, evaluator.Stringify(val), kind)
	}
}

// needsMore reports whether src has unclosed brackets, an unclosed string or
// an unclosed block comment.
func needsMore(src string) bool {
	depth := 0
	for i := 0; i < len(src); i++ {
		switch ch := src[i]; ch {
		case '"', '\'':
			end := strings.IndexByte(src[i+1:], ch)
			if end < 0 {
				return true
			}
			i += end + 1
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
			} else if i+1 < len(src) && src[i+1] == '*' {
				end := strings.Index(src[i+2:], "*/")
				if end < 0 {
					return true
				}
				i += end + 3
			}
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth > 0
}
