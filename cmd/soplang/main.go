// Command soplang is the Soplang CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/mattn/go-isatty"

	"github.com/soplang/soplang/internal/config"
	"github.com/soplang/soplang/pkg/ast"
	"github.com/soplang/soplang/pkg/capabilities"
	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
	"github.com/soplang/soplang/pkg/formatter"
	"github.com/soplang/soplang/pkg/help"
	"github.com/soplang/soplang/pkg/lexer"
	"github.com/soplang/soplang/pkg/runtime"
)

// Exit codes.
const (
	exitOK         = 0
	exitUsage      = 1
	exitDiagnostic = 2
	exitCapability = 3
	exitRuntime    = 4
)

var usage = heredoc.Doc(`
	usage: soplang <command> [options]

	commands:
	  run <file|->      execute a program
	  check <file>      report errors without running
	  fmt <file>        print the program in canonical form (--write to rewrite)
	  tokens <file>     print the token stream
	  ast <file>        print the syntax tree as JSON
	  trace <file>      summarise a trace written by run --trace
	  repl              start the interactive shell
	  help [topic]      language reference
	  version           print the version

	'soplang <file>' is short for 'soplang run <file>'.
`)

// cli carries the streams and settings shared by every command.
type cli struct {
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	settings config.Settings
}

func main() {
	os.Exit(runCLI(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func runCLI(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	cwd, _ := os.Getwd()
	settings, _, err := config.Load(cwd)
	if err != nil {
		fmt.Fprintf(stderr, "config: %s\n", err)
		return exitUsage
	}
	c.settings = settings

	if len(args) == 0 {
		if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return c.cmdRepl(nil)
		}
		// Piped program on stdin.
		return c.cmdRun([]string{"-"})
	}

	cmd := args[0]
	switch cmd {
	case "run":
		return c.cmdRun(args[1:])
	case "check":
		return c.cmdCheck(args[1:])
	case "fmt":
		return c.cmdFmt(args[1:])
	case "tokens":
		return c.cmdTokens(args[1:])
	case "ast":
		return c.cmdAST(args[1:])
	case "trace":
		return c.cmdTrace(args[1:])
	case "repl":
		return c.cmdRepl(args[1:])
	case "help", "--help", "-h":
		return c.cmdHelp(args[1:])
	case "version", "--version", "-v":
		fmt.Fprintf(stdout, "soplang %s\n", help.Version)
		return exitOK
	default:
		if isProgramArg(cmd) {
			return c.cmdRun(args)
		}
		fmt.Fprintf(stderr, "Unknown command: %s\n\n%s", cmd, usage)
		return exitUsage
	}
}

// programExts are the conventional source file extensions. Any existing file
// is also accepted as a program.
var programExts = []string{".so", ".sop", ".spl"}

func isProgramArg(arg string) bool {
	if arg == "-" {
		return true
	}
	for _, ext := range programExts {
		if strings.HasSuffix(arg, ext) {
			return true
		}
	}
	info, err := os.Stat(arg)
	return err == nil && info.Mode().IsRegular()
}

// runFlags are the options shared by run and repl.
type runFlags struct {
	file      string
	jsonDiags bool
	tracePath string
	strict    bool
	allow     []string
	deny      []string
}

func (c *cli) parseRunFlags(args []string) (*runFlags, error) {
	f := &runFlags{tracePath: c.settings.TraceFile, strict: c.settings.Strict}

	next := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		*i++
		return args[*i], nil
	}
	nextInt := func(i *int, name string) (int64, error) {
		v, err := next(i, name)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%s expects a non-negative integer, got %q", name, v)
		}
		return n, nil
	}

	for i := 0; i < len(args); i++ {
		var err error
		switch args[i] {
		case "--json":
			f.jsonDiags = true
		case "--strict":
			f.strict = true
		case "--no-color":
			c.settings.Color = string(diagnostics.ColorNever)
		case "--color":
			var v string
			v, err = next(&i, "--color")
			c.settings.Color = string(diagnostics.ParseColorMode(v))
		case "--trace":
			f.tracePath, err = next(&i, "--trace")
		case "--max-iterations":
			c.settings.MaxIterations, err = nextInt(&i, "--max-iterations")
		case "--timeout":
			c.settings.TimeLimitMs, err = nextInt(&i, "--timeout")
		case "--max-depth":
			var n int64
			n, err = nextInt(&i, "--max-depth")
			c.settings.MaxCallDepth = int(n)
		case "--allow":
			var v string
			v, err = next(&i, "--allow")
			f.allow = append(f.allow, v)
		case "--deny":
			var v string
			v, err = next(&i, "--deny")
			f.deny = append(f.deny, v)
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				f.file = args[i]
			} else {
				err = fmt.Errorf("unknown option %s", args[i])
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// runtimeOptions turns settings and flags into runtime options.
func (c *cli) runtimeOptions(f *runFlags) ([]runtime.Option, error) {
	policy, err := c.settings.CapabilityPolicy()
	if err != nil {
		return nil, err
	}
	if len(f.allow) > 0 || len(f.deny) > 0 {
		allow := append(append([]string{}, c.settings.Policy.Allow...), f.allow...)
		deny := append(append([]string{}, c.settings.Policy.Deny...), f.deny...)
		if policy, err = capabilities.New(allow, deny); err != nil {
			return nil, err
		}
	}
	opts := []runtime.Option{
		runtime.WithPolicy(policy),
		runtime.WithStdout(c.stdout),
		runtime.WithStdin(c.stdin),
		runtime.WithBudget(c.settings.Budget()),
		runtime.WithMaxCallDepth(c.settings.MaxCallDepth),
	}
	if f.strict {
		opts = append(opts, runtime.WithStrict())
	}
	return opts, nil
}

func (c *cli) cmdRun(args []string) int {
	f, err := c.parseRunFlags(args)
	if err != nil {
		fmt.Fprintf(c.stderr, "%s\nusage: soplang run <file|-> [--json] [--strict] [--trace <path>] [--max-iterations N] [--timeout MS] [--max-depth N] [--allow CAP] [--deny CAP] [--color MODE|--no-color]\n", err)
		return exitUsage
	}
	if f.file == "" {
		fmt.Fprintln(c.stderr, "usage: soplang run <file|-> [options]")
		return exitUsage
	}

	source, filename, exitCode := c.readSource(f.file, f.jsonDiags)
	if exitCode != exitOK {
		return exitCode
	}

	opts, err := c.runtimeOptions(f)
	if err != nil {
		fmt.Fprintf(c.stderr, "policy: %s\n", err)
		return exitUsage
	}
	if filename == "" {
		cwd, _ := os.Getwd()
		opts = append(opts, runtime.WithBaseDir(cwd))
	}

	if f.tracePath != "" {
		tw, err := newTraceWriter(f.tracePath)
		if err != nil {
			fmt.Fprintf(c.stderr, "error opening trace file: %s\n", err)
			return exitUsage
		}
		defer tw.Close()
		opts = append(opts, runtime.WithRunID(tw.runID), runtime.WithTrace(tw.write))
	}

	rt := runtime.New(opts...)
	_, execErr := rt.Run(context.Background(), source, filename)
	if execErr != nil {
		return c.reportError(execErr, source, f.jsonDiags)
	}
	return exitOK
}

// reportError prints err and returns the matching exit code.
func (c *cli) reportError(err error, source string, jsonDiags bool) int {
	var derr *runtime.DiagnosticError
	if errors.As(err, &derr) {
		c.printDiagnostics(derr.Diagnostics, source, jsonDiags)
		return exitDiagnostic
	}
	var rerr *evaluator.RuntimeError
	if errors.As(err, &rerr) {
		c.printDiagnostics([]diagnostics.Diagnostic{rerr.Diagnostic()}, source, jsonDiags)
		if rerr.Code == diagnostics.ECapDenied {
			return exitCapability
		}
		return exitRuntime
	}
	fmt.Fprintln(c.stderr, err.Error())
	return exitRuntime
}

func (c *cli) printDiagnostics(diags []diagnostics.Diagnostic, source string, jsonDiags bool) {
	if jsonDiags {
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(diags, false))
		return
	}
	p := diagnostics.NewPrinter(c.stderr, diagnostics.ParseColorMode(c.settings.Color))
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(c.stderr)
		}
		fmt.Fprintln(c.stderr, p.Format(d, snippetSource(d, source)))
	}
}

// snippetSource returns source only if d points into it; errors raised in
// imported files carry their own file name.
func snippetSource(d diagnostics.Diagnostic, source string) string {
	if d.Span == nil {
		return ""
	}
	if d.Span.File != "" && d.Span.File != "-" {
		if data, err := os.ReadFile(d.Span.File); err == nil {
			return string(data)
		}
		return ""
	}
	return source
}

func (c *cli) cmdCheck(args []string) int {
	var file string
	jsonDiags := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			jsonDiags = true
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(c.stderr, "usage: soplang check <file> [--json]")
		return exitUsage
	}

	source, filename, exitCode := c.readSource(file, jsonDiags)
	if exitCode != exitOK {
		return exitCode
	}

	rt := runtime.New()
	diags := rt.Check(source, filename)
	if len(diags) > 0 {
		c.printDiagnostics(diags, source, jsonDiags)
		return exitDiagnostic
	}

	if jsonDiags {
		fmt.Fprintln(c.stdout, "[]")
	} else {
		fmt.Fprintln(c.stdout, "Khalad lama helin (No errors found).")
	}
	return exitOK
}

func (c *cli) cmdFmt(args []string) int {
	var file string
	write := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--write", "-w":
			write = true
		default:
			if args[i] == "-" || !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(c.stderr, "usage: soplang fmt <file> [--write]")
		return exitUsage
	}
	if write && file == "-" {
		fmt.Fprintln(c.stderr, "fmt: --write needs a file")
		return exitUsage
	}

	source, filename, exitCode := c.readSource(file, false)
	if exitCode != exitOK {
		return exitCode
	}

	rt := runtime.New()
	formatted, fmtErr := rt.Format(source, filename)
	if fmtErr != nil {
		return c.reportError(fmtErr, source, false)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(c.stderr, "warning: comments are not preserved by the formatter")
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			fmt.Fprintf(c.stderr, "error writing file: %s\n", err)
			return exitUsage
		}
		return exitOK
	}
	fmt.Fprint(c.stdout, formatted)
	return exitOK
}

func (c *cli) cmdTokens(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(c.stderr, "usage: soplang tokens <file>")
		return exitUsage
	}
	source, filename, exitCode := c.readSource(args[0], false)
	if exitCode != exitOK {
		return exitCode
	}
	tokens, err := runtime.New().Tokenize(source, filename)
	if err != nil {
		return c.reportError(err, source, false)
	}
	for _, tok := range tokens {
		pos := fmt.Sprintf("%d:%d", tok.Span.StartLine, tok.Span.StartCol)
		switch tok.Type {
		case lexer.TokNumber, lexer.TokString, lexer.TokIdent:
			fmt.Fprintf(c.stdout, "%-8s %-14s %q\n", pos, tok.Type, tok.Value)
		default:
			fmt.Fprintf(c.stdout, "%-8s %s\n", pos, tok.Type)
		}
	}
	return exitOK
}

func (c *cli) cmdAST(args []string) int {
	var file string
	withSpans := false
	for _, arg := range args {
		if arg == "--spans" {
			withSpans = true
		} else if arg == "-" || !strings.HasPrefix(arg, "-") {
			file = arg
		}
	}
	if file == "" {
		fmt.Fprintln(c.stderr, "usage: soplang ast <file> [--spans]")
		return exitUsage
	}
	source, filename, exitCode := c.readSource(file, false)
	if exitCode != exitOK {
		return exitCode
	}
	program, err := runtime.New().Parse(source, filename)
	if err != nil {
		return c.reportError(err, source, false)
	}
	b, err := json.MarshalIndent(ast.Dump(program, withSpans), "", "  ")
	if err != nil {
		fmt.Fprintf(c.stderr, "error encoding AST: %s\n", err)
		return exitUsage
	}
	fmt.Fprintln(c.stdout, string(b))
	return exitOK
}

func (c *cli) cmdHelp(args []string) int {
	showIndex := false
	topic := ""
	for _, arg := range args {
		if arg == "--index" {
			showIndex = true
		} else if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if showIndex {
		fmt.Fprint(c.stdout, help.StdlibIndex())
		return exitOK
	}

	if topic == "" {
		fmt.Fprint(c.stdout, help.QUICKREF)
		return exitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitUsage
	}
	fmt.Fprintln(c.stdout, strings.TrimRight(content, "\n"))
	return exitOK
}

// readSource loads a program. "-" reads stdin and yields an empty file name,
// so imports resolve against the working directory.
func (c *cli) readSource(file string, jsonDiags bool) (string, string, int) {
	if file == "-" {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			fmt.Fprintf(c.stderr, "error reading stdin: %s\n", err)
			return "", "", exitUsage
		}
		return string(data), "", exitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.New(diagnostics.EIO, nil, diagnostics.Args{"detail": err.Error()})
		c.printDiagnostics([]diagnostics.Diagnostic{diag}, "", jsonDiags)
		return "", "", exitUsage
	}
	return string(source), file, exitOK
}
