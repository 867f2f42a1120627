package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
)

// traceWriter appends trace events to a file as NDJSON.
type traceWriter struct {
	runID string
	f     *os.File
	buf   *bufio.Writer
	enc   *json.Encoder
	err   error
}

func newTraceWriter(path string) (*traceWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &traceWriter{
		runID: uuid.NewString(),
		f:     f,
		buf:   buf,
		enc:   json.NewEncoder(buf),
	}, nil
}

func (tw *traceWriter) write(ev evaluator.TraceEvent) {
	if tw.err != nil {
		return
	}
	tw.err = tw.enc.Encode(ev)
}

func (tw *traceWriter) Close() error {
	if err := tw.buf.Flush(); err != nil && tw.err == nil {
		tw.err = err
	}
	if err := tw.f.Close(); err != nil && tw.err == nil {
		tw.err = err
	}
	return tw.err
}

// TraceSummary aggregates one trace file.
type TraceSummary struct {
	RunID          string         `json:"runId"`
	TotalEvents    int            `json:"totalEvents"`
	Status         string         `json:"status,omitempty"`
	FnCalls        int            `json:"fnCalls"`
	FnCallsByName  map[string]int `json:"fnCallsByName"`
	Loops          int            `json:"loops"`
	Imports        []string       `json:"imports"`
	CaughtErrors   int            `json:"caughtErrors"`
	BudgetExceeded int            `json:"budgetExceeded"`
	StartTime      string         `json:"startTime,omitempty"`
	EndTime        string         `json:"endTime,omitempty"`
	DurationMs     float64        `json:"durationMs"`
}

type traceEvent struct {
	Event string         `json:"event"`
	RunID string         `json:"runId"`
	TS    string         `json:"ts"`
	Data  map[string]any `json:"data,omitempty"`
}

func (c *cli) cmdTrace(args []string) int {
	var file string
	textOutput := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--json":
			textOutput = false
		case "--text":
			textOutput = true
		default:
			if !strings.HasPrefix(args[i], "-") {
				file = args[i]
			}
		}
	}

	if file == "" {
		fmt.Fprintln(c.stderr, "usage: soplang trace <file.jsonl> [--json|--text]")
		return exitUsage
	}

	f, err := os.Open(file)
	if err != nil {
		diag := diagnostics.New(diagnostics.EIO, nil, diagnostics.Args{"detail": err.Error()})
		c.printDiagnostics([]diagnostics.Diagnostic{diag}, "", false)
		return exitUsage
	}
	defer f.Close()

	summary := computeTraceSummary(f)

	if textOutput {
		printTraceSummaryText(c.stdout, summary)
		return exitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Fprintln(c.stdout, string(b))
	return exitOK
}

func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		FnCallsByName: make(map[string]int),
		Imports:       []string{},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event traceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch evaluator.TraceEventType(event.Event) {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.TS
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.TS
			if s, ok := event.Data["status"].(string); ok {
				summary.Status = s
			}
		case evaluator.TraceFnCallStart:
			summary.FnCalls++
			if name, ok := event.Data["fn"].(string); ok {
				summary.FnCallsByName[name]++
			}
		case evaluator.TraceLoopStart:
			summary.Loops++
		case evaluator.TraceImportStart:
			if path, ok := event.Data["path"].(string); ok {
				summary.Imports = append(summary.Imports, path)
			}
		case evaluator.TraceTryCatch:
			summary.CaughtErrors++
		case evaluator.TraceBudgetExceeded:
			summary.BudgetExceeded++
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := parseTime(summary.StartTime)
		end, err2 := parseTime(summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Milliseconds())
		}
	}

	return summary
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	if s.Status != "" {
		fmt.Fprintf(w, "Status: %s\n", s.Status)
	}
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Calls: %d\n", s.FnCalls)
	names := make([]string, 0, len(s.FnCallsByName))
	for name := range s.FnCallsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.FnCallsByName[name])
	}
	fmt.Fprintf(w, "Loops: %d\n", s.Loops)
	if len(s.Imports) > 0 {
		fmt.Fprintf(w, "Imports: %s\n", strings.Join(s.Imports, ", "))
	}
	if s.CaughtErrors > 0 {
		fmt.Fprintf(w, "Caught errors: %d\n", s.CaughtErrors)
	}
	if s.BudgetExceeded > 0 {
		fmt.Fprintf(w, "Budget exceeded: %d\n", s.BudgetExceeded)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.0fms\n", s.DurationMs)
	}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
