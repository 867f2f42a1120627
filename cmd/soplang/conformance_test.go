package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soplang/soplang/internal/testutil"
)

func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("list scenarios: %v", err)
	}
	if len(dirs) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, dir := range dirs {
		dir := dir
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			if err != nil {
				t.Fatalf("failed to load scenario: %v", err)
			}
			runScenario(t, dir, scenario)
		})
	}
}

func runScenario(t *testing.T, dir string, scenario *testutil.Scenario) {
	t.Helper()
	t.Setenv("SOPLANG_CONFIG_DIR", t.TempDir())

	var stdout, stderr bytes.Buffer
	exitCode := runCLI(scenario.Args(dir), strings.NewReader(scenario.Stdin), &stdout, &stderr)

	expect := scenario.Expect
	if exitCode != expect.ExitCode {
		t.Errorf("exit code: got %d, want %d\nstderr: %s", exitCode, expect.ExitCode, stderr.String())
	}

	if expect.Stdout != nil {
		if d := testutil.Diff(*expect.Stdout, stdout.String()); d != "" {
			t.Errorf("stdout mismatch:\n%s", d)
		}
	}
	for _, want := range expect.StdoutContains {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stdout should contain %q, got: %s", want, stdout.String())
		}
	}
	for _, want := range expect.StderrContains {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr should contain %q, got: %s", want, stderr.String())
		}
	}
	if len(expect.StderrJSONSubset) > 0 {
		checkStderrJSONSubset(t, stderr.String(), expect.StderrJSONSubset)
	}
}

func checkStderrJSONSubset(t *testing.T, stderrOutput string, subset []map[string]any) {
	t.Helper()

	var actualDiags []map[string]any
	for _, line := range strings.Split(stderrOutput, "\n") {
		if strings.HasPrefix(line, "[") {
			if err := json.Unmarshal([]byte(line), &actualDiags); err != nil {
				t.Fatalf("failed to parse stderr diagnostics: %v", err)
			}
			break
		}
	}
	if actualDiags == nil {
		t.Fatalf("no JSON diagnostics on stderr: %q", stderrOutput)
	}

	// Round-trip through JSON so YAML integers compare as float64.
	raw, err := json.Marshal(subset)
	if err != nil {
		t.Fatalf("failed to encode expected subset: %v", err)
	}
	var expectedSubset []map[string]any
	if err := json.Unmarshal(raw, &expectedSubset); err != nil {
		t.Fatalf("failed to decode expected subset: %v", err)
	}

	for _, expected := range expectedSubset {
		found := false
		for _, actual := range actualDiags {
			if isSubset(expected, actual) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("stderr JSON subset not found: %v\nactual: %v", expected, actualDiags)
		}
	}
}

// isSubset checks if expected is a subset of actual (for JSON comparison).
func isSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists {
				return false
			}
			if !isSubset(ev, av) {
				return false
			}
		}
		return true

	case []any:
		a, ok := actual.([]any)
		if !ok {
			return false
		}
		if len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !isSubset(ev, a[i]) {
				return false
			}
		}
		return true

	case float64:
		if af, ok := actual.(float64); ok {
			return e == af
		}
		return false

	case string:
		if as, ok := actual.(string); ok {
			return e == as
		}
		return false

	case bool:
		if ab, ok := actual.(bool); ok {
			return e == ab
		}
		return false

	case nil:
		return actual == nil

	default:
		return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
	}
}

func TestScenarioProgramsFormatStably(t *testing.T) {
	t.Setenv("SOPLANG_CONFIG_DIR", t.TempDir())
	dirs, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("list scenarios: %v", err)
	}
	for _, dir := range dirs {
		scenario, err := testutil.LoadScenario(dir)
		if err != nil {
			t.Fatal(err)
		}
		if scenario.HasTag("errors") || scenario.HasTag("check") {
			continue
		}
		source, filename, err := testutil.ReadProgramFile(dir, scenario.Cmd)
		if err != nil || filename == "" {
			continue
		}
		t.Run(filepath.Base(dir), func(t *testing.T) {
			once := formatOrFail(t, source)
			twice := formatOrFail(t, once)
			if d := testutil.Diff(once, twice); d != "" {
				t.Errorf("formatting is not idempotent:\n%s", d)
			}
		})
	}
}

func formatOrFail(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.so")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := runCLI([]string{"fmt", path}, strings.NewReader(""), &stdout, &stderr); code != exitOK {
		t.Fatalf("fmt exit %d: %s", code, stderr.String())
	}
	return stdout.String()
}
