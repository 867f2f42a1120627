package testutil

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadScenarioAndArgs(t *testing.T) {
	dir := t.TempDir()
	yamlText := "cmd: [run, main.so, --json]\n" +
		"policy:\n  deny: [fs.import]\n" +
		"max_iterations: 10\n" +
		"meta:\n  tags: [budget]\n" +
		"expect:\n  exit_code: 4\n  stdout: \"\"\n"
	if err := os.WriteFile(filepath.Join(dir, "scenario.yaml"), []byte(yamlText), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScenario(dir)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if s.Expect.ExitCode != 4 || s.Expect.Stdout == nil || *s.Expect.Stdout != "" {
		t.Errorf("unexpected expectation %+v", s.Expect)
	}
	if !s.HasTag("budget") || s.HasTag("fmt") {
		t.Errorf("tags = %v", s.Meta.Tags)
	}

	want := []string{"run", filepath.Join(dir, "main.so"), "--json", "--deny", "fs.import", "--max-iterations", "10"}
	if got := s.Args(dir); !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %v, want %v", got, want)
	}
}

func TestLoadScenarioRejectsEmptyCmd(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scenario.yaml"), []byte("expect:\n  exit_code: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScenario(dir); err == nil {
		t.Error("expected an error for a scenario without cmd")
	}
}

func TestListScenariosSkipsPlainDirs(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b", "a", "empty"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"a", "b"} {
		if err := os.WriteFile(filepath.Join(root, name, "scenario.yaml"), []byte("cmd: [run]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	dirs, err := ListScenarios(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 || filepath.Base(dirs[0]) != "a" || filepath.Base(dirs[1]) != "b" {
		t.Errorf("ListScenarios = %v", dirs)
	}
}

func TestDiff(t *testing.T) {
	if d := Diff("a\n", "a\n"); d != "" {
		t.Errorf("equal inputs should not diff, got %q", d)
	}
	d := Diff("a\nb\n", "a\nc\n")
	if !strings.Contains(d, "-b") || !strings.Contains(d, "+c") {
		t.Errorf("unexpected diff:\n%s", d)
	}
}
