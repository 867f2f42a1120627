// Package testutil loads the CLI scenarios under testdata/scenarios.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"gopkg.in/yaml.v3"
)

// ScenariosDir is the scenario root relative to a package two levels below
// the module root (cmd/soplang).
const ScenariosDir = "../../testdata/scenarios"

// Scenario is one CLI invocation and its expected outcome, read from
// scenario.yaml.
type Scenario struct {
	Cmd           []string        `yaml:"cmd"`
	Stdin         string          `yaml:"stdin,omitempty"`
	Policy        *ScenarioPolicy `yaml:"policy,omitempty"`
	Meta          *ScenarioMeta   `yaml:"meta,omitempty"`
	Expect        ExpectedResult  `yaml:"expect"`
	TimeoutMs     int             `yaml:"timeout_ms,omitempty"`
	MaxIterations int             `yaml:"max_iterations,omitempty"`
}

// ScenarioPolicy lists capabilities passed as --allow and --deny.
type ScenarioPolicy struct {
	Allow []string `yaml:"allow,omitempty"`
	Deny  []string `yaml:"deny,omitempty"`
}

type ScenarioMeta struct {
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of a scenario. Stdout is
// compared exactly when set; the other fields are partial matches.
type ExpectedResult struct {
	ExitCode         int              `yaml:"exit_code"`
	Stdout           *string          `yaml:"stdout,omitempty"`
	StdoutContains   []string         `yaml:"stdout_contains,omitempty"`
	StderrContains   []string         `yaml:"stderr_contains,omitempty"`
	StderrJSONSubset []map[string]any `yaml:"stderr_json_subset,omitempty"`
}

// LoadScenario loads scenario.yaml from dir.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.yaml"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %q: %w", dir, err)
	}
	if len(s.Cmd) == 0 {
		return nil, fmt.Errorf("scenario %q: cmd is empty", dir)
	}
	return &s, nil
}

// ListScenarios returns every directory under root holding a scenario.yaml,
// sorted by name.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.yaml")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Args builds the CLI arguments. Program paths (*.so) are resolved against
// the scenario directory; the policy and limits become flags.
func (s *Scenario) Args(dir string) []string {
	args := make([]string, 0, len(s.Cmd)+4)
	for _, a := range s.Cmd {
		if strings.HasSuffix(a, ".so") && !filepath.IsAbs(a) {
			a = filepath.Join(dir, a)
		}
		args = append(args, a)
	}
	if s.Policy != nil {
		for _, c := range s.Policy.Allow {
			args = append(args, "--allow", c)
		}
		for _, c := range s.Policy.Deny {
			args = append(args, "--deny", c)
		}
	}
	if s.TimeoutMs > 0 {
		args = append(args, "--timeout", strconv.Itoa(s.TimeoutMs))
	}
	if s.MaxIterations > 0 {
		args = append(args, "--max-iterations", strconv.Itoa(s.MaxIterations))
	}
	return args
}

// HasTag reports whether the scenario is tagged with tag.
func (s *Scenario) HasTag(tag string) bool {
	if s.Meta == nil {
		return false
	}
	for _, t := range s.Meta.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ReadProgramFile reads the first program file named by the scenario cmd.
func ReadProgramFile(scenarioDir string, cmd []string) (string, string, error) {
	for _, a := range cmd[1:] {
		if strings.HasSuffix(a, ".so") {
			source, err := os.ReadFile(filepath.Join(scenarioDir, a))
			if err != nil {
				return "", "", err
			}
			return string(source), a, nil
		}
	}
	return "", "", nil
}

// Diff renders a unified diff of want and got, or "" when they are equal.
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	return udiff.Unified("want", "got", want, got)
}
