// Package config loads soplang settings from the user config directory and
// the project directory.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/soplang/soplang/pkg/capabilities"
	"github.com/soplang/soplang/pkg/diagnostics"
	"github.com/soplang/soplang/pkg/evaluator"
)

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

type Format string

// Source is a settings file that contributed to the loaded Settings.
type Source struct {
	Path   string
	Format Format
}

type PolicySettings struct {
	Allow []string `toml:"allow" yaml:"allow"`
	Deny  []string `toml:"deny"  yaml:"deny"`
}

type Settings struct {
	Color         string         `toml:"color"          yaml:"color"`
	Prompt        string         `toml:"prompt"         yaml:"prompt"`
	HistoryFile   string         `toml:"history_file"   yaml:"history_file"`
	MaxIterations int64          `toml:"max_iterations" yaml:"max_iterations"`
	TimeLimitMs   int64          `toml:"time_limit_ms"  yaml:"time_limit_ms"`
	MaxCallDepth  int            `toml:"max_call_depth" yaml:"max_call_depth"`
	TraceFile     string         `toml:"trace_file"     yaml:"trace_file"`
	Strict        bool           `toml:"strict"         yaml:"strict"`
	Policy        PolicySettings `toml:"policy"         yaml:"policy"`
}

// Defaults returns the settings used when no file sets a value.
func Defaults() Settings {
	return Settings{
		Color:       string(diagnostics.ColorAuto),
		Prompt:      "soplang> ",
		HistoryFile: "~/.soplang_history",
	}
}

// Dir is the user config directory: $SOPLANG_CONFIG_DIR, or soplang/ under
// the platform config directory.
func Dir() string {
	if dir := os.Getenv("SOPLANG_CONFIG_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "soplang")
}

func userCandidates() []Source {
	dir := Dir()
	if dir == "" {
		return nil
	}
	return []Source{
		{Path: filepath.Join(dir, "config.toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, "config.yaml"), Format: FormatYAML},
		{Path: filepath.Join(dir, "config.yml"), Format: FormatYAML},
	}
}

func projectCandidates(dir string) []Source {
	return []Source{
		{Path: filepath.Join(dir, ".soplang.toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, ".soplang.yaml"), Format: FormatYAML},
		{Path: filepath.Join(dir, ".soplang.yml"), Format: FormatYAML},
	}
}

// Load layers the user settings and then the project settings over the
// defaults. In each directory the first existing file wins. Missing files
// are skipped, unreadable ones are reported together, and a parse error
// fails immediately.
func Load(projectDir string) (Settings, []Source, error) {
	settings := Defaults()
	var used []Source
	var accumulated error

	layers := [][]Source{userCandidates()}
	if projectDir != "" {
		layers = append(layers, projectCandidates(projectDir))
	}
	for _, candidates := range layers {
		for _, candidate := range candidates {
			data, err := os.ReadFile(candidate.Path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				accumulated = errors.Join(
					accumulated,
					fmt.Errorf("read settings %q: %w", candidate.Path, err),
				)
				continue
			}
			if err := decode(data, candidate.Format, &settings); err != nil {
				return Settings{}, nil, fmt.Errorf("parse settings %q: %w", candidate.Path, err)
			}
			used = append(used, candidate)
			break
		}
	}
	if accumulated != nil {
		return Settings{}, nil, accumulated
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, nil, err
	}
	return settings, used, nil
}

// decode merges data into settings; keys the file does not set keep their
// current values.
func decode(data []byte, format Format, settings *Settings) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(settings)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(settings); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported settings format %q", format)
	}
}

// Validate reports every invalid value at once.
func (s Settings) Validate() error {
	var errs []error
	switch diagnostics.ColorMode(s.Color) {
	case diagnostics.ColorAuto, diagnostics.ColorAlways, diagnostics.ColorNever:
	default:
		errs = append(errs, fmt.Errorf("color must be auto, always or never, got %q", s.Color))
	}
	if s.MaxIterations < 0 {
		errs = append(errs, errors.New("max_iterations must not be negative"))
	}
	if s.TimeLimitMs < 0 {
		errs = append(errs, errors.New("time_limit_ms must not be negative"))
	}
	if s.MaxCallDepth < 0 {
		errs = append(errs, errors.New("max_call_depth must not be negative"))
	}
	if _, err := s.CapabilityPolicy(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}
	return errors.Join(errs...)
}

// Budget converts the limits into an evaluator budget. Zero means unlimited.
func (s Settings) Budget() evaluator.Budget {
	var b evaluator.Budget
	if s.MaxIterations > 0 {
		n := s.MaxIterations
		b.MaxIterations = &n
	}
	if s.TimeLimitMs > 0 {
		ms := s.TimeLimitMs
		b.TimeMs = &ms
	}
	return b
}

// CapabilityPolicy builds the policy from the allow and deny lists. With
// neither set every capability is allowed.
func (s Settings) CapabilityPolicy() (*capabilities.Policy, error) {
	if len(s.Policy.Allow) == 0 && len(s.Policy.Deny) == 0 {
		return capabilities.AllowAll(), nil
	}
	return capabilities.New(s.Policy.Allow, s.Policy.Deny)
}

// HistoryPath expands a leading ~ in HistoryFile. It returns "" when
// history is disabled or the home directory is unknown.
func (s Settings) HistoryPath() string {
	path := s.HistoryFile
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
