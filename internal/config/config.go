// Package config loads estcheck.toml, the per-project defaults of the
// command line checker.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"estcheck"
)

// FileName is the manifest looked up from the checked path upwards.
const FileName = "estcheck.toml"

// Config is the decoded manifest. Path and Root are empty for the defaults.
type Config struct {
	Path string `toml:"-"`
	Root string `toml:"-"`

	Check   CheckConfig    `toml:"check"`
	Globals []GlobalConfig `toml:"global"`
	Output  OutputConfig   `toml:"output"`
}

// CheckConfig mirrors the validation options.
type CheckConfig struct {
	Mode                       string `toml:"mode"`
	Strict                     bool   `toml:"strict"`
	ClosureContext             string `toml:"closure_context"`
	FunctionExpressionAncestor bool   `toml:"function_expression_ancestor"`
	MaxDiagnostics             int    `toml:"max_diagnostics"`
}

// GlobalConfig is one pre-existing binding of the scope frame.
type GlobalConfig struct {
	Name       string `toml:"name"`
	Kind       string `toml:"kind"`
	Duplicable *bool  `toml:"duplicable"`
}

// OutputConfig selects the renderer.
type OutputConfig struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

// Formats lists the renderers the CLI knows.
var Formats = []string{"pretty", "short", "json", "sarif"}

// Default returns the configuration used when no manifest is found.
func Default() *Config {
	return &Config{
		Check:  CheckConfig{Mode: "script", MaxDiagnostics: 100},
		Output: OutputConfig{Format: "pretty", Color: "auto"},
	}
}

// Find walks up from startDir looking for estcheck.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	// файл или ещё не существующий путь: начинаем с родителя
	if st, statErr := os.Stat(dir); statErr != nil || !st.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the manifest governing start. Without one it
// returns Default and false.
func Discover(start string) (*Config, bool, error) {
	path, ok, err := Find(start)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return Default(), false, nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return cfg, true, nil
}

// Load decodes and validates the manifest at path. Keys that are absent keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("check", "max_diagnostics") && cfg.Check.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("%s: [check].max_diagnostics must not be negative", path)
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first inconsistent entry.
func (c *Config) Validate() error {
	mode, err := c.Mode()
	if err != nil {
		return fmt.Errorf("[check].mode: %w", err)
	}
	if err := c.Options().Check(mode); err != nil {
		return err
	}
	if !knownFormat(c.Output.Format) {
		return fmt.Errorf("[output].format: unknown format %q (expected: %s)", c.Output.Format, strings.Join(Formats, "|"))
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("[output].color: unknown value %q (expected: auto|on|off)", c.Output.Color)
	}
	return nil
}

// Mode parses [check].mode.
func (c *Config) Mode() (estcheck.Mode, error) {
	return estcheck.ParseMode(c.Check.Mode)
}

// Bindings converts the [[global]] tables.
func (c *Config) Bindings() []estcheck.Binding {
	if len(c.Globals) == 0 {
		return nil
	}
	out := make([]estcheck.Binding, len(c.Globals))
	for i, g := range c.Globals {
		out[i] = estcheck.Binding{Name: g.Name, Kind: g.Kind, Duplicable: g.Duplicable}
	}
	return out
}

// Options builds the validation options described by the manifest.
func (c *Config) Options() estcheck.Options {
	return estcheck.Options{
		Scope:                      c.Bindings(),
		ClosureContext:             c.Check.ClosureContext,
		FunctionExpressionAncestor: c.Check.FunctionExpressionAncestor,
		Strict:                     c.Check.Strict,
	}
}

func knownFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}
