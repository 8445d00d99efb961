package sema

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"

	"estcheck/estree"
)

// fixture is one case of testdata/*.yaml. Program is an ESTree document
// written as YAML; Errors lists the expected diagnostic IDs in report order.
type fixture struct {
	Name     string   `yaml:"name"`
	Mode     string   `yaml:"mode"`
	Strict   bool     `yaml:"strict"`
	Closure  string   `yaml:"closure"`
	Program  any      `yaml:"program"`
	Errors   []string `yaml:"errors"`
	Messages []string `yaml:"messages"`
}

func loadFixtures(t *testing.T) map[string][]fixture {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no fixtures found")
	}
	out := make(map[string][]fixture, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		var cases []fixture
		if err := yaml.Unmarshal(data, &cases); err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		out[strings.TrimSuffix(filepath.Base(path), ".yaml")] = cases
	}
	return out
}

func (f fixture) options(t *testing.T) Options {
	t.Helper()
	mode, err := ParseMode(f.Mode)
	if err != nil {
		t.Fatalf("mode: %v", err)
	}
	opts := Options{Mode: mode, Strict: f.Strict}
	if f.Closure != "" {
		if opts.Closure, err = ParseClosureKind(f.Closure); err != nil {
			t.Fatalf("closure: %v", err)
		}
	}
	return opts
}

func TestFixtures(t *testing.T) {
	for file, cases := range loadFixtures(t) {
		for _, fx := range cases {
			t.Run(file+"/"+fx.Name, func(t *testing.T) {
				root, err := estree.FromValue(fx.Program)
				if err != nil {
					t.Fatalf("decode: %v", err)
				}
				res := check(t, root, fx.options(t))
				got := make([]string, len(res.Diagnostics))
				for i, d := range res.Diagnostics {
					got[i] = d.Code.ID()
				}
				if diff := cmp.Diff(fx.Errors, got, cmpopts.EquateEmpty()); diff != "" {
					t.Fatalf("diagnostics mismatch (-want +got):\n%s\n%v", diff, res.Diagnostics)
				}
				for i, msg := range fx.Messages {
					if !strings.Contains(res.Diagnostics[i].Message, msg) {
						t.Fatalf("message %d = %q, want it to contain %q", i, res.Diagnostics[i].Message, msg)
					}
				}
			})
		}
	}
}
