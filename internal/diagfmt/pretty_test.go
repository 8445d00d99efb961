package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"estcheck/internal/diag"
	"estcheck/internal/source"
)

func TestPrettyLines(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleInput("prog.json"), PrettyOpts{PathMode: PathModeBasename})

	want := []string{
		"prog.json:3:4: ERROR LBL1004: label 'outer' is already declared",
		"prog.json:@40-47: ERROR CTX2006: return outside of a function",
		"prog.json: WARNING INP7002: missing range",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pretty output mismatch (-want +got):\n%s", diff)
	}
}

func TestPrettyNotes(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleInput("prog.json"), PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})

	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected a note line, got %q", buf.String())
	}
	indent := strings.Repeat(" ", len("prog.json:3:4")+2)
	want := indent + "note: prog.json:1:0: previous declaration"
	if lines[1] != want {
		t.Fatalf("note line = %q, want %q", lines[1], want)
	}
}

func TestPrettyHidesTimingPayload(t *testing.T) {
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Location{}, "timings").
		WithNote(source.Location{}, `{"kind":"file"}`))

	var buf bytes.Buffer
	Pretty(&buf, Input{Path: "x.json", Bag: bag}, PrettyOpts{ShowNotes: true})
	if strings.Contains(buf.String(), `"kind"`) {
		t.Fatalf("timing payload leaked into pretty output: %q", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	var plain, colored bytes.Buffer
	in := sampleInput("prog.json")
	Pretty(&plain, in, PrettyOpts{})
	Pretty(&colored, in, PrettyOpts{Color: true})

	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatalf("plain output contains escape codes")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatalf("colored output has no escape codes")
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		msg   string
		width int
		want  string
	}{
		{"short", 0, "short"},
		{"short", 10, "short"},
		{"a long message", 8, "a lon..."},
		{"abcdef", 2, "ab"},
		// широкие символы считаются за две колонки
		{"label 標識", 7, "labe..."},
	}
	for _, tt := range tests {
		if got := clip(tt.msg, tt.width); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.msg, tt.width, got, tt.want)
		}
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		errors, files int
		want          string
	}{
		{0, 1, "no early errors in 1 file\n"},
		{1, 1, "1 early error in 1 file\n"},
		{3, 2, "3 early errors in 2 files\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		Summary(&buf, tt.errors, tt.files, false)
		if buf.String() != tt.want {
			t.Errorf("Summary(%d, %d) = %q, want %q", tt.errors, tt.files, buf.String(), tt.want)
		}
	}
}

func TestCountErrors(t *testing.T) {
	inputs := []Input{sampleInput("a.json"), {Path: "missing.json"}}
	if got := CountErrors(inputs); got != 2 {
		t.Fatalf("CountErrors = %d, want 2", got)
	}
}

func TestDisplayPathWithoutFile(t *testing.T) {
	in := Input{Path: "/very/long/absolute/path/to/some/deeply/nested/input.json"}
	if got := in.DisplayPath(PathModeBasename, ""); got != "input.json" {
		t.Fatalf("DisplayPath = %q", got)
	}
	if got := in.DisplayPath(PathModeRelative, "/very/long/absolute/path"); got != "to/some/deeply/nested/input.json" {
		t.Fatalf("relative DisplayPath = %q", got)
	}
}
