package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"estcheck/internal/diag"
	"estcheck/internal/source"
)

func TestJSONBasic(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, []Input{sampleInput("prog.json")}, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	// Парсим JSON чтобы убедиться что он валидный
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 3 || output.Errors != 2 || output.Files != 1 {
		t.Fatalf("unexpected totals: count=%d errors=%d files=%d", output.Count, output.Errors, output.Files)
	}

	first := output.Diagnostics[0]
	if first.Severity != "ERROR" || first.Code != "LBL1004" {
		t.Errorf("unexpected first diagnostic: %+v", first)
	}
	if first.Title != diag.LblDuplicateLabel.Title() {
		t.Errorf("title = %q", first.Title)
	}
	wantLoc := LocationJSON{
		File:  "prog.json",
		Start: &PositionJSON{Line: 3, Column: 4},
		End:   &PositionJSON{Line: 3, Column: 9},
	}
	if diff := cmp.Diff(wantLoc, first.Location); diff != "" {
		t.Errorf("location mismatch (-want +got):\n%s", diff)
	}
	if len(first.Notes) != 0 {
		t.Errorf("notes must be omitted unless requested")
	}

	second := output.Diagnostics[1]
	if second.Location.Range == nil || *second.Location.Range != [2]uint32{40, 47} {
		t.Errorf("expected range [40, 47], got %+v", second.Location)
	}
	if second.Location.Start != nil {
		t.Errorf("start must be absent without loc")
	}
}

func TestJSONOmitsUnknownPositions(t *testing.T) {
	out := BuildDiagnosticsOutput([]Input{sampleInput("prog.json")}, JSONOpts{PathMode: PathModeBasename})
	raw, err := json.Marshal(out.Diagnostics[2].Location)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"file":"prog.json"}` {
		t.Fatalf("unexpected location JSON: %s", raw)
	}
}

func TestJSONNotes(t *testing.T) {
	out := BuildDiagnosticsOutput([]Input{sampleInput("prog.json")}, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true})
	notes := out.Diagnostics[0].Notes
	if len(notes) != 1 || notes[0].Message != "previous declaration" {
		t.Fatalf("unexpected notes: %+v", notes)
	}
	if notes[0].Location.Start == nil || notes[0].Location.Start.Line != 1 {
		t.Fatalf("note location lost: %+v", notes[0].Location)
	}
}

func TestJSONTimingNotesAlwaysIncluded(t *testing.T) {
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Location{}, "timings").
		WithNote(source.Location{}, `{"kind":"file"}`))

	out := BuildDiagnosticsOutput([]Input{{Path: "x.json", Bag: bag}}, JSONOpts{})
	if len(out.Diagnostics) != 1 || len(out.Diagnostics[0].Notes) != 1 {
		t.Fatalf("timing payload missing: %+v", out.Diagnostics)
	}
	if out.Errors != 0 {
		t.Fatalf("timings are not errors")
	}
}

func TestJSONMaxAcrossFiles(t *testing.T) {
	inputs := []Input{sampleInput("a.json"), sampleInput("b.json")}
	out := BuildDiagnosticsOutput(inputs, JSONOpts{PathMode: PathModeBasename, Max: 4})
	if out.Count != 4 || out.Files != 2 {
		t.Fatalf("count=%d files=%d", out.Count, out.Files)
	}
	if out.Diagnostics[3].Location.File != "b.json" {
		t.Fatalf("expected the fourth entry from b.json, got %s", out.Diagnostics[3].Location.File)
	}
}

func TestJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"diagnostics\": [],\n  \"count\": 0,\n  \"errors\": 0,\n  \"files\": 0\n}\n"
	if buf.String() != want {
		t.Fatalf("empty output = %q", buf.String())
	}
}
