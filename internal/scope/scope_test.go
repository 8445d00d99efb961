package scope

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"estcheck/internal/diag"
	"estcheck/internal/fact"
	"estcheck/internal/source"
)

func at(line uint32) source.Location {
	return source.Location{Start: source.Position{Line: line}, Flags: source.HasLines}
}

func v(kind fact.Kind, name string, line uint32) Variable {
	return FromFact(fact.Make(kind, name, at(line)))
}

func errorLines(l fact.List) []uint32 {
	var out []uint32
	for _, f := range l {
		if f.IsError() {
			out = append(out, f.Loc.Start.Line)
		}
	}
	return out
}

func TestDuplicates(t *testing.T) {
	tests := []struct {
		name string
		vars []Variable
		want []uint32
	}{
		{"let let", []Variable{v(fact.Let, "x", 1), v(fact.Let, "x", 2)}, []uint32{2}},
		{"var var", []Variable{v(fact.Var, "x", 1), v(fact.Var, "x", 2)}, nil},
		{"let var", []Variable{v(fact.Let, "x", 1), v(fact.Var, "x", 2)}, []uint32{2}},
		{"var function", []Variable{v(fact.Var, "f", 1), v(fact.Function, "f", 2)}, nil},
		{"param var", []Variable{v(fact.Param, "a", 1), v(fact.Var, "a", 2)}, nil},
		{"param let", []Variable{v(fact.Param, "a", 1), v(fact.Let, "a", 2)}, []uint32{2}},
		{"class const", []Variable{v(fact.Class, "C", 1), v(fact.Const, "C", 2)}, []uint32{2}},
		{"loose loose", []Variable{v(fact.GenericLoose, "f", 1), v(fact.GenericLoose, "f", 2)}, nil},
		{"loose var", []Variable{v(fact.GenericLoose, "f", 1), v(fact.Var, "f", 2)}, []uint32{2}},
		{"rigid rigid", []Variable{v(fact.GenericRigid, "f", 1), v(fact.GenericRigid, "f", 2)}, []uint32{2}},
		{"three lets", []Variable{v(fact.Let, "x", 1), v(fact.Let, "x", 2), v(fact.Let, "x", 3)}, []uint32{2, 3}},
		{"different names", []Variable{v(fact.Let, "x", 1), v(fact.Let, "y", 2)}, nil},
		{"void ignored", []Variable{v(fact.Void, "x", 1), v(fact.Let, "x", 2)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorLines(Duplicates(tt.vars))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("error lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDuplicatesNote(t *testing.T) {
	errs := Duplicates([]Variable{v(fact.Let, "x", 1), v(fact.Const, "x", 4)})
	if len(errs) != 1 {
		t.Fatalf("want one error, got %v", errs)
	}
	e := errs[0]
	if e.Code != diag.BndDuplicateBinding || e.Message != "Identifier 'x' has already been declared" {
		t.Fatalf("unexpected error %v", e)
	}
	if len(e.Notes) != 1 || e.Notes[0].Location != at(1) {
		t.Fatalf("missing first-declaration note: %v", e.Notes)
	}
}

func TestHoist(t *testing.T) {
	lexical := []Variable{v(fact.Let, "x", 1), v(fact.GenericLoose, "f", 2)}
	passing := fact.ListOf(
		fact.Make(fact.Var, "x", at(3)),
		fact.Make(fact.Var, "y", at(4)),
		fact.Make(fact.Var, "f", at(5)),
		fact.Make(fact.Await, "", at(6)),
	)
	out := Hoist(lexical, passing)
	if diff := cmp.Diff([]uint32{3, 5}, errorLines(out)); diff != "" {
		t.Fatalf("hoist errors mismatch (-want +got):\n%s", diff)
	}
	if out[1].Kind != fact.Var || out[3].Kind != fact.Await {
		t.Fatalf("non-conflicting facts must pass through: %v", out)
	}
	if passing[0].Kind != fact.Var {
		t.Fatal("Hoist mutated its input")
	}
}

func TestCatchParameterSimplicity(t *testing.T) {
	simple := Variable{Kind: fact.Param, Name: "e", Duplicable: true, Loc: at(1)}
	pattern := Variable{Kind: fact.Param, Name: "e", Duplicable: false, Loc: at(1)}
	varE := fact.ListOf(fact.Make(fact.Var, "e", at(2)))
	if errs := Hoist([]Variable{simple}, varE).Errors(); len(errs) != 0 {
		t.Fatalf("var redeclaring a simple catch parameter is legal: %v", errs)
	}
	if errs := Hoist([]Variable{pattern}, varE).Errors(); len(errs) != 1 {
		t.Fatalf("var redeclaring a destructured catch parameter must fail: %v", errs)
	}
}

func TestMergeFrame(t *testing.T) {
	frame := []Variable{
		{Kind: fact.Var, Name: "g", Duplicable: true},
		{Kind: fact.Let, Name: "l", Duplicable: false},
	}
	declared := []Variable{
		v(fact.Var, "g", 1),
		v(fact.Let, "g", 2),
		v(fact.Var, "l", 3),
		v(fact.Function, "other", 4),
	}
	errs := MergeFrame(frame, declared)
	if diff := cmp.Diff([]uint32{2, 3}, errorLines(errs)); diff != "" {
		t.Fatalf("frame errors mismatch (-want +got):\n%s", diff)
	}
	for _, e := range errs {
		if e.Code != diag.BndDuplicateFrameName {
			t.Fatalf("unexpected code %v", e.Code)
		}
	}
}

func TestDuplicateParams(t *testing.T) {
	params := []Variable{v(fact.Param, "a", 1), v(fact.Param, "b", 2), v(fact.Param, "a", 3)}
	errs := DuplicateParams(params)
	if diff := cmp.Diff([]uint32{3}, errorLines(errs)); diff != "" {
		t.Fatalf("param errors mismatch (-want +got):\n%s", diff)
	}
	if errs[0].Code != diag.BndDuplicateParam {
		t.Fatalf("unexpected code %v", errs[0].Code)
	}
}

// Capturing and re-resolving a captured list reproduces the errors of the
// original resolution.
func TestCaptureRoundTrip(t *testing.T) {
	facts := fact.ListOf(
		fact.Make(fact.Let, "x", at(1)),
		fact.Make(fact.Yield, "", at(2)),
		fact.Make(fact.Const, "x", at(3)),
		fact.Make(fact.Class, "C", at(4)),
	)
	vars, rest := Capture(facts, fact.Lexical)
	if len(rest) != 1 || rest[0].Kind != fact.Yield {
		t.Fatalf("unexpected rest %v", rest)
	}
	first := Duplicates(vars)

	var again fact.List
	for _, captured := range vars {
		again = fact.Concat(again, fact.ListOf(captured.Fact()))
	}
	vars2, _ := Capture(again, fact.Lexical)
	if diff := cmp.Diff(first, Duplicates(vars2)); diff != "" {
		t.Fatalf("round trip diverged (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "x", "C"}, Names(vars)); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
