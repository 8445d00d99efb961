package fact

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"estcheck/internal/diag"
	"estcheck/internal/source"
)

func at(line uint32) source.Location {
	return source.Location{Start: source.Position{Line: line}, Flags: source.HasLines}
}

func kinds(l List) []Kind {
	out := make([]Kind, len(l))
	for i, f := range l {
		out[i] = f.Kind
	}
	return out
}

func TestFamilies(t *testing.T) {
	tests := []struct {
		kind Kind
		want Family
	}{
		{Void, FamilyVariable},
		{GenericRigid, FamilyVariable},
		{Break, FamilyLabel},
		{Continue, FamilyLabel},
		{Await, FamilyMarker},
		{PrivateReference, FamilyMarker},
		{Error, FamilyError},
		{KindInvalid, FamilyInvalid},
	}
	for _, tt := range tests {
		if got := tt.kind.Family(); got != tt.want {
			t.Errorf("%s.Family() = %d, want %d", tt.kind, got, tt.want)
		}
	}
	for k := Void; k < kindCount; k++ {
		back, ok := ParseKind(k.String())
		if !ok || back != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), back, ok)
		}
	}
}

func TestMarkAndCheck(t *testing.T) {
	if l := Mark(false, Await, "", at(1)); len(l) != 0 {
		t.Fatalf("Mark(false) = %v", l)
	}
	l := Mark(true, Break, "outer", at(2))
	if len(l) != 1 || l[0].Kind != Break || l[0].Name != "outer" || l[0].Loc != at(2) {
		t.Fatalf("Mark(true) = %v", l)
	}
	if l := Check(true, diag.FrmDuplicateDefault, at(3), "x"); len(l) != 0 {
		t.Fatalf("Check(true) = %v", l)
	}
	l = Check(false, diag.FrmDuplicateDefault, at(3), "More than one default clause")
	if len(l) != 1 || !l[0].IsError() || l[0].Code != diag.FrmDuplicateDefault {
		t.Fatalf("Check(false) = %v", l)
	}
}

func TestRaisePreservesLocation(t *testing.T) {
	in := ListOf(
		Make(Yield, "", at(1)),
		Make(Var, "x", at(2)),
		Errorf(diag.StrWith, at(3), "with"),
	)
	out := in.Raise(Rules{
		Yield: {Code: diag.CtxYieldOutsideGenerator, Message: Static("yield outside generator")},
		Error: {Code: diag.UnknownCode, Message: Static("must not apply")},
	})
	if diff := cmp.Diff([]Kind{Error, Var, Error}, kinds(out)); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
	if out[0].Loc != at(1) || out[0].Code != diag.CtxYieldOutsideGenerator {
		t.Fatalf("raised fact lost its origin: %v", out[0])
	}
	if out[2].Code != diag.StrWith {
		t.Fatalf("errors must never be transformed again: %v", out[2])
	}
	if in[0].Kind != Yield {
		t.Fatal("Raise mutated its input")
	}
}

func TestTransformAndExtract(t *testing.T) {
	in := ListOf(
		Make(Void, "a", at(1)),
		Make(Void, "b", at(2)),
		Make(Await, "", at(3)),
		Make(Let, "c", at(4)),
	)
	promoted := in.Transform(map[Kind]Kind{Void: Param})
	if diff := cmp.Diff([]Kind{Param, Param, Await, Let}, kinds(promoted)); diff != "" {
		t.Fatalf("transform mismatch (-want +got):\n%s", diff)
	}
	captured, rest := promoted.Extract(Of(Param, Let))
	if len(captured) != 3 || len(rest) != 1 || rest[0].Kind != Await {
		t.Fatalf("extract: captured=%v rest=%v", captured, rest)
	}
	if captured[1].Name != "b" || captured[1].Loc != at(2) {
		t.Fatalf("extract reordered or lost data: %v", captured)
	}
}

func TestPredicates(t *testing.T) {
	l := ListOf(Make(Break, "", at(1)), Make(Break, "a", at(2)), Make(Continue, "a", at(3)))
	if got := l.Drop(TestName(Labels, "a")); len(got) != 1 || got[0].Name != "" {
		t.Fatalf("Drop = %v", got)
	}
	if !l.Any(Test(Of(Continue))) || l.Any(Test(Of(Await))) {
		t.Fatal("Any misreports membership")
	}
	raised := l.RaiseIf(TestName(Of(Continue), "a"), Rule{Code: diag.LblContinueNotLoop, Message: func(f Fact) string {
		return "label " + f.Name
	}})
	if errs := raised.Errors(); len(errs) != 1 || errs[0].Message != "label a" {
		t.Fatalf("RaiseIf = %v", raised)
	}
}

func TestConcatDoesNotAlias(t *testing.T) {
	base := make(List, 1, 4)
	base[0] = Make(Var, "x", at(1))
	a := Concat(base, ListOf(Make(Let, "y", at(2))))
	b := Concat(base, ListOf(Make(Const, "z", at(3))))
	if a[1].Name != "y" || b[1].Name != "z" {
		t.Fatalf("Concat aliased its inputs: %v %v", a, b)
	}
	if Concat(nil, nil) != nil {
		t.Fatal("empty Concat must be nil")
	}
}

func TestDiagnostics(t *testing.T) {
	f := Errorf(diag.BndDuplicateBinding, at(5), "Identifier '%s' has already been declared", "x").
		WithNote(at(1), "first declared here")
	ds := ListOf(Make(Var, "x", at(1)), f).Diagnostics()
	if len(ds) != 1 {
		t.Fatalf("want one diagnostic, got %v", ds)
	}
	want := diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.BndDuplicateBinding,
		Message:  "Identifier 'x' has already been declared",
		Location: at(5),
		Notes:    []diag.Note{{Location: at(1), Msg: "first declared here"}},
	}
	if diff := cmp.Diff(want, ds[0]); diff != "" {
		t.Fatalf("diagnostic mismatch (-want +got):\n%s", diff)
	}
}

func TestMessagesAreNotFormats(t *testing.T) {
	// сообщения с '%' приходят из имён и raw-текста литералов
	msg := "Invalid left-hand side in assignment to '%d'"
	if got := NewError(diag.FrmInvalidTarget, at(2), msg).Message; got != msg {
		t.Fatalf("NewError changed the message: %q", got)
	}
	l := Check(false, diag.StrOctalLiteral, at(3), "Octal literal '0%7' in strict mode")
	if len(l) != 1 || l[0].Message != "Octal literal '0%7' in strict mode" {
		t.Fatalf("Check changed the message: %v", l)
	}
	if got := Errorf(diag.LblDuplicateLabel, at(4), "Label '%s' has already been declared", "a").Message; got != "Label 'a' has already been declared" {
		t.Fatalf("Errorf = %q", got)
	}
}
