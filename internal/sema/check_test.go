package sema

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
	"estcheck/internal/scope"
	"estcheck/internal/source"
)

// nd builds a node from key/value pairs. Nil nodes are left out, ints
// become numbers and node slices become arrays.
func nd(typ string, kv ...any) *estree.Node {
	fields := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		switch x := kv[i+1].(type) {
		case *estree.Node:
			if x == nil {
				continue
			}
			fields[key] = x
		case []*estree.Node:
			arr := make([]any, len(x))
			for j, n := range x {
				if n != nil {
					arr[j] = n
				}
			}
			fields[key] = arr
		case int:
			fields[key] = float64(x)
		default:
			fields[key] = x
		}
	}
	return estree.NewNode(typ, fields)
}

func at(line, col uint32) source.Location {
	return source.Location{
		Start: source.Position{Line: line, Column: col},
		End:   source.Position{Line: line, Column: col + 1},
		Flags: source.HasLines,
	}
}

func list(nodes ...*estree.Node) []*estree.Node { return nodes }

func ident(name string) *estree.Node { return nd("Identifier", "name", name) }

func str(s string) *estree.Node { return nd("Literal", "value", s, "raw", `"`+s+`"`) }

func stmt(e *estree.Node) *estree.Node { return nd("ExpressionStatement", "expression", e) }

func block(body ...*estree.Node) *estree.Node { return nd("BlockStatement", "body", body) }

func program(body ...*estree.Node) *estree.Node {
	return nd("Program", "body", body, "sourceType", "script")
}

func useStrictStmt() *estree.Node {
	return nd("ExpressionStatement", "expression", str("use strict"), "directive", "use strict")
}

func decl(kind string, ids ...*estree.Node) *estree.Node {
	decls := make([]*estree.Node, len(ids))
	for i, id := range ids {
		decls[i] = nd("VariableDeclarator", "id", id)
	}
	return nd("VariableDeclaration", "kind", kind, "declarations", decls)
}

func function(typ string, id *estree.Node, params []*estree.Node, body ...*estree.Node) *estree.Node {
	return nd(typ, "id", id, "params", params, "body", block(body...))
}

func member(object *estree.Node, prop string) *estree.Node {
	return nd("MemberExpression", "object", object, "property", ident(prop), "computed", false)
}

func call(callee *estree.Node, args ...*estree.Node) *estree.Node {
	return nd("CallExpression", "callee", callee, "arguments", args)
}

func method(kind, name string, value *estree.Node) *estree.Node {
	return nd("MethodDefinition", "kind", kind, "key", ident(name), "value", value, "computed", false, "static", false)
}

func class(id, super *estree.Node, elements ...*estree.Node) *estree.Node {
	return nd("ClassDeclaration", "id", id, "superClass", super, "body", nd("ClassBody", "body", elements))
}

func check(t *testing.T, root *estree.Node, opts Options) *Result {
	t.Helper()
	res, err := Check(root, opts)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	return res
}

func codes(res *Result) []diag.Code {
	out := make([]diag.Code, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		out[i] = d.Code
	}
	return out
}

func TestDispatchTableIsComplete(t *testing.T) {
	for k := estree.Program; k < estree.KindCount; k++ {
		if handlers[k] == nil {
			t.Errorf("no handler for %s", k)
		}
	}
}

func TestValidProgramsHaveNoDiagnostics(t *testing.T) {
	fnExpr := func(body ...*estree.Node) *estree.Node {
		return function("FunctionExpression", nil, nil, body...)
	}
	cases := []struct {
		name string
		mode Mode
		root *estree.Node
	}{
		{"var twice", ModeScript, program(decl("var", ident("x")), decl("var", ident("x")))},
		{"labelled loop", ModeScript, program(
			nd("LabeledStatement", "label", ident("a"), "body",
				nd("WhileStatement", "test", nd("Literal", "value", true), "body", block(
					nd("BreakStatement", "label", ident("a")),
					nd("ContinueStatement", "label", ident("a")),
				))),
		)},
		{"super member in method", ModeScript, program(class(ident("A"), nil,
			method("method", "m", fnExpr(nd("ReturnStatement", "argument", member(nd("Super"), "foo"))))),
		)},
		{"super call in derived constructor", ModeScript, program(class(ident("B"), ident("A"),
			method("constructor", "constructor", fnExpr(stmt(call(nd("Super")))))),
		)},
		{"arrow passes super member to method", ModeScript, program(class(ident("A"), nil,
			method("method", "m", fnExpr(nd("ReturnStatement", "argument",
				nd("ArrowFunctionExpression", "params", list(), "expression", true,
					"body", member(nd("Super"), "x")))))),
		)},
		{"await in async function", ModeScript, program(
			nd("FunctionDeclaration", "id", ident("f"), "params", list(), "async", true,
				"body", block(stmt(nd("AwaitExpression", "argument", ident("x"))))),
		)},
		{"yield in generator", ModeScript, program(
			nd("FunctionDeclaration", "id", ident("g"), "params", list(), "generator", true,
				"body", block(stmt(nd("YieldExpression", "argument", nd("Literal", "value", 1))))),
		)},
		{"sloppy with", ModeScript, program(nd("WithStatement", "object", ident("o"), "body", block()))},
		{"module imports and exports", ModeModule, program(
			nd("ImportDeclaration", "source", str("m"), "specifiers", list(
				nd("ImportSpecifier", "imported", ident("a"), "local", ident("a")))),
			nd("ExportNamedDeclaration", "source", nil, "specifiers", list(
				nd("ExportSpecifier", "local", ident("a"), "exported", ident("a")))),
			nd("ExportDefaultDeclaration", "declaration", nd("Literal", "value", 1)),
			stmt(nd("AwaitExpression", "argument", ident("p"))),
		)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := check(t, tc.root, Options{Mode: tc.mode})
			if len(res.Diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
			}
		})
	}
}

func TestUnboundLabelIsReportedAtLabel(t *testing.T) {
	label := ident("missing").WithLoc(at(1, 16))
	root := program(nd("WhileStatement", "test", ident("x"), "body",
		block(nd("BreakStatement", "label", label).WithLoc(at(1, 10)))))
	res := check(t, root, Options{})
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", res.Diagnostics)
	}
	d := res.Diagnostics[0]
	if d.Code != diag.LblUnboundBreak || !strings.Contains(d.Message, "missing") {
		t.Fatalf("unexpected diagnostic %v %q", d.Code, d.Message)
	}
	if d.Location != label.Loc {
		t.Fatalf("location = %v, want %v", d.Location, label.Loc)
	}
}

func TestContinueToNonLoopLabel(t *testing.T) {
	root := program(nd("WhileStatement", "test", ident("x"), "body",
		nd("LabeledStatement", "label", ident("a"), "body",
			block(nd("ContinueStatement", "label", ident("a"))))))
	res := check(t, root, Options{})
	if diff := cmp.Diff([]diag.Code{diag.LblContinueNotLoop}, codes(res)); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	root := program(
		decl("let", ident("x").WithLoc(at(1, 4))),
		decl("let", ident("x").WithLoc(at(2, 4))),
		nd("BreakStatement").WithLoc(at(3, 0)),
		stmt(member(nd("Super"), "y")).WithLoc(at(4, 0)),
	)
	first := check(t, root, Options{})
	second := check(t, root, Options{})
	if len(first.Diagnostics) != 3 {
		t.Fatalf("expected 3 diagnostics, got %v", first.Diagnostics)
	}
	if diff := cmp.Diff(first.Diagnostics, second.Diagnostics); diff != "" {
		t.Fatalf("second run differs (-first +second):\n%s", diff)
	}
}

func TestDuplicateBindings(t *testing.T) {
	cases := []struct {
		name  string
		first string
		other string
		want  int
	}{
		{"let let", "let", "let", 1},
		{"var var", "var", "var", 0},
		{"let var", "let", "var", 1},
		{"var const", "var", "const", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			second := nd("VariableDeclarator", "id", ident("x").WithLoc(at(1, 12)), "init", nd("Literal", "value", 1))
			root := program(nd("BlockStatement", "body", list(
				decl(tc.first, ident("x").WithLoc(at(1, 4))),
				nd("VariableDeclaration", "kind", tc.other, "declarations", list(second)),
			)))
			res := check(t, root, Options{})
			if len(res.Diagnostics) != tc.want {
				t.Fatalf("got %d diagnostics, want %d: %v", len(res.Diagnostics), tc.want, res.Diagnostics)
			}
			for _, d := range res.Diagnostics {
				if !strings.Contains(d.Message, "'x'") {
					t.Fatalf("message %q does not name x", d.Message)
				}
				if len(d.Notes) != 1 {
					t.Fatalf("expected a note at the other declaration, got %v", d.Notes)
				}
			}
		})
	}
}

func TestSuperMemberContext(t *testing.T) {
	access := stmt(member(nd("Super"), "foo"))
	res := check(t, program(access), Options{})
	if len(res.Diagnostics) != 1 || !strings.Contains(res.Diagnostics[0].Message, "must be directly in a method or a constructor") {
		t.Fatalf("unexpected diagnostics at top level: %v", res.Diagnostics)
	}

	inMethod := program(class(ident("A"), nil,
		method("method", "m", function("FunctionExpression", nil, nil, access))))
	if res := check(t, inMethod, Options{}); len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics in method: %v", res.Diagnostics)
	}

	inFunction := program(function("FunctionDeclaration", ident("f"), nil, access))
	if got := codes(check(t, inFunction, Options{})); !cmp.Equal(got, []diag.Code{diag.CtxSuperMemberOutsideMeth}) {
		t.Fatalf("function: got %v", got)
	}
}

func TestWithFollowsStrictness(t *testing.T) {
	with := nd("WithStatement", "object", ident("o"), "body", nd("EmptyStatement"))
	cases := []struct {
		name string
		root *estree.Node
		opts Options
		want int
	}{
		{"sloppy script", program(with), Options{}, 0},
		{"directive", program(useStrictStmt(), with), Options{}, 1},
		{"forced strict", program(with), Options{Strict: true}, 1},
		{"module", program(with), Options{Mode: ModeModule}, 1},
		{"strict function", program(function("FunctionDeclaration", ident("f"), nil, useStrictStmt(), with)), Options{}, 1},
		{"directive after statement", program(stmt(ident("x")), useStrictStmt(), with), Options{}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := check(t, tc.root, tc.opts)
			if len(res.Diagnostics) != tc.want {
				t.Fatalf("got %v, want %d diagnostics", res.Diagnostics, tc.want)
			}
			for _, d := range res.Diagnostics {
				if d.Code != diag.StrWith {
					t.Fatalf("unexpected code %v", d.Code)
				}
			}
		})
	}
}

// A marker crossing a closure that cannot legalize it is escalated there,
// so an enclosing generator or async function never sees it.
func TestMarkersEscalateAtInnermostBoundary(t *testing.T) {
	yield := nd("YieldExpression", "argument", nd("Literal", "value", 1)).WithLoc(at(3, 4))
	await := nd("AwaitExpression", "argument", ident("p")).WithLoc(at(3, 4))
	wrap := func(outerFlag string, inner *estree.Node) *estree.Node {
		innerFn := function("FunctionDeclaration", ident("f"), nil, stmt(inner))
		return program(nd("FunctionDeclaration", "id", ident("g"), "params", list(), outerFlag, true, "body", block(innerFn)))
	}
	cases := []struct {
		name string
		root *estree.Node
		code diag.Code
	}{
		{"yield", wrap("generator", yield), diag.CtxYieldOutsideGenerator},
		{"await", wrap("async", await), diag.CtxAwaitOutsideAsync},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := check(t, tc.root, Options{})
			if len(res.Diagnostics) != 1 {
				t.Fatalf("expected one diagnostic, got %v", res.Diagnostics)
			}
			if d := res.Diagnostics[0]; d.Code != tc.code || d.Location != at(3, 4) {
				t.Fatalf("got %v at %v, want %v at 3:4", d.Code, d.Location, tc.code)
			}
		})
	}
}

func TestAnnotationsReproduceDuplicates(t *testing.T) {
	root := program(
		function("FunctionDeclaration", ident("f").WithLoc(at(1, 9)), list(ident("a").WithLoc(at(1, 11))),
			decl("let", ident("c").WithLoc(at(2, 6))),
			block(
				decl("let", ident("d").WithLoc(at(3, 8))),
				decl("let", ident("d").WithLoc(at(4, 8))),
			),
			decl("var", ident("c").WithLoc(at(5, 6))),
		),
		decl("let", ident("e").WithLoc(at(7, 4))),
		class(ident("e").WithLoc(at(8, 6)), nil),
	)
	res := check(t, root, Options{})

	var want []diag.Diagnostic
	for _, d := range res.Diagnostics {
		if d.Code == diag.BndDuplicateBinding {
			want = append(want, d)
		}
	}
	if len(want) != 3 {
		t.Fatalf("expected 3 duplicate bindings, got %v", res.Diagnostics)
	}

	var got []diag.Diagnostic
	for _, a := range res.Annotations {
		got = append(got, scope.Duplicates(a.Captures).Diagnostics()...)
	}
	byLocation := cmpopts.SortSlices(func(a, b diag.Diagnostic) bool { return a.Location.Before(b.Location) })
	if diff := cmp.Diff(want, got, byLocation); diff != "" {
		t.Fatalf("annotations disagree with the pass (-pass +annotations):\n%s", diff)
	}
}

func TestProgramAnnotation(t *testing.T) {
	root := program(
		useStrictStmt(),
		stmt(call(ident("eval"), str("x"))),
		decl("var", ident("a")),
		function("FunctionDeclaration", ident("f"), nil),
		decl("let", ident("b")),
	)
	res := check(t, root, Options{})
	a := res.Annotations[root]
	if a == nil {
		t.Fatalf("program has no annotation")
	}
	if !a.UseStrict || !a.HasDirectEval {
		t.Fatalf("unexpected flags: %+v", a)
	}
	if diff := cmp.Diff([]string{"a", "f", "b"}, scope.Names(a.Captures)); diff != "" {
		t.Fatalf("captures (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "f"}, scope.Names(a.Releases)); diff != "" {
		t.Fatalf("releases (-want +got):\n%s", diff)
	}

	module := check(t, root, Options{Mode: ModeModule}).Annotations[root]
	if len(module.Releases) != 0 {
		t.Fatalf("module must not release bindings: %v", module.Releases)
	}
}

func TestBlockAnnotationReleasesVar(t *testing.T) {
	inner := block(decl("let", ident("x")), decl("var", ident("y")))
	res := check(t, program(inner), Options{})
	a := res.Annotations[inner]
	if a == nil {
		t.Fatalf("block has no annotation")
	}
	if got := scope.Names(a.Captures); !cmp.Equal(got, []string{"x"}) {
		t.Fatalf("captures = %v", got)
	}
	if got := scope.Names(a.Releases); !cmp.Equal(got, []string{"y"}) {
		t.Fatalf("releases = %v", got)
	}
}

func TestEvalContext(t *testing.T) {
	newTarget := program(stmt(nd("MetaProperty", "meta", ident("new"), "property", ident("target"))))
	superCall := program(stmt(call(nd("Super"))))
	superMember := program(stmt(member(nd("Super"), "x")))
	cases := []struct {
		name string
		root *estree.Node
		opts Options
		want []diag.Code
	}{
		{"new.target at eval top", newTarget, Options{Mode: ModeEval}, []diag.Code{diag.CtxNewTargetOutsideFunc}},
		{"new.target in function", newTarget, Options{Mode: ModeEval, Closure: ClosureFunction}, nil},
		{"new.target in arrow", newTarget, Options{Mode: ModeEval, Closure: ClosureArrow}, []diag.Code{diag.CtxNewTargetOutsideFunc}},
		{"new.target under function expression", newTarget, Options{Mode: ModeEval, Closure: ClosureArrow, FunctionExpressionAncestor: true}, nil},
		{"new.target in script", newTarget, Options{Closure: ClosureFunction}, []diag.Code{diag.CtxNewTargetOutsideFunc}},
		{"super call in derived constructor", superCall, Options{Mode: ModeEval, Closure: ClosureDerivedConstructor}, nil},
		{"super call in method", superCall, Options{Mode: ModeEval, Closure: ClosureMethod}, []diag.Code{diag.CtxSuperCallOutsideCtor}},
		{"super member in method", superMember, Options{Mode: ModeEval, Closure: ClosureMethod}, nil},
		{"super member in function", superMember, Options{Mode: ModeEval, Closure: ClosureFunction}, []diag.Code{diag.CtxSuperMemberOutsideMeth}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := codes(check(t, tc.root, tc.opts))
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("codes (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFrameMerge(t *testing.T) {
	frame := []scope.Variable{{Kind: fact.Let, Name: "x"}}
	root := program(decl("var", ident("x")))
	cases := []struct {
		name string
		opts Options
		want int
	}{
		{"script", Options{Frame: frame}, 1},
		{"sloppy eval", Options{Mode: ModeEval, Frame: frame}, 1},
		{"strict eval", Options{Mode: ModeEval, Strict: true, Frame: frame}, 0},
		{"duplicable frame", Options{Frame: []scope.Variable{{Kind: fact.Var, Name: "x", Duplicable: true}}}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := check(t, root, tc.opts)
			if len(res.Diagnostics) != tc.want {
				t.Fatalf("got %v, want %d", res.Diagnostics, tc.want)
			}
			for _, d := range res.Diagnostics {
				if d.Code != diag.BndDuplicateFrameName {
					t.Fatalf("unexpected code %v", d.Code)
				}
			}
		})
	}
}

func TestShapeErrors(t *testing.T) {
	cases := []struct {
		name  string
		root  *estree.Node
		field string
		loc   source.Location
	}{
		{"unknown type", program(nd("Bogus").WithLoc(at(2, 0))).WithLoc(at(1, 0)), "Program.body", at(2, 0)},
		{"missing test inherits parent location", program(nd("IfStatement", "consequent", nd("EmptyStatement"))).WithLoc(at(1, 0)), "test", at(1, 0)},
		{"expression where statement expected", program(ident("x")).WithLoc(at(1, 0)), "Program.body", at(1, 0)},
		{"try without handler", program(nd("TryStatement", "block", block()).WithLoc(at(3, 0))), "handler", at(3, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Check(tc.root, Options{})
			if err == nil {
				t.Fatalf("expected shape error, got %v", res.Diagnostics)
			}
			var se *estree.ShapeError
			if !errors.As(err, &se) {
				t.Fatalf("expected *estree.ShapeError, got %T: %v", err, err)
			}
			if se.Field != tc.field {
				t.Fatalf("field = %q, want %q", se.Field, tc.field)
			}
			if se.Loc != tc.loc {
				t.Fatalf("location = %v, want %v", se.Loc, tc.loc)
			}
		})
	}
}

func TestDiagnosticsAreSorted(t *testing.T) {
	root := program(
		function("FunctionDeclaration", ident("f"), list(ident("a").WithLoc(at(1, 11)), ident("a").WithLoc(at(1, 14))),
			useStrictStmt(),
			nd("WithStatement", "object", ident("o"), "body", nd("EmptyStatement")).WithLoc(at(1, 32)),
		),
		nd("ContinueStatement").WithLoc(at(2, 0)),
		decl("let", ident("let").WithLoc(at(3, 4))),
	)
	res := check(t, root, Options{})
	want := []diag.Code{diag.BndDuplicateParam, diag.StrWith, diag.LblUnboundContinue, diag.BndLetName}
	if diff := cmp.Diff(want, codes(res)); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}
	for i := 1; i < len(res.Diagnostics); i++ {
		if res.Diagnostics[i].Location.Before(res.Diagnostics[i-1].Location) {
			t.Fatalf("diagnostics out of order at %d: %v", i, res.Diagnostics)
		}
	}
}
