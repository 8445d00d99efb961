package estree

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDecodeLocations(t *testing.T) {
	const doc = `{
		"type": "Program",
		"sourceType": "script",
		"start": 0, "end": 6,
		"body": [{
			"type": "ExpressionStatement",
			"range": [0, 2],
			"loc": {"source": "a.js", "start": {"line": 1, "column": 0}, "end": {"line": 1, "column": 2}},
			"expression": {"type": "Identifier", "name": "x", "start": 0, "end": 1}
		}]
	}`
	root, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if root.Kind != Program {
		t.Fatalf("root kind = %v, want Program", root.Kind)
	}
	if !root.Loc.HasSpan() || root.Loc.HasLines() || root.Loc.Span.End != 6 {
		t.Fatalf("unexpected program location: %+v", root.Loc)
	}
	body := root.Children("body")
	if len(body) != 1 || !body[0].Is(ExpressionStatement) {
		t.Fatalf("unexpected body: %v", body)
	}
	stmt := body[0]
	if got := stmt.Loc.String(); got != "a.js:1:0" {
		t.Fatalf("statement location = %q, want a.js:1:0", got)
	}
	if stmt.Has("loc") || stmt.Has("range") {
		t.Fatalf("positional fields must not be kept as structure: %v", stmt.FieldNames())
	}
	if name := stmt.Child("expression").Name(); name != "x" {
		t.Fatalf("identifier name = %q", name)
	}
}

func TestDecodeKeepsHoles(t *testing.T) {
	root, err := Decode(strings.NewReader(`{"type":"ArrayExpression","elements":[null,{"type":"Literal","value":1}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	elems := root.Children("elements")
	if len(elems) != 2 || elems[0] != nil || !elems[1].Is(Literal) {
		t.Fatalf("holes not preserved: %v", elems)
	}
	if err := CheckShape(root); err != nil {
		t.Fatalf("shape: %v", err)
	}
}

func TestDecodeRejectsNonNodeRoot(t *testing.T) {
	if _, err := Decode(strings.NewReader(`[1,2]`)); err == nil {
		t.Fatal("expected an error for an array root")
	}
	if _, err := Decode(strings.NewReader(`{"type":"Program","start":-1,"end":2,"body":[]}`)); err == nil {
		t.Fatal("expected an error for a negative offset")
	}
}

func TestFromValueYAML(t *testing.T) {
	const doc = `
type: VariableDeclaration
kind: let
start: 0
end: 10
declarations:
  - type: VariableDeclarator
    id: {type: Identifier, name: a}
    init: {type: Literal, value: 1, raw: "1"}
`
	var raw any
	if err := yaml.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	n, err := FromValue(raw)
	if err != nil {
		t.Fatalf("from value: %v", err)
	}
	if n.Str("kind") != "let" || n.Loc.Span.End != 10 {
		t.Fatalf("unexpected node %+v", n)
	}
	lit := n.Children("declarations")[0].Child("init")
	if v, ok := lit.Field("value").(float64); !ok || v != 1 {
		t.Fatalf("integer literal not normalised to float64: %#v", lit.Field("value"))
	}
	if err := CheckShape(lit); err != nil {
		t.Fatalf("shape: %v", err)
	}
}

func TestCheckShape(t *testing.T) {
	ident := NewNode("Identifier", map[string]any{"name": "a"})
	tests := []struct {
		name  string
		node  *Node
		field string
	}{
		{
			name:  "unknown type",
			node:  NewNode("JSXElement", nil),
			field: "",
		},
		{
			name:  "missing body",
			node:  NewNode("WhileStatement", map[string]any{"test": ident}),
			field: "body",
		},
		{
			name:  "bad operator",
			node:  NewNode("BinaryExpression", map[string]any{"operator": "<>", "left": ident, "right": ident}),
			field: "operator",
		},
		{
			name:  "bad declaration kind",
			node:  NewNode("VariableDeclaration", map[string]any{"kind": "using", "declarations": []any{}}),
			field: "kind",
		},
		{
			name:  "array of non-nodes",
			node:  NewNode("BlockStatement", map[string]any{"body": []any{"x"}}),
			field: "body",
		},
		{
			name: "template cooked missing",
			node: NewNode("TemplateElement", map[string]any{
				"tail":  true,
				"value": map[string]any{"raw": "x"},
			}),
			field: "value.cooked",
		},
		{
			name:  "literal object value",
			node:  NewNode("Literal", map[string]any{"value": []any{}}),
			field: "value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckShape(tt.node)
			var se *ShapeError
			if !errors.As(err, &se) {
				t.Fatalf("expected ShapeError, got %v", err)
			}
			if se.Field != tt.field {
				t.Fatalf("field = %q, want %q (%v)", se.Field, tt.field, err)
			}
		})
	}
}

func TestCheckShapeAcceptsRegExpLiteral(t *testing.T) {
	n := NewNode("Literal", map[string]any{
		"value": map[string]any{},
		"regex": map[string]any{"pattern": "a", "flags": "g"},
	})
	if err := CheckShape(n); err != nil {
		t.Fatalf("regexp literal rejected: %v", err)
	}
}

func TestAssertKind(t *testing.T) {
	lhs := Kinds(Identifier, MemberExpression)
	if err := AssertKind(NewNode("Identifier", map[string]any{"name": "a"}), lhs, "left"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := AssertKind(NewNode("Literal", map[string]any{"value": nil}), lhs, "left")
	if err == nil || !strings.Contains(err.Error(), "Identifier|MemberExpression") {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := AssertKind(nil, lhs, "left"); err == nil {
		t.Fatal("expected error for null child")
	}
}

func TestKindTables(t *testing.T) {
	for k := Kind(1); k < KindCount; k++ {
		name := k.String()
		if name == "" || name == kindNames[KindInvalid] {
			t.Fatalf("kind %d has no name", k)
		}
		back, ok := ParseKind(name)
		if !ok || back != k {
			t.Fatalf("ParseKind(%q) = %v, %v", name, back, ok)
		}
	}
	if _, ok := ParseKind("ImportAttribute"); ok {
		t.Fatal("ImportAttribute is not part of the supported kinds")
	}
	set := Kinds(Program, ExportAllDeclaration)
	if !set.Has(ExportAllDeclaration) || set.Has(Identifier) {
		t.Fatalf("kind set broken: %v", set.Names())
	}
}

func TestAssertTypeOf(t *testing.T) {
	n := NewNode("UnaryExpression", map[string]any{"prefix": true, "operator": "!", "argument": 1.0})
	if err := AssertTypeOf(n, "prefix", PrimBool); err != nil {
		t.Fatalf("prefix: %v", err)
	}
	if err := AssertTypeOf(n, "operator", PrimString); err != nil {
		t.Fatalf("operator: %v", err)
	}
	if err := AssertTypeOf(n, "argument", PrimNumber); err != nil {
		t.Fatalf("argument: %v", err)
	}
	err := AssertTypeOf(n, "operator", PrimBool)
	var se *ShapeError
	if !errors.As(err, &se) || se.Expected != "boolean" || se.Actual != "string" {
		t.Fatalf("unexpected error %v", err)
	}
	if err := AssertTypeOf(n, "missing", PrimString); err == nil {
		t.Fatalf("a missing field is not a string")
	}
}
