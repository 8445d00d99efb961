package estree

import (
	"fmt"
	"slices"
	"strings"
)

// ShapeError reports a tree that is not structurally valid ESTree. It signals
// a bug in the producer of the tree, not a problem in the checked program.
type ShapeError struct {
	Type     string // type of the offending node ("" when the value is not a node)
	Field    string // field path, empty when the node itself is at fault
	Expected string
	Actual   string
	Loc      Location
}

func (e *ShapeError) Error() string {
	var b strings.Builder
	b.WriteString("malformed ESTree")
	if e.Type != "" {
		b.WriteString(" ")
		b.WriteString(e.Type)
	}
	if e.Field != "" {
		b.WriteString(".")
		b.WriteString(e.Field)
	}
	fmt.Fprintf(&b, " at %s: expected %s, got %s", e.Loc, e.Expected, e.Actual)
	return b.String()
}

// Primitive is the primitive JSON type asserted by AssertTypeOf.
type Primitive uint8

const (
	PrimBool Primitive = iota + 1
	PrimString
	PrimNumber
)

func (p Primitive) String() string {
	switch p {
	case PrimBool:
		return "boolean"
	case PrimString:
		return "string"
	case PrimNumber:
		return "number"
	}
	return "unknown"
}

func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64:
		return "number"
	case []any:
		return "array"
	case *Node:
		if x == nil {
			return "null"
		}
		return "node " + x.Type
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func shapeErr(n *Node, field, expected string, actual any) *ShapeError {
	return &ShapeError{
		Type:     n.Type,
		Field:    field,
		Expected: expected,
		Actual:   describe(actual),
		Loc:      n.Loc,
	}
}

// AssertKind fails unless n is a node whose type is in allowed.
func AssertKind(n *Node, allowed KindSet, where string) error {
	if n == nil {
		return &ShapeError{Field: where, Expected: "one of " + strings.Join(allowed.Names(), "|"), Actual: "null"}
	}
	if n.Kind == KindInvalid {
		return &ShapeError{Type: n.Type, Field: where, Expected: "a known ESTree node type", Actual: fmt.Sprintf("%q", n.Type), Loc: n.Loc}
	}
	if !allowed.Has(n.Kind) {
		return &ShapeError{Field: where, Expected: "one of " + strings.Join(allowed.Names(), "|"), Actual: "node " + n.Type, Loc: n.Loc}
	}
	return nil
}

// AssertArray fails unless field holds an array.
func AssertArray(n *Node, field string) error {
	if _, ok := n.fields[field].([]any); !ok {
		return shapeErr(n, field, "array", n.fields[field])
	}
	return nil
}

// AssertTypeOf fails unless field holds a value of the given primitive type.
func AssertTypeOf(n *Node, field string, prim Primitive) error {
	v := n.fields[field]
	ok := false
	switch prim {
	case PrimBool:
		_, ok = v.(bool)
	case PrimString:
		_, ok = v.(string)
	case PrimNumber:
		_, ok = v.(float64)
	}
	if !ok {
		return shapeErr(n, field, prim.String(), v)
	}
	return nil
}

// AssertEnum fails unless field holds one of the allowed strings.
func AssertEnum(n *Node, field string, allowed []string) error {
	s, ok := n.fields[field].(string)
	if !ok || !slices.Contains(allowed, s) {
		return shapeErr(n, field, "one of "+strings.Join(allowed, "|"), n.fields[field])
	}
	return nil
}

// AssertObjectShape fails unless field holds a plain object whose listed
// sub-fields have the given types.
func AssertObjectShape(n *Node, field string, shape []FieldSpec) error {
	obj, ok := n.fields[field].(map[string]any)
	if !ok {
		return shapeErr(n, field, "object", n.fields[field])
	}
	for _, spec := range shape {
		v, present := obj[spec.Name]
		if !valueMatches(spec, v, present) {
			return shapeErr(n, field+"."+spec.Name, spec.describe(), v)
		}
	}
	return nil
}

// AssertLiteralValue fails unless field holds null, a boolean, a number or
// a string. RegExp literals may carry any value as long as `regex` is set.
func AssertLiteralValue(n *Node, field string) error {
	v, present := n.fields[field]
	if !present {
		return shapeErr(n, field, "literal value", nil)
	}
	switch v.(type) {
	case nil, bool, float64, string:
		return nil
	}
	if n.Object("regex") != nil {
		return nil
	}
	return shapeErr(n, field, "null|boolean|number|string", v)
}

func (spec FieldSpec) describe() string {
	switch spec.Type {
	case FieldNode:
		return "node"
	case FieldOptNode:
		return "node or null"
	case FieldNodes:
		return "array of nodes"
	case FieldNodesHoles:
		return "array of nodes or null"
	case FieldBool:
		return "boolean"
	case FieldOptBool:
		return "boolean (optional)"
	case FieldString:
		return "string"
	case FieldOptString:
		return "string (optional)"
	case FieldStringOrNull:
		return "string or null"
	case FieldEnum, FieldOptEnum:
		return "one of " + strings.Join(spec.Enum, "|")
	case FieldLiteral:
		return "literal value"
	case FieldObject, FieldOptObject:
		return "object"
	}
	return "unknown"
}

func valueMatches(spec FieldSpec, v any, present bool) bool {
	switch spec.Type {
	case FieldNode:
		n, ok := v.(*Node)
		return ok && n != nil
	case FieldOptNode:
		if !present || v == nil {
			return true
		}
		_, ok := v.(*Node)
		return ok
	case FieldNodes, FieldNodesHoles:
		items, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if item == nil && spec.Type == FieldNodesHoles {
				continue
			}
			if _, ok := item.(*Node); !ok {
				return false
			}
		}
		return true
	case FieldBool:
		_, ok := v.(bool)
		return ok
	case FieldOptBool:
		if !present || v == nil {
			return true
		}
		_, ok := v.(bool)
		return ok
	case FieldString:
		_, ok := v.(string)
		return ok
	case FieldOptString:
		if !present {
			return true
		}
		_, ok := v.(string)
		return ok
	case FieldStringOrNull:
		if v == nil {
			return present
		}
		_, ok := v.(string)
		return ok
	case FieldEnum:
		s, ok := v.(string)
		return ok && slices.Contains(spec.Enum, s)
	case FieldOptEnum:
		if !present || v == nil {
			return true
		}
		s, ok := v.(string)
		return ok && slices.Contains(spec.Enum, s)
	case FieldObject:
		_, ok := v.(map[string]any)
		return ok
	case FieldOptObject:
		if !present || v == nil {
			return true
		}
		_, ok := v.(map[string]any)
		return ok
	}
	return true
}

// CheckShape validates the fields of n against its schema entry. Child node
// types are not checked here; the traversal asserts them per position.
func CheckShape(n *Node) error {
	if n == nil {
		return &ShapeError{Expected: "node", Actual: "null"}
	}
	if n.Kind == KindInvalid || n.Kind >= KindCount {
		return &ShapeError{Type: n.Type, Expected: "a known ESTree node type", Actual: fmt.Sprintf("%q", n.Type), Loc: n.Loc}
	}
	for _, spec := range schema[n.Kind] {
		var err error
		switch spec.Type {
		case FieldBool:
			err = AssertTypeOf(n, spec.Name, PrimBool)
		case FieldString:
			err = AssertTypeOf(n, spec.Name, PrimString)
		case FieldLiteral:
			err = AssertLiteralValue(n, spec.Name)
		case FieldEnum:
			err = AssertEnum(n, spec.Name, spec.Enum)
		case FieldObject:
			err = AssertObjectShape(n, spec.Name, spec.Shape)
		case FieldNodes, FieldNodesHoles:
			if err = AssertArray(n, spec.Name); err == nil && !valueMatches(spec, n.fields[spec.Name], true) {
				err = shapeErr(n, spec.Name, spec.describe(), n.fields[spec.Name])
			}
		default:
			v, present := n.fields[spec.Name]
			if !valueMatches(spec, v, present) {
				err = shapeErr(n, spec.Name, spec.describe(), v)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
