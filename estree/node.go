package estree

import (
	"estcheck/internal/source"
)

type (
	// Location is the opaque position information copied from a node.
	Location = source.Location
	// Position is a 1-based line, 0-based column pair.
	Position = source.Position
	// Span is a half-open range of character offsets.
	Span = source.Span
)

// Node is a decoded ESTree node. Structural fields are kept as decoded
// values: nil, bool, float64, string, *Node, []any or map[string]any.
// The checker never mutates a Node.
type Node struct {
	Kind   Kind
	Type   string
	Loc    Location
	fields map[string]any
}

// NewNode builds a node from already-converted field values. It is mainly
// useful to programmatic AST producers and tests.
func NewNode(typ string, fields map[string]any) *Node {
	kind, _ := ParseKind(typ)
	if fields == nil {
		fields = map[string]any{}
	}
	return &Node{Kind: kind, Type: typ, fields: fields}
}

// WithLoc returns n after setting its location.
func (n *Node) WithLoc(loc Location) *Node {
	n.Loc = loc
	return n
}

// Is reports whether n is non-nil and of kind k.
func (n *Node) Is(k Kind) bool {
	return n != nil && n.Kind == k
}

// Has reports whether the field is present (even when null).
func (n *Node) Has(field string) bool {
	_, ok := n.fields[field]
	return ok
}

// Field returns the raw decoded value of field.
func (n *Node) Field(field string) any {
	return n.fields[field]
}

// Child returns the node stored in field, or nil for null/absent/non-node values.
func (n *Node) Child(field string) *Node {
	child, _ := n.fields[field].(*Node)
	return child
}

// Children returns the node array stored in field. Holes (null elements)
// are kept as nil entries.
func (n *Node) Children(field string) []*Node {
	items, _ := n.fields[field].([]any)
	if len(items) == 0 {
		return nil
	}
	out := make([]*Node, len(items))
	for i, item := range items {
		out[i], _ = item.(*Node)
	}
	return out
}

// Str returns the string stored in field or "" when absent.
func (n *Node) Str(field string) string {
	s, _ := n.fields[field].(string)
	return s
}

// Bool returns the boolean stored in field or false when absent.
func (n *Node) Bool(field string) bool {
	b, _ := n.fields[field].(bool)
	return b
}

// Object returns the plain (non-node) object stored in field.
func (n *Node) Object(field string) map[string]any {
	obj, _ := n.fields[field].(map[string]any)
	return obj
}

// Name is shorthand for the `name` field of Identifier and PrivateIdentifier.
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.Str("name")
}

// FieldNames lists the present fields in no particular order.
func (n *Node) FieldNames() []string {
	out := make([]string, 0, len(n.fields))
	for k := range n.fields {
		out = append(out, k)
	}
	return out
}
