package estree

import (
	"encoding/json"
	"fmt"
	"io"

	"fortio.org/safecast"

	"estcheck/internal/source"
)

// positional fields are folded into Node.Loc and not kept as structural fields.
var positionalFields = map[string]bool{
	"type":  true,
	"loc":   true,
	"range": true,
	"start": true,
	"end":   true,
}

// Decode reads one ESTree JSON document and converts it into a Node tree.
func Decode(r io.Reader) (*Node, error) {
	var raw any
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode ESTree JSON: %w", err)
	}
	return FromValue(raw)
}

// FromValue converts a generic decoded value (encoding/json, yaml.v3, or
// hand-built maps) into a Node tree. The root must be an object carrying a
// string `type`.
func FromValue(raw any) (*Node, error) {
	v, err := convert(raw, "$")
	if err != nil {
		return nil, err
	}
	root, ok := v.(*Node)
	if !ok {
		return nil, fmt.Errorf("root value is not an ESTree node")
	}
	return root, nil
}

func convert(raw any, path string) (any, error) {
	switch v := raw.(type) {
	case nil, bool, string, float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q: %w", path, v, err)
		}
		return f, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			c, err := convert(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		return convertObject(v, path)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, item := range v {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%s: non-string key %v", path, k)
			}
			m[key] = item
		}
		return convertObject(m, path)
	case *Node:
		return v, nil
	default:
		return nil, fmt.Errorf("%s: unsupported value of type %T", path, raw)
	}
}

func convertObject(obj map[string]any, path string) (any, error) {
	typ, isNode := obj["type"].(string)
	fields := make(map[string]any, len(obj))
	for key, item := range obj {
		if isNode && positionalFields[key] {
			continue
		}
		c, err := convert(item, path+"."+key)
		if err != nil {
			return nil, err
		}
		fields[key] = c
	}
	if !isNode {
		return fields, nil
	}
	n := NewNode(typ, fields)
	loc, err := decodeLocation(obj, path)
	if err != nil {
		return nil, err
	}
	n.Loc = loc
	return n, nil
}

func decodeLocation(obj map[string]any, path string) (source.Location, error) {
	var loc source.Location
	if raw, ok := obj["loc"].(map[string]any); ok {
		start, err := decodePosition(raw["start"], path+".loc.start")
		if err != nil {
			return loc, err
		}
		end, err := decodePosition(raw["end"], path+".loc.end")
		if err != nil {
			return loc, err
		}
		loc.Start, loc.End = start, end
		loc.Source, _ = raw["source"].(string)
		loc.Flags |= source.HasLines
	}
	if raw, ok := obj["range"].([]any); ok && len(raw) == 2 {
		start, err := offset(raw[0], path+".range[0]")
		if err != nil {
			return loc, err
		}
		end, err := offset(raw[1], path+".range[1]")
		if err != nil {
			return loc, err
		}
		loc.Span = source.Span{Start: start, End: end}
		loc.Flags |= source.HasSpan
	} else if isNumber(obj["start"]) && isNumber(obj["end"]) {
		start, err := offset(obj["start"], path+".start")
		if err != nil {
			return loc, err
		}
		end, err := offset(obj["end"], path+".end")
		if err != nil {
			return loc, err
		}
		loc.Span = source.Span{Start: start, End: end}
		loc.Flags |= source.HasSpan
	}
	return loc, nil
}

func decodePosition(raw any, path string) (source.Position, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return source.Position{}, fmt.Errorf("%s: expected position object", path)
	}
	line, err := offset(obj["line"], path+".line")
	if err != nil {
		return source.Position{}, err
	}
	col, err := offset(obj["column"], path+".column")
	if err != nil {
		return source.Position{}, err
	}
	return source.Position{Line: line, Column: col}, nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, int, int64, uint64, json.Number:
		return true
	}
	return false
}

func offset(v any, path string) (uint32, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%s: expected number, got %T", path, v)
	}
	out, err := safecast.Convert[uint32](f)
	if err != nil {
		return 0, fmt.Errorf("%s: position %v is not a valid offset: %w", path, f, err)
	}
	return out, nil
}
