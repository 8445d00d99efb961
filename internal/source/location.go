package source

import (
	"fmt"
	"strings"
)

// Position is an ESTree position: 1-based line, 0-based column.
type Position struct {
	Line   uint32
	Column uint32
}

func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// LocationFlags records which parts of a Location the producer supplied.
type LocationFlags uint8

const (
	// HasLines is set when the node carried a `loc` object.
	HasLines LocationFlags = 1 << iota
	// HasSpan is set when the node carried `range` or `start`/`end` offsets.
	HasSpan
)

// Location is the opaque source location of an ESTree node. The validator
// never interprets it beyond copying it into diagnostics.
type Location struct {
	Source string // loc.source, если парсер его заполнил
	Start  Position
	End    Position
	Span   Span
	Flags  LocationFlags
}

func (l Location) IsZero() bool {
	return l.Flags == 0 && l.Source == ""
}

func (l Location) HasLines() bool { return l.Flags&HasLines != 0 }
func (l Location) HasSpan() bool  { return l.Flags&HasSpan != 0 }

// Before orders locations by line/column when both have them, otherwise by
// offset. Locations without any position sort last.
func (l Location) Before(other Location) bool {
	switch {
	case l.HasLines() && other.HasLines():
		if l.Start != other.Start {
			return l.Start.Less(other.Start)
		}
		return l.End.Less(other.End)
	case l.HasSpan() && other.HasSpan():
		if l.Span.Start != other.Span.Start {
			return l.Span.Start < other.Span.Start
		}
		return l.Span.End < other.Span.End
	case l.IsZero() != other.IsZero():
		return !l.IsZero()
	}
	return false
}

// String renders "source:line:col" when lines are known, "@start-end" when
// only offsets are known and "<unknown>" otherwise.
func (l Location) String() string {
	var b strings.Builder
	if l.Source != "" {
		b.WriteString(l.Source)
	}
	switch {
	case l.HasLines():
		if b.Len() > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%d:%d", l.Start.Line, l.Start.Column)
	case l.HasSpan():
		fmt.Fprintf(&b, "@%s", l.Span)
	case b.Len() == 0:
		b.WriteString("<unknown>")
	}
	return b.String()
}
