package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time     string `json:"time"`
	Seq      uint64 `json:"seq"`
	Kind     string `json:"kind"`
	Scope    string `json:"scope"`
	SpanID   uint64 `json:"span_id,omitempty"`
	ParentID uint64 `json:"parent_id,omitempty"`
	Name     string `json:"name"`
	Detail   string `json:"detail,omitempty"`
	Attrs
}

func formatNDJSON(ev *Event) []byte {
	data, _ := json.Marshal(jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Attrs:    ev.Attrs,
	})
	return append(data, '\n')
}

var kindMarks = [...]string{
	KindSpanBegin: "→ ",
	KindSpanEnd:   "← ",
	KindPoint:     "• ",
	KindHeartbeat: "♡ ",
}

// formatText: [seq] →/← name (detail) path mode=... {captured=.. facts=..}
func formatText(ev *Event) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%6d] ", ev.Seq)
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}
	if int(ev.Kind) < len(kindMarks) {
		sb.WriteString(kindMarks[ev.Kind])
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	ev.Attrs.writeText(&sb)
	sb.WriteByte('\n')
	return []byte(sb.String())
}

func (a Attrs) writeText(sb *strings.Builder) {
	if a.Path != "" {
		sb.WriteString(" ")
		sb.WriteString(a.Path)
	}
	if a.Total > 0 {
		fmt.Fprintf(sb, " %d/%d files", a.Done, a.Total)
	}

	var kv []string
	if a.Mode != "" {
		kv = append(kv, "mode="+a.Mode)
	}
	if a.Node != "" {
		kv = append(kv, "node="+a.Node)
	}
	if a.Captured > 0 {
		kv = append(kv, fmt.Sprintf("captured=%d", a.Captured))
	}
	if a.Facts > 0 {
		kv = append(kv, fmt.Sprintf("facts=%d", a.Facts))
	}
	if a.Diagnostics > 0 {
		kv = append(kv, fmt.Sprintf("diagnostics=%d", a.Diagnostics))
	}
	if a.Cached {
		kv = append(kv, "cached")
	}
	if len(kv) > 0 {
		sb.WriteString(" {")
		sb.WriteString(strings.Join(kv, ", "))
		sb.WriteString("}")
	}
}
