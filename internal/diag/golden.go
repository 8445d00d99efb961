package diag

import (
	"fmt"
	"sort"
	"strings"
)

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden files and the CLI "short" format:
//
//	error BND3001 input.json:3:4 Variable 'x' has already been declared
//
// Diagnostics are sorted by location; notes follow as "note" lines when requested.
func FormatGoldenDiagnostics(diags []Diagnostic, path string, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}

	sorted := make([]Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Location.Before(sorted[j].Location)
	})

	var b strings.Builder
	for i, d := range sorted {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeGoldenLine(&b, severityLabel(d.Severity), d.Code, path, d.Location.String(), d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			b.WriteByte('\n')
			writeGoldenLine(&b, "note", d.Code, path, n.Location.String(), n.Msg)
		}
	}
	return b.String()
}

func writeGoldenLine(b *strings.Builder, sev string, code Code, path, loc, msg string) {
	where := loc
	if path != "" {
		where = path + ":" + loc
	}
	fmt.Fprintf(b, "%s %s %s %s", sev, code.ID(), where, sanitizeMessage(msg))
}

func severityLabel(sev Severity) string {
	switch sev {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	default:
		return "info"
	}
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
