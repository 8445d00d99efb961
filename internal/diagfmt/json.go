package diagfmt

import (
	"encoding/json"
	"io"

	"estcheck/internal/diag"
	"estcheck/internal/source"
)

// PositionJSON is an ESTree position: 1-based line, 0-based column.
type PositionJSON struct {
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

// LocationJSON представляет местоположение узла для JSON. Поля, которых
// не было во входном дереве, опускаются.
type LocationJSON struct {
	File   string        `json:"file"`
	Source string        `json:"source,omitempty"`
	Start  *PositionJSON `json:"start,omitempty"`
	End    *PositionJSON `json:"end,omitempty"`
	Range  *[2]uint32    `json:"range,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Files       int              `json:"files"`
}

func makeLocation(path string, loc source.Location) LocationJSON {
	out := LocationJSON{File: path, Source: loc.Source}
	if loc.HasLines() {
		out.Start = &PositionJSON{Line: loc.Start.Line, Column: loc.Start.Column}
		out.End = &PositionJSON{Line: loc.End.Line, Column: loc.End.Column}
	}
	if loc.HasSpan() {
		out.Range = &[2]uint32{loc.Span.Start, loc.Span.End}
	}
	return out
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
// opts.Max ограничивает общее число диагностик по всем файлам.
func BuildDiagnosticsOutput(inputs []Input, opts JSONOpts) DiagnosticsOutput {
	output := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0),
		Files:       len(inputs),
	}

	for _, in := range inputs {
		path := in.DisplayPath(opts.PathMode, opts.BaseDir)
		for _, d := range in.items() {
			if opts.Max > 0 && len(output.Diagnostics) >= opts.Max {
				break
			}
			if d.Severity >= diag.SevError {
				output.Errors++
			}

			diagJSON := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Title:    d.Code.Title(),
				Message:  d.Message,
				Location: makeLocation(path, d.Location),
			}

			// полезная нагрузка таймингов идёт всегда
			includeNotes := opts.IncludeNotes || d.Code == diag.ObsTimings
			if includeNotes && len(d.Notes) > 0 {
				diagJSON.Notes = make([]NoteJSON, len(d.Notes))
				for j, note := range d.Notes {
					diagJSON.Notes[j] = NoteJSON{
						Message:  note.Msg,
						Location: makeLocation(path, note.Location),
					}
				}
			}
			output.Diagnostics = append(output.Diagnostics, diagJSON)
		}
	}

	output.Count = len(output.Diagnostics)
	return output
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, inputs []Input, opts JSONOpts) error {
	output := BuildDiagnosticsOutput(inputs, opts)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
