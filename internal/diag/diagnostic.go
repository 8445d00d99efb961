package diag

import (
	"estcheck/internal/source"
)

type Note struct {
	Location source.Location
	Msg      string
}

// Diagnostic is one early error reported against an ESTree location.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Location source.Location
	Notes    []Note
}

func New(sev Severity, code Code, loc source.Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Location: loc,
		Message:  msg,
	}
}

func NewError(code Code, loc source.Location, msg string) Diagnostic {
	return New(SevError, code, loc, msg)
}

func (d Diagnostic) WithNote(loc source.Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Location: loc, Msg: msg})
	return d
}

// Error makes a Diagnostic usable as an error for callers that want to
// surface the first violation.
func (d Diagnostic) Error() string {
	return d.Location.String() + ": " + d.Message
}
