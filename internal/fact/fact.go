package fact

import (
	"fmt"

	"estcheck/internal/diag"
	"estcheck/internal/source"
)

// Fact is one pending obligation, contextual marker or resolved error
// flowing up the tree. Loc is the location of the node the fact was made
// for and survives every transform.
type Fact struct {
	Kind    Kind
	Name    string
	Code    diag.Code // Error only
	Message string    // Error only
	Notes   []diag.Note
	Loc     source.Location
}

// Make builds a non-error fact.
func Make(kind Kind, name string, loc source.Location) Fact {
	return Fact{Kind: kind, Name: name, Loc: loc}
}

// NewError builds an error fact with a ready message.
func NewError(code diag.Code, loc source.Location, msg string) Fact {
	return Fact{Kind: Error, Code: code, Message: msg, Loc: loc}
}

// Errorf builds an error fact with a formatted message.
func Errorf(code diag.Code, loc source.Location, format string, args ...any) Fact {
	return NewError(code, loc, fmt.Sprintf(format, args...))
}

// WithNote returns f with an extra note attached.
func (f Fact) WithNote(loc source.Location, msg string) Fact {
	notes := make([]diag.Note, len(f.Notes), len(f.Notes)+1)
	copy(notes, f.Notes)
	f.Notes = append(notes, diag.Note{Location: loc, Msg: msg})
	return f
}

func (f Fact) IsError() bool { return f.Kind == Error }

// Diagnostic converts an error fact into the reported record.
func (f Fact) Diagnostic() diag.Diagnostic {
	d := diag.NewError(f.Code, f.Loc, f.Message)
	for _, n := range f.Notes {
		d = d.WithNote(n.Location, n.Msg)
	}
	return d
}

func (f Fact) String() string {
	switch {
	case f.Kind == Error:
		return fmt.Sprintf("error(%s %s)@%s", f.Code.ID(), f.Message, f.Loc)
	case f.Name != "":
		return fmt.Sprintf("%s(%s)@%s", f.Kind, f.Name, f.Loc)
	}
	return fmt.Sprintf("%s@%s", f.Kind, f.Loc)
}

// Predicate selects facts.
type Predicate func(Fact) bool

// Test matches facts whose kind is in kinds.
func Test(kinds Set) Predicate {
	return func(f Fact) bool { return kinds.Has(f.Kind) }
}

// TestName matches facts whose kind is in kinds and whose Name equals name.
func TestName(kinds Set, name string) Predicate {
	return func(f Fact) bool { return kinds.Has(f.Kind) && f.Name == name }
}

// Rule describes how Raise turns a fact into an error.
type Rule struct {
	Code diag.Code
	// Message renders the error text; a fixed string works via Static.
	Message func(Fact) string
}

// Static is a Rule message that ignores the fact.
func Static(msg string) func(Fact) string {
	return func(Fact) string { return msg }
}

// Rules maps fact kinds to their escalation.
type Rules map[Kind]Rule
