package fact

import (
	"estcheck/internal/diag"
	"estcheck/internal/source"
)

// List is an ordered multiset of facts. Every operation returns a fresh
// list and never writes into the receiver's backing array.
type List []Fact

// ListOf returns a list holding the given facts.
func ListOf(facts ...Fact) List {
	if len(facts) == 0 {
		return nil
	}
	return append(List(nil), facts...)
}

// Mark yields a singleton list when cond holds.
func Mark(cond bool, kind Kind, name string, loc source.Location) List {
	if !cond {
		return nil
	}
	return List{Make(kind, name, loc)}
}

// Check yields a singleton error list when cond does NOT hold.
func Check(cond bool, code diag.Code, loc source.Location, msg string) List {
	if cond {
		return nil
	}
	return List{NewError(code, loc, msg)}
}

// Concat joins lists into a freshly allocated one.
func Concat(lists ...List) List {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	if n == 0 {
		return nil
	}
	out := make(List, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Any reports whether some fact matches.
func (l List) Any(pred Predicate) bool {
	for _, f := range l {
		if pred(f) {
			return true
		}
	}
	return false
}

// Filter keeps the matching facts.
func (l List) Filter(pred Predicate) List {
	var out List
	for _, f := range l {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

// Drop removes the matching facts; this is how a boundary consumes facts it
// legalizes.
func (l List) Drop(pred Predicate) List {
	var out List
	for _, f := range l {
		if !pred(f) {
			out = append(out, f)
		}
	}
	return out
}

// Raise turns every fact whose kind has a rule into an error fact at the
// same location. Other facts pass through unchanged.
func (l List) Raise(rules Rules) List {
	if len(rules) == 0 || len(l) == 0 {
		return l
	}
	out := make(List, len(l))
	for i, f := range l {
		rule, ok := rules[f.Kind]
		if !ok || f.Kind == Error {
			out[i] = f
			continue
		}
		out[i] = Fact{
			Kind:    Error,
			Code:    rule.Code,
			Message: rule.Message(f),
			Notes:   f.Notes,
			Loc:     f.Loc,
		}
	}
	return out
}

// RaiseIf is Raise restricted to facts matching pred.
func (l List) RaiseIf(pred Predicate, rule Rule) List {
	out := make(List, len(l))
	for i, f := range l {
		if f.Kind != Error && pred(f) {
			f = Fact{Kind: Error, Code: rule.Code, Message: rule.Message(f), Notes: f.Notes, Loc: f.Loc}
		}
		out[i] = f
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Transform changes the kind of matching facts, keeping Name and Loc.
func (l List) Transform(mapping map[Kind]Kind) List {
	if len(mapping) == 0 || len(l) == 0 {
		return l
	}
	out := make(List, len(l))
	for i, f := range l {
		if to, ok := mapping[f.Kind]; ok && f.Kind != Error {
			f.Kind = to
		}
		out[i] = f
	}
	return out
}

// Extract partitions the list: facts with a kind in kinds are returned as
// captured, the rest keep flowing up.
func (l List) Extract(kinds Set) (captured, rest List) {
	for _, f := range l {
		if kinds.Has(f.Kind) {
			captured = append(captured, f)
		} else {
			rest = append(rest, f)
		}
	}
	return captured, rest
}

// Errors returns the error facts.
func (l List) Errors() List {
	return l.Filter(func(f Fact) bool { return f.Kind == Error })
}

// Diagnostics converts the error facts of l into diagnostics.
func (l List) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range l {
		if f.Kind == Error {
			out = append(out, f.Diagnostic())
		}
	}
	return out
}
