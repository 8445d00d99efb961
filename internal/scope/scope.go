package scope

import (
	"fmt"

	"estcheck/internal/diag"
	"estcheck/internal/fact"
	"estcheck/internal/source"
)

// Kind enumerates the scope boundaries that capture variables.
type Kind uint8

const (
	KindInvalid     Kind = iota
	KindProgram          // Program node of a script, module or eval
	KindClosure          // function, arrow, method or constructor
	KindBlock            // block statement
	KindSwitch           // case clauses of one switch
	KindCatch            // catch clause, parameter plus body
	KindForHead          // lexical declaration in a for head
	KindStaticBlock      // class static block
	KindFieldInit        // class field initializer
)

func (k Kind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindClosure:
		return "closure"
	case KindBlock:
		return "block"
	case KindSwitch:
		return "switch"
	case KindCatch:
		return "catch"
	case KindForHead:
		return "for-head"
	case KindStaticBlock:
		return "static-block"
	case KindFieldInit:
		return "field-init"
	default:
		return "invalid"
	}
}

// Variable is a declared name claimed by a scope boundary.
type Variable struct {
	Kind       fact.Kind
	Name       string
	Duplicable bool
	Loc        source.Location
}

func (v Variable) String() string {
	return fmt.Sprintf("%s %s", v.Kind, v.Name)
}

// Fact turns the variable back into the fact it was captured from.
func (v Variable) Fact() fact.Fact {
	return fact.Make(v.Kind, v.Name, v.Loc)
}

// IsDuplicable reports whether a binding of kind k may be redeclared by
// another duplicable binding.
func IsDuplicable(k fact.Kind) bool {
	switch k {
	case fact.Var, fact.Function, fact.Param, fact.GenericLoose:
		return true
	}
	return false
}

// FromFact converts a variable fact to a Variable with the default
// duplicable flag of its kind.
func FromFact(f fact.Fact) Variable {
	return Variable{Kind: f.Kind, Name: f.Name, Duplicable: IsDuplicable(f.Kind), Loc: f.Loc}
}

// Conflicts reports whether a and b cannot share a name in one scope.
// Loose block functions only tolerate other loose block functions.
func Conflicts(a, b Variable) bool {
	if a.Name != b.Name || a.Kind == fact.Void || b.Kind == fact.Void {
		return false
	}
	if a.Kind == fact.GenericLoose || b.Kind == fact.GenericLoose {
		return a.Kind != b.Kind
	}
	return !a.Duplicable || !b.Duplicable
}

// Capture removes the variable facts with a kind in kinds from facts and
// returns them as Variables in source order.
func Capture(facts fact.List, kinds fact.Set) ([]Variable, fact.List) {
	captured, rest := facts.Extract(kinds)
	if len(captured) == 0 {
		return nil, rest
	}
	vars := make([]Variable, len(captured))
	for i, f := range captured {
		vars[i] = FromFact(f)
	}
	return vars, rest
}

func redeclared(v, first Variable) fact.Fact {
	return fact.Errorf(diag.BndDuplicateBinding, v.Loc, "Identifier '%s' has already been declared", v.Name).
		WithNote(first.Loc, "first declared here")
}

// Duplicates reports every variable that conflicts with an earlier one of
// the same scope. Each offending declaration yields exactly one error.
func Duplicates(vars []Variable) fact.List {
	var (
		out    fact.List
		byName = make(map[string][]int, len(vars))
	)
	for i, v := range vars {
		for _, j := range byName[v.Name] {
			if Conflicts(vars[j], v) {
				out = append(out, redeclared(v, vars[j]))
				break
			}
		}
		byName[v.Name] = append(byName[v.Name], i)
	}
	return out
}

// DuplicateParams reports repeated parameter names. Callers decide whether
// the parameter list requires unique names.
func DuplicateParams(params []Variable) fact.List {
	var out fact.List
	seen := make(map[string]Variable, len(params))
	for _, p := range params {
		if first, ok := seen[p.Name]; ok {
			out = append(out, fact.Errorf(diag.BndDuplicateParam, p.Loc, "Duplicate parameter name '%s' not allowed in this context", p.Name).
				WithNote(first.Loc, "first declared here"))
			continue
		}
		seen[p.Name] = p
	}
	return out
}

// Hoist checks the hoisting facts leaving a block against the lexical
// bindings of that block. Colliding facts become errors and stop there.
func Hoist(lexical []Variable, passing fact.List) fact.List {
	if len(lexical) == 0 || len(passing) == 0 {
		return passing
	}
	byName := make(map[string]Variable, len(lexical))
	for _, v := range lexical {
		if _, ok := byName[v.Name]; !ok {
			byName[v.Name] = v
		}
	}
	out := make(fact.List, len(passing))
	for i, f := range passing {
		out[i] = f
		if !fact.Hoisting.Has(f.Kind) {
			continue
		}
		if lex, ok := byName[f.Name]; ok && Conflicts(lex, FromFact(f)) {
			out[i] = redeclared(FromFact(f), lex)
		}
	}
	return out
}

// MergeFrame checks the bindings declared by a program against the
// caller-supplied frame of pre-existing bindings.
func MergeFrame(frame, declared []Variable) fact.List {
	if len(frame) == 0 || len(declared) == 0 {
		return nil
	}
	byName := make(map[string]Variable, len(frame))
	for _, v := range frame {
		byName[v.Name] = v
	}
	var out fact.List
	for _, v := range declared {
		existing, ok := byName[v.Name]
		if !ok || !Conflicts(existing, v) {
			continue
		}
		out = append(out, fact.Errorf(diag.BndDuplicateFrameName, v.Loc, "Identifier '%s' has already been declared", v.Name))
	}
	return out
}

// Select returns the variables whose kind is in kinds.
func Select(vars []Variable, kinds fact.Set) []Variable {
	var out []Variable
	for _, v := range vars {
		if kinds.Has(v.Kind) {
			out = append(out, v)
		}
	}
	return out
}

// Names lists variable names in order, keeping repeats.
func Names(vars []Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}
