package sema

import (
	"unicode"
	"unicode/utf8"

	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
)

var keywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true,
}

var strictReserved = map[string]bool{
	"implements": true, "interface": true, "let": true, "package": true,
	"private": true, "protected": true, "public": true, "static": true,
	"yield": true,
}

const (
	zwnj = '‌'
	zwj  = '‍'
)

var (
	idStart    = []*unicode.RangeTable{unicode.L, unicode.Nl, unicode.Other_ID_Start}
	idContinue = []*unicode.RangeTable{unicode.L, unicode.Nl, unicode.Other_ID_Start, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, unicode.Other_ID_Continue}
)

// isIdentifierName reports whether s is an IdentifierName: ID_Start, `$`
// or `_` followed by ID_Continue, `$`, ZWNJ or ZWJ.
func isIdentifierName(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	for i, r := range s {
		if r == '$' || r == '_' {
			continue
		}
		if i == 0 {
			if !unicode.IsOneOf(idStart, r) {
				return false
			}
			continue
		}
		if r != zwnj && r != zwj && !unicode.IsOneOf(idContinue, r) {
			return false
		}
	}
	return true
}

// usage says how an identifier is used, for reserved-word rules.
type usage uint8

const (
	useReference usage = iota
	useBinding
	useLabel
)

// checkIdentifier validates the name of an Identifier used as a binding,
// reference or label under the rules of c.
func (v *validator) checkIdentifier(n *estree.Node, c vctx, use usage) fact.List {
	name := n.Name()
	reserved := diag.FrmReservedWord
	if use == useLabel {
		reserved = diag.LblReservedLabelName
	}
	switch {
	case !isIdentifierName(name):
		return fact.ListOf(fact.Errorf(diag.FrmInvalidIdentifier, n.Loc, "Invalid identifier name '%s'", name))
	case keywords[name]:
		return fact.ListOf(fact.Errorf(reserved, n.Loc, "Unexpected reserved word '%s'", name))
	case c.strict && strictReserved[name]:
		return fact.ListOf(fact.Errorf(diag.StrReservedWord, n.Loc, "Unexpected strict mode reserved word '%s'", name))
	case name == "yield" && c.generator:
		return fact.ListOf(fact.Errorf(reserved, n.Loc, "Cannot use 'yield' as an identifier inside a generator"))
	case name == "await" && c.awaitReserved():
		return fact.ListOf(fact.Errorf(reserved, n.Loc, "Cannot use 'await' as an identifier inside an async function, a module or a static block"))
	case use == useBinding && c.strict && (name == "eval" || name == "arguments"):
		return fact.ListOf(fact.Errorf(diag.StrEvalArguments, n.Loc, "Binding '%s' in strict mode", name))
	case use == useBinding && name == "arguments" && (c.closure == ClosureFieldInit || c.closure == ClosureStaticBlock):
		return fact.ListOf(fact.Errorf(diag.CtxArgumentsInClassInit, n.Loc, "'arguments' is not allowed in class field initializer or static initialization block"))
	}
	return nil
}

// checkPropertyName validates a non-computed key or member property name.
// Reserved words are allowed there.
func checkPropertyName(n *estree.Node) fact.List {
	if name := n.Name(); !isIdentifierName(name) {
		return fact.ListOf(fact.Errorf(diag.FrmInvalidIdentifier, n.Loc, "Invalid property name '%s'", name))
	}
	return nil
}

// checkPrivateName validates a PrivateIdentifier.
func checkPrivateName(n *estree.Node) fact.List {
	name := n.Name()
	switch {
	case !isIdentifierName(name):
		return fact.ListOf(fact.Errorf(diag.FrmInvalidIdentifier, n.Loc, "Invalid private name '#%s'", name))
	case name == "constructor":
		return fact.ListOf(fact.Errorf(diag.FrmConstructorPrivate, n.Loc, "Classes may not have a private field named '#constructor'"))
	}
	return nil
}
