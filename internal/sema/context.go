package sema

import (
	"fmt"
	"slices"

	"estcheck/internal/source"
)

// ClosureKind classifies the function-like construct enclosing a node.
type ClosureKind uint8

const (
	ClosureNone ClosureKind = iota // program level
	ClosureFunction
	ClosureArrow
	ClosureMethod
	ClosureConstructor
	ClosureDerivedConstructor
	ClosureFieldInit   // class field initializer
	ClosureStaticBlock // class static block
)

func (k ClosureKind) String() string {
	switch k {
	case ClosureNone:
		return "null"
	case ClosureFunction:
		return "function"
	case ClosureArrow:
		return "arrow"
	case ClosureMethod:
		return "method"
	case ClosureConstructor:
		return "constructor"
	case ClosureDerivedConstructor:
		return "derived-constructor"
	case ClosureFieldInit:
		return "field-initializer"
	case ClosureStaticBlock:
		return "static-block"
	}
	return "unknown"
}

// ParseClosureKind accepts the closure contexts a caller may simulate for
// eval: null, method, constructor, derived-constructor, function, arrow.
func ParseClosureKind(s string) (ClosureKind, error) {
	switch s {
	case "", "null":
		return ClosureNone, nil
	case "function":
		return ClosureFunction, nil
	case "arrow":
		return ClosureArrow, nil
	case "method":
		return ClosureMethod, nil
	case "constructor":
		return ClosureConstructor, nil
	case "derived-constructor":
		return ClosureDerivedConstructor, nil
	}
	return ClosureNone, fmt.Errorf("invalid closure context %q (expected: null|method|constructor|derived-constructor|function|arrow)", s)
}

func (k ClosureKind) methodLike() bool {
	return k == ClosureMethod || k == ClosureConstructor || k == ClosureDerivedConstructor
}

// position tells an Identifier or pattern what role it plays.
type position uint8

const (
	posExpression position = iota
	posBinding             // declared name: var/let/const, params, catch, imports
	posAssign              // assignment target and its destructuring
)

// slot is the statement position of the node being visited.
type slot uint8

const (
	slotList  slot = iota // statement list item
	slotIf                // if branch, where sloppy code may declare a plain function
	slotLoop              // iteration body
	slotOther             // with body
)

// vctx is the validation context. It is passed by value; a child either
// reuses it verbatim or overrides the fields relevant to it.
type vctx struct {
	strict    bool
	module    bool
	async     bool
	generator bool
	closure   ClosureKind
	pos       position
	chain     bool // inside the spine of an optional chain
	labels    []string

	slot          slot
	labelled      bool // statement is the body of a labeled statement
	blockLevel    bool // statement list belongs to a block, switch or catch
	forInOfHead   bool // declaration is the left side of for-in/of
	defaultExport bool // declaration is the target of export default
	derived       bool // class body of a class with a superclass

	// loc is the location of the closest visited node that carried one.
	// Shape failures on absent children are attributed to it.
	loc source.Location
}

func (c vctx) expr() vctx {
	c.pos = posExpression
	return c
}

func (c vctx) withPos(pos position) vctx {
	c.pos = pos
	return c
}

func (c vctx) noChain() vctx {
	c.pos = posExpression
	c.chain = false
	return c
}

func (c vctx) withLabel(name string) vctx {
	c.labels = append(slices.Clip(c.labels), name)
	return c
}

func (c vctx) inStatement(s slot) vctx {
	c.slot = s
	c.labelled = false
	c.forInOfHead = false
	c.defaultExport = false
	return c
}

// awaitReserved reports whether `await` cannot name a binding or reference.
func (c vctx) awaitReserved() bool {
	return c.module || c.async || c.closure == ClosureStaticBlock
}
