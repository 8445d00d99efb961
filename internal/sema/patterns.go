package sema

import (
	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
)

// Patterns keep c.pos: posBinding for declarations and parameters,
// posAssign for destructuring assignment.

func restNotLast(items []*estree.Node) fact.List {
	var out fact.List
	for i, item := range items {
		if item.Is(estree.RestElement) && i != len(items)-1 {
			out = append(out, fact.Errorf(diag.FrmRestPosition, item.Loc, "Rest element must be last element"))
		}
	}
	return out
}

func (v *validator) objectPattern(n *estree.Node, c vctx) fact.List {
	props := n.Children("properties")
	return fact.Concat(
		restNotLast(props),
		v.visitAll(props, c, estree.Kinds(estree.Property, estree.RestElement), "ObjectPattern.properties"),
	)
}

func (v *validator) arrayPattern(n *estree.Node, c vctx) fact.List {
	elems := n.Children("elements")
	return fact.Concat(
		restNotLast(elems),
		v.visitAll(elems, c, patternItemKinds, "ArrayPattern.elements"),
	)
}

func (v *validator) restElement(n *estree.Node, c vctx) fact.List {
	arg := n.Child("argument")
	return fact.Concat(
		fact.Check(!arg.Is(estree.AssignmentPattern), diag.FrmInvalidTarget, arg.Loc, "Rest element may not have a default initializer"),
		v.visit(arg, c, patternElementKinds, "RestElement.argument"),
	)
}

func (v *validator) assignmentPattern(n *estree.Node, c vctx) fact.List {
	return fact.Concat(
		v.visit(n.Child("left"), c, targetKinds, "AssignmentPattern.left"),
		v.visit(n.Child("right"), c.noChain(), expressionKinds, "AssignmentPattern.right"),
	)
}
