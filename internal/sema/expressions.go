package sema

import (
	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
)

func (v *validator) identifier(n *estree.Node, c vctx) fact.List {
	name := n.Name()
	switch c.pos {
	case posBinding:
		if errs := v.checkIdentifier(n, c, useBinding); len(errs) > 0 {
			return errs
		}
		return fact.Mark(true, fact.Void, name, n.Loc)
	case posAssign:
		errs := v.checkIdentifier(n, c, useReference)
		if len(errs) == 0 && c.strict && (name == "eval" || name == "arguments") {
			errs = fact.ListOf(fact.Errorf(diag.StrEvalArguments, n.Loc, "Unexpected eval or arguments in strict mode"))
		}
		return fact.Concat(errs, fact.Mark(name == "arguments", fact.Arguments, "", n.Loc))
	}
	return fact.Concat(
		v.checkIdentifier(n, c, useReference),
		fact.Mark(name == "arguments", fact.Arguments, "", n.Loc),
	)
}

func (v *validator) privateIdentifier(n *estree.Node, _ vctx) fact.List {
	return checkPrivateName(n)
}

// propertyKey visits the key of an object or class member.
func (v *validator) propertyKey(n *estree.Node, c vctx, computed bool, allowed estree.KindSet, where string) fact.List {
	if computed {
		return v.visit(n, c.noChain(), expressionKinds, where)
	}
	kc := v.enter(n, c, allowed, where)
	if n.Is(estree.Identifier) {
		return checkPropertyName(n)
	}
	return handlers[n.Kind](v, n, kc.noChain())
}

// staticKeyName is the name of a non-computed key, "" for other keys.
func staticKeyName(key *estree.Node, computed bool) string {
	switch {
	case computed:
		return ""
	case key.Is(estree.Identifier):
		return key.Name()
	case key.Is(estree.Literal):
		s, _ := key.Field("value").(string)
		return s
	}
	return ""
}

func (v *validator) array(n *estree.Node, c vctx) fact.List {
	return v.visitAll(n.Children("elements"), c.noChain(), argumentKinds, "ArrayExpression.elements")
}

func (v *validator) spread(n *estree.Node, c vctx) fact.List {
	return v.visit(n.Child("argument"), c.noChain(), expressionKinds, "SpreadElement.argument")
}

func (v *validator) object(n *estree.Node, c vctx) fact.List {
	props := n.Children("properties")
	var errs fact.List
	protos := 0
	for _, p := range props {
		if !p.Is(estree.Property) || p.Bool("computed") || p.Bool("shorthand") || p.Bool("method") || p.Str("kind") != "init" {
			continue
		}
		if staticKeyName(p.Child("key"), false) != "__proto__" {
			continue
		}
		if protos++; protos > 1 {
			errs = append(errs, fact.Errorf(diag.FrmDuplicateProto, p.Loc, "Redefinition of __proto__ property"))
		}
	}
	facts := v.visitAll(props, c.noChain(), estree.Kinds(estree.Property, estree.SpreadElement), "ObjectExpression.properties")
	return fact.Concat(errs, facts)
}

// property handles Property in both object literals and object patterns;
// c.pos tells which.
func (v *validator) property(n *estree.Node, c vctx) fact.List {
	key, value := n.Child("key"), n.Child("value")
	kind := n.Str("kind")
	computed, shorthand := n.Bool("computed"), n.Bool("shorthand")

	var parts []fact.List
	if !shorthand {
		parts = append(parts, v.propertyKey(key, c, computed, keyKinds, "Property.key"))
	} else if !key.Is(estree.Identifier) || computed {
		fail(n, c, "key", "Identifier for a shorthand property", "node "+key.Type)
	}

	if c.pos != posExpression {
		if kind != "init" || n.Bool("method") {
			parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmPatternProperty, n.Loc, "Object pattern can't contain getter, setter or method")))
			parts = append(parts, v.visit(value, c.expr(), functionKinds, "Property.value"))
		} else {
			parts = append(parts, v.visit(value, c, patternElementKinds, "Property.value"))
		}
		return fact.Concat(parts...)
	}

	switch {
	case kind != "init" || n.Bool("method"):
		vc := v.enter(value, c, functionKinds, "Property.value")
		facts, _ := v.closure(value, vc, ClosureMethod)
		parts = append(parts, accessorParams(kind, value), facts)
	case shorthand && value.Is(estree.AssignmentPattern):
		parts = append(parts,
			fact.ListOf(fact.Errorf(diag.FrmShorthandInit, value.Loc, "Invalid shorthand property initializer")),
			v.visit(value, c.withPos(posAssign), estree.Kinds(estree.AssignmentPattern), "Property.value"))
	default:
		parts = append(parts, v.visit(value, c.noChain(), expressionKinds, "Property.value"))
	}
	return fact.Concat(parts...)
}

func (v *validator) functionExpression(n *estree.Node, c vctx) fact.List {
	facts, strict := v.closure(n, c, ClosureFunction)
	id := n.Child("id")
	if id == nil {
		return facts
	}
	// the name of a function expression is scoped to its own body
	nc := v.enter(id, c, identifierKinds, "FunctionExpression.id")
	nc.strict = strict
	nc.async = n.Bool("async")
	nc.generator = n.Bool("generator")
	return fact.Concat(v.checkIdentifier(id, nc, useBinding), facts)
}

func (v *validator) arrowFunction(n *estree.Node, c vctx) fact.List {
	if n.Child("id") != nil {
		fail(n, c, "id", "null", "node "+n.Child("id").Type)
	}
	facts, _ := v.closure(n, c, ClosureArrow)
	return facts
}

// unwrapChain looks through a ChainExpression.
func unwrapChain(n *estree.Node) *estree.Node {
	if n.Is(estree.ChainExpression) {
		return n.Child("expression")
	}
	return n
}

func (v *validator) unary(n *estree.Node, c vctx) fact.List {
	arg := n.Child("argument")
	var errs fact.List
	if n.Str("operator") == "delete" {
		target := unwrapChain(arg)
		switch {
		case arg.Is(estree.Identifier) && c.strict:
			errs = fact.ListOf(fact.Errorf(diag.StrDeleteIdentifier, n.Loc, "Delete of an unqualified identifier in strict mode."))
		case target.Is(estree.MemberExpression) && target.Child("property").Is(estree.PrivateIdentifier):
			errs = fact.ListOf(fact.Errorf(diag.FrmInvalidPrivateDelete, n.Loc, "Private fields can not be deleted"))
		}
	}
	return fact.Concat(errs, v.visit(arg, c.noChain(), expressionKinds, "UnaryExpression.argument"))
}

// target visits the left side of an assignment-like construct. Invalid
// targets are reported, not rejected as malformed.
func (v *validator) target(n *estree.Node, c vctx, patterns, call bool, where, msg string) fact.List {
	switch {
	case n.Is(estree.Identifier), n.Is(estree.MemberExpression):
		return v.visit(n, c.noChain().withPos(posAssign), targetKinds, where)
	case patterns && (n.Is(estree.ObjectPattern) || n.Is(estree.ArrayPattern)):
		return v.visit(n, c.noChain().withPos(posAssign), targetKinds, where)
	case call && n.Is(estree.CallExpression):
		return v.visit(n, c.noChain(), expressionKinds, where)
	}
	tc := c.noChain()
	if n.Is(estree.ObjectPattern) || n.Is(estree.ArrayPattern) {
		tc = tc.withPos(posAssign)
	}
	facts := v.visit(n, tc, assignLeftKinds, where)
	return fact.Concat(fact.ListOf(fact.NewError(diag.FrmInvalidTarget, n.Loc, msg)), facts)
}

func (v *validator) update(n *estree.Node, c vctx) fact.List {
	msg := "Invalid left-hand side expression in postfix operation"
	if n.Bool("prefix") {
		msg = "Invalid left-hand side expression in prefix operation"
	}
	return v.target(n.Child("argument"), c, false, !c.strict, "UpdateExpression.argument", msg)
}

func (v *validator) assignment(n *estree.Node, c vctx) fact.List {
	op := n.Str("operator")
	logical := op == "&&=" || op == "||=" || op == "??="
	return fact.Concat(
		v.target(n.Child("left"), c, op == "=", !c.strict && !logical, "AssignmentExpression.left", "Invalid left-hand side in assignment"),
		v.visit(n.Child("right"), c.noChain(), expressionKinds, "AssignmentExpression.right"),
	)
}

func (v *validator) binary(n *estree.Node, c vctx) fact.List {
	left := n.Child("left")
	var lf fact.List
	if left.Is(estree.PrivateIdentifier) && n.Str("operator") == "in" {
		v.enter(left, c, estree.Kinds(estree.PrivateIdentifier), "BinaryExpression.left")
		lf = fact.Concat(checkPrivateName(left), fact.Mark(true, fact.PrivateReference, left.Name(), left.Loc))
	} else {
		lf = v.visit(left, c.noChain(), expressionKinds, "BinaryExpression.left")
	}
	return fact.Concat(lf, v.visit(n.Child("right"), c.noChain(), expressionKinds, "BinaryExpression.right"))
}

func (v *validator) logical(n *estree.Node, c vctx) fact.List {
	return fact.Concat(
		v.visit(n.Child("left"), c.noChain(), expressionKinds, "LogicalExpression.left"),
		v.visit(n.Child("right"), c.noChain(), expressionKinds, "LogicalExpression.right"),
	)
}

func (v *validator) conditional(n *estree.Node, c vctx) fact.List {
	c = c.noChain()
	return fact.Concat(
		v.visit(n.Child("test"), c, expressionKinds, "ConditionalExpression.test"),
		v.visit(n.Child("consequent"), c, expressionKinds, "ConditionalExpression.consequent"),
		v.visit(n.Child("alternate"), c, expressionKinds, "ConditionalExpression.alternate"),
	)
}

func (v *validator) sequence(n *estree.Node, c vctx) fact.List {
	exprs := n.Children("expressions")
	if len(exprs) == 0 {
		fail(n, c, "expressions", "at least one expression", "empty array")
	}
	return v.visitAll(exprs, c.noChain(), expressionKinds, "SequenceExpression.expressions")
}

func (v *validator) member(n *estree.Node, c vctx) fact.List {
	object, property := n.Child("object"), n.Child("property")
	computed := n.Bool("computed")

	var parts []fact.List
	if c.pos == posBinding {
		parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmPatternMember, n.Loc, "Member expression is not allowed in a binding pattern")))
	}
	if n.Bool("optional") && !c.chain {
		parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmOptionalOutsideChain, n.Loc, "Optional member expression outside of an optional chain")))
	}

	oc := c
	oc.pos = posExpression
	parts = append(parts, v.visit(object, oc, superKinds, "MemberExpression.object"))
	if object.Is(estree.Super) {
		parts = append(parts, fact.Mark(true, fact.SuperMember, "", n.Loc))
	}

	if computed {
		parts = append(parts, v.visit(property, c.noChain(), expressionKinds, "MemberExpression.property"))
		return fact.Concat(parts...)
	}
	v.enter(property, c, estree.Kinds(estree.Identifier, estree.PrivateIdentifier), "MemberExpression.property")
	switch {
	case property.Is(estree.Identifier):
		parts = append(parts, checkPropertyName(property))
	case object.Is(estree.Super):
		parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmInvalidPrivateName, property.Loc, "Unexpected private field")))
	default:
		parts = append(parts, checkPrivateName(property), fact.Mark(true, fact.PrivateReference, property.Name(), property.Loc))
	}
	return fact.Concat(parts...)
}

func (v *validator) call(n *estree.Node, c vctx) fact.List {
	callee := n.Child("callee")
	optional := n.Bool("optional")

	var parts []fact.List
	if optional && !c.chain {
		parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmOptionalOutsideChain, n.Loc, "Optional call outside of an optional chain")))
	}
	cc := c
	cc.pos = posExpression
	parts = append(parts,
		v.visit(callee, cc, superKinds, "CallExpression.callee"),
		fact.Mark(callee.Is(estree.Super), fact.SuperCall, "", n.Loc),
		fact.Mark(callee.Is(estree.Identifier) && callee.Name() == "eval" && !optional, fact.Eval, "", n.Loc),
		v.visitAll(n.Children("arguments"), c.noChain(), argumentKinds, "CallExpression.arguments"),
	)
	return fact.Concat(parts...)
}

func (v *validator) newExpression(n *estree.Node, c vctx) fact.List {
	callee := n.Child("callee")
	return fact.Concat(
		fact.Check(!callee.Is(estree.ChainExpression), diag.FrmNewOptionalChain, callee.Loc, "Invalid optional chain from new expression"),
		v.visit(callee, c.noChain(), expressionKinds, "NewExpression.callee"),
		v.visitAll(n.Children("arguments"), c.noChain(), argumentKinds, "NewExpression.arguments"),
	)
}

// chain marks the spine of an optional chain; only the object of a member
// and the callee of a call stay on it.
func (v *validator) chain(n *estree.Node, c vctx) fact.List {
	inner := c.noChain()
	inner.chain = true
	return v.visit(n.Child("expression"), inner, estree.Kinds(estree.MemberExpression, estree.CallExpression), "ChainExpression.expression")
}

func (v *validator) yield(n *estree.Node, c vctx) fact.List {
	arg := n.Child("argument")
	if arg == nil && n.Bool("delegate") {
		fail(n, c, "argument", "expression for yield*", "null")
	}
	return fact.Concat(
		fact.Mark(true, fact.Yield, "", n.Loc),
		v.visitOpt(arg, c.noChain(), expressionKinds, "YieldExpression.argument"),
	)
}

func (v *validator) await(n *estree.Node, c vctx) fact.List {
	return fact.Concat(
		fact.Mark(true, fact.Await, "", n.Loc),
		v.visit(n.Child("argument"), c.noChain(), expressionKinds, "AwaitExpression.argument"),
	)
}

func (v *validator) importExpression(n *estree.Node, c vctx) fact.List {
	return v.visit(n.Child("source"), c.noChain(), expressionKinds, "ImportExpression.source")
}

func (v *validator) metaProperty(n *estree.Node, c vctx) fact.List {
	meta, property := n.Child("meta"), n.Child("property")
	v.enter(meta, c, identifierKinds, "MetaProperty.meta")
	v.enter(property, c, identifierKinds, "MetaProperty.property")
	switch meta.Name() + "." + property.Name() {
	case "new.target":
		return fact.Mark(true, fact.NewTarget, "", n.Loc)
	case "import.meta":
		return fact.Mark(true, fact.ImportMeta, "", n.Loc)
	}
	return fact.ListOf(fact.Errorf(diag.FrmInvalidMetaProperty, n.Loc, "'%s.%s' is not a valid meta property", meta.Name(), property.Name()))
}

func (v *validator) templateLiteral(n *estree.Node, c vctx) fact.List {
	return v.template(n, c, false)
}

// template validates quasis and expressions. Only tagged templates may
// carry invalid escapes, which leave cooked null.
func (v *validator) template(n *estree.Node, c vctx, tagged bool) fact.List {
	quasis, exprs := n.Children("quasis"), n.Children("expressions")
	if len(quasis) != len(exprs)+1 {
		fail(n, c, "quasis", "one more element than expressions", "mismatched lengths")
	}
	var errs fact.List
	for _, q := range quasis {
		v.enter(q, c, estree.Kinds(estree.TemplateElement), "TemplateLiteral.quasis")
		if !tagged && q.Object("value")["cooked"] == nil {
			errs = append(errs, fact.Errorf(diag.FrmInvalidTemplateEscape, q.Loc, "Invalid escape sequence in template"))
		}
	}
	return fact.Concat(errs, v.visitAll(exprs, c.noChain(), expressionKinds, "TemplateLiteral.expressions"))
}

// taggedTemplate may be the base of a chain (a`x`?.b); only a tag whose own
// spine is optional (a?.b`x`) continues the chain.
func (v *validator) taggedTemplate(n *estree.Node, c vctx) fact.List {
	quasi := n.Child("quasi")
	qc := v.enter(quasi, c, estree.Kinds(estree.TemplateLiteral), "TaggedTemplateExpression.quasi")
	tag := n.Child("tag")
	inChain := c.chain && optionalSpine(tag)
	tc := c.noChain()
	if inChain {
		tc.chain = true
	}
	return fact.Concat(
		fact.Check(!inChain, diag.FrmTemplateInChain, n.Loc, "Tagged template cannot be used in optional chain"),
		v.visit(tag, tc, expressionKinds, "TaggedTemplateExpression.tag"),
		v.template(quasi, qc, true),
	)
}

// optionalSpine reports whether a member/call spine holds an optional link.
func optionalSpine(n *estree.Node) bool {
	for n != nil {
		switch {
		case n.Is(estree.MemberExpression):
			if n.Bool("optional") {
				return true
			}
			n = n.Child("object")
		case n.Is(estree.CallExpression):
			if n.Bool("optional") {
				return true
			}
			n = n.Child("callee")
		default:
			return false
		}
	}
	return false
}
