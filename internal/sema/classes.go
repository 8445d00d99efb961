package sema

import (
	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
)

// class handles declarations and expressions. Class code is strict,
// including the name and the heritage.
func (v *validator) class(n *estree.Node, c vctx) fact.List {
	inner := c.noChain()
	inner.strict = true

	var parts []fact.List
	if id := n.Child("id"); id != nil {
		ic := v.enter(id, inner, identifierKinds, n.Type+".id")
		errs := v.checkIdentifier(id, ic, useBinding)
		parts = append(parts, errs)
		if len(errs) == 0 && n.Is(estree.ClassDeclaration) {
			parts = append(parts, fact.Mark(true, fact.Class, id.Name(), id.Loc))
		}
	} else if n.Is(estree.ClassDeclaration) && !c.defaultExport {
		fail(n, c, "id", "Identifier", "null")
	}

	super := n.Child("superClass")
	parts = append(parts, v.visitOpt(super, inner, expressionKinds, n.Type+".superClass"))

	body := inner
	body.derived = super != nil
	parts = append(parts, v.visit(n.Child("body"), body, estree.Kinds(estree.ClassBody), n.Type+".body"))
	return fact.Concat(parts...)
}

// privateDecl tracks the declarations of one private name.
type privateDecl struct {
	getter, setter, other bool
	static                bool
}

// admit reports whether a private element of kind may join d: only a
// getter and a setter with the same placement may share a name.
func (d *privateDecl) admit(kind string, static bool) bool {
	if d.other || d.static != static {
		return false
	}
	switch {
	case kind == "get" && !d.getter && d.setter:
		d.getter = true
		return true
	case kind == "set" && !d.setter && d.getter:
		d.setter = true
		return true
	}
	return false
}

func (v *validator) classBody(n *estree.Node, c vctx) fact.List {
	elements := n.Children("body")
	var (
		parts    []fact.List
		errs     fact.List
		ctor     bool
		privates = make(map[string]*privateDecl)
	)
	for _, el := range elements {
		parts = append(parts, v.visit(el, c, classElementKinds, "ClassBody.body"))
		if el.Is(estree.StaticBlock) {
			continue
		}
		key := el.Child("key")
		computed, static := el.Bool("computed"), el.Bool("static")
		name := staticKeyName(key, computed)

		kind := "field"
		if el.Is(estree.MethodDefinition) {
			kind = el.Str("kind")
			value := el.Child("value")
			switch {
			case kind == "constructor" && (static || computed || name != "constructor"):
				fail(el, c, "kind", "constructor only for the non-static constructor method", "constructor")
			case kind == "constructor" && ctor:
				errs = append(errs, fact.Errorf(diag.FrmDuplicateConstructor, el.Loc, "A class may only have one constructor"))
			case kind == "constructor" && (value.Bool("async") || value.Bool("generator")):
				errs = append(errs, fact.Errorf(diag.FrmSpecialConstructor, el.Loc, "Class constructor may not be an async method or a generator"))
			case kind != "constructor" && !static && name == "constructor":
				errs = append(errs, fact.Errorf(diag.FrmSpecialConstructor, el.Loc, "Class constructor may not be an accessor, an async method or a generator"))
			}
			ctor = ctor || kind == "constructor"
			errs = append(errs, accessorParams(kind, value)...)
		} else if name == "constructor" {
			errs = append(errs, fact.Errorf(diag.FrmConstructorField, el.Loc, "Classes may not have a field named 'constructor'"))
		}
		if static && name == "prototype" {
			errs = append(errs, fact.Errorf(diag.FrmStaticPrototype, el.Loc, "Classes may not have a static property named 'prototype'"))
		}

		if !key.Is(estree.PrivateIdentifier) {
			continue
		}
		pname := key.Name()
		d, seen := privates[pname]
		if !seen {
			privates[pname] = &privateDecl{
				getter: kind == "get",
				setter: kind == "set",
				other:  kind != "get" && kind != "set",
				static: static,
			}
			continue
		}
		if !d.admit(kind, static) {
			errs = append(errs, fact.Errorf(diag.BndDuplicatePrivate, key.Loc, "Identifier '#%s' has already been declared", pname))
		}
	}

	facts := fact.Concat(parts...).Drop(func(f fact.Fact) bool {
		return f.Kind == fact.PrivateReference && privates[f.Name] != nil
	})
	return fact.Concat(errs, facts)
}

func (v *validator) methodDefinition(n *estree.Node, c vctx) fact.List {
	kind := ClosureMethod
	if n.Str("kind") == "constructor" {
		kind = ClosureConstructor
		if c.derived {
			kind = ClosureDerivedConstructor
		}
	}
	value := n.Child("value")
	vc := v.enter(value, c, functionKinds, "MethodDefinition.value")
	facts, _ := v.closure(value, vc, kind)
	return fact.Concat(
		v.propertyKey(n.Child("key"), c, n.Bool("computed"), classKeyKinds, "MethodDefinition.key"),
		facts,
	)
}

func (v *validator) propertyDefinition(n *estree.Node, c vctx) fact.List {
	var init fact.List
	if value := n.Child("value"); value != nil {
		init = v.initializer(value, c, "PropertyDefinition.value")
	}
	return fact.Concat(
		v.propertyKey(n.Child("key"), c, n.Bool("computed"), classKeyKinds, "PropertyDefinition.key"),
		init,
	)
}
