package sema

import (
	"strings"

	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
	"estcheck/internal/scope"
)

// useStrict finds a "use strict" directive in the prologue of body.
func useStrict(body []*estree.Node) (*estree.Node, bool) {
	for _, stmt := range body {
		value, ok := directive(stmt)
		if !ok {
			return nil, false
		}
		if value == "use strict" {
			return stmt, true
		}
	}
	return nil, false
}

// directive returns the raw text of a prologue directive. Producers that
// omit the `directive` field are handled through the literal raw text.
func directive(stmt *estree.Node) (string, bool) {
	if !stmt.Is(estree.ExpressionStatement) {
		return "", false
	}
	if d, ok := stmt.Field("directive").(string); ok {
		return d, true
	}
	lit := stmt.Child("expression")
	if !lit.Is(estree.Literal) {
		return "", false
	}
	if _, ok := lit.Field("value").(string); !ok {
		return "", false
	}
	raw := lit.Str("raw")
	if len(raw) < 2 || raw[0] != raw[len(raw)-1] || !strings.ContainsRune(`"'`, rune(raw[0])) {
		return "", false
	}
	return raw[1 : len(raw)-1], true
}

func simpleParams(params []*estree.Node) bool {
	for _, p := range params {
		if !p.Is(estree.Identifier) {
			return false
		}
	}
	return true
}

// closureContext is the context inside a closure of the given kind.
func closureContext(c vctx, kind ClosureKind, async, generator bool) vctx {
	inner := c.noChain()
	inner.closure = kind
	inner.async = async
	inner.generator = generator
	inner.labels = nil
	inner.derived = false
	inner.blockLevel = false
	inner = inner.inStatement(slotList)
	return inner
}

// closure validates the parameters and body of a function-like node and
// resolves everything its boundary owns. It returns the facts escaping the
// closure and whether its code is strict; the name of a declaration is
// left to the caller.
func (v *validator) closure(fn *estree.Node, c vctx, kind ClosureKind) (fact.List, bool) {
	arrow := fn.Is(estree.ArrowFunctionExpression)
	async, generator := fn.Bool("async"), fn.Bool("generator")
	if arrow && generator {
		fail(fn, c, "generator", "false", "true")
	}
	params := fn.Children("params")
	body := fn.Child("body")

	bodyKinds := estree.Kinds(estree.BlockStatement)
	if arrow {
		bodyKinds = bodyKinds.Union(expressionKinds)
	}
	bc := v.enter(body, c, bodyKinds, fn.Type+".body")

	var errs []fact.List
	strict := c.strict
	simple := simpleParams(params)
	if body.Is(estree.BlockStatement) {
		if d, ok := useStrict(body.Children("body")); ok {
			strict = true
			if !simple {
				errs = append(errs, fact.ListOf(fact.Errorf(diag.StrNonSimpleDirective, d.Loc,
					"Illegal 'use strict' directive in function with non-simple parameter list")))
			}
		}
	}

	inner := closureContext(c, kind, async, generator)
	inner.strict = strict
	sp := v.boundary(fn, scope.KindClosure)

	paramFacts := v.parameters(params, inner, fn.Type+".params")
	if async {
		paramFacts = paramFacts.RaiseIf(fact.Test(fact.Of(fact.Await)), fact.Rule{
			Code:    diag.CtxAwaitInParams,
			Message: fact.Static("Illegal await-expression in formal parameters of async function"),
		})
	}
	if generator {
		paramFacts = paramFacts.RaiseIf(fact.Test(fact.Of(fact.Yield)), fact.Rule{
			Code:    diag.CtxYieldInParams,
			Message: fact.Static("Yield expression not allowed in formal parameter"),
		})
	}

	var bodyFacts fact.List
	inner.loc = bc.loc
	if body.Is(estree.BlockStatement) {
		bodyFacts = v.statements(body.Children("body"), inner, statementKinds, "BlockStatement.body")
	} else {
		bodyFacts = handlers[body.Kind](v, body, inner.expr())
	}

	vars, rest := scope.Capture(fact.Concat(paramFacts, bodyFacts), closureVariables)
	if strict || arrow || kind.methodLike() || !simple {
		errs = append(errs, scope.DuplicateParams(scope.Select(vars, fact.Of(fact.Param))))
	}
	errs = append(errs, scope.Duplicates(vars))

	a := v.annotate(fn)
	a.UseStrict = strict
	a.HasDirectEval = rest.Any(fact.Test(fact.Of(fact.Eval)))
	a.Captures = vars

	out := fact.Concat(append(errs, closurePolicy(inner).apply(rest))...)
	endBoundary(sp, len(vars), out)
	return out, strict
}

// parameters visits a formal parameter list. Names become param bindings.
func (v *validator) parameters(params []*estree.Node, c vctx, where string) fact.List {
	parts := make([]fact.List, 0, len(params)+1)
	for i, p := range params {
		parts = append(parts, v.visit(p, c.withPos(posBinding), patternItemKinds, where))
		if p.Is(estree.RestElement) && i != len(params)-1 {
			parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmRestPosition, p.Loc,
				"Rest parameter must be last formal parameter")))
		}
	}
	return fact.Concat(parts...).Transform(map[fact.Kind]fact.Kind{fact.Void: fact.Param})
}

// closureBody validates a parameterless closure body such as a class
// static block.
func (v *validator) closureBody(n *estree.Node, c vctx, kind ClosureKind, boundary scope.Kind) fact.List {
	inner := closureContext(c, kind, false, false)
	sp := v.boundary(n, boundary)

	facts := v.statements(n.Children("body"), inner, statementKinds, n.Type+".body")
	vars, rest := scope.Capture(facts, closureVariables)

	a := v.annotate(n)
	a.UseStrict = inner.strict
	a.Captures = vars

	out := fact.Concat(scope.Duplicates(vars), closurePolicy(inner).apply(rest))
	endBoundary(sp, len(vars), out)
	return out
}

// initializer validates a class field initializer as its own pseudo closure.
func (v *validator) initializer(n *estree.Node, c vctx, where string) fact.List {
	inner := closureContext(c, ClosureFieldInit, false, false)
	sp := v.boundary(n, scope.KindFieldInit)
	facts := v.visit(n, inner, expressionKinds, where)
	out := closurePolicy(inner).apply(facts)
	endBoundary(sp, 0, out)
	return out
}

// accessorParams checks the parameter count of a getter or setter.
func accessorParams(kind string, fn *estree.Node) fact.List {
	params := fn.Children("params")
	switch kind {
	case "get":
		return fact.Check(len(params) == 0, diag.FrmAccessorParams, fn.Loc, "Getter must not have any formal parameters")
	case "set":
		if len(params) != 1 {
			return fact.ListOf(fact.Errorf(diag.FrmAccessorParams, fn.Loc, "Setter must have exactly one formal parameter"))
		}
		return fact.Check(!params[0].Is(estree.RestElement), diag.FrmAccessorParams, params[0].Loc,
			"Setter function argument must not be a rest parameter")
	}
	return nil
}
