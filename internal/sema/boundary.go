package sema

import (
	"fmt"
	"slices"

	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
	"estcheck/internal/scope"
	"estcheck/internal/trace"
)

// markerRules are the errors a marker or label fact becomes when a boundary
// decides it is illegal there.
var markerRules = fact.Rules{
	fact.Await: {
		Code:    diag.CtxAwaitOutsideAsync,
		Message: fact.Static("'await' is only valid in async functions and the top level bodies of modules"),
	},
	fact.AwaitForOf: {
		Code:    diag.CtxForAwaitOutsideAsync,
		Message: fact.Static("'for await' is only valid in async functions and the top level bodies of modules"),
	},
	fact.Yield: {
		Code:    diag.CtxYieldOutsideGenerator,
		Message: fact.Static("'yield' expression is only valid in generator functions"),
	},
	fact.SuperCall: {
		Code:    diag.CtxSuperCallOutsideCtor,
		Message: fact.Static("'super' keyword unexpected here: super call must be directly in a derived class constructor"),
	},
	fact.SuperMember: {
		Code:    diag.CtxSuperMemberOutsideMeth,
		Message: fact.Static("'super' keyword unexpected here: super property access must be directly in a method or a constructor"),
	},
	fact.NewTarget: {
		Code:    diag.CtxNewTargetOutsideFunc,
		Message: fact.Static("new.target expression is not allowed here"),
	},
	fact.Return: {
		Code:    diag.CtxReturnOutsideFunc,
		Message: fact.Static("Illegal return statement"),
	},
	fact.ImportMeta: {
		Code:    diag.CtxImportMetaOutsideModule,
		Message: fact.Static("Cannot use 'import.meta' outside a module"),
	},
	fact.Import: {
		Code:    diag.CtxModuleDeclOutsideModule,
		Message: fact.Static("Cannot use import statement outside a module"),
	},
	fact.Export: {
		Code:    diag.CtxModuleDeclOutsideModule,
		Message: fact.Static("Cannot use export statement outside a module"),
	},
	fact.Arguments: {
		Code:    diag.CtxArgumentsInClassInit,
		Message: fact.Static("'arguments' is not allowed in class field initializer or static initialization block"),
	},
	fact.PrivateReference: {
		Code: diag.CtxUnresolvedPrivateName,
		Message: func(f fact.Fact) string {
			return fmt.Sprintf("Private field '#%s' must be declared in an enclosing class", f.Name)
		},
	},
	fact.Break: {
		Code:    diag.LblUnboundBreak,
		Message: jumpMessage("break", "Illegal break statement"),
	},
	fact.Continue: {
		Code:    diag.LblUnboundContinue,
		Message: jumpMessage("continue", "Illegal continue statement: no surrounding iteration statement"),
	},
}

func jumpMessage(keyword, unlabeled string) func(fact.Fact) string {
	return func(f fact.Fact) string {
		if f.Name == "" {
			return unlabeled
		}
		return fmt.Sprintf("Undefined label '%s' in %s statement", f.Name, keyword)
	}
}

// rules picks the escalations for kinds.
func rules(kinds ...fact.Kind) fact.Rules {
	out := make(fact.Rules, len(kinds))
	for _, k := range kinds {
		out[k] = markerRules[k]
	}
	return out
}

// policy says what a boundary does with the facts reaching it: consumed
// facts are legal and stop, raised facts become errors, the rest pass.
type policy struct {
	consume fact.Set
	raise   []fact.Kind
}

func (p policy) apply(facts fact.List) fact.List {
	return facts.Drop(fact.Test(p.consume)).Raise(rules(p.raise...))
}

// closurePolicy decides markers at the boundary of c.closure.
func closurePolicy(c vctx) policy {
	var p policy
	add := func(k fact.Kind, consume, pass bool) {
		switch {
		case consume:
			p.consume |= fact.Of(k)
		case !pass:
			p.raise = append(p.raise, k)
		}
	}
	arrow := c.closure == ClosureArrow
	initializer := c.closure == ClosureFieldInit || c.closure == ClosureStaticBlock
	add(fact.Await, c.async, false)
	add(fact.AwaitForOf, c.async, false)
	add(fact.Yield, c.generator, false)
	add(fact.SuperCall, c.closure == ClosureDerivedConstructor, arrow)
	add(fact.SuperMember, c.closure.methodLike() || initializer, arrow)
	add(fact.NewTarget, !arrow, arrow)
	add(fact.Return, !initializer, false)
	add(fact.Arguments, !arrow && !initializer, arrow)
	add(fact.Break, false, false)
	add(fact.Continue, false, false)
	return p
}

// programPolicy decides markers at the Program boundary. Labels and private
// references never legally reach it.
func programPolicy(opts Options) policy {
	var p policy
	add := func(k fact.Kind, legal bool) {
		if legal {
			p.consume |= fact.Of(k)
		} else {
			p.raise = append(p.raise, k)
		}
	}
	module := opts.Mode == ModeModule
	eval := opts.Mode == ModeEval
	add(fact.Await, module)
	add(fact.AwaitForOf, module)
	add(fact.Yield, false)
	add(fact.Return, false)
	add(fact.SuperCall, eval && opts.Closure == ClosureDerivedConstructor)
	add(fact.SuperMember, eval && opts.Closure.methodLike())
	add(fact.NewTarget, eval && (opts.FunctionExpressionAncestor ||
		opts.Closure != ClosureNone && opts.Closure != ClosureArrow))
	add(fact.ImportMeta, module)
	add(fact.Import, module)
	add(fact.Export, module)
	add(fact.Arguments, true)
	add(fact.Eval, true)
	add(fact.Break, false)
	add(fact.Continue, false)
	add(fact.PrivateReference, false)
	return p
}

// closureVariables are the kinds a closure boundary claims: everything
// declared in it except the still untyped names.
var closureVariables = fact.Variables &^ fact.Of(fact.Void)

// boundary opens a debug span for the scope boundary at n.
func (v *validator) boundary(n *estree.Node, kind scope.Kind) *trace.Span {
	var node string
	if n != nil {
		node = n.Type
	}
	return trace.BeginBoundary(v.tracer, v.span, kind.String(), node)
}

func endBoundary(sp *trace.Span, captured int, out fact.List) {
	sp.Reduced(captured, len(out)).End("")
}

// released lists the hoisting bindings among facts.
func released(facts fact.List) []scope.Variable {
	var out []scope.Variable
	for _, f := range facts {
		if fact.Hoisting.Has(f.Kind) {
			out = append(out, scope.FromFact(f))
		}
	}
	return out
}

// lexicalBoundary claims the lexical declarations of a block-like scope.
// outer are bindings of the same scope declared outside its statement list,
// such as catch parameters.
func (v *validator) lexicalBoundary(n *estree.Node, kind scope.Kind, facts fact.List, outer []scope.Variable) fact.List {
	sp := v.boundary(n, kind)
	lexical, rest := scope.Capture(facts, fact.Lexical)
	all := append(slices.Clip(outer), lexical...)
	rest = scope.Hoist(all, rest)

	a := v.annotate(n)
	a.Captures = all
	a.Releases = released(rest)

	out := fact.Concat(scope.Duplicates(all), rest)
	endBoundary(sp, len(all), out)
	return out
}
