package sema

import (
	"fmt"
	"slices"

	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
	"estcheck/internal/scope"
)

// statements visits a statement list.
func (v *validator) statements(body []*estree.Node, c vctx, allowed estree.KindSet, where string) fact.List {
	return v.visitAll(body, c.inStatement(slotList), allowed, where)
}

var loopKinds = estree.Kinds(estree.WhileStatement, estree.DoWhileStatement, estree.ForStatement, estree.ForInStatement, estree.ForOfStatement)

// dropUnlabeled resolves `break;` and, for loops, `continue;`.
func dropUnlabeled(facts fact.List, kinds fact.Set) fact.List {
	return facts.Drop(func(f fact.Fact) bool { return kinds.Has(f.Kind) && f.Name == "" })
}

func isLexicalDeclaration(n *estree.Node) bool {
	return n.Is(estree.ClassDeclaration) || n.Is(estree.VariableDeclaration) && n.Str("kind") != "var"
}

func isPlainFunction(n *estree.Node) bool {
	return n.Is(estree.FunctionDeclaration) && !n.Bool("async") && !n.Bool("generator")
}

// substatement visits the single statement body of if, loops, with and
// labels, where declarations are restricted.
func (v *validator) substatement(n *estree.Node, c vctx, s slot, where string) fact.List {
	c = c.inStatement(s)
	facts := v.visit(n, c, statementKinds, where)
	switch {
	case isLexicalDeclaration(n):
		return fact.Concat(
			fact.ListOf(fact.Errorf(diag.FrmLexicalInStatement, n.Loc, "Lexical declaration cannot appear in a single-statement context")),
			facts.Drop(fact.Test(fact.Variables)),
		)
	case n.Is(estree.FunctionDeclaration):
		// sloppy `if (x) function f() {}` behaves as if wrapped in a block
		if s == slotIf && !c.strict && isPlainFunction(n) {
			return facts.Drop(fact.Test(fact.Variables))
		}
		msg := "Function declarations are not allowed in this position"
		if c.strict {
			msg = "In strict mode code, functions can only be declared at top level or inside a block"
		}
		return fact.Concat(
			fact.ListOf(fact.NewError(diag.FrmStatementDeclaration, n.Loc, msg)),
			facts.Drop(fact.Test(fact.Variables)),
		)
	}
	return facts
}

func (v *validator) expressionStatement(n *estree.Node, c vctx) fact.List {
	return v.visit(n.Child("expression"), c.expr(), expressionKinds, "ExpressionStatement.expression")
}

func (v *validator) blockStatement(n *estree.Node, c vctx) fact.List {
	inner := c
	inner.blockLevel = true
	facts := v.statements(n.Children("body"), inner, statementKinds, "BlockStatement.body")
	return v.lexicalBoundary(n, scope.KindBlock, facts, nil)
}

func (v *validator) staticBlock(n *estree.Node, c vctx) fact.List {
	return v.closureBody(n, c, ClosureStaticBlock, scope.KindStaticBlock)
}

func (v *validator) withStatement(n *estree.Node, c vctx) fact.List {
	return fact.Concat(
		fact.Check(!c.strict, diag.StrWith, n.Loc, "Strict mode code may not include a with statement"),
		v.visit(n.Child("object"), c.expr(), expressionKinds, "WithStatement.object"),
		v.substatement(n.Child("body"), c, slotOther, "WithStatement.body"),
	)
}

func (v *validator) returnStatement(n *estree.Node, c vctx) fact.List {
	return fact.Concat(
		fact.Mark(true, fact.Return, "", n.Loc),
		v.visitOpt(n.Child("argument"), c.expr(), expressionKinds, "ReturnStatement.argument"),
	)
}

func (v *validator) throwStatement(n *estree.Node, c vctx) fact.List {
	return v.visit(n.Child("argument"), c.expr(), expressionKinds, "ThrowStatement.argument")
}

// jumpStatement handles break and continue. A labeled jump is located at
// its label.
func (v *validator) jumpStatement(n *estree.Node, c vctx) fact.List {
	kind := fact.Break
	if n.Is(estree.ContinueStatement) {
		kind = fact.Continue
	}
	label := n.Child("label")
	if label == nil {
		return fact.Mark(true, kind, "", n.Loc)
	}
	v.enter(label, c, identifierKinds, n.Type+".label")
	return fact.Mark(true, kind, label.Name(), label.Loc)
}

// stripLabels returns the statement a chain of labels applies to.
func stripLabels(n *estree.Node) *estree.Node {
	for n.Is(estree.LabeledStatement) {
		n = n.Child("body")
	}
	return n
}

func (v *validator) labeledStatement(n *estree.Node, c vctx) fact.List {
	label := n.Child("label")
	lc := v.enter(label, c, identifierKinds, "LabeledStatement.label")
	name := label.Name()

	var parts []fact.List
	parts = append(parts, v.checkIdentifier(label, lc, useLabel))
	if slices.Contains(c.labels, name) {
		parts = append(parts, fact.ListOf(fact.Errorf(diag.LblDuplicateLabel, label.Loc, "Label '%s' has already been declared", name)))
	}

	body := n.Child("body")
	inner := c.withLabel(name)
	inner.labelled = true
	facts := v.visit(body, inner, statementKinds, "LabeledStatement.body")

	switch {
	case isLexicalDeclaration(body):
		parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmLexicalInStatement, body.Loc, "Lexical declaration cannot appear in a single-statement context")))
		facts = facts.Drop(fact.Test(fact.Variables))
	case body.Is(estree.FunctionDeclaration):
		if c.strict || c.slot != slotList || !isPlainFunction(body) {
			parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmLabelledFunction, body.Loc, "Labelled function declarations are not allowed here")))
		}
	}

	facts = facts.Drop(fact.TestName(fact.Of(fact.Break), name))
	if target := stripLabels(body); target != nil && loopKinds.Has(target.Kind) {
		facts = facts.Drop(fact.TestName(fact.Of(fact.Continue), name))
	} else {
		facts = facts.RaiseIf(fact.TestName(fact.Of(fact.Continue), name), fact.Rule{
			Code: diag.LblContinueNotLoop,
			Message: func(f fact.Fact) string {
				return fmt.Sprintf("Illegal continue statement: '%s' does not denote an iteration statement", f.Name)
			},
		})
	}
	return fact.Concat(append(parts, facts)...)
}

func (v *validator) ifStatement(n *estree.Node, c vctx) fact.List {
	var alternate fact.List
	if alt := n.Child("alternate"); alt != nil {
		alternate = v.substatement(alt, c, slotIf, "IfStatement.alternate")
	}
	return fact.Concat(
		v.visit(n.Child("test"), c.expr(), expressionKinds, "IfStatement.test"),
		v.substatement(n.Child("consequent"), c, slotIf, "IfStatement.consequent"),
		alternate,
	)
}

func (v *validator) switchStatement(n *estree.Node, c vctx) fact.List {
	discriminant := v.visit(n.Child("discriminant"), c.expr(), expressionKinds, "SwitchStatement.discriminant")

	inner := c
	inner.blockLevel = true
	cases := n.Children("cases")
	var errs fact.List
	seenDefault := false
	for _, sc := range cases {
		if sc == nil || sc.Child("test") != nil {
			continue
		}
		if seenDefault {
			errs = append(errs, fact.Errorf(diag.FrmDuplicateDefault, sc.Loc, "More than one default clause in switch statement"))
		}
		seenDefault = true
	}
	facts := v.visitAll(cases, inner, estree.Kinds(estree.SwitchCase), "SwitchStatement.cases")
	facts = dropUnlabeled(facts, fact.Of(fact.Break))
	return fact.Concat(discriminant, errs, v.lexicalBoundary(n, scope.KindSwitch, facts, nil))
}

func (v *validator) switchCase(n *estree.Node, c vctx) fact.List {
	return fact.Concat(
		v.visitOpt(n.Child("test"), c.expr(), expressionKinds, "SwitchCase.test"),
		v.statements(n.Children("consequent"), c, statementKinds, "SwitchCase.consequent"),
	)
}

func (v *validator) tryStatement(n *estree.Node, c vctx) fact.List {
	handler, finalizer := n.Child("handler"), n.Child("finalizer")
	if handler == nil && finalizer == nil {
		fail(n, c, "handler", "CatchClause when finalizer is null", "null")
	}
	blocks := estree.Kinds(estree.BlockStatement)
	return fact.Concat(
		v.visit(n.Child("block"), c, blocks, "TryStatement.block"),
		v.visitOpt(handler, c, estree.Kinds(estree.CatchClause), "TryStatement.handler"),
		v.visitOpt(finalizer, c, blocks, "TryStatement.finalizer"),
	)
}

// catchClause is a single boundary for the parameter and the body block.
func (v *validator) catchClause(n *estree.Node, c vctx) fact.List {
	var (
		params []scope.Variable
		other  fact.List
	)
	if param := n.Child("param"); param != nil {
		facts := v.visit(param, c.withPos(posBinding), targetKinds, "CatchClause.param")
		params, other = scope.Capture(facts, fact.Of(fact.Void))
		simple := param.Is(estree.Identifier)
		for i := range params {
			params[i].Kind = fact.Param
			params[i].Duplicable = simple
		}
	}

	body := n.Child("body")
	inner := v.enter(body, c, estree.Kinds(estree.BlockStatement), "CatchClause.body")
	inner.blockLevel = true
	facts := v.statements(body.Children("body"), inner, statementKinds, "BlockStatement.body")
	return fact.Concat(other, v.lexicalBoundary(n, scope.KindCatch, facts, params))
}

func (v *validator) whileStatement(n *estree.Node, c vctx) fact.List {
	facts := fact.Concat(
		v.visit(n.Child("test"), c.expr(), expressionKinds, n.Type+".test"),
		v.substatement(n.Child("body"), c, slotLoop, n.Type+".body"),
	)
	return dropUnlabeled(facts, fact.Labels)
}

var forInitKinds = expressionKinds.Union(estree.Kinds(estree.VariableDeclaration))

func (v *validator) forStatement(n *estree.Node, c vctx) fact.List {
	init := n.Child("init")
	var head fact.List
	if init != nil {
		head = v.visit(init, c.inStatement(slotList), forInitKinds, "ForStatement.init")
	}
	facts := fact.Concat(
		head,
		v.visitOpt(n.Child("test"), c.expr(), expressionKinds, "ForStatement.test"),
		v.visitOpt(n.Child("update"), c.expr(), expressionKinds, "ForStatement.update"),
		dropUnlabeled(v.substatement(n.Child("body"), c, slotLoop, "ForStatement.body"), fact.Labels),
	)
	if isLexicalDeclaration(init) {
		return v.lexicalBoundary(n, scope.KindForHead, facts, nil)
	}
	return facts
}

func (v *validator) forInOfStatement(n *estree.Node, c vctx) fact.List {
	loop := "for-in"
	if n.Is(estree.ForOfStatement) {
		loop = "for-of"
	}
	left := n.Child("left")
	var head fact.List
	if left.Is(estree.VariableDeclaration) {
		hc := c.inStatement(slotList)
		hc.forInOfHead = true
		head = v.visit(left, hc, estree.Kinds(estree.VariableDeclaration), n.Type+".left")
		head = fact.Concat(head, v.forDeclarator(n, left, c, loop))
	} else {
		head = v.target(left, c, true, false, n.Type+".left",
			fmt.Sprintf("Invalid left-hand side in %s loop", loop))
	}

	facts := fact.Concat(
		fact.Mark(n.Bool("await"), fact.AwaitForOf, "", n.Loc),
		head,
		v.visit(n.Child("right"), c.expr(), expressionKinds, n.Type+".right"),
		dropUnlabeled(v.substatement(n.Child("body"), c, slotLoop, n.Type+".body"), fact.Labels),
	)
	if isLexicalDeclaration(left) {
		return v.lexicalBoundary(n, scope.KindForHead, facts, nil)
	}
	return facts
}

// forDeclarator checks the declaration on the left of for-in/of: exactly
// one binding without initializer, except the legacy sloppy
// `for (var x = init in obj)`.
func (v *validator) forDeclarator(n, left *estree.Node, c vctx, loop string) fact.List {
	decls := left.Children("declarations")
	if len(decls) != 1 {
		return fact.ListOf(fact.Errorf(diag.FrmForInitializer, left.Loc,
			"Invalid left-hand side in %s loop: Must have a single binding.", loop))
	}
	d := decls[0]
	if d.Child("init") == nil {
		return nil
	}
	legacy := n.Is(estree.ForInStatement) && !c.strict && left.Str("kind") == "var" && d.Child("id").Is(estree.Identifier)
	return fact.Check(legacy, diag.FrmForInitializer, d.Loc,
		fmt.Sprintf("%s loop variable declaration may not have an initializer.", loop))
}

// functionBinding is the variable kind a function declaration introduces.
func functionBinding(n *estree.Node, c vctx) fact.Kind {
	switch {
	case !c.blockLevel && c.module && c.closure == ClosureNone:
		return fact.GenericRigid
	case !c.blockLevel:
		return fact.Function
	case !c.strict && isPlainFunction(n):
		return fact.GenericLoose
	}
	return fact.GenericRigid
}

func (v *validator) functionDeclaration(n *estree.Node, c vctx) fact.List {
	id := n.Child("id")
	if id == nil && !c.defaultExport {
		fail(n, c, "id", "Identifier", "null")
	}
	facts, strict := v.closure(n, c, ClosureFunction)
	if id == nil {
		return facts
	}
	nc := v.enter(id, c, identifierKinds, "FunctionDeclaration.id")
	nc.strict = strict
	name := v.checkIdentifier(id, nc, useBinding)
	if len(name) == 0 {
		name = fact.Mark(true, functionBinding(n, c), id.Name(), id.Loc)
	}
	return fact.Concat(name, facts)
}

func (v *validator) variableDeclaration(n *estree.Node, c vctx) fact.List {
	kind := n.Str("kind")
	decls := n.Children("declarations")
	if len(decls) == 0 {
		fail(n, c, "declarations", "at least one VariableDeclarator", "empty array")
	}
	facts := v.visitAll(decls, c, estree.Kinds(estree.VariableDeclarator), "VariableDeclaration.declarations")

	var errs fact.List
	for _, d := range decls {
		if d.Child("init") != nil || c.forInOfHead {
			continue
		}
		switch {
		case kind == "const":
			errs = append(errs, fact.Errorf(diag.FrmMissingInitializer, d.Loc, "Missing initializer in const declaration"))
		case !d.Child("id").Is(estree.Identifier):
			errs = append(errs, fact.Errorf(diag.FrmMissingInitializer, d.Loc, "Missing initializer in destructuring declaration"))
		}
	}

	to := map[string]fact.Kind{"var": fact.Var, "let": fact.Let, "const": fact.Const}[kind]
	facts = facts.Transform(map[fact.Kind]fact.Kind{fact.Void: to})
	if to != fact.Var {
		facts = facts.RaiseIf(fact.TestName(fact.Of(fact.Let, fact.Const), "let"), fact.Rule{
			Code:    diag.BndLetName,
			Message: fact.Static("let is disallowed as a lexically bound name"),
		})
	}
	return fact.Concat(errs, facts)
}

func (v *validator) variableDeclarator(n *estree.Node, c vctx) fact.List {
	return fact.Concat(
		v.visit(n.Child("id"), c.withPos(posBinding), targetKinds, "VariableDeclarator.id"),
		v.visitOpt(n.Child("init"), c.expr(), expressionKinds, "VariableDeclarator.init"),
	)
}
