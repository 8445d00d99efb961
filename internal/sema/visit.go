package sema

import (
	"estcheck/estree"
	"estcheck/internal/fact"
	"estcheck/internal/trace"
)

// handler validates one node kind and returns its outgoing facts.
type handler func(v *validator, n *estree.Node, c vctx) fact.List

// handlers is filled in init: several handlers reach visit, which reads the
// table, so a static initializer would be a cycle.
var handlers [estree.KindCount]handler

func init() {
	handlers = [estree.KindCount]handler{
		estree.Program: (*validator).program,

		estree.ExpressionStatement: (*validator).expressionStatement,
		estree.BlockStatement:      (*validator).blockStatement,
		estree.StaticBlock:         (*validator).staticBlock,
		estree.EmptyStatement:      noFacts,
		estree.DebuggerStatement:   noFacts,
		estree.WithStatement:       (*validator).withStatement,
		estree.ReturnStatement:     (*validator).returnStatement,
		estree.LabeledStatement:    (*validator).labeledStatement,
		estree.BreakStatement:      (*validator).jumpStatement,
		estree.ContinueStatement:   (*validator).jumpStatement,
		estree.IfStatement:         (*validator).ifStatement,
		estree.SwitchStatement:     (*validator).switchStatement,
		estree.SwitchCase:          (*validator).switchCase,
		estree.ThrowStatement:      (*validator).throwStatement,
		estree.TryStatement:        (*validator).tryStatement,
		estree.CatchClause:         (*validator).catchClause,
		estree.WhileStatement:      (*validator).whileStatement,
		estree.DoWhileStatement:    (*validator).whileStatement,
		estree.ForStatement:        (*validator).forStatement,
		estree.ForInStatement:      (*validator).forInOfStatement,
		estree.ForOfStatement:      (*validator).forInOfStatement,

		estree.FunctionDeclaration: (*validator).functionDeclaration,
		estree.VariableDeclaration: (*validator).variableDeclaration,
		estree.VariableDeclarator:  (*validator).variableDeclarator,
		estree.ClassDeclaration:    (*validator).class,

		estree.Identifier:               (*validator).identifier,
		estree.PrivateIdentifier:        (*validator).privateIdentifier,
		estree.Literal:                  (*validator).literal,
		estree.ThisExpression:           noFacts,
		estree.ArrayExpression:          (*validator).array,
		estree.ObjectExpression:         (*validator).object,
		estree.Property:                 (*validator).property,
		estree.FunctionExpression:       (*validator).functionExpression,
		estree.ArrowFunctionExpression:  (*validator).arrowFunction,
		estree.UnaryExpression:          (*validator).unary,
		estree.UpdateExpression:         (*validator).update,
		estree.BinaryExpression:         (*validator).binary,
		estree.AssignmentExpression:     (*validator).assignment,
		estree.LogicalExpression:        (*validator).logical,
		estree.MemberExpression:         (*validator).member,
		estree.ConditionalExpression:    (*validator).conditional,
		estree.CallExpression:           (*validator).call,
		estree.NewExpression:            (*validator).newExpression,
		estree.SequenceExpression:       (*validator).sequence,
		estree.YieldExpression:          (*validator).yield,
		estree.AwaitExpression:          (*validator).await,
		estree.TemplateLiteral:          (*validator).templateLiteral,
		estree.TaggedTemplateExpression: (*validator).taggedTemplate,
		estree.TemplateElement:          noFacts,
		estree.ClassExpression:          (*validator).class,
		estree.ClassBody:                (*validator).classBody,
		estree.MethodDefinition:         (*validator).methodDefinition,
		estree.PropertyDefinition:       (*validator).propertyDefinition,
		estree.MetaProperty:             (*validator).metaProperty,
		estree.Super:                    noFacts,
		estree.SpreadElement:            (*validator).spread,
		estree.ChainExpression:          (*validator).chain,
		estree.ImportExpression:         (*validator).importExpression,

		estree.ObjectPattern:     (*validator).objectPattern,
		estree.ArrayPattern:      (*validator).arrayPattern,
		estree.RestElement:       (*validator).restElement,
		estree.AssignmentPattern: (*validator).assignmentPattern,

		estree.ImportDeclaration:        (*validator).importDeclaration,
		estree.ImportSpecifier:          (*validator).importSpecifier,
		estree.ImportDefaultSpecifier:   (*validator).importSpecifier,
		estree.ImportNamespaceSpecifier: (*validator).importSpecifier,
		estree.ExportNamedDeclaration:   (*validator).exportNamed,
		estree.ExportSpecifier:          (*validator).exportSpecifier,
		estree.ExportDefaultDeclaration: (*validator).exportDefault,
		estree.ExportAllDeclaration:     (*validator).exportAll,
	}
}

func noFacts(*validator, *estree.Node, vctx) fact.List { return nil }

var (
	statementKinds = estree.Kinds(
		estree.ExpressionStatement, estree.BlockStatement, estree.EmptyStatement,
		estree.DebuggerStatement, estree.WithStatement, estree.ReturnStatement,
		estree.LabeledStatement, estree.BreakStatement, estree.ContinueStatement,
		estree.IfStatement, estree.SwitchStatement, estree.ThrowStatement,
		estree.TryStatement, estree.WhileStatement, estree.DoWhileStatement,
		estree.ForStatement, estree.ForInStatement, estree.ForOfStatement,
		estree.FunctionDeclaration, estree.VariableDeclaration, estree.ClassDeclaration,
	)
	moduleItemKinds = statementKinds.Union(estree.Kinds(
		estree.ImportDeclaration, estree.ExportNamedDeclaration,
		estree.ExportDefaultDeclaration, estree.ExportAllDeclaration,
	))
	expressionKinds = estree.Kinds(
		estree.Identifier, estree.Literal, estree.ThisExpression, estree.ArrayExpression,
		estree.ObjectExpression, estree.FunctionExpression, estree.ArrowFunctionExpression,
		estree.UnaryExpression, estree.UpdateExpression, estree.BinaryExpression,
		estree.AssignmentExpression, estree.LogicalExpression, estree.MemberExpression,
		estree.ConditionalExpression, estree.CallExpression, estree.NewExpression,
		estree.SequenceExpression, estree.YieldExpression, estree.AwaitExpression,
		estree.TemplateLiteral, estree.TaggedTemplateExpression, estree.ClassExpression,
		estree.MetaProperty, estree.ChainExpression, estree.ImportExpression,
	)
	argumentKinds = expressionKinds.Union(estree.Kinds(estree.SpreadElement))
	// callee and member object positions also admit `super`
	superKinds = expressionKinds.Union(estree.Kinds(estree.Super))

	targetKinds         = estree.Kinds(estree.Identifier, estree.ObjectPattern, estree.ArrayPattern, estree.MemberExpression)
	patternElementKinds = targetKinds.Union(estree.Kinds(estree.AssignmentPattern))
	patternItemKinds    = patternElementKinds.Union(estree.Kinds(estree.RestElement))
	// assignment left sides: any expression parses, invalid ones are reported
	assignLeftKinds = expressionKinds.Union(targetKinds)

	keyKinds          = estree.Kinds(estree.Identifier, estree.Literal)
	classKeyKinds     = keyKinds.Union(estree.Kinds(estree.PrivateIdentifier))
	classElementKinds = estree.Kinds(estree.MethodDefinition, estree.PropertyDefinition, estree.StaticBlock)
	functionKinds     = estree.Kinds(estree.FunctionExpression)
	identifierKinds   = estree.Kinds(estree.Identifier)
	stringKinds       = estree.Kinds(estree.Literal)
	moduleNameKinds   = estree.Kinds(estree.Identifier, estree.Literal)
)

// validator carries the per-call state of one Check. The tree is read only;
// results go to annotations.
type validator struct {
	opts        Options
	annotations map[*estree.Node]*Annotation
	tracer      trace.Tracer
	span        uint64
}

// enter asserts that n may appear at where and has a valid shape, and
// returns the context with the node location.
func (v *validator) enter(n *estree.Node, c vctx, allowed estree.KindSet, where string) vctx {
	if err := estree.AssertKind(n, allowed, where); err != nil {
		bail(err, c)
	}
	if err := estree.CheckShape(n); err != nil {
		bail(err, c)
	}
	if !n.Loc.IsZero() {
		c.loc = n.Loc
	}
	return c
}

// visit validates n at position where and returns its facts.
func (v *validator) visit(n *estree.Node, c vctx, allowed estree.KindSet, where string) fact.List {
	c = v.enter(n, c, allowed, where)
	return handlers[n.Kind](v, n, c)
}

// visitOpt is visit for nullable fields.
func (v *validator) visitOpt(n *estree.Node, c vctx, allowed estree.KindSet, where string) fact.List {
	if n == nil {
		return nil
	}
	return v.visit(n, c, allowed, where)
}

// visitAll visits every element of a node array. Holes are skipped; the
// schema already rejected them where they are not allowed.
func (v *validator) visitAll(items []*estree.Node, c vctx, allowed estree.KindSet, where string) fact.List {
	parts := make([]fact.List, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		parts = append(parts, v.visit(item, c, allowed, where))
	}
	return fact.Concat(parts...)
}

// shapePanic carries a ShapeError out of the recursion to Check.
type shapePanic struct{ err *estree.ShapeError }

func bail(err error, c vctx) {
	se, ok := err.(*estree.ShapeError)
	if !ok {
		panic(err)
	}
	if se.Loc.IsZero() {
		se.Loc = c.loc
	}
	panic(shapePanic{err: se})
}

// fail reports a shape problem the schema cannot express.
func fail(n *estree.Node, c vctx, field, expected, actual string) {
	loc := n.Loc
	if loc.IsZero() {
		loc = c.loc
	}
	panic(shapePanic{err: &estree.ShapeError{Type: n.Type, Field: field, Expected: expected, Actual: actual, Loc: loc}})
}

func (v *validator) annotate(n *estree.Node) *Annotation {
	a := v.annotations[n]
	if a == nil {
		a = &Annotation{}
		v.annotations[n] = a
	}
	return a
}
