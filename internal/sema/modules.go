package sema

import (
	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
)

var (
	importSpecifierKinds = estree.Kinds(estree.ImportSpecifier, estree.ImportDefaultSpecifier, estree.ImportNamespaceSpecifier)
	exportDeclKinds      = estree.Kinds(estree.VariableDeclaration, estree.FunctionDeclaration, estree.ClassDeclaration)
	exportDefaultKinds   = expressionKinds.Union(estree.Kinds(estree.FunctionDeclaration, estree.ClassDeclaration))
)

// moduleSource checks the `from` clause, which must be a string literal.
func (v *validator) moduleSource(n *estree.Node, c vctx, where string) {
	v.enter(n, c, stringKinds, where)
	if _, ok := n.Field("value").(string); !ok {
		fail(n, c, "value", "string", "other")
	}
}

// moduleName returns an export or import name written as an identifier or
// a string literal.
func (v *validator) moduleName(n *estree.Node, c vctx, where string) string {
	v.enter(n, c, moduleNameKinds, where)
	if n.Is(estree.Identifier) {
		return n.Name()
	}
	s, ok := n.Field("value").(string)
	if !ok {
		fail(n, c, "value", "string", "other")
	}
	return s
}

func (v *validator) importDeclaration(n *estree.Node, c vctx) fact.List {
	v.moduleSource(n.Child("source"), c, "ImportDeclaration.source")
	specs := v.visitAll(n.Children("specifiers"), c, importSpecifierKinds, "ImportDeclaration.specifiers")
	return fact.Concat(
		fact.Mark(true, fact.Import, "", n.Loc),
		specs.Transform(map[fact.Kind]fact.Kind{fact.Void: fact.GenericRigid}),
	)
}

// importSpecifier handles the three specifier forms. The local name is a
// binding; the imported name may be any identifier name or a string.
func (v *validator) importSpecifier(n *estree.Node, c vctx) fact.List {
	if n.Is(estree.ImportSpecifier) {
		v.moduleName(n.Child("imported"), c, "ImportSpecifier.imported")
	}
	return v.visit(n.Child("local"), c.withPos(posBinding), identifierKinds, n.Type+".local")
}

func (v *validator) exportNamed(n *estree.Node, c vctx) fact.List {
	decl, source := n.Child("declaration"), n.Child("source")
	specs := n.Children("specifiers")
	parts := []fact.List{fact.Mark(true, fact.Export, "", n.Loc)}

	if decl != nil {
		if len(specs) > 0 || source != nil {
			fail(n, c, "specifiers", "empty array with a declaration", "non-empty")
		}
		facts := v.visit(decl, c.inStatement(slotList), exportDeclKinds, "ExportNamedDeclaration.declaration")
		for _, f := range facts {
			if closureVariables.Has(f.Kind) {
				parts = append(parts, fact.Mark(true, fact.ExportName, f.Name, f.Loc))
			}
		}
		return fact.Concat(append(parts, facts)...)
	}

	if source != nil {
		v.moduleSource(source, c, "ExportNamedDeclaration.source")
	}
	facts := v.visitAll(specs, c, estree.Kinds(estree.ExportSpecifier), "ExportNamedDeclaration.specifiers")
	if source != nil {
		return fact.Concat(append(parts, facts.Drop(fact.Test(fact.Of(fact.ExportLocal))))...)
	}
	for _, s := range specs {
		local := s.Child("local")
		switch {
		case local.Is(estree.Literal):
			parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmInvalidExportBinding, local.Loc,
				"A string literal cannot be used as an exported binding without 'from'")))
		case keywords[local.Name()]:
			parts = append(parts, fact.ListOf(fact.Errorf(diag.FrmReservedWord, local.Loc,
				"Unexpected reserved word '%s'", local.Name())))
		}
	}
	return fact.Concat(append(parts, facts)...)
}

func (v *validator) exportSpecifier(n *estree.Node, c vctx) fact.List {
	local := n.Child("local")
	name := v.moduleName(local, c, "ExportSpecifier.local")
	exported := n.Child("exported")
	return fact.Concat(
		fact.Mark(local.Is(estree.Identifier), fact.ExportLocal, name, local.Loc),
		fact.Mark(true, fact.ExportName, v.moduleName(exported, c, "ExportSpecifier.exported"), exported.Loc),
	)
}

func (v *validator) exportDefault(n *estree.Node, c vctx) fact.List {
	decl := n.Child("declaration")
	dc := c.inStatement(slotList)
	if decl.Is(estree.FunctionDeclaration) || decl.Is(estree.ClassDeclaration) {
		dc.defaultExport = true
	} else {
		dc = dc.expr()
	}
	return fact.Concat(
		fact.Mark(true, fact.Export, "", n.Loc),
		fact.Mark(true, fact.ExportName, "default", n.Loc),
		v.visit(decl, dc, exportDefaultKinds, "ExportDefaultDeclaration.declaration"),
	)
}

func (v *validator) exportAll(n *estree.Node, c vctx) fact.List {
	v.moduleSource(n.Child("source"), c, "ExportAllDeclaration.source")
	var name fact.List
	if exported := n.Child("exported"); exported != nil {
		name = fact.Mark(true, fact.ExportName, v.moduleName(exported, c, "ExportAllDeclaration.exported"), exported.Loc)
	}
	return fact.Concat(fact.Mark(true, fact.Export, "", n.Loc), name)
}
