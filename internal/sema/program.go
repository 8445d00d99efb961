package sema

import (
	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
	"estcheck/internal/scope"
)

// program is the outermost boundary. It resolves everything still pending:
// top-level bindings against each other and the frame, exports, and the
// markers allowed by the mode.
func (v *validator) program(n *estree.Node, c vctx) fact.List {
	body := n.Children("body")
	if _, ok := useStrict(body); ok {
		c.strict = true
	}
	facts := v.statements(body, c, moduleItemKinds, "Program.body")

	sp := v.boundary(n, scope.KindProgram)
	vars, rest := scope.Capture(facts, closureVariables)
	rest = rest.Drop(fact.Test(fact.Of(fact.Void)))
	errs := []fact.List{scope.Duplicates(vars)}

	var declared, releases []scope.Variable
	switch {
	case v.opts.Mode != ModeEval:
		declared = vars
	case !c.strict:
		declared = scope.Select(vars, fact.Hoisting)
	}
	if v.opts.Mode == ModeScript || v.opts.Mode == ModeEval && !c.strict {
		releases = scope.Select(vars, fact.Hoisting)
	}
	errs = append(errs, scope.MergeFrame(v.opts.Frame, declared))

	exports := fact.Of(fact.ExportName, fact.ExportLocal)
	if v.opts.Mode == ModeModule {
		errs = append(errs, exportChecks(rest, vars, v.opts.Frame))
	}
	rest = rest.Drop(fact.Test(exports))

	a := v.annotate(n)
	a.UseStrict = c.strict
	a.HasDirectEval = rest.Any(fact.Test(fact.Of(fact.Eval)))
	a.Captures = vars
	a.Releases = releases

	out := fact.Concat(append(errs, programPolicy(v.opts).apply(rest))...)
	endBoundary(sp, len(vars), out)
	return out
}

// exportChecks validates the exported names of a module: no name twice,
// and every local reference bound at module top level.
func exportChecks(facts fact.List, declared, frame []scope.Variable) fact.List {
	bound := make(map[string]bool, len(declared)+len(frame))
	for _, v := range declared {
		bound[v.Name] = true
	}
	for _, v := range frame {
		bound[v.Name] = true
	}

	var out fact.List
	exported := make(map[string]fact.Fact)
	for _, f := range facts {
		switch f.Kind {
		case fact.ExportName:
			if first, dup := exported[f.Name]; dup {
				out = append(out, fact.Errorf(diag.BndDuplicateExport, f.Loc, "Duplicate export of '%s'", f.Name).
					WithNote(first.Loc, "first exported here"))
				continue
			}
			exported[f.Name] = f
		case fact.ExportLocal:
			if !bound[f.Name] {
				out = append(out, fact.Errorf(diag.BndUndeclaredExport, f.Loc, "Export '%s' is not defined in module", f.Name))
			}
		}
	}
	return out
}
