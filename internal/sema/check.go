package sema

import (
	"fmt"

	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/scope"
	"estcheck/internal/trace"
)

// Mode selects the goal symbol the program is checked against.
type Mode uint8

const (
	ModeScript Mode = iota
	ModeModule
	ModeEval
)

func (m Mode) String() string {
	switch m {
	case ModeScript:
		return "script"
	case ModeModule:
		return "module"
	case ModeEval:
		return "eval"
	}
	return "unknown"
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "script", "":
		return ModeScript, nil
	case "module":
		return ModeModule, nil
	case "eval":
		return ModeEval, nil
	}
	return ModeScript, fmt.Errorf("invalid mode %q (expected: script|module|eval)", s)
}

// Options configure one validation pass.
type Options struct {
	Mode Mode
	// Strict forces strict mode code; modules are always strict.
	Strict bool
	// Frame holds bindings that already exist around the program.
	Frame []scope.Variable
	// Closure and FunctionExpressionAncestor describe where a direct eval
	// runs. They are ignored for scripts and modules.
	Closure                    ClosureKind
	FunctionExpressionAncestor bool

	Tracer     trace.Tracer
	ParentSpan uint64
}

// Annotation is what the pass records about a boundary node.
type Annotation struct {
	UseStrict     bool
	HasDirectEval bool
	Captures      []scope.Variable
	Releases      []scope.Variable
}

// Result stores the diagnostics and annotations of one pass.
type Result struct {
	Diagnostics []diag.Diagnostic
	Annotations map[*estree.Node]*Annotation
}

// Check validates program against the early error rules of opts.Mode.
// A tree that is not well-formed ESTree yields an *estree.ShapeError and
// no result; early errors are returned as diagnostics sorted by location.
func Check(program *estree.Node, opts Options) (res *Result, err error) {
	span := trace.BeginPass(opts.Tracer, opts.ParentSpan, opts.Mode.String())
	v := &validator{
		opts:        opts,
		annotations: make(map[*estree.Node]*Annotation),
		tracer:      opts.Tracer,
		span:        span.ID(),
	}
	c := vctx{
		strict: opts.Strict || opts.Mode == ModeModule,
		module: opts.Mode == ModeModule,
	}

	defer func() {
		if r := recover(); r != nil {
			sp, ok := r.(shapePanic)
			if !ok {
				panic(r)
			}
			res, err = nil, sp.err
			span.End("malformed: " + sp.err.Error())
		}
	}()

	facts := v.visit(program, c, estree.Kinds(estree.Program), "root")
	for _, f := range facts {
		if !f.IsError() {
			span.End("internal error")
			return nil, fmt.Errorf("sema: %s reached the program boundary unresolved", f)
		}
	}

	bag := diag.NewBag(0)
	for _, d := range facts.Diagnostics() {
		bag.Add(d)
	}
	bag.Sort()
	span.Diagnostics(bag.Len()).End("")
	return &Result{Diagnostics: bag.Items(), Annotations: v.annotations}, nil
}
