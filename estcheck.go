// Package estcheck reports the early errors of ESTree programs: the static
// semantic violations a conforming ECMAScript implementation must reject
// before running the code. It never parses source text; callers hand it an
// already parsed tree.
//
// A tree that is not well-formed ESTree is rejected with an
// *estree.ShapeError. Options that contradict themselves are rejected with
// an *OptionError. Early errors are data: every violation found in the tree
// is returned in Result.Diagnostics.
package estcheck

import (
	"fmt"
	"strings"

	"estcheck/estree"
	"estcheck/internal/diag"
	"estcheck/internal/fact"
	"estcheck/internal/scope"
	"estcheck/internal/sema"
	"estcheck/internal/trace"
)

type (
	// Diagnostic is one early error.
	Diagnostic = diag.Diagnostic
	// Annotation is what the pass records about a scope boundary node.
	Annotation = sema.Annotation
	// Variable is a binding recorded in an Annotation.
	Variable = scope.Variable
	// Mode is the goal symbol a program is checked against.
	Mode = sema.Mode
)

const (
	ModeScript = sema.ModeScript
	ModeModule = sema.ModeModule
	ModeEval   = sema.ModeEval
)

// ParseMode accepts script, module or eval. The empty string is script.
func ParseMode(s string) (Mode, error) {
	return sema.ParseMode(strings.ToLower(strings.TrimSpace(s)))
}

// Binding is a pre-existing binding of the scope frame a program runs in.
// Kind is one of var, function, let, const, class, param, generic-loose or
// generic-rigid. An empty Kind is derived from Duplicable: var when it is
// unset or true, let otherwise.
type Binding struct {
	Name       string
	Kind       string
	Duplicable *bool
}

// Options configure a validation call.
type Options struct {
	// Scope is the frame of bindings the program is merged into.
	Scope []Binding
	// ClosureContext is where a direct eval runs: null, function, arrow,
	// method, constructor or derived-constructor.
	ClosureContext string
	// FunctionExpressionAncestor reports that an eval inside an arrow has a
	// non-arrow function around it, which makes new.target legal.
	FunctionExpressionAncestor bool
	// Strict is the strictness of the code calling eval. Scripts honour it
	// too; modules are always strict.
	Strict bool

	Tracer     trace.Tracer
	ParentSpan uint64
}

// Result holds the early errors of one call and the annotations of the
// boundary nodes of the tree.
type Result struct {
	Diagnostics []Diagnostic
	Annotations map[*estree.Node]*Annotation
}

// OK reports whether the program has no early errors.
func (r *Result) OK() bool {
	return r != nil && len(r.Diagnostics) == 0
}

// Err returns the first diagnostic as a *SyntaxError, or nil.
func (r *Result) Err() error {
	if r == nil || len(r.Diagnostics) == 0 {
		return nil
	}
	return &SyntaxError{Diagnostic: r.Diagnostics[0]}
}

// SyntaxError wraps a diagnostic for callers that want a Go error.
type SyntaxError struct {
	Diagnostic Diagnostic
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: SyntaxError: %s", e.Diagnostic.Location, e.Diagnostic.Message)
}

// OptionError reports an inconsistent option.
type OptionError struct {
	Option string
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Option, e.Reason)
}

// ValidateModule checks program as a module: strict code, with import,
// export, import.meta and top-level await allowed.
func ValidateModule(program *estree.Node, opts Options) (*Result, error) {
	return Validate(program, ModeModule, opts)
}

// ValidateScript checks program as a classic script.
func ValidateScript(program *estree.Node, opts Options) (*Result, error) {
	return Validate(program, ModeScript, opts)
}

// ValidateEval checks program as the argument of a direct eval. The closure
// options tell which of new.target and super are legal at the call site.
func ValidateEval(program *estree.Node, opts Options) (*Result, error) {
	return Validate(program, ModeEval, opts)
}

// Validate is the mode-generic form of the three entry points.
func Validate(program *estree.Node, mode Mode, opts Options) (*Result, error) {
	so, err := opts.semaOptions(mode)
	if err != nil {
		return nil, err
	}
	res, err := sema.Check(program, so)
	if err != nil {
		return nil, err
	}
	return &Result{Diagnostics: res.Diagnostics, Annotations: res.Annotations}, nil
}

// Check reports the first inconsistent option without validating a program.
func (opts Options) Check(mode Mode) error {
	_, err := opts.semaOptions(mode)
	return err
}

func (opts Options) semaOptions(mode Mode) (sema.Options, error) {
	closure, err := sema.ParseClosureKind(opts.ClosureContext)
	if err != nil {
		return sema.Options{}, &OptionError{Option: "closure-context", Reason: err.Error()}
	}
	frame, err := Frame(opts.Scope)
	if err != nil {
		return sema.Options{}, err
	}
	so := sema.Options{
		Mode:       mode,
		Strict:     opts.Strict,
		Frame:      frame,
		Tracer:     opts.Tracer,
		ParentSpan: opts.ParentSpan,
	}
	if mode == ModeEval {
		so.Closure = closure
		so.FunctionExpressionAncestor = opts.FunctionExpressionAncestor
	}
	return so, nil
}

// Frame converts bindings into the scope frame of a validation pass.
func Frame(bindings []Binding) ([]scope.Variable, error) {
	if len(bindings) == 0 {
		return nil, nil
	}
	out := make([]scope.Variable, 0, len(bindings))
	for i, b := range bindings {
		option := fmt.Sprintf("scope[%d]", i)
		if b.Name == "" {
			return nil, &OptionError{Option: option, Reason: "binding has no name"}
		}
		kind, err := bindingKind(b)
		if err != nil {
			return nil, &OptionError{Option: option, Reason: err.Error()}
		}
		duplicable := scope.IsDuplicable(kind)
		if b.Duplicable != nil && *b.Duplicable != duplicable {
			return nil, &OptionError{
				Option: option,
				Reason: fmt.Sprintf("%s binding %q cannot have duplicable=%t", kind, b.Name, *b.Duplicable),
			}
		}
		out = append(out, scope.Variable{Kind: kind, Name: b.Name, Duplicable: duplicable})
	}
	return out, nil
}

// frameKinds are the binding kinds a frame may hold.
var frameKinds = fact.Variables &^ fact.Of(fact.Void)

func bindingKind(b Binding) (fact.Kind, error) {
	if b.Kind == "" {
		if b.Duplicable == nil || *b.Duplicable {
			return fact.Var, nil
		}
		return fact.Let, nil
	}
	kind, ok := fact.ParseKind(strings.ToLower(b.Kind))
	if !ok || !frameKinds.Has(kind) {
		return fact.KindInvalid, fmt.Errorf("unknown binding kind %q", b.Kind)
	}
	return kind, nil
}
