package fact

// Kind is the closed set of fact tags. The numeric order groups the four
// families; Family relies on it.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Variables: a declared name waiting for its scope boundary.
	Void         // binding identifier whose declaring construct is not known yet
	Param        // formal parameter
	Var          // var declaration
	Function     // function declaration hoisted to the closure (var-like)
	Let          // let declaration
	Const        // const declaration
	Class        // class declaration
	GenericLoose // block function in sloppy code, duplicable with other loose functions only
	GenericRigid // import binding, strict block function, module top-level function

	// Labels: Name is the label, empty for the unlabeled form.
	Break
	Continue

	// Markers
	Await            // await expression
	AwaitForOf       // for await (... of ...)
	Yield            // yield expression
	SuperCall        // super(...)
	SuperMember      // super.x / super[x]
	NewTarget        // new.target
	ImportMeta       // import.meta
	Eval             // direct call to eval
	Return           // return statement
	Arguments        // reference to arguments
	Import           // import declaration
	Export           // export declaration
	ExportName       // exported name, Name is the exported string
	ExportLocal      // local binding referenced by export { x }
	PrivateReference // #x used in a member expression or `#x in o`

	// Error is terminal: Code and Message are set, nothing transforms it.
	Error

	kindCount
)

// Family groups fact kinds.
type Family uint8

const (
	FamilyInvalid Family = iota
	FamilyVariable
	FamilyLabel
	FamilyMarker
	FamilyError
)

func (k Kind) Family() Family {
	switch {
	case k >= Void && k <= GenericRigid:
		return FamilyVariable
	case k == Break || k == Continue:
		return FamilyLabel
	case k >= Await && k <= PrivateReference:
		return FamilyMarker
	case k == Error:
		return FamilyError
	}
	return FamilyInvalid
}

var kindNames = [kindCount]string{
	KindInvalid:      "invalid",
	Void:             "void",
	Param:            "param",
	Var:              "var",
	Function:         "function",
	Let:              "let",
	Const:            "const",
	Class:            "class",
	GenericLoose:     "generic-loose",
	GenericRigid:     "generic-rigid",
	Break:            "break",
	Continue:         "continue",
	Await:            "await",
	AwaitForOf:       "await-for-of",
	Yield:            "yield",
	SuperCall:        "super-call",
	SuperMember:      "super-member",
	NewTarget:        "new-target",
	ImportMeta:       "import-meta",
	Eval:             "eval",
	Return:           "return",
	Arguments:        "arguments",
	Import:           "import",
	Export:           "export",
	ExportName:       "export-name",
	ExportLocal:      "export-local",
	PrivateReference: "private-reference",
	Error:            "error",
}

func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindInvalid]
	}
	return kindNames[k]
}

// ParseKind maps the dashed name back to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k := Void; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindInvalid, false
}

// Set is a bitset over Kind.
type Set uint64

// Of builds a Set from its members.
func Of(kinds ...Kind) Set {
	var s Set
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

func (s Set) Has(k Kind) bool { return s&(1<<k) != 0 }

// Commonly used sets.
var (
	Variables = Of(Void, Param, Var, Function, Let, Const, Class, GenericLoose, GenericRigid)
	Lexical   = Of(Let, Const, Class, GenericLoose, GenericRigid)
	Hoisting  = Of(Var, Function)
	Labels    = Of(Break, Continue)
)
