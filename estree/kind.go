package estree

// Kind is the closed set of ESTree node types the checker understands.
type Kind uint8

const (
	KindInvalid Kind = iota

	Program

	// Statements
	ExpressionStatement
	BlockStatement
	StaticBlock
	EmptyStatement
	DebuggerStatement
	WithStatement
	ReturnStatement
	LabeledStatement
	BreakStatement
	ContinueStatement
	IfStatement
	SwitchStatement
	SwitchCase
	ThrowStatement
	TryStatement
	CatchClause
	WhileStatement
	DoWhileStatement
	ForStatement
	ForInStatement
	ForOfStatement

	// Declarations
	FunctionDeclaration
	VariableDeclaration
	VariableDeclarator
	ClassDeclaration

	// Expressions
	Identifier
	PrivateIdentifier
	Literal
	ThisExpression
	ArrayExpression
	ObjectExpression
	Property
	FunctionExpression
	ArrowFunctionExpression
	UnaryExpression
	UpdateExpression
	BinaryExpression
	AssignmentExpression
	LogicalExpression
	MemberExpression
	ConditionalExpression
	CallExpression
	NewExpression
	SequenceExpression
	YieldExpression
	AwaitExpression
	TemplateLiteral
	TaggedTemplateExpression
	TemplateElement
	ClassExpression
	ClassBody
	MethodDefinition
	PropertyDefinition
	MetaProperty
	Super
	SpreadElement
	ChainExpression
	ImportExpression

	// Patterns
	ObjectPattern
	ArrayPattern
	RestElement
	AssignmentPattern

	// Modules
	ImportDeclaration
	ImportSpecifier
	ImportDefaultSpecifier
	ImportNamespaceSpecifier
	ExportNamedDeclaration
	ExportSpecifier
	ExportDefaultDeclaration
	ExportAllDeclaration

	KindCount
)

var kindNames = [KindCount]string{
	KindInvalid: "<invalid>",

	Program: "Program",

	ExpressionStatement: "ExpressionStatement",
	BlockStatement:      "BlockStatement",
	StaticBlock:         "StaticBlock",
	EmptyStatement:      "EmptyStatement",
	DebuggerStatement:   "DebuggerStatement",
	WithStatement:       "WithStatement",
	ReturnStatement:     "ReturnStatement",
	LabeledStatement:    "LabeledStatement",
	BreakStatement:      "BreakStatement",
	ContinueStatement:   "ContinueStatement",
	IfStatement:         "IfStatement",
	SwitchStatement:     "SwitchStatement",
	SwitchCase:          "SwitchCase",
	ThrowStatement:      "ThrowStatement",
	TryStatement:        "TryStatement",
	CatchClause:         "CatchClause",
	WhileStatement:      "WhileStatement",
	DoWhileStatement:    "DoWhileStatement",
	ForStatement:        "ForStatement",
	ForInStatement:      "ForInStatement",
	ForOfStatement:      "ForOfStatement",

	FunctionDeclaration: "FunctionDeclaration",
	VariableDeclaration: "VariableDeclaration",
	VariableDeclarator:  "VariableDeclarator",
	ClassDeclaration:    "ClassDeclaration",

	Identifier:               "Identifier",
	PrivateIdentifier:        "PrivateIdentifier",
	Literal:                  "Literal",
	ThisExpression:           "ThisExpression",
	ArrayExpression:          "ArrayExpression",
	ObjectExpression:         "ObjectExpression",
	Property:                 "Property",
	FunctionExpression:       "FunctionExpression",
	ArrowFunctionExpression:  "ArrowFunctionExpression",
	UnaryExpression:          "UnaryExpression",
	UpdateExpression:         "UpdateExpression",
	BinaryExpression:         "BinaryExpression",
	AssignmentExpression:     "AssignmentExpression",
	LogicalExpression:        "LogicalExpression",
	MemberExpression:         "MemberExpression",
	ConditionalExpression:    "ConditionalExpression",
	CallExpression:           "CallExpression",
	NewExpression:            "NewExpression",
	SequenceExpression:       "SequenceExpression",
	YieldExpression:          "YieldExpression",
	AwaitExpression:          "AwaitExpression",
	TemplateLiteral:          "TemplateLiteral",
	TaggedTemplateExpression: "TaggedTemplateExpression",
	TemplateElement:          "TemplateElement",
	ClassExpression:          "ClassExpression",
	ClassBody:                "ClassBody",
	MethodDefinition:         "MethodDefinition",
	PropertyDefinition:       "PropertyDefinition",
	MetaProperty:             "MetaProperty",
	Super:                    "Super",
	SpreadElement:            "SpreadElement",
	ChainExpression:          "ChainExpression",
	ImportExpression:         "ImportExpression",

	ObjectPattern:     "ObjectPattern",
	ArrayPattern:      "ArrayPattern",
	RestElement:       "RestElement",
	AssignmentPattern: "AssignmentPattern",

	ImportDeclaration:        "ImportDeclaration",
	ImportSpecifier:          "ImportSpecifier",
	ImportDefaultSpecifier:   "ImportDefaultSpecifier",
	ImportNamespaceSpecifier: "ImportNamespaceSpecifier",
	ExportNamedDeclaration:   "ExportNamedDeclaration",
	ExportSpecifier:          "ExportSpecifier",
	ExportDefaultDeclaration: "ExportDefaultDeclaration",
	ExportAllDeclaration:     "ExportAllDeclaration",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, KindCount)
	for k := Kind(1); k < KindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

func (k Kind) String() string {
	if k >= KindCount {
		return kindNames[KindInvalid]
	}
	return kindNames[k]
}

// ParseKind maps an ESTree `type` string to its Kind.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// KindSet is a small bitset over Kind.
type KindSet [2]uint64

// Kinds builds a KindSet from its members.
func Kinds(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s[k/64] |= 1 << (k % 64)
	}
	return s
}

func (s KindSet) Has(k Kind) bool {
	return s[k/64]&(1<<(k%64)) != 0
}

// Union returns the set of kinds present in either operand.
func (s KindSet) Union(others ...KindSet) KindSet {
	for _, o := range others {
		s[0] |= o[0]
		s[1] |= o[1]
	}
	return s
}

// Names lists the member names in declaration order.
func (s KindSet) Names() []string {
	var out []string
	for k := Kind(1); k < KindCount; k++ {
		if s.Has(k) {
			out = append(out, kindNames[k])
		}
	}
	return out
}
