package estree

// FieldType classifies the value a schema field must hold.
type FieldType uint8

const (
	FieldNode         FieldType = iota + 1 // non-null node
	FieldOptNode                           // node, null or absent
	FieldNodes                             // array of nodes
	FieldNodesHoles                        // array of nodes and nulls
	FieldBool                              // boolean
	FieldOptBool                           // boolean, null or absent
	FieldString                            // string
	FieldOptString                         // string or absent
	FieldStringOrNull                      // string or null, must be present
	FieldEnum                              // one of Enum
	FieldOptEnum                           // one of Enum, null or absent
	FieldLiteral                           // Literal.value
	FieldObject                            // plain object matching Shape
	FieldOptObject                         // plain object, null or absent
)

// FieldSpec describes one structural field of a node type.
type FieldSpec struct {
	Name  string
	Type  FieldType
	Enum  []string
	Shape []FieldSpec
}

var (
	UnaryOperators  = []string{"-", "+", "!", "~", "typeof", "void", "delete"}
	UpdateOperators = []string{"++", "--"}
	BinaryOperators = []string{
		"==", "!=", "===", "!==", "<", "<=", ">", ">=",
		"<<", ">>", ">>>", "+", "-", "*", "/", "%", "**",
		"|", "^", "&", "in", "instanceof",
	}
	LogicalOperators    = []string{"||", "&&", "??"}
	AssignmentOperators = []string{
		"=", "+=", "-=", "*=", "/=", "%=", "**=",
		"<<=", ">>=", ">>>=", "|=", "^=", "&=",
		"||=", "&&=", "??=",
	}
	VariableKinds = []string{"var", "let", "const"}
	PropertyKinds = []string{"init", "get", "set"}
	MethodKinds   = []string{"constructor", "method", "get", "set"}
	SourceTypes   = []string{"script", "module"}
)

func node(name string) FieldSpec { return FieldSpec{Name: name, Type: FieldNode} }
func optNode(name string) FieldSpec { return FieldSpec{Name: name, Type: FieldOptNode} }
func nodes(name string) FieldSpec { return FieldSpec{Name: name, Type: FieldNodes} }
func boolean(name string) FieldSpec { return FieldSpec{Name: name, Type: FieldBool} }
func optBool(name string) FieldSpec { return FieldSpec{Name: name, Type: FieldOptBool} }
func str(name string) FieldSpec { return FieldSpec{Name: name, Type: FieldString} }
func optStr(name string) FieldSpec { return FieldSpec{Name: name, Type: FieldOptString} }
func enum(name string, values []string) FieldSpec {
	return FieldSpec{Name: name, Type: FieldEnum, Enum: values}
}

var functionFields = []FieldSpec{
	optNode("id"),
	nodes("params"),
	node("body"),
	optBool("generator"),
	optBool("async"),
}

// schema lists, per kind, the fields CheckShape asserts. Node-typed fields
// are only checked for presence here; the traversal narrows the allowed
// child kinds per position.
var schema = [KindCount][]FieldSpec{
	Program: {nodes("body"), {Name: "sourceType", Type: FieldOptEnum, Enum: SourceTypes}},

	ExpressionStatement: {node("expression"), optStr("directive")},
	BlockStatement:      {nodes("body")},
	StaticBlock:         {nodes("body")},
	EmptyStatement:      nil,
	DebuggerStatement:   nil,
	WithStatement:       {node("object"), node("body")},
	ReturnStatement:     {optNode("argument")},
	LabeledStatement:    {node("label"), node("body")},
	BreakStatement:      {optNode("label")},
	ContinueStatement:   {optNode("label")},
	IfStatement:         {node("test"), node("consequent"), optNode("alternate")},
	SwitchStatement:     {node("discriminant"), nodes("cases")},
	SwitchCase:          {optNode("test"), nodes("consequent")},
	ThrowStatement:      {node("argument")},
	TryStatement:        {node("block"), optNode("handler"), optNode("finalizer")},
	CatchClause:         {optNode("param"), node("body")},
	WhileStatement:      {node("test"), node("body")},
	DoWhileStatement:    {node("body"), node("test")},
	ForStatement:        {optNode("init"), optNode("test"), optNode("update"), node("body")},
	ForInStatement:      {node("left"), node("right"), node("body")},
	ForOfStatement:      {node("left"), node("right"), node("body"), optBool("await")},

	FunctionDeclaration: functionFields,
	VariableDeclaration: {nodes("declarations"), enum("kind", VariableKinds)},
	VariableDeclarator:  {node("id"), optNode("init")},
	ClassDeclaration:    {optNode("id"), optNode("superClass"), node("body")},

	Identifier:        {str("name")},
	PrivateIdentifier: {str("name")},
	Literal: {
		{Name: "value", Type: FieldLiteral},
		optStr("raw"),
		optStr("bigint"),
		{Name: "regex", Type: FieldOptObject},
	},
	ThisExpression:           nil,
	ArrayExpression:          {{Name: "elements", Type: FieldNodesHoles}},
	ObjectExpression:         {nodes("properties")},
	Property:                 {node("key"), node("value"), enum("kind", PropertyKinds), optBool("method"), optBool("shorthand"), optBool("computed")},
	FunctionExpression:       functionFields,
	ArrowFunctionExpression:  append([]FieldSpec{optBool("expression")}, functionFields...),
	UnaryExpression:          {enum("operator", UnaryOperators), optBool("prefix"), node("argument")},
	UpdateExpression:         {enum("operator", UpdateOperators), boolean("prefix"), node("argument")},
	BinaryExpression:         {enum("operator", BinaryOperators), node("left"), node("right")},
	AssignmentExpression:     {enum("operator", AssignmentOperators), node("left"), node("right")},
	LogicalExpression:        {enum("operator", LogicalOperators), node("left"), node("right")},
	MemberExpression:         {node("object"), node("property"), boolean("computed"), optBool("optional")},
	ConditionalExpression:    {node("test"), node("consequent"), node("alternate")},
	CallExpression:           {node("callee"), nodes("arguments"), optBool("optional")},
	NewExpression:            {node("callee"), nodes("arguments")},
	SequenceExpression:       {nodes("expressions")},
	YieldExpression:          {optNode("argument"), optBool("delegate")},
	AwaitExpression:          {node("argument")},
	TemplateLiteral:          {nodes("quasis"), nodes("expressions")},
	TaggedTemplateExpression: {node("tag"), node("quasi")},
	TemplateElement: {
		optBool("tail"),
		{Name: "value", Type: FieldObject, Shape: []FieldSpec{
			{Name: "cooked", Type: FieldStringOrNull},
			str("raw"),
		}},
	},
	ClassExpression:    {optNode("id"), optNode("superClass"), node("body")},
	ClassBody:          {nodes("body")},
	MethodDefinition:   {node("key"), node("value"), enum("kind", MethodKinds), optBool("computed"), optBool("static")},
	PropertyDefinition: {node("key"), optNode("value"), optBool("computed"), optBool("static")},
	MetaProperty:       {node("meta"), node("property")},
	Super:              nil,
	SpreadElement:      {node("argument")},
	ChainExpression:    {node("expression")},
	ImportExpression:   {node("source")},

	ObjectPattern:     {nodes("properties")},
	ArrayPattern:      {{Name: "elements", Type: FieldNodesHoles}},
	RestElement:       {node("argument")},
	AssignmentPattern: {node("left"), node("right")},

	ImportDeclaration:        {nodes("specifiers"), node("source")},
	ImportSpecifier:          {node("imported"), node("local")},
	ImportDefaultSpecifier:   {node("local")},
	ImportNamespaceSpecifier: {node("local")},
	ExportNamedDeclaration:   {optNode("declaration"), nodes("specifiers"), optNode("source")},
	ExportSpecifier:          {node("local"), node("exported")},
	ExportDefaultDeclaration: {node("declaration")},
	ExportAllDeclaration:     {optNode("exported"), node("source")},
}

// Schema returns the field specification CheckShape uses for k.
func Schema(k Kind) []FieldSpec {
	if k >= KindCount {
		return nil
	}
	return schema[k]
}
