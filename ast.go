// ast.go
//
// The AST is a closed tagged union: every node variant is a distinct Go
// struct implementing a small marker interface. Traversal sites (analyzer,
// evaluator) switch exhaustively over the concrete type.
package noxy

// TypeExpr is the parsed surface syntax for a type annotation, resolved to
// a Type (types.go) by the analyzer.
type TypeExpr interface{ typeExprNode() }

type NamedTypeExpr struct {
	Pos  Pos
	Name string // "int", "float", "string", "bool", "void", or a struct name
}

type FixedArrayTypeExpr struct {
	Pos  Pos
	Elem TypeExpr
	N    int64
}

type DynArrayTypeExpr struct {
	Pos  Pos
	Elem TypeExpr
}

type MapTypeExpr struct {
	Pos        Pos
	Key, Value TypeExpr
}

type RefTypeExpr struct {
	Pos   Pos
	Inner TypeExpr
}

func (*NamedTypeExpr) typeExprNode()     {}
func (*FixedArrayTypeExpr) typeExprNode() {}
func (*DynArrayTypeExpr) typeExprNode()   {}
func (*MapTypeExpr) typeExprNode()        {}
func (*RefTypeExpr) typeExprNode()        {}

// Expr is any evaluable syntax node.
type Expr interface{ exprNode() }

type IntLit struct {
	Pos Pos
	Val int64
}
type FloatLit struct {
	Pos Pos
	Val float64
}
type StringLit struct {
	Pos Pos
	Val string
}
type BoolLit struct {
	Pos Pos
	Val bool
}
type NullLit struct{ Pos Pos }

// FStringChunk is one piece of an f-string's pre-split body, in source
// order: either a literal run of text, or a hole with a parsed expression
// and an optional format spec.
type FStringChunk struct {
	Literal bool
	Text    string // when Literal
	Expr    Expr   // when !Literal
	Spec    string // when !Literal
	Pos     Pos
}

type FStringExpr struct {
	Pos    Pos
	Chunks []FStringChunk
}

type Ident struct {
	Pos  Pos
	Name string
}

type ArrayLit struct {
	Pos  Pos
	Elems []Expr
}

type ZerosExpr struct {
	Pos Pos
	N   Expr
	// ElemType is filled in by the analyzer from the expression's context
	// (the declared type of the let/param/field/return slot it initializes);
	// zeros(n) has no elements of its own to infer a type from.
	// Zero value (Int()) until annotated.
	ElemType Type
	// MapCtx is set when zeros(n) initializes a map-typed slot: spec.md has
	// no map literal syntax, so zeros(0) doubles as the empty-map
	// constructor in that context; n is otherwise ignored (a map has no
	// fixed size to pre-size from).
	MapCtx   bool
	KeyType  Type
	ValueType Type
}

type RefExpr struct {
	Pos    Pos
	Target Expr // must be a struct-typed l-value (Ident or FieldAccess or Index)
}

type UnaryExpr struct {
	Pos Pos
	Op  Kind // MINUS or BANG
	X   Expr
}

type BinaryExpr struct {
	Pos    Pos
	Op     Kind
	L, R   Expr
}

type FieldAccess struct {
	Pos   Pos
	X     Expr
	Field string
}

type IndexExpr struct {
	Pos   Pos
	X     Expr
	Index Expr
}

// CallKind is resolved by the analyzer and stamped onto CallExpr.
type CallKind int

const (
	CallUnresolved CallKind = iota
	CallFunction
	CallStructCtor
	CallBuiltin
	CallModuleFunction
)

type CallExpr struct {
	Pos    Pos
	Callee Expr // Ident or FieldAccess (module.fn)
	Args   []Expr

	ResolvedKind CallKind
	ResolvedName string // function/struct/builtin name
}

func (*IntLit) exprNode()      {}
func (*FloatLit) exprNode()    {}
func (*StringLit) exprNode()   {}
func (*BoolLit) exprNode()     {}
func (*NullLit) exprNode()     {}
func (*FStringExpr) exprNode() {}
func (*Ident) exprNode()       {}
func (*ArrayLit) exprNode()    {}
func (*ZerosExpr) exprNode()   {}
func (*RefExpr) exprNode()     {}
func (*UnaryExpr) exprNode()   {}
func (*BinaryExpr) exprNode()  {}
func (*FieldAccess) exprNode() {}
func (*IndexExpr) exprNode()   {}
func (*CallExpr) exprNode()    {}

// Stmt is any executable syntax node.
type Stmt interface{ stmtNode() }

type LetStmt struct {
	Pos      Pos
	Name     string
	Type     TypeExpr
	Init     Expr
}

type GlobalStmt struct {
	Pos  Pos
	Name string
	Type TypeExpr
	Init Expr
}

type AssignStmt struct {
	Pos   Pos
	Target Expr // Ident, FieldAccess, or IndexExpr
	Value Expr
}

type ExprStmt struct {
	Pos Pos
	X   Expr
}

type IfStmt struct {
	Pos       Pos
	Cond      Expr
	Then      []Stmt
	Else      []Stmt // nil if no else branch
}

type WhileStmt struct {
	Pos  Pos
	Cond Expr
	Body []Stmt
}

type ReturnStmt struct {
	Pos   Pos
	Value Expr // nil for bare `return`
}

type BreakStmt struct{ Pos Pos }

type Param struct {
	Name string
	Type TypeExpr
}

type FuncDecl struct {
	Pos        Pos
	Name       string
	Params     []Param
	ReturnType TypeExpr // nil means Void
	Body       []Stmt
}

type FieldDecl struct {
	Name string
	Type TypeExpr
}

type StructDecl struct {
	Pos    Pos
	Name   string
	Fields []FieldDecl
}

// ImportMode distinguishes the four `use` syntax variants.
type ImportMode int

const (
	ImportNamespace ImportMode = iota // use path
	ImportAlias                      // use path as alias
	ImportSelect                     // use path select a, b
	ImportSelectAll                  // use path select *
)

type UseStmt struct {
	Pos   Pos
	Path  []string // dot-separated segments
	Mode  ImportMode
	Alias string   // ImportAlias
	Names []string // ImportSelect
}

func (*LetStmt) stmtNode()    {}
func (*GlobalStmt) stmtNode() {}
func (*AssignStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}
func (*BreakStmt) stmtNode()  {}
func (*FuncDecl) stmtNode()   {}
func (*StructDecl) stmtNode() {}
func (*UseStmt) stmtNode()    {}

// Program is a whole parsed source file: an ordered list of top-level
// statements. Any statement may appear at top level, `let` included; the
// analyzer rejects only `return` and `break` there.
type Program struct {
	File  string
	Stmts []Stmt
}
