// token.go
package noxy

import "fmt"

// Kind discriminates a lexical token. The lexer never produces anything
// outside this closed set.
type Kind int

const (
	EOF Kind = iota
	IDENT
	INT
	FLOAT
	STRING
	FSTRING

	// keywords
	LET
	GLOBAL
	FUNC
	STRUCT
	IF
	THEN
	ELSE
	END
	WHILE
	DO
	RETURN
	BREAK
	KW_INT
	KW_FLOAT
	KW_STRING
	KW_STR
	KW_BOOL
	KW_VOID
	REF
	TRUE
	FALSE
	NULL
	USE
	SELECT
	ZEROS
	AS

	// operators
	EQ     // ==
	NEQ    // !=
	LE     // <=
	GE     // >=
	ARROW  // ->
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /
	PCT    // %
	LT     // <
	GT     // >
	ASSIGN // =
	BANG   // !
	AMP    // &
	PIPE   // |
	LPAREN
	RPAREN
	LBRACK
	RBRACK
	LBRACE
	RBRACE
	COMMA
	COLON
	DOT
)

var keywords = map[string]Kind{
	"let": LET, "global": GLOBAL, "func": FUNC, "struct": STRUCT,
	"if": IF, "then": THEN, "else": ELSE, "end": END,
	"while": WHILE, "do": DO, "return": RETURN, "break": BREAK,
	"int": KW_INT, "float": KW_FLOAT, "string": KW_STRING, "str": KW_STR,
	"bool": KW_BOOL, "void": KW_VOID, "ref": REF,
	"true": TRUE, "false": FALSE, "null": NULL,
	"use": USE, "select": SELECT, "zeros": ZEROS, "as": AS,
}

var kindNames = map[Kind]string{
	EOF: "EOF", IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT",
	STRING: "STRING", FSTRING: "FSTRING",
	LET: "let", GLOBAL: "global", FUNC: "func", STRUCT: "struct",
	IF: "if", THEN: "then", ELSE: "else", END: "end",
	WHILE: "while", DO: "do", RETURN: "return", BREAK: "break",
	KW_INT: "int", KW_FLOAT: "float", KW_STRING: "string", KW_STR: "str",
	KW_BOOL: "bool", KW_VOID: "void", REF: "ref",
	TRUE: "true", FALSE: "false", NULL: "null",
	USE: "use", SELECT: "select", ZEROS: "zeros", AS: "as",
	EQ: "==", NEQ: "!=", LE: "<=", GE: ">=", ARROW: "->",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PCT: "%",
	LT: "<", GT: ">", ASSIGN: "=", BANG: "!", AMP: "&", PIPE: "|",
	LPAREN: "(", RPAREN: ")", LBRACK: "[", RBRACK: "]",
	LBRACE: "{", RBRACE: "}", COMMA: ",", COLON: ":", DOT: ".",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Pos is a source span: (file, line, column). Lengths aren't tracked
// separately; callers that need a range keep a start and end Pos.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// FStringPart is one alternating chunk of a pre-split f-string: either a
// literal run of text, or a hole whose expression source (and optional
// format spec) is carried for the parser to re-lex and re-parse.
type FStringPart struct {
	Literal bool
	Text    string // when Literal
	Expr    string // raw expression source, when !Literal
	Spec    string // raw format spec after ':', may be empty
	Pos     Pos    // position of the hole's '{'
}

// Token is the lexer's sole output unit.
type Token struct {
	Kind    Kind
	Lexeme  string
	Pos     Pos
	IVal    int64         // valid when Kind == INT
	FVal    float64       // valid when Kind == FLOAT
	SVal    string        // valid when Kind == STRING (decoded)
	FParts  []FStringPart // valid when Kind == FSTRING
}
