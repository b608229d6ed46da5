// parser_test.go
package noxy

import "testing"

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := ParseFile("t.nx", src)
	if err != nil {
		t.Fatalf("ParseFile(%q): %v", src, err)
	}
	return prog
}

func TestParser_LetAndAssign(t *testing.T) {
	prog := mustParse(t, `let x: int = 1
x = x + 1`)
	if len(prog.Stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Stmts))
	}
	let, ok := prog.Stmts[0].(*LetStmt)
	if !ok || let.Name != "x" {
		t.Fatalf("stmt 0 = %#v, want LetStmt x", prog.Stmts[0])
	}
	if _, ok := let.Type.(*NamedTypeExpr); !ok {
		t.Fatalf("let type = %#v, want NamedTypeExpr", let.Type)
	}
	asn, ok := prog.Stmts[1].(*AssignStmt)
	if !ok {
		t.Fatalf("stmt 1 = %#v, want AssignStmt", prog.Stmts[1])
	}
	if _, ok := asn.Value.(*BinaryExpr); !ok {
		t.Fatalf("assign value = %#v, want BinaryExpr", asn.Value)
	}
}

func TestParser_FuncDecl(t *testing.T) {
	prog := mustParse(t, `func add(a: int, b: int) -> int
  return a + b
end`)
	fd, ok := prog.Stmts[0].(*FuncDecl)
	if !ok {
		t.Fatalf("stmt 0 = %#v, want FuncDecl", prog.Stmts[0])
	}
	if fd.Name != "add" || len(fd.Params) != 2 {
		t.Fatalf("got func %q with %d params, want add/2", fd.Name, len(fd.Params))
	}
	if _, ok := fd.ReturnType.(*NamedTypeExpr); !ok {
		t.Fatalf("return type = %#v, want NamedTypeExpr", fd.ReturnType)
	}
	if len(fd.Body) != 1 {
		t.Fatalf("body has %d statements, want 1", len(fd.Body))
	}
	if _, ok := fd.Body[0].(*ReturnStmt); !ok {
		t.Fatalf("body[0] = %#v, want ReturnStmt", fd.Body[0])
	}
}

func TestParser_StructDecl(t *testing.T) {
	prog := mustParse(t, `struct Node
  value: int,
  next: ref Node
end`)
	sd, ok := prog.Stmts[0].(*StructDecl)
	if !ok || sd.Name != "Node" {
		t.Fatalf("stmt 0 = %#v, want StructDecl Node", prog.Stmts[0])
	}
	if len(sd.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(sd.Fields))
	}
	if _, ok := sd.Fields[1].Type.(*RefTypeExpr); !ok {
		t.Fatalf("field 1 type = %#v, want RefTypeExpr", sd.Fields[1].Type)
	}
}

func TestParser_IfElse(t *testing.T) {
	prog := mustParse(t, `if x < 0 then
  x = 0
else
  x = 1
end`)
	is, ok := prog.Stmts[0].(*IfStmt)
	if !ok {
		t.Fatalf("stmt 0 = %#v, want IfStmt", prog.Stmts[0])
	}
	if len(is.Then) != 1 || len(is.Else) != 1 {
		t.Fatalf("then=%d else=%d, want 1/1", len(is.Then), len(is.Else))
	}
}

func TestParser_While(t *testing.T) {
	prog := mustParse(t, `while true do
  break
end`)
	ws, ok := prog.Stmts[0].(*WhileStmt)
	if !ok {
		t.Fatalf("stmt 0 = %#v, want WhileStmt", prog.Stmts[0])
	}
	if _, ok := ws.Cond.(*BoolLit); !ok {
		t.Fatalf("cond = %#v, want BoolLit", ws.Cond)
	}
	if _, ok := ws.Body[0].(*BreakStmt); !ok {
		t.Fatalf("body[0] = %#v, want BreakStmt", ws.Body[0])
	}
}

func TestParser_ComparisonIsNonAssociative(t *testing.T) {
	_, err := ParseFile("t.nx", `let x: bool = a < b < c`)
	if err == nil {
		t.Fatal("expected a ParseError for chained comparison")
	}
}

func TestParser_PrecedenceMulBeforeAdd(t *testing.T) {
	prog := mustParse(t, `let x: int = 1 + 2 * 3`)
	let := prog.Stmts[0].(*LetStmt)
	add, ok := let.Init.(*BinaryExpr)
	if !ok || add.Op != PLUS {
		t.Fatalf("init = %#v, want top-level PLUS", let.Init)
	}
	if _, ok := add.R.(*BinaryExpr); !ok {
		t.Fatalf("rhs = %#v, want nested multiplicative BinaryExpr", add.R)
	}
}

func TestParser_CallFieldIndexChain(t *testing.T) {
	prog := mustParse(t, `let x: int = a.b[0](1, 2).c`)
	let := prog.Stmts[0].(*LetStmt)
	fa, ok := let.Init.(*FieldAccess)
	if !ok || fa.Field != "c" {
		t.Fatalf("init = %#v, want outer FieldAccess .c", let.Init)
	}
	call, ok := fa.X.(*CallExpr)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("fa.X = %#v, want CallExpr with 2 args", fa.X)
	}
	idx, ok := call.Callee.(*IndexExpr)
	if !ok {
		t.Fatalf("call.Callee = %#v, want IndexExpr", call.Callee)
	}
	if _, ok := idx.X.(*FieldAccess); !ok {
		t.Fatalf("idx.X = %#v, want FieldAccess a.b", idx.X)
	}
}

func TestParser_RefExprAndZeros(t *testing.T) {
	prog := mustParse(t, `let n: ref Node = ref other
let arr: int[3] = zeros(3)`)
	let0 := prog.Stmts[0].(*LetStmt)
	if _, ok := let0.Init.(*RefExpr); !ok {
		t.Fatalf("init = %#v, want RefExpr", let0.Init)
	}
	let1 := prog.Stmts[1].(*LetStmt)
	if _, ok := let1.Init.(*ZerosExpr); !ok {
		t.Fatalf("init = %#v, want ZerosExpr", let1.Init)
	}
}

func TestParser_ArrayAndMapTypes(t *testing.T) {
	prog := mustParse(t, `let a: int[] = []
let b: map[string, int] = zeros(0)`)
	let0 := prog.Stmts[0].(*LetStmt)
	if _, ok := let0.Type.(*DynArrayTypeExpr); !ok {
		t.Fatalf("type = %#v, want DynArrayTypeExpr", let0.Type)
	}
	let1 := prog.Stmts[1].(*LetStmt)
	if _, ok := let1.Type.(*MapTypeExpr); !ok {
		t.Fatalf("type = %#v, want MapTypeExpr", let1.Type)
	}
}

func TestParser_UseVariants(t *testing.T) {
	cases := []struct {
		src  string
		mode ImportMode
	}{
		{"use a.b", ImportNamespace},
		{"use a.b as c", ImportAlias},
		{"use a.b select c, d", ImportSelect},
		{"use a.b select *", ImportSelectAll},
	}
	for _, c := range cases {
		prog := mustParse(t, c.src)
		us, ok := prog.Stmts[0].(*UseStmt)
		if !ok {
			t.Fatalf("%q: stmt 0 = %#v, want UseStmt", c.src, prog.Stmts[0])
		}
		if us.Mode != c.mode {
			t.Errorf("%q: mode = %v, want %v", c.src, us.Mode, c.mode)
		}
		if len(us.Path) != 2 || us.Path[0] != "a" || us.Path[1] != "b" {
			t.Errorf("%q: path = %v, want [a b]", c.src, us.Path)
		}
	}
}

func TestParser_FString(t *testing.T) {
	prog := mustParse(t, `let s: string = f"n={n:03d}"`)
	_ = prog
}

func TestParser_BareReturnVsValue(t *testing.T) {
	prog := mustParse(t, `func f() -> void
  return
end
func g() -> int
  return 1
end`)
	r0 := prog.Stmts[0].(*FuncDecl).Body[0].(*ReturnStmt)
	if r0.Value != nil {
		t.Errorf("bare return should have nil Value, got %#v", r0.Value)
	}
	r1 := prog.Stmts[1].(*FuncDecl).Body[0].(*ReturnStmt)
	if r1.Value == nil {
		t.Error("return 1 should have a non-nil Value")
	}
}

func TestParser_UnterminatedBlockIsParseError(t *testing.T) {
	_, err := ParseFile("t.nx", `func f() -> int
  return 1`)
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("got %T, want *ParseError", err)
	}
	if pe.Found != "end of input" {
		t.Errorf("Found = %q, want %q", pe.Found, "end of input")
	}
}
