package parser

import (
	"testing"

	"github.com/iplang/iplanalyze/ast"
)

func mustParse(t *testing.T, src string) *ast.Unit {
	t.Helper()
	u, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", src, err)
	}
	return u
}

func TestParseEmptyFuncDefn(t *testing.T) {
	u := mustParse(t, "fn f() { }")
	if len(u.Constructs) != 1 {
		t.Fatalf("got %d constructs, want 1", len(u.Constructs))
	}
	fd, ok := u.Constructs[0].(*ast.FuncDefn)
	if !ok || fd.Name != "f" || len(fd.Body) != 0 {
		t.Fatalf("got %#v", u.Constructs[0])
	}
}

func TestParseDuplicateFunctionsStillParse(t *testing.T) {
	// S1: duplicate function names are a semantic error (analyzer's job),
	// not a parse error.
	mustParse(t, "fn f(){} fn f(){}")
}

func TestParseReturnTypeMismatchStillParses(t *testing.T) {
	// S2: a type mismatch is semantic, the parser only cares about shape.
	mustParse(t, "fn g() -> int { return 1.0; }")
}

func TestParseIndexAssignment(t *testing.T) {
	u := mustParse(t, "fn h(){ let a: array<int, 3> = {1,2,3}; a[0] = 9; }")
	fd := u.Constructs[0].(*ast.FuncDefn)
	if len(fd.Body) != 2 {
		t.Fatalf("got %d instructions, want 2", len(fd.Body))
	}
	assign, ok := fd.Body[1].(*ast.Assign)
	if !ok || assign.Name != "a" || assign.Index == nil {
		t.Fatalf("got %#v", fd.Body[1])
	}
}

func TestParseTupleRequiresTwoElementsInType(t *testing.T) {
	if _, err := Parse(`let t: tuple<int,string> = |1,"a"|;`); err != nil {
		t.Fatalf("valid tuple should parse: %v", err)
	}
	if _, err := Parse(`let t: tuple<int,string> = |1|;`); err == nil {
		t.Fatalf("tuple literal with 1 element should fail to parse")
	}
	if _, err := Parse(`let t: tuple<int> = |1, 2|;`); err == nil {
		t.Fatalf("tuple type with 1 element type should fail to parse")
	}
}

func TestParseForOverArrayLiteral(t *testing.T) {
	u := mustParse(t, "fn e(){ for(x in {1,2,3}){ let y: int = x + 0; } }")
	fd := u.Constructs[0].(*ast.FuncDefn)
	forStmt, ok := fd.Body[0].(*ast.For)
	if !ok || forStmt.Var != "x" {
		t.Fatalf("got %#v", fd.Body[0])
	}
}

func TestParseWriteRequiresArgument(t *testing.T) {
	if _, err := Parse("fn f(){ write(1); }"); err != nil {
		t.Fatalf("write(1) should parse: %v", err)
	}
	if _, err := Parse("fn f(){ write(); }"); err == nil {
		t.Fatalf("write() with no arguments should fail to parse")
	}
}

func TestParseEmptyArrayLiteralRejected(t *testing.T) {
	if _, err := Parse("fn f(){ let a: array<int, 0> = {}; }"); err == nil {
		t.Fatalf("empty array literal {} should be rejected")
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	u := mustParse(t, "let x: bool = a || b && c == d ^: e + f * g ^ h;")
	vd := u.Constructs[0].(*ast.VarDefn)
	or, ok := vd.Init.(*ast.BinaryExpr)
	if !ok || or.Op != "||" {
		t.Fatalf("top-level operator should be ||, got %#v", vd.Init)
	}
}

func TestParseRightAssociativeCaret(t *testing.T) {
	u := mustParse(t, "let x: int = a ^ b ^ c;")
	vd := u.Constructs[0].(*ast.VarDefn)
	top, ok := vd.Init.(*ast.BinaryExpr)
	if !ok || top.Op != "^" {
		t.Fatalf("got %#v", vd.Init)
	}
	// a ^ (b ^ c): rhs should itself be a ^ binary expr.
	if _, ok := top.Rhs.(*ast.BinaryExpr); !ok {
		t.Fatalf("caret should be right-associative, rhs = %#v", top.Rhs)
	}
	if _, ok := top.Lhs.(*ast.VarDeref); !ok {
		t.Fatalf("lhs should be plain var deref, got %#v", top.Lhs)
	}
}

func TestParseNegativeLiteralVsBinaryMinus(t *testing.T) {
	u := mustParse(t, "let x: int = 5 - 3;")
	vd := u.Constructs[0].(*ast.VarDefn)
	bin, ok := vd.Init.(*ast.BinaryExpr)
	if !ok || bin.Op != "-" {
		t.Fatalf("expected binary minus, got %#v", vd.Init)
	}

	u2 := mustParse(t, "let y: int = -5;")
	vd2 := u2.Constructs[0].(*ast.VarDefn)
	lit, ok := vd2.Init.(*ast.IntLit)
	if !ok || lit.Text != "-5" {
		t.Fatalf("expected negative int literal, got %#v", vd2.Init)
	}
}

func TestParseDeadCodeAfterReturn(t *testing.T) {
	// S4
	u := mustParse(t, "fn w(){ while(true){ return; write(1); } }")
	fd := u.Constructs[0].(*ast.FuncDefn)
	while := fd.Body[0].(*ast.While)
	if len(while.Body) != 2 {
		t.Fatalf("got %d body instructions, want 2", len(while.Body))
	}
	if _, ok := while.Body[0].(*ast.Return); !ok {
		t.Fatalf("first body instruction should be return")
	}
	if _, ok := while.Body[1].(*ast.Write); !ok {
		t.Fatalf("second body instruction should be write")
	}
}

func TestParseSameSourceTwiceIsStructurallyEqual(t *testing.T) {
	src := `fn add(x: int, y: int) -> int {
		return x + y;
	}
	let total: int = add(1, 2);`
	u1 := mustParse(t, src)
	u2 := mustParse(t, src)
	if !ast.Equal(u1, u2) {
		t.Fatalf("parsing the same source twice should yield structurally equal ASTs")
	}
}
