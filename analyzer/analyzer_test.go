package analyzer

import (
	"strings"
	"testing"

	"github.com/iplang/iplanalyze/parser"
)

func analyze(t *testing.T, src string) Result {
	t.Helper()
	u, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return New().Analyze(u)
}

func TestS1DuplicateFunction(t *testing.T) {
	res := analyze(t, "fn f(){} fn f(){}")
	if !res.HasErrors {
		t.Fatalf("expected errors for duplicate function")
	}
	if !strings.Contains(res.HTML, "Function already defined") {
		t.Fatalf("HTML missing duplicate-function error: %s", res.HTML)
	}
}

func TestS2ReturnTypeMismatch(t *testing.T) {
	res := analyze(t, "fn g() -> int { return 1.0; }")
	if !res.HasErrors {
		t.Fatalf("expected errors for return type mismatch")
	}
	if !strings.Contains(res.HTML, "Mismatched types in return statement") {
		t.Fatalf("HTML missing return-mismatch error: %s", res.HTML)
	}
}

func TestS3IndexAssignmentHappyPath(t *testing.T) {
	res := analyze(t, "fn h(){ let a: array<int, 3> = {1,2,3}; a[0] = 9; }")
	if res.HasErrors {
		t.Fatalf("unexpected errors: %s", res.HTML)
	}
	if strings.Contains(res.HTML, `class="error"`) {
		t.Fatalf("listing should be clean: %s", res.HTML)
	}
}

func TestS4WhileWithDeadCode(t *testing.T) {
	res := analyze(t, "fn w(){ while(true){ return; write(1); } }")
	if res.HasErrors {
		t.Fatalf("dead code alone is not a semantic error: %s", res.HTML)
	}
}

func TestS6ForOverArrayBindsElementType(t *testing.T) {
	res := analyze(t, "fn e(){ for(x in {1,2,3}){ let y: int = x + 0; } }")
	if res.HasErrors {
		t.Fatalf("unexpected errors: %s", res.HTML)
	}
	if strings.Contains(res.HTML, "Variable not in scope") {
		t.Fatalf("for-loop variable should be in scope: %s", res.HTML)
	}
}

func TestUndeclaredVariableStagesError(t *testing.T) {
	res := analyze(t, "fn f(){ write(missing); }")
	if !res.HasErrors {
		t.Fatalf("expected error for undeclared variable")
	}
	if !strings.Contains(res.HTML, "Variable not in scope") {
		t.Fatalf("HTML missing scope error: %s", res.HTML)
	}
}

func TestFirstErrorPerLineWins(t *testing.T) {
	// Both 'a' and 'b' are undeclared, but only one error should surface
	// on the line (property 3 / design note: first-error-per-line).
	res := analyze(t, "fn f(){ write(a + b); }")
	count := strings.Count(res.HTML, "Variable not in scope")
	if count != 1 {
		t.Fatalf("got %d error spans, want exactly 1 (first-wins)", count)
	}
}

func TestScopeDisciplineReturnsToOutermostState(t *testing.T) {
	// Property 2: after analysis the variable table holds exactly the
	// top-level variables.
	u, err := parser.Parse("let g: int = 1; fn f(){ let a: int = 2; let b: int = 3; }")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	an := New()
	an.Analyze(u)
	if an.vars.Len() != 1 {
		t.Fatalf("vars.Len() = %d, want 1 (only top-level 'g')", an.vars.Len())
	}
	if _, err := an.vars.Lookup("g"); err != nil {
		t.Fatalf("top-level variable g should remain declared: %v", err)
	}
}

func TestErrorGateLatchesAcrossConstructs(t *testing.T) {
	res := analyze(t, "fn f(){ let a: int = 1; } fn f(){ }")
	if !res.HasErrors {
		t.Fatalf("HasErrors should latch true once any construct errors")
	}
}

func TestMutualRecursionDoesNotTypecheck(t *testing.T) {
	// Functions register at definition time only (spec §3.5 / §9).
	res := analyze(t, "fn a(){ b(); } fn b(){ a(); }")
	if !res.HasErrors {
		t.Fatalf("expected Function not in scope for forward reference to b")
	}
	if !strings.Contains(res.HTML, "Function not in scope") {
		t.Fatalf("HTML missing forward-reference error: %s", res.HTML)
	}
}

func TestArithmeticOperandsMustMatch(t *testing.T) {
	res := analyze(t, `fn f(){ write(1 + "a"); }`)
	if !res.HasErrors {
		t.Fatalf("expected type error for int + string")
	}
	if !strings.Contains(res.HTML, "Type of operands for operator + must be the same") {
		t.Fatalf("HTML missing operator mismatch message: %s", res.HTML)
	}
}

func TestModuloRequiresInt(t *testing.T) {
	res := analyze(t, "fn f(){ write(1.0 % 2.0); }")
	if !res.HasErrors {
		t.Fatalf("expected type error for float %% float")
	}
	if !strings.Contains(res.HTML, "Type of operands for operator % must be int") {
		t.Fatalf("HTML missing modulo message: %s", res.HTML)
	}
}

func TestListPrependAndAppend(t *testing.T) {
	res := analyze(t, "fn f(){ let l: list<int> = 1 ^: [2, 3]; let m: list<int> = 4 $: l; write(m); }")
	if res.HasErrors {
		t.Fatalf("unexpected errors: %s", res.HTML)
	}
}

func TestHeadTailOnNonListStagesError(t *testing.T) {
	res := analyze(t, "fn f(){ write(head(1)); }")
	if !strings.Contains(res.HTML, "head()/tail() operations can only be used on lists") {
		t.Fatalf("HTML missing head/tail message: %s", res.HTML)
	}
}

func TestHTMLEscapesTypeSyntax(t *testing.T) {
	res := analyze(t, "fn f() -> int { return 1; }")
	if !strings.Contains(res.HTML, "-&gt;") {
		t.Fatalf("return arrow should be HTML-escaped: %s", res.HTML)
	}
}
