package symtab

import (
	"testing"

	"github.com/iplang/iplanalyze/typesys"
)

func TestDeclareAndLookup(t *testing.T) {
	vt := NewVarTable()
	if err := vt.Declare("x", typesys.MakePrimitive(typesys.Int)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	typ, err := vt.Lookup("x")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !typesys.Equals(typ, typesys.MakePrimitive(typesys.Int)) {
		t.Errorf("Lookup(x) = %v, want int", typ)
	}
}

func TestDeclareDuplicateFails(t *testing.T) {
	vt := NewVarTable()
	vt.Declare("x", typesys.MakePrimitive(typesys.Int))
	if err := vt.Declare("x", typesys.MakePrimitive(typesys.Bool)); err != ErrAlreadyDefined {
		t.Errorf("Declare duplicate = %v, want ErrAlreadyDefined", err)
	}
}

func TestLookupMissingFails(t *testing.T) {
	vt := NewVarTable()
	if _, err := vt.Lookup("ghost"); err != ErrNotFound {
		t.Errorf("Lookup(ghost) = %v, want ErrNotFound", err)
	}
}

func TestScopeDisciplinePopsExactlyPushed(t *testing.T) {
	vt := NewVarTable()
	vt.Declare("top", typesys.MakePrimitive(typesys.Int))

	vt.EnterScope()
	vt.Declare("a", typesys.MakePrimitive(typesys.Int))
	vt.Declare("b", typesys.MakePrimitive(typesys.Bool))
	if vt.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", vt.Len())
	}
	vt.LeaveScope()

	if vt.Len() != 1 {
		t.Fatalf("Len() after LeaveScope = %d, want 1 (only top-level)", vt.Len())
	}
	if _, err := vt.Lookup("a"); err != ErrNotFound {
		t.Errorf("a should be out of scope after LeaveScope")
	}
	if _, err := vt.Lookup("top"); err != nil {
		t.Errorf("top should still be in scope: %v", err)
	}
}

func TestNestedScopeRedeclarationFails(t *testing.T) {
	vt := NewVarTable()
	vt.Declare("x", typesys.MakePrimitive(typesys.Int))
	vt.EnterScope()
	// Shadowing isn't permitted by Declare directly (AlreadyDefined checks
	// all open scopes), matching spec §4.2: "declare fails if name exists
	// in any currently-open scope".
	if err := vt.Declare("x", typesys.MakePrimitive(typesys.Bool)); err != ErrAlreadyDefined {
		t.Errorf("Declare(x) in nested scope = %v, want ErrAlreadyDefined", err)
	}
	vt.LeaveScope()
}

func TestFuncTableDeclareAndLookup(t *testing.T) {
	ft := NewFuncTable()
	params := []typesys.Type{typesys.MakePrimitive(typesys.Int)}
	ret := typesys.MakePrimitive(typesys.Bool)
	if err := ft.DeclareFunction("f", params, ret); err != nil {
		t.Fatalf("DeclareFunction: %v", err)
	}
	sig, err := ft.LookupFunction("f")
	if err != nil {
		t.Fatalf("LookupFunction: %v", err)
	}
	if len(sig.Params) != 1 || !typesys.Equals(sig.Ret, ret) {
		t.Errorf("LookupFunction(f) = %+v, want matching signature", sig)
	}
}

func TestFuncTableDuplicateFails(t *testing.T) {
	ft := NewFuncTable()
	ft.DeclareFunction("f", nil, typesys.MakePrimitive(typesys.Void))
	if err := ft.DeclareFunction("f", nil, typesys.MakePrimitive(typesys.Void)); err != ErrAlreadyDefined {
		t.Errorf("redefine f = %v, want ErrAlreadyDefined", err)
	}
}
