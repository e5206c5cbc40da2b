package typesys

import "testing"

func TestEqualsWildcardBothSides(t *testing.T) {
	candidates := []Type{
		MakePrimitive(Int),
		MakePrimitive(Bool),
		MakeList(MakePrimitive(String)),
		MakeArray(MakePrimitive(Float), 3),
		MakeTuple(MakePrimitive(Int), MakePrimitive(String)),
	}
	for _, c := range candidates {
		if !Equals(AnyType(), c) {
			t.Errorf("Equals(Any, %v) = false, want true", c)
		}
		if !Equals(c, AnyType()) {
			t.Errorf("Equals(%v, Any) = false, want true", c)
		}
	}
}

func TestEqualsReflexiveAndSymmetric(t *testing.T) {
	pairs := []Type{
		MakePrimitive(Int),
		MakeList(MakePrimitive(Int)),
		MakeArray(MakePrimitive(Bool), 2),
		MakeTuple(MakePrimitive(Int), MakeList(MakePrimitive(String))),
	}
	for _, a := range pairs {
		if !Equals(a, a) {
			t.Errorf("Equals(%v, %v) = false, want true (reflexive)", a, a)
		}
		for _, b := range pairs {
			if Equals(a, b) != Equals(b, a) {
				t.Errorf("Equals(%v, %v) != Equals(%v, %v), want symmetric", a, b, b, a)
			}
		}
	}
}

func TestEqualsArraySizeMatters(t *testing.T) {
	a := MakeArray(MakePrimitive(Int), 3)
	b := MakeArray(MakePrimitive(Int), 4)
	if Equals(a, b) {
		t.Errorf("arrays of different size should not be equal")
	}
}

func TestEqualsTupleArityMatters(t *testing.T) {
	a := MakeTuple(MakePrimitive(Int), MakePrimitive(String))
	b := MakeTuple(MakePrimitive(Int), MakePrimitive(String), MakePrimitive(Bool))
	if Equals(a, b) {
		t.Errorf("tuples of different arity should not be equal")
	}
}

func TestIsParam(t *testing.T) {
	l := MakeList(MakePrimitive(Int))
	if !IsParam(l, MakePrimitive(Int)) {
		t.Errorf("IsParam(List(Int), Int) = false, want true")
	}
	if IsParam(l, MakePrimitive(String)) {
		t.Errorf("IsParam(List(Int), String) = true, want false")
	}
}

func TestTypeStringRendersComposite(t *testing.T) {
	got := MakeTuple(MakePrimitive(Int), MakeList(MakePrimitive(String))).String()
	want := "tuple<int, list<string>>"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
