package term_test

import (
	"testing"
	"time"

	"github.com/sesam/prologcoin/term"
)

func TestCellRoundTrip(t *testing.T) {
	h := term.NewHeap()
	i := h.NewVar()
	ref := h.Get(i)
	if ref.Tag() != term.REF {
		t.Fatalf("Get(%d).Tag() = %v, want REF", i, ref.Tag())
	}
	if ref.RefIndex() != i {
		t.Errorf("RefIndex() = %d, want %d", ref.RefIndex(), i)
	}

	c := term.NewInt(-42)
	if c.Tag() != term.INT {
		t.Fatalf("NewInt(-42).Tag() = %v, want INT", c.Tag())
	}
	if got := c.Int(); got != -42 {
		t.Errorf("NewInt(-42).Int() = %d, want -42", got)
	}
}

func TestIntern(t *testing.T) {
	h := term.NewHeap()
	id1 := h.Intern("foo", 2)
	id2 := h.Intern("foo", 2)
	if id1 != id2 {
		t.Errorf("Intern(foo,2) twice gave different ids: %d, %d", id1, id2)
	}
	id3 := h.Intern("foo", 1)
	if id3 == id1 {
		t.Errorf("Intern(foo,1) collided with Intern(foo,2): %d", id3)
	}
	name, arity := h.Name(id1)
	if name != "foo" || arity != 2 {
		t.Errorf("Name(%d) = (%q, %d), want (foo, 2)", id1, name, arity)
	}
}

func TestPushStructAndDeref(t *testing.T) {
	h := term.NewHeap()
	str, first := h.PushStruct("f", 2)
	if str.Tag() != term.STR {
		t.Fatalf("PushStruct Tag() = %v, want STR", str.Tag())
	}
	// Bind the first argument to an atom, leave the second unbound.
	a := h.InternAtom("a")
	h.Set(first, a)

	args := h.Args(str.StrIndex())
	if len(args) != 2 {
		t.Fatalf("len(Args) = %d, want 2", len(args))
	}
	got := h.Deref(args[0])
	if got != a {
		t.Errorf("Deref(args[0]) = %v, want %v", got, a)
	}
	if h.Deref(args[1]).Tag() != term.REF {
		t.Errorf("Deref(args[1]).Tag() = %v, want REF (still unbound)", h.Deref(args[1]).Tag())
	}
}

func TestDerefChain(t *testing.T) {
	h := term.NewHeap()
	x := h.NewVar()
	y := h.NewVar()
	// Bind x -> y -> 7.
	h.Set(x, term.NewRef(y))
	h.Set(y, term.NewInt(7))

	got := h.Deref(term.NewRef(x))
	if got.Tag() != term.INT || got.Int() != 7 {
		t.Errorf("Deref chain = %v, want INT(7)", got)
	}
}

func TestHeapStringRendersStructure(t *testing.T) {
	h := term.NewHeap()
	str, first := h.PushStruct("f", 2)
	h.Set(first, term.NewInt(1))
	h.Set(first+1, h.InternAtom("a"))

	if got, want := h.String(str), "f(1, a)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestHeapStringDetectsCycle(t *testing.T) {
	h := term.NewHeap()
	// Build X = f(X): bind a var's cell to a STR whose own argument is a
	// REF back to that same cell, as occurs-check-free unification would.
	x := h.NewVar()
	str, first := h.PushStruct("f", 1)
	h.Set(first, term.NewRef(x))
	h.Set(x, str)

	done := make(chan string, 1)
	go func() { done <- h.String(term.NewRef(x)) }()
	select {
	case got := <-done:
		if got == "" {
			t.Errorf("String() on cyclic term returned empty string")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("String() on cyclic term did not return, want cycle detection")
	}
}
