package termenv_test

import (
	"testing"

	"github.com/sesam/prologcoin/term"
	"github.com/sesam/prologcoin/termenv"
)

func TestUnifyBindsVariable(t *testing.T) {
	e := termenv.NewEnv()
	x := term.NewRef(e.Heap.NewVar())
	a := e.Heap.InternAtom("a")

	if err := e.Unify(x, a); err != nil {
		t.Fatalf("Unify(X, a) = %v, want nil", err)
	}
	if got := e.Heap.Deref(x); got != a {
		t.Errorf("Deref(X) = %v, want %v", got, a)
	}
}

func TestUnifyStructsRecursively(t *testing.T) {
	e := termenv.NewEnv()
	h := e.Heap

	s1, first1 := h.PushStruct("f", 2)
	h.Set(first1, term.NewInt(1))
	h.Set(first1+1, h.InternAtom("a"))

	s2, first2 := h.PushStruct("f", 2)
	h.Set(first2, term.NewInt(1))
	h.Set(first2+1, term.NewRef(first2+1)) // leave second arg a fresh var

	if err := e.Unify(s1, s2); err != nil {
		t.Fatalf("Unify(f(1,a), f(1,Y)) = %v, want nil", err)
	}
	if got := h.Deref(h.Get(first2 + 1)); got != h.InternAtom("a") {
		t.Errorf("Y bound to %v, want a", got)
	}
}

func TestUnifyMismatchFails(t *testing.T) {
	e := termenv.NewEnv()
	h := e.Heap
	a := h.InternAtom("a")
	b := h.InternAtom("b")
	if err := e.Unify(a, b); err == nil {
		t.Fatal("Unify(a, b) = nil, want error")
	}
}

func TestUndoRestoresTrailedBindings(t *testing.T) {
	e := termenv.NewEnv()
	h := e.Heap
	x := h.NewVar()
	m := e.PushChoicePoint()

	if err := e.Unify(term.NewRef(x), term.NewInt(5)); err != nil {
		t.Fatalf("Unify = %v", err)
	}
	if got := h.Deref(term.NewRef(x)); got.Tag() != term.INT {
		t.Fatalf("X not bound after Unify")
	}

	e.Undo(m)

	got := h.Deref(term.NewRef(x))
	if got.Tag() != term.REF || got.RefIndex() != x {
		t.Errorf("after Undo, X = %v, want unbound REF(%d)", got, x)
	}
}

func TestUnifyFailureLeavesPartialBindingsForCallerToUndo(t *testing.T) {
	e := termenv.NewEnv()
	h := e.Heap
	m := e.PushChoicePoint()

	s1, first1 := h.PushStruct("f", 2)
	h.Set(first1, term.NewRef(first1))
	h.Set(first1+1, h.InternAtom("a"))

	s2, first2 := h.PushStruct("f", 2)
	h.Set(first2, h.InternAtom("x"))
	h.Set(first2+1, h.InternAtom("b")) // mismatches "a"

	if err := e.Unify(s1, s2); err == nil {
		t.Fatal("Unify(f(X,a), f(x,b)) = nil, want error")
	}
	// X was bound to x before the second-argument mismatch was found.
	if got := h.Deref(term.NewRef(first1)); got != h.InternAtom("x") {
		t.Errorf("X = %v, want x (partial binding before failure)", got)
	}
	e.Undo(m)
	if got := h.Deref(term.NewRef(first1)); got.Tag() != term.REF {
		t.Errorf("after Undo, X = %v, want unbound", got)
	}
}

func TestCopyPreservesSharingAndFreshensVars(t *testing.T) {
	e := termenv.NewEnv()
	h := e.Heap

	x := term.NewRef(h.NewVar())
	str, first := h.PushStruct("p", 2)
	h.Set(first, x)
	h.Set(first+1, x) // same variable in both positions

	copied := e.Copy(str)
	args := h.Args(copied.StrIndex())
	a0, a1 := h.Deref(args[0]), h.Deref(args[1])
	if a0.Tag() != term.REF || a1.Tag() != term.REF {
		t.Fatalf("copied args not REFs: %v, %v", a0, a1)
	}
	if a0.RefIndex() != a1.RefIndex() {
		t.Errorf("Copy did not preserve sharing: %v != %v", a0, a1)
	}
	if a0.RefIndex() == x.RefIndex() {
		t.Errorf("Copy reused the original variable instead of freshening it")
	}
}
