package arith_test

import (
	"testing"

	"github.com/sesam/prologcoin/arith"
	"github.com/sesam/prologcoin/term"
)

func mkExpr(h *term.Heap, name string, args ...term.Cell) term.Cell {
	if len(args) == 0 {
		return h.InternAtom(name)
	}
	str, first := h.PushStruct(name, len(args))
	for i, a := range args {
		h.Set(first+i, a)
	}
	return str
}

func TestEvalSimpleArithmetic(t *testing.T) {
	h := term.NewHeap()
	// 2 + 3 * 4
	expr := mkExpr(h, "+", term.NewInt(2), mkExpr(h, "*", term.NewInt(3), term.NewInt(4)))
	got, err := arith.Eval(h, expr)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 14 {
		t.Errorf("Eval(2+3*4) = %d, want 14", got)
	}
}

func TestEvalDivisionAndMod(t *testing.T) {
	h := term.NewHeap()
	div := mkExpr(h, "//", term.NewInt(7), term.NewInt(2))
	if got, err := arith.Eval(h, div); err != nil || got != 3 {
		t.Errorf("Eval(7 // 2) = (%d, %v), want (3, nil)", got, err)
	}
	mod := mkExpr(h, "mod", term.NewInt(-7), term.NewInt(2))
	if got, err := arith.Eval(h, mod); err != nil || got != 1 {
		t.Errorf("Eval(-7 mod 2) = (%d, %v), want (1, nil)", got, err)
	}
}

func TestEvalUnboundVariableFails(t *testing.T) {
	h := term.NewHeap()
	x := term.NewRef(h.NewVar())
	if _, err := arith.Eval(h, x); err == nil {
		t.Fatal("Eval(unbound var) = nil error, want error")
	}
}

func TestEvalUndefinedFunctionFails(t *testing.T) {
	h := term.NewHeap()
	expr := mkExpr(h, "frobnicate", term.NewInt(1))
	if _, err := arith.Eval(h, expr); err == nil {
		t.Fatal("Eval(frobnicate(1)) = nil error, want error")
	}
}
