package interp

import (
	"github.com/sesam/prologcoin/arith"
	pcerrors "github.com/sesam/prologcoin/errors"
	"github.com/sesam/prologcoin/logic"
	"github.com/sesam/prologcoin/term"
)

// registerBuiltins assembles the canonical builtin table (spec's §4.6):
// unification, ordering/equality, type tests, arithmetic, term
// inspection/construction and profiling. Control constructs (,/2, ;/2,
// ->/2, !/0, \+/1, true/0) are dispatched directly in step, not through
// this table, since they need access to the continuation and choice-point
// stack that a Builtin signature doesn't expose.
func registerBuiltins() map[logic.Indicator]Builtin {
	reg := make(map[logic.Indicator]Builtin)

	reg[logic.Indicator{Name: "=", Arity: 2}] = builtinUnify
	reg[logic.Indicator{Name: "\\=", Arity: 2}] = builtinNotUnifiable

	for name, pred := range comparisonPredicates {
		reg[logic.Indicator{Name: name, Arity: 2}] = builtinComparison(pred)
	}
	reg[logic.Indicator{Name: "compare", Arity: 3}] = builtinCompare3

	for name, pred := range typeCheckPredicates {
		reg[logic.Indicator{Name: name, Arity: 1}] = builtinTypeCheck(pred)
	}

	reg[logic.Indicator{Name: "is", Arity: 2}] = builtinIs
	reg[logic.Indicator{Name: "functor", Arity: 3}] = builtinFunctor3
	reg[logic.Indicator{Name: "=..", Arity: 2}] = builtinUniv
	reg[logic.Indicator{Name: "copy_term", Arity: 2}] = builtinCopyTerm
	reg[logic.Indicator{Name: "profile", Arity: 0}] = builtinProfile

	return reg
}

func builtinUnify(m *Machine, args []term.Cell) (bool, error) {
	if err := m.Env.Unify(args[0], args[1]); err != nil {
		return false, nil
	}
	return true, nil
}

func builtinNotUnifiable(m *Machine, args []term.Cell) (bool, error) {
	mark := m.Env.PushChoicePoint()
	err := m.Env.Unify(args[0], args[1])
	m.Env.Undo(mark)
	return err != nil, nil
}

// ---- ordering & equality

type comparisonPredicate struct {
	accepts1, accepts2 term.Ordering
}

var comparisonPredicates = map[string]comparisonPredicate{
	"@<":   {term.Less, term.Less},
	"@=<":  {term.Less, term.Equal},
	"@>":   {term.More, term.More},
	"@>=":  {term.More, term.Equal},
	"==":   {term.Equal, term.Equal},
	"\\==": {term.Less, term.More},
}

func builtinComparison(pred comparisonPredicate) Builtin {
	return func(m *Machine, args []term.Cell) (bool, error) {
		o := term.Compare(m.Env.Heap, args[0], args[1])
		return o == pred.accepts1 || o == pred.accepts2, nil
	}
}

func builtinCompare3(m *Machine, args []term.Cell) (bool, error) {
	o := term.Compare(m.Env.Heap, args[1], args[2])
	var sym string
	switch o {
	case term.Less:
		sym = "<"
	case term.Equal:
		sym = "="
	case term.More:
		sym = ">"
	}
	ok, _ := builtinUnify(m, []term.Cell{args[0], m.Env.Heap.InternAtom(sym)})
	return ok, nil
}

// ---- type checks

type typeCheckPredicate func(h *term.Heap, c term.Cell) bool

var typeCheckPredicates = map[string]typeCheckPredicate{
	"var":      func(h *term.Heap, c term.Cell) bool { return h.Deref(c).Tag() == term.REF },
	"nonvar":   func(h *term.Heap, c term.Cell) bool { return h.Deref(c).Tag() != term.REF },
	"integer":  func(h *term.Heap, c term.Cell) bool { return h.Deref(c).Tag() == term.INT },
	"atom":     func(h *term.Heap, c term.Cell) bool { return isAtom(h, h.Deref(c)) },
	"compound": func(h *term.Heap, c term.Cell) bool { return h.Deref(c).Tag() == term.STR },
	"number":   func(h *term.Heap, c term.Cell) bool { return h.Deref(c).Tag() == term.INT },
	"atomic": func(h *term.Heap, c term.Cell) bool {
		d := h.Deref(c)
		return d.Tag() == term.INT || isAtom(h, d)
	},
	"callable": func(h *term.Heap, c term.Cell) bool {
		d := h.Deref(c)
		return d.Tag() == term.STR || isAtom(h, d)
	},
	"ground": isGround,
}

func isAtom(h *term.Heap, c term.Cell) bool {
	if c.Tag() != term.CON {
		return false
	}
	_, arity := c.Functor()
	return arity == 0
}

func isGround(h *term.Heap, c term.Cell) bool {
	c = h.Deref(c)
	switch c.Tag() {
	case term.REF:
		return false
	case term.STR:
		for _, a := range h.Args(c.StrIndex()) {
			if !isGround(h, a) {
				return false
			}
		}
	}
	return true
}

func builtinTypeCheck(pred typeCheckPredicate) Builtin {
	return func(m *Machine, args []term.Cell) (bool, error) {
		return pred(m.Env.Heap, args[0]), nil
	}
}

// ---- arithmetic

func builtinIs(m *Machine, args []term.Cell) (bool, error) {
	v, err := arith.Eval(m.Env.Heap, args[1])
	if err != nil {
		return false, err
	}
	ok, _ := builtinUnify(m, []term.Cell{args[0], term.NewInt(v)})
	return ok, nil
}

// ---- term inspection & construction

func builtinFunctor3(m *Machine, args []term.Cell) (bool, error) {
	h := m.Env.Heap
	t := h.Deref(args[0])
	if t.Tag() != term.REF {
		var nameCell term.Cell
		var arity int
		switch t.Tag() {
		case term.INT:
			nameCell, arity = t, 0
		case term.CON:
			id, a := t.Functor()
			name, _ := h.Name(id)
			nameCell, arity = h.InternAtom(name), a
		case term.STR:
			header := h.Get(t.StrIndex())
			id, a := header.Functor()
			name, _ := h.Name(id)
			nameCell, arity = h.InternAtom(name), a
		default:
			return false, pcerrors.Newf(pcerrors.Unsupported, "functor/3: unsupported cell %v", t)
		}
		ok1, _ := builtinUnify(m, []term.Cell{args[1], nameCell})
		if !ok1 {
			return false, nil
		}
		ok2, _ := builtinUnify(m, []term.Cell{args[2], term.NewInt(int64(arity))})
		return ok2, nil
	}
	// Construction mode: Name and Arity must be bound.
	nameCell := h.Deref(args[1])
	arityCell := h.Deref(args[2])
	if arityCell.Tag() != term.INT {
		return false, pcerrors.Newf(pcerrors.NotSufficientlyInstantiated, "functor/3: arity not bound")
	}
	arity := int(arityCell.Int())
	if arity == 0 {
		ok, _ := builtinUnify(m, []term.Cell{args[0], nameCell})
		return ok, nil
	}
	if nameCell.Tag() != term.CON {
		return false, pcerrors.Newf(pcerrors.WrongArgumentType, "functor/3: name not an atom")
	}
	id, _ := nameCell.Functor()
	name, _ := h.Name(id)
	str, first := h.PushStruct(name, arity)
	for i := 0; i < arity; i++ {
		h.Set(first+i, term.NewRef(first+i))
	}
	ok, _ := builtinUnify(m, []term.Cell{args[0], str})
	return ok, nil
}

func builtinUniv(m *Machine, args []term.Cell) (bool, error) {
	h := m.Env.Heap
	t := h.Deref(args[0])
	if t.Tag() != term.REF {
		var elems []term.Cell
		switch t.Tag() {
		case term.INT, term.CON:
			name := termName(h, t)
			elems = []term.Cell{name}
		case term.STR:
			header := h.Get(t.StrIndex())
			id, arity := header.Functor()
			fname, _ := h.Name(id)
			elems = append(elems, h.InternAtom(fname))
			elems = append(elems, h.Args(t.StrIndex())[:arity]...)
		default:
			return false, pcerrors.Newf(pcerrors.Unsupported, "=../2: unsupported cell %v", t)
		}
		ok, _ := builtinUnify(m, []term.Cell{args[1], buildList(h, elems)})
		return ok, nil
	}
	elems, tail, ok := readList(h, args[1])
	if !ok || tail.Tag() != term.CON {
		return false, pcerrors.Newf(pcerrors.NotSufficientlyInstantiated, "=../2: list not sufficiently instantiated")
	}
	if len(elems) == 0 {
		return false, pcerrors.Newf(pcerrors.WrongArgumentType, "=../2: empty list")
	}
	if len(elems) == 1 {
		ok, _ := builtinUnify(m, []term.Cell{args[0], elems[0]})
		return ok, nil
	}
	head := h.Deref(elems[0])
	if head.Tag() != term.CON {
		return false, pcerrors.Newf(pcerrors.WrongArgumentType, "=../2: functor must be an atom")
	}
	id, _ := head.Functor()
	name, _ := h.Name(id)
	str, first := h.PushStruct(name, len(elems)-1)
	for i, e := range elems[1:] {
		h.Set(first+i, e)
	}
	ok2, _ := builtinUnify(m, []term.Cell{args[0], str})
	return ok2, nil
}

func termName(h *term.Heap, c term.Cell) term.Cell {
	if c.Tag() == term.CON {
		id, _ := c.Functor()
		name, _ := h.Name(id)
		return h.InternAtom(name)
	}
	return c
}

// buildList constructs a '.'/2-chained list terminated by [] from elems.
func buildList(h *term.Heap, elems []term.Cell) term.Cell {
	list := h.InternAtom("[]")
	for i := len(elems) - 1; i >= 0; i-- {
		str, first := h.PushStruct(".", 2)
		h.Set(first, elems[i])
		h.Set(first+1, list)
		list = str
	}
	return list
}

// readList unrolls a '.'/2 chain into its elements and final tail — the
// tail is [] for a proper list, or whatever cell ends an incomplete one.
func readList(h *term.Heap, c term.Cell) (elems []term.Cell, tail term.Cell, ok bool) {
	cur := h.Deref(c)
	for cur.Tag() == term.STR {
		header := h.Get(cur.StrIndex())
		id, arity := header.Functor()
		name, _ := h.Name(id)
		if name != "." || arity != 2 {
			break
		}
		args := h.Args(cur.StrIndex())
		elems = append(elems, args[0])
		cur = h.Deref(args[1])
	}
	return elems, cur, true
}

func builtinCopyTerm(m *Machine, args []term.Cell) (bool, error) {
	copied := m.Env.Copy(args[0])
	ok, _ := builtinUnify(m, []term.Cell{args[1], copied})
	return ok, nil
}

// ---- profiling

func builtinProfile(m *Machine, args []term.Cell) (bool, error) {
	m.SetProfiling(!m.profiling)
	return true, nil
}
