package term

import (
	"fmt"
)

// Ordering is the result of comparing two terms under the standard order:
// Var @< Int @< Atom @< Compound, ties broken structurally.
type Ordering int

const (
	Equal Ordering = iota
	Less
	More
)

func compareInts(i1, i2 int64) Ordering {
	switch {
	case i1 < i2:
		return Less
	case i1 > i2:
		return More
	default:
		return Equal
	}
}

func compareStrings(s1, s2 string) Ordering {
	switch {
	case s1 < s2:
		return Less
	case s1 > s2:
		return More
	default:
		return Equal
	}
}

// rank orders tags for comparison purposes: unbound variables first, then
// integers, then atoms, then compounds, matching standard order of terms.
func rank(h *Heap, c Cell) int {
	switch c.Tag() {
	case REF:
		return 1
	case INT:
		return 2
	case CON:
		_, arity := c.Functor()
		if arity == 0 {
			return 3
		}
		return 4
	case STR:
		return 4
	default:
		panic(fmt.Sprintf("term.rank: unhandled tag %v", c.Tag()))
	}
}

// Compare implements the standard order of terms (ISO @</2 family) between
// two cells, dereferencing as it descends.
//
// Arguments are compared left to right, and each argument pair is resolved
// to a full decision — including any of its own nested subterms — before
// the next sibling argument is even looked at. A breadth-first comparison
// across a compound's arguments would reorder this: e.g. for
// f(g(1,9),0) vs f(g(1,1),5), arg0's nested mismatch (9 vs 1, decisive on
// its own) must be the one that wins, not arg1's (0 vs 5).
func Compare(h *Heap, c1, c2 Cell) Ordering {
	a, b := h.Deref(c1), h.Deref(c2)
	if o := compareInts(int64(rank(h, a)), int64(rank(h, b))); o != Equal {
		return o
	}
	switch a.Tag() {
	case REF:
		return compareInts(int64(a.RefIndex()), int64(b.RefIndex()))
	case INT:
		return compareInts(a.Int(), b.Int())
	case CON:
		// Only atoms (arity 0) reach here as live terms; a bare
		// functor/arity reference (e.g. from functor/3) compares the
		// same way, by name then arity.
		aid, aarity := a.Functor()
		bid, barity := b.Functor()
		aname, _ := h.Name(aid)
		bname, _ := h.Name(bid)
		if o := compareStrings(aname, bname); o != Equal {
			return o
		}
		return compareInts(int64(aarity), int64(barity))
	case STR:
		aidx, bidx := a.StrIndex(), b.StrIndex()
		aid, aarity := h.cells[aidx].Functor()
		bid, barity := h.cells[bidx].Functor()
		if o := compareInts(int64(aarity), int64(barity)); o != Equal {
			return o
		}
		aname, _ := h.Name(aid)
		bname, _ := h.Name(bid)
		if o := compareStrings(aname, bname); o != Equal {
			return o
		}
		for i := 0; i < aarity; i++ {
			if o := Compare(h, h.cells[h.ArgIndex(aidx, i)], h.cells[h.ArgIndex(bidx, i)]); o != Equal {
				return o
			}
		}
		return Equal
	default:
		panic(fmt.Sprintf("term.Compare: unhandled tag %v", a.Tag()))
	}
}

// SameTerm reports whether c1 and c2 compare Equal under the standard
// order.
func SameTerm(h *Heap, c1, c2 Cell) bool {
	return Compare(h, c1, c2) == Equal
}
