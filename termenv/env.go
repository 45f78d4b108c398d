// Package termenv layers unification, trailing and structural copy on top of
// a term.Heap. It is the direct analogue of the teacher's Machine.unify /
// Machine.bind / Machine.trail family, reworked for the spec's tagged-word
// heap instead of the teacher's pointer-linked Ref/Struct/List cells.
package termenv

import (
	"fmt"

	"github.com/sesam/prologcoin/term"
)

// Env wraps a term.Heap with the trail of conditional bindings needed to
// undo unification on backtracking.
type Env struct {
	Heap *term.Heap

	// trail holds the heap indices of REF cells bound since some earlier
	// mark, in binding order, so Undo can restore them in reverse.
	trail []int

	// mark is the heap length watermark below which a binding is
	// considered "conditional" and must be trailed. PushChoicePoint sets it
	// to the heap top; Unify raises it to the heap top for the duration of
	// each call, so every binding Unify makes is trailed and can be reset
	// by Undo.
	mark int
}

// NewEnv returns an Env over a fresh heap.
func NewEnv() *Env {
	h := term.NewHeap()
	return &Env{Heap: h, mark: h.Len()}
}

// Mark returns a checkpoint token capturing the current heap length and
// trail length, for use with Undo.
type Mark struct {
	heapLen  int
	trailLen int
	prevMark int
}

// PushChoicePoint records a checkpoint and returns it; it also becomes the
// new trailing watermark, so bindings made before it are preserved as
// conditional until the matching Undo (or a later, lower watermark).
func (e *Env) PushChoicePoint() Mark {
	m := Mark{heapLen: e.Heap.Len(), trailLen: len(e.trail), prevMark: e.mark}
	e.mark = m.heapLen
	return m
}

// Undo restores the heap and trail to the state captured by m: every
// binding trailed since m is reset to an unbound, self-pointing REF, the
// trail is truncated, and the watermark is restored. It does not shrink the
// heap itself — cells created after m simply become garbage.
func (e *Env) Undo(m Mark) {
	e.UndoTrail(m)
	e.Release(m)
}

// UndoTrail rewinds only the bindings and trail made since m, leaving the
// watermark at its current (elevated) level — for retrying a sibling
// clause of a choice point that is still on the stack and must keep
// protecting the same range of indices.
func (e *Env) UndoTrail(m Mark) {
	for i := len(e.trail) - 1; i >= m.trailLen; i-- {
		idx := e.trail[i]
		e.Heap.Set(idx, term.NewRef(idx))
	}
	e.trail = e.trail[:m.trailLen]
}

// Release restores the watermark to what it was before m's choice point
// was pushed, without touching the trail — for when a choice point is
// being discarded for good (exhausted, or a deterministic single-clause
// match) and bindings made under it, if any, must survive.
func (e *Env) Release(m Mark) {
	e.mark = m.prevMark
}

// isConditional reports whether the REF at heap index i was created before
// the current watermark, and therefore needs trailing if bound.
func (e *Env) isConditional(i int) bool {
	return i < e.mark
}

// bind binds the unbound REF at index i to cell c, trailing it if the
// binding must survive a later backtrack past the current watermark.
func (e *Env) bind(i int, c term.Cell) {
	e.Heap.Set(i, c)
	if e.isConditional(i) {
		e.trail = append(e.trail, i)
	}
}

// TidyTrail drops trail entries for REFs created at or after the current
// watermark, mirroring the teacher's tidyTrail. The interpreter's cut does
// not call it.
func (e *Env) TidyTrail() {
	kept := e.trail[:0]
	for _, idx := range e.trail {
		if e.isConditional(idx) {
			kept = append(kept, idx)
		}
	}
	e.trail = kept
}

// UnifyError reports a unification mismatch between two non-variable cells.
type UnifyError struct {
	C1, C2 term.Cell
}

func (err *UnifyError) Error() string {
	return fmt.Sprintf("cannot unify %v and %v", err.C1, err.C2)
}

// Unify attempts to unify c1 and c2 in place, binding variables as needed
// and trailing every binding it makes. Arguments of two structures are
// compared from the first to the last. On failure it returns a *UnifyError
// and leaves any bindings made so far in place — callers must Undo back to
// a Mark taken before the call to fully retract a failed unification.
func (e *Env) Unify(c1, c2 term.Cell) error {
	type pair struct{ a, b term.Cell }
	stack := []pair{{c1, c2}}
	h := e.Heap
	prevMark := e.mark
	e.mark = h.Len()
	defer func() { e.mark = prevMark }()
	for len(stack) > 0 {
		n := len(stack)
		p := stack[n-1]
		stack = stack[:n-1]

		a, b := h.Deref(p.a), h.Deref(p.b)
		if a == b {
			continue
		}
		aIsRef := a.Tag() == term.REF
		bIsRef := b.Tag() == term.REF
		switch {
		case aIsRef && bIsRef:
			// Bind the cell with the larger index to the smaller one so
			// that older variables (more likely permanent) survive, as in
			// the teacher's convention of binding the newer ref.
			if a.RefIndex() < b.RefIndex() {
				e.bind(b.RefIndex(), a)
			} else {
				e.bind(a.RefIndex(), b)
			}
			continue
		case aIsRef:
			e.bind(a.RefIndex(), b)
			continue
		case bIsRef:
			e.bind(b.RefIndex(), a)
			continue
		}
		if a.Tag() != b.Tag() {
			return &UnifyError{a, b}
		}
		switch a.Tag() {
		case term.INT:
			if a.Int() != b.Int() {
				return &UnifyError{a, b}
			}
		case term.CON:
			aid, aarity := a.Functor()
			bid, barity := b.Functor()
			if aid != bid || aarity != barity {
				return &UnifyError{a, b}
			}
		case term.STR:
			aidx, bidx := a.StrIndex(), b.StrIndex()
			aHead, bHead := h.Get(aidx), h.Get(bidx)
			aid, aarity := aHead.Functor()
			bid, barity := bHead.Functor()
			if aid != bid || aarity != barity {
				return &UnifyError{a, b}
			}
			for i := aarity - 1; i >= 0; i-- {
				stack = append(stack, pair{
					h.Get(h.ArgIndex(aidx, i)),
					h.Get(h.ArgIndex(bidx, i)),
				})
			}
		default:
			return &UnifyError{a, b}
		}
	}
	return nil
}

// Copy builds a fresh structural copy of c on the heap, allocating a new
// variable for every distinct unbound REF reachable from c, and sharing
// that variable across every occurrence — it is the analogue of copy_term/2.
func (e *Env) Copy(c term.Cell) term.Cell {
	seen := make(map[int]term.Cell)
	return e.copy(c, seen)
}

// copyJob is one entry of copy's explicit work stack: the source cell to
// copy, and where the result goes once computed — a heap slot for a
// compound's argument, or rootSlot for the value copy itself returns.
type copyJob struct {
	cell term.Cell
	slot int
}

const rootSlot = -1

// copy walks c with an explicit LIFO stack instead of native recursion, so
// that a term deep enough to be adversarial (this environment runs terms
// supplied over the wire by a peer) cannot blow the Go call stack through
// copy_term/2. A STR cell's replacement header is known as soon as it is
// reserved, so each argument is pushed as its own job targeting that
// header's slot, and children are filled in as the stack unwinds.
func (e *Env) copy(c term.Cell, seen map[int]term.Cell) term.Cell {
	h := e.Heap
	var result term.Cell
	stack := []copyJob{{cell: c, slot: rootSlot}}
	for len(stack) > 0 {
		n := len(stack) - 1
		j := stack[n]
		stack = stack[:n]

		cell := h.Deref(j.cell)
		var out term.Cell
		switch cell.Tag() {
		case term.REF:
			i := cell.RefIndex()
			if fresh, ok := seen[i]; ok {
				out = fresh
			} else {
				fresh := term.NewRef(h.NewVar())
				seen[i] = fresh
				out = fresh
			}
		case term.INT, term.CON:
			out = cell
		case term.STR:
			idx := cell.StrIndex()
			header := h.Get(idx)
			id, arity := header.Functor()
			name, _ := h.Name(id)
			newStr, first := h.PushStruct(name, arity)
			for i := arity - 1; i >= 0; i-- {
				stack = append(stack, copyJob{cell: h.Get(h.ArgIndex(idx, i)), slot: first + i})
			}
			out = newStr
		default:
			panic(fmt.Sprintf("termenv.copy: unhandled tag %v", cell.Tag()))
		}
		if j.slot == rootSlot {
			result = out
		} else {
			h.Set(j.slot, out)
		}
	}
	return result
}
