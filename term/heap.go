package term

import (
	"fmt"
)

// functorKey identifies an interned atom or functor by name and arity.
type functorKey struct {
	name  string
	arity int
}

// Heap is the growable array of Cells that backs every term manipulated by
// the interpreter, together with the append-only table that interns atom
// and functor names into small integer ids.
//
// Index 0 of the cell array is never assigned a live term: it is reserved
// so that a zero Cell (tag REF, payload 0) read from a freshly grown slice
// is never confused with a cell actually pushed onto the heap.
type Heap struct {
	cells []Cell
	names []functorKey // id -> key, index 0 unused
	byKey map[functorKey]int
}

// NewHeap returns an empty heap with its reserved slot 0 already allocated.
func NewHeap() *Heap {
	h := &Heap{
		cells: make([]Cell, 1, 1024),
		names: make([]functorKey, 1),
		byKey: make(map[functorKey]int),
	}
	return h
}

// Len returns the number of cells pushed so far, including the reserved
// slot 0.
func (h *Heap) Len() int {
	return len(h.cells)
}

// Get returns the cell at index i.
func (h *Heap) Get(i int) Cell {
	return h.cells[i]
}

// Set overwrites the cell at index i, used by binding a REF in place.
func (h *Heap) Set(i int, c Cell) {
	h.cells[i] = c
}

// Push appends c to the heap and returns its index.
func (h *Heap) Push(c Cell) int {
	i := len(h.cells)
	h.cells = append(h.cells, c)
	return i
}

// NewVar pushes a fresh unbound REF cell that points at itself, and returns
// its heap index.
func (h *Heap) NewVar() int {
	i := len(h.cells)
	h.cells = append(h.cells, NewRef(i))
	return i
}

// Intern returns the id for the (name, arity) functor, assigning a new one
// on first use. Atoms are functors of arity 0.
func (h *Heap) Intern(name string, arity int) int {
	key := functorKey{name, arity}
	if id, ok := h.byKey[key]; ok {
		return id
	}
	id := len(h.names)
	h.names = append(h.names, key)
	h.byKey[key] = id
	return id
}

// InternAtom interns name as a 0-arity functor and returns a ready-made CON
// cell for it.
func (h *Heap) InternAtom(name string) Cell {
	return newCon(h.Intern(name, 0), 0)
}

// InternFunctor interns (name, arity) and returns a ready-made CON cell for
// it, suitable as a structure header.
func (h *Heap) InternFunctor(name string, arity int) Cell {
	return newCon(h.Intern(name, arity), arity)
}

// Name returns the name and arity that functor id was interned with.
func (h *Heap) Name(id int) (name string, arity int) {
	k := h.names[id]
	return k.name, k.arity
}

// PushStruct allocates a structure on the heap: its CON functor header
// followed by arity argument slots (left as fresh REFs). It returns a STR
// cell pointing at the header plus the index of the first argument slot.
func (h *Heap) PushStruct(name string, arity int) (Cell, int) {
	strIdx := h.Push(h.InternFunctor(name, arity))
	first := -1
	for i := 0; i < arity; i++ {
		idx := h.NewVar()
		if i == 0 {
			first = idx
		}
	}
	return NewStr(strIdx), first
}

// Deref follows a chain of bound REF cells until it reaches an unbound REF,
// or a non-REF cell, per the usual Prolog dereference rule.
func (h *Heap) Deref(c Cell) Cell {
	for c.Tag() == REF {
		i := c.RefIndex()
		next := h.cells[i]
		if next == c {
			return c // unbound: self-pointing
		}
		c = next
	}
	return c
}

// DerefIndex is like Deref but for a cell already known to live at heap
// index i; it returns the dereferenced cell and the index it settled at
// (itself if the cell isn't a REF, or the unbound REF's own index).
func (h *Heap) DerefIndex(i int) (Cell, int) {
	c := h.cells[i]
	for c.Tag() == REF {
		j := c.RefIndex()
		if j == i {
			return c, i
		}
		i = j
		c = h.cells[i]
	}
	return c, i
}

// Args returns the arity argument cells following the functor header at
// strIdx (the index carried by a STR cell).
func (h *Heap) Args(strIdx int) []Cell {
	_, arity := h.Name(h.headerID(strIdx))
	return h.cells[strIdx+1 : strIdx+1+arity]
}

// ArgIndex returns the heap index of the i-th argument (0-based) of the
// structure whose header sits at strIdx.
func (h *Heap) ArgIndex(strIdx, i int) int {
	return strIdx + 1 + i
}

func (h *Heap) headerID(strIdx int) int {
	id, _ := h.cells[strIdx].Functor()
	return id
}

// String renders the cell (after full recursive dereferencing) using
// whatever names were interned for its functors, mainly for debugging —
// term.String does not attempt operator or list notation.
//
// Unification here is occurs-check-free, so a binding like X = f(X) is
// legal and produces a structure that is its own argument. String tracks
// the STR indices on the current path and prints "...<cycle>" instead of
// recursing back into one of them, rather than assuming every term it is
// asked to render is acyclic.
func (h *Heap) String(c Cell) string {
	return h.stringRec(c, map[int]bool{})
}

func (h *Heap) stringRec(c Cell, onPath map[int]bool) string {
	c = h.Deref(c)
	switch c.Tag() {
	case REF:
		return fmt.Sprintf("_G%d", c.RefIndex())
	case INT:
		return fmt.Sprintf("%d", c.Int())
	case CON:
		id, arity := c.Functor()
		name, _ := h.Name(id)
		if arity == 0 {
			return name
		}
		return fmt.Sprintf("%s/%d", name, arity)
	case STR:
		idx := c.StrIndex()
		if onPath[idx] {
			return "...<cycle>"
		}
		id := h.headerID(idx)
		name, arity := h.Name(id)
		onPath[idx] = true
		s := name + "("
		for i := 0; i < arity; i++ {
			if i > 0 {
				s += ", "
			}
			s += h.stringRec(h.cells[h.ArgIndex(idx, i)], onPath)
		}
		delete(onPath, idx)
		return s + ")"
	default:
		return c.String()
	}
}
