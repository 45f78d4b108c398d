// Package arith evaluates is/2's right-hand side: an arithmetic
// expression tree built from CON (function symbol) and INT (literal)
// cells, dispatched through a table of named arithmetic functions.
package arith

import (
	pcerrors "github.com/sesam/prologcoin/errors"
	"github.com/sesam/prologcoin/logic"
	"github.com/sesam/prologcoin/term"
)

// Func computes an arithmetic function over already-evaluated integer
// arguments.
type Func func(args []int64) (int64, error)

var functions = map[logic.Indicator]Func{
	{Name: "+", Arity: 2}: func(a []int64) (int64, error) { return a[0] + a[1], nil },
	{Name: "-", Arity: 2}: func(a []int64) (int64, error) { return a[0] - a[1], nil },
	{Name: "*", Arity: 2}: func(a []int64) (int64, error) { return a[0] * a[1], nil },
	{Name: "+", Arity: 1}: func(a []int64) (int64, error) { return a[0], nil },
	{Name: "-", Arity: 1}: func(a []int64) (int64, error) { return -a[0], nil },
	{Name: "//", Arity: 2}: func(a []int64) (int64, error) {
		if a[1] == 0 {
			return 0, pcerrors.Newf(pcerrors.NotANumber, "//: division by zero")
		}
		return a[0] / a[1], nil
	},
	{Name: "mod", Arity: 2}: func(a []int64) (int64, error) {
		if a[1] == 0 {
			return 0, pcerrors.Newf(pcerrors.NotANumber, "mod: division by zero")
		}
		m := a[0] % a[1]
		if m != 0 && (m < 0) != (a[1] < 0) {
			m += a[1]
		}
		return m, nil
	},
}

// stackEntry is one unit of work in Eval's explicit evaluation stack: a
// cell still to be visited, or (once visited is true) the arity of a
// functor whose arguments have already been pushed and evaluated below it
// on the argument stack.
type stackEntry struct {
	cell    term.Cell
	visited bool
	arity   int
	ind     logic.Indicator
}

// Eval evaluates expr to an integer, using an explicit work stack so deep
// expressions don't recurse the Go call stack.
func Eval(h *term.Heap, expr term.Cell) (int64, error) {
	var work []stackEntry
	var vals []int64
	work = append(work, stackEntry{cell: expr})

	for len(work) > 0 {
		n := len(work) - 1
		e := work[n]
		work = work[:n]

		if e.visited {
			args := make([]int64, e.arity)
			copy(args, vals[len(vals)-e.arity:])
			vals = vals[:len(vals)-e.arity]
			fn, ok := functions[e.ind]
			if !ok {
				return 0, pcerrors.Newf(pcerrors.UndefinedFunction, "undefined arithmetic function: %s/%d", e.ind.Name, e.ind.Arity)
			}
			v, err := fn(args)
			if err != nil {
				return 0, err
			}
			vals = append(vals, v)
			continue
		}

		c := h.Deref(e.cell)
		switch c.Tag() {
		case term.INT:
			vals = append(vals, c.Int())
		case term.REF:
			return 0, pcerrors.Newf(pcerrors.NotSufficientlyInstantiated, "arithmetic: not sufficiently instantiated")
		case term.CON:
			id, arity := c.Functor()
			name, _ := h.Name(id)
			if arity != 0 {
				return 0, pcerrors.Newf(pcerrors.UndefinedFunction, "undefined arithmetic function: %s/%d", name, arity)
			}
			ind := logic.Indicator{Name: name, Arity: 0}
			if fn, ok := functions[ind]; ok {
				v, err := fn(nil)
				if err != nil {
					return 0, err
				}
				vals = append(vals, v)
				continue
			}
			return 0, pcerrors.Newf(pcerrors.UndefinedFunction, "undefined arithmetic function: %s/0", name)
		case term.STR:
			header := h.Get(c.StrIndex())
			id, arity := header.Functor()
			name, _ := h.Name(id)
			ind := logic.Indicator{Name: name, Arity: arity}
			if _, ok := functions[ind]; !ok {
				return 0, pcerrors.Newf(pcerrors.UndefinedFunction, "undefined arithmetic function: %s/%d", name, arity)
			}
			work = append(work, stackEntry{visited: true, arity: arity, ind: ind})
			args := h.Args(c.StrIndex())
			for i := arity - 1; i >= 0; i-- {
				work = append(work, stackEntry{cell: args[i]})
			}
		default:
			return 0, pcerrors.Newf(pcerrors.WrongArgumentType, "arithmetic: not a number: %v", c)
		}
	}
	if len(vals) != 1 {
		return 0, pcerrors.Newf(pcerrors.Other, "arithmetic: malformed expression, %d values left on stack", len(vals))
	}
	return vals[0], nil
}
