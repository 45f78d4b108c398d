// Package interp implements the interpreter core: direct tree-walking
// dispatch over clausedb clauses, choice points realized as an explicit
// stack (no compiled bytecode), shallow and conditional cut, and the
// control constructs (;/2, ->/2, \+/1) as described in the spec's
// interpreter-core section.
package interp

import (
	"fmt"
	"time"

	pcerrors "github.com/sesam/prologcoin/errors"
	"github.com/sesam/prologcoin/clausedb"
	"github.com/sesam/prologcoin/logic"
	"github.com/sesam/prologcoin/term"
	"github.com/sesam/prologcoin/termenv"
)

// Builtin is a predicate implemented in Go rather than by clause
// resolution. It receives the machine (for env/db access) and the call's
// dereferenced-on-demand argument cells, and reports success or failure.
type Builtin func(m *Machine, args []term.Cell) (bool, error)

// frame is one pending goal in the current continuation, a cons-list
// built right-to-left so sharing a tail across choice points is free.
type frame struct {
	goal       term.Cell
	next       *frame
	cutBarrier int // length to truncate m.cps to on '!'
}

type altKind int

const (
	altClauses altKind = iota
	altGoal
)

// choicePoint is a pending alternative: either more clauses to try for a
// predicate call, or a single disjunction/else branch to try once.
type choicePoint struct {
	kind altKind

	// altClauses
	candidates []*logic.Clause
	idx        int
	callGoal   term.Cell

	// altGoal
	goal term.Cell

	cont       *frame
	cutBarrier int
	trailMark  termenv.Mark
}

// profileStat accumulates call counts and cumulative dispatch time per
// predicate for profile/0.
type profileStat struct {
	calls    int
	duration time.Duration
}

// ProfileEntry is one predicate's tally, as reported by PrintProfile.
type ProfileEntry struct {
	Calls    int
	Duration time.Duration
}

// Machine holds the mutable state of one interpreter: the term heap and
// unification env, the clause database, the current continuation and
// choice-point stack, and the builtin dispatch table.
type Machine struct {
	Env *termenv.Env
	DB  *clausedb.DB

	cont *frame
	cps  []*choicePoint

	builtins map[logic.Indicator]Builtin

	profiling bool
	profile   map[logic.Indicator]*profileStat
}

// New returns a machine with an empty heap and the canonical builtin set
// installed.
func New(db *clausedb.DB) *Machine {
	m := &Machine{
		Env:     termenv.NewEnv(),
		DB:      db,
		profile: make(map[logic.Indicator]*profileStat),
	}
	m.builtins = registerBuiltins()
	return m
}

// SetProfiling turns the per-functor call tally on or off, implementing
// profile/0's toggle.
func (m *Machine) SetProfiling(on bool) {
	m.profiling = on
}

// PrintProfile reports, for every predicate that was called while
// profiling was on, how many times it was called and how much cumulative
// dispatch time it cost.
func (m *Machine) PrintProfile() map[logic.Indicator]ProfileEntry {
	out := make(map[logic.Indicator]ProfileEntry, len(m.profile))
	for ind, stat := range m.profile {
		out[ind] = ProfileEntry{Calls: stat.calls, Duration: stat.duration}
	}
	return out
}

// recordProfile tallies one call to ind, begun at start, into its
// profileStat, creating it on first use.
func (m *Machine) recordProfile(ind logic.Indicator, start time.Time) {
	stat := m.profile[ind]
	if stat == nil {
		stat = &profileStat{}
		m.profile[ind] = stat
	}
	stat.calls++
	stat.duration += time.Since(start)
}

// Execute instantiates goal onto the heap with fresh variables, runs it to
// the first solution, and returns whether one was found. The variable
// bindings map lets the caller translate heap cells for named variables
// back to readable terms.
func (m *Machine) Execute(goal logic.Term) (bool, map[logic.Var]term.Cell, error) {
	m.cps = m.cps[:0]
	vars := make(map[logic.Var]term.Cell)
	cell := m.instantiateTerm(goal, vars)
	m.cont = &frame{goal: cell, next: nil, cutBarrier: 0}
	ok, err := m.runLoop(0)
	return ok, vars, err
}

// Next backtracks into the previous query's choice points and runs to the
// next solution, if any.
func (m *Machine) Next() (bool, error) {
	if !m.backtrack(0) {
		return false, nil
	}
	return m.runLoop(0)
}

// runLoop drives the continuation forward, calling step for each pending
// goal and backtracking on failure, until the continuation is empty
// (success) or no choice point above boundary remains (failure).
func (m *Machine) runLoop(boundary int) (bool, error) {
	for m.cont != nil {
		f := m.cont
		ok, err := m.step(f)
		if err != nil {
			return false, err
		}
		if !ok {
			if !m.backtrack(boundary) {
				return false, nil
			}
		}
	}
	return true, nil
}

// backtrack pops choice points above boundary until one yields a fresh
// alternative (installing it as the new continuation) or none remain.
func (m *Machine) backtrack(boundary int) bool {
	for len(m.cps) > boundary {
		cp := m.cps[len(m.cps)-1]
		switch cp.kind {
		case altGoal:
			m.Env.Undo(cp.trailMark)
			m.cps = m.cps[:len(m.cps)-1]
			m.cont = &frame{goal: cp.goal, next: cp.cont, cutBarrier: cp.cutBarrier}
			return true
		case altClauses:
			// The previous attempt on this choice point (the one that
			// just succeeded and is now being backtracked into) left its
			// bindings in place; undo them, keeping the watermark
			// elevated since cp still protects indices below it.
			m.Env.UndoTrail(cp.trailMark)
			body, ok := m.tryNextClause(cp)
			if !ok {
				m.cps = m.cps[:len(m.cps)-1]
				m.Env.Release(cp.trailMark)
				continue
			}
			pos := len(m.cps) - 1
			if cp.idx >= len(cp.candidates) {
				m.cps = m.cps[:pos]
				m.Env.Release(cp.trailMark)
			}
			m.cont = bodyFrameChain(body, cp.cont, pos)
			return true
		default:
			panic(fmt.Sprintf("interp: unhandled choice point kind %v", cp.kind))
		}
	}
	return false
}

// tryNextClause advances cp.idx through its candidate clauses, attempting
// to unify each freshly instantiated head with the call goal, undoing a
// failed attempt's partial bindings before moving to the next candidate.
// It never releases cp's watermark — the caller does that once it knows
// whether cp survives (more candidates left) or is being discarded.
func (m *Machine) tryNextClause(cp *choicePoint) ([]term.Cell, bool) {
	for cp.idx < len(cp.candidates) {
		clause := cp.candidates[cp.idx]
		cp.idx++
		body, ok := m.tryClause(clause, cp.callGoal)
		if ok {
			return body, true
		}
		m.Env.UndoTrail(cp.trailMark)
	}
	return nil, false
}

// tryClause instantiates clause with fresh variables and unifies its head
// against callGoal, returning the instantiated body goals on success.
func (m *Machine) tryClause(clause *logic.Clause, callGoal term.Cell) ([]term.Cell, bool) {
	vars := make(map[logic.Var]term.Cell)
	head := m.instantiateTerm(clause.Head, vars)
	if err := m.Env.Unify(head, callGoal); err != nil {
		return nil, false
	}
	body := make([]term.Cell, len(clause.Body))
	for i, g := range clause.Body {
		body[i] = m.instantiateTerm(g, vars)
	}
	return body, true
}

// bodyFrameChain prepends body's goals (each carrying cutBarrier) onto
// next, preserving their left-to-right order.
func bodyFrameChain(body []term.Cell, next *frame, cutBarrier int) *frame {
	cont := next
	for i := len(body) - 1; i >= 0; i-- {
		cont = &frame{goal: body[i], next: cont, cutBarrier: cutBarrier}
	}
	return cont
}

// instantiateTerm builds a fresh heap representation of t, allocating one
// REF per distinct logic.Var (by identity, not by name) so repeated
// occurrences of the same variable remain the same cell, and skipping the
// map for the anonymous variable so every occurrence of "_" is distinct.
func (m *Machine) instantiateTerm(t logic.Term, vars map[logic.Var]term.Cell) term.Cell {
	h := m.Env.Heap
	switch t := t.(type) {
	case logic.Atom:
		return h.InternAtom(t.Name)
	case logic.Int:
		return term.NewInt(int64(t.Value))
	case logic.Var:
		if t.Name == "_" {
			return term.NewRef(h.NewVar())
		}
		if c, ok := vars[t]; ok {
			return c
		}
		c := term.NewRef(h.NewVar())
		vars[t] = c
		return c
	case *logic.Comp:
		arity := len(t.Args)
		if arity == 0 {
			return h.InternAtom(t.Functor)
		}
		str, first := h.PushStruct(t.Functor, arity)
		for i, a := range t.Args {
			h.Set(first+i, m.instantiateTerm(a, vars))
		}
		return str
	default:
		panic(fmt.Sprintf("interp.instantiateTerm: unhandled type %T", t))
	}
}

// indicatorOf returns the predicate indicator of a dereferenced,
// non-variable goal cell.
func indicatorOf(h *term.Heap, c term.Cell) (logic.Indicator, error) {
	switch c.Tag() {
	case term.CON:
		id, arity := c.Functor()
		name, _ := h.Name(id)
		return logic.Indicator{Name: name, Arity: arity}, nil
	case term.STR:
		header := h.Get(c.StrIndex())
		id, arity := header.Functor()
		name, _ := h.Name(id)
		return logic.Indicator{Name: name, Arity: arity}, nil
	case term.REF:
		return logic.Indicator{}, pcerrors.Newf(pcerrors.NotSufficientlyInstantiated, "not sufficiently instantiated: %v", c)
	default:
		return logic.Indicator{}, pcerrors.Newf(pcerrors.WrongArgumentType, "type_error(callable, %v)", c)
	}
}

// argsOf returns the argument cells of a compound goal, or nil for an
// arity-0 atom.
func argsOf(h *term.Heap, c term.Cell) []term.Cell {
	if c.Tag() != term.STR {
		return nil
	}
	return h.Args(c.StrIndex())
}

// discriminatorTerm builds a shallow logic.Term view of c's top-level
// functor, just enough for clausedb's first-argument indexing; it never
// recurses into arguments.
func discriminatorTerm(h *term.Heap, c term.Cell) logic.Term {
	c = h.Deref(c)
	switch c.Tag() {
	case term.REF:
		return logic.AnonymousVar
	case term.INT:
		return logic.Int{Value: int(c.Int())}
	case term.CON:
		id, arity := c.Functor()
		name, _ := h.Name(id)
		if arity == 0 {
			return logic.Atom{Name: name}
		}
		return &logic.Comp{Functor: name, Args: make([]logic.Term, arity)}
	case term.STR:
		header := h.Get(c.StrIndex())
		id, arity := header.Functor()
		name, _ := h.Name(id)
		return &logic.Comp{Functor: name, Args: make([]logic.Term, arity)}
	default:
		return logic.AnonymousVar
	}
}
