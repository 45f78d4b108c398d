// Package clausedb implements the clause database consulted by the
// interpreter: clauses grouped by functor/arity in load order, plus
// first-argument indexing so resolution doesn't try clauses whose first
// head argument can never unify with the call's.
package clausedb

import (
	"fmt"
	"io"

	"github.com/sesam/prologcoin/logic"
)

// DB holds every clause loaded into the interpreter, keyed by the
// predicate indicator of its head.
type DB struct {
	// clauses holds, for each functor, its normalized clauses in the
	// order they were loaded — first-argument indexing never reorders
	// this, it only narrows which of them get tried.
	clauses map[logic.Indicator][]*logic.Clause

	// order records the sequence in which functors were first seen, so
	// PrintDB can reproduce load order instead of Go's unordered map
	// iteration (spec's supplemented accounting feature).
	order []logic.Indicator
	seen  map[logic.Indicator]bool

	// index caches, per functor and first-argument discriminator, which
	// of that functor's clauses can possibly match. It is invalidated
	// whenever the functor gains a new clause.
	index map[logic.Indicator]map[discriminator][]*logic.Clause
}

// New returns an empty clause database.
func New() *DB {
	return &DB{
		clauses: make(map[logic.Indicator][]*logic.Clause),
		seen:    make(map[logic.Indicator]bool),
		index:   make(map[logic.Indicator]map[discriminator][]*logic.Clause),
	}
}

// Assert normalizes and appends a clause to the database, under its head's
// predicate indicator, and drops any cached index for that predicate.
func (db *DB) Assert(c *logic.Clause) error {
	norm, err := c.Normalize()
	if err != nil {
		return err
	}
	head, ok := norm.Head.(*logic.Comp)
	if !ok {
		return fmt.Errorf("clausedb.Assert: normalized head is not a compound: %v", norm.Head)
	}
	ind := head.Indicator()
	db.clauses[ind] = append(db.clauses[ind], norm)
	delete(db.index, ind) // invalidate first-argument index for this predicate
	if !db.seen[ind] {
		db.seen[ind] = true
		db.order = append(db.order, ind)
	}
	return nil
}

// AssertAll normalizes and appends every clause in order.
func (db *DB) AssertAll(clauses []*logic.Clause) error {
	for _, c := range clauses {
		if err := db.Assert(c); err != nil {
			return err
		}
	}
	return nil
}

// Clauses returns every clause loaded under ind, in load order, without
// applying first-argument indexing.
func (db *DB) Clauses(ind logic.Indicator) []*logic.Clause {
	return db.clauses[ind]
}

// Indicators returns every predicate indicator seen so far, in the order
// their first clause was loaded.
func (db *DB) Indicators() []logic.Indicator {
	return db.order
}

// Defined reports whether any clause has ever been asserted under ind,
// distinguishing a predicate with no indexed candidates for a particular
// call from one that is wholly undefined.
func (db *DB) Defined(ind logic.Indicator) bool {
	return db.seen[ind]
}

// discriminator classifies a first argument for indexing purposes: two
// arguments that produce different discriminators can never unify, so a
// clause need not be tried if its own first-argument discriminator
// disagrees with the call's.
type discriminator struct {
	kind  int // 0: var (matches anything), 1: atom, 2: int, 3: compound
	name  string
	ival  int
	arity int
}

var (
	dVar = discriminator{kind: 0}
)

func discriminate(t logic.Term) discriminator {
	switch t := t.(type) {
	case logic.Var:
		return dVar
	case logic.Atom:
		return discriminator{kind: 1, name: t.Name}
	case logic.Int:
		return discriminator{kind: 2, ival: t.Value}
	case *logic.Comp:
		return discriminator{kind: 3, name: t.Functor, arity: len(t.Args)}
	default:
		return dVar
	}
}

// compatible reports whether a call-argument discriminator could possibly
// unify with a clause-argument discriminator.
func (d discriminator) compatible(clauseArg discriminator) bool {
	if d.kind == 0 || clauseArg.kind == 0 {
		return true
	}
	if d.kind != clauseArg.kind {
		return false
	}
	switch d.kind {
	case 1:
		return d.name == clauseArg.name
	case 2:
		return d.ival == clauseArg.ival
	case 3:
		return d.name == clauseArg.name && d.arity == clauseArg.arity
	}
	return true
}

// buildIndex groups ind's clauses by their first-argument discriminator,
// memoizing the result until the predicate's clause list changes again.
func (db *DB) buildIndex(ind logic.Indicator) map[discriminator][]*logic.Clause {
	if m, ok := db.index[ind]; ok {
		return m
	}
	m := make(map[discriminator][]*logic.Clause)
	for _, c := range db.clauses[ind] {
		head := c.Head.(*logic.Comp)
		var d discriminator
		if len(head.Args) > 0 {
			d = discriminate(head.Args[0])
		} else {
			d = dVar
		}
		m[d] = append(m[d], c)
	}
	db.index[ind] = m
	return m
}

// Candidates returns the clauses of ind whose first argument cannot be
// ruled out against callArg, preserving load order. If ind has arity 0,
// or callArg is nil, every clause of ind is a candidate.
func (db *DB) Candidates(ind logic.Indicator, callArg logic.Term) []*logic.Clause {
	all := db.clauses[ind]
	if ind.Arity == 0 || callArg == nil {
		return all
	}
	d := discriminate(callArg)
	if d.kind == 0 {
		return all // call argument unbound: every clause is still possible
	}
	byDisc := db.buildIndex(ind)
	var out []*logic.Clause
	for disc, cs := range byDisc {
		if d.compatible(disc) {
			out = append(out, cs...)
		}
	}
	// Restore load order: the map iteration above scrambles it.
	if len(out) == len(all) {
		return all
	}
	inOrder := out[:0]
	keep := make(map[*logic.Clause]bool, len(out))
	for _, c := range out {
		keep[c] = true
	}
	for _, c := range all {
		if keep[c] {
			inOrder = append(inOrder, c)
		}
	}
	return inOrder
}

// PrintDB writes every predicate and its clauses to w, in the order
// predicates were first loaded — the supplemented listing/profiling
// accounting feature described in SPEC_FULL.md.
func (db *DB) PrintDB(w io.Writer) {
	for _, ind := range db.order {
		fmt.Fprintf(w, "%% %s/%d\n", ind.Name, ind.Arity)
		for _, c := range db.clauses[ind] {
			fmt.Fprintf(w, "%v\n", c)
		}
	}
}
