// Package engine wires the term builder, clause database and interpreter
// core into the single embedding surface a node (or a REPL) drives: load a
// program, run a goal, walk its solutions. It is the Go analogue of the
// teacher's solver package, rebuilt against the tree-walking interpreter
// instead of a compiled machine.
package engine

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sesam/prologcoin/clausedb"
	"github.com/sesam/prologcoin/interp"
	"github.com/sesam/prologcoin/logic"
	"github.com/sesam/prologcoin/parser"
	"github.com/sesam/prologcoin/term"
)

// Engine is a self-contained logic program: a clause database and the
// interpreter state for whatever goal is currently being solved.
type Engine struct {
	db *clausedb.DB
	m  *interp.Machine

	vars     map[logic.Var]term.Cell
	varOrder []logic.Var
}

// New returns an engine with an empty clause database.
func New() *Engine {
	db := clausedb.New()
	return &Engine{
		db: db,
		m:  interp.New(db),
	}
}

// LoadProgram asserts every clause into the database, in order.
func (e *Engine) LoadProgram(clauses []*logic.Clause) error {
	return e.db.AssertAll(clauses)
}

// LoadSource parses src into clauses and asserts them, the entry point for
// consulting a file or a block of pasted text.
func (e *Engine) LoadSource(src string) error {
	clauses, err := parser.ParseClauses(src)
	if err != nil {
		return err
	}
	return e.LoadProgram(clauses)
}

// Execute runs goal to its first solution. The variables appearing in goal
// are remembered so GetResult can render their bindings after a successful
// call, and Next can look them up again after backtracking.
func (e *Engine) Execute(goal *logic.Comp) (bool, error) {
	e.varOrder = logic.Vars(goal)
	ok, vars, err := e.m.Execute(goal)
	e.vars = vars
	return ok, err
}

// Next backtracks into the running query's choice points and advances to
// the next solution, if any.
func (e *Engine) Next() (bool, error) {
	return e.m.Next()
}

// GetResult renders the most recent solution's variable bindings as
// "X = value, Y = value", in the order the variables first appeared in the
// query. A query with no variables renders as "true".
func (e *Engine) GetResult() string {
	if len(e.varOrder) == 0 {
		return "true"
	}
	h := e.m.Env.Heap
	var parts []string
	for _, v := range e.varOrder {
		if v == logic.AnonymousVar {
			continue
		}
		cell, ok := e.vars[v]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s = %s", v, h.String(h.Deref(cell))))
	}
	if len(parts) == 0 {
		return "true"
	}
	return strings.Join(parts, ", ")
}

// PrintDB writes every asserted clause, grouped by predicate indicator, to
// w.
func (e *Engine) PrintDB(w io.Writer) {
	e.db.PrintDB(w)
}

// PrintProfile writes the number of calls made to each predicate, and the
// cumulative time spent dispatching them, since profiling was last turned
// on, sorted by indicator for stable output.
func (e *Engine) PrintProfile(w io.Writer) {
	entries := e.m.PrintProfile()
	inds := make([]logic.Indicator, 0, len(entries))
	for ind := range entries {
		inds = append(inds, ind)
	}
	sort.Slice(inds, func(i, j int) bool {
		if inds[i].Name != inds[j].Name {
			return inds[i].Name < inds[j].Name
		}
		return inds[i].Arity < inds[j].Arity
	})
	for _, ind := range inds {
		entry := entries[ind]
		fmt.Fprintf(w, "%s/%d: %d calls, %s\n", ind.Name, ind.Arity, entry.Calls, entry.Duration)
	}
}

// SetProfiling turns per-predicate call counting on or off.
func (e *Engine) SetProfiling(on bool) {
	e.m.SetProfiling(on)
}
