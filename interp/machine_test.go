package interp_test

import (
	"testing"

	"github.com/sesam/prologcoin/clausedb"
	"github.com/sesam/prologcoin/dsl"
	"github.com/sesam/prologcoin/interp"
	"github.com/sesam/prologcoin/logic"
	"github.com/sesam/prologcoin/term"
)

var (
	atom   = dsl.Atom
	comp   = dsl.Comp
	int_   = dsl.Int
	var_   = dsl.Var
	clause = dsl.Clause
)

func newMachine(clauses ...*logic.Clause) *interp.Machine {
	db := clausedb.New()
	if err := db.AssertAll(clauses); err != nil {
		panic(err)
	}
	return interp.New(db)
}

func TestExecuteFact(t *testing.T) {
	m := newMachine(clause(comp("likes", atom("alice"), atom("bob"))))
	ok, _, err := m.Execute(comp("likes", atom("alice"), atom("bob")))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ok {
		t.Fatal("Execute(likes(alice,bob)) = false, want true")
	}
}

func TestExecuteBindsQueryVariable(t *testing.T) {
	m := newMachine(clause(comp("likes", atom("alice"), atom("bob"))))
	ok, vars, err := m.Execute(comp("likes", atom("alice"), var_("X")))
	if err != nil || !ok {
		t.Fatalf("Execute = (%v, %v), want (true, nil)", ok, err)
	}
	x := vars[logic.NewVar("X")]
	got := m.Env.Heap.Deref(x)
	if got != m.Env.Heap.InternAtom("bob") {
		t.Errorf("X = %v, want bob", got)
	}
}

func TestBacktrackingOverMultipleClauses(t *testing.T) {
	m := newMachine(
		clause(comp("color", atom("red"))),
		clause(comp("color", atom("green"))),
		clause(comp("color", atom("blue"))),
	)
	var got []term.Cell
	ok, vars, err := m.Execute(comp("color", var_("X")))
	for ok {
		if err != nil {
			t.Fatalf("Execute/Next error: %v", err)
		}
		got = append(got, m.Env.Heap.Deref(vars[logic.NewVar("X")]))
		ok, err = m.Next()
	}
	if len(got) != 3 {
		t.Fatalf("got %d solutions, want 3", len(got))
	}
}

func TestCutCommitsToFirstClause(t *testing.T) {
	m := newMachine(
		clause(comp("p", int_(1)), atom("!")),
		clause(comp("p", int_(2))),
	)
	count := 0
	ok, _, err := m.Execute(comp("p", var_("X")))
	for ok {
		if err != nil {
			t.Fatalf("error: %v", err)
		}
		count++
		ok, err = m.Next()
	}
	if count != 1 {
		t.Errorf("got %d solutions after cut, want 1", count)
	}
}

func TestIfThenElse(t *testing.T) {
	m := newMachine(clause(comp("first")))
	ok, _, err := m.Execute(comp(";",
		comp("->", atom("true"), comp("first")),
		comp("second")))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ok {
		t.Fatal("if-then-else with true condition should succeed via then-branch")
	}
}

func TestNegationAsFailure(t *testing.T) {
	m := newMachine(clause(comp("p", atom("a"))))
	ok, _, err := m.Execute(comp("\\+", comp("p", atom("b"))))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ok {
		t.Fatal("\\+ p(b) should succeed since p(b) is not provable")
	}

	ok, _, err = m.Execute(comp("\\+", comp("p", atom("a"))))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ok {
		t.Fatal("\\+ p(a) should fail since p(a) is provable")
	}
}

func TestConjunctionAndDisjunction(t *testing.T) {
	m := newMachine(
		clause(comp("p", atom("a"))),
		clause(comp("q", atom("b"))),
	)
	ok, _, err := m.Execute(comp(",", comp("p", atom("a")), comp("q", atom("b"))))
	if err != nil || !ok {
		t.Fatalf("p(a), q(b) = (%v, %v), want (true, nil)", ok, err)
	}

	ok, _, err = m.Execute(comp(";", comp("p", atom("x")), comp("q", atom("b"))))
	if err != nil || !ok {
		t.Fatalf("p(x) ; q(b) = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestUndefinedPredicateAborts(t *testing.T) {
	m := newMachine()
	_, _, err := m.Execute(comp("nonexistent", atom("a")))
	if err == nil {
		t.Fatal("Execute(nonexistent/1) = nil error, want undefined-predicate error")
	}
}
