package clausedb_test

import (
	"strings"
	"testing"

	"github.com/sesam/prologcoin/clausedb"
	"github.com/sesam/prologcoin/logic"
)

func atom(name string) logic.Term { return logic.Atom{Name: name} }
func var_(name string) logic.Term { return logic.NewVar(name) }
func int_(v int) logic.Term       { return logic.Int{Value: v} }
func comp(f string, args ...logic.Term) *logic.Comp {
	return logic.NewComp(f, args...)
}

func TestAssertPreservesLoadOrder(t *testing.T) {
	db := clausedb.New()
	c1 := logic.NewClause(comp("foo", int_(1)))
	c2 := logic.NewClause(comp("foo", int_(2)))
	if err := db.AssertAll([]*logic.Clause{c1, c2}); err != nil {
		t.Fatalf("AssertAll: %v", err)
	}
	ind := logic.Indicator{Name: "foo", Arity: 1}
	got := db.Clauses(ind)
	if len(got) != 2 {
		t.Fatalf("Clauses(foo/1) len = %d, want 2", len(got))
	}
	n1, ok1 := got[0].Head.(*logic.Comp).Args[0].(logic.Int)
	n2, ok2 := got[1].Head.(*logic.Comp).Args[0].(logic.Int)
	if !ok1 || !ok2 || n1.Value != 1 || n2.Value != 2 {
		t.Errorf("clause order not preserved: %v, %v", got[0], got[1])
	}
}

func TestIndicatorsInFirstSeenOrder(t *testing.T) {
	db := clausedb.New()
	db.Assert(logic.NewClause(comp("b", int_(1))))
	db.Assert(logic.NewClause(comp("a", int_(1))))
	db.Assert(logic.NewClause(comp("b", int_(2))))

	got := db.Indicators()
	want := []logic.Indicator{{Name: "b", Arity: 1}, {Name: "a", Arity: 1}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Indicators() = %v, want %v", got, want)
	}
}

func TestCandidatesFirstArgumentIndexing(t *testing.T) {
	db := clausedb.New()
	db.Assert(logic.NewClause(comp("p", atom("a")), atom("first")))
	db.Assert(logic.NewClause(comp("p", atom("b")), atom("second")))
	db.Assert(logic.NewClause(comp("p", var_("X")), atom("catchall")))

	ind := logic.Indicator{Name: "p", Arity: 1}
	got := db.Candidates(ind, atom("a"))
	if len(got) != 2 {
		t.Fatalf("Candidates(p(a)) len = %d, want 2 (the a-clause and the var-clause)", len(got))
	}
	for _, c := range got {
		if arg, ok := c.Head.(*logic.Comp).Args[0].(logic.Atom); ok && arg.Name == "b" {
			t.Errorf("Candidates(p(a)) included the b-clause: %v", c)
		}
	}
}

func TestCandidatesUnboundCallArgKeepsEverything(t *testing.T) {
	db := clausedb.New()
	db.Assert(logic.NewClause(comp("p", atom("a"))))
	db.Assert(logic.NewClause(comp("p", atom("b"))))

	ind := logic.Indicator{Name: "p", Arity: 1}
	got := db.Candidates(ind, var_("X"))
	if len(got) != 2 {
		t.Errorf("Candidates(p(X)) len = %d, want 2", len(got))
	}
}

func TestPrintDB(t *testing.T) {
	db := clausedb.New()
	db.Assert(logic.NewClause(comp("foo", int_(1))))

	var buf strings.Builder
	db.PrintDB(&buf)
	if !strings.Contains(buf.String(), "foo/1") {
		t.Errorf("PrintDB output missing foo/1 header: %q", buf.String())
	}
}
