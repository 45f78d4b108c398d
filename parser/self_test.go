package parser

import "testing"

// TestParseRoundTrip checks that printing a parsed clause and parsing the
// printed text back produces the same clause, the closest analogue this
// package has to the original self-hosting grammar test now that there is
// no more Prolog-source grammar to embed and reparse.
func TestParseRoundTrip(t *testing.T) {
	srcs := []string{
		`parent(tom, bob).`,
		`grandparent(X, Z) :- parent(X, Y), parent(Y, Z).`,
		`edge(a, b). edge(b, c). path(X, Y) :- edge(X, Y). path(X, Z) :- edge(X, Y), path(Y, Z).`,
		`sum(X, Y, Z) :- Z is X + Y.`,
		`cut_test(X) :- member(X, [1, 2, 3]), !.`,
	}
	for _, src := range srcs {
		clauses, err := ParseClauses(src)
		if err != nil {
			t.Fatalf("%q: got err: %v", src, err)
		}
		for _, c := range clauses {
			printed := c.String()
			reparsed, err := ParseClauses(printed)
			if err != nil {
				t.Fatalf("%q printed as %q, which failed to reparse: %v", src, printed, err)
			}
			if len(reparsed) != 1 {
				t.Fatalf("%q printed as %q, which parsed back into %d clauses, want 1", src, printed, len(reparsed))
			}
			if got, want := reparsed[0].String(), printed; got != want {
				t.Errorf("%q: round trip not stable: printed %q, reparsed+printed %q", src, want, got)
			}
		}
	}
}
