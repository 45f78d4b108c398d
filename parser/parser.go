package parser

import (
	"fmt"

	"github.com/sesam/prologcoin/logic"
)

// assoc is an operator's associativity/arity shape, following the classic
// xfx/xfy/yfx (infix) and fy/fx (prefix) notation: x means "strictly lower
// priority", y means "at most this priority".
type assoc int

const (
	xfx assoc = iota
	xfy
	yfx
	fy
	fx
)

type opDef struct {
	priority int
	kind     assoc
}

// infixOps and prefixOps are independent tables because a handful of atoms
// (notably "-" and "+") are both, depending on position.
var infixOps = map[string]opDef{
	":-":   {1200, xfx},
	"-->":  {1200, xfx},
	";":    {1100, xfy},
	"->":   {1050, xfy},
	",":    {1000, xfy},
	"=":    {700, xfx},
	"\\=":  {700, xfx},
	"==":   {700, xfx},
	"\\==": {700, xfx},
	"@<":   {700, xfx},
	"@=<":  {700, xfx},
	"@>":   {700, xfx},
	"@>=":  {700, xfx},
	"is":   {700, xfx},
	"=..":  {700, xfx},
	"+":    {500, yfx},
	"-":    {500, yfx},
	"*":    {400, yfx},
	"//":   {400, yfx},
	"mod":  {400, yfx},
}

var prefixOps = map[string]opDef{
	"\\+": {900, fy},
	"-":   {200, fy},
	"+":   {200, fy},
}

type parser struct {
	toks []token
	pos  int
}

func newParser(src string) (*parser, error) {
	toks, err := newLexer(src).tokenize()
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks}, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expectPunct(text string) error {
	t := p.next()
	if t.kind != tokPunct || t.text != text {
		return fmt.Errorf("parser: expected %q, got %q", text, t.text)
	}
	return nil
}

// Parse reads a single term, optionally followed by a terminating '.', the
// entry point for one-off term construction (queries, REPL input, test
// fixtures).
func Parse(src string) (logic.Term, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	term, err := p.parseExpr(1200)
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEnd && p.peek().kind != tokEOF {
		return nil, fmt.Errorf("parser: unexpected token %q after term", p.peek().text)
	}
	return term, nil
}

// ParseQuery reads a comma-separated list of goals terminated by '.',
// splitting the top-level ',' structurally on the parsed term so that
// "foo(',')" is unaffected.
func ParseQuery(src string) ([]logic.Term, error) {
	term, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return flattenConj(term), nil
}

func flattenConj(t logic.Term) []logic.Term {
	if c, ok := t.(*logic.Comp); ok && c.Functor == "," && len(c.Args) == 2 {
		return append(flattenConj(c.Args[0]), flattenConj(c.Args[1])...)
	}
	return []logic.Term{t}
}

// ParseClauses reads a sequence of '.'-terminated clauses, each either a
// fact (a bare head term) or a rule ("head :- body.").
func ParseClauses(src string) ([]*logic.Clause, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	var clauses []*logic.Clause
	for p.peek().kind != tokEOF {
		term, err := p.parseExpr(1200)
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokEnd {
			return nil, fmt.Errorf("parser: expected '.' after clause, got %q", p.peek().text)
		}
		p.next()
		clauses = append(clauses, clauseFromTerm(term))
	}
	return clauses, nil
}

func clauseFromTerm(term logic.Term) *logic.Clause {
	if c, ok := term.(*logic.Comp); ok && c.Functor == ":-" && len(c.Args) == 2 {
		return logic.NewClause(c.Args[0], flattenConj(c.Args[1])...)
	}
	return logic.NewClause(term)
}

// parseExpr parses an operator expression of priority at most maxPrec,
// using the standard Prolog precedence-climbing algorithm: a primary term
// (possibly itself led by a prefix operator) followed by zero or more
// infix operators whose priority fits under maxPrec.
func (p *parser) parseExpr(maxPrec int) (logic.Term, error) {
	left, leftPrec, err := p.parsePrimary(maxPrec)
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokAtom && !(t.kind == tokPunct && t.text == ",") {
			break
		}
		def, ok := infixOps[t.text]
		if !ok || def.priority > maxPrec {
			break
		}
		leftMax := def.priority - 1
		rightMax := def.priority - 1
		if def.kind == yfx {
			leftMax = def.priority
		}
		if def.kind == xfy {
			rightMax = def.priority
		}
		if leftPrec > leftMax {
			break
		}
		p.next()
		right, err := p.parseExpr(rightMax)
		if err != nil {
			return nil, err
		}
		left = logic.NewComp(t.text, left, right)
		leftPrec = def.priority
	}
	return left, nil
}

// parsePrimary parses a single operand: either a prefix-operator
// application or a plain primary term. It returns the term's own priority,
// needed by the caller to enforce left-associativity constraints.
func (p *parser) parsePrimary(maxPrec int) (logic.Term, int, error) {
	t := p.peek()
	if t.kind == tokAtom {
		if def, ok := prefixOps[t.text]; ok && def.priority <= maxPrec && p.startsOperand(p.pos+1) &&
			!(p.toks[p.pos+1].kind == tokPunct && p.toks[p.pos+1].text == "(" && p.toks[p.pos+1].immediate) {
			// A prefix minus directly against an integer literal folds
			// into a negative literal instead of a "-"(N) compound.
			if t.text == "-" && p.toks[p.pos+1].kind == tokInt {
				p.next()
				it := p.next()
				return logic.Int{Value: -it.ival}, 0, nil
			}
			p.next()
			argMax := def.priority
			if def.kind == fx {
				argMax--
			}
			arg, err := p.parseExpr(argMax)
			if err != nil {
				return nil, 0, err
			}
			return logic.NewComp(t.text, arg), def.priority, nil
		}
	}
	term, err := p.parsePrimaryTerm()
	return term, 0, err
}

// startsOperand reports whether the token at idx can begin an operand,
// used to decide whether an atom that is also a prefix operator ("-", "+")
// should be read as that operator or as a bare atom (e.g. a trailing "-"
// right before ')' is an atom, not a dangling prefix operator).
func (p *parser) startsOperand(idx int) bool {
	if idx >= len(p.toks) {
		return false
	}
	t := p.toks[idx]
	switch t.kind {
	case tokAtom:
		if t.text == "," {
			return false
		}
		if _, ok := infixOps[t.text]; ok {
			_, isPrefixToo := prefixOps[t.text]
			return isPrefixToo
		}
		return true
	case tokVar, tokInt, tokString:
		return true
	case tokPunct:
		return t.text == "(" || t.text == "[" || t.text == "{"
	default:
		return false
	}
}

// parsePrimaryTerm parses an atom, number, variable, compound, list,
// string literal or parenthesized expression, with no operator handling.
func (p *parser) parsePrimaryTerm() (logic.Term, error) {
	t := p.next()
	switch t.kind {
	case tokInt:
		return logic.Int{Value: t.ival}, nil
	case tokVar:
		return logic.NewVar(t.text), nil
	case tokString:
		return stringToCharList(t.text), nil
	case tokAtom:
		if p.peek().kind == tokPunct && p.peek().text == "(" && p.peek().immediate {
			p.next()
			if p.peek().kind == tokPunct && p.peek().text == ")" {
				p.next()
				return logic.NewComp(t.text), nil
			}
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return logic.NewComp(t.text, args...), nil
		}
		return logic.Atom{Name: t.text}, nil
	case tokPunct:
		switch t.text {
		case "(":
			term, err := p.parseExpr(1200)
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return term, nil
		case "[":
			return p.parseList()
		case "{":
			if p.peek().kind == tokPunct && p.peek().text == "}" {
				p.next()
				return logic.Atom{Name: "{}"}, nil
			}
			term, err := p.parseExpr(1200)
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("}"); err != nil {
				return nil, err
			}
			return logic.NewComp("{}", term), nil
		}
	}
	return nil, fmt.Errorf("parser: unexpected token %q", t.text)
}

func (p *parser) parseArgList() ([]logic.Term, error) {
	var args []logic.Term
	for {
		arg, err := p.parseExpr(999)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t := p.next()
		if t.kind == tokPunct && t.text == ")" {
			return args, nil
		}
		if t.kind != tokPunct || t.text != "," {
			return nil, fmt.Errorf("parser: expected ',' or ')' in argument list, got %q", t.text)
		}
		// A trailing comma right before ')' is tolerated.
		if p.peek().kind == tokPunct && p.peek().text == ")" {
			p.next()
			return args, nil
		}
	}
}

func (p *parser) parseList() (logic.Term, error) {
	if p.peek().kind == tokPunct && p.peek().text == "]" {
		p.next()
		return logic.EmptyList, nil
	}
	var elems []logic.Term
	tail := logic.Term(logic.EmptyList)
	for {
		elem, err := p.parseExpr(999)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		t := p.next()
		switch {
		case t.kind == tokPunct && t.text == "]":
			return logic.NewIncompleteList(elems, tail), nil
		case t.kind == tokPunct && t.text == ",":
			if p.peek().kind == tokPunct && p.peek().text == "]" {
				p.next()
				return logic.NewIncompleteList(elems, tail), nil
			}
			if p.peek().kind == tokPunct && p.peek().text == "|" {
				p.next()
				tail, err = p.parseExpr(999)
				if err != nil {
					return nil, err
				}
				if err := p.expectPunct("]"); err != nil {
					return nil, err
				}
				return logic.NewIncompleteList(elems, tail), nil
			}
			continue
		case t.kind == tokPunct && t.text == "|":
			tail, err = p.parseExpr(999)
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			return logic.NewIncompleteList(elems, tail), nil
		default:
			return nil, fmt.Errorf("parser: expected ',', '|' or ']' in list, got %q", t.text)
		}
	}
}

func stringToCharList(s string) logic.Term {
	runes := []rune(s)
	terms := make([]logic.Term, len(runes))
	for i, r := range runes {
		terms[i] = logic.Atom{Name: string(r)}
	}
	return logic.NewList(terms...)
}
