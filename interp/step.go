package interp

import (
	"time"

	pcerrors "github.com/sesam/prologcoin/errors"
	"github.com/sesam/prologcoin/logic"
	"github.com/sesam/prologcoin/term"
)

// step dispatches the goal at the head of f: control constructs and
// builtins run directly, user predicates push a choice point (if they
// have more than one candidate clause) and try the first alternative. It
// mutates m.cont/m.cps on success; a false return (with nil error) means
// the goal failed outright and the caller should backtrack.
func (m *Machine) step(f *frame) (bool, error) {
	h := m.Env.Heap
	goal := h.Deref(f.goal)
	ind, err := indicatorOf(h, goal)
	if err != nil {
		return false, err
	}

	switch {
	case ind == indTrue:
		m.cont = f.next
		return true, nil
	case ind == indFail || ind == indFalse:
		return false, nil
	case ind == indCut:
		m.cps = m.cps[:f.cutBarrier]
		m.cont = f.next
		return true, nil
	case ind == indComma:
		args := argsOf(h, goal)
		m.cont = &frame{goal: args[0], cutBarrier: f.cutBarrier,
			next: &frame{goal: args[1], next: f.next, cutBarrier: f.cutBarrier}}
		return true, nil
	case ind == indSemicolon:
		return m.stepDisjunction(goal, f)
	case ind == indArrow:
		args := argsOf(h, goal)
		return m.stepIfThenElse(args[0], args[1], h.InternAtom("fail"), f)
	case ind == indNegation:
		return m.stepNegation(goal, f)
	case ind == indCommit:
		boundary := int(h.Deref(argsOf(h, goal)[0]).Int())
		m.cps = m.cps[:boundary]
		m.cont = f.next
		return true, nil
	}

	if m.profiling {
		start := time.Now()
		defer m.recordProfile(ind, start)
	}

	if bi, ok := m.builtins[ind]; ok {
		ok2, err := bi(m, argsOf(h, goal))
		if err != nil {
			return false, err
		}
		if !ok2 {
			return false, nil
		}
		m.cont = f.next
		return true, nil
	}

	var discriminator logic.Term
	if args := argsOf(h, goal); len(args) > 0 {
		discriminator = discriminatorTerm(h, args[0])
	}
	candidates := m.DB.Candidates(ind, discriminator)
	if len(candidates) == 0 {
		if !m.DB.Defined(ind) {
			return false, pcerrors.Newf(pcerrors.UndefinedPredicate, "undefined predicate: %s/%d", ind.Name, ind.Arity)
		}
		return false, nil
	}

	trailMark := m.Env.PushChoicePoint()
	cp := &choicePoint{
		kind:       altClauses,
		candidates: candidates,
		callGoal:   goal,
		cont:       f.next,
		cutBarrier: f.cutBarrier,
		trailMark:  trailMark,
	}
	pos := len(m.cps)
	m.cps = append(m.cps, cp)

	body, ok := m.tryNextClause(cp)
	if !ok {
		m.cps = m.cps[:pos]
		m.Env.Release(trailMark)
		return false, nil
	}
	if cp.idx >= len(cp.candidates) {
		m.cps = m.cps[:pos]
		m.Env.Release(trailMark)
	}
	m.cont = bodyFrameChain(body, f.next, pos)
	return true, nil
}

// stepDisjunction handles ';'/2, recognizing an embedded '->'/2 on the
// left as an if-then-else rather than a plain disjunction.
func (m *Machine) stepDisjunction(goal term.Cell, f *frame) (bool, error) {
	h := m.Env.Heap
	args := argsOf(h, goal)
	left, right := h.Deref(args[0]), args[1]

	if left.Tag() == term.STR {
		header := h.Get(left.StrIndex())
		id, arity := header.Functor()
		name, _ := h.Name(id)
		if name == "->" && arity == 2 {
			condThen := argsOf(h, left)
			return m.stepIfThenElse(condThen[0], condThen[1], right, f)
		}
	}

	trailMark := m.Env.PushChoicePoint()
	m.cps = append(m.cps, &choicePoint{
		kind:       altGoal,
		goal:       right,
		cont:       f.next,
		cutBarrier: f.cutBarrier,
		trailMark:  trailMark,
	})
	m.cont = &frame{goal: left, next: f.next, cutBarrier: f.cutBarrier}
	return true, nil
}

// stepIfThenElse runs cond with its own local cut barrier; on its first
// success, a synthetic $ite_commit goal prunes the else-alternative (and
// anything cond itself pushed) before running then. If cond never
// succeeds, backtracking into the else-alternative runs els instead.
func (m *Machine) stepIfThenElse(cond, then, els term.Cell, f *frame) (bool, error) {
	boundary := len(m.cps)
	trailMark := m.Env.PushChoicePoint()
	m.cps = append(m.cps, &choicePoint{
		kind:       altGoal,
		goal:       els,
		cont:       f.next,
		cutBarrier: f.cutBarrier,
		trailMark:  trailMark,
	})
	commit := m.commitGoal(boundary)
	m.cont = &frame{
		goal:       cond,
		cutBarrier: boundary,
		next: &frame{
			goal:       commit,
			cutBarrier: f.cutBarrier,
			next: &frame{
				goal:       then,
				next:       f.next,
				cutBarrier: f.cutBarrier,
			},
		},
	}
	return true, nil
}

// commitGoal builds the synthetic $ite_commit(Boundary) goal used by
// stepIfThenElse to prune choice points once cond has succeeded.
func (m *Machine) commitGoal(boundary int) term.Cell {
	h := m.Env.Heap
	str, first := h.PushStruct("$ite_commit", 1)
	h.Set(first, term.NewInt(int64(boundary)))
	return str
}

// stepNegation implements \+/1 (negation as failure): goal is proved at
// most once in an isolated sub-search whose bindings are always undone,
// regardless of outcome; \+ succeeds only if that sub-search fails.
func (m *Machine) stepNegation(goal term.Cell, f *frame) (bool, error) {
	h := m.Env.Heap
	arg := argsOf(h, goal)[0]
	ok, err := m.proveOnceDiscardingBindings(arg)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	m.cont = f.next
	return true, nil
}

// proveOnceDiscardingBindings runs goal to its first solution (if any) in
// an isolated region of the choice-point stack, then always undoes any
// bindings it made and discards any choice points it created, leaving the
// machine's outer state exactly as it found it except for the boolean
// result.
func (m *Machine) proveOnceDiscardingBindings(goal term.Cell) (bool, error) {
	boundary := len(m.cps)
	mark := m.Env.PushChoicePoint()
	savedCont := m.cont
	m.cont = &frame{goal: goal, next: nil, cutBarrier: boundary}

	ok, err := m.runLoop(boundary)

	m.cps = m.cps[:boundary]
	m.Env.Undo(mark)
	m.cont = savedCont
	return ok, err
}

var (
	indTrue      = logic.Indicator{Name: "true", Arity: 0}
	indFail      = logic.Indicator{Name: "fail", Arity: 0}
	indFalse     = logic.Indicator{Name: "false", Arity: 0}
	indCut       = logic.Indicator{Name: "!", Arity: 0}
	indComma     = logic.Indicator{Name: ",", Arity: 2}
	indSemicolon = logic.Indicator{Name: ";", Arity: 2}
	indArrow     = logic.Indicator{Name: "->", Arity: 2}
	indNegation  = logic.Indicator{Name: "\\+", Arity: 1}
	indCommit    = logic.Indicator{Name: "$ite_commit", Arity: 1}
)
