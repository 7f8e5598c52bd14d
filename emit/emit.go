// Package emit is the target-agnostic code-emission framework: a driver
// that walks an action/goto table in a canonical, deterministic order and
// issues structured callbacks to a backend Visitor that materialises the
// parser source text.
package emit

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/pool"
	"github.com/dekarrin/lrgen/table"
)

// Ctx is passed to every Visitor callback. It carries read-only access to
// the grammar so backends can resolve pool IDs to names; callbacks must not
// retain Ctx past the call.
type Ctx struct {
	Grammar *grammar.Grammar
}

// GotoEdge is one (from, to) pair for a single non-terminal's goto table.
type GotoEdge struct {
	From automaton.Uid
	To   automaton.Uid
}

// Visitor is the fixed set of callbacks a backend implements to realise the
// emission contract. The framework guarantees each callback fires at most
// the documented number of times per state, and that VisitReduce always
// supplies both the rule id and the full rhs.
type Visitor interface {
	// BeforeEnter emits the preamble (type declarations, parser prelude).
	// Called exactly once, before anything else.
	BeforeEnter(ctx *Ctx, w *bytes.Buffer, allStates []automaton.Uid) error
	// AfterLeave emits the postamble. Called exactly once, last.
	AfterLeave(ctx *Ctx, w *bytes.Buffer, allStates []automaton.Uid) error

	// BeginParseLoop/EndParseLoop wrap the dispatch loop, called once each.
	BeginParseLoop(ctx *Ctx, w *bytes.Buffer) error
	EndParseLoop(ctx *Ctx, w *bytes.Buffer) error

	// EnterState/LeaveState bracket one state's code, called once per state.
	EnterState(ctx *Ctx, w *bytes.Buffer, state automaton.Uid) error
	LeaveState(ctx *Ctx, w *bytes.Buffer, state automaton.Uid) error

	// EnterMatch/LeaveMatch bracket one match arm for one terminal/Eof.
	EnterMatch(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error
	LeaveMatch(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error

	// VisitShift emits a shift action; always between EnterMatch/LeaveMatch.
	VisitShift(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, nextState automaton.Uid) error
	// VisitReduce emits a reduction: pop len(expansion) frames, bind each
	// popped value by 0-indexed position (v0, v1, ...), splice the rule's
	// code, push the result tagged by rule, then follow goto[rule] from the
	// state now on top. Always between EnterMatch/LeaveMatch.
	VisitReduce(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, rule pool.ID, expansion []grammar.Token) error
	// MatchingError emits the fallthrough error branch for a state, with
	// the set of terminals/Eof that do have an action there.
	MatchingError(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, expected []grammar.Token) error

	// VisitGoto emits one goto function/table for a single non-terminal.
	// gotos is supplied already sorted by From (ascending).
	VisitGoto(ctx *Ctx, w *bytes.Buffer, symbol pool.ID, gotos []GotoEdge) error
}

// uidComparator adapts automaton.Uid's ordering to gods' Comparator
// contract, used below to realise the ascending-from-uid ordering within a
// single non-terminal's goto listing.
func uidComparator(a, b interface{}) int {
	return utils.IntComparator(int(a.(automaton.Uid)), int(b.(automaton.Uid)))
}

// Render walks t in canonical order and drives v's callbacks, returning the
// accumulated output.
//
// Ordering rules, enforced here (backends re-sort nothing but the names in
// their MatchingError expected lists, which they order alphabetically):
//   - States are visited in ascending uid.
//   - Within a state, actions keyed by terminal/Eof are visited in Token's
//     total order.
//   - Goto entries are aggregated across all states into
//     non-terminal -> (from-uid -> to-uid), then emitted in ascending
//     non-terminal order with inner pairs sorted by from-uid.
func Render(v Visitor, t *table.Table, g *grammar.Grammar) (string, error) {
	ctx := &Ctx{Grammar: g}
	var buf bytes.Buffer

	allStates := t.States()

	if err := v.BeforeEnter(ctx, &buf, allStates); err != nil {
		return "", fmt.Errorf("emit: before_enter: %w", err)
	}

	// Aggregate gotos across all states into non-terminal -> ordered set of
	// from-uids, so each non-terminal gets one standalone lookup rather than
	// a goto scattered across every state's own block.
	gotosBySymbol := make(map[pool.ID]*treeset.Set)
	toByFromSymbol := make(map[pool.ID]map[automaton.Uid]automaton.Uid)
	for _, uid := range allStates {
		entry, _ := t.Entry(uid)
		for sym, to := range entry.Gotos {
			if gotosBySymbol[sym] == nil {
				gotosBySymbol[sym] = treeset.NewWith(uidComparator)
				toByFromSymbol[sym] = make(map[automaton.Uid]automaton.Uid)
			}
			gotosBySymbol[sym].Add(uid)
			toByFromSymbol[sym][uid] = to
		}
	}
	var symbols []pool.ID
	for sym := range gotosBySymbol {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })

	for _, sym := range symbols {
		var edges []GotoEdge
		for _, v := range gotosBySymbol[sym].Values() {
			from := v.(automaton.Uid)
			edges = append(edges, GotoEdge{From: from, To: toByFromSymbol[sym][from]})
		}
		if err := v.VisitGoto(ctx, &buf, sym, edges); err != nil {
			return "", fmt.Errorf("emit: visit_goto(%v): %w", sym, err)
		}
	}

	if err := v.BeginParseLoop(ctx, &buf); err != nil {
		return "", fmt.Errorf("emit: begin_parse_loop: %w", err)
	}

	for _, uid := range allStates {
		entry, _ := t.Entry(uid)

		if err := v.EnterState(ctx, &buf, uid); err != nil {
			return "", fmt.Errorf("emit: enter_state(%d): %w", uid, err)
		}

		var toks []grammar.Token
		for tok := range entry.Actions {
			toks = append(toks, tok)
		}
		sort.Slice(toks, func(i, j int) bool { return toks[i].Less(toks[j]) })

		for _, tok := range toks {
			act := entry.Actions[tok]

			if err := v.EnterMatch(ctx, &buf, uid, tok); err != nil {
				return "", fmt.Errorf("emit: enter_match(%d,%v): %w", uid, tok, err)
			}

			var err error
			switch act.Kind {
			case table.Shift:
				err = v.VisitShift(ctx, &buf, uid, tok, act.ShiftTo)
			case table.Reduce:
				err = v.VisitReduce(ctx, &buf, uid, tok, act.Rule, act.Expansion)
			}
			if err != nil {
				return "", fmt.Errorf("emit: action(%d,%v): %w", uid, tok, err)
			}

			if err := v.LeaveMatch(ctx, &buf, uid, tok); err != nil {
				return "", fmt.Errorf("emit: leave_match(%d,%v): %w", uid, tok, err)
			}
		}

		if err := v.MatchingError(ctx, &buf, uid, toks); err != nil {
			return "", fmt.Errorf("emit: matching_error(%d): %w", uid, err)
		}

		if err := v.LeaveState(ctx, &buf, uid); err != nil {
			return "", fmt.Errorf("emit: leave_state(%d): %w", uid, err)
		}
	}

	if err := v.EndParseLoop(ctx, &buf); err != nil {
		return "", fmt.Errorf("emit: end_parse_loop: %w", err)
	}

	if err := v.AfterLeave(ctx, &buf, allStates); err != nil {
		return "", fmt.Errorf("emit: after_leave: %w", err)
	}

	return buf.String(), nil
}
