// Package table converts an automaton.Graph into a per-state action/goto
// table, detecting shift/reduce and reduce/reduce conflicts along the way.
package table

import (
	"fmt"
	"sort"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/pool"
)

// ActionKind discriminates the two Action variants.
type ActionKind uint8

const (
	// Shift moves to another state without reducing.
	Shift ActionKind = iota
	// Reduce pops len(Expansion) frames and reduces to Rule.
	Reduce
)

// Action is either Shift(uid) or Reduce(rule, expansion).
type Action struct {
	Kind      ActionKind
	ShiftTo   automaton.Uid
	Rule      pool.ID
	Expansion []grammar.Token
}

// Display renders the action for diagnostics.
func (a Action) Display(p *pool.Pool) string {
	switch a.Kind {
	case Shift:
		return fmt.Sprintf("s%d", a.ShiftTo)
	case Reduce:
		var rhs string
		for _, t := range a.Expansion {
			rhs += " " + t.Display(p)
		}
		return fmt.Sprintf("%s ->%s", p.Get(a.Rule), rhs)
	default:
		return "?"
	}
}

// Conflict reports a shift/reduce or reduce/reduce ambiguity detected while
// synthesising the table for State on Token: Either was already recorded,
// Or is the newly discovered, conflicting action. There is never an
// implicit tie-break: any Conflict aborts synthesis.
type Conflict struct {
	State  automaton.Uid
	Token  grammar.Token
	Either Action
	Or     Action
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("conflict in state %d on token: two actions claim the same (state, token) pair", c.State)
}

// Kind reports whether c is a shift/reduce or a reduce/reduce conflict.
func (c *Conflict) Kind() string {
	if c.Either.Kind == Shift || c.Or.Kind == Shift {
		return "shift/reduce"
	}
	return "reduce/reduce"
}

// Entry is one state's row: its action table (keyed by terminal/Eof) and
// its goto table (keyed by non-terminal).
type Entry struct {
	Actions map[grammar.Token]Action
	Gotos   map[pool.ID]automaton.Uid
}

// Table maps every graph uid to its Entry.
type Table struct {
	entries map[automaton.Uid]Entry
}

// Entry returns the row for uid.
func (t *Table) Entry(uid automaton.Uid) (Entry, bool) {
	e, ok := t.entries[uid]
	return e, ok
}

// States returns every uid with a row, in ascending order.
func (t *Table) States() []automaton.Uid {
	out := make([]automaton.Uid, 0, len(t.entries))
	for uid := range t.entries {
		out = append(out, uid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Synthesize builds a Table from g, returning the first conflict
// encountered (states in ascending uid; within a state, shifts in Token
// order, then reductions in Item order) if the grammar is not LR(1) under
// this construction.
//
// Reduce/reduce conflicts are always reported, never silently resolved by
// last-write-wins -- every reduction is checked against what's already
// claimed that (state, token) pair before it is inserted, whether the
// rival action is a shift or another reduce.
func Synthesize(g *automaton.Graph) (*Table, *Conflict) {
	t := &Table{entries: make(map[automaton.Uid]Entry)}

	for _, uid := range g.States() {
		state, _ := g.State(uid)

		entry := Entry{
			Actions: make(map[grammar.Token]Action),
			Gotos:   make(map[pool.ID]automaton.Uid),
		}

		// Sort transitions for deterministic conflict reporting across runs.
		type trans struct {
			to    automaton.Uid
			label grammar.Token
		}
		var transitions []trans
		for to, label := range state.Transitions {
			transitions = append(transitions, trans{to, label})
		}
		sort.Slice(transitions, func(i, j int) bool {
			if transitions[i].label != transitions[j].label {
				return transitions[i].label.Less(transitions[j].label)
			}
			return transitions[i].to < transitions[j].to
		})

		for _, tr := range transitions {
			switch tr.label.Kind {
			case grammar.KindTerm, grammar.KindEof:
				act := Action{Kind: Shift, ShiftTo: tr.to}
				if existing, ok := entry.Actions[tr.label]; ok {
					return nil, &Conflict{State: uid, Token: tr.label, Either: existing, Or: act}
				}
				entry.Actions[tr.label] = act
			case grammar.KindNonTerm:
				entry.Gotos[tr.label.ID] = tr.to
			}
		}

		// Reductions: one per item whose dot is at the end of its
		// production. An empty lookahead set means the start item, which
		// reduces explicitly on Eof.
		for _, item := range state.Items.Sorted() {
			if _, hasNext := item.NextSymbol(); hasNext {
				continue
			}
			act := Action{Kind: Reduce, Rule: item.Rule.ID, Expansion: append([]grammar.Token(nil), item.Before...)}

			lookaheads := item.Lookahead.Slice()
			if len(lookaheads) == 0 {
				lookaheads = []grammar.Token{grammar.Eof}
			}
			for _, la := range lookaheads {
				if existing, ok := entry.Actions[la]; ok {
					// Items sharing a core but carrying overlapping lookahead
					// sets yield the same reduction twice; that is no conflict.
					if existing.Kind == Reduce && existing.Rule == act.Rule && len(existing.Expansion) == len(act.Expansion) {
						same := true
						for i := range act.Expansion {
							if !existing.Expansion[i].Equal(act.Expansion[i]) {
								same = false
								break
							}
						}
						if same {
							continue
						}
					}
					return nil, &Conflict{State: uid, Token: la, Either: existing, Or: act}
				}
				entry.Actions[la] = act
			}
		}

		t.entries[uid] = entry
	}

	return t, nil
}
