// Package automaton builds the canonical collection of LR(1) item sets for
// a grammar.Grammar: the closure and goto operators, state deduplication,
// and the resulting transition graph.
package automaton

import (
	"sort"

	"github.com/cnf/structhash"

	"github.com/dekarrin/lrgen/grammar"
)

// Uid names a state of the item-set graph. UIDs are assigned monotonically
// starting at 1 as new distinct sets are discovered; state 1 is always the
// start state.
type Uid int

// Less gives Uid a total order for deterministic iteration.
func (u Uid) Less(other Uid) bool { return u < other }

// Transition records the destination state and the symbol that labels the
// edge to it.
type Transition struct {
	To    Uid
	Label grammar.Token
}

// State is one node of the graph: its closure-closed item set, plus its
// outgoing transitions keyed by destination uid.
type State struct {
	Items       grammar.ItemSet
	Transitions map[Uid]grammar.Token
}

// Graph is the canonical collection of LR(1) states plus their transitions.
// It is built once by Build and is immutable thereafter.
type Graph struct {
	states map[Uid]*State
	start  Uid
}

// Start returns the uid of the start state (always 1 once the graph has at
// least one state).
func (g *Graph) Start() Uid { return g.start }

// States returns every uid in the graph, in ascending order -- the order
// the emission driver walks them in.
func (g *Graph) States() []Uid {
	out := make([]Uid, 0, len(g.states))
	for uid := range g.states {
		out = append(out, uid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// State returns the State recorded under uid, and whether it exists.
func (g *Graph) State(uid Uid) (*State, bool) {
	s, ok := g.states[uid]
	return s, ok
}

// Closure repeatedly extends S: for each item whose After begins with a
// non-terminal N followed by delta, it computes FIRST(delta), substitutes
// the item's own lookahead wherever that FIRST set contains Empty, and adds
// every N-initial item with the resulting lookahead. It is a pure function
// of (g, S) and terminates because the universe of items over g is finite.
func Closure(g *grammar.Grammar, s grammar.ItemSet) grammar.ItemSet {
	out := s.Copy()

	for changed := true; changed; {
		changed = false
		for _, item := range out.Sorted() {
			sym, ok := item.NextSymbol()
			if !ok || !sym.IsNonTerm() {
				continue
			}

			delta := item.After[1:]
			lookahead := g.First(delta)
			if lookahead.Has(grammar.Empty) {
				lookahead = lookahead.Without(grammar.Empty)
				for _, la := range item.Lookahead.Slice() {
					lookahead.Add(la)
				}
			}

			for _, init := range g.Initial(sym.ID) {
				init.Lookahead = lookahead
				if out.Add(init) {
					changed = true
				}
			}
		}
	}

	return out
}

// Goto returns the set of items obtained by advancing the dot past X in
// every item of S whose After begins with X. The caller is responsible for
// closing the result; Build composes Closure and Goto.
func Goto(s grammar.ItemSet, x grammar.Token) grammar.ItemSet {
	var out grammar.ItemSet
	for _, item := range s.Sorted() {
		sym, ok := item.NextSymbol()
		if !ok || !sym.Equal(x) {
			continue
		}
		out.Add(item.Advance())
	}
	return out
}

// outEdges returns, in Token order, every distinct symbol that appears
// immediately after some item's dot in s.
func outEdges(s grammar.ItemSet) []grammar.Token {
	var set grammar.TokenSet
	for _, item := range s.Sorted() {
		if sym, ok := item.NextSymbol(); ok {
			set.Add(sym)
		}
	}
	return set.Slice()
}

// Build computes the canonical LR(1) collection starting from seed (which
// Build closes itself before numbering it) and returns the resulting Graph. The traversal
// order is a depth-first walk; state 1 is always the start state, and which
// order siblings are discovered in doesn't affect the resulting graph.
func Build(g *grammar.Grammar, seed grammar.ItemSet) *Graph {
	graph := &Graph{states: make(map[Uid]*State)}
	byKey := make(map[string]Uid)
	// hashBuckets narrows candidate states sharing a structural hash before
	// the authoritative ItemSet.Equal check runs, so dedup doesn't cost an
	// O(n) scan of every prior state on each new candidate.
	hashBuckets := make(map[string][]Uid)
	nextUid := Uid(1)

	var visit func(items grammar.ItemSet) Uid
	visit = func(items grammar.ItemSet) Uid {
		closed := Closure(g, items)
		key := closed.Key()

		if uid, ok := byKey[key]; ok {
			return uid
		}

		bucket := stateHash(closed)
		for _, candidate := range hashBuckets[bucket] {
			if graph.states[candidate].Items.Equal(closed) {
				byKey[key] = candidate
				return candidate
			}
		}

		uid := nextUid
		nextUid++
		graph.states[uid] = &State{Items: closed, Transitions: make(map[Uid]grammar.Token)}
		byKey[key] = uid
		hashBuckets[bucket] = append(hashBuckets[bucket], uid)

		for _, edge := range outEdges(closed) {
			advanced := Goto(closed, edge)
			next := visit(advanced)
			graph.states[uid].Transitions[next] = edge
		}

		return uid
	}

	graph.start = visit(seed)
	return graph
}

// stateHash computes a structural hash of the item set's sorted full LR(1)
// item keys (lookaheads included), used
// purely to bucket candidates before the authoritative equality check; a
// collision only costs an extra comparison; it never causes an incorrect
// merge because Equal is always the final word.
func stateHash(s grammar.ItemSet) string {
	keys := make([]string, 0, s.Len())
	for _, it := range s.Sorted() {
		keys = append(keys, it.HashKey())
	}
	h, err := structhash.Hash(keys, 1)
	if err != nil {
		// structhash only fails on unsupported reflect kinds; a []string
		// is always hashable, so this is unreachable in practice.
		panic(err)
	}
	return h
}
