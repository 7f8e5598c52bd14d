package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/lrgen/pool"
)

// Item is an LR(1) item: a production with a dot position (the boundary
// between Before and After) and a lookahead set holding terminals/Eof only,
// never Empty. Items are compared structurally.
type Item struct {
	Rule      Rule
	Before    []Token
	After     []Token
	Lookahead TokenSet
}

// NextSymbol returns the symbol immediately after the dot and true, or the
// zero Token and false if the dot is at the end of the production.
func (it Item) NextSymbol() (Token, bool) {
	if len(it.After) == 0 {
		return Token{}, false
	}
	return it.After[0], true
}

// Advance returns a copy of it with the dot moved one position to the
// right, past its current next symbol. It panics if called on an item whose
// dot is already at the end; callers must check NextSymbol first.
func (it Item) Advance() Item {
	if len(it.After) == 0 {
		panic("grammar: Item.Advance: dot already at end of production")
	}
	before := make([]Token, len(it.Before)+1)
	copy(before, it.Before)
	before[len(it.Before)] = it.After[0]

	after := append([]Token(nil), it.After[1:]...)

	return Item{
		Rule:      it.Rule,
		Before:    before,
		After:     after,
		Lookahead: it.Lookahead,
	}
}

// coreKey is a string uniquely identifying an item's LR(0) core (rule +
// dot position, ignoring lookahead). Two items with equal coreKey but
// different lookahead are distinct LR(1) items but the same LR(0) core;
// key (and through it HashKey, which the automaton package's
// structhash-backed dedup cache hashes) appends the lookahead to it.
func (it Item) coreKey() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|", it.Rule.ID)
	for _, t := range it.Before {
		fmt.Fprintf(&sb, "%d:%d,", t.Kind, t.ID)
	}
	sb.WriteByte('.')
	for _, t := range it.After {
		fmt.Fprintf(&sb, "%d:%d,", t.Kind, t.ID)
	}
	return sb.String()
}

// key is a string uniquely identifying the full LR(1) item (core plus
// lookahead), used as a map key for value-equality-based item sets.
func (it Item) key() string {
	var sb strings.Builder
	sb.WriteString(it.coreKey())
	sb.WriteByte('|')
	for _, t := range it.Lookahead.Slice() {
		fmt.Fprintf(&sb, "%d:%d,", t.Kind, t.ID)
	}
	return sb.String()
}

// HashKey returns a string uniquely identifying the full LR(1) item,
// exported for use as a stable hash input by packages (such as automaton)
// that need a canonical, pool-independent representation of an item.
func (it Item) HashKey() string { return it.key() }

// Equal reports whether it and other are the same LR(1) item: same rule,
// same dot position, same lookahead set.
func (it Item) Equal(other Item) bool {
	return it.key() == other.key()
}

// Less gives Item a total order (rule, then before, then after, then sorted
// lookahead), used to print item sets in a stable order.
func (it Item) Less(other Item) bool {
	if it.Rule.ID != other.Rule.ID {
		return it.Rule.ID < other.Rule.ID
	}
	if c := compareTokenSlices(it.Before, other.Before); c != 0 {
		return c < 0
	}
	if c := compareTokenSlices(it.After, other.After); c != 0 {
		return c < 0
	}
	return compareTokenSlices(it.Lookahead.Slice(), other.Lookahead.Slice()) < 0
}

func compareTokenSlices(a, b []Token) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i].Less(b[i]):
			return -1
		case b[i].Less(a[i]):
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Display renders the item as "rule -> before . after { lookahead }".
func (it Item) Display(p *pool.Pool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s -> ", p.Get(it.Rule.ID))
	for _, t := range it.Before {
		sb.WriteString(t.Display(p))
		sb.WriteByte(' ')
	}
	sb.WriteByte('.')
	for _, t := range it.After {
		sb.WriteByte(' ')
		sb.WriteString(t.Display(p))
	}
	sb.WriteString(" { ")
	for i, t := range it.Lookahead.Slice() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Display(p))
	}
	sb.WriteString(" }")
	return sb.String()
}

// ItemSet is an unordered collection of distinct Items, compared and
// iterated by value. It exposes the minimal
// surface the automaton package needs (Add, Sorted, Equal, Key) -- a full
// generic Set abstraction isn't pulled in here because the only consumer is
// automaton.closure/goto, which always wants either "add if new" or a
// deterministic walk.
type ItemSet struct {
	byKey map[string]Item
}

// NewItemSet builds an ItemSet containing the given items.
func NewItemSet(items ...Item) ItemSet {
	s := ItemSet{byKey: make(map[string]Item, len(items))}
	for _, it := range items {
		s.byKey[it.key()] = it
	}
	return s
}

// Add inserts it if not already present (by value) and reports whether the
// set grew.
func (s *ItemSet) Add(it Item) bool {
	if s.byKey == nil {
		s.byKey = make(map[string]Item)
	}
	k := it.key()
	if _, ok := s.byKey[k]; ok {
		return false
	}
	s.byKey[k] = it
	return true
}

// Len returns the number of items.
func (s ItemSet) Len() int { return len(s.byKey) }

// Sorted returns the items in the total order defined by Item.Less.
func (s ItemSet) Sorted() []Item {
	out := make([]Item, 0, len(s.byKey))
	for _, it := range s.byKey {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Copy returns an independent copy of s.
func (s ItemSet) Copy() ItemSet {
	out := make(map[string]Item, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return ItemSet{byKey: out}
}

// Equal reports whether s and o contain exactly the same items (canonical
// LR(1) equality: full item set including lookaheads, not LALR core
// merging).
func (s ItemSet) Equal(o ItemSet) bool {
	if len(s.byKey) != len(o.byKey) {
		return false
	}
	for k := range s.byKey {
		if _, ok := o.byKey[k]; !ok {
			return false
		}
	}
	return true
}

// Key returns a string that is equal for two ItemSets iff Equal would
// report true for them. The automaton package looks states up by it
// directly, before consulting its structhash buckets.
func (s ItemSet) Key() string {
	items := s.Sorted()
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString(it.key())
		sb.WriteByte(';')
	}
	return sb.String()
}
