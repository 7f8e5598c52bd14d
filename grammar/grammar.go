package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/lrgen/pool"
)

// startRuleName is the name under which the synthetic start production is
// interned, exactly once, as the last entry.
const startRuleName = "S0"

// Production is one `rule_name -> rhs { code }` entry. code is an opaque
// blob of target-language text spliced into the semantic action at
// reduction time; the core never interprets it. No Empty token may appear
// in Rhs -- an empty production is simply a zero-length Rhs.
type Production struct {
	Rule Rule
	Rhs  []Token
	Code string
}

// Rule names a production's left-hand side by its interned ID.
type Rule struct {
	ID pool.ID
}

// Display renders the production in plain arrow notation, for one-line
// debug output.
func (p Production) Display(pl *pool.Pool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s -> ", pl.Get(p.Rule.ID))
	if len(p.Rhs) == 0 {
		sb.WriteString("ε")
	}
	for i, tok := range p.Rhs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Display(pl))
	}
	return sb.String()
}

// Grammar holds the String Pool and the ordered list of productions,
// including the synthetic start production appended by Finish.
type Grammar struct {
	pool        *pool.Pool
	productions []Production
	entryRuleID pool.ID
	startRuleID pool.ID
	firstCache  map[Token]TokenSet
}

// Pool returns the Grammar's String Pool, used by callers that need to turn
// IDs back into names for display.
func (g *Grammar) Pool() *pool.Pool { return g.pool }

// StartRule returns the ID of the synthetic S0 rule.
func (g *Grammar) StartRule() pool.ID { return g.startRuleID }

// EntryRule returns the ID of the user-declared entry rule S0 wraps.
func (g *Grammar) EntryRule() pool.ID { return g.entryRuleID }

// Productions returns every entry in declaration order, including S0.
func (g *Grammar) Productions() []Production { return g.productions }

// ProductionsOf returns, in declaration order, the rhs of every production
// whose left-hand side is rule.
func (g *Grammar) ProductionsOf(rule pool.ID) [][]Token {
	var out [][]Token
	for _, p := range g.productions {
		if p.Rule.ID == rule {
			out = append(out, p.Rhs)
		}
	}
	return out
}

// Initial returns one Item per production of rule, dot at position 0 and an
// empty lookahead set.
func (g *Grammar) Initial(rule pool.ID) []Item {
	rhss := g.ProductionsOf(rule)
	items := make([]Item, 0, len(rhss))
	for _, rhs := range rhss {
		items = append(items, Item{
			Rule:   Rule{ID: rule},
			Before: nil,
			After:  append([]Token(nil), rhs...),
		})
	}
	return items
}

// First computes FIRST(seq) following classical LR(1) FIRST with
// ε-propagation: a fixed point computed once over the whole grammar and
// then read off per sequence, rather than re-descending the grammar on
// every call.
func (g *Grammar) First(seq []Token) TokenSet {
	table := g.firstTable()
	return firstOfSeq(seq, table)
}

// firstTable is FIRST(X) for every grammar symbol X (terminal or
// non-terminal), computed once as a fixed point and reused by every caller
// of First. It is lazily built and cached on the Grammar the first time
// First is called, since the Grammar is immutable once Finish returns.
func (g *Grammar) firstTable() map[Token]TokenSet {
	if g.firstCache != nil {
		return g.firstCache
	}

	table := make(map[Token]TokenSet)

	// Terminals (and Eof) are their own FIRST set.
	seen := make(map[Token]bool)
	for _, p := range g.productions {
		for _, tok := range p.Rhs {
			if tok.IsTerm() || tok.Kind == KindEof {
				if !seen[tok] {
					seen[tok] = true
					table[tok] = NewTokenSet(tok)
				}
			}
		}
		nt := NonTerm(p.Rule.ID)
		if _, ok := table[nt]; !ok {
			table[nt] = NewTokenSet()
		}
	}

	for changed := true; changed; {
		changed = false
		for _, p := range g.productions {
			nt := NonTerm(p.Rule.ID)
			add := firstOfSeq(p.Rhs, table)
			before := table[nt].Len()
			table[nt] = table[nt].Union(add)
			if table[nt].Len() != before {
				changed = true
			}
		}
	}

	g.firstCache = table
	return table
}

// firstOfSeq computes FIRST of a token sequence given a precomputed FIRST(X)
// table for every single symbol X.
func firstOfSeq(seq []Token, table map[Token]TokenSet) TokenSet {
	if len(seq) == 0 {
		return NewTokenSet(Empty)
	}

	head := seq[0]
	switch head.Kind {
	case KindTerm:
		return NewTokenSet(head)
	case KindEof:
		return NewTokenSet(Eof)
	case KindNonTerm:
		headFirst := table[head]
		if headFirst.Has(Empty) && len(seq) > 1 {
			rest := firstOfSeq(seq[1:], table)
			return headFirst.Without(Empty).Union(rest)
		}
		return headFirst.Copy()
	default:
		panic("grammar: First: rhs may not contain Empty")
	}
}

// Builder accumulates productions before Finish produces an immutable
// Grammar. It mutates its own receiver across calls rather than chaining
// immutable copies.
type Builder struct {
	pool        *pool.Pool
	productions []Production
}

// NewBuilder constructs an empty Builder with a fresh String Pool.
func NewBuilder() *Builder {
	return &Builder{pool: pool.New()}
}

// Pool exposes the Builder's String Pool so callers (e.g. a grammar-spec
// parser) can intern terminal/non-terminal names before building rhs
// sequences.
func (b *Builder) Pool() *pool.Pool { return b.pool }

// Term interns name and returns a terminal Token for it.
func (b *Builder) Term(name string) Token { return Term(b.pool.Add(name)) }

// NonTerm interns name and returns a non-terminal Token for it.
func (b *Builder) NonTerm(name string) Token { return NonTerm(b.pool.Add(name)) }

// AddProduction appends one production. rhs must not contain Empty; use a
// nil/empty rhs for an ε production.
func (b *Builder) AddProduction(ruleName string, rhs []Token, code string) {
	for _, t := range rhs {
		if t.Kind == KindEmpty {
			panic("grammar: AddProduction: rhs may not contain Empty")
		}
	}
	ruleID := b.pool.Add(ruleName)
	b.productions = append(b.productions, Production{
		Rule: Rule{ID: ruleID},
		Rhs:  append([]Token(nil), rhs...),
		Code: code,
	})
}

// Finish appends the synthetic S0 -> NonTerm(entryRule) Eof production and
// returns the finished, immutable Grammar. entryRule need not come from an
// explicit config key: a grammar with no declared `entry` but a rule
// literally named "ENTRY" is legal, since Finish only ever sees the
// resolved name, not its provenance.
func (b *Builder) Finish(entryRule string) *Grammar {
	entryID := b.pool.Add(entryRule)
	startID := b.pool.Add(startRuleName)
	productions := append(append([]Production(nil), b.productions...), Production{
		Rule: Rule{ID: startID},
		Rhs:  []Token{NonTerm(entryID), Eof},
		Code: "",
	})
	return &Grammar{
		pool:        b.pool,
		productions: productions,
		entryRuleID: entryID,
		startRuleID: startID,
	}
}

// String renders every production in declaration order, one per line.
func (g *Grammar) String() string {
	var sb strings.Builder
	for _, p := range g.productions {
		sb.WriteString(p.Display(g.pool))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Terminals returns every terminal ID referenced anywhere in the grammar's
// rhs, sorted by ID. Used by diagnostics and by backends computing the
// host-language token enumeration.
func (g *Grammar) Terminals() []pool.ID {
	seen := make(map[pool.ID]bool)
	var out []pool.ID
	for _, p := range g.productions {
		for _, tok := range p.Rhs {
			if tok.IsTerm() {
				if !seen[tok.ID] {
					seen[tok.ID] = true
					out = append(out, tok.ID)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NonTerminals returns every rule name that appears as a production's
// left-hand side, sorted by ID, in the order they were interned.
func (g *Grammar) NonTerminals() []pool.ID {
	seen := make(map[pool.ID]bool)
	var out []pool.ID
	for _, p := range g.productions {
		if !seen[p.Rule.ID] {
			seen[p.Rule.ID] = true
			out = append(out, p.Rule.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
