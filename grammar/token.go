package grammar

import (
	"fmt"

	"github.com/dekarrin/lrgen/pool"
)

// Kind discriminates the variants of Token. Token is a closed tagged union;
// Kind plus the two ID fields is the Go realization of that sum type, an
// explicit tag rather than an interface hierarchy with per-kind
// implementations.
type Kind uint8

const (
	// KindTerm marks a terminal symbol.
	KindTerm Kind = iota
	// KindNonTerm marks a non-terminal symbol.
	KindNonTerm
	// KindEmpty is the ε marker. It must never appear in a production's rhs
	// or in a lookahead set; it exists only as an intermediate value inside
	// FIRST-set computation.
	KindEmpty
	// KindEof is the synthetic end-of-input marker, treated as a terminal
	// for parsing purposes.
	KindEof
)

// Token is an immutable grammar symbol: a terminal, a non-terminal, the
// internal ε marker, or the synthetic end-of-input marker.
type Token struct {
	Kind Kind
	ID   pool.ID // meaningful only when Kind is KindTerm or KindNonTerm
}

// Term builds a terminal Token.
func Term(id pool.ID) Token { return Token{Kind: KindTerm, ID: id} }

// NonTerm builds a non-terminal Token.
func NonTerm(id pool.ID) Token { return Token{Kind: KindNonTerm, ID: id} }

// Empty is the ε marker.
var Empty = Token{Kind: KindEmpty}

// Eof is the synthetic end-of-input marker.
var Eof = Token{Kind: KindEof}

// IsTerm reports whether t is a terminal.
func (t Token) IsTerm() bool { return t.Kind == KindTerm }

// IsNonTerm reports whether t is a non-terminal.
func (t Token) IsNonTerm() bool { return t.Kind == KindNonTerm }

// Less gives Token a total order: Kind first (Term < NonTerm < Empty < Eof),
// then ID within a Kind. This is the order the emission driver and every
// set-like container in this module sort by.
func (t Token) Less(other Token) bool {
	if t.Kind != other.Kind {
		return t.Kind < other.Kind
	}
	return t.ID < other.ID
}

// Equal reports structural equality.
func (t Token) Equal(other Token) bool {
	return t.Kind == other.Kind && (t.Kind == KindEmpty || t.Kind == KindEof || t.ID == other.ID)
}

// Display renders t using the names interned in p. Terminals are single
// quoted, non-terminals bare, Empty and Eof use fixed glyphs.
func (t Token) Display(p *pool.Pool) string {
	switch t.Kind {
	case KindTerm:
		return fmt.Sprintf("'%s'", p.Get(t.ID))
	case KindNonTerm:
		return p.Get(t.ID)
	case KindEmpty:
		return "ε"
	case KindEof:
		return "$"
	default:
		return "?"
	}
}

// Fold dispatches on t's kind: exactly one of nonTerm/term is invoked for
// the corresponding kind, and def is returned for Empty/Eof.
func Fold[T any](t Token, nonTerm func(pool.ID) T, term func(pool.ID) T, def T) T {
	switch t.Kind {
	case KindTerm:
		return term(t.ID)
	case KindNonTerm:
		return nonTerm(t.ID)
	default:
		return def
	}
}
