package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildArith() *Grammar {
	b := NewBuilder()

	plus := b.Term("+")
	star := b.Term("*")
	lparen := b.Term("(")
	rparen := b.Term(")")
	id := b.Term("id")

	e := b.NonTerm("E")
	t := b.NonTerm("T")
	f := b.NonTerm("F")

	b.AddProduction("E", []Token{e, plus, t}, "")
	b.AddProduction("E", []Token{t}, "")
	b.AddProduction("T", []Token{t, star, f}, "")
	b.AddProduction("T", []Token{f}, "")
	b.AddProduction("F", []Token{lparen, e, rparen}, "")
	b.AddProduction("F", []Token{id}, "")

	return b.Finish("E")
}

func TestFinish_AppendsSyntheticStart(t *testing.T) {
	g := buildArith()
	prods := g.Productions()
	last := prods[len(prods)-1]

	assert.Equal(t, g.StartRule(), last.Rule.ID)
	require.Len(t, last.Rhs, 2)
	assert.True(t, last.Rhs[0].IsNonTerm())
	assert.Equal(t, g.EntryRule(), last.Rhs[0].ID)
	assert.Equal(t, Eof, last.Rhs[1])
}

func TestFirst_ClassicExpressionGrammar(t *testing.T) {
	g := buildArith()

	pool := g.Pool()
	eID, _ := pool.ReverseLookup("E")
	first := g.First([]Token{NonTerm(eID)})

	wantNames := map[string]bool{"(": true, "id": true}
	gotNames := map[string]bool{}
	for _, tok := range first.Slice() {
		gotNames[pool.Get(tok.ID)] = true
	}
	assert.Equal(t, wantNames, gotNames)
}

func TestFirst_EpsilonProduction(t *testing.T) {
	b := NewBuilder()
	bNt := b.NonTerm("B")
	x := b.Term("x")

	b.AddProduction("A", []Token{bNt, x}, "")
	b.AddProduction("B", nil, "") // B -> ε

	g := b.Finish("A")
	pool := g.Pool()
	aID, _ := pool.ReverseLookup("A")

	first := g.First([]Token{NonTerm(aID)})
	require.Equal(t, 1, first.Len())

	xID, ok := pool.ReverseLookup("x")
	require.True(t, ok)
	assert.True(t, first.Has(Term(xID)))
}

func TestToken_Less_TotalOrder(t *testing.T) {
	term0 := Term(0)
	term1 := Term(1)
	nonTerm0 := NonTerm(0)

	assert.True(t, term0.Less(term1))
	assert.True(t, term1.Less(nonTerm0))
	assert.True(t, nonTerm0.Less(Empty))
	assert.True(t, Empty.Less(Eof))
	assert.False(t, Eof.Less(Empty))
}

func TestToken_Equal(t *testing.T) {
	assert.True(t, Term(3).Equal(Term(3)))
	assert.False(t, Term(3).Equal(Term(4)))
	assert.True(t, Eof.Equal(Eof))
	assert.True(t, Empty.Equal(Empty))
	assert.False(t, Term(0).Equal(NonTerm(0)))
}

func TestProductionsOf_PreservesDeclarationOrder(t *testing.T) {
	g := buildArith()
	eID, _ := g.Pool().ReverseLookup("E")

	rhss := g.ProductionsOf(eID)
	require.Len(t, rhss, 2)
	assert.Len(t, rhss[0], 3)
	assert.Len(t, rhss[1], 1)
}

func TestTerminalsAndNonTerminals_Sorted(t *testing.T) {
	g := buildArith()

	terms := g.Terminals()
	for i := 1; i < len(terms); i++ {
		assert.True(t, terms[i-1] < terms[i])
	}

	nts := g.NonTerminals()
	for i := 1; i < len(nts); i++ {
		assert.True(t, nts[i-1] < nts[i])
	}
}
