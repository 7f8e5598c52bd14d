package golang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/emit"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/table"
)

func buildArith() (*grammar.Grammar, *table.Table) {
	b := grammar.NewBuilder()

	plus := b.Term("+")
	intTok := b.Term("Int")
	aNt := b.NonTerm("A")

	b.AddProduction("A", []grammar.Token{aNt, plus, intTok}, "v0 + v2")
	b.AddProduction("A", []grammar.Token{intTok}, "v0")

	g := b.Finish("A")
	seed := grammar.ItemSet{}
	seed.Add(g.Initial(g.StartRule())[0])
	graph := automaton.Build(g, seed)

	tbl, conflict := table.Synthesize(graph)
	if conflict != nil {
		panic(conflict)
	}
	return g, tbl
}

func TestRender_ProducesCompilableLookingGoSource(t *testing.T) {
	g, tbl := buildArith()
	v := New("", "main", map[string]string{"A": "int"}, map[string]string{"Int": "int", "+": ""}, "A")

	src, err := emit.Render(v, tbl, g)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(src, "package main"))
	assert.Contains(t, src, "import \"fmt\"")
	assert.Contains(t, src, "func Parse(")
	assert.Contains(t, src, "type UnexpectedToken struct")
	assert.Contains(t, src, "return v0, nil") // S0 reduction shortcut
}

func TestRender_EveryPoppedValueIsSuppressed(t *testing.T) {
	// Every v%d binding must be followed by a blank assignment so unused
	// splice-less reductions never fail to compile.
	g, tbl := buildArith()
	v := New("", "main", map[string]string{"A": "int"}, map[string]string{"Int": "int", "+": ""}, "A")

	src, err := emit.Render(v, tbl, g)
	require.NoError(t, err)

	assert.Contains(t, src, "_ = v0")
}

func TestRender_GotoTablesNamedPerNonTerminal(t *testing.T) {
	g, tbl := buildArith()
	v := New("", "main", map[string]string{"A": "int"}, map[string]string{"Int": "int", "+": ""}, "A")

	src, err := emit.Render(v, tbl, g)
	require.NoError(t, err)

	assert.Contains(t, src, "var lrgenGotoA = map[int]int{")
}

func TestSummary_ReportsStateCount(t *testing.T) {
	s := Summary(12, "package main\n")
	assert.Contains(t, s, "12")
}
