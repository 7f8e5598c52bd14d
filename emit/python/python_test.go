package python

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

func TestRender_ProducesPythonModule(t *testing.T) {
	g, tbl := buildArith()
	v := New("", []string{"Int", "+"}, "A")

	src, err := emit.Render(v, tbl, g)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(src, "# Code generated by lrgen. DO NOT EDIT."))
	assert.Contains(t, src, "def parse(tokens):")
	assert.Contains(t, src, "class UnexpectedToken(Exception):")
	assert.Contains(t, src, "return v0")
}

func TestRender_ExpectedListIsValidPythonListLiteral(t *testing.T) {
	g, tbl := buildArith()
	v := New("", []string{"Int", "+"}, "A")

	src, err := emit.Render(v, tbl, g)
	require.NoError(t, err)

	// pyList must never leak Go's %#v syntax (e.g. []string{"a"}) into the
	// generated source.
	assert.NotContains(t, src, "[]string{")
}

func TestRender_GotoDictNamedPerNonTerminal(t *testing.T) {
	g, tbl := buildArith()
	v := New("", []string{"Int", "+"}, "A")

	src, err := emit.Render(v, tbl, g)
	require.NoError(t, err)

	assert.Contains(t, src, "lrgen_goto_A = {")
}
