package diag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/table"
)

func buildArith() (*grammar.Grammar, *automaton.Graph, *table.Table) {
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
	return g, graph, tbl
}

func TestTableString_ContainsHeadersAndStateRows(t *testing.T) {
	g, _, tbl := buildArith()
	s := TableString(tbl, g)

	assert.Contains(t, s, "state")
	assert.Contains(t, s, "a:Int")
	assert.Contains(t, s, "a:$")
	assert.Contains(t, s, "g:A")
}

func TestGraphString_MarksStartState(t *testing.T) {
	g, graph, _ := buildArith()
	s := GraphString(graph, g)

	lines := strings.Split(s, "\n")
	var sawStart bool
	for _, line := range lines {
		if strings.HasPrefix(line, "state ") && strings.Contains(line, "(start)") {
			sawStart = true
			break
		}
	}
	assert.True(t, sawStart, "expected a state line marked (start), got:\n%s", s)
}

func TestGraphString_TransitionsAreIndentedArrows(t *testing.T) {
	g, graph, _ := buildArith()
	s := GraphString(graph, g)

	assert.Contains(t, s, "-->")
}

func TestDOT_ProducesWellFormedDigraph(t *testing.T) {
	g, graph, _ := buildArith()
	src := DOT(graph, g)

	assert.True(t, strings.HasPrefix(strings.TrimSpace(src), "digraph"))
	assert.Contains(t, src, "{")
	assert.Contains(t, src, "}")
	assert.Contains(t, src, "peripheries=2")
}

func TestDOT_EveryStateHasANode(t *testing.T) {
	g, graph, _ := buildArith()
	src := DOT(graph, g)

	for _, uid := range graph.States() {
		assert.Contains(t, src, fmt.Sprintf("%d", uid))
	}
}

// ReportConflict/ReportSummary write through pterm's default printers, whose
// destination isn't something this package owns or redirects. These tests
// only confirm the calls don't panic on well-formed and zero-value input.
func TestReportSummary_DoesNotPanic(t *testing.T) {
	_, graph, tbl := buildArith()
	assert.NotPanics(t, func() {
		ReportSummary(graph, tbl)
	})
}

func TestReportConflict_DoesNotPanic(t *testing.T) {
	g, _, _ := buildArith()
	conflict := &table.Conflict{
		State: 3,
		Token: grammar.Eof,
	}
	assert.NotPanics(t, func() {
		ReportConflict(conflict, g)
	})
}
