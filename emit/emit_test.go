package emit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/pool"
	"github.com/dekarrin/lrgen/table"
)

func buildArith() (*grammar.Grammar, *table.Table) {
	b := grammar.NewBuilder()

	plus := b.Term("+")
	star := b.Term("*")
	lparen := b.Term("(")
	rparen := b.Term(")")
	intTok := b.Term("Int")

	bNt := b.NonTerm("B")
	aNt := b.NonTerm("A")
	cNt := b.NonTerm("C")

	b.AddProduction("A", []grammar.Token{bNt, plus, aNt}, "")
	b.AddProduction("A", []grammar.Token{bNt}, "")
	b.AddProduction("B", []grammar.Token{cNt, star, bNt}, "")
	b.AddProduction("B", []grammar.Token{cNt}, "")
	b.AddProduction("C", []grammar.Token{lparen, aNt, rparen}, "")
	b.AddProduction("C", []grammar.Token{intTok}, "")

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

// recordingVisitor logs EnterState's state and VisitGoto's symbol arguments
// in the order Render invokes them, to test the ordering contract directly
// rather than through a specific backend's text output.
type recordingVisitor struct {
	states []automaton.Uid
	gotos  []pool.ID
}

func (r *recordingVisitor) BeforeEnter(ctx *Ctx, w *bytes.Buffer, allStates []automaton.Uid) error {
	return nil
}
func (r *recordingVisitor) AfterLeave(ctx *Ctx, w *bytes.Buffer, allStates []automaton.Uid) error {
	return nil
}
func (r *recordingVisitor) BeginParseLoop(ctx *Ctx, w *bytes.Buffer) error { return nil }
func (r *recordingVisitor) EndParseLoop(ctx *Ctx, w *bytes.Buffer) error   { return nil }
func (r *recordingVisitor) EnterState(ctx *Ctx, w *bytes.Buffer, state automaton.Uid) error {
	r.states = append(r.states, state)
	return nil
}
func (r *recordingVisitor) LeaveState(ctx *Ctx, w *bytes.Buffer, state automaton.Uid) error {
	return nil
}
func (r *recordingVisitor) EnterMatch(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error {
	return nil
}
func (r *recordingVisitor) LeaveMatch(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error {
	return nil
}
func (r *recordingVisitor) VisitShift(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, nextState automaton.Uid) error {
	return nil
}
func (r *recordingVisitor) VisitReduce(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, rule pool.ID, expansion []grammar.Token) error {
	return nil
}
func (r *recordingVisitor) MatchingError(ctx *Ctx, w *bytes.Buffer, state automaton.Uid, expected []grammar.Token) error {
	return nil
}
func (r *recordingVisitor) VisitGoto(ctx *Ctx, w *bytes.Buffer, symbol pool.ID, gotos []GotoEdge) error {
	r.gotos = append(r.gotos, symbol)
	for i := 1; i < len(gotos); i++ {
		if gotos[i-1].From > gotos[i].From {
			panic("goto edges not sorted by From")
		}
	}
	return nil
}

var _ Visitor = (*recordingVisitor)(nil)

func TestRender_VisitsStatesInAscendingUidOrder(t *testing.T) {
	g, tbl := buildArith()
	v := &recordingVisitor{}

	_, err := Render(v, tbl, g)
	require.NoError(t, err)

	for i := 1; i < len(v.states); i++ {
		assert.Less(t, v.states[i-1], v.states[i])
	}
}

func TestRender_GotoSymbolsInAscendingIDOrder(t *testing.T) {
	g, tbl := buildArith()
	v := &recordingVisitor{}

	_, err := Render(v, tbl, g)
	require.NoError(t, err)

	for i := 1; i < len(v.gotos); i++ {
		assert.Less(t, v.gotos[i-1], v.gotos[i])
	}
}

func TestRender_DeterministicAcrossRuns(t *testing.T) {
	g, tbl := buildArith()

	v1 := &recordingVisitor{}
	_, err := Render(v1, tbl, g)
	require.NoError(t, err)

	v2 := &recordingVisitor{}
	_, err = Render(v2, tbl, g)
	require.NoError(t, err)

	assert.Equal(t, v1.states, v2.states)
	assert.Equal(t, v1.gotos, v2.gotos)
}
