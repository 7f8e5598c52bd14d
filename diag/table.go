// Package diag renders human-facing views of a built grammar/automaton/table
// trio: a column-aligned action/goto table and a Graphviz DOT rendering of
// the item-set graph.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/rosed"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/pool"
	"github.com/dekarrin/lrgen/table"
)

// TableString renders t as a column-aligned grid: one row per state, one
// column per terminal/Eof action plus one per non-terminal goto.
func TableString(t *table.Table, g *grammar.Grammar) string {
	p := g.Pool()
	terms := g.Terminals()
	nonTerms := g.NonTerminals()

	headers := []string{"state", "|"}
	for _, id := range terms {
		headers = append(headers, fmt.Sprintf("a:%s", p.Get(id)))
	}
	headers = append(headers, "a:$", "|")
	for _, id := range nonTerms {
		headers = append(headers, fmt.Sprintf("g:%s", p.Get(id)))
	}

	data := [][]string{headers}

	for _, uid := range t.States() {
		entry, _ := t.Entry(uid)
		row := []string{fmt.Sprintf("%d", uid), "|"}

		for _, id := range terms {
			row = append(row, actionCell(entry, grammar.Term(id), p))
		}
		row = append(row, actionCell(entry, grammar.Eof, p))
		row = append(row, "|")

		for _, id := range nonTerms {
			cell := ""
			if to, ok := entry.Gotos[id]; ok {
				cell = fmt.Sprintf("%d", to)
			}
			row = append(row, cell)
		}

		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func actionCell(entry table.Entry, tok grammar.Token, p *pool.Pool) string {
	act, ok := entry.Actions[tok]
	if !ok {
		return ""
	}
	return act.Display(p)
}

// GraphString renders the item-set graph as a plain indented listing: one
// block per state, items sorted by Item.Less, transitions sorted by label
// then destination, so two runs over the same grammar always print
// byte-identical output.
func GraphString(g *automaton.Graph, gr *grammar.Grammar) string {
	p := gr.Pool()
	var sb strings.Builder

	for _, uid := range g.States() {
		state, _ := g.State(uid)
		fmt.Fprintf(&sb, "state %d%s\n", uid, startMarker(g, uid))
		for _, item := range state.Items.Sorted() {
			fmt.Fprintf(&sb, "    %s\n", item.Display(p))
		}

		type edge struct {
			label grammar.Token
			to    automaton.Uid
		}
		var edges []edge
		for to, label := range state.Transitions {
			edges = append(edges, edge{label, to})
		}
		sort.Slice(edges, func(i, j int) bool {
			if !edges[i].label.Equal(edges[j].label) {
				return edges[i].label.Less(edges[j].label)
			}
			return edges[i].to < edges[j].to
		})
		for _, e := range edges {
			fmt.Fprintf(&sb, "    -- %s --> %d\n", e.label.Display(p), e.to)
		}
	}

	return sb.String()
}

func startMarker(g *automaton.Graph, uid automaton.Uid) string {
	if uid == g.Start() {
		return " (start)"
	}
	return ""
}
