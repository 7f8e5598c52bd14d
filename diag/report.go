package diag

import (
	"github.com/pterm/pterm"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/table"
)

// ReportConflict prints a colourized description of a synthesis conflict
// through pterm's default printers (Error prefix plus gray detail lines).
func ReportConflict(c *table.Conflict, g *grammar.Grammar) {
	p := g.Pool()
	pterm.Error.Printfln("%s conflict in state %d on %s", c.Kind(), c.State, c.Token.Display(p))
	pterm.Println(pterm.Gray("  existing: ") + c.Either.Display(p))
	pterm.Println(pterm.Gray("  new:      ") + c.Or.Display(p))
}

// ReportSummary prints a short success banner once a table has been
// synthesized without conflict.
func ReportSummary(g *automaton.Graph, t *table.Table) {
	pterm.Success.Printfln("built %d states, %d table rows", len(g.States()), len(t.States()))
}
