package diag

import (
	"bytes"
	"fmt"
	"os/exec"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/lrgenerr"
)

// DOT renders the item-set graph as Graphviz source: one node per state
// (labelled with its sorted item listing), one labelled edge per
// transition.
func DOT(g *automaton.Graph, gr *grammar.Grammar) string {
	p := gr.Pool()
	var sb bytes.Buffer

	sb.WriteString("digraph lrgen {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, fontname=\"monospace\"];\n")

	for _, uid := range g.States() {
		state, _ := g.State(uid)
		var label bytes.Buffer
		fmt.Fprintf(&label, "state %d\\l", uid)
		for _, item := range state.Items.Sorted() {
			fmt.Fprintf(&label, "%s\\l", dotEscape(item.Display(p)))
		}
		shape := "box"
		if uid == g.Start() {
			shape = "box, peripheries=2"
		}
		fmt.Fprintf(&sb, "    s%d [label=\"%s\", shape=\"%s\"];\n", uid, label.String(), shape)
	}

	for _, uid := range g.States() {
		state, _ := g.State(uid)
		for _, to := range orderedTransitionTargets(state) {
			fmt.Fprintf(&sb, "    s%d -> s%d [label=\"%s\"];\n", uid, to, dotEscape(state.Transitions[to].Display(p)))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func orderedTransitionTargets(s *automaton.State) []automaton.Uid {
	var out []automaton.Uid
	for to := range s.Transitions {
		out = append(out, to)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func dotEscape(s string) string {
	var sb bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// RenderDOTToFile shells out to the system "dot" binary to turn src into an
// image of the given format (e.g. "png" -> "-Tpng") written to outPath,
// quoting the invocation with kballard/go-shellquote instead of building a
// shell command by string concatenation.
func RenderDOTToFile(src, format, outPath string) error {
	cmdline := fmt.Sprintf("dot -T%s -o %s", shellquote.Join(format), shellquote.Join(outPath))
	args, err := shellquote.Split(cmdline)
	if err != nil {
		return lrgenerr.Wrap("building dot invocation", err)
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = bytes.NewBufferString(src)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return lrgenerr.WrapIO(fmt.Sprintf("running dot: %s", stderr.String()), err)
	}
	return nil
}
