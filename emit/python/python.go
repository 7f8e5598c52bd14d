// Package python implements emit.Visitor for a Python 3 target. Python's
// dynamic typing means there is no need for the per-token type-assertion
// dance the Go backend performs: each stack entry is a (state, value) pair
// and reductions bind popped values as-is, without checking their kind.
package python

import (
	"bytes"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/emit"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/pool"
)

// Visitor emits a single Python module defining a parse(tokens) function.
// The host is expected to hand parse() an iterator of objects exposing
// .class_name() and .payload(), mirroring the Go backend's Token contract
// (emit/golang.Visitor) but spelled the Python way.
type Visitor struct {
	Prelude     string
	ModuleDocs  string
	EntryRule   string
	FuncName    string
	terminalSet map[string]bool
}

// New constructs a Visitor. terminals lists every terminal name declared in
// the grammar; it is recorded on the Visitor but does not affect the
// generated code, since every shift stacks the token's payload.
func New(prelude string, terminals []string, entryRule string) *Visitor {
	set := make(map[string]bool, len(terminals))
	for _, t := range terminals {
		set[t] = true
	}
	return &Visitor{
		Prelude:     prelude,
		EntryRule:   "S0",
		FuncName:    "parse",
		terminalSet: set,
	}
}

var _ emit.Visitor = (*Visitor)(nil)

func (v *Visitor) BeforeEnter(ctx *emit.Ctx, w *bytes.Buffer, allStates []automaton.Uid) error {
	fmt.Fprintln(w, "# Code generated by lrgen. DO NOT EDIT.")
	if v.Prelude != "" {
		fmt.Fprintln(w, v.Prelude)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "class UnexpectedToken(Exception):")
	fmt.Fprintln(w, "    def __init__(self, state, received, expected):")
	fmt.Fprintln(w, "        super().__init__(f\"unexpected token {received!r} in state {state}, expected one of {expected}\")")
	fmt.Fprintln(w, "        self.state = state")
	fmt.Fprintln(w, "        self.received = received")
	fmt.Fprintln(w, "        self.expected = expected")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "def %s(tokens):\n", v.FuncName)
	fmt.Fprintln(w, "    tokens = iter(tokens)")
	fmt.Fprintln(w, "    stack = [(1, None)]")
	fmt.Fprintln(w, "    tok = next(tokens, None)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "    def class_of():")
	fmt.Fprintln(w, "        return \"$\" if tok is None else tok.class_name()")
	fmt.Fprintln(w, "")
	return nil
}

func (v *Visitor) AfterLeave(ctx *emit.Ctx, w *bytes.Buffer, allStates []automaton.Uid) error {
	fmt.Fprintln(w, "    raise RuntimeError(\"lrgen: internal error: parse loop exited without accepting or erroring\")")
	return nil
}

func (v *Visitor) BeginParseLoop(ctx *emit.Ctx, w *bytes.Buffer) error {
	fmt.Fprintln(w, "    while True:")
	fmt.Fprintln(w, "        state = stack[-1][0]")
	return nil
}

func (v *Visitor) EndParseLoop(ctx *emit.Ctx, w *bytes.Buffer) error {
	return nil
}

func (v *Visitor) EnterState(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid) error {
	fmt.Fprintf(w, "        if state == %d:\n", state)
	return nil
}

func (v *Visitor) LeaveState(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid) error {
	return nil
}

func (v *Visitor) tokenLiteral(tok grammar.Token, p *pool.Pool) string {
	if tok.Kind == grammar.KindEof {
		return "None"
	}
	return fmt.Sprintf("%q", p.Get(tok.ID))
}

func (v *Visitor) EnterMatch(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error {
	cond := "tok is None"
	if token.Kind != grammar.KindEof {
		cond = fmt.Sprintf("tok is not None and tok.class_name() == %s", v.tokenLiteral(token, ctx.Grammar.Pool()))
	}
	fmt.Fprintf(w, "            if %s:\n", cond)
	return nil
}

func (v *Visitor) LeaveMatch(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error {
	fmt.Fprintln(w, "                continue")
	return nil
}

func (v *Visitor) VisitShift(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, nextState automaton.Uid) error {
	fmt.Fprintln(w, "                payload = tok.payload() if tok is not None else None")
	fmt.Fprintf(w, "                stack.append((%d, payload))\n", nextState)
	fmt.Fprintln(w, "                tok = next(tokens, None)")
	return nil
}

func (v *Visitor) VisitReduce(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, rule pool.ID, expansion []grammar.Token) error {
	ruleName := ctx.Grammar.Pool().Get(rule)
	n := len(expansion)

	names := make([]string, n)
	for i := n - 1; i >= 0; i-- {
		names[i] = fmt.Sprintf("v%d", i)
		fmt.Fprintf(w, "                %s = stack.pop()[1]\n", names[i])
	}

	if ruleName == "S0" {
		fmt.Fprintln(w, "                return v0")
		return nil
	}

	code := codeOrDefault(expansionCode(ctx, rule, expansion))
	fmt.Fprintf(w, "                result = (%s)\n", code)
	fmt.Fprintf(w, "                gt = lrgen_goto_%s[stack[-1][0]]\n", safeIdent(ruleName))
	fmt.Fprintln(w, "                stack.append((gt, result))")
	return nil
}

func (v *Visitor) MatchingError(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, expected []grammar.Token) error {
	names := make([]string, 0, len(expected))
	for _, t := range expected {
		if t.Kind == grammar.KindEof {
			names = append(names, "$")
		} else {
			names = append(names, ctx.Grammar.Pool().Get(t.ID))
		}
	}
	sort.Strings(names)
	fmt.Fprintf(w, "            raise UnexpectedToken(%d, class_of(), %s)\n", state, pyList(names))
	return nil
}

func (v *Visitor) VisitGoto(ctx *emit.Ctx, w *bytes.Buffer, symbol pool.ID, gotos []emit.GotoEdge) error {
	name := ctx.Grammar.Pool().Get(symbol)
	fmt.Fprintf(w, "lrgen_goto_%s = {\n", safeIdent(name))
	for _, e := range gotos {
		fmt.Fprintf(w, "    %d: %d,\n", e.From, e.To)
	}
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "")
	return nil
}

// Format invokes black on path, matching the "shell out to the target's own
// formatter" pattern every backend follows; it returns the exec error when
// black is not installed.
func (v *Visitor) Format(path string) error {
	cmd := exec.Command("black", "-q", path)
	return cmd.Run()
}

func expansionCode(ctx *emit.Ctx, rule pool.ID, expansion []grammar.Token) string {
	for _, p := range ctx.Grammar.Productions() {
		if p.Rule.ID != rule || len(p.Rhs) != len(expansion) {
			continue
		}
		match := true
		for i := range p.Rhs {
			if !p.Rhs[i].Equal(expansion[i]) {
				match = false
				break
			}
		}
		if match {
			return p.Code
		}
	}
	return ""
}

func codeOrDefault(code string) string {
	if code == "" {
		return "None"
	}
	return code
}

func pyList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func safeIdent(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
