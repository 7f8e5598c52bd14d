// Package golang implements emit.Visitor for the Go target: it renders an
// action/goto table into a single Go source file containing a table-driven
// LR parser built around a state stack, token buffer, and semantic-value
// stack -- a generated, target-specific parser rather than an interpreter
// that walks a table at runtime.
package golang

import (
	"bytes"
	"fmt"
	"os/exec"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/emit"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/pool"
)

// Visitor emits a Go parser package. The generated code requires its host
// Token type (TokenType, default "Token") to implement:
//
//	type Token interface {
//	    ClassName() string // terminal name as declared in the grammar spec, "$" for Eof
//	    Payload() any      // the terminal's payload, or nil if it has none
//	}
//
// identifying each token by class name and carrying a single opaque payload
// instead of requiring the host to expose a raw lexeme string.
type Visitor struct {
	Prelude          string
	PackageName      string
	NonTerminalTypes map[string]string // non-terminal name -> Go type
	TerminalTypes    map[string]string // terminal name -> Go payload type, absent => no payload
	TokenType        string            // host token type name
	EntryRule        string            // resolved entry non-terminal name
	FuncName         string            // exported parse entry point, default "Parse"
}

// New constructs a Visitor, defaulting FuncName to "Parse" and TokenType to
// "Token", and propagating the entry rule's declared type onto the
// synthetic "S0" rule the same way the original generator's
// OcamlVisitor.new / Rust::new do.
func New(prelude, packageName string, nonTermTypes, termTypes map[string]string, entryRule string) *Visitor {
	nt := make(map[string]string, len(nonTermTypes)+1)
	for k, v := range nonTermTypes {
		nt[k] = v
	}
	nt["S0"] = nt[entryRule]

	return &Visitor{
		Prelude:          prelude,
		PackageName:      packageName,
		NonTerminalTypes: nt,
		TerminalTypes:    termTypes,
		TokenType:        "Token",
		EntryRule:        "S0",
		FuncName:         "Parse",
	}
}

var _ emit.Visitor = (*Visitor)(nil)

func (v *Visitor) BeforeEnter(ctx *emit.Ctx, w *bytes.Buffer, allStates []automaton.Uid) error {
	fmt.Fprintf(w, "package %s\n\n", v.PackageName)
	fmt.Fprintln(w, "import \"fmt\"")
	fmt.Fprintln(w, "")
	if v.Prelude != "" {
		fmt.Fprintf(w, "%s\n\n", v.Prelude)
	}
	entryType := v.NonTerminalTypes[v.EntryRule]

	fmt.Fprintln(w, "// Code generated by lrgen. DO NOT EDIT.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "type lrgenFrame struct {")
	fmt.Fprintln(w, "\tstate int")
	fmt.Fprintln(w, "\tvalue any")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "// UnexpectedToken is returned when no action applies to the current state")
	fmt.Fprintln(w, "// and lookahead token.")
	fmt.Fprintln(w, "type UnexpectedToken struct {")
	fmt.Fprintln(w, "\tState    int")
	fmt.Fprintln(w, "\tReceived string")
	fmt.Fprintln(w, "\tExpected []string")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "func (e *UnexpectedToken) Error() string {")
	fmt.Fprintln(w, "\treturn fmt.Sprintf(\"unexpected token %q in state %d, expected one of %v\", e.Received, e.State, e.Expected)")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "// %s parses a lazy sequence of tokens and returns the semantic value of\n", v.FuncName)
	fmt.Fprintf(w, "// the entry rule, or an *UnexpectedToken error.\n")
	fmt.Fprintf(w, "func %s(next func() (%s, bool)) (%s, error) {\n", v.FuncName, v.TokenType, entryType)
	fmt.Fprintln(w, "\tstack := []lrgenFrame{{state: 1}}")
	fmt.Fprintln(w, "\ttok, hasTok := next()")
	fmt.Fprintln(w, "\tclassOf := func() string {")
	fmt.Fprintln(w, "\t\tif !hasTok {")
	fmt.Fprintln(w, "\t\t\treturn \"$\"")
	fmt.Fprintln(w, "\t\t}")
	fmt.Fprintln(w, "\t\treturn tok.ClassName()")
	fmt.Fprintln(w, "\t}")
	return nil
}

func (v *Visitor) AfterLeave(ctx *emit.Ctx, w *bytes.Buffer, allStates []automaton.Uid) error {
	fmt.Fprintln(w, "\tvar zero "+v.NonTerminalTypes[v.EntryRule])
	fmt.Fprintln(w, "\treturn zero, fmt.Errorf(\"lrgen: internal error: parse loop exited without accepting or erroring\")")
	fmt.Fprintln(w, "}")
	return nil
}

func (v *Visitor) BeginParseLoop(ctx *emit.Ctx, w *bytes.Buffer) error {
	fmt.Fprintln(w, "\tfor {")
	fmt.Fprintln(w, "\t\tswitch stack[len(stack)-1].state {")
	return nil
}

func (v *Visitor) EndParseLoop(ctx *emit.Ctx, w *bytes.Buffer) error {
	fmt.Fprintln(w, "\t\t}")
	fmt.Fprintln(w, "\t}")
	return nil
}

func (v *Visitor) EnterState(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid) error {
	fmt.Fprintf(w, "\t\tcase %d:\n", state)
	fmt.Fprintln(w, "\t\t\tswitch classOf() {")
	return nil
}

func (v *Visitor) LeaveState(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid) error {
	fmt.Fprintln(w, "\t\t\t}")
	return nil
}

func (v *Visitor) tokenCase(tok grammar.Token, pool *pool.Pool) string {
	if tok.Kind == grammar.KindEof {
		return "\"$\""
	}
	return fmt.Sprintf("%q", pool.Get(tok.ID))
}

func (v *Visitor) EnterMatch(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error {
	fmt.Fprintf(w, "\t\t\tcase %s:\n", v.tokenCase(token, ctx.Grammar.Pool()))
	return nil
}

func (v *Visitor) LeaveMatch(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error {
	return nil
}

func (v *Visitor) VisitShift(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, nextState automaton.Uid) error {
	fmt.Fprintln(w, "\t\t\t\tvar val any")
	fmt.Fprintln(w, "\t\t\t\tif hasTok {")
	fmt.Fprintln(w, "\t\t\t\t\tval = tok.Payload()")
	fmt.Fprintln(w, "\t\t\t\t}")
	fmt.Fprintf(w, "\t\t\t\tstack = append(stack, lrgenFrame{state: %d, value: val})\n", nextState)
	fmt.Fprintln(w, "\t\t\t\ttok, hasTok = next()")
	return nil
}

func (v *Visitor) VisitReduce(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, rule pool.ID, expansion []grammar.Token) error {
	ruleName := ctx.Grammar.Pool().Get(rule)
	n := len(expansion)

	for i := n - 1; i >= 0; i-- {
		typ := v.typeOf(ctx, expansion[i])
		fmt.Fprintf(w, "\t\t\t\tv%d := stack[len(stack)-1].value", i)
		if typ != "" && typ != "any" {
			fmt.Fprintf(w, ".(%s)", typ)
		}
		fmt.Fprintln(w, "")
		fmt.Fprintf(w, "\t\t\t\t_ = v%d\n", i)
		fmt.Fprintln(w, "\t\t\t\tstack = stack[:len(stack)-1]")
	}

	if ruleName == "S0" {
		// S0 -> E Eof carries no user code; its semantic value is simply
		// the entry rule's value (v0).
		fmt.Fprintln(w, "\t\t\t\treturn v0, nil")
		return nil
	}

	fmt.Fprintln(w, "\t\t\t\tresult := func() any {")
	fmt.Fprintf(w, "\t\t\t\t\treturn %s\n", codeOrDefault(expansionCode(ctx, rule, expansion)))
	fmt.Fprintln(w, "\t\t\t\t}()")

	fmt.Fprintf(w, "\t\t\t\tgt, ok := lrgenGoto%s[stack[len(stack)-1].state]\n", safeIdent(ruleName))
	fmt.Fprintln(w, "\t\t\t\tif !ok {")
	fmt.Fprintf(w, "\t\t\t\t\treturn *new(%s), fmt.Errorf(\"lrgen: internal error: no goto for %%s from state %%d\", %q, stack[len(stack)-1].state)\n", v.NonTerminalTypes[v.EntryRule], ruleName)
	fmt.Fprintln(w, "\t\t\t\t}")
	fmt.Fprintln(w, "\t\t\t\tstack = append(stack, lrgenFrame{state: gt, value: result})")
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
	fmt.Fprintln(w, "\t\t\tdefault:")
	fmt.Fprintf(w, "\t\t\t\treturn *new(%s), &UnexpectedToken{State: %d, Received: classOf(), Expected: %#v}\n", v.NonTerminalTypes[v.EntryRule], state, names)
	return nil
}

func (v *Visitor) VisitGoto(ctx *emit.Ctx, w *bytes.Buffer, symbol pool.ID, gotos []emit.GotoEdge) error {
	name := ctx.Grammar.Pool().Get(symbol)
	fmt.Fprintf(w, "var lrgenGoto%s = map[int]int{\n", safeIdent(name))
	for _, e := range gotos {
		fmt.Fprintf(w, "\t%d: %d,\n", e.From, e.To)
	}
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "")
	return nil
}

// Format invokes gofmt on path, shelling out to the target's own formatter
// post-emission.
func (v *Visitor) Format(path string) error {
	cmd := exec.Command("gofmt", "-w", path)
	return cmd.Run()
}

// Summary returns a short, humanized description of the generated output
// (state count and output size).
func Summary(states int, source string) string {
	return fmt.Sprintf("%s states, wrote %s", humanize.Comma(int64(states)), humanize.Bytes(uint64(len(source))))
}

func (v *Visitor) typeOf(ctx *emit.Ctx, tok grammar.Token) string {
	return grammar.Fold(tok,
		func(id pool.ID) string { return v.NonTerminalTypes[ctx.Grammar.Pool().Get(id)] },
		func(id pool.ID) string { return v.TerminalTypes[ctx.Grammar.Pool().Get(id)] },
		"any",
	)
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
		return "nil"
	}
	return code
}

func safeIdent(name string) string {
	var buf bytes.Buffer
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			buf.WriteRune(r)
		} else {
			buf.WriteByte('_')
		}
	}
	return buf.String()
}
