// Package rust implements emit.Visitor for a Rust target, generating a
// single module with a hand-rolled tagged stack value enum and one parse
// function whose loop matches on the current state id: a tagged stack cell,
// and reductions that pattern-match the popped tag before using it, in
// Rust's own enum/match idiom.
package rust

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

// Visitor emits a Rust module exposing a parse() function generic over a
// Token trait with class_name()/payload() methods, matching the contract
// emit/golang.Visitor and emit/python.Visitor define for their own hosts.
type Visitor struct {
	Prelude          string
	NonTerminalTypes map[string]string
	TerminalTypes    map[string]string
	EntryRule        string
	FuncName         string
}

// New constructs a Visitor, folding the entry rule's type onto the
// synthetic "S0" rule the same way emit/golang.New does.
func New(prelude string, nonTermTypes, termTypes map[string]string, entryRule string) *Visitor {
	nt := make(map[string]string, len(nonTermTypes)+1)
	for k, v := range nonTermTypes {
		nt[k] = v
	}
	nt["S0"] = nt[entryRule]
	return &Visitor{
		Prelude:          prelude,
		NonTerminalTypes: nt,
		TerminalTypes:    termTypes,
		EntryRule:        "S0",
		FuncName:         "parse",
	}
}

var _ emit.Visitor = (*Visitor)(nil)

func (v *Visitor) stackValueVariant(tok grammar.Token, ctx *emit.Ctx) string {
	return grammar.Fold(tok,
		func(id pool.ID) string { return "NonTerm" + safeIdent(ctx.Grammar.Pool().Get(id)) },
		func(id pool.ID) string {
			name := ctx.Grammar.Pool().Get(id)
			if _, ok := v.TerminalTypes[name]; ok {
				return "Term" + safeIdent(name)
			}
			return "None_"
		},
		"None_",
	)
}

func (v *Visitor) BeforeEnter(ctx *emit.Ctx, w *bytes.Buffer, allStates []automaton.Uid) error {
	fmt.Fprintln(w, "// Code generated by lrgen. DO NOT EDIT.")
	fmt.Fprintln(w, "#![allow(non_snake_case, dead_code)]")
	if v.Prelude != "" {
		fmt.Fprintln(w, v.Prelude)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "#[derive(Debug)]")
	fmt.Fprintln(w, "pub enum StackValue {")
	fmt.Fprintln(w, "    None_,")
	termNames := make([]string, 0, len(v.TerminalTypes))
	for name := range v.TerminalTypes {
		termNames = append(termNames, name)
	}
	sort.Strings(termNames)
	for _, name := range termNames {
		fmt.Fprintf(w, "    Term%s(%s),\n", safeIdent(name), v.TerminalTypes[name])
	}
	nonTermNames := make([]string, 0, len(v.NonTerminalTypes))
	for name := range v.NonTerminalTypes {
		nonTermNames = append(nonTermNames, name)
	}
	sort.Strings(nonTermNames)
	for _, name := range nonTermNames {
		if name == "S0" {
			continue
		}
		fmt.Fprintf(w, "    NonTerm%s(%s),\n", safeIdent(name), v.NonTerminalTypes[name])
	}
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "#[derive(Debug)]")
	fmt.Fprintln(w, "pub struct UnexpectedToken {")
	fmt.Fprintln(w, "    pub state: usize,")
	fmt.Fprintln(w, "    pub received: String,")
	fmt.Fprintln(w, "    pub expected: Vec<String>,")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "impl std::fmt::Display for UnexpectedToken {")
	fmt.Fprintln(w, "    fn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {")
	fmt.Fprintln(w, "        write!(f, \"unexpected token {:?} in state {}, expected one of {:?}\", self.received, self.state, self.expected)")
	fmt.Fprintln(w, "    }")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "impl std::error::Error for UnexpectedToken {}")
	fmt.Fprintln(w, "")
	entryType := v.NonTerminalTypes[v.EntryRule]
	fmt.Fprintf(w, "pub fn %s<T: crate::Token>(mut tokens: impl Iterator<Item = T>) -> Result<%s, UnexpectedToken> {\n", v.FuncName, entryType)
	fmt.Fprintln(w, "    let mut stack: Vec<(usize, StackValue)> = vec![(1, StackValue::None_)];")
	fmt.Fprintln(w, "    let mut tok = tokens.next();")
	fmt.Fprintln(w, "    loop {")
	fmt.Fprintln(w, "        let class_of = |t: &Option<T>| -> String {")
	fmt.Fprintln(w, "            match t { Some(t) => t.class_name().to_owned(), None => \"$\".to_owned() }")
	fmt.Fprintln(w, "        };")
	fmt.Fprintln(w, "        match stack.last().unwrap().0 {")
	return nil
}

func (v *Visitor) AfterLeave(ctx *emit.Ctx, w *bytes.Buffer, allStates []automaton.Uid) error {
	fmt.Fprintln(w, "        }")
	fmt.Fprintln(w, "    }")
	fmt.Fprintln(w, "}")
	return nil
}

func (v *Visitor) BeginParseLoop(ctx *emit.Ctx, w *bytes.Buffer) error { return nil }
func (v *Visitor) EndParseLoop(ctx *emit.Ctx, w *bytes.Buffer) error   { return nil }

func (v *Visitor) EnterState(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid) error {
	fmt.Fprintf(w, "            %d => match class_of(&tok).as_str() {\n", state)
	return nil
}

func (v *Visitor) LeaveState(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid) error {
	fmt.Fprintln(w, "            },")
	return nil
}

func (v *Visitor) EnterMatch(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error {
	lit := "\"$\""
	if token.Kind != grammar.KindEof {
		lit = fmt.Sprintf("%q", ctx.Grammar.Pool().Get(token.ID))
	}
	fmt.Fprintf(w, "                %s => {\n", lit)
	return nil
}

func (v *Visitor) LeaveMatch(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token) error {
	fmt.Fprintln(w, "                }")
	return nil
}

func (v *Visitor) VisitShift(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, nextState automaton.Uid) error {
	variant := v.stackValueVariant(token, ctx)
	if variant == "None_" {
		fmt.Fprintf(w, "                    stack.push((%d, StackValue::None_));\n", nextState)
	} else {
		fmt.Fprintln(w, "                    let payload = tok.take().unwrap().payload();")
		fmt.Fprintf(w, "                    stack.push((%d, StackValue::%s(payload)));\n", nextState, variant)
	}
	fmt.Fprintln(w, "                    tok = tokens.next();")
	return nil
}

func (v *Visitor) VisitReduce(ctx *emit.Ctx, w *bytes.Buffer, state automaton.Uid, token grammar.Token, rule pool.ID, expansion []grammar.Token) error {
	ruleName := ctx.Grammar.Pool().Get(rule)
	n := len(expansion)

	for i := n - 1; i >= 0; i-- {
		variant := v.stackValueVariant(expansion[i], ctx)
		fmt.Fprintf(w, "                    let v%d = match stack.pop().unwrap().1 {\n", i)
		if variant == "None_" {
			fmt.Fprintf(w, "                        StackValue::None_ => (),\n")
			fmt.Fprintf(w, "                        _ => unreachable!(\"lrgen: stack corruption reducing %s\"),\n", ruleName)
		} else {
			fmt.Fprintf(w, "                        StackValue::%s(v) => v,\n", variant)
			fmt.Fprintf(w, "                        _ => unreachable!(\"lrgen: stack corruption reducing %s\"),\n", ruleName)
		}
		fmt.Fprintln(w, "                    };")
	}

	if ruleName == "S0" {
		fmt.Fprintln(w, "                    return Ok(v0);")
		return nil
	}

	code := codeOrDefault(expansionCode(ctx, rule, expansion))
	fmt.Fprintf(w, "                    let result = %s;\n", code)
	fmt.Fprintf(w, "                    let gt = match stack.last().unwrap().0 { %s };\n", gotoArmsPlaceholder(ruleName))
	fmt.Fprintf(w, "                    stack.push((gt, StackValue::NonTerm%s(result)));\n", safeIdent(ruleName))
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
	fmt.Fprintln(w, "                _ => {")
	fmt.Fprintf(w, "                    return Err(UnexpectedToken { state: %d, received: class_of(&tok), expected: vec![%s] });\n", state, rustStrVec(names))
	fmt.Fprintln(w, "                }")
	return nil
}

func (v *Visitor) VisitGoto(ctx *emit.Ctx, w *bytes.Buffer, symbol pool.ID, gotos []emit.GotoEdge) error {
	name := ctx.Grammar.Pool().Get(symbol)
	fmt.Fprintf(w, "fn lrgen_goto_%s(from: usize) -> usize {\n", safeIdent(name))
	fmt.Fprintln(w, "    match from {")
	for _, e := range gotos {
		fmt.Fprintf(w, "        %d => %d,\n", e.From, e.To)
	}
	fmt.Fprintln(w, "        _ => unreachable!(\"lrgen: internal error: no goto state\"),")
	fmt.Fprintln(w, "    }")
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w, "")
	return nil
}

// gotoArmsPlaceholder defers to the standalone lrgen_goto_<rule> function
// VisitGoto emits, rather than inlining the match here, since VisitReduce
// only receives its own rule and expansion, not the aggregated edge list
// that emit.Render hands to VisitGoto.
func gotoArmsPlaceholder(ruleName string) string {
	return fmt.Sprintf("s => lrgen_goto_%s(s)", safeIdent(ruleName))
}

// Format invokes rustfmt on path.
func (v *Visitor) Format(path string) error {
	cmd := exec.Command("rustfmt", path)
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
		return "Default::default()"
	}
	return code
}

func rustStrVec(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q.to_string()", s)
	}
	return strings.Join(quoted, ", ")
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
