package specfile

import "github.com/dekarrin/lrgen/grammar"

// BootstrapGrammar returns the grammar-spec text format's own grammar, expressed
// as an lrgen-format grammar.Grammar. Feeding this through the normal
// automaton/table/emit pipeline and regenerating this package's hand-written
// recursive-descent lexer/parser as LR(1)-generated code is what --bootstrap
// drives (genrun.Bootstrap); it's a developer-invoked sanity check that the
// generator can consume a grammar as complex as its own input format, not
// something any normal `lrgen` invocation runs.
func BootstrapGrammar() *grammar.Grammar {
	b := grammar.NewBuilder()

	ident := b.Term("IDENT")
	equals := b.Term("EQUALS")
	colon := b.Term("COLON")
	pipe := b.Term("PIPE")
	brace := b.Term("BRACE")

	lines := b.NonTerm("lines")
	line := b.NonTerm("line")
	configLine := b.NonTerm("config_line")
	rule := b.NonTerm("rule")
	alts := b.NonTerm("alts")
	alt := b.NonTerm("alt")
	toks := b.NonTerm("toks")

	b.AddProduction("spec", []grammar.Token{lines}, "newSpec(v0)")

	b.AddProduction("lines", nil, "nil")
	b.AddProduction("lines", []grammar.Token{lines, line}, "append(v0, v1)")

	b.AddProduction("line", []grammar.Token{configLine}, "v0")
	b.AddProduction("line", []grammar.Token{rule}, "v0")

	b.AddProduction("config_line", []grammar.Token{ident, equals, ident}, "configEntry(v0, v2)")
	b.AddProduction("config_line", []grammar.Token{ident, equals, brace}, "configEntry(v0, v2)")

	b.AddProduction("rule", []grammar.Token{ident, colon, brace, alts}, "newRule(v0, v2, v3)")

	b.AddProduction("alts", nil, "nil")
	b.AddProduction("alts", []grammar.Token{alts, pipe, alt}, "append(v0, v2)")

	b.AddProduction("alt", []grammar.Token{toks, brace}, "newAlt(v0, v1)")

	b.AddProduction("toks", nil, "nil")
	b.AddProduction("toks", []grammar.Token{toks, ident}, "append(v0, v1)")

	return b.Finish("spec")
}
