package specfile

import (
	"strings"

	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/internal/util"
	"github.com/dekarrin/lrgen/lrgenerr"
)

// Alternative is one `tok1 tok2 ... { code }` production body parsed from a
// rule declaration.
type Alternative struct {
	Tokens []string
	Code   string
}

// RuleDecl is one `name : { type } | alt1 | alt2 | ...` declaration.
type RuleDecl struct {
	Name         string
	Type         string
	Alternatives []Alternative
}

// Spec is the fully parsed contents of a grammar specification file: its
// config section plus every rule declaration, in file order.
type Spec struct {
	Config map[string]string
	Rules  []RuleDecl
}

// Parse lexes and parses src into a Spec. It does not resolve terminal vs.
// non-terminal classification or build a grammar.Grammar -- that's
// Spec.Grammar's job, once every rule name is known.
func Parse(src string) (*Spec, error) {
	l := newLexer(src)
	toks, err := tokenizeAll(l)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	spec := &Spec{Config: make(map[string]string)}

	for !p.atEOF() {
		if p.peekIsConfigLine() {
			key, val, err := p.parseConfigLine()
			if err != nil {
				return nil, err
			}
			spec.Config[key] = val
			continue
		}

		rule, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		spec.Rules = append(spec.Rules, rule)
	}

	return spec, nil
}

func tokenizeAll(l *lexer) ([]lexToken, error) {
	var out []lexToken
	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		if t.kind == tokEOF {
			return out, nil
		}
	}
}

type parser struct {
	toks []lexToken
	pos  int
}

func (p *parser) cur() lexToken  { return p.toks[p.pos] }
func (p *parser) atEOF() bool    { return p.cur().kind == tokEOF }
func (p *parser) advance() lexToken {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

// peekIsConfigLine reports whether the upcoming tokens are `ident = ...`
// rather than `ident : ...`, without consuming anything.
func (p *parser) peekIsConfigLine() bool {
	if p.cur().kind != tokIdent {
		return false
	}
	if p.pos+1 >= len(p.toks) {
		return false
	}
	return p.toks[p.pos+1].kind == tokEquals
}

func (p *parser) expect(k tokenKind, what string) (lexToken, error) {
	if p.cur().kind != k {
		return lexToken{}, lrgenerr.SpecSyntaxError(p.cur().line, "expected "+what)
	}
	return p.advance(), nil
}

func (p *parser) parseConfigLine() (key, val string, err error) {
	keyTok, err := p.expect(tokIdent, "config key")
	if err != nil {
		return "", "", err
	}
	if _, err := p.expect(tokEquals, "'='"); err != nil {
		return "", "", err
	}

	switch p.cur().kind {
	case tokIdent:
		return keyTok.text, p.advance().text, nil
	case tokBrace:
		return keyTok.text, p.advance().text, nil
	default:
		return "", "", lrgenerr.SpecSyntaxError(p.cur().line, "expected config value")
	}
}

func (p *parser) parseRule() (RuleDecl, error) {
	nameTok, err := p.expect(tokIdent, "rule name")
	if err != nil {
		return RuleDecl{}, err
	}
	if _, err := p.expect(tokColon, "':'"); err != nil {
		return RuleDecl{}, err
	}
	typeTok, err := p.expect(tokBrace, "{ type literal }")
	if err != nil {
		return RuleDecl{}, err
	}

	rule := RuleDecl{Name: nameTok.text, Type: typeTok.text}

	for p.cur().kind == tokPipe {
		p.advance()
		alt, err := p.parseAlternative()
		if err != nil {
			return RuleDecl{}, err
		}
		rule.Alternatives = append(rule.Alternatives, alt)
	}

	return rule, nil
}

func (p *parser) parseAlternative() (Alternative, error) {
	var alt Alternative
	for p.cur().kind == tokIdent {
		alt.Tokens = append(alt.Tokens, p.advance().text)
	}
	if p.cur().kind == tokBrace {
		alt.Code = p.advance().text
	}
	return alt, nil
}

// Grammar resolves the parsed Spec into a *grammar.Grammar: any token name
// that appears as some rule's left-hand side is a non-terminal, every other
// name used in a rhs is a terminal.
func (s *Spec) Grammar() (*grammar.Grammar, map[string]string, error) {
	nonTerms := make(map[string]bool, len(s.Rules))
	for _, r := range s.Rules {
		nonTerms[r.Name] = true
	}

	b := grammar.NewBuilder()
	typeByRule := make(map[string]string, len(s.Rules))

	for _, r := range s.Rules {
		typeByRule[r.Name] = r.Type
		for _, alt := range r.Alternatives {
			var rhs []grammar.Token
			for _, name := range alt.Tokens {
				if nonTerms[name] {
					rhs = append(rhs, b.NonTerm(name))
				} else {
					rhs = append(rhs, b.Term(name))
				}
			}
			b.AddProduction(r.Name, rhs, alt.Code)
		}
	}

	entry := s.Config["entry"]
	if entry == "" {
		entry = "ENTRY"
	}

	g := b.Finish(entry)
	return g, typeByRule, nil
}

// TerminalTypes extracts the token_<NAME>=<type> payload declarations from
// the config section.
func (s *Spec) TerminalTypes() map[string]string {
	out := make(map[string]string)
	for k, v := range s.Config {
		if name, ok := strings.CutPrefix(k, "token_"); ok {
			out[name] = v
		}
	}
	return out
}

// Require fetches a required config key, returning a MissingRequiredConfig
// error if absent.
func (s *Spec) Require(key string) (string, error) {
	v, ok := s.Config[key]
	if !ok {
		return "", lrgenerr.MissingRequiredConfig(key)
	}
	return v, nil
}

// RequireAll fetches every key in keys, collecting every missing one into a
// single MissingRequiredConfig error with an English-joined list (e.g.
// "target" and "prelude" reported together when both are absent), built
// with internal/util.MakeTextList's oxford-comma join.
func (s *Spec) RequireAll(keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	var missing []string
	for _, k := range keys {
		v, ok := s.Config[k]
		if !ok {
			missing = append(missing, k)
			continue
		}
		out[k] = v
	}
	if len(missing) > 0 {
		return nil, lrgenerr.MissingRequiredConfig(util.MakeTextList(missing))
	}
	return out, nil
}
