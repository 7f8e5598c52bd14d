// Package genrun is the batch driver: it wires pool/grammar/automaton/table
// together with a chosen emit.Visitor and the diag package in a single
// top-level function, the same way one generation request is sequenced
// end to end. Every Run gets a run id from google/uuid, prefixed to its log
// lines, so multi-run logs can be correlated without relying on wall-clock
// ordering; Bootstrap neither logs nor gets a run id.
package genrun

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dekarrin/lrgen/automaton"
	"github.com/dekarrin/lrgen/diag"
	"github.com/dekarrin/lrgen/emit"
	"github.com/dekarrin/lrgen/emit/golang"
	"github.com/dekarrin/lrgen/emit/python"
	"github.com/dekarrin/lrgen/emit/rust"
	"github.com/dekarrin/lrgen/grammar"
	"github.com/dekarrin/lrgen/lrgenerr"
	"github.com/dekarrin/lrgen/specfile"
	"github.com/dekarrin/lrgen/table"
)

// Logger is the minimal surface genrun needs; satisfied by the stdlib
// *log.Logger, kept as a small interface instead of depending on the
// concrete type everywhere so callers can plug in their own.
type Logger interface {
	Printf(format string, v ...any)
}

// Options configures one generation run; cmd/lrgen translates its flags
// into this struct.
type Options struct {
	SpecPath   string
	OutputPath string // "" means stdout, or OutputDir/lrgen_output when OutputDir is set
	OutputDir  string
	EmitDOT    bool
	DotFormat  string // e.g. "svg", default "svg"
	Format     bool   // invoke the backend's formatter after writing
	Logger     Logger
}

// Result reports what a successful Run produced, for the CLI's summary line.
type Result struct {
	RunID      string
	States     int
	Source     string
	OutputPath string
	DotPath    string
}

func (o *Options) logger() Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(os.Stderr, "lrgen: ", log.LstdFlags)
}

// Run executes one full generation: read and parse the spec file, build the
// grammar, construct the canonical LR(1) collection, synthesize the table,
// and hand it to the backend named by the spec's `target` config key.
func Run(opts Options) (*Result, error) {
	runID := uuid.NewString()
	logger := opts.logger()
	logger.Printf("run %s: starting, spec=%s", runID, opts.SpecPath)

	raw, err := os.ReadFile(opts.SpecPath)
	if err != nil {
		return nil, lrgenerr.WrapIO("reading spec file", err)
	}

	spec, err := specfile.Parse(string(raw))
	if err != nil {
		return nil, err
	}

	required, err := spec.RequireAll("target", "prelude")
	if err != nil {
		return nil, err
	}
	target, prelude := required["target"], required["prelude"]

	g, types, err := spec.Grammar()
	if err != nil {
		return nil, err
	}

	logger.Printf("run %s: grammar has %d terminals, %d non-terminals", runID, len(g.Terminals()), len(g.NonTerminals()))

	seed := grammar.ItemSet{}
	seed.Add(g.Initial(g.StartRule())[0])

	graph := automaton.Build(g, seed)
	logger.Printf("run %s: built %d states", runID, len(graph.States()))

	tbl, conflict := table.Synthesize(graph)
	if conflict != nil {
		diag.ReportConflict(conflict, g)
		return nil, lrgenerr.Conflict(int(conflict.State), conflict.Token.Display(g.Pool()), conflict.Kind(), "synthesis aborted")
	}
	diag.ReportSummary(graph, tbl)

	visitor, formatter, err := resolveBackend(target, prelude, types, spec.TerminalTypes(), entryRuleName(spec))
	if err != nil {
		return nil, err
	}

	source, err := emit.Render(visitor, tbl, g)
	if err != nil {
		return nil, lrgenerr.Wrap("rendering output", err)
	}

	res := &Result{RunID: runID, States: len(graph.States()), Source: source}

	if err := writeOutput(opts, source, res); err != nil {
		return nil, err
	}

	if opts.Format && formatter != nil {
		if err := formatter(res.OutputPath); err != nil {
			logger.Printf("run %s: formatter failed: %v", runID, err)
		}
	}

	if opts.EmitDOT {
		dotPath, err := writeDOT(opts, graph, g)
		if err != nil {
			return nil, err
		}
		res.DotPath = dotPath
	}

	logger.Printf("run %s: done", runID)
	return res, nil
}

func entryRuleName(spec *specfile.Spec) string {
	if e := spec.Config["entry"]; e != "" {
		return e
	}
	return "ENTRY"
}

type formatFunc func(path string) error

func resolveBackend(target, prelude string, nonTermTypes, termTypes map[string]string, entry string) (emit.Visitor, formatFunc, error) {
	switch target {
	case "golang", "go":
		v := golang.New(prelude, "main", nonTermTypes, termTypes, entry)
		return v, v.Format, nil
	case "python", "py":
		terms := make([]string, 0, len(termTypes))
		for name := range termTypes {
			terms = append(terms, name)
		}
		v := python.New(prelude, terms, entry)
		return v, v.Format, nil
	case "rust", "rs":
		v := rust.New(prelude, nonTermTypes, termTypes, entry)
		return v, v.Format, nil
	default:
		return nil, nil, lrgenerr.UnsupportedTarget(target)
	}
}

func writeOutput(opts Options, source string, res *Result) error {
	if opts.OutputPath == "" && opts.OutputDir == "" {
		fmt.Print(source)
		return nil
	}

	path := opts.OutputPath
	if path == "" {
		path = filepath.Join(opts.OutputDir, "lrgen_output")
	} else if opts.OutputDir != "" {
		path = filepath.Join(opts.OutputDir, opts.OutputPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return lrgenerr.WrapIO("creating output directory", err)
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return lrgenerr.WrapIO("writing output file", err)
	}
	res.OutputPath = path
	return nil
}

func writeDOT(opts Options, graph *automaton.Graph, g *grammar.Grammar) (string, error) {
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	dotPath := filepath.Join(dir, "dfa.dot")
	src := diag.DOT(graph, g)
	if err := os.WriteFile(dotPath, []byte(src), 0o644); err != nil {
		return "", lrgenerr.WrapIO("writing dot file", err)
	}

	format := opts.DotFormat
	if format == "" {
		format = "svg"
	}
	imgPath := filepath.Join(dir, "dfa."+format)
	if err := diag.RenderDOTToFile(src, format, imgPath); err != nil {
		return dotPath, err
	}
	return dotPath, nil
}

// Bootstrap regenerates the specfile package's own grammar-spec parser as
// generated LR(1) Go code and returns the rendered source without writing
// it anywhere -- the caller (cmd/lrgen) decides where a bootstrap run's
// output belongs.
func Bootstrap() (string, error) {
	g := specfile.BootstrapGrammar()

	seed := grammar.ItemSet{}
	seed.Add(g.Initial(g.StartRule())[0])
	graph := automaton.Build(g, seed)

	tbl, conflict := table.Synthesize(graph)
	if conflict != nil {
		diag.ReportConflict(conflict, g)
		return "", lrgenerr.Conflict(int(conflict.State), conflict.Token.Display(g.Pool()), conflict.Kind(), "bootstrap grammar has a conflict")
	}

	v := golang.New("", "specfile", map[string]string{"spec": "*Spec"}, map[string]string{}, "spec")
	return emit.Render(v, tbl, g)
}
