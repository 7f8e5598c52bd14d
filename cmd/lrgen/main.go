/*
Lrgen reads a grammar specification file and emits an LR(1) parser in the
target language named by the spec's `target` config key.

Usage:

	lrgen [flags] GRAMMAR_FILE

The flags are:

	-o, --output FILE
		Write generated output to FILE instead of stdout.

	--output-dir DIR
		Write generated output (and --emit-dot artifacts) under DIR.

	--emit-dot
		Also write a Graphviz rendering of the item-set graph to
		<output-dir>/dfa.dot and invoke the system "dot" binary to render
		it to an image.

	--format
		Invoke the target backend's own formatter on the generated output.

	--bootstrap
		Regenerate the grammar-spec parser itself from its own grammar and
		print the result, ignoring GRAMMAR_FILE.

	-v, --version
		Print the current version and exit.
*/
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"

	"github.com/dekarrin/lrgen/genrun"
	"github.com/dekarrin/lrgen/internal/version"
	"github.com/dekarrin/lrgen/lrgenerr"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitUsageError indicates bad flags or a missing positional argument.
	ExitUsageError

	// ExitGenError indicates a failure anywhere in the generation pipeline
	// (spec syntax, conflict, or I/O).
	ExitGenError
)

var (
	returnCode int = ExitSuccess

	flagVersion   = pflag.BoolP("version", "v", false, "Print the current version and exit")
	flagOutput    = pflag.StringP("output", "o", "", "Write generated output to this file instead of stdout")
	flagOutputDir = pflag.String("output-dir", "", "Write generated output (and --emit-dot artifacts) under this directory")
	flagEmitDot   = pflag.Bool("emit-dot", false, "Write a Graphviz rendering of the item-set graph and invoke dot")
	flagFormat    = pflag.Bool("format", false, "Invoke the target backend's own formatter on the generated output")
	flagBootstrap = pflag.Bool("bootstrap", false, "Regenerate the grammar-spec parser itself and print the result")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occurred: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	if *flagBootstrap {
		src, err := genrun.Bootstrap()
		if err != nil {
			reportError(err)
			returnCode = ExitGenError
			return
		}
		fmt.Print(src)
		return
	}

	if pflag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "lrgen: missing grammar file argument")
		pflag.Usage()
		returnCode = ExitUsageError
		return
	}

	res, err := genrun.Run(genrun.Options{
		SpecPath:   pflag.Arg(0),
		OutputPath: *flagOutput,
		OutputDir:  *flagOutputDir,
		EmitDOT:    *flagEmitDot,
		Format:     *flagFormat,
	})
	if err != nil {
		reportError(err)
		returnCode = ExitGenError
		return
	}

	pterm.Success.Printfln(
		"%d states, wrote %s",
		res.States,
		humanize.Bytes(uint64(len(res.Source))),
	)
	if res.OutputPath != "" {
		pterm.Info.Printfln("output: %s", res.OutputPath)
	}
	if res.DotPath != "" {
		pterm.Info.Printfln("graph: %s", res.DotPath)
	}
}

func reportError(err error) {
	if kind := lrgenerr.Kind(err); kind != "" {
		pterm.Error.Printfln("[%s] %s", kind, err.Error())
		return
	}
	pterm.Error.Printfln("%s", err.Error())
}
