package genrun

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dekarrin/lrgen/specfile"
)

const arithSpecSrc = `
target = golang
prelude = { }
entry = A
token_Int = int

A : { int }
  | A PLUS Int { v0 + v2 }
  | Int { v0 }
`

func writeSpec(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "arith.lrgen")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRun_GolangTargetProducesSource(t *testing.T) {
	specPath := writeSpec(t, arithSpecSrc)
	outDir := t.TempDir()

	res, err := Run(Options{
		SpecPath:  specPath,
		OutputDir: outDir,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.NotEmpty(t, res.RunID)
	assert.Greater(t, res.States, 0)
	assert.Contains(t, res.Source, "package main")
	assert.Contains(t, res.Source, "func Parse(")
	assert.FileExists(t, res.OutputPath)
}

func TestRun_UnsupportedTargetFails(t *testing.T) {
	specPath := writeSpec(t, strings.Replace(arithSpecSrc, "target = golang", "target = cobol", 1))

	_, err := Run(Options{SpecPath: specPath, OutputDir: t.TempDir()})
	require.Error(t, err)
}

func TestRun_MissingRequiredConfigFails(t *testing.T) {
	specPath := writeSpec(t, "entry = A\nA : { int } | Int { v0 }\n")

	_, err := Run(Options{SpecPath: specPath, OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target")
}

func TestRun_MissingSpecFileFails(t *testing.T) {
	_, err := Run(Options{SpecPath: filepath.Join(t.TempDir(), "nope.lrgen")})
	require.Error(t, err)
}

func TestRun_ReduceReduceConflictFails(t *testing.T) {
	ambiguous := `
target = golang
prelude = { }
entry = S

S : { int }
  | A { v0 }
  | B { v0 }

A : { int }
  | X { v0 }

B : { int }
  | X { v0 }
`
	specPath := writeSpec(t, ambiguous)

	_, err := Run(Options{SpecPath: specPath, OutputDir: t.TempDir()})
	require.Error(t, err)
}

func TestBootstrap_ProducesGoSourceForSpecfileGrammar(t *testing.T) {
	src, err := Bootstrap()
	require.NoError(t, err)

	assert.Contains(t, src, "package specfile")
	assert.Contains(t, src, "func Parse(")
}

func TestEntryRuleName_DefaultsToENTRY(t *testing.T) {
	spec, err := specfile.Parse("target = golang\nprelude = { }\nA : { int } | Int { v0 }\n")
	require.NoError(t, err)

	assert.Equal(t, "ENTRY", entryRuleName(spec))
}
