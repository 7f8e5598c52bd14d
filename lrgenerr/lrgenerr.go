// Package lrgenerr defines the typed errors lrgen's pipeline returns: every
// error carries both a short operator-facing message and, where useful, the
// lower-level cause it wraps, rather than collapsing everything to a bare
// fmt.Errorf string.
package lrgenerr

import (
	"errors"
	"fmt"
)

// genError is the shared shape behind every typed error this package
// exports: a human summary plus an optional wrapped cause.
type genError struct {
	kind    string
	summary string
	wrap    error
}

func (e *genError) Error() string {
	if e.wrap != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.summary, e.wrap)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.summary)
}

func (e *genError) Unwrap() error { return e.wrap }

// Kind returns the short category tag (e.g. "conflict", "spec_syntax"),
// useful for callers that want to branch without string-matching Error().
func (e *genError) Kind() string { return e.kind }

// Conflict wraps a table.Conflict-shaped description into an error that
// carries the grammar state and offending token for CLI reporting.
func Conflict(state int, tokenDisplay, kind, detail string) error {
	return &genError{
		kind:    "conflict",
		summary: fmt.Sprintf("%s conflict in state %d on %s: %s", kind, state, tokenDisplay, detail),
	}
}

// UnsupportedTarget reports a spec `target` config value that names no
// known emission backend.
func UnsupportedTarget(name string) error {
	return &genError{kind: "unsupported_target", summary: fmt.Sprintf("no such emission target %q", name)}
}

// MissingRequiredConfig reports a spec file missing a mandatory key=value
// entry.
func MissingRequiredConfig(key string) error {
	return &genError{kind: "missing_config", summary: fmt.Sprintf("spec file is missing required config key %q", key)}
}

// SpecSyntaxError reports a lex/parse failure while reading a grammar spec
// file, at the given 1-based line.
func SpecSyntaxError(line int, msg string) error {
	return &genError{kind: "spec_syntax", summary: fmt.Sprintf("line %d: %s", line, msg)}
}

// WrapIO wraps a filesystem or subprocess error (reading the spec file,
// shelling out to a target formatter or to dot) with the operation that
// failed.
func WrapIO(op string, cause error) error {
	return &genError{kind: "io", summary: op, wrap: cause}
}

// Wrap attaches a summary to an arbitrary lower-level cause without
// assigning it one of the specific kinds above.
func Wrap(summary string, cause error) error {
	return &genError{kind: "internal", summary: summary, wrap: cause}
}

// Kind extracts the short category tag from err if it is (or wraps) a
// lrgenerr error, or "" otherwise.
func Kind(err error) string {
	type kinder interface{ Kind() string }
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}
