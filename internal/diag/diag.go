// Package diag defines the uniform diagnostic record shared by every pass
// of the compiler (scanner, parser, type checker, linter, compiler
// orchestrator). The shape is grounded on the teacher's core.Diagnostic /
// core.CLIError dual-purpose error types: one struct that is simultaneously
// a machine-readable payload (JSON) and a human-readable error.
package diag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies which pass raised a diagnostic and, transitively, how
// fatal it is expected to be (spec.md §7's taxonomy).
type Kind string

const (
	ScanError    Kind = "ScanError"
	ParseError   Kind = "ParseError"
	TypeError    Kind = "TypeError"
	LintError    Kind = "LintError"
	LintWarning  Kind = "LintWarning"
	LintInfo     Kind = "LintInfo"
	CompileError Kind = "CompileError"
)

// Fatal reports whether a diagnostic of this kind halts codegen.
func (k Kind) Fatal() bool {
	switch k {
	case ScanError, ParseError, TypeError, LintError, CompileError:
		return true
	default:
		return false
	}
}

// Span is an optional source range attached to a diagnostic.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

// Diagnostic is a single uniform error/warning record.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Span    *Span  `json:"span,omitempty"`
}

// New builds a Diagnostic at the given position.
func New(kind Kind, line, col int, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

// Error satisfies the error interface: "Kind at L:C: message".
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", d.Kind, d.Line, d.Column, d.Message)
}

func (d Diagnostic) String() string { return d.Error() }

// JSON renders the diagnostic as a compact JSON object for host tooling.
func (d Diagnostic) JSON() string {
	b, err := json.Marshal(d)
	if err != nil {
		return `{"kind":"` + string(d.Kind) + `"}`
	}
	return string(b)
}

// Report is an ordered batch of diagnostics collected by a single compile.
type Report []Diagnostic

// HasFatal reports whether any diagnostic in the report is fatal.
func (r Report) HasFatal() bool {
	for _, d := range r {
		if d.Kind.Fatal() {
			return true
		}
	}
	return false
}

// Error renders one "Kind at L:C: message" line per diagnostic, matching
// the CLI-facing format required by spec.md §7.
func (r Report) Error() string {
	lines := make([]string, len(r))
	for i, d := range r {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// Add appends a diagnostic and returns the updated report, mirroring the
// accumulate-then-batch propagation policy of the type checker and linter.
func (r Report) Add(d Diagnostic) Report { return append(r, d) }
