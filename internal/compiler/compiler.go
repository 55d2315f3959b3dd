// Package compiler orchestrates the full scan → parse → type-check → lint →
// emit pipeline and exposes the independently-usable stage functions
// (spec.md §4.7, §6). Propagation policy: scanning and parsing fail fast (a
// single error halts the pipeline); type-checking and linting accumulate
// diagnostics across the whole program; codegen is skipped whenever any
// fatal diagnostic was raised by an earlier stage.
package compiler

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/diag"
	"github.com/oxhq/kimchilang/internal/emit"
	"github.com/oxhq/kimchilang/internal/lint"
	"github.com/oxhq/kimchilang/internal/parser"
	"github.com/oxhq/kimchilang/internal/registry"
	"github.com/oxhq/kimchilang/internal/scanner"
	"github.com/oxhq/kimchilang/internal/token"
	"github.com/oxhq/kimchilang/internal/typecheck"
)

// KnownExtensions lists the file suffixes a host CLI may use to recognize
// Kimchi source; the core itself never inspects file names.
var KnownExtensions = []string{".km", ".kimchi", ".kc", ".static"}

// Options configures a single Compile call.
type Options struct {
	ModulePath     string // dotted export-registry path; "" for a standalone script
	SkipTypeCheck  bool
	SkipLint       bool
	Debug          bool   // re-validates emitted JS via internal/jscheck before returning
	PreviousOutput string // when non-empty, Result.Diff is populated against this text
}

// Result is the outcome of a full Compile call.
type Result struct {
	Code  string
	Diags diag.Report
	Diff  string // unified diff against Options.PreviousOutput, when requested
}

// Compiler holds the long-lived state a host process shares across many
// compiles: the process-wide ExportRegistry. A zero-value-free Compiler is
// created with New(); the package-level Compile function wraps a private
// default instance for callers who don't need their own registry, while
// Tokenize/Parse/Generate use no registry at all.
type Compiler struct {
	Registry *registry.Registry
}

// New returns a Compiler with a fresh, empty ExportRegistry.
func New() *Compiler {
	return &Compiler{Registry: registry.New()}
}

var defaultCompiler = New()

// Compile runs the full pipeline against the package-level default
// Compiler's registry. Hosts that need isolated registries (e.g. one per
// workspace) should construct their own Compiler instead.
func Compile(source string, opts Options) (string, diag.Report) {
	res := defaultCompiler.Compile(source, opts)
	return res.Code, res.Diags
}

// Tokenize scans source into a token stream, independently of parsing
// (spec.md §6: "tokenize and parse are independently usable").
func Tokenize(source string) ([]token.Token, error) {
	return scanner.Scan(source, scanner.Config{})
}

// Parse builds an AST from an already-scanned token stream.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return parser.Parse(tokens)
}

// Generate renders a parsed (and, conventionally, already checked) Program
// to JavaScript text.
func Generate(prog *ast.Program, opts emit.Options) (string, error) {
	return emit.New(opts).Emit(prog)
}

// Compile runs scan → parse → type-check → lint → emit against c's
// registry, short-circuiting codegen the moment any stage reports a fatal
// diagnostic.
func (c *Compiler) Compile(source string, opts Options) Result {
	var diags diag.Report

	toks, err := scanner.Scan(source, scanner.Config{})
	if err != nil {
		diags = append(diags, scanErrorDiag(err))
		return Result{Diags: diags}
	}

	prog, err := parser.Parse(toks)
	if err != nil {
		diags = append(diags, parseErrorDiag(err))
		return Result{Diags: diags}
	}

	if !opts.SkipTypeCheck {
		checker := typecheck.New(c.Registry)
		diags = append(diags, checker.Check(prog, opts.ModulePath)...)
		diags = append(diags, c.checkDepCoverage(prog)...)
	}

	if !opts.SkipLint {
		linter := lint.New()
		diags = append(diags, linter.Lint(prog)...)
	}

	if diags.HasFatal() {
		return Result{Diags: diags}
	}

	code, err := emit.New(emit.Options{ModulePath: opts.ModulePath, Debug: opts.Debug}).Emit(prog)
	if err != nil {
		diags = append(diags, diag.New(diag.CompileError, 0, 0, "%s", err.Error()))
		return Result{Diags: diags}
	}

	result := Result{Code: code, Diags: diags}
	if opts.PreviousOutput != "" {
		result.Diff = unifiedDiff(opts.PreviousOutput, code)
	}
	return result
}

// checkDepCoverage validates each top-level DepStmt's override object
// against the required-arg set the target module registered (spec.md §6,
// §7, §8: a DepStmt override that omits a required arg/env of its target
// is a CompileError, distinct from the checker's per-key type-compatibility
// check on the keys the override does provide).
func (c *Compiler) checkDepCoverage(prog *ast.Program) diag.Report {
	var diags diag.Report
	if c.Registry == nil {
		return diags
	}
	for _, stmt := range prog.Stmts {
		dep, ok := stmt.(*ast.DepStmt)
		if !ok {
			continue
		}
		target, ok := c.Registry.Lookup(strings.Join(dep.Path, "."))
		if !ok || target.Kind != registry.Object || len(target.Required) == 0 {
			continue
		}
		covered := map[string]bool{}
		if obj, ok := dep.Override.(*ast.ObjectExpr); ok {
			for _, m := range obj.Props {
				if prop, ok := m.(ast.Property); ok && !prop.Computed {
					covered[prop.Key] = true
				}
			}
		}
		for name := range target.Required {
			if !covered[name] {
				diags = append(diags, diag.New(diag.CompileError, dep.Pos.Line, dep.Pos.Col,
					"dependency %q is missing required arg %q", strings.Join(dep.Path, "."), name))
			}
		}
	}
	return diags
}

func unifiedDiff(before, after string) string {
	diffText, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "previous",
		ToFile:   "current",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diffText
}

func scanErrorDiag(err error) diag.Diagnostic {
	if se, ok := err.(*scanner.ScanError); ok {
		return diag.New(diag.ScanError, se.Line, se.Col, "%s", se.Msg)
	}
	return diag.New(diag.ScanError, 0, 0, "%s", err.Error())
}

func parseErrorDiag(err error) diag.Diagnostic {
	if pe, ok := err.(*parser.ParseError); ok {
		return diag.New(diag.ParseError, pe.Line, pe.Col, "%s", pe.Msg)
	}
	return diag.New(diag.ParseError, 0, 0, "%s", err.Error())
}
