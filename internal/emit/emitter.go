package emit

import (
	"fmt"
	"strings"

	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/jscheck"
)

// Options configures a single Emit call.
type Options struct {
	// ModulePath is the dotted export-registry path of the module being
	// emitted, e.g. "app.services.billing". Empty for a standalone script.
	ModulePath string
	// Debug re-validates the emitted text with internal/jscheck before
	// returning, as a second line of defense beyond the parser's own
	// js-block reassembly check (spec.md §4.10).
	Debug bool
}

// Emitter renders a checked Program to ES-module JavaScript text. It carries
// no mutable state between calls; a single zero-value Emitter can be reused
// across an entire compile batch.
type Emitter struct {
	opts Options
}

// New returns an Emitter configured by opts.
func New(opts Options) *Emitter {
	return &Emitter{opts: opts}
}

// Emit renders prog to a complete ES module: the runtime preamble, one
// `import` per top-level DepStmt, and an `export default function(_opts)`
// factory wrapping the program body (spec.md §4.6, §6).
func (em *Emitter) Emit(prog *ast.Program) (string, error) {
	var out strings.Builder
	out.WriteString(preamble)
	out.WriteByte('\n')

	deps := topLevelDeps(prog)
	for _, d := range deps {
		out.WriteString(fmt.Sprintf("import _dep_%s from './%s.km';\n", d.Alias, strings.Join(d.Path, "/")))
	}
	if len(deps) > 0 {
		out.WriteByte('\n')
	}

	b := NewBuffer()
	b.Line("export default function (_opts = {}) {")
	b.Indent()
	for _, s := range prog.Stmts {
		em.stmt(b, s, false)
	}
	exposed := collectExposedNames(prog.Stmts)
	b.Line("return { %s };", strings.Join(exposed, ", "))
	b.Dedent()
	b.Line("}")

	out.WriteString(b.String())
	result := out.String()
	if em.opts.Debug {
		if d := jscheck.Validate(result); d != nil {
			return "", fmt.Errorf("emitted output failed debug validation: %s", d.Message)
		}
	}
	return result, nil
}

func topLevelDeps(prog *ast.Program) []*ast.DepStmt {
	var deps []*ast.DepStmt
	for _, s := range prog.Stmts {
		if d, ok := s.(*ast.DepStmt); ok {
			deps = append(deps, d)
		}
	}
	return deps
}

// collectExposedNames returns the names contributed to the module's
// runtime-returned object: every `expose dec`/`expose fn` at the top level,
// including each alias bound by a destructuring `expose dec`. arg/env
// declarations never contribute here — they only widen the export
// registry's structural shape (spec.md §4.4 vs §4.6).
func collectExposedNames(stmts []ast.Stmt) []string {
	var names []string
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.DecBinding:
			if !n.Exposed {
				continue
			}
			if n.Name != "" {
				names = append(names, n.Name)
				continue
			}
			switch pat := n.Pattern.(type) {
			case *ast.ObjectPattern:
				for _, p := range pat.Props {
					names = append(names, p.Alias)
				}
			case *ast.ArrayPattern:
				for _, el := range pat.Elements {
					if !el.Hole {
						names = append(names, el.Name)
					}
				}
			}
		case *ast.FunctionDecl:
			if n.Exposed {
				names = append(names, n.Name)
			}
		}
	}
	return names
}
