// Package lint implements the AST-driven linter: three passes over the
// program — collect top-level declarations, walk tracking uses and nested
// scopes, then report rule violations (spec.md §4.5).
package lint

import (
	"sort"

	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/diag"
)

type binding struct {
	name       string
	pos        ast.Pos
	used       bool
	suppressed bool
	kind       string // "variable" or "function"
}

type scope struct {
	parent   *scope
	bindings map[string]*binding
}

func newScope(parent *scope) *scope { return &scope{parent: parent, bindings: map[string]*binding{}} }

func (s *scope) lookupOuter(name string) (*binding, bool) {
	for p := s.parent; p != nil; p = p.parent {
		if b, ok := p.bindings[name]; ok {
			return b, true
		}
	}
	return nil, false
}

func (s *scope) use(name string) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			b.used = true
			return
		}
	}
}

// Linter performs the three-pass walk described by spec.md §4.5 and
// accumulates a diag.Report of rule violations.
type Linter struct {
	diags diag.Report
}

// New returns a ready-to-use Linter.
func New() *Linter { return &Linter{} }

// Lint walks prog and returns every rule violation found.
func (l *Linter) Lint(prog *ast.Program) diag.Report {
	l.diags = nil
	top := newScope(nil)
	l.walkStmts(prog.Stmts, top)
	l.reportUnused(top)
	return l.diags
}

func (l *Linter) warn(kind diag.Kind, pos ast.Pos, format string, args ...any) {
	l.diags = append(l.diags, diag.New(kind, pos.Line, pos.Col, format, args...))
}

func (l *Linter) reportUnused(s *scope) {
	names := make([]string, 0, len(s.bindings))
	for n := range s.bindings {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		b := s.bindings[n]
		if b.used || b.suppressed {
			continue
		}
		if b.kind == "function" {
			l.warn(diag.LintWarning, b.pos, "function %q is declared but never used", b.name)
		} else {
			l.warn(diag.LintWarning, b.pos, "variable %q is declared but never used", b.name)
		}
	}
}

func suppressUnused(name string, exposed bool) bool {
	return exposed || name == "" || (len(name) > 0 && name[0] == '_')
}

func (l *Linter) declare(s *scope, name string, pos ast.Pos, suppressed bool, kind string) {
	if name == "" {
		return
	}
	if _, ok := s.lookupOuter(name); ok {
		l.warn(diag.LintWarning, pos, "%q shadows a declaration from an outer scope", name)
	}
	s.bindings[name] = &binding{name: name, pos: pos, suppressed: suppressed, kind: kind}
}

// walkBlock opens a child scope, enforces the unreachable-code and
// empty-block rules, walks the body, then reports that scope's unused
// bindings before returning.
func (l *Linter) walkBlock(b *ast.BlockStmt, parent *scope) {
	if b == nil {
		return
	}
	if len(b.Stmts) == 0 {
		l.warn(diag.LintInfo, b.Pos, "empty block")
	}
	child := newScope(parent)
	l.walkStmts(b.Stmts, child)
	l.reportUnused(child)
}

func (l *Linter) walkStmts(stmts []ast.Stmt, s *scope) {
	terminated := false
	for _, st := range stmts {
		if terminated {
			l.warn(diag.LintWarning, st.Position(), "unreachable code")
		}
		l.walkStmt(st, s)
		switch st.(type) {
		case *ast.ReturnStmt, *ast.ThrowStmt, *ast.BreakStmt, *ast.ContinueStmt:
			terminated = true
		}
	}
}

func (l *Linter) walkStmt(st ast.Stmt, s *scope) {
	switch n := st.(type) {
	case *ast.DecBinding:
		if n.Init != nil {
			l.walkExpr(n.Init, s)
		}
		if n.Name != "" {
			l.declare(s, n.Name, n.Pos, suppressUnused(n.Name, n.Exposed), "variable")
			return
		}
		switch pat := n.Pattern.(type) {
		case *ast.ObjectPattern:
			for _, p := range pat.Props {
				if p.Default != nil {
					l.walkExpr(p.Default, s)
				}
				l.declare(s, p.Alias, n.Pos, suppressUnused(p.Alias, n.Exposed), "variable")
			}
		case *ast.ArrayPattern:
			for _, el := range pat.Elements {
				if el.Hole {
					continue
				}
				if el.Default != nil {
					l.walkExpr(el.Default, s)
				}
				l.declare(s, el.Name, n.Pos, suppressUnused(el.Name, n.Exposed), "variable")
			}
		}

	case *ast.FunctionDecl:
		l.declare(s, n.Name, n.Pos, suppressUnused(n.Name, n.Exposed), "function")
		fnScope := newScope(s)
		for _, p := range n.Params {
			fnScope.bindings[p.Name] = &binding{name: p.Name, pos: n.Pos, suppressed: true, kind: "variable"}
		}
		l.walkBlock(n.Body, fnScope)

	case *ast.EnumDecl:
		l.declare(s, n.Name, n.Pos, true, "variable")

	case *ast.ArgDecl:
		l.declare(s, n.Name, n.Pos, true, "variable")
		if n.Default != nil {
			l.walkExpr(n.Default, s)
		}

	case *ast.EnvDecl:
		l.declare(s, n.Name, n.Pos, true, "variable")
		if n.Default != nil {
			l.walkExpr(n.Default, s)
		}

	case *ast.DepStmt:
		l.declare(s, n.Alias, n.Pos, true, "variable")
		if n.Override != nil {
			l.walkExpr(n.Override, s)
		}

	case *ast.BlockStmt:
		l.walkBlock(n, s)

	case *ast.IfStmt:
		l.checkConstantCondition(n.Cond)
		l.walkExpr(n.Cond, s)
		l.walkBlock(n.Then, s)
		switch e := n.Else.(type) {
		case *ast.BlockStmt:
			l.walkBlock(e, s)
		case *ast.IfStmt:
			l.walkStmt(e, s)
		}

	case *ast.WhileStmt:
		l.checkConstantCondition(n.Cond)
		l.walkExpr(n.Cond, s)
		l.walkBlock(n.Body, s)

	case *ast.ForInStmt:
		l.walkExpr(n.Iterable, s)
		loopScope := newScope(s)
		loopScope.bindings[n.Name] = &binding{name: n.Name, pos: n.Pos, suppressed: true, kind: "variable"}
		l.walkBlock(n.Body, loopScope)

	case *ast.ReturnStmt:
		if n.Value != nil {
			l.walkExpr(n.Value, s)
		}

	case *ast.BreakStmt, *ast.ContinueStmt:

	case *ast.TryStmt:
		l.walkBlock(n.Block, s)
		if n.HasCatch {
			catchScope := newScope(s)
			if n.CatchParam != "" {
				catchScope.bindings[n.CatchParam] = &binding{name: n.CatchParam, pos: n.Pos, suppressed: true, kind: "variable"}
			}
			l.walkBlock(n.CatchBody, catchScope)
		}
		if n.Finally != nil {
			l.walkBlock(n.Finally, s)
		}

	case *ast.ThrowStmt:
		l.walkExpr(n.Value, s)

	case *ast.PatternMatchStmt:
		for _, cs := range n.Cases {
			l.checkConstantCondition(cs.Guard)
			l.walkExpr(cs.Guard, s)
			l.walkBlock(cs.Body, s)
		}

	case *ast.PrintStmt:
		for _, a := range n.Args {
			l.walkExpr(a, s)
		}

	case *ast.ExpressionStmt:
		l.walkExpr(n.Expr, s)

	case *ast.JSBlock:
		for _, name := range n.Inputs {
			s.use(name)
		}

	case *ast.ShellBlock:
		for _, name := range n.Inputs {
			s.use(name)
		}

	case *ast.TestBlock:
		l.walkBlock(n.Body, s)

	case *ast.DescribeBlock:
		l.walkBlock(n.Body, s)

	case *ast.ExpectStmt:
		l.walkExpr(n.Actual, s)
		if n.Expected != nil {
			l.walkExpr(n.Expected, s)
		}

	case *ast.AssertStmt:
		l.walkExpr(n.Cond, s)
		if n.Message != nil {
			l.walkExpr(n.Message, s)
		}
	}
}

// checkConstantCondition implements the constant-condition rule: a test
// that is literally `true`/`false` (spec.md §4.5).
func (l *Linter) checkConstantCondition(cond ast.Expr) {
	if lit, ok := cond.(*ast.Literal); ok && lit.Kind == ast.LitBool {
		l.warn(diag.LintWarning, lit.Pos, "condition is always %v", lit.Bool)
	}
}

func (l *Linter) walkExpr(e ast.Expr, s *scope) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.Identifier:
		s.use(n.Name)

	case *ast.TemplateLiteral:
		for _, sub := range n.Exprs {
			l.walkExpr(sub, s)
		}

	case *ast.MemberAccess:
		l.walkExpr(n.Object, s)
		if n.Computed {
			l.walkExpr(n.Index, s)
		}

	case *ast.Call:
		l.walkExpr(n.Callee, s)
		for _, a := range n.Args {
			l.walkExpr(a, s)
		}

	case *ast.Unary:
		l.walkExpr(n.Operand, s)

	case *ast.Binary:
		l.walkExpr(n.Left, s)
		l.walkExpr(n.Right, s)

	case *ast.Assignment:
		l.walkExpr(n.Target, s)
		l.walkExpr(n.Value, s)

	case *ast.Conditional:
		l.checkConstantCondition(n.Cond)
		l.walkExpr(n.Cond, s)
		l.walkExpr(n.Then, s)
		l.walkExpr(n.Else, s)

	case *ast.ArrowFunction:
		fnScope := newScope(s)
		for _, p := range n.Params {
			fnScope.bindings[p] = &binding{name: p, pos: n.Pos, suppressed: true, kind: "variable"}
		}
		if n.Block != nil {
			l.walkBlock(n.Block, fnScope)
		} else {
			l.walkExpr(n.Expr, fnScope)
			l.reportUnused(fnScope)
		}

	case *ast.ArrayExpr:
		for _, el := range n.Elements {
			l.walkExpr(el, s)
		}

	case *ast.ObjectExpr:
		seen := map[string]bool{}
		for _, m := range n.Props {
			switch p := m.(type) {
			case ast.Property:
				if !p.Computed {
					if seen[p.Key] {
						l.warn(diag.LintError, n.Pos, "duplicate key %q in object literal", p.Key)
					}
					seen[p.Key] = true
				} else {
					l.walkExpr(p.KeyExpr, s)
				}
				if p.Value != nil {
					l.walkExpr(p.Value, s)
				}
			case ast.SpreadProperty:
				l.walkExpr(p.Argument, s)
			}
		}

	case *ast.Spread:
		l.walkExpr(n.Argument, s)

	case *ast.Await:
		l.walkExpr(n.Value, s)

	case *ast.Range:
		l.walkExpr(n.Start, s)
		l.walkExpr(n.End, s)

	case *ast.Flow:
		s.use(n.Target)
		for _, f := range n.Functions {
			s.use(f)
		}

	case *ast.Pipe:
		l.walkExpr(n.Left, s)
		l.walkExpr(n.Right, s)

	case *ast.JSBlock:
		for _, name := range n.Inputs {
			s.use(name)
		}

	case *ast.ShellBlock:
		for _, name := range n.Inputs {
			s.use(name)
		}
	}
}
