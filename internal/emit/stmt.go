package emit

import (
	"fmt"
	"strings"

	"github.com/oxhq/kimchilang/internal/ast"
)

// block emits every statement of blk, each on its own line, at the buffer's
// current indentation. inFunction controls whether a PatternMatchStmt's
// arms emit a trailing `return;` (spec.md §4.6).
func (em *Emitter) block(b *Buffer, blk *ast.BlockStmt, inFunction bool) {
	if blk == nil {
		return
	}
	for _, s := range blk.Stmts {
		em.stmt(b, s, inFunction)
	}
}

func (em *Emitter) stmt(b *Buffer, s ast.Stmt, inFunction bool) {
	switch n := s.(type) {
	case *ast.DecBinding:
		em.decBinding(b, n)

	case *ast.FunctionDecl:
		em.functionDecl(b, n)

	case *ast.EnumDecl:
		em.enumDecl(b, n)

	case *ast.ArgDecl:
		em.argDecl(b, n)

	case *ast.EnvDecl:
		em.envDecl(b, n)

	case *ast.DepStmt:
		em.depStmt(b, n)

	case *ast.BlockStmt:
		b.Line("{")
		b.Indent()
		em.block(b, n, inFunction)
		b.Dedent()
		b.Line("}")

	case *ast.IfStmt:
		em.ifStmt(b, n, inFunction)

	case *ast.WhileStmt:
		b.Line("while (%s) {", em.expr(n.Cond))
		b.Indent()
		em.block(b, n.Body, inFunction)
		b.Dedent()
		b.Line("}")

	case *ast.ForInStmt:
		b.Line("for (const %s of %s) {", n.Name, em.expr(n.Iterable))
		b.Indent()
		em.block(b, n.Body, inFunction)
		b.Dedent()
		b.Line("}")

	case *ast.ReturnStmt:
		if n.Value != nil {
			b.Line("return %s;", em.expr(n.Value))
		} else {
			b.Line("return;")
		}

	case *ast.BreakStmt:
		b.Line("break;")

	case *ast.ContinueStmt:
		b.Line("continue;")

	case *ast.TryStmt:
		b.Line("try {")
		b.Indent()
		em.block(b, n.Block, inFunction)
		b.Dedent()
		if n.HasCatch {
			if n.CatchParam != "" {
				b.Line("} catch (%s) {", n.CatchParam)
			} else {
				b.Line("} catch {")
			}
			b.Indent()
			em.block(b, n.CatchBody, inFunction)
			b.Dedent()
		}
		if n.Finally != nil {
			b.Line("} finally {")
			b.Indent()
			em.block(b, n.Finally, inFunction)
			b.Dedent()
		}
		b.Line("}")

	case *ast.ThrowStmt:
		b.Line("throw %s;", em.expr(n.Value))

	case *ast.PatternMatchStmt:
		em.patternMatch(b, n, inFunction)

	case *ast.PrintStmt:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = em.expr(a)
		}
		b.Line("console.log(%s);", strings.Join(args, ", "))

	case *ast.ExpressionStmt:
		if flow, ok := n.Expr.(*ast.Flow); ok {
			b.Line("const %s = %s;", flow.Target, em.flow(flow))
			return
		}
		b.Line("%s;", em.expr(n.Expr))

	case *ast.JSBlock:
		b.Line("%s;", em.jsBlock(n))

	case *ast.ShellBlock:
		b.Line("%s;", em.shellBlock(n))

	case *ast.TestBlock:
		b.Line("_test(%s, () => {", quoteJS(n.Name))
		b.Indent()
		em.block(b, n.Body, false)
		b.Dedent()
		b.Line("});")

	case *ast.DescribeBlock:
		b.Line("_describe(%s, () => {", quoteJS(n.Name))
		b.Indent()
		em.block(b, n.Body, false)
		b.Dedent()
		b.Line("});")

	case *ast.ExpectStmt:
		if n.Expected != nil {
			b.Line("_expect(%s).%s(%s);", em.expr(n.Actual), n.Matcher, em.expr(n.Expected))
		} else {
			b.Line("_expect(%s).%s();", em.expr(n.Actual), n.Matcher)
		}

	case *ast.AssertStmt:
		if n.Message != nil {
			b.Line("_assert(%s, %s);", em.expr(n.Cond), em.expr(n.Message))
		} else {
			b.Line("_assert(%s);", em.expr(n.Cond))
		}
	}
}

func (em *Emitter) ifStmt(b *Buffer, n *ast.IfStmt, inFunction bool) {
	cur := n
	for first := true; ; first = false {
		if first {
			b.Line("if (%s) {", em.expr(cur.Cond))
		} else {
			b.Raw(strings.Repeat("  ", b.indent) + fmt.Sprintf("} else if (%s) {\n", em.expr(cur.Cond)))
			b.lines++
		}
		b.Indent()
		em.block(b, cur.Then, inFunction)
		b.Dedent()
		switch e := cur.Else.(type) {
		case nil:
			b.Line("}")
			return
		case *ast.IfStmt:
			cur = e
		case *ast.BlockStmt:
			b.Raw(strings.Repeat("  ", b.indent) + "} else {\n")
			b.lines++
			b.Indent()
			em.block(b, e, inFunction)
			b.Dedent()
			b.Line("}")
			return
		}
	}
}

// decBinding emits `const name = _deepFreeze(init)` (or the destructuring
// form); `secret dec` wraps the initializer in `_secret(...)` first
// (spec.md §4.6, §8 "deep-freeze invariance").
func (em *Emitter) decBinding(b *Buffer, n *ast.DecBinding) {
	init := "undefined"
	if n.Init != nil {
		init = em.expr(n.Init)
	}
	if n.Secret {
		init = fmt.Sprintf("_secret(%s)", init)
	}
	frozen := fmt.Sprintf("_deepFreeze(%s)", init)

	if n.Name != "" {
		b.Line("const %s = %s;", n.Name, frozen)
		return
	}
	switch pat := n.Pattern.(type) {
	case *ast.ObjectPattern:
		parts := make([]string, len(pat.Props))
		for i, p := range pat.Props {
			if p.Key == p.Alias {
				parts[i] = p.Key
			} else {
				parts[i] = fmt.Sprintf("%s: %s", p.Key, p.Alias)
			}
			if p.Default != nil {
				parts[i] += " = " + em.expr(p.Default)
			}
		}
		b.Line("const { %s } = %s;", strings.Join(parts, ", "), frozen)
	case *ast.ArrayPattern:
		parts := make([]string, len(pat.Elements))
		for i, el := range pat.Elements {
			if el.Hole {
				parts[i] = ""
				continue
			}
			parts[i] = el.Name
			if el.Default != nil {
				parts[i] += " = " + em.expr(el.Default)
			}
		}
		b.Line("const [%s] = %s;", strings.Join(parts, ", "), frozen)
	}
}

func (em *Emitter) functionDecl(b *Buffer, n *ast.FunctionDecl) {
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		params[i] = p.Name
	}
	paramList := strings.Join(params, ", ")

	if !n.Memoized {
		prefix := ""
		if n.Async {
			prefix = "async "
		}
		b.Line("%sfunction %s(%s) {", prefix, n.Name, paramList)
		b.Indent()
		em.block(b, n.Body, true)
		b.Dedent()
		b.Line("}")
		return
	}

	// memo fn: an IIFE-cached variant keyed by JSON.stringify(arguments)
	// (spec.md §4.6, §8 "memoization cache key").
	asyncPrefix := ""
	if n.Async {
		asyncPrefix = "async "
	}
	b.Line("const %s = (() => {", n.Name)
	b.Indent()
	b.Line("const _cache = new Map();")
	b.Line("return %sfunction (...args) {", asyncPrefix)
	b.Indent()
	b.Line("const _key = JSON.stringify(args);")
	b.Line("if (_cache.has(_key)) return _cache.get(_key);")
	b.Line("const _body = %sfunction (%s) {", asyncPrefix, paramList)
	b.Indent()
	em.block(b, n.Body, true)
	b.Dedent()
	b.Line("};")
	maybeAwait := ""
	if n.Async {
		maybeAwait = "await "
	}
	b.Line("const _result = %s_body(...args);", maybeAwait)
	b.Line("_cache.set(_key, _result);")
	b.Line("return _result;")
	b.Dedent()
	b.Line("};")
	b.Dedent()
	b.Line("})();")
}

// enumDecl emits `Object.freeze({...})` with auto-increment numeric values;
// an explicit member value resets the running counter (spec.md §4.6, §8
// scenario 8).
func (em *Emitter) enumDecl(b *Buffer, n *ast.EnumDecl) {
	parts := make([]string, len(n.Members))
	counter := 0
	for i, m := range n.Members {
		if m.ExplicitValue != nil {
			counter = *m.ExplicitValue
		}
		parts[i] = fmt.Sprintf("%s: %d", m.Name, counter)
		counter++
	}
	b.Line("const %s = Object.freeze({ %s });", n.Name, strings.Join(parts, ", "))
}

// patternMatch emits a sequence of if/else-if arms. Inside a function body
// each arm ends in `return;` so the first match completes the function; at
// top level arms do not (spec.md §4.6).
func (em *Emitter) patternMatch(b *Buffer, n *ast.PatternMatchStmt, inFunction bool) {
	for i, cs := range n.Cases {
		cond := em.expr(cs.Guard)
		if n.IsRegex {
			if n.Subject != nil {
				cond = fmt.Sprintf("%s.test(%s)", em.expr(cs.Guard), em.expr(n.Subject))
			} else {
				cond = fmt.Sprintf("%s.test()", em.expr(cs.Guard))
			}
		}
		if i == 0 {
			b.Line("if (%s) {", cond)
		} else {
			b.Raw(strings.Repeat("  ", b.indent) + fmt.Sprintf("} else if (%s) {\n", cond))
			b.lines++
		}
		b.Indent()
		em.block(b, cs.Body, false)
		if inFunction {
			b.Line("return;")
		}
		b.Dedent()
	}
	b.Line("}")
}

// argDecl emits the required-presence check (if any) and extraction for a
// module-level `arg` declaration, reading from the module factory's _opts
// parameter (spec.md §4.6 step 4).
func (em *Emitter) argDecl(b *Buffer, n *ast.ArgDecl) {
	if n.Required {
		b.Line("if (!(%s in _opts)) {", quoteJS(n.Name))
		b.Indent()
		b.Line("throw error.create('MissingArgument', \"arg '%s' is required\");", n.Name)
		b.Dedent()
		b.Line("}")
	}
	def := "undefined"
	if n.Default != nil {
		def = em.expr(n.Default)
	}
	value := fmt.Sprintf("_opts.%s !== undefined ? _opts.%s : %s", n.Name, n.Name, def)
	if n.Secret {
		value = fmt.Sprintf("_secret(%s)", value)
	}
	b.Line("const %s = %s;", n.Name, value)
}

// envDecl is the environment-variable analogue of argDecl, reading from
// process.env instead of _opts.
func (em *Emitter) envDecl(b *Buffer, n *ast.EnvDecl) {
	if n.Required {
		b.Line("if (process.env.%s === undefined) {", n.Name)
		b.Indent()
		b.Line("throw error.create('MissingEnv', \"env '%s' is required\");", n.Name)
		b.Dedent()
		b.Line("}")
	}
	def := "undefined"
	if n.Default != nil {
		def = em.expr(n.Default)
	}
	value := fmt.Sprintf("process.env.%s !== undefined ? process.env.%s : %s", n.Name, n.Name, def)
	if n.Secret {
		value = fmt.Sprintf("_secret(%s)", value)
	}
	b.Line("const %s = %s;", n.Name, value)
}

// depStmt resolves a module dependency: an override supplied via _opts takes
// precedence over the statically-imported default (spec.md §4.6 step 5).
func (em *Emitter) depStmt(b *Buffer, n *ast.DepStmt) {
	dotted := strings.Join(n.Path, ".")
	call := fmt.Sprintf("_dep_%s", n.Alias)
	if n.Override != nil {
		call = fmt.Sprintf("%s(%s)", call, em.expr(n.Override))
	} else {
		call = call + "()"
	}
	b.Line("const %s = _opts[%s] || %s;", n.Alias, quoteJS(dotted), call)
}

func quoteJS(s string) string {
	return fmt.Sprintf("%q", s)
}
