package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oxhq/kimchilang/internal/ast"
)

// expr renders e as a single inline JS expression fragment.
func (em *Emitter) expr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Literal:
		return em.literal(n)
	case *ast.TemplateLiteral:
		return em.templateLiteral(n)
	case *ast.Identifier:
		return n.Name
	case *ast.MemberAccess:
		return em.memberAccess(n)
	case *ast.Call:
		return em.call(n)
	case *ast.Unary:
		return em.unary(n)
	case *ast.Binary:
		return em.binary(n)
	case *ast.Assignment:
		op := assignOpText[n.Op]
		if op == "" {
			op = "="
		}
		return fmt.Sprintf("%s %s %s", em.expr(n.Target), op, em.expr(n.Value))
	case *ast.Conditional:
		return fmt.Sprintf("(%s ? %s : %s)", em.expr(n.Cond), em.expr(n.Then), em.expr(n.Else))
	case *ast.ArrowFunction:
		return em.arrowFunction(n)
	case *ast.ArrayExpr:
		return em.arrayExpr(n)
	case *ast.ObjectExpr:
		return em.objectExpr(n)
	case *ast.Spread:
		return "..." + em.expr(n.Argument)
	case *ast.Await:
		return "await " + em.expr(n.Value)
	case *ast.Range:
		return fmt.Sprintf("Array.from({ length: %s - %s }, (_, i) => %s + i)",
			em.expr(n.End), em.expr(n.Start), em.expr(n.Start))
	case *ast.Flow:
		return em.flow(n)
	case *ast.Pipe:
		return fmt.Sprintf("%s(%s)", em.expr(n.Right), em.expr(n.Left))
	case *ast.RegexLiteral:
		return "/" + n.Pattern + "/" + n.Flags
	case *ast.JSBlock:
		return em.jsBlock(n)
	case *ast.ShellBlock:
		return em.shellBlock(n)
	}
	return "undefined"
}

func (em *Emitter) literal(n *ast.Literal) string {
	switch n.Kind {
	case ast.LitNumber:
		return n.Raw
	case ast.LitString:
		return strconv.Quote(n.Raw)
	case ast.LitBool:
		if n.Bool {
			return "true"
		}
		return "false"
	case ast.LitNull:
		return "null"
	}
	return "null"
}

func (em *Emitter) templateLiteral(n *ast.TemplateLiteral) string {
	var b strings.Builder
	b.WriteByte('`')
	for i, part := range n.Parts {
		b.WriteString(strings.ReplaceAll(part, "`", "\\`"))
		if i < len(n.Exprs) {
			b.WriteString("${")
			b.WriteString(em.expr(n.Exprs[i]))
			b.WriteByte('}')
		}
	}
	b.WriteByte('`')
	return b.String()
}

// memberAccess always emits the null-safe `?.` form, as required by
// spec.md §4.6: "every access is null-safe by design."
func (em *Emitter) memberAccess(n *ast.MemberAccess) string {
	obj := em.expr(n.Object)
	if n.Computed {
		return fmt.Sprintf("%s?.[%s]", obj, em.expr(n.Index))
	}
	return fmt.Sprintf("%s?.%s", obj, n.Property)
}

func (em *Emitter) call(n *ast.Call) string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = em.expr(a)
	}
	return fmt.Sprintf("%s(%s)", em.expr(n.Callee), strings.Join(args, ", "))
}

func (em *Emitter) unary(n *ast.Unary) string {
	return fmt.Sprintf("(%s%s)", unaryOpText[n.Op], em.expr(n.Operand))
}

func (em *Emitter) binary(n *ast.Binary) string {
	if n.Op == identityOpKind {
		if n.IsNot {
			return fmt.Sprintf("(%s?._id !== %s?._id)", em.expr(n.Left), em.expr(n.Right))
		}
		return fmt.Sprintf("(%s?._id === %s?._id)", em.expr(n.Left), em.expr(n.Right))
	}
	op, ok := binaryOpText[n.Op]
	if !ok {
		op = n.Op.String()
	}
	return fmt.Sprintf("(%s %s %s)", em.expr(n.Left), op, em.expr(n.Right))
}

func (em *Emitter) arrowFunction(n *ast.ArrowFunction) string {
	prefix := ""
	if n.Async {
		prefix = "async "
	}
	params := "(" + strings.Join(n.Params, ", ") + ")"
	if n.Block != nil {
		b := NewBuffer()
		b.Line("%s%s => {", prefix, params)
		b.Indent()
		em.block(b, n.Block, false)
		b.Dedent()
		b.Raw(strings.Repeat("  ", b.indent) + "}")
		return b.String()
	}
	return fmt.Sprintf("%s%s => %s", prefix, params, em.expr(n.Expr))
}

func (em *Emitter) arrayExpr(n *ast.ArrayExpr) string {
	parts := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		parts[i] = em.expr(el)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (em *Emitter) objectExpr(n *ast.ObjectExpr) string {
	parts := make([]string, 0, len(n.Props))
	for _, m := range n.Props {
		switch p := m.(type) {
		case ast.Property:
			if p.Computed {
				parts = append(parts, fmt.Sprintf("[%s]: %s", em.expr(p.KeyExpr), em.expr(p.Value)))
			} else if p.Shorthand || p.Value == nil {
				parts = append(parts, p.Key)
			} else {
				parts = append(parts, fmt.Sprintf("%s: %s", p.Key, em.expr(p.Value)))
			}
		case ast.SpreadProperty:
			parts = append(parts, "..."+em.expr(p.Argument))
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// flow builds the rest-parameter arrow function `(..._args) => f3(f2(f1(..._args)))`
// (spec.md §4.6). When used bare as a top-level ExpressionStmt this gets
// wrapped by stmt into `const <target> = ...;` instead.
func (em *Emitter) flow(n *ast.Flow) string {
	cur := "..._args"
	for _, fn := range n.Functions {
		cur = fmt.Sprintf("%s(%s)", fn, cur)
	}
	return fmt.Sprintf("(..._args) => %s", cur)
}

func (em *Emitter) jsBlock(n *ast.JSBlock) string {
	if len(n.Inputs) == 0 {
		return fmt.Sprintf("(() => { %s })()", n.Raw)
	}
	return fmt.Sprintf("((%s) => { %s })(%s)", strings.Join(n.Inputs, ", "), n.Raw, strings.Join(n.Inputs, ", "))
}

func (em *Emitter) shellBlock(n *ast.ShellBlock) string {
	varsParts := make([]string, len(n.Inputs))
	for i, name := range n.Inputs {
		varsParts[i] = name
	}
	return fmt.Sprintf("_shell(%s, { %s })", strconv.Quote(n.Raw), strings.Join(varsParts, ", "))
}

