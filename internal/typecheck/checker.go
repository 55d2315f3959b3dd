// Package typecheck implements the structural type checker: a two-pass AST
// walk (hoist, then visit) over a lexical scope stack of name→Shape
// bindings, grounded on the teacher's internal/evaluator.UniversalEvaluator
// single-pass-over-injected-shape design (spec.md §4.4).
package typecheck

import (
	"strings"

	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/diag"
	"github.com/oxhq/kimchilang/internal/registry"
	"github.com/oxhq/kimchilang/internal/token"
)

// Checker walks a Program, reporting shape-compatibility diagnostics and
// publishing an export Shape to an injected ExportRegistry rather than a
// package-level singleton (spec.md §5 "avoid a singleton").
type Checker struct {
	reg      *registry.Registry
	scopes   []map[string]*registry.Shape
	diags    diag.Report
	required map[string]bool // names of this module's required arg/env exports
}

// New builds a Checker backed by reg. reg may be nil when the caller never
// intends to publish or resolve cross-module exports.
func New(reg *registry.Registry) *Checker {
	return &Checker{reg: reg}
}

// Check performs the two-pass walk and returns every diagnostic gathered.
// When modulePath is non-empty and no TypeError was raised, the module's
// export shape is published to the registry.
func (c *Checker) Check(prog *ast.Program, modulePath string) diag.Report {
	c.scopes = []map[string]*registry.Shape{{}}
	c.diags = nil
	c.required = map[string]bool{}
	exports := map[string]*registry.Shape{}

	c.hoist(prog.Stmts)
	for _, s := range prog.Stmts {
		c.visitStmt(s, exports)
	}

	if modulePath != "" && c.reg != nil && !c.hasTypeError() {
		c.reg.Register(modulePath, registry.ObjectOfRequired(exports, c.required))
	}
	return c.diags
}

func (c *Checker) hasTypeError() bool {
	for _, d := range c.diags {
		if d.Kind == diag.TypeError {
			return true
		}
	}
	return false
}

func (c *Checker) errorf(pos ast.Pos, format string, args ...any) {
	c.diags = append(c.diags, diag.New(diag.TypeError, pos.Line, pos.Col, format, args...))
}

func (c *Checker) pushScope()               { c.scopes = append(c.scopes, map[string]*registry.Shape{}) }
func (c *Checker) popScope()                { c.scopes = c.scopes[:len(c.scopes)-1] }
func (c *Checker) declare(name string, sh *registry.Shape) {
	c.scopes[len(c.scopes)-1][name] = sh
}

func (c *Checker) lookup(name string) (*registry.Shape, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sh, ok := c.scopes[i][name]; ok {
			return sh, true
		}
	}
	return nil, false
}

// hoist collects function and enum declarations in a statement list into
// the current scope before any statement is visited, so forward references
// within the same block resolve.
func (c *Checker) hoist(stmts []ast.Stmt) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.FunctionDecl:
			params := make([]*registry.Shape, len(n.Params))
			for i := range params {
				params[i] = registry.Prim(registry.Any)
			}
			c.declare(n.Name, registry.FuncOf(params, registry.Prim(registry.Any)))
		case *ast.EnumDecl:
			members := make([]string, len(n.Members))
			for i, m := range n.Members {
				members[i] = m.Name
			}
			c.declare(n.Name, registry.EnumOf(n.Name, members))
		}
	}
}

func (c *Checker) checkBlock(b *ast.BlockStmt, exports map[string]*registry.Shape) {
	if b == nil {
		return
	}
	c.pushScope()
	c.hoist(b.Stmts)
	for _, s := range b.Stmts {
		c.visitStmt(s, exports)
	}
	c.popScope()
}

func (c *Checker) visitStmt(s ast.Stmt, exports map[string]*registry.Shape) {
	switch n := s.(type) {
	case *ast.DecBinding:
		c.visitDecBinding(n, exports)

	case *ast.FunctionDecl:
		fnShape, _ := c.lookup(n.Name)
		c.pushScope()
		for _, p := range n.Params {
			c.declare(p.Name, registry.Prim(registry.Any))
		}
		c.checkBlock(n.Body, map[string]*registry.Shape{})
		c.popScope()
		if n.Exposed {
			if fnShape == nil {
				fnShape = registry.FuncOf(nil, registry.Prim(registry.Any))
			}
			exports[n.Name] = fnShape
		}

	case *ast.EnumDecl:
		// already hoisted; enums are not themselves exported (spec.md §4.4
		// only lists expose dec/fn, arg, env as export contributors)

	case *ast.ArgDecl:
		sh := registry.Prim(registry.Any)
		if n.Default != nil {
			sh = c.inferExpr(n.Default)
		}
		c.declare(n.Name, sh)
		exports[n.Name] = sh
		if n.Required {
			c.required[n.Name] = true
		}

	case *ast.EnvDecl:
		sh := registry.Prim(registry.Any)
		if n.Default != nil {
			sh = c.inferExpr(n.Default)
		}
		c.declare(n.Name, sh)
		exports[n.Name] = sh
		if n.Required {
			c.required[n.Name] = true
		}

	case *ast.DepStmt:
		c.visitDepStmt(n)

	case *ast.BlockStmt:
		c.checkBlock(n, exports)

	case *ast.IfStmt:
		c.inferExpr(n.Cond)
		c.checkBlock(n.Then, map[string]*registry.Shape{})
		switch e := n.Else.(type) {
		case *ast.BlockStmt:
			c.checkBlock(e, map[string]*registry.Shape{})
		case *ast.IfStmt:
			c.visitStmt(e, map[string]*registry.Shape{})
		}

	case *ast.WhileStmt:
		c.inferExpr(n.Cond)
		c.checkBlock(n.Body, map[string]*registry.Shape{})

	case *ast.ForInStmt:
		iterShape := c.inferExpr(n.Iterable)
		c.pushScope()
		elShape := registry.Prim(registry.Any)
		if iterShape != nil && iterShape.Kind == registry.Array && iterShape.Element != nil {
			elShape = iterShape.Element
		}
		c.declare(n.Name, elShape)
		c.hoist(n.Body.Stmts)
		for _, st := range n.Body.Stmts {
			c.visitStmt(st, map[string]*registry.Shape{})
		}
		c.popScope()

	case *ast.ReturnStmt:
		if n.Value != nil {
			c.inferExpr(n.Value)
		}

	case *ast.BreakStmt, *ast.ContinueStmt:
		// no shape obligations

	case *ast.TryStmt:
		c.checkBlock(n.Block, map[string]*registry.Shape{})
		if n.HasCatch {
			c.pushScope()
			if n.CatchParam != "" {
				c.declare(n.CatchParam, registry.Prim(registry.Any))
			}
			c.hoist(n.CatchBody.Stmts)
			for _, st := range n.CatchBody.Stmts {
				c.visitStmt(st, map[string]*registry.Shape{})
			}
			c.popScope()
		}
		if n.Finally != nil {
			c.checkBlock(n.Finally, map[string]*registry.Shape{})
		}

	case *ast.ThrowStmt:
		c.inferExpr(n.Value)

	case *ast.PatternMatchStmt:
		for _, cs := range n.Cases {
			c.inferExpr(cs.Guard)
			c.checkBlock(cs.Body, map[string]*registry.Shape{})
		}

	case *ast.PrintStmt:
		for _, a := range n.Args {
			c.inferExpr(a)
		}

	case *ast.ExpressionStmt:
		c.inferExpr(n.Expr)

	case *ast.JSBlock:
		c.checkBlockInputs(n.Inputs, n.Pos)

	case *ast.ShellBlock:
		c.checkBlockInputs(n.Inputs, n.Pos)

	case *ast.TestBlock:
		c.checkBlock(n.Body, map[string]*registry.Shape{})

	case *ast.DescribeBlock:
		c.checkBlock(n.Body, map[string]*registry.Shape{})

	case *ast.ExpectStmt:
		c.inferExpr(n.Actual)
		if n.Expected != nil {
			c.inferExpr(n.Expected)
		}

	case *ast.AssertStmt:
		c.inferExpr(n.Cond)
		if n.Message != nil {
			c.inferExpr(n.Message)
		}
	}
}

func (c *Checker) checkBlockInputs(inputs []string, pos ast.Pos) {
	for _, name := range inputs {
		if _, ok := c.lookup(name); !ok && !isBuiltin(name) {
			c.errorf(pos, "undefined identifier %q referenced as block input", name)
		}
	}
}

func (c *Checker) visitDecBinding(n *ast.DecBinding, exports map[string]*registry.Shape) {
	var initShape *registry.Shape
	if n.Init != nil {
		initShape = c.inferExpr(n.Init)
	} else {
		initShape = registry.Prim(registry.Any)
	}

	if n.Name != "" {
		c.declare(n.Name, initShape)
		if n.Exposed {
			exports[n.Name] = initShape
		}
		return
	}

	switch pat := n.Pattern.(type) {
	case *ast.ObjectPattern:
		for _, p := range pat.Props {
			var shape *registry.Shape
			if initShape != nil && initShape.Kind == registry.Object && len(initShape.Props) > 0 {
				var ok bool
				shape, ok = initShape.Props[p.Key]
				if !ok {
					c.errorf(n.Pos, "destructured property %q is not present on the source object", p.Key)
					shape = registry.Prim(registry.Any)
				}
			} else if p.Default != nil {
				shape = c.inferExpr(p.Default)
			} else {
				shape = registry.Prim(registry.Any)
			}
			c.declare(p.Alias, shape)
			if n.Exposed {
				exports[p.Alias] = shape
			}
		}
	case *ast.ArrayPattern:
		elShape := registry.Prim(registry.Any)
		if initShape != nil && initShape.Kind == registry.Array && initShape.Element != nil {
			elShape = initShape.Element
		}
		for _, el := range pat.Elements {
			if el.Hole {
				continue
			}
			shape := elShape
			if el.Default != nil {
				shape = c.inferExpr(el.Default)
			}
			c.declare(el.Name, shape)
			if n.Exposed {
				exports[el.Name] = shape
			}
		}
	}
}

func (c *Checker) visitDepStmt(n *ast.DepStmt) {
	path := strings.Join(n.Path, ".")
	var target *registry.Shape
	if c.reg != nil {
		if sh, ok := c.reg.Lookup(path); ok {
			target = sh
		}
	}
	if target == nil {
		target = registry.Prim(registry.Any)
	}
	c.declare(n.Alias, target)

	if n.Override == nil {
		return
	}
	obj, ok := n.Override.(*ast.ObjectExpr)
	if !ok {
		return
	}
	for _, m := range obj.Props {
		prop, ok := m.(ast.Property)
		if !ok || prop.Computed {
			continue
		}
		if strings.Contains(prop.Key, ".") {
			// dotted-path keys are inner-dep overrides, skipped (spec.md §4.4)
			continue
		}
		valShape := c.inferExpr(prop.Value)
		if target.Kind == registry.Object && len(target.Props) > 0 {
			if expected, ok := target.Props[prop.Key]; ok {
				if !registry.Compatible(expected, valShape) {
					c.errorf(n.Pos, "dependency override for %q is incompatible with %s's exported shape", prop.Key, path)
				}
			}
		}
	}
}

func (c *Checker) inferExpr(e ast.Expr) *registry.Shape {
	if e == nil {
		return registry.Prim(registry.Any)
	}
	switch n := e.(type) {
	case *ast.Literal:
		return c.inferLiteral(n)

	case *ast.TemplateLiteral:
		for _, sub := range n.Exprs {
			c.inferExpr(sub)
		}
		return registry.Prim(registry.String)

	case *ast.Identifier:
		return c.inferIdentifier(n)

	case *ast.MemberAccess:
		return c.inferMemberAccess(n)

	case *ast.Call:
		return c.inferCall(n)

	case *ast.Unary:
		c.inferExpr(n.Operand)
		switch n.Op {
		case token.BANG, token.NOT:
			return registry.Prim(registry.Boolean)
		case token.MINUS, token.TILDE:
			return registry.Prim(registry.Number)
		}
		return registry.Prim(registry.Any)

	case *ast.Binary:
		left := c.inferExpr(n.Left)
		right := c.inferExpr(n.Right)
		return inferBinaryShape(n.Op, left, right)

	case *ast.Assignment:
		c.inferExpr(n.Target)
		return c.inferExpr(n.Value)

	case *ast.Conditional:
		c.inferExpr(n.Cond)
		thenShape := c.inferExpr(n.Then)
		elseShape := c.inferExpr(n.Else)
		if registry.Compatible(thenShape, elseShape) {
			return thenShape
		}
		return registry.Prim(registry.Any)

	case *ast.ArrowFunction:
		return c.inferArrowFunction(n)

	case *ast.ArrayExpr:
		return c.inferArrayExpr(n)

	case *ast.ObjectExpr:
		return c.inferObjectExpr(n)

	case *ast.Spread:
		return c.inferExpr(n.Argument)

	case *ast.Await:
		return c.inferExpr(n.Value)

	case *ast.Range:
		c.inferExpr(n.Start)
		c.inferExpr(n.End)
		return registry.ArrayOf(registry.Prim(registry.Number))

	case *ast.Flow:
		if _, ok := c.lookup(n.Target); !ok && !isBuiltin(n.Target) {
			c.errorf(n.Pos, "undefined identifier %q", n.Target)
		}
		for _, f := range n.Functions {
			if _, ok := c.lookup(f); !ok && !isBuiltin(f) {
				c.errorf(n.Pos, "undefined identifier %q", f)
			}
		}
		return registry.FuncOf(nil, registry.Prim(registry.Any))

	case *ast.Pipe:
		c.inferExpr(n.Left)
		rightShape := c.inferExpr(n.Right)
		if rightShape != nil && rightShape.Kind == registry.Function && rightShape.Return != nil {
			return rightShape.Return
		}
		return registry.Prim(registry.Any)

	case *ast.RegexLiteral:
		return registry.Prim(registry.Any)

	case *ast.JSBlock, *ast.ShellBlock:
		return registry.Prim(registry.Any)

	case *ast.ObjectPattern, *ast.ArrayPattern:
		return registry.Prim(registry.Any)
	}
	return registry.Prim(registry.Any)
}

func (c *Checker) inferLiteral(n *ast.Literal) *registry.Shape {
	switch n.Kind {
	case ast.LitNumber:
		return registry.Prim(registry.Number)
	case ast.LitString:
		return registry.Prim(registry.String)
	case ast.LitBool:
		return registry.Prim(registry.Boolean)
	case ast.LitNull:
		return registry.Prim(registry.Null)
	}
	return registry.Prim(registry.Any)
}

func (c *Checker) inferIdentifier(n *ast.Identifier) *registry.Shape {
	if sh, ok := c.lookup(n.Name); ok {
		return sh
	}
	if isBuiltin(n.Name) {
		return registry.Prim(registry.Any)
	}
	c.errorf(n.Pos, "undefined identifier %q", n.Name)
	return registry.Prim(registry.Any)
}

func (c *Checker) inferMemberAccess(n *ast.MemberAccess) *registry.Shape {
	objShape := c.inferExpr(n.Object)
	if n.Computed {
		c.inferExpr(n.Index)
		return registry.Prim(registry.Any)
	}
	if objShape == nil {
		return registry.Prim(registry.Any)
	}
	switch objShape.Kind {
	case registry.Object:
		if len(objShape.Props) > 0 {
			if sh, ok := objShape.Props[n.Property]; ok {
				return sh
			}
			if isBuiltinMethodName(n.Property) {
				return registry.Prim(registry.Any)
			}
			c.errorf(n.Pos, "object has no property %q", n.Property)
			return registry.Prim(registry.Any)
		}
		return registry.Prim(registry.Any)
	case registry.Enum:
		for _, m := range objShape.Members {
			if m == n.Property {
				return registry.Prim(registry.Number)
			}
		}
		c.errorf(n.Pos, "enum %s has no member %q", objShape.Name, n.Property)
		return registry.Prim(registry.Any)
	case registry.Array, registry.String:
		if sh, ok := builtinMethodShape(objShape, n.Property); ok {
			return sh
		}
		return registry.Prim(registry.Any)
	}
	return registry.Prim(registry.Any)
}

func (c *Checker) inferCall(n *ast.Call) *registry.Shape {
	for _, a := range n.Args {
		c.inferExpr(a)
	}

	if member, ok := n.Callee.(*ast.MemberAccess); ok && !member.Computed {
		objShape := c.inferExpr(member.Object)
		if objShape != nil && (objShape.Kind == registry.Array || objShape.Kind == registry.String) {
			if sh, ok := builtinMethodShape(objShape, member.Property); ok {
				return sh
			}
			return registry.Prim(registry.Any)
		}
	}

	calleeShape := c.inferExpr(n.Callee)
	if calleeShape == nil {
		return registry.Prim(registry.Any)
	}
	switch calleeShape.Kind {
	case registry.Function:
		if calleeShape.Return != nil {
			return calleeShape.Return
		}
		return registry.Prim(registry.Any)
	case registry.Any, registry.Unknown:
		return registry.Prim(registry.Any)
	default:
		c.errorf(n.Pos, "call of a value that is not a function")
		return registry.Prim(registry.Any)
	}
}

func (c *Checker) inferArrowFunction(n *ast.ArrowFunction) *registry.Shape {
	c.pushScope()
	params := make([]*registry.Shape, len(n.Params))
	for i, p := range n.Params {
		params[i] = registry.Prim(registry.Any)
		c.declare(p, params[i])
	}
	var ret *registry.Shape
	if n.Block != nil {
		c.hoist(n.Block.Stmts)
		for _, st := range n.Block.Stmts {
			c.visitStmt(st, map[string]*registry.Shape{})
		}
		ret = registry.Prim(registry.Any)
	} else {
		ret = c.inferExpr(n.Expr)
	}
	c.popScope()
	return registry.FuncOf(params, ret)
}

func (c *Checker) inferArrayExpr(n *ast.ArrayExpr) *registry.Shape {
	var el *registry.Shape
	for _, e := range n.Elements {
		if _, ok := e.(*ast.Spread); ok {
			c.inferExpr(e)
			continue
		}
		sh := c.inferExpr(e)
		if el == nil {
			el = sh
		} else if !registry.Compatible(el, sh) {
			el = registry.Prim(registry.Unknown)
		}
	}
	if el == nil {
		el = registry.Prim(registry.Unknown)
	}
	return registry.ArrayOf(el)
}

func (c *Checker) inferObjectExpr(n *ast.ObjectExpr) *registry.Shape {
	props := map[string]*registry.Shape{}
	for _, m := range n.Props {
		switch p := m.(type) {
		case ast.Property:
			if p.Computed {
				c.inferExpr(p.KeyExpr)
				if p.Value != nil {
					c.inferExpr(p.Value)
				}
				continue
			}
			var sh *registry.Shape
			if p.Shorthand || p.Value == nil {
				sh = c.inferIdentifier(&ast.Identifier{Pos: n.Pos, Name: p.Key})
			} else {
				sh = c.inferExpr(p.Value)
			}
			props[p.Key] = sh
		case ast.SpreadProperty:
			spreadShape := c.inferExpr(p.Argument)
			if spreadShape != nil && spreadShape.Kind == registry.Object {
				for k, v := range spreadShape.Props {
					props[k] = v
				}
			}
		}
	}
	return registry.ObjectOf(props)
}

func inferBinaryShape(op token.Kind, left, right *registry.Shape) *registry.Shape {
	switch op {
	case token.IS, token.EQEQ, token.NOTEQ, token.LT, token.GT, token.LTEQ, token.GTEQ,
		token.ANDAND, token.OROR, token.AND, token.OR:
		if op == token.ANDAND || op == token.OROR || op == token.AND || op == token.OR {
			if registry.Compatible(left, right) {
				return left
			}
			return registry.Prim(registry.Any)
		}
		return registry.Prim(registry.Boolean)
	case token.PLUS:
		if left != nil && left.Kind == registry.String {
			return registry.Prim(registry.String)
		}
		if right != nil && right.Kind == registry.String {
			return registry.Prim(registry.String)
		}
		if left != nil && left.Kind == registry.Number && right != nil && right.Kind == registry.Number {
			return registry.Prim(registry.Number)
		}
		return registry.Prim(registry.Any)
	case token.MINUS, token.STAR, token.SLASH, token.PERCENT, token.STARSTAR,
		token.PIPE, token.CARET, token.AMP, token.SHL, token.SHR:
		return registry.Prim(registry.Number)
	}
	return registry.Prim(registry.Any)
}
