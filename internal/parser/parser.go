// Package parser turns a Kimchi token stream into an AST.
//
// It is a hand-written recursive-descent / precedence-climbing parser, one
// method per precedence level, following spec.md §4.2's table top to
// bottom (loosest binding first). Kimchi has exactly one grammar, so unlike
// the teacher's UniversalEvaluator (which takes an injected LanguageProvider
// because it serves many languages through one evaluator), there is nothing
// to inject here — the "one implementation, no per-language branching"
// discipline the teacher enforces via dependency injection is achieved here
// simply by there being a single grammar.
package parser

import (
	"fmt"
	"strings"

	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/token"
)

// ParseError is a parse-time failure; Line/Col pinpoint the offending token.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ParseError at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Parser consumes a token slice and builds an *ast.Program. It tracks two
// pieces of flow-sensitive state while it builds the tree, exactly as
// spec.md §3 requires: the set of names currently bound by `dec` (for the
// deep-immutability check) and the set of names ever bound `secret` (for
// the JS-block secret-taint check).
type Parser struct {
	toks []token.Token
	pos  int

	immutable []map[string]bool // scope stack, innermost last
	secret    map[string]bool   // flat: secret-ness never needs to be forgotten
}

// Parse tokenizes nothing itself — it consumes an already-scanned token
// slice (spec.md §6: tokenize and parse are independently usable).
func Parse(toks []token.Token) (*ast.Program, error) {
	p := &Parser{
		toks:      toks,
		immutable: []map[string]bool{{}},
		secret:    map[string]bool{},
	}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
		p.skipStatementSeparators()
	}
	return prog, nil
}

// --- token stream primitives -------------------------------------------------

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[idx]
}

func (p *Parser) atEnd() bool { return p.cur().Kind == token.EOF }

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) checkAt(n int, k token.Kind) bool { return p.peekAt(n).Kind == k }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, error) {
	if !p.check(k) {
		t := p.cur()
		return t, &ParseError{t.Line, t.Column, fmt.Sprintf("expected %s, found %s", what, t.Kind)}
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// skipStatementSeparators consumes the NEWLINE/SEMI tokens between
// statements.
func (p *Parser) skipStatementSeparators() {
	for p.check(token.NEWLINE) || p.check(token.SEMI) {
		p.advance()
	}
}

func (p *Parser) pos2() ast.Pos {
	t := p.cur()
	return ast.Pos{Line: t.Line, Col: t.Column}
}

// --- scope bookkeeping for immutability & secret taint -----------------------

func (p *Parser) pushScope() { p.immutable = append(p.immutable, map[string]bool{}) }

func (p *Parser) popScope() { p.immutable = p.immutable[:len(p.immutable)-1] }

func (p *Parser) declareImmutable(name string) {
	p.immutable[len(p.immutable)-1][name] = true
}

func (p *Parser) isImmutable(name string) bool {
	for i := len(p.immutable) - 1; i >= 0; i-- {
		if p.immutable[i][name] {
			return true
		}
	}
	return false
}

func (p *Parser) declareSecret(name string) { p.secret[name] = true }

func (p *Parser) isSecret(name string) bool { return p.secret[name] }

// --- expression entry point ---------------------------------------------------

// ParseExpression exposes the top of the precedence chain for callers that
// need to parse a single expression outside of statement context (the
// template-literal re-scan, guard expressions).
func (p *Parser) ParseExpression() (ast.Expr, error) { return p.parseAssignment() }

func (p *Parser) parseAssignment() (ast.Expr, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if op, ok := p.assignOp(); ok {
		opTok := p.advance()
		if err := p.checkImmutableTarget(left, opTok); err != nil {
			return nil, err
		}
		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Pos: left.Position(), Target: left, Op: op, Value: value}, nil
	}
	return left, nil
}

func (p *Parser) assignOp() (token.Kind, bool) {
	switch p.cur().Kind {
	case token.EQ, token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ:
		return p.cur().Kind, true
	}
	return 0, false
}

// checkImmutableTarget implements spec.md §3/§8's deep-immutability rule:
// an identifier bound via `dec` may never be the root of an assignment
// target, however deep the access chain.
func (p *Parser) checkImmutableTarget(target ast.Expr, opTok token.Token) error {
	root, path, ok := rootAndPath(target)
	if !ok {
		return nil
	}
	if p.isImmutable(root) {
		return &ParseError{opTok.Line, opTok.Column,
			fmt.Sprintf("cannot reassign '%s' (bound with dec, root '%s')", path, root)}
	}
	return nil
}

// rootAndPath walks a MemberAccess chain down to its root Identifier and
// renders the dotted/bracketed path for diagnostics.
func rootAndPath(e ast.Expr) (root, path string, ok bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name, n.Name, true
	case *ast.MemberAccess:
		r, p, ok := rootAndPath(n.Object)
		if !ok {
			return "", "", false
		}
		if n.Computed {
			return r, p + "[...]", true
		}
		return r, p + "." + n.Property, true
	default:
		return "", "", false
	}
}

func (p *Parser) parseTernary() (ast.Expr, error) {
	cond, err := p.parseFlow()
	if err != nil {
		return nil, err
	}
	if p.match(token.QUESTION) {
		then, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON, "':'"); err != nil {
			return nil, err
		}
		els, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		return &ast.Conditional{Pos: cond.Position(), Cond: cond, Then: then, Else: els}, nil
	}
	return cond, nil
}

// parseFlow recognizes `name >> f1 f2 ...` eagerly, before ever descending
// into the pipe/shift chain, because flow's left operand must be a bare
// identifier (spec.md §4.2) — waiting until after a generic sub-parse would
// let the shift-level `>>` operator claim the token first.
func (p *Parser) parseFlow() (ast.Expr, error) {
	if p.check(token.IDENT) && p.checkAt(1, token.SHR) {
		name := p.advance()
		p.advance() // >>
		var fns []string
		for p.check(token.IDENT) {
			fns = append(fns, p.advance().Lexeme)
		}
		if len(fns) == 0 {
			t := p.cur()
			return nil, &ParseError{t.Line, t.Column, "flow expression requires at least one function name"}
		}
		return &ast.Flow{Pos: ast.Pos{Line: name.Line, Col: name.Column}, Target: name.Lexeme, Functions: fns}, nil
	}
	return p.parsePipe()
}

func (p *Parser) parsePipe() (ast.Expr, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	for p.match(token.FLOWSQUIG) {
		right, err := p.parseLogicalOr()
		if err != nil {
			return nil, err
		}
		left = &ast.Pipe{Pos: left.Position(), Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseLogicalOr() (ast.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.check(token.OROR) || p.check(token.OR) {
		p.advance()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: token.OROR, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseLogicalAnd() (ast.Expr, error) {
	left, err := p.parseBitwiseOr()
	if err != nil {
		return nil, err
	}
	for p.check(token.ANDAND) || p.check(token.AND) {
		p.advance()
		right, err := p.parseBitwiseOr()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: token.ANDAND, Left: left, Right: right}
	}
	return left, nil
}

// parseBitwiseOr implements spec.md §4.2's disambiguation: a `|` that opens
// a pattern guard (a second `|` followed, ignoring newlines, by `=>`) is
// never consumed here as an infix operator.
func (p *Parser) parseBitwiseOr() (ast.Expr, error) {
	left, err := p.parseBitwiseXor()
	if err != nil {
		return nil, err
	}
	for p.check(token.PIPE) && !p.isPatternGuardAhead() {
		p.advance()
		right, err := p.parseBitwiseXor()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: token.PIPE, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseBitwiseXor() (ast.Expr, error) {
	left, err := p.parseBitwiseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(token.CARET) {
		right, err := p.parseBitwiseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: token.CARET, Left: left, Right: right}
	}
	return left, nil
}

// parseBitwiseAnd exists for structural fidelity to spec.md's precedence
// table; the scanner rejects a lone '&' outside of '&&' (spec.md §4.1), so
// token.AMP never actually reaches the parser in a valid program.
func (p *Parser) parseBitwiseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.match(token.AMP) {
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: token.AMP, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.EQEQ):
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Pos: left.Position(), Op: token.EQEQ, Left: left, Right: right}
		case p.match(token.NOTEQ):
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Pos: left.Position(), Op: token.NOTEQ, Left: left, Right: right}
		case p.check(token.IS):
			p.advance()
			isNot := p.match(token.NOT)
			right, err := p.parseRelational()
			if err != nil {
				return nil, err
			}
			left = &ast.Binary{Pos: left.Position(), Op: token.IS, IsNot: isNot, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseShift()
	if err != nil {
		return nil, err
	}
	for {
		var op token.Kind
		switch p.cur().Kind {
		case token.LT, token.GT, token.LTEQ, token.GTEQ:
			op = p.advance().Kind
		default:
			return left, nil
		}
		right, err := p.parseShift()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseShift() (ast.Expr, error) {
	left, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	for p.check(token.SHL) || p.check(token.SHR) {
		op := p.advance().Kind
		right, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseRange() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.match(token.DOTDOT) {
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.Range{Pos: left.Position(), Start: left, End: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance().Kind
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.advance().Kind
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Pos: left.Position(), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parsePower() (ast.Expr, error) {
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.match(token.STARSTAR) {
		exp, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Pos: base.Position(), Op: token.STARSTAR, Left: base, Right: exp}, nil
	}
	return base, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch {
	case p.check(token.BANG), p.check(token.MINUS), p.check(token.TILDE), p.check(token.NOT):
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Pos: ast.Pos{Line: opTok.Line, Col: opTok.Column}, Op: opTok.Kind, Operand: operand}, nil
	case p.check(token.AWAIT):
		awaitTok := p.advance()
		val, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Await{Pos: ast.Pos{Line: awaitTok.Line, Col: awaitTok.Column}, Value: val}, nil
	case p.check(token.ELLIPSIS):
		spreadTok := p.advance()
		val, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Spread{Pos: ast.Pos{Line: spreadTok.Line, Col: spreadTok.Column}, Argument: val}, nil
	default:
		return p.parseCallMember()
	}
}

func (p *Parser) parseCallMember() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.DOT):
			nameTok, err := p.expect(token.IDENT, "identifier after '.'")
			if err != nil {
				return nil, err
			}
			expr = &ast.MemberAccess{Pos: expr.Position(), Object: expr, Property: nameTok.Lexeme, Computed: false}
		case p.match(token.LBRACKET):
			idx, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			expr = &ast.MemberAccess{Pos: expr.Position(), Object: expr, Index: idx, Computed: true}
		case p.check(token.LPAREN):
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			expr = &ast.Call{Pos: expr.Position(), Callee: expr, Args: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgList() ([]ast.Expr, error) {
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Expr
	p.skipNewlines()
	for !p.check(token.RPAREN) {
		arg, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

// isPatternGuardAhead scans forward from the current `|` token, without
// consuming, to decide whether it opens a pattern guard: a second `|` at
// the same bracket depth, followed (ignoring newlines) by `=>`.
func (p *Parser) isPatternGuardAhead() bool {
	depth := 0
	for i := p.pos + 1; i < len(p.toks); i++ {
		tk := p.toks[i]
		switch tk.Kind {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			if depth == 0 {
				return false
			}
			depth--
		case token.PIPE:
			if depth == 0 {
				j := i + 1
				for j < len(p.toks) && p.toks[j].Kind == token.NEWLINE {
					j++
				}
				return j < len(p.toks) && p.toks[j].Kind == token.FATARROW
			}
		case token.NEWLINE:
			if depth == 0 {
				return false
			}
		case token.EOF, token.SEMI:
			return false
		}
	}
	return false
}

func exprString(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Name
	case *ast.MemberAccess:
		if n.Computed {
			return exprString(n.Object) + "[...]"
		}
		return exprString(n.Object) + "." + n.Property
	case *ast.Literal:
		return n.Raw
	default:
		return strings.TrimSpace(fmt.Sprintf("%T", e))
	}
}
