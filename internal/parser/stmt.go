package parser

import (
	"fmt"

	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/token"
)

type modifiers struct {
	exposed, secret, async, memoized bool
}

func (p *Parser) parseModifiers() modifiers {
	var m modifiers
	for {
		switch p.cur().Kind {
		case token.EXPOSE:
			m.exposed = true
			p.advance()
		case token.SECRET:
			m.secret = true
			p.advance()
		case token.ASYNC:
			m.async = true
			p.advance()
		case token.MEMO:
			m.memoized = true
			p.advance()
		default:
			return m
		}
	}
}

func (p *Parser) parseStatement() (ast.Stmt, error) {
	p.skipNewlines()
	if p.atEnd() || p.check(token.RBRACE) {
		return nil, nil
	}

	if p.check(token.PIPE) && p.isPatternGuardAhead() {
		return p.parsePatternMatchStmt()
	}
	if p.isRegexGuardAhead() {
		return p.parsePatternMatchStmt()
	}

	mods := p.parseModifiers()
	switch p.cur().Kind {
	case token.DEC:
		return p.parseDecBinding(mods)
	case token.FN:
		return p.parseFunctionDecl(mods)
	case token.ENUM:
		if mods.exposed || mods.secret || mods.async || mods.memoized {
			t := p.cur()
			return nil, &ParseError{t.Line, t.Column, "enum declarations accept no modifiers"}
		}
		return p.parseEnumDecl()
	case token.ARG:
		return p.parseArgDecl(mods)
	case token.ENV:
		return p.parseEnvDecl(mods)
	}

	if mods != (modifiers{}) {
		t := p.cur()
		return nil, &ParseError{t.Line, t.Column, "modifier not valid before " + t.Kind.String()}
	}

	switch p.cur().Kind {
	case token.AS:
		return p.parseDepStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForInStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.BREAK:
		t := p.advance()
		return &ast.BreakStmt{Pos: ast.Pos{Line: t.Line, Col: t.Column}}, nil
	case token.CONTINUE:
		t := p.advance()
		return &ast.ContinueStmt{Pos: ast.Pos{Line: t.Line, Col: t.Column}}, nil
	case token.TRY:
		return p.parseTryStmt()
	case token.THROW:
		return p.parseThrowStmt()
	case token.PRINT:
		return p.parsePrintStmt()
	case token.JS:
		return p.parseJSBlock(false)
	case token.SHELL:
		return p.parseShellBlock(false)
	case token.TEST:
		return p.parseTestBlock()
	case token.DESCRIBE:
		return p.parseDescribeBlock()
	case token.EXPECT:
		return p.parseExpectStmt()
	case token.ASSERT:
		return p.parseAssertStmt()
	default:
		pos := p.pos2()
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStmt{Pos: pos, Expr: expr}, nil
	}
}

func (p *Parser) parseBlock() (*ast.BlockStmt, error) {
	openTok, err := p.expect(token.LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	p.pushScope()
	defer p.popScope()
	block := &ast.BlockStmt{Pos: ast.Pos{Line: openTok.Line, Col: openTok.Column}}
	p.skipStatementSeparators()
	for !p.check(token.RBRACE) && !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		p.skipStatementSeparators()
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return block, nil
}

// --- declarations -------------------------------------------------------

func (p *Parser) parseDecBinding(m modifiers) (ast.Stmt, error) {
	decTok := p.advance()
	pos := ast.Pos{Line: decTok.Line, Col: decTok.Column}

	var name string
	var pattern ast.Expr
	var err error
	switch {
	case p.check(token.LBRACE):
		pattern, err = p.parseObjectPattern()
	case p.check(token.LBRACKET):
		pattern, err = p.parseArrayPattern()
	default:
		var nameTok token.Token
		nameTok, err = p.expect(token.IDENT, "identifier")
		name = nameTok.Lexeme
	}
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.EQ, "'='"); err != nil {
		return nil, err
	}
	init, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if name != "" {
		p.declareImmutable(name)
		if m.secret {
			p.declareSecret(name)
		}
	} else {
		p.declarePatternNames(pattern, m.secret)
	}

	return &ast.DecBinding{Pos: pos, Name: name, Pattern: pattern, Init: init, Exposed: m.exposed, Secret: m.secret}, nil
}

func (p *Parser) declarePatternNames(pat ast.Expr, secret bool) {
	switch n := pat.(type) {
	case *ast.ObjectPattern:
		for _, prop := range n.Props {
			name := prop.Alias
			if name == "" {
				name = prop.Key
			}
			p.declareImmutable(name)
			if secret {
				p.declareSecret(name)
			}
		}
	case *ast.ArrayPattern:
		for _, el := range n.Elements {
			if el.Hole {
				continue
			}
			p.declareImmutable(el.Name)
			if secret {
				p.declareSecret(el.Name)
			}
		}
	}
}

func (p *Parser) parseObjectPattern() (*ast.ObjectPattern, error) {
	openTok, err := p.expect(token.LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	out := &ast.ObjectPattern{Pos: ast.Pos{Line: openTok.Line, Col: openTok.Column}}
	for !p.check(token.RBRACE) {
		keyTok, err := p.expect(token.IDENT, "identifier")
		if err != nil {
			return nil, err
		}
		alias := keyTok.Lexeme
		if p.match(token.COLON) {
			aliasTok, err := p.expect(token.IDENT, "identifier")
			if err != nil {
				return nil, err
			}
			alias = aliasTok.Lexeme
		}
		var def ast.Expr
		if p.match(token.EQ) {
			def, err = p.parseAssignment()
			if err != nil {
				return nil, err
			}
		}
		out.Props = append(out.Props, ast.ObjectPatternProp{Key: keyTok.Lexeme, Alias: alias, Default: def})
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseArrayPattern() (*ast.ArrayPattern, error) {
	openTok, err := p.expect(token.LBRACKET, "'['")
	if err != nil {
		return nil, err
	}
	out := &ast.ArrayPattern{Pos: ast.Pos{Line: openTok.Line, Col: openTok.Column}}
	for !p.check(token.RBRACKET) {
		if p.check(token.COMMA) {
			out.Elements = append(out.Elements, ast.ArrayPatternElement{Hole: true})
			p.advance()
			continue
		}
		nameTok, err := p.expect(token.IDENT, "identifier")
		if err != nil {
			return nil, err
		}
		var def ast.Expr
		if p.match(token.EQ) {
			def, err = p.parseAssignment()
			if err != nil {
				return nil, err
			}
		}
		out.Elements = append(out.Elements, ast.ArrayPatternElement{Name: nameTok.Lexeme, Default: def})
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseFunctionDecl(m modifiers) (ast.Stmt, error) {
	fnTok := p.advance()
	nameTok, err := p.expect(token.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []ast.Param
	for !p.check(token.RPAREN) {
		pTok, err := p.expect(token.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: pTok.Lexeme})
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{
		Pos: ast.Pos{Line: fnTok.Line, Col: fnTok.Column}, Name: nameTok.Lexeme,
		Params: params, Body: body, Async: m.async, Memoized: m.memoized, Exposed: m.exposed,
	}, nil
}

func (p *Parser) parseEnumDecl() (ast.Stmt, error) {
	enumTok := p.advance()
	nameTok, err := p.expect(token.IDENT, "enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	decl := &ast.EnumDecl{Pos: ast.Pos{Line: enumTok.Line, Col: enumTok.Column}, Name: nameTok.Lexeme}
	p.skipNewlines()
	for !p.check(token.RBRACE) {
		memberTok, err := p.expect(token.IDENT, "enum member name")
		if err != nil {
			return nil, err
		}
		var explicit *int
		if p.match(token.EQ) {
			numTok, err := p.expect(token.NUMBER, "enum member value")
			if err != nil {
				return nil, err
			}
			var v int
			if _, scanErr := fmt.Sscanf(numTok.Lexeme, "%d", &v); scanErr != nil {
				return nil, &ParseError{numTok.Line, numTok.Column, "enum member value must be an integer literal"}
			}
			explicit = &v
		}
		decl.Members = append(decl.Members, ast.EnumMember{Name: memberTok.Lexeme, ExplicitValue: explicit})
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseArgDecl(m modifiers) (ast.Stmt, error) {
	argTok := p.advance()
	required := p.match(token.BANG)
	nameTok, err := p.expect(token.IDENT, "arg name")
	if err != nil {
		return nil, err
	}
	var def ast.Expr
	if p.match(token.EQ) {
		def, err = p.ParseExpression()
		if err != nil {
			return nil, err
		}
	}
	if m.secret {
		p.declareSecret(nameTok.Lexeme)
	}
	return &ast.ArgDecl{
		Pos: ast.Pos{Line: argTok.Line, Col: argTok.Column}, Name: nameTok.Lexeme,
		Required: required, Default: def, Secret: m.secret,
	}, nil
}

func (p *Parser) parseEnvDecl(m modifiers) (ast.Stmt, error) {
	envTok := p.advance()
	required := p.match(token.BANG)
	nameTok, err := p.expect(token.IDENT, "env name")
	if err != nil {
		return nil, err
	}
	var def ast.Expr
	if p.match(token.EQ) {
		def, err = p.ParseExpression()
		if err != nil {
			return nil, err
		}
	}
	if m.secret {
		p.declareSecret(nameTok.Lexeme)
	}
	return &ast.EnvDecl{
		Pos: ast.Pos{Line: envTok.Line, Col: envTok.Column}, Name: nameTok.Lexeme,
		Required: required, Default: def, Secret: m.secret,
	}, nil
}

func (p *Parser) parseDepStmt() (ast.Stmt, error) {
	asTok := p.advance()
	aliasTok, err := p.expect(token.IDENT, "dependency alias")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DEP, "'dep'"); err != nil {
		return nil, err
	}
	firstTok, err := p.expect(token.IDENT, "dependency path")
	if err != nil {
		return nil, err
	}
	path := []string{firstTok.Lexeme}
	for p.match(token.DOT) {
		segTok, err := p.expect(token.IDENT, "dependency path segment")
		if err != nil {
			return nil, err
		}
		path = append(path, segTok.Lexeme)
	}
	var override ast.Expr
	if p.match(token.LPAREN) {
		if !p.check(token.RPAREN) {
			override, err = p.ParseExpression()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
	}
	return &ast.DepStmt{
		Pos: ast.Pos{Line: asTok.Line, Col: asTok.Column}, Alias: aliasTok.Lexeme,
		Path: path, Override: override,
	}, nil
}

// --- control flow ---------------------------------------------------------

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	ifTok := p.advance()
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	elseStmt, err := p.parseElseClause()
	if err != nil {
		return nil, err
	}
	return &ast.IfStmt{Pos: ast.Pos{Line: ifTok.Line, Col: ifTok.Column}, Cond: cond, Then: then, Else: elseStmt}, nil
}

// parseElseClause handles `elif`, `else if`, and plain `else`, rewriting
// `elif` into a nested else-if IfStmt (spec.md §9).
func (p *Parser) parseElseClause() (ast.Stmt, error) {
	save := p.pos
	p.skipNewlines()

	if p.check(token.ELIF) {
		elifTok := p.advance()
		cond, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		then, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		nested, err := p.parseElseClause()
		if err != nil {
			return nil, err
		}
		return &ast.IfStmt{Pos: ast.Pos{Line: elifTok.Line, Col: elifTok.Column}, Cond: cond, Then: then, Else: nested}, nil
	}

	if p.check(token.ELSE) {
		p.advance()
		p.skipNewlines()
		if p.check(token.IF) {
			return p.parseIfStmt()
		}
		return p.parseBlock()
	}

	p.pos = save
	return nil, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	whileTok := p.advance()
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Pos: ast.Pos{Line: whileTok.Line, Col: whileTok.Column}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseForInStmt() (ast.Stmt, error) {
	forTok := p.advance()
	nameTok, err := p.expect(token.IDENT, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN, "'in'"); err != nil {
		return nil, err
	}
	iterable, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForInStmt{
		Pos: ast.Pos{Line: forTok.Line, Col: forTok.Column}, Name: nameTok.Lexeme,
		Iterable: iterable, Body: body,
	}, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	retTok := p.advance()
	pos := ast.Pos{Line: retTok.Line, Col: retTok.Column}
	if p.check(token.NEWLINE) || p.check(token.SEMI) || p.check(token.RBRACE) || p.atEnd() {
		return &ast.ReturnStmt{Pos: pos}, nil
	}
	val, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Pos: pos, Value: val}, nil
}

func (p *Parser) parseTryStmt() (ast.Stmt, error) {
	tryTok := p.advance()
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	out := &ast.TryStmt{Pos: ast.Pos{Line: tryTok.Line, Col: tryTok.Column}, Block: block}

	save := p.pos
	p.skipNewlines()
	if p.check(token.CATCH) {
		p.advance()
		out.HasCatch = true
		if p.match(token.LPAREN) {
			if p.check(token.IDENT) {
				out.CatchParam = p.advance().Lexeme
			}
			if _, err := p.expect(token.RPAREN, "')'"); err != nil {
				return nil, err
			}
		}
		out.CatchBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	} else {
		p.pos = save
	}

	save = p.pos
	p.skipNewlines()
	if p.check(token.FINALLY) {
		p.advance()
		out.Finally, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	} else {
		p.pos = save
	}

	return out, nil
}

func (p *Parser) parseThrowStmt() (ast.Stmt, error) {
	throwTok := p.advance()
	val, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ThrowStmt{Pos: ast.Pos{Line: throwTok.Line, Col: throwTok.Column}, Value: val}, nil
}

func (p *Parser) parsePrintStmt() (ast.Stmt, error) {
	printTok := p.advance()
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Pos: ast.Pos{Line: printTok.Line, Col: printTok.Column}, Args: args}, nil
}

// --- pattern match ---------------------------------------------------------

func (p *Parser) isRegexGuardAhead() bool {
	if !p.check(token.REGEX) {
		return false
	}
	i := p.pos + 1
	for i < len(p.toks) && p.toks[i].Kind == token.NEWLINE {
		i++
	}
	return i < len(p.toks) && p.toks[i].Kind == token.FATARROW
}

func (p *Parser) parsePatternMatchStmt() (ast.Stmt, error) {
	pos := p.pos2()
	match := &ast.PatternMatchStmt{Pos: pos}

	if p.check(token.REGEX) {
		match.IsRegex = true
		for p.isRegexGuardAhead() {
			regexTok := p.advance()
			rv, _ := regexTok.Value.(token.RegexValue)
			guard := &ast.RegexLiteral{Pos: ast.Pos{Line: regexTok.Line, Col: regexTok.Column}, Pattern: rv.Pattern, Flags: rv.Flags}
			p.skipNewlines()
			if _, err := p.expect(token.FATARROW, "'=>'"); err != nil {
				return nil, err
			}
			p.skipNewlines()
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			match.Cases = append(match.Cases, ast.MatchCase{Guard: guard, Body: body})
			p.skipNewlines()
		}
		return match, nil
	}

	for p.check(token.PIPE) && p.isPatternGuardAhead() {
		p.advance()
		guard, err := p.parseEquality() // restricted grammar: never descends into bitwise-or
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.PIPE, "'|' closing pattern guard"); err != nil {
			return nil, err
		}
		p.skipNewlines()
		if _, err := p.expect(token.FATARROW, "'=>'"); err != nil {
			return nil, err
		}
		p.skipNewlines()
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		match.Cases = append(match.Cases, ast.MatchCase{Guard: guard, Body: body})
		p.skipNewlines()
	}
	return match, nil
}

// --- testing DSL -----------------------------------------------------------

func stringLiteralValue(t token.Token) string {
	if s, ok := t.Value.(string); ok {
		return s
	}
	return t.Lexeme
}

func (p *Parser) parseTestBlock() (ast.Stmt, error) {
	testTok := p.advance()
	nameTok, err := p.expect(token.STRING, "test name")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.TestBlock{Pos: ast.Pos{Line: testTok.Line, Col: testTok.Column}, Name: stringLiteralValue(nameTok), Body: body}, nil
}

func (p *Parser) parseDescribeBlock() (ast.Stmt, error) {
	descTok := p.advance()
	nameTok, err := p.expect(token.STRING, "describe name")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.DescribeBlock{Pos: ast.Pos{Line: descTok.Line, Col: descTok.Column}, Name: stringLiteralValue(nameTok), Body: body}, nil
}

func (p *Parser) parseExpectStmt() (ast.Stmt, error) {
	expectTok := p.advance()
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	actual, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DOT, "'.'"); err != nil {
		return nil, err
	}
	matcherTok, err := p.expect(token.IDENT, "matcher name")
	if err != nil {
		return nil, err
	}
	out := &ast.ExpectStmt{Pos: ast.Pos{Line: expectTok.Line, Col: expectTok.Column}, Actual: actual, Matcher: matcherTok.Lexeme}
	if p.match(token.LPAREN) {
		if !p.check(token.RPAREN) {
			out.Expected, err = p.ParseExpression()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Parser) parseAssertStmt() (ast.Stmt, error) {
	assertTok := p.advance()
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	var msg ast.Expr
	if p.match(token.COMMA) {
		msg, err = p.ParseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return &ast.AssertStmt{Pos: ast.Pos{Line: assertTok.Line, Col: assertTok.Column}, Cond: cond, Message: msg}, nil
}
