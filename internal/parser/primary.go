package parser

import (
	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/token"
)

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.pos2()
	switch p.cur().Kind {
	case token.NUMBER:
		t := p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitNumber, Raw: t.Lexeme}, nil

	case token.STRING:
		t := p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitString, Raw: stringLiteralValue(t)}, nil

	case token.TEMPLATE_STRING:
		t := p.advance()
		return p.buildTemplateLiteral(pos, stringLiteralValue(t))

	case token.BACKTICK:
		t := p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitString, Raw: t.Lexeme}, nil

	case token.TRUE:
		p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitBool, Bool: true}, nil

	case token.FALSE:
		p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitBool, Bool: false}, nil

	case token.NULL:
		p.advance()
		return &ast.Literal{Pos: pos, Kind: ast.LitNull}, nil

	case token.REGEX:
		t := p.advance()
		rv, _ := t.Value.(token.RegexValue)
		return &ast.RegexLiteral{Pos: pos, Pattern: rv.Pattern, Flags: rv.Flags}, nil

	case token.IDENT:
		identTok := p.advance()
		if p.check(token.FATARROW) {
			p.advance()
			return p.parseArrowBody(pos, []string{identTok.Lexeme}, false)
		}
		return &ast.Identifier{Pos: pos, Name: identTok.Lexeme}, nil

	case token.ASYNC:
		p.advance()
		if p.check(token.LPAREN) {
			return p.parseArrowFunction(pos, true)
		}
		nameTok, err := p.expect(token.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.FATARROW, "'=>'"); err != nil {
			return nil, err
		}
		return p.parseArrowBody(pos, []string{nameTok.Lexeme}, true)

	case token.LPAREN:
		if p.looksLikeArrowParams() {
			return p.parseArrowFunction(pos, false)
		}
		p.advance()
		inner, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return inner, nil

	case token.LBRACKET:
		return p.parseArrayExpr()

	case token.LBRACE:
		return p.parseObjectExpr()

	case token.JS:
		return p.parseJSBlock(true)

	case token.SHELL:
		return p.parseShellBlock(true)

	default:
		t := p.cur()
		return nil, &ParseError{t.Line, t.Column, "unexpected token " + t.Kind.String() + " in expression"}
	}
}

func (p *Parser) looksLikeArrowParams() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				j := i + 1
				for j < len(p.toks) && p.toks[j].Kind == token.NEWLINE {
					j++
				}
				return j < len(p.toks) && p.toks[j].Kind == token.FATARROW
			}
		case token.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseArrowFunction(pos ast.Pos, async bool) (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(token.RPAREN) {
		nameTok, err := p.expect(token.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, nameTok.Lexeme)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.FATARROW, "'=>'"); err != nil {
		return nil, err
	}
	return p.parseArrowBody(pos, params, async)
}

func (p *Parser) parseArrowBody(pos ast.Pos, params []string, async bool) (ast.Expr, error) {
	p.skipNewlines()
	if p.check(token.LBRACE) {
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.ArrowFunction{Pos: pos, Params: params, Block: block, Async: async}, nil
	}
	expr, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.ArrowFunction{Pos: pos, Params: params, Expr: expr, Async: async}, nil
}

func (p *Parser) parseArrayExpr() (ast.Expr, error) {
	openTok, err := p.expect(token.LBRACKET, "'['")
	if err != nil {
		return nil, err
	}
	out := &ast.ArrayExpr{Pos: ast.Pos{Line: openTok.Line, Col: openTok.Column}}
	p.skipNewlines()
	for !p.check(token.RBRACKET) {
		var el ast.Expr
		if p.check(token.ELLIPSIS) {
			spreadTok := p.advance()
			val, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			el = &ast.Spread{Pos: ast.Pos{Line: spreadTok.Line, Col: spreadTok.Column}, Argument: val}
		} else {
			el, err = p.ParseExpression()
			if err != nil {
				return nil, err
			}
		}
		out.Elements = append(out.Elements, el)
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Parser) parseObjectExpr() (ast.Expr, error) {
	openTok, err := p.expect(token.LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	out := &ast.ObjectExpr{Pos: ast.Pos{Line: openTok.Line, Col: openTok.Column}}
	p.skipNewlines()
	for !p.check(token.RBRACE) {
		switch {
		case p.check(token.ELLIPSIS):
			p.advance()
			val, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			out.Props = append(out.Props, ast.SpreadProperty{Argument: val})

		case p.check(token.LBRACKET):
			p.advance()
			keyExpr, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON, "':'"); err != nil {
				return nil, err
			}
			val, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			out.Props = append(out.Props, ast.Property{Computed: true, KeyExpr: keyExpr, Value: val})

		default:
			var key string
			switch {
			case p.check(token.IDENT):
				key = p.advance().Lexeme
			case p.check(token.STRING):
				key = stringLiteralValue(p.advance())
			default:
				t := p.cur()
				return nil, &ParseError{t.Line, t.Column, "expected property key"}
			}
			if p.match(token.COLON) {
				val, err := p.ParseExpression()
				if err != nil {
					return nil, err
				}
				out.Props = append(out.Props, ast.Property{Key: key, Value: val})
			} else {
				out.Props = append(out.Props, ast.Property{Key: key, Shorthand: true})
			}
		}
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return out, nil
}
