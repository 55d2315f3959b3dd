package parser

import (
	"strings"

	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/scanner"
)

// buildTemplateLiteral splits a TEMPLATE_STRING token's value on the
// scanner's sentinel marks and re-scans/re-parses each interpolation span as
// an independent Kimchi expression (spec.md §4.1/§4.2).
func (p *Parser) buildTemplateLiteral(pos ast.Pos, raw string) (ast.Expr, error) {
	var parts []string
	var exprs []ast.Expr
	var cur strings.Builder

	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		if runes[i] == rune(scanner.MarkOpen) {
			parts = append(parts, cur.String())
			cur.Reset()
			i++
			var exprSrc strings.Builder
			for i < len(runes) && runes[i] != rune(scanner.MarkClose) {
				exprSrc.WriteRune(runes[i])
				i++
			}
			if i >= len(runes) {
				return nil, &ParseError{pos.Line, pos.Col, "unterminated template interpolation"}
			}
			i++ // skip close mark
			expr, err := p.parseSubExpression(exprSrc.String(), pos)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
			continue
		}
		cur.WriteRune(runes[i])
		i++
	}
	parts = append(parts, cur.String())

	return &ast.TemplateLiteral{Pos: pos, Parts: parts, Exprs: exprs}, nil
}

// parseSubExpression parses an interpolation span in a scope that shares the
// enclosing parser's immutability and secret-taint bookkeeping, so a
// template expression referencing a dec-bound or secret name is checked
// exactly as it would be anywhere else.
func (p *Parser) parseSubExpression(src string, outerPos ast.Pos) (ast.Expr, error) {
	toks, err := scanner.Scan(src, scanner.Config{})
	if err != nil {
		return nil, &ParseError{outerPos.Line, outerPos.Col, "invalid template interpolation: " + err.Error()}
	}
	sub := &Parser{toks: toks, immutable: p.immutable, secret: p.secret}
	return sub.ParseExpression()
}
