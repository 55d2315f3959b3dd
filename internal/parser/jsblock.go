package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/oxhq/kimchilang/internal/ast"
	"github.com/oxhq/kimchilang/internal/jscheck"
	"github.com/oxhq/kimchilang/internal/scanner"
	"github.com/oxhq/kimchilang/internal/token"
)

// parseJSBlock reads `js(inputs) { ... }`. The body is ordinary Kimchi
// tokens (the scanner does not raw-capture js blocks the way it does shell
// blocks), so the parser reassembles source text from the token span itself
// rather than reparsing it as Kimchi.
func (p *Parser) parseJSBlock(asExpr bool) (*ast.JSBlock, error) {
	jsTok := p.advance()
	pos := ast.Pos{Line: jsTok.Line, Col: jsTok.Column}

	inputs, err := p.parseBlockInputList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var body []token.Token
	depth := 1
	for {
		if p.atEnd() {
			return nil, &ParseError{jsTok.Line, jsTok.Column, "unterminated js block"}
		}
		t := p.cur()
		if t.Kind == token.LBRACE {
			depth++
		} else if t.Kind == token.RBRACE {
			depth--
			if depth == 0 {
				p.advance()
				break
			}
		}
		body = append(body, p.advance())
	}

	raw := reconstructJS(body)
	if err := p.checkSecretLeak(inputs, raw, jsTok); err != nil {
		return nil, err
	}
	if d := jscheck.Validate(raw); d != nil {
		return nil, &ParseError{jsTok.Line, jsTok.Column, "js block reassembly: " + d.Message}
	}
	return &ast.JSBlock{Pos: pos, Inputs: inputs, Raw: raw, AsExpression: asExpr}, nil
}

// parseShellBlock reads `shell(inputs) { ... }`, whose body the scanner has
// already captured verbatim as a single SHELL_CONTENT token.
func (p *Parser) parseShellBlock(asExpr bool) (*ast.ShellBlock, error) {
	shellTok := p.advance()
	pos := ast.Pos{Line: shellTok.Line, Col: shellTok.Column}

	inputs, err := p.parseBlockInputList()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	contentTok, err := p.expect(token.SHELL_CONTENT, "shell block body")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}

	raw := contentTok.Lexeme
	if err := p.checkSecretLeak(inputs, raw, shellTok); err != nil {
		return nil, err
	}
	return &ast.ShellBlock{Pos: pos, Inputs: inputs, Raw: raw, AsExpression: asExpr}, nil
}

func (p *Parser) parseBlockInputList() ([]string, error) {
	if !p.match(token.LPAREN) {
		return nil, nil
	}
	var inputs []string
	for !p.check(token.RPAREN) {
		nameTok, err := p.expect(token.IDENT, "identifier")
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, nameTok.Lexeme)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return inputs, nil
}

// checkSecretLeak implements spec.md §3/§8's secret-taint rule: a js/shell
// block may not pass a secret-tagged input to a console logging call.
func (p *Parser) checkSecretLeak(inputs []string, raw string, blockTok token.Token) error {
	for _, name := range inputs {
		if !p.isSecret(name) {
			continue
		}
		re := regexp.MustCompile(`console\s*\.\s*\w+\s*\([^)]*\b` + regexp.QuoteMeta(name) + `\b`)
		if re.MatchString(raw) {
			return &ParseError{blockTok.Line, blockTok.Column,
				"block leaks secret input '" + name + "' to console"}
		}
	}
	return nil
}

// reconstructJS renders a token span back to JS source text. Fidelity to
// the original whitespace doesn't matter (the result is only ever handed to
// a grammar sanity check and emitted verbatim inside an IIFE); correct
// string/template requoting does.
func reconstructJS(toks []token.Token) string {
	toks = mergeStrictEquality(toks)
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpaceBetween(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(jsTokenText(t))
	}
	return b.String()
}

// mergeStrictEquality collapses the scanner's `==`+`=` and `!=`+`=` token
// pairs back into single `===`/`!==` tokens. The scanner has no strict
// equality token of its own: `a === b` scans as EQEQ("==") immediately
// followed by EQ("="), same for `!==` as NOTEQ("!=") followed by EQ("=").
// Left unmerged, reconstruction would insert a space between them and emit
// broken JS like `a == = b`.
func mergeStrictEquality(toks []token.Token) []token.Token {
	merged := make([]token.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if (t.Kind == token.EQEQ || t.Kind == token.NOTEQ) && i+1 < len(toks) {
			next := toks[i+1]
			if next.Kind == token.EQ && next.Line == t.Line && next.Column == t.Column+len(t.Lexeme) {
				t.Lexeme += next.Lexeme
				merged = append(merged, t)
				i++
				continue
			}
		}
		merged = append(merged, t)
	}
	return merged
}

func jsTokenText(t token.Token) string {
	switch t.Kind {
	case token.STRING:
		s, _ := t.Value.(string)
		return strconv.Quote(s)
	case token.TEMPLATE_STRING:
		s, _ := t.Value.(string)
		s = strings.ReplaceAll(s, string(rune(scanner.MarkOpen)), "${")
		s = strings.ReplaceAll(s, string(rune(scanner.MarkClose)), "}")
		return "`" + s + "`"
	default:
		return t.Lexeme
	}
}

func needsSpaceBetween(prev, next token.Token) bool {
	noSpaceBefore := map[token.Kind]bool{
		token.COMMA: true, token.SEMI: true, token.RPAREN: true,
		token.RBRACKET: true, token.DOT: true,
	}
	noSpaceAfter := map[token.Kind]bool{
		token.LPAREN: true, token.LBRACKET: true, token.DOT: true,
	}
	if noSpaceBefore[next.Kind] || noSpaceAfter[prev.Kind] {
		return false
	}
	return true
}
