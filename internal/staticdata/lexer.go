package staticdata

import (
	"fmt"
	"strings"
)

type tokKind int

const (
	tEOF tokKind = iota
	tNEWLINE
	tIDENT
	tSTRING
	tNUMBER
	tTRUE
	tFALSE
	tSECRET
	tEQ
	tDOT
	tCOMMA
	tLBRACE
	tRBRACE
	tLBRACKET
	tRBRACKET
	tBACKTICK_CONTENT
)

type tok struct {
	kind tokKind
	text string
	line int
}

// ParseError is a staticdata-grammar failure.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string { return fmt.Sprintf("ParseError at line %d: %s", e.Line, e.Msg) }

func lex(src string) ([]tok, error) {
	runes := []rune(src)
	pos := 0
	line := 1
	var toks []tok
	atEnd := func() bool { return pos >= len(runes) }
	peek := func() rune {
		if atEnd() {
			return 0
		}
		return runes[pos]
	}
	peekAt := func(n int) rune {
		if pos+n >= len(runes) {
			return 0
		}
		return runes[pos+n]
	}
	advance := func() rune {
		r := runes[pos]
		pos++
		if r == '\n' {
			line++
		}
		return r
	}

	isDigit := func(r rune) bool { return r >= '0' && r <= '9' }
	isAlpha := func(r rune) bool {
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}
	isAlnum := func(r rune) bool { return isAlpha(r) || isDigit(r) }

	for !atEnd() {
		r := peek()
		switch {
		case r == ' ' || r == '\t' || r == '\r':
			advance()
		case r == '\n':
			startLine := line
			advance()
			toks = append(toks, tok{tNEWLINE, "\n", startLine})
		case r == '/' && peekAt(1) == '/':
			for !atEnd() && peek() != '\n' {
				advance()
			}
		case r == ',':
			startLine := line
			advance()
			toks = append(toks, tok{tCOMMA, ",", startLine})
		case r == '=':
			startLine := line
			advance()
			toks = append(toks, tok{tEQ, "=", startLine})
		case r == '.':
			startLine := line
			advance()
			toks = append(toks, tok{tDOT, ".", startLine})
		case r == '{':
			startLine := line
			advance()
			toks = append(toks, tok{tLBRACE, "{", startLine})
		case r == '}':
			startLine := line
			advance()
			toks = append(toks, tok{tRBRACE, "}", startLine})
		case r == '[':
			startLine := line
			advance()
			toks = append(toks, tok{tLBRACKET, "[", startLine})
		case r == ']':
			startLine := line
			advance()
			toks = append(toks, tok{tRBRACKET, "]", startLine})
		case r == '"' || r == '\'':
			startLine := line
			quote := advance()
			var b strings.Builder
			for {
				if atEnd() {
					return nil, &ParseError{startLine, "unterminated string literal"}
				}
				c := peek()
				if c == quote {
					advance()
					break
				}
				if c == '\\' {
					advance()
					if atEnd() {
						return nil, &ParseError{startLine, "unterminated string literal"}
					}
					esc := advance()
					switch esc {
					case 'n':
						b.WriteRune('\n')
					case 't':
						b.WriteRune('\t')
					default:
						b.WriteRune(esc)
					}
					continue
				}
				b.WriteRune(advance())
			}
			toks = append(toks, tok{tSTRING, b.String(), startLine})
		case r == '`':
			startLine := line
			advance()
			var b strings.Builder
			for {
				if atEnd() {
					return nil, &ParseError{startLine, "unterminated enum shorthand block"}
				}
				if peek() == '`' {
					advance()
					break
				}
				b.WriteRune(advance())
			}
			toks = append(toks, tok{tBACKTICK_CONTENT, strings.TrimSpace(b.String()), startLine})
		case isDigit(r):
			startLine := line
			var b strings.Builder
			for isDigit(peek()) {
				b.WriteRune(advance())
			}
			if peek() == '.' && isDigit(peekAt(1)) {
				b.WriteRune(advance())
				for isDigit(peek()) {
					b.WriteRune(advance())
				}
			}
			toks = append(toks, tok{tNUMBER, b.String(), startLine})
		case isAlpha(r):
			startLine := line
			var b strings.Builder
			for isAlnum(peek()) {
				b.WriteRune(advance())
			}
			name := b.String()
			switch name {
			case "true":
				toks = append(toks, tok{tTRUE, name, startLine})
			case "false":
				toks = append(toks, tok{tFALSE, name, startLine})
			case "secret":
				toks = append(toks, tok{tSECRET, name, startLine})
			default:
				toks = append(toks, tok{tIDENT, name, startLine})
			}
		default:
			return nil, &ParseError{line, fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, tok{tEOF, "", line})
	return toks, nil
}
