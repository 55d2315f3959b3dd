package staticdata

type parser struct {
	toks []tok
	pos  int
}

func (p *parser) cur() tok { return p.toks[p.pos] }

func (p *parser) check(k tokKind) bool { return p.cur().kind == k }

func (p *parser) advance() tok {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) match(k tokKind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(k tokKind, what string) (tok, error) {
	if !p.check(k) {
		t := p.cur()
		return t, &ParseError{t.line, "expected " + what}
	}
	return p.advance(), nil
}

// skipSeparators consumes a run of the interchangeable COMMA/NEWLINE
// separators (spec.md §4.3: "commas and newlines both separate elements").
func (p *parser) skipSeparators() {
	for p.check(tCOMMA) || p.check(tNEWLINE) {
		p.advance()
	}
}

// Parse compiles `.static` source text into its tagged tree. The result is
// always a KindObject node whose Keys preserve declaration order.
func Parse(text string, modulePath string) (*Node, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	root := &Node{Kind: KindObject, Props: map[string]*Node{}}
	p.skipSeparators()
	for !p.check(tEOF) {
		secret := p.match(tSECRET)
		nameTok, err := p.expect(tIDENT, "declaration name")
		if err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		val.Secret = val.Secret || secret
		root.Keys = append(root.Keys, nameTok.text)
		root.Props[nameTok.text] = val
		p.skipSeparators()
	}
	return root, nil
}

func (p *parser) parseValue() (*Node, error) {
	switch p.cur().kind {
	case tSTRING:
		t := p.advance()
		return &Node{Kind: KindLiteral, LitType: LitString, Str: t.text}, nil
	case tNUMBER:
		t := p.advance()
		return &Node{Kind: KindLiteral, LitType: LitNumber, Num: t.text}, nil
	case tTRUE:
		p.advance()
		return &Node{Kind: KindLiteral, LitType: LitBool, Bool: true}, nil
	case tFALSE:
		p.advance()
		return &Node{Kind: KindLiteral, LitType: LitBool, Bool: false}, nil
	case tLBRACKET:
		return p.parseArray()
	case tLBRACE:
		return p.parseObject()
	case tBACKTICK_CONTENT:
		return p.parseEnum()
	case tIDENT:
		return p.parseReference()
	default:
		t := p.cur()
		return nil, &ParseError{t.line, "expected a value"}
	}
}

func (p *parser) parseArray() (*Node, error) {
	if _, err := p.expect(tLBRACKET, "'['"); err != nil {
		return nil, err
	}
	out := &Node{Kind: KindArray}
	p.skipSeparators()
	for !p.check(tRBRACKET) {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, v)
		p.skipSeparators()
	}
	if _, err := p.expect(tRBRACKET, "']'"); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) parseObject() (*Node, error) {
	if _, err := p.expect(tLBRACE, "'{'"); err != nil {
		return nil, err
	}
	out := &Node{Kind: KindObject, Props: map[string]*Node{}}
	p.skipSeparators()
	for !p.check(tRBRACE) {
		secret := p.match(tSECRET)
		keyTok, err := p.expect(tIDENT, "property key")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tEQ, "'='"); err != nil {
			return nil, err
		}
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		val.Secret = val.Secret || secret
		out.Keys = append(out.Keys, keyTok.text)
		out.Props[keyTok.text] = val
		p.skipSeparators()
	}
	if _, err := p.expect(tRBRACE, "'}'"); err != nil {
		return nil, err
	}
	return out, nil
}

// parseEnum re-lexes the raw content of a backtick-delimited shorthand block
// as its own `Name = value, …` list.
func (p *parser) parseEnum() (*Node, error) {
	t := p.advance()
	inner, err := lex(t.text)
	if err != nil {
		return nil, err
	}
	ip := &parser{toks: inner}
	out := &Node{Kind: KindEnum}
	ip.skipSeparators()
	for !ip.check(tEOF) {
		nameTok, err := ip.expect(tIDENT, "enum member name")
		if err != nil {
			return nil, err
		}
		if _, err := ip.expect(tEQ, "'='"); err != nil {
			return nil, err
		}
		val, err := ip.parseValue()
		if err != nil {
			return nil, err
		}
		out.Members = append(out.Members, EnumMember{Name: nameTok.text, Value: val})
		ip.skipSeparators()
	}
	return out, nil
}

func (p *parser) parseReference() (*Node, error) {
	firstTok, err := p.expect(tIDENT, "identifier")
	if err != nil {
		return nil, err
	}
	path := []string{firstTok.text}
	for p.match(tDOT) {
		segTok, err := p.expect(tIDENT, "reference path segment")
		if err != nil {
			return nil, err
		}
		path = append(path, segTok.text)
	}
	return &Node{Kind: KindReference, Path: path}, nil
}
