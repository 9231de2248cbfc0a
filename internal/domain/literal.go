package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseLiteral parses the domain-literal notation used in ERP code and
// documentation: `[('name', 'ilike', 'acme'), ('active', '=', True)]`.
// Tuples and lists are interchangeable; True, False and None are the boolean
// and null literals.
func ParseLiteral(input string) (Domain, error) {
	p := &literalParser{src: input}
	p.next()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s after the domain", p.tok.describe())
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, validationError(input, "domain must be a list")
	}
	return fromList(items)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokComma
	tokString
	tokNumber
	tokIdent
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

type literalParser struct {
	src string
	pos int
	tok token
	err error
}

func (p *literalParser) errorf(format string, args ...interface{}) error {
	return validationError(snippet(p.src, p.tok.pos), fmt.Sprintf(format, args...))
}

func (p *literalParser) next() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.src[p.pos]
	switch {
	case c == '[':
		p.pos++
		p.tok = token{kind: tokLBracket, text: "[", pos: start}
	case c == ']':
		p.pos++
		p.tok = token{kind: tokRBracket, text: "]", pos: start}
	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case c == ',':
		p.pos++
		p.tok = token{kind: tokComma, text: ",", pos: start}
	case c == '\'' || c == '"':
		p.lexString(c)
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		p.lexNumber()
	case c == '_' || unicode.IsLetter(rune(c)):
		for p.pos < len(p.src) && (p.src[p.pos] == '_' || unicode.IsLetter(rune(p.src[p.pos])) || unicode.IsDigit(rune(p.src[p.pos]))) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.pos], pos: start}
	default:
		p.pos++
		p.tok = token{kind: tokInvalid, text: string(c), pos: start}
	}
}

func (p *literalParser) lexString(quote byte) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			p.tok = token{kind: tokString, text: b.String(), pos: start}
			return
		case c == '\\' && p.pos+1 < len(p.src):
			p.pos++
			switch esc := p.src[p.pos]; esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(esc)
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.tok = token{kind: tokInvalid, text: p.src[start:], pos: start}
	p.err = validationError(snippet(p.src, start), "unterminated string")
}

func (p *literalParser) lexNumber() {
	start := p.pos
	if p.src[p.pos] == '-' || p.src[p.pos] == '+' {
		p.pos++
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '_' {
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}
	p.tok = token{kind: tokNumber, text: p.src[start:p.pos], pos: start}
}

func (p *literalParser) parseValue() (interface{}, error) {
	if p.err != nil {
		return nil, p.err
	}

	tok := p.tok
	switch tok.kind {
	case tokLBracket:
		return p.parseSequence(tokRBracket)
	case tokLParen:
		return p.parseSequence(tokRParen)
	case tokString:
		p.next()
		return tok.text, nil
	case tokNumber:
		p.next()
		return parseNumber(p, tok)
	case tokIdent:
		p.next()
		switch tok.text {
		case "True", "true":
			return true, nil
		case "False", "false":
			return false, nil
		case "None", "null":
			return nil, nil
		}
		return nil, validationError(snippet(p.src, tok.pos), fmt.Sprintf("unexpected identifier %q", tok.text))
	case tokEOF:
		return nil, p.errorf("unexpected end of input")
	default:
		return nil, p.errorf("unexpected %s", tok.describe())
	}
}

func (p *literalParser) parseSequence(closing tokenKind) (interface{}, error) {
	p.next()
	items := []interface{}{}
	for {
		if p.err != nil {
			return nil, p.err
		}
		if p.tok.kind == closing {
			p.next()
			return items, nil
		}

		item, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		switch p.tok.kind {
		case tokComma:
			p.next()
		case closing:
		default:
			if p.err != nil {
				return nil, p.err
			}
			return nil, p.errorf("expected ',' or closing bracket, found %s", p.tok.describe())
		}
	}
}

func parseNumber(p *literalParser, tok token) (interface{}, error) {
	text := strings.ReplaceAll(tok.text, "_", "")
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, validationError(snippet(p.src, tok.pos), fmt.Sprintf("invalid number %q", tok.text))
	}
	return normalizeFloat(f), nil
}

// snippet returns the input around pos so error messages can point at the
// offending fragment.
func snippet(src string, pos int) string {
	const radius = 12
	if pos < 0 {
		pos = 0
	}
	if pos > len(src) {
		pos = len(src)
	}
	start := pos - radius
	if start < 0 {
		start = 0
	}
	end := pos + radius
	if end > len(src) {
		end = len(src)
	}
	return src[start:end]
}
