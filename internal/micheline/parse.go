package micheline

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// Parse reads a single Michelson expression (a type or value in its
// text form) such as "(pair (address %admin) (nat %threshold))".
func Parse(src string) (*Node, error) {
	p := &parser{src: src}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("trailing input")
	}
	return n, nil
}

// ParseScript reads a whole Michelson script, a semicolon-separated
// toplevel of parameter, storage, and code sections, and returns it as
// a sequence node in the shape originations expect.
func ParseScript(src string) (*Node, error) {
	p := &parser{src: src}
	var items []*Node
	p.skipSpace()
	for !p.eof() {
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
		p.skipSpace()
		if p.eof() {
			break
		}
		if p.src[p.pos] != ';' {
			return nil, p.errorf("expected ';' between toplevel expressions")
		}
		p.pos++
		p.skipSpace()
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("michelson: empty script")
	}
	return Seq(items...), nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("michelson: offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '#':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// parseExpr reads an expression in application position: a primitive
// with annotations and arguments, or a bare atom.
func (p *parser) parseExpr() (*Node, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}
	if !isWordStart(p.peek()) {
		return p.parseAtom()
	}
	node := &Node{Kind: KindPrim, Prim: p.scanWord()}
	node.Annots = p.scanAnnots()
	for {
		p.skipSpace()
		if p.eof() || !startsAtom(p.peek()) {
			return node, nil
		}
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		node.Args = append(node.Args, arg)
	}
}

// parseArg reads an argument. A bare primitive here takes no
// arguments of its own; applications must be parenthesized.
func (p *parser) parseArg() (*Node, error) {
	p.skipSpace()
	if isWordStart(p.peek()) {
		node := &Node{Kind: KindPrim, Prim: p.scanWord()}
		node.Annots = p.scanAnnots()
		return node, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (*Node, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errorf("expected ')'")
		}
		p.pos++
		return n, nil
	case c == '{':
		return p.parseSeq()
	case c == '"':
		s, err := p.scanString()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case strings.HasPrefix(p.src[p.pos:], "0x"):
		p.pos += 2
		start := p.pos
		for p.pos < len(p.src) && isHexDigit(p.src[p.pos]) {
			p.pos++
		}
		b, err := hex.DecodeString(p.src[start:p.pos])
		if err != nil {
			return nil, p.errorf("invalid byte literal: %v", err)
		}
		return Bytes(b), nil
	case c == '-' || c >= '0' && c <= '9':
		start := p.pos
		if c == '-' {
			p.pos++
		}
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		v, ok := new(big.Int).SetString(p.src[start:p.pos], 10)
		if !ok {
			return nil, p.errorf("invalid integer %q", p.src[start:p.pos])
		}
		return IntBig(v), nil
	default:
		return nil, p.errorf("unexpected character %q", string(c))
	}
}

func (p *parser) parseSeq() (*Node, error) {
	p.pos++ // consume '{'
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return Seq(), nil
	}
	var items []*Node
	for {
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
		p.skipSpace()
		switch p.peek() {
		case ';':
			p.pos++
			p.skipSpace()
			if p.peek() == '}' {
				p.pos++
				return Seq(items...), nil
			}
		case '}':
			p.pos++
			return Seq(items...), nil
		default:
			return nil, p.errorf("expected ';' or '}' in sequence")
		}
	}
}

func (p *parser) scanWord() string {
	start := p.pos
	for p.pos < len(p.src) && isWordChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) scanAnnots() []string {
	var annots []string
	for {
		p.skipSpace()
		if p.eof() {
			return annots
		}
		c := p.peek()
		if c != '%' && c != '@' && c != ':' {
			return annots
		}
		start := p.pos
		p.pos++
		for p.pos < len(p.src) && isAnnotChar(p.src[p.pos]) {
			p.pos++
		}
		annots = append(annots, p.src[start:p.pos])
	}
}

func (p *parser) scanString() (string, error) {
	p.pos++ // consume opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '"':
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.eof() {
				return "", p.errorf("unterminated escape")
			}
			switch p.src[p.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				return "", p.errorf("unsupported escape \\%s", string(p.src[p.pos]))
			}
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func isWordStart(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}

func isWordChar(c byte) bool {
	return isWordStart(c) || c >= '0' && c <= '9'
}

func isAnnotChar(c byte) bool {
	return isWordChar(c) || c == '.' || c == '%' || c == '@'
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func startsAtom(c byte) bool {
	return c == '(' || c == '{' || c == '"' || c == '-' || c >= '0' && c <= '9' ||
		isWordStart(c)
}
