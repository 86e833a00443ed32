package regexlib

import (
	"strconv"
)

// maxRepeat bounds {m,n} counts.
const maxRepeat = 1000

type parser struct {
	src  string
	lex  *lexer
	look token
	err  *SyntaxError
}

func newParser(pat string) *parser {
	p := &parser{src: pat, lex: newLexer(pat)}
	p.scan()
	return p
}

func (p *parser) scan() { p.look = p.lex.next() }

func (p *parser) fail(pos int, msg string) *SyntaxError {
	if p.err == nil {
		p.err = &SyntaxError{Pattern: p.src, Offset: pos, Msg: msg}
	}
	return p.err
}

// parse runs the Pratt parser over the whole pattern.
func parse(pattern string) (*astNode, error) {
	p := newParser(pattern)
	n, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	switch p.look.typ {
	case tEOF:
		return n, nil
	case tRParen:
		return nil, p.fail(p.look.pos, "unexpected )")
	default:
		return nil, p.fail(p.look.pos, "unexpected token")
	}
}

func precedence(t tokenType) int {
	switch t {
	case tUnion:
		return 1
	case tChar, tByte, tClass, tDot, tLParen, tLBracket,
		tDash, tComma, tRBrace, tRBracket, tAnchor, tIllegal:
		return 2 // implicit concatenation
	case tStar, tPlus, tQMark, tLBrace:
		return 3
	default:
		return 0
	}
}

func (p *parser) parseExpr(minPrec int) (*astNode, error) {
	// ---------- prefix ----------
	var left *astNode
	switch p.look.typ {
	case tChar, tDash, tComma, tRBrace, tRBracket:
		left = charNode(p.look.ch)
		p.scan()
	case tByte:
		left = &astNode{typ: nByte, b: p.look.b}
		p.scan()
	case tClass:
		left = classNode(p.look.ranges, p.look.neg)
		p.scan()
	case tDot:
		left = anyNode()
		p.scan()
	case tLParen:
		open := p.look.pos
		p.scan()
		if p.look.typ == tQMark {
			// only the non-capturing form (?:...) is accepted
			p.scan()
			if p.look.typ != tChar || p.look.ch != ':' {
				return nil, p.fail(open, "unsupported group flag")
			}
			p.scan()
		}
		inner, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if p.look.typ != tRParen {
			return nil, p.fail(open, "missing )")
		}
		left = &astNode{typ: nGroup, left: inner}
		p.scan()
	case tLBracket:
		open := p.look.pos
		p.scan()
		set, err := p.parseCharClass(open)
		if err != nil {
			return nil, err
		}
		left = set
	case tUnion, tRParen, tEOF:
		// empty alternative: "a|", "()", "|a"
		left = &astNode{typ: nEmpty}
	case tStar, tPlus, tQMark, tLBrace:
		return nil, p.fail(p.look.pos, "missing argument to repetition operator")
	case tAnchor:
		return nil, p.fail(p.look.pos, "anchors are not supported")
	case tIllegal:
		return nil, p.fail(p.look.pos, p.look.msg)
	default:
		return nil, p.fail(p.look.pos, "unexpected token")
	}

	// ---------- suffixes (* + ? {m,n}) ----------
	for {
		switch p.look.typ {
		case tStar:
			left = &astNode{typ: nStar, left: left}
			p.scan()
		case tPlus:
			left = &astNode{typ: nPlus, left: left}
			p.scan()
		case tQMark:
			left = &astNode{typ: nQMark, left: left}
			p.scan()
		case tLBrace:
			min, max, err := p.parseRepeat()
			if err != nil {
				return nil, err
			}
			left = &astNode{typ: nRepeat, left: left, min: min, max: max}
		default:
			goto noPostfix
		}
	}
noPostfix:

	// ---------- infixes (concatenation, |) ----------
	for precedence(p.look.typ) >= minPrec {
		union := p.look.typ == tUnion
		prec := 2
		if union {
			prec = 1
			p.scan()
		}
		// concatenation does not consume: the current token starts the RHS
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		if union {
			left = &astNode{typ: nUnion, left: left, right: right}
		} else {
			left = &astNode{typ: nConcat, left: left, right: right}
		}
	}

	return left, nil
}

/* ----------------------- helper parsers ----------------------- */

func (p *parser) parseCharClass(open int) (*astNode, error) {
	negate := false
	var set []runeRange

	if p.look.typ == tAnchor && p.look.ch == '^' {
		negate = true
		p.scan()
	}
	// a leading ']' is a literal
	first := true

	for (p.look.typ != tRBracket || first) && p.look.typ != tEOF {
		first = false
		switch p.look.typ {
		case tIllegal:
			return nil, p.fail(p.look.pos, p.look.msg)
		case tByte:
			return nil, p.fail(p.look.pos, "raw bytes are not allowed in a class")
		case tClass:
			rs := p.look.ranges
			if p.look.neg {
				rs = negateRanges(normalizeRanges(rs))
			}
			set = append(set, rs...)
			p.scan()
			continue
		}
		start := p.look.ch
		p.scan()

		if p.look.typ == tDash {
			dash := p.look
			p.scan()
			if p.look.typ == tRBracket {
				// trailing '-' is literal: [a-]
				set = append(set, runeRange{start, start}, runeRange{'-', '-'})
				continue
			}
			if p.look.typ == tClass || p.look.typ == tByte || p.look.typ == tIllegal || p.look.typ == tEOF {
				return nil, p.fail(dash.pos, "bad character class range")
			}
			end := p.look.ch
			p.scan()
			if end < start {
				return nil, p.fail(dash.pos, "invalid character class range")
			}
			set = append(set, runeRange{start, end})
		} else {
			set = append(set, runeRange{start, start})
		}
	}

	if p.look.typ != tRBracket {
		return nil, p.fail(open, "missing ]")
	}
	p.scan() // ']'

	return classNode(set, negate), nil
}

func (p *parser) parseRepeat() (int, int, error) {
	open := p.look.pos
	p.scan() // '{'
	readNum := func() (string, bool) {
		num := ""
		for p.look.typ == tChar && p.look.ch >= '0' && p.look.ch <= '9' {
			num += string(p.look.ch)
			p.scan()
		}
		return num, num != ""
	}
	num, ok := readNum()
	if !ok {
		return 0, 0, p.fail(open, "expected number in repeat")
	}
	min, err := strconv.Atoi(num)
	if err != nil || min > maxRepeat {
		return 0, 0, p.fail(open, "repeat count too large")
	}
	max := min
	if p.look.typ == tComma {
		p.scan()
		if num, ok = readNum(); ok {
			max, err = strconv.Atoi(num)
			if err != nil || max > maxRepeat {
				return 0, 0, p.fail(open, "repeat count too large")
			}
			if max < min {
				return 0, 0, p.fail(open, "invalid repeat count")
			}
		} else {
			max = -1
		}
	}
	if p.look.typ != tRBrace {
		return 0, 0, p.fail(open, "expected }")
	}
	p.scan()
	return min, max, nil
}
