package regexlib

import (
	"strconv"
	"unicode/utf8"
)

type tokenType int

const (
	tEOF      tokenType = iota
	tIllegal            // msg holds the reason
	tChar               // literal rune
	tByte               // raw byte
	tClass              // \d \w \s and their negations
	tDot                // .
	tLParen             // (
	tRParen             // )
	tStar               // *
	tPlus               // +
	tQMark              // ?
	tUnion              // |
	tLBracket           // [
	tRBracket           // ]
	tDash               // -
	tLBrace             // {
	tRBrace             // }
	tComma              // ,
	tAnchor             // ^ $
)

type token struct {
	typ    tokenType
	ch     rune        // the rune itself, set for every single-rune token
	b      byte        // for tByte
	ranges []runeRange // for tClass
	neg    bool        // for tClass
	pos    int
	msg    string // for tIllegal
}

type lexer struct {
	input string
	pos   int
}

func newLexer(s string) *lexer { return &lexer{input: s} }

func (l *lexer) next() token {
	start := l.pos
	if l.pos >= len(l.input) {
		return token{typ: tEOF, pos: start}
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	if r == utf8.RuneError && size == 1 {
		return token{typ: tByte, b: l.input[start], pos: start}
	}
	tok := token{ch: r, pos: start}
	switch r {
	case '(':
		tok.typ = tLParen
	case ')':
		tok.typ = tRParen
	case '*':
		tok.typ = tStar
	case '+':
		tok.typ = tPlus
	case '?':
		tok.typ = tQMark
	case '|':
		tok.typ = tUnion
	case '[':
		tok.typ = tLBracket
	case ']':
		tok.typ = tRBracket
	case '-':
		tok.typ = tDash
	case '{':
		tok.typ = tLBrace
	case '}':
		tok.typ = tRBrace
	case ',':
		tok.typ = tComma
	case '.':
		tok.typ = tDot
	case '^', '$':
		tok.typ = tAnchor
	case '\\':
		return l.escape(start)
	default:
		tok.typ = tChar
	}
	return tok
}

func (l *lexer) illegal(pos int, msg string) token {
	return token{typ: tIllegal, pos: pos, msg: msg}
}

func (l *lexer) escape(start int) token {
	if l.pos >= len(l.input) {
		return l.illegal(start, "trailing backslash")
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	lit := func(c rune) token { return token{typ: tChar, ch: c, pos: start} }
	class := func(rs []runeRange, neg bool) token {
		return token{typ: tClass, ranges: rs, neg: neg, pos: start}
	}
	switch r {
	case 'n':
		return lit('\n')
	case 'r':
		return lit('\r')
	case 't':
		return lit('\t')
	case 'f':
		return lit('\f')
	case 'v':
		return lit('\v')
	case '0':
		return lit(0)
	case 'd':
		return class(digitRanges, false)
	case 'D':
		return class(digitRanges, true)
	case 'w':
		return class(wordRanges, false)
	case 'W':
		return class(wordRanges, true)
	case 's':
		return class(spaceRanges, false)
	case 'S':
		return class(spaceRanges, true)
	case 'x':
		if l.pos+2 > len(l.input) {
			return l.illegal(start, "short \\x escape")
		}
		v, err := strconv.ParseUint(l.input[l.pos:l.pos+2], 16, 8)
		if err != nil {
			return l.illegal(start, "bad \\x escape")
		}
		l.pos += 2
		if v >= utf8.RuneSelf {
			return token{typ: tByte, b: byte(v), pos: start}
		}
		return lit(rune(v))
	case 'u':
		return l.unicodeEscape(start)
	case 'b', 'B', 'A', 'z', 'Z':
		return l.illegal(start, "anchors are not supported")
	}
	if r >= '1' && r <= '9' {
		return l.illegal(start, "backreferences are not supported")
	}
	if r < utf8.RuneSelf && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
		return l.illegal(start, "unknown escape \\"+string(r))
	}
	return lit(r)
}

// \u{1F600} or \u00e9
func (l *lexer) unicodeEscape(start int) token {
	var digits string
	if l.pos < len(l.input) && l.input[l.pos] == '{' {
		end := l.pos + 1
		for end < len(l.input) && l.input[end] != '}' {
			end++
		}
		if end >= len(l.input) {
			return l.illegal(start, "unterminated \\u{")
		}
		digits = l.input[l.pos+1 : end]
		l.pos = end + 1
	} else {
		if l.pos+4 > len(l.input) {
			return l.illegal(start, "short \\u escape")
		}
		digits = l.input[l.pos : l.pos+4]
		l.pos += 4
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil || v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
		return l.illegal(start, "bad \\u escape")
	}
	return token{typ: tChar, ch: rune(v), pos: start}
}
