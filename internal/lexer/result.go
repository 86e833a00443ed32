package lexer

import (
	"fmt"

	"grammarlex/internal/lexerspec"
	"grammarlex/internal/regexlib"
)

// OptByte is a byte that may be absent.
type OptByte struct {
	B     byte
	Valid bool
}

// SomeByte wraps b.
func SomeByte(b byte) OptByte { return OptByte{B: b, Valid: true} }

// NoByte is the absent byte.
var NoByte = OptByte{}

func (o OptByte) String() string {
	if !o.Valid {
		return "none"
	}
	return fmt.Sprintf("%q", o.B)
}

// PreLexeme is a lexeme boundary found by the lexer.
type PreLexeme struct {
	Idx lexerspec.LexemeIdx
	// Byte is the byte that triggered the boundary. It is absent only for
	// ForceLexemeEnd.
	Byte OptByte
	// HiddenLen counts trailing consumed bytes that are not part of the
	// lexeme and must be replayed into the next scan.
	HiddenLen int
}

type Kind uint8

const (
	KindError Kind = iota
	KindState
	KindLexeme
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindLexeme:
		return "lexeme"
	default:
		return "error"
	}
}

// Result is the outcome of one lexer step. Lexeme is set for KindLexeme;
// State and Byte for KindState. The zero Result is an error.
type Result struct {
	Kind   Kind
	Lexeme PreLexeme
	State  regexlib.StateID
	Byte   byte
}

func lexemeResult(p PreLexeme) Result { return Result{Kind: KindLexeme, Lexeme: p} }

func stateResult(s regexlib.StateID, b byte) Result {
	return Result{Kind: KindState, State: s, Byte: b}
}

func (r Result) IsError() bool  { return r.Kind == KindError }
func (r Result) IsLexeme() bool { return r.Kind == KindLexeme }
func (r Result) IsState() bool  { return r.Kind == KindState }

func (r Result) String() string {
	switch r.Kind {
	case KindLexeme:
		return fmt.Sprintf("Lexeme{idx:%d byte:%v hidden:%d}", r.Lexeme.Idx, r.Lexeme.Byte, r.Lexeme.HiddenLen)
	case KindState:
		return fmt.Sprintf("State(%v, %q)", r.State, r.Byte)
	default:
		return "Error"
	}
}
