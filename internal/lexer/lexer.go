// Package lexer drives a multi-pattern DFA one byte at a time and decides
// where lexemes end.
//
// A Lexer keeps no scanning position. Callers hold the current StateID and
// pass it back on every call, so one Lexer can serve any number of
// concurrent scans.
package lexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"grammarlex/internal/lexerspec"
	"grammarlex/internal/regexlib"
	"grammarlex/internal/vobset"
)

var ErrSetSize = errors.New("allowed-set cache size does not match lexeme count")

type Lexer struct {
	dfa    *regexlib.RegexVec
	spec   lexerspec.Spec
	vobset *vobset.VobSet
	logger *slog.Logger
}

// New compiles every lexeme of spec into one automaton and gives the Lexer
// a fresh allowed-set cache.
func New(spec *lexerspec.Spec, opts Options) (*Lexer, error) {
	vs := vobset.New(spec.Len())
	lx, err := build(spec, opts, vs)
	if err != nil {
		vs.Release()
		return nil, err
	}
	return lx, nil
}

// NewShared is New with an existing cache, typically one obtained from
// another Lexer over the same lexeme list. The Lexer holds its own
// reference to vs until Close.
func NewShared(spec *lexerspec.Spec, opts Options, vs *vobset.VobSet) (*Lexer, error) {
	if vs.Size() != spec.Len() {
		return nil, fmt.Errorf("cache for %d lexemes, spec has %d: %w", vs.Size(), spec.Len(), ErrSetSize)
	}
	vs.Acquire()
	lx, err := build(spec, opts, vs)
	if err != nil {
		vs.Release()
		return nil, err
	}
	return lx, nil
}

func build(spec *lexerspec.Spec, opts Options, vs *vobset.VobSet) (*Lexer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	eng := opts.Engine
	eng.Sets = vs
	dfa, err := regexlib.CompileVec(spec.Patterns(), eng)
	if err != nil {
		return nil, fmt.Errorf("compile lexer: %w", err)
	}

	own := lexerspec.Spec{
		Lexemes: append([]lexerspec.Lexeme(nil), spec.Lexemes...),
		Greedy:  spec.Greedy,
	}
	logger.Debug("lexer compiled", "lexemes", own.Len(), "greedy", own.Greedy)
	for i, l := range own.Lexemes {
		logger.Debug("  pattern", "idx", i, "name", l.Name, "rx", l.Rx, "stop", l.Stop)
	}

	return &Lexer{
		dfa:    dfa,
		spec:   own,
		vobset: vs,
		logger: logger,
	}, nil
}

// Close releases the Lexer's reference to its allowed-set cache.
func (lx *Lexer) Close() {
	lx.vobset.Release()
}

// VobSet is the allowed-set cache indexed like this Lexer's lexemes.
func (lx *Lexer) VobSet() *vobset.VobSet { return lx.vobset }

func (lx *Lexer) Spec() *lexerspec.Spec { return &lx.spec }

// Engine exposes the compiled automaton for diagnostics.
func (lx *Lexer) Engine() *regexlib.RegexVec { return lx.dfa }

func (lx *Lexer) DeadState() regexlib.StateID { return regexlib.Dead }

func (lx *Lexer) IsDead(s regexlib.StateID) bool { return s == regexlib.Dead }

// StartState returns the state a new scan begins in, restricted to the
// allowed lexemes. A valid first byte is consumed immediately.
func (lx *Lexer) StartState(allowed vobset.AllowedSet, first OptByte) regexlib.StateID {
	s := lx.dfa.InitialState(allowed)
	if first.Valid {
		s = lx.dfa.Transition(s, first.B)
	}
	return s
}

// PossibleHiddenLen bounds how many of the bytes consumed so far may still
// turn out to be hidden.
func (lx *Lexer) PossibleHiddenLen(s regexlib.StateID) int {
	return lx.dfa.PossibleLookaheadLen(s)
}

// AllowsEOS reports whether input may end at state with one of the
// allowedEOS lexemes completing there.
func (lx *Lexer) AllowsEOS(state regexlib.StateID, allowedEOS vobset.AllowedSet) bool {
	if allowedEOS.IsZero() {
		return false
	}
	eos := lx.dfa.StateDesc(state).EOSAccepting
	return !eos.AndIsZero(allowedEOS)
}

// ForceLexemeEnd ends the scan at prev without another byte, picking the
// highest-priority lexeme that is still possible there. It panics if no
// lexeme is possible; callers must only use it when one is.
func (lx *Lexer) ForceLexemeEnd(prev regexlib.StateID) Result {
	info := lx.dfa.StateDesc(prev)
	idx, ok := info.Possible.FirstBitSet()
	if !ok {
		panic(fmt.Sprintf("lexer: ForceLexemeEnd at %v: no possible lexemes", prev))
	}
	return lexemeResult(PreLexeme{
		Idx:       lexerspec.LexemeIdx(idx),
		Byte:      NoByte,
		HiddenLen: 0,
	})
}

// Advance consumes one byte.
//
// In greedy mode a lexeme is reported only once b kills the scan: the
// previous state, if accepting, held the longest match and b belongs to
// the next lexeme. In lazy mode the first accepting state ends the lexeme
// and b is part of it; a dead transition is always an error. Ties go to
// the lowest lexeme index.
func (lx *Lexer) Advance(prev regexlib.StateID, b byte, enableLogging bool) Result {
	state := lx.dfa.Transition(prev, b)

	if enableLogging && lx.logger.Enabled(context.Background(), slog.LevelDebug) {
		info := lx.dfa.StateDesc(state)
		lx.logger.Debug("lex",
			"prev", prev,
			"byte", fmt.Sprintf("%q", b),
			"next", state,
			"accepting", info.LowestAccepting,
		)
	}

	if state == regexlib.Dead {
		if !lx.spec.Greedy {
			return Result{Kind: KindError}
		}
		info := lx.dfa.StateDesc(prev)
		if !info.IsAccepting() {
			return Result{Kind: KindError}
		}
		return lexemeResult(PreLexeme{
			Idx:       lexerspec.LexemeIdx(info.LowestAccepting),
			Byte:      SomeByte(b),
			HiddenLen: info.AcceptingHidden,
		})
	}

	if !lx.spec.Greedy {
		info := lx.dfa.StateDesc(state)
		if info.IsAccepting() {
			return lexemeResult(PreLexeme{
				Idx:       lexerspec.LexemeIdx(info.LowestAccepting),
				Byte:      SomeByte(b),
				HiddenLen: info.AcceptingHidden,
			})
		}
	}
	return stateResult(state, b)
}
