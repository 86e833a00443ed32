// Package scan splits a byte stream into tokens with a lexer.Lexer, acting
// as the parser that drives it: it feeds bytes, commits lexemes, replays
// hidden bytes and settles the last lexeme at end of input.
package scan

import (
	"log/slog"
	"slices"

	"grammarlex/internal/lexer"
	"grammarlex/internal/lexerspec"
	"grammarlex/internal/regexlib"
	"grammarlex/internal/vobset"
)

// Token is one committed lexeme.
type Token struct {
	Idx    lexerspec.LexemeIdx
	Name   string
	Text   string
	Offset int
	// Hidden is the number of bytes after Text that were consumed while
	// matching and then handed to the next scan.
	Hidden int
}

type Options struct {
	// Allowed picks the lexemes the next scan may produce, given the tokens
	// committed so far. If nil, every lexeme is allowed.
	Allowed func(prev []Token) vobset.AllowedSet

	// Logger receives committed tokens at debug level. If nil,
	// slog.Default() is used.
	Logger *slog.Logger

	// Trace enables per-byte transition logging in the lexer.
	Trace bool
}

// Scanner is an io.WriteCloser. It is not safe for concurrent use; run one
// Scanner per input over a shared Lexer instead.
type Scanner struct {
	lx     *lexer.Lexer
	opts   Options
	logger *slog.Logger

	state   regexlib.StateID
	pending []byte
	start   int
	tokens  []Token

	err    error
	closed bool
}

func New(lx *lexer.Lexer, opts Options) *Scanner {
	if opts.Allowed == nil {
		all := lx.VobSet().All()
		opts.Allowed = func([]Token) vobset.AllowedSet { return all }
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scanner{lx: lx, opts: opts, logger: logger}
	s.restart()
	return s
}

func (s *Scanner) allowed() vobset.AllowedSet {
	return s.lx.VobSet().Intern(s.opts.Allowed(s.tokens))
}

func (s *Scanner) restart() {
	s.state = s.lx.StartState(s.allowed(), lexer.NoByte)
	s.pending = s.pending[:0]
}

// Write feeds p to the lexer. After an error the Scanner is stuck and
// returns the same error from every later call.
func (s *Scanner) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.closed {
		return 0, ErrClosed
	}
	for i, b := range p {
		if err := s.step(b); err != nil {
			s.err = err
			return i, err
		}
	}
	return len(p), nil
}

func (s *Scanner) step(b byte) error {
	r := s.lx.Advance(s.state, b, s.opts.Trace)
	switch r.Kind {
	case lexer.KindState:
		s.state = r.State
		s.pending = append(s.pending, b)
		return nil
	case lexer.KindLexeme:
		return s.commit(r.Lexeme)
	default:
		return &Error{Offset: s.start + len(s.pending), Byte: b, Reason: ErrNoMatch}
	}
}

// commit turns the pending bytes into a token and replays whatever the
// lexeme did not keep into a fresh scan.
func (s *Scanner) commit(pl lexer.PreLexeme) error {
	greedy := s.lx.Spec().Greedy
	all := s.pending
	if pl.Byte.Valid && !greedy {
		all = append(all, pl.Byte.B)
	}
	hidden := min(pl.HiddenLen, len(all))
	text := all[:len(all)-hidden]
	replay := slices.Clone(all[len(all)-hidden:])
	if pl.Byte.Valid && greedy {
		replay = append(replay, pl.Byte.B)
	}

	if len(text) == 0 && len(s.tokens) > 0 {
		if last := s.tokens[len(s.tokens)-1]; last.Text == "" && last.Offset == s.start {
			var b byte
			if len(replay) > 0 {
				b = replay[0]
			}
			return &Error{Offset: s.start, Byte: b, Reason: ErrNoProgress}
		}
	}

	tok := Token{
		Idx:    pl.Idx,
		Name:   s.lx.Spec().Name(pl.Idx),
		Text:   string(text),
		Offset: s.start,
		Hidden: hidden,
	}
	s.tokens = append(s.tokens, tok)
	s.logger.Debug("token", "name", tok.Name, "text", tok.Text, "offset", tok.Offset, "hidden", tok.Hidden)

	s.start += len(text)
	s.restart()
	for _, b := range replay {
		if err := s.step(b); err != nil {
			return err
		}
	}
	return nil
}

// Close ends the input. Pending bytes must form a lexeme that is allowed
// to end the stream; the lowest such lexeme index is committed.
func (s *Scanner) Close() error {
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return nil
	}
	s.closed = true
	if len(s.pending) == 0 {
		return nil
	}

	vs := s.lx.VobSet()
	for _, idx := range s.allowed().Indices() {
		one := vs.Singleton(idx)
		if !s.lx.AllowsEOS(s.state, one) {
			continue
		}
		st, ok := s.rerun(one)
		if !ok {
			continue
		}
		r := s.lx.ForceLexemeEnd(st)
		if err := s.commit(r.Lexeme); err != nil {
			s.err = err
			return err
		}
		return nil
	}
	s.err = &Error{Offset: s.start + len(s.pending), Reason: ErrUnexpectedEOF}
	return s.err
}

// rerun scans the pending bytes again from a start state limited to allowed.
func (s *Scanner) rerun(allowed vobset.AllowedSet) (regexlib.StateID, bool) {
	st := s.lx.StartState(allowed, lexer.NoByte)
	for _, b := range s.pending {
		r := s.lx.Advance(st, b, s.opts.Trace)
		if !r.IsState() {
			return st, false
		}
		st = r.State
	}
	return st, true
}

// Tokens returns the tokens committed so far. The slice is owned by the
// Scanner.
func (s *Scanner) Tokens() []Token { return s.tokens }

// Tokenize scans all of input with every lexeme allowed.
func Tokenize(lx *lexer.Lexer, input []byte) ([]Token, error) {
	s := New(lx, Options{})
	if _, err := s.Write(input); err != nil {
		return s.Tokens(), err
	}
	if err := s.Close(); err != nil {
		return s.Tokens(), err
	}
	return s.Tokens(), nil
}
