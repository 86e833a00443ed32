// Package lexerspec defines the lexeme list a lexer is compiled from.
package lexerspec

import (
	"errors"
	"fmt"

	"grammarlex/internal/regexlib"
)

var (
	ErrNoLexemes     = errors.New("no lexemes defined")
	ErrDuplicateName = errors.New("duplicate lexeme name")
	ErrEmptyName     = errors.New("empty lexeme name")
)

// LexemeIdx is a position in Spec.Lexemes. Lower indices win ties.
type LexemeIdx int

// Lexeme is one token category.
type Lexeme struct {
	Name string
	Rx   string
	// Stop is a literal that terminates the lexeme without being part of
	// it; the lexer reports its bytes as hidden.
	Stop string
}

type Spec struct {
	Lexemes []Lexeme
	// Greedy selects longest match; otherwise the first accepting
	// position ends the lexeme.
	Greedy bool
}

// New returns an empty greedy Spec.
func New() *Spec { return &Spec{Greedy: true} }

func (s *Spec) add(l Lexeme) LexemeIdx {
	s.Lexemes = append(s.Lexemes, l)
	return LexemeIdx(len(s.Lexemes) - 1)
}

// AddRegex appends a lexeme matching rx.
func (s *Spec) AddRegex(name, rx string) LexemeIdx {
	return s.add(Lexeme{Name: name, Rx: rx})
}

// AddLiteral appends a lexeme matching exactly lit.
func (s *Spec) AddLiteral(name, lit string) LexemeIdx {
	return s.add(Lexeme{Name: name, Rx: regexlib.QuoteRegex(lit)})
}

// AddStop appends a lexeme matching rx and terminated by the literal stop.
func (s *Spec) AddStop(name, rx, stop string) LexemeIdx {
	return s.add(Lexeme{Name: name, Rx: rx, Stop: stop})
}

func (s *Spec) Len() int { return len(s.Lexemes) }

// Lookup finds a lexeme by name.
func (s *Spec) Lookup(name string) (LexemeIdx, bool) {
	for i, l := range s.Lexemes {
		if l.Name == name {
			return LexemeIdx(i), true
		}
	}
	return -1, false
}

// Name returns the name of idx, or "#idx" for unnamed or unknown lexemes.
func (s *Spec) Name(idx LexemeIdx) string {
	if int(idx) >= 0 && int(idx) < len(s.Lexemes) && s.Lexemes[idx].Name != "" {
		return s.Lexemes[idx].Name
	}
	return fmt.Sprintf("#%d", int(idx))
}

// Names lists lexeme names in index order.
func (s *Spec) Names() []string {
	out := make([]string, len(s.Lexemes))
	for i := range s.Lexemes {
		out[i] = s.Name(LexemeIdx(i))
	}
	return out
}

// Patterns converts the lexemes into automaton patterns, index for index.
func (s *Spec) Patterns() []regexlib.Pattern {
	out := make([]regexlib.Pattern, len(s.Lexemes))
	for i, l := range s.Lexemes {
		out[i] = regexlib.Pattern{Rx: l.Rx, Stop: l.Stop}
	}
	return out
}

// Validate checks names only; patterns are checked when compiled.
func (s *Spec) Validate() error {
	if len(s.Lexemes) == 0 {
		return ErrNoLexemes
	}
	seen := make(map[string]int, len(s.Lexemes))
	for i, l := range s.Lexemes {
		if l.Name == "" {
			return fmt.Errorf("lexeme %d: %w", i, ErrEmptyName)
		}
		if j, ok := seen[l.Name]; ok {
			return fmt.Errorf("lexeme %d %q (first defined at %d): %w", i, l.Name, j, ErrDuplicateName)
		}
		seen[l.Name] = i
	}
	return nil
}
