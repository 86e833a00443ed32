package regexlib

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax          = errors.New("regex syntax error")
	ErrTooManyPatterns = errors.New("too many patterns")
	ErrTooManyStates   = errors.New("automaton too large")
)

// SyntaxError describes an invalid pattern. Offset is a byte offset into
// Pattern.
type SyntaxError struct {
	Pattern string
	Offset  int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("regex %q at offset %d: %s", e.Pattern, e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
