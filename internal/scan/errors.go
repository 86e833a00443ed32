package scan

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatch       = errors.New("no lexeme matches")
	ErrUnexpectedEOF = errors.New("input ended inside a lexeme")
	ErrNoProgress    = errors.New("empty lexeme does not advance input")
	ErrClosed        = errors.New("scanner closed")
)

// Error locates a scan failure in the input. Byte is unused when Reason is
// ErrUnexpectedEOF.
type Error struct {
	Offset int
	Byte   byte
	Reason error
}

func (e *Error) Error() string {
	if errors.Is(e.Reason, ErrUnexpectedEOF) {
		return fmt.Sprintf("offset %d: %v", e.Offset, e.Reason)
	}
	return fmt.Sprintf("offset %d, byte %q: %v", e.Offset, e.Byte, e.Reason)
}

func (e *Error) Unwrap() error { return e.Reason }
