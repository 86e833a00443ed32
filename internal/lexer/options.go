package lexer

import (
	"log/slog"

	"grammarlex/internal/regexlib"
)

// Options configures a Lexer.
type Options struct {
	// Logger receives transition traces when Advance is called with
	// logging enabled. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Engine bounds the compiled automaton. Sets is always overridden by
	// the lexer.
	Engine regexlib.Options
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Engine: regexlib.DefaultOptions(),
	}
}
