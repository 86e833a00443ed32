package regexlib

import "grammarlex/internal/vobset"

// Options bounds the size of a RegexVec.
type Options struct {
	// MaxPatterns limits the number of patterns in one automaton.
	MaxPatterns int

	// MaxNFAStates limits the combined NFA built from all patterns.
	MaxNFAStates int

	// MaxDFAStates limits the lazily built state table. Transitions that
	// would need a new state past the limit return Dead.
	MaxDFAStates int

	// Sets, if set, interns the pattern sets of every state.
	Sets *vobset.VobSet
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxPatterns:  4096,
		MaxNFAStates: 1 << 20,
		MaxDFAStates: 1 << 16,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxPatterns <= 0 {
		o.MaxPatterns = d.MaxPatterns
	}
	if o.MaxNFAStates <= 0 {
		o.MaxNFAStates = d.MaxNFAStates
	}
	if o.MaxDFAStates <= 0 {
		o.MaxDFAStates = d.MaxDFAStates
	}
	return o
}
