package regexlib

import (
	"grammarlex/internal/vobset"
)

/* ----------- single pattern ----------- */

// Regex is a one-pattern RegexVec matching whole inputs.
type Regex struct {
	pattern string
	vec     *RegexVec
	all     vobset.AllowedSet
}

func Compile(pattern string) (*Regex, error) {
	vec, err := CompileVec([]Pattern{{Rx: pattern}}, DefaultOptions())
	if err != nil {
		return nil, err
	}
	return &Regex{pattern: pattern, vec: vec, all: vobset.Full(1)}, nil
}

func MustCompile(p string) *Regex {
	r, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return r
}

// Match reports whether all of b matches the pattern.
func (r *Regex) Match(b []byte) bool {
	s := r.vec.TransitionBytes(r.vec.InitialState(r.all), b)
	d := r.vec.StateDesc(s)
	return d.IsAccepting()
}

func (r *Regex) MatchString(s string) bool { return r.Match([]byte(s)) }

// LongestPrefix returns the length of the longest prefix of b that
// matches, or -1.
func (r *Regex) LongestPrefix(b []byte) int {
	s := r.vec.InitialState(r.all)
	best := -1
	if d := r.vec.StateDesc(s); d.IsAccepting() {
		best = 0
	}
	for i, c := range b {
		s = r.vec.Transition(s, c)
		if s == Dead {
			break
		}
		if d := r.vec.StateDesc(s); d.IsAccepting() {
			best = i + 1
		}
	}
	return best
}

func (r *Regex) String() string { return r.pattern }

func (r *Regex) Vec() *RegexVec { return r.vec }
