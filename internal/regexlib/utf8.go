package regexlib

import "unicode/utf8"

type byteRange struct{ lo, hi byte }

// utf8Sequences splits the rune range [lo, hi] into sequences of byte
// ranges such that a byte string matches one of the sequences exactly when
// it is the UTF-8 encoding of a rune in [lo, hi]. Surrogates are skipped.
func utf8Sequences(out [][]byteRange, lo, hi rune) [][]byteRange {
	if hi > utf8.MaxRune {
		hi = utf8.MaxRune
	}
	if lo > hi {
		return out
	}
	if lo <= 0xDFFF && hi >= 0xD800 {
		if lo < 0xD800 {
			out = utf8Sequences(out, lo, 0xD7FF)
		}
		if hi > 0xDFFF {
			out = utf8Sequences(out, 0xE000, hi)
		}
		return out
	}
	// split at encoding length boundaries
	for _, m := range []rune{0x7F, 0x7FF, 0xFFFF} {
		if lo <= m && hi > m {
			out = utf8Sequences(out, lo, m)
			return utf8Sequences(out, m+1, hi)
		}
	}
	if hi < utf8.RuneSelf {
		return append(out, []byteRange{{byte(lo), byte(hi)}})
	}
	n := utf8.RuneLen(lo)
	// make every continuation position span a full or aligned range
	for i := 1; i < n; i++ {
		m := rune(1)<<(6*i) - 1
		if lo&^m != hi&^m {
			if lo&m != 0 {
				out = utf8Sequences(out, lo, lo|m)
				return utf8Sequences(out, (lo|m)+1, hi)
			}
			if hi&m != m {
				out = utf8Sequences(out, lo, (hi&^m)-1)
				return utf8Sequences(out, hi&^m, hi)
			}
		}
	}
	a := utf8.AppendRune(nil, lo)
	b := utf8.AppendRune(nil, hi)
	seq := make([]byteRange, n)
	for i := range seq {
		seq[i] = byteRange{a[i], b[i]}
	}
	return append(out, seq)
}
