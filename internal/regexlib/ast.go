package regexlib

import (
	"sort"
	"unicode/utf8"
)

type nodeType int

const (
	nEmpty nodeType = iota // ε
	nClass                 // set of runes; a literal is a one-rune class
	nByte                  // raw byte, used for \xHH >= 0x80 and invalid UTF-8
	nConcat
	nUnion
	nStar
	nPlus
	nQMark
	nRepeat // {m,n}, max == -1 for {m,}
	nGroup  // ( ... ) and (?: ... ); nothing is captured
)

type runeRange struct{ lo, hi rune }

type astNode struct {
	typ   nodeType
	left  *astNode
	right *astNode

	ranges   []runeRange // for nClass, sorted and non-overlapping
	b        byte        // for nByte
	min, max int         // for nRepeat
}

func charNode(r rune) *astNode {
	return &astNode{typ: nClass, ranges: []runeRange{{r, r}}}
}

func classNode(ranges []runeRange, negate bool) *astNode {
	ranges = normalizeRanges(ranges)
	if negate {
		ranges = negateRanges(ranges)
	}
	return &astNode{typ: nClass, ranges: ranges}
}

// anyNode is '.', every rune except '\n'.
func anyNode() *astNode {
	return &astNode{typ: nClass, ranges: []runeRange{{0, '\n' - 1}, {'\n' + 1, utf8.MaxRune}}}
}

func normalizeRanges(in []runeRange) []runeRange {
	if len(in) == 0 {
		return nil
	}
	rs := append([]runeRange(nil), in...)
	sort.Slice(rs, func(i, j int) bool { return rs[i].lo < rs[j].lo })
	out := rs[:1]
	for _, r := range rs[1:] {
		last := &out[len(out)-1]
		if r.lo <= last.hi+1 {
			if r.hi > last.hi {
				last.hi = r.hi
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// negateRanges expects normalized input.
func negateRanges(rs []runeRange) []runeRange {
	var out []runeRange
	next := rune(0)
	for _, r := range rs {
		if r.lo > next {
			out = append(out, runeRange{next, r.lo - 1})
		}
		next = r.hi + 1
	}
	if next <= utf8.MaxRune {
		out = append(out, runeRange{next, utf8.MaxRune})
	}
	return out
}

var (
	digitRanges = []runeRange{{'0', '9'}}
	wordRanges  = []runeRange{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}
	spaceRanges = []runeRange{{'\t', '\r'}, {' ', ' '}}
)
