package vobset

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// AllowedSet is a set of lexeme indices backed by a compact bit vector.
//
// An AllowedSet is never mutated after it has been built, so values can be
// copied and shared freely between goroutines. The zero value is the empty
// set over an empty universe.
type AllowedSet struct {
	bits *bitset.BitSet
	n    int
}

// Wrap takes ownership of bs. The caller must not modify bs afterwards.
func Wrap(n int, bs *bitset.BitSet) AllowedSet {
	return AllowedSet{bits: bs, n: n}
}

// FromIndices builds a set over a universe of n lexemes.
func FromIndices(n int, idx ...int) AllowedSet {
	bs := bitset.New(uint(n))
	for _, i := range idx {
		if i < 0 || i >= n {
			panic("vobset: lexeme index " + strconv.Itoa(i) + " out of range")
		}
		bs.Set(uint(i))
	}
	return AllowedSet{bits: bs, n: n}
}

// Full returns the set containing every index in [0, n).
func Full(n int) AllowedSet {
	bs := bitset.New(uint(n))
	if n > 0 {
		bs.FlipRange(0, uint(n))
	}
	return AllowedSet{bits: bs, n: n}
}

// Empty returns the empty set over a universe of n lexemes.
func Empty(n int) AllowedSet {
	return AllowedSet{bits: bitset.New(uint(n)), n: n}
}

// Len is the size of the universe, not the number of members.
func (s AllowedSet) Len() int { return s.n }

// Count returns the number of members.
func (s AllowedSet) Count() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// IsZero reports whether no lexeme is in the set.
func (s AllowedSet) IsZero() bool {
	return s.bits == nil || s.bits.None()
}

// AndIsZero reports whether s and o have no member in common.
func (s AllowedSet) AndIsZero(o AllowedSet) bool {
	if s.bits == nil || o.bits == nil {
		return true
	}
	return s.bits.IntersectionCardinality(o.bits) == 0
}

// FirstBitSet returns the lowest member, which is the highest-priority
// lexeme in the set.
func (s AllowedSet) FirstBitSet() (int, bool) {
	if s.bits == nil {
		return 0, false
	}
	i, ok := s.bits.NextSet(0)
	return int(i), ok
}

func (s AllowedSet) Test(i int) bool {
	return s.bits != nil && i >= 0 && s.bits.Test(uint(i))
}

// Indices lists the members in ascending order.
func (s AllowedSet) Indices() []int {
	var out []int
	if s.bits == nil {
		return out
	}
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// Union returns a new set; neither operand is modified.
func (s AllowedSet) Union(o AllowedSet) AllowedSet {
	n := max(s.n, o.n)
	switch {
	case s.bits == nil && o.bits == nil:
		return Empty(n)
	case s.bits == nil:
		return AllowedSet{bits: o.bits.Clone(), n: n}
	case o.bits == nil:
		return AllowedSet{bits: s.bits.Clone(), n: n}
	}
	return AllowedSet{bits: s.bits.Union(o.bits), n: n}
}

// Key is the canonical bit pattern of the set. Two sets with the same
// members have the same key regardless of the capacity of their vectors.
func (s AllowedSet) Key() string {
	if s.bits == nil {
		return ""
	}
	words := s.bits.Bytes()
	last := len(words)
	for last > 0 && words[last-1] == 0 {
		last--
	}
	buf := make([]byte, 0, last*8)
	for _, w := range words[:last] {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return string(buf)
}

func (s AllowedSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, idx := range s.Indices() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(idx))
	}
	sb.WriteByte('}')
	return sb.String()
}
