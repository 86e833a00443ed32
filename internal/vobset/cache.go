// Package vobset provides the allowed-lexeme sets used by the lexer and a
// shared cache that interns them.
package vobset

import (
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// VobSet interns AllowedSets over a fixed universe of lexemes so identical
// sets are built once and shared.
//
// A VobSet is reference counted: New returns a handle holding one
// reference, every additional owner calls Acquire, and each owner calls
// Release when done. All methods are safe for concurrent use.
type VobSet struct {
	size  int
	sets  sync.Map // Key() -> AllowedSet
	group singleflight.Group
	refs  atomic.Int32

	empty AllowedSet
	full  AllowedSet
}

// New creates a cache for sets over size lexemes.
func New(size int) *VobSet {
	v := &VobSet{size: size}
	v.refs.Store(1)
	v.empty = v.Intern(Empty(size))
	v.full = v.Intern(Full(size))
	return v
}

// Acquire registers another owner of the cache.
func (v *VobSet) Acquire() *VobSet {
	for {
		n := v.refs.Load()
		if n <= 0 {
			panic("vobset: Acquire on released cache")
		}
		if v.refs.CompareAndSwap(n, n+1) {
			return v
		}
	}
}

// Release drops one reference. It reports true when the last reference was
// dropped; the interned sets are discarded at that point.
func (v *VobSet) Release() bool {
	var n int32
	for {
		n = v.refs.Load()
		if n <= 0 {
			panic("vobset: Release without matching Acquire")
		}
		if v.refs.CompareAndSwap(n, n-1) {
			break
		}
	}
	if n == 1 {
		v.sets.Clear()
		return true
	}
	return false
}

// Refs returns the current number of owners.
func (v *VobSet) Refs() int { return int(v.refs.Load()) }

// Size is the number of lexemes the sets range over.
func (v *VobSet) Size() int { return v.size }

// Intern returns the canonical instance equal to s, storing a private copy
// of s the first time a bit pattern is seen.
func (v *VobSet) Intern(s AllowedSet) AllowedSet {
	key := s.Key()
	if got, ok := v.sets.Load(key); ok {
		return got.(AllowedSet)
	}
	got, _, _ := v.group.Do(key, func() (any, error) {
		if got, ok := v.sets.Load(key); ok {
			return got, nil
		}
		c := AllowedSet{n: v.size}
		if s.bits != nil {
			c.bits = s.bits.Clone()
		} else {
			c = Empty(v.size)
		}
		v.sets.Store(key, c)
		return c, nil
	})
	return got.(AllowedSet)
}

// Of returns the interned set holding exactly idx.
func (v *VobSet) Of(idx ...int) AllowedSet {
	for _, i := range idx {
		if i < 0 || i >= v.size {
			panic("vobset: lexeme index " + strconv.Itoa(i) + " out of range for " + strconv.Itoa(v.size))
		}
	}
	return v.Intern(FromIndices(v.size, idx...))
}

// Singleton returns the interned set {i}.
func (v *VobSet) Singleton(i int) AllowedSet { return v.Of(i) }

func (v *VobSet) Empty() AllowedSet { return v.empty }

func (v *VobSet) All() AllowedSet { return v.full }

// Len returns the number of distinct sets currently interned.
func (v *VobSet) Len() int {
	n := 0
	v.sets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
