package regexlib

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"

	"grammarlex/internal/vobset"
)

// StateID identifies a state of a RegexVec. It is only meaningful for the
// RegexVec that returned it.
type StateID uint32

// Dead is the state from which no pattern can match.
const Dead StateID = 0

const unknownState StateID = ^StateID(0)

func (s StateID) IsDead() bool { return s == Dead }

func (s StateID) String() string {
	if s == Dead {
		return "DEAD"
	}
	return fmt.Sprintf("s%d", uint32(s))
}

// StateDesc describes one DFA state.
type StateDesc struct {
	// Possible holds the patterns that can still match from this state.
	Possible vobset.AllowedSet
	// Accepting holds the patterns fully matched at this state.
	Accepting vobset.AllowedSet
	// LowestAccepting is the first member of Accepting, or -1.
	LowestAccepting int
	// AcceptingHidden is the length of the stop suffix consumed by
	// LowestAccepting at this state, 0 if it has none.
	AcceptingHidden int
	// LookaheadLen is the largest number of already consumed bytes that
	// belong to a pending stop suffix of any pattern.
	LookaheadLen int
	// EOSAccepting holds the patterns that are complete if input ends
	// here. A pattern with a stop literal may end right after its body.
	EOSAccepting vobset.AllowedSet
}

func (d *StateDesc) IsAccepting() bool { return d.LowestAccepting >= 0 }

// Pattern is one entry of a RegexVec. Stop, when non-empty, is a literal
// that must follow Rx; the bytes it consumes are reported through
// LookaheadLen instead of being part of the match.
type Pattern struct {
	Rx   string
	Stop string
}

type dfaState struct {
	set  []int32
	desc StateDesc
	next [256]StateID
}

// RegexVec is a lazily built DFA running all of its patterns at once.
// States are materialised on first use and cached; it is safe for
// concurrent use.
type RegexVec struct {
	nfa    []nfaState
	live   []bool
	starts []int32
	opts   Options

	mu      sync.RWMutex
	states  []*dfaState
	index   map[string]StateID
	initial map[string]StateID
	mark    []uint32
	gen     uint32

	exhausted atomic.Bool
}

// CompileVec builds one automaton over all patterns. Pattern i is tagged
// with lexeme index i.
func CompileVec(patterns []Pattern, opts Options) (*RegexVec, error) {
	opts = opts.withDefaults()
	if len(patterns) > opts.MaxPatterns {
		return nil, fmt.Errorf("%d patterns, limit %d: %w", len(patterns), opts.MaxPatterns, ErrTooManyPatterns)
	}
	b := &nfaBuilder{maxStates: opts.MaxNFAStates}
	starts := make([]int32, len(patterns))
	for i, p := range patterns {
		start, err := b.addPattern(int32(i), p)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}
		starts[i] = start
	}

	v := &RegexVec{
		nfa:     b.states,
		live:    b.coreachable(),
		starts:  starts,
		opts:    opts,
		index:   make(map[string]StateID),
		initial: make(map[string]StateID),
		mark:    make([]uint32, len(b.states)),
	}
	dead := &dfaState{desc: v.describe(nil)}
	v.states = append(v.states, dead)
	v.index[""] = Dead
	return v, nil
}

func (b *nfaBuilder) addPattern(idx int32, p Pattern) (int32, error) {
	ast, err := parse(p.Rx)
	if err != nil {
		return 0, err
	}
	b.lexeme, b.hidden = idx, 0
	body, err := b.build(ast)
	if err != nil {
		return 0, err
	}
	end, err := b.newState()
	if err != nil {
		return 0, err
	}
	b.patchOuts(body.outs, end)

	final := end
	if p.Stop != "" {
		stop, err := b.literal([]byte(p.Stop), true)
		if err != nil {
			return 0, err
		}
		b.patchOuts([]int32{end}, stop.start)
		final = stop.outs[0]
	}
	b.states[final].accept = true
	b.states[end].eosOK = true
	b.states[final].eosOK = true
	return body.start, nil
}

func (v *RegexVec) NumPatterns() int { return len(v.starts) }

// NumStates returns the number of DFA states built so far, Dead included.
func (v *RegexVec) NumStates() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.states)
}

// Exhausted reports whether a transition was refused because the state
// table reached Options.MaxDFAStates.
func (v *RegexVec) Exhausted() bool { return v.exhausted.Load() }

// InitialState returns the start state restricted to the allowed patterns.
func (v *RegexVec) InitialState(allowed vobset.AllowedSet) StateID {
	key := allowed.Key()
	v.mu.RLock()
	s, ok := v.initial[key]
	v.mu.RUnlock()
	if ok {
		return s
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.initial[key]; ok {
		return s
	}
	var seeds []int32
	for i, start := range v.starts {
		if allowed.Test(i) {
			seeds = append(seeds, start)
		}
	}
	s, ok = v.intern(v.closure(seeds))
	if ok {
		v.initial[key] = s
	}
	return s
}

func (v *RegexVec) Transition(s StateID, b byte) StateID {
	v.mu.RLock()
	next := v.states[s].next[b]
	v.mu.RUnlock()
	if next != unknownState {
		return next
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.states[s]
	if next := st.next[b]; next != unknownState {
		return next
	}
	next, ok := v.intern(v.closure(v.move(st.set, b)))
	if ok {
		st.next[b] = next
	}
	return next
}

// TransitionBytes feeds bs one byte at a time, stopping early at Dead.
func (v *RegexVec) TransitionBytes(s StateID, bs []byte) StateID {
	for _, b := range bs {
		if s == Dead {
			break
		}
		s = v.Transition(s, b)
	}
	return s
}

func (v *RegexVec) StateDesc(s StateID) StateDesc {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.states[s].desc
}

// PossibleLookaheadLen is StateDesc(s).LookaheadLen.
func (v *RegexVec) PossibleLookaheadLen(s StateID) int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.states[s].desc.LookaheadLen
}

/* ------------------- subset construction, under v.mu ------------------- */

func (v *RegexVec) move(set []int32, b byte) []int32 {
	var out []int32
	for _, s := range set {
		for _, e := range v.nfa[s].edges {
			if e.lo <= b && b <= e.hi {
				out = append(out, e.to)
			}
		}
	}
	return out
}

// closure returns the sorted ε-closure of seeds. Only states that consume
// a byte, accept or may end the input are kept, and only if an accept is
// reachable from them.
func (v *RegexVec) closure(seeds []int32) []int32 {
	v.gen++
	if v.gen == 0 {
		clear(v.mark)
		v.gen = 1
	}
	var out []int32
	stack := make([]int32, 0, len(seeds))
	for _, s := range seeds {
		if v.mark[s] != v.gen {
			v.mark[s] = v.gen
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ns := &v.nfa[s]; v.live[s] && (ns.accept || ns.eosOK || len(ns.edges) > 0) {
			out = append(out, s)
		}
		for _, t := range v.nfa[s].eps {
			if v.mark[t] != v.gen {
				v.mark[t] = v.gen
				stack = append(stack, t)
			}
		}
	}
	slices.Sort(out)
	return out
}

// intern returns the state for set, creating it if needed. ok is false
// when the table is full; the returned state is then Dead.
func (v *RegexVec) intern(set []int32) (StateID, bool) {
	key := setKey(set)
	if s, ok := v.index[key]; ok {
		return s, true
	}
	if len(v.states) >= v.opts.MaxDFAStates {
		v.exhausted.Store(true)
		return Dead, false
	}
	st := &dfaState{set: set, desc: v.describe(set)}
	for i := range st.next {
		st.next[i] = unknownState
	}
	id := StateID(len(v.states))
	v.states = append(v.states, st)
	v.index[key] = id
	return id, true
}

func (v *RegexVec) describe(set []int32) StateDesc {
	n := len(v.starts)
	possible := bitset.New(uint(n))
	accepting := bitset.New(uint(n))
	eos := bitset.New(uint(n))
	look := 0
	for _, s := range set {
		ns := &v.nfa[s]
		possible.Set(uint(ns.lexeme))
		if ns.accept {
			accepting.Set(uint(ns.lexeme))
		}
		if ns.eosOK {
			eos.Set(uint(ns.lexeme))
		}
		if int(ns.hidden) > look {
			look = int(ns.hidden)
		}
	}
	d := StateDesc{
		Possible:        vobset.Wrap(n, possible),
		Accepting:       vobset.Wrap(n, accepting),
		LowestAccepting: -1,
		LookaheadLen:    look,
		EOSAccepting:    vobset.Wrap(n, eos),
	}
	if i, ok := d.Accepting.FirstBitSet(); ok {
		d.LowestAccepting = i
		// each pattern has a single accept state
		for _, s := range set {
			if ns := &v.nfa[s]; ns.accept && int(ns.lexeme) == i {
				d.AcceptingHidden = int(ns.hidden)
				break
			}
		}
	}
	if v.opts.Sets != nil {
		d.Possible = v.opts.Sets.Intern(d.Possible)
		d.Accepting = v.opts.Sets.Intern(d.Accepting)
		d.EOSAccepting = v.opts.Sets.Intern(d.EOSAccepting)
	}
	return d
}

func setKey(set []int32) string {
	buf := make([]byte, 0, len(set)*3)
	for _, s := range set {
		buf = binary.AppendUvarint(buf, uint64(s))
	}
	return string(buf)
}
