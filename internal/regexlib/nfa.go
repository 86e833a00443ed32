package regexlib

type nfaEdge struct {
	lo, hi byte
	to     int32
}

type nfaState struct {
	edges  []nfaEdge
	eps    []int32
	accept bool
	// eosOK marks a state where input may end with the pattern complete:
	// the end of the body, or the end of the stop suffix.
	eosOK  bool
	lexeme int32
	// hidden counts bytes consumed inside the pattern's stop suffix
	hidden int32
}

type nfaFrag struct {
	start int32
	outs  []int32 // states whose dangling ε edge still needs patching
}

// nfaBuilder owns the state arena of one multi-pattern NFA. Every state is
// tagged with the lexeme that created it.
type nfaBuilder struct {
	states    []nfaState
	maxStates int
	lexeme    int32
	hidden    int32
}

func (b *nfaBuilder) newState() (int32, error) {
	if len(b.states) >= b.maxStates {
		return 0, ErrTooManyStates
	}
	b.states = append(b.states, nfaState{lexeme: b.lexeme, hidden: b.hidden})
	return int32(len(b.states) - 1), nil
}

func (b *nfaBuilder) patchOuts(outs []int32, to int32) {
	for _, s := range outs {
		b.states[s].eps = append(b.states[s].eps, to)
	}
}

func (b *nfaBuilder) addEdge(from int32, lo, hi byte, to int32) {
	b.states[from].edges = append(b.states[from].edges, nfaEdge{lo: lo, hi: hi, to: to})
}

// literal chains the bytes of s from a fresh state. Each state after the
// i-th byte gets hidden = base+i+1 when hide is set.
func (b *nfaBuilder) literal(s []byte, hide bool) (nfaFrag, error) {
	start, err := b.newState()
	if err != nil {
		return nfaFrag{}, err
	}
	cur := start
	saved := b.hidden
	defer func() { b.hidden = saved }()
	for _, c := range s {
		if hide {
			b.hidden++
		}
		nxt, err := b.newState()
		if err != nil {
			return nfaFrag{}, err
		}
		b.addEdge(cur, c, c, nxt)
		cur = nxt
	}
	return nfaFrag{start: start, outs: []int32{cur}}, nil
}

func (b *nfaBuilder) build(node *astNode) (nfaFrag, error) {
	switch node.typ {
	case nEmpty:
		s, err := b.newState()
		if err != nil {
			return nfaFrag{}, err
		}
		return nfaFrag{start: s, outs: []int32{s}}, nil
	case nByte:
		return b.literal([]byte{node.b}, false)
	case nClass:
		s1, err := b.newState()
		if err != nil {
			return nfaFrag{}, err
		}
		s2, err := b.newState()
		if err != nil {
			return nfaFrag{}, err
		}
		var seqs [][]byteRange
		for _, r := range node.ranges {
			seqs = utf8Sequences(seqs, r.lo, r.hi)
		}
		for _, seq := range seqs {
			cur := s1
			for i, br := range seq {
				to := s2
				if i < len(seq)-1 {
					if to, err = b.newState(); err != nil {
						return nfaFrag{}, err
					}
				}
				b.addEdge(cur, br.lo, br.hi, to)
				cur = to
			}
		}
		return nfaFrag{start: s1, outs: []int32{s2}}, nil
	case nConcat:
		f1, err := b.build(node.left)
		if err != nil {
			return nfaFrag{}, err
		}
		f2, err := b.build(node.right)
		if err != nil {
			return nfaFrag{}, err
		}
		b.patchOuts(f1.outs, f2.start)
		return nfaFrag{start: f1.start, outs: f2.outs}, nil
	case nUnion:
		s, err := b.newState()
		if err != nil {
			return nfaFrag{}, err
		}
		f1, err := b.build(node.left)
		if err != nil {
			return nfaFrag{}, err
		}
		f2, err := b.build(node.right)
		if err != nil {
			return nfaFrag{}, err
		}
		b.states[s].eps = append(b.states[s].eps, f1.start, f2.start)
		outs := append(f1.outs, f2.outs...)
		return nfaFrag{start: s, outs: outs}, nil
	case nStar:
		return b.star(node.left)
	case nPlus:
		f, err := b.build(node.left)
		if err != nil {
			return nfaFrag{}, err
		}
		loop, err := b.newState()
		if err != nil {
			return nfaFrag{}, err
		}
		b.patchOuts(f.outs, loop)
		b.states[loop].eps = append(b.states[loop].eps, f.start)
		return nfaFrag{start: f.start, outs: []int32{loop}}, nil
	case nQMark:
		return b.optional(node.left)
	case nRepeat:
		return b.repeat(node)
	case nGroup:
		return b.build(node.left)
	default:
		panic("regexlib: unknown ast node")
	}
}

func (b *nfaBuilder) star(node *astNode) (nfaFrag, error) {
	s, err := b.newState()
	if err != nil {
		return nfaFrag{}, err
	}
	f, err := b.build(node)
	if err != nil {
		return nfaFrag{}, err
	}
	b.patchOuts(f.outs, s)
	b.states[s].eps = append(b.states[s].eps, f.start)
	return nfaFrag{start: s, outs: []int32{s}}, nil
}

func (b *nfaBuilder) optional(node *astNode) (nfaFrag, error) {
	s, err := b.newState()
	if err != nil {
		return nfaFrag{}, err
	}
	f, err := b.build(node)
	if err != nil {
		return nfaFrag{}, err
	}
	b.states[s].eps = append(b.states[s].eps, f.start)
	return nfaFrag{start: s, outs: append(f.outs, s)}, nil
}

// repeat expands x{m,n} into m copies of x followed by n-m copies of x?,
// or by x* when unbounded.
func (b *nfaBuilder) repeat(node *astNode) (nfaFrag, error) {
	frag, err := b.build(&astNode{typ: nEmpty})
	if err != nil {
		return nfaFrag{}, err
	}
	appendPiece := func(piece nfaFrag) {
		b.patchOuts(frag.outs, piece.start)
		frag.outs = piece.outs
	}
	for i := 0; i < node.min; i++ {
		piece, err := b.build(node.left)
		if err != nil {
			return nfaFrag{}, err
		}
		appendPiece(piece)
	}
	if node.max == -1 {
		piece, err := b.star(node.left)
		if err != nil {
			return nfaFrag{}, err
		}
		appendPiece(piece)
		return frag, nil
	}
	for i := node.min; i < node.max; i++ {
		piece, err := b.optional(node.left)
		if err != nil {
			return nfaFrag{}, err
		}
		appendPiece(piece)
	}
	return frag, nil
}

// coreachable reports, per state, whether an accepting state can be
// reached from it.
func (b *nfaBuilder) coreachable() []bool {
	rev := make([][]int32, len(b.states))
	for i := range b.states {
		s := &b.states[i]
		for _, e := range s.edges {
			rev[e.to] = append(rev[e.to], int32(i))
		}
		for _, t := range s.eps {
			rev[t] = append(rev[t], int32(i))
		}
	}
	live := make([]bool, len(b.states))
	var stack []int32
	for i := range b.states {
		if b.states[i].accept {
			live[i] = true
			stack = append(stack, int32(i))
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range rev[s] {
			if !live[p] {
				live[p] = true
				stack = append(stack, p)
			}
		}
	}
	return live
}
