package regexlib

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Explore materialises every state reachable from start, breadth first,
// until limit states have been visited. It returns the number visited.
func (v *RegexVec) Explore(start StateID, limit int) int {
	seen := map[StateID]bool{start: true}
	queue := []StateID{start}
	for len(queue) > 0 && len(seen) < limit {
		s := queue[0]
		queue = queue[1:]
		for b := 0; b < 256; b++ {
			t := v.Transition(s, byte(b))
			if t != Dead && !seen[t] {
				seen[t] = true
				queue = append(queue, t)
			}
		}
	}
	return len(seen)
}

// ExportDOT writes the states built so far as a Graphviz digraph. Edges to
// Dead are omitted; parallel edges are merged into byte-range labels.
// names, if non-nil, labels accepting states with pattern names.
func ExportDOT(w io.Writer, v *RegexVec, start StateID, names []string) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	fmt.Fprintln(w, "digraph G {")
	fmt.Fprintln(w, "    rankdir=LR;")
	for id := 1; id < len(v.states); id++ {
		st := v.states[id]
		shape := "circle"
		label := fmt.Sprintf("s%d", id)
		if st.desc.IsAccepting() {
			shape = "doublecircle"
			acc := st.desc.LowestAccepting
			if acc < len(names) {
				label += "\\n" + names[acc]
			} else {
				label += "\\n#" + strconv.Itoa(acc)
			}
		}
		if st.desc.LookaheadLen > 0 {
			label += fmt.Sprintf("\\nhidden=%d", st.desc.LookaheadLen)
		}
		fmt.Fprintf(w, "    q%d [shape=%s, label=\"%s\"];\n", id, shape, label)

		// group consecutive bytes with the same target
		for lo := 0; lo < 256; {
			to := st.next[lo]
			hi := lo
			for hi+1 < 256 && st.next[hi+1] == to {
				hi++
			}
			if to != Dead && to != unknownState {
				fmt.Fprintf(w, "    q%d -> q%d [label=\"%s\"];\n", id, to, byteRangeLabel(byte(lo), byte(hi)))
			}
			lo = hi + 1
		}
	}
	if start != Dead {
		fmt.Fprintf(w, "    _start [shape=point]; _start -> q%d;\n", start)
	}
	fmt.Fprintln(w, "}")
}

func byteRangeLabel(lo, hi byte) string {
	if lo == hi {
		return dotByte(lo)
	}
	return dotByte(lo) + "-" + dotByte(hi)
}

func dotByte(b byte) string {
	switch {
	case b == '"':
		return `\"`
	case b == '\\':
		return `\\`
	case b > ' ' && b < 0x7f:
		return string(rune(b))
	}
	q := strconv.QuoteToASCII(string([]byte{b}))
	return strings.ReplaceAll(q[1:len(q)-1], `\`, `\\`)
}
