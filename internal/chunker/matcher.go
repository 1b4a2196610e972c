package chunker

// matcher finds any of a fixed set of literal strings in a single left to
// right scan. At each position the earliest-listed pattern that matches
// wins, the same choice an ordered regexp alternation makes.
type matcher struct {
	nodes []trieNode
}

type trieNode struct {
	next    map[byte]int
	pattern int // lowest pattern index ending here, -1 if none
}

func newMatcher(patterns []string) *matcher {
	m := &matcher{nodes: []trieNode{{pattern: -1}}}
	for i, p := range patterns {
		if p == "" {
			continue
		}
		cur := 0
		for j := 0; j < len(p); j++ {
			c := p[j]
			nxt, ok := m.nodes[cur].next[c]
			if !ok {
				m.nodes = append(m.nodes, trieNode{pattern: -1})
				nxt = len(m.nodes) - 1
				if m.nodes[cur].next == nil {
					m.nodes[cur].next = make(map[byte]int)
				}
				m.nodes[cur].next[c] = nxt
			}
			cur = nxt
		}
		if m.nodes[cur].pattern == -1 {
			m.nodes[cur].pattern = i
		}
	}
	return m
}

func (m *matcher) empty() bool {
	return len(m.nodes) == 1
}

// matchAt returns the end offset of the preferred pattern starting at i.
func (m *matcher) matchAt(s string, i int) (end int, ok bool) {
	best := -1
	cur := 0
	for j := i; j < len(s); j++ {
		nxt, found := m.nodes[cur].next[s[j]]
		if !found {
			break
		}
		cur = nxt
		if p := m.nodes[cur].pattern; p != -1 && (best == -1 || p < best) {
			best = p
			end = j + 1
		}
	}
	return end, best != -1
}

type segment struct {
	text    string
	heading bool
}

// split cuts s at every match, keeping the matched text as its own
// segment. Unmatched runs between matches are returned even when empty.
func (m *matcher) split(s string) []segment {
	if m.empty() {
		return []segment{{text: s}}
	}
	var out []segment
	start := 0
	for i := 0; i < len(s); {
		end, ok := m.matchAt(s, i)
		if !ok {
			i++
			continue
		}
		out = append(out, segment{text: s[start:i]}, segment{text: s[i:end], heading: true})
		start, i = end, end
	}
	return append(out, segment{text: s[start:]})
}
