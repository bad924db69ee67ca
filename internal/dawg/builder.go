// Package dawg implements a minimal deterministic acyclic word graph: the
// storage structure shared by the main dictionary, the prefix set and the
// reversed-key suffix index (spec §4.1). Builder performs Daciuk-style
// online incremental minimization — keys must be inserted in sorted
// order — and Finalize emits a read-only, position-independent Graph plus
// its serialized byte form.
package dawg

import (
	"fmt"

	"github.com/xmorph/xmorph/internal/ustring"
)

// state is an in-memory, pre-minimization DAWG node. Builder works with
// pointers to state; Finalize replaces pointer identity with a flat index
// once the graph is frozen.
type state struct {
	edges []edge
	final bool
	// payload is the accepting-state payload. Only meaningful if final.
	payload []byte
}

type edge struct {
	ch     ustring.Char
	target *state
}

func (s *state) edgeTo(ch ustring.Char) (*state, bool) {
	for i := range s.edges {
		if s.edges[i].ch == ch {
			return s.edges[i].target, true
		}
	}
	return nil, false
}

func (s *state) setEdge(ch ustring.Char, target *state) {
	for i := range s.edges {
		if s.edges[i].ch == ch {
			s.edges[i].target = target
			return
		}
	}
	s.edges = append(s.edges, edge{ch, target})
}

// signature is the canonicalization key for interning: two states with the
// same (accept flag, transition list, payload) are the same state. Edge
// targets must already be canonical (frozen) pointers when this is
// computed — Builder guarantees that by processing the unchecked-state
// stack back to front.
func (s *state) signature() string {
	b := make([]byte, 0, 16+8*len(s.edges))
	if s.final {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	b = append(b, byte(len(s.payload)), byte(len(s.payload)>>8))
	b = append(b, s.payload...)
	for _, e := range s.edges {
		b = appendUvarint(b, uint64(e.ch))
		b = appendUvarint(b, uint64(uintptr(canonicalID(e.target))))
	}
	return string(b)
}

// canonicalID and the registry below assign a stable small integer to each
// already-frozen state so signatures don't depend on raw pointer bit
// patterns (which would make builds non-reproducible across runs, a
// correctness smell even though it would still be internally consistent
// within one build).
var idRegistry = map[*state]uint64{}
var nextCanonicalID uint64

func canonicalID(s *state) uint64 {
	if id, ok := idRegistry[s]; ok {
		return id
	}
	id := nextCanonicalID
	nextCanonicalID++
	idRegistry[s] = id
	return id
}

type pathStep struct {
	parent *state
	ch     ustring.Char
	child  *state
}

// Builder performs incremental DAWG construction. Keys must be inserted in
// strictly increasing lexicographic order (by Char); Insert returns an
// error on out-of-order or duplicate keys and leaves the Builder unchanged.
type Builder struct {
	root     *state
	register map[string]*state
	path     []pathStep
	lastKey  ustring.String
	started  bool
}

// NewBuilder returns an empty Builder ready for sorted Insert calls.
func NewBuilder() *Builder {
	return &Builder{
		root:     &state{},
		register: make(map[string]*state),
	}
}

// Insert adds key -> payload. Keys must arrive in sorted order; payload is
// the exact byte string stored at the accepting state (the dictionary
// layer is responsible for packing multiple interpretations for one key
// into a single payload blob before calling Insert).
func (b *Builder) Insert(key ustring.String, payload []byte) error {
	if b.started && ustring.String(b.lastKey).Equal(key) {
		return fmt.Errorf("dawg: duplicate key %q", key.Runes())
	}
	if b.started && !lessThan(b.lastKey, key) {
		return fmt.Errorf("dawg: keys must be inserted in sorted order (got %q after %q)", key.Runes(), b.lastKey.Runes())
	}
	b.started = true

	commonLen := commonPrefixLen(b.lastKey, key)

	// Freeze everything past the common prefix, back to front, so that by
	// the time we compute a state's signature its children are already
	// canonical.
	for i := len(b.path) - 1; i >= commonLen; i-- {
		step := b.path[i]
		b.freeze(step)
	}
	b.path = b.path[:commonLen]

	cur := b.root
	if commonLen > 0 {
		cur = b.path[commonLen-1].child
	}
	for i := commonLen; i < key.Len(); i++ {
		child := &state{}
		cur.setEdge(key.At(i), child)
		b.path = append(b.path, pathStep{parent: cur, ch: key.At(i), child: child})
		cur = child
	}
	cur.final = true
	cur.payload = payload

	b.lastKey = key
	return nil
}

func (b *Builder) freeze(step pathStep) {
	sig := step.child.signature()
	if canon, ok := b.register[sig]; ok {
		step.parent.setEdge(step.ch, canon)
		return
	}
	b.register[sig] = step.child
}

// Finalize freezes the remaining unchecked path, linearizes the graph into
// topological order, and returns both the queryable Graph and its
// serialized byte form.
func (b *Builder) Finalize() (*Graph, []byte, error) {
	for i := len(b.path) - 1; i >= 0; i-- {
		b.freeze(b.path[i])
	}
	b.path = nil

	order, err := topologicalOrder(b.root)
	if err != nil {
		return nil, nil, err
	}

	g := buildGraph(order)
	blob := g.marshal()
	return g, blob, nil
}

func lessThan(a, b ustring.String) bool {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	for i := 0; i < n; i++ {
		if a.At(i) != b.At(i) {
			return a.At(i) < b.At(i)
		}
	}
	return a.Len() < b.Len()
}

func commonPrefixLen(a, b ustring.String) int {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	i := 0
	for i < n && a.At(i) == b.At(i) {
		i++
	}
	return i
}

// topologicalOrder returns every reachable state in an order where every
// edge points from an earlier index to a later one — computed as a
// reversed DFS postorder, the standard construction for DAG topological
// sort.
func topologicalOrder(root *state) ([]*state, error) {
	visited := make(map[*state]bool)
	var post []*state

	var visit func(s *state) error
	seen := make(map[*state]bool) // cycle guard; the builder should never produce one
	visit = func(s *state) error {
		if visited[s] {
			return nil
		}
		if seen[s] {
			return fmt.Errorf("dawg: cycle detected during finalize")
		}
		seen[s] = true
		for _, e := range s.edges {
			if err := visit(e.target); err != nil {
				return err
			}
		}
		seen[s] = false
		visited[s] = true
		post = append(post, s)
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}

	// reverse postorder -> topological order (parents before children)
	order := make([]*state, len(post))
	for i, s := range post {
		order[len(post)-1-i] = s
	}
	return order, nil
}

func appendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}
