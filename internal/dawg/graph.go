package dawg

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"
	"github.com/xmorph/xmorph/internal/ustring"
	"github.com/xmorph/xmorph/internal/xerrors"
)

const (
	magic         = "DAWG1\x00\x00\x00"
	flagFinal     = byte(1)
)

// flatNode is one minimized state, referencing its outgoing edges and
// accepting payload by (offset, length) into the Graph's shared arenas.
type flatNode struct {
	edgesOff uint32
	edgesLen uint32
	final    bool
	wordCnt  uint32 // number of accepting states reachable from this node, inclusive
	payOff   uint32
	payLen   uint32
}

// flatEdge is one outgoing transition, sorted by Char within a node so
// lookups can binary-search.
type flatEdge struct {
	ch     ustring.Char
	target uint32
}

// Graph is a read-only, minimized DAWG. The zero value is not usable; build
// one with a Builder or load one with Load/LoadFile.
type Graph struct {
	nodes    []flatNode
	edges    []flatEdge
	payloads []byte

	// backing is non-nil when the Graph owns an mmap region that must be
	// released by Close.
	backing mmap.MMap
}

// buildGraph linearizes a topologically ordered slice of in-memory states
// into the flat representation and computes per-node word counts.
func buildGraph(order []*state) *Graph {
	index := make(map[*state]uint32, len(order))
	for i, s := range order {
		index[s] = uint32(i)
	}

	g := &Graph{nodes: make([]flatNode, len(order))}
	for i, s := range order {
		edgesOff := uint32(len(g.edges))
		sorted := append([]edge(nil), s.edges...)
		sort.Slice(sorted, func(a, b int) bool { return sorted[a].ch < sorted[b].ch })
		for _, e := range sorted {
			g.edges = append(g.edges, flatEdge{ch: e.ch, target: index[e.target]})
		}
		n := flatNode{
			edgesOff: edgesOff,
			edgesLen: uint32(len(sorted)),
			final:    s.final,
		}
		if s.final {
			n.payOff = uint32(len(g.payloads))
			n.payLen = uint32(len(s.payload))
			g.payloads = append(g.payloads, s.payload...)
		}
		g.nodes[i] = n
	}

	// word counts: process in reverse topological order so every edge
	// target's count is already known.
	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := &g.nodes[i]
		cnt := uint32(0)
		if n.final {
			cnt = 1
		}
		for _, e := range g.edges[n.edgesOff : n.edgesOff+n.edgesLen] {
			cnt += g.nodes[e.target].wordCnt
		}
		n.wordCnt = cnt
	}
	return g
}

// Lookup returns the payload stored at key, if key is a recognized word.
func (g *Graph) Lookup(key ustring.String) ([]byte, bool) {
	node, ok := g.walk(key)
	if !ok || !g.nodes[node].final {
		return nil, false
	}
	n := g.nodes[node]
	return g.payloads[n.payOff : n.payOff+n.payLen], true
}

// CountPrefix returns the number of stored keys having key as a prefix
// (spec §4.1's count_prefix). Calling it with the empty key returns the
// total number of stored keys.
func (g *Graph) CountPrefix(key ustring.String) uint32 {
	node, ok := g.walk(key)
	if !ok {
		return 0
	}
	return g.nodes[node].wordCnt
}

// walk follows key from the root, returning the reached node index.
func (g *Graph) walk(key ustring.String) (uint32, bool) {
	cur := uint32(0)
	for i := 0; i < key.Len(); i++ {
		n := g.nodes[cur]
		edges := g.edges[n.edgesOff : n.edgesOff+n.edgesLen]
		ch := key.At(i)
		lo, hi := 0, len(edges)
		found := -1
		for lo < hi {
			mid := (lo + hi) / 2
			switch {
			case edges[mid].ch == ch:
				found = mid
				lo = hi
			case edges[mid].ch < ch:
				lo = mid + 1
			default:
				hi = mid
			}
		}
		if found < 0 {
			return 0, false
		}
		cur = edges[found].target
	}
	return cur, true
}

// Entry is one (key, payload) pair produced by IterPrefix.
type Entry struct {
	Key     ustring.String
	Payload []byte
}

// IterPrefix enumerates every stored key having prefix, in sorted order,
// each exactly once.
func (g *Graph) IterPrefix(prefix ustring.String) []Entry {
	node, ok := g.walk(prefix)
	if !ok {
		return nil
	}
	var out []Entry
	var buf []ustring.Char
	buf = append(buf, prefix...)
	var dfs func(idx uint32)
	dfs = func(idx uint32) {
		n := g.nodes[idx]
		if n.final {
			key := make(ustring.String, len(buf))
			copy(key, buf)
			out = append(out, Entry{Key: key, Payload: g.payloads[n.payOff : n.payOff+n.payLen]})
		}
		for _, e := range g.edges[n.edgesOff : n.edgesOff+n.edgesLen] {
			buf = append(buf, e.ch)
			dfs(e.target)
			buf = buf[:len(buf)-1]
		}
	}
	dfs(node)
	return out
}

// Close releases the Graph's mmap backing, if any. It is a no-op for
// in-memory graphs produced directly by a Builder.
func (g *Graph) Close() error {
	if g.backing != nil {
		return g.backing.Unmap()
	}
	return nil
}

// marshal serializes g to the on-disk/embedded byte format: an 8-byte
// magic, then varint-encoded node count,
// per-node records, then the raw payload arena.
//
// Per-node record: flags byte, varint edge count, edges as
// (varint char codepoint, varint target index) pairs, and — only when
// final — varint payload offset and varint payload length. The rune
// codepoint is used directly as the transition's character id; Russian's
// alphabet is already small enough that a separate interning table buys
// nothing over varint-encoding the codepoint itself.
func (g *Graph) marshal() []byte {
	buf := []byte(magic)
	buf = appendUvarint(buf, uint64(len(g.nodes)))
	for _, n := range g.nodes {
		flags := byte(0)
		if n.final {
			flags = flagFinal
		}
		buf = append(buf, flags)
		buf = appendUvarint(buf, uint64(n.edgesLen))
		for _, e := range g.edges[n.edgesOff : n.edgesOff+n.edgesLen] {
			buf = appendUvarint(buf, uint64(e.ch))
			buf = appendUvarint(buf, uint64(e.target))
		}
		if n.final {
			buf = appendUvarint(buf, uint64(n.payOff))
			buf = appendUvarint(buf, uint64(n.payLen))
		}
	}
	buf = appendUvarint(buf, uint64(len(g.payloads)))
	buf = append(buf, g.payloads...)
	return buf
}

// Load parses a Graph from an in-memory byte slice (the embedded-resource
// path; the Graph keeps a reference into data rather than copying the
// payload arena).
func Load(data []byte) (*Graph, error) {
	return load(data, nil)
}

// LoadFile mmaps path and parses a Graph directly from the mapped region,
// avoiding a copy of the (potentially large) dictionary blob into the Go
// heap. Call Close when done.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	g, err := load(m, m)
	if err != nil {
		m.Unmap()
		return nil, err
	}
	return g, nil
}

func load(data []byte, backing mmap.MMap) (*Graph, error) {
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return nil, fmt.Errorf("%w: bad magic", xerrors.ErrCorruptDAWG)
	}
	off := len(magic)

	nodeCount, n, err := readUvarint(data, off)
	if err != nil {
		return nil, err
	}
	off += n

	g := &Graph{nodes: make([]flatNode, nodeCount), backing: backing}
	for i := range g.nodes {
		if off >= len(data) {
			return nil, fmt.Errorf("%w: truncated node table", xerrors.ErrCorruptDAWG)
		}
		flags := data[off]
		off++
		edgeCount, n, err := readUvarint(data, off)
		if err != nil {
			return nil, err
		}
		off += n

		edgesOff := uint32(len(g.edges))
		for e := uint64(0); e < edgeCount; e++ {
			ch, n, err := readUvarint(data, off)
			if err != nil {
				return nil, err
			}
			off += n
			target, n, err := readUvarint(data, off)
			if err != nil {
				return nil, err
			}
			off += n
			if target >= nodeCount {
				return nil, fmt.Errorf("%w: transition target %d out of range", xerrors.ErrCorruptDAWG, target)
			}
			if target <= uint64(i) {
				return nil, fmt.Errorf("%w: topological order violated at node %d", xerrors.ErrCorruptDAWG, i)
			}
			g.edges = append(g.edges, flatEdge{ch: ustring.Char(rune(ch)), target: uint32(target)})
		}

		node := flatNode{edgesOff: edgesOff, edgesLen: uint32(edgeCount), final: flags&flagFinal != 0}
		if node.final {
			payOff, n, err := readUvarint(data, off)
			if err != nil {
				return nil, err
			}
			off += n
			payLen, n, err := readUvarint(data, off)
			if err != nil {
				return nil, err
			}
			off += n
			node.payOff = uint32(payOff)
			node.payLen = uint32(payLen)
		}
		g.nodes[i] = node
	}

	payLen, n, err := readUvarint(data, off)
	if err != nil {
		return nil, err
	}
	off += n
	if uint64(off)+payLen > uint64(len(data)) {
		return nil, fmt.Errorf("%w: payload arena truncated", xerrors.ErrCorruptDAWG)
	}
	g.payloads = data[off : uint64(off)+payLen]

	for _, n := range g.nodes {
		if n.final && uint64(n.payOff)+uint64(n.payLen) > uint64(len(g.payloads)) {
			return nil, fmt.Errorf("%w: payload offset out of range", xerrors.ErrCorruptDAWG)
		}
	}

	for i := len(g.nodes) - 1; i >= 0; i-- {
		nd := &g.nodes[i]
		cnt := uint32(0)
		if nd.final {
			cnt = 1
		}
		for _, e := range g.edges[nd.edgesOff : nd.edgesOff+nd.edgesLen] {
			cnt += g.nodes[e.target].wordCnt
		}
		nd.wordCnt = cnt
	}

	return g, nil
}

func readUvarint(data []byte, off int) (uint64, int, error) {
	v, n := binary.Uvarint(data[off:])
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: malformed varint", xerrors.ErrCorruptDAWG)
	}
	return v, n, nil
}
