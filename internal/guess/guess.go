// Package guess predicts interpretations for words absent from the
// dictionary, using a reversed-suffix DAWG the way the teacher's
// findBestPrediction does (progressively shorter suffixes, 5 characters
// down to 1, first hit wins), partitioned into upper/lower/dash/cardinal
// classes the way citar's SuffixHandler partitions its training data —
// capitalized tokens, hyphenated tokens and cardinal-looking tokens
// predict from separate suffix statistics than ordinary lowercase words,
// since their productive endings differ.
package guess

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"sort"

	"github.com/xmorph/xmorph/internal/dawg"
	"github.com/xmorph/xmorph/internal/lexicon"
	"github.com/xmorph/xmorph/internal/paradigm"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

// MaxSuffixLen bounds how many trailing characters are indexed and
// queried; beyond this depth the productive-suffix signal is too sparse
// to be useful, matching the teacher's own 5-character cap.
const MaxSuffixLen = 5

// class partitions OOV tokens by surface shape, mirroring citar's four
// training buckets.
type class int

const (
	classLower class = iota
	classUpper
	classDash
	classCardinal
	classCount
)

var cardinalPattern = regexp.MustCompile(`^[0-9]+([.,][0-9]+)?$`)

func classify(word ustring.String) class {
	if word.Len() == 0 {
		return classLower
	}
	if cardinalPattern.MatchString(word.Runes()) {
		return classCardinal
	}
	for i := 0; i < word.Len(); i++ {
		if word.At(i) == '-' {
			return classDash
		}
	}
	if word.At(0).Upper() == word.At(0) && word.At(0) != word.At(0).Lower() {
		return classUpper
	}
	return classLower
}

// Entry is one candidate this package's suffix index stores: the tag a
// matching word-ending predicts, the paradigm cell it came from (for
// lemma reconstruction), and how many training words ended in this
// suffix with this tag.
type Entry struct {
	Tag        tag.Tag
	ParadigmID uint32
	FormIndex  uint32
	Freq       uint32
}

// EncodeEntries packs suffix-index payload bytes for one reversed-suffix
// key: varint count, then per entry (3x8 tag words, varint paradigmID,
// varint formIndex, varint freq).
func EncodeEntries(entries []Entry) []byte {
	buf := appendUvarint(nil, uint64(len(entries)))
	for _, e := range entries {
		words := e.Tag.Words()
		for _, w := range words {
			var tmp [8]byte
			binary.LittleEndian.PutUint64(tmp[:], w)
			buf = append(buf, tmp[:]...)
		}
		buf = appendUvarint(buf, uint64(e.ParadigmID))
		buf = appendUvarint(buf, uint64(e.FormIndex))
		buf = appendUvarint(buf, uint64(e.Freq))
	}
	return buf
}

// DecodeEntries is the inverse of EncodeEntries.
func DecodeEntries(data []byte) []Entry {
	off := 0
	count, n := binary.Uvarint(data[off:])
	off += n
	out := make([]Entry, 0, count)
	for i := uint64(0); i < count; i++ {
		var words [3]uint64
		for w := 0; w < 3; w++ {
			words[w] = binary.LittleEndian.Uint64(data[off:])
			off += 8
		}
		paradigmID, n := binary.Uvarint(data[off:])
		off += n
		formIdx, n := binary.Uvarint(data[off:])
		off += n
		freq, n := binary.Uvarint(data[off:])
		off += n
		out = append(out, Entry{Tag: tag.FromWords(words), ParadigmID: uint32(paradigmID), FormIndex: uint32(formIdx), Freq: uint32(freq)})
	}
	return out
}

func appendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// Guesser implements lexicon.Guesser over four class-partitioned reversed
// suffix DAWGs.
type Guesser struct {
	trees     [classCount]*dawg.Graph
	paradigms *paradigm.Table
	maxTags   int
}

// DefaultMaxTags is the top-K cutoff New falls back to when given
// maxTags <= 0, matching spec §4.5's "top-K (default 5)".
const DefaultMaxTags = 5

// New returns a Guesser backed by per-class suffix graphs built with
// Builder. A nil tree for a class is treated as "no predictions for this
// class" rather than an error — a freshly trained dictionary may simply
// have no cardinal-class training data, say.
func New(trees [classCount]*dawg.Graph, paradigms *paradigm.Table, maxTags int) *Guesser {
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &Guesser{trees: trees, paradigms: paradigms, maxTags: maxTags}
}

// LowerClassSuffixes returns the lowercase-class tree from a class-
// partitioned array as returned by Build/UnpackTrees, for callers (the
// segmenter's feature encoder) that want one representative suffix
// dictionary rather than the guesser's full four-way partition.
func LowerClassSuffixes(trees [classCount]*dawg.Graph) *dawg.Graph {
	return trees[classLower]
}

// Guess implements lexicon.Guesser.
func (g *Guesser) Guess(word ustring.String) []lexicon.Interpretation {
	c := classify(word)
	graph := g.trees[c]
	if graph == nil {
		graph = g.trees[classLower]
	}
	if graph == nil {
		return nil
	}

	reversed := reverse(word)
	maxLen := MaxSuffixLen
	if reversed.Len() < maxLen {
		maxLen = reversed.Len()
	}
	for l := maxLen; l >= 1; l-- {
		payload, ok := graph.Lookup(reversed.Left(l))
		if !ok {
			continue
		}
		entries := DecodeEntries(payload)
		if len(entries) == 0 {
			continue
		}
		return g.toInterpretations(word, entries)
	}
	return nil
}

func (g *Guesser) toInterpretations(word ustring.String, entries []Entry) []lexicon.Interpretation {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Freq > entries[j].Freq })
	if len(entries) > g.maxTags {
		entries = entries[:g.maxTags]
	}

	var total uint32
	for _, e := range entries {
		total += e.Freq
	}
	if total == 0 {
		total = uint32(len(entries))
	}

	out := make([]lexicon.Interpretation, 0, len(entries))
	for _, e := range entries {
		lemma := g.guessLemma(word, e)
		score := 1.0 / float64(len(entries))
		if e.Freq > 0 {
			score = float64(e.Freq) / float64(total)
		}
		out = append(out, lexicon.Interpretation{Lemma: lemma, Tag: e.Tag, Score: score, Guessed: true})
	}
	return out
}

// guessLemma reconstructs a predicted citation form from the OOV word
// itself: it swaps the matched cell's affixes for the paradigm's lemma
// (index 0) affixes. This only holds when neither cell trims characters
// off the stem beyond its own affix (CutPrefix/CutSuffix both zero); when
// either cell has a nonzero cut, the OOV word itself is returned as the
// lemma guess.
func (g *Guesser) guessLemma(word ustring.String, e Entry) ustring.String {
	p, err := g.paradigms.Get(e.ParadigmID)
	if err != nil || int(e.FormIndex) >= len(p) {
		return word
	}
	lemmaCell := p[0].Transform
	if lemmaCell.CutPrefix != 0 || lemmaCell.CutSuffix != 0 {
		return word
	}
	stem, ok := p[e.FormIndex].Transform.Invert(word)
	if !ok {
		return word
	}
	return lemmaCell.AddPrefix.Concat(stem).Concat(lemmaCell.AddSuffix)
}

func reverse(s ustring.String) ustring.String {
	out := make(ustring.String, s.Len())
	for i := 0; i < s.Len(); i++ {
		out[i] = s.At(s.Len() - 1 - i)
	}
	return out
}

// Builder accumulates (word, paradigm cell) training examples per class
// and emits the four reversed-suffix DAWGs New expects.
type Builder struct {
	byClass [classCount]map[string][]Entry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	b := &Builder{}
	for i := range b.byClass {
		b.byClass[i] = make(map[string][]Entry)
	}
	return b
}

// Add records that word (a known dictionary form) realizes paradigm
// cell (paradigmID, formIndex) with the given corpus frequency, indexing
// it under every suffix length from 1 up to MaxSuffixLen.
func (b *Builder) Add(word ustring.String, t tag.Tag, paradigmID, formIndex uint32, freq uint32) {
	c := classify(word)
	reversed := reverse(word)
	maxLen := MaxSuffixLen
	if reversed.Len() < maxLen {
		maxLen = reversed.Len()
	}
	for l := 1; l <= maxLen; l++ {
		key := reversed.Left(l).Runes()
		b.byClass[c][key] = append(b.byClass[c][key], Entry{Tag: t, ParadigmID: paradigmID, FormIndex: formIndex, Freq: freq})
	}
}

// Build emits one finished dawg.Graph per class (nil where a class saw no
// training data).
func (b *Builder) Build() ([classCount]*dawg.Graph, error) {
	graphs, _, err := b.build()
	return graphs, err
}

// BuildBlobs is Build, but also returns each class graph's serialized
// form (nil where a class saw no training data) so a builder command can
// pack them into a dictionary container without re-deriving the bytes
// from the loaded Graph.
func (b *Builder) BuildBlobs() ([classCount]*dawg.Graph, [classCount][]byte, error) {
	return b.build()
}

func (b *Builder) build() ([classCount]*dawg.Graph, [classCount][]byte, error) {
	var graphs [classCount]*dawg.Graph
	var blobs [classCount][]byte
	for c := range b.byClass {
		if len(b.byClass[c]) == 0 {
			continue
		}
		keys := make([]string, 0, len(b.byClass[c]))
		for k := range b.byClass[c] {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		builder := dawg.NewBuilder()
		for _, k := range keys {
			merged := mergeEntries(b.byClass[c][k])
			if err := builder.Insert(ustring.FromRunes(k), EncodeEntries(merged)); err != nil {
				return graphs, blobs, err
			}
		}
		g, blob, err := builder.Finalize()
		if err != nil {
			return graphs, blobs, err
		}
		graphs[c] = g
		blobs[c] = blob
	}
	return graphs, blobs, nil
}

// PackTrees concatenates up to classCount class-graph blobs (as produced
// by BuildBlobs) into one section payload: a varint count followed by
// per-tree (varint length, bytes) pairs, empty trees stored as
// zero-length. This is the format internal/dictfile's suffix-DAWG section
// holds, since a dictionary container has only one blob slot for what is
// internally four class-partitioned graphs.
func PackTrees(blobs [classCount][]byte) []byte {
	out := appendUvarint(nil, uint64(classCount))
	for _, b := range blobs {
		out = appendUvarint(out, uint64(len(b)))
		out = append(out, b...)
	}
	return out
}

// UnpackTrees is the inverse of PackTrees, loading each non-empty blob
// back into a dawg.Graph.
func UnpackTrees(data []byte) ([classCount]*dawg.Graph, error) {
	var out [classCount]*dawg.Graph
	off := 0
	count, n, err := readUvarintAt(data, off)
	if err != nil {
		return out, err
	}
	off += n
	for i := uint64(0); i < count && i < classCount; i++ {
		length, n, err := readUvarintAt(data, off)
		if err != nil {
			return out, err
		}
		off += n
		if length == 0 {
			continue
		}
		if off+int(length) > len(data) {
			return out, fmt.Errorf("guess: truncated suffix tree %d", i)
		}
		g, err := dawg.Load(data[off : off+int(length)])
		if err != nil {
			return out, err
		}
		out[i] = g
		off += int(length)
	}
	return out, nil
}

func readUvarintAt(data []byte, off int) (uint64, int, error) {
	v, n := binary.Uvarint(data[off:])
	if n <= 0 {
		return 0, 0, fmt.Errorf("guess: malformed varint in packed suffix trees")
	}
	return v, n, nil
}

// mergeEntries collapses repeated (tag, paradigm cell) observations into
// one entry with the summed frequency.
func mergeEntries(entries []Entry) []Entry {
	type key struct {
		tag        tag.Tag
		paradigmID uint32
		formIndex  uint32
	}
	byKey := make(map[key]uint32, len(entries))
	order := make([]key, 0, len(entries))
	for _, e := range entries {
		k := key{e.Tag, e.ParadigmID, e.FormIndex}
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] += e.Freq
	}
	out := make([]Entry, 0, len(order))
	for _, k := range order {
		out = append(out, Entry{Tag: k.tag, ParadigmID: k.paradigmID, FormIndex: k.formIndex, Freq: byKey[k]})
	}
	return out
}
