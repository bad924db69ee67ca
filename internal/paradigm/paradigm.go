// Package paradigm implements the packed inflection-paradigm table (spec
// §4.2): for each paradigm, an ordered array of (tag, transform) records,
// where a transform rewrites a lemma into one surface form by cutting a
// fixed number of trailing characters and appending a replacement
// suffix — the same (prefix-cut, suffix-replacement) scheme
// vbatushev-morph's loadParadigms/prefixSuffixTag uses, generalized from
// strings to tag.Tag-keyed records and widened with an optional prefix
// replacement so compound/derived forms with a changed prefix (rare but
// present in Russian comparative/superlative formation) are representable
// too.
package paradigm

import (
	"encoding/binary"
	"fmt"

	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
	"github.com/xmorph/xmorph/internal/xerrors"
)

// Transform rewrites a lemma into a surface form: drop CutPrefix characters
// from the front and CutSuffix characters from the back, then glue
// AddPrefix and AddSuffix onto what remains.
type Transform struct {
	CutPrefix int
	CutSuffix int
	AddPrefix ustring.String
	AddSuffix ustring.String
}

// Apply rewrites lemma according to t.
func (t Transform) Apply(lemma ustring.String) ustring.String {
	body := lemma.CutLeft(t.CutPrefix).CutRight(t.CutSuffix)
	return t.AddPrefix.Concat(body).Concat(t.AddSuffix)
}

// Invert undoes the affix half of Apply: given a surface form produced by
// Apply(base, t), it returns base with AddPrefix/AddSuffix stripped back
// off. It only succeeds when t cut nothing off base (CutPrefix and
// CutSuffix are both zero) — those characters are gone from form and
// cannot be recovered from the form alone, so Invert reports false rather
// than guessing at them. Callers that need to cross from one paradigm
// cell to another (guess.guessLemma, say) rely on this to recover the
// shared stem both cells were built from.
func (t Transform) Invert(form ustring.String) (ustring.String, bool) {
	if t.CutPrefix != 0 || t.CutSuffix != 0 {
		return nil, false
	}
	if !form.HasPrefix(t.AddPrefix) || !form.HasSuffix(t.AddSuffix) {
		return nil, false
	}
	return form.CutLeft(t.AddPrefix.Len()).CutRight(t.AddSuffix.Len()), true
}

// Record is one cell of a paradigm: the grammatical tag produced by
// applying Transform to the paradigm's lemma.
type Record struct {
	Tag       tag.Tag
	Transform Transform
}

// Paradigm is an ordered list of Records. Index 0 is always the lemma's
// own (identity) cell by convention — Apply at index 0 must reproduce the
// lemma unchanged.
type Paradigm []Record

// FormAt applies the paradigm's i'th transform to lemma.
func (p Paradigm) FormAt(lemma ustring.String, i int) ustring.String {
	return p[i].Transform.Apply(lemma)
}

// IndexOf returns the first record index whose tag equals want, or -1.
func (p Paradigm) IndexOf(want tag.Tag) int {
	for i, r := range p {
		if r.Tag.Equal(want) {
			return i
		}
	}
	return -1
}

// Table is the full, loaded paradigm store: every paradigm the dictionary
// references, indexed by ParadigmID.
type Table struct {
	paradigms []Paradigm
}

// Get returns the paradigm stored at id.
func (t *Table) Get(id uint32) (Paradigm, error) {
	if int(id) >= len(t.paradigms) {
		return nil, fmt.Errorf("%w: paradigm id %d out of range", xerrors.ErrCorruptDAWG, id)
	}
	return t.paradigms[id], nil
}

// Len reports how many paradigms the table holds.
func (t *Table) Len() int { return len(t.paradigms) }

// Builder accumulates paradigms for serialization.
type Builder struct {
	paradigms []Paradigm
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Add appends p and returns its assigned ParadigmID.
func (b *Builder) Add(p Paradigm) uint32 {
	b.paradigms = append(b.paradigms, p)
	return uint32(len(b.paradigms) - 1)
}

// Build returns the finished, queryable Table and its serialized form.
//
// Wire format: varint paradigm count, then per paradigm a varint record
// count followed by records of (tag as 3 little-endian uint64 words,
// varint cut-prefix, varint cut-suffix, varint add-prefix rune count +
// runes as varints, varint add-suffix rune count + runes as varints).
func (b *Builder) Build() (*Table, []byte) {
	buf := appendUvarint(nil, uint64(len(b.paradigms)))
	for _, p := range b.paradigms {
		buf = appendUvarint(buf, uint64(len(p)))
		for _, r := range p {
			words := r.Tag.Words()
			for _, w := range words {
				var tmp [8]byte
				binary.LittleEndian.PutUint64(tmp[:], w)
				buf = append(buf, tmp[:]...)
			}
			buf = appendUvarint(buf, uint64(r.Transform.CutPrefix))
			buf = appendUvarint(buf, uint64(r.Transform.CutSuffix))
			buf = appendUvarintString(buf, r.Transform.AddPrefix)
			buf = appendUvarintString(buf, r.Transform.AddSuffix)
		}
	}
	return &Table{paradigms: append([]Paradigm(nil), b.paradigms...)}, buf
}

func appendUvarintString(buf []byte, s ustring.String) []byte {
	buf = appendUvarint(buf, uint64(s.Len()))
	for i := 0; i < s.Len(); i++ {
		buf = appendUvarint(buf, uint64(s.At(i)))
	}
	return buf
}

func appendUvarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}
	return append(b, byte(v))
}

// Load parses a Table from bytes produced by Builder.Build.
func Load(data []byte) (*Table, error) {
	off := 0
	count, n, err := readUvarint(data, off)
	if err != nil {
		return nil, err
	}
	off += n

	t := &Table{paradigms: make([]Paradigm, count)}
	for pi := uint64(0); pi < count; pi++ {
		recCount, n, err := readUvarint(data, off)
		if err != nil {
			return nil, err
		}
		off += n
		p := make(Paradigm, recCount)
		for ri := uint64(0); ri < recCount; ri++ {
			if off+24 > len(data) {
				return nil, fmt.Errorf("%w: truncated paradigm table", xerrors.ErrCorruptDAWG)
			}
			var words [3]uint64
			for w := 0; w < 3; w++ {
				words[w] = binary.LittleEndian.Uint64(data[off:])
				off += 8
			}
			cutPrefix, n, err := readUvarint(data, off)
			if err != nil {
				return nil, err
			}
			off += n
			cutSuffix, n, err := readUvarint(data, off)
			if err != nil {
				return nil, err
			}
			off += n
			addPrefix, n, err := readUvarintString(data, off)
			if err != nil {
				return nil, err
			}
			off += n
			addSuffix, n, err := readUvarintString(data, off)
			if err != nil {
				return nil, err
			}
			off += n
			p[ri] = Record{
				Tag: tag.FromWords(words),
				Transform: Transform{
					CutPrefix: int(cutPrefix),
					CutSuffix: int(cutSuffix),
					AddPrefix: addPrefix,
					AddSuffix: addSuffix,
				},
			}
		}
		t.paradigms[pi] = p
	}
	return t, nil
}

func readUvarintString(data []byte, off int) (ustring.String, int, error) {
	start := off
	count, n, err := readUvarint(data, off)
	if err != nil {
		return nil, 0, err
	}
	off += n
	s := make(ustring.String, count)
	for i := uint64(0); i < count; i++ {
		v, n, err := readUvarint(data, off)
		if err != nil {
			return nil, 0, err
		}
		off += n
		s[i] = ustring.Char(rune(v))
	}
	return s, off - start, nil
}

func readUvarint(data []byte, off int) (uint64, int, error) {
	v, n := binary.Uvarint(data[off:])
	if n <= 0 {
		return 0, 0, fmt.Errorf("%w: malformed varint in paradigm table", xerrors.ErrCorruptDAWG)
	}
	return v, n, nil
}
