// Package lexicon wires the DAWG and paradigm store together into the
// dictionary-lookup half of analysis (spec §4.3): normalize a word form,
// find it in the main DAWG, and expand its payload into one or more
// (lemma, tag) interpretations by walking the referenced paradigm. Forms
// absent from the DAWG fall through to an injected Guesser (internal/guess)
// — lexicon only depends on the small interface below, not the guesser
// package itself, so the dependency points the natural direction (guess
// depends on lexicon's types, not vice versa).
package lexicon

import (
	"encoding/binary"
	"strings"

	"github.com/xmorph/xmorph/internal/dawg"
	"github.com/xmorph/xmorph/internal/paradigm"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

// MorphInfo names one dictionary cell: the lemma, the paradigm it belongs
// to, and which of that paradigm's forms matched.
type MorphInfo struct {
	LemmaID    uint32
	ParadigmID uint32
	FormIndex  uint32
}

// Interpretation is one fully resolved analysis of a word: its lemma text,
// its grammatical tag, and a relative plausibility score.
type Interpretation struct {
	Lemma ustring.String
	Tag   tag.Tag
	Score float64
	// Guessed is true when this interpretation came from the OOV guesser
	// rather than a direct dictionary hit.
	Guessed bool
}

// Guesser produces interpretations for words absent from the dictionary.
type Guesser interface {
	Guess(word ustring.String) []Interpretation
}

// Dictionary is the read-only, loaded lexicon: a DAWG mapping normalized
// word forms to packed MorphInfo lists, a paradigm table, and a lemma
// string table.
type Dictionary struct {
	Main      *dawg.Graph
	Paradigms *paradigm.Table
	Lemmas    []ustring.String
	Guesser   Guesser
}

// EncodeEntries packs a list of MorphInfo into the byte payload stored at
// a DAWG accepting state: varint count, then per entry three varints
// (LemmaID, ParadigmID, FormIndex).
func EncodeEntries(entries []MorphInfo) []byte {
	buf := appendUvarint(nil, uint64(len(entries)))
	for _, e := range entries {
		buf = appendUvarint(buf, uint64(e.LemmaID))
		buf = appendUvarint(buf, uint64(e.ParadigmID))
		buf = appendUvarint(buf, uint64(e.FormIndex))
	}
	return buf
}

// DecodeEntries is the inverse of EncodeEntries.
func DecodeEntries(data []byte) []MorphInfo {
	off := 0
	count, n := binary.Uvarint(data[off:])
	off += n
	out := make([]MorphInfo, 0, count)
	for i := uint64(0); i < count; i++ {
		lemmaID, n := binary.Uvarint(data[off:])
		off += n
		paradigmID, n := binary.Uvarint(data[off:])
		off += n
		formIdx, n := binary.Uvarint(data[off:])
		off += n
		out = append(out, MorphInfo{LemmaID: uint32(lemmaID), ParadigmID: uint32(paradigmID), FormIndex: uint32(formIdx)})
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

// EncodeLemmas packs the lemma string table: varint count, then per lemma
// a varint byte length followed by its UTF-8 bytes. Lemma index within
// the table is the LemmaID every MorphInfo refers to.
func EncodeLemmas(lemmas []ustring.String) []byte {
	buf := appendUvarint(nil, uint64(len(lemmas)))
	for _, l := range lemmas {
		raw := []byte(l.Runes())
		buf = appendUvarint(buf, uint64(len(raw)))
		buf = append(buf, raw...)
	}
	return buf
}

// DecodeLemmas is the inverse of EncodeLemmas.
func DecodeLemmas(data []byte) []ustring.String {
	off := 0
	count, n := binary.Uvarint(data[off:])
	off += n
	out := make([]ustring.String, 0, count)
	for i := uint64(0); i < count; i++ {
		size, n := binary.Uvarint(data[off:])
		off += n
		out = append(out, ustring.FromRunes(string(data[off:off+int(size)])))
		off += int(size)
	}
	return out
}

// Normalize lowercases and re-decodes word into the ustring.String used as
// the DAWG lookup key. Dictionary keys are always stored lowercased;
// capitalization is a token-level signal handled by the feature encoder,
// not by the dictionary.
func Normalize(word ustring.String) ustring.String {
	return word.Lower()
}

// isCardinal reports whether word is made entirely of decimal digits
// (optionally with internal separators), the NUM bypass class (spec §4.3):
// cardinal numerals never appear in the dictionary but always parse to a
// single NUMR interpretation.
func isCardinal(word ustring.String) bool {
	if word.Len() == 0 {
		return false
	}
	for i := 0; i < word.Len(); i++ {
		c := word.At(i)
		if !c.IsDigit() && c != '.' && c != ',' {
			return false
		}
	}
	return true
}

// isLatin reports whether word contains only Latin letters and digits —
// the LATN bypass class for untransliterated foreign tokens.
func isLatin(word ustring.String) bool {
	hasLetter := false
	for i := 0; i < word.Len(); i++ {
		c := rune(word.At(i))
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return hasLetter
}

// Analyze returns every interpretation of word, deduplicated by
// (lemma, tag) and given a uniform prior split across the surviving
// entries. Dictionary hits always take precedence over the guesser: the
// guesser only runs when the DAWG has nothing at all, including no
// hyphenated-compound split.
func (d *Dictionary) Analyze(word ustring.String) []Interpretation {
	norm := Normalize(word)

	if isCardinal(norm) {
		return []Interpretation{{Lemma: norm, Tag: tag.Parse("NUMR"), Score: 1}}
	}
	if isLatin(norm) {
		return []Interpretation{{Lemma: norm, Tag: tag.Parse("UNKN"), Score: 1}}
	}

	if payload, ok := d.Main.Lookup(norm); ok {
		return d.expand(norm, payload, false)
	}

	if parts := norm.Split('-'); len(parts) == 2 {
		if interps := d.analyzeHyphenated(norm, parts); interps != nil {
			return interps
		}
	}

	if d.Guesser != nil {
		return dedupe(d.Guesser.Guess(norm))
	}
	return nil
}

// analyzeHyphenated handles compounds like "интернет-магазин": if the
// second half is a known dictionary word, inherit its tag set and use the
// first half, a hyphen and the second half's lemma as the lemma, matching how pymorphy-family
// analyzers treat hyphenated compounds.
func (d *Dictionary) analyzeHyphenated(whole ustring.String, parts []ustring.String) []Interpretation {
	head, tail := parts[0], parts[1]
	payload, ok := d.Main.Lookup(tail)
	if !ok {
		return nil
	}
	entries := DecodeEntries(payload)
	out := make([]Interpretation, 0, len(entries))
	for _, e := range entries {
		p, err := d.Paradigms.Get(e.ParadigmID)
		if err != nil || int(e.FormIndex) >= len(p) {
			continue
		}
		lemma := head.Concat(ustring.FromRunes("-")).Concat(d.lemmaText(e.LemmaID))
		out = append(out, Interpretation{Lemma: lemma, Tag: p[e.FormIndex].Tag})
	}
	return dedupe(out)
}

func (d *Dictionary) lemmaText(id uint32) ustring.String {
	if int(id) >= len(d.Lemmas) {
		return nil
	}
	return d.Lemmas[id]
}

func (d *Dictionary) expand(word ustring.String, payload []byte, guessed bool) []Interpretation {
	entries := DecodeEntries(payload)
	out := make([]Interpretation, 0, len(entries))
	for _, e := range entries {
		p, err := d.Paradigms.Get(e.ParadigmID)
		if err != nil || int(e.FormIndex) >= len(p) {
			continue
		}
		out = append(out, Interpretation{
			Lemma:   d.lemmaText(e.LemmaID),
			Tag:     p[e.FormIndex].Tag,
			Guessed: guessed,
		})
	}
	return dedupe(out)
}

// dedupe collapses interpretations that share a (lemma, tag) pair and
// assigns each surviving entry a uniform prior (1/N of total mass).
func dedupe(in []Interpretation) []Interpretation {
	type key struct {
		lemma string
		tag   tag.Tag
	}
	seen := make(map[key]int, len(in))
	var out []Interpretation
	for _, i := range in {
		k := key{lemma: i.Lemma.Runes(), tag: i.Tag}
		if idx, ok := seen[k]; ok {
			out[idx].Guessed = out[idx].Guessed && i.Guessed
			continue
		}
		seen[k] = len(out)
		out = append(out, i)
	}
	if len(out) == 0 {
		return out
	}
	uniform := 1.0 / float64(len(out))
	for i := range out {
		out[i].Score = uniform
	}
	return out
}

// JoinLemma joins parts with "-", the same separator Analyze's hyphen
// handling uses, for callers assembling a hyphenated lemma string for
// display.
func JoinLemma(parts ...string) string {
	return strings.Join(parts, "-")
}
