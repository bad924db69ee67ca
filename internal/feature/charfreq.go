package feature

import (
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

// letterFrequency is a fixed, closed table of approximate relative
// frequencies for the Russian alphabet (share of letter occurrences in
// running text, roughly per published corpus statistics). It is declared
// as explicit (letter, frequency) pairs rather than a map literal with
// repeated-looking keys, specifically to keep every entry visually
// distinct and avoid a duplicate-key typo silently overwriting an entry.
var letterFrequencyTable = []struct {
	letter ustring.Char
	freq   float32
}{
	{'о', 0.1097}, {'е', 0.0845}, {'а', 0.0801}, {'и', 0.0735}, {'н', 0.0670},
	{'т', 0.0626}, {'с', 0.0547}, {'р', 0.0473}, {'в', 0.0454}, {'л', 0.0440},
	{'к', 0.0349}, {'м', 0.0321}, {'д', 0.0298}, {'п', 0.0281}, {'у', 0.0262},
	{'я', 0.0201}, {'ы', 0.0190}, {'ь', 0.0174}, {'г', 0.0170}, {'з', 0.0165},
	{'б', 0.0159}, {'ч', 0.0144}, {'й', 0.0121}, {'х', 0.0097}, {'ж', 0.0094},
	{'ш', 0.0073}, {'ю', 0.0064}, {'ц', 0.0048}, {'щ', 0.0036}, {'э', 0.0032},
	{'ф', 0.0026}, {'ъ', 0.0004}, {'ё', 0.0004},
}

var letterFrequency map[ustring.Char]float32

func init() {
	letterFrequency = make(map[ustring.Char]float32, len(letterFrequencyTable))
	for _, e := range letterFrequencyTable {
		letterFrequency[e.letter] = e.freq
	}
}

// LetterFrequency returns c's prior frequency (case-folded), or 0 for any
// character outside the fixed Russian-alphabet table (digits, punctuation,
// foreign letters).
func LetterFrequency(c ustring.Char) float32 {
	return letterFrequency[c.Lower()]
}

// windowRadius is how many characters on each side of the current
// position are folded into the feature vector (spec §4.6's "surrounding
// 3-char window on both sides").
const windowRadius = 3

// emptyMarker represents a missing context character (the window runs off
// either edge of the word), matching spec §4.6's "missing context
// characters are represented by an empty marker".
const emptyMarker float32 = -1

// morphCategories is the fixed set of MorphInfo categories the winning
// interpretation's tag contributes to the per-character feature vector
// (spec §4.6's "the token's winning MorphInfo").
var morphCategories = [5]tag.Category{
	tag.CategoryPOS, tag.CategoryCase, tag.CategoryGender, tag.CategoryNumber, tag.CategoryTense,
}

// NumCharFeatures is the fixed width of the per-character feature vector
// CharFeatures produces: 7 local features, 2*windowRadius context
// features, one feature per entry in morphCategories, and a trailing
// word-boundary flag.
const NumCharFeatures = 7 + 2*windowRadius + len(morphCategories) + 1

// CharFeatures extracts the segmenter's per-character feature vector for
// the character at index i in word (spec §4.6): identity hash,
// vowel/consonant flag, normalized position, letter-frequency prior,
// prefix-membership indicator, prefix/suffix DAWG cut counts (prefixes and
// suffixes are both optional — pass nil when unavailable, e.g. while
// bootstrapping a dictionary), a surrounding character window, the
// winning interpretation's tag (zero value if the token has none), and a
// flag marking the first and last character of the word.
func CharFeatures(word ustring.String, i int, prefixes, suffixes LookupCounter, winner tag.Tag) []float32 {
	c := word.At(i)
	f := make([]float32, NumCharFeatures)
	f[0] = float32(fnv1a(string(rune(c))) % 997)
	f[1] = boolF(c.IsVowel())
	f[2] = float32(i) / float32(maxInt(word.Len()-1, 1))
	f[3] = LetterFrequency(c)
	if prefixes != nil {
		prefixCount := prefixes.CountPrefix(word.Left(i + 1))
		f[4] = boolF(prefixCount > 0)
		f[5] = float32(prefixCount)
	}
	if suffixes != nil {
		f[6] = float32(suffixes.CountPrefix(reverseSlice(word.Right(word.Len() - i))))
	}

	const windowBase = 7
	slot := 0
	for off := -windowRadius; off <= windowRadius; off++ {
		if off == 0 {
			continue
		}
		j := i + off
		if j < 0 || j >= word.Len() {
			f[windowBase+slot] = emptyMarker
		} else {
			f[windowBase+slot] = float32(fnv1a(string(rune(word.At(j)))) % 997)
		}
		slot++
	}

	morphBase := windowBase + 2*windowRadius
	for k, cat := range morphCategories {
		idx := winner.CategoryIndex(cat)
		if idx < 0 {
			f[morphBase+k] = emptyMarker
			continue
		}
		size := tag.CategorySize(cat)
		if size <= 1 {
			f[morphBase+k] = 0
			continue
		}
		f[morphBase+k] = float32(idx) / float32(size-1)
	}

	f[NumCharFeatures-1] = boolF(i == 0 || i == word.Len()-1)
	return f
}

// LookupCounter is the subset of *dawg.Graph's API the feature encoder
// needs; declared locally so this package does not import internal/dawg
// just for a type it only ever calls one method on.
type LookupCounter interface {
	CountPrefix(key ustring.String) uint32
}

func reverseSlice(s ustring.String) ustring.String {
	out := make(ustring.String, s.Len())
	for i := 0; i < s.Len(); i++ {
		out[i] = s.At(s.Len() - 1 - i)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
