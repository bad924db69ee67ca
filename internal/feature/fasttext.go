// Package feature turns a word (and, for the segmenter, a single
// character within it) into the fixed-width numeric input the neural
// models consume (spec §4.6/§4.7): fastText-style hashed character
// n-grams for the subword embedding table, plus a small set of
// hand-crafted categorical features the corpus's embedding/tokenizer
// examples do not need but a from-scratch morphological model benefits
// from (capitalization pattern, digit/hyphen/punctuation flags, length).
package feature

import "github.com/xmorph/xmorph/internal/ustring"

// SubwordBuckets is the hashed n-gram table size the model's embedding
// layer was trained against. Changing it requires retraining the model,
// so it is a compile-time constant rather than a config option.
const SubwordBuckets = 1 << 16

// MinNgram and MaxNgram bound the character n-gram lengths hashed into the
// subword table, matching fastText's own default window.
const (
	MinNgram = 3
	MaxNgram = 6
)

// boundary brackets a word before n-gram extraction so a prefix n-gram is
// distinguishable from the same n-gram occurring mid-word. It is a control
// codepoint that never appears in normalized Russian text.
const boundary ustring.Char = 1

// HashSubwords returns the hashed bucket id of every character n-gram of
// word, including the word itself as a whole token (fastText always keeps
// the full word as one extra "subword").
func HashSubwords(word ustring.String) []int64 {
	bracketed := make(ustring.String, 0, word.Len()+2)
	bracketed = append(bracketed, boundary)
	bracketed = append(bracketed, word...)
	bracketed = append(bracketed, boundary)

	var ids []int64
	ids = append(ids, int64(fnv1a(word.Runes())%SubwordBuckets))
	for n := MinNgram; n <= MaxNgram; n++ {
		if n > bracketed.Len() {
			break
		}
		for i := 0; i+n <= bracketed.Len(); i++ {
			gram := bracketed.Slice(i, i+n).Runes()
			ids = append(ids, int64(fnv1a(gram)%SubwordBuckets))
		}
	}
	return ids
}

func fnv1a(s string) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// capPattern classifies a word's capitalization, one of the categorical
// signals the POS disambiguator conditions on (a capitalized mid-sentence
// token is far more likely to be a proper noun than the same lowercase
// string).
type capPattern int

const (
	capNone    capPattern = iota // "стол"
	capInitial                   // "Стол"
	capAll                       // "СТОЛ"
	capMixed                     // "СтОл"
)

func classifyCaps(word ustring.String) capPattern {
	if word.Len() == 0 {
		return capNone
	}
	upperCount := 0
	casedCount := 0
	for i := 0; i < word.Len(); i++ {
		c := word.At(i)
		if c.Upper() == c.Lower() {
			continue // not a cased character, e.g. a digit
		}
		casedCount++
		if c == c.Upper() {
			upperCount++
		}
	}
	switch {
	case casedCount == 0 || upperCount == 0:
		return capNone
	case upperCount == casedCount:
		return capAll
	case upperCount == 1 && word.At(0) == word.At(0).Upper():
		return capInitial
	default:
		return capMixed
	}
}

// WordFeatures is the complete model input for one token.
type WordFeatures struct {
	SubwordIDs  []int64
	Categorical []float32
}

// NumCategorical is the fixed width of the Categorical slice EncodeWord
// produces, exported so callers sizing a batch tensor don't need to
// re-derive it from a sample encoding.
const NumCategorical = 8

// EncodeWord extracts the full feature set for word.
func EncodeWord(word ustring.String) WordFeatures {
	pattern := classifyCaps(word)
	hasDigit, hasHyphen, hasPunct := false, false, false
	for i := 0; i < word.Len(); i++ {
		c := word.At(i)
		switch {
		case c.IsDigit():
			hasDigit = true
		case c == '-':
			hasHyphen = true
		case c.IsPunct():
			hasPunct = true
		}
	}

	cat := make([]float32, NumCategorical)
	cat[0] = float32(word.Len())
	cat[1] = boolF(pattern == capNone)
	cat[2] = boolF(pattern == capInitial)
	cat[3] = boolF(pattern == capAll)
	cat[4] = boolF(pattern == capMixed)
	cat[5] = boolF(hasDigit)
	cat[6] = boolF(hasHyphen)
	cat[7] = boolF(hasPunct)

	return WordFeatures{SubwordIDs: HashSubwords(word), Categorical: cat}
}

func boolF(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
