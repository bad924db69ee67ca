// Package tag implements the morphological tag bitset: a composite of
// orthogonal grammeme categories (part of speech, case, gender, ...) packed
// into a fixed-width bitset so that equality, union and the subsumption
// relation used by synthesis are all plain bitwise operations.
package tag

import "strings"

// Grammeme identifies a single grammatical feature value, e.g. "nomn" or
// "masc". Grammeme values are small integers assigned by category; bitIndex
// returns the position of a grammeme within a Tag's bitset.
type Grammeme uint8

// Category groups grammemes that are mutually exclusive within a single Tag
// (a word has exactly one case, but possibly zero genders if it has none).
type Category uint8

const (
	CategoryPOS Category = iota
	CategoryCase
	CategoryGender
	CategoryNumber
	CategoryTense
	CategoryPerson
	CategoryAspect
	CategoryMood
	CategoryVoice
	CategoryAnimacy
	CategoryTransitivity
	categoryCount
)

// Part-of-speech grammemes.
const (
	NOUN Grammeme = iota
	ADJF
	ADJS
	COMP
	VERB
	INFN
	PRTF
	PRTS
	GRND
	NUMR
	ADVB
	NPRO
	PRED
	PREP
	CONJ
	PRCL
	INTJ
	UNKN
	posCount
)

// Case grammemes.
const (
	Nomn Grammeme = iota
	Gent
	Datv
	Accs
	Ablt
	Loct
	Voct
	Gen2
	Acc2
	Loc2
	caseCount
)

// Gender grammemes.
const (
	Masc Grammeme = iota
	Femn
	Neut
	MsF
	genderCount
)

// Number grammemes.
const (
	Sing Grammeme = iota
	Plur
	numberCount
)

// Tense grammemes.
const (
	Pres Grammeme = iota
	Past
	Futr
	tenseCount
)

// Person grammemes.
const (
	Per1 Grammeme = iota
	Per2
	Per3
	personCount
)

// Aspect grammemes.
const (
	Perf Grammeme = iota
	Impf
	aspectCount
)

// Mood grammemes.
const (
	Indc Grammeme = iota
	Impr
	moodCount
)

// Voice grammemes.
const (
	Actv Grammeme = iota
	Pssv
	voiceCount
)

// Animacy grammemes.
const (
	Anim Grammeme = iota
	Inan
	animacyCount
)

// Transitivity grammemes.
const (
	Tran Grammeme = iota
	Intr
	Labl
	transCount
)

var categorySize = [categoryCount]int{
	CategoryPOS:           int(posCount),
	CategoryCase:          int(caseCount),
	CategoryGender:        int(genderCount),
	CategoryNumber:        int(numberCount),
	CategoryTense:         int(tenseCount),
	CategoryPerson:        int(personCount),
	CategoryAspect:        int(aspectCount),
	CategoryMood:          int(moodCount),
	CategoryVoice:         int(voiceCount),
	CategoryAnimacy:       int(animacyCount),
	CategoryTransitivity:  int(transCount),
}

var categoryOffset [categoryCount]int

func init() {
	off := 0
	for c := Category(0); c < categoryCount; c++ {
		categoryOffset[c] = off
		off += categorySize[c]
	}
	if off > 3*64 {
		panic("tag: grammeme space exceeds bitset width")
	}
}

// Tag is a bitset over every grammeme in every category, ANDed/ORed as a
// whole. Zero value is the empty tag (no grammemes set).
type Tag [3]uint64

func bitIndex(c Category, g Grammeme) int {
	return categoryOffset[c] + int(g)
}

// With returns a copy of t with the grammeme (c, g) set.
func (t Tag) With(c Category, g Grammeme) Tag {
	idx := bitIndex(c, g)
	t[idx/64] |= 1 << uint(idx%64)
	return t
}

// Has reports whether (c, g) is set in t.
func (t Tag) Has(c Category, g Grammeme) bool {
	idx := bitIndex(c, g)
	return t[idx/64]&(1<<uint(idx%64)) != 0
}

// Union returns the bitwise OR of a and b — composing orthogonal grammemes
// from different categories into one tag.
func (a Tag) Union(b Tag) Tag {
	return Tag{a[0] | b[0], a[1] | b[1], a[2] | b[2]}
}

// Equal reports bit-exact equality.
func (a Tag) Equal(b Tag) bool {
	return a == b
}

// Subsumes reports whether bits(a) ⊆ bits(b): every grammeme set in a is
// also set in b. Used by synthesis to match a (possibly partial) target tag
// against a fully specified paradigm-form tag.
func (a Tag) Subsumes(b Tag) bool {
	return a[0]&^b[0] == 0 && a[1]&^b[1] == 0 && a[2]&^b[2] == 0
}

// IsZero reports whether no grammeme at all is set.
func (t Tag) IsZero() bool {
	return t == Tag{}
}

// CategoryIndex returns the grammeme index set within category c, or -1 if
// none is set. Categories are mutually exclusive by construction, so at
// most one grammeme per category is ever set on a well-formed Tag.
func (t Tag) CategoryIndex(c Category) int {
	for g := 0; g < categorySize[c]; g++ {
		if t.Has(c, Grammeme(g)) {
			return g
		}
	}
	return -1
}

// CategorySize returns how many grammeme values category c has, for
// normalizing a CategoryIndex result to [0, 1].
func CategorySize(c Category) int {
	return categorySize[c]
}

// Words exposes t's raw [3]uint64 backing words, for packed serialization
// by internal/paradigm.
func (t Tag) Words() [3]uint64 {
	return t
}

// FromWords reconstructs a Tag from the raw words produced by Words.
func FromWords(words [3]uint64) Tag {
	return Tag(words)
}

var posNames = map[string]Grammeme{
	"NOUN": NOUN, "ADJF": ADJF, "ADJS": ADJS, "COMP": COMP, "VERB": VERB,
	"INFN": INFN, "PRTF": PRTF, "PRTS": PRTS, "GRND": GRND, "NUMR": NUMR,
	"ADVB": ADVB, "NPRO": NPRO, "PRED": PRED, "PREP": PREP, "CONJ": CONJ,
	"PRCL": PRCL, "INTJ": INTJ, "UNKN": UNKN,
}

var caseNames = map[string]Grammeme{
	"nomn": Nomn, "gent": Gent, "datv": Datv, "accs": Accs, "ablt": Ablt,
	"loct": Loct, "voct": Voct, "gen2": Gen2, "acc2": Acc2, "loc2": Loc2,
}

var genderNames = map[string]Grammeme{"masc": Masc, "femn": Femn, "neut": Neut, "ms-f": MsF}
var numberNames = map[string]Grammeme{"sing": Sing, "plur": Plur}
var tenseNames = map[string]Grammeme{"pres": Pres, "past": Past, "futr": Futr}
var personNames = map[string]Grammeme{"1per": Per1, "2per": Per2, "3per": Per3}
var aspectNames = map[string]Grammeme{"perf": Perf, "impf": Impf}
var moodNames = map[string]Grammeme{"indc": Indc, "impr": Impr}
var voiceNames = map[string]Grammeme{"actv": Actv, "pssv": Pssv}
var animacyNames = map[string]Grammeme{"anim": Anim, "inan": Inan}
var transNames = map[string]Grammeme{"tran": Tran, "intr": Intr, "labl": Labl}

var categoryTables = []struct {
	cat   Category
	names map[string]Grammeme
}{
	{CategoryPOS, posNames},
	{CategoryCase, caseNames},
	{CategoryGender, genderNames},
	{CategoryNumber, numberNames},
	{CategoryTense, tenseNames},
	{CategoryPerson, personNames},
	{CategoryAspect, aspectNames},
	{CategoryMood, moodNames},
	{CategoryVoice, voiceNames},
	{CategoryAnimacy, animacyNames},
	{CategoryTransitivity, transNames},
}

// Parse builds a Tag from a comma-separated grammeme string such as
// "NOUN,anim,masc,sing,nomn". Unknown tokens are ignored rather than
// rejected — the dictionary builder is authoritative on which grammeme
// strings are valid; Parse is permissive so callers can feed tag strings
// from older or partial dictionaries without failing outright.
func Parse(s string) Tag {
	var t Tag
	for _, raw := range strings.Split(s, ",") {
		g := strings.TrimSpace(raw)
		if g == "" {
			continue
		}
		for _, tbl := range categoryTables {
			if gr, ok := tbl.names[g]; ok {
				t = t.With(tbl.cat, gr)
				break
			}
		}
	}
	return t
}

var posReverse = reverseMap(posNames)
var caseReverse = reverseMap(caseNames)
var genderReverse = reverseMap(genderNames)
var numberReverse = reverseMap(numberNames)
var tenseReverse = reverseMap(tenseNames)
var personReverse = reverseMap(personNames)
var aspectReverse = reverseMap(aspectNames)
var moodReverse = reverseMap(moodNames)
var voiceReverse = reverseMap(voiceNames)
var animacyReverse = reverseMap(animacyNames)
var transReverse = reverseMap(transNames)

func reverseMap(m map[string]Grammeme) map[Grammeme]string {
	r := make(map[Grammeme]string, len(m))
	for k, v := range m {
		r[v] = k
	}
	return r
}

// String renders t back into the same comma-separated form Parse accepts,
// in category order, for debugging and for the TSV CLI output.
func (t Tag) String() string {
	var parts []string
	add := func(cat Category, count int, rev map[Grammeme]string) {
		for g := 0; g < count; g++ {
			if t.Has(cat, Grammeme(g)) {
				parts = append(parts, rev[Grammeme(g)])
			}
		}
	}
	add(CategoryPOS, int(posCount), posReverse)
	add(CategoryAnimacy, int(animacyCount), animacyReverse)
	add(CategoryGender, int(genderCount), genderReverse)
	add(CategoryNumber, int(numberCount), numberReverse)
	add(CategoryCase, int(caseCount), caseReverse)
	add(CategoryAspect, int(aspectCount), aspectReverse)
	add(CategoryTransitivity, int(transCount), transReverse)
	add(CategoryPerson, int(personCount), personReverse)
	add(CategoryTense, int(tenseCount), tenseReverse)
	add(CategoryMood, int(moodCount), moodReverse)
	add(CategoryVoice, int(voiceCount), voiceReverse)
	return strings.Join(parts, ",")
}
