// Package disambig selects one interpretation per token from a sentence's
// candidate analyses, using sentence context the way a CRF-style tagger
// does — run a model over the whole token sequence, then pick the
// candidate interpretation whose tag the model scores highest, rather
// than judging each word in isolation (spec §4.7).
package disambig

import (
	"math"

	"github.com/xmorph/xmorph/internal/feature"
	"github.com/xmorph/xmorph/internal/lexicon"
	"github.com/xmorph/xmorph/internal/model"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

// Vocabulary maps the model's fixed output label indices to concrete
// tags. It is loaded from the dictionary build's vocabulary side-file and
// must match the model file it shipped with — a mismatch is exactly what
// xerrors.ErrVocabMismatch guards against at load time, upstream of this
// package.
type Vocabulary []tag.Tag

// IndexOf returns the label index for t, or -1 if t is not a known
// disambiguation-vocabulary tag (which happens for tags only ever
// produced by the guesser, never by the training corpus).
func (v Vocabulary) IndexOf(t tag.Tag) int {
	for i, vt := range v {
		if vt.Equal(t) {
			return i
		}
	}
	return -1
}

// Disambiguator resolves one-per-token interpretations for a sentence.
type Disambiguator struct {
	runner model.Runner
	vocab  Vocabulary
}

// New returns a Disambiguator backed by runner and vocab. runner's
// NumLabels() must equal len(vocab).
func New(runner model.Runner, vocab Vocabulary) *Disambiguator {
	return &Disambiguator{runner: runner, vocab: vocab}
}

// Resolve picks one interpretation per token. candidates[i] holds token
// i's dictionary/guesser candidates (already deduplicated by lexicon);
// words[i] is the token's surface form, used for feature extraction.
// A token with zero candidates gets an UNKN placeholder, never a crash —
// an empty interpretation list is a legitimate analysis result (spec
// §7's EmptyInterpretation), not an error.
func (d *Disambiguator) Resolve(words []ustring.String, candidates [][]lexicon.Interpretation) ([]lexicon.Interpretation, error) {
	out := make([]lexicon.Interpretation, len(words))
	if len(words) == 0 {
		return out, nil
	}

	subwordIDs := make([][]int64, len(words))
	categorical := make([][]float32, len(words))
	for i, w := range words {
		f := encodeWord(w)
		subwordIDs[i] = f.ids
		categorical[i] = f.cat
	}

	scores, err := d.runner.Run(subwordIDs, categorical)
	if err != nil {
		return nil, err
	}

	for i, cands := range candidates {
		if len(cands) == 0 {
			out[i] = lexicon.Interpretation{Tag: tag.Parse("UNKN")}
			continue
		}
		out[i] = pickBest(cands, scoresFor(scores, i, len(d.vocab)), d.vocab)
	}
	return out, nil
}

func scoresFor(scores [][]float32, i, width int) []float32 {
	if i < len(scores) {
		return scores[i]
	}
	return make([]float32, width)
}

// pickBest implements spec §4.7's two-phase selection: intersect cands
// with the disambiguation vocabulary, argmax the model's softmax-
// normalized score within that intersection, and only fall back to the
// dictionary's own unigram-weighted argmax over every candidate when the
// intersection is empty (happens only for guesser-only tags the model
// never trained on). Mixing the two scales in one comparison would let an
// out-of-vocabulary candidate's raw prior outrank an in-vocabulary
// candidate's real model score, which is exactly the bug this two-phase
// shape avoids. Ties are broken first by the higher dictionary-assigned
// score, then lexicographically by tag, for determinism.
func pickBest(cands []lexicon.Interpretation, modelScores []float32, vocab Vocabulary) lexicon.Interpretation {
	var inVocab []int
	for i, c := range cands {
		if idx := vocab.IndexOf(c.Tag); idx >= 0 && idx < len(modelScores) {
			inVocab = append(inVocab, i)
		}
	}

	if len(inVocab) == 0 {
		return pickByPrior(cands)
	}

	weights := softmax(modelScores)
	best := inVocab[0]
	bestWeight := weights[vocab.IndexOf(cands[best].Tag)]
	for _, i := range inVocab[1:] {
		w := weights[vocab.IndexOf(cands[i].Tag)]
		if w > bestWeight || (w == bestWeight && less(cands[i], cands[best])) {
			best, bestWeight = i, w
		}
	}

	result := cands[best]
	result.Score = bestWeight
	return result
}

// pickByPrior is the fallback path: argmax over every candidate's own
// dictionary-assigned score, renormalized across the candidate set.
func pickByPrior(cands []lexicon.Interpretation) lexicon.Interpretation {
	var total float64
	best := 0
	for i, c := range cands {
		total += c.Score
		if c.Score > cands[best].Score || (c.Score == cands[best].Score && less(cands[i], cands[best])) {
			best = i
		}
	}
	result := cands[best]
	if total > 0 {
		result.Score = cands[best].Score / total
	}
	return result
}

// less breaks a score tie by dictionary frequency (the higher Score wins),
// then by lexicographic tag order, matching spec §4.7.
func less(a, b lexicon.Interpretation) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Tag.String() < b.Tag.String()
}

// softmax normalizes scores into a probability distribution, shifting by
// the max first for numerical stability.
func softmax(scores []float32) []float64 {
	maxScore := float32(math.Inf(-1))
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		v := math.Exp(float64(s - maxScore))
		out[i] = v
		sum += v
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

type encodedWord struct {
	ids []int64
	cat []float32
}

func encodeWord(w ustring.String) encodedWord {
	f := feature.EncodeWord(w)
	return encodedWord{ids: f.SubwordIDs, cat: f.Categorical}
}
