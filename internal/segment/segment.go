// Package segment splits a word form into PREFIX/ROOT/SUFFIX/ENDING
// morpheme cells (spec §4.8), one label per character, predicted by a
// per-character neural classifier and then repaired against the
// structural constraint every legal Russian word form satisfies:
// PREFIX* ROOT+ SUFFIX* ENDING*. A raw per-character argmax frequently
// produces a single out-of-place label (one ENDING-tagged letter in the
// middle of a SUFFIX run, say); Repair nudges exactly those deviations
// back into the nearest legal sequence instead of rejecting the whole
// word, with UNKN as the last-resort fallback when no legal sequence is
// recoverable at all (e.g. the model found no ROOT whatsoever).
package segment

import (
	"github.com/xmorph/xmorph/internal/dawg"
	"github.com/xmorph/xmorph/internal/feature"
	"github.com/xmorph/xmorph/internal/model"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

// Label classifies one character's morpheme role.
type Label uint8

const (
	Prefix Label = iota
	Root
	Suffix
	Ending
	Unkn
)

func (l Label) String() string {
	switch l {
	case Prefix:
		return "PREFIX"
	case Root:
		return "ROOT"
	case Suffix:
		return "SUFFIX"
	case Ending:
		return "ENDING"
	default:
		return "UNKN"
	}
}

// numLabels is the model's fixed per-character output width: the four
// morpheme classes, in Label order (Unkn is never a model output — it is
// only ever assigned by Repair's fallback path).
const numLabels = 4

// Segmenter predicts and repairs per-character morpheme labels. prefixes
// and suffixes back the per-character feature encoder's prefix/suffix
// DAWG membership and cut-count features (spec §4.6); either may be nil,
// in which case those features are left at their zero value.
type Segmenter struct {
	runner   model.Runner
	prefixes feature.LookupCounter
	suffixes feature.LookupCounter
}

// New returns a Segmenter backed by runner, whose NumLabels() must be 4.
// prefixes is the dictionary's prefix DAWG and suffixes a representative
// suffix DAWG (the guesser's lowercase-class tree); passing a nil
// *dawg.Graph for either is safe and simply disables the corresponding
// feature, which matters while bootstrapping a dictionary that has not
// built those sections yet.
func New(runner model.Runner, prefixes, suffixes *dawg.Graph) *Segmenter {
	s := &Segmenter{runner: runner}
	if prefixes != nil {
		s.prefixes = prefixes
	}
	if suffixes != nil {
		s.suffixes = suffixes
	}
	return s
}

// Segment returns one Label per character of word. winner is the tag of
// the token's already-disambiguated interpretation (zero value if none),
// folded into every character's feature vector per spec §4.6.
func (s *Segmenter) Segment(word ustring.String, winner tag.Tag) ([]Label, error) {
	if word.Len() == 0 {
		return nil, nil
	}

	subwordIDs := make([][]int64, word.Len())
	categorical := make([][]float32, word.Len())
	ids := feature.HashSubwords(word)
	for i := 0; i < word.Len(); i++ {
		subwordIDs[i] = ids
		categorical[i] = feature.CharFeatures(word, i, s.prefixes, s.suffixes, winner)
	}

	scores, err := s.runner.Run(subwordIDs, categorical)
	if err != nil {
		return nil, err
	}

	raw := make([]Label, word.Len())
	for i, row := range scores {
		raw[i] = argmaxLabel(row)
	}
	return Repair(raw), nil
}

func argmaxLabel(scores []float32) Label {
	best := Prefix
	var bestScore float32 = -1 << 30
	for i := 0; i < numLabels && i < len(scores); i++ {
		if scores[i] > bestScore {
			bestScore = scores[i]
			best = Label(i)
		}
	}
	return best
}

// Repair enforces PREFIX* ROOT+ SUFFIX* ENDING* on a raw per-character
// label sequence. If no character is labeled ROOT at all, every
// character is relabeled Unkn: that degree of disagreement with the
// structural constraint means the per-character predictions aren't
// trustworthy enough to repair, only to discard.
func Repair(labels []Label) []Label {
	if len(labels) == 0 {
		return nil
	}

	firstRoot, lastRoot := -1, -1
	for i, l := range labels {
		if l == Root {
			if firstRoot == -1 {
				firstRoot = i
			}
			lastRoot = i
		}
	}
	if firstRoot == -1 {
		out := make([]Label, len(labels))
		for i := range out {
			out[i] = Unkn
		}
		return out
	}

	out := make([]Label, len(labels))
	for i := range out {
		switch {
		case i < firstRoot:
			out[i] = Prefix
		case i >= firstRoot && i <= lastRoot:
			out[i] = Root
		default:
			out[i] = Suffix // provisional; fixed up below
		}
	}

	// After the root, SUFFIX* must precede ENDING*: once an ENDING
	// appears, every following character is ENDING too.
	endingStarted := false
	for i := lastRoot + 1; i < len(out); i++ {
		if !endingStarted && labels[i] == Ending {
			endingStarted = true
		}
		if endingStarted {
			out[i] = Ending
		}
	}

	return out
}
