// Package synth generates inflected word forms from a lemma and a target
// tag (spec §4.9's Synthesize): look the lemma up in its own paradigm and
// return every cell whose tag is compatible with the (possibly partial)
// target, falling back to a small hand-maintained irregular-forms table
// first — the same irregular-lookup-then-regular-paradigm order
// peterzalewski-odmiany's ConjugatePresent uses — since a handful of
// common Russian lemmas (suppletive plurals, irregular comparatives) don't
// fit any regular paradigm transform at all.
package synth

import (
	"github.com/xmorph/xmorph/internal/lexicon"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

// irregular maps a lemma to a small set of (tag, form) overrides that
// bypass paradigm-transform synthesis entirely.
var irregular = map[string][]struct {
	tag  tag.Tag
	form string
}{
	"человек": {
		{tag.Parse("NOUN,anim,masc,plur,nomn"), "люди"},
		{tag.Parse("NOUN,anim,masc,plur,gent"), "людей"},
	},
	"ребёнок": {
		{tag.Parse("NOUN,anim,masc,plur,nomn"), "дети"},
		{tag.Parse("NOUN,anim,masc,plur,gent"), "детей"},
	},
	"хороший": {
		{tag.Parse("COMP"), "лучше"},
	},
	"плохой": {
		{tag.Parse("COMP"), "хуже"},
	},
}

// Synthesize returns every form of lemma whose tag is compatible with
// target: target.Subsumes(formTag) must hold, so a caller can ask for as
// little as "plur,datv" and get every paradigm cell matching that partial
// specification regardless of POS/gender. Returns ok=false — not an
// error — when lemma is neither in the irregular table nor in the main
// dictionary, or when none of its cells is compatible with target; the
// OOV guesser is not consulted. Spec §7 treats an unknown lemma as a
// result shape, not a failure.
func Synthesize(dict *lexicon.Dictionary, lemma ustring.String, target tag.Tag) (forms []ustring.String, ok bool) {
	if irr, found := irregular[lemma.Lower().Runes()]; found {
		for _, cell := range irr {
			if target.Subsumes(cell.tag) {
				forms = append(forms, ustring.FromRunes(cell.form))
			}
		}
		if len(forms) > 0 {
			return forms, true
		}
	}

	payload, found := dict.Main.Lookup(lexicon.Normalize(lemma))
	if !found {
		return nil, false
	}
	entries := lexicon.DecodeEntries(payload)

	seen := make(map[string]struct{})
	for _, e := range entries {
		p, err := dict.Paradigms.Get(e.ParadigmID)
		if err != nil {
			continue
		}
		base := lemma
		if int(e.LemmaID) < len(dict.Lemmas) {
			base = dict.Lemmas[e.LemmaID]
		}
		for _, rec := range p {
			if !target.Subsumes(rec.Tag) {
				continue
			}
			form := rec.Transform.Apply(base)
			key := form.Runes()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			forms = append(forms, form)
		}
	}
	return forms, len(forms) > 0
}
