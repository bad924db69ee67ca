package synth

import (
	"testing"

	"github.com/xmorph/xmorph/internal/dawg"
	"github.com/xmorph/xmorph/internal/lexicon"
	"github.com/xmorph/xmorph/internal/paradigm"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

func buildTestDict(t *testing.T) *lexicon.Dictionary {
	t.Helper()

	pb := paradigm.NewBuilder()
	pid := pb.Add(paradigm.Paradigm{
		{Tag: tag.Parse("NOUN,masc,sing,nomn")},
		{Tag: tag.Parse("NOUN,masc,sing,gent"), Transform: paradigm.Transform{AddSuffix: ustring.FromRunes("а")}},
		{Tag: tag.Parse("NOUN,masc,plur,nomn"), Transform: paradigm.Transform{AddSuffix: ustring.FromRunes("ы")}},
	})
	paradigms, _ := pb.Build()
	lemmas := []ustring.String{ustring.FromRunes("стол")}

	db := dawg.NewBuilder()
	if err := db.Insert(ustring.FromRunes("стол"), lexicon.EncodeEntries([]lexicon.MorphInfo{{LemmaID: 0, ParadigmID: pid, FormIndex: 0}})); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	main, _, err := db.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	return &lexicon.Dictionary{Main: main, Paradigms: paradigms, Lemmas: lemmas}
}

func TestSynthesizeRegularParadigm(t *testing.T) {
	d := buildTestDict(t)
	forms, ok := Synthesize(d, ustring.FromRunes("стол"), tag.Parse("gent"))
	if !ok || len(forms) != 1 || forms[0].Runes() != "стола" {
		t.Fatalf("Synthesize(стол, gent) = %v, %v", forms, ok)
	}
}

func TestSynthesizeMultipleMatches(t *testing.T) {
	d := buildTestDict(t)
	forms, ok := Synthesize(d, ustring.FromRunes("стол"), tag.Parse("NOUN,masc"))
	if !ok || len(forms) != 3 {
		t.Fatalf("Synthesize(стол, NOUN masc) = %v, %v, want 3 forms", forms, ok)
	}
}

func TestSynthesizeUnknownLemma(t *testing.T) {
	d := buildTestDict(t)
	forms, ok := Synthesize(d, ustring.FromRunes("несуществующее"), tag.Parse("gent"))
	if ok || forms != nil {
		t.Fatalf("Synthesize(unknown) = %v, %v want nil, false", forms, ok)
	}
}

func TestSynthesizeIrregular(t *testing.T) {
	d := buildTestDict(t)
	forms, ok := Synthesize(d, ustring.FromRunes("человек"), tag.Parse("plur,nomn"))
	if !ok || len(forms) != 1 || forms[0].Runes() != "люди" {
		t.Fatalf("Synthesize(человек, plur nomn) = %v, %v", forms, ok)
	}
}

func TestSynthesizeNoMatchingCell(t *testing.T) {
	d := buildTestDict(t)
	forms, ok := Synthesize(d, ustring.FromRunes("стол"), tag.Parse("VERB"))
	if ok || forms != nil {
		t.Fatalf("Synthesize(стол, VERB) = %v, %v want nil, false", forms, ok)
	}
}
