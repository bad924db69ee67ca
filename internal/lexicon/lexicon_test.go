package lexicon

import (
	"testing"

	"github.com/xmorph/xmorph/internal/dawg"
	"github.com/xmorph/xmorph/internal/paradigm"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

func buildTestDictionary(t *testing.T) *Dictionary {
	t.Helper()

	pb := paradigm.NewBuilder()
	stolParadigmID := pb.Add(paradigm.Paradigm{
		{Tag: tag.Parse("NOUN,masc,sing,nomn")},
		{Tag: tag.Parse("NOUN,masc,sing,gent"), Transform: paradigm.Transform{AddSuffix: ustring.FromRunes("а")}},
		{Tag: tag.Parse("NOUN,masc,plur,nomn"), Transform: paradigm.Transform{AddSuffix: ustring.FromRunes("ы")}},
	})
	paradigms, _ := pb.Build()

	lemmas := []ustring.String{ustring.FromRunes("стол")}

	db := dawg.NewBuilder()
	entries := []MorphInfo{{LemmaID: 0, ParadigmID: stolParadigmID, FormIndex: 0}}
	if err := db.Insert(ustring.FromRunes("стол"), EncodeEntries(entries)); err != nil {
		t.Fatalf("Insert(стол): %v", err)
	}
	entries = []MorphInfo{{LemmaID: 0, ParadigmID: stolParadigmID, FormIndex: 1}}
	if err := db.Insert(ustring.FromRunes("стола"), EncodeEntries(entries)); err != nil {
		t.Fatalf("Insert(стола): %v", err)
	}
	entries = []MorphInfo{{LemmaID: 0, ParadigmID: stolParadigmID, FormIndex: 2}}
	if err := db.Insert(ustring.FromRunes("столы"), EncodeEntries(entries)); err != nil {
		t.Fatalf("Insert(столы): %v", err)
	}
	main, _, err := db.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	return &Dictionary{Main: main, Paradigms: paradigms, Lemmas: lemmas}
}

func TestAnalyzeDictionaryHit(t *testing.T) {
	d := buildTestDictionary(t)
	got := d.Analyze(ustring.FromRunes("стола"))
	if len(got) != 1 {
		t.Fatalf("Analyze(стола) returned %d interpretations, want 1", len(got))
	}
	if got[0].Lemma.Runes() != "стол" {
		t.Fatalf("lemma = %q want стол", got[0].Lemma.Runes())
	}
	if !got[0].Tag.Equal(tag.Parse("NOUN,masc,sing,gent")) {
		t.Fatalf("tag = %v", got[0].Tag)
	}
	if got[0].Score != 1 {
		t.Fatalf("score = %v want 1", got[0].Score)
	}
}

func TestAnalyzeCaseInsensitive(t *testing.T) {
	d := buildTestDictionary(t)
	got := d.Analyze(ustring.FromRunes("Стола"))
	if len(got) != 1 || got[0].Lemma.Runes() != "стол" {
		t.Fatalf("Analyze(Стола) = %#v", got)
	}
}

func TestAnalyzeCardinalBypass(t *testing.T) {
	d := buildTestDictionary(t)
	got := d.Analyze(ustring.FromRunes("42"))
	if len(got) != 1 || !got[0].Tag.Has(tag.CategoryPOS, tag.NUMR) {
		t.Fatalf("Analyze(42) = %#v", got)
	}
}

func TestAnalyzeUnknownWithoutGuesser(t *testing.T) {
	d := buildTestDictionary(t)
	got := d.Analyze(ustring.FromRunes("неизвестно"))
	if got != nil {
		t.Fatalf("expected nil interpretations with no guesser configured, got %#v", got)
	}
}

type stubGuesser struct{ calls []string }

func (g *stubGuesser) Guess(word ustring.String) []Interpretation {
	g.calls = append(g.calls, word.Runes())
	return []Interpretation{{Lemma: word, Tag: tag.Parse("NOUN"), Guessed: true}}
}

func TestAnalyzeFallsBackToGuesser(t *testing.T) {
	d := buildTestDictionary(t)
	stub := &stubGuesser{}
	d.Guesser = stub

	got := d.Analyze(ustring.FromRunes("неологизм"))
	if len(got) != 1 || !got[0].Guessed {
		t.Fatalf("Analyze(неологизм) = %#v", got)
	}
	if len(stub.calls) != 1 || stub.calls[0] != "неологизм" {
		t.Fatalf("guesser called with %#v", stub.calls)
	}
}

func TestAnalyzeHyphenatedCompound(t *testing.T) {
	d := buildTestDictionary(t)
	got := d.Analyze(ustring.FromRunes("интернет-стол"))
	if len(got) != 1 {
		t.Fatalf("Analyze(интернет-стол) returned %d interpretations, want 1", len(got))
	}
	if got[0].Lemma.Runes() != "интернет-стол" {
		t.Fatalf("lemma = %q", got[0].Lemma.Runes())
	}
}

func TestEncodeDecodeEntriesRoundTrip(t *testing.T) {
	entries := []MorphInfo{{LemmaID: 3, ParadigmID: 7, FormIndex: 2}, {LemmaID: 1, ParadigmID: 0, FormIndex: 0}}
	got := DecodeEntries(EncodeEntries(entries))
	if len(got) != 2 || got[0] != entries[0] || got[1] != entries[1] {
		t.Fatalf("round trip = %#v", got)
	}
}
