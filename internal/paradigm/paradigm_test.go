package paradigm

import (
	"testing"

	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

func sampleParadigm() Paradigm {
	return Paradigm{
		{Tag: tag.Parse("NOUN,masc,sing,nomn"), Transform: Transform{}},
		{Tag: tag.Parse("NOUN,masc,sing,gent"), Transform: Transform{CutSuffix: 0, AddSuffix: ustring.FromRunes("а")}},
		{Tag: tag.Parse("NOUN,masc,plur,nomn"), Transform: Transform{CutSuffix: 0, AddSuffix: ustring.FromRunes("ы")}},
	}
}

func TestFormAt(t *testing.T) {
	p := sampleParadigm()
	lemma := ustring.FromRunes("стол")

	if got := p.FormAt(lemma, 0).Runes(); got != "стол" {
		t.Fatalf("FormAt(0) = %q want стол", got)
	}
	if got := p.FormAt(lemma, 1).Runes(); got != "стола" {
		t.Fatalf("FormAt(1) = %q want стола", got)
	}
	if got := p.FormAt(lemma, 2).Runes(); got != "столы" {
		t.Fatalf("FormAt(2) = %q want столы", got)
	}
}

func TestIndexOf(t *testing.T) {
	p := sampleParadigm()
	if idx := p.IndexOf(tag.Parse("NOUN,masc,plur,nomn")); idx != 2 {
		t.Fatalf("IndexOf(plur,nomn) = %d want 2", idx)
	}
	if idx := p.IndexOf(tag.Parse("NOUN,femn,plur,nomn")); idx != -1 {
		t.Fatalf("IndexOf(unknown) = %d want -1", idx)
	}
}

func TestTransformWithCuts(t *testing.T) {
	tr := Transform{CutSuffix: 3, AddSuffix: ustring.FromRunes("ишь")}
	got := tr.Apply(ustring.FromRunes("говорить"))
	if got.Runes() != "говоришь" {
		t.Fatalf("Apply = %q want говоришь", got.Runes())
	}
}

func TestTransformInvertRecoversStem(t *testing.T) {
	tr := Transform{AddSuffix: ustring.FromRunes("а")}
	stem, ok := tr.Invert(ustring.FromRunes("стола"))
	if !ok || stem.Runes() != "стол" {
		t.Fatalf("Invert(стола) = %q, %v want стол, true", stem.Runes(), ok)
	}
}

func TestTransformInvertRejectsMismatchedAffix(t *testing.T) {
	tr := Transform{AddSuffix: ustring.FromRunes("а")}
	if _, ok := tr.Invert(ustring.FromRunes("столы")); ok {
		t.Fatal("Invert should fail when the form lacks the transform's AddSuffix")
	}
}

func TestTransformInvertRejectsNonzeroCuts(t *testing.T) {
	tr := Transform{CutSuffix: 2, AddSuffix: ustring.FromRunes("ишь")}
	if _, ok := tr.Invert(ustring.FromRunes("говоришь")); ok {
		t.Fatal("Invert should refuse to guess characters a nonzero cut dropped")
	}
}

func TestBuildLoadRoundTrip(t *testing.T) {
	b := NewBuilder()
	id1 := b.Add(sampleParadigm())
	id2 := b.Add(Paradigm{
		{Tag: tag.Parse("VERB,INFN"), Transform: Transform{}},
	})

	table, blob := b.Build()
	if table.Len() != 2 {
		t.Fatalf("Len() = %d want 2", table.Len())
	}

	loaded, err := Load(blob)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("loaded.Len() = %d want 2", loaded.Len())
	}

	p1, err := loaded.Get(id1)
	if err != nil {
		t.Fatalf("Get(id1): %v", err)
	}
	if p1.FormAt(ustring.FromRunes("стол"), 1).Runes() != "стола" {
		t.Fatalf("round-tripped FormAt(1) = %q", p1.FormAt(ustring.FromRunes("стол"), 1).Runes())
	}

	p2, err := loaded.Get(id2)
	if err != nil {
		t.Fatalf("Get(id2): %v", err)
	}
	if !p2[0].Tag.Equal(tag.Parse("VERB,INFN")) {
		t.Fatal("round-tripped tag mismatch")
	}
}

func TestGetOutOfRange(t *testing.T) {
	b := NewBuilder()
	b.Add(sampleParadigm())
	table, _ := b.Build()
	if _, err := table.Get(99); err == nil {
		t.Fatal("expected error for out-of-range paradigm id")
	}
}
