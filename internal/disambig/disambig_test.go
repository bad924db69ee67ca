package disambig

import (
	"testing"

	"github.com/xmorph/xmorph/internal/lexicon"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

// fakeRunner returns a fixed score row per call index, cycling if the
// batch is longer than the configured rows.
type fakeRunner struct {
	rows      [][]float32
	numLabels int
}

func (f *fakeRunner) Run(subwordIDs [][]int64, categorical [][]float32) ([][]float32, error) {
	out := make([][]float32, len(subwordIDs))
	for i := range subwordIDs {
		out[i] = f.rows[i%len(f.rows)]
	}
	return out, nil
}
func (f *fakeRunner) NumLabels() int { return f.numLabels }
func (f *fakeRunner) Close() error   { return nil }

func TestResolvePicksHighestScoringCandidate(t *testing.T) {
	vocab := Vocabulary{tag.Parse("NOUN,nomn"), tag.Parse("VERB")}
	runner := &fakeRunner{rows: [][]float32{{0.1, 5.0}}, numLabels: 2}
	d := New(runner, vocab)

	words := []ustring.String{ustring.FromRunes("стали")}
	candidates := [][]lexicon.Interpretation{
		{
			{Lemma: ustring.FromRunes("сталь"), Tag: tag.Parse("NOUN,nomn")},
			{Lemma: ustring.FromRunes("стать"), Tag: tag.Parse("VERB")},
		},
	}

	got, err := d.Resolve(words, candidates)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || !got[0].Tag.Equal(tag.Parse("VERB")) {
		t.Fatalf("Resolve = %#v, want VERB to win (higher model score)", got)
	}
}

func TestResolveEmptyCandidatesYieldsUnkn(t *testing.T) {
	vocab := Vocabulary{tag.Parse("NOUN")}
	runner := &fakeRunner{rows: [][]float32{{1.0}}, numLabels: 1}
	d := New(runner, vocab)

	got, err := d.Resolve([]ustring.String{ustring.FromRunes("ыыы")}, [][]lexicon.Interpretation{nil})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 1 || !got[0].Tag.Has(tag.CategoryPOS, tag.UNKN) {
		t.Fatalf("Resolve = %#v, want UNKN placeholder", got)
	}
}

func TestResolveFallsBackToPriorForOutOfVocabTag(t *testing.T) {
	vocab := Vocabulary{tag.Parse("NOUN")}
	runner := &fakeRunner{rows: [][]float32{{1.0}}, numLabels: 1}
	d := New(runner, vocab)

	candidates := [][]lexicon.Interpretation{
		{
			{Lemma: ustring.FromRunes("а"), Tag: tag.Parse("CONJ"), Score: 0.9},
			{Lemma: ustring.FromRunes("б"), Tag: tag.Parse("PRCL"), Score: 0.1},
		},
	}
	got, err := d.Resolve([]ustring.String{ustring.FromRunes("а")}, candidates)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// Neither tag is in vocab, so both fall back to their dictionary
	// prior; the higher-prior candidate must win.
	if !got[0].Tag.Equal(tag.Parse("CONJ")) {
		t.Fatalf("Resolve = %#v, want CONJ (higher prior) to win", got)
	}
}

func TestResolvePrefersInVocabOverHigherPriorOOV(t *testing.T) {
	// CONJ is outside the model's vocabulary and carries a high dictionary
	// prior; VERB is in-vocabulary but the model barely favors it. The
	// in-vocabulary candidate must still win: the two-phase algorithm
	// never compares an out-of-vocabulary prior against an in-vocabulary
	// model score directly.
	vocab := Vocabulary{tag.Parse("VERB")}
	runner := &fakeRunner{rows: [][]float32{{0.01}}, numLabels: 1}
	d := New(runner, vocab)

	candidates := [][]lexicon.Interpretation{
		{
			{Lemma: ustring.FromRunes("стать"), Tag: tag.Parse("VERB"), Score: 0.1},
			{Lemma: ustring.FromRunes("а"), Tag: tag.Parse("CONJ"), Score: 0.9},
		},
	}
	got, err := d.Resolve([]ustring.String{ustring.FromRunes("стали")}, candidates)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !got[0].Tag.Equal(tag.Parse("VERB")) {
		t.Fatalf("Resolve = %#v, want the in-vocabulary VERB candidate to win", got)
	}
}

func TestResolveEmptySentence(t *testing.T) {
	d := New(&fakeRunner{numLabels: 1}, Vocabulary{tag.Parse("NOUN")})
	got, err := d.Resolve(nil, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Resolve(nil) = %#v", got)
	}
}

func TestVocabularyIndexOf(t *testing.T) {
	v := Vocabulary{tag.Parse("NOUN"), tag.Parse("VERB")}
	if v.IndexOf(tag.Parse("VERB")) != 1 {
		t.Fatal("expected VERB at index 1")
	}
	if v.IndexOf(tag.Parse("ADJF")) != -1 {
		t.Fatal("expected -1 for unknown tag")
	}
}
