package xmorph

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/xmorph/xmorph/internal/dawg"
	"github.com/xmorph/xmorph/internal/disambig"
	"github.com/xmorph/xmorph/internal/lexicon"
	"github.com/xmorph/xmorph/internal/paradigm"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

type fakeRunner struct{ numLabels int }

func (f *fakeRunner) Run(subwordIDs [][]int64, categorical [][]float32) ([][]float32, error) {
	out := make([][]float32, len(subwordIDs))
	for i := range out {
		row := make([]float32, f.numLabels)
		if f.numLabels > 0 {
			row[0] = 1
		}
		out[i] = row
	}
	return out, nil
}
func (f *fakeRunner) NumLabels() int { return f.numLabels }
func (f *fakeRunner) Close() error   { return nil }

func buildTestEngine(t *testing.T) *Engine {
	t.Helper()

	pb := paradigm.NewBuilder()
	pid := pb.Add(paradigm.Paradigm{
		{Tag: tag.Parse("NOUN,masc,sing,nomn")},
		{Tag: tag.Parse("NOUN,masc,sing,gent"), Transform: paradigm.Transform{AddSuffix: ustring.FromRunes("а")}},
	})
	paradigms, _ := pb.Build()
	lemmas := []ustring.String{ustring.FromRunes("стол")}

	db := dawg.NewBuilder()
	if err := db.Insert(ustring.FromRunes("стол"), lexicon.EncodeEntries([]lexicon.MorphInfo{{LemmaID: 0, ParadigmID: pid, FormIndex: 0}})); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := db.Insert(ustring.FromRunes("стола"), lexicon.EncodeEntries([]lexicon.MorphInfo{{LemmaID: 0, ParadigmID: pid, FormIndex: 1}})); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	main, _, err := db.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	dict := &lexicon.Dictionary{Main: main, Paradigms: paradigms, Lemmas: lemmas}
	vocab := disambig.Vocabulary{tag.Parse("NOUN,masc,sing,nomn")}
	dis := disambig.New(&fakeRunner{numLabels: 1}, vocab)

	return New(dict, dis, nil, zerolog.Nop())
}

func TestProcessRoundTripsSeparators(t *testing.T) {
	e := buildTestEngine(t)
	text := ustring.FromRunes("стол стоит.")
	forms, err := e.Process(text, Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	var rebuilt ustring.String
	for _, f := range forms {
		rebuilt = rebuilt.Concat(f.Text)
	}
	if rebuilt.Runes() != text.Runes() {
		t.Fatalf("rebuilt = %q, want %q", rebuilt.Runes(), text.Runes())
	}
}

func TestProcessAssignsInterpretation(t *testing.T) {
	e := buildTestEngine(t)
	forms, err := e.Process(ustring.FromRunes("стол"), Options{})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(forms) != 1 || forms[0].Analy.Lemma.Runes() != "стол" {
		t.Fatalf("forms = %#v", forms)
	}
}

func TestProcessBatchPreservesOrder(t *testing.T) {
	e := buildTestEngine(t)
	texts := []ustring.String{
		ustring.FromRunes("стол"),
		ustring.FromRunes("стола"),
		ustring.FromRunes("стол"),
	}
	results, err := e.ProcessBatch(texts, Options{})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len = %d want 3", len(results))
	}
	if results[1][0].Analy.Tag != tag.Parse("NOUN,masc,sing,gent") {
		t.Fatalf("results[1] = %#v", results[1])
	}
}

func TestSynthesizeThroughEngine(t *testing.T) {
	e := buildTestEngine(t)
	forms, ok := e.Synthesize(ustring.FromRunes("стол"), tag.Parse("gent"))
	if !ok || len(forms) != 1 || forms[0].Runes() != "стола" {
		t.Fatalf("Synthesize = %v, %v", forms, ok)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	e := buildTestEngine(t)
	results, err := e.ProcessBatch(nil, Options{})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if results != nil {
		t.Fatalf("ProcessBatch(nil) = %#v", results)
	}
}
