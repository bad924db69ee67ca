// Command xmorph-build turns a small JSON lexicon description into the
// binary dictionary container internal/dictload reads back. It is the
// offline counterpart to the runtime engine: building dictionaries from
// raw OpenCorpora XML is out of scope, but emitting the specified binary
// format from a structured source is exactly what this command
// demonstrates, the way the teacher's own build tooling produces
// morph_3.dawg.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/xmorph/xmorph/internal/dawg"
	"github.com/xmorph/xmorph/internal/dictfile"
	"github.com/xmorph/xmorph/internal/guess"
	"github.com/xmorph/xmorph/internal/lexicon"
	"github.com/xmorph/xmorph/internal/paradigm"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

// recordJSON is one paradigm cell in the input description.
type recordJSON struct {
	Tag       string `json:"tag"`
	CutPrefix int    `json:"cut_prefix,omitempty"`
	CutSuffix int    `json:"cut_suffix,omitempty"`
	AddPrefix string `json:"add_prefix,omitempty"`
	AddSuffix string `json:"add_suffix,omitempty"`
}

// lemmaJSON is one lexeme: its citation form, which paradigm it
// inflects by, and an optional corpus frequency used only to weight the
// OOV guesser's training data (a lemma never seen in real text still
// gets freq 1, so the guesser always has something to rank on).
type lemmaJSON struct {
	Text     string `json:"text"`
	Paradigm int    `json:"paradigm"`
	Freq     uint32 `json:"freq,omitempty"`
}

type lexiconJSON struct {
	Paradigms [][]recordJSON `json:"paradigms"`
	Lemmas    []lemmaJSON    `json:"lemmas"`
}

// vocabJSON is the side-file internal/disambig's Vocabulary is loaded
// from: the fixed order of tags the disambiguation model's output
// vector is indexed by.
type vocabJSON struct {
	OutputTags []string `json:"output_tags"`
}

func main() {
	var inPath, outPath, vocabPath string
	flag.StringVar(&inPath, "in", "", "path to the JSON lexicon description")
	flag.StringVar(&outPath, "out", "", "path to write the binary dictionary container")
	flag.StringVar(&vocabPath, "vocab-out", "", "optional path to write the disambiguation vocabulary side-file")
	flag.Parse()

	if inPath == "" || outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: xmorph-build -in lexicon.json -out dict.bin [-vocab-out vocab.json]")
		os.Exit(2)
	}

	if err := run(inPath, outPath, vocabPath); err != nil {
		fmt.Fprintf(os.Stderr, "xmorph-build: %v\n", err)
		os.Exit(2)
	}
}

func run(inPath, outPath, vocabPath string) error {
	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inPath, err)
	}

	var lex lexiconJSON
	if err := json.Unmarshal(raw, &lex); err != nil {
		return fmt.Errorf("parsing %s: %w", inPath, err)
	}

	container, vocab, err := build(lex)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()
	if err := container.Write(out); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	if vocabPath != "" {
		data, err := json.MarshalIndent(vocabJSON{OutputTags: vocab}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding vocabulary: %w", err)
		}
		if err := os.WriteFile(vocabPath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", vocabPath, err)
		}
	}
	return nil
}

// build assembles every dictionary section from lex and returns the
// ready-to-write container plus the full set of distinct tags seen,
// sorted for a deterministic vocabulary file.
func build(lex lexiconJSON) (*dictfile.Writer, []string, error) {
	paradigms := paradigm.NewBuilder()
	for _, pj := range lex.Paradigms {
		p := make(paradigm.Paradigm, len(pj))
		for i, rj := range pj {
			p[i] = paradigm.Record{
				Tag: tag.Parse(rj.Tag),
				Transform: paradigm.Transform{
					CutPrefix: rj.CutPrefix,
					CutSuffix: rj.CutSuffix,
					AddPrefix: ustring.FromRunes(rj.AddPrefix),
					AddSuffix: ustring.FromRunes(rj.AddSuffix),
				},
			}
		}
		paradigms.Add(p)
	}
	paradigmTable, paradigmBlob := paradigms.Build()

	lemmaStrings := make([]ustring.String, len(lex.Lemmas))
	for i, lj := range lex.Lemmas {
		lemmaStrings[i] = ustring.FromRunes(lj.Text)
	}

	byForm := make(map[string][]lexicon.MorphInfo)
	guesser := guess.NewBuilder()
	seenTags := make(map[string]struct{})

	for lemmaID, lj := range lex.Lemmas {
		p, err := paradigmTable.Get(uint32(lj.Paradigm))
		if err != nil {
			return nil, nil, fmt.Errorf("lemma %q: %w", lj.Text, err)
		}
		lemma := lemmaStrings[lemmaID]
		freq := lj.Freq
		if freq == 0 {
			freq = 1
		}
		for formIndex, rec := range p {
			form := rec.Transform.Apply(lemma)
			key := form.Runes()
			info := lexicon.MorphInfo{LemmaID: uint32(lemmaID), ParadigmID: uint32(lj.Paradigm), FormIndex: uint32(formIndex)}
			byForm[key] = append(byForm[key], info)
			guesser.Add(form, rec.Tag, uint32(lj.Paradigm), uint32(formIndex), freq)
			seenTags[rec.Tag.String()] = struct{}{}
		}
	}

	forms := make([]string, 0, len(byForm))
	for f := range byForm {
		forms = append(forms, f)
	}
	sort.Strings(forms)

	mainBuilder := dawg.NewBuilder()
	for _, f := range forms {
		if err := mainBuilder.Insert(ustring.FromRunes(f), lexicon.EncodeEntries(byForm[f])); err != nil {
			return nil, nil, fmt.Errorf("inserting %q: %w", f, err)
		}
	}
	_, mainBlob, err := mainBuilder.Finalize()
	if err != nil {
		return nil, nil, fmt.Errorf("finalizing main dawg: %w", err)
	}

	prefixSet := make(map[string]struct{})
	for _, f := range forms {
		runes := []rune(f)
		for i := 1; i <= len(runes); i++ {
			prefixSet[string(runes[:i])] = struct{}{}
		}
	}
	prefixes := make([]string, 0, len(prefixSet))
	for p := range prefixSet {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	prefixBuilder := dawg.NewBuilder()
	for _, p := range prefixes {
		if err := prefixBuilder.Insert(ustring.FromRunes(p), nil); err != nil {
			return nil, nil, fmt.Errorf("inserting prefix key %q: %w", p, err)
		}
	}
	_, prefixBlob, err := prefixBuilder.Finalize()
	if err != nil {
		return nil, nil, fmt.Errorf("finalizing prefix dawg: %w", err)
	}

	_, suffixBlobs, err := guesser.BuildBlobs()
	if err != nil {
		return nil, nil, fmt.Errorf("building suffix guesser: %w", err)
	}
	suffixBlob := guess.PackTrees(suffixBlobs)

	w := dictfile.NewWriter()
	w.SetSection(dictfile.SectionDAWG, mainBlob)
	w.SetSection(dictfile.SectionSuffixDAWG, suffixBlob)
	w.SetSection(dictfile.SectionPrefixDAWG, prefixBlob)
	w.SetSection(dictfile.SectionParadigm, paradigmBlob)
	w.SetSection(dictfile.SectionLemmaTable, lexicon.EncodeLemmas(lemmaStrings))

	tagList := make([]string, 0, len(seenTags))
	for t := range seenTags {
		tagList = append(tagList, t)
	}
	sort.Strings(tagList)

	return w, tagList, nil
}
