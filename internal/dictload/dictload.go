// Package dictload assembles a ready-to-use lexicon.Dictionary from an
// on-disk dictfile container, mirroring the teacher's own
// LoadMorphAnalyzer: mmap the file once, slice out each section by the
// header's offsets, and hand the sections to the packages that know how
// to interpret them (internal/dawg, internal/paradigm, internal/guess).
package dictload

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/xmorph/xmorph/internal/dawg"
	"github.com/xmorph/xmorph/internal/dictfile"
	"github.com/xmorph/xmorph/internal/guess"
	"github.com/xmorph/xmorph/internal/lexicon"
	"github.com/xmorph/xmorph/internal/paradigm"
)

// Dictionary bundles the loaded lexicon together with the mmap handle
// backing its DAWGs, so a caller can release the mapping once the
// Engine built from it is no longer needed. Prefixes and Suffixes are the
// dictionary's prefix DAWG and a representative suffix DAWG (the
// guesser's lowercase-class tree) — both nil-safe for internal/segment's
// feature encoder, which uses them for membership/cut-count features and
// works fine without them.
type Dictionary struct {
	*lexicon.Dictionary
	Prefixes *dawg.Graph
	Suffixes *dawg.Graph
	backing  mmap.MMap
}

// Close unmaps the underlying file. Safe to call on a Dictionary built
// with Load (plain []byte), where it is a no-op.
func (d *Dictionary) Close() error {
	if d.backing == nil {
		return nil
	}
	return d.backing.Unmap()
}

// LoadFile mmaps path and builds a Dictionary over it.
func LoadFile(path string) (*Dictionary, error) {
	data, backing, err := mmapFile(path)
	if err != nil {
		return nil, err
	}
	d, err := load(data)
	if err != nil {
		return nil, err
	}
	d.backing = backing
	return d, nil
}

// Load builds a Dictionary from an already-read-in byte slice (an
// embedded dictionary blob, for instance, rather than a file on disk).
func Load(data []byte) (*Dictionary, error) {
	return load(data)
}

func load(data []byte) (*Dictionary, error) {
	header, err := dictfile.ParseHeader(data)
	if err != nil {
		return nil, err
	}

	main, err := dawg.Load(dictfile.Section(data, header, dictfile.SectionDAWG))
	if err != nil {
		return nil, fmt.Errorf("dictload: main dawg: %w", err)
	}

	paradigms, err := paradigm.Load(dictfile.Section(data, header, dictfile.SectionParadigm))
	if err != nil {
		return nil, fmt.Errorf("dictload: paradigms: %w", err)
	}

	lemmas := lexicon.DecodeLemmas(dictfile.Section(data, header, dictfile.SectionLemmaTable))

	lex := &lexicon.Dictionary{Main: main, Paradigms: paradigms, Lemmas: lemmas}
	d := &Dictionary{Dictionary: lex}

	if prefixBlob := dictfile.Section(data, header, dictfile.SectionPrefixDAWG); len(prefixBlob) > 0 {
		d.Prefixes, err = dawg.Load(prefixBlob)
		if err != nil {
			return nil, fmt.Errorf("dictload: prefix dawg: %w", err)
		}
	}

	if suffixBlob := dictfile.Section(data, header, dictfile.SectionSuffixDAWG); len(suffixBlob) > 0 {
		trees, err := guess.UnpackTrees(suffixBlob)
		if err != nil {
			return nil, fmt.Errorf("dictload: suffix trees: %w", err)
		}
		lex.Guesser = guess.New(trees, paradigms, guess.DefaultMaxTags)
		d.Suffixes = guess.LowerClassSuffixes(trees)
	}

	return d, nil
}

func mmapFile(path string) ([]byte, mmap.MMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dictload: open %s: %w", path, err)
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("dictload: mmap %s: %w", path, err)
	}
	return m, m, nil
}
