// Package xmorph is the top-level entry point: Engine bundles a loaded
// dictionary, OOV guesser, disambiguation model and segmentation model
// into one explicitly constructed value (never a process-wide singleton,
// so a caller can load two dictionaries — say, for two registers of the
// language — side by side) and exposes sentence-level analysis,
// synthesis and batch processing.
//
// ProcessBatch fans texts out across a worker pool the way the teacher's
// ParseList/InflectList do: a dispatcher goroutine feeds a shared job
// channel, a fixed pool of workers drain it, and a collector reassembles
// results in input order before returning — every engine resource
// (dictionary DAWGs, paradigm table, model sessions) is read-only after
// construction, so concurrent workers can share one Engine value safely.
package xmorph

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/xmorph/xmorph/internal/disambig"
	"github.com/xmorph/xmorph/internal/lexicon"
	"github.com/xmorph/xmorph/internal/segment"
	"github.com/xmorph/xmorph/internal/synth"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/tokenize"
	"github.com/xmorph/xmorph/internal/ustring"
)

// WordForm is one analyzed token: its surface text, its
// tokenizer classification, and the interpretation the disambiguator
// settled on.
type WordForm struct {
	Text    ustring.String
	Kind    tokenize.Kind
	Analy   lexicon.Interpretation
	Segment []segment.Label // nil unless segmentation was requested
}

// Options controls one Process/ProcessBatch call.
type Options struct {
	Segment bool // also run morpheme segmentation on each WORD token
	Workers int  // ProcessBatch pool size; 0 means runtime.NumCPU()
}

// Engine is the loaded, immutable analysis pipeline.
type Engine struct {
	dict       *lexicon.Dictionary
	disambig   *disambig.Disambiguator
	segmenter  *segment.Segmenter
	log        zerolog.Logger
}

// New builds an Engine from its already-loaded components. Dictionary
// loading (mmap, DAWG/paradigm parsing) lives in the cmd binaries and
// internal/dictload; New itself never touches disk, which keeps it
// trivially testable with in-memory fixtures.
func New(dict *lexicon.Dictionary, disambiguator *disambig.Disambiguator, segmenter *segment.Segmenter, logger zerolog.Logger) *Engine {
	return &Engine{dict: dict, disambig: disambiguator, segmenter: segmenter, log: logger}
}

// Process tokenizes text and returns one WordForm per token, including
// separator and punctuation tokens so the original text is always
// reconstructible from the result.
func (e *Engine) Process(text ustring.String, opts Options) ([]WordForm, error) {
	tokens := tokenize.Tokenize(text)
	out := make([]WordForm, len(tokens))

	var words []ustring.String
	var wordIdx []int
	candidates := make([][]lexicon.Interpretation, 0, len(tokens))
	for i, tok := range tokens {
		out[i] = WordForm{Text: tok.Text, Kind: tok.Kind}
		if tok.Kind != tokenize.Word && tok.Kind != tokenize.Number {
			continue
		}
		words = append(words, tok.Text)
		wordIdx = append(wordIdx, i)
		candidates = append(candidates, e.dict.Analyze(tok.Text))
	}

	if len(words) > 0 {
		resolved, err := e.disambig.Resolve(words, candidates)
		if err != nil {
			return nil, fmt.Errorf("xmorph: disambiguation: %w", err)
		}
		for k, idx := range wordIdx {
			out[idx].Analy = resolved[k]
			if opts.Segment && e.segmenter != nil {
				labels, err := e.segmenter.Segment(lexicon.Normalize(words[k]), out[idx].Analy.Tag)
				if err != nil {
					e.log.Warn().Err(err).Str("word", words[k].Runes()).Msg("segmentation failed")
				} else {
					out[idx].Segment = labels
				}
			}
		}
	}

	e.log.Debug().Int("tokens", len(tokens)).Int("words", len(words)).Msg("processed text")
	return out, nil
}

// Synthesize generates forms of lemma compatible with target via
// internal/synth, reusing the Engine's loaded dictionary.
func (e *Engine) Synthesize(lemma ustring.String, target tag.Tag) ([]ustring.String, bool) {
	return synth.Synthesize(e.dict, lemma, target)
}

// batchJob and batchResult carry one text through the worker pool,
// keeping the original index so the collector can restore input order.
type batchJob struct {
	index int
	text  ustring.String
}

type batchResult struct {
	index int
	forms []WordForm
	err   error
}

// ProcessBatch processes every text in texts concurrently and returns
// results in the same order as the input, regardless of completion order.
func (e *Engine) ProcessBatch(texts []ustring.String, opts Options) ([][]WordForm, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(texts) {
		workers = len(texts)
	}

	jobs := make(chan batchJob)
	results := make(chan batchResult, len(texts))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				forms, err := e.Process(job.text, opts)
				results <- batchResult{index: job.index, forms: forms, err: err}
			}
		}()
	}

	go func() {
		for i, text := range texts {
			jobs <- batchJob{index: i, text: text}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([][]WordForm, len(texts))
	var firstErr error
	for res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		out[res.index] = res.forms
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
