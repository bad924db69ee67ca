// Command xmorph-analyze reads text from stdin, one sentence per line,
// and writes each word token's winning interpretation to stdout — TSV
// by default, JSON-lines with -json. It is a thin wrapper over
// xmorph.Engine: all the work happens in the library, the binary only
// owns argument parsing, resource loading and the output format.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/xmorph/xmorph"
	"github.com/xmorph/xmorph/internal/config"
	"github.com/xmorph/xmorph/internal/dictload"
	"github.com/xmorph/xmorph/internal/disambig"
	"github.com/xmorph/xmorph/internal/model"
	"github.com/xmorph/xmorph/internal/segment"
	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/tokenize"
	"github.com/xmorph/xmorph/internal/ustring"
)

type vocabJSON struct {
	OutputTags []string `json:"output_tags"`
}

type jsonRow struct {
	Word  string  `json:"word"`
	Lemma string  `json:"lemma"`
	Tag   string  `json:"tag"`
	Prob  float64 `json:"prob"`
}

func main() {
	var (
		configPath  string
		dictPath    string
		vocabPath   string
		disambModel string
		segModel    string
		jsonOutput  bool
		segmentOn   bool
	)
	flag.StringVar(&configPath, "config", "", "path to an xmorph.toml config file")
	flag.StringVar(&dictPath, "dict", "", "path to the binary dictionary container")
	flag.StringVar(&vocabPath, "vocab", "", "path to the disambiguation vocabulary JSON file")
	flag.StringVar(&disambModel, "disambig-model", "", "path to the ONNX disambiguation model")
	flag.StringVar(&segModel, "segment-model", "", "path to the ONNX segmentation model")
	flag.BoolVar(&jsonOutput, "json", false, "emit JSON-lines instead of TSV")
	flag.BoolVar(&segmentOn, "segment", false, "also emit morpheme segmentation")
	flag.Parse()

	if err := run(configPath, dictPath, vocabPath, disambModel, segModel, jsonOutput, segmentOn); err != nil {
		fmt.Fprintf(os.Stderr, "xmorph-analyze: %v\n", err)
		os.Exit(2)
	}
}

func run(configPath, dictPath, vocabPath, disambModel, segModel string, jsonOutput, segmentOn bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := zerolog.New(os.Stderr).Level(levelFromString(cfg.LogLevel)).With().Timestamp().Logger()

	if dictPath == "" {
		dictPath = cfg.DataDir + "/dictionary.bin"
	}
	dict, err := dictload.LoadFile(dictPath)
	if err != nil {
		return fmt.Errorf("loading dictionary: %w", err)
	}
	defer dict.Close()

	if vocabPath == "" {
		vocabPath = cfg.DataDir + "/vocab.json"
	}
	vocab, err := loadVocab(vocabPath)
	if err != nil {
		return fmt.Errorf("loading vocabulary: %w", err)
	}

	if disambModel == "" {
		disambModel = cfg.ModelDir + "/disambig.onnx"
	}
	disambSession, err := model.NewSession(model.Config{
		ModelPath:      disambModel,
		InputNames:     []string{"subword_ids", "categorical"},
		OutputName:     "scores",
		NumLabels:      len(vocab),
		IntraOpThreads: cfg.IntraOpThreads,
	})
	if err != nil {
		return fmt.Errorf("loading disambiguation model: %w", err)
	}
	defer disambSession.Close()

	var segmenter *segment.Segmenter
	if segmentOn {
		if segModel == "" {
			segModel = cfg.ModelDir + "/segment.onnx"
		}
		segSession, err := model.NewSession(model.Config{
			ModelPath:      segModel,
			InputNames:     []string{"subword_ids", "categorical"},
			OutputName:     "scores",
			NumLabels:      4,
			IntraOpThreads: cfg.IntraOpThreads,
		})
		if err != nil {
			return fmt.Errorf("loading segmentation model: %w", err)
		}
		defer segSession.Close()
		segmenter = segment.New(segSession, dict.Prefixes, dict.Suffixes)
	}

	engine := xmorph.New(dict.Dictionary, disambig.New(disambSession, vocab), segmenter, logger)

	return analyzeStream(os.Stdin, os.Stdout, engine, jsonOutput, segmentOn)
}

func analyzeStream(in *os.File, out *os.File, engine *xmorph.Engine, jsonOutput, segmentOn bool) error {
	scanner := bufio.NewScanner(in)
	writer := bufio.NewWriter(out)
	defer writer.Flush()
	enc := json.NewEncoder(writer)

	for scanner.Scan() {
		line := ustring.FromRunes(scanner.Text())
		forms, err := engine.Process(line, xmorph.Options{Segment: segmentOn})
		if err != nil {
			return fmt.Errorf("processing line: %w", err)
		}
		for _, f := range forms {
			if f.Kind != tokenize.Word && f.Kind != tokenize.Number {
				continue
			}
			if jsonOutput {
				if err := enc.Encode(jsonRow{
					Word:  f.Text.Runes(),
					Lemma: f.Analy.Lemma.Runes(),
					Tag:   f.Analy.Tag.String(),
					Prob:  f.Analy.Score,
				}); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintf(writer, "%s\t%s\t%.4f\n", f.Analy.Lemma.Runes(), f.Analy.Tag.String(), f.Analy.Score)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func loadVocab(path string) (disambig.Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v vocabJSON
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	out := make(disambig.Vocabulary, len(v.OutputTags))
	for i, s := range v.OutputTags {
		out[i] = tag.Parse(s)
	}
	return out, nil
}

func levelFromString(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
