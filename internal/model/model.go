// Package model wraps the engine's on-device neural inference step behind
// a small capability interface shared by disambiguation and morpheme
// segmentation: encode features into tensors, run the model, decode the
// output back into label scores. No flatbuffer/TFLite runtime appears
// anywhere in the reference corpus (searched and confirmed absent); ONNX
// Runtime, as used by the corpus's embedding wrapper, is the closest
// attested "portable model file plus on-device inference runtime"
// dependency and is what both callers are built against here.
package model

import (
	"fmt"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/xmorph/xmorph/internal/xerrors"
)

// Runner is the capability both disambig and segment depend on. A Runner
// is safe for concurrent use by multiple goroutines — onnxruntime_go
// sessions tolerate concurrent Run calls, and Runner implementations must
// preserve that property.
type Runner interface {
	// Run executes one batch: subwordIDs is a ragged batch of hashed
	// n-gram id sequences (one per token, unpadded; padding is the
	// implementation's job), categorical is the parallel batch of fixed-width
	// categorical feature vectors. Run returns one score vector per
	// input, each of length NumLabels().
	Run(subwordIDs [][]int64, categorical [][]float32) ([][]float32, error)
	// NumLabels reports the output width of one Run result row.
	NumLabels() int
	Close() error
}

// Session wraps a single ONNX Runtime session for one task (tag
// disambiguation or morpheme segmentation); each task ships its own model
// file, so the engine constructs one Session per task rather than sharing
// one session with a task-selector input.
type Session struct {
	session   *ort.DynamicAdvancedSession
	numLabels int
	padLen    int
}

// Config controls Session construction.
type Config struct {
	ModelPath      string
	InputNames     []string // expected: {"subword_ids", "categorical"}
	OutputName     string
	NumLabels      int
	PadLen         int
	IntraOpThreads int
}

// NewSession loads an ONNX model from cfg.ModelPath and rejects a
// non-positive cfg.NumLabels with xerrors.ErrVocabMismatch. It does not
// read the model's declared output width; a model whose output width
// differs from cfg.NumLabels is reported with xerrors.ErrVocabMismatch by
// Run, not here.
func NewSession(cfg Config) (*Session, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("%w: onnxruntime init: %v", xerrors.ErrCorruptModel, err)
	}

	threads := cfg.IntraOpThreads
	if threads <= 0 {
		threads = runtime.NumCPU()
		if threads > 4 {
			threads = 4
		}
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: session options: %v", xerrors.ErrCorruptModel, err)
	}
	defer opts.Destroy()
	if err := opts.SetIntraOpNumThreads(threads); err != nil {
		return nil, fmt.Errorf("%w: set intra threads: %v", xerrors.ErrCorruptModel, err)
	}
	if err := opts.SetInterOpNumThreads(1); err != nil {
		return nil, fmt.Errorf("%w: set inter threads: %v", xerrors.ErrCorruptModel, err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, cfg.InputNames, []string{cfg.OutputName}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", xerrors.ErrCorruptModel, cfg.ModelPath, err)
	}

	if cfg.NumLabels <= 0 {
		session.Destroy()
		return nil, fmt.Errorf("%w: model declares zero labels", xerrors.ErrVocabMismatch)
	}

	return &Session{session: session, numLabels: cfg.NumLabels, padLen: cfg.PadLen}, nil
}

// NumLabels implements Runner.
func (s *Session) NumLabels() int { return s.numLabels }

// Close implements Runner.
func (s *Session) Close() error {
	if s.session != nil {
		s.session.Destroy()
	}
	return nil
}

// Run implements Runner: pads every subword-id sequence to the batch's
// longest length, builds the subword_ids/categorical tensors, and decodes
// the single output tensor back into per-item score rows.
func (s *Session) Run(subwordIDs [][]int64, categorical [][]float32) ([][]float32, error) {
	if len(subwordIDs) == 0 {
		return nil, nil
	}
	maxLen := s.padLen
	for _, ids := range subwordIDs {
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
	}
	if maxLen == 0 {
		maxLen = 1
	}

	batch := len(subwordIDs)
	flatIDs := make([]int64, batch*maxLen)
	for i, ids := range subwordIDs {
		copy(flatIDs[i*maxLen:], ids)
	}
	idShape := ort.NewShape(int64(batch), int64(maxLen))
	idTensor, err := ort.NewTensor(idShape, flatIDs)
	if err != nil {
		return nil, fmt.Errorf("subword_ids tensor: %w", err)
	}
	defer idTensor.Destroy()

	catWidth := 0
	if len(categorical) > 0 {
		catWidth = len(categorical[0])
	}
	flatCat := make([]float32, batch*catWidth)
	for i, c := range categorical {
		copy(flatCat[i*catWidth:], c)
	}
	catShape := ort.NewShape(int64(batch), int64(catWidth))
	catTensor, err := ort.NewTensor(catShape, flatCat)
	if err != nil {
		return nil, fmt.Errorf("categorical tensor: %w", err)
	}
	defer catTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{idTensor, catTensor}, outputs); err != nil {
		return nil, fmt.Errorf("model run: %w", err)
	}
	defer func() {
		if outputs[0] != nil {
			outputs[0].Destroy()
		}
	}()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("%w: unexpected output tensor type", xerrors.ErrCorruptModel)
	}
	data := out.GetData()
	if len(data) != batch*s.numLabels {
		return nil, fmt.Errorf("%w: output width %d does not match declared label count %d", xerrors.ErrVocabMismatch, len(data)/maxOne(batch), s.numLabels)
	}

	scores := make([][]float32, batch)
	for i := 0; i < batch; i++ {
		row := make([]float32, s.numLabels)
		copy(row, data[i*s.numLabels:(i+1)*s.numLabels])
		scores[i] = row
	}
	return scores, nil
}

func maxOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
