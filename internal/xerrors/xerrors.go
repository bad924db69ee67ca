// Package xerrors defines the engine's load-time error taxonomy (§7 of the
// specification): CorruptDAWG, CorruptModel and VocabMismatch are fatal at
// Engine construction and are returned, never panicked. UnknownLemma and
// EmptyInterpretation are deliberately NOT error values — they are
// recoverable result shapes returned by Synthesize and Analyze
// respectively, exactly as the specification requires.
package xerrors

import "errors"

// Sentinel load-time errors. Wrap with fmt.Errorf("...: %w", Err*) to add
// context while keeping errors.Is working.
var (
	// ErrCorruptDAWG is returned when a DAWG blob fails a structural check:
	// bad magic, an out-of-range transition target, or a topological-order
	// violation.
	ErrCorruptDAWG = errors.New("xmorph: corrupt dawg")

	// ErrCorruptModel is returned when the model file fails verification.
	ErrCorruptModel = errors.New("xmorph: corrupt model")

	// ErrVocabMismatch is returned when the model's declared input/output
	// vocabulary does not match the vocabulary side-file supplied with it.
	ErrVocabMismatch = errors.New("xmorph: model vocabulary mismatch")
)
