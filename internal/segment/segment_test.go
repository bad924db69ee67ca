package segment

import (
	"testing"

	"github.com/xmorph/xmorph/internal/tag"
	"github.com/xmorph/xmorph/internal/ustring"
)

type fakeRunner struct {
	rows [][]float32
}

func (f *fakeRunner) Run(subwordIDs [][]int64, categorical [][]float32) ([][]float32, error) {
	return f.rows[:len(subwordIDs)], nil
}
func (f *fakeRunner) NumLabels() int { return numLabels }
func (f *fakeRunner) Close() error   { return nil }

func TestRepairLeavesLegalSequenceUnchanged(t *testing.T) {
	in := []Label{Prefix, Root, Root, Suffix, Ending}
	got := Repair(in)
	for i := range in {
		if got[i] != in[i] {
			t.Fatalf("Repair changed a legal sequence at %d: %v -> %v", i, in, got)
		}
	}
}

func TestRepairFixesMisplacedEndingInMiddle(t *testing.T) {
	// An ENDING-tagged character appearing before the actual suffix run
	// ends must not create a second SUFFIX run after it.
	in := []Label{Prefix, Root, Root, Ending, Suffix, Ending}
	got := Repair(in)
	want := []Label{Prefix, Root, Root, Ending, Ending, Ending}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Repair(%v) = %v want %v", in, got, want)
		}
	}
}

func TestRepairForcesPrefixBeforeFirstRoot(t *testing.T) {
	in := []Label{Suffix, Prefix, Root, Ending}
	got := Repair(in)
	want := []Label{Prefix, Prefix, Root, Ending}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Repair(%v) = %v want %v", in, got, want)
		}
	}
}

func TestRepairForcesRootRunBetweenFirstAndLastRoot(t *testing.T) {
	in := []Label{Prefix, Root, Suffix, Root, Ending}
	got := Repair(in)
	want := []Label{Prefix, Root, Root, Root, Ending}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Repair(%v) = %v want %v", in, got, want)
		}
	}
}

func TestRepairNoRootFallsBackToUnkn(t *testing.T) {
	in := []Label{Prefix, Suffix, Ending}
	got := Repair(in)
	for i, l := range got {
		if l != Unkn {
			t.Fatalf("Repair(%v)[%d] = %v want Unkn", in, i, l)
		}
	}
}

func TestRepairEmpty(t *testing.T) {
	if got := Repair(nil); got != nil {
		t.Fatalf("Repair(nil) = %v", got)
	}
}

func TestSegmentEndToEnd(t *testing.T) {
	word := ustring.FromRunes("домик")
	// 5 characters: д-о-м-и-к -> ROOT ROOT ROOT SUFFIX ENDING
	rows := [][]float32{
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	s := New(&fakeRunner{rows: rows}, nil, nil)
	got, err := s.Segment(word, tag.Tag{})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	want := []Label{Root, Root, Root, Suffix, Ending}
	if len(got) != len(want) {
		t.Fatalf("Segment = %v, want len %d", got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Segment(%q) = %v want %v", word.Runes(), got, want)
		}
	}
}

func TestSegmentEmptyWord(t *testing.T) {
	s := New(&fakeRunner{}, nil, nil)
	got, err := s.Segment(ustring.FromRunes(""), tag.Tag{})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if got != nil {
		t.Fatalf("Segment(\"\") = %v", got)
	}
}
