// Package dictfile implements the on-disk dictionary container format
// (spec §6): a fixed header of (offset, size) pairs pointing at five
// independently-loadable blobs — the main DAWG, the reversed-key suffix
// DAWG, the prefix DAWG, the packed paradigm table and the lemma string
// table — inside one file so the whole dictionary ships as a single
// artifact that can be mmapped as a unit.
package dictfile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/xmorph/xmorph/internal/xerrors"
)

const (
	magic         = "XMDICT\x00\x00"
	headerVersion = uint32(1)
	blobCount     = 5
	headerLen     = 16 + blobCount*8 // magic+version, then (offset,size) uint32 pairs
)

// Section names blob indices into Header.offsets/sizes, in on-disk order.
const (
	SectionDAWG = iota
	SectionSuffixDAWG
	SectionPrefixDAWG
	SectionParadigm
	SectionLemmaTable
)

// Header describes the layout of a dictionary container: which byte range
// each section occupies within the file.
type Header struct {
	Version uint32
	offsets [blobCount]uint32
	sizes   [blobCount]uint32
}

// Section returns the (offset, size) of the given SectionXxx index within
// the file this Header was parsed from.
func (h *Header) Section(i int) (offset, size uint32) {
	return h.offsets[i], h.sizes[i]
}

// Writer accumulates section blobs and serializes them into one container.
type Writer struct {
	blobs [blobCount][]byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// SetSection stores data for the given SectionXxx index, overwriting any
// previous value.
func (w *Writer) SetSection(i int, data []byte) {
	w.blobs[i] = data
}

// Write serializes the header followed by each section's bytes, in
// SectionXxx order, to out.
func (w *Writer) Write(out io.Writer) error {
	var offsets, sizes [blobCount]uint32
	cursor := uint32(headerLen)
	for i, b := range w.blobs {
		offsets[i] = cursor
		sizes[i] = uint32(len(b))
		cursor += uint32(len(b))
	}

	header := make([]byte, 0, headerLen)
	header = append(header, magic...)
	header = binary.LittleEndian.AppendUint32(header, headerVersion)
	header = append(header, 0, 0, 0, 0) // pad magic+version to 16 bytes
	for i := 0; i < blobCount; i++ {
		header = binary.LittleEndian.AppendUint32(header, offsets[i])
		header = binary.LittleEndian.AppendUint32(header, sizes[i])
	}
	if _, err := out.Write(header); err != nil {
		return err
	}
	for _, b := range w.blobs {
		if _, err := out.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// ParseHeader reads and validates the fixed-size header from the start of
// data. Callers then slice data themselves using Header.Section, which
// keeps mmap-backed loads zero-copy: dictfile never touches the section
// bytes, only the offset table.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: dictionary file shorter than header", xerrors.ErrCorruptDAWG)
	}
	if string(data[:8]) != magic {
		return nil, fmt.Errorf("%w: bad dictionary magic", xerrors.ErrCorruptDAWG)
	}
	h := &Header{Version: binary.LittleEndian.Uint32(data[8:12])}
	off := 16
	for i := 0; i < blobCount; i++ {
		h.offsets[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
		h.sizes[i] = binary.LittleEndian.Uint32(data[off:])
		off += 4
	}
	for i := 0; i < blobCount; i++ {
		end := uint64(h.offsets[i]) + uint64(h.sizes[i])
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: section %d out of range", xerrors.ErrCorruptDAWG, i)
		}
	}
	return h, nil
}

// Section slices data (the whole mapped/loaded file) down to the bytes
// belonging to section i, as described by h.
func Section(data []byte, h *Header, i int) []byte {
	off, size := h.Section(i)
	return data[off : off+size]
}
