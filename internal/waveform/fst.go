package waveform

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/sim"
)

var _ sim.Recorder = (*FstRecorder)(nil)

// fstMagic tags the stream so a reader can distinguish it from a bare gzip
// file produced by something else. This is a compact binary format of our
// own design, not the real Tcl FST container; spec.md only asks for "same
// contract as VCD", not bit-for-bit compatibility with a third-party viewer.
const fstMagic = "AIONFST1"

const (
	fstRecSignal = byte('S')
	fstRecChange = byte('C')
)

// FstRecorder implements sim.Recorder, streaming a compressed binary
// waveform to w. Every record is gzip-compressed as it is written, trading
// random access for a smaller file than VcdRecorder produces.
type FstRecorder struct {
	gz     *gzip.Writer
	w      *bufio.Writer
	closer io.Closer

	wroteMagic bool
	lastValue  map[sim.SimSignalId]ir.LogicVec
}

// NewFstRecorder wraps w in a gzip stream.
func NewFstRecorder(w io.Writer) *FstRecorder {
	gz := gzip.NewWriter(w)
	return &FstRecorder{
		gz:        gz,
		w:         bufio.NewWriter(gz),
		lastValue: make(map[sim.SimSignalId]ir.LogicVec),
	}
}

// NewFstFile opens path for writing and returns an FstRecorder that closes
// the file on Finalize.
func NewFstFile(path string) (*FstRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("waveform: create fst file: %w", err)
	}
	r := NewFstRecorder(f)
	r.closer = f
	return r, nil
}

func (r *FstRecorder) writeMagicOnce() {
	if r.wroteMagic {
		return
	}
	r.wroteMagic = true
	r.w.WriteString(fstMagic)
}

// RegisterSignal appends a signal-definition record.
func (r *FstRecorder) RegisterSignal(id sim.SimSignalId, name string, width int) {
	r.writeMagicOnce()
	r.w.WriteByte(fstRecSignal)
	r.writeUvarint(uint64(id))
	r.writeUvarint(uint64(width))
	r.writeString(name)
}

// RecordChange appends a value-change record, suppressing a trailing
// duplicate of id's previous value.
func (r *FstRecorder) RecordChange(timeFs uint64, id sim.SimSignalId, value ir.LogicVec) {
	r.writeMagicOnce()
	if last, ok := r.lastValue[id]; ok && last.Equal(value) {
		return
	}
	r.lastValue[id] = value
	r.w.WriteByte(fstRecChange)
	r.writeUvarint(timeFs)
	r.writeUvarint(uint64(id))
	r.writeUvarint(uint64(value.Width()))
	for _, b := range value.Bits {
		r.w.WriteByte(fstBitCode(b))
	}
}

// Finalize flushes the gzip stream and closes the underlying file, if any.
func (r *FstRecorder) Finalize() error {
	r.writeMagicOnce()
	if err := r.w.Flush(); err != nil {
		return err
	}
	if err := r.gz.Close(); err != nil {
		return err
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *FstRecorder) writeUvarint(v uint64) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	r.w.Write(buf[:n])
}

func (r *FstRecorder) writeString(s string) {
	r.writeUvarint(uint64(len(s)))
	r.w.WriteString(s)
}

func fstBitCode(b ir.Bit) byte {
	switch b {
	case ir.Bit0:
		return 0
	case ir.Bit1:
		return 1
	case ir.BitZ:
		return 2
	default:
		return 3
	}
}
