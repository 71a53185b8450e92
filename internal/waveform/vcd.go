// Package waveform records and reloads simulation waveforms.
package waveform

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/sim"
)

var _ sim.Recorder = (*VcdRecorder)(nil)

// idAlphabet is the set of printable VCD identifier characters, ASCII 33-126
// minus '$' (reserved for keywords) and whitespace.
const idAlphabet = "!\"#%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// vcdSignal is one registered signal's header-time bookkeeping.
type vcdSignal struct {
	id    sim.SimSignalId
	name  string // fully dotted hierarchical name, e.g. "top.child.out"
	width int
	code  string
}

// VcdRecorder implements sim.Recorder, streaming a textual VCD (IEEE 1364
// §18) waveform to w as the simulation runs. Scope declarations are derived
// from each signal's dotted name, since the kernel never calls an explicit
// begin/end-scope hook; RegisterSignal alone carries the hierarchy.
type VcdRecorder struct {
	w      *bufio.Writer
	closer io.Closer

	signals []vcdSignal
	codeOf  map[sim.SimSignalId]string

	headerWritten bool
	haveTime      bool
	lastTime      uint64
	lastValue     map[sim.SimSignalId]ir.LogicVec
}

// NewVcdRecorder wraps w, writing a timescale of 1fs as required by
// spec.md's waveform contract (the kernel's own time unit).
func NewVcdRecorder(w io.Writer) *VcdRecorder {
	return &VcdRecorder{
		w:         bufio.NewWriter(w),
		codeOf:    make(map[sim.SimSignalId]string),
		lastValue: make(map[sim.SimSignalId]ir.LogicVec),
	}
}

// NewVcdFile opens path for writing and returns a VcdRecorder that closes
// the file on Finalize.
func NewVcdFile(path string) (*VcdRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("waveform: create vcd file: %w", err)
	}
	r := NewVcdRecorder(f)
	r.closer = f
	return r, nil
}

// RegisterSignal assigns id a compact VCD identifier code. Must be called
// for every signal before the simulation's first RecordChange.
func (r *VcdRecorder) RegisterSignal(id sim.SimSignalId, name string, width int) {
	code := nextIDCode(len(r.signals))
	r.signals = append(r.signals, vcdSignal{id: id, name: name, width: width, code: code})
	r.codeOf[id] = code
}

// RecordChange appends a value change, suppressing a trailing duplicate of
// id's previous value as required by the waveform contract.
func (r *VcdRecorder) RecordChange(timeFs uint64, id sim.SimSignalId, value ir.LogicVec) {
	if !r.headerWritten {
		r.writeHeader()
		r.headerWritten = true
	}
	if last, ok := r.lastValue[id]; ok && last.Equal(value) {
		return
	}
	r.lastValue[id] = value
	if !r.haveTime || timeFs != r.lastTime {
		fmt.Fprintf(r.w, "#%d\n", timeFs)
		r.lastTime = timeFs
		r.haveTime = true
	}
	code := r.codeOf[id]
	if value.Width() == 1 {
		fmt.Fprintf(r.w, "%c%s\n", bitChar(value.Bits[0]), code)
	} else {
		fmt.Fprintf(r.w, "b%s %s\n", vcdBits(value), code)
	}
}

// Finalize flushes buffered output and closes the underlying file, if any.
func (r *VcdRecorder) Finalize() error {
	if !r.headerWritten {
		r.writeHeader()
		r.headerWritten = true
	}
	if err := r.w.Flush(); err != nil {
		return err
	}
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *VcdRecorder) writeHeader() {
	fmt.Fprintf(r.w, "$timescale 1fs $end\n")
	var scope []string
	for i := range r.signals {
		s := &r.signals[i]
		parts := strings.Split(s.name, ".")
		sigScope, leaf := parts[:len(parts)-1], parts[len(parts)-1]

		common := 0
		for common < len(scope) && common < len(sigScope) && scope[common] == sigScope[common] {
			common++
		}
		for j := len(scope); j > common; j-- {
			fmt.Fprintf(r.w, "$upscope $end\n")
		}
		for j := common; j < len(sigScope); j++ {
			fmt.Fprintf(r.w, "$scope module %s $end\n", sigScope[j])
		}
		scope = sigScope

		varType := "wire"
		fmt.Fprintf(r.w, "$var %s %d %s %s $end\n", varType, s.width, s.code, leaf)
	}
	for range scope {
		fmt.Fprintf(r.w, "$upscope $end\n")
	}
	fmt.Fprintf(r.w, "$enddefinitions $end\n$dumpvars\n$end\n")
}

// nextIDCode returns the n-th (0-based) VCD identifier in bijective base-len(idAlphabet)
// order: "!", "\"", ..., then two-character codes once the alphabet is exhausted.
func nextIDCode(n int) string {
	base := len(idAlphabet)
	n++
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{idAlphabet[n%base]}, buf...)
		n /= base
	}
	return string(buf)
}

func bitChar(b ir.Bit) byte {
	switch b {
	case ir.Bit0:
		return '0'
	case ir.Bit1:
		return '1'
	case ir.BitZ:
		return 'z'
	default:
		return 'x'
	}
}

// vcdBits renders value MSB-first, trimming redundant leading zero bits
// down to a minimal-width representation (at least one character).
func vcdBits(value ir.LogicVec) string {
	w := value.Width()
	buf := make([]byte, w)
	for i := 0; i < w; i++ {
		buf[i] = bitChar(value.Bits[w-1-i])
	}
	i := 0
	for i < len(buf)-1 && buf[i] == '0' {
		i++
	}
	return string(buf[i:])
}
