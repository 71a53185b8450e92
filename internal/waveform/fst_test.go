package waveform

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/sim"
)

func TestFstRecorderProducesValidGzip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewFstRecorder(&buf)

	rec.RegisterSignal(sim.SimSignalId(0), "top.clk", 1)
	rec.RecordChange(0, sim.SimSignalId(0), ir.NewLogicVec(1, 0))
	rec.RecordChange(1000, sim.SimSignalId(0), ir.NewLogicVec(1, 1))
	rec.RecordChange(1000, sim.SimSignalId(0), ir.NewLogicVec(1, 1)) // duplicate, suppressed

	if err := rec.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	raw, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("read decompressed stream: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte(fstMagic)) {
		t.Fatalf("decompressed stream missing magic, got %q", raw[:len(fstMagic)])
	}
	// one signal record plus two surviving change records
	if n := bytes.Count(raw, []byte{fstRecChange}); n < 2 {
		t.Fatalf("expected at least 2 change-record markers, found %d", n)
	}
}
