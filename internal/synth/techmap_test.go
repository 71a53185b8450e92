package synth

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aion-hdl/aion/internal/ir"
)

// fakeArch maps every generic cell to one LUT per output bit, each covering
// its operand count, infers neither BRAM nor DSP, and stands in for a device package's
// real Architecture implementation in tests.
type fakeArch struct{}

func (fakeArch) MapCell(kind ir.CellKind) MapResult {
	if kind.Tag != ir.TagGeneric {
		return MapResult{Tag: MapUnmappable}
	}
	inputs := 2
	if kind.GenericOp == ir.OpNot || kind.GenericOp == ir.OpBuf {
		inputs = 1
	}
	if kind.GenericOp == ir.OpMux {
		inputs = 3
	}
	luts := make([]ir.LutMapping, kind.Width)
	for i := range luts {
		luts[i] = ir.LutMapping{InputCount: inputs, Init: ir.NewLogicVec(1<<uint(inputs), 0)}
	}
	return MapResult{Tag: MapLuts, Luts: luts}
}

func (fakeArch) InferBram(ir.Cell) bool { return false }
func (fakeArch) InferDsp(ir.Cell) bool  { return false }
func (fakeArch) Params() DeviceParams {
	return DeviceParams{LutInputCount: 6, MaxBramDepth: 16384, MaxBramWidth: 72, MaxDspWidth: 36}
}

// A single-bit And cell maps in place to one Lut, preserving connections.
func TestTechMapSingleBitToOneLut(t *testing.T) {
	n, in := newTestNetlist(t)
	a := n.AddSignal(ir.Signal{Name: in.Intern("a"), Type: n.Types.BitType(), Kind: ir.KindWire})
	b := n.AddSignal(ir.Signal{Name: in.Intern("b"), Type: n.Types.BitType(), Kind: ir.KindWire})
	y := n.AddSignal(ir.Signal{Name: in.Intern("y"), Type: n.Types.BitType(), Kind: ir.KindWire})
	n.Ports = append(n.Ports,
		ir.Port{Name: in.Intern("a"), Direction: ir.Input, Type: n.Types.BitType(), Signal: a},
		ir.Port{Name: in.Intern("b"), Direction: ir.Input, Type: n.Types.BitType(), Signal: b},
		ir.Port{Name: in.Intern("y"), Direction: ir.Output, Type: n.Types.BitType(), Signal: y},
	)
	n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpAnd, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", in, ir.SigRef(a)),
			InputConn("B", in, ir.SigRef(b)),
			OutputConn("Y", in, ir.SigRef(y)),
		},
	})

	TechMap(n, fakeArch{})

	if n.LiveCellCount() != 1 {
		t.Fatalf("expected 1 live cell, got %d: %+v", n.LiveCellCount(), n.Cells)
	}
	c := n.Cells[n.LiveCells()[0]]
	if c.Kind.Tag != ir.TagLut {
		t.Fatalf("expected a Lut cell, got %+v", c.Kind)
	}
	if out, ok := c.ConnByName(in, "Y"); !ok || out.Ref.Signal != y {
		t.Fatal("expected the Lut's output connection preserved to y")
	}
}

// A multi-bit Not cell and the 4-bit Buf after it each expand into one Lut
// per bit; because y is a port, a fresh Buf drives it from a concatenation
// of the new per-bit signals.
func TestTechMapMultiBitExpandsPerBit(t *testing.T) {
	n, in := newTestNetlist(t)
	w4 := n.Types.Intern(ir.Type{Kind: ir.KindBitVec, Width: 4})
	a := n.AddSignal(ir.Signal{Name: in.Intern("a"), Type: w4, Kind: ir.KindWire})
	notA := n.AddSignal(ir.Signal{Name: in.Intern("nota"), Type: w4, Kind: ir.KindWire})
	y := n.AddSignal(ir.Signal{Name: in.Intern("y"), Type: w4, Kind: ir.KindWire})
	n.Ports = append(n.Ports,
		ir.Port{Name: in.Intern("a"), Direction: ir.Input, Type: w4, Signal: a},
		ir.Port{Name: in.Intern("y"), Direction: ir.Output, Type: w4, Signal: y},
	)
	n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpNot, Width: 4},
		Connections: []ir.Connection{
			InputConn("A", in, ir.SigRef(a)),
			OutputConn("Y", in, ir.SigRef(notA)),
		},
	})
	n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpBuf, Width: 4},
		Connections: []ir.Connection{
			InputConn("A", in, ir.SigRef(notA)),
			OutputConn("Y", in, ir.SigRef(y)),
		},
	})

	TechMap(n, fakeArch{})

	lutCount := 0
	var bufConn ir.Connection
	for _, id := range n.LiveCells() {
		c := n.Cells[id]
		if c.Kind.Tag == ir.TagLut {
			lutCount++
		}
		if c.Kind.Tag == ir.TagGeneric && c.Kind.GenericOp == ir.OpBuf {
			bufConn, _ = c.ConnByName(in, "A")
		}
	}
	if lutCount != 8 {
		t.Fatalf("expected 8 per-bit Luts (4 for the Not, 4 for the Buf), got %d: %+v", lutCount, n.Cells)
	}
	if bufConn.Ref.Tag != ir.RefConcat || len(bufConn.Ref.Parts) != 4 {
		t.Fatalf("expected the Buf's input rewired to a 4-part concat of fresh bit signals, got %+v", bufConn.Ref)
	}
}

func TestCountResources(t *testing.T) {
	in := ir.NewDesign()
	m := ir.NewModule(0)
	m.Ports = []ir.Port{{}, {}}
	m.AddCell(ir.Cell{Kind: ir.CellKind{Tag: ir.TagLut}})
	m.AddCell(ir.Cell{Kind: ir.CellKind{Tag: ir.TagDff}})
	m.AddCell(ir.Cell{Kind: ir.CellKind{Tag: ir.TagBram}})
	in.AddModule(m)

	rc := CountResources(in)
	want := ResourceCounts{Luts: 1, Ffs: 1, Brams: 1, Ios: 2}
	if diff := cmp.Diff(want, rc); diff != "" {
		t.Fatalf("resource counts mismatch (-want +got):\n%s", diff)
	}
}
