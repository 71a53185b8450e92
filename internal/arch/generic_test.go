package arch

import (
	"testing"

	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/synth"
)

func TestGenericSatisfiesArchitecture(t *testing.T) {
	var _ synth.Architecture = NewGeneric("generic", "lut4-generic")
}

func TestGenericMapsAndGate(t *testing.T) {
	g := NewGeneric("generic", "lut4-generic")
	result := g.MapCell(ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpAnd, Width: 1})
	if result.Tag != synth.MapLuts {
		t.Fatalf("Tag = %v, want MapLuts", result.Tag)
	}
	if len(result.Luts) != 1 || result.Luts[0].InputCount != 2 {
		t.Fatalf("unexpected LUT mapping: %+v", result.Luts)
	}

	// AND truth table over 2 inputs: only row 3 (both 1) is true.
	v, ok := result.Luts[0].Init.ToUint64()
	if !ok || v != 0b1000 {
		t.Fatalf("AND truth table = %b, want 1000", v)
	}
}

func TestGenericMapsMux(t *testing.T) {
	g := NewGeneric("generic", "lut4-generic")
	result := g.MapCell(ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpMux, Width: 1})
	if len(result.Luts) != 1 || result.Luts[0].InputCount != 3 {
		t.Fatalf("unexpected LUT mapping: %+v", result.Luts)
	}
}

func TestGenericRejectsArithmeticOps(t *testing.T) {
	g := NewGeneric("generic", "lut4-generic")
	result := g.MapCell(ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpAdd, Width: 4})
	if result.Tag != synth.MapUnmappable {
		t.Fatalf("Tag = %v, want MapUnmappable for OpAdd", result.Tag)
	}
}

func TestGenericNeverInfersBramOrDsp(t *testing.T) {
	g := NewGeneric("generic", "lut4-generic")
	if g.InferBram(ir.Cell{Kind: ir.CellKind{Tag: ir.TagMemory}}) {
		t.Fatalf("generic fabric must never infer BRAM")
	}
	if g.InferDsp(ir.Cell{Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpMul}}) {
		t.Fatalf("generic fabric must never infer DSP")
	}
}

func TestGenericParams(t *testing.T) {
	g := NewGeneric("generic", "lut4-generic")
	p := g.Params()
	if p.LutInputCount != 4 {
		t.Fatalf("LutInputCount = %d, want 4", p.LutInputCount)
	}
	if g.LutInputCount() != 4 {
		t.Fatalf("LutInputCount() accessor = %d, want 4", g.LutInputCount())
	}
	if g.FamilyName() != "generic" || g.DeviceName() != "lut4-generic" {
		t.Fatalf("FamilyName/DeviceName = %q/%q", g.FamilyName(), g.DeviceName())
	}
}
