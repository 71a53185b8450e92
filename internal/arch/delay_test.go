package arch

import (
	"testing"

	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/timing"
)

func TestGenericDelayModelSatisfiesInterface(t *testing.T) {
	var _ timing.DelayModel = GenericDelayModel{}
}

func TestLutDelayGrowsWithInputCount(t *testing.T) {
	m := GenericDelayModel{}
	d2 := m.CellDelay(ir.CellKind{Tag: ir.TagLut, LutWidth: 2})
	d4 := m.CellDelay(ir.CellKind{Tag: ir.TagLut, LutWidth: 4})
	if d4.TypNs <= d2.TypNs {
		t.Fatalf("4-input LUT delay %v should exceed 2-input %v", d4.TypNs, d2.TypNs)
	}
}

func TestBramSlowerThanLut(t *testing.T) {
	m := GenericDelayModel{}
	lut := m.CellDelay(ir.CellKind{Tag: ir.TagLut, LutWidth: 4})
	bram := m.CellDelay(ir.CellKind{Tag: ir.TagBram})
	if bram.TypNs <= lut.TypNs {
		t.Fatalf("BRAM delay %v should exceed LUT delay %v", bram.TypNs, lut.TypNs)
	}
}
