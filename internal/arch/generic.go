// Package arch provides a concrete, device-agnostic synth.Architecture:
// a generic LUT4 fabric with plain flip-flops, used whenever a project
// target (internal/config) doesn't need a vendor-specific mapper. It
// stands in for the architecture packages spec.md §6 says a real backend
// supplies (family_name, device_name, resource totals, tech_mapper()).
package arch

import (
	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/synth"
)

// Generic is a four-input-LUT fabric: bitwise generic cells (NOT, BUF,
// AND, OR, XOR, MUX) map to one LUT per output bit, as synth.TechMap
// expects; arithmetic, relational and shift cells are reported unmappable
// and stay generic. Memory cells never infer BRAM, and Mul cells never
// infer DSP.
type Generic struct {
	family string
	device string
}

// NewGeneric names a Generic architecture instance for diagnostics and
// project-configuration matching (spec.md §6's `family`/`device` fields).
func NewGeneric(family, device string) Generic {
	return Generic{family: family, device: device}
}

func (g Generic) FamilyName() string { return g.family }
func (g Generic) DeviceName() string { return g.device }

func (g Generic) LutInputCount() int { return g.Params().LutInputCount }

func (g Generic) MapCell(kind ir.CellKind) synth.MapResult {
	if kind.Tag != ir.TagGeneric {
		return synth.MapResult{Tag: synth.MapUnmappable}
	}
	inputs := genericInputCount(kind.GenericOp)
	init, ok := genericLutInit(kind.GenericOp, inputs)
	if !ok {
		return synth.MapResult{Tag: synth.MapUnmappable}
	}
	luts := make([]ir.LutMapping, kind.Width)
	for i := range luts {
		luts[i] = ir.LutMapping{InputCount: inputs, Init: init}
	}
	return synth.MapResult{Tag: synth.MapLuts, Luts: luts}
}

// InferBram never fires: the generic fabric has no block RAM, so Memory
// cells stay as generic cells and fall through to lowering unchanged.
func (g Generic) InferBram(ir.Cell) bool { return false }

// InferDsp never fires: the generic fabric has no hard multiplier, so a
// Mul cell goes to MapCell, which reports it unmappable and leaves it a
// generic cell.
func (g Generic) InferDsp(ir.Cell) bool { return false }

func (g Generic) Params() synth.DeviceParams {
	return synth.DeviceParams{
		LutInputCount: 4,
		MaxBramDepth:  0,
		MaxBramWidth:  0,
		MaxDspWidth:   0,
	}
}

func genericInputCount(op ir.Op) int {
	switch op {
	case ir.OpNot, ir.OpBuf:
		return 1
	case ir.OpMux:
		return 3
	default:
		return 2
	}
}

// genericLutInit computes a truth table for a single bit-slice of op:
// bit i of the result is op's output for the input pattern whose bit j
// is (i>>j)&1. Arithmetic and relational ops span whole words rather
// than a single bit-slice's worth of logic and don't reduce to a LUT
// this way, so they report unmappable instead of a wrong table.
func genericLutInit(op ir.Op, inputs int) (ir.LogicVec, bool) {
	rows := 1 << uint(inputs)
	table := uint64(0)
	for pat := 0; pat < rows; pat++ {
		bit := func(j int) bool { return (pat>>uint(j))&1 == 1 }
		var out bool
		switch op {
		case ir.OpNot:
			out = !bit(0)
		case ir.OpBuf:
			out = bit(0)
		case ir.OpAnd:
			out = bit(0) && bit(1)
		case ir.OpOr:
			out = bit(0) || bit(1)
		case ir.OpXor:
			out = bit(0) != bit(1)
		case ir.OpMux:
			if bit(0) {
				out = bit(1)
			} else {
				out = bit(2)
			}
		default:
			return ir.LogicVec{}, false
		}
		if out {
			table |= 1 << uint(pat)
		}
	}
	return ir.NewLogicVec(rows, table), true
}
