package arch

import (
	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/timing"
)

// GenericDelayModel supplies the timing.DelayModel a Generic fabric would
// be characterized with: LUT delay grows with its input count, carry and
// memory primitives get a fixed ripple/access delay, and every net carries
// a flat routing delay independent of fanout.
type GenericDelayModel struct{}

func (GenericDelayModel) CellDelay(kind ir.CellKind) timing.Delay {
	switch kind.Tag {
	case ir.TagLut:
		per := 0.05 * float64(kind.LutWidth)
		return timing.Delay{MinNs: per * 0.8, TypNs: per, MaxNs: per * 1.3}
	case ir.TagCarry:
		return timing.Delay{MinNs: 0.15, TypNs: 0.2, MaxNs: 0.3}
	case ir.TagBram:
		return timing.Delay{MinNs: 1.2, TypNs: 1.5, MaxNs: 1.9}
	case ir.TagDsp:
		return timing.Delay{MinNs: 1.5, TypNs: 1.8, MaxNs: 2.2}
	case ir.TagIobuf:
		return timing.Delay{MinNs: 0.8, TypNs: 1.0, MaxNs: 1.3}
	default:
		return timing.Delay{MinNs: 0.1, TypNs: 0.15, MaxNs: 0.2}
	}
}

func (GenericDelayModel) NetDelay() timing.Delay {
	return timing.Delay{MinNs: 0.02, TypNs: 0.04, MaxNs: 0.08}
}

func (GenericDelayModel) SetupTime(tag ir.CellKindTag) timing.Delay {
	return timing.Delay{MinNs: 0.05, TypNs: 0.08, MaxNs: 0.1}
}

func (GenericDelayModel) HoldTime(tag ir.CellKindTag) timing.Delay {
	return timing.Delay{MinNs: 0.02, TypNs: 0.03, MaxNs: 0.04}
}
