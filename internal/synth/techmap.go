package synth

import "github.com/aion-hdl/aion/internal/ir"

// MapResultTag discriminates Architecture.MapCell's result.
type MapResultTag int

const (
	MapLuts MapResultTag = iota
	MapFf
	MapBram
	MapDsp
	MapPassThrough
	MapUnmappable
)

// MapResult is one cell's technology-mapping outcome.
type MapResult struct {
	Tag  MapResultTag
	Luts []ir.LutMapping // MapLuts only, one entry per output bit
}

// DeviceParams are the architecture-specific limits a mapper consults.
type DeviceParams struct {
	LutInputCount int
	MaxBramDepth  int
	MaxBramWidth  int
	MaxDspWidth   int
}

// Architecture is the device-provided technology mapping capability set of
// spec.md §4.4.
type Architecture interface {
	MapCell(kind ir.CellKind) MapResult
	InferBram(cell ir.Cell) bool
	InferDsp(cell ir.Cell) bool
	Params() DeviceParams
}

// TechMap maps every live generic cell in n onto arch's primitives,
// applying spec.md §4.4's policy: Memory cells try BRAM first, Mul cells
// try DSP first, everything else goes through MapCell. PassThrough and
// Unmappable results leave the cell as-is.
func TechMap(n *Netlist, arch Architecture) {
	for _, id := range n.LiveCells() {
		c := n.Cells[id]
		if c.Kind.Tag == ir.TagMemory {
			if arch.InferBram(c) {
				n.Cells[int(id)].Kind.Tag = ir.TagBram
			}
			continue
		}
		if c.Kind.Tag == ir.TagGeneric && c.Kind.GenericOp == ir.OpMul {
			if arch.InferDsp(c) {
				n.Cells[int(id)].Kind.Tag = ir.TagDsp
				continue
			}
		}
		if c.Kind.Tag != ir.TagGeneric {
			continue
		}
		mapGenericCell(n, id, arch)
	}
}

func mapGenericCell(n *Netlist, id ir.CellID, arch Architecture) {
	c := n.Cells[id]
	result := arch.MapCell(c.Kind)
	switch result.Tag {
	case MapPassThrough, MapUnmappable:
		return
	case MapFf:
		n.Cells[int(id)].Kind.Tag = ir.TagDff
	case MapBram:
		n.Cells[int(id)].Kind.Tag = ir.TagBram
	case MapDsp:
		n.Cells[int(id)].Kind.Tag = ir.TagDsp
	case MapLuts:
		mapToLuts(n, id, result.Luts)
	}
}

// mapToLuts replaces a generic cell with its LUT mapping. A single-bit
// result (one LutMapping) replaces the cell in place, preserving its
// connections. A multi-bit result expands into one LUT per output bit,
// each driving a fresh signal, and rewires every downstream reference to
// the original output signal into a concatenation of those fresh bits —
// unless that output is itself a port, which keeps its identity and gets
// a driving Buf from the concatenation instead.
func mapToLuts(n *Netlist, id ir.CellID, luts []ir.LutMapping) {
	c := n.Cells[id]
	out, ok := c.ConnByName(n.in, "Y")
	if !ok || out.Ref.Tag != ir.RefSignal {
		return
	}
	if len(luts) <= 1 {
		var lw ir.LutMapping
		if len(luts) == 1 {
			lw = luts[0]
		}
		n.Cells[int(id)].Kind = ir.CellKind{Tag: ir.TagLut, LutWidth: lw.InputCount, LutInit: lw.Init}
		return
	}

	oldSig := out.Ref.Signal
	bitSigs := make([]ir.SignalID, len(luts))
	for i := range luts {
		bitSigs[i] = n.NewTemp(n.Types.BitType())
		var conns []ir.Connection
		for _, conn := range c.Connections {
			if conn.Direction != ir.Input {
				continue
			}
			conns = append(conns, InputConn(n.in.Lookup(conn.PortName), n.in, sliceRef(conn.Ref, i, i)))
		}
		conns = append(conns, OutputConn("Y", n.in, ir.SigRef(bitSigs[i])))
		n.AddCell(ir.Cell{
			Kind:        ir.CellKind{Tag: ir.TagLut, LutWidth: luts[i].InputCount, LutInit: luts[i].Init},
			Connections: conns,
			Span:        c.Span,
		})
	}
	n.RemoveCell(id)

	msbFirst := make([]ir.SignalRef, len(bitSigs))
	for i, s := range bitSigs {
		msbFirst[len(bitSigs)-1-i] = ir.SigRef(s)
	}
	replacement := ir.ConcatRef(msbFirst...)

	if n.isPortSignal(oldSig) {
		n.AddCell(ir.Cell{
			Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpBuf, Width: len(bitSigs)},
			Connections: []ir.Connection{
				InputConn("A", n.in, replacement),
				OutputConn("Y", n.in, ir.SigRef(oldSig)),
			},
			Span: c.Span,
		})
		return
	}
	for _, lid := range n.LiveCells() {
		lc := &n.Cells[int(lid)]
		for i := range lc.Connections {
			if lc.Connections[i].Direction == ir.Input {
				lc.Connections[i].Ref = substituteSignalRef(oldSig, replacement, lc.Connections[i].Ref)
			}
		}
	}
}

func (n *Netlist) isPortSignal(sig ir.SignalID) bool {
	for _, p := range n.Ports {
		if p.Signal == sig {
			return true
		}
	}
	return false
}

func substituteSignalRef(old ir.SignalID, repl, ref ir.SignalRef) ir.SignalRef {
	switch ref.Tag {
	case ir.RefSignal:
		if ref.Signal == old {
			return repl
		}
		return ref
	case ir.RefSlice:
		return ir.SliceRef(substituteSignalRef(old, repl, *ref.Base), ref.High, ref.Low)
	case ir.RefConcat:
		parts := make([]ir.SignalRef, len(ref.Parts))
		for i, p := range ref.Parts {
			parts[i] = substituteSignalRef(old, repl, p)
		}
		return ir.ConcatRef(parts...)
	default:
		return ref
	}
}

// ResourceCounts tallies mapped primitives across a Design, per spec.md
// §4.4's "after tech-mapping" resource counting.
type ResourceCounts struct {
	Luts  int
	Ffs   int
	Brams int
	Dsps  int
	Ios   int
	Plls  int
}

// CountResources sums resource usage across every module in d. Call it
// after every module's netlist has been rendered back via ToModule and
// substituted into the design.
func CountResources(d *ir.Design) ResourceCounts {
	var rc ResourceCounts
	for _, m := range d.Modules {
		rc.Ios += len(m.Ports)
		for _, c := range m.Cells {
			switch c.Kind.Tag {
			case ir.TagLut:
				rc.Luts++
			case ir.TagDff, ir.TagLatch:
				rc.Ffs++
			case ir.TagBram:
				rc.Brams++
			case ir.TagDsp:
				rc.Dsps++
			case ir.TagPll:
				rc.Plls++
			}
		}
	}
	return rc
}
