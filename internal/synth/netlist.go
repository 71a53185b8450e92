// Package synth implements spec.md §4.4: lowering a Module's behavioral
// content (concurrent assignments and processes) into a mutable gate-level
// netlist, optimizing it to fixpoint, and technology-mapping it onto an
// architecture's primitives.
package synth

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

// Netlist is the working structure of spec.md §4.4: it parallels ir.Module
// but owns its own signal/cell arenas (so lowering and optimization can
// freely allocate synthesis temporaries) and tracks dead cells in a bitset
// rather than deleting them in place, so CellID stays a stable index for
// the lifetime of a pass.
type Netlist struct {
	Name  ident.ID
	Types *ir.TypeDb

	Ports   []ir.Port
	Signals []ir.Signal
	Cells   []ir.Cell
	dead    *bitset.BitSet

	in *ident.Interner

	tempCount int
}

// NewNetlist creates an empty working netlist for module m, copying its
// ports and signals (but not yet lowering its behavioral content).
func NewNetlist(m *ir.Module, tdb *ir.TypeDb, in *ident.Interner) *Netlist {
	n := &Netlist{
		Name:    m.Name,
		Types:   tdb,
		Ports:   append([]ir.Port(nil), m.Ports...),
		Signals: append([]ir.Signal(nil), m.Signals...),
		dead:    bitset.New(0),
		in:      in,
	}
	return n
}

// AddSignal appends a signal to the netlist's arena and returns its ID.
func (n *Netlist) AddSignal(s ir.Signal) ir.SignalID {
	id := ir.SignalID(len(n.Signals))
	s.ID = id
	n.Signals = append(n.Signals, s)
	return id
}

// NewTemp allocates a fresh synthesis-internal wire of the given type and
// returns its SignalID.
func (n *Netlist) NewTemp(typ ir.TypeID) ir.SignalID {
	name := fmt.Sprintf("_t%d", n.tempCount)
	n.tempCount++
	return n.AddSignal(ir.Signal{Name: n.in.Intern(name), Type: typ, Kind: ir.KindWire})
}

// AddCell appends a cell to the netlist's arena and returns its ID.
func (n *Netlist) AddCell(c ir.Cell) ir.CellID {
	id := ir.CellID(len(n.Cells))
	c.ID = id
	n.Cells = append(n.Cells, c)
	n.dead.SetTo(uint(id), false)
	return id
}

// RemoveCell marks a cell dead without compacting the arena, so CellIDs
// already referenced elsewhere (e.g. by Generate markers or diagnostics)
// stay valid.
func (n *Netlist) RemoveCell(id ir.CellID) {
	n.dead.Set(uint(id))
}

// IsDead reports whether a cell has been marked dead.
func (n *Netlist) IsDead(id ir.CellID) bool {
	return n.dead.Test(uint(id))
}

// LiveCellCount returns the number of cells not marked dead.
func (n *Netlist) LiveCellCount() int {
	return len(n.Cells) - int(n.dead.Count())
}

// LiveCells returns the IDs of every non-dead cell, in arena order.
func (n *Netlist) LiveCells() []ir.CellID {
	out := make([]ir.CellID, 0, n.LiveCellCount())
	for i := range n.Cells {
		if !n.dead.Test(uint(i)) {
			out = append(out, ir.CellID(i))
		}
	}
	return out
}

// InputConn constructs a Connection for a cell's input port without
// resolving direction against any target's port table (spec.md §4.4) —
// generic-cell ports have a fixed, cell-kind-determined direction.
func InputConn(portName string, in *ident.Interner, ref ir.SignalRef) ir.Connection {
	return ir.Connection{PortName: in.Intern(portName), Direction: ir.Input, Ref: ref}
}

// OutputConn constructs a Connection for a cell's output port.
func OutputConn(portName string, in *ident.Interner, ref ir.SignalRef) ir.Connection {
	return ir.Connection{PortName: in.Intern(portName), Direction: ir.Output, Ref: ref}
}

// ToModule renders the working netlist back into an ir.Module shape, for
// consumers (timing, simulation, netlist I/O) that operate on the stable
// IR rather than the synthesis-internal working structure. Dead cells are
// dropped permanently at this point — this is the one place the working
// arena's "mark, don't delete" discipline is reconciled with a compacted
// output.
func (n *Netlist) ToModule() *ir.Module {
	m := ir.NewModule(n.Name)
	m.Ports = n.Ports
	m.Signals = n.Signals
	for _, id := range n.LiveCells() {
		c := n.Cells[id]
		c.ID = ir.CellID(len(m.Cells))
		m.Cells = append(m.Cells, c)
	}
	return m
}
