// Package netlistio implements spec.md §6's "Netlist I/O to PnR" glue: it
// flattens a tech-mapped ir.Module into the MappedNetlist shape an external
// place-and-route engine consumes, applies pin assignments onto Iobuf
// cells, and accepts a placed/routed PnrNetlist back. The PnR algorithm
// itself — and bitstream generation downstream of it — are out of scope;
// this package only specifies what crosses that boundary.
package netlistio

import (
	"fmt"
	"strings"

	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

// MappedCell is one technology-mapped cell, named for pin-assignment and
// placement lookups independent of the working Netlist's CellID churn.
type MappedCell struct {
	ID          ir.CellID
	Name        string
	Kind        ir.CellKind
	Connections []ir.Connection
}

// MappedNetlist is the flat list of resolved-kind cells spec.md §6
// describes as the PnR layer's input: every cell has already been
// technology-mapped (Lut/Dff/Bram/Dsp/Iobuf/...), and every Iobuf is
// connected to a port-backed signal.
type MappedNetlist struct {
	ModuleName string
	Cells      []MappedCell
}

// FromModule flattens m's cells (post tech-mapping) into a MappedNetlist.
func FromModule(m *ir.Module, in *ident.Interner) *MappedNetlist {
	nl := &MappedNetlist{ModuleName: in.Lookup(m.Name)}
	for i := range m.Cells {
		c := &m.Cells[i]
		nl.Cells = append(nl.Cells, MappedCell{
			ID:          c.ID,
			Name:        in.Lookup(c.Name),
			Kind:        c.Kind,
			Connections: c.Connections,
		})
	}
	return nl
}

// PinAssignments maps a logical pin name (an Iobuf cell's name with its
// "io_" prefix stripped) to the device's required I/O standard.
type PinAssignments map[string]string

// ApplyPinAssignments overwrites IOStandard on every Iobuf cell in nl whose
// name, after stripping a leading "io_" prefix, has an entry in
// assignments, per spec.md §6's literal rule. Returns the number of cells
// touched.
func ApplyPinAssignments(nl *MappedNetlist, assignments PinAssignments) int {
	touched := 0
	for i := range nl.Cells {
		c := &nl.Cells[i]
		if c.Kind.Tag != ir.TagIobuf {
			continue
		}
		pin := strings.TrimPrefix(c.Name, "io_")
		std, ok := assignments[pin]
		if !ok {
			continue
		}
		c.Kind.IOStandard = std
		touched++
	}
	return touched
}

// Placement is one cell's device-grid coordinate, as returned by PnR.
type Placement struct {
	X, Y int
}

// PlacedCell is a MappedCell with PnR's placement decision attached.
type PlacedCell struct {
	MappedCell
	Placement Placement
	Fixed     bool // true if the placement was pinned rather than chosen by PnR
}

// PnrNetlist is the placed/routed netlist spec.md §6 describes PnR as
// returning: every cell carries a device-grid coordinate and a fixed flag.
type PnrNetlist struct {
	ModuleName string
	Cells      []PlacedCell
}

// PlacementOf looks up id's placement in a PnrNetlist.
func (p *PnrNetlist) PlacementOf(id ir.CellID) (Placement, bool) {
	for _, c := range p.Cells {
		if c.ID == id {
			return c.Placement, true
		}
	}
	return Placement{}, false
}

// PnR is the external place-and-route engine's contract, consuming a
// MappedNetlist for a named architecture and returning a placed/routed
// PnrNetlist. The real algorithm (tile-grid and site-aware packing) is out
// of scope per spec.md §4.6; this is only the boundary signature a driver
// wires a vendor tool (or this package's IdentityPnR) into.
type PnR interface {
	PlaceAndRoute(nl *MappedNetlist, archName string) (*PnrNetlist, error)
}

// IdentityPnR is a trivial PnR implementation that places every cell at the
// origin, unfixed. It exists to exercise the full
// Design -> MappedNetlist -> PnrNetlist pipeline end to end (tests, a local
// dry run) when no real vendor PnR tool is wired in.
type IdentityPnR struct{}

func (IdentityPnR) PlaceAndRoute(nl *MappedNetlist, archName string) (*PnrNetlist, error) {
	if archName == "" {
		return nil, fmt.Errorf("netlistio: PlaceAndRoute: architecture name required")
	}
	out := &PnrNetlist{ModuleName: nl.ModuleName}
	for _, c := range nl.Cells {
		out.Cells = append(out.Cells, PlacedCell{MappedCell: c})
	}
	return out, nil
}
