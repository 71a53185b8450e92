// Package timing implements spec.md §4.5: static timing analysis over a
// mapped Module's cell connections, and §4.6's SDC/XDC constraint parser.
package timing

import (
	"fmt"

	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

// NodeKind discriminates a timing graph node.
type NodeKind int

const (
	PrimaryInput NodeKind = iota
	PrimaryOutput
	CellPin
	ClockSource
)

// NodeID is a stable index into a Graph's node arena.
type NodeID int

// Node is one timing graph vertex.
type Node struct {
	ID   NodeID
	Kind NodeKind
	Name string
}

// EdgeKind discriminates a timing graph edge.
type EdgeKind int

const (
	CellDelayEdge EdgeKind = iota
	NetDelayEdge
	SetupCheckEdge
	HoldCheckEdge
)

// Delay carries best/typical/worst-case edge delay in nanoseconds.
type Delay struct {
	MinNs float64
	TypNs float64
	MaxNs float64
}

// Edge is one timing arc between two nodes.
type Edge struct {
	From  NodeID
	To    NodeID
	Kind  EdgeKind
	Delay Delay
}

// Graph is a directed timing graph built from one mapped Module.
type Graph struct {
	Nodes []Node
	Edges []Edge

	out map[NodeID][]int // node -> indices into Edges, outgoing
	in  map[NodeID][]int // node -> indices into Edges, incoming
}

func newGraph() *Graph {
	return &Graph{out: map[NodeID][]int{}, in: map[NodeID][]int{}}
}

func (g *Graph) addNode(kind NodeKind, name string) NodeID {
	id := NodeID(len(g.Nodes))
	g.Nodes = append(g.Nodes, Node{ID: id, Kind: kind, Name: name})
	return id
}

func (g *Graph) addEdge(from, to NodeID, kind EdgeKind, d Delay) {
	idx := len(g.Edges)
	g.Edges = append(g.Edges, Edge{From: from, To: to, Kind: kind, Delay: d})
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
}

func (g *Graph) isDataEdge(k EdgeKind) bool {
	return k == CellDelayEdge || k == NetDelayEdge
}

// isSink reports whether n has no outgoing data (non-check) edge.
func (g *Graph) isSink(n NodeID) bool {
	for _, idx := range g.out[n] {
		if g.isDataEdge(g.Edges[idx].Kind) {
			return false
		}
	}
	return true
}

// isSource reports whether n has no incoming data (non-check) edge.
func (g *Graph) isSource(n NodeID) bool {
	for _, idx := range g.in[n] {
		if g.isDataEdge(g.Edges[idx].Kind) {
			return false
		}
	}
	return true
}

// DelayModel supplies the per-cell and per-net delay numbers a real
// architecture package would derive from its timing characterization;
// SetupTime/HoldTime cover the check edges into a register's D pin.
type DelayModel interface {
	CellDelay(kind ir.CellKind) Delay
	NetDelay() Delay
	SetupTime(tag ir.CellKindTag) Delay
	HoldTime(tag ir.CellKindTag) Delay
}

func cellLabel(in *ident.Interner, c ir.Cell) string {
	if c.Name != 0 {
		return in.Lookup(c.Name)
	}
	return fmt.Sprintf("cell%d", c.ID)
}

// BuildGraph constructs a timing graph from m's cell-level connections.
// clockPorts names the ports bound to a create_clock constraint (§4.6),
// which become ClockSource nodes instead of plain PrimaryInputs.
func BuildGraph(m *ir.Module, in *ident.Interner, dm DelayModel, clockPorts map[string]bool) *Graph {
	g := newGraph()
	sigNode := map[ir.SignalID]NodeID{}

	for _, p := range m.Ports {
		name := in.Lookup(p.Name)
		if p.Direction == ir.Input || p.Direction == ir.InOut {
			kind := PrimaryInput
			if clockPorts[name] {
				kind = ClockSource
			}
			sigNode[p.Signal] = g.addNode(kind, name)
		}
	}

	driverOf := func(ref ir.SignalRef) (NodeID, bool) {
		for ref.Tag == ir.RefSlice {
			ref = *ref.Base
		}
		if ref.Tag != ir.RefSignal {
			return 0, false
		}
		id, ok := sigNode[ref.Signal]
		return id, ok
	}
	resolveOrSeed := func(ref ir.SignalRef, label string) NodeID {
		if id, ok := driverOf(ref); ok {
			return id
		}
		id := g.addNode(PrimaryInput, label)
		var base ir.SignalRef = ref
		for base.Tag == ir.RefSlice {
			base = *base.Base
		}
		if base.Tag == ir.RefSignal {
			sigNode[base.Signal] = id
		}
		return id
	}

	// Pass 1: every cell output gets a CellPin node.
	for _, c := range m.Cells {
		label := cellLabel(in, c)
		for _, conn := range c.Connections {
			if conn.Direction != ir.Output {
				continue
			}
			if conn.Ref.Tag != ir.RefSignal {
				continue
			}
			portName := in.Lookup(conn.PortName)
			sigNode[conn.Ref.Signal] = g.addNode(CellPin, label+"."+portName)
		}
	}

	// Pass 2: wire edges.
	for _, c := range m.Cells {
		label := cellLabel(in, c)
		if c.Kind.Tag == ir.TagDff || c.Kind.Tag == ir.TagLatch {
			var clkRef, dRef, qRef ir.SignalRef
			haveClk, haveD, haveQ := false, false, false
			for _, conn := range c.Connections {
				name := in.Lookup(conn.PortName)
				switch {
				case name == "CLK" && conn.Direction == ir.Input:
					clkRef, haveClk = conn.Ref, true
				case name == "D" && conn.Direction == ir.Input:
					dRef, haveD = conn.Ref, true
				case name == "Q" && conn.Direction == ir.Output:
					qRef, haveQ = conn.Ref, true
				}
			}
			if !haveClk || !haveQ {
				continue
			}
			clkNode := resolveOrSeed(clkRef, label+".CLK")
			qNode := sigNode[qRef.Signal]
			g.addEdge(clkNode, qNode, CellDelayEdge, dm.CellDelay(c.Kind))
			if haveD {
				dDriver := resolveOrSeed(dRef, label+".D.src")
				dPin := g.addNode(CellPin, label+".D")
				g.addEdge(dDriver, dPin, NetDelayEdge, dm.NetDelay())
				g.addEdge(clkNode, dPin, SetupCheckEdge, dm.SetupTime(c.Kind.Tag))
				g.addEdge(clkNode, dPin, HoldCheckEdge, dm.HoldTime(c.Kind.Tag))
			}
			continue
		}

		var outputs []ir.Connection
		for _, conn := range c.Connections {
			if conn.Direction == ir.Output && conn.Ref.Tag == ir.RefSignal {
				outputs = append(outputs, conn)
			}
		}
		for _, conn := range c.Connections {
			if conn.Direction != ir.Input {
				continue
			}
			driver := resolveOrSeed(conn.Ref, label+"."+in.Lookup(conn.PortName)+".src")
			for _, out := range outputs {
				outNode := sigNode[out.Ref.Signal]
				g.addEdge(driver, outNode, CellDelayEdge, dm.CellDelay(c.Kind))
			}
		}
	}

	// Pass 3: module outputs are sinks one net-delay hop past their driver.
	for _, p := range m.Ports {
		if p.Direction != ir.Output && p.Direction != ir.InOut {
			continue
		}
		name := in.Lookup(p.Name)
		driver, ok := sigNode[p.Signal]
		if !ok {
			driver = g.addNode(PrimaryInput, name+".unconnected")
		}
		outNode := g.addNode(PrimaryOutput, name)
		g.addEdge(driver, outNode, NetDelayEdge, dm.NetDelay())
	}

	return g
}
