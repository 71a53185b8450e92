package timing

import (
	"testing"

	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

type fixedDelay struct{}

func (fixedDelay) CellDelay(ir.CellKind) Delay    { return Delay{MinNs: 0.1, TypNs: 0.2, MaxNs: 0.3} }
func (fixedDelay) NetDelay() Delay                { return Delay{MinNs: 0.01, TypNs: 0.02, MaxNs: 0.05} }
func (fixedDelay) SetupTime(ir.CellKindTag) Delay { return Delay{MinNs: 0.05, TypNs: 0.08, MaxNs: 0.1} }
func (fixedDelay) HoldTime(ir.CellKindTag) Delay  { return Delay{MinNs: 0.02, TypNs: 0.03, MaxNs: 0.04} }

// a -> AND(a,b) -> y, a simple two-input combinational module.
func buildCombModule(t *testing.T) (*ir.Module, *ident.Interner) {
	t.Helper()
	in := ident.New()
	tdb := ir.NewTypeDb()
	m := ir.NewModule(in.Intern("comb"))
	bit := tdb.BitType()
	a := m.AddSignal(ir.Signal{Name: in.Intern("a"), Type: bit, Kind: ir.KindWire})
	b := m.AddSignal(ir.Signal{Name: in.Intern("b"), Type: bit, Kind: ir.KindWire})
	y := m.AddSignal(ir.Signal{Name: in.Intern("y"), Type: bit, Kind: ir.KindWire})
	m.Ports = []ir.Port{
		{Name: in.Intern("a"), Direction: ir.Input, Type: bit, Signal: a},
		{Name: in.Intern("b"), Direction: ir.Input, Type: bit, Signal: b},
		{Name: in.Intern("y"), Direction: ir.Output, Type: bit, Signal: y},
	}
	m.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpAnd, Width: 1},
		Connections: []ir.Connection{
			{PortName: in.Intern("A"), Direction: ir.Input, Ref: ir.SigRef(a)},
			{PortName: in.Intern("B"), Direction: ir.Input, Ref: ir.SigRef(b)},
			{PortName: in.Intern("Y"), Direction: ir.Output, Ref: ir.SigRef(y)},
		},
	})
	return m, in
}

func TestBuildGraphCombinationalHasExpectedSinksAndSources(t *testing.T) {
	m, in := buildCombModule(t)
	g := BuildGraph(m, in, fixedDelay{}, nil)

	var sources, sinks int
	for _, n := range g.Nodes {
		if g.isSource(n.ID) {
			sources++
		}
		if (n.Kind == PrimaryOutput || n.Kind == CellPin) && g.isSink(n.ID) {
			sinks++
		}
	}
	if sources < 2 {
		t.Fatalf("expected at least 2 source nodes (a, b), got %d", sources)
	}
	if sinks != 1 {
		t.Fatalf("expected exactly 1 sink (y), got %d", sinks)
	}
}

// clk -> DFF(D=d, CLK=clk, Q=q) -> q, exercising the setup-check edge.
func buildSeqModule(t *testing.T) (*ir.Module, *ident.Interner) {
	t.Helper()
	in := ident.New()
	tdb := ir.NewTypeDb()
	m := ir.NewModule(in.Intern("seq"))
	bit := tdb.BitType()
	clk := m.AddSignal(ir.Signal{Name: in.Intern("clk"), Type: bit, Kind: ir.KindWire})
	d := m.AddSignal(ir.Signal{Name: in.Intern("d"), Type: bit, Kind: ir.KindWire})
	q := m.AddSignal(ir.Signal{Name: in.Intern("q"), Type: bit, Kind: ir.KindWire})
	m.Ports = []ir.Port{
		{Name: in.Intern("clk"), Direction: ir.Input, Type: bit, Signal: clk},
		{Name: in.Intern("d"), Direction: ir.Input, Type: bit, Signal: d},
		{Name: in.Intern("q"), Direction: ir.Output, Type: bit, Signal: q},
	}
	m.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagDff},
		Connections: []ir.Connection{
			{PortName: in.Intern("D"), Direction: ir.Input, Ref: ir.SigRef(d)},
			{PortName: in.Intern("CLK"), Direction: ir.Input, Ref: ir.SigRef(clk)},
			{PortName: in.Intern("Q"), Direction: ir.Output, Ref: ir.SigRef(q)},
		},
	})
	return m, in
}

func TestBuildGraphSequentialAddsSetupCheckEdge(t *testing.T) {
	m, in := buildSeqModule(t)
	g := BuildGraph(m, in, fixedDelay{}, map[string]bool{"clk": true})

	var clkNode NodeID
	foundClk := false
	for _, n := range g.Nodes {
		if n.Kind == ClockSource && n.Name == "clk" {
			clkNode, foundClk = n.ID, true
		}
	}
	if !foundClk {
		t.Fatal("expected a ClockSource node for clk")
	}
	setupCount := 0
	for _, e := range g.Edges {
		if e.Kind == SetupCheckEdge && e.From == clkNode {
			setupCount++
		}
	}
	if setupCount != 1 {
		t.Fatalf("expected exactly 1 setup-check edge from the clock, got %d", setupCount)
	}
}
