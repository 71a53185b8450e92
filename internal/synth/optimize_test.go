package synth

import (
	"testing"

	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

func newTestNetlist(t *testing.T) (*Netlist, *ident.Interner) {
	t.Helper()
	in := ident.New()
	tdb := ir.NewTypeDb()
	m := ir.NewModule(in.Intern("m"))
	return NewNetlist(m, tdb, in), in
}

// One And cell computing 1'b1 & 1'b0 folds in place to a Const 0, and the
// optimizer leaves that single Const driving y as the only live cell.
func TestConstPropFoldsAndThenDceCleansUp(t *testing.T) {
	n, in := newTestNetlist(t)
	y := n.AddSignal(ir.Signal{Name: in.Intern("y"), Type: n.Types.BitType(), Kind: ir.KindWire})
	n.Ports = append(n.Ports, ir.Port{Name: in.Intern("y"), Direction: ir.Output, Type: n.Types.BitType(), Signal: y})

	one := ir.ConstRef(ir.NewLogicVec(1, 1))
	zero := ir.ConstRef(ir.NewLogicVec(1, 0))
	n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpAnd, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", in, one),
			InputConn("B", in, zero),
			OutputConn("Y", in, ir.SigRef(y)),
		},
	})

	Optimize(n, OptBalanced)

	if n.LiveCellCount() != 1 {
		t.Fatalf("expected 1 live cell after optimization, got %d: %+v", n.LiveCellCount(), n.Cells)
	}
	live := n.LiveCells()
	c := n.Cells[live[0]]
	if c.Kind.Tag != ir.TagConst {
		t.Fatalf("expected the surviving cell to be a Const, got %+v", c.Kind)
	}
	v, _ := c.Kind.ConstValue.ToUint64()
	if v != 0 {
		t.Fatalf("expected 1&0 to fold to 0, got %d", v)
	}
}

// An unreferenced intermediate cell (no path to any port) is dead and gets
// removed even though its inputs aren't constant.
func TestDceRemovesUnreachableCell(t *testing.T) {
	n, in := newTestNetlist(t)
	a := n.AddSignal(ir.Signal{Name: in.Intern("a"), Type: n.Types.BitType(), Kind: ir.KindWire})
	b := n.AddSignal(ir.Signal{Name: in.Intern("b"), Type: n.Types.BitType(), Kind: ir.KindWire})
	y := n.AddSignal(ir.Signal{Name: in.Intern("y"), Type: n.Types.BitType(), Kind: ir.KindWire})
	n.Ports = append(n.Ports,
		ir.Port{Name: in.Intern("a"), Direction: ir.Input, Type: n.Types.BitType(), Signal: a},
		ir.Port{Name: in.Intern("y"), Direction: ir.Output, Type: n.Types.BitType(), Signal: y},
	)
	// b is driven but never read: its driving cell should die.
	n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpNot, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", in, ir.SigRef(a)),
			OutputConn("Y", in, ir.SigRef(b)),
		},
	})
	n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpBuf, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", in, ir.SigRef(a)),
			OutputConn("Y", in, ir.SigRef(y)),
		},
	})

	Optimize(n, OptBalanced)

	if n.LiveCellCount() != 1 {
		t.Fatalf("expected 1 live cell (the Buf driving y), got %d: %+v", n.LiveCellCount(), n.Cells)
	}
}

// Two structurally identical And cells (same op, same sorted inputs) fuse
// into one under CSE, with the duplicate's consumer rewired to the
// survivor.
func TestCseFusesDuplicateCells(t *testing.T) {
	n, in := newTestNetlist(t)
	a := n.AddSignal(ir.Signal{Name: in.Intern("a"), Type: n.Types.BitType(), Kind: ir.KindWire})
	b := n.AddSignal(ir.Signal{Name: in.Intern("b"), Type: n.Types.BitType(), Kind: ir.KindWire})
	t1 := n.AddSignal(ir.Signal{Name: in.Intern("t1"), Type: n.Types.BitType(), Kind: ir.KindWire})
	t2 := n.AddSignal(ir.Signal{Name: in.Intern("t2"), Type: n.Types.BitType(), Kind: ir.KindWire})
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
			OutputConn("Y", in, ir.SigRef(t1)),
		},
	})
	n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpAnd, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", in, ir.SigRef(a)),
			InputConn("B", in, ir.SigRef(b)),
			OutputConn("Y", in, ir.SigRef(t2)),
		},
	})
	n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpOr, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", in, ir.SigRef(t1)),
			InputConn("B", in, ir.SigRef(t2)),
			OutputConn("Y", in, ir.SigRef(y)),
		},
	})

	Optimize(n, OptBalanced)

	live := 0
	for _, id := range n.LiveCells() {
		if n.Cells[id].Kind.Tag == ir.TagGeneric && n.Cells[id].Kind.GenericOp == ir.OpAnd {
			live++
		}
	}
	if live != 1 {
		t.Fatalf("expected CSE to fuse the two identical And cells down to 1, got %d live: %+v", live, n.Cells)
	}
}
