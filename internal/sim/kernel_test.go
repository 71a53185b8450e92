package sim

import (
	"testing"

	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

func newTestDesign(t *testing.T) (*ir.Design, *ident.Interner, *ir.TypeDb) {
	t.Helper()
	in := ident.New()
	d := ir.NewDesign()
	return d, in, d.Types
}

func newTopModule(in *ident.Interner) *ir.Module {
	return ir.NewModule(in.Intern("top"))
}

func mustKernel(t *testing.T, d *ir.Design, in *ident.Interner) *Kernel {
	t.Helper()
	k, err := NewKernel(d, in)
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	return k
}

func TestSimulateEmptyModule(t *testing.T) {
	d, in, _ := newTestDesign(t)
	top := newTopModule(in)
	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()
	k.RunToCompletion()
	if k.Result().FinishedByUser {
		t.Fatalf("empty module should not call $finish")
	}
}

func TestSimulateCombinationalChain(t *testing.T) {
	d, in, tdb := newTestDesign(t)
	top := newTopModule(in)
	bit := tdb.BitType()

	one := ir.NewLogicVec(1, 1)
	a := top.AddSignal(ir.Signal{Name: in.Intern("a"), Type: bit, Kind: ir.KindWire, Initial: &one})
	b := top.AddSignal(ir.Signal{Name: in.Intern("b"), Type: bit, Kind: ir.KindWire, Initial: &one})
	out := top.AddSignal(ir.Signal{Name: in.Intern("out"), Type: bit, Kind: ir.KindWire})

	top.Assigns = append(top.Assigns, ir.ConcurrentAssign{
		Target: ir.SigRef(out),
		Value: ir.Expr{
			Tag:  ir.ExprBinary,
			Type: bit,
			BinOp: ir.BinBitAnd,
			Lhs:  &ir.Expr{Tag: ir.ExprSignal, Type: bit, Signal: a},
			Rhs:  &ir.Expr{Tag: ir.ExprSignal, Type: bit, Signal: b},
		},
	})

	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()
	k.RunToCompletion()

	id, ok := k.FindSignal("top.out")
	if !ok {
		t.Fatalf("signal top.out not found")
	}
	v, ok := k.SignalValue(id).ToUint64()
	if !ok || v != 1 {
		t.Fatalf("expected out=1, got %v (ok=%v)", v, ok)
	}
}

func TestSimulateCounter(t *testing.T) {
	d, in, tdb := newTestDesign(t)
	top := newTopModule(in)
	bit := tdb.BitType()
	bit4 := tdb.BitVecType(4, false)

	zero4 := ir.NewLogicVec(4, 0)
	zero1 := ir.NewLogicVec(1, 0)
	clk := top.AddSignal(ir.Signal{Name: in.Intern("clk"), Type: bit, Kind: ir.KindWire, Initial: &zero1})
	count := top.AddSignal(ir.Signal{Name: in.Intern("count"), Type: bit4, Kind: ir.KindReg, Initial: &zero4})

	top.AddProcess(ir.Process{
		Kind: ir.ProcSequential,
		Sensitivity: ir.Sensitivity{
			Kind:  ir.SensEdgeList,
			Edges: []ir.EdgeSensitivity{{Signal: clk, Edge: ir.EdgePos}},
		},
		Body: ir.Statement{
			Tag:      ir.StmtAssign,
			Target:   ir.SigRef(count),
			Blocking: false,
			Value: &ir.Expr{
				Tag:   ir.ExprBinary,
				Type:  bit4,
				BinOp: ir.BinAdd,
				Lhs:   &ir.Expr{Tag: ir.ExprSignal, Type: bit4, Signal: count},
				Rhs:   &ir.Expr{Tag: ir.ExprLiteral, Type: bit4, Literal: ir.NewLogicVec(4, 1)},
			},
		},
	})

	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()

	clkID, ok := k.FindSignal("top.clk")
	if !ok {
		t.Fatalf("signal top.clk not found")
	}
	for cycle := uint64(0); cycle < 3; cycle++ {
		rise := FromNs(10*cycle + 5)
		fall := FromNs(10*cycle + 10)
		k.ScheduleEvent(rise, clkID, ir.NewLogicVec(1, 1))
		k.ScheduleEvent(fall, clkID, ir.NewLogicVec(1, 0))
	}
	k.Run(50 * FsPerNs)

	countID, ok := k.FindSignal("top.count")
	if !ok {
		t.Fatalf("signal top.count not found")
	}
	v, ok := k.SignalValue(countID).ToUint64()
	if !ok || v != 3 {
		t.Fatalf("expected count=3 after 3 posedges, got %v (ok=%v)", v, ok)
	}
}

func TestSimulateFinishAtCorrectTime(t *testing.T) {
	d, in, _ := newTestDesign(t)
	top := newTopModule(in)

	top.AddProcess(ir.Process{
		Kind:        ir.ProcInitial,
		Sensitivity: ir.Sensitivity{Kind: ir.SensAll},
		Body: ir.Statement{
			Tag: ir.StmtBlock,
			Stmts: []ir.Statement{
				{Tag: ir.StmtDisplay, Format: "Hello, simulation!"},
				{Tag: ir.StmtFinish},
			},
		},
	})

	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()
	k.RunToCompletion()

	res := k.Result()
	if !res.FinishedByUser {
		t.Fatalf("expected $finish to have run")
	}
	if len(res.DisplayOutput) != 1 || res.DisplayOutput[0] != "Hello, simulation!" {
		t.Fatalf("unexpected display output: %v", res.DisplayOutput)
	}
	if res.FinishedAt == nil || res.FinishedAt.Fs != 0 {
		t.Fatalf("expected $finish recorded at time 0, got %v", res.FinishedAt)
	}
}

func TestSimulateAssertionFailure(t *testing.T) {
	d, in, _ := newTestDesign(t)
	top := newTopModule(in)

	top.AddProcess(ir.Process{
		Kind:        ir.ProcInitial,
		Sensitivity: ir.Sensitivity{Kind: ir.SensAll},
		Body: ir.Statement{
			Tag: ir.StmtBlock,
			Stmts: []ir.Statement{
				{
					Tag:        ir.StmtAssertion,
					AssertCond: ir.Expr{Tag: ir.ExprLiteral, Literal: ir.NewLogicVec(1, 0)},
					Message:    "expected true",
				},
				{Tag: ir.StmtFinish},
			},
		},
	})

	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()
	k.RunToCompletion()
	res := k.Result()
	if len(res.AssertionFailures) != 1 {
		t.Fatalf("expected exactly one assertion failure, got %d", len(res.AssertionFailures))
	}
	if res.AssertionFailures[0] != "expected true" {
		t.Fatalf("unexpected assertion message: %q", res.AssertionFailures[0])
	}
}

// simulate_hierarchy: a parent wire_in drives a child instance whose
// single assign inverts it into wire_out, via direct port-signal aliasing.
func TestSimulateHierarchy(t *testing.T) {
	d, in, tdb := newTestDesign(t)
	bit := tdb.BitType()

	child := ir.NewModule(in.Intern("inv"))
	inSig := child.AddSignal(ir.Signal{Name: in.Intern("in_sig"), Type: bit, Kind: ir.KindPort})
	outSig := child.AddSignal(ir.Signal{Name: in.Intern("out_sig"), Type: bit, Kind: ir.KindPort})
	child.Ports = []ir.Port{
		{Name: in.Intern("in_port"), Direction: ir.Input, Type: bit, Signal: inSig},
		{Name: in.Intern("out_port"), Direction: ir.Output, Type: bit, Signal: outSig},
	}
	child.Assigns = append(child.Assigns, ir.ConcurrentAssign{
		Target: ir.SigRef(outSig),
		Value: ir.Expr{
			Tag:     ir.ExprUnary,
			Type:    bit,
			UnOp:    ir.UnBitNot,
			Operand: &ir.Expr{Tag: ir.ExprSignal, Type: bit, Signal: inSig},
		},
	})
	childID := d.AddModule(child)

	top := newTopModule(in)
	one := ir.NewLogicVec(1, 1)
	wireIn := top.AddSignal(ir.Signal{Name: in.Intern("wire_in"), Type: bit, Kind: ir.KindWire, Initial: &one})
	wireOut := top.AddSignal(ir.Signal{Name: in.Intern("wire_out"), Type: bit, Kind: ir.KindWire})
	top.AddCell(ir.Cell{
		Name: in.Intern("child"),
		Kind: ir.CellKind{Tag: ir.TagInstance, InstanceModule: childID},
		Connections: []ir.Connection{
			{PortName: in.Intern("in_port"), Direction: ir.Input, Ref: ir.SigRef(wireIn)},
			{PortName: in.Intern("out_port"), Direction: ir.Output, Ref: ir.SigRef(wireOut)},
		},
	})

	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()
	k.RunToCompletion()

	id, ok := k.FindSignal("top.wire_out")
	if !ok {
		t.Fatalf("signal top.wire_out not found")
	}
	v, ok := k.SignalValue(id).ToUint64()
	if !ok || v != 0 {
		t.Fatalf("expected wire_out=0 (inverted from wire_in=1), got %v (ok=%v)", v, ok)
	}
}

func TestSimulateIfElse(t *testing.T) {
	d, in, tdb := newTestDesign(t)
	top := newTopModule(in)
	bit := tdb.BitType()

	one := ir.NewLogicVec(1, 1)
	sel := top.AddSignal(ir.Signal{Name: in.Intern("sel"), Type: bit, Kind: ir.KindWire, Initial: &one})
	out := top.AddSignal(ir.Signal{Name: in.Intern("out"), Type: bit, Kind: ir.KindWire})

	top.AddProcess(ir.Process{
		Kind:        ir.ProcCombinational,
		Sensitivity: ir.Sensitivity{Kind: ir.SensAll},
		Body: ir.Statement{
			Tag:  ir.StmtIf,
			Cond: &ir.Expr{Tag: ir.ExprSignal, Type: bit, Signal: sel},
			Then: &ir.Statement{Tag: ir.StmtAssign, Target: ir.SigRef(out), Blocking: true,
				Value: &ir.Expr{Tag: ir.ExprLiteral, Type: bit, Literal: ir.NewLogicVec(1, 1)}},
			Else: &ir.Statement{Tag: ir.StmtAssign, Target: ir.SigRef(out), Blocking: true,
				Value: &ir.Expr{Tag: ir.ExprLiteral, Type: bit, Literal: ir.NewLogicVec(1, 0)}},
		},
	})

	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()
	k.RunToCompletion()

	id, ok := k.FindSignal("top.out")
	if !ok {
		t.Fatalf("signal top.out not found")
	}
	v, ok := k.SignalValue(id).ToUint64()
	if !ok || v != 1 {
		t.Fatalf("expected out=1 (sel truthy takes then-branch), got %v (ok=%v)", v, ok)
	}
}

func TestSimulateCaseStatement(t *testing.T) {
	d, in, tdb := newTestDesign(t)
	top := newTopModule(in)
	bit := tdb.BitType()
	bit4 := tdb.BitVecType(4, false)

	two := ir.NewLogicVec(4, 2)
	sel := top.AddSignal(ir.Signal{Name: in.Intern("sel"), Type: bit4, Kind: ir.KindWire, Initial: &two})
	out := top.AddSignal(ir.Signal{Name: in.Intern("out"), Type: bit, Kind: ir.KindWire})

	top.AddProcess(ir.Process{
		Kind:        ir.ProcCombinational,
		Sensitivity: ir.Sensitivity{Kind: ir.SensAll},
		Body: ir.Statement{
			Tag:     ir.StmtCase,
			Subject: &ir.Expr{Tag: ir.ExprSignal, Type: bit4, Signal: sel},
			Arms: []ir.CaseArm{
				{
					Values: []ir.LogicVec{ir.NewLogicVec(4, 2)},
					Body: ir.Statement{Tag: ir.StmtAssign, Target: ir.SigRef(out), Blocking: true,
						Value: &ir.Expr{Tag: ir.ExprLiteral, Type: bit, Literal: ir.NewLogicVec(1, 1)}},
				},
			},
			Default: &ir.Statement{Tag: ir.StmtAssign, Target: ir.SigRef(out), Blocking: true,
				Value: &ir.Expr{Tag: ir.ExprLiteral, Type: bit, Literal: ir.NewLogicVec(1, 0)}},
		},
	})

	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()
	k.RunToCompletion()

	id, ok := k.FindSignal("top.out")
	if !ok {
		t.Fatalf("signal top.out not found")
	}
	v, ok := k.SignalValue(id).ToUint64()
	if !ok || v != 1 {
		t.Fatalf("expected out=1 (sel=2 matches case arm), got %v (ok=%v)", v, ok)
	}
}

func TestSimulateWithTimeLimit(t *testing.T) {
	d, in, _ := newTestDesign(t)
	top := newTopModule(in)
	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()
	k.Run(100 * FsPerNs)
	if k.Result().FinishedByUser {
		t.Fatalf("time-limited run with no $finish should not report finished_by_user")
	}
}

type fakeRecorder struct {
	registered map[SimSignalId]string
	changes    []struct {
		t uint64
		v ir.LogicVec
	}
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{registered: make(map[SimSignalId]string)}
}

func (r *fakeRecorder) RegisterSignal(id SimSignalId, name string, width int) {
	r.registered[id] = name
}

func (r *fakeRecorder) RecordChange(timeFs uint64, id SimSignalId, value ir.LogicVec) {
	r.changes = append(r.changes, struct {
		t uint64
		v ir.LogicVec
	}{timeFs, value})
}

func TestKernelRecorderReceivesChanges(t *testing.T) {
	d, in, tdb := newTestDesign(t)
	top := newTopModule(in)
	bit := tdb.BitType()
	clk := top.AddSignal(ir.Signal{Name: in.Intern("clk"), Type: bit, Kind: ir.KindWire})
	d.Top = d.AddModule(top)
	d.HasTop = true

	k := mustKernel(t, d, in)
	defer k.Close()
	rec := newFakeRecorder()
	k.SetRecorder(rec)

	clkID, ok := k.FindSignal("top.clk")
	if !ok {
		t.Fatalf("signal top.clk not found")
	}
	if name, ok := rec.registered[clkID]; !ok || name != "top.clk" {
		t.Fatalf("expected clk pre-registered with recorder, got %q (ok=%v)", name, ok)
	}

	k.ScheduleEvent(FromNs(5), clkID, ir.NewLogicVec(1, 1))
	k.RunToCompletion()

	if len(rec.changes) == 0 {
		t.Fatalf("expected at least one recorded change")
	}
	if rec.changes[0].t != 5*FsPerNs {
		t.Fatalf("expected first recorded change at 5ns, got %dfs", rec.changes[0].t)
	}
}
