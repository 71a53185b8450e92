package lint

import (
	"testing"

	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

func newTestModule(t *testing.T) (*ir.Design, *ident.Interner, *ir.Module) {
	t.Helper()
	in := ident.New()
	d := ir.NewDesign()
	m := ir.NewModule(in.Intern("top"))
	d.AddModule(m)
	return d, in, m
}

func hasKind(issues []Issue, kind IssueKind) bool {
	for _, iss := range issues {
		if iss.Kind == kind {
			return true
		}
	}
	return false
}

func TestLintUndrivenSignal(t *testing.T) {
	d, in, m := newTestModule(t)
	bit := d.Types.BitType()
	m.AddSignal(ir.Signal{Name: in.Intern("floating"), Type: bit, Kind: ir.KindWire})

	issues := Run(d, in)
	if !hasKind(issues, IssueUndriven) {
		t.Fatalf("expected an undriven-signal issue, got %+v", issues)
	}
}

func TestLintNoFalsePositiveOnPort(t *testing.T) {
	d, in, m := newTestModule(t)
	bit := d.Types.BitType()
	sid := m.AddSignal(ir.Signal{Name: in.Intern("in_port"), Type: bit, Kind: ir.KindPort})
	m.Ports = append(m.Ports, ir.Port{Name: in.Intern("in_port"), Direction: ir.Input, Type: bit, Signal: sid})

	issues := Run(d, in)
	if hasKind(issues, IssueUndriven) || hasKind(issues, IssueDeadSignal) {
		t.Fatalf("ports must never be flagged undriven/dead, got %+v", issues)
	}
}

func TestLintMultiDriverConflict(t *testing.T) {
	d, in, m := newTestModule(t)
	bit := d.Types.BitType()
	out := m.AddSignal(ir.Signal{Name: in.Intern("out"), Type: bit, Kind: ir.KindWire})
	a := m.AddSignal(ir.Signal{Name: in.Intern("a"), Type: bit, Kind: ir.KindWire})
	b := m.AddSignal(ir.Signal{Name: in.Intern("b"), Type: bit, Kind: ir.KindWire})

	m.Assigns = append(m.Assigns,
		ir.ConcurrentAssign{Target: ir.SigRef(out), Value: ir.Expr{Tag: ir.ExprSignal, Signal: a}},
		ir.ConcurrentAssign{Target: ir.SigRef(out), Value: ir.Expr{Tag: ir.ExprSignal, Signal: b}},
	)

	issues := Run(d, in)
	if !hasKind(issues, IssueMultiDriver) {
		t.Fatalf("expected a multi-driver issue, got %+v", issues)
	}
}

func TestLintDeadSignal(t *testing.T) {
	d, in, m := newTestModule(t)
	bit := d.Types.BitType()
	a := m.AddSignal(ir.Signal{Name: in.Intern("a"), Type: bit, Kind: ir.KindWire})
	dead := m.AddSignal(ir.Signal{Name: in.Intern("dead"), Type: bit, Kind: ir.KindWire})

	m.Assigns = append(m.Assigns,
		ir.ConcurrentAssign{Target: ir.SigRef(dead), Value: ir.Expr{Tag: ir.ExprSignal, Signal: a}},
	)

	issues := Run(d, in)
	if !hasKind(issues, IssueDeadSignal) {
		t.Fatalf("expected a dead-signal issue, got %+v", issues)
	}
}

func TestLintLatchInferredOnMissingElse(t *testing.T) {
	d, in, m := newTestModule(t)
	bit := d.Types.BitType()
	sel := m.AddSignal(ir.Signal{Name: in.Intern("sel"), Type: bit, Kind: ir.KindWire})
	out := m.AddSignal(ir.Signal{Name: in.Intern("out"), Type: bit, Kind: ir.KindReg})

	one := ir.Expr{Tag: ir.ExprLiteral, Literal: ir.NewLogicVec(1, 1)}
	body := ir.Statement{
		Tag:  ir.StmtIf,
		Cond: &ir.Expr{Tag: ir.ExprSignal, Signal: sel},
		Then: &ir.Statement{Tag: ir.StmtAssign, Target: ir.SigRef(out), Value: &one, Blocking: true},
		// no Else: out is left holding its previous value when sel is false
	}
	m.AddProcess(ir.Process{Kind: ir.ProcCombinational, Sensitivity: ir.Sensitivity{Kind: ir.SensAll}, Body: body})

	issues := Run(d, in)
	if !hasKind(issues, IssueLatchInferred) {
		t.Fatalf("expected a latch-inferred issue, got %+v", issues)
	}
}

func TestLintNoLatchWhenElseCoversAllPaths(t *testing.T) {
	d, in, m := newTestModule(t)
	bit := d.Types.BitType()
	sel := m.AddSignal(ir.Signal{Name: in.Intern("sel"), Type: bit, Kind: ir.KindWire})
	out := m.AddSignal(ir.Signal{Name: in.Intern("out"), Type: bit, Kind: ir.KindReg})

	one := ir.Expr{Tag: ir.ExprLiteral, Literal: ir.NewLogicVec(1, 1)}
	zero := ir.Expr{Tag: ir.ExprLiteral, Literal: ir.NewLogicVec(1, 0)}
	body := ir.Statement{
		Tag:  ir.StmtIf,
		Cond: &ir.Expr{Tag: ir.ExprSignal, Signal: sel},
		Then: &ir.Statement{Tag: ir.StmtAssign, Target: ir.SigRef(out), Value: &one, Blocking: true},
		Else: &ir.Statement{Tag: ir.StmtAssign, Target: ir.SigRef(out), Value: &zero, Blocking: true},
	}
	m.AddProcess(ir.Process{Kind: ir.ProcCombinational, Sensitivity: ir.Sensitivity{Kind: ir.SensAll}, Body: body})

	issues := Run(d, in)
	if hasKind(issues, IssueLatchInferred) {
		t.Fatalf("did not expect a latch-inferred issue, got %+v", issues)
	}
}

func TestLintSequentialProcessNeverFlaggedForLatch(t *testing.T) {
	d, in, m := newTestModule(t)
	bit := d.Types.BitType()
	clk := m.AddSignal(ir.Signal{Name: in.Intern("clk"), Type: bit, Kind: ir.KindWire})
	out := m.AddSignal(ir.Signal{Name: in.Intern("out"), Type: bit, Kind: ir.KindReg})

	one := ir.Expr{Tag: ir.ExprLiteral, Literal: ir.NewLogicVec(1, 1)}
	body := ir.Statement{
		Tag:  ir.StmtIf,
		Cond: &ir.Expr{Tag: ir.ExprSignal, Signal: clk},
		Then: &ir.Statement{Tag: ir.StmtAssign, Target: ir.SigRef(out), Value: &one, Blocking: false},
	}
	m.AddProcess(ir.Process{
		Kind: ir.ProcSequential,
		Sensitivity: ir.Sensitivity{
			Kind:  ir.SensEdgeList,
			Edges: []ir.EdgeSensitivity{{Signal: clk, Edge: ir.EdgePos}},
		},
		Body: body,
	})

	issues := Run(d, in)
	if hasKind(issues, IssueLatchInferred) {
		t.Fatalf("sequential processes are not subject to latch inference, got %+v", issues)
	}
}
