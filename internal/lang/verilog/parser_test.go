package verilog

import (
	"testing"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
)

func parseSrc(t *testing.T, src string, dialect Dialect) (*SourceFile, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	lex := NewLexer(src, dialect, ident.FileID(0), sink)
	toks := TokenizeAll(lex)
	p := NewParser(toks, ident.FileID(0), dialect, sink)
	return p.ParseSourceFile(), sink
}

func TestParseCombinationalAnd(t *testing.T) {
	src := `
module and2(input a, input b, output y);
  assign y = a & b;
endmodule
`
	f, sink := parseSrc(t, src, DialectVerilog2005)
	for _, d := range sink.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	if len(f.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(f.Modules))
	}
	m := f.Modules[0]
	if m.Name != "and2" {
		t.Errorf("name = %q, want and2", m.Name)
	}
	if len(m.Ports) != 3 {
		t.Fatalf("expected 3 ports, got %d", len(m.Ports))
	}
	if len(m.Items) != 1 || m.Items[0].Tag != ItemContinuousAssign {
		t.Fatalf("expected one continuous assign item, got %+v", m.Items)
	}
	assign := m.Items[0].Assign
	if assign.RHS.Tag != ExBinary || assign.RHS.BinOp != BinBitAnd {
		t.Errorf("rhs = %+v, want a binary AND", assign.RHS)
	}
}

func TestParseCounter(t *testing.T) {
	src := `
module counter(input clk, input rst, output reg [3:0] count);
  always @(posedge clk) begin
    if (rst)
      count <= 4'b0000;
    else
      count <= count + 1;
  end
endmodule
`
	f, sink := parseSrc(t, src, DialectVerilog2005)
	for _, d := range sink.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	m := f.Modules[0]
	if len(m.Items) != 1 || m.Items[0].Tag != ItemAlwaysBlock {
		t.Fatalf("expected one always block, got %+v", m.Items)
	}
	ab := m.Items[0].Always
	if len(ab.Events) != 1 || ab.Events[0].Edge != EdgePosedge {
		t.Fatalf("expected one posedge event, got %+v", ab.Events)
	}
	if ab.Body.Tag != StBlock {
		t.Fatalf("expected begin/end block body, got tag %v", ab.Body.Tag)
	}
	ifStmt := ab.Body.Stmts[0]
	if ifStmt.Tag != StIf {
		t.Fatalf("expected if statement, got %v", ifStmt.Tag)
	}
	if ifStmt.Then.Tag != StNonBlockingAssign {
		t.Errorf("then-branch tag = %v, want non-blocking assign", ifStmt.Then.Tag)
	}
}

func TestParseInstanceWithParams(t *testing.T) {
	src := `
module top;
  wire a, b, y;
  and2 #(.WIDTH(1)) u_and(.a(a), .b(b), .y(y));
endmodule
`
	f, sink := parseSrc(t, src, DialectVerilog2005)
	for _, d := range sink.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	m := f.Modules[0]
	var inst *Instance
	for _, item := range m.Items {
		if item.Tag == ItemInstance {
			inst = item.Instance
		}
	}
	if inst == nil {
		t.Fatal("expected an instance item")
	}
	if inst.ModuleName != "and2" || inst.InstName != "u_and" {
		t.Errorf("inst = %+v", inst)
	}
	if len(inst.Conns) != 3 {
		t.Fatalf("expected 3 connections, got %d", len(inst.Conns))
	}
}

func TestPartSelectDisambiguation(t *testing.T) {
	src := `
module m;
  wire [7:0] bus;
  wire [3:0] lo;
  assign lo = bus[3:0];
  wire [3:0] hi;
  assign hi = bus[7-:4];
endmodule
`
	f, sink := parseSrc(t, src, DialectVerilog2005)
	for _, d := range sink.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	m := f.Modules[0]
	var assigns []*ContinuousAssign
	for _, item := range m.Items {
		if item.Tag == ItemContinuousAssign {
			assigns = append(assigns, item.Assign)
		}
	}
	if len(assigns) != 2 {
		t.Fatalf("expected 2 assigns, got %d", len(assigns))
	}
	if assigns[0].RHS.Tag != ExPartSelect {
		t.Errorf("bus[3:0] parsed as %v, want ExPartSelect", assigns[0].RHS.Tag)
	}
	if assigns[1].RHS.Tag != ExIndexedPartSelect || !assigns[1].RHS.IndexedDown {
		t.Errorf("bus[7-:4] parsed as %+v, want a downward indexed part-select", assigns[1].RHS)
	}
}

func TestExpressionPrecedence(t *testing.T) {
	src := `
module m;
  wire y;
  assign y = a | b & c;
endmodule
`
	f, sink := parseSrc(t, src, DialectVerilog2005)
	for _, d := range sink.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	rhs := f.Modules[0].Items[1].Assign.RHS
	if rhs.BinOp != BinBitOr {
		t.Fatalf("top operator = %v, want |  (lowest precedence binds loosest)", rhs.BinOp)
	}
	if rhs.R.BinOp != BinBitAnd {
		t.Fatalf("right operand = %v, want & nested tighter", rhs.R.BinOp)
	}
}

func TestSystemVerilogAlwaysComb(t *testing.T) {
	src := `
module m;
  logic [3:0] y;
  always_comb y = 4'd0;
endmodule
`
	f, sink := parseSrc(t, src, DialectSystemVerilog2017)
	for _, d := range sink.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	ab := f.Modules[0].Items[1].Always
	if ab.Kind != AlwaysComb {
		t.Errorf("kind = %v, want AlwaysComb", ab.Kind)
	}
}

func TestUnterminatedBlockCommentReported(t *testing.T) {
	sink := diag.NewSink()
	lex := NewLexer("/* never closed", DialectVerilog2005, ident.FileID(0), sink)
	TokenizeAll(lex)
	if !sink.HasErrors() {
		t.Fatal("expected an unterminated-comment diagnostic")
	}
}
