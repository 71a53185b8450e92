package elaborate

import (
	"testing"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/lang/vhdl"
	"github.com/aion-hdl/aion/internal/lang/verilog"
)

func parseVerilog(t *testing.T, in *ident.Interner, db *ident.SourceDb, sink *diag.Sink, name, src string) (*verilog.SourceFile, ident.FileID) {
	t.Helper()
	file := db.AddFile(name, src)
	lex := verilog.NewLexer(src, verilog.DialectSystemVerilog2017, file, sink)
	toks := verilog.TokenizeAll(lex)
	p := verilog.NewParser(toks, file, verilog.DialectSystemVerilog2017, sink)
	return p.ParseSourceFile(), file
}

func parseVHDL(t *testing.T, in *ident.Interner, db *ident.SourceDb, sink *diag.Sink, name, src string) (*vhdl.DesignFile, ident.FileID) {
	t.Helper()
	file := db.AddFile(name, src)
	lex := vhdl.NewLexer(src, file, sink)
	toks := vhdl.TokenizeAll(lex)
	p := vhdl.NewParser(toks, file, sink)
	return p.ParseDesignFile(), file
}

func requireNoErrors(t *testing.T, sink *diag.Sink) {
	t.Helper()
	for _, d := range sink.Diagnostics() {
		if d.Severity == diag.Error {
			t.Errorf("unexpected diagnostic %s: %s", d.Code, d.Message)
		}
	}
}

// Scenario 1: a single combinational AND gate elaborates to one module with
// no cells beyond the continuous assign driving y.
func TestElaborateCombinationalAnd(t *testing.T) {
	in := ident.New()
	db := ident.NewSourceDb()
	sink := diag.NewSink()
	reg := NewRegistry()

	f, file := parseVerilog(t, in, db, sink, "and2.v", `
module and2(input a, input b, output y);
  assign y = a & b;
endmodule
`)
	reg.AddVerilogFile(f, file, sink)
	requireNoErrors(t, sink)

	design := New(reg, in, db, sink).Elaborate("and2")
	requireNoErrors(t, sink)

	if !design.HasTop {
		t.Fatal("expected HasTop true")
	}
	top := design.TopModule()
	if len(top.Ports) != 3 {
		t.Fatalf("expected 3 ports, got %d", len(top.Ports))
	}
	if len(top.Assigns) != 1 {
		t.Fatalf("expected 1 continuous assign, got %d", len(top.Assigns))
	}
}

// Scenario 2: a parameterized 4-bit counter elaborates with WIDTH bound to
// its default and exposes a sequential process.
func TestElaborateCounter(t *testing.T) {
	in := ident.New()
	db := ident.NewSourceDb()
	sink := diag.NewSink()
	reg := NewRegistry()

	f, file := parseVerilog(t, in, db, sink, "counter.v", `
module counter #(parameter WIDTH = 4) (
  input clk,
  input rst,
  output reg [WIDTH-1:0] count
);
  always @(posedge clk) begin
    if (rst)
      count <= 0;
    else
      count <= count + 1;
  end
endmodule
`)
	reg.AddVerilogFile(f, file, sink)
	requireNoErrors(t, sink)

	design := New(reg, in, db, sink).Elaborate("counter")
	requireNoErrors(t, sink)

	top := design.TopModule()
	if len(top.Processes) != 1 {
		t.Fatalf("expected 1 process, got %d", len(top.Processes))
	}
	proc := top.Processes[0]
	if proc.Kind != ir.ProcSequential {
		t.Fatalf("expected a sequential process, got kind %v", proc.Kind)
	}
	if proc.Sensitivity.Kind != ir.SensEdgeList {
		t.Fatalf("expected edge-list sensitivity, got kind %v", proc.Sensitivity.Kind)
	}
	countPort, ok := top.PortByName(in.Intern("count"))
	if !ok {
		t.Fatal("expected a count port")
	}
	width := design.Types.Lookup(countPort.Type).BitVecWidth()
	if width != 4 {
		t.Fatalf("expected width 4 from WIDTH default, got %d", width)
	}
}

// Scenario 5: a Verilog top instantiates a VHDL entity, exercising
// cross-language hierarchy resolution through the shared registry.
func TestElaborateMultiLanguageHierarchy(t *testing.T) {
	in := ident.New()
	db := ident.NewSourceDb()
	sink := diag.NewSink()
	reg := NewRegistry()

	vf, vfile := parseVHDL(t, in, db, sink, "and2.vhd", `
entity and2 is
  port (
    a, b : in  std_logic;
    y    : out std_logic
  );
end entity and2;

architecture rtl of and2 is
begin
  y <= a and b;
end architecture rtl;
`)
	reg.AddVHDLFile(vf, vfile, sink)
	requireNoErrors(t, sink)

	tf, tfile := parseVerilog(t, in, db, sink, "top.v", `
module top(input a, input b, output y);
  and2 u_and2(.a(a), .b(b), .y(y));
endmodule
`)
	reg.AddVerilogFile(tf, tfile, sink)
	requireNoErrors(t, sink)

	design := New(reg, in, db, sink).Elaborate("top")
	requireNoErrors(t, sink)

	top := design.TopModule()
	if len(top.Cells) != 1 {
		t.Fatalf("expected 1 cell (the and2 instance), got %d", len(top.Cells))
	}
	inst := top.Cells[0]
	if inst.Kind.Tag != ir.TagInstance {
		t.Fatalf("expected an instance cell")
	}
	child := design.Module(inst.Kind.InstanceModule)
	if len(child.Ports) != 3 {
		t.Fatalf("expected the VHDL child to have 3 ports, got %d", len(child.Ports))
	}
	if len(child.Assigns) != 1 {
		t.Fatalf("expected the VHDL child's concurrent assignment to lower, got %d", len(child.Assigns))
	}
}

// Scenario 6: an unknown top module reports E206 and yields an empty,
// HasTop-false design rather than panicking.
func TestElaborateUnknownTopModule(t *testing.T) {
	in := ident.New()
	db := ident.NewSourceDb()
	sink := diag.NewSink()
	reg := NewRegistry()

	f, file := parseVerilog(t, in, db, sink, "and2.v", `
module and2(input a, input b, output y);
  assign y = a & b;
endmodule
`)
	reg.AddVerilogFile(f, file, sink)
	requireNoErrors(t, sink)

	design := New(reg, in, db, sink).Elaborate("does_not_exist")
	if design.HasTop {
		t.Fatal("expected HasTop false for an unknown top module")
	}
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == diag.E206 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an E206 diagnostic")
	}
}

// Recursive instantiation must be reported as E202, not recurse forever.
// The top module itself exists, so the design still has a top; only the
// instance that closes the cycle is dropped.
func TestElaborateRecursiveCycleReportsE202(t *testing.T) {
	in := ident.New()
	db := ident.NewSourceDb()
	sink := diag.NewSink()
	reg := NewRegistry()

	f, file := parseVerilog(t, in, db, sink, "cycle.v", `
module a_mod(input x, output y);
  b_mod u_b(.x(x), .y(y));
endmodule

module b_mod(input x, output y);
  a_mod u_a(.x(x), .y(y));
endmodule
`)
	reg.AddVerilogFile(f, file, sink)
	requireNoErrors(t, sink)

	design := New(reg, in, db, sink).Elaborate("a_mod")
	if !design.HasTop {
		t.Fatal("expected HasTop true: the top module exists despite the recursive instantiation cycle")
	}
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == diag.E202 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an E202 diagnostic")
	}
}

// Elaborating the same module twice with the same top must yield
// byte-identical content hashes (spec.md §3 Invariant 2): elaboration is a
// pure function of sources plus configured top.
func TestElaborateIsIdempotent(t *testing.T) {
	src := `
module and2(input a, input b, output y);
  assign y = a & b;
endmodule
`
	hashOf := func() string {
		in := ident.New()
		db := ident.NewSourceDb()
		sink := diag.NewSink()
		reg := NewRegistry()
		f, file := parseVerilog(t, in, db, sink, "and2.v", src)
		reg.AddVerilogFile(f, file, sink)
		design := New(reg, in, db, sink).Elaborate("and2")
		return design.TopModule().ContentHash
	}
	h1 := hashOf()
	h2 := hashOf()
	if h1 == "" {
		t.Fatal("expected a non-empty content hash")
	}
	if h1 != h2 {
		t.Fatalf("expected identical content hashes across runs, got %q and %q", h1, h2)
	}
}

// Two distinct parameter bindings of the same module must elaborate to
// distinct, independently memoized Module entries.
func TestElaborateMemoizesByParameterBinding(t *testing.T) {
	in := ident.New()
	db := ident.NewSourceDb()
	sink := diag.NewSink()
	reg := NewRegistry()

	f, file := parseVerilog(t, in, db, sink, "adder.v", `
module adder #(parameter WIDTH = 8) (input [WIDTH-1:0] a, input [WIDTH-1:0] b, output [WIDTH-1:0] y);
  assign y = a + b;
endmodule

module top(input [3:0] a4, input [3:0] b4, output [3:0] y4,
           input [7:0] a8, input [7:0] b8, output [7:0] y8);
  adder #(.WIDTH(4)) u4(.a(a4), .b(b4), .y(y4));
  adder #(.WIDTH(8)) u8(.a(a8), .b(b8), .y(y8));
endmodule
`)
	reg.AddVerilogFile(f, file, sink)
	requireNoErrors(t, sink)

	design := New(reg, in, db, sink).Elaborate("top")
	requireNoErrors(t, sink)

	top := design.TopModule()
	if len(top.Cells) != 2 {
		t.Fatalf("expected 2 instance cells, got %d", len(top.Cells))
	}
	m4 := design.Module(top.Cells[0].Kind.InstanceModule)
	m8 := design.Module(top.Cells[1].Kind.InstanceModule)
	if m4.ID == m8.ID {
		t.Fatal("expected distinct modules for distinct parameter bindings")
	}
	if m4.ContentHash == m8.ContentHash {
		t.Fatal("expected distinct content hashes for distinct parameter bindings")
	}
}
