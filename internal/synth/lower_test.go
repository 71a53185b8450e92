package synth

import (
	"testing"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/elaborate"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/lang/verilog"
)

func elaborateTop(t *testing.T, in *ident.Interner, src, top string) (*ir.Design, *diag.Sink) {
	t.Helper()
	db := ident.NewSourceDb()
	sink := diag.NewSink()
	reg := elaborate.NewRegistry()
	file := db.AddFile(top+".v", src)
	lex := verilog.NewLexer(src, verilog.DialectSystemVerilog2017, file, sink)
	toks := verilog.TokenizeAll(lex)
	p := verilog.NewParser(toks, file, verilog.DialectSystemVerilog2017, sink)
	reg.AddVerilogFile(p.ParseSourceFile(), file, sink)
	for _, d := range sink.Diagnostics() {
		if d.Severity == diag.Error {
			t.Fatalf("unexpected parse diagnostic: %s: %s", d.Code, d.Message)
		}
	}
	design := elaborate.New(reg, in, db, sink).Elaborate(top)
	return design, sink
}

func countCellsByOp(cells []ir.Cell, op ir.Op) int {
	n := 0
	for _, c := range cells {
		if c.Kind.Tag == ir.TagGeneric && c.Kind.GenericOp == op {
			n++
		}
	}
	return n
}

func countCellsByTag(cells []ir.Cell, tag ir.CellKindTag) int {
	n := 0
	for _, c := range cells {
		if c.Kind.Tag == tag {
			n++
		}
	}
	return n
}

// A continuous assignment `y = a & b` lowers to one And cell, and wireInto
// adds one Buf that drives the port y from the And's result.
func TestLowerConcurrentAssignProducesAndCell(t *testing.T) {
	in := ident.New()
	design, sink := elaborateTop(t, in, `
module and2(input a, input b, output y);
  assign y = a & b;
endmodule
`, "and2")
	if !design.HasTop {
		t.Fatalf("expected HasTop true, diagnostics: %v", sink.Diagnostics())
	}
	top := design.TopModule()
	nl := Lower(top, design.Types, in, sink)

	if countCellsByOp(nl.Cells, ir.OpAnd) != 1 {
		t.Fatalf("expected 1 And cell, got cells: %+v", nl.Cells)
	}
	if countCellsByOp(nl.Cells, ir.OpBuf) != 1 {
		t.Fatalf("expected 1 Buf cell wiring the And's result into y, got cells: %+v", nl.Cells)
	}
}

// A synchronous-reset counter lowers to one Dff with HasReset set and
// HasEnable clear (the non-reset path always writes).
func TestLowerSequentialCounterInfersReset(t *testing.T) {
	in := ident.New()
	design, sink := elaborateTop(t, in, `
module counter(input clk, input rst, output reg [3:0] count);
  always @(posedge clk) begin
    if (rst)
      count <= 0;
    else
      count <= count + 1;
  end
endmodule
`, "counter")
	if !design.HasTop {
		t.Fatalf("expected HasTop true, diagnostics: %v", sink.Diagnostics())
	}
	top := design.TopModule()
	nl := Lower(top, design.Types, in, sink)

	if countCellsByTag(nl.Cells, ir.TagDff) != 1 {
		t.Fatalf("expected 1 Dff cell, got cells: %+v", nl.Cells)
	}
	var dff ir.Cell
	for _, c := range nl.Cells {
		if c.Kind.Tag == ir.TagDff {
			dff = c
		}
	}
	if !dff.Kind.HasReset {
		t.Fatal("expected HasReset true for an if(rst) ... else ... pattern")
	}
	if dff.Kind.HasEnable {
		t.Fatal("expected HasEnable false: the non-reset path always writes")
	}
	if countCellsByOp(nl.Cells, ir.OpAdd) != 1 {
		t.Fatalf("expected 1 Add cell for count+1, got cells: %+v", nl.Cells)
	}
}

// An enable-only register (no reset, conditional write) infers HasEnable
// but not HasReset.
func TestLowerSequentialEnableOnly(t *testing.T) {
	in := ident.New()
	design, sink := elaborateTop(t, in, `
module accum(input clk, input en, input [7:0] d, output reg [7:0] q);
  always @(posedge clk) begin
    if (en)
      q <= d;
  end
endmodule
`, "accum")
	if !design.HasTop {
		t.Fatalf("expected HasTop true, diagnostics: %v", sink.Diagnostics())
	}
	top := design.TopModule()
	nl := Lower(top, design.Types, in, sink)

	var dff ir.Cell
	found := false
	for _, c := range nl.Cells {
		if c.Kind.Tag == ir.TagDff {
			dff = c
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 1 Dff cell, got cells: %+v", nl.Cells)
	}
	if dff.Kind.HasReset {
		t.Fatal("expected HasReset false: no constant-assigning branch")
	}
	if !dff.Kind.HasEnable {
		t.Fatal("expected HasEnable true: q holds its own value when en is low")
	}
}

// A combinational mux process lowers its if/else into a Mux cell selecting
// between the two driven values.
func TestLowerCombinationalMux(t *testing.T) {
	in := ident.New()
	design, sink := elaborateTop(t, in, `
module mux2(input sel, input [7:0] a, input [7:0] b, output reg [7:0] y);
  always @(*) begin
    if (sel)
      y = b;
    else
      y = a;
  end
endmodule
`, "mux2")
	if !design.HasTop {
		t.Fatalf("expected HasTop true, diagnostics: %v", sink.Diagnostics())
	}
	top := design.TopModule()
	nl := Lower(top, design.Types, in, sink)

	if countCellsByOp(nl.Cells, ir.OpMux) != 1 {
		t.Fatalf("expected 1 Mux cell, got cells: %+v", nl.Cells)
	}
	if countCellsByTag(nl.Cells, ir.TagDff) != 0 {
		t.Fatal("expected no Dff cells for a combinational process")
	}
}

// A case statement with several arms plus a default lowers to one Eq/Or
// match condition per arm merged through Mux cells, with no leftover dead
// structure beyond what LiveCellCount already reports.
func TestLowerCaseStatement(t *testing.T) {
	in := ident.New()
	design, sink := elaborateTop(t, in, `
module decode(input [1:0] sel, output reg [3:0] y);
  always @(*) begin
    case (sel)
      2'b00: y = 4'b0001;
      2'b01: y = 4'b0010;
      2'b10: y = 4'b0100;
      default: y = 4'b1000;
    endcase
  end
endmodule
`, "decode")
	if !design.HasTop {
		t.Fatalf("expected HasTop true, diagnostics: %v", sink.Diagnostics())
	}
	top := design.TopModule()
	nl := Lower(top, design.Types, in, sink)

	if countCellsByOp(nl.Cells, ir.OpMux) != 3 {
		t.Fatalf("expected 3 Mux cells merging 3 non-default arms, got cells: %+v", nl.Cells)
	}
	if countCellsByOp(nl.Cells, ir.OpEq) != 3 {
		t.Fatalf("expected 3 Eq cells (one case-match test per non-default arm), got cells: %+v", nl.Cells)
	}
	if nl.LiveCellCount() != len(nl.Cells) {
		t.Fatal("expected every cell live immediately after lowering (no dead cells before optimization runs)")
	}
}
