package vhdl

import (
	"testing"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
)

func parseSrc(t *testing.T, src string) (*DesignFile, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	lex := NewLexer(src, ident.FileID(0), sink)
	toks := TokenizeAll(lex)
	p := NewParser(toks, ident.FileID(0), sink)
	return p.ParseDesignFile(), sink
}

func TestParseEntityAndArchitecture(t *testing.T) {
	src := `
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
`
	f, sink := parseSrc(t, src)
	for _, d := range sink.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	if len(f.Entities) != 1 || f.Entities[0].Name != "and2" {
		t.Fatalf("entities = %+v", f.Entities)
	}
	if len(f.Entities[0].Ports) != 2 {
		t.Fatalf("ports = %+v", f.Entities[0].Ports)
	}
	if len(f.Architectures) != 1 {
		t.Fatalf("architectures = %+v", f.Architectures)
	}
	arch := f.Architectures[0]
	if len(arch.Items) != 1 || arch.Items[0].Tag != ArchConcurrentAssign {
		t.Fatalf("items = %+v", arch.Items)
	}
	if arch.Items[0].Assign.Value.BOp != BAnd {
		t.Errorf("value op = %v, want and", arch.Items[0].Assign.Value.BOp)
	}
}

func TestParseProcessWithIf(t *testing.T) {
	src := `
architecture rtl of counter is
  signal count : std_logic_vector(3 downto 0);
begin
  process(clk, rst)
  begin
    if rst = '1' then
      count <= "0000";
    elsif clk'event and clk = '1' then
      count <= count;
    end if;
  end process;
end architecture rtl;
`
	f, sink := parseSrc(t, src)
	for _, d := range sink.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	arch := f.Architectures[0]
	if len(arch.Items) != 2 {
		t.Fatalf("items = %+v", arch.Items)
	}
	proc := arch.Items[1].Process
	if len(proc.Sensitivity) != 2 {
		t.Fatalf("sensitivity = %+v", proc.Sensitivity)
	}
	if len(proc.Body) != 1 || proc.Body[0].Tag != StIf {
		t.Fatalf("body = %+v", proc.Body)
	}
	if len(proc.Body[0].Elifs) != 1 {
		t.Errorf("expected one elsif arm, got %d", len(proc.Body[0].Elifs))
	}
}

func TestParseComponentInstance(t *testing.T) {
	src := `
architecture rtl of top is
  signal a, b, y : std_logic;
begin
  u_and : and2
    port map (a => a, b => b, y => y);
end architecture rtl;
`
	f, sink := parseSrc(t, src)
	for _, d := range sink.Diagnostics() {
		t.Errorf("unexpected diagnostic: %s", d.Message)
	}
	arch := f.Architectures[0]
	var inst *Instance
	for _, item := range arch.Items {
		if item.Tag == ArchInstance {
			inst = item.Instance
		}
	}
	if inst == nil {
		t.Fatal("expected an instance item")
	}
	if inst.Label != "u_and" || inst.EntityName != "and2" {
		t.Errorf("inst = %+v", inst)
	}
	if len(inst.PortMap) != 3 {
		t.Fatalf("port map = %+v", inst.PortMap)
	}
}

func TestBasedLiteralAndBitString(t *testing.T) {
	sink := diag.NewSink()
	lex := NewLexer(`16#FF# X"FF" B"1010"`, ident.FileID(0), sink)
	toks := TokenizeAll(lex)
	if toks[0].Kind != IntLiteral {
		t.Errorf("first token kind = %v, want IntLiteral", toks[0].Kind)
	}
	if toks[1].Kind != BitStringLiteral {
		t.Errorf("second token kind = %v, want BitStringLiteral", toks[1].Kind)
	}
	if toks[2].Kind != BitStringLiteral {
		t.Errorf("third token kind = %v, want BitStringLiteral", toks[2].Kind)
	}
}
