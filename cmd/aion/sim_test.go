package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

const testCounter = `
module counter(input clk, input rst, output reg [3:0] count);
  always @(posedge clk) begin
    if (rst)
      count <= 4'b0000;
    else
      count <= count + 1;
  end
endmodule
`

func cloneSimCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "sim"}
	cmd.Flags().String("top", "", "")
	cmd.Flags().String("vcd", "", "")
	cmd.Flags().Uint64("until", 0, "")
	return cmd
}

func TestRunSimCounterWithVcd(t *testing.T) {
	dir := t.TempDir()
	path := writeTestSource(t, dir, "counter.v", testCounter)
	vcdPath := filepath.Join(dir, "out.vcd")

	cmd := cloneSimCmd()
	cmd.Flags().Set("top", "counter")
	cmd.Flags().Set("vcd", vcdPath)
	cmd.Flags().Set("until", "1000000")

	if err := runSim(cmd, []string{path}); err != nil {
		t.Fatalf("runSim: %v", err)
	}

	if _, err := os.Stat(vcdPath); err != nil {
		t.Fatalf("expected a VCD file at %s: %v", vcdPath, err)
	}
}

func TestRunSimMissingTopModule(t *testing.T) {
	dir := t.TempDir()
	path := writeTestSource(t, dir, "counter.v", testCounter)

	cmd := cloneSimCmd()
	cmd.Flags().Set("top", "does_not_exist")

	if err := runSim(cmd, []string{path}); err == nil {
		t.Fatalf("expected an error for a missing top module")
	}
}
