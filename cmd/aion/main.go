// Command aion is the driver binary: it elaborates Verilog/SystemVerilog/
// VHDL sources into a unified IR, synthesizes and technology-maps them,
// runs static timing analysis, and simulates, per spec.md's pipeline.
package main

func main() {
	Execute()
}
