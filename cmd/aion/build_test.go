package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

const testAndGate = `
module and2(input a, input b, output y);
  assign y = a & b;
endmodule
`

func writeTestSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// cloneBuildCmd returns a fresh *cobra.Command carrying the same flags as
// the package-level buildCmd, so tests can set flag values without
// mutating global state shared across parallel test runs.
func cloneBuildCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "build"}
	cmd.Flags().String("top", "", "")
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("target", "", "")
	cmd.Flags().String("sdc", "", "")
	cmd.Flags().String("vcd", "", "")
	cmd.Flags().String("report", "", "")
	return cmd
}

func TestRunBuildAndGate(t *testing.T) {
	dir := t.TempDir()
	path := writeTestSource(t, dir, "and2.v", testAndGate)

	cmd := cloneBuildCmd()
	cmd.Flags().Set("top", "and2")

	if err := runBuild(cmd, []string{path}); err != nil {
		t.Fatalf("runBuild: %v", err)
	}
}

func TestRunBuildMissingTopModule(t *testing.T) {
	dir := t.TempDir()
	path := writeTestSource(t, dir, "and2.v", testAndGate)

	cmd := cloneBuildCmd()
	cmd.Flags().Set("top", "does_not_exist")

	if err := runBuild(cmd, []string{path}); err == nil {
		t.Fatalf("expected an error for a missing top module")
	}
}

func TestRunBuildWritesReport(t *testing.T) {
	dir := t.TempDir()
	path := writeTestSource(t, dir, "and2.v", testAndGate)
	reportPath := filepath.Join(dir, "report.json")

	cmd := cloneBuildCmd()
	cmd.Flags().Set("top", "and2")
	cmd.Flags().Set("report", reportPath)

	if err := runBuild(cmd, []string{path}); err != nil {
		t.Fatalf("runBuild: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("expected a build report at %s: %v", reportPath, err)
	}
	if !bytes.Contains(data, []byte(`"schema": "aion.build-report/v1"`)) {
		t.Fatalf("report missing schema field: %s", data)
	}
	if !bytes.Contains(data, []byte(`"module": "and2"`)) {
		t.Fatalf("report missing module name: %s", data)
	}
}

func TestRunBuildUnknownTarget(t *testing.T) {
	dir := t.TempDir()
	path := writeTestSource(t, dir, "and2.v", testAndGate)
	cfgPath := writeTestSource(t, dir, "aion.yml", `
project:
  name: and2
  top: and2
targets:
  ecp5-evn:
    device: LFE5U-25F
    family: ecp5
`)

	cmd := cloneBuildCmd()
	cmd.Flags().Set("top", "and2")
	cmd.Flags().Set("config", cfgPath)
	cmd.Flags().Set("target", "missing-target")

	if err := runBuild(cmd, []string{path}); err == nil {
		t.Fatalf("expected an error for an unknown --target")
	}
}
