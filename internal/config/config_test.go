package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "aion.yml")

	content := `
project:
  name: blinker
  version: "1.0.0"
  top: blinker

targets:
  ecp5-evn:
    device: LFE5U-25F
    family: ecp5
    constraints:
      timing:
        - constraints/blinker.sdc
    pins:
      clk:
        pin: P3
        io_standard: LVCMOS33
      led:
        pin: B2
        io_standard: LVCMOS33
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "blinker", cfg.Project.Name)
	require.Equal(t, "blinker", cfg.Project.Top)

	target, ok := cfg.Target("ecp5-evn")
	require.True(t, ok, "target ecp5-evn not found")
	require.Equal(t, "LFE5U-25F", target.Device)
	require.Equal(t, "ecp5", target.Family)
	require.Equal(t, []string{"constraints/blinker.sdc"}, target.Constraints.Timing)

	pins := target.PinAssignments()
	require.Equal(t, map[string]string{"clk": "LVCMOS33", "led": "LVCMOS33"}, pins)
}

func TestLoadMissingProjectName(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "aion.yml")

	content := `
project:
  top: blinker
targets: {}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for missing project.name")
	}
}

func TestLoadTargetMissingDevice(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "aion.yml")

	content := `
project:
  name: blinker
  top: blinker
targets:
  bad:
    family: ecp5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for a target missing device")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestTargetWithNoPinsReturnsNil(t *testing.T) {
	target := Target{Device: "LFE5U-25F", Family: "ecp5"}
	if got := target.PinAssignments(); got != nil {
		t.Errorf("PinAssignments() = %+v, want nil", got)
	}
}
