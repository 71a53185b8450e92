// Package config loads the project configuration spec.md §6 describes as
// "consumed, not owned": a project identity plus a map of named synthesis
// targets, each pointing at a device/family, optional timing constraint
// files, and an optional pin-assignment map. The toolchain never writes
// this file back; it only reads it to pick a target for a given run.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PinSpec is one port's physical assignment: which device pin it lands on
// and the I/O standard its Iobuf cell should be tagged with.
type PinSpec struct {
	Pin        string `yaml:"pin"`
	IOStandard string `yaml:"io_standard"`
}

// Constraints names the files a target pulls timing constraints from.
// SDF delay annotation is out of scope; only SDC/XDC-style timing
// constraint paths are recorded here.
type Constraints struct {
	Timing []string `yaml:"timing,omitempty"`
}

// Target is one named synthesis target: a device/family pair plus the
// constraint files and pin assignments that apply when building for it.
type Target struct {
	Device      string             `yaml:"device"`
	Family      string             `yaml:"family"`
	Constraints Constraints        `yaml:"constraints,omitempty"`
	Pins        map[string]PinSpec `yaml:"pins,omitempty"`
}

// Project identifies the design the configuration belongs to.
type Project struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Top     string `yaml:"top"`
}

// Config is the full decoded project configuration file.
type Config struct {
	Project Project           `yaml:"project"`
	Targets map[string]Target `yaml:"targets"`
}

// Load reads and parses the project configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Project.Name == "" {
		return fmt.Errorf("missing required field: project.name")
	}
	if c.Project.Top == "" {
		return fmt.Errorf("missing required field: project.top")
	}
	for name, t := range c.Targets {
		if t.Device == "" {
			return fmt.Errorf("target %q: missing required field: device", name)
		}
		if t.Family == "" {
			return fmt.Errorf("target %q: missing required field: family", name)
		}
	}
	return nil
}

// Target looks up a named target, reporting whether it exists.
func (c *Config) Target(name string) (Target, bool) {
	t, ok := c.Targets[name]
	return t, ok
}

// PinAssignments flattens a target's pin map into the port-name ->
// io_standard form internal/netlistio's ApplyPinAssignments consumes.
func (t Target) PinAssignments() map[string]string {
	if len(t.Pins) == 0 {
		return nil
	}
	out := make(map[string]string, len(t.Pins))
	for port, spec := range t.Pins {
		out[port] = spec.IOStandard
	}
	return out
}
