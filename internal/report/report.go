// Package report produces deterministic JSON build reports: a schema-versioned
// summary of resource usage, pin assignments, and timing results for a single
// aion build invocation.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// SchemaV1 is the current build report schema version.
const SchemaV1 = "aion.build-report/v1"

// Accepts reports whether a schema version found on disk is compatible with
// wantPrefix, allowing forward-compatible minor versions within a major line.
func Accepts(got, wantPrefix string) bool {
	if got == wantPrefix {
		return true
	}
	return strings.HasPrefix(got, wantPrefix+".")
}

// Resources mirrors synth.ResourceCounts without importing internal/synth,
// keeping this package usable from any report producer.
type Resources struct {
	Luts  int `json:"luts"`
	Ffs   int `json:"ffs"`
	Brams int `json:"brams"`
	Dsps  int `json:"dsps"`
	Ios   int `json:"ios"`
	Plls  int `json:"plls"`
}

// CriticalPath is one reported timing-critical endpoint pair.
type CriticalPath struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	DelayNs float64 `json:"delay_ns"`
	SlackNs float64 `json:"slack_ns"`
}

// Report is the top-level document written by `aion build --report`.
type Report struct {
	Schema        string            `json:"schema"`
	Module        string            `json:"module"`
	Target        string            `json:"target,omitempty"`
	Device        string            `json:"device,omitempty"`
	Resources     Resources         `json:"resources"`
	PinsAssigned  int               `json:"pins_assigned"`
	WorstSlackNs  float64           `json:"worst_slack_ns"`
	TargetMHz     float64           `json:"target_mhz"`
	AchievedMHz   float64           `json:"achieved_mhz"`
	TimingMet     bool              `json:"timing_met"`
	CriticalPaths []CriticalPath    `json:"critical_paths,omitempty"`
	Diagnostics   map[string]string `json:"diagnostics,omitempty"`
}

// MarshalDeterministic renders v as indented JSON with map keys sorted, so a
// report diffed across two builds of an unchanged design is byte-identical.
func MarshalDeterministic(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("round-trip report: %w", err)
	}
	sorted, err := marshalSorted(generic)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, sorted, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func marshalSorted(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(keyJSON)
			buf.WriteByte(':')
			valJSON, err := marshalSorted(val[k])
			if err != nil {
				return nil, err
			}
			buf.Write(valJSON)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			itemJSON, err := marshalSorted(item)
			if err != nil {
				return nil, err
			}
			buf.Write(itemJSON)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil

	default:
		return json.Marshal(v)
	}
}
