package report

import (
	"strings"
	"testing"
)

func TestAcceptsMatchesExactAndMinorVersions(t *testing.T) {
	if !Accepts(SchemaV1, SchemaV1) {
		t.Fatalf("Accepts should accept an exact schema match")
	}
	if !Accepts("aion.build-report/v1.3", SchemaV1) {
		t.Fatalf("Accepts should accept a compatible minor version")
	}
	if Accepts("aion.build-report/v2", SchemaV1) {
		t.Fatalf("Accepts should reject a different major version")
	}
}

// Key order in the input struct must not affect the emitted JSON: two reports
// with the same content produce byte-identical output regardless of build order.
func TestMarshalDeterministicIsOrderIndependent(t *testing.T) {
	a := Report{
		Schema:    SchemaV1,
		Module:    "blinker",
		Resources: Resources{Luts: 4, Ffs: 2},
		CriticalPaths: []CriticalPath{
			{From: "clk", To: "led", DelayNs: 1.2, SlackNs: 3.4},
		},
	}
	b := a
	b.Diagnostics = map[string]string{"z": "last", "a": "first"}
	a.Diagnostics = map[string]string{"a": "first", "z": "last"}

	out1, err := MarshalDeterministic(a)
	if err != nil {
		t.Fatalf("MarshalDeterministic: %v", err)
	}
	out2, err := MarshalDeterministic(b)
	if err != nil {
		t.Fatalf("MarshalDeterministic: %v", err)
	}
	if string(out1) != string(out2) {
		t.Fatalf("expected identical output regardless of map insertion order:\n%s\nvs\n%s", out1, out2)
	}
	if !strings.Contains(string(out1), `"schema": "aion.build-report/v1"`) {
		t.Fatalf("expected schema field in output, got:\n%s", out1)
	}
}
