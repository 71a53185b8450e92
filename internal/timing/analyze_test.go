package timing

import (
	"math"
	"testing"

	"github.com/aion-hdl/aion/testutil"
)

func approxEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestAnalyzeCombinationalNoClocksAlwaysMeetsTiming(t *testing.T) {
	m, in := buildCombModule(t)
	g := BuildGraph(m, in, fixedDelay{}, nil)

	r := Analyze(g, TimingConstraints{})
	if !r.Met {
		t.Fatalf("expected timing met with no clock constraints, got report %+v", r)
	}
	if !math.IsInf(r.WorstSlackNs, 1) {
		t.Fatalf("expected +Inf worst slack with no clocks, got %v", r.WorstSlackNs)
	}
	if r.TargetMHz != 0 || r.AchievedMHz != 0 {
		t.Fatalf("expected zero frequency with no primary clock, got target=%v achieved=%v", r.TargetMHz, r.AchievedMHz)
	}
}

func TestAnalyzeSequentialComputesSlackAndFrequency(t *testing.T) {
	m, in := buildSeqModule(t)
	g := BuildGraph(m, in, fixedDelay{}, map[string]bool{"clk": true})

	tc := TimingConstraints{Clocks: []ClockConstraint{{Name: "clk", Port: "clk", PeriodNs: 2.0}}}
	r := Analyze(g, tc)

	if !r.Met {
		t.Fatalf("expected timing met, got report %+v", r)
	}
	if !approxEqual(r.WorstSlackNs, 1.65, 1e-9) {
		t.Fatalf("expected worst slack ~1.65ns, got %v", r.WorstSlackNs)
	}
	if !approxEqual(r.TargetMHz, 500, 1e-9) {
		t.Fatalf("expected target 500MHz, got %v", r.TargetMHz)
	}
	wantAchieved := 1000 / (2.0 - 1.65)
	if !approxEqual(r.AchievedMHz, wantAchieved, 1e-6) {
		t.Fatalf("expected achieved %.4fMHz, got %v", wantAchieved, r.AchievedMHz)
	}
	if len(r.CriticalPaths) == 0 {
		t.Fatal("expected at least one critical path")
	}
}

func TestAnalyzeEmptyGraphReturnsMetTrue(t *testing.T) {
	g := newGraph()
	r := Analyze(g, TimingConstraints{})
	if !r.Met {
		t.Fatal("expected an empty graph to report met=true")
	}
}

// Analyze must be a pure function of its inputs: running it twice over the
// same graph and constraints produces byte-identical critical path reports.
func TestAnalyzeIsDeterministic(t *testing.T) {
	m, in := buildSeqModule(t)
	g := BuildGraph(m, in, fixedDelay{}, map[string]bool{"clk": true})
	tc := TimingConstraints{Clocks: []ClockConstraint{{Name: "clk", Port: "clk", PeriodNs: 2.0}}}

	r1 := Analyze(g, tc)
	r2 := Analyze(g, tc)

	j1, err := testutil.MarshalDeterministic(r1.CriticalPaths)
	if err != nil {
		t.Fatalf("marshal first run: %v", err)
	}
	j2, err := testutil.MarshalDeterministic(r2.CriticalPaths)
	if err != nil {
		t.Fatalf("marshal second run: %v", err)
	}
	if !testutil.JSONEqual(j1, j2) {
		t.Fatalf("Analyze produced different critical paths across runs:\n%s",
			testutil.DiffJSON(r1.CriticalPaths, r2.CriticalPaths))
	}
}

func TestAnalyzeFalsePathExcludesMatchingCriticalPath(t *testing.T) {
	m, in := buildCombModule(t)
	g := BuildGraph(m, in, fixedDelay{}, nil)
	tc := TimingConstraints{
		Clocks:     []ClockConstraint{{Name: "clk", Port: "clk", PeriodNs: 1.0}},
		FalsePaths: []PathConstraint{{From: []string{"a"}, To: []string{"y"}}},
	}
	r := Analyze(g, tc)
	for _, p := range r.CriticalPaths {
		if p.From == "a" && p.To == "y" {
			t.Fatalf("expected the a->y path to be excluded as a false path, got %+v", p)
		}
	}
}
