package sim

// RunResult accumulates everything observable about a completed (or
// paused) simulation run: $display/$write transcript lines, assertion
// failures (recorded, never aborting the run), and $finish bookkeeping.
// Supplemented from original_source's aion_sim, whose SimResult carries
// the same fields under different names.
type RunResult struct {
	FinishedByUser    bool
	FinishedAt        *SimTime
	FinalTime         SimTime
	DisplayOutput     []string
	AssertionFailures []string
}

// StepResult reports whether a kernel step consumed further events.
type StepResult int

const (
	Continued StepResult = iota
	Done
)
