package ir

import "github.com/aion-hdl/aion/internal/ident"

// AssertKind distinguishes immediate vs. concurrent assertions.
type AssertKind int

const (
	AssertImmediate AssertKind = iota
	AssertConcurrent
)

// StmtTag discriminates the Statement union.
type StmtTag int

const (
	StmtAssign StmtTag = iota
	StmtIf
	StmtCase
	StmtBlock
	StmtWait
	StmtAssertion
	StmtDisplay
	StmtFinish
	StmtNop
)

// CaseArm is one arm of a Case statement: a set of matching constant
// values (empty for the default arm) and a body.
type CaseArm struct {
	Values []LogicVec
	Body   Statement
}

// Statement is the tree of statement node kinds of spec.md §3.
type Statement struct {
	Tag  StmtTag
	Span ident.Span

	// StmtAssign
	Target   SignalRef
	Value    *Expr
	Blocking bool // true for `=`, false for `<=` (non-blocking)

	// StmtIf
	Cond *Expr
	Then *Statement
	Else *Statement

	// StmtCase
	Subject *Expr
	Arms    []CaseArm
	Default *Statement

	// StmtBlock
	Stmts []Statement

	// StmtWait: nil Duration means wait-on-event (sensitivity handled by
	// the enclosing Process), non-nil means a delay of that many
	// femtoseconds.
	Duration *uint64

	// StmtAssertion
	AssertCond Expr
	AssertKind AssertKind
	Message    string

	// StmtDisplay
	Format string
	Args   []Expr
}

// Edge is a signal transition kind for EdgeList sensitivity.
type Edge int

const (
	EdgePos Edge = iota
	EdgeNeg
	EdgeBoth
)

// SensitivityKind discriminates a Process's Sensitivity union.
type SensitivityKind int

const (
	SensAll SensitivityKind = iota
	SensSignalList
	SensEdgeList
)

// EdgeSensitivity pairs a signal with the edge kind that wakes its process.
type EdgeSensitivity struct {
	Signal SignalID
	Edge   Edge
}

// Sensitivity describes what wakes a process.
type Sensitivity struct {
	Kind    SensitivityKind
	Signals []SignalID        // SensSignalList
	Edges   []EdgeSensitivity // SensEdgeList
}

// ProcessKind classifies a Process per spec.md §3/§4.3.
type ProcessKind int

const (
	ProcCombinational ProcessKind = iota
	ProcSequential
	ProcLatched
	ProcInitial
)

// Process is one behavioral process: always_comb/always_ff/always_latch/
// initial (or plain `always` classified per spec.md §4.3).
type Process struct {
	ID          ProcessID
	Kind        ProcessKind
	Sensitivity Sensitivity
	Body        Statement
	Span        ident.Span
}
