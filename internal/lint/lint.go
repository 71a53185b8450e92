// Package lint implements static IR traversals that flag suspicious but
// not-illegal designs: undriven signals, conflicting drivers, dead signals,
// and latch inference in combinational logic. None of these block
// synthesis; they are reported the same way spec.md §7 treats every
// non-fatal category, as warnings (or info) on the shared diagnostic sink.
package lint

import (
	"fmt"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

// IssueKind categorizes one lint finding.
type IssueKind int

const (
	IssueUndriven IssueKind = iota
	IssueMultiDriver
	IssueDeadSignal
	IssueLatchInferred
)

func (k IssueKind) String() string {
	switch k {
	case IssueUndriven:
		return "undriven"
	case IssueMultiDriver:
		return "multi-driver"
	case IssueDeadSignal:
		return "dead-signal"
	case IssueLatchInferred:
		return "latch-inferred"
	default:
		return "unknown"
	}
}

// Issue is one lint finding, independent of diag.Sink so callers that only
// want the raw data (tests, a `--lint` CLI mode) don't need a Sink at hand.
type Issue struct {
	Kind    IssueKind
	Code    string
	Module  string
	Signal  string // empty if not signal-specific
	Message string
	Span    ident.Span
}

// Run walks every module in design (once per distinct Module, regardless of
// how many times it is instantiated) and returns every lint finding.
func Run(design *ir.Design, in *ident.Interner) []Issue {
	var issues []Issue
	for _, m := range design.Modules {
		issues = append(issues, lintModule(m, in)...)
	}
	return issues
}

// ReportTo converts issues into diag.Diagnostics and reports them on sink,
// so a single pipeline can mix lint findings with every other stage's
// diagnostics and render/sort them together.
func ReportTo(sink *diag.Sink, issues []Issue) {
	for _, iss := range issues {
		sev := diag.Warning
		if iss.Kind == IssueDeadSignal {
			sev = diag.Info
		}
		sink.Report(diag.Diagnostic{
			Severity: sev,
			Category: diag.Synthesis,
			Code:     iss.Code,
			Message:  iss.Message,
			Span:     iss.Span,
		})
	}
}

func lintModule(m *ir.Module, in *ident.Interner) []Issue {
	var issues []Issue

	drivers := make(map[ir.SignalID]int)
	read := make(map[ir.SignalID]bool)
	isPort := make(map[ir.SignalID]bool)
	for _, p := range m.Ports {
		isPort[p.Signal] = true
	}

	for i := range m.Assigns {
		a := &m.Assigns[i]
		for _, sid := range targetSignals(a.Target) {
			drivers[sid]++
		}
		collectExprReads(&a.Value, read)
	}

	for i := range m.Cells {
		c := &m.Cells[i]
		for _, conn := range c.Connections {
			switch conn.Direction {
			case ir.Output:
				for _, sid := range targetSignals(conn.Ref) {
					drivers[sid]++
				}
			default:
				collectRefReads(conn.Ref, read)
			}
		}
	}

	for i := range m.Processes {
		p := &m.Processes[i]
		targets := make(map[ir.SignalID]bool)
		collectStmtTargets(&p.Body, targets)
		for sid := range targets {
			drivers[sid]++
		}
		collectStmtReads(&p.Body, read)

		if p.Kind == ir.ProcCombinational {
			guaranteed := make(map[ir.SignalID]bool)
			coverage(&p.Body, guaranteed)
			for sid := range targets {
				if guaranteed[sid] {
					continue
				}
				issues = append(issues, Issue{
					Kind:    IssueLatchInferred,
					Code:    diag.SYN003,
					Module:  in.Lookup(m.Name),
					Signal:  signalName(m, sid, in),
					Message: fmt.Sprintf("signal %q is not assigned on every path through a combinational process; synthesis will infer a latch", signalName(m, sid, in)),
					Span:    p.Span,
				})
			}
		}
	}

	for i := range m.Signals {
		s := &m.Signals[i]
		if isPort[s.ID] {
			continue
		}
		name := in.Lookup(s.Name)

		switch drivers[s.ID] {
		case 0:
			issues = append(issues, Issue{
				Kind:    IssueUndriven,
				Code:    diag.SYN004,
				Module:  in.Lookup(m.Name),
				Signal:  name,
				Message: fmt.Sprintf("signal %q has no driver", name),
				Span:    s.Span,
			})
		default:
			if drivers[s.ID] > 1 {
				issues = append(issues, Issue{
					Kind:    IssueMultiDriver,
					Code:    diag.SYN005,
					Module:  in.Lookup(m.Name),
					Signal:  name,
					Message: fmt.Sprintf("signal %q has %d structural drivers", name, drivers[s.ID]),
					Span:    s.Span,
				})
			}
		}

		if !read[s.ID] && drivers[s.ID] > 0 {
			issues = append(issues, Issue{
				Kind:    IssueDeadSignal,
				Code:    diag.SYN006,
				Module:  in.Lookup(m.Name),
				Signal:  name,
				Message: fmt.Sprintf("signal %q is driven but never read", name),
				Span:    s.Span,
			})
		}
	}

	return issues
}

func signalName(m *ir.Module, sid ir.SignalID, in *ident.Interner) string {
	if int(sid) < 0 || int(sid) >= len(m.Signals) {
		return "?"
	}
	return in.Lookup(m.Signals[sid].Name)
}

// targetSignals returns every signal a write to ref actually touches: ref
// itself for a plain signal, its slice's base, or every part of a
// concatenation target.
func targetSignals(ref ir.SignalRef) []ir.SignalID {
	switch ref.Tag {
	case ir.RefSignal:
		return []ir.SignalID{ref.Signal}
	case ir.RefSlice:
		return targetSignals(*ref.Base)
	case ir.RefConcat:
		var out []ir.SignalID
		for _, p := range ref.Parts {
			out = append(out, targetSignals(p)...)
		}
		return out
	default:
		return nil
	}
}

func collectRefReads(ref ir.SignalRef, read map[ir.SignalID]bool) {
	switch ref.Tag {
	case ir.RefSignal:
		read[ref.Signal] = true
	case ir.RefSlice:
		collectRefReads(*ref.Base, read)
	case ir.RefConcat:
		for _, p := range ref.Parts {
			collectRefReads(p, read)
		}
	}
}

func collectExprReads(e *ir.Expr, read map[ir.SignalID]bool) {
	if e == nil {
		return
	}
	switch e.Tag {
	case ir.ExprSignal:
		read[e.Signal] = true
	case ir.ExprUnary:
		collectExprReads(e.Operand, read)
	case ir.ExprBinary:
		collectExprReads(e.Lhs, read)
		collectExprReads(e.Rhs, read)
	case ir.ExprTernary:
		collectExprReads(e.Cond, read)
		collectExprReads(e.Then, read)
		collectExprReads(e.Else, read)
	case ir.ExprFuncCall:
		for i := range e.Args {
			collectExprReads(&e.Args[i], read)
		}
	case ir.ExprConcat:
		for i := range e.Parts {
			collectExprReads(&e.Parts[i], read)
		}
	case ir.ExprRepeat:
		collectExprReads(e.Value, read)
	case ir.ExprIndex:
		collectExprReads(e.Base, read)
		collectExprReads(e.High, read)
	case ir.ExprSlice:
		collectExprReads(e.Base, read)
		collectExprReads(e.High, read)
		collectExprReads(e.Low, read)
	}
}

// collectStmtTargets walks s collecting every signal assigned anywhere
// within it, regardless of which branch reaches it.
func collectStmtTargets(s *ir.Statement, out map[ir.SignalID]bool) {
	if s == nil {
		return
	}
	switch s.Tag {
	case ir.StmtAssign:
		for _, sid := range targetSignals(s.Target) {
			out[sid] = true
		}
	case ir.StmtIf:
		collectStmtTargets(s.Then, out)
		collectStmtTargets(s.Else, out)
	case ir.StmtCase:
		for i := range s.Arms {
			collectStmtTargets(&s.Arms[i].Body, out)
		}
		collectStmtTargets(s.Default, out)
	case ir.StmtBlock:
		for i := range s.Stmts {
			collectStmtTargets(&s.Stmts[i], out)
		}
	}
}

// collectStmtReads walks s collecting every signal read by any expression
// or non-target reference it contains.
func collectStmtReads(s *ir.Statement, read map[ir.SignalID]bool) {
	if s == nil {
		return
	}
	switch s.Tag {
	case ir.StmtAssign:
		collectExprReads(s.Value, read)
	case ir.StmtIf:
		collectExprReads(s.Cond, read)
		collectStmtReads(s.Then, read)
		collectStmtReads(s.Else, read)
	case ir.StmtCase:
		collectExprReads(s.Subject, read)
		for i := range s.Arms {
			collectStmtReads(&s.Arms[i].Body, read)
		}
		collectStmtReads(s.Default, read)
	case ir.StmtBlock:
		for i := range s.Stmts {
			collectStmtReads(&s.Stmts[i], read)
		}
	case ir.StmtAssertion:
		collectExprReads(&s.AssertCond, read)
	case ir.StmtDisplay:
		for i := range s.Args {
			collectExprReads(&s.Args[i], read)
		}
	}
}

// coverage computes, for s, the set of signals guaranteed to be assigned on
// every control-flow path through it — an StmtIf without an Else or an
// StmtCase without a Default contributes nothing, since a path exists that
// skips every assignment inside.
func coverage(s *ir.Statement, out map[ir.SignalID]bool) {
	if s == nil {
		return
	}
	switch s.Tag {
	case ir.StmtAssign:
		for _, sid := range targetSignals(s.Target) {
			out[sid] = true
		}
	case ir.StmtBlock:
		for i := range s.Stmts {
			coverage(&s.Stmts[i], out)
		}
	case ir.StmtIf:
		if s.Else == nil {
			return
		}
		thenCov := make(map[ir.SignalID]bool)
		elseCov := make(map[ir.SignalID]bool)
		coverage(s.Then, thenCov)
		coverage(s.Else, elseCov)
		for sid := range thenCov {
			if elseCov[sid] {
				out[sid] = true
			}
		}
	case ir.StmtCase:
		if s.Default == nil {
			return
		}
		var armCovs []map[ir.SignalID]bool
		for i := range s.Arms {
			c := make(map[ir.SignalID]bool)
			coverage(&s.Arms[i].Body, c)
			armCovs = append(armCovs, c)
		}
		defCov := make(map[ir.SignalID]bool)
		coverage(s.Default, defCov)
		armCovs = append(armCovs, defCov)

		for sid := range armCovs[0] {
			all := true
			for _, c := range armCovs[1:] {
				if !c[sid] {
					all = false
					break
				}
			}
			if all {
				out[sid] = true
			}
		}
	}
}
