package synth

import (
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

// signalEnv tracks, during one process's behavioral lowering, the
// most-recently-assigned driving reference for each touched signal —
// spec.md §4.4's "if/case become MUX trees" rule, built bottom-up.
type signalEnv map[ir.SignalID]ir.SignalRef

func envGet(env signalEnv, sig ir.SignalID) ir.SignalRef {
	if v, ok := env[sig]; ok {
		return v
	}
	return ir.SigRef(sig)
}

func cloneTouched(src map[ir.SignalID]bool) map[ir.SignalID]bool {
	out := make(map[ir.SignalID]bool, len(src))
	for k := range src {
		out[k] = true
	}
	return out
}

// seqMeta accumulates has_reset/has_enable classification while walking a
// sequential process's statements: a branch assigning a constant marks
// its signal "reset", a branch that holds the signal's own prior value
// (no assignment on that path) marks it "enable" — spec.md §4.4's
// detection rule, expressed structurally rather than by pattern-matching
// source syntax.
type seqMeta struct {
	reset  map[ir.SignalID]bool
	enable map[ir.SignalID]bool
}

func isSelfHold(ref ir.SignalRef, sig ir.SignalID) bool {
	return ref.Tag == ir.RefSignal && ref.Signal == sig
}

// lowerCombProcess lowers a Combinational or Latched process: statements
// become a MUX tree per driven signal, wired directly into that signal.
func (lc *lowerCtx) lowerCombProcess(p ir.Process) {
	env, touched := lc.evalStmt(&p.Body, signalEnv{}, nil)
	for sig := range touched {
		lc.wireInto(ir.SigRef(sig), envGet(env, sig), p.Span)
	}
}

// lowerSeqProcess lowers a Sequential process: one DFF per driven signal,
// its D input the same MUX-tree construction as the combinational case,
// clocked by the process's edge sensitivity.
func (lc *lowerCtx) lowerSeqProcess(p ir.Process) {
	meta := &seqMeta{reset: map[ir.SignalID]bool{}, enable: map[ir.SignalID]bool{}}
	env, touched := lc.evalStmt(&p.Body, signalEnv{}, meta)

	clk, ok := clockSignal(p.Sensitivity)
	if !ok {
		return
	}
	for sig := range touched {
		lc.n.AddCell(ir.Cell{
			Kind: ir.CellKind{Tag: ir.TagDff, HasReset: meta.reset[sig], HasEnable: meta.enable[sig]},
			Connections: []ir.Connection{
				InputConn("D", lc.in, envGet(env, sig)),
				InputConn("CLK", lc.in, ir.SigRef(clk)),
				OutputConn("Q", lc.in, ir.SigRef(sig)),
			},
			Span: p.Span,
		})
	}
}

func clockSignal(s ir.Sensitivity) (ir.SignalID, bool) {
	if s.Kind != ir.SensEdgeList {
		return 0, false
	}
	for _, e := range s.Edges {
		if e.Edge == ir.EdgePos || e.Edge == ir.EdgeNeg {
			return e.Signal, true
		}
	}
	return 0, false
}

// evalStmt folds one statement into env, returning the updated env and the
// set of signals it touched (directly or through nested branches). meta is
// nil for combinational/latched lowering and non-nil for sequential, where
// branch shape additionally classifies has_reset/has_enable.
func (lc *lowerCtx) evalStmt(s *ir.Statement, env signalEnv, meta *seqMeta) (signalEnv, map[ir.SignalID]bool) {
	switch s.Tag {
	case ir.StmtBlock:
		touched := map[ir.SignalID]bool{}
		for i := range s.Stmts {
			var t2 map[ir.SignalID]bool
			env, t2 = lc.evalStmt(&s.Stmts[i], env, meta)
			for k := range t2 {
				touched[k] = true
			}
		}
		return env, touched

	case ir.StmtAssign:
		return lc.evalAssign(s, env)

	case ir.StmtIf:
		cond := lc.lowerExpr(s.Cond)
		thenEnv, thenTouched := lc.evalStmt(s.Then, env, meta)
		elseEnv, elseTouched := env, map[ir.SignalID]bool{}
		if s.Else != nil {
			elseEnv, elseTouched = lc.evalStmt(s.Else, env, meta)
		}
		return lc.mergeBranches(cond, thenEnv, thenTouched, elseEnv, elseTouched, env, meta)

	case ir.StmtCase:
		subj := lc.lowerExpr(s.Subject)
		accEnv, accTouched := env, map[ir.SignalID]bool{}
		if s.Default != nil {
			accEnv, accTouched = lc.evalStmt(s.Default, env, meta)
		}
		for i := len(s.Arms) - 1; i >= 0; i-- {
			arm := s.Arms[i]
			armEnv, armTouched := lc.evalStmt(&arm.Body, env, meta)
			cond := lc.caseMatchCond(subj, arm.Values, s.Span)
			accEnv, accTouched = lc.mergeBranches(cond, armEnv, armTouched, accEnv, accTouched, env, meta)
		}
		return accEnv, accTouched

	default:
		// Display/Finish/Wait/Assertion/Nop carry no synthesis effect.
		return env, map[ir.SignalID]bool{}
	}
}

func (lc *lowerCtx) evalAssign(s *ir.Statement, env signalEnv) (signalEnv, map[ir.SignalID]bool) {
	ref := lc.lowerExpr(s.Value)
	switch s.Target.Tag {
	case ir.RefSignal:
		newEnv := shallowCopy(env)
		newEnv[s.Target.Signal] = ref
		return newEnv, map[ir.SignalID]bool{s.Target.Signal: true}

	case ir.RefSlice:
		sig := baseSignal(s.Target)
		old := envGet(env, sig)
		width := lc.n.Types.Lookup(lc.n.Signals[sig].Type).BitVecWidth()
		merged := mergeSliceValue(old, s.Target.High, s.Target.Low, width, ref)
		newEnv := shallowCopy(env)
		newEnv[sig] = merged
		return newEnv, map[ir.SignalID]bool{sig: true}

	default:
		newEnv := shallowCopy(env)
		touched := map[ir.SignalID]bool{}
		lc.assignConcatEnv(s.Target, ref, newEnv, touched)
		return newEnv, touched
	}
}

// assignConcatEnv fans a concatenated assignment target out leaf-by-leaf,
// mirroring wireInto's structural split but writing into env instead of
// emitting cells directly, since the caller may still need to merge this
// result across further conditional branches.
func (lc *lowerCtx) assignConcatEnv(target ir.SignalRef, src ir.SignalRef, env signalEnv, touched map[ir.SignalID]bool) {
	offset := 0
	for i := len(target.Parts) - 1; i >= 0; i-- {
		leaf := target.Parts[i]
		w := leafWidth(lc.n, leaf)
		leafSrc := src
		if w > 0 {
			leafSrc = sliceRef(src, offset+w-1, offset)
		}
		switch leaf.Tag {
		case ir.RefSignal:
			env[leaf.Signal] = leafSrc
			touched[leaf.Signal] = true
		case ir.RefSlice:
			sig := baseSignal(leaf)
			old := envGet(env, sig)
			width := lc.n.Types.Lookup(lc.n.Signals[sig].Type).BitVecWidth()
			env[sig] = mergeSliceValue(old, leaf.High, leaf.Low, width, leafSrc)
			touched[sig] = true
		case ir.RefConcat:
			lc.assignConcatEnv(leaf, leafSrc, env, touched)
		}
		offset += w
	}
}

func baseSignal(ref ir.SignalRef) ir.SignalID {
	for ref.Tag == ir.RefSlice {
		ref = *ref.Base
	}
	return ref.Signal
}

// mergeSliceValue rebuilds a full-width value after a partial assignment
// to [high:low], keeping old's untouched bits either side of the slice.
func mergeSliceValue(old ir.SignalRef, high, low, width int, newVal ir.SignalRef) ir.SignalRef {
	var parts []ir.SignalRef
	if high < width-1 {
		parts = append(parts, sliceRef(old, width-1, high+1))
	}
	parts = append(parts, newVal)
	if low > 0 {
		parts = append(parts, sliceRef(old, low-1, 0))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return ir.ConcatRef(parts...)
}

func shallowCopy(env signalEnv) signalEnv {
	out := make(signalEnv, len(env)+1)
	for k, v := range env {
		out[k] = v
	}
	return out
}

// mergeBranches builds one MUX cell per signal touched in either branch,
// selecting trueEnv's value when cond is true. meta, when non-nil,
// classifies the merge as a reset (a branch value is a bare constant) or
// an enable (a branch value is the signal simply holding its own prior
// value, i.e. that path never assigned it).
func (lc *lowerCtx) mergeBranches(cond ir.SignalRef, trueEnv signalEnv, trueTouched map[ir.SignalID]bool, falseEnv signalEnv, falseTouched map[ir.SignalID]bool, base signalEnv, meta *seqMeta) (signalEnv, map[ir.SignalID]bool) {
	merged := shallowCopy(base)
	union := cloneTouched(trueTouched)
	for k := range falseTouched {
		union[k] = true
	}
	for sig := range union {
		tVal := envGet(trueEnv, sig)
		fVal := envGet(falseEnv, sig)
		if meta != nil {
			if tVal.Tag == ir.RefConst || fVal.Tag == ir.RefConst {
				meta.reset[sig] = true
			}
			if isSelfHold(tVal, sig) || isSelfHold(fVal, sig) {
				meta.enable[sig] = true
			}
		}
		width := lc.n.Types.Lookup(lc.n.Signals[sig].Type).BitVecWidth()
		temp := lc.n.NewTemp(lc.n.Signals[sig].Type)
		lc.n.AddCell(ir.Cell{
			Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpMux, Width: width},
			Connections: []ir.Connection{
				InputConn("S", lc.in, cond),
				InputConn("A", lc.in, fVal),
				InputConn("B", lc.in, tVal),
				OutputConn("Y", lc.in, ir.SigRef(temp)),
			},
		})
		merged[sig] = ir.SigRef(temp)
	}
	return merged, union
}

// caseMatchCond builds `subject == v1 || subject == v2 || ...` as a chain
// of Eq/Or generic cells, one bit wide.
func (lc *lowerCtx) caseMatchCond(subj ir.SignalRef, values []ir.LogicVec, span ident.Span) ir.SignalRef {
	var acc ir.SignalRef
	for i, v := range values {
		temp := lc.n.NewTemp(lc.n.Types.BitType())
		lc.n.AddCell(ir.Cell{
			Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpEq, Width: 1},
			Connections: []ir.Connection{
				InputConn("A", lc.in, subj),
				InputConn("B", lc.in, ir.ConstRef(v)),
				OutputConn("Y", lc.in, ir.SigRef(temp)),
			},
			Span: span,
		})
		if i == 0 {
			acc = ir.SigRef(temp)
			continue
		}
		orTemp := lc.n.NewTemp(lc.n.Types.BitType())
		lc.n.AddCell(ir.Cell{
			Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpOr, Width: 1},
			Connections: []ir.Connection{
				InputConn("A", lc.in, acc),
				InputConn("B", lc.in, ir.SigRef(temp)),
				OutputConn("Y", lc.in, ir.SigRef(orTemp)),
			},
			Span: span,
		})
		acc = ir.SigRef(orTemp)
	}
	if len(values) == 0 {
		return ir.ConstRef(ir.NewLogicVec(1, 1))
	}
	return acc
}
