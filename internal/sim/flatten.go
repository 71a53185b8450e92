package sim

import (
	"strconv"

	"github.com/aion-hdl/aion/internal/ir"
)

// flattenModule recursively allocates flat signals for m (skipping any
// already aliased in from the parent via alias), builds one procState per
// behavioral Process and per ConcurrentAssign, and recurses into every
// TagInstance cell. It returns m's complete SignalID -> SimSignalId map,
// which seedInitialValues and the parent's connection-aliasing logic both
// reuse afterward.
func (k *Kernel) flattenModule(m *ir.Module, prefix string, alias map[ir.SignalID]SimSignalId) map[ir.SignalID]SimSignalId {
	sigMap := make(map[ir.SignalID]SimSignalId, len(m.Signals))
	for sid, id := range alias {
		sigMap[sid] = id
	}
	for i := range m.Signals {
		s := &m.Signals[i]
		if _, ok := sigMap[s.ID]; ok {
			continue
		}
		width := k.types.Lookup(s.Type).BitVecWidth()
		if width <= 0 {
			width = 1
		}
		sigMap[s.ID] = k.allocSignal(prefix+"."+k.in.Lookup(s.Name), width)
	}

	for i := range m.Assigns {
		a := &m.Assigns[i]
		k.addContinuousExprDriver(m, sigMap, a.Target, &a.Value, prefix+".assign"+strconv.Itoa(i))
	}

	for i := range m.Processes {
		p := &m.Processes[i]
		ps := &procState{
			name:   prefix + ".process" + strconv.Itoa(i),
			sigMap: sigMap,
			proc:   p,
			kind:   p.Kind,
		}
		k.processes = append(k.processes, ps)
		k.registerSensitivity(ps, p.Sensitivity)
	}

	for i := range m.Cells {
		c := &m.Cells[i]
		if c.Kind.Tag != ir.TagInstance {
			continue
		}
		child := k.design.Module(c.Kind.InstanceModule)
		childPrefix := prefix + "." + k.in.Lookup(c.Name)
		childAlias := make(map[ir.SignalID]SimSignalId)

		for _, conn := range c.Connections {
			port, ok := child.PortByName(conn.PortName)
			if !ok {
				continue
			}
			if conn.Ref.Tag == ir.RefSignal {
				if parentID, ok := sigMap[conn.Ref.Signal]; ok {
					childAlias[port.Signal] = parentID
					continue
				}
			}
			// Non-trivial connection (slice/concat/const): the port gets
			// its own flat signal; an Input-direction connection is kept
			// live by a synthetic continuous driver evaluating the
			// parent-side SignalRef. Output-direction non-trivial
			// connections (writing into a parent-side slice/concat) aren't
			// modeled; no grounded example exercises that shape.
			width := k.types.Lookup(port.Type).BitVecWidth()
			if width <= 0 {
				width = 1
			}
			id := k.allocSignal(childPrefix+"."+k.in.Lookup(port.Name), width)
			childAlias[port.Signal] = id
			if port.Direction == ir.Input {
				k.addContinuousRefDriver(sigMap, conn.Ref, id, childPrefix+".portconn")
			}
		}

		childSigMap := k.flattenModule(child, childPrefix, childAlias)
		k.childSigMapCache[childKey{parent: m.ID, cell: c.ID}] = childSigMap
	}

	return sigMap
}

// addContinuousExprDriver registers a synthetic ProcCombinational-shaped
// driver that evaluates expr and assigns it into target whenever any
// signal expr reads from changes.
func (k *Kernel) addContinuousExprDriver(m *ir.Module, sigMap map[ir.SignalID]SimSignalId, target ir.SignalRef, expr *ir.Expr, name string) {
	ps := &procState{name: name, sigMap: sigMap, contTarget: target, contExpr: expr}
	k.processes = append(k.processes, ps)
	ids := collectExprSignals(expr, sigMap, nil)
	k.sensitizeAnyChange(ps, ids)
}

// addContinuousRefDriver is addContinuousExprDriver's counterpart for a
// raw SignalRef source (an instance port connection) driving a flat
// signal id directly, rather than a full Expr driving a module-scoped
// ConcurrentAssign target.
func (k *Kernel) addContinuousRefDriver(sigMap map[ir.SignalID]SimSignalId, ref ir.SignalRef, targetID SimSignalId, name string) {
	target := targetID
	ps := &procState{name: name, sigMap: sigMap, contRef: &ref, contDirect: &target}
	k.processes = append(k.processes, ps)
	ids := collectRefSignals(ref, sigMap, nil)
	k.sensitizeAnyChange(ps, ids)
}

func (k *Kernel) sensitizeAnyChange(ps *procState, ids []SimSignalId) {
	seen := make(map[SimSignalId]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		k.signals[id].sensitized = append(k.signals[id].sensitized, ps)
	}
}

func (k *Kernel) registerSensitivity(ps *procState, s ir.Sensitivity) {
	switch s.Kind {
	case ir.SensAll:
		ids := make([]SimSignalId, 0, len(ps.sigMap))
		for _, id := range ps.sigMap {
			ids = append(ids, id)
		}
		k.sensitizeAnyChange(ps, ids)
	case ir.SensSignalList:
		var ids []SimSignalId
		for _, s := range s.Signals {
			if id, ok := ps.sigMap[s]; ok {
				ids = append(ids, id)
			}
		}
		k.sensitizeAnyChange(ps, ids)
	case ir.SensEdgeList:
		ps.edgeReq = make(map[SimSignalId]ir.Edge, len(s.Edges))
		var ids []SimSignalId
		for _, es := range s.Edges {
			if id, ok := ps.sigMap[es.Signal]; ok {
				ps.edgeReq[id] = es.Edge
				ids = append(ids, id)
			}
		}
		k.sensitizeAnyChange(ps, ids)
	}
}

// collectExprSignals walks e collecting every flat signal id it reads.
func collectExprSignals(e *ir.Expr, sigMap map[ir.SignalID]SimSignalId, out []SimSignalId) []SimSignalId {
	if e == nil {
		return out
	}
	switch e.Tag {
	case ir.ExprSignal:
		if id, ok := sigMap[e.Signal]; ok {
			out = append(out, id)
		}
	case ir.ExprUnary:
		out = collectExprSignals(e.Operand, sigMap, out)
	case ir.ExprBinary:
		out = collectExprSignals(e.Lhs, sigMap, out)
		out = collectExprSignals(e.Rhs, sigMap, out)
	case ir.ExprTernary:
		out = collectExprSignals(e.Cond, sigMap, out)
		out = collectExprSignals(e.Then, sigMap, out)
		out = collectExprSignals(e.Else, sigMap, out)
	case ir.ExprFuncCall:
		for i := range e.Args {
			out = collectExprSignals(&e.Args[i], sigMap, out)
		}
	case ir.ExprConcat:
		for i := range e.Parts {
			out = collectExprSignals(&e.Parts[i], sigMap, out)
		}
	case ir.ExprRepeat:
		out = collectExprSignals(e.Value, sigMap, out)
	case ir.ExprIndex:
		out = collectExprSignals(e.Base, sigMap, out)
		out = collectExprSignals(e.High, sigMap, out)
	case ir.ExprSlice:
		out = collectExprSignals(e.Base, sigMap, out)
		out = collectExprSignals(e.High, sigMap, out)
		out = collectExprSignals(e.Low, sigMap, out)
	}
	return out
}

// collectRefSignals is collectExprSignals' counterpart for a SignalRef
// (cell/port connection wiring rather than a behavioral expression).
func collectRefSignals(ref ir.SignalRef, sigMap map[ir.SignalID]SimSignalId, out []SimSignalId) []SimSignalId {
	switch ref.Tag {
	case ir.RefSignal:
		if id, ok := sigMap[ref.Signal]; ok {
			out = append(out, id)
		}
	case ir.RefSlice:
		out = collectRefSignals(*ref.Base, sigMap, out)
	case ir.RefConcat:
		for _, p := range ref.Parts {
			out = collectRefSignals(p, sigMap, out)
		}
	}
	return out
}
