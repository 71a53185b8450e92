package sim

import "github.com/aion-hdl/aion/internal/ir"

// evalRef resolves a SignalRef (as opposed to a general Expr) against the
// kernel's current committed signal state, used for instance port
// connections and structural cell wiring, which carry SignalRefs rather
// than full expression trees.
func (k *Kernel) evalRef(sigMap map[ir.SignalID]SimSignalId, ref ir.SignalRef) ir.LogicVec {
	switch ref.Tag {
	case ir.RefSignal:
		if id, ok := sigMap[ref.Signal]; ok {
			return k.signals[id].value
		}
		return ir.LogicVec{}
	case ir.RefSlice:
		return k.evalRef(sigMap, *ref.Base).Slice(ref.High, ref.Low)
	case ir.RefConcat:
		parts := make([]ir.LogicVec, len(ref.Parts))
		for i, p := range ref.Parts {
			parts[i] = k.evalRef(sigMap, p)
		}
		return ir.Concat(parts...)
	case ir.RefConst:
		return ref.Const
	default:
		return ir.LogicVec{}
	}
}

// resolveWriteSignal finds the flat signal id and bit range a write target
// ultimately lands in. Only RefSignal and RefSlice are legal write leaves;
// RefConcat is split by assign() before reaching here and RefConst is
// never a valid assignment target.
func (k *Kernel) resolveWriteSignal(sigMap map[ir.SignalID]SimSignalId, ref ir.SignalRef) (id SimSignalId, high, low int, ok bool) {
	switch ref.Tag {
	case ir.RefSignal:
		id, ok = sigMap[ref.Signal]
		if !ok {
			return 0, 0, 0, false
		}
		return id, k.signals[id].width - 1, 0, true
	case ir.RefSlice:
		id, _, _, ok = k.resolveWriteSignal(sigMap, *ref.Base)
		if !ok {
			return 0, 0, 0, false
		}
		return id, ref.High, ref.Low, true
	default:
		return 0, 0, 0, false
	}
}

// mergeIntoFull read-modify-writes partial into id's currently committed
// value at [high:low], returning the full-width result.
func (k *Kernel) mergeIntoFull(id SimSignalId, high, low int, partial ir.LogicVec) ir.LogicVec {
	sig := &k.signals[id]
	out := make([]ir.Bit, sig.width)
	copy(out, sig.value.Bits)
	for i := low; i <= high && i < sig.width; i++ {
		if i-low < partial.Width() {
			out[i] = partial.Bits[i-low]
		}
	}
	return ir.LogicVec{Bits: out}
}

// assign writes value into target, splitting RefConcat targets across
// their parts (MSB-first). Blocking writes commit immediately, visible to
// the rest of the current process execution; non-blocking writes are
// deferred to a ValueChange event at the next delta, per spec.md §4.7.
func (k *Kernel) assign(ps *procState, sigMap map[ir.SignalID]SimSignalId, target ir.SignalRef, value ir.LogicVec, blocking bool) {
	if target.Tag == ir.RefConcat {
		offset := value.Width()
		for _, part := range target.Parts {
			w := partWriteWidth(k, sigMap, part)
			if w > offset {
				w = offset
			}
			offset -= w
			k.assign(ps, sigMap, part, value.Slice(offset+w-1, offset), blocking)
		}
		return
	}
	id, high, low, ok := k.resolveWriteSignal(sigMap, target)
	if !ok {
		return
	}
	full := k.mergeIntoFull(id, high, low, value)
	if blocking {
		k.commitDriverValue(id, ps, full)
	} else {
		k.queue.push(event{time: k.now, delta: k.delta + 1, kind: eventValueChange, signal: id, value: full, owner: ps})
	}
}

func partWriteWidth(k *Kernel, sigMap map[ir.SignalID]SimSignalId, ref ir.SignalRef) int {
	switch ref.Tag {
	case ir.RefSignal:
		if id, ok := sigMap[ref.Signal]; ok {
			return k.signals[id].width
		}
		return 0
	case ir.RefSlice:
		return ref.High - ref.Low + 1
	default:
		return 0
	}
}

// findOrCreateDriverSlot returns the index of owner's driver entry in
// sig.drivers, appending a fresh Strong-strength slot the first time owner
// drives this signal.
func findOrCreateDriverSlot(sig *simSignal, owner *procState) int {
	for i := range sig.drivers {
		if sig.drivers[i].owner == owner {
			return i
		}
	}
	sig.drivers = append(sig.drivers, driver{owner: owner, strength: StrengthStrong, value: ir.Repeat(sig.width, ir.BitX)})
	return len(sig.drivers) - 1
}

// commitDriverValue updates owner's driver slot on id, re-resolves the
// signal's value across every driver, and, if the resolved value
// actually changed, records it and wakes every sensitized process.
func (k *Kernel) commitDriverValue(id SimSignalId, owner *procState, value ir.LogicVec) {
	sig := &k.signals[id]
	slot := findOrCreateDriverSlot(sig, owner)
	sig.drivers[slot].value = value
	resolved := resolveDrivers(sig.width, sig.drivers)
	k.applyResolved(id, resolved)
}

func (k *Kernel) applyResolved(id SimSignalId, resolved ir.LogicVec) {
	sig := &k.signals[id]
	if resolved.Equal(sig.value) {
		return
	}
	old := sig.value
	sig.value = resolved
	if k.recorder != nil {
		k.recorder.RecordChange(k.now.Fs, id, resolved)
	}
	k.wake(id, old, resolved)
}

// wake schedules a ProcessWake for every process sensitized to id's
// transition from old to new, honoring Pos/Neg edge qualification where
// declared and deduplicating within the current event cohort.
func (k *Kernel) wake(id SimSignalId, old, new ir.LogicVec) {
	sig := &k.signals[id]
	for _, ps := range sig.sensitized {
		if req, has := ps.edgeReq[id]; has {
			if !edgeFires(req, old, new) {
				continue
			}
		}
		if k.queuedWake[ps] {
			continue
		}
		k.queuedWake[ps] = true
		k.queue.push(event{time: k.now, delta: k.delta + 1, kind: eventProcessWake, proc: ps})
	}
}

func edgeFires(edge ir.Edge, old, new ir.LogicVec) bool {
	switch edge {
	case ir.EdgePos:
		return bitAt0(old) == ir.Bit0 && bitAt0(new) == ir.Bit1
	case ir.EdgeNeg:
		return bitAt0(old) == ir.Bit1 && bitAt0(new) == ir.Bit0
	case ir.EdgeBoth:
		return !old.Equal(new)
	default:
		return false
	}
}

func bitAt0(v ir.LogicVec) ir.Bit {
	if v.Width() == 0 {
		return ir.BitX
	}
	return v.Bits[0]
}
