package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aion-hdl/aion/internal/ir"
)

// OptLevel selects optimization pass ordering and aggressiveness; every
// level converges to the same fixpoint (spec.md §4.4: "the level selects
// pass ordering and aggressiveness but not correctness").
type OptLevel int

const (
	OptBalanced OptLevel = iota
	OptArea
	OptSpeed
)

// Optimize runs constant propagation, dead-code elimination, and
// common-subexpression elimination to fixpoint, in an order determined by
// level: Area front-loads CSE (shrink before folding), Speed front-loads
// constant propagation (fold before worrying about duplicates), Balanced
// runs the textbook const-prop/DCE/CSE order.
func Optimize(n *Netlist, level OptLevel) {
	log := logrus.WithField("stage", "synth.optimize").WithField("level", level)
	passes := passOrder(level)
	rounds := 0
	for {
		changed := false
		for _, pass := range passes {
			if pass(n) {
				changed = true
			}
		}
		rounds++
		if !changed {
			break
		}
	}
	log.Debugf("converged after %d rounds, %d live cells remain", rounds, n.LiveCellCount())
}

func passOrder(level OptLevel) []func(*Netlist) bool {
	switch level {
	case OptArea:
		return []func(*Netlist) bool{cse, constProp, dce}
	case OptSpeed:
		return []func(*Netlist) bool{constProp, cse, dce}
	default:
		return []func(*Netlist) bool{constProp, dce, cse}
	}
}

// resolveConst resolves ref to a known constant value, recursing through
// slices and concatenations of already-known signals.
func resolveConst(known map[ir.SignalID]ir.LogicVec, ref ir.SignalRef) (ir.LogicVec, bool) {
	switch ref.Tag {
	case ir.RefConst:
		return ref.Const, true
	case ir.RefSignal:
		v, ok := known[ref.Signal]
		return v, ok
	case ir.RefSlice:
		base, ok := resolveConst(known, *ref.Base)
		if !ok {
			return ir.LogicVec{}, false
		}
		return base.Slice(ref.High, ref.Low), true
	case ir.RefConcat:
		parts := make([]ir.LogicVec, len(ref.Parts))
		for i, p := range ref.Parts {
			v, ok := resolveConst(known, p)
			if !ok {
				return ir.LogicVec{}, false
			}
			parts[i] = v
		}
		return ir.Concat(parts...), true
	default:
		return ir.LogicVec{}, false
	}
}

// evalOp evaluates a generic cell's operation over known-constant operands,
// per spec.md §4.4's evaluable-operations list.
func evalOp(op ir.Op, width int, in map[string]ir.LogicVec) (ir.LogicVec, bool) {
	switch op {
	case ir.OpNot:
		return in["A"].Not(), true
	case ir.OpAnd:
		return in["A"].And(in["B"]), true
	case ir.OpOr:
		return in["A"].Or(in["B"]), true
	case ir.OpXor:
		return in["A"].Xor(in["B"]), true
	case ir.OpAdd:
		return in["A"].Add(in["B"], width), true
	case ir.OpSub:
		return in["A"].Sub(in["B"], width), true
	case ir.OpMul:
		return in["A"].Mul(in["B"], width), true
	case ir.OpEq:
		return in["A"].EqBit(in["B"]), true
	case ir.OpLt:
		return in["A"].LtUnsigned(in["B"]), true
	case ir.OpShl:
		return in["A"].Shl(in["B"]), true
	case ir.OpShr:
		return in["A"].Shr(in["B"]), true
	case ir.OpMux:
		return ir.Mux(in["S"], in["A"], in["B"]), true
	case ir.OpBuf:
		return in["A"], true
	default:
		return ir.LogicVec{}, false
	}
}

// constProp folds every generic cell whose inputs are all known constants
// into a Const cell, seeding from existing Const cells and iterating in
// arena order so newly-folded signals feed later cells within one sweep.
func constProp(n *Netlist) bool {
	known := map[ir.SignalID]ir.LogicVec{}
	for _, id := range n.LiveCells() {
		c := n.Cells[id]
		if c.Kind.Tag != ir.TagConst {
			continue
		}
		if out, ok := c.ConnByName(n.in, "Y"); ok && out.Ref.Tag == ir.RefSignal {
			known[out.Ref.Signal] = c.Kind.ConstValue
		}
	}

	changed := false
	for _, id := range n.LiveCells() {
		c := &n.Cells[int(id)]
		if c.Kind.Tag != ir.TagGeneric {
			continue
		}
		inputs := map[string]ir.LogicVec{}
		allKnown := true
		for _, conn := range c.Connections {
			if conn.Direction != ir.Input {
				continue
			}
			v, ok := resolveConst(known, conn.Ref)
			if !ok {
				allKnown = false
				break
			}
			inputs[n.in.Lookup(conn.PortName)] = v
		}
		if !allKnown {
			continue
		}
		result, ok := evalOp(c.Kind.GenericOp, c.Kind.Width, inputs)
		if !ok {
			continue
		}
		out, ok := c.ConnByName(n.in, "Y")
		if !ok {
			continue
		}
		c.Kind = ir.CellKind{Tag: ir.TagConst, ConstValue: result}
		c.Connections = []ir.Connection{out}
		if out.Ref.Tag == ir.RefSignal {
			known[out.Ref.Signal] = result
		}
		changed = true
	}
	return changed
}

func sigLive(live map[ir.SignalID]bool, ref ir.SignalRef) bool {
	switch ref.Tag {
	case ir.RefSignal:
		return live[ref.Signal]
	case ir.RefSlice:
		return sigLive(live, *ref.Base)
	case ir.RefConcat:
		for _, p := range ref.Parts {
			if sigLive(live, p) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func markLive(live map[ir.SignalID]bool, ref ir.SignalRef) {
	switch ref.Tag {
	case ir.RefSignal:
		live[ref.Signal] = true
	case ir.RefSlice:
		markLive(live, *ref.Base)
	case ir.RefConcat:
		for _, p := range ref.Parts {
			markLive(live, p)
		}
	}
}

// dce marks cells dead whose output drives nothing live, iterating to
// fixpoint (spec.md §4.4's liveness rule).
func dce(n *Netlist) bool {
	live := map[ir.SignalID]bool{}
	for _, p := range n.Ports {
		live[p.Signal] = true
	}
	liveCell := map[ir.CellID]bool{}
	for _, id := range n.LiveCells() {
		c := n.Cells[id]
		if c.Kind.Tag == ir.TagInstance || c.Kind.Tag == ir.TagBlackBox {
			liveCell[id] = true
			for _, conn := range c.Connections {
				if conn.Direction == ir.Input {
					markLive(live, conn.Ref)
				}
			}
		}
	}
	for {
		progressed := false
		for _, id := range n.LiveCells() {
			if liveCell[id] {
				continue
			}
			c := n.Cells[id]
			drivesLive := false
			for _, conn := range c.Connections {
				if conn.Direction == ir.Output && sigLive(live, conn.Ref) {
					drivesLive = true
				}
			}
			if !drivesLive {
				continue
			}
			liveCell[id] = true
			progressed = true
			for _, conn := range c.Connections {
				if conn.Direction == ir.Input {
					markLive(live, conn.Ref)
				}
			}
		}
		if !progressed {
			break
		}
	}

	removed := false
	for _, id := range n.LiveCells() {
		if !liveCell[id] {
			n.RemoveCell(id)
			removed = true
		}
	}
	return removed
}

func substitute(replace map[ir.SignalID]ir.SignalID, ref ir.SignalRef) ir.SignalRef {
	switch ref.Tag {
	case ir.RefSignal:
		if canon, ok := replace[ref.Signal]; ok {
			return ir.SigRef(canon)
		}
		return ref
	case ir.RefSlice:
		base := substitute(replace, *ref.Base)
		return ir.SliceRef(base, ref.High, ref.Low)
	case ir.RefConcat:
		parts := make([]ir.SignalRef, len(ref.Parts))
		for i, p := range ref.Parts {
			parts[i] = substitute(replace, p)
		}
		return ir.ConcatRef(parts...)
	default:
		return ref
	}
}

func refKey(ref ir.SignalRef) string {
	switch ref.Tag {
	case ir.RefSignal:
		return fmt.Sprintf("s%d", ref.Signal)
	case ir.RefSlice:
		return fmt.Sprintf("%s[%d:%d]", refKey(*ref.Base), ref.High, ref.Low)
	case ir.RefConcat:
		parts := make([]string, len(ref.Parts))
		for i, p := range ref.Parts {
			parts[i] = refKey(p)
		}
		return "{" + strings.Join(parts, ",") + "}"
	case ir.RefConst:
		return "c" + ref.Const.String()
	default:
		return "?"
	}
}

// cse fuses generic cells that share the same (kind, sorted input
// connections) hash, rewriting downstream references to the surviving
// output signal — skipping any cell whose output is itself a port, since
// port signal identity can't be folded away.
func cse(n *Netlist) bool {
	portSig := map[ir.SignalID]bool{}
	for _, p := range n.Ports {
		portSig[p.Signal] = true
	}

	replace := map[ir.SignalID]ir.SignalID{}
	seen := map[string]ir.SignalID{}
	changed := false

	for _, id := range n.LiveCells() {
		c := n.Cells[id]
		if c.Kind.Tag != ir.TagGeneric {
			continue
		}
		out, ok := c.ConnByName(n.in, "Y")
		if !ok || out.Ref.Tag != ir.RefSignal || portSig[out.Ref.Signal] {
			continue
		}

		type input struct{ name, ref string }
		var inputs []input
		for _, conn := range c.Connections {
			if conn.Direction != ir.Input {
				continue
			}
			inputs = append(inputs, input{n.in.Lookup(conn.PortName), refKey(substitute(replace, conn.Ref))})
		}
		sort.Slice(inputs, func(i, j int) bool { return inputs[i].name < inputs[j].name })

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d:%d:%d", c.Kind.Tag, c.Kind.GenericOp, c.Kind.Width)
		for _, p := range inputs {
			fmt.Fprintf(&sb, "|%s=%s", p.name, p.ref)
		}
		hash := sb.String()

		if canon, ok := seen[hash]; ok {
			replace[out.Ref.Signal] = canon
			n.RemoveCell(id)
			changed = true
			continue
		}
		seen[hash] = out.Ref.Signal
	}

	if !changed {
		return false
	}
	for _, id := range n.LiveCells() {
		c := &n.Cells[int(id)]
		for i := range c.Connections {
			if c.Connections[i].Direction == ir.Input {
				c.Connections[i].Ref = substitute(replace, c.Connections[i].Ref)
			}
		}
	}
	return true
}
