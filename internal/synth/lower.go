package synth

import (
	"github.com/sirupsen/logrus"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/ir"
)

// Lower builds a working Netlist from m's behavioral content: each
// concurrent assignment becomes a chain of generic cells driving its LHS,
// and each process is lowered per spec.md §4.4's Combinational/Sequential/
// Initial rules.
func Lower(m *ir.Module, tdb *ir.TypeDb, in *ident.Interner, sink *diag.Sink) *Netlist {
	n := NewNetlist(m, tdb, in)
	log := logrus.WithField("stage", "synth.lower").WithField("module", in.Lookup(m.Name))

	lc := &lowerCtx{n: n, in: in, sink: sink}

	for _, a := range m.Assigns {
		lc.lowerAssignInto(a.Target, &a.Value, a.Span)
	}
	for _, p := range m.Processes {
		switch p.Kind {
		case ir.ProcCombinational, ir.ProcLatched:
			lc.lowerCombProcess(p)
		case ir.ProcSequential:
			lc.lowerSeqProcess(p)
		case ir.ProcInitial:
			// no-op for synthesis; the simulator interprets Initial processes
			// directly from the Module, not from the synthesized netlist.
		}
	}
	for _, c := range m.Cells {
		// Instances and black boxes from elaboration pass through untouched.
		n.AddCell(c)
	}

	log.Debugf("lowered %d cells from %d assigns and %d processes", len(n.Cells), len(m.Assigns), len(m.Processes))
	return n
}

type lowerCtx struct {
	n    *Netlist
	in   *ident.Interner
	sink *diag.Sink
}

// lowerAssignInto lowers e, wiring its final result directly into target
// (a concurrent assignment's LHS, or a process's driven signal) rather
// than through an intermediate temporary.
func (lc *lowerCtx) lowerAssignInto(target ir.SignalRef, e *ir.Expr, span ident.Span) {
	ref := lc.lowerExpr(e)
	lc.wireInto(target, ref, span)
}

// wireInto connects src to target. A plain signal target with a plain
// signal source is realized as a Buf cell (the netlist's minimal unit of
// "this net drives that net"); slice/concat targets are realized as one Buf
// per leaf signal, matching how a real tool fans a wide assignment out
// across the individual nets it actually drives.
func (lc *lowerCtx) wireInto(target ir.SignalRef, src ir.SignalRef, span ident.Span) {
	switch target.Tag {
	case ir.RefSignal:
		sig := lc.n.Signals[target.Signal]
		lc.n.AddCell(ir.Cell{
			Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpBuf, Width: lc.n.Types.Lookup(sig.Type).BitVecWidth()},
			Connections: []ir.Connection{
				InputConn("A", lc.in, src),
				OutputConn("Y", lc.in, target),
			},
			Span: span,
		})
	case ir.RefSlice:
		width := target.High - target.Low + 1
		lc.n.AddCell(ir.Cell{
			Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpBuf, Width: width},
			Connections: []ir.Connection{
				InputConn("A", lc.in, src),
				OutputConn("Y", lc.in, target),
			},
			Span: span,
		})
	case ir.RefConcat:
		// Fan a concatenated target out one leaf at a time, slicing src to
		// match each leaf's width, MSB-first.
		offset := 0
		for i := len(target.Parts) - 1; i >= 0; i-- {
			leaf := target.Parts[i]
			w := leafWidth(lc.n, leaf)
			leafSrc := src
			if w > 0 {
				leafSrc = sliceRef(src, offset+w-1, offset)
			}
			lc.wireInto(leaf, leafSrc, span)
			offset += w
		}
	default:
		lc.sink.Errorf(diag.Synthesis, diag.SYN001, span, "unsupported assignment target shape")
	}
}

func leafWidth(n *Netlist, ref ir.SignalRef) int {
	switch ref.Tag {
	case ir.RefSignal:
		return n.Types.Lookup(n.Signals[ref.Signal].Type).BitVecWidth()
	case ir.RefSlice:
		return ref.High - ref.Low + 1
	case ir.RefConst:
		return ref.Const.Width()
	default:
		return 0
	}
}

func sliceRef(ref ir.SignalRef, high, low int) ir.SignalRef {
	if ref.Tag == ir.RefConst {
		bits := ref.Const.Bits
		if high >= len(bits) {
			high = len(bits) - 1
		}
		return ir.ConstRef(ir.LogicVec{Bits: bits[low : high+1]})
	}
	return ir.SliceRef(ref, high, low)
}

// lowerExpr recursively lowers an expression tree into generic cells,
// returning a structural reference to its result. Signal/literal/index/
// slice/concat nodes resolve structurally with no cell; every operator
// node allocates a fresh temporary and a cell computing it.
func (lc *lowerCtx) lowerExpr(e *ir.Expr) ir.SignalRef {
	switch e.Tag {
	case ir.ExprSignal:
		return ir.SigRef(e.Signal)

	case ir.ExprLiteral:
		return ir.ConstRef(e.Literal)

	case ir.ExprIndex:
		base := lc.lowerExpr(e.Base)
		idx := constIndex(e.High)
		return sliceRef(base, idx, idx)

	case ir.ExprSlice:
		base := lc.lowerExpr(e.Base)
		hi := constIndex(e.High)
		lo := constIndex(e.Low)
		return sliceRef(base, hi, lo)

	case ir.ExprConcat:
		parts := make([]ir.SignalRef, len(e.Parts))
		for i := range e.Parts {
			parts[i] = lc.lowerExpr(&e.Parts[i])
		}
		return ir.ConcatRef(parts...)

	case ir.ExprRepeat:
		parts := make([]ir.SignalRef, e.Count)
		v := lc.lowerExpr(e.Value)
		for i := range parts {
			parts[i] = v
		}
		return ir.ConcatRef(parts...)

	case ir.ExprUnary:
		return lc.lowerUnary(e)

	case ir.ExprBinary:
		return lc.lowerBinary(e)

	case ir.ExprTernary:
		return lc.lowerTernary(e)

	case ir.ExprFuncCall:
		// $unsigned/$signed and similar casts are structural no-ops over
		// the already-lowered operand; anything else is unmappable.
		if len(e.Args) == 1 {
			return lc.lowerExpr(&e.Args[0])
		}
		lc.sink.Errorf(diag.Synthesis, diag.SYN001, e.Span, "unsupported function call %q in synthesizable expression", lc.in.Lookup(e.FuncName))
		return ir.ConstRef(ir.NewLogicVec(lc.n.Types.Lookup(e.Type).BitVecWidth(), 0))

	default:
		lc.sink.Errorf(diag.Synthesis, diag.SYN001, e.Span, "unsupported expression form")
		return ir.ConstRef(ir.NewLogicVec(1, 0))
	}
}

func constIndex(e *ir.Expr) int {
	if e == nil || e.Tag != ir.ExprLiteral {
		return 0
	}
	v, _ := e.Literal.ToUint64()
	return int(v)
}

func (lc *lowerCtx) lowerUnary(e *ir.Expr) ir.SignalRef {
	a := lc.lowerExpr(e.Operand)
	width := lc.n.Types.Lookup(e.Type).BitVecWidth()
	temp := lc.n.NewTemp(e.Type)

	switch e.UnOp {
	case ir.UnBitNot, ir.UnLogNot:
		lc.n.AddCell(ir.Cell{
			Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpNot, Width: width},
			Connections: []ir.Connection{
				InputConn("A", lc.in, a),
				OutputConn("Y", lc.in, ir.SigRef(temp)),
			},
			Span: e.Span,
		})
	case ir.UnRedAnd:
		lc.reduceInto(temp, ir.OpAnd, a, false, e.Span)
	case ir.UnRedNand:
		lc.reduceInto(temp, ir.OpAnd, a, true, e.Span)
	case ir.UnRedOr:
		lc.reduceInto(temp, ir.OpOr, a, false, e.Span)
	case ir.UnRedNor:
		lc.reduceInto(temp, ir.OpOr, a, true, e.Span)
	case ir.UnRedXor:
		lc.reduceInto(temp, ir.OpXor, a, false, e.Span)
	case ir.UnRedXnor:
		lc.reduceInto(temp, ir.OpXor, a, true, e.Span)
	case ir.UnPlus:
		return a
	case ir.UnMinus:
		zero := ir.ConstRef(ir.NewLogicVec(width, 0))
		lc.n.AddCell(ir.Cell{
			Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpSub, Width: width},
			Connections: []ir.Connection{
				InputConn("A", lc.in, zero),
				InputConn("B", lc.in, a),
				OutputConn("Y", lc.in, ir.SigRef(temp)),
			},
			Span: e.Span,
		})
	default:
		lc.sink.Errorf(diag.Synthesis, diag.SYN001, e.Span, "unsupported unary operator")
	}
	return ir.SigRef(temp)
}

// reduceInto emits a 1-bit reduction cell into dst, inverting its result
// when negate is set (Nand/Nor/Xnor).
func (lc *lowerCtx) reduceInto(dst ir.SignalID, op ir.Op, a ir.SignalRef, negate bool, span ident.Span) {
	result := dst
	if negate {
		result = lc.n.NewTemp(lc.n.Types.BitType())
	}
	lc.n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: op, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", lc.in, a),
			OutputConn("Y", lc.in, ir.SigRef(result)),
		},
		Span: span,
	})
	if !negate {
		return
	}
	lc.n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpNot, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", lc.in, ir.SigRef(result)),
			OutputConn("Y", lc.in, ir.SigRef(dst)),
		},
		Span: span,
	})
}

func (lc *lowerCtx) lowerBinary(e *ir.Expr) ir.SignalRef {
	a := lc.lowerExpr(e.Lhs)
	b := lc.lowerExpr(e.Rhs)
	width := lc.n.Types.Lookup(e.Type).BitVecWidth()
	temp := lc.n.NewTemp(e.Type)

	// Le/Gt/Ge have no dedicated cell kind; spec.md §4.4's evaluable-op set
	// names only unsigned Lt, so these three are expressed as a swapped
	// and/or negated Lt, same as a real tool's comparator synthesis.
	switch e.BinOp {
	case ir.BinGt:
		return lc.compareLt(temp, b, a, false, e.Span)
	case ir.BinLe:
		return lc.compareLt(temp, b, a, true, e.Span)
	case ir.BinGe:
		return lc.compareLt(temp, a, b, true, e.Span)
	}

	op, negate, ok := genericOpFor(e.BinOp)
	if !ok {
		lc.sink.Errorf(diag.Synthesis, diag.SYN001, e.Span, "unsupported binary operator in synthesizable expression")
		return ir.ConstRef(ir.NewLogicVec(width, 0))
	}
	result := temp
	if negate {
		result = lc.n.NewTemp(e.Type)
	}
	lc.n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: op, Width: width},
		Connections: []ir.Connection{
			InputConn("A", lc.in, a),
			InputConn("B", lc.in, b),
			OutputConn("Y", lc.in, ir.SigRef(result)),
		},
		Span: e.Span,
	})
	if !negate {
		return ir.SigRef(temp)
	}
	lc.n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpNot, Width: width},
		Connections: []ir.Connection{
			InputConn("A", lc.in, ir.SigRef(result)),
			OutputConn("Y", lc.in, ir.SigRef(temp)),
		},
		Span: e.Span,
	})
	return ir.SigRef(temp)
}

// compareLt emits Lt(lhs, rhs) into dst, inverting its result when negate
// is set, realizing Gt/Le/Ge in terms of the one comparator cell kind.
func (lc *lowerCtx) compareLt(dst ir.SignalID, lhs, rhs ir.SignalRef, negate bool, span ident.Span) ir.SignalRef {
	result := dst
	if negate {
		result = lc.n.NewTemp(lc.n.Types.BitType())
	}
	lc.n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpLt, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", lc.in, lhs),
			InputConn("B", lc.in, rhs),
			OutputConn("Y", lc.in, ir.SigRef(result)),
		},
		Span: span,
	})
	if !negate {
		return ir.SigRef(dst)
	}
	lc.n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpNot, Width: 1},
		Connections: []ir.Connection{
			InputConn("A", lc.in, ir.SigRef(result)),
			OutputConn("Y", lc.in, ir.SigRef(dst)),
		},
		Span: span,
	})
	return ir.SigRef(dst)
}

// genericOpFor maps spec.md §4.2's wide binary-operator set onto the
// handful of generic cell kinds §4.4 actually synthesizes. Neq/Xnor family
// operators reuse the Eq/Xor cell and report that their result needs an
// inverting cell chained after it, rather than getting their own Op value —
// only the operators spec.md's cell Op enum actually names get a direct
// mapping; everything else is unsupported in synthesizable code.
func genericOpFor(op ir.BinaryOp) (kind ir.Op, negate, ok bool) {
	switch op {
	case ir.BinBitAnd, ir.BinLogAnd:
		return ir.OpAnd, false, true
	case ir.BinBitOr, ir.BinLogOr:
		return ir.OpOr, false, true
	case ir.BinBitXor:
		return ir.OpXor, false, true
	case ir.BinBitXnor:
		return ir.OpXor, true, true
	case ir.BinAdd:
		return ir.OpAdd, false, true
	case ir.BinSub:
		return ir.OpSub, false, true
	case ir.BinMul:
		return ir.OpMul, false, true
	case ir.BinEq, ir.BinCaseEq, ir.BinWildEq:
		return ir.OpEq, false, true
	case ir.BinNeq, ir.BinCaseNeq, ir.BinWildNeq:
		return ir.OpEq, true, true
	case ir.BinLt:
		return ir.OpLt, false, true
	case ir.BinShl, ir.BinAShl:
		return ir.OpShl, false, true
	case ir.BinShr, ir.BinAShr:
		return ir.OpShr, false, true
	default:
		return 0, false, false
	}
}

func (lc *lowerCtx) lowerTernary(e *ir.Expr) ir.SignalRef {
	sel := lc.lowerExpr(e.Cond)
	a := lc.lowerExpr(e.Else)
	b := lc.lowerExpr(e.Then)
	width := lc.n.Types.Lookup(e.Type).BitVecWidth()
	temp := lc.n.NewTemp(e.Type)
	lc.n.AddCell(ir.Cell{
		Kind: ir.CellKind{Tag: ir.TagGeneric, GenericOp: ir.OpMux, Width: width},
		Connections: []ir.Connection{
			InputConn("S", lc.in, sel),
			InputConn("A", lc.in, a),
			InputConn("B", lc.in, b),
			OutputConn("Y", lc.in, ir.SigRef(temp)),
		},
		Span: e.Span,
	})
	return ir.SigRef(temp)
}
