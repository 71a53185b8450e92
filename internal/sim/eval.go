package sim

import "github.com/aion-hdl/aion/internal/ir"

// evalCtx is the read environment for expression evaluation: a process's
// local signal map (its module's SignalID space) resolved against the
// kernel's flat signal arena.
type evalCtx struct {
	k      *Kernel
	sigMap map[ir.SignalID]SimSignalId
}

func (c *evalCtx) read(sig ir.SignalID) ir.LogicVec {
	id, ok := c.sigMap[sig]
	if !ok {
		return ir.LogicVec{}
	}
	return c.k.signals[id].value
}

func (c *evalCtx) width(e *ir.Expr) int {
	w := c.k.types.Lookup(e.Type).BitVecWidth()
	if w <= 0 {
		return 1
	}
	return w
}

// evalExpr evaluates a fully general expression tree against the current
// signal state. Unlike internal/synth's lowerExpr (which only needs
// constant indices and omits div/mod/pow), simulation must evaluate every
// operand dynamically and support the full behavioral operator set.
func (c *evalCtx) evalExpr(e *ir.Expr) ir.LogicVec {
	switch e.Tag {
	case ir.ExprSignal:
		return c.read(e.Signal)
	case ir.ExprLiteral:
		return e.Literal
	case ir.ExprUnary:
		return c.evalUnary(e)
	case ir.ExprBinary:
		return c.evalBinary(e)
	case ir.ExprTernary:
		cond := c.evalExpr(e.Cond)
		return ir.Mux(cond, c.evalExpr(e.Else), c.evalExpr(e.Then))
	case ir.ExprFuncCall:
		// $unsigned/$signed and similar casts pass their single operand
		// through unchanged; anything else evaluates to X at its declared
		// width rather than failing the run.
		if len(e.Args) == 1 {
			return c.evalExpr(&e.Args[0])
		}
		return ir.Repeat(c.width(e), ir.BitX)
	case ir.ExprConcat:
		parts := make([]ir.LogicVec, len(e.Parts))
		for i := range e.Parts {
			parts[i] = c.evalExpr(&e.Parts[i])
		}
		return ir.Concat(parts...)
	case ir.ExprRepeat:
		v := c.evalExpr(e.Value)
		parts := make([]ir.LogicVec, e.Count)
		for i := range parts {
			parts[i] = v
		}
		return ir.Concat(parts...)
	case ir.ExprIndex:
		base := c.evalExpr(e.Base)
		idx, ok := c.evalExpr(e.High).ToUint64()
		if !ok {
			return ir.Repeat(1, ir.BitX)
		}
		return base.Slice(int(idx), int(idx))
	case ir.ExprSlice:
		base := c.evalExpr(e.Base)
		hi, hok := c.evalExpr(e.High).ToUint64()
		lo, lok := c.evalExpr(e.Low).ToUint64()
		if !hok || !lok {
			return ir.Repeat(c.width(e), ir.BitX)
		}
		return base.Slice(int(hi), int(lo))
	default:
		return ir.Repeat(c.width(e), ir.BitX)
	}
}

func (c *evalCtx) evalUnary(e *ir.Expr) ir.LogicVec {
	a := c.evalExpr(e.Operand)
	switch e.UnOp {
	case ir.UnPlus:
		return a
	case ir.UnMinus:
		return ir.NewLogicVec(a.Width(), 0).Sub(a, a.Width())
	case ir.UnBitNot:
		return a.Not()
	case ir.UnLogNot:
		if reduceOr(a) == ir.Bit1 {
			return ir.NewLogicVec(1, 0)
		}
		if !a.AllKnown() {
			return ir.Repeat(1, ir.BitX)
		}
		return ir.NewLogicVec(1, 1)
	case ir.UnRedAnd:
		return bitVec(reduceAnd(a))
	case ir.UnRedNand:
		return bitVec(notBitOf(reduceAnd(a)))
	case ir.UnRedOr:
		return bitVec(reduceOr(a))
	case ir.UnRedNor:
		return bitVec(notBitOf(reduceOr(a)))
	case ir.UnRedXor:
		return bitVec(reduceXor(a))
	case ir.UnRedXnor:
		return bitVec(notBitOf(reduceXor(a)))
	default:
		return ir.Repeat(c.width(e), ir.BitX)
	}
}

func bitVec(b ir.Bit) ir.LogicVec { return ir.LogicVec{Bits: []ir.Bit{b}} }

func notBitOf(b ir.Bit) ir.Bit {
	switch b {
	case ir.Bit0:
		return ir.Bit1
	case ir.Bit1:
		return ir.Bit0
	default:
		return ir.BitX
	}
}

func reduceAnd(v ir.LogicVec) ir.Bit {
	acc := ir.Bit1
	for _, b := range v.Bits {
		if b == ir.Bit0 {
			return ir.Bit0
		}
		if b != ir.Bit1 {
			acc = ir.BitX
		}
	}
	return acc
}

func reduceOr(v ir.LogicVec) ir.Bit {
	acc := ir.Bit0
	for _, b := range v.Bits {
		if b == ir.Bit1 {
			return ir.Bit1
		}
		if b != ir.Bit0 {
			acc = ir.BitX
		}
	}
	return acc
}

func reduceXor(v ir.LogicVec) ir.Bit {
	acc := ir.Bit0
	for _, b := range v.Bits {
		if b != ir.Bit0 && b != ir.Bit1 {
			return ir.BitX
		}
		if b == ir.Bit1 {
			if acc == ir.Bit1 {
				acc = ir.Bit0
			} else {
				acc = ir.Bit1
			}
		}
	}
	return acc
}

func (c *evalCtx) evalBinary(e *ir.Expr) ir.LogicVec {
	l := c.evalExpr(e.Lhs)
	r := c.evalExpr(e.Rhs)
	width := c.width(e)
	switch e.BinOp {
	case ir.BinLogAnd:
		if reduceOr(l) == ir.Bit0 || reduceOr(r) == ir.Bit0 {
			return ir.NewLogicVec(1, 0)
		}
		if reduceOr(l) == ir.Bit1 && reduceOr(r) == ir.Bit1 {
			return ir.NewLogicVec(1, 1)
		}
		return ir.Repeat(1, ir.BitX)
	case ir.BinLogOr:
		if reduceOr(l) == ir.Bit1 || reduceOr(r) == ir.Bit1 {
			return ir.NewLogicVec(1, 1)
		}
		if reduceOr(l) == ir.Bit0 && reduceOr(r) == ir.Bit0 {
			return ir.NewLogicVec(1, 0)
		}
		return ir.Repeat(1, ir.BitX)
	case ir.BinBitAnd:
		return l.And(r)
	case ir.BinBitOr:
		return l.Or(r)
	case ir.BinBitXor:
		return l.Xor(r)
	case ir.BinBitXnor:
		return l.Xor(r).Not()
	case ir.BinEq, ir.BinCaseEq, ir.BinWildEq:
		return l.EqBit(r)
	case ir.BinNeq, ir.BinCaseNeq, ir.BinWildNeq:
		return l.EqBit(r).Not()
	case ir.BinLt:
		return l.LtUnsigned(r)
	case ir.BinLe:
		return r.LtUnsigned(l).Not()
	case ir.BinGt:
		return r.LtUnsigned(l)
	case ir.BinGe:
		return l.LtUnsigned(r).Not()
	case ir.BinShl, ir.BinAShl:
		return resizeToHelper(l.Shl(r), width)
	case ir.BinShr, ir.BinAShr:
		return resizeToHelper(l.Shr(r), width)
	case ir.BinAdd:
		return l.Add(r, width)
	case ir.BinSub:
		return l.Sub(r, width)
	case ir.BinMul:
		return l.Mul(r, width)
	case ir.BinDiv:
		return intArith(l, r, width, func(a, b uint64) uint64 {
			if b == 0 {
				return 0
			}
			return a / b
		})
	case ir.BinMod:
		return intArith(l, r, width, func(a, b uint64) uint64 {
			if b == 0 {
				return 0
			}
			return a % b
		})
	case ir.BinPow:
		return intArith(l, r, width, func(a, b uint64) uint64 {
			res := uint64(1)
			for i := uint64(0); i < b; i++ {
				res *= a
			}
			return res
		})
	default:
		return ir.Repeat(width, ir.BitX)
	}
}

// intArith applies f to the unsigned values of l and r (division/modulo/
// power have no LogicVec method, unlike the basic arithmetic operators
// internal/synth's evaluable subset covers; full behavioral simulation
// needs them too, so they're implemented locally here).
func intArith(l, r ir.LogicVec, width int, f func(a, b uint64) uint64) ir.LogicVec {
	av, aok := l.ToUint64()
	bv, bok := r.ToUint64()
	if !aok || !bok {
		return ir.Repeat(width, ir.BitX)
	}
	res := f(av, bv)
	if width < 64 {
		res &= (uint64(1) << uint(width)) - 1
	}
	return ir.NewLogicVec(width, res)
}

// resizeToHelper zero-extends or truncates v to width bits using its own
// public Slice/Concat primitives, since LogicVec.resize is unexported
// outside the ir package.
func resizeToHelper(v ir.LogicVec, width int) ir.LogicVec {
	if v.Width() == width {
		return v
	}
	if v.Width() > width {
		return v.Slice(width-1, 0)
	}
	pad := ir.Repeat(width-v.Width(), ir.Bit0)
	return ir.Concat(pad, v)
}
