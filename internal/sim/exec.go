package sim

import (
	"strconv"
	"strings"

	"github.com/aion-hdl/aion/internal/ir"
)

// execCtx threads the read environment, the owning process (for assign
// ownership and assertion/display/finish bookkeeping), and a suspension
// hook through one statement-tree walk.
type execCtx struct {
	k      *Kernel
	sigMap map[ir.SignalID]SimSignalId
	proc   *procState
	wait   func(duration *uint64)
}

func (ctx *execCtx) eval() *evalCtx { return &evalCtx{k: ctx.k, sigMap: ctx.sigMap} }

func truthy(v ir.LogicVec) bool { return reduceOr(v) == ir.Bit1 }

// execStmt interprets one Statement, recursing into compound forms.
func (ctx *execCtx) execStmt(s *ir.Statement) {
	switch s.Tag {
	case ir.StmtNop:
		return
	case ir.StmtAssign:
		v := ctx.eval().evalExpr(s.Value)
		ctx.k.assign(ctx.proc, ctx.sigMap, s.Target, v, s.Blocking)
	case ir.StmtIf:
		cond := ctx.eval().evalExpr(s.Cond)
		if truthy(cond) {
			if s.Then != nil {
				ctx.execStmt(s.Then)
			}
			return
		}
		// IEEE 1364: an x/z condition is treated as false, same as a
		// known-0 condition: both take the else branch.
		if s.Else != nil {
			ctx.execStmt(s.Else)
		}
	case ir.StmtCase:
		subj := ctx.eval().evalExpr(s.Subject)
		for i := range s.Arms {
			arm := &s.Arms[i]
			for _, v := range arm.Values {
				if subj.Equal(v) {
					ctx.execStmt(&arm.Body)
					return
				}
			}
		}
		if s.Default != nil {
			ctx.execStmt(s.Default)
		}
	case ir.StmtBlock:
		for i := range s.Stmts {
			ctx.execStmt(&s.Stmts[i])
		}
	case ir.StmtWait:
		ctx.wait(s.Duration)
	case ir.StmtAssertion:
		cond := ctx.eval().evalExpr(&s.AssertCond)
		if !truthy(cond) {
			msg := s.Message
			if msg == "" {
				msg = "assertion failed"
			}
			ctx.k.result.AssertionFailures = append(ctx.k.result.AssertionFailures, msg)
			ctx.k.log.Warnf("assertion failed at %dfs: %s", ctx.k.now.Fs, msg)
		}
	case ir.StmtDisplay:
		ctx.k.result.DisplayOutput = append(ctx.k.result.DisplayOutput, ctx.formatDisplay(s.Format, s.Args))
	case ir.StmtFinish:
		now := ctx.k.now
		ctx.k.result.FinishedByUser = true
		ctx.k.result.FinishedAt = &now
		ctx.k.userFinished = true
	}
}

// formatDisplay expands a $display/$write-style format string against its
// evaluated arguments: %d decimal, %b binary, %h/%x hex, %s the raw
// 4-state rendering, %% a literal percent.
func (ctx *execCtx) formatDisplay(format string, args []ir.Expr) string {
	var sb strings.Builder
	argi := 0
	nextArg := func() ir.LogicVec {
		if argi >= len(args) {
			return ir.LogicVec{}
		}
		v := ctx.eval().evalExpr(&args[argi])
		argi++
		return v
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case '%':
			sb.WriteByte('%')
		case 'd', 'D':
			v := nextArg()
			if n, ok := v.ToUint64(); ok {
				sb.WriteString(strconv.FormatUint(n, 10))
			} else {
				sb.WriteString("x")
			}
		case 'h', 'H', 'x', 'X':
			v := nextArg()
			if n, ok := v.ToUint64(); ok {
				sb.WriteString(strconv.FormatUint(n, 16))
			} else {
				sb.WriteString("x")
			}
		case 'b', 'B':
			sb.WriteString(nextArg().String())
		case 's', 'S':
			sb.WriteString(nextArg().String())
		default:
			sb.WriteByte('%')
			sb.WriteByte(format[i])
		}
	}
	return sb.String()
}
