package elaborate

import (
	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ir"
	"github.com/aion-hdl/aion/internal/lang/verilog"
)

// evalConstExpr evaluates a Verilog/SV expression that spec.md §4.3 requires
// to be constant-foldable: parameter defaults, overrides, generate
// conditions/bounds, and genvar-indexed dimensions. env supplies the values
// of parameters and genvars currently in scope. On failure it reports E203
// and returns a zero Integer.
func evalConstExpr(env map[string]ir.ParamValue, e *verilog.Expr, sink *diag.Sink) ir.ParamValue {
	if e == nil {
		return ir.IntParam(0)
	}
	switch e.Tag {
	case verilog.ExNumber:
		lv, err := ir.ParseVerilogNumber(e.NumberText)
		if err != nil {
			sink.Errorf(diag.Elaboration, diag.E203, e.Sp, "bad constant literal %q: %v", e.NumberText, err)
			return ir.IntParam(0)
		}
		if v, ok := lv.ToUint64(); ok {
			return ir.IntParam(int64(v))
		}
		return ir.ParamValue{Kind: ir.KindBitVec, Logic: lv}

	case verilog.ExIdent:
		if v, ok := env[e.Name]; ok {
			return v
		}
		sink.Errorf(diag.Elaboration, diag.E203, e.Sp, "%q is not a constant in this context", e.Name)
		return ir.IntParam(0)

	case verilog.ExUnary:
		x := toInt64(evalConstExpr(env, e.X, sink))
		switch e.UnOp {
		case verilog.UnPlus:
			return ir.IntParam(x)
		case verilog.UnMinus:
			return ir.IntParam(-x)
		case verilog.UnLogNot:
			return ir.IntParam(boolInt(x == 0))
		case verilog.UnBitNot:
			return ir.IntParam(^x)
		default:
			sink.Errorf(diag.Elaboration, diag.E203, e.Sp, "unsupported operator in constant expression")
			return ir.IntParam(0)
		}

	case verilog.ExBinary:
		l := toInt64(evalConstExpr(env, e.L, sink))
		r := toInt64(evalConstExpr(env, e.R, sink))
		switch e.BinOp {
		case verilog.BinAdd:
			return ir.IntParam(l + r)
		case verilog.BinSub:
			return ir.IntParam(l - r)
		case verilog.BinMul:
			return ir.IntParam(l * r)
		case verilog.BinDiv:
			if r == 0 {
				return ir.IntParam(0)
			}
			return ir.IntParam(l / r)
		case verilog.BinMod:
			if r == 0 {
				return ir.IntParam(0)
			}
			return ir.IntParam(l % r)
		case verilog.BinPow:
			return ir.IntParam(intPow(l, r))
		case verilog.BinShl:
			return ir.IntParam(l << uint(r))
		case verilog.BinShr:
			return ir.IntParam(l >> uint(r))
		case verilog.BinLt:
			return ir.IntParam(boolInt(l < r))
		case verilog.BinLe:
			return ir.IntParam(boolInt(l <= r))
		case verilog.BinGt:
			return ir.IntParam(boolInt(l > r))
		case verilog.BinGe:
			return ir.IntParam(boolInt(l >= r))
		case verilog.BinEq, verilog.BinCaseEq, verilog.BinWildEq:
			return ir.IntParam(boolInt(l == r))
		case verilog.BinNeq, verilog.BinCaseNeq, verilog.BinWildNeq:
			return ir.IntParam(boolInt(l != r))
		case verilog.BinLogAnd:
			return ir.IntParam(boolInt(l != 0 && r != 0))
		case verilog.BinLogOr:
			return ir.IntParam(boolInt(l != 0 || r != 0))
		case verilog.BinBitAnd:
			return ir.IntParam(l & r)
		case verilog.BinBitOr:
			return ir.IntParam(l | r)
		case verilog.BinBitXor:
			return ir.IntParam(l ^ r)
		case verilog.BinBitXnor:
			return ir.IntParam(^(l ^ r))
		default:
			sink.Errorf(diag.Elaboration, diag.E203, e.Sp, "unsupported operator in constant expression")
			return ir.IntParam(0)
		}

	case verilog.ExTernary:
		c := toInt64(evalConstExpr(env, e.Cond, sink))
		if c != 0 {
			return evalConstExpr(env, e.Then, sink)
		}
		return evalConstExpr(env, e.Else, sink)

	default:
		sink.Errorf(diag.Elaboration, diag.E203, e.Span(), "expression is not constant-foldable")
		return ir.IntParam(0)
	}
}

func toInt64(v ir.ParamValue) int64 {
	switch v.Kind {
	case ir.KindInteger:
		return v.Int
	case ir.KindBitVec, ir.KindBit:
		u, _ := v.Logic.ToUint64()
		return int64(u)
	default:
		return 0
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	r := int64(1)
	for i := int64(0); i < exp; i++ {
		r *= base
	}
	return r
}

// evalParamDecls evaluates a module's parameter/localparam declarations in
// order, threading each newly bound name into env so later defaults can
// reference earlier parameters, and applying any caller-supplied overrides
// in place of a parameter's own default.
func evalParamDecls(decls []*verilog.ParamDecl, overrides map[string]ir.ParamValue, sink *diag.Sink) (map[string]ir.ParamValue, []string) {
	env := make(map[string]ir.ParamValue)
	var order []string
	for _, pd := range decls {
		var v ir.ParamValue
		if ov, ok := overrides[pd.Name]; ok && !pd.Local {
			v = ov
		} else {
			v = evalConstExpr(env, &pd.Default, sink)
		}
		env[pd.Name] = v
		order = append(order, pd.Name)
	}
	return env, order
}
