package ir

import "github.com/aion-hdl/aion/internal/ident"

// ExprTag discriminates the Expr union.
type ExprTag int

const (
	ExprSignal ExprTag = iota
	ExprLiteral
	ExprUnary
	ExprBinary
	ExprTernary
	ExprFuncCall
	ExprConcat
	ExprRepeat
	ExprIndex
	ExprSlice
)

// UnaryOp enumerates the unary operators of spec.md §4.2's Pratt table:
// +, -, !, ~, and the reduction operators.
type UnaryOp int

const (
	UnPlus UnaryOp = iota
	UnMinus
	UnLogNot
	UnBitNot
	UnRedAnd
	UnRedNand
	UnRedOr
	UnRedNor
	UnRedXor
	UnRedXnor
)

// BinaryOp enumerates the binary operators of spec.md §4.2's Pratt table.
type BinaryOp int

const (
	BinLogOr BinaryOp = iota
	BinLogAnd
	BinBitOr
	BinBitXor
	BinBitXnor
	BinBitAnd
	BinEq
	BinNeq
	BinCaseEq
	BinCaseNeq
	BinWildEq
	BinWildNeq
	BinLt
	BinLe
	BinGt
	BinGe
	BinShl
	BinShr
	BinAShl
	BinAShr
	BinAdd
	BinSub
	BinMul
	BinDiv
	BinMod
	BinPow
)

// Expr is the tree of expression node kinds of spec.md §3: Signal |
// Literal | Unary | Binary | Ternary | FuncCall | Concat | Repeat | Index |
// Slice. Every node carries a TypeID and a source span.
type Expr struct {
	Tag  ExprTag
	Type TypeID
	Span ident.Span

	// ExprSignal
	Signal SignalID

	// ExprLiteral
	Literal LogicVec

	// ExprUnary
	UnOp    UnaryOp
	Operand *Expr

	// ExprBinary
	BinOp BinaryOp
	Lhs   *Expr
	Rhs   *Expr

	// ExprTernary
	Cond *Expr
	Then *Expr
	Else *Expr

	// ExprFuncCall
	FuncName ident.ID
	Args     []Expr

	// ExprConcat: parts MSB-first
	Parts []Expr

	// ExprRepeat: Count copies of Value concatenated
	Count int
	Value *Expr

	// ExprIndex / ExprSlice
	Base *Expr
	High *Expr // ExprSlice high bound; ExprIndex reuses High for the index
	Low  *Expr // ExprSlice low bound only
}

// Lit builds a literal expression node of LogicVec v at width-matching type.
func Lit(v LogicVec, typ TypeID, span ident.Span) Expr {
	return Expr{Tag: ExprLiteral, Literal: v, Type: typ, Span: span}
}

// SigExpr builds a signal-reference expression node.
func SigExpr(id SignalID, typ TypeID, span ident.Span) Expr {
	return Expr{Tag: ExprSignal, Signal: id, Type: typ, Span: span}
}
